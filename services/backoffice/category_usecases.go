package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	categoriesPerPage    = 12
	categoryEmptyWorkers = 8
)

// Erros de negócio de categorias
var (
	ErrCategoryNotFound = errors.New("category does not exist")
	ErrDuplicateTitle   = errors.New("category title already exists")
	ErrCategoryNotEmpty = errors.New("category still has products")
	ErrPageOutOfRange   = errors.New("page number exceeds category count")
	ErrCategoryDelete   = errors.New("failed to delete category")
)

// CategoryUseCase contém a lógica de negócio de categorias
type CategoryUseCase struct {
	categories CategoryRepository
	products   ProductRepository
	tracer     trace.Tracer
}

// NewCategoryUseCase cria uma nova instância de CategoryUseCase
func NewCategoryUseCase(
	categories CategoryRepository,
	products ProductRepository,
	tracer trace.Tracer,
) *CategoryUseCase {
	return &CategoryUseCase{
		categories: categories,
		products:   products,
		tracer:     tracer,
	}
}

// AddCategory cria uma nova categoria, recusando títulos duplicados
func (uc *CategoryUseCase) AddCategory(ctx context.Context, title string) (*Category, error) {
	ctx, span := uc.tracer.Start(ctx, "add_category")
	defer span.End()

	span.SetAttributes(attribute.String("category_title", title))

	existing, err := uc.categories.GetCategoryByTitle(ctx, title)
	if err != nil && !errors.Is(err, ErrCategoryNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTitle, title)
	}

	category := NewCategory(uuid.New().String(), title)
	if err := uc.categories.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	log.Printf("✅ [CATEGORY] Created category %s (%s)", title, category.ID)
	return category, nil
}

// GetCategories lista todas as categorias com a flag empty recalculada.
// O recálculo roda com concorrência limitada e termina antes da releitura:
// nunca dispare-e-esqueça sobre estado compartilhado.
func (uc *CategoryUseCase) GetCategories(ctx context.Context) ([]Category, error) {
	ctx, span := uc.tracer.Start(ctx, "get_categories")
	defer span.End()

	categories, err := uc.categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(categoryEmptyWorkers)
	for _, category := range categories {
		g.Go(func() error {
			hasProducts, err := uc.products.CategoryHasProducts(gctx, category.ID)
			if err != nil {
				return err
			}
			return uc.categories.SetCategoryEmpty(gctx, category.ID, !hasProducts)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to refresh category empty flags: %w", err)
	}

	return uc.categories.ListCategories(ctx)
}

// GetCategoriesPerPage retorna uma página de categorias (12 por página)
func (uc *CategoryUseCase) GetCategoriesPerPage(ctx context.Context, pageNo int) ([]Category, error) {
	ctx, span := uc.tracer.Start(ctx, "get_categories_per_page")
	defer span.End()

	span.SetAttributes(attribute.Int("page_no", pageNo))

	if pageNo < 1 {
		return nil, fmt.Errorf("%w: %d", ErrPageOutOfRange, pageNo)
	}

	categories, err := uc.categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	start := (pageNo - 1) * categoriesPerPage
	if start >= len(categories) {
		return nil, fmt.Errorf("%w: page %d", ErrPageOutOfRange, pageNo)
	}

	end := pageNo * categoriesPerPage
	if end > len(categories) {
		end = len(categories)
	}
	return categories[start:end], nil
}

// GetCategory busca uma categoria pelo ID
func (uc *CategoryUseCase) GetCategory(ctx context.Context, categoryID string) (*Category, error) {
	ctx, span := uc.tracer.Start(ctx, "get_category")
	defer span.End()

	span.SetAttributes(attribute.String("category_id", categoryID))
	return uc.categories.GetCategory(ctx, categoryID)
}

// SetCategory renomeia uma categoria, recusando títulos já usados por outra
func (uc *CategoryUseCase) SetCategory(ctx context.Context, categoryID, title string) (string, error) {
	ctx, span := uc.tracer.Start(ctx, "set_category")
	defer span.End()

	span.SetAttributes(
		attribute.String("category_id", categoryID),
		attribute.String("category_title", title),
	)

	category, err := uc.categories.GetCategory(ctx, categoryID)
	if err != nil {
		return "", err
	}

	if category.Title != title {
		existing, err := uc.categories.GetCategoryByTitle(ctx, title)
		if err != nil && !errors.Is(err, ErrCategoryNotFound) {
			return "", err
		}
		if existing != nil {
			return "", fmt.Errorf("%w: %s", ErrDuplicateTitle, title)
		}
	}

	updated, err := uc.categories.UpdateCategoryTitle(ctx, categoryID, title)
	if err != nil {
		return "", err
	}
	if !updated {
		return "nothing updated", nil
	}

	log.Printf("✅ [CATEGORY] Renamed category %s to %s", categoryID, title)
	return "category updated", nil
}

// DeleteCategory remove uma categoria sem produtos
func (uc *CategoryUseCase) DeleteCategory(ctx context.Context, categoryID string) (string, error) {
	ctx, span := uc.tracer.Start(ctx, "delete_category")
	defer span.End()

	span.SetAttributes(attribute.String("category_id", categoryID))

	category, err := uc.categories.GetCategory(ctx, categoryID)
	if err != nil {
		return "", err
	}

	hasProducts, err := uc.products.CategoryHasProducts(ctx, categoryID)
	if err != nil {
		return "", err
	}
	if hasProducts {
		return "", fmt.Errorf("%w: %s", ErrCategoryNotEmpty, category.Title)
	}

	if err := uc.categories.DeleteCategory(ctx, categoryID); err != nil {
		return "", err
	}

	log.Printf("✅ [CATEGORY] Deleted category %s (%s)", category.Title, categoryID)
	return fmt.Sprintf("category %s deleted", category.Title), nil
}
