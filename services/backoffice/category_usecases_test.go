package main

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// fakeCategoryRepo implementa CategoryRepository em memória
type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories []*Category
}

func (r *fakeCategoryRepo) CreateCategory(ctx context.Context, category *Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *category
	r.categories = append(r.categories, &clone)
	return nil
}

func (r *fakeCategoryRepo) GetCategory(ctx context.Context, categoryID string) (*Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, category := range r.categories {
		if category.ID == categoryID {
			clone := *category
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, categoryID)
}

func (r *fakeCategoryRepo) GetCategoryByTitle(ctx context.Context, title string) (*Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, category := range r.categories {
		if category.Title == title {
			clone := *category
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, title)
}

func (r *fakeCategoryRepo) ListCategories(ctx context.Context) ([]Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	categories := make([]Category, 0, len(r.categories))
	for _, category := range r.categories {
		categories = append(categories, *category)
	}
	return categories, nil
}

func (r *fakeCategoryRepo) UpdateCategoryTitle(ctx context.Context, categoryID, title string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, category := range r.categories {
		if category.ID == categoryID && category.Title != title {
			category.Title = title
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCategoryRepo) SetCategoryEmpty(ctx context.Context, categoryID string, empty bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, category := range r.categories {
		if category.ID == categoryID {
			category.Empty = empty
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrCategoryNotFound, categoryID)
}

func (r *fakeCategoryRepo) DeleteCategory(ctx context.Context, categoryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, category := range r.categories {
		if category.ID == categoryID {
			r.categories = append(r.categories[:i], r.categories[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrCategoryDelete, categoryID)
}

func newCategoryTestUseCase(categories *fakeCategoryRepo, store *fakeStore) *CategoryUseCase {
	tracer := noop.NewTracerProvider().Tracer("test")
	return NewCategoryUseCase(categories, &fakeProductRepo{s: store}, tracer)
}

func TestAddCategory_RejectsDuplicateTitle(t *testing.T) {
	// Arrange
	categories := &fakeCategoryRepo{}
	useCase := newCategoryTestUseCase(categories, newFakeStore())

	// Act
	created, err := useCase.AddCategory(context.Background(), "outerwear")
	require.NoError(t, err)
	assert.Equal(t, "outerwear", created.Title)
	assert.True(t, created.Empty)

	_, err = useCase.AddCategory(context.Background(), "outerwear")

	// Assert
	assert.ErrorIs(t, err, ErrDuplicateTitle)
}

func TestGetCategories_RefreshesEmptyFlags(t *testing.T) {
	// Arrange - uma categoria com produto, outra sem
	categories := &fakeCategoryRepo{}
	store := newFakeStore()
	useCase := newCategoryTestUseCase(categories, store)

	withProducts, err := useCase.AddCategory(context.Background(), "shirts")
	require.NoError(t, err)
	_, err = useCase.AddCategory(context.Background(), "hats")
	require.NoError(t, err)

	store.mu.Lock()
	store.products["shirt-1"] = &Product{ID: "shirt-1", CategoryID: withProducts.ID, Inventory: map[string]int{"S": 1}, Version: 1}
	store.mu.Unlock()

	// Act
	listed, err := useCase.GetCategories(context.Background())

	// Assert
	require.NoError(t, err)
	require.Len(t, listed, 2)
	byTitle := make(map[string]Category, len(listed))
	for _, category := range listed {
		byTitle[category.Title] = category
	}
	assert.False(t, byTitle["shirts"].Empty)
	assert.True(t, byTitle["hats"].Empty)
}

func TestGetCategoriesPerPage_Boundaries(t *testing.T) {
	// Arrange - 13 categorias, 12 por página
	categories := &fakeCategoryRepo{}
	useCase := newCategoryTestUseCase(categories, newFakeStore())

	for i := 0; i < 13; i++ {
		_, err := useCase.AddCategory(context.Background(), fmt.Sprintf("category-%02d", i))
		require.NoError(t, err)
	}

	// Act / Assert
	page1, err := useCase.GetCategoriesPerPage(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, page1, 12)

	page2, err := useCase.GetCategoriesPerPage(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, page2, 1)

	_, err = useCase.GetCategoriesPerPage(context.Background(), 3)
	assert.ErrorIs(t, err, ErrPageOutOfRange)

	_, err = useCase.GetCategoriesPerPage(context.Background(), 0)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestSetCategory_RenameAndNoop(t *testing.T) {
	// Arrange
	categories := &fakeCategoryRepo{}
	useCase := newCategoryTestUseCase(categories, newFakeStore())

	created, err := useCase.AddCategory(context.Background(), "shirts")
	require.NoError(t, err)
	_, err = useCase.AddCategory(context.Background(), "hats")
	require.NoError(t, err)

	// Act / Assert - renomear para um título livre funciona
	result, err := useCase.SetCategory(context.Background(), created.ID, "tops")
	require.NoError(t, err)
	assert.Equal(t, "category updated", result)

	// Renomear para o mesmo título não modifica nada
	result, err = useCase.SetCategory(context.Background(), created.ID, "tops")
	require.NoError(t, err)
	assert.Equal(t, "nothing updated", result)

	// Renomear para um título já usado é recusado
	_, err = useCase.SetCategory(context.Background(), created.ID, "hats")
	assert.ErrorIs(t, err, ErrDuplicateTitle)

	// Categoria inexistente
	_, err = useCase.SetCategory(context.Background(), "missing", "anything")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestDeleteCategory_RefusesWhileProductsExist(t *testing.T) {
	// Arrange
	categories := &fakeCategoryRepo{}
	store := newFakeStore()
	useCase := newCategoryTestUseCase(categories, store)

	created, err := useCase.AddCategory(context.Background(), "shirts")
	require.NoError(t, err)

	store.mu.Lock()
	store.products["shirt-1"] = &Product{ID: "shirt-1", CategoryID: created.ID, Inventory: map[string]int{"S": 1}, Version: 1}
	store.mu.Unlock()

	// Act
	_, err = useCase.DeleteCategory(context.Background(), created.ID)

	// Assert
	assert.ErrorIs(t, err, ErrCategoryNotEmpty)

	// Sem produtos a remoção passa
	store.mu.Lock()
	delete(store.products, "shirt-1")
	store.mu.Unlock()

	result, err := useCase.DeleteCategory(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Contains(t, result, "shirts")

	_, err = useCase.GetCategory(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}
