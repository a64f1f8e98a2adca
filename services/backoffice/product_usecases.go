package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrInvalidInventory indica um estoque inicial com quantidade negativa
var ErrInvalidInventory = errors.New("invalid initial stock")

// CreateProductRequest representa a criação de um produto com estoque inicial
type CreateProductRequest struct {
	Name       string
	CategoryID string
	Inventory  map[string]int
}

// ProductUseCase contém a lógica de negócio de produtos
type ProductUseCase struct {
	products ProductRepository
	tracer   trace.Tracer
}

// NewProductUseCase cria uma nova instância de ProductUseCase
func NewProductUseCase(products ProductRepository, tracer trace.Tracer) *ProductUseCase {
	return &ProductUseCase{
		products: products,
		tracer:   tracer,
	}
}

// CreateProduct cria um produto com o estoque inicial por tamanho
func (uc *ProductUseCase) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	ctx, span := uc.tracer.Start(ctx, "create_product")
	defer span.End()

	span.SetAttributes(attribute.String("product_name", req.Name))

	for size, quantity := range req.Inventory {
		if quantity < 0 {
			return nil, fmt.Errorf("%w: size %q quantity %d", ErrInvalidInventory, size, quantity)
		}
	}

	product := NewProduct(uuid.New().String(), req.Name, req.CategoryID, req.Inventory)
	if err := uc.products.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	log.Printf("✅ [PRODUCT] Created product %s (%s)", req.Name, product.ID)
	return product, nil
}

// GetProduct busca um produto pelo ID
func (uc *ProductUseCase) GetProduct(ctx context.Context, productID string) (*Product, error) {
	ctx, span := uc.tracer.Start(ctx, "get_product")
	defer span.End()

	span.SetAttributes(attribute.String("product_id", productID))
	return uc.products.GetProduct(ctx, productID)
}

// ListProducts lista todos os produtos
func (uc *ProductUseCase) ListProducts(ctx context.Context) ([]Product, error) {
	ctx, span := uc.tracer.Start(ctx, "list_products")
	defer span.End()

	return uc.products.ListProducts(ctx)
}

// DeleteProduct remove um produto
func (uc *ProductUseCase) DeleteProduct(ctx context.Context, productID string) error {
	ctx, span := uc.tracer.Start(ctx, "delete_product")
	defer span.End()

	span.SetAttributes(attribute.String("product_id", productID))

	if err := uc.products.DeleteProduct(ctx, productID); err != nil {
		return err
	}

	log.Printf("✅ [PRODUCT] Deleted product %s", productID)
	return nil
}
