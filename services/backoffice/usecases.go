package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// maxUpdateRetries limita as tentativas da atualização condicional do estoque
// antes de desistir com ErrTooMuchContention
const maxUpdateRetries = 5

// Erros de negócio
var (
	ErrProductNotFound    = errors.New("order product does not exist")
	ErrOrderNotFound      = errors.New("order does not exist")
	ErrInvalidQuantity    = errors.New("invalid order quantity")
	ErrInsufficientStock  = errors.New("insufficient product stock")
	ErrNoOrderProducts    = errors.New("no products to delete for order")
	ErrVersionConflict    = errors.New("version conflict")
	ErrTooMuchContention  = errors.New("max retries exceeded")
	ErrOrderProductDelete = errors.New("failed to delete order product")
)

// AddOrderProductRequest representa uma reserva de estoque para uma linha de pedido
type AddOrderProductRequest struct {
	OrderID         string
	ProductID       string
	ProductQuantity int
	ProductSize     string
}

// ReleaseSummary é o resultado da liberação das linhas de um pedido.
// ReleasedCount conta somente as linhas efetivamente liberadas; LineErrors
// guarda as falhas linha a linha para diagnóstico do operador.
type ReleaseSummary struct {
	OrderNumber   string  `json:"order_number"`
	ReleasedCount int     `json:"released_count"`
	LineErrors    []error `json:"-"`
}

// OrderProductUseCase contém a lógica de reserva e liberação de estoque
type OrderProductUseCase struct {
	products      ProductRepository
	orders        OrderRepository
	orderProducts OrderProductRepository
	tracer        trace.Tracer
	conflicts     metric.Int64Counter
}

// NewOrderProductUseCase cria uma nova instância de OrderProductUseCase
func NewOrderProductUseCase(
	products ProductRepository,
	orders OrderRepository,
	orderProducts OrderProductRepository,
	tracer trace.Tracer,
) *OrderProductUseCase {
	meter := otel.Meter("backoffice")
	conflicts, err := meter.Int64Counter("inventory.version_conflicts",
		metric.WithDescription("Conditional inventory updates that lost the race"))
	if err != nil {
		log.Printf("⚠️ Failed to create conflict counter: %v", err)
	}

	return &OrderProductUseCase{
		products:      products,
		orders:        orders,
		orderProducts: orderProducts,
		tracer:        tracer,
		conflicts:     conflicts,
	}
}

// AddOrderProduct reserva estoque e grava a linha de pedido correspondente.
// A validação e a escrita condicional são refeitas do zero a cada tentativa,
// sempre contra uma leitura fresca do produto.
func (uc *OrderProductUseCase) AddOrderProduct(ctx context.Context, req AddOrderProductRequest) (*OrderProduct, error) {
	ctx, span := uc.tracer.Start(ctx, "add_order_product")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", req.OrderID),
		attribute.String("product_id", req.ProductID),
		attribute.String("product_size", req.ProductSize),
		attribute.Int("product_quantity", req.ProductQuantity),
	)

	for attempt := 1; attempt <= maxUpdateRetries; attempt++ {
		orderProduct, err := uc.tryAddOrderProduct(ctx, req)
		if errors.Is(err, ErrVersionConflict) {
			uc.countConflict(ctx)
			log.Printf("⚠️ [RESERVE] Version conflict for ProductID=%s (attempt %d/%d)",
				req.ProductID, attempt, maxUpdateRetries)
			continue
		}
		if err != nil {
			log.Printf("❌ [RESERVE] FAILED for ProductID=%s Size=%s : %v", req.ProductID, req.ProductSize, err)
			return nil, err
		}

		log.Printf("✅ [RESERVE] Reserved %d x %s of ProductID=%s for OrderID=%s",
			req.ProductQuantity, req.ProductSize, req.ProductID, req.OrderID)
		return orderProduct, nil
	}

	return nil, fmt.Errorf("%w: product %s size %q", ErrTooMuchContention, req.ProductID, req.ProductSize)
}

// tryAddOrderProduct executa uma tentativa de reserva: valida as pré-condições
// contra o estado recém-lido e grava abate de estoque + linha de pedido na
// mesma transação
func (uc *OrderProductUseCase) tryAddOrderProduct(ctx context.Context, req AddOrderProductRequest) (*OrderProduct, error) {
	// 1. O produto referenciado precisa existir
	product, err := uc.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	// 2. A quantidade precisa ser um inteiro positivo
	if req.ProductQuantity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, req.ProductQuantity)
	}

	// 3. O tamanho precisa existir no estoque e ter quantidade suficiente
	if err := product.Reserve(req.ProductSize, req.ProductQuantity); err != nil {
		return nil, err
	}

	// 4. Abate de estoque condicionado à versão lida + criação da linha,
	// juntos ou nenhum
	tx, err := uc.products.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := uc.products.UpdateInventory(ctx, tx, product.ID, product.Inventory, product.Version); err != nil {
		return nil, err
	}

	orderProduct := NewOrderProduct(uuid.New().String(), req.OrderID, req.ProductID, req.ProductQuantity, req.ProductSize)
	if err := uc.orderProducts.CreateOrderProduct(ctx, tx, orderProduct); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reservation: %w", err)
	}
	return orderProduct, nil
}

// GetOrderProducts lista as linhas de um pedido com os dados do produto anexados
func (uc *OrderProductUseCase) GetOrderProducts(ctx context.Context, orderID string) ([]OrderProductDetail, error) {
	ctx, span := uc.tracer.Start(ctx, "get_order_products")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))
	return uc.orderProducts.ListOrderProductsWithProduct(ctx, orderID)
}

// DeleteOrderProduct libera todas as reservas vivas de um pedido. Cada linha é
// liberada de forma independente: uma falha em uma linha é registrada e
// reportada, mas não desfaz as linhas já liberadas nem impede as seguintes.
func (uc *OrderProductUseCase) DeleteOrderProduct(ctx context.Context, orderID string) (*ReleaseSummary, error) {
	ctx, span := uc.tracer.Start(ctx, "delete_order_product")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	orderProducts, err := uc.orderProducts.ListOrderProducts(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order, err := uc.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if len(orderProducts) == 0 {
		return nil, fmt.Errorf("%w %s", ErrNoOrderProducts, order.OrderNumber)
	}

	summary := &ReleaseSummary{OrderNumber: order.OrderNumber}
	for _, orderProduct := range orderProducts {
		if err := uc.releaseOrderProduct(ctx, orderProduct); err != nil {
			log.Printf("❌ [RELEASE] FAILED for OrderProductID=%s ProductID=%s : %v",
				orderProduct.ID, orderProduct.ProductID, err)
			summary.LineErrors = append(summary.LineErrors,
				fmt.Errorf("order product %s: %w", orderProduct.ID, err))
			continue
		}
		summary.ReleasedCount++
	}

	span.SetAttributes(attribute.Int("released_count", summary.ReleasedCount))

	if len(summary.LineErrors) > 0 {
		return summary, errors.Join(summary.LineErrors...)
	}

	log.Printf("✅ [RELEASE] Released %d order products for order %s", summary.ReleasedCount, order.OrderNumber)
	return summary, nil
}

// releaseOrderProduct devolve o estoque de uma linha e a remove, com o mesmo
// orçamento de tentativas da reserva
func (uc *OrderProductUseCase) releaseOrderProduct(ctx context.Context, orderProduct OrderProduct) error {
	for attempt := 1; attempt <= maxUpdateRetries; attempt++ {
		err := uc.tryReleaseOrderProduct(ctx, orderProduct)
		if errors.Is(err, ErrVersionConflict) {
			uc.countConflict(ctx)
			log.Printf("⚠️ [RELEASE] Version conflict for ProductID=%s (attempt %d/%d)",
				orderProduct.ProductID, attempt, maxUpdateRetries)
			continue
		}
		return err
	}

	return fmt.Errorf("%w: product %s size %q", ErrTooMuchContention, orderProduct.ProductID, orderProduct.ProductSize)
}

// tryReleaseOrderProduct executa uma tentativa de liberação: devolve o estoque
// condicionado à versão lida e remove a linha na mesma transação. Se o produto
// foi removido por fora, a falha sobe como ErrProductNotFound para que o
// operador possa reconciliar o estoque manualmente.
func (uc *OrderProductUseCase) tryReleaseOrderProduct(ctx context.Context, orderProduct OrderProduct) error {
	product, err := uc.products.GetProduct(ctx, orderProduct.ProductID)
	if err != nil {
		return err
	}

	product.Restore(orderProduct.ProductSize, orderProduct.ProductQuantity)

	tx, err := uc.products.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := uc.products.UpdateInventory(ctx, tx, product.ID, product.Inventory, product.Version); err != nil {
		return err
	}

	if err := uc.orderProducts.DeleteOrderProduct(ctx, tx, orderProduct.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit release: %w", err)
	}
	return nil
}

func (uc *OrderProductUseCase) countConflict(ctx context.Context) {
	if uc.conflicts != nil {
		uc.conflicts.Add(ctx, 1)
	}
}
