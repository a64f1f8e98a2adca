package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Tx interface para transações
type Tx interface {
	Commit() error
	Rollback() error
}

// CategoryRepository define a interface para operações de banco de dados de categorias
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, categoryID string) (*Category, error)
	GetCategoryByTitle(ctx context.Context, title string) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)

	// UpdateCategoryTitle retorna false quando nenhuma linha foi modificada
	UpdateCategoryTitle(ctx context.Context, categoryID, title string) (bool, error)
	SetCategoryEmpty(ctx context.Context, categoryID string, empty bool) error
	DeleteCategory(ctx context.Context, categoryID string) error
}

// ProductRepository define a interface para operações de banco de dados de produtos.
// O UpdateInventory é a primitiva de atualização condicional do estoque: a escrita
// só acontece se a versão do registro ainda for a versão lida.
type ProductRepository interface {
	BeginTx(ctx context.Context) (Tx, error)
	CreateProduct(ctx context.Context, product *Product) error
	GetProduct(ctx context.Context, productID string) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	CategoryHasProducts(ctx context.Context, categoryID string) (bool, error)

	// UpdateInventory grava o novo mapa de estoque condicionado à versão lida;
	// falha com ErrVersionConflict se a versão atual não for mais a esperada
	UpdateInventory(ctx context.Context, tx Tx, productID string, inventory map[string]int, version int) error
	DeleteProduct(ctx context.Context, productID string) error
}

// OrderRepository define a interface de leitura de pedidos
type OrderRepository interface {
	GetOrder(ctx context.Context, orderID string) (*Order, error)
}

// OrderProductRepository define a interface para operações de linhas de pedido
type OrderProductRepository interface {
	CreateOrderProduct(ctx context.Context, tx Tx, orderProduct *OrderProduct) error
	ListOrderProducts(ctx context.Context, orderID string) ([]OrderProduct, error)
	ListOrderProductsWithProduct(ctx context.Context, orderID string) ([]OrderProductDetail, error)
	DeleteOrderProduct(ctx context.Context, tx Tx, orderProductID string) error
}

// PostgresTx implementa a interface Tx
type PostgresTx struct {
	tx pgx.Tx
}

func (t *PostgresTx) Commit() error {
	return t.tx.Commit(context.Background())
}

func (t *PostgresTx) Rollback() error {
	return t.tx.Rollback(context.Background())
}

// PostgresCategoryRepository implementa CategoryRepository usando PostgreSQL
type PostgresCategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository cria uma nova instância de PostgresCategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &PostgresCategoryRepository{pool: pool}
}

// CreateCategory cria uma nova categoria no banco de dados
func (r *PostgresCategoryRepository) CreateCategory(ctx context.Context, category *Category) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO categories (id, title, empty, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, category.ID, category.Title, category.Empty, category.CreatedAt, category.UpdatedAt)
	return err
}

// GetCategory busca uma categoria pelo ID
func (r *PostgresCategoryRepository) GetCategory(ctx context.Context, categoryID string) (*Category, error) {
	var category Category
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, empty, created_at, updated_at
		FROM categories WHERE id = $1
	`, categoryID).Scan(&category.ID, &category.Title, &category.Empty, &category.CreatedAt, &category.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, categoryID)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// GetCategoryByTitle busca uma categoria pelo título
func (r *PostgresCategoryRepository) GetCategoryByTitle(ctx context.Context, title string) (*Category, error) {
	var category Category
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, empty, created_at, updated_at
		FROM categories WHERE title = $1
	`, title).Scan(&category.ID, &category.Title, &category.Empty, &category.CreatedAt, &category.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, title)
		}
		return nil, fmt.Errorf("failed to get category by title: %w", err)
	}
	return &category, nil
}

// ListCategories lista todas as categorias ordenadas por criação
func (r *PostgresCategoryRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, empty, created_at, updated_at
		FROM categories ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var category Category
		if err := rows.Scan(&category.ID, &category.Title, &category.Empty, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// UpdateCategoryTitle atualiza o título de uma categoria
func (r *PostgresCategoryRepository) UpdateCategoryTitle(ctx context.Context, categoryID, title string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE categories
		SET title = $2, updated_at = NOW()
		WHERE id = $1 AND title != $2
	`, categoryID, title)
	if err != nil {
		return false, fmt.Errorf("failed to update category title: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetCategoryEmpty atualiza a flag empty de uma categoria
func (r *PostgresCategoryRepository) SetCategoryEmpty(ctx context.Context, categoryID string, empty bool) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE categories
		SET empty = $2, updated_at = NOW()
		WHERE id = $1
	`, categoryID, empty)
	if err != nil {
		return fmt.Errorf("failed to set category empty flag: %w", err)
	}
	return nil
}

// DeleteCategory remove uma categoria
func (r *PostgresCategoryRepository) DeleteCategory(ctx context.Context, categoryID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrCategoryDelete, categoryID)
	}
	return nil
}

// PostgresProductRepository implementa ProductRepository usando PostgreSQL
type PostgresProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository cria uma nova instância de PostgresProductRepository
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &PostgresProductRepository{pool: pool}
}

// BeginTx inicia uma nova transação
func (r *PostgresProductRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &PostgresTx{tx: tx}, nil
}

// CreateProduct cria um novo produto com estoque inicial
func (r *PostgresProductRepository) CreateProduct(ctx context.Context, product *Product) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, name, category_id, inventory, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, product.ID, product.Name, product.CategoryID, product.Inventory, product.Version, product.CreatedAt, product.UpdatedAt)
	return err
}

// GetProduct busca um produto pelo ID, incluindo a versão corrente do estoque
func (r *PostgresProductRepository) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var product Product
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, category_id, inventory, version, created_at, updated_at
		FROM products WHERE id = $1
	`, productID).Scan(
		&product.ID,
		&product.Name,
		&product.CategoryID,
		&product.Inventory,
		&product.Version,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// ListProducts lista todos os produtos
func (r *PostgresProductRepository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, category_id, inventory, version, created_at, updated_at
		FROM products ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var product Product
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.CategoryID,
			&product.Inventory,
			&product.Version,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// CategoryHasProducts verifica se existe algum produto na categoria
func (r *PostgresProductRepository) CategoryHasProducts(ctx context.Context, categoryID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM products WHERE category_id = $1)", categoryID,
	).Scan(&exists)
	return exists, err
}

// UpdateInventory grava o novo estoque condicionado à versão lida (lock otimista).
// RowsAffected == 0 significa que outra requisição atualizou o produto primeiro.
func (r *PostgresProductRepository) UpdateInventory(ctx context.Context, tx Tx, productID string, inventory map[string]int, version int) error {
	pgTx := tx.(*PostgresTx).tx

	tag, err := pgTx.Exec(ctx, `
		UPDATE products
		SET inventory = $2,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $3
	`, productID, inventory, version)
	if err != nil {
		return fmt.Errorf("failed to update inventory: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s version %d", ErrVersionConflict, productID, version)
	}
	return nil
}

// DeleteProduct remove um produto
func (r *PostgresProductRepository) DeleteProduct(ctx context.Context, productID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return nil
}

// PostgresOrderRepository implementa OrderRepository usando PostgreSQL
type PostgresOrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository cria uma nova instância de PostgresOrderRepository
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &PostgresOrderRepository{pool: pool}
}

// GetOrder busca um pedido pelo ID
func (r *PostgresOrderRepository) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	err := r.pool.QueryRow(ctx, `
		SELECT id, order_number, created_at, updated_at
		FROM orders WHERE id = $1
	`, orderID).Scan(&order.ID, &order.OrderNumber, &order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// PostgresOrderProductRepository implementa OrderProductRepository usando PostgreSQL
type PostgresOrderProductRepository struct {
	pool *pgxpool.Pool
}

// NewOrderProductRepository cria uma nova instância de PostgresOrderProductRepository
func NewOrderProductRepository(pool *pgxpool.Pool) OrderProductRepository {
	return &PostgresOrderProductRepository{pool: pool}
}

// CreateOrderProduct grava uma nova linha de pedido dentro da transação da reserva
func (r *PostgresOrderProductRepository) CreateOrderProduct(ctx context.Context, tx Tx, orderProduct *OrderProduct) error {
	pgTx := tx.(*PostgresTx).tx

	_, err := pgTx.Exec(ctx, `
		INSERT INTO order_products (id, order_id, product_id, product_quantity, product_size, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, orderProduct.ID, orderProduct.OrderID, orderProduct.ProductID,
		orderProduct.ProductQuantity, orderProduct.ProductSize,
		orderProduct.CreatedAt, orderProduct.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order product: %w", err)
	}
	return nil
}

// ListOrderProducts lista as linhas de um pedido
func (r *PostgresOrderProductRepository) ListOrderProducts(ctx context.Context, orderID string) ([]OrderProduct, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, product_quantity, product_size, created_at, updated_at
		FROM order_products WHERE order_id = $1 ORDER BY created_at
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order products: %w", err)
	}
	defer rows.Close()

	var orderProducts []OrderProduct
	for rows.Next() {
		var op OrderProduct
		if err := rows.Scan(&op.ID, &op.OrderID, &op.ProductID, &op.ProductQuantity, &op.ProductSize, &op.CreatedAt, &op.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order product: %w", err)
		}
		orderProducts = append(orderProducts, op)
	}
	return orderProducts, rows.Err()
}

// ListOrderProductsWithProduct lista as linhas de um pedido com os dados do produto anexados
func (r *PostgresOrderProductRepository) ListOrderProductsWithProduct(ctx context.Context, orderID string) ([]OrderProductDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT op.id, op.order_id, op.product_id, op.product_quantity, op.product_size, op.created_at, op.updated_at,
		       p.id, p.name, p.category_id, p.inventory, p.version, p.created_at, p.updated_at
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id = $1
		ORDER BY op.created_at
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order products with product: %w", err)
	}
	defer rows.Close()

	var details []OrderProductDetail
	for rows.Next() {
		var d OrderProductDetail
		if err := rows.Scan(
			&d.ID, &d.OrderID, &d.ProductID, &d.ProductQuantity, &d.ProductSize, &d.CreatedAt, &d.UpdatedAt,
			&d.Product.ID, &d.Product.Name, &d.Product.CategoryID, &d.Product.Inventory,
			&d.Product.Version, &d.Product.CreatedAt, &d.Product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order product detail: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// DeleteOrderProduct remove uma linha de pedido dentro da transação da liberação.
// RowsAffected == 0 indica que a linha sumiu depois da pré-checagem: falha de integridade.
func (r *PostgresOrderProductRepository) DeleteOrderProduct(ctx context.Context, tx Tx, orderProductID string) error {
	pgTx := tx.(*PostgresTx).tx

	tag, err := pgTx.Exec(ctx, `DELETE FROM order_products WHERE id = $1`, orderProductID)
	if err != nil {
		return fmt.Errorf("failed to delete order product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrOrderProductDelete, orderProductID)
	}
	return nil
}
