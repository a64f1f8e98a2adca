package main

import (
	"fmt"
	"time"
)

// Category representa uma categoria de produtos
type Category struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Empty     bool      `json:"empty" db:"empty"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewCategory cria uma nova instância de Category
func NewCategory(id, title string) *Category {
	return &Category{
		ID:        id,
		Title:     title,
		Empty:     true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// Product representa um produto com seu estoque por tamanho.
// Inventory mapeia um tamanho (ex.: "S", "M") para a quantidade disponível;
// Version é o número de versão usado pelo lock otimista nas atualizações de estoque.
type Product struct {
	ID         string         `json:"id" db:"id"`
	Name       string         `json:"name" db:"name"`
	CategoryID string         `json:"category_id" db:"category_id"`
	Inventory  map[string]int `json:"inventory" db:"inventory"`
	Version    int            `json:"version" db:"version"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// NewProduct cria uma nova instância de Product
func NewProduct(id, name, categoryID string, inventory map[string]int) *Product {
	stock := make(map[string]int, len(inventory))
	for size, quantity := range inventory {
		stock[size] = quantity
	}

	return &Product{
		ID:         id,
		Name:       name,
		CategoryID: categoryID,
		Inventory:  stock,
		Version:    1,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

// Available retorna a quantidade disponível para o tamanho informado
func (p *Product) Available(size string) (int, bool) {
	quantity, ok := p.Inventory[size]
	return quantity, ok
}

// Reserve abate quantity unidades do estoque do tamanho informado.
// Falha com ErrInsufficientStock se o tamanho não existe ou não há estoque suficiente.
func (p *Product) Reserve(size string, quantity int) error {
	available, ok := p.Inventory[size]
	if !ok || available == 0 || available < quantity {
		return fmt.Errorf("%w: product %s size %q", ErrInsufficientStock, p.ID, size)
	}

	p.Inventory[size] = available - quantity
	return nil
}

// Restore devolve quantity unidades ao estoque do tamanho informado
func (p *Product) Restore(size string, quantity int) {
	p.Inventory[size] += quantity
}

// Order representa um pedido. Somente leitura neste serviço: o número do
// pedido é usado nas mensagens de liberação de estoque.
type Order struct {
	ID          string    `json:"id" db:"id"`
	OrderNumber string    `json:"order_number" db:"order_number"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// OrderProduct representa uma linha de pedido: uma reserva viva de
// ProductQuantity unidades do tamanho ProductSize no produto ProductID
type OrderProduct struct {
	ID              string    `json:"id" db:"id"`
	OrderID         string    `json:"order_id" db:"order_id"`
	ProductID       string    `json:"product_id" db:"product_id"`
	ProductQuantity int       `json:"product_quantity" db:"product_quantity"`
	ProductSize     string    `json:"product_size" db:"product_size"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// NewOrderProduct cria uma nova instância de OrderProduct
func NewOrderProduct(id, orderID, productID string, productQuantity int, productSize string) *OrderProduct {
	return &OrderProduct{
		ID:              id,
		OrderID:         orderID,
		ProductID:       productID,
		ProductQuantity: productQuantity,
		ProductSize:     productSize,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

// OrderProductDetail é uma linha de pedido com os dados do produto anexados
type OrderProductDetail struct {
	OrderProduct
	Product Product `json:"product"`
}
