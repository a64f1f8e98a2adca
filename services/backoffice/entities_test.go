package main

import (
	"errors"
	"testing"
	"time"
)

func TestNewProduct(t *testing.T) {
	// Arrange
	inventory := map[string]int{"S": 5, "M": 0}

	// Act
	product := NewProduct("product-1", "shirt", "category-1", inventory)

	// Assert
	if product.ID != "product-1" {
		t.Errorf("Expected ID product-1, got %s", product.ID)
	}
	if product.Name != "shirt" {
		t.Errorf("Expected Name shirt, got %s", product.Name)
	}
	if product.Version != 1 {
		t.Errorf("Expected Version 1, got %d", product.Version)
	}
	if product.Inventory["S"] != 5 || product.Inventory["M"] != 0 {
		t.Errorf("Expected inventory {S:5 M:0}, got %v", product.Inventory)
	}
	if product.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}

	// O mapa passado no construtor não pode ser o mesmo objeto guardado
	inventory["S"] = 100
	if product.Inventory["S"] != 5 {
		t.Errorf("Expected inventory copy to be isolated, got %d", product.Inventory["S"])
	}
}

func TestProductReserve(t *testing.T) {
	tests := []struct {
		name      string
		size      string
		quantity  int
		wantErr   bool
		wantStock int
	}{
		{name: "partial reservation", size: "S", quantity: 3, wantErr: false, wantStock: 2},
		{name: "exact remaining stock", size: "S", quantity: 5, wantErr: false, wantStock: 0},
		{name: "one more than remaining", size: "S", quantity: 6, wantErr: true, wantStock: 5},
		{name: "zero stock size", size: "M", quantity: 1, wantErr: true, wantStock: 0},
		{name: "unknown size", size: "XL", quantity: 1, wantErr: true, wantStock: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := NewProduct("product-1", "shirt", "category-1", map[string]int{"S": 5, "M": 0})

			err := product.Reserve(tt.size, tt.quantity)

			if tt.wantErr {
				if !errors.Is(err, ErrInsufficientStock) {
					t.Errorf("Expected ErrInsufficientStock, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if product.Inventory[tt.size] != tt.wantStock {
				t.Errorf("Expected stock %d, got %d", tt.wantStock, product.Inventory[tt.size])
			}
		})
	}
}

func TestProductRestore(t *testing.T) {
	// Arrange
	product := NewProduct("product-1", "shirt", "category-1", map[string]int{"S": 2})

	// Act
	product.Restore("S", 3)

	// Assert
	if product.Inventory["S"] != 5 {
		t.Errorf("Expected stock 5 after restore, got %d", product.Inventory["S"])
	}
}

func TestNewOrderProduct(t *testing.T) {
	// Act
	orderProduct := NewOrderProduct("op-1", "order-1", "product-1", 2, "S")

	// Assert
	if orderProduct.ID != "op-1" {
		t.Errorf("Expected ID op-1, got %s", orderProduct.ID)
	}
	if orderProduct.OrderID != "order-1" {
		t.Errorf("Expected OrderID order-1, got %s", orderProduct.OrderID)
	}
	if orderProduct.ProductID != "product-1" {
		t.Errorf("Expected ProductID product-1, got %s", orderProduct.ProductID)
	}
	if orderProduct.ProductQuantity != 2 {
		t.Errorf("Expected ProductQuantity 2, got %d", orderProduct.ProductQuantity)
	}
	if orderProduct.ProductSize != "S" {
		t.Errorf("Expected ProductSize S, got %s", orderProduct.ProductSize)
	}

	now := time.Now()
	if orderProduct.CreatedAt.After(now) || orderProduct.CreatedAt.Before(now.Add(-time.Second)) {
		t.Error("CreatedAt is not within expected time range")
	}
}

func TestNewCategory(t *testing.T) {
	// Act
	category := NewCategory("category-1", "shirts")

	// Assert
	if category.ID != "category-1" {
		t.Errorf("Expected ID category-1, got %s", category.ID)
	}
	if category.Title != "shirts" {
		t.Errorf("Expected Title shirts, got %s", category.Title)
	}
	if !category.Empty {
		t.Error("Expected new category to start empty")
	}
}
