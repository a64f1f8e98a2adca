package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// statusFromError mapeia os erros de negócio para códigos HTTP
func statusFromError(err error) int {
	switch {
	case errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrCategoryNotFound),
		errors.Is(err, ErrNoOrderProducts):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidInventory),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrPageOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooMuchContention),
		errors.Is(err, ErrDuplicateTitle),
		errors.Is(err, ErrCategoryNotEmpty):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// OrderProductHandler contém os handlers HTTP de linhas de pedido
type OrderProductHandler struct {
	useCase *OrderProductUseCase
	tracer  trace.Tracer
}

// NewOrderProductHandler cria uma nova instância de OrderProductHandler
func NewOrderProductHandler(useCase *OrderProductUseCase, tracer trace.Tracer) *OrderProductHandler {
	return &OrderProductHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// AddOrderProductBody representa o corpo da requisição de reserva
type AddOrderProductBody struct {
	ProductID       string `json:"product_id" binding:"required"`
	ProductQuantity int    `json:"product_quantity" binding:"required,gt=0"`
	ProductSize     string `json:"product_size" binding:"required"`
}

// AddOrderProduct é o endpoint de reserva de estoque para uma linha de pedido
func (h *OrderProductHandler) AddOrderProduct(c *gin.Context) {
	var body AddOrderProductBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "http.add_order_product")
	defer span.End()

	orderID := c.Param("orderId")
	span.SetAttributes(
		attribute.String("order_id", orderID),
		attribute.String("product_id", body.ProductID),
	)

	orderProduct, err := h.useCase.AddOrderProduct(ctx, AddOrderProductRequest{
		OrderID:         orderID,
		ProductID:       body.ProductID,
		ProductQuantity: body.ProductQuantity,
		ProductSize:     body.ProductSize,
	})
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, orderProduct)
}

// GetOrderProducts é o endpoint de listagem das linhas de um pedido
func (h *OrderProductHandler) GetOrderProducts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "http.get_order_products")
	defer span.End()

	orderID := c.Param("orderId")
	span.SetAttributes(attribute.String("order_id", orderID))

	details, err := h.useCase.GetOrderProducts(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, details)
}

// DeleteOrderProducts é o endpoint de liberação das linhas de um pedido.
// Em falha parcial o corpo carrega o progresso (released_count) junto do erro.
func (h *OrderProductHandler) DeleteOrderProducts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "http.delete_order_products")
	defer span.End()

	orderID := c.Param("orderId")
	span.SetAttributes(attribute.String("order_id", orderID))

	summary, err := h.useCase.DeleteOrderProduct(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		body := gin.H{"error": err.Error()}
		if summary != nil {
			body["order_number"] = summary.OrderNumber
			body["released_count"] = summary.ReleasedCount
		}
		c.JSON(statusFromError(err), body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":         "order products deleted for order " + summary.OrderNumber,
		"order_number":   summary.OrderNumber,
		"released_count": summary.ReleasedCount,
	})
}

// CategoryHandler contém os handlers HTTP de categorias
type CategoryHandler struct {
	useCase *CategoryUseCase
	tracer  trace.Tracer
}

// NewCategoryHandler cria uma nova instância de CategoryHandler
func NewCategoryHandler(useCase *CategoryUseCase, tracer trace.Tracer) *CategoryHandler {
	return &CategoryHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// CategoryBody representa o corpo das requisições de categoria
type CategoryBody struct {
	Title string `json:"title" binding:"required"`
}

// AddCategory é o endpoint de criação de categoria
func (h *CategoryHandler) AddCategory(c *gin.Context) {
	var body CategoryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "http.add_category")
	defer span.End()

	category, err := h.useCase.AddCategory(ctx, body.Title)
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, category)
}

// GetCategories é o endpoint de listagem de categorias
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "http.get_categories")
	defer span.End()

	categories, err := h.useCase.GetCategories(ctx)
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, categories)
}

// GetCategoriesPerPage é o endpoint de listagem paginada de categorias
func (h *CategoryHandler) GetCategoriesPerPage(c *gin.Context) {
	pageNo, err := strconv.Atoi(c.Param("pageNo"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page number"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "http.get_categories_per_page")
	defer span.End()

	categories, err := h.useCase.GetCategoriesPerPage(ctx, pageNo)
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, categories)
}

// GetCategory é o endpoint de busca de categoria
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "http.get_category")
	defer span.End()

	category, err := h.useCase.GetCategory(ctx, c.Param("id"))
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, category)
}

// SetCategory é o endpoint de renomeação de categoria
func (h *CategoryHandler) SetCategory(c *gin.Context) {
	var body CategoryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "http.set_category")
	defer span.End()

	result, err := h.useCase.SetCategory(ctx, c.Param("id"), body.Title)
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// DeleteCategory é o endpoint de remoção de categoria
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "http.delete_category")
	defer span.End()

	result, err := h.useCase.DeleteCategory(ctx, c.Param("id"))
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// ProductHandler contém os handlers HTTP de produtos
type ProductHandler struct {
	useCase *ProductUseCase
	tracer  trace.Tracer
}

// NewProductHandler cria uma nova instância de ProductHandler
func NewProductHandler(useCase *ProductUseCase, tracer trace.Tracer) *ProductHandler {
	return &ProductHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// CreateProductBody representa o corpo da requisição de criação de produto
type CreateProductBody struct {
	Name       string         `json:"name" binding:"required"`
	CategoryID string         `json:"category_id" binding:"required"`
	Inventory  map[string]int `json:"inventory" binding:"required"`
}

// CreateProduct é o endpoint de criação de produto
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var body CreateProductBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "http.create_product")
	defer span.End()

	product, err := h.useCase.CreateProduct(ctx, CreateProductRequest{
		Name:       body.Name,
		CategoryID: body.CategoryID,
		Inventory:  body.Inventory,
	})
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// GetProduct é o endpoint de busca de produto
func (h *ProductHandler) GetProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "http.get_product")
	defer span.End()

	product, err := h.useCase.GetProduct(ctx, c.Param("id"))
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, product)
}

// ListProducts é o endpoint de listagem de produtos
func (h *ProductHandler) ListProducts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "http.list_products")
	defer span.End()

	products, err := h.useCase.ListProducts(ctx)
	if err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, products)
}

// DeleteProduct é o endpoint de remoção de produto
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "http.delete_product")
	defer span.End()

	if err := h.useCase.DeleteProduct(ctx, c.Param("id")); err != nil {
		span.RecordError(err)
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "product deleted"})
}

// HealthCheck é o endpoint de health check
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
