package handler

import (
	"errors"
	"net/http"
	"strconv"

	"lavka/internal/app/inventory/entity"
	"lavka/internal/app/inventory/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const defaultLowStockThreshold = 10

// ProductHandler обрабатывает HTTP запросы для товаров
type ProductHandler struct {
	catalogService *service.CatalogService
	validator      *validator.Validate
}

// NewProductHandler создает новый обработчик товаров
func NewProductHandler(catalogService *service.CatalogService) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		validator:      validator.New(),
	}
}

// CreateProduct обрабатывает POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req entity.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &req, actorFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// GetProduct обрабатывает GET /products/{id}
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetAllProducts обрабатывает GET /products?category_id=&search=
func (h *ProductHandler) GetAllProducts(c *gin.Context) {
	var categoryID uuid.UUID
	if raw := c.Query("category_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
			return
		}
		categoryID = parsed
	}

	products, err := h.catalogService.GetAllProducts(c.Request.Context(), categoryID, c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get products"})
		return
	}

	c.JSON(http.StatusOK, entity.ProductListResponse{
		Products: products,
		Total:    len(products),
	})
}

// GetLowStockProducts обрабатывает GET /products/low_stock?threshold=N
// Порог по умолчанию 10
func (h *ProductHandler) GetLowStockProducts(c *gin.Context) {
	threshold := defaultLowStockThreshold
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid threshold"})
			return
		}
		threshold = parsed
	}

	products, err := h.catalogService.GetLowStockProducts(c.Request.Context(), threshold)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get low stock products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":  products,
		"total":     len(products),
		"threshold": threshold,
	})
}

// UpdateProduct обрабатывает PUT /products/{id}
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req entity.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, &req, actorFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct обрабатывает DELETE /products/{id}
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), id, actorFromContext(c)); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		if errors.Is(err, service.ErrProductHasSales) {
			c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete product referenced by sales"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Product deleted successfully"})
}
