package handler

import (
	"errors"
	"net/http"

	"lavka/internal/app/inventory/entity"
	"lavka/internal/app/inventory/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CategoryHandler обрабатывает HTTP запросы для категорий
type CategoryHandler struct {
	catalogService *service.CatalogService
	validator      *validator.Validate
}

// NewCategoryHandler создает новый обработчик категорий
func NewCategoryHandler(catalogService *service.CatalogService) *CategoryHandler {
	return &CategoryHandler{
		catalogService: catalogService,
		validator:      validator.New(),
	}
}

// CreateCategory обрабатывает POST /categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req entity.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req, actorFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrCategoryAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Category with this name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, category)
}

// GetCategory обрабатывает GET /categories/{id}
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	category, err := h.catalogService.GetCategory(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get category"})
		return
	}

	c.JSON(http.StatusOK, category)
}

// GetAllCategories обрабатывает GET /categories?search=
func (h *CategoryHandler) GetAllCategories(c *gin.Context) {
	categories, err := h.catalogService.GetAllCategories(c.Request.Context(), c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get categories"})
		return
	}

	c.JSON(http.StatusOK, entity.CategoryListResponse{
		Categories: categories,
		Total:      len(categories),
	})
}

// UpdateCategory обрабатывает PUT /categories/{id}
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	var req entity.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), id, &req, actorFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		if errors.Is(err, service.ErrCategoryAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Category with this name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory обрабатывает DELETE /categories/{id}
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	if err := h.catalogService.DeleteCategory(c.Request.Context(), id, actorFromContext(c)); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		if errors.Is(err, service.ErrCategoryHasProducts) {
			c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete category with existing products"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Category deleted successfully"})
}

// GetCategoryProducts обрабатывает GET /categories/{id}/products
func (h *CategoryHandler) GetCategoryProducts(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	products, err := h.catalogService.GetCategoryProducts(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get category products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(products),
	})
}

// formatValidationError форматирует ошибки валидации
func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}

// actorFromContext возвращает email из JWT, установленный auth middleware
func actorFromContext(c *gin.Context) string {
	if email, exists := c.Get("email"); exists {
		if s, ok := email.(string); ok {
			return s
		}
	}
	return ""
}
