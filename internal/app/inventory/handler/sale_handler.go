package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"lavka/internal/app/inventory/entity"
	"lavka/internal/app/inventory/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SaleHandler обрабатывает HTTP запросы для продаж и дашборда
type SaleHandler struct {
	saleService *service.SaleService
	validator   *validator.Validate
}

// NewSaleHandler создает новый обработчик продаж
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
		validator:   validator.New(),
	}
}

// CreateSale обрабатывает POST /sales
// Создает продажу с позициями и списанием остатков одной транзакцией
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req entity.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), &req, actorFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrSaleCustomerNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Customer not found"})
			return
		}
		if errors.Is(err, service.ErrSaleProductNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "One or more products not found"})
			return
		}
		if errors.Is(err, service.ErrInsufficientStock) {
			c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock for requested quantity"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sale"})
		return
	}

	c.JSON(http.StatusCreated, buildSaleResponse(sale))
}

// GetSale обрабатывает GET /sales/{id}
func (h *SaleHandler) GetSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale ID"})
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSaleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get sale"})
		return
	}

	c.JSON(http.StatusOK, buildSaleResponse(sale))
}

// GetAllSales обрабатывает GET /sales?status=&customer_id=
func (h *SaleHandler) GetAllSales(c *gin.Context) {
	status := entity.SaleStatus(c.Query("status"))
	if status != "" && status != entity.SaleStatusPending &&
		status != entity.SaleStatusCompleted && status != entity.SaleStatusCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	var customerID uuid.UUID
	if raw := c.Query("customer_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer_id"})
			return
		}
		customerID = parsed
	}

	sales, err := h.saleService.GetAllSales(c.Request.Context(), status, customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get sales"})
		return
	}

	c.JSON(http.StatusOK, entity.SaleListResponse{
		Sales: sales,
		Total: len(sales),
	})
}

// UpdateSaleStatus обрабатывает PATCH /sales/{id}
// Продажа после создания не изменяется, кроме статуса
func (h *SaleHandler) UpdateSaleStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale ID"})
		return
	}

	var req entity.UpdateSaleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	sale, err := h.saleService.UpdateSaleStatus(c.Request.Context(), id, req.Status, actorFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrSaleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
			return
		}
		if errors.Is(err, service.ErrInvalidSaleStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status transition"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sale status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     sale.ID,
		"status": sale.Status,
	})
}

// DeleteSale обрабатывает DELETE /sales/{id}
func (h *SaleHandler) DeleteSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale ID"})
		return
	}

	if err := h.saleService.DeleteSale(c.Request.Context(), id, actorFromContext(c)); err != nil {
		if errors.Is(err, service.ErrSaleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete sale"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Sale deleted successfully"})
}

// GetDashboardStats обрабатывает GET /sales/dashboard_stats?from=&to=&threshold=
// Даты в формате RFC3339 или YYYY-MM-DD
func (h *SaleHandler) GetDashboardStats(c *gin.Context) {
	from, err := parseDateParam(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
		return
	}

	to, err := parseDateParam(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
		return
	}

	threshold := defaultLowStockThreshold
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid threshold"})
			return
		}
		threshold = parsed
	}

	stats, err := h.saleService.GetDashboardStats(c.Request.Context(), from, to, threshold)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get dashboard stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// buildSaleResponse формирует ответ с информацией о продаже
func buildSaleResponse(sale *entity.SaleWithItems) entity.SaleResponse {
	items := make([]entity.SaleItemResponse, len(sale.Items))
	for i, item := range sale.Items {
		items[i] = entity.SaleItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		}
	}

	return entity.SaleResponse{
		ID:          sale.ID,
		CustomerID:  sale.CustomerID,
		SaleDate:    sale.SaleDate.Format(time.RFC3339),
		TotalAmount: sale.TotalAmount,
		Status:      sale.Status,
		Items:       items,
	}
}

// parseDateParam парсит дату из query параметра
// Пустая строка означает отсутствие границы
func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}

	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}

	return &t, nil
}
