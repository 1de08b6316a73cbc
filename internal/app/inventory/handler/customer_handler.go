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

// CustomerHandler обрабатывает HTTP запросы для покупателей
type CustomerHandler struct {
	customerService *service.CustomerService
	validator       *validator.Validate
}

// NewCustomerHandler создает новый обработчик покупателей
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		validator:       validator.New(),
	}
}

// CreateCustomer обрабатывает POST /customers
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req entity.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), &req, actorFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrCustomerAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Customer with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create customer"})
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// GetCustomer обрабатывает GET /customers/{id}
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID"})
		return
	}

	customer, err := h.customerService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get customer"})
		return
	}

	c.JSON(http.StatusOK, customer)
}

// GetAllCustomers обрабатывает GET /customers?search=
func (h *CustomerHandler) GetAllCustomers(c *gin.Context) {
	customers, err := h.customerService.GetAllCustomers(c.Request.Context(), c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get customers"})
		return
	}

	c.JSON(http.StatusOK, entity.CustomerListResponse{
		Customers: customers,
		Total:     len(customers),
	})
}

// UpdateCustomer обрабатывает PUT /customers/{id}
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID"})
		return
	}

	var req entity.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), id, &req, actorFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
		if errors.Is(err, service.ErrCustomerAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Customer with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update customer"})
		return
	}

	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer обрабатывает DELETE /customers/{id}
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID"})
		return
	}

	if err := h.customerService.DeleteCustomer(c.Request.Context(), id, actorFromContext(c)); err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete customer"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Customer deleted successfully"})
}

// GetPurchaseHistory обрабатывает GET /customers/{id}/purchase_history
// Покупатель без продаж получает пустой список
func (h *CustomerHandler) GetPurchaseHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID"})
		return
	}

	sales, err := h.customerService.GetPurchaseHistory(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get purchase history"})
		return
	}

	c.JSON(http.StatusOK, entity.SaleListResponse{
		Sales: sales,
		Total: len(sales),
	})
}
