package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lavka/internal/app/inventory/entity"
	"lavka/internal/app/inventory/repository"
	"lavka/internal/app/inventory/repository/mocks"
	"lavka/internal/app/inventory/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type catalogHandlerMocks struct {
	categoryRepo *mocks.MockCategoryRepository
	productRepo  *mocks.MockProductRepository
	auditRepo    *mocks.MockAuditRepository
	cache        *mocks.MockCache
	publisher    *mocks.MockMessagePublisher
}

func setupProductHandler() (*ProductHandler, *catalogHandlerMocks) {
	m := &catalogHandlerMocks{
		categoryRepo: new(mocks.MockCategoryRepository),
		productRepo:  new(mocks.MockProductRepository),
		auditRepo:    new(mocks.MockAuditRepository),
		cache:        new(mocks.MockCache),
		publisher:    new(mocks.MockMessagePublisher),
	}

	catalogService := service.NewCatalogService(m.categoryRepo, m.productRepo, m.auditRepo, m.cache, m.publisher)
	return NewProductHandler(catalogService), m
}

// ==================== CreateProduct Tests ====================

func TestProductHandler_CreateProduct_Success(t *testing.T) {
	// Arrange
	handler, m := setupProductHandler()

	categoryID := uuid.New()
	m.categoryRepo.On("GetByID", mock.Anything, categoryID).Return(&entity.Category{ID: categoryID, Name: "Dairy"}, nil)
	m.productRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Product")).Return(nil)
	m.auditRepo.On("Record", mock.Anything, mock.AnythingOfType("*entity.AuditRecord")).Return(nil)

	reqBody := entity.CreateProductRequest{
		Name:       "Milk",
		CategoryID: categoryID,
		Price:      1.99,
		Stock:      50,
	}
	body, _ := json.Marshal(reqBody)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/products", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	// Act
	handler.CreateProduct(c)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)

	var response entity.Product
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "Milk", response.Name)
	assert.Equal(t, 50, response.Stock)
}

func TestProductHandler_CreateProduct_CategoryNotFound(t *testing.T) {
	// Arrange
	handler, m := setupProductHandler()

	categoryID := uuid.New()
	m.categoryRepo.On("GetByID", mock.Anything, categoryID).Return(nil, repository.ErrCategoryNotFound)

	reqBody := entity.CreateProductRequest{
		Name:       "Milk",
		CategoryID: categoryID,
		Price:      1.99,
	}
	body, _ := json.Marshal(reqBody)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/products", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	// Act
	handler.CreateProduct(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.productRepo.AssertNotCalled(t, "Create")
}

func TestProductHandler_CreateProduct_NegativePrice(t *testing.T) {
	// Arrange
	handler, _ := setupProductHandler()

	body := []byte(`{"name": "Milk", "category_id": "` + uuid.NewString() + `", "price": -5}`)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/products", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	// Act
	handler.CreateProduct(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ==================== GetAllProducts Tests ====================

func TestProductHandler_GetAllProducts_Success(t *testing.T) {
	// Arrange
	handler, m := setupProductHandler()

	products := []entity.ProductWithCategory{
		{Product: entity.Product{ID: uuid.New(), Name: "Milk"}, CategoryName: "Dairy"},
		{Product: entity.Product{ID: uuid.New(), Name: "Bread"}, CategoryName: "Bakery"},
	}
	m.productRepo.On("GetAll", mock.Anything, uuid.Nil, "").Return(products, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/products", nil)

	// Act
	handler.GetAllProducts(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.ProductListResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, 2, response.Total)
	assert.Equal(t, "Dairy", response.Products[0].CategoryName)
}

func TestProductHandler_GetAllProducts_InvalidCategoryID(t *testing.T) {
	// Arrange
	handler, m := setupProductHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/products?category_id=not-a-uuid", nil)

	// Act
	handler.GetAllProducts(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.productRepo.AssertNotCalled(t, "GetAll")
}

// ==================== GetLowStockProducts Tests ====================

func TestProductHandler_GetLowStockProducts_DefaultThreshold(t *testing.T) {
	// Arrange
	handler, m := setupProductHandler()

	products := []entity.Product{
		{ID: uuid.New(), Name: "Milk", Stock: 2},
	}
	// Порог по умолчанию 10
	m.productRepo.On("GetLowStock", mock.Anything, 10).Return(products, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/products/low_stock", nil)

	// Act
	handler.GetLowStockProducts(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	m.productRepo.AssertExpectations(t)
}

func TestProductHandler_GetLowStockProducts_CustomThreshold(t *testing.T) {
	// Arrange
	handler, m := setupProductHandler()

	m.productRepo.On("GetLowStock", mock.Anything, 5).Return([]entity.Product{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/products/low_stock?threshold=5", nil)

	// Act
	handler.GetLowStockProducts(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	m.productRepo.AssertExpectations(t)
}

func TestProductHandler_GetLowStockProducts_InvalidThreshold(t *testing.T) {
	// Arrange
	handler, m := setupProductHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/products/low_stock?threshold=abc", nil)

	// Act
	handler.GetLowStockProducts(c)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.productRepo.AssertNotCalled(t, "GetLowStock")
}

// ==================== UpdateProduct Tests ====================

func TestProductHandler_UpdateProduct_NotFound(t *testing.T) {
	// Arrange
	handler, m := setupProductHandler()

	productID := uuid.New()
	m.productRepo.On("GetByID", mock.Anything, productID).Return(nil, repository.ErrProductNotFound)

	reqBody := entity.UpdateProductRequest{Name: "Renamed"}
	body, _ := json.Marshal(reqBody)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/products/"+productID.String(), bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: productID.String()}}

	// Act
	handler.UpdateProduct(c)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ==================== DeleteProduct Tests ====================

func TestProductHandler_DeleteProduct_HasSales(t *testing.T) {
	// Arrange - товар с историей продаж удалить нельзя
	handler, m := setupProductHandler()

	productID := uuid.New()
	m.productRepo.On("Delete", mock.Anything, productID).Return(repository.ErrProductHasSales)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/products/"+productID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: productID.String()}}

	// Act
	handler.DeleteProduct(c)

	// Assert
	assert.Equal(t, http.StatusConflict, w.Code)
}
