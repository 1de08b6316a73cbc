package entity

import "github.com/google/uuid"

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=2000"`
}

type UpdateCategoryRequest struct {
	Name        string `json:"name" validate:"omitempty,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

type CreateProductRequest struct {
	Name        string    `json:"name" validate:"required,min=2,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
	Price       float64   `json:"price" validate:"required,gte=0"`
	Stock       int       `json:"stock" validate:"gte=0"`
	ImageURL    string    `json:"image_url" validate:"omitempty,url,max=500"`
}

type UpdateProductRequest struct {
	Name        string    `json:"name" validate:"omitempty,min=2,max=200"`
	Description string    `json:"description" validate:"omitempty,max=2000"`
	CategoryID  uuid.UUID `json:"category_id" validate:"omitempty"`
	Price       *float64  `json:"price" validate:"omitempty,gte=0"`
	Stock       *int      `json:"stock" validate:"omitempty,gte=0"`
	ImageURL    string    `json:"image_url" validate:"omitempty,url,max=500"`
}

type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=20"`
	Address string `json:"address" validate:"omitempty,max=2000"`
}

type UpdateCustomerRequest struct {
	Name    string `json:"name" validate:"omitempty,min=2,max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=20"`
	Address string `json:"address" validate:"omitempty,max=2000"`
}

type CreateSaleRequest struct {
	CustomerID uuid.UUID         `json:"customer_id" validate:"required"`
	Status     SaleStatus        `json:"status" validate:"omitempty,oneof=pending completed cancelled"`
	Items      []SaleItemRequest `json:"items" validate:"dive"`
}

type SaleItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type UpdateSaleStatusRequest struct {
	Status SaleStatus `json:"status" validate:"required,oneof=pending completed cancelled"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type CategoryListResponse struct {
	Categories []Category `json:"categories"`
	Total      int        `json:"total"`
}

type ProductListResponse struct {
	Products []ProductWithCategory `json:"products"`
	Total    int                   `json:"total"`
}

type CustomerListResponse struct {
	Customers []Customer `json:"customers"`
	Total     int        `json:"total"`
}

type SaleListResponse struct {
	Sales []Sale `json:"sales"`
	Total int    `json:"total"`
}

type SaleResponse struct {
	ID          uuid.UUID          `json:"id"`
	CustomerID  uuid.UUID          `json:"customer_id"`
	SaleDate    string             `json:"sale_date"`
	TotalAmount float64            `json:"total_amount"`
	Status      SaleStatus         `json:"status"`
	Items       []SaleItemResponse `json:"items"`
}

type SaleItemResponse struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unit_price"`
	TotalPrice float64   `json:"total_price"`
}
