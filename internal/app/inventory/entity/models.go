package entity

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category представляет категорию товаров
type Category struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName указывает имя таблицы для GORM
func (Category) TableName() string {
	return "categories"
}

// Product представляет товар на складе
type Product struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(200);not null"`
	Description string    `json:"description" gorm:"type:text"`
	CategoryID  uuid.UUID `json:"category_id" gorm:"type:uuid;not null"`
	Category    *Category `json:"-" gorm:"foreignKey:CategoryID"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2);not null;check:price >= 0"`
	Stock       int       `json:"stock" gorm:"not null;check:stock >= 0"` // Остаток на складе, не может быть отрицательным
	ImageURL    string    `json:"image_url" gorm:"type:varchar(500)"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName указывает имя таблицы для GORM
func (Product) TableName() string {
	return "products"
}

// ProductWithCategory содержит товар с информацией о категории
type ProductWithCategory struct {
	Product
	CategoryName string `json:"category_name"`
}

// Customer представляет покупателя
type Customer struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(200);not null"`
	Email     string    `json:"email" gorm:"type:varchar(254);not null;uniqueIndex"`
	Phone     string    `json:"phone" gorm:"type:varchar(20)"`
	Address   string    `json:"address" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName указывает имя таблицы для GORM
func (Customer) TableName() string {
	return "customers"
}

// SaleStatus представляет статусы продажи
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"   // Ожидает завершения
	SaleStatusCompleted SaleStatus = "completed" // Завершена, учитывается в отчетах
	SaleStatusCancelled SaleStatus = "cancelled" // Отменена
)

// Sale представляет продажу
// Создается вместе с позициями одной транзакцией и после этого
// не изменяется, кроме смены статуса
type Sale struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	CustomerID  uuid.UUID  `json:"customer_id" gorm:"type:uuid;not null"`
	Customer    *Customer  `json:"-" gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"` // Удаление покупателя удаляет его продажи на уровне БД
	SaleDate    time.Time  `json:"sale_date" gorm:"not null"`
	TotalAmount float64    `json:"total_amount" gorm:"type:decimal(12,2);not null"` // Сумма total_price всех позиций
	Status      SaleStatus `json:"status" gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	Items       []SaleItem `json:"items,omitempty" gorm:"foreignKey:SaleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName указывает имя таблицы для GORM
func (Sale) TableName() string {
	return "sales"
}

// SaleItem представляет позицию в продаже
type SaleItem struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SaleID     uuid.UUID `json:"sale_id" gorm:"type:uuid;not null"`
	ProductID  uuid.UUID `json:"product_id" gorm:"type:uuid;not null"`
	Product    *Product  `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"` // БД не дает удалить товар, участвующий в продажах
	Quantity   int       `json:"quantity" gorm:"not null;check:quantity > 0"`
	UnitPrice  float64   `json:"unit_price" gorm:"type:decimal(10,2);not null"`   // Цена товара на момент продажи
	TotalPrice float64   `json:"total_price" gorm:"type:decimal(12,2);not null"` // unit_price * quantity
}

// TableName указывает имя таблицы для GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// SaleWithItems содержит продажу с полным списком позиций
type SaleWithItems struct {
	Sale
	Items []SaleItem `json:"items"`
}

// SaleEvent представляет событие о продаже для Kafka
type SaleEvent struct {
	EventType   string     `json:"event_type"` // SALE_CREATED, SALE_STATUS_CHANGED
	SaleID      uuid.UUID  `json:"sale_id"`
	CustomerID  uuid.UUID  `json:"customer_id"`
	TotalAmount float64    `json:"total_amount"`
	Status      SaleStatus `json:"status"`
	ItemsCount  int        `json:"items_count"`
	Timestamp   time.Time  `json:"timestamp"`
}

// ProductEvent представляет событие изменения товара для Kafka
type ProductEvent struct {
	EventType  string    `json:"event_type"` // PRODUCT_UPDATED
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	Stock      int       `json:"stock"`
	CategoryID uuid.UUID `json:"category_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// LowStockEvent представляет событие о товаре с низким остатком для Kafka
type LowStockEvent struct {
	EventType string    `json:"event_type"` // LOW_STOCK
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	Threshold int       `json:"threshold"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditRecord представляет запись журнала изменений в MongoDB
type AuditRecord struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Action    string             `json:"action" bson:"action"` // create, update, delete, status_change
	Entity    string             `json:"entity" bson:"entity"` // category, product, customer, sale
	EntityID  string             `json:"entity_id" bson:"entity_id"`
	Actor     string             `json:"actor" bson:"actor"` // Email из JWT или "system"
	Details   string             `json:"details,omitempty" bson:"details,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// DailySales содержит сумму завершенных продаж за один день
type DailySales struct {
	Day   time.Time `json:"day"`
	Total float64   `json:"total"`
}

// TopProduct содержит агрегат продаж по одному товару
type TopProduct struct {
	ProductName   string  `json:"product_name"`
	TotalQuantity int64   `json:"total_quantity"`
	TotalSales    float64 `json:"total_sales"`
}

// LowStockProduct содержит товар с остатком не выше порога
type LowStockProduct struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Stock int       `json:"stock"`
}

// DashboardStats содержит агрегаты для дашборда
type DashboardStats struct {
	TotalSales       float64           `json:"total_sales"`
	SalesByDay       []DailySales      `json:"sales_by_day"`
	TopProducts      []TopProduct      `json:"top_products"`
	RecentSales      []Sale            `json:"recent_sales"`
	LowStockProducts []LowStockProduct `json:"low_stock_products"`
}
