package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lavka/internal/app/inventory/entity"
	"lavka/internal/app/inventory/repository"
	"lavka/pkg/logger"
	"lavka/pkg/metrics"

	"github.com/google/uuid"
)

var (
	ErrSaleNotFound         = errors.New("sale not found")
	ErrSaleProductNotFound  = errors.New("product not found")
	ErrInsufficientStock    = errors.New("insufficient stock for requested quantity")
	ErrInvalidSaleStatus    = errors.New("invalid sale status transition")
	ErrSaleCustomerNotFound = errors.New("customer not found")
)

const (
	dashboardCacheTTL = time.Minute
	dashboardTopLimit = 5
)

// SaleService обрабатывает бизнес-логику продаж и отчетов
// Координирует работу репозиториев, Redis кеша, журнала изменений и Kafka
type SaleService struct {
	saleRepo     repository.SaleRepository
	customerRepo repository.CustomerRepository
	reportRepo   repository.ReportRepository
	auditRepo    repository.AuditRepository
	cache        Cache
	publisher    MessagePublisher
}

// NewSaleService создает новый сервис продаж с внедрением зависимостей
func NewSaleService(
	saleRepo repository.SaleRepository,
	customerRepo repository.CustomerRepository,
	reportRepo repository.ReportRepository,
	auditRepo repository.AuditRepository,
	cache Cache,
	publisher MessagePublisher,
) *SaleService {
	return &SaleService{
		saleRepo:     saleRepo,
		customerRepo: customerRepo,
		reportRepo:   reportRepo,
		auditRepo:    auditRepo,
		cache:        cache,
		publisher:    publisher,
	}
}

// CreateSale создает продажу с позициями и списанием остатков
// 1. Проверяет что покупатель существует
// 2. Выполняет транзакцию: продажа + позиции + списание остатков + итоговая сумма
// 3. Отправляет событие SALE_CREATED в Kafka
//
// Нехватка остатка по любой позиции откатывает всю продажу:
// частичных продаж не бывает
func (s *SaleService) CreateSale(ctx context.Context, req *entity.CreateSaleRequest, actor string) (*entity.SaleWithItems, error) {
	if _, err := s.customerRepo.GetByID(ctx, req.CustomerID); err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, ErrSaleCustomerNotFound
		}
		return nil, fmt.Errorf("failed to verify customer: %w", err)
	}

	status := req.Status
	if status == "" {
		status = entity.SaleStatusPending
	}

	sale := &entity.Sale{
		ID:         uuid.New(),
		CustomerID: req.CustomerID,
		SaleDate:   time.Now(),
		Status:     status,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := s.saleRepo.CreateWithItems(ctx, sale, req.Items); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrSaleProductNotFound
		}
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, ErrInsufficientStock
		}
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	metrics.SalesCreated.Inc()
	metrics.SalesTotalAmount.Add(sale.TotalAmount)

	s.recordAudit(ctx, "create", sale.ID.String(), actor)
	s.invalidateDashboardCache(ctx)

	event := entity.SaleEvent{
		EventType:   "SALE_CREATED",
		SaleID:      sale.ID,
		CustomerID:  sale.CustomerID,
		TotalAmount: sale.TotalAmount,
		Status:      sale.Status,
		ItemsCount:  len(sale.Items),
		Timestamp:   time.Now(),
	}
	if err := s.publishEvent(ctx, sale.ID.String(), event); err != nil {
		// Продажа уже создана, проблемы с Kafka не критичны
		logger.Warn().Err(err).Msg("Failed to publish sale created event")
	}

	return &entity.SaleWithItems{
		Sale:  *sale,
		Items: sale.Items,
	}, nil
}

// GetSale получает продажу с позициями по ID
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.SaleWithItems, error) {
	sale, err := s.saleRepo.GetWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}

	return sale, nil
}

// GetAllSales получает продажи с опциональными фильтрами по статусу и покупателю
func (s *SaleService) GetAllSales(ctx context.Context, status entity.SaleStatus, customerID uuid.UUID) ([]entity.Sale, error) {
	sales, err := s.saleRepo.GetAll(ctx, status, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales: %w", err)
	}

	return sales, nil
}

// UpdateSaleStatus меняет статус продажи и отправляет событие в Kafka
// Продажа после создания не изменяется, кроме статуса
func (s *SaleService) UpdateSaleStatus(ctx context.Context, id uuid.UUID, newStatus entity.SaleStatus, actor string) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}

	if !isValidStatusTransition(sale.Status, newStatus) {
		return nil, ErrInvalidSaleStatus
	}

	if err := s.saleRepo.UpdateStatus(ctx, id, newStatus); err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to update sale status: %w", err)
	}

	sale.Status = newStatus

	s.recordAudit(ctx, "status_change", sale.ID.String(), actor)
	s.invalidateDashboardCache(ctx)

	event := entity.SaleEvent{
		EventType:   "SALE_STATUS_CHANGED",
		SaleID:      sale.ID,
		CustomerID:  sale.CustomerID,
		TotalAmount: sale.TotalAmount,
		Status:      sale.Status,
		Timestamp:   time.Now(),
	}
	if err := s.publishEvent(ctx, sale.ID.String(), event); err != nil {
		logger.Warn().Err(err).Msg("Failed to publish sale status event")
	}

	return sale, nil
}

// DeleteSale удаляет продажу вместе с позициями
// Остатки товаров при этом не восстанавливаются
func (s *SaleService) DeleteSale(ctx context.Context, id uuid.UUID, actor string) error {
	if err := s.saleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			return ErrSaleNotFound
		}
		return fmt.Errorf("failed to delete sale: %w", err)
	}

	s.recordAudit(ctx, "delete", id.String(), actor)
	s.invalidateDashboardCache(ctx)

	return nil
}

// GetDashboardStats собирает агрегаты для дашборда
// Запрос без диапазона дат кешируется в Redis на минуту
func (s *SaleService) GetDashboardStats(ctx context.Context, from, to *time.Time, lowStockThreshold int) (*entity.DashboardStats, error) {
	cacheable := from == nil && to == nil

	if cacheable {
		stats, err := s.cache.GetDashboardStats(ctx)
		if err == nil && stats != nil {
			return stats, nil
		}
	}

	totalSales, err := s.reportRepo.TotalCompletedSales(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get total sales: %w", err)
	}

	salesByDay, err := s.reportRepo.SalesByDay(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales by day: %w", err)
	}

	topProducts, err := s.reportRepo.TopProducts(ctx, dashboardTopLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}

	recentSales, err := s.reportRepo.RecentCompletedSales(ctx, dashboardTopLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent sales: %w", err)
	}

	lowStock, err := s.reportRepo.LowStockProducts(ctx, lowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to get low stock products: %w", err)
	}

	metrics.ProductsLowStock.Set(float64(len(lowStock)))

	stats := &entity.DashboardStats{
		TotalSales:       totalSales,
		SalesByDay:       salesByDay,
		TopProducts:      topProducts,
		RecentSales:      recentSales,
		LowStockProducts: lowStock,
	}

	if cacheable {
		if err := s.cache.SetDashboardStats(ctx, stats, dashboardCacheTTL); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache dashboard stats")
		}
	}

	return stats, nil
}

// ScanLowStock проверяет остатки и отправляет событие LOW_STOCK
// по каждому товару не выше порога. Запускается планировщиком
func (s *SaleService) ScanLowStock(ctx context.Context, threshold int) (int, error) {
	products, err := s.reportRepo.LowStockProducts(ctx, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to scan low stock: %w", err)
	}

	metrics.ProductsLowStock.Set(float64(len(products)))

	for _, p := range products {
		event := entity.LowStockEvent{
			EventType: "LOW_STOCK",
			ProductID: p.ID,
			Name:      p.Name,
			Stock:     p.Stock,
			Threshold: threshold,
			Timestamp: time.Now(),
		}
		if err := s.publishEvent(ctx, p.ID.String(), event); err != nil {
			logger.Warn().Err(err).
				Str("product_id", p.ID.String()).
				Msg("Failed to publish low stock event")
		}
	}

	return len(products), nil
}

// isValidStatusTransition проверяет допустимость смены статуса продажи
func isValidStatusTransition(from, to entity.SaleStatus) bool {
	validTransitions := map[entity.SaleStatus][]entity.SaleStatus{
		entity.SaleStatusPending: {
			entity.SaleStatusCompleted,
			entity.SaleStatusCancelled,
		},
		entity.SaleStatusCompleted: {}, // Финальный статус
		entity.SaleStatusCancelled: {}, // Финальный статус
	}

	allowed, exists := validTransitions[from]
	if !exists {
		return false
	}

	for _, status := range allowed {
		if status == to {
			return true
		}
	}

	return false
}

// invalidateDashboardCache сбрасывает кеш дашборда
func (s *SaleService) invalidateDashboardCache(ctx context.Context) {
	if err := s.cache.DeleteDashboardStats(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate dashboard cache")
	}
}

// recordAudit пишет запись в журнал изменений
func (s *SaleService) recordAudit(ctx context.Context, action, entityID, actor string) {
	if actor == "" {
		actor = "system"
	}

	record := &entity.AuditRecord{
		Action:   action,
		Entity:   "sale",
		EntityID: entityID,
		Actor:    actor,
	}

	if err := s.auditRepo.Record(ctx, record); err != nil {
		logger.Warn().Err(err).Msg("Failed to record audit entry")
	}
}

// publishEvent сериализует событие и отправляет его в Kafka
func (s *SaleService) publishEvent(ctx context.Context, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := s.publisher.PublishMessage(ctx, key, data); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}
