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

	"github.com/google/uuid"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
	ErrCategoryHasProducts   = errors.New("cannot delete category with existing products")
	ErrProductNotFound       = errors.New("product not found")
	ErrProductHasSales       = errors.New("cannot delete product referenced by sales")
)

const categoriesCacheTTL = time.Hour

// CatalogService обрабатывает бизнес-логику каталога: категории и товары
// Координирует работу репозиториев, Redis кеша, журнала изменений и Kafka
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	auditRepo    repository.AuditRepository
	cache        Cache
	publisher    MessagePublisher
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	auditRepo repository.AuditRepository,
	cache Cache,
	publisher MessagePublisher,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		auditRepo:    auditRepo,
		cache:        cache,
		publisher:    publisher,
	}
}

// === CATEGORIES ===

// CreateCategory создает новую категорию и инвалидирует кеш
func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest, actor string) (*entity.Category, error) {
	category := &entity.Category{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return nil, ErrCategoryAlreadyExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateCategoriesCache(ctx)
	s.recordAudit(ctx, "create", "category", category.ID.String(), actor, category.Name)

	return category, nil
}

// GetCategory получает категорию по ID
func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

// GetAllCategories получает все категории с кешированием в Redis
// Кеш используется только для полного списка без поискового фильтра
func (s *CatalogService) GetAllCategories(ctx context.Context, search string) ([]entity.Category, error) {
	if search == "" {
		categories, err := s.cache.GetCategories(ctx)
		if err == nil && len(categories) > 0 {
			return categories, nil
		}
	}

	categories, err := s.categoryRepo.GetAll(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	if search == "" {
		if err := s.cache.SetCategories(ctx, categories, categoriesCacheTTL); err != nil {
			// Данные получены из БД, проблемы с кешем не критичны
			logger.Warn().Err(err).Msg("Failed to cache categories")
		}
	}

	return categories, nil
}

// UpdateCategory обновляет категорию и инвалидирует кеш
func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *entity.UpdateCategoryRequest, actor string) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if req.Name != "" {
		category.Name = req.Name
	}
	if req.Description != "" {
		category.Description = req.Description
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return nil, ErrCategoryAlreadyExists
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidateCategoriesCache(ctx)
	s.recordAudit(ctx, "update", "category", category.ID.String(), actor, category.Name)

	return category, nil
}

// DeleteCategory удаляет категорию и инвалидирует кеш
// Категория с товарами не удаляется
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID, actor string) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		if errors.Is(err, repository.ErrCategoryHasProducts) {
			return ErrCategoryHasProducts
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.invalidateCategoriesCache(ctx)
	s.recordAudit(ctx, "delete", "category", id.String(), actor, "")

	return nil
}

// GetCategoryProducts получает все товары категории
// Сначала проверяет что категория существует
func (s *CatalogService) GetCategoryProducts(ctx context.Context, categoryID uuid.UUID) ([]entity.Product, error) {
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to verify category: %w", err)
	}

	products, err := s.productRepo.GetByCategoryID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category products: %w", err)
	}

	return products, nil
}

// === PRODUCTS ===

// CreateProduct создает новый товар
// Проверяет существование категории перед созданием
func (s *CatalogService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest, actor string) (*entity.Product, error) {
	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to verify category: %w", err)
	}

	product := &entity.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.recordAudit(ctx, "create", "product", product.ID.String(), actor, product.Name)

	return product, nil
}

// GetProduct получает товар по ID
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// GetAllProducts получает все товары с именами категорий
// categoryID и search - опциональные фильтры
func (s *CatalogService) GetAllProducts(ctx context.Context, categoryID uuid.UUID, search string) ([]entity.ProductWithCategory, error) {
	products, err := s.productRepo.GetAll(ctx, categoryID, search)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	return products, nil
}

// GetLowStockProducts получает товары с остатком не выше порога
func (s *CatalogService) GetLowStockProducts(ctx context.Context, threshold int) ([]entity.Product, error) {
	products, err := s.productRepo.GetLowStock(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to get low stock products: %w", err)
	}

	return products, nil
}

// UpdateProduct обновляет товар и отправляет событие PRODUCT_UPDATED при смене цены
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req *entity.UpdateProductRequest, actor string) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	oldPrice := product.Price

	// Частичное обновление: меняются только переданные поля
	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.ImageURL != "" {
		product.ImageURL = req.ImageURL
	}
	if req.CategoryID != uuid.Nil {
		if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to verify category: %w", err)
		}
		product.CategoryID = req.CategoryID
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.recordAudit(ctx, "update", "product", product.ID.String(), actor, product.Name)

	// Событие отправляется только при смене цены
	if product.Price != oldPrice {
		event := entity.ProductEvent{
			EventType:  "PRODUCT_UPDATED",
			ProductID:  product.ID,
			Name:       product.Name,
			Price:      product.Price,
			Stock:      product.Stock,
			CategoryID: product.CategoryID,
			Timestamp:  time.Now(),
		}
		if err := s.publishEvent(ctx, product.ID.String(), event); err != nil {
			// Товар уже обновлен, проблемы с Kafka не критичны для основной операции
			logger.Warn().Err(err).Msg("Failed to publish product updated event")
		}
	}

	return product, nil
}

// DeleteProduct удаляет товар
// Товар с позициями продаж не удаляется
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID, actor string) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		if errors.Is(err, repository.ErrProductHasSales) {
			return ErrProductHasSales
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.recordAudit(ctx, "delete", "product", id.String(), actor, "")

	return nil
}

// invalidateCategoriesCache сбрасывает кеш списка категорий
func (s *CatalogService) invalidateCategoriesCache(ctx context.Context) {
	if err := s.cache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate categories cache")
	}
}

// recordAudit пишет запись в журнал изменений
// Ошибки журнала не прерывают основную операцию
func (s *CatalogService) recordAudit(ctx context.Context, action, entityName, entityID, actor, details string) {
	if actor == "" {
		actor = "system"
	}

	record := &entity.AuditRecord{
		Action:   action,
		Entity:   entityName,
		EntityID: entityID,
		Actor:    actor,
		Details:  details,
	}

	if err := s.auditRepo.Record(ctx, record); err != nil {
		logger.Warn().Err(err).
			Str("entity", entityName).
			Str("action", action).
			Msg("Failed to record audit entry")
	}
}

// publishEvent сериализует событие и отправляет его в Kafka
func (s *CatalogService) publishEvent(ctx context.Context, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := s.publisher.PublishMessage(ctx, key, data); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}
