package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lavka/internal/app/inventory/entity"
	"lavka/internal/app/inventory/repository"

	"github.com/google/uuid"
)

var (
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrCustomerAlreadyExists = errors.New("customer with this email already exists")
)

// CustomerService обрабатывает бизнес-логику покупателей
type CustomerService struct {
	customerRepo repository.CustomerRepository
	saleRepo     repository.SaleRepository
	auditRepo    repository.AuditRepository
}

// NewCustomerService создает новый сервис покупателей
func NewCustomerService(
	customerRepo repository.CustomerRepository,
	saleRepo repository.SaleRepository,
	auditRepo repository.AuditRepository,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		saleRepo:     saleRepo,
		auditRepo:    auditRepo,
	}
}

// CreateCustomer создает нового покупателя
func (s *CustomerService) CreateCustomer(ctx context.Context, req *entity.CreateCustomerRequest, actor string) (*entity.Customer, error) {
	customer := &entity.Customer{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrCustomerAlreadyExists) {
			return nil, ErrCustomerAlreadyExists
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.recordAudit(ctx, "create", customer.ID.String(), actor)

	return customer, nil
}

// GetCustomer получает покупателя по ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return customer, nil
}

// GetAllCustomers получает всех покупателей с опциональным поиском по имени и email
func (s *CustomerService) GetAllCustomers(ctx context.Context, search string) ([]entity.Customer, error) {
	customers, err := s.customerRepo.GetAll(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("failed to get customers: %w", err)
	}

	return customers, nil
}

// UpdateCustomer обновляет покупателя
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uuid.UUID, req *entity.UpdateCustomerRequest, actor string) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if req.Name != "" {
		customer.Name = req.Name
	}
	if req.Email != "" {
		customer.Email = req.Email
	}
	if req.Phone != "" {
		customer.Phone = req.Phone
	}
	if req.Address != "" {
		customer.Address = req.Address
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrCustomerAlreadyExists) {
			return nil, ErrCustomerAlreadyExists
		}
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	s.recordAudit(ctx, "update", customer.ID.String(), actor)

	return customer, nil
}

// DeleteCustomer удаляет покупателя вместе с его продажами
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID, actor string) error {
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.recordAudit(ctx, "delete", id.String(), actor)

	return nil
}

// GetPurchaseHistory получает все продажи покупателя, новые первыми
// Покупатель без продаж получает пустой список
func (s *CustomerService) GetPurchaseHistory(ctx context.Context, customerID uuid.UUID) ([]entity.Sale, error) {
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to verify customer: %w", err)
	}

	sales, err := s.saleRepo.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase history: %w", err)
	}

	return sales, nil
}

func (s *CustomerService) recordAudit(ctx context.Context, action, entityID, actor string) {
	if actor == "" {
		actor = "system"
	}

	record := &entity.AuditRecord{
		Action:   action,
		Entity:   "customer",
		EntityID: entityID,
		Actor:    actor,
	}

	// Ошибки журнала не прерывают основную операцию
	_ = s.auditRepo.Record(ctx, record)
}
