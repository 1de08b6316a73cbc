package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"lavka/internal/app/inventory/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type SaleRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  SaleRepository
	sqlDB *sql.DB
}

func TestSaleRepositorySuite(t *testing.T) {
	suite.Run(t, new(SaleRepositoryTestSuite))
}

func (s *SaleRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)

	s.repo = NewSaleRepository(s.db)
}

func (s *SaleRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

func newPendingSale() *entity.Sale {
	return &entity.Sale{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		SaleDate:   time.Now(),
		Status:     entity.SaleStatusPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

// ===================== CreateWithItems Tests =====================

func (s *SaleRepositoryTestSuite) TestCreateWithItems_Success() {
	ctx := context.Background()
	sale := newPendingSale()
	productID := uuid.New()

	productRows := sqlmock.NewRows([]string{"id", "name", "category_id", "price", "stock"}).
		AddRow(productID, "Milk", uuid.New(), 19.99, 10)

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "sales"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE id = $1`)).
		WithArgs(productID).
		WillReturnRows(productRows)
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "sale_items"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET "stock"=stock - $1`)).
		WithArgs(3, productID, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "sales" SET "total_amount"=$1`)).
		WithArgs(59.97, sale.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	items := []entity.SaleItemRequest{
		{ProductID: productID, Quantity: 3},
	}

	// Act
	err := s.repo.CreateWithItems(ctx, sale, items)

	// Assert - итог рассчитан по цене на момент продажи: 3 x 19.99
	s.NoError(err)
	s.Equal(59.97, sale.TotalAmount)
	s.Len(sale.Items, 1)
	s.Equal(19.99, sale.Items[0].UnitPrice)
	s.Equal(59.97, sale.Items[0].TotalPrice)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *SaleRepositoryTestSuite) TestCreateWithItems_InsufficientStock() {
	ctx := context.Background()
	sale := newPendingSale()
	productID := uuid.New()

	productRows := sqlmock.NewRows([]string{"id", "name", "category_id", "price", "stock"}).
		AddRow(productID, "Milk", uuid.New(), 19.99, 2)

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "sales"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE id = $1`)).
		WithArgs(productID).
		WillReturnRows(productRows)
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "sale_items"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	// Условный UPDATE не затронул строк: остатка не хватает
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products" SET "stock"=stock - $1`)).
		WithArgs(5, productID, 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectRollback()

	items := []entity.SaleItemRequest{
		{ProductID: productID, Quantity: 5},
	}

	// Act
	err := s.repo.CreateWithItems(ctx, sale, items)

	// Assert - вся транзакция откатилась
	s.ErrorIs(err, ErrInsufficientStock)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *SaleRepositoryTestSuite) TestCreateWithItems_ProductNotFound() {
	ctx := context.Background()
	sale := newPendingSale()
	productID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "sales"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE id = $1`)).
		WithArgs(productID).
		WillReturnError(gorm.ErrRecordNotFound)
	s.mock.ExpectRollback()

	items := []entity.SaleItemRequest{
		{ProductID: productID, Quantity: 1},
	}

	// Act
	err := s.repo.CreateWithItems(ctx, sale, items)

	// Assert
	s.ErrorIs(err, ErrProductNotFound)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *SaleRepositoryTestSuite) TestCreateWithItems_NoItems() {
	ctx := context.Background()
	sale := newPendingSale()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "sales"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "sales" SET "total_amount"=$1`)).
		WithArgs(0.0, sale.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.CreateWithItems(ctx, sale, nil)

	// Assert - продажа без позиций допустима
	s.NoError(err)
	s.Equal(0.0, sale.TotalAmount)
	s.Empty(sale.Items)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== GetByID Tests =====================

func (s *SaleRepositoryTestSuite) TestGetByID_Success() {
	ctx := context.Background()
	saleID := uuid.New()
	customerID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "customer_id", "sale_date", "total_amount", "status"}).
		AddRow(saleID, customerID, time.Now(), 59.97, "pending")

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sales" WHERE id = $1`)).
		WithArgs(saleID).
		WillReturnRows(rows)

	// Act
	sale, err := s.repo.GetByID(ctx, saleID)

	// Assert
	s.NoError(err)
	s.Equal(saleID, sale.ID)
	s.Equal(entity.SaleStatusPending, sale.Status)
	s.Equal(59.97, sale.TotalAmount)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *SaleRepositoryTestSuite) TestGetByID_NotFound() {
	ctx := context.Background()
	saleID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sales" WHERE id = $1`)).
		WithArgs(saleID).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	sale, err := s.repo.GetByID(ctx, saleID)

	// Assert
	s.Nil(sale)
	s.ErrorIs(err, ErrSaleNotFound)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== GetByCustomerID Tests =====================

func (s *SaleRepositoryTestSuite) TestGetByCustomerID_Empty() {
	ctx := context.Background()
	customerID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "customer_id", "status"})

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sales" WHERE customer_id = $1`)).
		WithArgs(customerID).
		WillReturnRows(rows)

	// Act
	sales, err := s.repo.GetByCustomerID(ctx, customerID)

	// Assert - пустой список, а не nil
	s.NoError(err)
	s.NotNil(sales)
	s.Empty(sales)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *SaleRepositoryTestSuite) TestGetByCustomerID_Success() {
	ctx := context.Background()
	customerID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "customer_id", "total_amount", "status"}).
		AddRow(uuid.New(), customerID, 59.97, "completed").
		AddRow(uuid.New(), customerID, 12.50, "pending")

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sales" WHERE customer_id = $1`)).
		WithArgs(customerID).
		WillReturnRows(rows)

	// Act
	sales, err := s.repo.GetByCustomerID(ctx, customerID)

	// Assert
	s.NoError(err)
	s.Len(sales, 2)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== UpdateStatus Tests =====================

func (s *SaleRepositoryTestSuite) TestUpdateStatus_Success() {
	ctx := context.Background()
	saleID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "sales" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.UpdateStatus(ctx, saleID, entity.SaleStatusCompleted)

	// Assert
	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *SaleRepositoryTestSuite) TestUpdateStatus_NotFound() {
	ctx := context.Background()
	saleID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "sales" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0)) // 0 rows affected
	s.mock.ExpectCommit()

	// Act
	err := s.repo.UpdateStatus(ctx, saleID, entity.SaleStatusCompleted)

	// Assert
	s.ErrorIs(err, ErrSaleNotFound)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Delete Tests =====================

func (s *SaleRepositoryTestSuite) TestDelete_Success() {
	ctx := context.Background()
	saleID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "sales" WHERE id = $1`)).
		WithArgs(saleID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.Delete(ctx, saleID)

	// Assert
	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *SaleRepositoryTestSuite) TestDelete_NotFound() {
	ctx := context.Background()
	saleID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "sales" WHERE id = $1`)).
		WithArgs(saleID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.Delete(ctx, saleID)

	// Assert
	s.ErrorIs(err, ErrSaleNotFound)
	s.NoError(s.mock.ExpectationsWereMet())
}
