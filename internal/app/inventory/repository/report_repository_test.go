package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"lavka/internal/app/inventory/entity"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ReportRepositoryTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo ReportRepository
}

func TestReportRepositorySuite(t *testing.T) {
	suite.Run(t, new(ReportRepositoryTestSuite))
}

func (s *ReportRepositoryTestSuite) SetupTest() {
	var err error
	s.mock, err = pgxmock.NewPool()
	require.NoError(s.T(), err)

	s.repo = NewReportRepository(s.mock)
}

func (s *ReportRepositoryTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.mock.Close()
}

// Отсутствующая граница периода передается в запрос как NULL
var noBound *time.Time

// ===================== TotalCompletedSales Tests =====================

func (s *ReportRepositoryTestSuite) TestTotalCompletedSales_CountsOnlyCompleted() {
	ctx := context.Background()

	// В сумму попадают только завершенные продажи, pending и cancelled отфильтрованы в SQL
	s.mock.ExpectQuery(regexp.QuoteMeta("WHERE status = 'completed'")).
		WithArgs(noBound, noBound).
		WillReturnRows(pgxmock.NewRows([]string{"total"}).AddRow(3500.50))

	total, err := s.repo.TotalCompletedSales(ctx, nil, nil)

	s.NoError(err)
	s.Equal(3500.50, total)
}

func (s *ReportRepositoryTestSuite) TestTotalCompletedSales_WithDateRange() {
	ctx := context.Background()
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)

	// Обе границы доходят до запроса как есть
	s.mock.ExpectQuery(regexp.QuoteMeta("WHERE status = 'completed'")).
		WithArgs(&from, &to).
		WillReturnRows(pgxmock.NewRows([]string{"total"}).AddRow(1200.00))

	total, err := s.repo.TotalCompletedSales(ctx, &from, &to)

	s.NoError(err)
	s.Equal(1200.00, total)
}

func (s *ReportRepositoryTestSuite) TestTotalCompletedSales_NoSalesReturnsZero() {
	ctx := context.Background()

	// COALESCE дает 0 вместо NULL при пустой таблице
	s.mock.ExpectQuery(regexp.QuoteMeta("COALESCE(SUM(total_amount), 0)")).
		WithArgs(noBound, noBound).
		WillReturnRows(pgxmock.NewRows([]string{"total"}).AddRow(0.0))

	total, err := s.repo.TotalCompletedSales(ctx, nil, nil)

	s.NoError(err)
	s.Zero(total)
}

func (s *ReportRepositoryTestSuite) TestTotalCompletedSales_QueryError() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta("FROM sales")).
		WithArgs(noBound, noBound).
		WillReturnError(errors.New("connection refused"))

	total, err := s.repo.TotalCompletedSales(ctx, nil, nil)

	s.Error(err)
	s.Zero(total)
}

// ===================== SalesByDay Tests =====================

func (s *ReportRepositoryTestSuite) TestSalesByDay_CompletedOnlyGroupedByDay() {
	ctx := context.Background()
	day1 := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	s.mock.ExpectQuery(`(?s)status = 'completed'.*GROUP BY day.*ORDER BY day ASC`).
		WithArgs(noBound, noBound).
		WillReturnRows(pgxmock.NewRows([]string{"day", "total"}).
			AddRow(day1, 500.00).
			AddRow(day2, 700.50))

	series, err := s.repo.SalesByDay(ctx, nil, nil)

	s.NoError(err)
	s.Require().Len(series, 2)
	s.Equal(day1, series[0].Day)
	s.Equal(500.00, series[0].Total)
	s.Equal(day2, series[1].Day)
	s.Equal(700.50, series[1].Total)
}

func (s *ReportRepositoryTestSuite) TestSalesByDay_EmptyPeriod() {
	ctx := context.Background()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	s.mock.ExpectQuery(regexp.QuoteMeta("GROUP BY day")).
		WithArgs(&from, &to).
		WillReturnRows(pgxmock.NewRows([]string{"day", "total"}))

	series, err := s.repo.SalesByDay(ctx, &from, &to)

	s.NoError(err)
	s.Empty(series)
}

// ===================== TopProducts Tests =====================

func (s *ReportRepositoryTestSuite) TestTopProducts_OrderedByRevenue() {
	ctx := context.Background()

	s.mock.ExpectQuery(`(?s)FROM sale_items si.*JOIN products p ON p\.id = si\.product_id.*ORDER BY total_sales DESC`).
		WithArgs(3).
		WillReturnRows(pgxmock.NewRows([]string{"name", "total_quantity", "total_sales"}).
			AddRow("Мед алтайский", int64(40), 4800.00).
			AddRow("Гречка", int64(120), 3600.00))

	top, err := s.repo.TopProducts(ctx, 3)

	s.NoError(err)
	s.Require().Len(top, 2)
	s.Equal("Мед алтайский", top[0].ProductName)
	s.Equal(int64(40), top[0].TotalQuantity)
	s.Equal(4800.00, top[0].TotalSales)
	s.Equal("Гречка", top[1].ProductName)
}

func (s *ReportRepositoryTestSuite) TestTopProducts_QueryError() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta("FROM sale_items")).
		WithArgs(5).
		WillReturnError(errors.New("relation does not exist"))

	top, err := s.repo.TopProducts(ctx, 5)

	s.Error(err)
	s.Nil(top)
}

// ===================== RecentCompletedSales Tests =====================

func (s *ReportRepositoryTestSuite) TestRecentCompletedSales_Success() {
	ctx := context.Background()
	saleID := uuid.New()
	customerID := uuid.New()
	now := time.Now()

	s.mock.ExpectQuery(`(?s)WHERE status = 'completed'.*ORDER BY created_at DESC`).
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"id", "customer_id", "sale_date", "total_amount", "status", "created_at", "updated_at"}).
			AddRow(saleID, customerID, now, 199.99, entity.SaleStatusCompleted, now, now))

	sales, err := s.repo.RecentCompletedSales(ctx, 5)

	s.NoError(err)
	s.Require().Len(sales, 1)
	s.Equal(saleID, sales[0].ID)
	s.Equal(customerID, sales[0].CustomerID)
	s.Equal(199.99, sales[0].TotalAmount)
	s.Equal(entity.SaleStatusCompleted, sales[0].Status)
}

// ===================== LowStockProducts Tests =====================

func (s *ReportRepositoryTestSuite) TestLowStockProducts_ThresholdIsInclusive() {
	ctx := context.Background()
	outOfStockID := uuid.New()
	boundaryID := uuid.New()

	// Товар с остатком ровно на пороге попадает в выборку: сравнение нестрогое
	s.mock.ExpectQuery(regexp.QuoteMeta("WHERE stock <= $1")).
		WithArgs(10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "stock"}).
			AddRow(outOfStockID, "Гречка", 0).
			AddRow(boundaryID, "Молоко", 10))

	products, err := s.repo.LowStockProducts(ctx, 10)

	s.NoError(err)
	s.Require().Len(products, 2)
	s.Equal(0, products[0].Stock)
	s.Equal(boundaryID, products[1].ID)
	s.Equal(10, products[1].Stock)
}

func (s *ReportRepositoryTestSuite) TestLowStockProducts_ThresholdPassedVerbatim() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta("WHERE stock <= $1")).
		WithArgs(25).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "stock"}))

	products, err := s.repo.LowStockProducts(ctx, 25)

	s.NoError(err)
	s.Empty(products)
}

func (s *ReportRepositoryTestSuite) TestLowStockProducts_QueryError() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta("FROM products")).
		WithArgs(10).
		WillReturnError(errors.New("connection refused"))

	products, err := s.repo.LowStockProducts(ctx, 10)

	s.Error(err)
	s.Nil(products)
}
