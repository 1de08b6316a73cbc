package repository

import (
	"context"
	"fmt"
	"time"

	"lavka/internal/app/inventory/entity"
	"lavka/pkg/metrics"

	"github.com/jackc/pgx/v5"
)

const reportService = "inventory-service"

// ReportQuerier покрывает методы pgxpool.Pool, которые нужны отчетным запросам
type ReportQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type reportRepository struct {
	db ReportQuerier // Пул соединений для отчетных запросов, мимо ORM
}

// NewReportRepository создает репозиторий отчетов
// Агрегации выражены обычным SQL через pgx: это запросы только на чтение,
// и ORM здесь ничего не добавляет
func NewReportRepository(db ReportQuerier) ReportRepository {
	return &reportRepository{db: db}
}

// TotalCompletedSales возвращает сумму завершенных продаж
// from и to - опциональные границы по sale_date
func (r *reportRepository) TotalCompletedSales(ctx context.Context, from, to *time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM sales
		WHERE status = 'completed'
		  AND ($1::timestamptz IS NULL OR sale_date >= $1)
		  AND ($2::timestamptz IS NULL OR sale_date <= $2)
	`

	timer := metrics.NewDbTimer(reportService, metrics.DbOpSelect, "sales")
	defer timer.ObserveDuration()

	var total float64
	if err := r.db.QueryRow(ctx, query, from, to).Scan(&total); err != nil {
		metrics.RecordDbError(reportService, metrics.DbOpSelect)
		return 0, fmt.Errorf("failed to get total sales: %w", err)
	}

	return total, nil
}

// SalesByDay возвращает суммы завершенных продаж по дням для графика
func (r *reportRepository) SalesByDay(ctx context.Context, from, to *time.Time) ([]entity.DailySales, error) {
	query := `
		SELECT DATE_TRUNC('day', sale_date) AS day, COALESCE(SUM(total_amount), 0) AS total
		FROM sales
		WHERE status = 'completed'
		  AND ($1::timestamptz IS NULL OR sale_date >= $1)
		  AND ($2::timestamptz IS NULL OR sale_date <= $2)
		GROUP BY day
		ORDER BY day ASC
	`

	timer := metrics.NewDbTimer(reportService, metrics.DbOpSelect, "sales")
	defer timer.ObserveDuration()

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		metrics.RecordDbError(reportService, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get sales by day: %w", err)
	}
	defer rows.Close()

	var series []entity.DailySales
	for rows.Next() {
		var ds entity.DailySales
		if err := rows.Scan(&ds.Day, &ds.Total); err != nil {
			return nil, fmt.Errorf("failed to scan daily sales: %w", err)
		}
		series = append(series, ds)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily sales: %w", err)
	}

	return series, nil
}

// TopProducts возвращает товары с наибольшей выручкой по позициям продаж
func (r *reportRepository) TopProducts(ctx context.Context, limit int) ([]entity.TopProduct, error) {
	query := `
		SELECT p.name, COALESCE(SUM(si.quantity), 0) AS total_quantity, COALESCE(SUM(si.total_price), 0) AS total_sales
		FROM sale_items si
		JOIN products p ON p.id = si.product_id
		GROUP BY p.name
		ORDER BY total_sales DESC
		LIMIT $1
	`

	timer := metrics.NewDbTimer(reportService, metrics.DbOpSelect, "sale_items")
	defer timer.ObserveDuration()

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		metrics.RecordDbError(reportService, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}
	defer rows.Close()

	var top []entity.TopProduct
	for rows.Next() {
		var tp entity.TopProduct
		if err := rows.Scan(&tp.ProductName, &tp.TotalQuantity, &tp.TotalSales); err != nil {
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}
		top = append(top, tp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top products: %w", err)
	}

	return top, nil
}

// RecentCompletedSales возвращает последние завершенные продажи
func (r *reportRepository) RecentCompletedSales(ctx context.Context, limit int) ([]entity.Sale, error) {
	query := `
		SELECT id, customer_id, sale_date, total_amount, status, created_at, updated_at
		FROM sales
		WHERE status = 'completed'
		ORDER BY created_at DESC
		LIMIT $1
	`

	timer := metrics.NewDbTimer(reportService, metrics.DbOpSelect, "sales")
	defer timer.ObserveDuration()

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		metrics.RecordDbError(reportService, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get recent sales: %w", err)
	}
	defer rows.Close()

	var sales []entity.Sale
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(&s.ID, &s.CustomerID, &s.SaleDate, &s.TotalAmount, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent sales: %w", err)
	}

	return sales, nil
}

// LowStockProducts возвращает товары с остатком не выше порога
func (r *reportRepository) LowStockProducts(ctx context.Context, threshold int) ([]entity.LowStockProduct, error) {
	query := `
		SELECT id, name, stock
		FROM products
		WHERE stock <= $1
		ORDER BY stock ASC
	`

	timer := metrics.NewDbTimer(reportService, metrics.DbOpSelect, "products")
	defer timer.ObserveDuration()

	rows, err := r.db.Query(ctx, query, threshold)
	if err != nil {
		metrics.RecordDbError(reportService, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get low stock products: %w", err)
	}
	defer rows.Close()

	var products []entity.LowStockProduct
	for rows.Next() {
		var p entity.LowStockProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan low stock product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating low stock products: %w", err)
	}

	return products, nil
}
