package repository

import (
	"context"
	"mini-ecommerce/internal/model"
	"time"

	"gorm.io/gorm"
)

// SalesRow is one aggregated line of the per-product sales report, shared
// by the live query and the summary table read.
type SalesRow struct {
	ProductID uint
	Name      string
	Units     int64
	Revenue   int64
}

type ReportRepository interface {
	LiveSales(ctx context.Context) ([]*SalesRow, error)
	ReadSummary(ctx context.Context) ([]*SalesRow, *time.Time, error)
	ReplaceSummary(ctx context.Context, tx *gorm.DB, refreshedAt time.Time) error
}

type reportRepoImpl struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepoImpl{
		db: db,
	}
}

const liveSalesQuery = `
SELECT
    p.id   AS product_id,
    p.name AS name,
    COALESCE(SUM(l.quantity), 0)                AS units,
    COALESCE(SUM(l.quantity * l.unit_price), 0) AS revenue
FROM products p
LEFT JOIN order_lines l ON l.product_id = p.id
LEFT JOIN orders o      ON o.id = l.order_id
GROUP BY p.id, p.name
ORDER BY revenue DESC`

// LiveSales aggregates directly over the transactional order history, so the
// result is never stale. Products with no sales report zero.
func (r *reportRepoImpl) LiveSales(ctx context.Context) ([]*SalesRow, error) {
	var rows []*SalesRow
	err := r.db.WithContext(ctx).Raw(liveSalesQuery).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *reportRepoImpl) ReadSummary(ctx context.Context) ([]*SalesRow, *time.Time, error) {
	var summaries []*model.ProductSalesSummary
	err := r.db.WithContext(ctx).
		Order("revenue DESC").
		Find(&summaries).Error

	if err != nil {
		return nil, nil, err
	}

	rows := make([]*SalesRow, len(summaries))
	var refreshedAt *time.Time
	for i, s := range summaries {
		rows[i] = &SalesRow{
			ProductID: s.ProductID,
			Name:      s.Name,
			Units:     s.Units,
			Revenue:   s.Revenue,
		}
		if refreshedAt == nil || s.RefreshedAt.After(*refreshedAt) {
			t := s.RefreshedAt
			refreshedAt = &t
		}
	}

	return rows, refreshedAt, nil
}

// ReplaceSummary rebuilds the summary table from live data inside the
// caller's transaction. This stands in for the original batch procedure.
func (r *reportRepoImpl) ReplaceSummary(ctx context.Context, tx *gorm.DB, refreshedAt time.Time) error {
	var rows []*SalesRow
	if err := tx.WithContext(ctx).Raw(liveSalesQuery).Scan(&rows).Error; err != nil {
		return err
	}

	if err := tx.WithContext(ctx).Exec("DELETE FROM product_sales_summaries").Error; err != nil {
		return err
	}

	if len(rows) == 0 {
		return nil
	}

	summaries := make([]*model.ProductSalesSummary, len(rows))
	for i, row := range rows {
		summaries[i] = &model.ProductSalesSummary{
			ProductID:   row.ProductID,
			Name:        row.Name,
			Units:       row.Units,
			Revenue:     row.Revenue,
			RefreshedAt: refreshedAt,
		}
	}

	return tx.WithContext(ctx).Create(&summaries).Error
}
