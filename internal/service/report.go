package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mini-ecommerce/internal/dto"
	"mini-ecommerce/internal/repository"
)

// SalesMode selects how the sales report is produced.
type SalesMode string

const (
	// ModeLive aggregates directly over the transactional order history
	// (HTAP): always current, scans full history on every call.
	ModeLive SalesMode = "htap"
	// ModePrecomputed reads the batch-refreshed summary table (OLAP):
	// cheap to read, stale up to the last refresh.
	ModePrecomputed SalesMode = "olap"
)

type ReportService interface {
	GetSalesSummary(ctx context.Context, mode SalesMode) (*dto.SalesReport, error)
	RefreshSummary(ctx context.Context) error
}

type reportServiceImpl struct {
	db         *gorm.DB
	reportRepo repository.ReportRepository
}

func NewReportService(db *gorm.DB, reportRepo repository.ReportRepository) ReportService {
	return &reportServiceImpl{
		db:         db,
		reportRepo: reportRepo,
	}
}

func (s *reportServiceImpl) GetSalesSummary(ctx context.Context, mode SalesMode) (*dto.SalesReport, error) {
	var (
		rows        []*repository.SalesRow
		refreshedAt *time.Time
		err         error
	)

	switch mode {
	case ModePrecomputed:
		rows, refreshedAt, err = s.reportRepo.ReadSummary(ctx)
	case ModeLive:
		rows, err = s.reportRepo.LiveSales(ctx)
	default:
		return nil, fmt.Errorf("unknown sales mode %q", mode)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read sales: %w", ErrStoreUnavailable, err)
	}

	report := &dto.SalesReport{
		Mode:        string(mode),
		Rows:        make([]*dto.ProductSales, len(rows)),
		RefreshedAt: refreshedAt,
	}
	for i, row := range rows {
		report.Rows[i] = &dto.ProductSales{
			ProductID: row.ProductID,
			Name:      row.Name,
			Units:     row.Units,
			Revenue:   row.Revenue,
		}
	}

	return report, nil
}

// RefreshSummary rebuilds the precomputed summary from live order history
// and stamps the refresh time. It replaces the original's batch procedure
// and is only ever invoked on demand; readers judge staleness from the
// stamp, never from any assumed cadence.
func (s *reportServiceImpl) RefreshSummary(ctx context.Context) error {
	refreshedAt := time.Now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.reportRepo.ReplaceSummary(ctx, tx, refreshedAt)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	return nil
}
