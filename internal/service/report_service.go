package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brew-stock/internal/domain"
	"brew-stock/internal/repository"
	"brew-stock/internal/stock"

	"github.com/google/uuid"
)

var ErrInvalidWeekOffset = errors.New("week offset must not be negative")

// ReportService builds the dashboard and weekly report views
type ReportService interface {
	Dashboard(ctx context.Context) (*stock.Dashboard, error)
	Weekly(ctx context.Context, offset int) (*stock.WeeklyReport, error)
	WeeklyWorkbook(ctx context.Context, offset int) (data []byte, filename string, err error)
}

type reportService struct {
	productRepo repository.ProductRepository
	stockRepo   repository.StockLogRepository
	location    *time.Location
	now         func() time.Time
}

// NewReportService creates a new instance of ReportService
func NewReportService(
	productRepo repository.ProductRepository,
	stockRepo repository.StockLogRepository,
	location *time.Location,
) ReportService {
	if location == nil {
		location = time.Local
	}

	return &reportService{
		productRepo: productRepo,
		stockRepo:   stockRepo,
		location:    location,
		now:         time.Now,
	}
}

// Dashboard is recomputed from fresh rows on every call
func (s *reportService) Dashboard(ctx context.Context) (*stock.Dashboard, error) {
	products, err := s.productRepo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	latest, err := s.stockRepo.LatestQuantities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest quantities: %w", err)
	}

	today := domain.Day(s.now().In(s.location))
	entries, err := s.stockRepo.List(ctx, repository.StockLogFilter{
		From:       today.AddDate(0, 0, -1),
		To:         today,
		ProductIDs: productIDs(products),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load stock logs: %w", err)
	}

	dashboard := stock.BuildDashboard(products, latest, entries, today)
	return &dashboard, nil
}

// Weekly builds the report for the week offset weeks before the current one
func (s *reportService) Weekly(ctx context.Context, offset int) (*stock.WeeklyReport, error) {
	if offset < 0 {
		return nil, ErrInvalidWeekOffset
	}

	products, err := s.productRepo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	weekStart, _ := stock.WeekBounds(s.now().In(s.location), offset)
	from, to := stock.ReportRange(weekStart)

	entries, err := s.stockRepo.List(ctx, repository.StockLogFilter{
		From:       from,
		To:         to,
		ProductIDs: productIDs(products),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load stock logs: %w", err)
	}

	report := stock.BuildWeeklyReport(products, entries, weekStart)
	return &report, nil
}

// WeeklyWorkbook renders the weekly report as an xlsx workbook
func (s *reportService) WeeklyWorkbook(ctx context.Context, offset int) ([]byte, string, error) {
	report, err := s.Weekly(ctx, offset)
	if err != nil {
		return nil, "", err
	}

	data, err := renderWeeklyWorkbook(report)
	if err != nil {
		return nil, "", err
	}

	return data, fmt.Sprintf("weekly-usage-%s.xlsx", report.WeekStart), nil
}

func productIDs(products []*domain.Product) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}
