package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"brew-stock/internal/domain"
	"brew-stock/internal/stock"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

type reportFixture struct {
	service   *reportService
	products  *mockProductRepository
	stockRepo *mockStockLogRepository
	milk      *domain.Product
	cups      *domain.Product
	beans     *domain.Product
}

func newReportFixture(now time.Time) *reportFixture {
	products := newMockProductRepository(nil)
	milk := &domain.Product{ID: uuid.New(), Name: "Milk", Unit: "L", MinimumStock: 5, Active: true, CategoryName: "Dairy"}
	cups := &domain.Product{ID: uuid.New(), Name: "Paper Cups", Unit: "pcs", MinimumStock: 50, Active: true}
	beans := &domain.Product{ID: uuid.New(), Name: "Beans", Unit: "kg", MinimumStock: 2, Active: true}
	products.add(milk, cups, beans)

	stockRepo := newMockStockLogRepository()
	svc := NewReportService(products, stockRepo, time.UTC).(*reportService)
	svc.now = func() time.Time { return now }

	return &reportFixture{service: svc, products: products, stockRepo: stockRepo, milk: milk, cups: cups, beans: beans}
}

func (f *reportFixture) record(product *domain.Product, date time.Time, quantity float64) {
	f.stockRepo.entries = append(f.stockRepo.entries, &domain.StockLogEntry{
		ID:        uuid.New(),
		ProductID: product.ID,
		Date:      domain.Day(date),
		Quantity:  quantity,
		CreatedAt: date,
	})
}

func TestDashboard(t *testing.T) {
	today := time.Date(2024, 3, 12, 15, 0, 0, 0, time.UTC)
	f := newReportFixture(today)
	yesterday := today.AddDate(0, 0, -1)

	f.record(f.milk, yesterday, 10)
	f.record(f.milk, today, 4)
	f.record(f.cups, yesterday, 20)
	f.record(f.cups, today, 100)

	dashboard, err := f.service.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	if dashboard.Summary.Total != 3 {
		t.Errorf("total = %d, want 3", dashboard.Summary.Total)
	}
	// Milk 4 <= 5 is low, Beans was never counted so it is out
	if dashboard.Summary.LowStock != 1 || dashboard.Summary.OutOfStock != 1 || dashboard.Summary.OK != 1 {
		t.Errorf("unexpected summary %+v", dashboard.Summary)
	}
	if len(dashboard.LowStockProducts) != 2 || dashboard.LowStockProducts[0].Name != "Beans" {
		t.Errorf("out of stock products should come first: %+v", dashboard.LowStockProducts)
	}

	if len(dashboard.TodayUsage) != 1 {
		t.Fatalf("restocks must not appear in usage, got %+v", dashboard.TodayUsage)
	}
	if dashboard.TodayUsage[0].Name != "Milk" || dashboard.TodayUsage[0].Used.String() != "6.00" {
		t.Errorf("unexpected usage %+v", dashboard.TodayUsage[0])
	}
}

func TestDashboard_IgnoresInactiveProducts(t *testing.T) {
	today := time.Date(2024, 3, 12, 15, 0, 0, 0, time.UTC)
	f := newReportFixture(today)
	f.cups.Active = false

	dashboard, err := f.service.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dashboard.Summary.Total != 2 {
		t.Errorf("total = %d, want 2", dashboard.Summary.Total)
	}
}

func TestWeekly_LoadsBothWeeks(t *testing.T) {
	// Wednesday; the current week runs 2024-03-10 to 2024-03-16
	now := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	f := newReportFixture(now)

	f.record(f.milk, time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), 200)
	f.record(f.milk, time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), 100)
	f.record(f.milk, time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC), 150)
	f.record(f.milk, time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC), 30)

	report, err := f.service.Weekly(context.Background(), 0)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}

	if report.WeekStart != "2024-03-10" || report.WeekEnd != "2024-03-16" {
		t.Errorf("week = %s..%s", report.WeekStart, report.WeekEnd)
	}

	filter := f.stockRepo.filters[0]
	if got := filter.From.Format(domain.DateLayout); got != "2024-03-03" {
		t.Errorf("from = %s, want 2024-03-03", got)
	}
	if got := filter.To.Format(domain.DateLayout); got != "2024-03-16" {
		t.Errorf("to = %s, want 2024-03-16", got)
	}

	if len(report.Trends) != 1 {
		t.Fatalf("expected one trend, got %+v", report.Trends)
	}
	trend := report.Trends[0]
	if trend.Percentage != 20 || trend.Trend != stock.TrendUp {
		t.Errorf("unexpected trend %+v", trend)
	}
}

func TestWeekly_RejectsNegativeOffset(t *testing.T) {
	f := newReportFixture(time.Now())
	if _, err := f.service.Weekly(context.Background(), -1); !errors.Is(err, ErrInvalidWeekOffset) {
		t.Errorf("expected ErrInvalidWeekOffset, got %v", err)
	}
}

func TestWeekly_OffsetShiftsWeek(t *testing.T) {
	f := newReportFixture(time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC))

	report, err := f.service.Weekly(context.Background(), 2)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if report.WeekStart != "2024-02-25" || report.WeekEnd != "2024-03-02" {
		t.Errorf("week = %s..%s", report.WeekStart, report.WeekEnd)
	}
}

func TestWeeklyWorkbook(t *testing.T) {
	now := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	f := newReportFixture(now)
	f.record(f.milk, time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC), 10)
	f.record(f.milk, time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC), 4)

	data, filename, err := f.service.WeeklyWorkbook(context.Background(), 0)
	if err != nil {
		t.Fatalf("workbook: %v", err)
	}
	if filename != "weekly-usage-2024-03-10.xlsx" {
		t.Errorf("filename = %s", filename)
	}

	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	want := []string{summarySheet, dailySheet, trendsSheet}
	if len(sheets) != len(want) {
		t.Fatalf("sheets = %v, want %v", sheets, want)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Errorf("sheet %d = %s, want %s", i, sheets[i], want[i])
		}
	}

	rows, err := book.GetRows(dailySheet)
	if err != nil {
		t.Fatalf("read daily sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one usage row, got %v", rows)
	}
	if rows[1][0] != "2024-03-12" || rows[1][1] != "Milk" || rows[1][2] != "6" {
		t.Errorf("unexpected daily row %v", rows[1])
	}

	cell, err := book.GetCellValue(summarySheet, "A2")
	if err != nil || cell != "2024-03-10" {
		t.Errorf("summary A2 = %q (%v)", cell, err)
	}
}
