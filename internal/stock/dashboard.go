package stock

import (
	"time"

	"brew-stock/internal/domain"

	"github.com/google/uuid"
)

// Dashboard is the owner/staff landing view
type Dashboard struct {
	Summary          Summary        `json:"summary"`
	LowStockProducts []LowStockItem `json:"lowStockProducts"`
	TodayUsage       []UsageItem    `json:"todayUsage"`
}

// BuildDashboard combines the stock overview with today's usage. entries
// must cover yesterday and today; latest holds each product's most recent
// count regardless of date.
func BuildDashboard(products []*domain.Product, latest map[uuid.UUID]float64, entries []*domain.StockLogEntry, today time.Time) Dashboard {
	summary, lowStock := BuildStockOverview(products, latest)

	day := domain.Day(today)
	pairs := PairSnapshots(entries, day.AddDate(0, 0, -1), day)

	return Dashboard{
		Summary:          summary,
		LowStockProducts: lowStock,
		TodayUsage:       UsageItems(DailyUsage(products, pairs)),
	}
}
