package stock

import (
	"math"
	"sort"
	"time"

	"brew-stock/internal/domain"

	"github.com/google/uuid"
)

const (
	// rankedProducts is the length of the most/least used lists
	rankedProducts = 5
	// trendThreshold is the percentage change beyond which a trend is up or down
	trendThreshold = 5.0
	daysPerWeek    = 7
)

// TrendDirection labels a week-over-week change
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// WeekBounds returns the Sunday and Saturday of the week containing now,
// shifted back by offset weeks.
func WeekBounds(now time.Time, offset int) (start, end time.Time) {
	day := domain.Day(now).AddDate(0, 0, -daysPerWeek*offset)
	start = day.AddDate(0, 0, -int(day.Weekday()))
	end = start.AddDate(0, 0, daysPerWeek-1)
	return start, end
}

// ReportRange is the inclusive date span a weekly report needs: the
// previous week's Sunday through the target week's Saturday.
func ReportRange(weekStart time.Time) (from, to time.Time) {
	start := domain.Day(weekStart)
	return start.AddDate(0, 0, -daysPerWeek), start.AddDate(0, 0, daysPerWeek-1)
}

// WeeklyReport is the week-over-week usage report
type WeeklyReport struct {
	WeekStart  string           `json:"weekStart"`
	WeekEnd    string           `json:"weekEnd"`
	Summary    WeeklySummary    `json:"summary"`
	DailyUsage []DailyBreakdown `json:"dailyUsage"`
	Trends     []Trend          `json:"trends"`
}

// WeeklySummary aggregates the target week
type WeeklySummary struct {
	TotalUsage        Quantity       `json:"totalUsage"`
	TotalProducts     int            `json:"totalProducts"`
	MostUsedProducts  []ProductTotal `json:"mostUsedProducts"`
	LeastUsedProducts []ProductTotal `json:"leastUsedProducts"`
}

// ProductTotal is a product's summed usage over a week
type ProductTotal struct {
	ProductID  string   `json:"productId"`
	Name       string   `json:"name"`
	TotalUsage Quantity `json:"totalUsage"`
	Unit       string   `json:"unit"`
}

// DailyBreakdown is the usage recorded on one day of the target week
type DailyBreakdown struct {
	Date         string              `json:"date"`
	ProductCount int                 `json:"productCount"`
	Products     []DailyProductUsage `json:"products"`
}

// DailyProductUsage is one product's usage on a day
type DailyProductUsage struct {
	Name string   `json:"name"`
	Used Quantity `json:"used"`
	Unit string   `json:"unit"`
}

// Trend compares a product's usage with the week before
type Trend struct {
	ProductID    string         `json:"productId"`
	Name         string         `json:"name"`
	Unit         string         `json:"unit"`
	CurrentWeek  Quantity       `json:"currentWeek"`
	PreviousWeek Quantity       `json:"previousWeek"`
	Percentage   float64        `json:"percentage"`
	Trend        TrendDirection `json:"trend"`

	change float64
}

// BuildWeeklyReport computes day-over-day usage for the week starting at
// weekStart and for the week before it. entries should span ReportRange.
//
// Only products with at least one day of usage enter the weekly totals, so
// a product that was never consumed can appear in neither the most nor the
// least used list.
func BuildWeeklyReport(products []*domain.Product, entries []*domain.StockLogEntry, weekStart time.Time) WeeklyReport {
	start := domain.Day(weekStart)
	previousStart := start.AddDate(0, 0, -daysPerWeek)

	current := make(map[uuid.UUID]float64)
	previous := make(map[uuid.UUID]float64)
	daily := make([]DailyBreakdown, 0, daysPerWeek)

	for i := 0; i < daysPerWeek; i++ {
		day := start.AddDate(0, 0, i)
		records := usageOn(products, entries, day)

		breakdown := DailyBreakdown{
			Date:         day.Format(domain.DateLayout),
			ProductCount: len(records),
			Products:     make([]DailyProductUsage, 0, len(records)),
		}
		for _, r := range records {
			current[r.ProductID] += r.Used
			breakdown.Products = append(breakdown.Products, DailyProductUsage{
				Name: r.Name,
				Used: Quantity(r.Used),
				Unit: r.Unit,
			})
		}
		daily = append(daily, breakdown)

		for _, r := range usageOn(products, entries, previousStart.AddDate(0, 0, i)) {
			previous[r.ProductID] += r.Used
		}
	}

	totals := make([]ProductTotal, 0, len(current))
	trends := make([]Trend, 0, len(current))
	var totalUsage float64

	for _, product := range products {
		used, ok := current[product.ID]
		if !ok {
			continue
		}
		totalUsage += used

		totals = append(totals, ProductTotal{
			ProductID:  product.ID.String(),
			Name:       product.Name,
			TotalUsage: Quantity(used),
			Unit:       product.Unit,
		})

		// the label follows the published one-decimal figure; ordering uses
		// the exact change
		change := PercentageChange(used, previous[product.ID])
		shown := math.Round(change*10) / 10
		trends = append(trends, Trend{
			ProductID:    product.ID.String(),
			Name:         product.Name,
			Unit:         product.Unit,
			CurrentWeek:  Quantity(used),
			PreviousWeek: Quantity(previous[product.ID]),
			Percentage:   shown,
			Trend:        ClassifyTrend(shown),
			change:       change,
		})
	}

	sort.SliceStable(trends, func(i, j int) bool {
		return math.Abs(trends[i].change) > math.Abs(trends[j].change)
	})

	return WeeklyReport{
		WeekStart: start.Format(domain.DateLayout),
		WeekEnd:   start.AddDate(0, 0, daysPerWeek-1).Format(domain.DateLayout),
		Summary: WeeklySummary{
			TotalUsage:        Quantity(totalUsage),
			TotalProducts:     len(totals),
			MostUsedProducts:  rankTotals(totals, true),
			LeastUsedProducts: rankTotals(totals, false),
		},
		DailyUsage: daily,
		Trends:     trends,
	}
}

// PercentageChange is the relative change from previous to current. With
// nothing to compare against it is zero.
func PercentageChange(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// ClassifyTrend labels a percentage change
func ClassifyTrend(percentage float64) TrendDirection {
	switch {
	case percentage > trendThreshold:
		return TrendUp
	case percentage < -trendThreshold:
		return TrendDown
	default:
		return TrendStable
	}
}

func usageOn(products []*domain.Product, entries []*domain.StockLogEntry, day time.Time) []UsageRecord {
	return DailyUsage(products, PairSnapshots(entries, day.AddDate(0, 0, -1), day))
}

func rankTotals(totals []ProductTotal, descending bool) []ProductTotal {
	ranked := make([]ProductTotal, len(totals))
	copy(ranked, totals)

	sort.SliceStable(ranked, func(i, j int) bool {
		if descending {
			return ranked[i].TotalUsage > ranked[j].TotalUsage
		}
		return ranked[i].TotalUsage < ranked[j].TotalUsage
	})

	if len(ranked) > rankedProducts {
		ranked = ranked[:rankedProducts]
	}
	return ranked
}
