package stock

import (
	"sort"

	"brew-stock/internal/domain"

	"github.com/google/uuid"
)

// Status is the stock level of a product relative to its minimum
type Status string

const (
	StatusOK         Status = "OK"
	StatusLowStock   Status = "LOW_STOCK"
	StatusOutOfStock Status = "OUT_OF_STOCK"
)

// UncategorizedLabel is shown for products without a category
const UncategorizedLabel = "Uncategorized"

// ClassifyStatus compares a count against the product minimum. An empty
// shelf is out of stock even when the minimum is zero.
func ClassifyStatus(quantity, minimum float64) Status {
	switch {
	case quantity <= 0:
		return StatusOutOfStock
	case quantity <= minimum:
		return StatusLowStock
	default:
		return StatusOK
	}
}

// Summary counts active products per status
type Summary struct {
	Total      int `json:"total"`
	OK         int `json:"ok"`
	LowStock   int `json:"lowStock"`
	OutOfStock int `json:"outOfStock"`
}

// LowStockItem is a product that needs attention
type LowStockItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	CurrentStock float64 `json:"currentStock"`
	MinimumStock float64 `json:"minimumStock"`
	Unit         string  `json:"unit"`
	Status       Status  `json:"status"`
	Category     string  `json:"category"`
}

// BuildStockOverview classifies every product against its latest count.
// A product that was never counted is treated as having zero on hand.
// Out-of-stock products come before low-stock ones; order is otherwise kept.
func BuildStockOverview(products []*domain.Product, latest map[uuid.UUID]float64) (Summary, []LowStockItem) {
	summary := Summary{Total: len(products)}
	items := make([]LowStockItem, 0)

	for _, product := range products {
		quantity := latest[product.ID]
		status := ClassifyStatus(quantity, product.MinimumStock)

		switch status {
		case StatusOK:
			summary.OK++
			continue
		case StatusLowStock:
			summary.LowStock++
		case StatusOutOfStock:
			summary.OutOfStock++
		}

		items = append(items, LowStockItem{
			ID:           product.ID.String(),
			Name:         product.Name,
			CurrentStock: quantity,
			MinimumStock: product.MinimumStock,
			Unit:         product.Unit,
			Status:       status,
			Category:     categoryLabel(product),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Status == StatusOutOfStock && items[j].Status != StatusOutOfStock
	})

	return summary, items
}

func categoryLabel(product *domain.Product) string {
	if product.CategoryName == "" {
		return UncategorizedLabel
	}
	return product.CategoryName
}
