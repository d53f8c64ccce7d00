package stock

import (
	"sort"

	"brew-stock/internal/domain"

	"github.com/google/uuid"
)

// Change classifies the difference between two consecutive counts
type Change int

const (
	NoChange Change = iota
	Usage
	Restock
)

func (c Change) String() string {
	switch c {
	case Usage:
		return "usage"
	case Restock:
		return "restock"
	default:
		return "no-change"
	}
}

// Delta returns earlier minus later. ok is false when either count is
// missing; a missing count is never treated as zero.
func (p *Pair) Delta() (delta float64, ok bool) {
	if p == nil || p.Earlier == nil || p.Later == nil {
		return 0, false
	}
	return p.Earlier.Quantity - p.Later.Quantity, true
}

// ClassifyChange maps a delta to usage, restock or no change
func ClassifyChange(delta float64) Change {
	switch {
	case delta > 0:
		return Usage
	case delta < 0:
		return Restock
	default:
		return NoChange
	}
}

// UsageRecord is the consumption of one product between two days
type UsageRecord struct {
	ProductID uuid.UUID
	Name      string
	Unit      string
	Category  string
	Used      float64
}

// DailyUsage lists products whose count went down between the paired days,
// largest consumption first. Restocks, unchanged counts and products
// missing either count are left out. Equal usages keep product order.
func DailyUsage(products []*domain.Product, pairs map[uuid.UUID]*Pair) []UsageRecord {
	records := make([]UsageRecord, 0)
	for _, product := range products {
		delta, ok := pairs[product.ID].Delta()
		if !ok || ClassifyChange(delta) != Usage {
			continue
		}

		records = append(records, UsageRecord{
			ProductID: product.ID,
			Name:      product.Name,
			Unit:      product.Unit,
			Category:  categoryLabel(product),
			Used:      delta,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Used > records[j].Used
	})

	return records
}

// UsageItem is the serialized form of a usage record
type UsageItem struct {
	ProductID string   `json:"productId"`
	Name      string   `json:"name"`
	Used      Quantity `json:"used"`
	Unit      string   `json:"unit"`
	Category  string   `json:"category"`
}

// UsageItems converts records to their response shape
func UsageItems(records []UsageRecord) []UsageItem {
	items := make([]UsageItem, 0, len(records))
	for _, r := range records {
		items = append(items, UsageItem{
			ProductID: r.ProductID.String(),
			Name:      r.Name,
			Used:      Quantity(r.Used),
			Unit:      r.Unit,
			Category:  r.Category,
		})
	}
	return items
}
