// Package stock derives daily usage, weekly trends and stock status from
// recorded remaining-quantity counts. Everything here is a pure function of
// rows already loaded from storage.
package stock

import (
	"time"

	"brew-stock/internal/domain"

	"github.com/google/uuid"
)

// Pair holds a product's counts on two calendar days
type Pair struct {
	Earlier *domain.StockLogEntry
	Later   *domain.StockLogEntry
}

// PairSnapshots groups entries by product and picks the count recorded on
// each target day. Time of day is ignored on both sides of the comparison.
// Products with no count on either day are not in the result.
func PairSnapshots(entries []*domain.StockLogEntry, earlier, later time.Time) map[uuid.UUID]*Pair {
	earlierDay := domain.Day(earlier)
	laterDay := domain.Day(later)

	pairs := make(map[uuid.UUID]*Pair)
	for _, entry := range entries {
		if entry == nil {
			continue
		}

		day := domain.Day(entry.Date)
		onEarlier := day.Equal(earlierDay)
		onLater := day.Equal(laterDay)
		if !onEarlier && !onLater {
			continue
		}

		pair, ok := pairs[entry.ProductID]
		if !ok {
			pair = &Pair{}
			pairs[entry.ProductID] = pair
		}

		if onEarlier {
			pair.Earlier = latestOf(pair.Earlier, entry)
		}
		if onLater {
			pair.Later = latestOf(pair.Later, entry)
		}
	}

	return pairs
}

// latestOf keeps the most recently created entry; ties keep the current one
func latestOf(current, candidate *domain.StockLogEntry) *domain.StockLogEntry {
	if current == nil || candidate.CreatedAt.After(current.CreatedAt) {
		return candidate
	}
	return current
}
