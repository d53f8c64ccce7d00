package stock

import (
	"time"

	"brew-stock/internal/domain"

	"github.com/google/uuid"
)

var baseDay = time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC) // a Sunday

func newProduct(name, unit string, minimum float64) *domain.Product {
	return &domain.Product{
		ID:           uuid.New(),
		Name:         name,
		Unit:         unit,
		MinimumStock: minimum,
		Active:       true,
	}
}

func newEntry(product *domain.Product, day time.Time, quantity float64) *domain.StockLogEntry {
	return &domain.StockLogEntry{
		ID:        uuid.New(),
		ProductID: product.ID,
		Date:      day,
		Quantity:  quantity,
		CreatedAt: day.Add(9 * time.Hour),
	}
}
