package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date wire format
const DateLayout = "2006-01-02"

// MaxQuantity is the largest amount a DECIMAL(12, 3) column holds
const MaxQuantity = 999999999.999

// StockLogEntry is one remaining-quantity count for a product on a calendar day.
// At most one entry exists per (product, date).
type StockLogEntry struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ProductID  uuid.UUID `json:"product_id" db:"product_id"`
	Date       time.Time `json:"date" db:"date"`
	Quantity   float64   `json:"quantity" db:"quantity"`
	RecordedBy uuid.UUID `json:"recorded_by" db:"recorded_by"`
	Note       string    `json:"note,omitempty" db:"note"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Day truncates t to midnight UTC of its own calendar day, ignoring its location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
