package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a stocked item on the shop's inventory list
type Product struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Unit         string     `json:"unit" db:"unit"`
	MinimumStock float64    `json:"minimum_stock" db:"minimum_stock"`
	Active       bool       `json:"active" db:"active"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty" db:"category_id"`
	CategoryName string     `json:"category_name,omitempty" db:"-"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// ProductCount is the number of active products in the category, filled by list queries
	ProductCount int `json:"product_count" db:"-"`
}
