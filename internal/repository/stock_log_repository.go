package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"brew-stock/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrStockLogNotFound = errors.New("stock log entry not found")
)

// StockLogFilter narrows a stock log query. Zero dates are unbounded.
type StockLogFilter struct {
	From       time.Time
	To         time.Time
	ProductIDs []uuid.UUID
}

// StockLogRepository defines the interface for stock count data access
type StockLogRepository interface {
	Upsert(ctx context.Context, entry *domain.StockLogEntry) error
	Update(ctx context.Context, entry *domain.StockLogEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.StockLogEntry, error)
	List(ctx context.Context, filter StockLogFilter) ([]*domain.StockLogEntry, error)
	LatestQuantities(ctx context.Context) (map[uuid.UUID]float64, error)
}

type stockLogRepository struct {
	db *sql.DB
}

// NewStockLogRepository creates a new instance of StockLogRepository
func NewStockLogRepository(db *sql.DB) StockLogRepository {
	return &stockLogRepository{db: db}
}

const stockLogColumns = `id, product_id, date, quantity, recorded_by, COALESCE(note, ''), created_at, updated_at`

// Upsert records the count for (product, date). A second count for the same
// day overwrites the first; the original id and created_at are kept and
// written back into entry.
func (r *stockLogRepository) Upsert(ctx context.Context, entry *domain.StockLogEntry) error {
	query := `
		INSERT INTO stock_logs (id, product_id, date, quantity, recorded_by, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (product_id, date) DO UPDATE
		SET quantity = EXCLUDED.quantity,
		    recorded_by = EXCLUDED.recorded_by,
		    note = EXCLUDED.note,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		entry.ID,
		entry.ProductID,
		domain.Day(entry.Date),
		entry.Quantity,
		entry.RecordedBy,
		entry.Note,
		entry.CreatedAt,
		entry.UpdatedAt,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert stock log: %w", err)
	}

	return nil
}

// Update changes the quantity and note of an existing entry
func (r *stockLogRepository) Update(ctx context.Context, entry *domain.StockLogEntry) error {
	query := `
		UPDATE stock_logs
		SET quantity = $2, note = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, entry.ID, entry.Quantity, entry.Note, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update stock log: %w", err)
	}

	return expectRow(result, ErrStockLogNotFound)
}

// FindByID retrieves a single stock log entry
func (r *stockLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.StockLogEntry, error) {
	query := `SELECT ` + stockLogColumns + ` FROM stock_logs WHERE id = $1`

	entry, err := scanStockLog(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStockLogNotFound
		}
		return nil, fmt.Errorf("failed to find stock log by ID: %w", err)
	}

	return entry, nil
}

// List retrieves entries matching the filter ordered by date
func (r *stockLogRepository) List(ctx context.Context, filter StockLogFilter) ([]*domain.StockLogEntry, error) {
	query := `SELECT ` + stockLogColumns + ` FROM stock_logs WHERE TRUE`
	args := []interface{}{}

	if !filter.From.IsZero() {
		args = append(args, domain.Day(filter.From))
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, domain.Day(filter.To))
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	if len(filter.ProductIDs) > 0 {
		ids := make([]string, 0, len(filter.ProductIDs))
		for _, id := range filter.ProductIDs {
			ids = append(ids, id.String())
		}
		args = append(args, ids)
		query += fmt.Sprintf(" AND product_id::text = ANY($%d)", len(args))
	}
	query += " ORDER BY date ASC, created_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock logs: %w", err)
	}
	defer rows.Close()

	entries := []*domain.StockLogEntry{}
	for rows.Next() {
		entry, err := scanStockLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock log: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock logs: %w", err)
	}

	return entries, nil
}

// LatestQuantities returns the most recent count of every product that has one
func (r *stockLogRepository) LatestQuantities(ctx context.Context) (map[uuid.UUID]float64, error) {
	query := `
		SELECT DISTINCT ON (product_id) product_id, quantity
		FROM stock_logs
		ORDER BY product_id, date DESC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest quantities: %w", err)
	}
	defer rows.Close()

	latest := make(map[uuid.UUID]float64)
	for rows.Next() {
		var productID uuid.UUID
		var quantity float64
		if err := rows.Scan(&productID, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan latest quantity: %w", err)
		}
		latest[productID] = quantity
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating latest quantities: %w", err)
	}

	return latest, nil
}

func scanStockLog(row rowScanner) (*domain.StockLogEntry, error) {
	entry := &domain.StockLogEntry{}
	err := row.Scan(
		&entry.ID,
		&entry.ProductID,
		&entry.Date,
		&entry.Quantity,
		&entry.RecordedBy,
		&entry.Note,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}
