package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brew-stock/internal/config"
	"brew-stock/internal/domain"
	"brew-stock/internal/events"
	"brew-stock/internal/repository"
	"brew-stock/internal/stock"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultEditWindow is how long staff may correct their own counts
const DefaultEditWindow = 2 * time.Hour

var (
	ErrInvalidQuantity  = errors.New("quantity must be between 0 and 999999999.999")
	ErrFutureDate       = errors.New("stock cannot be recorded for a future date")
	ErrProductInactive  = errors.New("product is inactive")
	ErrEditWindowClosed = errors.New("edit window has closed for this entry")
	ErrNotEntryOwner    = errors.New("only the recording user or an owner can edit this entry")
	ErrInvalidDateRange = errors.New("from date must not be after to date")
)

// Actor is the authenticated user performing an operation
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) IsOwner() bool {
	return a.Role == domain.RoleOwner
}

// SubmitStockInput is one remaining-quantity count. A zero Date means today.
type SubmitStockInput struct {
	ProductID uuid.UUID
	Date      time.Time
	Quantity  float64
	Note      string
}

// StockService records and corrects daily counts
type StockService interface {
	Submit(ctx context.Context, actor Actor, input SubmitStockInput) (*domain.StockLogEntry, error)
	Edit(ctx context.Context, actor Actor, entryID uuid.UUID, quantity float64, note *string) (*domain.StockLogEntry, error)
	List(ctx context.Context, from, to time.Time, productID *uuid.UUID) ([]*domain.StockLogEntry, error)
}

type stockService struct {
	stockRepo   repository.StockLogRepository
	productRepo repository.ProductRepository
	publisher   events.Publisher
	logger      *zap.Logger
	editWindow  time.Duration
	location    *time.Location
	now         func() time.Time
}

// NewStockService creates a new instance of StockService
func NewStockService(
	stockRepo repository.StockLogRepository,
	productRepo repository.ProductRepository,
	publisher events.Publisher,
	stockConfig config.StockConfig,
	logger *zap.Logger,
) StockService {
	editWindow := stockConfig.EditWindow
	if editWindow <= 0 {
		editWindow = DefaultEditWindow
	}
	location := stockConfig.Location
	if location == nil {
		location = time.Local
	}

	return &stockService{
		stockRepo:   stockRepo,
		productRepo: productRepo,
		publisher:   publisher,
		logger:      logger,
		editWindow:  editWindow,
		location:    location,
		now:         time.Now,
	}
}

// Submit stores the count for (product, date), replacing an earlier count
// for the same day
func (s *stockService) Submit(ctx context.Context, actor Actor, input SubmitStockInput) (*domain.StockLogEntry, error) {
	if input.Quantity < 0 || input.Quantity > domain.MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	now := s.now().UTC()
	today := domain.Day(now.In(s.location))
	date := today
	if !input.Date.IsZero() {
		date = domain.Day(input.Date)
	}
	if date.After(today) {
		return nil, ErrFutureDate
	}

	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, ErrProductInactive
	}

	entry := &domain.StockLogEntry{
		ID:         uuid.New(),
		ProductID:  product.ID,
		Date:       date,
		Quantity:   input.Quantity,
		RecordedBy: actor.ID,
		Note:       input.Note,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.stockRepo.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record stock: %w", err)
	}

	s.publish(ctx, product, entry)
	return entry, nil
}

// Edit corrects a count. Owners may edit any entry; staff only their own,
// and only within the edit window after it was first recorded.
func (s *stockService) Edit(ctx context.Context, actor Actor, entryID uuid.UUID, quantity float64, note *string) (*domain.StockLogEntry, error) {
	if quantity < 0 || quantity > domain.MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	entry, err := s.stockRepo.FindByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if !actor.IsOwner() {
		if entry.RecordedBy != actor.ID {
			return nil, ErrNotEntryOwner
		}
		if s.now().Sub(entry.CreatedAt) > s.editWindow {
			return nil, ErrEditWindowClosed
		}
	}

	entry.Quantity = quantity
	if note != nil {
		entry.Note = *note
	}
	entry.UpdatedAt = s.now().UTC()

	if err := s.stockRepo.Update(ctx, entry); err != nil {
		return nil, err
	}

	if product, err := s.productRepo.FindByID(ctx, entry.ProductID); err == nil {
		s.publish(ctx, product, entry)
	}

	return entry, nil
}

// List returns counts in [from, to], optionally for a single product
func (s *stockService) List(ctx context.Context, from, to time.Time, productID *uuid.UUID) ([]*domain.StockLogEntry, error) {
	if !from.IsZero() && !to.IsZero() && domain.Day(from).After(domain.Day(to)) {
		return nil, ErrInvalidDateRange
	}

	filter := repository.StockLogFilter{From: from, To: to}
	if productID != nil {
		filter.ProductIDs = []uuid.UUID{*productID}
	}

	entries, err := s.stockRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock logs: %w", err)
	}
	return entries, nil
}

// publish emits a stock.recorded event. Delivery failures are logged and
// never fail the write that triggered them.
func (s *stockService) publish(ctx context.Context, product *domain.Product, entry *domain.StockLogEntry) {
	event := events.StockRecorded{
		EntryID:      entry.ID.String(),
		ProductID:    product.ID.String(),
		ProductName:  product.Name,
		Date:         entry.Date.Format(domain.DateLayout),
		Quantity:     entry.Quantity,
		MinimumStock: product.MinimumStock,
		Status:       string(stock.ClassifyStatus(entry.Quantity, product.MinimumStock)),
		RecordedBy:   entry.RecordedBy.String(),
		RecordedAt:   entry.UpdatedAt,
	}

	if err := s.publisher.PublishStockRecorded(ctx, event); err != nil {
		s.logger.Warn("Failed to publish stock event",
			zap.Error(err),
			zap.String("product_id", event.ProductID),
		)
	}
}
