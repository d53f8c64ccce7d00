package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"brew-stock/internal/domain"
	"brew-stock/internal/events"
	"brew-stock/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing
type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; !exists {
		return repository.ErrUserNotFound
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (m *mockUserRepository) CountByRole(ctx context.Context, role string) (int, error) {
	count := 0
	for _, user := range m.users {
		if user.Role == role && user.Active {
			count++
		}
	}
	return count, nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func (m *mockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	for _, token := range m.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

func (m *mockRefreshTokenRepository) DeleteExpired(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	var deleted int64
	for key, token := range m.tokens {
		if token.UserID == userID && token.ExpiresAt.Before(now) {
			delete(m.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}

type mockCategoryRepository struct {
	categories map[uuid.UUID]*domain.Category
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[uuid.UUID]*domain.Category)}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	for _, c := range m.categories {
		if c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if _, ok := m.categories[category.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	out := make([]*domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return c, nil
}

// mockProductRepository keeps insertion order so List is deterministic
type mockProductRepository struct {
	products   []*domain.Product
	categories *mockCategoryRepository
}

func newMockProductRepository(categories *mockCategoryRepository) *mockProductRepository {
	return &mockProductRepository{categories: categories}
}

func (m *mockProductRepository) add(products ...*domain.Product) {
	m.products = append(m.products, products...)
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	for _, p := range m.products {
		if p.Name == product.Name {
			return repository.ErrProductAlreadyExists
		}
	}
	copied := *product
	m.products = append(m.products, &copied)
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	for i, p := range m.products {
		if p.ID == product.ID {
			copied := *product
			m.products[i] = &copied
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (m *mockProductRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	for _, p := range m.products {
		if p.ID == id {
			p.Active = active
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			copied := *p
			if m.categories != nil && p.CategoryID != nil {
				if c, ok := m.categories.categories[*p.CategoryID]; ok {
					copied.CategoryName = c.Name
				}
			}
			return &copied, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) List(ctx context.Context, includeInactive bool) ([]*domain.Product, error) {
	out := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		if p.Active || includeInactive {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockStockLogRepository struct {
	entries []*domain.StockLogEntry
	filters []repository.StockLogFilter
}

func newMockStockLogRepository() *mockStockLogRepository {
	return &mockStockLogRepository{}
}

func (m *mockStockLogRepository) Upsert(ctx context.Context, entry *domain.StockLogEntry) error {
	for _, e := range m.entries {
		if e.ProductID == entry.ProductID && e.Date.Equal(entry.Date) {
			entry.ID = e.ID
			entry.CreatedAt = e.CreatedAt
			*e = *entry
			return nil
		}
	}
	copied := *entry
	m.entries = append(m.entries, &copied)
	return nil
}

func (m *mockStockLogRepository) Update(ctx context.Context, entry *domain.StockLogEntry) error {
	for _, e := range m.entries {
		if e.ID == entry.ID {
			*e = *entry
			return nil
		}
	}
	return repository.ErrStockLogNotFound
}

func (m *mockStockLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.StockLogEntry, error) {
	for _, e := range m.entries {
		if e.ID == id {
			copied := *e
			return &copied, nil
		}
	}
	return nil, repository.ErrStockLogNotFound
}

func (m *mockStockLogRepository) List(ctx context.Context, filter repository.StockLogFilter) ([]*domain.StockLogEntry, error) {
	m.filters = append(m.filters, filter)

	wanted := make(map[uuid.UUID]bool, len(filter.ProductIDs))
	for _, id := range filter.ProductIDs {
		wanted[id] = true
	}

	var out []*domain.StockLogEntry
	for _, e := range m.entries {
		if !filter.From.IsZero() && e.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.Date.After(filter.To) {
			continue
		}
		if len(wanted) > 0 && !wanted[e.ProductID] {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockStockLogRepository) LatestQuantities(ctx context.Context) (map[uuid.UUID]float64, error) {
	latest := make(map[uuid.UUID]*domain.StockLogEntry)
	for _, e := range m.entries {
		cur, ok := latest[e.ProductID]
		if !ok || e.Date.After(cur.Date) || (e.Date.Equal(cur.Date) && e.CreatedAt.After(cur.CreatedAt)) {
			latest[e.ProductID] = e
		}
	}
	out := make(map[uuid.UUID]float64, len(latest))
	for id, e := range latest {
		out[id] = e.Quantity
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.StockRecorded
	err    error
}

func (p *recordingPublisher) PublishStockRecorded(ctx context.Context, event events.StockRecorded) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

var errBrokerDown = errors.New("broker unavailable")
