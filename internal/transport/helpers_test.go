package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"brew-stock/internal/config"
	"brew-stock/internal/domain"
	"brew-stock/internal/middleware"
	"brew-stock/internal/repository"
	"brew-stock/internal/service"
	"brew-stock/internal/stock"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mock repositories for testing
type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
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
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
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

// fakeCatalogService records calls and returns canned results
type fakeCatalogService struct {
	service.CatalogService
	products     []*domain.Product
	createInput  service.ProductInput
	createErr    error
	activeCalled *bool
}

func (f *fakeCatalogService) ListProducts(ctx context.Context, includeInactive bool) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range f.products {
		if p.Active || includeInactive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalogService) CreateProduct(ctx context.Context, input service.ProductInput) (*domain.Product, error) {
	f.createInput = input
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.Product{ID: uuid.New(), Name: input.Name, Unit: input.Unit, MinimumStock: input.MinimumStock, Active: true, CategoryID: input.CategoryID}, nil
}

func (f *fakeCatalogService) SetProductActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Product, error) {
	f.activeCalled = &active
	return &domain.Product{ID: id, Name: "Milk", Active: active}, nil
}

func (f *fakeCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (f *fakeCatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return nil, nil
}

func (f *fakeCatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return repository.ErrCategoryNotFound
}

type fakeStockService struct {
	submitted  *service.SubmitStockInput
	actor      service.Actor
	submitErr  error
	editErr    error
	listFrom   time.Time
	listTo     time.Time
	listFilter *uuid.UUID
}

func (f *fakeStockService) Submit(ctx context.Context, actor service.Actor, input service.SubmitStockInput) (*domain.StockLogEntry, error) {
	f.submitted = &input
	f.actor = actor
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	date := input.Date
	if date.IsZero() {
		date = domain.Day(time.Now())
	}
	return &domain.StockLogEntry{
		ID: uuid.New(), ProductID: input.ProductID, Date: date, Quantity: input.Quantity,
		RecordedBy: actor.ID, Note: input.Note, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}, nil
}

func (f *fakeStockService) Edit(ctx context.Context, actor service.Actor, entryID uuid.UUID, quantity float64, note *string) (*domain.StockLogEntry, error) {
	if f.editErr != nil {
		return nil, f.editErr
	}
	return &domain.StockLogEntry{ID: entryID, Quantity: quantity, RecordedBy: actor.ID}, nil
}

func (f *fakeStockService) List(ctx context.Context, from, to time.Time, productID *uuid.UUID) ([]*domain.StockLogEntry, error) {
	f.listFrom, f.listTo, f.listFilter = from, to, productID
	return nil, nil
}

type fakeReportService struct {
	dashboard  *stock.Dashboard
	weekly     *stock.WeeklyReport
	lastOffset int
}

func (f *fakeReportService) Dashboard(ctx context.Context) (*stock.Dashboard, error) {
	return f.dashboard, nil
}

func (f *fakeReportService) Weekly(ctx context.Context, offset int) (*stock.WeeklyReport, error) {
	f.lastOffset = offset
	return f.weekly, nil
}

func (f *fakeReportService) WeeklyWorkbook(ctx context.Context, offset int) ([]byte, string, error) {
	f.lastOffset = offset
	return []byte("PK-fake-xlsx"), "weekly-usage-2024-03-10.xlsx", nil
}

// testAPI wires every handler behind the real auth middleware
type testAPI struct {
	router      chi.Router
	userService service.UserService
	users       *mockUserRepository
	catalog     *fakeCatalogService
	stock       *fakeStockService
	reports     *fakeReportService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := zap.NewNop()

	users := newMockUserRepository()
	userService := service.NewUserService(users, newMockRefreshTokenRepository(), config.JWTConfig{Secret: "test-secret"})

	api := &testAPI{
		router:      chi.NewRouter(),
		userService: userService,
		users:       users,
		catalog:     &fakeCatalogService{},
		stock:       &fakeStockService{},
		reports:     &fakeReportService{},
	}

	auth := middleware.AuthMiddleware(userService, logger)
	ownerOnly := middleware.RequireOwner(logger)
	passThrough := func(next http.Handler) http.Handler { return next }

	NewUserHandler(userService, logger).RegisterRoutes(api.router, auth, ownerOnly, passThrough)
	NewCatalogHandler(api.catalog, logger).RegisterRoutes(api.router, auth, ownerOnly)
	NewStockHandler(api.stock, logger).RegisterRoutes(api.router, auth)
	NewReportHandler(api.reports, logger).RegisterRoutes(api.router, auth, ownerOnly)

	return api
}

// signIn creates an account with role and returns its access token
func (a *testAPI) signIn(t *testing.T, email, role string) (string, *domain.User) {
	t.Helper()
	ctx := context.Background()
	if _, err := a.userService.Register(ctx, service.RegisterInput{
		Email: email, Password: "password123", FirstName: "Test", LastName: "User", Role: role,
	}); err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	accessToken, _, user, err := a.userService.Login(ctx, email, "password123")
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return accessToken, user
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, w.Body.String())
	}
}
