package transport

import (
	"net/http"
	"time"

	"brew-stock/internal/domain"
	"brew-stock/internal/middleware"
	"brew-stock/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmitStockRequest records the remaining quantity of a product. An empty
// date means today.
type SubmitStockRequest struct {
	ProductID string   `json:"product_id" validate:"required,uuid"`
	Date      string   `json:"date" validate:"omitempty,calendar_date"`
	Quantity  *float64 `json:"quantity" validate:"required,gte=0,lte=999999999.999"`
	Note      string   `json:"note" validate:"max=500"`
}

// EditStockRequest corrects a recorded count
type EditStockRequest struct {
	Quantity *float64 `json:"quantity" validate:"required,gte=0,lte=999999999.999"`
	Note     *string  `json:"note" validate:"omitempty,max=500"`
}

// StockLogResponse is a count with its calendar date
type StockLogResponse struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	Date       string    `json:"date"`
	Quantity   float64   `json:"quantity"`
	RecordedBy string    `json:"recorded_by"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newStockLogResponse(entry *domain.StockLogEntry) StockLogResponse {
	return StockLogResponse{
		ID:         entry.ID.String(),
		ProductID:  entry.ProductID.String(),
		Date:       entry.Date.Format(domain.DateLayout),
		Quantity:   entry.Quantity,
		RecordedBy: entry.RecordedBy.String(),
		Note:       entry.Note,
		CreatedAt:  entry.CreatedAt,
		UpdatedAt:  entry.UpdatedAt,
	}
}

// StockHandler serves daily stock counts
type StockHandler struct {
	stockService service.StockService
	logger       *zap.Logger
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService service.StockService, logger *zap.Logger) *StockHandler {
	return &StockHandler{
		stockService: stockService,
		logger:       logger,
	}
}

// RegisterRoutes mounts /api/stock-logs for any signed-in user. Edit rights
// are enforced by the service.
func (h *StockHandler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/api/stock-logs", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", h.List)
		r.Post("/", h.Submit)
		r.Put("/{id}", h.Edit)
	})
}

func (h *StockHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req SubmitStockRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	// Both were checked by the validator
	productID, _ := uuid.Parse(req.ProductID)
	var date time.Time
	if req.Date != "" {
		date, _ = time.Parse(domain.DateLayout, req.Date)
	}

	entry, err := h.stockService.Submit(r.Context(), actor, service.SubmitStockInput{
		ProductID: productID,
		Date:      date,
		Quantity:  *req.Quantity,
		Note:      req.Note,
	})
	if err != nil {
		respondError(w, h.logger, err, "failed to record stock")
		return
	}

	h.logger.Info("Stock recorded",
		zap.String("product_id", entry.ProductID.String()),
		zap.String("date", entry.Date.Format(domain.DateLayout)),
		zap.Float64("quantity", entry.Quantity),
		zap.String("user_id", actor.ID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, newStockLogResponse(entry))
}

func (h *StockHandler) Edit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req EditStockRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	entry, err := h.stockService.Edit(r.Context(), actor, id, *req.Quantity, req.Note)
	if err != nil {
		respondError(w, h.logger, err, "failed to edit stock log")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newStockLogResponse(entry))
}

// List returns counts filtered by ?from, ?to (YYYY-MM-DD) and ?product_id
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	from, err := parseDateParam(query.Get("from"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := parseDateParam(query.Get("to"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid to date")
		return
	}

	productParam := query.Get("product_id")
	productID, err := parseOptionalUUID(&productParam)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product_id")
		return
	}

	entries, err := h.stockService.List(r.Context(), from, to, productID)
	if err != nil {
		respondError(w, h.logger, err, "failed to list stock logs")
		return
	}

	response := make([]StockLogResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, newStockLogResponse(entry))
	}
	middleware.RespondWithJSON(w, http.StatusOK, response)
}

func parseDateParam(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(domain.DateLayout, value)
}
