package transport

import (
	"errors"
	"net/http"

	"brew-stock/internal/middleware"
	"brew-stock/internal/repository"
	"brew-stock/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// statusFor maps service and repository errors to HTTP statuses; anything
// unknown is a 500
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrStockLogNotFound):
		return http.StatusNotFound

	case errors.Is(err, repository.ErrUserAlreadyExists),
		errors.Is(err, repository.ErrProductAlreadyExists),
		errors.Is(err, repository.ErrCategoryAlreadyExists),
		errors.Is(err, service.ErrLastOwner):
		return http.StatusConflict

	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrFutureDate),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidMinimumStock),
		errors.Is(err, service.ErrEmptyName),
		errors.Is(err, service.ErrInvalidWeekOffset),
		errors.Is(err, service.ErrInvalidDateRange):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrProductInactive):
		return http.StatusUnprocessableEntity

	case errors.Is(err, service.ErrNotEntryOwner),
		errors.Is(err, service.ErrEditWindowClosed):
		return http.StatusForbidden

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes err with its mapped status. Internal errors are logged
// and hidden behind fallback.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, status, fallback)
		return
	}
	middleware.RespondWithError(w, status, err.Error())
}

// decodeRequest decodes and validates the body, writing the error response itself
func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}, logger *zap.Logger) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request validation failed", zap.Error(err), zap.String("path", r.URL.Path))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// actorFrom reads the caller placed in the context by the auth middleware
func actorFrom(w http.ResponseWriter, r *http.Request) (service.Actor, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	role, roleOK := middleware.GetUserRole(r.Context())
	if !ok || !roleOK {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return service.Actor{}, false
	}
	return service.Actor{ID: userID, Role: role}, true
}

func parseOptionalUUID(value *string) (*uuid.UUID, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
