package middleware

import (
	"net/http"
	"slices"

	"brew-stock/internal/domain"

	"go.uber.org/zap"
)

// RequireOwner restricts a route to shop owners. Staff receive 403.
func RequireOwner(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole([]string{domain.RoleOwner}, logger)
}

// RequireRole admits callers whose role, set by AuthMiddleware, is listed
func RequireRole(allowedRoles []string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role missing from request context", zap.String("path", r.URL.Path))
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if !slices.Contains(allowedRoles, role) {
				userID, _ := GetUserID(r.Context())
				logger.Warn("Role not permitted for route",
					zap.String("user_id", userID.String()),
					zap.String("role", role),
					zap.Strings("allowed_roles", allowedRoles),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
