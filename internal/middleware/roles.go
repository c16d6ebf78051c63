package middleware

import (
	"net/http"

	"quick-kirana/internal/domain"

	"go.uber.org/zap"
)

// RoleProvider reports the active session role. There is no authentication
// in this deployment; the role is whatever the session last selected.
type RoleProvider func() domain.Role

// RequireRole guards a route group behind one of the allowed session roles.
func RequireRole(current RoleProvider, allowedRoles []domain.Role, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := current()
			if role == domain.RoleNone {
				logger.Warn("No role selected for guarded route", zap.String("path", r.URL.Path))
				RespondWithError(w, http.StatusForbidden, "no role selected")
				return
			}

			for _, allowed := range allowedRoles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Warn("Session role not authorized",
				zap.String("role", string(role)),
				zap.String("path", r.URL.Path),
			)
			RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}

// RequireShopkeeper guards shopkeeper-only routes (restock, dispatch).
func RequireShopkeeper(current RoleProvider, logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole(current, []domain.Role{domain.RoleShopkeeper}, logger)
}
