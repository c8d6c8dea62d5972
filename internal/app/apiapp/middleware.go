package apiapp

import (
	"errors"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	authsvc "github.com/Usergeee443/nikoh/internal/services/auth"
	httperrors "github.com/Usergeee443/nikoh/internal/transport/http/errors"
)

const initDataHeader = "X-Telegram-Init-Data"

func ApplyMiddlewares(r chiRouter, log *zap.Logger) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(requestLogger(log))
}

// InitDataAuth verifies Telegram Mini App initData on every request and
// injects the resolved identity into the context.
func InitDataAuth(authService *authsvc.Service, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authService == nil {
				httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
					Code:    "AUTH_SERVICE_UNAVAILABLE",
					Message: "auth service is unavailable",
				})
				return
			}

			initData := extractInitData(r)
			if initData == "" {
				httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{
					Code:    "INIT_DATA_MISSING",
					Message: "telegram init data is required",
				})
				return
			}

			user, err := authService.Identify(r.Context(), initData)
			if err != nil {
				if log != nil {
					log.Debug("auth middleware identify failed", zap.Error(err))
				}
				switch {
				case errors.Is(err, authsvc.ErrBlocked):
					httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
						Code:    "BLOCKED",
						Message: "account is blocked",
					})
				case errors.Is(err, authsvc.ErrInvalidInput):
					httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{
						Code:    "INIT_DATA_INVALID",
						Message: "telegram init data is malformed",
					})
				default:
					httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
						Code:    "UNAUTHORIZED",
						Message: "telegram init data verification failed",
					})
				}
				return
			}

			ctx := authsvc.WithIdentity(r.Context(), authsvc.Identity{
				UserID:     user.ID,
				TelegramID: user.TelegramID,
				IsAdmin:    user.IsAdmin,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates the admin surface. It must run after InitDataAuth.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := authsvc.IdentityFromContext(r.Context())
			if !ok || !identity.IsAdmin {
				httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
					Code:    "FORBIDDEN",
					Message: "admin access required",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractInitData prefers the header; the query fallback exists for clients
// that cannot set headers on asset-style GETs.
func extractInitData(r *http.Request) string {
	if value := r.Header.Get(initDataHeader); value != "" {
		return value
	}
	return r.URL.Query().Get("init_data")
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			if log != nil {
				log.Info("http_request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}

type chiRouter interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}
