package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Usergeee443/nikoh/internal/config"
	adminsvc "github.com/Usergeee443/nikoh/internal/services/admin"
	authsvc "github.com/Usergeee443/nikoh/internal/services/auth"
	chatsvc "github.com/Usergeee443/nikoh/internal/services/chats"
	favoritesvc "github.com/Usergeee443/nikoh/internal/services/favorites"
	feedsvc "github.com/Usergeee443/nikoh/internal/services/feed"
	profilesvc "github.com/Usergeee443/nikoh/internal/services/profiles"
	requestsvc "github.com/Usergeee443/nikoh/internal/services/requests"
	tariffsvc "github.com/Usergeee443/nikoh/internal/services/tariffs"
	"github.com/Usergeee443/nikoh/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService     *authsvc.Service
	ProfileService  *profilesvc.Service
	FeedService     *feedsvc.Service
	RequestService  *requestsvc.Service
	ChatService     *chatsvc.Service
	FavoriteService *favoritesvc.Service
	TariffService   *tariffsvc.Service
	AdminService    *adminsvc.Service
	Logger          *zap.Logger
	Config          config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	feedHandler := handlers.NewFeedHandler(deps.FeedService)
	requestsHandler := handlers.NewRequestsHandler(deps.RequestService)
	chatsHandler := handlers.NewChatsHandler(deps.ChatService)
	favoritesHandler := handlers.NewFavoritesHandler(deps.FavoriteService)
	tariffsHandler := handlers.NewTariffsHandler(deps.TariffService)
	adminHandler := handlers.NewAdminHandler(deps.AdminService)
	authMW := InitDataAuth(deps.AuthService, deps.Logger)
	adminMW := RequireAdmin()

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/telegram", authHandler.Telegram)

		// The profile card is public when addressed by user_id; the
		// caller's own view still needs a verified identity.
		r.Get("/profile", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("user_id") != "" {
				profileHandler.Get(w, r)
				return
			}
			authMW(http.HandlerFunc(profileHandler.Get)).ServeHTTP(w, r)
		})
		r.With(authMW).Post("/profile", profileHandler.Save)
		r.With(authMW).Post("/profile/toggle", profileHandler.Toggle)

		r.With(authMW).Get("/feed", feedHandler.List)
		r.With(authMW).Get("/feed/{userID}", feedHandler.Detail)

		r.With(authMW).Post("/requests", requestsHandler.Create)
		r.With(authMW).Get("/requests", requestsHandler.List)
		r.With(authMW).Post("/requests/{requestID}/respond", requestsHandler.Respond)

		r.With(authMW).Get("/chats", chatsHandler.List)
		r.With(authMW).Get("/chats/{chatID}", chatsHandler.Get)
		r.With(authMW).Post("/chats/{chatID}/messages", chatsHandler.SendMessage)

		r.With(authMW).Get("/favorites", favoritesHandler.List)
		r.With(authMW).Post("/favorites", favoritesHandler.Toggle)

		r.With(authMW).Get("/tariffs", tariffsHandler.Overview)
		r.With(authMW).Post("/tariffs/purchase", tariffsHandler.Purchase)

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMW, adminMW)
			r.Get("/stats", adminHandler.Stats)
			r.Get("/payments", adminHandler.ListPayments)
			r.Post("/payments/{paymentID}", adminHandler.ResolvePayment)
			r.Get("/users", adminHandler.ListUsers)
			r.Post("/users/{userID}", adminHandler.UserAction)
		})
	})
}
