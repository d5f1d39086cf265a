package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pizoo/pizoo-api/internal/application/auth"
	"github.com/pizoo/pizoo-api/internal/application/discovery"
	"github.com/pizoo/pizoo-api/internal/application/match"
	"github.com/pizoo/pizoo-api/internal/application/messaging"
	"github.com/pizoo/pizoo-api/internal/application/notification"
	"github.com/pizoo/pizoo-api/internal/application/profile"
	"github.com/pizoo/pizoo-api/internal/application/swipe"
	"github.com/pizoo/pizoo-api/internal/config"
	"github.com/pizoo/pizoo-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/pizoo/pizoo-api/internal/infrastructure/jwt"
	"github.com/pizoo/pizoo-api/internal/infrastructure/presence"
	s3infra "github.com/pizoo/pizoo-api/internal/infrastructure/s3"
	"github.com/pizoo/pizoo-api/internal/infrastructure/smtp"
	"github.com/pizoo/pizoo-api/internal/transport/http/handler"
	appmiddleware "github.com/pizoo/pizoo-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	SwipeRepo        *dynamo.SwipeRepo
	MatchRepo        *dynamo.MatchRepo
	MessageRepo      *dynamo.MessageRepo
	NotificationRepo *dynamo.NotificationRepo
	Presence         *presence.Store
	PhotoStore       *s3infra.PhotoStore
	Mailer           smtp.Mailer
	Notifier         notification.Notifier
	JWTProvider      *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10, applied to credential endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	matchSvc := match.NewService(deps.MatchRepo, deps.UserRepo, deps.MessageRepo, deps.Presence)
	authSvc := auth.NewService(deps.UserRepo, deps.JWTProvider, deps.Presence, deps.Mailer)
	profileSvc := profile.NewService(deps.UserRepo, deps.PhotoStore, deps.Presence)
	discoverySvc := discovery.NewService(deps.UserRepo, deps.SwipeRepo, deps.Presence)
	swipeSvc := swipe.NewService(deps.SwipeRepo, deps.UserRepo, matchSvc, deps.MatchRepo, deps.Notifier)
	messagingSvc := messaging.NewService(deps.MessageRepo, matchSvc, deps.UserRepo, deps.Notifier)
	notifSvc := notification.NewService(deps.NotificationRepo)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(profileSvc, discoverySvc)
	swipeH := handler.NewSwipeHandler(swipeSvc)
	matchH := handler.NewMatchHandler(matchSvc)
	messageH := handler.NewMessageHandler(messagingSvc)
	notifH := handler.NewNotificationHandler(notifSvc)

	r.Route("/api", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/auth/me", authH.Me)
			r.Post("/auth/logout", authH.Logout)

			r.Get("/users/discover", userH.Discover)
			r.Get("/users/nearby", userH.Nearby)
			r.Get("/users/{id}", userH.Get)
			r.Put("/users/me", userH.UpdateMe)
			r.Post("/users/me/photos", userH.UploadPhoto)
			r.Put("/users/me/presence", userH.Presence)

			r.Post("/swipes", swipeH.Create)
			r.Get("/swipes/likes-me", swipeH.LikesMe)

			r.Get("/matches", matchH.List)

			r.Get("/messages/{match_id}", messageH.List)
			r.Post("/messages", messageH.Send)

			r.Get("/notifications", notifH.List)
			r.Get("/notifications/unread-count", notifH.UnreadCount)
			r.Put("/notifications/read-all", notifH.MarkAllRead)
			r.Put("/notifications/{id}/read", notifH.MarkRead)
		})
	})

	return r
}
