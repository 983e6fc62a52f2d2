package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/event-hub/internal/auth"
	"github.com/Shivanand-hulikatti/event-hub/internal/config"
	"github.com/Shivanand-hulikatti/event-hub/internal/metrics"
)

// RouterConfig carries the optional pieces of the router.
type RouterConfig struct {
	RateLimit config.RateLimitConfig
	Tokens    *auth.Issuer
}

// NewRouter builds the chi router with the global middleware stack.
func NewRouter(h *EventHandler, cfg RouterConfig, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(CorrelationID(logger))
	r.Use(Logger)
	r.Use(metrics.HTTPMiddleware)
	r.Use(CORS)
	r.Use(Authenticate(cfg.Tokens))

	r.Get("/health", HealthCheck)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	limited := RateLimit(cfg.RateLimit)
	r.With(limited).Post("/login", h.Login)
	r.With(limited).Post("/join-event", h.JoinEvent)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Post("/", h.CreateEvent)
		r.Get("/{eventId}", h.GetEvent)
		r.Put("/{eventId}", h.UpdateEvent)
		r.Delete("/{eventId}", h.DeleteEvent)
	})

	r.Get("/participants/user/{username}", h.ListUserEvents)
	r.Get("/participants/{eventId}", h.ListParticipants)
	r.Get("/stats", h.Stats)
	r.Get("/notifications", h.ListNotifications)

	return r
}
