package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/middleware"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
)

// NewRouter wires every HTTP route. Reads are public; writes require a JWT.
func NewRouter(h *Handler, jwtSecret string, log *logger.Logger) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.RequestLogger(log.Named("HTTP")))
	mux.Use(chimw.Recoverer)

	mux.Get("/healthz", h.Healthz)
	mux.Get("/api/discovery/{category}/search", h.HandleSearch)
	mux.Get("/api/promotions/{listingId}", h.HandleGetStatus)
	mux.Get("/api/reports/reasons", h.HandleListReasons)

	mux.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(jwtSecret, log))

		r.Post("/api/promotions/{listingId}/presence", h.HandleSetPresence)
		r.Post("/api/promotions/{listingId}/presence/toggle", h.HandleTogglePresence)
		r.Post("/api/reports", h.HandleFileReport)

		r.With(middleware.RequireRole(log, middleware.RoleAdmin, middleware.RoleBilling)).
			Post("/api/promotions/{listingId}/boost", h.HandlePurchaseBoost)

		r.Route("/api/admin/reports", func(r chi.Router) {
			r.Use(middleware.RequireRole(log, middleware.RoleAdmin))
			r.Get("/pending", h.HandleListPending)
			r.Get("/{reportId}", h.HandleGetReport)
			r.Post("/{reportId}/resolve", h.HandleResolveReport)
		})
	})
	return mux
}

// NewServer wraps the router in an http.Server with conservative timeouts.
func NewServer(port string, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
