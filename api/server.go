/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/reservations/*   Reservation lifecycle, ledger, statements
  /api/rooms/*          Room directory
  /api/tiers/*          Pricing tiers
  /api/products/*       Product catalogue
  /api/seed             Demo data loader (dev only)

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Reservation routes
		r.Route("/reservations", func(r chi.Router) {
			r.Get("/", h.ListReservations)
			r.Post("/", h.CreateReservation)
			r.Get("/{id}", h.GetReservation)
			r.Post("/{id}/consumptions", h.AddConsumption)
			r.Post("/{id}/payments", h.AddPayment)
			r.Post("/{id}/reversals", h.ReverseEntry)
			r.Post("/{id}/discount", h.ApplyDiscount)
			r.Put("/{id}/guest-count", h.AmendGuestCount)
			r.Put("/{id}/checkout", h.AmendCheckout)
			r.Post("/{id}/finalize", h.Finalize)
			r.Post("/{id}/cancel", h.Cancel)
			r.Get("/{id}/statement", h.GetSummaryStatement)
			r.Get("/{id}/statement/detailed", h.GetDetailedStatement)
			r.Get("/{id}/amendments", h.GetAmendments)
		})

		// Room directory routes
		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", h.ListRooms)
			r.Post("/", h.CreateRoom)
			r.Get("/{id}/tiers", h.ListRoomTiers)
		})

		// Tier routes
		r.Route("/tiers", func(r chi.Router) {
			r.Post("/", h.CreateTier)
		})

		// Product routes
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
		})

		// Demo data (dev only)
		r.Post("/seed", h.LoadSeedData)
	})

	return r
}
