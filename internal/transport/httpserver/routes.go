package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"reserva-go/internal/config"
	"reserva-go/internal/domain/staff"
	"reserva-go/internal/transport/httpserver/handler"
	authmw "reserva-go/internal/transport/httpserver/middleware"
	"reserva-go/pkg/logger"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, parser authmw.TokenParser, rdb *redis.Client, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS([]string{"http://localhost:5173"}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		// Public booking surface, rate limited per client IP.
		r.Group(func(r chi.Router) {
			r.Use(authmw.NewTokenBucket(cfg.Limit, rdb, log))

			r.Post("/reservations", handlers.CreateReservation)
			r.Get("/availability", handlers.GetAvailability)
			r.Post("/checkin", handlers.CheckIn)
		})

		r.Post("/auth/login", handlers.Login)

		auth := authmw.NewStaffAuth(parser, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.AuthMe)

			r.Get("/units", handlers.ListUnits)
			r.Get("/units/{id}", handlers.GetUnit)
			r.Get("/units/{id}/areas", handlers.ListAreas)

			r.Get("/reservations", handlers.ListReservations)
			r.Get("/reservations/lookup", handlers.LookupByCode)
			r.Get("/reservations/{id}", handlers.GetReservation)
			r.Put("/reservations/{id}", handlers.UpdateReservation)
			r.Post("/reservations/{id}/cancel", handlers.CancelReservation)
			r.Post("/reservations/{id}/status", handlers.SetReservationStatus)
			r.Post("/reservations/{id}/qr/renew", handlers.RenewReservationQR)
			r.Get("/reservations/{id}/guests", handlers.ListReservationGuests)
			r.Post("/reservations/{id}/guests", handlers.AddReservationGuest)
			r.Delete("/reservations/{id}/guests/{guest_id}", handlers.RemoveReservationGuest)

			r.Get("/blocks", handlers.ListBlocks)
			r.Post("/blocks", handlers.CreateBlock)
			r.Delete("/blocks/{id}", handlers.DeleteBlock)

			// Destructive and administrative operations need ADMIN.
			r.Group(func(r chi.Router) {
				r.Use(authmw.RequireRole(staff.RoleAdmin))

				r.Post("/units", handlers.CreateUnit)
				r.Patch("/units/{id}", handlers.UpdateUnit)
				r.Delete("/units/{id}", handlers.DeleteUnit)
				r.Post("/units/{id}/areas", handlers.CreateArea)
				r.Patch("/areas/{area_id}", handlers.UpdateArea)
				r.Delete("/areas/{area_id}", handlers.DeleteArea)

				r.Delete("/reservations/{id}", handlers.DeleteReservation)

				r.Get("/staff", handlers.ListStaff)
				r.Post("/staff", handlers.RegisterStaff)
				r.Post("/staff/{id}/role", handlers.SetStaffRole)

				r.Get("/audit", handlers.AuditHistory)
			})
		})
	})

	return r
}
