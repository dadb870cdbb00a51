package main

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roomhub/roomhub/internal/booking"
	"github.com/roomhub/roomhub/internal/config"
	"github.com/roomhub/roomhub/internal/handlers"
	"github.com/roomhub/roomhub/internal/middleware"
	"github.com/roomhub/roomhub/internal/models"
	"github.com/roomhub/roomhub/internal/repo"
)

// newRouter wires repos, the booking service, and handlers onto the chi
// router. Kept separate from main so integration tests can build the full
// stack against a mock DB.
func newRouter(db *sql.DB, cfg config.Config) http.Handler {
	bookingRepo := repo.NewBookingRepo(db)
	roomRepo := repo.NewRoomRepo(db)
	userRepo := repo.NewUserRepo(db)
	auditRepo := repo.NewAuditRepo(db)
	svc := booking.NewService(bookingRepo)

	authH := &handlers.AuthHandler{UserRepo: userRepo, Secret: []byte(cfg.JWTSecret), ExpireHours: cfg.JWTExpireHours}
	bookingH := &handlers.BookingHandler{Service: svc}
	roomH := &handlers.RoomHandler{Repo: roomRepo, Service: svc}
	userH := &handlers.UserHandler{Repo: userRepo}
	auditH := &handlers.AuditHandler{Repo: auditRepo}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			handlers.JSONError(w, "unavailable", "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	authLimiter := middleware.AuthRateLimiter()
	r.With(authLimiter.Middleware).Post("/auth/login", authH.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTMiddleware([]byte(cfg.JWTSecret)))

		r.Get("/auth/me", authH.Me)

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", bookingH.ListBookings)
			r.Post("/", bookingH.CreateBooking)
			r.Get("/{id}", bookingH.GetBooking)
			// Ownership of cancel-request is enforced inside the service, so
			// the route stays open to every authenticated user.
			r.Post("/{id}/cancel-request", bookingH.RequestCancel)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuthority())
				r.Post("/{id}/approve", bookingH.Approve)
				r.Post("/{id}/reject", bookingH.Reject)
				r.Post("/{id}/cancel", bookingH.Cancel)
				r.Post("/{id}/cancel-reject", bookingH.RejectCancel)
			})
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", roomH.ListRooms)
			r.Get("/available", roomH.AvailableRooms)
			r.Get("/{id}", roomH.GetRoom)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuthority())
				r.Post("/", roomH.CreateRoom)
				r.Put("/{id}", roomH.UpdateRoom)
				r.Post("/{id}/deactivate", roomH.DeactivateRoom)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireAuthority())
			r.Get("/", userH.ListUsers)
			r.Post("/", userH.CreateUser)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleSuperAdmin))
				r.Put("/{id}/role", userH.ChangeRole)
				r.Post("/{id}/deactivate", userH.DeactivateUser)
			})
		})

		r.Route("/audit-logs", func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleSuperAdmin))
			r.Get("/", auditH.ListAudit)
			r.Get("/export", auditH.ExportAudit)
		})
	})

	return r
}
