// Package router assembles the HTTP surface: public health and metrics,
// the client booking API and the admin API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fisiocan/booking-platform/internal/availability"
	"github.com/fisiocan/booking-platform/internal/bookings"
	"github.com/fisiocan/booking-platform/internal/clinic"
	"github.com/fisiocan/booking-platform/internal/dogs"
	"github.com/fisiocan/booking-platform/internal/events"
	httpmiddleware "github.com/fisiocan/booking-platform/internal/http/middleware"
	"github.com/fisiocan/booking-platform/internal/services"
	"github.com/fisiocan/booking-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	BookingsHandler    *bookings.Handler
	ServicesHandler    *services.Handler
	DogsHandler        *dogs.Handler
	WindowsHandler     *availability.Handler
	DashboardHandler   *clinic.Handler
	SlotsHub           *events.Hub
	MetricsHandler     http.Handler
	AdminJWTSecret     string
	ClientJWTSecret    string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.SlotsHub != nil {
			public.Handle("/ws/slots", cfg.SlotsHub)
		}
		if cfg.ServicesHandler != nil {
			public.Get("/api/services", cfg.ServicesHandler.ListServices)
		}
	})

	// Client API
	r.Route("/api", func(api chi.Router) {
		api.Use(httpmiddleware.ClientJWT(cfg.ClientJWTSecret))
		if cfg.BookingsHandler != nil {
			api.Get("/availability", cfg.BookingsHandler.GetAvailability)
			api.Get("/bookings", cfg.BookingsHandler.ListMyBookings)
			// Booking creation is the abuse-sensitive write path.
			api.With(httpmiddleware.RateLimit(2, 5)).Post("/bookings", cfg.BookingsHandler.CreateBooking)
			api.Post("/bookings/{bookingID}/cancel", cfg.BookingsHandler.CancelBooking)
		}
		if cfg.DogsHandler != nil {
			api.Get("/dogs", cfg.DogsHandler.ListMyDogs)
		}
	})

	// Admin API
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))
		if cfg.WindowsHandler != nil {
			admin.Get("/slots", cfg.WindowsHandler.ListWindows)
			admin.Post("/slots", cfg.WindowsHandler.CreateWindow)
			admin.Put("/slots/{windowID}", cfg.WindowsHandler.UpdateWindow)
			admin.Delete("/slots/{windowID}", cfg.WindowsHandler.DeleteWindow)
		}
		if cfg.BookingsHandler != nil {
			admin.Get("/availability", cfg.BookingsHandler.GetAvailability)
			admin.Get("/bookings/pending", cfg.BookingsHandler.ListPendingConfirmation)
			admin.Post("/bookings/{bookingID}/confirm", cfg.BookingsHandler.ConfirmBooking)
			admin.Post("/bookings/{bookingID}/cancel", cfg.BookingsHandler.CancelBooking)
		}
		if cfg.DashboardHandler != nil {
			admin.Get("/dashboard", cfg.DashboardHandler.DayView)
		}
	})

	return r
}
