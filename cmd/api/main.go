package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fisiocan/booking-platform/internal/api/router"
	"github.com/fisiocan/booking-platform/internal/app/bootstrap"
	"github.com/fisiocan/booking-platform/internal/availability"
	"github.com/fisiocan/booking-platform/internal/bookings"
	"github.com/fisiocan/booking-platform/internal/clinic"
	appconfig "github.com/fisiocan/booking-platform/internal/config"
	"github.com/fisiocan/booking-platform/internal/dogs"
	"github.com/fisiocan/booking-platform/internal/events"
	"github.com/fisiocan/booking-platform/internal/notify"
	"github.com/fisiocan/booking-platform/internal/observability/metrics"
	"github.com/fisiocan/booking-platform/internal/profiles"
	"github.com/fisiocan/booking-platform/internal/schedule"
	"github.com/fisiocan/booking-platform/internal/services"
	"github.com/fisiocan/booking-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// All schedule decisions happen in clinic-local time.
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid clinic timezone", "error", err, "timezone", cfg.Timezone)
		os.Exit(1)
	}
	now := func() time.Time { return time.Now().In(loc) }

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("database not reachable", "error", err)
		os.Exit(1)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	// Repositories
	windowsRepo := availability.NewRepository(pool)
	bookingsRepo := bookings.NewRepository(pool)
	servicesRepo := services.NewRepository(pool)
	dogsRepo := dogs.NewRepository(pool)
	profilesRepo := profiles.NewRepository(pool)
	dashboardRepo := clinic.NewDashboardRepository(pool)

	// Availability cache feeding the slot generator
	windowCache := availability.NewCache(windowsRepo, cfg.CacheTTL, now).
		WithMetrics(bookingMetrics)
	generator := schedule.NewGenerator(windowCache, bookingsRepo, now).
		WithMetrics(bookingMetrics)

	// Cross-session slot-change events
	hub := events.NewHub(logger)
	var broadcaster events.Broadcaster = events.NopBroadcaster{}
	if redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true); redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		broadcaster = events.NewRedisBroadcaster(redisClient)
		subscriber := events.NewSubscriber(redisClient, func(evt events.SlotsChangedEvent) {
			windowCache.InvalidateDate(evt.Date)
			hub.Dispatch(evt)
		}, logger)
		go subscriber.Run(ctx)
	}

	// Notifications
	emailSender := bootstrap.BuildEmailSender(ctx, cfg, logger)
	notifier := notify.NewService(emailSender, profilesRepo, cfg.AdminEmail, logger)

	// Booking workflow
	finalizer := bookings.NewFinalizer(bookingsRepo, notifier, windowCache, broadcaster, logger, now).
		WithMetrics(bookingMetrics)
	lifecycle := bookings.NewLifecycle(bookingsRepo, notifier, windowCache, broadcaster, logger, now)
	sweeper := bookings.NewSweeper(bookingsRepo, notifier, logger, now).
		WithInterval(cfg.SweepInterval)
	go sweeper.Run(ctx)

	// Initialize handlers
	bookingsHandler := bookings.NewHandler(finalizer, lifecycle, bookingsRepo, servicesRepo, dogsRepo, generator, logger).
		WithQueryTimeout(cfg.QueryTimeout)
	windowsHandler := availability.NewHandler(windowsRepo, windowCache, broadcaster, logger)
	servicesHandler := services.NewHandler(servicesRepo, logger)
	dogsHandler := dogs.NewHandler(dogsRepo, logger)
	dashboardHandler := clinic.NewHandler(dashboardRepo, logger, now)

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		BookingsHandler:    bookingsHandler,
		ServicesHandler:    servicesHandler,
		DogsHandler:        dogsHandler,
		WindowsHandler:     windowsHandler,
		DashboardHandler:   dashboardHandler,
		SlotsHub:           hub,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminJWTSecret:     cfg.AdminJWTSecret,
		ClientJWTSecret:    cfg.ClientJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
