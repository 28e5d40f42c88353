package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/dental-booking-bridge/internal/api/router"
	"github.com/wolfman30/dental-booking-bridge/internal/app/bootstrap"
	"github.com/wolfman30/dental-booking-bridge/internal/availability"
	"github.com/wolfman30/dental-booking-bridge/internal/booking"
	appconfig "github.com/wolfman30/dental-booking-bridge/internal/config"
	"github.com/wolfman30/dental-booking-bridge/internal/observability/metrics"
	"github.com/wolfman30/dental-booking-bridge/internal/phone"
	"github.com/wolfman30/dental-booking-bridge/internal/practice"
	"github.com/wolfman30/dental-booking-bridge/internal/smilebook"
	"github.com/wolfman30/dental-booking-bridge/pkg/logging"
)

func main() {
	// Load .env if present; deployed environments set variables directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting dental-booking-bridge API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"strategy", cfg.BookingStrategy,
	)

	ctx := context.Background()

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	// Practice config store: Redis when reachable, memory otherwise.
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	store := bootstrap.BuildPracticeStore(ctx, cfg, redisClient, logger)

	// Availability: SmileBook API with the deterministic fallback behind it.
	slotClient := smilebook.NewClient(cfg.SmileBookAPIBase,
		smilebook.WithTimeout(cfg.AvailabilityTimeout),
		smilebook.WithLogger(logger),
	)
	availService := availability.NewService(slotClient, store, cfg.AvailabilityTimeout, bookingMetrics, logger)

	// Booking strategies: browser automation plus SMS hand-off.
	launcher, stopBrowser := bootstrap.BuildLauncher(cfg, bookingMetrics, logger)
	smsSender := bootstrap.BuildSMSSender(cfg, logger)
	adapters := bootstrap.BuildBookingAdapters(cfg, launcher, smsSender, bookingMetrics, logger)
	notifier := bootstrap.BuildNotifier(ctx, cfg, smsSender, logger)

	bookingHandler := booking.NewHandler(booking.HandlerConfig{
		Store:           store,
		Adapters:        adapters,
		DefaultStrategy: cfg.BookingStrategy,
		DefaultPractice: cfg.DefaultPracticeID,
		Notifier:        notifier,
		Metrics:         bookingMetrics,
		Logger:          logger,
	})

	r := router.New(&router.Config{
		Logger:              logger,
		AvailabilityHandler: availability.NewHandler(availService, cfg.DefaultPracticeID, logger),
		BookingHandler:      bookingHandler,
		PhoneHandler:        phone.NewHandler(logger),
		PracticeHandler:     practice.NewHandler(store, logger),
		StatsHandler:        metrics.NewStatsHandler(registry, logger),
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitRPS:        cfg.RateLimitRPS,
		RateLimitBurst:      cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// In-flight automation attempts have finished once the server drained;
	// now the shared browser process can go.
	if err := stopBrowser(); err != nil {
		logger.Warn("browser shutdown", "error", err)
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info("server stopped")
}
