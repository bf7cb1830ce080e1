package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/obinnaokafor/symptomsense/backend/internal/adapters/events"
	"github.com/obinnaokafor/symptomsense/backend/internal/api/handlers"
	"github.com/obinnaokafor/symptomsense/backend/internal/api/middleware"
	"github.com/obinnaokafor/symptomsense/backend/internal/application/services"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/clients/redis"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/notifications"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/observability"
	"github.com/obinnaokafor/symptomsense/backend/pkg/config"
)

// Standalone emergency alert fan-out: subscribes to the triage alert
// channels and serves them over SSE, optionally forwarding CRITICAL
// detections to an on-call WhatsApp number. Lets monitoring run and
// scale separately from the triage API.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	env := os.Getenv("ENV")
	if env == "" {
		env = "production"
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-alerts", env)

	log.Info().Msg("Starting alert stream server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is not optional here; the alert channels live on it.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Redis client")
	}
	defer redisClient.Close()
	log.Info().Msg("Redis client initialized successfully")

	eventBus := events.NewRedisEventBus(redisClient)
	log.Info().Msg("Event bus initialized successfully")

	alertsHandler := handlers.NewAlertsHandler(eventBus)

	// Forward CRITICAL detections to the on-call number when configured.
	if cfg.WhatsApp.Configured() {
		sender, err := notifications.NewWhatsAppCloudSender(&cfg.WhatsApp)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize WhatsApp sender")
		} else {
			notifier := services.NewAlertNotifier(eventBus, sender, cfg.WhatsApp.EmergencyContact)
			go func() {
				if err := notifier.Run(ctx); err != nil && ctx.Err() == nil {
					log.Error().Err(err).Msg("Alert notifier stopped")
				}
			}()
			log.Info().Msg("WhatsApp emergency alerts enabled")
		}
	}

	// Set up router
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// SSE streaming endpoints
	mux.HandleFunc("GET /api/stream/alerts", alertsHandler.StreamAlerts)
	mux.HandleFunc("GET /api/stream/sessions/{id}", alertsHandler.StreamSessionAlerts)

	// SSE stats endpoint
	mux.HandleFunc("GET /api/stream/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"connected_clients": %d}`, alertsHandler.GetClientCount())
	})

	// Apply middleware
	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(handler)

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,  // Longer timeout for SSE
		WriteTimeout: 0,                 // No timeout for SSE streaming
		IdleTimeout:  120 * time.Second, // Allow long-lived connections
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("Alert stream server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Alert stream server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Alert stream server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	// Close event bus
	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	log.Info().Msg("Alert stream server stopped")
}
