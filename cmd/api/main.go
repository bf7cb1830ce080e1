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

	"github.com/obinnaokafor/symptomsense/backend/internal/adapters/cache"
	"github.com/obinnaokafor/symptomsense/backend/internal/adapters/database"
	"github.com/obinnaokafor/symptomsense/backend/internal/adapters/events"
	"github.com/obinnaokafor/symptomsense/backend/internal/adapters/knowledge"
	"github.com/obinnaokafor/symptomsense/backend/internal/adapters/search"
	"github.com/obinnaokafor/symptomsense/backend/internal/adapters/session"
	"github.com/obinnaokafor/symptomsense/backend/internal/api/handlers"
	"github.com/obinnaokafor/symptomsense/backend/internal/api/middleware"
	"github.com/obinnaokafor/symptomsense/backend/internal/api/routes"
	"github.com/obinnaokafor/symptomsense/backend/internal/application/services"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/providers"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/repositories"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/clients/openai"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/clients/postgres"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/clients/redis"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/clients/typesense"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/notifications"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/observability"
	"github.com/obinnaokafor/symptomsense/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize structured logging
	env := os.Getenv("ENV")
	if env == "" {
		env = "production"
	}
	observability.InitLogger(cfg.OTEL.ServiceName, env)

	log.Info().
		Str("service", cfg.OTEL.ServiceName).
		Str("version", cfg.OTEL.ServiceVersion).
		Str("env", env).
		Msg("Starting API server")

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize metrics")
	}

	// PostgreSQL backs the knowledge base and turn analytics; skip the
	// connection entirely when neither is configured to use it.
	var pgClient *postgres.Client
	if cfg.Knowledge.Source == "postgres" || cfg.Analytics.Enabled {
		pgClient, err = postgres.NewClient(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
		}
		defer pgClient.Close()
		log.Info().Msg("PostgreSQL client initialized successfully")
	}

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis client")
		// Continue without Redis - sessions fall back to memory and
		// response caching and the event bus are disabled
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized successfully")
	}

	// Initialize Typesense client
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Typesense client")
	} else {
		log.Info().Msg("Typesense client initialized successfully")
	}

	// Load the knowledge base; a triage engine without one cannot start.
	var source repositories.KnowledgeSource
	switch cfg.Knowledge.Source {
	case "postgres":
		source = knowledge.NewPostgresSource(pgClient)
	default:
		source = knowledge.NewFileSource(cfg.Knowledge.KnowledgeBasePath, cfg.Knowledge.EmergencyProfilesPath)
	}

	kb, err := source.LoadKnowledgeBase(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load knowledge base")
	}
	profiles, err := source.LoadEmergencyProfiles(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load emergency profiles")
	}
	log.Info().
		Int("conditions", kb.TotalConditions()).
		Int("symptoms", len(kb.Symptoms())).
		Int("emergency_profiles", len(profiles)).
		Msg("Knowledge base loaded")

	// Session store
	sessionTTL := time.Duration(cfg.Session.TTLSeconds) * time.Second
	var sessionStore repositories.SessionRepository
	if cfg.Session.Store == "redis" && redisClient != nil {
		sessionStore = session.NewRedisStore(redisClient, sessionTTL)
		log.Info().Msg("Redis session store initialized")
	} else {
		if cfg.Session.Store == "redis" {
			log.Warn().Msg("Redis session store requested but Redis is unavailable; using memory store")
		}
		sessionStore = session.NewMemoryStore(sessionTTL)
		log.Info().Msg("In-memory session store initialized")
	}

	// Response cache and event bus both ride on Redis
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("Event bus initialized successfully")
	} else {
		log.Info().Msg("Event bus disabled (Redis not available)")
	}

	// Suggestion search: index the symptom vocabulary so the typeahead
	// works on a fresh deployment without a separate indexer run.
	var suggester providers.SuggestionProvider
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to init Typesense schema")
		} else if err := adapter.IndexSymptoms(ctx, kb.Symptoms()); err != nil {
			log.Warn().Err(err).Msg("Failed to index symptom vocabulary")
		} else {
			suggester = adapter
			log.Info().Msg("Suggestion search initialized successfully")
		}
	}

	// Optional LLM phrase extraction
	var extractor providers.PhraseExtractor
	if cfg.OpenAI.APIKey == "" {
		log.Info().Msg("OPENAI_API_KEY not set; LLM phrase extraction disabled")
	} else {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize OpenAI client")
		} else {
			extractor = openaiClient
			log.Info().Str("model", cfg.OpenAI.Model).Msg("LLM phrase extraction enabled")
		}
	}

	// Turn analytics
	var analyticsService *services.TurnAnalyticsService
	if cfg.Analytics.Enabled && pgClient != nil {
		analyticsService = services.NewTurnAnalyticsService(database.NewTurnAnalyticsAdapter(pgClient))
		log.Info().Msg("Turn analytics enabled")
	}

	// Initialize the triage pipeline
	normalizer := services.NewSymptomNormalizer(kb)
	detector := services.NewEmergencyDetector(profiles)
	engine := services.NewScoringEngine(kb, services.ScoringPolicy{
		HighTierThreshold:   cfg.Engine.HighTierThreshold,
		MediumTierThreshold: cfg.Engine.MediumTierThreshold,
		MinMatchedForHigh:   cfg.Engine.MinMatchedForHigh,
		TopNMissing:         cfg.Engine.TopNMissing,
		MaxCandidates:       cfg.Engine.MaxCandidates,
	})
	tracker := services.NewConversationTracker(kb, normalizer, engine, services.TrackerPolicy{
		ShortDurationMaxDays: cfg.Engine.ShortDurationMaxDays,
		LongDurationMinDays:  cfg.Engine.LongDurationMinDays,
		MaxFollowupQuestions: cfg.Engine.MaxFollowupQuestions,
	})
	recommender := services.NewRecommendationService(kb)

	triageService := services.NewTriageService(
		kb,
		normalizer,
		detector,
		tracker,
		recommender,
		sessionStore,
		analyticsService,
		suggester,
		extractor,
		eventBus,
	)

	// Outbound WhatsApp alerts for CRITICAL detections
	if cfg.WhatsApp.Configured() && eventBus != nil {
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

	// Initialize handlers. A typed-nil analytics service must not end up
	// inside the reader interface, or the handler's nil check is useless.
	var analyticsReader handlers.TurnAnalyticsReader
	if analyticsService != nil {
		analyticsReader = analyticsService
	}
	triageHandler := handlers.NewTriageHandler(triageService, analyticsReader, metrics)
	sessionHandler := handlers.NewSessionHandler(triageService)
	knowledgeHandler := handlers.NewKnowledgeHandler(kb, profiles, suggester)

	var alertsHandler *handlers.AlertsHandler
	if eventBus != nil {
		alertsHandler = handlers.NewAlertsHandler(eventBus)
	}

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics)
		// Responses cached before a restart may describe an older
		// knowledge base: start clean.
		if err := cacheMiddleware.InvalidateCache(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to clear response cache")
		}
		log.Info().Msg("Cache middleware initialized successfully")
	}

	// Set up router
	router := routes.NewRouter(
		triageHandler,
		sessionHandler,
		knowledgeHandler,
		alertsHandler,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server. WriteTimeout stays 0 because the SSE alert
	// streams hold their response open indefinitely.
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event bus")
		}
	}

	log.Info().Msg("Server stopped")
}
