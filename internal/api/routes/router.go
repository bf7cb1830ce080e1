package routes

import (
	"net/http"

	"github.com/obinnaokafor/symptomsense/backend/internal/api/handlers"
	"github.com/obinnaokafor/symptomsense/backend/internal/api/middleware"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	triageHandler    *handlers.TriageHandler
	sessionHandler   *handlers.SessionHandler
	knowledgeHandler *handlers.KnowledgeHandler
	alertsHandler    *handlers.AlertsHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router. The alerts handler may be nil when no
// event bus is configured; its routes are skipped in that case.
func NewRouter(
	triageHandler *handlers.TriageHandler,
	sessionHandler *handlers.SessionHandler,
	knowledgeHandler *handlers.KnowledgeHandler,
	alertsHandler *handlers.AlertsHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		triageHandler:    triageHandler,
		sessionHandler:   sessionHandler,
		knowledgeHandler: knowledgeHandler,
		alertsHandler:    alertsHandler,
		cacheMiddleware:  cacheMiddleware,
		metrics:          metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Triage endpoints
	r.mux.HandleFunc("POST /api/triage/turns", r.triageHandler.StartTriage)
	r.mux.HandleFunc("POST /api/sessions/{id}/turns", r.triageHandler.ContinueSession)

	// Session endpoints
	r.mux.HandleFunc("GET /api/sessions/{id}", r.sessionHandler.GetSession)
	r.mux.HandleFunc("DELETE /api/sessions/{id}", r.sessionHandler.ResetSession)

	// Knowledge base endpoints
	r.mux.HandleFunc("GET /api/conditions", r.knowledgeHandler.ListConditions)
	r.mux.HandleFunc("GET /api/conditions/{id}", r.knowledgeHandler.GetCondition)
	r.mux.HandleFunc("GET /api/symptoms", r.knowledgeHandler.ListSymptoms)
	r.mux.HandleFunc("GET /api/symptoms/suggest", r.knowledgeHandler.SuggestSymptoms)
	r.mux.HandleFunc("GET /api/emergency-profiles", r.knowledgeHandler.ListEmergencyProfiles)

	// Analytics endpoints
	r.mux.HandleFunc("GET /api/analytics/zero-match-messages", r.triageHandler.GetZeroMatchMessages)
	r.mux.HandleFunc("GET /api/analytics/emergency-turns", r.triageHandler.GetEmergencyTurns)

	// Emergency alert streams (SSE)
	if r.alertsHandler != nil {
		r.mux.HandleFunc("GET /api/stream/alerts", r.alertsHandler.StreamAlerts)
		r.mux.HandleFunc("GET /api/stream/sessions/{id}", r.alertsHandler.StreamSessionAlerts)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
