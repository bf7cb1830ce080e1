package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/observability"
	apperrors "github.com/obinnaokafor/symptomsense/backend/pkg/errors"
)

const maxMessageLength = 1000

// TriageRunner defines the triage operations used by the handlers.
type TriageRunner interface {
	ProcessTurn(ctx context.Context, sessionID, message string) (*entities.TurnResult, error)
}

// TurnAnalyticsReader defines the analytics reads used by the handlers.
type TurnAnalyticsReader interface {
	GetUnmatchedMessages(ctx context.Context, limit int) ([]*entities.TurnEvent, error)
	GetEmergencyCount(ctx context.Context) (int, error)
}

// TriageHandler handles triage turn HTTP requests
type TriageHandler struct {
	triage    TriageRunner
	analytics TurnAnalyticsReader
	metrics   *observability.Metrics
}

// NewTriageHandler creates a new triage handler. analytics and metrics
// may be nil.
func NewTriageHandler(triage TriageRunner, analytics TurnAnalyticsReader, metrics *observability.Metrics) *TriageHandler {
	return &TriageHandler{
		triage:    triage,
		analytics: analytics,
		metrics:   metrics,
	}
}

type turnRequest struct {
	Message string `json:"message"`
}

// StartTriage handles POST /api/triage/turns
func (h *TriageHandler) StartTriage(w http.ResponseWriter, r *http.Request) {
	h.processTurn(w, r, "")
}

// ContinueSession handles POST /api/sessions/{id}/turns
func (h *TriageHandler) ContinueSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session ID is required")
		return
	}
	h.processTurn(w, r, sessionID)
}

func (h *TriageHandler) processTurn(w http.ResponseWriter, r *http.Request, sessionID string) {
	var payload turnRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.Message = strings.TrimSpace(payload.Message)
	if payload.Message == "" {
		respondWithError(w, http.StatusBadRequest, "message is required")
		return
	}
	if len(payload.Message) > maxMessageLength {
		respondWithError(w, http.StatusBadRequest, "message is too long")
		return
	}

	result, err := h.triage.ProcessTurn(r.Context(), sessionID, payload.Message)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Type == apperrors.ErrorTypeValidation {
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	observability.RecordTurnMetric(r.Context(), h.metrics, string(result.Phase),
		result.IsEmergency(), len(result.Suggestions) > 0)

	respondWithJSON(w, http.StatusOK, result)
}

// GetZeroMatchMessages handles GET /api/analytics/zero-match-messages
func (h *TriageHandler) GetZeroMatchMessages(w http.ResponseWriter, r *http.Request) {
	if h.analytics == nil {
		respondWithError(w, http.StatusServiceUnavailable, "turn analytics is not configured")
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondWithError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	events, err := h.analytics.GetUnmatchedMessages(r.Context(), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load zero-match messages")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"messages": events,
		"count":    len(events),
	})
}

// GetEmergencyTurns handles GET /api/analytics/emergency-turns
func (h *TriageHandler) GetEmergencyTurns(w http.ResponseWriter, r *http.Request) {
	if h.analytics == nil {
		respondWithError(w, http.StatusServiceUnavailable, "turn analytics is not configured")
		return
	}

	count, err := h.analytics.GetEmergencyCount(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load emergency turn count")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"emergency_turns": count,
	})
}
