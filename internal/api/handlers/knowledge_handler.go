package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/providers"
)

const defaultSuggestLimit = 5

// KnowledgeHandler serves the read-only knowledge base endpoints
type KnowledgeHandler struct {
	kb        *entities.KnowledgeBase
	profiles  []*entities.EmergencyProfile
	suggester providers.SuggestionProvider
}

// NewKnowledgeHandler creates a new knowledge handler. suggester may be
// nil; the suggest endpoint then answers with an empty list.
func NewKnowledgeHandler(kb *entities.KnowledgeBase, profiles []*entities.EmergencyProfile, suggester providers.SuggestionProvider) *KnowledgeHandler {
	return &KnowledgeHandler{
		kb:        kb,
		profiles:  profiles,
		suggester: suggester,
	}
}

// ListConditions handles GET /api/conditions
func (h *KnowledgeHandler) ListConditions(w http.ResponseWriter, r *http.Request) {
	conditions := h.kb.Conditions()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"conditions": conditions,
		"count":      len(conditions),
	})
}

// GetCondition handles GET /api/conditions/{id}
func (h *KnowledgeHandler) GetCondition(w http.ResponseWriter, r *http.Request) {
	conditionID := r.PathValue("id")
	if conditionID == "" {
		respondWithError(w, http.StatusBadRequest, "condition ID is required")
		return
	}

	condition := h.kb.Condition(entities.ConditionID(conditionID))
	if condition == nil {
		respondWithError(w, http.StatusNotFound, "condition not found")
		return
	}

	respondWithJSON(w, http.StatusOK, condition)
}

// ListSymptoms handles GET /api/symptoms
func (h *KnowledgeHandler) ListSymptoms(w http.ResponseWriter, r *http.Request) {
	symptoms := h.kb.Symptoms()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"symptoms": symptoms,
		"count":    len(symptoms),
	})
}

// SuggestSymptoms handles GET /api/symptoms/suggest
func (h *KnowledgeHandler) SuggestSymptoms(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "q parameter is required")
		return
	}

	limit := defaultSuggestLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 20 {
			respondWithError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	suggestions := []providers.SymptomSuggestion{}
	if h.suggester != nil {
		found, err := h.suggester.Suggest(r.Context(), query, limit)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "suggestion lookup failed")
			return
		}
		if found != nil {
			suggestions = found
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

// ListEmergencyProfiles handles GET /api/emergency-profiles
func (h *KnowledgeHandler) ListEmergencyProfiles(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"profiles": h.profiles,
		"count":    len(h.profiles),
	})
}
