package handlers

import (
	"context"
	"net/http"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	apperrors "github.com/obinnaokafor/symptomsense/backend/pkg/errors"
)

// SessionDirectory defines the session operations used by the handler.
type SessionDirectory interface {
	GetSession(ctx context.Context, sessionID string) (*entities.ConversationState, error)
	ResetSession(ctx context.Context, sessionID string) error
}

// SessionHandler handles session lifecycle HTTP requests
type SessionHandler struct {
	sessions SessionDirectory
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions SessionDirectory) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// GetSession handles GET /api/sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	state, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			switch appErr.Type {
			case apperrors.ErrorTypeNotFound:
				respondWithError(w, http.StatusNotFound, appErr.Message)
			default:
				respondWithError(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, state)
}

// ResetSession handles DELETE /api/sessions/{id}
func (h *SessionHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	if err := h.sessions.ResetSession(r.Context(), sessionID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to reset session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
