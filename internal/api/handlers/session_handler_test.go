package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokafor/symptomsense/backend/internal/api/handlers"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	apperrors "github.com/obinnaokafor/symptomsense/backend/pkg/errors"
)

type stubSessions struct {
	states  map[string]*entities.ConversationState
	deleted []string
	err     error
}

func (s *stubSessions) GetSession(ctx context.Context, sessionID string) (*entities.ConversationState, error) {
	if s.err != nil {
		return nil, s.err
	}
	state, ok := s.states[sessionID]
	if !ok {
		return nil, apperrors.NewNotFoundError("session not found")
	}
	return state, nil
}

func (s *stubSessions) ResetSession(ctx context.Context, sessionID string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, sessionID)
	return nil
}

func TestSessionHandler_GetSession_Success(t *testing.T) {
	state := entities.NewConversationState("sess-1", time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	state.ReportedSymptoms = []entities.SymptomID{"fever", "cough"}
	sessions := &stubSessions{states: map[string]*entities.ConversationState{"sess-1": state}}
	handler := handlers.NewSessionHandler(sessions)

	req := httptest.NewRequest("GET", "/api/sessions/sess-1", nil)
	req.SetPathValue("id", "sess-1")
	w := httptest.NewRecorder()

	handler.GetSession(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got entities.ConversationState
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, []entities.SymptomID{"fever", "cough"}, got.ReportedSymptoms)
}

func TestSessionHandler_GetSession_NotFound(t *testing.T) {
	handler := handlers.NewSessionHandler(&stubSessions{states: map[string]*entities.ConversationState{}})

	req := httptest.NewRequest("GET", "/api/sessions/ghost", nil)
	req.SetPathValue("id", "ghost")
	w := httptest.NewRecorder()

	handler.GetSession(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_GetSession_StorageFailure(t *testing.T) {
	handler := handlers.NewSessionHandler(&stubSessions{err: apperrors.NewInternalError("redis down", nil)})

	req := httptest.NewRequest("GET", "/api/sessions/sess-1", nil)
	req.SetPathValue("id", "sess-1")
	w := httptest.NewRecorder()

	handler.GetSession(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSessionHandler_GetSession_MissingID(t *testing.T) {
	handler := handlers.NewSessionHandler(&stubSessions{})

	req := httptest.NewRequest("GET", "/api/sessions/", nil)
	w := httptest.NewRecorder()

	handler.GetSession(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_ResetSession(t *testing.T) {
	sessions := &stubSessions{states: map[string]*entities.ConversationState{}}
	handler := handlers.NewSessionHandler(sessions)

	req := httptest.NewRequest("DELETE", "/api/sessions/sess-1", nil)
	req.SetPathValue("id", "sess-1")
	w := httptest.NewRecorder()

	handler.ResetSession(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"sess-1"}, sessions.deleted)
}

func TestSessionHandler_ResetSession_Failure(t *testing.T) {
	handler := handlers.NewSessionHandler(&stubSessions{err: apperrors.NewInternalError("redis down", nil)})

	req := httptest.NewRequest("DELETE", "/api/sessions/sess-1", nil)
	req.SetPathValue("id", "sess-1")
	w := httptest.NewRecorder()

	handler.ResetSession(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
