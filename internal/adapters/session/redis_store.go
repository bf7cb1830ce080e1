package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/repositories"
	redisclient "github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/clients/redis"
	apperrors "github.com/obinnaokafor/symptomsense/backend/pkg/errors"
)

const sessionKeyPrefix = "triage:state:"

// RedisStore persists conversation state as JSON under a TTL, so sessions
// survive restarts and are shared across API replicas. Expiry is Redis's
// job; an expired session simply reads as not found.
type RedisStore struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redisclient.Client, ttl time.Duration) repositories.SessionRepository {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the state for a session id.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*entities.ConversationState, error) {
	data, err := s.client.Client().Get(ctx, sessionKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, apperrors.NewNotFoundError("session " + sessionID + " not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load session "+sessionID, err)
	}

	var state entities.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, apperrors.NewInternalError("failed to decode session "+sessionID, err)
	}

	return &state, nil
}

// Save persists the state and refreshes its TTL.
func (s *RedisStore) Save(ctx context.Context, state *entities.ConversationState) error {
	if state == nil || state.SessionID == "" {
		return apperrors.NewValidationError("session state has no session id")
	}

	data, err := json.Marshal(state)
	if err != nil {
		return apperrors.NewInternalError("failed to encode session "+state.SessionID, err)
	}

	if err := s.client.Client().Set(ctx, sessionKey(state.SessionID), data, s.ttl).Err(); err != nil {
		return apperrors.NewInternalError("failed to save session "+state.SessionID, err)
	}

	return nil
}

// Delete removes a session. Deleting an unknown id is a no-op.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Client().Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return apperrors.NewInternalError("failed to delete session "+sessionID, err)
	}
	return nil
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}
