package repositories

import (
	"context"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
)

// SessionRepository defines the interface for conversation state storage.
// Get returns a not-found application error for unknown or expired ids.
type SessionRepository interface {
	// Get retrieves the state for a session id.
	Get(ctx context.Context, sessionID string) (*entities.ConversationState, error)

	// Save persists the state, refreshing its TTL where the backend has one.
	Save(ctx context.Context, state *entities.ConversationState) error

	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, sessionID string) error
}
