package repositories

import (
	"context"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
)

// KnowledgeSource defines the interface for loading the medical knowledge
// base. Implementations load everything in one shot at startup; the
// resulting aggregate is immutable for the life of the process.
type KnowledgeSource interface {
	// LoadKnowledgeBase loads conditions, the symptom vocabulary, and the
	// stop-word list and assembles them into a validated aggregate.
	LoadKnowledgeBase(ctx context.Context) (*entities.KnowledgeBase, error)

	// LoadEmergencyProfiles loads the red-flag profiles.
	LoadEmergencyProfiles(ctx context.Context) ([]*entities.EmergencyProfile, error)
}
