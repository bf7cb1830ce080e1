package providers

import (
	"context"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
)

// SymptomSuggestion is one typo-tolerant match for a free-text fragment.
type SymptomSuggestion struct {
	Symptom entities.SymptomID `json:"symptom"`
	Label   string             `json:"label"`
	Score   float64            `json:"score"`
}

// SuggestionProvider defines a fuzzy lookup over the symptom vocabulary,
// used when exact alias matching recognizes nothing in a message.
type SuggestionProvider interface {
	// Suggest returns the closest vocabulary entries for a text fragment.
	Suggest(ctx context.Context, fragment string, limit int) ([]SymptomSuggestion, error)

	// IndexSymptoms (re)builds the suggestion index from the vocabulary.
	IndexSymptoms(ctx context.Context, symptoms []*entities.Symptom) error
}
