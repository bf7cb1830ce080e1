package providers

import (
	"context"
	"errors"
)

// ErrPhraseExtractionUnauthorized indicates the upstream model rejected
// our credentials. Callers should stop retrying until the key is fixed.
var ErrPhraseExtractionUnauthorized = errors.New("phrase extraction unauthorized")

// PhraseExtractor defines an optional model-backed fallback that pulls
// candidate symptom phrases out of a message the alias index could not
// read. Triage treats any upstream failure as an empty result; it never
// depends on this provider.
type PhraseExtractor interface {
	ExtractPhrases(ctx context.Context, message string) ([]string, error)
}
