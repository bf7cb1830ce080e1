package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/providers"
	tsclient "github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/clients/typesense"
)

const symptomsCollection = "symptoms"

// TypesenseAdapter backs the "did you mean" suggestions with a fuzzy
// index over the symptom vocabulary. The deterministic alias matcher
// stays authoritative; this only rescues typo-ridden fragments the alias
// index rejected.
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements SuggestionProvider
var _ providers.SuggestionProvider = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the symptoms collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(symptomsCollection).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: symptomsCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "label", Type: "string"},
			{Name: "aliases", Type: "string[]"},
		},
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// DropIndex deletes the symptoms collection so the next IndexSymptoms
// starts from an empty index. Missing collection is not an error.
func (a *TypesenseAdapter) DropIndex(ctx context.Context) error {
	if _, err := a.client.Client().Collection(symptomsCollection).Retrieve(ctx); err != nil {
		return nil
	}
	if _, err := a.client.Client().Collection(symptomsCollection).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete typesense collection: %w", err)
	}
	return nil
}

// IndexSymptoms (re)builds the suggestion index from the vocabulary.
func (a *TypesenseAdapter) IndexSymptoms(ctx context.Context, symptoms []*entities.Symptom) error {
	if err := a.InitSchema(ctx); err != nil {
		return err
	}

	for _, s := range symptoms {
		aliases := s.Aliases
		if aliases == nil {
			aliases = []string{}
		}
		document := map[string]interface{}{
			"id":      string(s.ID),
			"label":   s.DisplayLabel(),
			"aliases": aliases,
		}

		if _, err := a.client.Client().Collection(symptomsCollection).Documents().Upsert(ctx, document); err != nil {
			return fmt.Errorf("failed to index symptom %s: %w", s.ID, err)
		}
	}

	return nil
}

// Suggest returns the closest vocabulary entries for a text fragment,
// typo tolerance included, best match first.
func (a *TypesenseAdapter) Suggest(ctx context.Context, fragment string, limit int) ([]providers.SymptomSuggestion, error) {
	if limit <= 0 {
		limit = 3
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(fragment),
		QueryBy:  pointer.String("label,aliases"),
		PerPage:  pointer.Int(limit),
		NumTypos: pointer.String("2"),
	}

	result, err := a.client.Client().Collection(symptomsCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search symptoms: %w", err)
	}

	suggestions := []providers.SymptomSuggestion{}
	if result.Hits == nil {
		return suggestions, nil
	}

	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document

		id, _ := doc["id"].(string)
		label, _ := doc["label"].(string)
		if id == "" || label == "" {
			continue
		}

		suggestion := providers.SymptomSuggestion{
			Symptom: entities.SymptomID(id),
			Label:   label,
		}
		if hit.TextMatch != nil {
			suggestion.Score = float64(*hit.TextMatch)
		}

		suggestions = append(suggestions, suggestion)
	}

	return suggestions, nil
}
