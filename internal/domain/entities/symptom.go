package entities

import "strings"

// SymptomID is the canonical identifier of a symptom (normalized form,
// e.g. "chest_pain"). Globally unique within a knowledge base.
type SymptomID string

// Symptom is one canonical complaint plus the free-text phrases that map
// to it. Immutable once the knowledge base is built.
type Symptom struct {
	ID      SymptomID `json:"id"`
	Label   string    `json:"label"`
	Aliases []string  `json:"aliases"`
}

// DisplayLabel returns the human-readable form, derived from the id when
// no explicit label was loaded.
func (s *Symptom) DisplayLabel() string {
	if s.Label != "" {
		return s.Label
	}
	return strings.ReplaceAll(string(s.ID), "_", " ")
}
