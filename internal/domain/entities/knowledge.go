package entities

import (
	"sort"
	"strings"

	apperrors "github.com/obinnaokafor/symptomsense/backend/pkg/errors"
	"github.com/obinnaokafor/symptomsense/backend/pkg/textutil"
)

// AliasEntry is one matchable phrase in the symptom vocabulary, kept in
// cleaned form. StopWord entries are only consulted as a last resort.
type AliasEntry struct {
	Phrase   string
	Symptom  SymptomID
	StopWord bool
}

// KnowledgeBase is the immutable aggregate the whole engine runs against:
// conditions, the symptom vocabulary, the alias index ordered longest
// phrase first, and precomputed specificity weights. Built once at load
// time; safe to share across sessions without locking.
type KnowledgeBase struct {
	conditions     map[ConditionID]*Condition
	conditionOrder []ConditionID
	symptoms       map[SymptomID]*Symptom
	aliasIndex     []AliasEntry
	stopWords      map[string]struct{}
	occurrences    map[SymptomID]int
	weights        map[SymptomID]float64
}

// NewKnowledgeBase validates the raw data and builds the aggregate.
// Validation failures here are startup-fatal by design: a half-loaded
// knowledge base must never serve a turn.
func NewKnowledgeBase(conditions []*Condition, symptoms []*Symptom, stopWords []string) (*KnowledgeBase, error) {
	if len(conditions) == 0 {
		return nil, apperrors.NewValidationError("knowledge base has no conditions")
	}
	if len(symptoms) == 0 {
		return nil, apperrors.NewValidationError("knowledge base has no symptoms")
	}

	kb := &KnowledgeBase{
		conditions:  make(map[ConditionID]*Condition, len(conditions)),
		symptoms:    make(map[SymptomID]*Symptom, len(symptoms)),
		stopWords:   make(map[string]struct{}, len(stopWords)),
		occurrences: make(map[SymptomID]int),
		weights:     make(map[SymptomID]float64),
	}

	for _, w := range stopWords {
		cleaned := textutil.CleanText(w)
		if cleaned != "" {
			kb.stopWords[cleaned] = struct{}{}
		}
	}

	for _, s := range symptoms {
		if s.ID == "" {
			return nil, apperrors.NewValidationError("symptom with empty id")
		}
		if _, dup := kb.symptoms[s.ID]; dup {
			return nil, apperrors.NewValidationError("duplicate symptom id: " + string(s.ID))
		}
		kb.symptoms[s.ID] = s
	}

	for _, c := range conditions {
		if c.ID == "" {
			return nil, apperrors.NewValidationError("condition with empty id")
		}
		if _, dup := kb.conditions[c.ID]; dup {
			return nil, apperrors.NewValidationError("duplicate condition id: " + string(c.ID))
		}
		if len(c.Symptoms) == 0 {
			return nil, apperrors.NewValidationError("condition has no symptoms: " + string(c.ID))
		}
		seen := make(map[SymptomID]struct{}, len(c.Symptoms))
		for _, s := range c.Symptoms {
			if _, ok := kb.symptoms[s]; !ok {
				return nil, apperrors.NewValidationError(
					"condition " + string(c.ID) + " references unknown symptom " + string(s))
			}
			if _, dup := seen[s]; dup {
				return nil, apperrors.NewValidationError(
					"condition " + string(c.ID) + " repeats symptom " + string(s))
			}
			seen[s] = struct{}{}
			kb.occurrences[s]++
		}
		kb.conditions[c.ID] = c
		kb.conditionOrder = append(kb.conditionOrder, c.ID)
	}

	sort.Slice(kb.conditionOrder, func(i, j int) bool {
		return kb.conditionOrder[i] < kb.conditionOrder[j]
	})

	total := float64(len(kb.conditions))
	for id, count := range kb.occurrences {
		kb.weights[id] = total / float64(count)
	}

	kb.buildAliasIndex()

	return kb, nil
}

// buildAliasIndex collects every matchable phrase (explicit aliases, the
// display label, and the id itself with underscores as spaces), cleans
// them, and orders longest first so a short alias never shadows a more
// specific one.
func (kb *KnowledgeBase) buildAliasIndex() {
	seen := make(map[string]struct{})

	add := func(phrase string, id SymptomID) {
		cleaned := textutil.CleanText(phrase)
		if cleaned == "" {
			return
		}
		key := cleaned + "\x00" + string(id)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}

		_, stop := kb.stopWords[cleaned]
		kb.aliasIndex = append(kb.aliasIndex, AliasEntry{
			Phrase:   cleaned,
			Symptom:  id,
			StopWord: stop,
		})
	}

	for _, s := range kb.symptoms {
		add(strings.ReplaceAll(string(s.ID), "_", " "), s.ID)
		add(s.Label, s.ID)
		for _, alias := range s.Aliases {
			add(alias, s.ID)
		}
	}

	sort.Slice(kb.aliasIndex, func(i, j int) bool {
		if len(kb.aliasIndex[i].Phrase) != len(kb.aliasIndex[j].Phrase) {
			return len(kb.aliasIndex[i].Phrase) > len(kb.aliasIndex[j].Phrase)
		}
		if kb.aliasIndex[i].Phrase != kb.aliasIndex[j].Phrase {
			return kb.aliasIndex[i].Phrase < kb.aliasIndex[j].Phrase
		}
		return kb.aliasIndex[i].Symptom < kb.aliasIndex[j].Symptom
	})
}

// Condition returns the condition for id, or nil.
func (kb *KnowledgeBase) Condition(id ConditionID) *Condition {
	return kb.conditions[id]
}

// Conditions returns all conditions in deterministic (id) order.
func (kb *KnowledgeBase) Conditions() []*Condition {
	out := make([]*Condition, 0, len(kb.conditionOrder))
	for _, id := range kb.conditionOrder {
		out = append(out, kb.conditions[id])
	}
	return out
}

// TotalConditions returns the number of conditions in the base.
func (kb *KnowledgeBase) TotalConditions() int {
	return len(kb.conditions)
}

// Symptom returns the vocabulary entry for id, or nil. The vocabulary may
// carry symptoms no condition references (emergency-only ones).
func (kb *KnowledgeBase) Symptom(id SymptomID) *Symptom {
	return kb.symptoms[id]
}

// Symptoms returns the full vocabulary in id order.
func (kb *KnowledgeBase) Symptoms() []*Symptom {
	ids := make([]SymptomID, 0, len(kb.symptoms))
	for id := range kb.symptoms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*Symptom, 0, len(ids))
	for _, id := range ids {
		out = append(out, kb.symptoms[id])
	}
	return out
}

// Weight returns the specificity weight of a symptom: the total number of
// conditions divided by how many contain it. Symptoms no condition
// references weigh zero; they can never appear in a matched set.
func (kb *KnowledgeBase) Weight(id SymptomID) float64 {
	return kb.weights[id]
}

// ConditionCount returns how many conditions contain the symptom.
func (kb *KnowledgeBase) ConditionCount(id SymptomID) int {
	return kb.occurrences[id]
}

// AliasEntries returns the matchable phrases, longest first.
func (kb *KnowledgeBase) AliasEntries() []AliasEntry {
	return kb.aliasIndex
}

// SymptomLabel returns the display label for a symptom id.
func (kb *KnowledgeBase) SymptomLabel(id SymptomID) string {
	if s := kb.symptoms[id]; s != nil {
		return s.DisplayLabel()
	}
	return strings.ReplaceAll(string(id), "_", " ")
}
