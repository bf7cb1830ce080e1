package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
)

// testKB builds a small but representative knowledge base used across
// the service tests.
func testKB(t *testing.T) *entities.KnowledgeBase {
	t.Helper()

	symptoms := []*entities.Symptom{
		{ID: "fever", Aliases: []string{"high temperature", "temperature", "feverish"}},
		{ID: "cough", Aliases: []string{"coughing", "dry cough"}},
		{ID: "headache", Aliases: []string{"head hurts", "head ache", "pounding head"}},
		{ID: "rash", Aliases: []string{"skin rash", "red spots"}},
		{ID: "stomach_pain", Aliases: []string{"stomach ache", "belly pain", "tummy ache"}},
		{ID: "body_pain", Aliases: []string{"pain", "ache", "body aches", "aching all over"}},
		{ID: "sore_throat", Aliases: []string{"throat pain", "throat hurts"}},
		{ID: "runny_nose", Aliases: []string{"blocked nose", "stuffy nose"}},
		{ID: "chest_pain", Aliases: []string{"tightness in chest", "chest hurts"}},
		{ID: "difficulty_breathing", Aliases: []string{"shortness of breath", "cant breathe", "breathless"}},
		{ID: "fatigue", Aliases: []string{"tired", "exhausted", "no energy"}},
		{ID: "nausea", Aliases: []string{"feel like vomiting", "queasy"}},
	}

	conditions := []*entities.Condition{
		{
			ID:          "flu",
			Name:        "Influenza",
			Symptoms:    []entities.SymptomID{"fever", "cough", "headache", "body_pain", "fatigue"},
			Precautions: []string{"rest", "drink plenty of fluids"},
			Remedies: []entities.Remedy{
				{Name: "Ginger tea", Benefit: "soothes the throat", Usage: "two cups daily"},
			},
			Urgency:    entities.UrgencyRoutine,
			Contagious: true,
		},
		{
			ID:          "common_cold",
			Name:        "Common Cold",
			Symptoms:    []entities.SymptomID{"cough", "runny_nose", "sore_throat"},
			Precautions: []string{"stay warm", "avoid cold drinks"},
			Urgency:     entities.UrgencyRoutine,
			Contagious:  true,
		},
		{
			ID:          "dengue",
			Name:        "Dengue Fever",
			Symptoms:    []entities.SymptomID{"fever", "rash", "headache", "body_pain"},
			Precautions: []string{"see a doctor promptly", "hydrate"},
			Urgency:     entities.UrgencyHigh,
			Contagious:  false,
		},
		{
			ID:          "gastroenteritis",
			Name:        "Gastroenteritis",
			Symptoms:    []entities.SymptomID{"stomach_pain", "nausea", "fever"},
			Precautions: []string{"oral rehydration", "bland food"},
			Urgency:     entities.UrgencyMedium,
			Contagious:  true,
		},
	}

	kb, err := entities.NewKnowledgeBase(conditions, symptoms, []string{"pain", "ache"})
	require.NoError(t, err)
	return kb
}

// minimalKB is the two-condition base from the scoring walkthrough:
// A={fever,cough}, B={fever,rash}.
func minimalKB(t *testing.T) *entities.KnowledgeBase {
	t.Helper()

	symptoms := []*entities.Symptom{
		{ID: "fever"},
		{ID: "cough"},
		{ID: "rash"},
	}
	conditions := []*entities.Condition{
		{ID: "condition_a", Name: "Condition A", Symptoms: []entities.SymptomID{"fever", "cough"}},
		{ID: "condition_b", Name: "Condition B", Symptoms: []entities.SymptomID{"fever", "rash"}},
	}

	kb, err := entities.NewKnowledgeBase(conditions, symptoms, nil)
	require.NoError(t, err)
	return kb
}

func symptomIDs(ids ...string) []entities.SymptomID {
	out := make([]entities.SymptomID, 0, len(ids))
	for _, id := range ids {
		out = append(out, entities.SymptomID(id))
	}
	return out
}
