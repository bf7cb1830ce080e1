package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
)

func testProfiles() []*entities.EmergencyProfile {
	return []*entities.EmergencyProfile{
		{
			ID:               "cardiac_event",
			ConditionName:    "Possible cardiac event",
			RequiredSymptoms: symptomIDs("chest_pain", "difficulty_breathing"),
			Urgency:          entities.UrgencyCritical,
			ImmediateActions: []string{"Call emergency services now", "Have the person sit down and stay calm"},
		},
		{
			ID:               "severe_breathing",
			ConditionName:    "Severe breathing difficulty",
			RequiredSymptoms: symptomIDs("difficulty_breathing"),
			Urgency:          entities.UrgencyUrgent,
			ImmediateActions: []string{"Seek urgent care"},
		},
		{
			ID:               "meningitis_warning",
			ConditionName:    "Meningitis warning signs",
			RequiredSymptoms: symptomIDs("fever", "stiff_neck", "headache"),
			Urgency:          entities.UrgencyCritical,
			ImmediateActions: []string{"Go to an emergency department immediately"},
		},
	}
}

func toSet(ids ...string) map[entities.SymptomID]struct{} {
	set := make(map[entities.SymptomID]struct{}, len(ids))
	for _, id := range ids {
		set[entities.SymptomID(id)] = struct{}{}
	}
	return set
}

func TestEmergencyDetector_ChestPainWithBreathing(t *testing.T) {
	d := NewEmergencyDetector(testProfiles())

	assessment := d.Assess(toSet("chest_pain", "difficulty_breathing"))
	require.NotNil(t, assessment)
	assert.Equal(t, "cardiac_event", assessment.ProfileID)
	assert.Equal(t, entities.UrgencyCritical, assessment.Urgency)
	assert.NotEmpty(t, assessment.ImmediateActions)
}

func TestEmergencyDetector_FullerMatchPreferred(t *testing.T) {
	d := NewEmergencyDetector(testProfiles())

	// Both cardiac_event (2 symptoms) and severe_breathing (1) match;
	// the larger profile must win.
	assessment := d.Assess(toSet("chest_pain", "difficulty_breathing", "fever"))
	require.NotNil(t, assessment)
	assert.Equal(t, "cardiac_event", assessment.ProfileID)

	// With only the single symptom the generic profile fires.
	assessment = d.Assess(toSet("difficulty_breathing"))
	require.NotNil(t, assessment)
	assert.Equal(t, "severe_breathing", assessment.ProfileID)
}

func TestEmergencyDetector_PartialComboDoesNotFire(t *testing.T) {
	d := NewEmergencyDetector(testProfiles())

	// chest pain alone is not the cardiac combination.
	assert.Nil(t, d.Assess(toSet("chest_pain")))
	assert.Nil(t, d.Assess(toSet("fever", "headache")))
	assert.Nil(t, d.Assess(toSet()))
}

func TestEmergencyDetector_ThreeSymptomProfile(t *testing.T) {
	d := NewEmergencyDetector(testProfiles())

	assessment := d.Assess(toSet("fever", "stiff_neck", "headache", "nausea"))
	require.NotNil(t, assessment)
	assert.Equal(t, "meningitis_warning", assessment.ProfileID)
	assert.Equal(t, symptomIDs("fever", "headache", "stiff_neck"), assessment.MatchedSymptoms)
}

func TestEmergencyDetector_EmptyProfileNeverMatches(t *testing.T) {
	d := NewEmergencyDetector([]*entities.EmergencyProfile{
		{ID: "empty", ConditionName: "Broken profile", Urgency: entities.UrgencyUrgent},
	})

	assert.Nil(t, d.Assess(toSet("fever")))
}

func TestEmergencyDetector_DoesNotMutateInput(t *testing.T) {
	profiles := testProfiles()
	d := NewEmergencyDetector(profiles)

	set := toSet("chest_pain", "difficulty_breathing")
	_ = d.Assess(set)
	assert.Len(t, set, 2)

	// Construction sorts a copy, not the caller's slice.
	assert.Equal(t, "cardiac_event", profiles[0].ID)
}
