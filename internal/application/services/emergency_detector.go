package services

import (
	"sort"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
)

// EmergencyDetector screens a symptom set against the red-flag profiles
// before any scoring happens. Profiles with more required symptoms are
// checked first so a full match beats a generic partial one, and the
// first hit wins. Pure; the profile table never changes after startup.
type EmergencyDetector struct {
	profiles []*entities.EmergencyProfile
}

func NewEmergencyDetector(profiles []*entities.EmergencyProfile) *EmergencyDetector {
	ordered := append([]*entities.EmergencyProfile(nil), profiles...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if len(ordered[i].RequiredSymptoms) != len(ordered[j].RequiredSymptoms) {
			return len(ordered[i].RequiredSymptoms) > len(ordered[j].RequiredSymptoms)
		}
		return ordered[i].ID < ordered[j].ID
	})
	return &EmergencyDetector{profiles: ordered}
}

// Assess returns the first matching profile as an assessment, or nil
// when no red-flag combination is present.
func (d *EmergencyDetector) Assess(reported map[entities.SymptomID]struct{}) *entities.EmergencyAssessment {
	if len(reported) == 0 {
		return nil
	}
	for _, p := range d.profiles {
		if !p.Matches(reported) {
			continue
		}
		matched := append([]entities.SymptomID(nil), p.RequiredSymptoms...)
		sort.Slice(matched, func(i, j int) bool { return matched[i] < matched[j] })
		return &entities.EmergencyAssessment{
			ProfileID:        p.ID,
			ConditionName:    p.ConditionName,
			Urgency:          p.Urgency,
			MatchedSymptoms:  matched,
			ImmediateActions: append([]string(nil), p.ImmediateActions...),
		}
	}
	return nil
}

// Profiles returns the table in evaluation order.
func (d *EmergencyDetector) Profiles() []*entities.EmergencyProfile {
	return d.profiles
}
