package entities

// UrgencyLevel grades an emergency match.
type UrgencyLevel string

const (
	UrgencyCritical UrgencyLevel = "CRITICAL"
	UrgencyUrgent   UrgencyLevel = "URGENT"
)

// EmergencyProfile is a red-flag combination: when every required symptom
// is present in a report, the triage flow short-circuits into an
// emergency escalation regardless of scoring.
type EmergencyProfile struct {
	ID               string       `json:"id"`
	ConditionName    string       `json:"condition_name"`
	RequiredSymptoms []SymptomID  `json:"required_symptoms"`
	Urgency          UrgencyLevel `json:"urgency"`
	ImmediateActions []string     `json:"immediate_actions"`
}

// Matches reports whether every required symptom appears in the set.
// A profile with no required symptoms never matches.
func (p *EmergencyProfile) Matches(reported map[SymptomID]struct{}) bool {
	if len(p.RequiredSymptoms) == 0 {
		return false
	}
	for _, s := range p.RequiredSymptoms {
		if _, ok := reported[s]; !ok {
			return false
		}
	}
	return true
}

// EmergencyAssessment is the outcome of running a report against the
// profile list. Nil means no profile matched.
type EmergencyAssessment struct {
	ProfileID        string       `json:"profile_id"`
	ConditionName    string       `json:"condition_name"`
	Urgency          UrgencyLevel `json:"urgency"`
	MatchedSymptoms  []SymptomID  `json:"matched_symptoms"`
	ImmediateActions []string     `json:"immediate_actions"`
}
