package entities

// Recommendation is the care guidance attached to a settled diagnosis.
type Recommendation struct {
	ConditionName  string       `json:"condition_name"`
	Urgency        UrgencyClass `json:"urgency"`
	Precautions    []string     `json:"precautions,omitempty"`
	Remedies       []Remedy     `json:"remedies,omitempty"`
	WhenToSeekHelp string       `json:"when_to_seek_help,omitempty"`
	Disclaimer     string       `json:"disclaimer"`
}

// ContextSummary mirrors the conversation state a client may want to
// display: what has been gathered so far.
type ContextSummary struct {
	ReportedSymptoms []string     `json:"reported_symptoms"`
	DurationBand     DurationBand `json:"duration_band,omitempty"`
	ExposureNoted    bool         `json:"exposure_noted"`
	TurnCount        int          `json:"turn_count"`
}

// TurnResult is everything one processed message produces: the ranking,
// any emergency escalation, the next follow-up question, and composed
// guidance. Message is the rendered human-readable reply; the structured
// fields survive alongside it for clients that render richer views.
type TurnResult struct {
	SessionID      string               `json:"session_id"`
	Turn           int                  `json:"turn"`
	Phase          Phase                `json:"phase"`
	Message        string               `json:"message"`
	Candidates     []DiagnosisCandidate `json:"candidates,omitempty"`
	Emergency      *EmergencyAssessment `json:"emergency,omitempty"`
	FollowupKind   FollowupKind         `json:"followup_kind,omitempty"`
	FollowupPrompt string               `json:"followup_prompt,omitempty"`
	Suggestions    []string             `json:"suggestions,omitempty"`
	Recommendation *Recommendation      `json:"recommendation,omitempty"`
	Context        ContextSummary       `json:"context"`
}

// IsEmergency reports whether this turn short-circuited into escalation.
func (t *TurnResult) IsEmergency() bool {
	return t.Emergency != nil
}
