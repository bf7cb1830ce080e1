package entities

import (
	"time"

	"github.com/google/uuid"
)

// Triage event types published on the alert bus.
const (
	EventEmergencyDetected = "triage.emergency.detected"
	EventSessionEscalated  = "triage.session.escalated"
)

// TriageEvent is the payload published when a turn trips an emergency
// profile. Downstream consumers (SSE stream, WhatsApp notifier) fan out
// from the same event.
type TriageEvent struct {
	ID              string       `json:"id"`
	Type            string       `json:"type"`
	SessionID       string       `json:"session_id"`
	ProfileID       string       `json:"profile_id"`
	ConditionName   string       `json:"condition_name"`
	Urgency         UrgencyLevel `json:"urgency"`
	MatchedSymptoms []string     `json:"matched_symptoms"`
	Timestamp       time.Time    `json:"timestamp"`
}

// NewEmergencyEvent builds the event for a fresh emergency assessment.
func NewEmergencyEvent(sessionID string, a *EmergencyAssessment) *TriageEvent {
	matched := make([]string, 0, len(a.MatchedSymptoms))
	for _, s := range a.MatchedSymptoms {
		matched = append(matched, string(s))
	}
	return &TriageEvent{
		ID:              uuid.New().String(),
		Type:            EventEmergencyDetected,
		SessionID:       sessionID,
		ProfileID:       a.ProfileID,
		ConditionName:   a.ConditionName,
		Urgency:         a.Urgency,
		MatchedSymptoms: matched,
		Timestamp:       time.Now().UTC(),
	}
}
