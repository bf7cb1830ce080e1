package entities

import (
	"time"

	"github.com/google/uuid"
)

// TurnEvent is the analytics record written after each processed turn.
// It captures what was asked and what the engine concluded; zero-match
// mining reads the messages whose MatchedCount stayed at zero.
type TurnEvent struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	Turn           int       `json:"turn"`
	Message        string    `json:"message"`
	Phase          string    `json:"phase"`
	MatchedCount   int       `json:"matched_count"`
	ResultCount    int       `json:"result_count"`
	TopConditionID string    `json:"top_condition_id,omitempty"`
	TopScore       float64   `json:"top_score,omitempty"`
	Tier           string    `json:"tier,omitempty"`
	Emergency      bool      `json:"emergency"`
	FollowupKind   string    `json:"followup_kind,omitempty"`
	LatencyMS      int64     `json:"latency_ms"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewTurnEvent builds the analytics record for a finished turn. rawMessage
// is the user's input, not the composed reply.
func NewTurnEvent(result *TurnResult, rawMessage string, matchedCount int, latency time.Duration) *TurnEvent {
	e := &TurnEvent{
		ID:           uuid.New().String(),
		SessionID:    result.SessionID,
		Turn:         result.Turn,
		Message:      rawMessage,
		Phase:        string(result.Phase),
		MatchedCount: matchedCount,
		ResultCount:  len(result.Candidates),
		Emergency:    result.IsEmergency(),
		FollowupKind: string(result.FollowupKind),
		LatencyMS:    latency.Milliseconds(),
		Timestamp:    time.Now().UTC(),
	}
	if len(result.Candidates) > 0 {
		top := result.Candidates[0]
		e.TopConditionID = string(top.ConditionID)
		e.TopScore = top.Score
		e.Tier = string(top.Tier)
	}
	return e
}
