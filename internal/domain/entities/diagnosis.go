package entities

// ConfidenceTier buckets a candidate's normalized score for presentation.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
)

// DiagnosisCandidate is one scored condition in a ranking. Score is
// normalized against the best raw score of the same ranking, so the top
// candidate always carries 1.0.
type DiagnosisCandidate struct {
	ConditionID     ConditionID    `json:"condition_id"`
	ConditionName   string         `json:"condition_name"`
	Score           float64        `json:"score"`
	RawScore        float64        `json:"raw_score"`
	MatchRatio      float64        `json:"match_ratio"`
	Tier            ConfidenceTier `json:"tier"`
	MatchedSymptoms []SymptomID    `json:"matched_symptoms"`
	MissingSymptoms []SymptomID    `json:"missing_symptoms,omitempty"`
}

// Ranking is an ordered list of candidates, best first.
type Ranking struct {
	Candidates []DiagnosisCandidate `json:"candidates"`
}

// Top returns the best candidate, or nil for an empty ranking.
func (r *Ranking) Top() *DiagnosisCandidate {
	if len(r.Candidates) == 0 {
		return nil
	}
	return &r.Candidates[0]
}

// IsEmpty reports whether no condition matched at all.
func (r *Ranking) IsEmpty() bool {
	return len(r.Candidates) == 0
}
