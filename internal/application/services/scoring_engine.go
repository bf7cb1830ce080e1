package services

import (
	"sort"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
)

// ScoringPolicy holds the tuning constants of the ranking. The values
// are policy, not algorithm, so they arrive from configuration rather
// than being buried here.
type ScoringPolicy struct {
	// HighTierThreshold is the minimum normalized score for tier high.
	HighTierThreshold float64
	// MediumTierThreshold is the minimum normalized score for tier medium.
	MediumTierThreshold float64
	// MinMatchedForHigh keeps a single broad symptom from ever producing
	// a high-confidence call on its own.
	MinMatchedForHigh int
	// TopNMissing limits how many candidates report their missing
	// symptoms, since only the leaders drive follow-up questions.
	TopNMissing int
	// MaxCandidates caps the ranking length. Zero means unlimited.
	MaxCandidates int
}

// DefaultScoringPolicy mirrors the configuration defaults.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		HighTierThreshold:   0.7,
		MediumTierThreshold: 0.4,
		MinMatchedForHigh:   2,
		TopNMissing:         3,
		MaxCandidates:       5,
	}
}

// ScoringEngine ranks conditions against a reported symptom set.
//
// Each symptom carries a specificity weight, total conditions over the
// number containing it, so a symptom seen in one condition counts for
// much more than one seen everywhere. A condition's raw score is the
// weight sum of its matched symptoms scaled by how much of its profile
// was covered. Raw scores are then normalized against the best of the
// ranking, which makes the top candidate's score 1.0 and everything
// else a fraction of it. Pure; safe for concurrent use.
type ScoringEngine struct {
	kb     *entities.KnowledgeBase
	policy ScoringPolicy
}

func NewScoringEngine(kb *entities.KnowledgeBase, policy ScoringPolicy) *ScoringEngine {
	return &ScoringEngine{kb: kb, policy: policy}
}

// Score produces the ranked candidate list for a symptom set. Conditions
// with no overlap are left out entirely, so an empty ranking means "no
// idea", which callers must treat differently from an emergency or a
// low-confidence lead.
func (e *ScoringEngine) Score(reported map[entities.SymptomID]struct{}) *entities.Ranking {
	ranking := &entities.Ranking{}
	if len(reported) == 0 {
		return ranking
	}

	for _, c := range e.kb.Conditions() {
		var matched []entities.SymptomID
		for _, s := range c.Symptoms {
			if _, ok := reported[s]; ok {
				matched = append(matched, s)
			}
		}
		if len(matched) == 0 {
			continue
		}
		sort.Slice(matched, func(i, j int) bool { return matched[i] < matched[j] })

		matchRatio := float64(len(matched)) / float64(len(c.Symptoms))
		rawScore := 0.0
		for _, s := range matched {
			rawScore += e.kb.Weight(s) * matchRatio
		}

		ranking.Candidates = append(ranking.Candidates, entities.DiagnosisCandidate{
			ConditionID:     c.ID,
			ConditionName:   c.Name,
			RawScore:        rawScore,
			MatchRatio:      matchRatio,
			MatchedSymptoms: matched,
		})
	}

	if len(ranking.Candidates) == 0 {
		return ranking
	}

	maxRaw := 0.0
	for i := range ranking.Candidates {
		if ranking.Candidates[i].RawScore > maxRaw {
			maxRaw = ranking.Candidates[i].RawScore
		}
	}
	for i := range ranking.Candidates {
		cand := &ranking.Candidates[i]
		cand.Score = cand.RawScore / maxRaw
		cand.Tier = e.tierFor(cand.Score, len(cand.MatchedSymptoms))
	}

	sort.SliceStable(ranking.Candidates, func(i, j int) bool {
		a, b := ranking.Candidates[i], ranking.Candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.MatchRatio != b.MatchRatio {
			return a.MatchRatio > b.MatchRatio
		}
		return a.ConditionID < b.ConditionID
	})

	if e.policy.MaxCandidates > 0 && len(ranking.Candidates) > e.policy.MaxCandidates {
		ranking.Candidates = ranking.Candidates[:e.policy.MaxCandidates]
	}

	for i := range ranking.Candidates {
		if i >= e.policy.TopNMissing {
			break
		}
		ranking.Candidates[i].MissingSymptoms = e.missingFor(&ranking.Candidates[i])
	}

	return ranking
}

func (e *ScoringEngine) tierFor(score float64, matchedCount int) entities.ConfidenceTier {
	if score >= e.policy.HighTierThreshold && matchedCount >= e.policy.MinMatchedForHigh {
		return entities.TierHigh
	}
	if score >= e.policy.MediumTierThreshold {
		return entities.TierMedium
	}
	return entities.TierLow
}

func (e *ScoringEngine) missingFor(cand *entities.DiagnosisCandidate) []entities.SymptomID {
	c := e.kb.Condition(cand.ConditionID)
	if c == nil {
		return nil
	}
	matched := make(map[entities.SymptomID]struct{}, len(cand.MatchedSymptoms))
	for _, s := range cand.MatchedSymptoms {
		matched[s] = struct{}{}
	}
	var missing []entities.SymptomID
	for _, s := range c.Symptoms {
		if _, ok := matched[s]; !ok {
			missing = append(missing, s)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}
