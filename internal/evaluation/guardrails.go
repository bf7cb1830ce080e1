package evaluation

import "fmt"

// GuardrailConfig sets the floors an evaluation run must clear. Emergency
// recall defaults to 1.0: a triage engine that misses even one known
// emergency pattern must not ship.
type GuardrailConfig struct {
	MinEmergencyRecall float64
	MinTop1Accuracy    float64
	MinRecallAt3       float64
}

type Guardrails struct {
	config GuardrailConfig
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	if config.MinEmergencyRecall <= 0 {
		config.MinEmergencyRecall = 1.0
	}
	return &Guardrails{config: config}
}

// Check returns one message per violated guardrail; an empty slice means
// the run passed. Ranking floors are only enforced when configured,
// emergency recall always is.
func (g *Guardrails) Check(s *EvalSummary) []string {
	var failures []string

	if s.EmergencyCases > 0 && s.EmergencyRecall < g.config.MinEmergencyRecall {
		failures = append(failures, fmt.Sprintf(
			"emergency recall %.2f below minimum %.2f", s.EmergencyRecall, g.config.MinEmergencyRecall))
	}
	if g.config.MinTop1Accuracy > 0 && s.Top1Accuracy < g.config.MinTop1Accuracy {
		failures = append(failures, fmt.Sprintf(
			"top-1 accuracy %.2f below minimum %.2f", s.Top1Accuracy, g.config.MinTop1Accuracy))
	}
	if g.config.MinRecallAt3 > 0 && s.RecallAt3 < g.config.MinRecallAt3 {
		failures = append(failures, fmt.Sprintf(
			"recall@3 %.2f below minimum %.2f", s.RecallAt3, g.config.MinRecallAt3))
	}

	return failures
}
