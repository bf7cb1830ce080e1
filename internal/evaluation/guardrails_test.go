package evaluation

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestGuardrails_EmergencyRecallBelowMinimum(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{})

	summary := &EvalSummary{
		EmergencyCases:  4,
		EmergencyRecall: 0.75,
	}

	failures := g.Check(summary)
	assert.Len(t, failures, 1)
	assert.Contains(t, failures[0], "emergency recall")
}

func TestGuardrails_PerfectEmergencyRecallPasses(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{})

	summary := &EvalSummary{
		EmergencyCases:  6,
		EmergencyRecall: 1.0,
	}

	assert.Empty(t, g.Check(summary))
}

func TestGuardrails_NoEmergencyCasesSkipsRecallCheck(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{})

	summary := &EvalSummary{
		EmergencyCases:  0,
		EmergencyRecall: 1.0,
	}

	assert.Empty(t, g.Check(summary))
}

func TestGuardrails_RankingFloors(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{
		MinTop1Accuracy: 0.6,
		MinRecallAt3:    0.8,
	})

	summary := &EvalSummary{
		EmergencyCases:  1,
		EmergencyRecall: 1.0,
		Top1Accuracy:    0.5,
		RecallAt3:       0.7,
	}

	failures := g.Check(summary)
	assert.Len(t, failures, 2)
	assert.Contains(t, failures[0], "top-1 accuracy")
	assert.Contains(t, failures[1], "recall@3")
}

func TestGuardrails_RankingFloorsUnsetByDefault(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{})

	summary := &EvalSummary{
		EmergencyCases:  1,
		EmergencyRecall: 1.0,
		Top1Accuracy:    0.0,
		RecallAt3:       0.0,
	}

	assert.Empty(t, g.Check(summary))
}
