package evaluation

import (
	"math"
	"testing"
)

const floatTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

// --- HitAtK tests ---

func TestHitAtK_TopCandidateExpected(t *testing.T) {
	relevant := []string{"viral_infection"}
	retrieved := []string{"viral_infection", "common_cold", "malaria"}
	got := HitAtK(relevant, retrieved, 1)
	if !almostEqual(got, 1.0) {
		t.Errorf("expected 1.0, got %f", got)
	}
}

func TestHitAtK_ExpectedBelowK(t *testing.T) {
	relevant := []string{"malaria"}
	// malaria ranked second, k=1 only sees the first
	retrieved := []string{"typhoid", "malaria"}
	got := HitAtK(relevant, retrieved, 1)
	if !almostEqual(got, 0.0) {
		t.Errorf("expected 0.0, got %f", got)
	}
}

func TestHitAtK_AnyOfSeveralExpected(t *testing.T) {
	relevant := []string{"fungal_infection", "allergy"}
	retrieved := []string{"allergy", "common_cold"}
	got := HitAtK(relevant, retrieved, 1)
	if !almostEqual(got, 1.0) {
		t.Errorf("expected 1.0, got %f", got)
	}
}

func TestHitAtK_EmptyInputs(t *testing.T) {
	if got := HitAtK(nil, []string{"malaria"}, 3); !almostEqual(got, 0.0) {
		t.Errorf("expected 0.0 for empty relevant, got %f", got)
	}
	if got := HitAtK([]string{"malaria"}, nil, 3); !almostEqual(got, 0.0) {
		t.Errorf("expected 0.0 for empty retrieved, got %f", got)
	}
}

// --- RecallAtK tests ---

func TestRecallAtK_AllRelevantInTop3(t *testing.T) {
	relevant := []string{"viral_infection", "dengue"}
	retrieved := []string{"viral_infection", "dengue", "malaria"}
	got := RecallAtK(relevant, retrieved, 3)
	if !almostEqual(got, 1.0) {
		t.Errorf("expected 1.0, got %f", got)
	}
}

func TestRecallAtK_SomeRelevantMissing(t *testing.T) {
	relevant := []string{"malaria", "typhoid", "dengue", "viral_infection"}
	retrieved := []string{"malaria", "typhoid", "common_cold"}
	got := RecallAtK(relevant, retrieved, 3)
	// 2 of 4 relevant found
	if !almostEqual(got, 0.5) {
		t.Errorf("expected 0.5, got %f", got)
	}
}

func TestRecallAtK_EmptyResults(t *testing.T) {
	relevant := []string{"malaria", "typhoid"}
	retrieved := []string{}
	got := RecallAtK(relevant, retrieved, 3)
	if !almostEqual(got, 0.0) {
		t.Errorf("expected 0.0, got %f", got)
	}
}

func TestRecallAtK_NoRelevantConditions(t *testing.T) {
	relevant := []string{}
	retrieved := []string{"malaria", "typhoid", "dengue"}
	got := RecallAtK(relevant, retrieved, 3)
	// No expected conditions means recall is undefined; we return 0
	if !almostEqual(got, 0.0) {
		t.Errorf("expected 0.0, got %f", got)
	}
}

func TestRecallAtK_KSmallerThanRetrieved(t *testing.T) {
	relevant := []string{"malaria", "typhoid", "dengue"}
	// dengue is at rank 5, but k=3 so we only look at the first 3
	retrieved := []string{"malaria", "typhoid", "common_cold", "flu", "dengue"}
	got := RecallAtK(relevant, retrieved, 3)
	// Only malaria and typhoid in top 3
	if !almostEqual(got, 2.0/3.0) {
		t.Errorf("expected %f, got %f", 2.0/3.0, got)
	}
}

func TestRecallAtK_RetrievedShorterThanK(t *testing.T) {
	relevant := []string{"malaria", "typhoid"}
	retrieved := []string{"malaria"} // only 1 candidate, k=3
	got := RecallAtK(relevant, retrieved, 3)
	if !almostEqual(got, 0.5) {
		t.Errorf("expected 0.5, got %f", got)
	}
}

// --- MRRAtK tests ---

func TestMRRAtK_FirstCandidateRelevant(t *testing.T) {
	relevant := []string{"pneumonia", "common_cold"}
	retrieved := []string{"pneumonia", "flu", "malaria"}
	got := MRRAtK(relevant, retrieved, 3)
	// First relevant at rank 1, reciprocal = 1/1 = 1.0
	if !almostEqual(got, 1.0) {
		t.Errorf("expected 1.0, got %f", got)
	}
}

func TestMRRAtK_ThirdCandidateRelevant(t *testing.T) {
	relevant := []string{"dengue"}
	retrieved := []string{"malaria", "typhoid", "dengue", "flu"}
	got := MRRAtK(relevant, retrieved, 3)
	// First relevant at rank 3, reciprocal = 1/3
	if !almostEqual(got, 1.0/3.0) {
		t.Errorf("expected %f, got %f", 1.0/3.0, got)
	}
}

func TestMRRAtK_NoRelevantInTopK(t *testing.T) {
	relevant := []string{"dengue"}
	retrieved := []string{"malaria", "typhoid", "flu", "dengue"}
	got := MRRAtK(relevant, retrieved, 3)
	// dengue is at rank 4, beyond k=3
	if !almostEqual(got, 0.0) {
		t.Errorf("expected 0.0, got %f", got)
	}
}

func TestMRRAtK_EmptyRelevant(t *testing.T) {
	relevant := []string{}
	retrieved := []string{"malaria", "typhoid"}
	got := MRRAtK(relevant, retrieved, 3)
	if !almostEqual(got, 0.0) {
		t.Errorf("expected 0.0, got %f", got)
	}
}

func TestMRRAtK_EmptyRetrieved(t *testing.T) {
	relevant := []string{"malaria"}
	retrieved := []string{}
	got := MRRAtK(relevant, retrieved, 3)
	if !almostEqual(got, 0.0) {
		t.Errorf("expected 0.0, got %f", got)
	}
}

func TestMRRAtK_MultipleRelevant_ReturnsFirst(t *testing.T) {
	relevant := []string{"malaria", "typhoid", "dengue"}
	retrieved := []string{"flu", "typhoid", "malaria", "dengue"}
	got := MRRAtK(relevant, retrieved, 10)
	// First relevant is typhoid at rank 2, reciprocal = 1/2
	if !almostEqual(got, 0.5) {
		t.Errorf("expected 0.5, got %f", got)
	}
}
