package evaluation

import "time"

// Category groups golden cases by the kind of input they exercise.
type Category string

const (
	CategorySingleSymptom Category = "single_symptom" // e.g., "sore throat"
	CategoryMultiSymptom  Category = "multi_symptom"  // e.g., "fever and body pain"
	CategoryColloquial    Category = "colloquial"     // e.g., "my body dey hot"
	CategoryEmergency     Category = "emergency"      // e.g., "chest pain and can't breathe"
)

// ValidCategories returns all valid category values.
func ValidCategories() []Category {
	return []Category{CategorySingleSymptom, CategoryMultiSymptom, CategoryColloquial, CategoryEmergency}
}

// IsValid checks if the category value is one of the defined constants.
func (c Category) IsValid() bool {
	switch c {
	case CategorySingleSymptom, CategoryMultiSymptom, CategoryColloquial, CategoryEmergency:
		return true
	}
	return false
}

// GoldenCase represents a labeled triage input with expected outcomes.
// ExpectedConditions lists condition IDs, most expected first; emergency
// cases may leave it empty since escalation bypasses ranking.
type GoldenCase struct {
	ID                 string   `json:"id"`
	Message            string   `json:"message"`
	Category           Category `json:"category"`
	ExpectedConditions []string `json:"expected_conditions"`
	ExpectEmergency    bool     `json:"expect_emergency"`
	Difficulty         string   `json:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single case.
type EvalResult struct {
	CaseID              string
	Message             string
	Category            Category
	Top1Hit             float64
	RecallAt3           float64
	MRR                 float64
	EmergencyExpected   bool
	EmergencyDetected   bool
	RetrievedConditions []string
	Latency             time.Duration
}

// EvalSummary holds aggregate metrics across all golden cases.
type EvalSummary struct {
	TotalCases      int
	RankedCases     int // cases carrying expected conditions
	EmergencyCases  int // cases expecting an escalation
	Top1Accuracy    float64
	RecallAt3       float64
	MRR             float64
	EmergencyRecall float64
	FalseAlarms     int // non-emergency cases that escalated anyway
	CasesWithHits   int // cases that produced at least 1 candidate
	Errors          int
	AvgLatency      time.Duration
	ByCategory      map[Category]*CategorySummary
}

// CategorySummary holds ranking metrics grouped by case category.
type CategorySummary struct {
	Count        int
	Top1Accuracy float64
	RecallAt3    float64
	MRR          float64
}
