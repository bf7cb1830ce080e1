package entities

// ConditionID is the canonical identifier of a condition
// (normalized form, e.g. "viral_infection").
type ConditionID string

// UrgencyClass controls the "when to seek help" guidance attached to a
// diagnosis. It is a property of the condition, not of the score.
type UrgencyClass string

const (
	UrgencyHigh    UrgencyClass = "high"
	UrgencyMedium  UrgencyClass = "medium"
	UrgencyRoutine UrgencyClass = "routine"
)

// Remedy is one supportive-care suggestion for a condition.
type Remedy struct {
	Name        string `json:"name"`
	Benefit     string `json:"benefit"`
	Explanation string `json:"explanation"`
	Usage       string `json:"usage"`
}

// Condition is one diagnosable entry in the knowledge base. Loaded once at
// startup and read-only afterward.
type Condition struct {
	ID          ConditionID  `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Symptoms    []SymptomID  `json:"symptoms"`
	Precautions []string     `json:"precautions,omitempty"`
	Remedies    []Remedy     `json:"remedies,omitempty"`
	Urgency     UrgencyClass `json:"urgency,omitempty"`
	Contagious  bool         `json:"contagious,omitempty"`
}

// HasSymptom reports whether the condition's signature contains s.
func (c *Condition) HasSymptom(s SymptomID) bool {
	for _, cs := range c.Symptoms {
		if cs == s {
			return true
		}
	}
	return false
}
