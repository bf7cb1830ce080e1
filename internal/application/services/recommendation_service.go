package services

import (
	"fmt"
	"strings"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
)

// medicalDisclaimer is attached to every composed recommendation.
const medicalDisclaimer = "This is for informational purposes only. Consult a healthcare professional for proper medical advice."

const noMatchMessage = "Symptoms are unclear. Please consult a doctor if they persist."

// RecommendationService composes the care guidance and the human-readable
// reply for a turn: precautions and remedies for the leading condition,
// urgency-driven "when to seek help" advice, and the message text the CLI
// and messaging channels render. Pure; all data comes from the knowledge
// base.
type RecommendationService struct {
	kb *entities.KnowledgeBase
}

func NewRecommendationService(kb *entities.KnowledgeBase) *RecommendationService {
	return &RecommendationService{kb: kb}
}

// Compose builds the guidance block for the leading candidate. Returns nil
// when the condition is unknown to the base.
func (r *RecommendationService) Compose(top *entities.DiagnosisCandidate, state *entities.ConversationState) *entities.Recommendation {
	if top == nil {
		return nil
	}
	c := r.kb.Condition(top.ConditionID)
	if c == nil {
		return nil
	}

	return &entities.Recommendation{
		ConditionName:  c.Name,
		Urgency:        c.Urgency,
		Precautions:    append([]string(nil), c.Precautions...),
		Remedies:       append([]entities.Remedy(nil), c.Remedies...),
		WhenToSeekHelp: r.adviceFor(c.Urgency, state.DurationBand),
		Disclaimer:     medicalDisclaimer,
	}
}

// adviceFor maps the condition's urgency class to seek-help guidance. A
// long-running complaint escalates routine advice: two weeks of symptoms
// deserve a professional look regardless of how mild the leading
// condition is.
func (r *RecommendationService) adviceFor(urgency entities.UrgencyClass, band entities.DurationBand) string {
	switch urgency {
	case entities.UrgencyHigh:
		return "See a doctor as soon as possible, today if you can."
	case entities.UrgencyMedium:
		if band == entities.DurationLong {
			return "Your symptoms have lasted two weeks or more. See a healthcare provider within the next day; seek immediate care if they worsen."
		}
		return "Schedule a visit with a healthcare provider within the next day or two. Seek immediate care if symptoms worsen."
	default:
		if band == entities.DurationLong {
			return "Symptoms lasting two weeks or more should be reviewed by a healthcare provider even when they feel mild."
		}
		return "Monitor your symptoms for a few days and see a healthcare provider if they persist or worsen."
	}
}

// EmergencyMessage renders the escalation reply. Immediate actions come
// first; everything else about the turn is secondary to them.
func (r *RecommendationService) EmergencyMessage(a *entities.EmergencyAssessment) string {
	var b strings.Builder
	b.WriteString("URGENT: your symptoms match ")
	b.WriteString(a.ConditionName)
	b.WriteString(". This could be a medical emergency.")
	for _, action := range a.ImmediateActions {
		b.WriteString("\n- ")
		b.WriteString(action)
	}
	b.WriteString("\nPlease get medical attention right away.")
	return b.String()
}

// ClarificationMessage renders the reply for input with no recognizable
// symptoms, offering rephrasings when the suggester produced any.
func (r *RecommendationService) ClarificationMessage(suggestions []string) string {
	msg := "I couldn't recognize any symptoms in that. Could you describe how you're feeling in different words?"
	if len(suggestions) > 0 {
		msg += " For example: " + strings.Join(suggestions, ", ") + "."
	}
	return msg
}

// NoMatchMessage renders the reply when symptoms were recognized but no
// condition in the base shares any of them.
func (r *RecommendationService) NoMatchMessage() string {
	return noMatchMessage
}

// DiagnosisMessage renders the main reply line for a scored turn: the
// leading condition with its confidence tier, then the pending follow-up
// question when one was scheduled.
func (r *RecommendationService) DiagnosisMessage(top *entities.DiagnosisCandidate, followupPrompt string) string {
	msg := fmt.Sprintf("Based on your symptoms, it appears you might have %s (confidence: %s).",
		top.ConditionName, top.Tier)
	if followupPrompt != "" {
		msg += " " + followupPrompt
	}
	return msg
}
