package services

import (
	"time"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
)

// Follow-up question text, keyed by what the tracker is waiting for.
const (
	durationQuestion  = "How long have you had these symptoms?"
	exposureQuestion  = "Have you been around anyone who was sick recently?"
	openEndedQuestion = "Is there anything else about your symptoms you'd like to share?"
)

// TrackOutcome describes what one processed message did to the
// conversation: the successor state, the ranking when this turn
// (re)scored, and which follow-up resolved or got scheduled.
type TrackOutcome struct {
	State              *entities.ConversationState
	Ranking            *entities.Ranking
	NewSymptoms        []entities.SymptomID
	UnmatchedTerms     []string
	NeedsClarification bool
	Reprompt           bool
	DurationResolved   bool
	ExposureResolved   bool
	ConfirmedSymptom   entities.SymptomID
	DeclinedSymptom    entities.SymptomID
	FollowupKind       entities.FollowupKind
	FollowupPrompt     string
}

// ConversationTracker is the per-turn state machine. Each turn it reads
// the message against the session's phase, resolves any pending
// follow-up, merges newly reported symptoms into the cumulative set,
// re-scores, and schedules the next follow-up question.
//
// Track never mutates the state it is given and performs no I/O: it is
// a pure function of (state, message, knowledge base) apart from the
// clock stamping UpdatedAt. Persisting the successor state is the
// caller's job.
type ConversationTracker struct {
	kb         *entities.KnowledgeBase
	normalizer *SymptomNormalizer
	engine     *ScoringEngine
	policy     TrackerPolicy
	now        func() time.Time
}

func NewConversationTracker(kb *entities.KnowledgeBase, normalizer *SymptomNormalizer, engine *ScoringEngine, policy TrackerPolicy) *ConversationTracker {
	return &ConversationTracker{
		kb:         kb,
		normalizer: normalizer,
		engine:     engine,
		policy:     policy,
		now:        time.Now,
	}
}

// Track processes one message against the session state and returns the
// successor state plus everything the response needs.
func (t *ConversationTracker) Track(prev *entities.ConversationState, message string) *TrackOutcome {
	state := prev.Clone()
	state.TurnCount++
	state.UpdatedAt = t.now().UTC()

	norm := t.normalizer.Normalize(message)
	out := &TrackOutcome{
		State:          state,
		NewSymptoms:    t.newlyReported(state, norm.Symptoms),
		UnmatchedTerms: norm.UnmatchedTerms,
	}

	// Context is read opportunistically from every message: a duration
	// or exposure mention counts whether or not it was asked for, so a
	// report like "fever for 3 weeks" never triggers the question it
	// already answered.
	t.readContext(state, message, out)

	if state.Phase == entities.PhaseAwaitingFollowup {
		answered := t.resolvePending(state, message, out)
		if !answered && len(norm.Symptoms) == 0 {
			// The reply matched neither the expected kind nor any
			// symptom: re-ask the same question, diagnosis untouched.
			out.Reprompt = true
			out.FollowupKind = state.PendingFollowup
			out.FollowupPrompt = state.PendingQuestion
			return out
		}
		// Answered, or superseded by fresh symptom content.
		state.ClearPending()
	}

	state.MergeSymptoms(norm.Symptoms)

	if len(state.ReportedSymptoms) == 0 {
		// Nothing recognizable reported yet; keep waiting.
		state.Phase = entities.PhaseAwaitingSymptoms
		out.NeedsClarification = true
		return out
	}

	ranking := t.engine.Score(state.SymptomSet())
	out.Ranking = ranking

	if ranking.IsEmpty() {
		// Symptoms were recognized but no condition shares any of them;
		// distinct from unrecognized input, same waiting phase.
		state.Phase = entities.PhaseAwaitingSymptoms
		state.TopCandidate = nil
		return out
	}

	state.Phase = entities.PhaseHaveDiagnosis
	top := *ranking.Top()
	state.TopCandidate = &top

	t.scheduleFollowup(state, out)
	return out
}

// newlyReported returns the ids in found that the session has not seen.
func (t *ConversationTracker) newlyReported(state *entities.ConversationState, found []entities.SymptomID) []entities.SymptomID {
	if len(found) == 0 {
		return nil
	}
	present := state.SymptomSet()
	var fresh []entities.SymptomID
	for _, id := range found {
		if _, ok := present[id]; !ok {
			fresh = append(fresh, id)
		}
	}
	return fresh
}

// readContext pulls duration and exposure mentions out of any message,
// regardless of what question is pending.
func (t *ConversationTracker) readContext(state *entities.ConversationState, message string, out *TrackOutcome) {
	if state.DurationBand == entities.DurationUnknown {
		if band, days, ok := recognizeDuration(message, t.policy); ok {
			state.DurationBand = band
			state.DurationDays = days
			out.DurationResolved = true
		}
	}
	if !state.ExposureNoted && recognizeExposure(message) {
		state.ExposureNoted = true
		out.ExposureResolved = true
	}
}

// resolvePending interprets the message against the expected follow-up
// kind. Returns false when the reply matched nothing the kind expects,
// in which case the caller decides between re-asking and moving on.
func (t *ConversationTracker) resolvePending(state *entities.ConversationState, message string, out *TrackOutcome) bool {
	switch state.PendingFollowup {
	case entities.FollowupDuration:
		// readContext already consumed a recognizable duration.
		return out.DurationResolved || state.DurationBand != entities.DurationUnknown

	case entities.FollowupExposure:
		// A bare "yes" to the exposure question counts as contact; a
		// bare "no" just leaves exposure unknown. Either way the
		// question is answered: absence of a match is "no information",
		// never grounds to nag.
		if recognizeYesNo(message) == PolarityYes && !state.ExposureNoted {
			state.ExposureNoted = true
			out.ExposureResolved = true
		}
		return true

	case entities.FollowupSymptom:
		switch recognizeYesNo(message) {
		case PolarityYes:
			if state.PendingSymptom != "" {
				state.MergeSymptoms([]entities.SymptomID{state.PendingSymptom})
				out.ConfirmedSymptom = state.PendingSymptom
			}
			return true
		case PolarityNo:
			if state.PendingSymptom != "" {
				state.MarkSymptomDeclined(state.PendingSymptom)
				out.DeclinedSymptom = state.PendingSymptom
			}
			return true
		default:
			return false
		}

	default:
		return true
	}
}

// scheduleFollowup picks the next question by fixed priority: duration,
// then exposure (contagious conditions only), then confirmation of the
// top candidate's missing symptoms, until the per-session budget runs
// out. Once nothing is left to ask, the conversation gets the generic
// open-ended prompt.
func (t *ConversationTracker) scheduleFollowup(state *entities.ConversationState, out *TrackOutcome) {
	out.FollowupKind = entities.FollowupNone
	out.FollowupPrompt = openEndedQuestion

	if state.FollowupsAsked >= t.policy.MaxFollowupQuestions {
		return
	}

	if state.DurationBand == entities.DurationUnknown && !state.AskedFollowups[entities.FollowupDuration] {
		t.ask(state, out, entities.FollowupDuration, "", durationQuestion)
		return
	}

	top := t.kb.Condition(state.TopCandidate.ConditionID)
	if top != nil && top.Contagious && !state.ExposureNoted && !state.AskedFollowups[entities.FollowupExposure] {
		t.ask(state, out, entities.FollowupExposure, "", exposureQuestion)
		return
	}

	for _, missing := range state.TopCandidate.MissingSymptoms {
		if state.AskedSymptoms[missing] || state.DeclinedSymptoms[missing] {
			continue
		}
		question := "Are you also experiencing " + t.kb.SymptomLabel(missing) + "?"
		state.MarkSymptomAsked(missing)
		t.ask(state, out, entities.FollowupSymptom, missing, question)
		return
	}
}

func (t *ConversationTracker) ask(state *entities.ConversationState, out *TrackOutcome, kind entities.FollowupKind, symptom entities.SymptomID, question string) {
	state.Phase = entities.PhaseAwaitingFollowup
	state.PendingFollowup = kind
	state.PendingQuestion = question
	state.PendingSymptom = symptom
	state.MarkFollowupAsked(kind)
	out.FollowupKind = kind
	out.FollowupPrompt = question
}
