package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/providers"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/repositories"
	apperrors "github.com/obinnaokafor/symptomsense/backend/pkg/errors"
)

// maxSuggestions caps the rephrasing hints offered on unrecognized input.
const maxSuggestions = 3

// TriageService orchestrates one conversation turn end to end: load the
// session, screen for red flags, run the conversation tracker, compose
// the reply, persist the successor state, and fan out events and
// analytics. It is the only service that touches storage; everything it
// delegates to is pure.
type TriageService struct {
	kb          *entities.KnowledgeBase
	normalizer  *SymptomNormalizer
	detector    *EmergencyDetector
	tracker     *ConversationTracker
	recommender *RecommendationService
	sessions    repositories.SessionRepository
	analytics   *TurnAnalyticsService
	suggester   providers.SuggestionProvider
	extractor   providers.PhraseExtractor
	events      providers.EventBus
	now         func() time.Time
}

// NewTriageService wires the turn pipeline. analytics, suggester,
// extractor, and events may be nil; the corresponding behavior is
// skipped.
func NewTriageService(
	kb *entities.KnowledgeBase,
	normalizer *SymptomNormalizer,
	detector *EmergencyDetector,
	tracker *ConversationTracker,
	recommender *RecommendationService,
	sessions repositories.SessionRepository,
	analytics *TurnAnalyticsService,
	suggester providers.SuggestionProvider,
	extractor providers.PhraseExtractor,
	events providers.EventBus,
) *TriageService {
	return &TriageService{
		kb:          kb,
		normalizer:  normalizer,
		detector:    detector,
		tracker:     tracker,
		recommender: recommender,
		sessions:    sessions,
		analytics:   analytics,
		suggester:   suggester,
		extractor:   extractor,
		events:      events,
		now:         time.Now,
	}
}

// ProcessTurn handles one user message for a session. An empty sessionID
// starts a new session with a minted id; an unknown one restarts cleanly.
// Every recoverable condition (unrecognized input, ambiguous answers)
// lands in the TurnResult, never in the error return.
func (s *TriageService) ProcessTurn(ctx context.Context, sessionID, message string) (*entities.TurnResult, error) {
	started := s.now()
	message = strings.TrimSpace(message)

	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	norm := s.normalizer.Normalize(message)

	// Red flags are screened against everything reported so far plus
	// whatever this message adds, before any scoring. A match ends the
	// turn; no candidate list competes with it.
	union := state.SymptomSet()
	for _, id := range norm.Symptoms {
		union[id] = struct{}{}
	}
	if assessment := s.detector.Assess(union); assessment != nil {
		successor := state.Clone()
		successor.TurnCount++
		successor.UpdatedAt = s.now().UTC()
		successor.MergeSymptoms(norm.Symptoms)
		return s.escalate(ctx, successor, message, len(norm.Symptoms), assessment, started)
	}

	outcome := s.tracker.Track(state, message)

	// A confirmed symptom can complete a red-flag pair the raw message
	// alone could not: re-screen before composing the reply.
	if outcome.ConfirmedSymptom != "" {
		if assessment := s.detector.Assess(outcome.State.SymptomSet()); assessment != nil {
			return s.escalate(ctx, outcome.State, message, len(norm.Symptoms), assessment, started)
		}
	}

	result := s.composeResult(ctx, outcome, message)

	if err := s.sessions.Save(ctx, outcome.State); err != nil {
		return nil, err
	}

	s.trackTurn(ctx, result, message, len(outcome.NewSymptoms), started)
	return result, nil
}

// GetSession returns the stored state for a session id.
func (s *TriageService) GetSession(ctx context.Context, sessionID string) (*entities.ConversationState, error) {
	return s.sessions.Get(ctx, sessionID)
}

// ResetSession deletes a session so the next turn starts fresh. Unknown
// ids reset to nothing, which is not an error.
func (s *TriageService) ResetSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// loadState fetches the session state, absorbing not-found into a fresh
// awaiting-symptoms state. Anything else is a real storage failure.
func (s *TriageService) loadState(ctx context.Context, sessionID string) (*entities.ConversationState, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err == nil {
		return state, nil
	}
	if apperrors.IsNotFound(err) {
		return entities.NewConversationState(sessionID, s.now().UTC()), nil
	}
	return nil, err
}

// escalate finishes a turn that tripped an emergency profile: the
// successor state is persisted with any pending question cleared, the
// alert goes out on the event bus, and the reply leads with the
// immediate actions.
func (s *TriageService) escalate(ctx context.Context, state *entities.ConversationState, message string, matchedCount int, a *entities.EmergencyAssessment, started time.Time) (*entities.TurnResult, error) {
	state.Phase = entities.PhaseHaveDiagnosis
	state.ClearPending()

	result := &entities.TurnResult{
		SessionID: state.SessionID,
		Turn:      state.TurnCount,
		Phase:     state.Phase,
		Message:   s.recommender.EmergencyMessage(a),
		Emergency: a,
		Context:   s.contextSummary(state),
	}

	if err := s.sessions.Save(ctx, state); err != nil {
		return nil, err
	}

	s.publishAlert(ctx, entities.NewEmergencyEvent(state.SessionID, a))
	s.trackTurn(ctx, result, message, matchedCount, started)
	return result, nil
}

// composeResult turns a tracker outcome into the API-facing result.
func (s *TriageService) composeResult(ctx context.Context, outcome *TrackOutcome, rawMessage string) *entities.TurnResult {
	state := outcome.State
	result := &entities.TurnResult{
		SessionID:      state.SessionID,
		Turn:           state.TurnCount,
		Phase:          state.Phase,
		FollowupKind:   outcome.FollowupKind,
		FollowupPrompt: outcome.FollowupPrompt,
		Context:        s.contextSummary(state),
	}
	if outcome.Ranking != nil {
		result.Candidates = outcome.Ranking.Candidates
	}

	switch {
	case outcome.Reprompt:
		result.Message = "Sorry, I didn't catch that. " + outcome.FollowupPrompt

	case outcome.NeedsClarification:
		result.Suggestions = s.suggestionsFor(ctx, rawMessage, outcome.UnmatchedTerms)
		result.Message = s.recommender.ClarificationMessage(result.Suggestions)

	case outcome.Ranking == nil || outcome.Ranking.IsEmpty():
		result.Message = s.recommender.NoMatchMessage()

	default:
		top := outcome.Ranking.Top()
		result.Message = s.recommender.DiagnosisMessage(top, outcome.FollowupPrompt)
		result.Recommendation = s.recommender.Compose(top, state)
	}
	return result
}

// suggestionsFor builds "did you mean" hints for a message nothing in the
// vocabulary matched: fuzzy vocabulary search over the unmatched terms
// first, then the model-backed extractor, whose phrases are only offered
// back when the deterministic normalizer recognizes them. Falls back to
// vocabulary examples so the clarification is never a dead end.
func (s *TriageService) suggestionsFor(ctx context.Context, message string, unmatched []string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(label string) {
		if label == "" {
			return
		}
		if _, dup := seen[label]; dup {
			return
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}

	if s.suggester != nil {
		for _, term := range unmatched {
			if len(out) >= maxSuggestions {
				break
			}
			matches, err := s.suggester.Suggest(ctx, term, maxSuggestions)
			if err != nil {
				log.Warn().Err(err).Str("term", term).Msg("symptom suggestion lookup failed")
				continue
			}
			for _, m := range matches {
				add(m.Label)
			}
		}
	}

	if len(out) == 0 && s.extractor != nil {
		phrases, err := s.extractor.ExtractPhrases(ctx, message)
		if err != nil {
			log.Warn().Err(err).Msg("phrase extraction failed")
		}
		for _, phrase := range phrases {
			for _, id := range s.normalizer.Normalize(phrase).Symptoms {
				add(s.kb.SymptomLabel(id))
			}
		}
	}

	if len(out) == 0 {
		for i, symptom := range s.kb.Symptoms() {
			if i >= maxSuggestions {
				break
			}
			add(symptom.DisplayLabel())
		}
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

func (s *TriageService) contextSummary(state *entities.ConversationState) entities.ContextSummary {
	labels := make([]string, 0, len(state.ReportedSymptoms))
	for _, id := range state.ReportedSymptoms {
		labels = append(labels, s.kb.SymptomLabel(id))
	}
	return entities.ContextSummary{
		ReportedSymptoms: labels,
		DurationBand:     state.DurationBand,
		ExposureNoted:    state.ExposureNoted,
		TurnCount:        state.TurnCount,
	}
}

// publishAlert fans the event out on the global alert channel and the
// session's own channel, so both dashboard-wide and per-session streams
// see it.
func (s *TriageService) publishAlert(ctx context.Context, event *entities.TriageEvent) {
	if s.events == nil {
		return
	}
	for _, channel := range []string{providers.EventChannelAlerts, providers.GetSessionChannel(event.SessionID)} {
		if err := s.events.Publish(ctx, channel, event); err != nil {
			log.Warn().Err(err).Str("session_id", event.SessionID).Str("channel", channel).Msg("failed to publish emergency alert")
		}
	}
}

func (s *TriageService) trackTurn(ctx context.Context, result *entities.TurnResult, rawMessage string, matchedCount int, started time.Time) {
	if s.analytics == nil {
		return
	}
	s.analytics.TrackTurn(ctx, entities.NewTurnEvent(result, rawMessage, matchedCount, s.now().Sub(started)))
}
