package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
)

func newTestTracker(t *testing.T) (*ConversationTracker, *entities.KnowledgeBase) {
	t.Helper()
	kb := testKB(t)
	normalizer := NewSymptomNormalizer(kb)
	engine := NewScoringEngine(kb, DefaultScoringPolicy())
	return NewConversationTracker(kb, normalizer, engine, DefaultTrackerPolicy()), kb
}

func freshState(id string) *entities.ConversationState {
	return entities.NewConversationState(id, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
}

func TestTrack_FreshReportProducesDiagnosisAndDurationQuestion(t *testing.T) {
	tracker, _ := newTestTracker(t)

	out := tracker.Track(freshState("s1"), "I have a fever and a bad cough")

	require.NotNil(t, out.Ranking)
	require.False(t, out.Ranking.IsEmpty())
	assert.Equal(t, entities.PhaseAwaitingFollowup, out.State.Phase)
	assert.Equal(t, entities.FollowupDuration, out.FollowupKind)
	assert.Equal(t, entities.FollowupDuration, out.State.PendingFollowup)
	assert.Equal(t, symptomIDs("cough", "fever"), out.State.ReportedSymptoms)
	assert.Equal(t, 1, out.State.TurnCount)
	require.NotNil(t, out.State.TopCandidate)
}

func TestTrack_UnrecognizedInputStaysAwaitingSymptoms(t *testing.T) {
	tracker, _ := newTestTracker(t)

	out := tracker.Track(freshState("s1"), "purple elbows and gibberish")

	assert.Equal(t, entities.PhaseAwaitingSymptoms, out.State.Phase)
	assert.True(t, out.NeedsClarification)
	assert.Nil(t, out.Ranking)
	assert.Equal(t, entities.FollowupNone, out.FollowupKind)
	assert.Contains(t, out.UnmatchedTerms, "purple")
}

func TestTrack_DurationBands(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		band   entities.DurationBand
	}{
		{"three weeks is long", "3 weeks", entities.DurationLong},
		{"two days is short", "2 days", entities.DurationShort},
		{"five days is medium", "about 5 days now", entities.DurationMedium},
		{"since yesterday is short", "since yesterday", entities.DurationShort},
		{"a long time is long", "a long time", entities.DurationLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker, _ := newTestTracker(t)

			first := tracker.Track(freshState("s1"), "headache")
			require.Equal(t, entities.FollowupDuration, first.FollowupKind)

			second := tracker.Track(first.State, tt.answer)
			assert.True(t, second.DurationResolved)
			assert.Equal(t, tt.band, second.State.DurationBand)
			assert.False(t, second.Reprompt)
		})
	}
}

func TestTrack_UnknownFollowupAnswerReasksSameQuestion(t *testing.T) {
	tracker, _ := newTestTracker(t)

	first := tracker.Track(freshState("s1"), "headache")
	require.Equal(t, entities.FollowupDuration, first.FollowupKind)
	pendingQuestion := first.State.PendingQuestion

	second := tracker.Track(first.State, "hmm not sure what you mean")

	assert.True(t, second.Reprompt)
	assert.Equal(t, entities.FollowupDuration, second.FollowupKind)
	assert.Equal(t, pendingQuestion, second.FollowupPrompt)
	assert.Equal(t, entities.PhaseAwaitingFollowup, second.State.Phase)
	// Diagnosis context is untouched by a failed answer.
	assert.Equal(t, first.State.TopCandidate.ConditionID, second.State.TopCandidate.ConditionID)
}

func TestTrack_NewSymptomsSupersedePendingFollowup(t *testing.T) {
	tracker, _ := newTestTracker(t)

	first := tracker.Track(freshState("s1"), "fever")
	require.Equal(t, entities.PhaseAwaitingFollowup, first.State.Phase)

	// Instead of answering the duration question, the user reports more
	// symptoms; they merge into the cumulative set and re-score.
	second := tracker.Track(first.State, "now I have a skin rash too")

	assert.False(t, second.Reprompt)
	assert.Equal(t, symptomIDs("fever", "rash"), second.State.ReportedSymptoms)
	require.NotNil(t, second.Ranking)
	assert.Equal(t, entities.ConditionID("dengue"), second.Ranking.Top().ConditionID)

	// The superseded duration question is never re-asked; the next
	// scheduled follow-up moves down the priority list.
	assert.NotEqual(t, entities.FollowupDuration, second.FollowupKind)
	assert.Equal(t, entities.FollowupSymptom, second.FollowupKind)
}

func TestTrack_VolunteeredDurationSkipsTheQuestion(t *testing.T) {
	tracker, _ := newTestTracker(t)

	out := tracker.Track(freshState("s1"), "I have had a fever and cough for 3 weeks")

	assert.True(t, out.DurationResolved)
	assert.Equal(t, entities.DurationLong, out.State.DurationBand)
	assert.NotEqual(t, entities.FollowupDuration, out.FollowupKind)
}

func TestTrack_ExposureFollowupForContagiousCondition(t *testing.T) {
	tracker, _ := newTestTracker(t)

	// Flu is contagious in the test base; volunteering the duration
	// leaves exposure as the next question.
	first := tracker.Track(freshState("s1"), "fever, cough and headache since yesterday")
	require.Equal(t, entities.ConditionID("flu"), first.Ranking.Top().ConditionID)
	require.Equal(t, entities.FollowupExposure, first.FollowupKind)

	second := tracker.Track(first.State, "yes, my coworker had the same thing")
	assert.True(t, second.ExposureResolved)
	assert.True(t, second.State.ExposureNoted)
	assert.False(t, second.Reprompt)
}

func TestTrack_ExposureAbsenceIsNoInformation(t *testing.T) {
	tracker, _ := newTestTracker(t)

	first := tracker.Track(freshState("s1"), "fever, cough and headache since yesterday")
	require.Equal(t, entities.FollowupExposure, first.FollowupKind)

	// An answer with no exposure cue resolves the question without
	// recording a negative; it is never re-asked.
	second := tracker.Track(first.State, "no")
	assert.False(t, second.State.ExposureNoted)
	assert.False(t, second.Reprompt)
	assert.NotEqual(t, entities.FollowupExposure, second.FollowupKind)
}

func TestTrack_SymptomConfirmationYesMergesAndRescores(t *testing.T) {
	tracker, _ := newTestTracker(t)

	state := freshState("s1")
	out := tracker.Track(state, "fever and rash for 5 days")
	require.Equal(t, entities.ConditionID("dengue"), out.Ranking.Top().ConditionID)

	// Dengue is not contagious, so after the volunteered duration the
	// tracker asks to confirm a missing symptom.
	require.Equal(t, entities.FollowupSymptom, out.FollowupKind)
	asked := out.State.PendingSymptom
	require.NotEmpty(t, asked)

	confirmed := tracker.Track(out.State, "yes")
	assert.Equal(t, asked, confirmed.ConfirmedSymptom)
	assert.Contains(t, confirmed.State.ReportedSymptoms, asked)
	require.NotNil(t, confirmed.Ranking)
	// The confirmed symptom lifts dengue's match ratio.
	assert.Equal(t, entities.ConditionID("dengue"), confirmed.Ranking.Top().ConditionID)
	assert.Greater(t, confirmed.Ranking.Top().MatchRatio, out.Ranking.Top().MatchRatio)
}

func TestTrack_SymptomConfirmationNoIsNotReasked(t *testing.T) {
	tracker, _ := newTestTracker(t)

	out := tracker.Track(freshState("s1"), "fever and rash for 5 days")
	require.Equal(t, entities.FollowupSymptom, out.FollowupKind)
	declined := out.State.PendingSymptom

	second := tracker.Track(out.State, "nope")
	assert.Equal(t, declined, second.DeclinedSymptom)
	assert.NotContains(t, second.State.ReportedSymptoms, declined)

	// The next confirmation question targets a different symptom.
	if second.FollowupKind == entities.FollowupSymptom {
		assert.NotEqual(t, declined, second.State.PendingSymptom)
	}
}

func TestTrack_FollowupBudgetExhaustsToOpenEndedPrompt(t *testing.T) {
	tracker, _ := newTestTracker(t)

	state := freshState("s1")
	out := tracker.Track(state, "fever")
	answers := []string{"2 days", "no", "no", "no", "no", "no", "no"}
	for _, answer := range answers {
		out = tracker.Track(out.State, answer)
		if out.FollowupKind == entities.FollowupNone {
			break
		}
	}

	assert.Equal(t, entities.FollowupNone, out.FollowupKind)
	assert.Equal(t, entities.PhaseHaveDiagnosis, out.State.Phase)
	assert.LessOrEqual(t, out.State.FollowupsAsked, DefaultTrackerPolicy().MaxFollowupQuestions)
}

func TestTrack_DoesNotMutateInputState(t *testing.T) {
	tracker, _ := newTestTracker(t)

	state := freshState("s1")
	before := state.Clone()

	_ = tracker.Track(state, "fever and cough")

	assert.Equal(t, before.Phase, state.Phase)
	assert.Equal(t, before.ReportedSymptoms, state.ReportedSymptoms)
	assert.Equal(t, before.TurnCount, state.TurnCount)
	assert.Nil(t, state.TopCandidate)
}

func TestTrack_CumulativeContextAcrossTurns(t *testing.T) {
	tracker, _ := newTestTracker(t)

	out := tracker.Track(freshState("s1"), "cough")
	out = tracker.Track(out.State, "3 days")
	out = tracker.Track(out.State, "also a runny nose and throat pain")

	assert.Equal(t, symptomIDs("cough", "runny_nose", "sore_throat"), out.State.ReportedSymptoms)
	require.NotNil(t, out.Ranking)
	assert.Equal(t, entities.ConditionID("common_cold"), out.Ranking.Top().ConditionID)
	assert.Equal(t, entities.TierHigh, out.Ranking.Top().Tier)
	assert.Equal(t, 3, out.State.TurnCount)
}
