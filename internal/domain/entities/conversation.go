package entities

import (
	"sort"
	"time"
)

// Phase is where a conversation stands in the triage flow.
type Phase string

const (
	PhaseAwaitingSymptoms Phase = "AWAITING_SYMPTOMS"
	PhaseHaveDiagnosis    Phase = "HAVE_DIAGNOSIS"
	PhaseAwaitingFollowup Phase = "AWAITING_FOLLOWUP"
)

// FollowupKind identifies which follow-up question is pending, so the
// next turn knows how to interpret a bare answer like "yes" or "3 days".
type FollowupKind string

const (
	FollowupNone     FollowupKind = ""
	FollowupDuration FollowupKind = "duration"
	FollowupExposure FollowupKind = "exposure"
	FollowupSymptom  FollowupKind = "symptom"
)

// DurationBand classifies how long symptoms have lasted.
type DurationBand string

const (
	DurationUnknown DurationBand = ""
	DurationShort   DurationBand = "short"
	DurationMedium  DurationBand = "medium"
	DurationLong    DurationBand = "long"
)

// ConversationState is everything the tracker needs between turns. It is
// a plain value: the tracker returns a new state each turn and the store
// persists it, which keeps the engine itself free of I/O.
type ConversationState struct {
	SessionID        string                  `json:"session_id"`
	Phase            Phase                   `json:"phase"`
	ReportedSymptoms []SymptomID             `json:"reported_symptoms"`
	TopCandidate     *DiagnosisCandidate     `json:"top_candidate,omitempty"`
	PendingFollowup  FollowupKind            `json:"pending_followup,omitempty"`
	PendingQuestion  string                  `json:"pending_question,omitempty"`
	PendingSymptom   SymptomID               `json:"pending_symptom,omitempty"`
	AskedFollowups   map[FollowupKind]bool   `json:"asked_followups,omitempty"`
	AskedSymptoms    map[SymptomID]bool      `json:"asked_symptoms,omitempty"`
	DeclinedSymptoms map[SymptomID]bool      `json:"declined_symptoms,omitempty"`
	DurationBand     DurationBand            `json:"duration_band,omitempty"`
	DurationDays     int                     `json:"duration_days,omitempty"`
	ExposureNoted    bool                    `json:"exposure_noted,omitempty"`
	FollowupsAsked   int                     `json:"followups_asked"`
	TurnCount        int                     `json:"turn_count"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// NewConversationState starts a session in the awaiting-symptoms phase.
func NewConversationState(sessionID string, now time.Time) *ConversationState {
	return &ConversationState{
		SessionID: sessionID,
		Phase:     PhaseAwaitingSymptoms,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone deep-copies the state so a turn can build its successor without
// mutating what the store handed out.
func (s *ConversationState) Clone() *ConversationState {
	out := *s
	out.ReportedSymptoms = append([]SymptomID(nil), s.ReportedSymptoms...)
	if s.TopCandidate != nil {
		tc := *s.TopCandidate
		tc.MatchedSymptoms = append([]SymptomID(nil), s.TopCandidate.MatchedSymptoms...)
		tc.MissingSymptoms = append([]SymptomID(nil), s.TopCandidate.MissingSymptoms...)
		out.TopCandidate = &tc
	}
	out.AskedFollowups = copyKindSet(s.AskedFollowups)
	out.AskedSymptoms = copySymptomSet(s.AskedSymptoms)
	out.DeclinedSymptoms = copySymptomSet(s.DeclinedSymptoms)
	return &out
}

// MergeSymptoms adds new symptom ids to the cumulative report, keeping
// the slice sorted and duplicate free. Returns how many were new.
func (s *ConversationState) MergeSymptoms(ids []SymptomID) int {
	present := make(map[SymptomID]struct{}, len(s.ReportedSymptoms))
	for _, id := range s.ReportedSymptoms {
		present[id] = struct{}{}
	}
	added := 0
	for _, id := range ids {
		if _, ok := present[id]; ok {
			continue
		}
		present[id] = struct{}{}
		s.ReportedSymptoms = append(s.ReportedSymptoms, id)
		added++
	}
	if added > 0 {
		sort.Slice(s.ReportedSymptoms, func(i, j int) bool {
			return s.ReportedSymptoms[i] < s.ReportedSymptoms[j]
		})
	}
	return added
}

// SymptomSet returns the reported symptoms as a set.
func (s *ConversationState) SymptomSet() map[SymptomID]struct{} {
	set := make(map[SymptomID]struct{}, len(s.ReportedSymptoms))
	for _, id := range s.ReportedSymptoms {
		set[id] = struct{}{}
	}
	return set
}

// MarkFollowupAsked records that a follow-up kind has been used so it is
// never asked twice in one session.
func (s *ConversationState) MarkFollowupAsked(kind FollowupKind) {
	if s.AskedFollowups == nil {
		s.AskedFollowups = make(map[FollowupKind]bool)
	}
	s.AskedFollowups[kind] = true
	s.FollowupsAsked++
}

// MarkSymptomAsked records a symptom confirmation question.
func (s *ConversationState) MarkSymptomAsked(id SymptomID) {
	if s.AskedSymptoms == nil {
		s.AskedSymptoms = make(map[SymptomID]bool)
	}
	s.AskedSymptoms[id] = true
}

// MarkSymptomDeclined records a "no" answer so the same symptom is not
// asked about again.
func (s *ConversationState) MarkSymptomDeclined(id SymptomID) {
	if s.DeclinedSymptoms == nil {
		s.DeclinedSymptoms = make(map[SymptomID]bool)
	}
	s.DeclinedSymptoms[id] = true
}

// ClearPending wipes the pending follow-up bookkeeping after an answer
// has been consumed or superseded.
func (s *ConversationState) ClearPending() {
	s.PendingFollowup = FollowupNone
	s.PendingQuestion = ""
	s.PendingSymptom = ""
}

func copyKindSet(in map[FollowupKind]bool) map[FollowupKind]bool {
	if in == nil {
		return nil
	}
	out := make(map[FollowupKind]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copySymptomSet(in map[SymptomID]bool) map[SymptomID]bool {
	if in == nil {
		return nil
	}
	out := make(map[SymptomID]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
