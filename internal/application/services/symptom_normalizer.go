package services

import (
	"sort"
	"strings"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	"github.com/obinnaokafor/symptomsense/backend/pkg/textutil"
)

// NormalizationResult holds the canonical symptoms recognized in a
// message plus the leftover terms nothing in the vocabulary covered.
// Unmatched terms feed the suggestion lookup and analytics; they are
// never an error.
type NormalizationResult struct {
	Symptoms       []entities.SymptomID `json:"symptoms"`
	UnmatchedTerms []string             `json:"unmatched_terms,omitempty"`
}

// Matched reports whether at least one symptom was recognized.
func (r *NormalizationResult) Matched() bool {
	return len(r.Symptoms) > 0
}

// SymptomNormalizer maps free text onto the canonical symptom
// vocabulary. Matching is longest alias first over cleaned text, with
// word boundaries, so "head" never fires inside "headache" and a bare
// generic alias cannot shadow a more specific phrase containing it.
// Aliases flagged as stop words ("pain", "ache") are only consulted when
// the first pass recognizes nothing at all.
//
// Normalize is a pure function of the message and the knowledge base.
type SymptomNormalizer struct {
	kb *entities.KnowledgeBase
}

// Terms too generic to report as unrecognized fragments.
var ignoredUnmatchedTerms = map[string]struct{}{
	"a": {}, "also": {}, "an": {}, "and": {}, "am": {}, "been": {},
	"bad": {}, "day": {}, "days": {}, "feel": {}, "feeling": {},
	"for": {}, "had": {}, "has": {}, "have": {}, "i": {}, "in": {},
	"is": {}, "it": {}, "just": {}, "me": {}, "my": {}, "of": {},
	"on": {}, "or": {}, "plus": {}, "really": {}, "since": {},
	"so": {}, "some": {}, "the": {}, "this": {}, "to": {},
	"very": {}, "week": {}, "weeks": {}, "with": {},
}

func NewSymptomNormalizer(kb *entities.KnowledgeBase) *SymptomNormalizer {
	return &SymptomNormalizer{kb: kb}
}

// Normalize extracts canonical symptom ids from a raw message. Empty or
// entirely unrecognized input yields an empty symptom list, never an
// error; the caller decides whether to ask a clarifying question.
func (n *SymptomNormalizer) Normalize(text string) *NormalizationResult {
	result := &NormalizationResult{}

	cleaned := textutil.CleanText(text)
	if cleaned == "" {
		return result
	}

	// Padding turns word-boundary checks into plain substring searches:
	// every token, including the first and last, is space-delimited.
	padded := " " + cleaned + " "
	consumed := make([]bool, len(padded))
	found := make(map[entities.SymptomID]struct{})

	n.matchPass(padded, consumed, found, false)
	if len(found) == 0 {
		n.matchPass(padded, consumed, found, true)
	}

	for id := range found {
		result.Symptoms = append(result.Symptoms, id)
	}
	sort.Slice(result.Symptoms, func(i, j int) bool {
		return result.Symptoms[i] < result.Symptoms[j]
	})

	result.UnmatchedTerms = collectUnmatchedTerms(padded, consumed)
	return result
}

// matchPass runs one sweep over the alias index. Entries are ordered
// longest phrase first, and every occurrence a matched alias covers is
// consumed, so a shorter alias belonging to a different symptom cannot
// re-match inside a phrase already claimed.
func (n *SymptomNormalizer) matchPass(padded string, consumed []bool, found map[entities.SymptomID]struct{}, stopWords bool) {
	for _, entry := range n.kb.AliasEntries() {
		if entry.StopWord != stopWords {
			continue
		}
		needle := " " + entry.Phrase + " "
		from := 0
		for {
			idx := strings.Index(padded[from:], needle)
			if idx < 0 {
				break
			}
			start := from + idx + 1
			end := start + len(entry.Phrase)
			if !spanConsumed(consumed, start, end) {
				markConsumed(consumed, start, end)
				found[entry.Symptom] = struct{}{}
			}
			// Overlapping occurrences share the boundary space.
			from = from + idx + 1
		}
	}
}

func spanConsumed(consumed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if consumed[i] {
			return true
		}
	}
	return false
}

func markConsumed(consumed []bool, start, end int) {
	for i := start; i < end; i++ {
		consumed[i] = true
	}
}

// collectUnmatchedTerms walks the unconsumed tokens and keeps the ones
// worth surfacing as "not recognized" fragments.
func collectUnmatchedTerms(padded string, consumed []bool) []string {
	var terms []string
	seen := make(map[string]struct{})

	i := 0
	for i < len(padded) {
		if padded[i] == ' ' {
			i++
			continue
		}
		start := i
		for i < len(padded) && padded[i] != ' ' {
			i++
		}
		if spanConsumed(consumed, start, i) {
			continue
		}
		term := padded[start:i]
		if !shouldTrackUnmatchedTerm(term) {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return terms
}

func shouldTrackUnmatchedTerm(term string) bool {
	if len(term) < 2 || len(term) > 32 {
		return false
	}
	if _, ignore := ignoredUnmatchedTerms[term]; ignore {
		return false
	}
	return true
}
