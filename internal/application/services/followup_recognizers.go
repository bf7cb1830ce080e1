package services

import (
	"regexp"
	"strconv"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	"github.com/obinnaokafor/symptomsense/backend/pkg/textutil"
)

// TrackerPolicy holds the conversational tuning constants: the duration
// band cutoffs and the follow-up question budget per session. Days
// between the short and long cutoffs classify as medium.
type TrackerPolicy struct {
	ShortDurationMaxDays int
	LongDurationMinDays  int
	MaxFollowupQuestions int
}

// DefaultTrackerPolicy mirrors the configuration defaults.
func DefaultTrackerPolicy() TrackerPolicy {
	return TrackerPolicy{
		ShortDurationMaxDays: 3,
		LongDurationMinDays:  14,
		MaxFollowupQuestions: 5,
	}
}

// Polarity is the outcome of reading a reply to a yes/no question.
type Polarity int

const (
	PolarityUnknown Polarity = iota
	PolarityYes
	PolarityNo
)

// A leading "more than" or "over" bumps the count by one day, so "more
// than a week" lands past the plain week mark.
var durationPattern = regexp.MustCompile(
	`\b(?:(more than|over)\s+)?(\d+|an|a|one|two|three|four|five|six|seven|eight|nine|ten|couple|few)\s+(?:of\s+)?(hour|day|week|month)s?\b`)

var numberWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "couple": 2, "few": 3,
	"three": 3, "four": 4, "five": 5, "six": 6, "seven": 7,
	"eight": 8, "nine": 9, "ten": 10,
}

// Qualitative phrases carry an approximate day count. Checked in order,
// most specific first, after the numeric pattern found nothing.
var qualitativeDurations = []struct {
	phrase string
	days   int
}{
	{"since this morning", 0},
	{"since yesterday", 1},
	{"since last week", 7},
	{"just started", 0},
	{"a long time", 14},
	{"long time", 14},
	{"all week", 7},
	{"for months", 30},
	{"for weeks", 14},
	{"for ages", 14},
	{"this morning", 0},
	{"yesterday", 1},
	{"forever", 14},
	{"chronic", 14},
	{"today", 0},
}

var affirmativePhrases = []string{
	"yes", "yeah", "yep", "yup", "sure", "definitely", "correct",
	"absolutely", "indeed", "certainly", "of course", "i think so",
	"i do", "i am", "i have", "y",
}

var negativePhrases = []string{
	"no", "nope", "nah", "never", "not really", "not at all", "none",
	"negative", "i dont", "i don t", "dont think so", "don t think so",
	"i havent", "i haven t", "n",
}

var exposurePhrases = []string{
	"exposed", "exposure", "been around", "around someone",
	"someone sick", "sick people", "people sick", "contact with",
	"in contact", "same symptoms", "similar symptoms", "my wife",
	"my husband", "my partner", "my child", "my kids", "my son",
	"my daughter", "coworker", "colleague", "classmate", "roommate",
	"flatmate", "family member", "everyone at",
}

// recognizeDuration reads a duration out of free text. Numeric forms
// ("3 weeks", "couple of days") win over qualitative ones ("since
// yesterday"). Returns the band, the approximate day count, and whether
// anything was recognized at all.
func recognizeDuration(text string, policy TrackerPolicy) (entities.DurationBand, int, bool) {
	cleaned := textutil.CleanText(text)
	if cleaned == "" {
		return entities.DurationUnknown, 0, false
	}

	if m := durationPattern.FindStringSubmatch(cleaned); m != nil {
		n, ok := numberWords[m[2]]
		if !ok {
			parsed, err := strconv.Atoi(m[2])
			if err != nil {
				return entities.DurationUnknown, 0, false
			}
			n = parsed
		}
		days := 0
		switch m[3] {
		case "hour":
			days = n / 24
		case "day":
			days = n
		case "week":
			days = n * 7
		case "month":
			days = n * 30
		}
		if m[1] != "" {
			days++
		}
		return classifyDays(days, policy), days, true
	}

	for _, q := range qualitativeDurations {
		if textutil.ContainsPhrase(cleaned, q.phrase) {
			return classifyDays(q.days, policy), q.days, true
		}
	}

	return entities.DurationUnknown, 0, false
}

func classifyDays(days int, policy TrackerPolicy) entities.DurationBand {
	switch {
	case days <= policy.ShortDurationMaxDays:
		return entities.DurationShort
	case days >= policy.LongDurationMinDays:
		return entities.DurationLong
	default:
		return entities.DurationMedium
	}
}

// recognizeYesNo reads the polarity of a reply. If both affirmative and
// negative cues are present, or neither is, the answer is ambiguous and
// the caller re-asks rather than guessing.
func recognizeYesNo(text string) Polarity {
	cleaned := textutil.CleanText(text)
	if cleaned == "" {
		return PolarityUnknown
	}

	affirm := containsAnyPhrase(cleaned, affirmativePhrases)
	negative := containsAnyPhrase(cleaned, negativePhrases)

	switch {
	case affirm && !negative:
		return PolarityYes
	case negative && !affirm:
		return PolarityNo
	default:
		return PolarityUnknown
	}
}

// recognizeExposure reports whether the text indicates contact with ill
// people or environments. Absence of a match means "no information",
// never an explicit negative.
func recognizeExposure(text string) bool {
	cleaned := textutil.CleanText(text)
	if cleaned == "" {
		return false
	}
	return containsAnyPhrase(cleaned, exposurePhrases)
}

func containsAnyPhrase(cleaned string, phrases []string) bool {
	for _, p := range phrases {
		if textutil.ContainsPhrase(cleaned, p) {
			return true
		}
	}
	return false
}
