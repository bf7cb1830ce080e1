package textutil

import (
	"strings"
)

// NormalizeIdentifier converts a string to a normalized identifier
// (lowercase, non-alphanumeric runs collapsed to single underscores).
// Symptom and condition ids in the knowledge base are stored in this form.
func NormalizeIdentifier(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return ""
	}

	var out strings.Builder
	lastUnderscore := false

	for _, ch := range trimmed {
		isAlphaNum := (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
		if isAlphaNum {
			out.WriteRune(ch)
			lastUnderscore = false
		} else if !lastUnderscore {
			out.WriteByte('_')
			lastUnderscore = true
		}
	}

	return strings.Trim(out.String(), "_")
}

// CleanText lowercases free text and replaces punctuation with spaces so
// phrase matching only ever sees lowercase words separated by single
// spaces. Digits are kept; duration answers like "3 weeks" need them.
func CleanText(text string) string {
	lowered := strings.ToLower(text)

	var out strings.Builder
	lastSpace := true

	for _, ch := range lowered {
		isWordChar := (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
		if isWordChar {
			out.WriteRune(ch)
			lastSpace = false
		} else if !lastSpace {
			out.WriteByte(' ')
			lastSpace = true
		}
	}

	return strings.TrimSpace(out.String())
}

// ContainsPhrase reports whether phrase occurs in cleaned text on word
// boundaries. Both arguments must already be in CleanText form.
func ContainsPhrase(cleaned, phrase string) bool {
	if phrase == "" {
		return false
	}
	idx := 0
	for {
		pos := strings.Index(cleaned[idx:], phrase)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(phrase)

		startOK := start == 0 || cleaned[start-1] == ' '
		endOK := end == len(cleaned) || cleaned[end] == ' '
		if startOK && endOK {
			return true
		}

		idx = start + 1
		if idx >= len(cleaned) {
			return false
		}
	}
}
