package openai

import (
	"encoding/json"
	"fmt"
	"strings"
)

const phraseExtractionSystemPrompt = `You are a symptom extraction assistant for a health triage chat. Return ONLY valid JSON with this schema:
{
  "phrases": string[] (0-8 short symptom phrases found in the message)
}
Each phrase must be lowercase, 1-4 words, and describe a physical symptom the person reports (e.g. "stomach pain", "sore throat", "dizziness"). Copy the person's own wording where possible. Do not invent symptoms that are not in the message. Do not include diagnoses, medication names, durations, or advice. Return {"phrases": []} when the message reports no symptoms.`

type phrasePayload struct {
	Phrases []string `json:"phrases"`
}

func buildPhraseExtractionUserPrompt(message string) string {
	return fmt.Sprintf("Message: %s\n", message)
}

func parsePhrasePayload(data []byte) ([]string, error) {
	var payload phrasePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse phrase payload: %w", err)
	}

	phrases := make([]string, 0, len(payload.Phrases))
	for _, phrase := range payload.Phrases {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase == "" {
			continue
		}
		phrases = append(phrases, phrase)
	}
	return phrases, nil
}
