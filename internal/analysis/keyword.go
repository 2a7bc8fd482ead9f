package analysis

import (
	"context"
	"fmt"
	"strings"
)

// Phrases that immediately flag a transcript as dangerous when no model
// backend is configured.
var dangerKeywords = []string{
	"give me your phone",
	"give me the phone",
	"i will kill you",
	"shut up",
	"don't scream",
	"rape",
	"help me",
	"help",
	"sos",
	"leave me alone",
	"don't touch me",
	"stop following me",
}

// KeywordAnalyzer is a development fallback used when no model credentials
// are configured. It emits the same labeled-line format as the real backend
// so the parsing path stays identical.
type KeywordAnalyzer struct{}

func NewKeywordAnalyzer() *KeywordAnalyzer {
	return &KeywordAnalyzer{}
}

func (a *KeywordAnalyzer) Analyze(_ context.Context, transcript string) (string, error) {
	lowered := strings.ToLower(transcript)

	for _, phrase := range dangerKeywords {
		if strings.Contains(lowered, phrase) {
			return fmt.Sprintf(
				"danger_level: 8\ndanger_type: physical_threat\nsummary: Dangerous phrase detected: %q.\nrecommended_action: Contact the walker and alert emergency services if unreachable.",
				phrase,
			), nil
		}
	}

	return "danger_level: 0\ndanger_type: none\nsummary: No dangerous keywords detected.\nrecommended_action: Continue monitoring.", nil
}
