package analysis

import (
	"fmt"
	"os"
	"strings"
)

// defaultSystemPrompt instructs the model to reply with the labeled lines
// Parse expects. An operator can replace it via RISK_PROMPT_PATH.
const defaultSystemPrompt = `You are a personal safety monitor for someone walking alone.
You receive a transcript of the most recent things heard near the walker.
Assess whether the walker is in danger.

Respond with exactly these four lines and nothing else:
danger_level: <integer 0-10>
danger_type: <one of: none, physical_threat, harassment, medical_distress, mental_health_crisis>
summary: <one sentence describing the situation>
recommended_action: <one sentence with the immediate recommended action>`

// LoadSystemPrompt returns the risk-analysis system prompt, read once at
// startup. An empty path selects the built-in default.
func LoadSystemPrompt(path string) (string, error) {
	if path == "" {
		return defaultSystemPrompt, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read risk prompt %s: %w", path, err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("risk prompt %s is empty", path)
	}
	return prompt, nil
}
