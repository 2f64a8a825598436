package llm

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed prompts/triage.txt
var triagePrompt string

// TriagePrompt returns the triage system prompt. When overridePath is set the
// prompt is read from that file instead of the embedded asset; an unreadable
// override is an error so the process can refuse to start.
func TriagePrompt(overridePath string) (string, error) {
	if strings.TrimSpace(overridePath) == "" {
		return triagePrompt, nil
	}
	data, err := os.ReadFile(overridePath)
	if err != nil {
		return "", fmt.Errorf("read triage prompt %s: %w", overridePath, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return "", fmt.Errorf("triage prompt %s is empty", overridePath)
	}
	return string(data), nil
}
