package triage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripMarkdownFence removes a wrapping markdown code fence from a model
// completion. The leading fence line is dropped whole, so an optional language
// tag goes with it. Stripping an unfenced string returns it unchanged.
func StripMarkdownFence(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		if i := strings.IndexByte(content, '\n'); i >= 0 {
			content = content[i+1:]
		} else {
			content = content[3:]
		}
	}
	if strings.HasSuffix(content, "```") {
		content = content[:strings.LastIndex(content, "```")]
	}
	return strings.TrimSpace(content)
}

// ParseAnalysis extracts a typed Analysis from a raw completion. The completion
// is fence-stripped and must then parse as a JSON object; anything else yields
// a ModelOutputError carrying the stripped text. Within a valid object the
// fields are read leniently: unknown keys are ignored and mistyped values are
// skipped rather than failing the whole analysis.
func ParseAnalysis(completion string) (Analysis, error) {
	stripped := StripMarkdownFence(completion)

	var raw map[string]any
	if err := json.Unmarshal([]byte(stripped), &raw); err != nil {
		return Analysis{}, &ModelOutputError{Raw: stripped, Err: err}
	}
	if raw == nil {
		return Analysis{}, &ModelOutputError{Raw: stripped, Err: fmt.Errorf("completion is not a JSON object")}
	}

	return Analysis{
		ClientCode:   stringField(raw, "clientCode"),
		ClientName:   stringField(raw, "clientName"),
		JobName:      stringField(raw, "jobName"),
		Objective:    stringField(raw, "objective"),
		ProjectOwner: stringField(raw, "projectOwner"),
		LiveDate:     stringField(raw, "liveDate"),
		Ask:          stringField(raw, "ask"),
		NextAction:   stringField(raw, "nextAction"),
		Who:          stringField(raw, "who"),
		What:         stringField(raw, "what"),
		Why:          stringField(raw, "why"),
		Questions:    stringListField(raw, "questions"),
		TeamsPost:    stringField(raw, "teamsPost"),
		EmailBody:    stringField(raw, "emailBody"),
		Raw:          raw,
	}, nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func stringListField(m map[string]any, key string) []string {
	items, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
