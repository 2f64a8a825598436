package llm

import (
	"context"
	"errors"
	"fmt"
)

// Client abstracts LLM providers for triage extraction. Complete sends one
// system instruction plus one user message and returns the first text block of
// the completion. A single attempt per call; retry policy belongs to callers.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// UserMessage wraps raw request content in the fixed user-message frame the
// triage prompt expects.
func UserMessage(emailContent string) string {
	return fmt.Sprintf("Email content:\n\n%s", emailContent)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("LLM not configured")

// PlaceholderClient stands in for the real provider when ANTHROPIC_API_KEY is
// absent, so the service still starts and fails triage calls individually.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, system, user string) (string, error) {
	_ = ctx
	_ = system
	_ = user
	return "", ErrNotConfigured
}
