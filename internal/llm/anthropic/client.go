package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"dot-triage/internal/shared/telemetry"
)

// Client implements llm.Client using the Anthropic Messages API.
type Client struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// Config carries the provider settings for NewClient.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// NewClient constructs a new Anthropic client. Extra request options are
// appended after the defaults so tests can redirect the base URL.
func NewClient(cfg Config, opts ...option.RequestOption) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("ANTHROPIC_MODEL is required")
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	options := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	options = append(options, opts...)
	return &Client{
		client:      anthropic.NewClient(options...),
		model:       cfg.Model,
		maxTokens:   int64(maxTokens),
		temperature: cfg.Temperature,
	}, nil
}

// Complete sends one system+user exchange and returns the first text block.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			telemetry.Info("llm.complete", map[string]any{
				"model":         c.model,
				"response_size": len(block.Text),
				"tokens_in":     message.Usage.InputTokens,
				"tokens_out":    message.Usage.OutputTokens,
			})
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in model response")
}
