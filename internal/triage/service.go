package triage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dot-triage/internal/ledger"
	"dot-triage/internal/llm"
	"dot-triage/internal/shared/metrics"
)

// Renderer turns an analysis plus a minted job number into outbound
// representations.
type Renderer interface {
	Render(jobNumber string, a Analysis) string
	RenderText(jobNumber string, a Analysis) string
}

// Service runs the triage pipeline: completion, parse, job-number reservation,
// rendering.
type Service struct {
	LLM      llm.Client
	Ledger   *ledger.Service
	Renderer Renderer
	Prompt   string

	// RenderLocally selects the renderer strategy: true builds the email HTML
	// here, false trusts the model-supplied emailBody field when present.
	RenderLocally bool
}

// Result is the outcome of one triage run.
type Result struct {
	Analysis    Analysis
	Reservation ledger.Reservation
	EmailBody   string
	TeamsPost   string
}

// Process runs the pipeline for one request. Ledger failures never surface
// here; they degrade inside the ledger service to the TBC reservation.
func (s *Service) Process(ctx context.Context, emailContent string) (*Result, error) {
	if strings.TrimSpace(emailContent) == "" {
		return nil, ErrEmptyContent
	}

	startedAt := time.Now()
	metrics.IncTriageStarted()

	llmStartedAt := time.Now()
	completion, err := s.LLM.Complete(ctx, s.Prompt, llm.UserMessage(emailContent))
	metrics.ObserveLLMDurationMs(float64(time.Since(llmStartedAt).Milliseconds()))
	if err != nil {
		s.fail(startedAt)
		return nil, fmt.Errorf("triage completion: %w", err)
	}

	analysis, err := ParseAnalysis(completion)
	if err != nil {
		s.fail(startedAt)
		return nil, err
	}

	reservation := s.Ledger.ReserveNext(ctx, analysis.Code())

	emailBody := analysis.EmailBody
	if s.RenderLocally || strings.TrimSpace(emailBody) == "" {
		emailBody = s.Renderer.Render(reservation.JobNumber, analysis)
	}

	teamsPost := analysis.TeamsPost
	if strings.TrimSpace(teamsPost) == "" {
		teamsPost = s.Renderer.RenderText(reservation.JobNumber, analysis)
	}

	metrics.IncTriageCompleted()
	metrics.ObserveTriageDurationMs(float64(time.Since(startedAt).Milliseconds()))

	return &Result{
		Analysis:    analysis,
		Reservation: reservation,
		EmailBody:   emailBody,
		TeamsPost:   teamsPost,
	}, nil
}

func (s *Service) fail(startedAt time.Time) {
	metrics.IncTriageFailed()
	metrics.ObserveTriageDurationMs(float64(time.Since(startedAt).Milliseconds()))
}
