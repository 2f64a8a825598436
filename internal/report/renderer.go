package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"dot-triage/internal/shared/telemetry"
	"dot-triage/internal/triage"
)

//go:embed templates/triage_email.html.tmpl
var emailTemplateSrc string

var emailTemplate = template.Must(template.New("triage_email").Parse(emailTemplateSrc))

// Renderer builds the outbound representations of a triage result. Rendering
// is deterministic given the analysis, job number and clock.
type Renderer struct {
	HeaderURL string

	now func() time.Time
}

// NewRenderer constructs a Renderer. An empty headerURL switches the email
// header to the text fallback.
func NewRenderer(headerURL string) *Renderer {
	return &Renderer{HeaderURL: headerURL, now: time.Now}
}

type emailData struct {
	HeaderURL string
	JobNumber string
	Date      string
	triage.ResolvedAnalysis
}

// Render builds the self-contained HTML email for a triage result. It always
// returns a document: a template failure is logged and replaced with a minimal
// fallback rather than failing the request.
func (r *Renderer) Render(jobNumber string, a triage.Analysis) string {
	data := emailData{
		HeaderURL:        r.HeaderURL,
		JobNumber:        jobNumber,
		Date:             r.clock().Format("02 January 2006"),
		ResolvedAnalysis: a.Resolved(),
	}

	var buf strings.Builder
	if err := emailTemplate.Execute(&buf, data); err != nil {
		telemetry.Error("report.render_failed", map[string]any{
			"job_number": jobNumber,
			"error":      err.Error(),
		})
		return fmt.Sprintf("<!DOCTYPE html><html><body><p>%s &mdash; %s</p></body></html>",
			template.HTMLEscapeString(jobNumber), template.HTMLEscapeString(data.JobName))
	}
	return buf.String()
}

// RenderText builds the plain-text summary of a triage result, used for chat
// posts when the model supplied none.
func (r *Renderer) RenderText(jobNumber string, a triage.Analysis) string {
	res := a.Resolved()

	var b strings.Builder
	fmt.Fprintf(&b, "%s — %s\n\n", jobNumber, res.JobName)
	fmt.Fprintf(&b, "Client: %s\n", res.ClientName)
	fmt.Fprintf(&b, "Owner: %s\n", res.Owner)
	fmt.Fprintf(&b, "Objective: %s\n", res.Objective)
	fmt.Fprintf(&b, "Live date: %s\n", res.LiveDate)
	fmt.Fprintf(&b, "Ask: %s\n", res.Ask)
	fmt.Fprintf(&b, "Next action: %s\n\n", res.NextAction)
	if len(res.Questions) == 0 {
		b.WriteString("No questions at this stage.\n")
	} else {
		b.WriteString("Questions:\n")
		for _, q := range res.Questions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	return b.String()
}

func (r *Renderer) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}
