package triage

import "strings"

// Analysis holds the fields the model extracted from a job request. Every
// field is optional; the model only emits keys it found values for.
type Analysis struct {
	ClientCode   string
	ClientName   string
	JobName      string
	Objective    string
	ProjectOwner string
	LiveDate     string
	Ask          string
	NextAction   string
	Who          string
	What         string
	Why          string
	Questions    []string
	TeamsPost    string
	EmailBody    string

	// Raw is the parsed completion object as-is, returned as fullAnalysis.
	Raw map[string]any
}

const (
	// FallbackValue substitutes any absent field in a rendered report.
	FallbackValue = "TBC"
	// FallbackJobName substitutes an absent job name in a rendered report.
	FallbackJobName = "New Project"
	// FallbackJobTitle substitutes an absent job name in the API response.
	FallbackJobTitle = "Untitled"
	// SentinelCode is the client code used when no client was identified.
	SentinelCode = "TBC"
)

// Code returns the extracted client code, or the sentinel when absent.
func (a Analysis) Code() string {
	if strings.TrimSpace(a.ClientCode) == "" {
		return SentinelCode
	}
	return a.ClientCode
}

// Title returns the job name for the API response, defaulted.
func (a Analysis) Title() string {
	if strings.TrimSpace(a.JobName) == "" {
		return FallbackJobTitle
	}
	return a.JobName
}

// ResolvedAnalysis is an Analysis with the fallback policy applied, ready for
// rendering. Keeping resolution in one step keeps the TBC policy out of the
// templates.
type ResolvedAnalysis struct {
	JobName    string
	ClientName string
	Owner      string
	Objective  string
	LiveDate   string
	Ask        string
	NextAction string
	Who        string
	What       string
	Why        string
	Questions  []string
}

// Resolved applies the uniform fallback policy to every rendered field.
func (a Analysis) Resolved() ResolvedAnalysis {
	return ResolvedAnalysis{
		JobName:    fallback(a.JobName, FallbackJobName),
		ClientName: fallback(a.ClientName, FallbackValue),
		Owner:      fallback(a.ProjectOwner, FallbackValue),
		Objective:  fallback(a.Objective, FallbackValue),
		LiveDate:   fallback(a.LiveDate, FallbackValue),
		Ask:        fallback(a.Ask, FallbackValue),
		NextAction: fallback(a.NextAction, FallbackValue),
		Who:        fallback(a.Who, FallbackValue),
		What:       fallback(a.What, FallbackValue),
		Why:        fallback(a.Why, FallbackValue),
		Questions:  a.Questions,
	}
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
