// Package probe implements the diagnostic probes. Every probe inspects
// one facet of the machine through the platform adapter and returns a
// ComponentResult; probes never mutate OS state.
package probe

import (
	"context"
	"math"

	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/types"
)

// Probe is the common contract every component probe implements.
// A probe either returns a valid ComponentResult (possibly carrying
// issues) or an error, never both; the coordinator turns errors into
// synthetic failure results.
type Probe interface {
	// Name is the canonical component name the result is filed under.
	Name() string

	// Run inspects the system through the adapter. It must honor ctx
	// cancellation and return promptly.
	Run(ctx context.Context, adapter platform.Adapter) (types.ComponentResult, error)
}

// All returns one probe per component, in canonical order.
func All() []Probe {
	return []Probe{
		NewCPUProbe(),
		NewMemoryProbe(),
		NewDiskProbe(),
		NewNetworkProbe(),
		NewTemperatureProbe(),
		NewStartupProbe(),
		NewDriversProbe(),
		NewSecurityProbe(),
	}
}

// HealthFromIssues computes a component health score: 100 minus the
// severity penalty of each issue, clamped to [0,100].
func HealthFromIssues(issues []types.Issue) int {
	health := 100
	for _, issue := range issues {
		health -= issue.Severity.Penalty()
	}
	return clampScore(health)
}

// clampScore bounds a score to [0,100].
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// newIssue builds an Issue with impact mirroring severity.
func newIssue(title, description, recommendation string, severity types.Severity) types.Issue {
	return types.Issue{
		Title:          title,
		Description:    description,
		Recommendation: recommendation,
		Severity:       severity,
		Impact:         severity,
	}
}

// result assembles a ComponentResult from issues and metrics.
func result(issues []types.Issue, metrics map[string]any) types.ComponentResult {
	if issues == nil {
		issues = []types.Issue{}
	}
	return types.ComponentResult{
		HealthStatus: HealthFromIssues(issues),
		Issues:       issues,
		Metrics:      metrics,
	}
}

// unavailableResult is the zero-issue result used when the platform
// cannot provide a capability. Absence of a capability is informational,
// never a failure.
func unavailableResult(note string) types.ComponentResult {
	return types.ComponentResult{
		HealthStatus: 100,
		Issues:       []types.Issue{},
		Metrics: map[string]any{
			"available": false,
			"note":      note,
		},
	}
}

// round1 rounds to one decimal place, the resolution used for every
// percentage in the report.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round2 rounds to two decimal places, used for GiB figures.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
