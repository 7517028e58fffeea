// Package types defines the diagnostic report data model shared by the
// engine, the repository, and the output formatters.
package types

import "time"

// Component names in canonical order. The coordinator assembles the
// components map in this order and the scorer walks it the same way, so
// reports are reproducible regardless of probe completion order.
const (
	ComponentCPU         = "cpu"
	ComponentMemory      = "memory"
	ComponentDisk        = "disk"
	ComponentNetwork     = "network"
	ComponentTemperature = "temperature"
	ComponentStartup     = "startup"
	ComponentDrivers     = "drivers"
	ComponentSecurity    = "security"
)

// ComponentNames lists every probe component in canonical order.
var ComponentNames = []string{
	ComponentCPU,
	ComponentMemory,
	ComponentDisk,
	ComponentNetwork,
	ComponentTemperature,
	ComponentStartup,
	ComponentDrivers,
	ComponentSecurity,
}

// DiagnosticReport is the root artifact produced by one diagnostic run.
// It is immutable after persistence and serialized directly to JSON.
type DiagnosticReport struct {
	// ID is the unique report identifier ("diag-" + 8 hex chars).
	ID string `json:"id"`

	// UserID is the opaque tenant that requested the diagnostic.
	UserID string `json:"user_id"`

	// Timestamp is the instant the diagnostic completed.
	Timestamp time.Time `json:"timestamp"`

	// Score is the weighted health score, 0..100.
	Score int `json:"score"`

	// SystemStatus is the categorical label derived from Score.
	SystemStatus SystemStatus `json:"system_status"`

	// Components maps component names to their probe results.
	Components map[string]ComponentResult `json:"components"`

	// Problems is the report-level projection of every component issue.
	Problems []Problem `json:"problems"`

	// Recommendations is the advisory list derived from Problems plus
	// blanket rules for low-score and low-memory systems.
	Recommendations []Recommendation `json:"recommendations"`
}

// ComponentResult is the payload one probe contributes to the report.
type ComponentResult struct {
	// HealthStatus is the per-component score, 0..100.
	HealthStatus int `json:"health_status"`

	// Issues lists the findings for this component. Never nil after
	// normalization; empty means healthy.
	Issues []Issue `json:"issues"`

	// Metrics holds free-form facts specific to the component.
	Metrics map[string]any `json:"metrics,omitempty"`

	// Error describes a probe failure. When set, HealthStatus is 0 and
	// Issues carries one synthesized high-severity Issue.
	Error string `json:"error,omitempty"`
}

// Issue is a single finding within a component.
type Issue struct {
	// Title is a short headline for the finding.
	Title string `json:"title"`

	// Description is a human-readable sentence about the finding.
	Description string `json:"description"`

	// Recommendation is the remediation hint for this finding.
	Recommendation string `json:"recommendation"`

	// Severity classifies the finding. Always present after normalization.
	Severity Severity `json:"severity"`

	// Impact mirrors Severity. Retained for wire compatibility only;
	// behavior never branches on it.
	Impact Severity `json:"impact,omitempty"`
}

// Problem is the report-level projection of an Issue, carrying the name
// of the component it originated from.
type Problem struct {
	// Category is the originating component name.
	Category string `json:"category"`

	// Title is the short headline inherited from the Issue.
	Title string `json:"title"`

	// Description is the human-readable detail.
	Description string `json:"description"`

	// Solution is the remediation hint.
	Solution string `json:"solution"`

	// Impact mirrors Severity; both are always present and equal.
	Impact Severity `json:"impact"`

	// Severity classifies the problem.
	Severity Severity `json:"severity"`
}

// Recommendation is an advisory action derived from a Problem or from a
// blanket rule.
type Recommendation struct {
	// Category is the component the recommendation relates to, or
	// "sistema" for blanket recommendations.
	Category string `json:"category"`

	// Title is the action headline.
	Title string `json:"title"`

	// Description explains the recommended action.
	Description string `json:"description"`

	// Severity classifies how urgent the action is.
	Severity Severity `json:"severity"`

	// Impact mirrors Severity for wire compatibility.
	Impact Severity `json:"impact"`
}

// Summary is the lightweight index record kept per report for history
// and dashboard queries.
type Summary struct {
	// ID is the report identifier.
	ID string `json:"id"`

	// UserID is the tenant that owns the report.
	UserID string `json:"user_id"`

	// Timestamp is when the diagnostic completed.
	Timestamp time.Time `json:"timestamp"`

	// Score is the report score, 0..100.
	Score int `json:"score"`

	// SystemStatus is the label derived from Score.
	SystemStatus SystemStatus `json:"system_status"`

	// ProblemsCount is the number of problems in the report.
	ProblemsCount int `json:"problems_count"`
}

// Metrics aggregates persisted reports for dashboard consumption.
type Metrics struct {
	// TotalReports is the number of persisted diagnostics in scope.
	TotalReports int `json:"total_reports"`

	// AverageScore is the mean score across the reports in scope.
	AverageScore float64 `json:"average_score"`

	// LastScore is the score of the most recent report, or 0 when none.
	LastScore int `json:"last_score"`

	// LastStatus is the status of the most recent report.
	LastStatus SystemStatus `json:"last_status,omitempty"`

	// LastRunAt is the timestamp of the most recent report.
	LastRunAt time.Time `json:"last_run_at"`

	// ProblemsTotal is the sum of problem counts across reports.
	ProblemsTotal int `json:"problems_total"`
}

// NewSummary builds the index record for a report.
func NewSummary(r *DiagnosticReport) Summary {
	return Summary{
		ID:            r.ID,
		UserID:        r.UserID,
		Timestamp:     r.Timestamp,
		Score:         r.Score,
		SystemStatus:  r.SystemStatus,
		ProblemsCount: len(r.Problems),
	}
}
