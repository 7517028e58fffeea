package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/ancients-collective/vigia/internal/types"
)

// JSONLFormatter writes diagnostic output as newline-delimited JSON (one
// object per line). For a report the first line is a header with the
// identity and score; subsequent lines carry one component or problem
// each.
type JSONLFormatter struct{}

// WriteReport renders the report as JSONL: header line, one line per
// component in canonical order, one line per problem.
func (f *JSONLFormatter) WriteReport(w io.Writer, report *types.DiagnosticReport) error {
	enc := json.NewEncoder(w)

	header := struct {
		Type         string             `json:"type"`
		ID           string             `json:"id"`
		UserID       string             `json:"user_id"`
		Timestamp    string             `json:"timestamp"`
		Score        int                `json:"score"`
		SystemStatus types.SystemStatus `json:"system_status"`
	}{
		Type:         "header",
		ID:           report.ID,
		UserID:       report.UserID,
		Timestamp:    report.Timestamp.Format(time.RFC3339),
		Score:        report.Score,
		SystemStatus: report.SystemStatus,
	}
	if err := enc.Encode(header); err != nil {
		return err
	}

	for _, name := range types.ComponentNames {
		comp, ok := report.Components[name]
		if !ok {
			continue
		}
		line := struct {
			Type      string                `json:"type"`
			Component string                `json:"component"`
			Result    types.ComponentResult `json:"result"`
		}{
			Type:      "component",
			Component: name,
			Result:    comp,
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}

	for _, p := range report.Problems {
		line := struct {
			Type    string        `json:"type"`
			Problem types.Problem `json:"problem"`
		}{
			Type:    "problem",
			Problem: p,
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}

	return nil
}

// WriteSummaries renders one summary per line.
func (f *JSONLFormatter) WriteSummaries(w io.Writer, summaries []types.Summary) error {
	enc := json.NewEncoder(w)
	for _, s := range summaries {
		line := struct {
			Type    string        `json:"type"`
			Summary types.Summary `json:"summary"`
		}{
			Type:    "summary",
			Summary: s,
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

// WriteMetrics renders the metrics view as one line.
func (f *JSONLFormatter) WriteMetrics(w io.Writer, metrics *types.Metrics) error {
	return json.NewEncoder(w).Encode(metrics)
}

// WriteSystem renders the system snapshot as one line.
func (f *JSONLFormatter) WriteSystem(w io.Writer, summary *types.SummaryReport) error {
	return json.NewEncoder(w).Encode(summary)
}

// WriteIdentity renders the identity view as one line.
func (f *JSONLFormatter) WriteIdentity(w io.Writer, identity *types.IdentityReport) error {
	return json.NewEncoder(w).Encode(identity)
}
