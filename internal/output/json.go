package output

import (
	"encoding/json"
	"io"

	"github.com/ancients-collective/vigia/internal/types"
)

// JSONFormatter writes each view as a single pretty-printed JSON object.
type JSONFormatter struct{}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteReport renders the full report as pretty-printed JSON.
func (f *JSONFormatter) WriteReport(w io.Writer, report *types.DiagnosticReport) error {
	return writeJSON(w, report)
}

// WriteSummaries renders the history listing as a JSON array.
func (f *JSONFormatter) WriteSummaries(w io.Writer, summaries []types.Summary) error {
	return writeJSON(w, summaries)
}

// WriteMetrics renders the metrics view as JSON.
func (f *JSONFormatter) WriteMetrics(w io.Writer, metrics *types.Metrics) error {
	return writeJSON(w, metrics)
}

// WriteSystem renders the system snapshot as JSON.
func (f *JSONFormatter) WriteSystem(w io.Writer, summary *types.SummaryReport) error {
	return writeJSON(w, summary)
}

// WriteIdentity renders the identity view as JSON.
func (f *JSONFormatter) WriteIdentity(w io.Writer, identity *types.IdentityReport) error {
	return writeJSON(w, identity)
}
