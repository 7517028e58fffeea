// Package output provides formatters that render diagnostic reports and
// related views in different formats.
package output

import (
	"io"

	"github.com/ancients-collective/vigia/internal/types"
)

// Formatter renders the diagnostic views onto a writer.
type Formatter interface {
	// WriteReport renders a full diagnostic report.
	WriteReport(w io.Writer, report *types.DiagnosticReport) error

	// WriteSummaries renders a history listing.
	WriteSummaries(w io.Writer, summaries []types.Summary) error

	// WriteMetrics renders the aggregate metrics view.
	WriteMetrics(w io.Writer, metrics *types.Metrics) error

	// WriteSystem renders the cheap system snapshot.
	WriteSystem(w io.Writer, summary *types.SummaryReport) error

	// WriteIdentity renders the hardware identity view.
	WriteIdentity(w io.Writer, identity *types.IdentityReport) error
}
