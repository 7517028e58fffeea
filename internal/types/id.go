package types

import (
	"strings"

	"github.com/google/uuid"
)

// ID prefixes for diagnostic reports.
const (
	// IDPrefix starts every report identifier.
	IDPrefix = "diag-"
	// TestIDPrefix starts identifiers of synthetic test-mode reports.
	TestIDPrefix = "diag-test-"
)

// NewReportID returns a fresh report identifier: "diag-" followed by
// eight hex characters.
func NewReportID() string {
	return IDPrefix + randomHex8()
}

// NewTestReportID returns an identifier for a test-mode report.
func NewTestReportID() string {
	return TestIDPrefix + randomHex8()
}

// randomHex8 returns eight hex characters drawn from a random UUID.
func randomHex8() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
