package types

// Severity classifies how serious an issue is. Each level maps onto a
// fixed score penalty.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists every valid severity, mildest first.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

var severityPenalties = map[Severity]int{
	SeverityLow:      5,
	SeverityMedium:   10,
	SeverityHigh:     20,
	SeverityCritical: 30,
}

// Penalty returns the score deduction for this severity. Unknown values
// count as medium.
func (s Severity) Penalty() int {
	if p, ok := severityPenalties[s]; ok {
		return p
	}
	return severityPenalties[SeverityMedium]
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	_, ok := severityPenalties[s]
	return ok
}
