package engine

import (
	"math"

	"github.com/ancients-collective/vigia/internal/types"
)

// componentWeights expresses how much each component contributes to the
// global score. Weights sum to 1.0.
var componentWeights = map[string]float64{
	types.ComponentCPU:         0.15,
	types.ComponentMemory:      0.20,
	types.ComponentDisk:        0.20,
	types.ComponentNetwork:     0.10,
	types.ComponentTemperature: 0.05,
	types.ComponentStartup:     0.05,
	types.ComponentDrivers:     0.10,
	types.ComponentSecurity:    0.15,
}

const (
	fullMaintenanceScore = 30
	minMemoryBytes       = float64(8 << 30)
)

// Score computes the weighted global score for a normalized report,
// derives the system status from it and rebuilds the flat problem and
// recommendation lists from the component issues. Call Normalize first.
func Score(r *types.DiagnosticReport) {
	score := 100.0
	for _, name := range types.ComponentNames {
		comp, ok := r.Components[name]
		if !ok {
			continue
		}
		weight := componentWeights[name]
		for _, issue := range comp.Issues {
			score -= float64(issue.Severity.Penalty()) * weight
		}
	}

	final := int(math.Round(score))
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}

	r.Score = final
	r.SystemStatus = types.StatusForScore(final)
	r.Problems = collectProblems(r)
	r.Recommendations = buildRecommendations(r)
}

// collectProblems flattens every component issue into the report-level
// problem list, walking components in canonical order so the output is
// deterministic.
func collectProblems(r *types.DiagnosticReport) []types.Problem {
	problems := []types.Problem{}
	for _, name := range types.ComponentNames {
		comp, ok := r.Components[name]
		if !ok {
			continue
		}
		for _, issue := range comp.Issues {
			problems = append(problems, types.Problem{
				Category:    name,
				Title:       issue.Title,
				Description: issue.Description,
				Solution:    issue.Recommendation,
				Severity:    issue.Severity,
				Impact:      issue.Severity,
			})
		}
	}
	return problems
}

func buildRecommendations(r *types.DiagnosticReport) []types.Recommendation {
	recs := []types.Recommendation{}
	for _, p := range r.Problems {
		recs = append(recs, types.Recommendation{
			Category:    p.Category,
			Title:       "Resolver: " + p.Title,
			Description: p.Solution,
			Severity:    p.Severity,
			Impact:      p.Severity,
		})
	}

	if r.Score < fullMaintenanceScore {
		recs = append(recs, types.Recommendation{
			Category:    "sistema",
			Title:       "Manutenção completa do sistema",
			Description: "O estado geral do sistema está crítico. Faça backup dos dados e execute uma manutenção completa.",
			Severity:    types.SeverityHigh,
			Impact:      types.SeverityHigh,
		})
	}

	if total, ok := memoryTotalBytes(r); ok && total < minMemoryBytes {
		recs = append(recs, types.Recommendation{
			Category:    types.ComponentMemory,
			Title:       "Aumentar a memória RAM",
			Description: "O computador tem menos de 8 GiB de memória instalada. Um upgrade de memória melhora o desempenho geral.",
			Severity:    types.SeverityHigh,
			Impact:      types.SeverityHigh,
		})
	}
	return recs
}

func memoryTotalBytes(r *types.DiagnosticReport) (float64, bool) {
	comp, ok := r.Components[types.ComponentMemory]
	if !ok || comp.Metrics == nil {
		return 0, false
	}
	switch v := comp.Metrics["total_bytes"].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}
