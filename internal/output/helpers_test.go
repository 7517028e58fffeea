package output

import (
	"os"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/ancients-collective/vigia/internal/types"
)

func TestMain(m *testing.M) {
	// Deterministic text output regardless of the test terminal.
	color.NoColor = true
	os.Exit(m.Run())
}

// testTimestamp is a fixed time for deterministic test output.
var testTimestamp = time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)

// newTestReport builds a representative DiagnosticReport for testing.
func newTestReport() *types.DiagnosticReport {
	components := map[string]types.ComponentResult{}
	for _, name := range types.ComponentNames {
		components[name] = types.ComponentResult{HealthStatus: 100, Issues: []types.Issue{}}
	}
	components[types.ComponentDisk] = types.ComponentResult{
		HealthStatus: 70,
		Issues: []types.Issue{
			{
				Title:          "Disco quase cheio",
				Description:    "Disco quase cheio: 92% em uso em /",
				Recommendation: "Libere espaço em disco.",
				Severity:       types.SeverityCritical,
				Impact:         types.SeverityCritical,
			},
		},
		Metrics: map[string]any{"usage_percent": 92.0},
	}
	components[types.ComponentDrivers] = types.ComponentResult{
		HealthStatus: 0,
		Error:        "wmi query failed",
		Issues: []types.Issue{
			{
				Title:          "Falha na verificação de drivers",
				Description:    "A verificação do componente drivers falhou: wmi query failed",
				Recommendation: "Execute o diagnóstico novamente.",
				Severity:       types.SeverityHigh,
				Impact:         types.SeverityHigh,
			},
		},
	}

	return &types.DiagnosticReport{
		ID:           "diag-abcd1234",
		UserID:       "user-1",
		Timestamp:    testTimestamp,
		Score:        74,
		SystemStatus: types.StatusRegular,
		Components:   components,
		Problems: []types.Problem{
			{
				Category:    types.ComponentDisk,
				Title:       "Disco quase cheio",
				Description: "Disco quase cheio: 92% em uso em /",
				Solution:    "Libere espaço em disco.",
				Severity:    types.SeverityCritical,
				Impact:      types.SeverityCritical,
			},
			{
				Category:    types.ComponentDrivers,
				Title:       "Falha na verificação de drivers",
				Description: "A verificação do componente drivers falhou: wmi query failed",
				Solution:    "Execute o diagnóstico novamente.",
				Severity:    types.SeverityHigh,
				Impact:      types.SeverityHigh,
			},
		},
		Recommendations: []types.Recommendation{
			{
				Category:    types.ComponentDisk,
				Title:       "Resolver: Disco quase cheio",
				Description: "Libere espaço em disco.",
				Severity:    types.SeverityCritical,
				Impact:      types.SeverityCritical,
			},
		},
	}
}

func newTestSummaries() []types.Summary {
	return []types.Summary{
		{
			ID:            "diag-abcd1234",
			UserID:        "user-1",
			Timestamp:     testTimestamp,
			Score:         74,
			SystemStatus:  types.StatusRegular,
			ProblemsCount: 2,
		},
		{
			ID:            "diag-abcd0000",
			UserID:        "user-1",
			Timestamp:     testTimestamp.Add(-24 * time.Hour),
			Score:         95,
			SystemStatus:  types.StatusBom,
			ProblemsCount: 0,
		},
	}
}
