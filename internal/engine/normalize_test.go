package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/vigia/internal/engine"
	"github.com/ancients-collective/vigia/internal/types"
)

func TestNormalizeFillsNilSlices(t *testing.T) {
	r := &types.DiagnosticReport{}
	engine.Normalize(r)

	assert.NotNil(t, r.Components)
	assert.NotNil(t, r.Problems)
	assert.NotNil(t, r.Recommendations)

	r.Components[types.ComponentCPU] = types.ComponentResult{HealthStatus: 100}
	engine.Normalize(r)
	assert.NotNil(t, r.Components[types.ComponentCPU].Issues)
}

func TestNormalizeSeverityReconciliation(t *testing.T) {
	tests := []struct {
		name     string
		severity types.Severity
		impact   types.Severity
		want     types.Severity
	}{
		{"both valid keeps severity", types.SeverityHigh, types.SeverityLow, types.SeverityHigh},
		{"missing severity takes impact", "", types.SeverityCritical, types.SeverityCritical},
		{"unknown severity takes impact", "severe", types.SeverityLow, types.SeverityLow},
		{"both missing defaults to medium", "", "", types.SeverityMedium},
		{"both unknown defaults to medium", "huge", "tiny", types.SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &types.DiagnosticReport{
				Components: map[string]types.ComponentResult{
					types.ComponentCPU: {
						HealthStatus: 80,
						Issues: []types.Issue{
							{Title: "x", Description: "y", Recommendation: "z", Severity: tt.severity, Impact: tt.impact},
						},
					},
				},
			}
			engine.Normalize(r)

			issue := r.Components[types.ComponentCPU].Issues[0]
			assert.Equal(t, tt.want, issue.Severity)
			assert.Equal(t, issue.Severity, issue.Impact, "impact always mirrors severity")
		})
	}
}

func TestNormalizeDerivesTitleAndRecommendation(t *testing.T) {
	r := &types.DiagnosticReport{
		Components: map[string]types.ComponentResult{
			types.ComponentMemory: {
				HealthStatus: 90,
				Issues: []types.Issue{
					{Description: "Uso de memória alto: 91% em uso", Severity: types.SeverityMedium},
					{Description: "", Severity: types.SeverityLow},
				},
			},
		},
	}
	engine.Normalize(r)

	issues := r.Components[types.ComponentMemory].Issues
	assert.Equal(t, "Uso de memória alto", issues[0].Title)
	assert.Equal(t, "Sem recomendação específica.", issues[0].Recommendation)
	assert.Equal(t, "Problema detectado", issues[1].Title)
}

func TestNormalizeCanonicalizesErrorResults(t *testing.T) {
	r := &types.DiagnosticReport{
		Components: map[string]types.ComponentResult{
			types.ComponentDrivers: {
				HealthStatus: 75,
				Error:        "wmi query failed",
			},
		},
	}
	engine.Normalize(r)

	drv := r.Components[types.ComponentDrivers]
	assert.Equal(t, 0, drv.HealthStatus)
	assert.Equal(t, "wmi query failed", drv.Error)
	require.Len(t, drv.Issues, 1)
	assert.Equal(t, types.SeverityHigh, drv.Issues[0].Severity)
	assert.Contains(t, drv.Issues[0].Description, "wmi query failed")
}

func TestNormalizeClampsScores(t *testing.T) {
	r := &types.DiagnosticReport{
		Score: 140,
		Components: map[string]types.ComponentResult{
			types.ComponentCPU:    {HealthStatus: -10},
			types.ComponentMemory: {HealthStatus: 250},
		},
	}
	engine.Normalize(r)

	assert.Equal(t, 100, r.Score)
	assert.Equal(t, 0, r.Components[types.ComponentCPU].HealthStatus)
	assert.Equal(t, 100, r.Components[types.ComponentMemory].HealthStatus)
}

func TestNormalizeFillsProblemsAndRecommendations(t *testing.T) {
	r := &types.DiagnosticReport{
		Problems: []types.Problem{
			{Category: types.ComponentDisk, Description: "Disco quase cheio: 96%", Impact: types.SeverityCritical},
		},
		Recommendations: []types.Recommendation{
			{Category: types.ComponentDisk, Description: "Liberar espaço: apague arquivos temporários"},
		},
	}
	engine.Normalize(r)

	p := r.Problems[0]
	assert.Equal(t, "Disco quase cheio", p.Title)
	assert.Equal(t, types.SeverityCritical, p.Severity)
	assert.Equal(t, types.SeverityCritical, p.Impact)
	assert.Equal(t, "Sem recomendação específica.", p.Solution)

	rec := r.Recommendations[0]
	assert.Equal(t, "Liberar espaço", rec.Title)
	assert.Equal(t, types.SeverityMedium, rec.Severity)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	r := &types.DiagnosticReport{
		Components: map[string]types.ComponentResult{
			types.ComponentCPU: {
				HealthStatus: 120,
				Issues:       []types.Issue{{Description: "Uso alto: 95%", Impact: types.SeverityHigh}},
			},
			types.ComponentStartup: {Error: "scan failed"},
		},
		Problems: []types.Problem{{Description: "Algo: detalhe"}},
	}
	engine.Normalize(r)

	before := *r
	beforeComponents := map[string]types.ComponentResult{}
	for k, v := range r.Components {
		beforeComponents[k] = v
	}

	engine.Normalize(r)

	assert.Equal(t, before.Score, r.Score)
	assert.Equal(t, before.Problems, r.Problems)
	assert.Equal(t, beforeComponents, r.Components)
}
