package engine

import (
	"strings"

	"github.com/ancients-collective/vigia/internal/types"
)

const (
	defaultIssueTitle     = "Problema detectado"
	defaultRecommendation = "Sem recomendação específica."
)

// ErrorResult is the canonical shape for a component whose probe failed:
// health zero, the failure message recorded and a single high severity
// issue pointing the user at a retry.
func ErrorResult(name, msg string) types.ComponentResult {
	return types.ComponentResult{
		HealthStatus: 0,
		Error:        msg,
		Issues: []types.Issue{
			{
				Title:          "Falha na verificação de " + name,
				Description:    "A verificação do componente " + name + " falhou: " + msg,
				Recommendation: "Execute o diagnóstico novamente. Se o erro persistir, reinicie o computador.",
				Severity:       types.SeverityHigh,
				Impact:         types.SeverityHigh,
			},
		},
	}
}

// Normalize repairs a report in place so that downstream consumers can
// rely on its shape: no nil slices, every issue carries a valid severity
// with impact mirroring it, titles and recommendations are never empty
// and health scores sit inside [0, 100]. Normalize is idempotent.
func Normalize(r *types.DiagnosticReport) {
	if r.Components == nil {
		r.Components = make(map[string]types.ComponentResult)
	}
	for name, comp := range r.Components {
		r.Components[name] = normalizeComponent(name, comp)
	}

	if r.Problems == nil {
		r.Problems = []types.Problem{}
	}
	for i := range r.Problems {
		p := &r.Problems[i]
		p.Severity, p.Impact = reconcileSeverity(p.Severity, p.Impact)
		if p.Title == "" {
			p.Title = titleFromDescription(p.Description)
		}
		if p.Solution == "" {
			p.Solution = defaultRecommendation
		}
	}

	if r.Recommendations == nil {
		r.Recommendations = []types.Recommendation{}
	}
	for i := range r.Recommendations {
		rec := &r.Recommendations[i]
		rec.Severity, rec.Impact = reconcileSeverity(rec.Severity, rec.Impact)
		if rec.Title == "" {
			rec.Title = titleFromDescription(rec.Description)
		}
	}

	if r.Score < 0 {
		r.Score = 0
	}
	if r.Score > 100 {
		r.Score = 100
	}
}

func normalizeComponent(name string, c types.ComponentResult) types.ComponentResult {
	if c.Error != "" && (c.HealthStatus != 0 || len(c.Issues) == 0) {
		c = ErrorResult(name, c.Error)
	}

	if c.Issues == nil {
		c.Issues = []types.Issue{}
	}
	for i := range c.Issues {
		issue := &c.Issues[i]
		issue.Severity, issue.Impact = reconcileSeverity(issue.Severity, issue.Impact)
		if issue.Title == "" {
			issue.Title = titleFromDescription(issue.Description)
		}
		if issue.Recommendation == "" {
			issue.Recommendation = defaultRecommendation
		}
	}

	if c.HealthStatus < 0 {
		c.HealthStatus = 0
	}
	if c.HealthStatus > 100 {
		c.HealthStatus = 100
	}
	return c
}

// reconcileSeverity fills a missing or unknown severity from impact when
// impact is valid, falling back to medium, and always returns impact
// equal to the resolved severity.
func reconcileSeverity(severity, impact types.Severity) (types.Severity, types.Severity) {
	if !severity.Valid() {
		if impact.Valid() {
			severity = impact
		} else {
			severity = types.SeverityMedium
		}
	}
	return severity, severity
}

// titleFromDescription derives a short title from the clause before the
// first colon of a description.
func titleFromDescription(desc string) string {
	head, _, _ := strings.Cut(desc, ":")
	head = strings.TrimSpace(head)
	if head == "" {
		return defaultIssueTitle
	}
	return head
}
