package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/types"
)

// Startup entry count thresholds. Exact equality falls into the lower band.
const (
	startupHighCount   = 15
	startupMediumCount = 8
)

// StartupProbe counts autostart entries.
type StartupProbe struct{}

// NewStartupProbe returns the startup probe.
func NewStartupProbe() *StartupProbe {
	return &StartupProbe{}
}

// Name implements Probe.
func (p *StartupProbe) Name() string { return types.ComponentStartup }

// Run implements Probe.
func (p *StartupProbe) Run(ctx context.Context, adapter platform.Adapter) (types.ComponentResult, error) {
	entries, err := adapter.StartupEntries(ctx)
	if err != nil {
		if errors.Is(err, platform.ErrUnavailable) {
			return unavailableResult("enumeração de inicialização indisponível nesta plataforma"), nil
		}
		return types.ComponentResult{}, fmt.Errorf("startup entries: %w", err)
	}

	var issues []types.Issue
	count := len(entries)

	switch {
	case count > startupHighCount:
		issues = append(issues, newIssue(
			"Excesso de programas na inicialização",
			fmt.Sprintf("Há %d programas configurados para iniciar com o sistema.", count),
			"Desative os programas de inicialização que não são essenciais.",
			types.SeverityHigh))
	case count > startupMediumCount:
		issues = append(issues, newIssue(
			"Muitos programas na inicialização",
			fmt.Sprintf("Há %d programas configurados para iniciar com o sistema.", count),
			"Revise a lista de inicialização e desative o que não usa.",
			types.SeverityMedium))
	}

	list := make([]any, 0, count)
	for _, entry := range entries {
		list = append(list, map[string]any{
			"name":     entry.Name,
			"command":  entry.Command,
			"location": entry.Location,
		})
	}

	metrics := map[string]any{
		"available":   true,
		"entry_count": float64(count),
		"entries":     list,
	}

	return result(issues, metrics), nil
}
