package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/types"
)

// Driver thresholds.
const (
	driverOutdatedAge       = 3 * 365 * 24 * time.Hour
	driverOutdatedHighCount = 5
)

// DriversProbe checks the signed drivers list for problematic and
// outdated entries.
type DriversProbe struct {
	// now is replaceable in tests to pin the outdated-age boundary.
	now func() time.Time
}

// NewDriversProbe returns the drivers probe.
func NewDriversProbe() *DriversProbe {
	return &DriversProbe{now: time.Now}
}

// Name implements Probe.
func (p *DriversProbe) Name() string { return types.ComponentDrivers }

// Run implements Probe.
func (p *DriversProbe) Run(ctx context.Context, adapter platform.Adapter) (types.ComponentResult, error) {
	drivers, err := adapter.Drivers(ctx)
	if err != nil {
		if errors.Is(err, platform.ErrUnavailable) {
			return unavailableResult("enumeração de drivers indisponível nesta plataforma"), nil
		}
		return types.ComponentResult{}, fmt.Errorf("drivers: %w", err)
	}

	cutoff := p.now().Add(-driverOutdatedAge)

	var problematic []string
	outdated := 0
	for _, d := range drivers {
		if !strings.EqualFold(d.Status, "ok") {
			problematic = append(problematic, d.Name)
		}
		if !d.InstallDate.IsZero() && d.InstallDate.Before(cutoff) {
			outdated++
		}
	}

	var issues []types.Issue

	if len(problematic) > 0 {
		sample := problematic
		if len(sample) > 3 {
			sample = sample[:3]
		}
		issues = append(issues, newIssue(
			"Drivers com problemas",
			fmt.Sprintf("%d driver(s) reportam estado anormal, incluindo: %s.",
				len(problematic), strings.Join(sample, ", ")),
			"Atualize ou reinstale os drivers com problemas pelo gerenciador de dispositivos.",
			types.SeverityHigh))
	}

	switch {
	case outdated > driverOutdatedHighCount:
		issues = append(issues, newIssue(
			"Muitos drivers desatualizados",
			fmt.Sprintf("%d drivers têm mais de 3 anos.", outdated),
			"Atualize os drivers a partir do site do fabricante.",
			types.SeverityMedium))
	case outdated > 0:
		issues = append(issues, newIssue(
			"Drivers desatualizados",
			fmt.Sprintf("%d driver(s) têm mais de 3 anos.", outdated),
			"Considere atualizar os drivers mais antigos.",
			types.SeverityLow))
	}

	metrics := map[string]any{
		"available":         true,
		"driver_count":      float64(len(drivers)),
		"problematic_count": float64(len(problematic)),
		"outdated_count":    float64(outdated),
	}

	return result(issues, metrics), nil
}
