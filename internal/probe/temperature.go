package probe

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/types"
)

// Temperature thresholds in °C. Only the highest matching band applies.
const (
	tempCriticalC = 90.0
	tempHighC     = 80.0
	tempMediumC   = 70.0
)

// TemperatureProbe reads thermal sensors and evaluates the hottest
// CPU-labeled reading. The adapter already layers the sensor sources:
// gopsutil first, then the platform fallback.
type TemperatureProbe struct{}

// NewTemperatureProbe returns the temperature probe.
func NewTemperatureProbe() *TemperatureProbe {
	return &TemperatureProbe{}
}

// Name implements Probe.
func (p *TemperatureProbe) Name() string { return types.ComponentTemperature }

// Run implements Probe.
func (p *TemperatureProbe) Run(ctx context.Context, adapter platform.Adapter) (types.ComponentResult, error) {
	temps, err := adapter.Temperatures(ctx)
	if err != nil {
		if errors.Is(err, platform.ErrUnavailable) {
			return unavailableResult("sensores de temperatura indisponíveis nesta plataforma"), nil
		}
		return types.ComponentResult{}, fmt.Errorf("temperatures: %w", err)
	}

	cpuTemp, ok := platform.MaxCPUTemperature(temps)
	if !ok {
		return unavailableResult("nenhum sensor de CPU identificado"), nil
	}

	var issues []types.Issue
	tempC := int(math.Round(cpuTemp))

	switch {
	case cpuTemp > tempCriticalC:
		issues = append(issues, newIssue(
			"Temperatura crítica",
			fmt.Sprintf("O sensor mais quente da CPU registra %d°C.", tempC),
			"Desligue o equipamento e verifique a refrigeração imediatamente.",
			types.SeverityCritical))
	case cpuTemp > tempHighC:
		issues = append(issues, newIssue(
			"Temperatura alta",
			fmt.Sprintf("O sensor mais quente da CPU registra %d°C.", tempC),
			"Verifique a refrigeração e a pasta térmica da CPU.",
			types.SeverityHigh))
	case cpuTemp > tempMediumC:
		issues = append(issues, newIssue(
			"Temperatura elevada",
			fmt.Sprintf("O sensor mais quente da CPU registra %d°C.", tempC),
			"Melhore a ventilação do gabinete.",
			types.SeverityMedium))
	}

	readings := make(map[string]any, len(temps))
	for label, t := range temps {
		readings[label] = math.Round(t)
	}

	metrics := map[string]any{
		"available":    true,
		"cpu_max_c":    float64(tempC),
		"sensor_count": float64(len(temps)),
		"sensors":      readings,
	}

	return result(issues, metrics), nil
}
