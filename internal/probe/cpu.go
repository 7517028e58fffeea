package probe

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/types"
)

// CPU thresholds. Exact equality falls into the lower band.
const (
	cpuTempHighC       = 85.0
	cpuTempMediumC     = 75.0
	cpuUsageHighPct    = 90.0
	cpuUsageMediumPct  = 80.0
	cpuThrottleRatio   = 0.70
	cpuThrottleLoadPct = 70.0
)

// CPUProbe samples processor usage, frequency, and temperature.
type CPUProbe struct {
	// SampleWindow is how long the usage sample blocks.
	SampleWindow time.Duration
}

// NewCPUProbe returns a CPU probe with the default 500 ms window.
func NewCPUProbe() *CPUProbe {
	return &CPUProbe{SampleWindow: 500 * time.Millisecond}
}

// Name implements Probe.
func (p *CPUProbe) Name() string { return types.ComponentCPU }

// Run implements Probe.
func (p *CPUProbe) Run(ctx context.Context, adapter platform.Adapter) (types.ComponentResult, error) {
	facts, err := adapter.CPU(ctx)
	if err != nil {
		return types.ComponentResult{}, fmt.Errorf("cpu facts: %w", err)
	}

	usage, err := adapter.CPUUsage(ctx, p.SampleWindow)
	if err != nil {
		return types.ComponentResult{}, fmt.Errorf("cpu usage: %w", err)
	}

	var issues []types.Issue

	if facts.HasTemperature {
		tempC := int(math.Round(facts.TemperatureC))
		switch {
		case facts.TemperatureC > cpuTempHighC:
			issues = append(issues, newIssue(
				"Temperatura da CPU muito alta",
				fmt.Sprintf("A CPU está operando a %d°C, acima do limite seguro de 85°C.", tempC),
				"Verifique a refrigeração do sistema e limpe o cooler da CPU.",
				types.SeverityHigh))
		case facts.TemperatureC > cpuTempMediumC:
			issues = append(issues, newIssue(
				"Temperatura da CPU elevada",
				fmt.Sprintf("A CPU está operando a %d°C.", tempC),
				"Monitore a temperatura e melhore a ventilação do gabinete.",
				types.SeverityMedium))
		}
	}

	switch {
	case usage.OverallPercent > cpuUsageHighPct:
		issues = append(issues, newIssue(
			"Uso de CPU muito alto",
			fmt.Sprintf("O uso da CPU está em %.1f%%.", round1(usage.OverallPercent)),
			"Identifique e encerre processos que consomem CPU em excesso.",
			types.SeverityHigh))
	case usage.OverallPercent > cpuUsageMediumPct:
		issues = append(issues, newIssue(
			"Uso de CPU elevado",
			fmt.Sprintf("O uso da CPU está em %.1f%%.", round1(usage.OverallPercent)),
			"Feche aplicativos que não estão em uso.",
			types.SeverityMedium))
	}

	if facts.MaxFreqMHz > 0 &&
		facts.CurrentFreqMHz < facts.MaxFreqMHz*cpuThrottleRatio &&
		usage.OverallPercent > cpuThrottleLoadPct {
		issues = append(issues, newIssue(
			"Possível throttling da CPU",
			fmt.Sprintf("Frequência atual de %.0f MHz abaixo de 70%% da máxima (%.0f MHz) sob carga.",
				facts.CurrentFreqMHz, facts.MaxFreqMHz),
			"Verifique a temperatura da CPU e o plano de energia do sistema.",
			types.SeverityMedium))
	}

	if facts.PhysicalCores == 1 {
		issues = append(issues, newIssue(
			"Processador com um único núcleo físico",
			"O processador possui apenas um núcleo físico, o que limita o desempenho em multitarefa.",
			"Considere um upgrade de processador.",
			types.SeverityLow))
	}

	perCore := make([]any, 0, len(usage.PerCorePercent))
	for _, core := range usage.PerCorePercent {
		perCore = append(perCore, round1(core))
	}

	metrics := map[string]any{
		"brand":            facts.Brand,
		"vendor":           facts.Vendor,
		"physical_cores":   float64(facts.PhysicalCores),
		"logical_cores":    float64(facts.LogicalCores),
		"architecture":     facts.Architecture,
		"usage_percent":    round1(usage.OverallPercent),
		"per_core_percent": perCore,
		"current_freq_mhz": math.Round(facts.CurrentFreqMHz),
		"max_freq_mhz":     math.Round(facts.MaxFreqMHz),
	}
	if facts.HasTemperature {
		metrics["temperature_c"] = math.Round(facts.TemperatureC)
	}

	return result(issues, metrics), nil
}
