package probe

import (
	"context"
	"fmt"

	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/types"
)

// Memory thresholds. Exact equality falls into the lower band.
const (
	memUsageHighPct   = 90.0
	memUsageMediumPct = 80.0
	swapUsageHighPct  = 80.0
	memMinTotalBytes  = 8 << 30 // 8 GiB
)

const gib = float64(1 << 30)

// MemoryProbe inspects RAM and swap state.
type MemoryProbe struct{}

// NewMemoryProbe returns the memory probe.
func NewMemoryProbe() *MemoryProbe {
	return &MemoryProbe{}
}

// Name implements Probe.
func (p *MemoryProbe) Name() string { return types.ComponentMemory }

// Run implements Probe.
func (p *MemoryProbe) Run(ctx context.Context, adapter platform.Adapter) (types.ComponentResult, error) {
	facts, err := adapter.Memory(ctx)
	if err != nil {
		return types.ComponentResult{}, fmt.Errorf("memory facts: %w", err)
	}

	var issues []types.Issue

	switch {
	case facts.UsedPercent > memUsageHighPct:
		issues = append(issues, newIssue(
			"Uso de memória muito alto",
			fmt.Sprintf("A memória RAM está %.1f%% ocupada.", round1(facts.UsedPercent)),
			"Feche aplicativos que não estão em uso ou reinicie o sistema.",
			types.SeverityHigh))
	case facts.UsedPercent > memUsageMediumPct:
		issues = append(issues, newIssue(
			"Uso de memória elevado",
			fmt.Sprintf("A memória RAM está %.1f%% ocupada.", round1(facts.UsedPercent)),
			"Evite manter muitos aplicativos abertos ao mesmo tempo.",
			types.SeverityMedium))
	}

	if facts.SwapTotalBytes > 0 && facts.SwapPercent > swapUsageHighPct {
		issues = append(issues, newIssue(
			"Uso de swap muito alto",
			fmt.Sprintf("A memória de troca está %.1f%% ocupada, indicando pressão de memória.", round1(facts.SwapPercent)),
			"Aumente a memória RAM ou reduza a carga de trabalho.",
			types.SeverityHigh))
	}

	if facts.TotalBytes < memMinTotalBytes {
		issues = append(issues, newIssue(
			"Memória RAM abaixo do recomendado",
			fmt.Sprintf("O sistema possui %.2f GiB de RAM; o mínimo recomendado é 8 GiB.", round2(float64(facts.TotalBytes)/gib)),
			"Considere uma expansão de memória RAM.",
			types.SeverityMedium))
	}

	metrics := map[string]any{
		"total_bytes":     float64(facts.TotalBytes),
		"available_bytes": float64(facts.AvailableBytes),
		"used_bytes":      float64(facts.UsedBytes),
		"total_gib":       round2(float64(facts.TotalBytes) / gib),
		"available_gib":   round2(float64(facts.AvailableBytes) / gib),
		"used_gib":        round2(float64(facts.UsedBytes) / gib),
		"used_percent":    round1(facts.UsedPercent),
		"swap_total_gib":  round2(float64(facts.SwapTotalBytes) / gib),
		"swap_used_gib":   round2(float64(facts.SwapUsedBytes) / gib),
		"swap_percent":    round1(facts.SwapPercent),
	}
	if facts.SlotsTotal > 0 {
		metrics["slots_total"] = float64(facts.SlotsTotal)
		metrics["slots_used"] = float64(facts.SlotsUsed)
	}

	return result(issues, metrics), nil
}
