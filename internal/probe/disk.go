package probe

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/types"
)

// Disk thresholds per partition. Exact equality falls into the lower band.
const (
	diskUsageCriticalPct = 95.0
	diskUsageHighPct     = 90.0
	diskUsageMediumPct   = 80.0
)

// DiskProbe inspects partition usage. When the adapter cannot enumerate
// partitions it falls back to a shell listing before declaring failure.
type DiskProbe struct {
	// fallback enumerates partitions when the adapter path fails.
	// Replaceable in tests.
	fallback func(ctx context.Context) ([]platform.PartitionFacts, error)
}

// NewDiskProbe returns the disk probe with the shell fallback wired.
func NewDiskProbe() *DiskProbe {
	return &DiskProbe{fallback: shellPartitions}
}

// Name implements Probe.
func (p *DiskProbe) Name() string { return types.ComponentDisk }

// Run implements Probe.
func (p *DiskProbe) Run(ctx context.Context, adapter platform.Adapter) (types.ComponentResult, error) {
	parts, err := adapter.Partitions(ctx)
	if (err != nil || len(parts) == 0) && p.fallback != nil {
		parts, err = p.fallback(ctx)
	}
	if err != nil {
		return types.ComponentResult{}, fmt.Errorf("disk partitions: %w", err)
	}
	if len(parts) == 0 {
		return types.ComponentResult{}, fmt.Errorf("disk partitions: none found")
	}

	var issues []types.Issue
	var scoreSum int
	details := make([]any, 0, len(parts))

	for _, part := range parts {
		partIssues := partitionIssues(part)
		issues = append(issues, partIssues...)
		scoreSum += HealthFromIssues(partIssues)

		details = append(details, map[string]any{
			"device":       part.Device,
			"mountpoint":   part.Mountpoint,
			"fstype":       part.Fstype,
			"total_gib":    round2(float64(part.TotalBytes) / gib),
			"used_gib":     round2(float64(part.UsedBytes) / gib),
			"free_gib":     round2(float64(part.FreeBytes) / gib),
			"used_percent": round1(part.UsedPercent),
			"media_type":   string(part.MediaType),
		})
	}

	primary := primaryPartition(parts)
	metrics := map[string]any{
		"partitions":           details,
		"partition_count":      float64(len(parts)),
		"primary_device":       primary.Device,
		"primary_mountpoint":   primary.Mountpoint,
		"primary_used_percent": round1(primary.UsedPercent),
	}

	out := result(issues, metrics)
	// Aggregate health is the mean of per-partition scores, not the
	// issue-penalty sum used by the other probes.
	out.HealthStatus = clampScore(int(math.Round(float64(scoreSum) / float64(len(parts)))))
	return out, nil
}

// partitionIssues applies the usage bands to one partition.
func partitionIssues(part platform.PartitionFacts) []types.Issue {
	label := part.Mountpoint
	if label == "" {
		label = part.Device
	}

	switch {
	case part.UsedPercent > diskUsageCriticalPct:
		return []types.Issue{newIssue(
			fmt.Sprintf("Disco quase cheio em %s", label),
			fmt.Sprintf("A partição %s está %.1f%% ocupada; restam %.2f GiB livres.",
				label, round1(part.UsedPercent), round2(float64(part.FreeBytes)/gib)),
			"Libere espaço em disco imediatamente removendo arquivos desnecessários.",
			types.SeverityCritical)}
	case part.UsedPercent > diskUsageHighPct:
		return []types.Issue{newIssue(
			fmt.Sprintf("Pouco espaço em disco em %s", label),
			fmt.Sprintf("A partição %s está %.1f%% ocupada.", label, round1(part.UsedPercent)),
			"Libere espaço em disco removendo arquivos e programas não utilizados.",
			types.SeverityHigh)}
	case part.UsedPercent > diskUsageMediumPct:
		return []types.Issue{newIssue(
			fmt.Sprintf("Espaço em disco reduzido em %s", label),
			fmt.Sprintf("A partição %s está %.1f%% ocupada.", label, round1(part.UsedPercent)),
			"Considere liberar espaço em disco.",
			types.SeverityMedium)}
	}
	return nil
}

// primaryPartition picks the system partition: the C: device on
// Windows-style layouts, the root mount on POSIX, else the first entry.
func primaryPartition(parts []platform.PartitionFacts) platform.PartitionFacts {
	for _, part := range parts {
		if strings.HasPrefix(strings.ToUpper(part.Device), "C:") {
			return part
		}
	}
	for _, part := range parts {
		if part.Mountpoint == "/" {
			return part
		}
	}
	return parts[0]
}

// shellPartitions is the enumeration of last resort when the adapter
// cannot list partitions.
func shellPartitions(ctx context.Context) ([]platform.PartitionFacts, error) {
	if runtime.GOOS == "windows" {
		out, err := exec.CommandContext(ctx, "wmic", "logicaldisk", "get", "DeviceID,Size,FreeSpace", "/format:csv").Output()
		if err != nil {
			return nil, fmt.Errorf("wmic fallback: %w", err)
		}
		return parseWmicLogicalDisk(string(out))
	}

	out, err := exec.CommandContext(ctx, "df", "-P", "-k").Output()
	if err != nil {
		return nil, fmt.Errorf("df fallback: %w", err)
	}
	return parseDFOutput(string(out))
}

// parseDFOutput parses POSIX `df -P -k` output (1024-byte blocks).
func parseDFOutput(out string) ([]platform.PartitionFacts, error) {
	var parts []platform.PartitionFacts
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("df fallback: empty output")
	}

	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) < 6 || !strings.HasPrefix(fields[0], "/dev/") {
			continue
		}
		total, err1 := strconv.ParseUint(fields[1], 10, 64)
		used, err2 := strconv.ParseUint(fields[2], 10, 64)
		free, err3 := strconv.ParseUint(fields[3], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil || total == 0 {
			continue
		}
		parts = append(parts, platform.PartitionFacts{
			Device:      fields[0],
			Mountpoint:  fields[5],
			TotalBytes:  total * 1024,
			UsedBytes:   used * 1024,
			FreeBytes:   free * 1024,
			UsedPercent: float64(used) / float64(total) * 100,
			MediaType:   platform.MediaUnknown,
		})
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("df fallback: no usable partitions")
	}
	return parts, nil
}

// parseWmicLogicalDisk parses `wmic logicaldisk /format:csv` output:
// Node,DeviceID,FreeSpace,Size (columns sorted alphabetically by wmic).
func parseWmicLogicalDisk(out string) ([]platform.PartitionFacts, error) {
	var parts []platform.PartitionFacts
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Split(strings.TrimSpace(line), ",")
		if len(fields) < 4 || !strings.Contains(fields[1], ":") {
			continue
		}
		free, err1 := strconv.ParseUint(fields[2], 10, 64)
		total, err2 := strconv.ParseUint(fields[3], 10, 64)
		if err1 != nil || err2 != nil || total == 0 {
			continue
		}
		used := total - free
		parts = append(parts, platform.PartitionFacts{
			Device:      fields[1],
			Mountpoint:  fields[1],
			TotalBytes:  total,
			UsedBytes:   used,
			FreeBytes:   free,
			UsedPercent: float64(used) / float64(total) * 100,
			MediaType:   platform.MediaUnknown,
		})
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("wmic fallback: no usable disks")
	}
	return parts, nil
}
