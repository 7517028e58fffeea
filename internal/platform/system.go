package platform

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	gnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/sensors"
)

// osFacts is the platform-only slice of the adapter. Each supported OS
// provides an implementation via build tags (newOSFacts).
type osFacts interface {
	cpuFrequency(ctx context.Context) (currentMHz, maxMHz float64, err error)
	memoryModules(ctx context.Context) (modules []MemoryModule, slotsTotal, slotsUsed int, err error)
	partitionMedia(device string) MediaType
	physicalDisks(ctx context.Context) ([]PhysicalDiskFacts, error)
	interfaceSpeed(name string) int
	defaultGateway(ctx context.Context) (string, error)
	temperaturesFallback(ctx context.Context) (map[string]float64, error)
	startupEntries(ctx context.Context) ([]StartupEntry, error)
	drivers(ctx context.Context) ([]DriverFacts, error)
	security(ctx context.Context) (SecurityFacts, error)
}

// skippedFstypes are filesystem types the disk probe never inspects.
var skippedFstypes = map[string]bool{
	"":         true,
	"iso9660":  true,
	"udf":      true,
	"cdfs":     true,
	"squashfs": true,
}

// cpuLabelPattern matches sensor labels that belong to the CPU package.
var cpuLabelPattern = regexp.MustCompile(`(?i)core|cpu|package|tdie|tctl|k10temp|coretemp`)

// SystemAdapter implements Adapter on top of gopsutil, delegating
// platform-only capabilities to the build-tagged osFacts implementation.
type SystemAdapter struct {
	facts osFacts
}

// NewSystemAdapter returns the adapter for the current OS.
func NewSystemAdapter() *SystemAdapter {
	return &SystemAdapter{facts: newOSFacts()}
}

// Host implements Adapter.
func (a *SystemAdapter) Host(ctx context.Context) (HostFacts, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return HostFacts{}, fmt.Errorf("host info: %w", err)
	}
	return HostFacts{
		Hostname:        info.Hostname,
		OS:              info.OS,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelVersion:   info.KernelVersion,
		Arch:            info.KernelArch,
		UptimeSeconds:   info.Uptime,
		Virtualization:  info.VirtualizationSystem,
	}, nil
}

// CPU implements Adapter.
func (a *SystemAdapter) CPU(ctx context.Context) (CPUFacts, error) {
	facts := CPUFacts{}

	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return facts, fmt.Errorf("cpu info: %w", err)
	}
	if len(infos) > 0 {
		facts.Brand = strings.TrimSpace(infos[0].ModelName)
		facts.Vendor = infos[0].VendorID
		facts.CurrentFreqMHz = infos[0].Mhz
	}

	if physical, err := cpu.CountsWithContext(ctx, false); err == nil {
		facts.PhysicalCores = physical
	}
	if logical, err := cpu.CountsWithContext(ctx, true); err == nil {
		facts.LogicalCores = logical
	}

	if hostInfo, err := host.InfoWithContext(ctx); err == nil {
		facts.Architecture = hostInfo.KernelArch
	}

	// Platform frequency readings are more precise than cpuinfo when
	// available; keep the gopsutil value otherwise.
	if current, max, err := a.facts.cpuFrequency(ctx); err == nil {
		if current > 0 {
			facts.CurrentFreqMHz = current
		}
		facts.MaxFreqMHz = max
	}

	if temps, err := a.Temperatures(ctx); err == nil {
		if t, ok := MaxCPUTemperature(temps); ok {
			facts.TemperatureC = t
			facts.HasTemperature = true
		}
	}

	return facts, nil
}

// CPUUsage implements Adapter. The window blocks the calling goroutine,
// so callers pass their probe context deadline through ctx.
func (a *SystemAdapter) CPUUsage(ctx context.Context, window time.Duration) (CPUUsageFacts, error) {
	overall, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil {
		return CPUUsageFacts{}, fmt.Errorf("cpu usage: %w", err)
	}
	usage := CPUUsageFacts{}
	if len(overall) > 0 {
		usage.OverallPercent = overall[0]
	}

	// Per-core sample without a second window: gopsutil reuses the last
	// measurement interval when the duration is zero.
	if perCore, err := cpu.PercentWithContext(ctx, 0, true); err == nil {
		usage.PerCorePercent = perCore
	}

	return usage, nil
}

// Memory implements Adapter.
func (a *SystemAdapter) Memory(ctx context.Context) (MemoryFacts, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryFacts{}, fmt.Errorf("virtual memory: %w", err)
	}

	facts := MemoryFacts{
		TotalBytes:     vm.Total,
		AvailableBytes: vm.Available,
		UsedBytes:      vm.Used,
		UsedPercent:    vm.UsedPercent,
	}

	if swap, err := mem.SwapMemoryWithContext(ctx); err == nil {
		facts.SwapTotalBytes = swap.Total
		facts.SwapUsedBytes = swap.Used
		facts.SwapPercent = swap.UsedPercent
	}

	// RAM module enumeration is Windows-only; absence is not an error.
	if modules, total, used, err := a.facts.memoryModules(ctx); err == nil {
		facts.Modules = modules
		facts.SlotsTotal = total
		facts.SlotsUsed = used
	}

	return facts, nil
}

// Partitions implements Adapter.
func (a *SystemAdapter) Partitions(ctx context.Context) ([]PartitionFacts, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("disk partitions: %w", err)
	}

	var out []PartitionFacts
	for _, p := range parts {
		if skippedFstypes[strings.ToLower(p.Fstype)] {
			continue
		}
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			if DebugMode {
				fmt.Fprintf(os.Stderr, "debug: disk usage for %s: %v\n", p.Mountpoint, err)
			}
			continue
		}
		if usage.Total == 0 {
			continue
		}
		out = append(out, PartitionFacts{
			Device:      p.Device,
			Mountpoint:  p.Mountpoint,
			Fstype:      p.Fstype,
			TotalBytes:  usage.Total,
			UsedBytes:   usage.Used,
			FreeBytes:   usage.Free,
			UsedPercent: usage.UsedPercent,
			MediaType:   a.facts.partitionMedia(p.Device),
		})
	}
	return out, nil
}

// PhysicalDisks implements Adapter.
func (a *SystemAdapter) PhysicalDisks(ctx context.Context) ([]PhysicalDiskFacts, error) {
	return a.facts.physicalDisks(ctx)
}

// Interfaces implements Adapter.
func (a *SystemAdapter) Interfaces(ctx context.Context) ([]InterfaceFacts, error) {
	ifaces, err := gnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("network interfaces: %w", err)
	}

	var out []InterfaceFacts
	for _, iface := range ifaces {
		facts := InterfaceFacts{
			Name:      iface.Name,
			MAC:       iface.HardwareAddr,
			MTU:       iface.MTU,
			SpeedMbps: a.facts.interfaceSpeed(iface.Name),
		}
		for _, addr := range iface.Addrs {
			facts.Addresses = append(facts.Addresses, addr.Addr)
		}
		for _, flag := range iface.Flags {
			if flag == "up" {
				facts.IsUp = true
			}
		}
		out = append(out, facts)
	}
	return out, nil
}

// NetCounters implements Adapter.
func (a *SystemAdapter) NetCounters(ctx context.Context) (NetCounterFacts, error) {
	counters, err := gnet.IOCountersWithContext(ctx, false)
	if err != nil {
		return NetCounterFacts{}, fmt.Errorf("network counters: %w", err)
	}
	if len(counters) == 0 {
		return NetCounterFacts{}, fmt.Errorf("network counters: empty result")
	}
	c := counters[0]
	return NetCounterFacts{
		BytesSent: c.BytesSent,
		BytesRecv: c.BytesRecv,
		ErrIn:     c.Errin,
		ErrOut:    c.Errout,
		DropIn:    c.Dropin,
		DropOut:   c.Dropout,
	}, nil
}

// DefaultGateway implements Adapter.
func (a *SystemAdapter) DefaultGateway(ctx context.Context) (string, error) {
	return a.facts.defaultGateway(ctx)
}

// Temperatures implements Adapter. It tries gopsutil sensors first and
// falls back to the platform-specific source when the generic path
// returns nothing.
func (a *SystemAdapter) Temperatures(ctx context.Context) (map[string]float64, error) {
	stats, err := sensors.TemperaturesWithContext(ctx)
	if err == nil && len(stats) > 0 {
		temps := make(map[string]float64, len(stats))
		for _, s := range stats {
			if s.Temperature <= 0 {
				continue
			}
			temps[s.SensorKey] = s.Temperature
		}
		if len(temps) > 0 {
			return temps, nil
		}
	}

	return a.facts.temperaturesFallback(ctx)
}

// StartupEntries implements Adapter.
func (a *SystemAdapter) StartupEntries(ctx context.Context) ([]StartupEntry, error) {
	return a.facts.startupEntries(ctx)
}

// Drivers implements Adapter.
func (a *SystemAdapter) Drivers(ctx context.Context) ([]DriverFacts, error) {
	return a.facts.drivers(ctx)
}

// Security implements Adapter.
func (a *SystemAdapter) Security(ctx context.Context) (SecurityFacts, error) {
	return a.facts.security(ctx)
}

// MaxCPUTemperature returns the hottest CPU-labeled reading from a
// sensor map, and whether one was found.
func MaxCPUTemperature(temps map[string]float64) (float64, bool) {
	var max float64
	found := false
	for label, t := range temps {
		if !cpuLabelPattern.MatchString(label) {
			continue
		}
		if !found || t > max {
			max = t
			found = true
		}
	}
	return max, found
}
