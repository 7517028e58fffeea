// Package platform abstracts OS-specific facts behind a capability
// interface consumed by the probes. Each supported OS provides the
// platform-only capabilities via build tags; everything else is served
// by gopsutil.
package platform

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is the sentinel returned when the current platform
// cannot provide a capability. Probes translate it into an
// informational metric, never into a failure.
var ErrUnavailable = errors.New("capability unavailable on this platform")

// DebugMode enables diagnostic messages to stderr.
// Set via --debug for troubleshooting adapter issues.
var DebugMode bool

// MediaType classifies the storage medium behind a partition or disk.
type MediaType string

const (
	MediaSSD     MediaType = "SSD"
	MediaHDD     MediaType = "HDD"
	MediaSCM     MediaType = "SCM"
	MediaUnknown MediaType = "Unknown"
)

// HostFacts describes the host operating system.
type HostFacts struct {
	Hostname        string
	OS              string
	Platform        string
	PlatformVersion string
	KernelVersion   string
	Arch            string
	UptimeSeconds   uint64
	Virtualization  string
}

// CPUFacts describes the processor.
type CPUFacts struct {
	Brand          string
	Vendor         string
	PhysicalCores  int
	LogicalCores   int
	Architecture   string
	CurrentFreqMHz float64
	MaxFreqMHz     float64
	TemperatureC   float64
	HasTemperature bool
}

// CPUUsageFacts is a usage sample taken over a time window.
type CPUUsageFacts struct {
	// OverallPercent is the total CPU usage across all cores.
	OverallPercent float64

	// PerCorePercent is the usage of each logical core.
	PerCorePercent []float64
}

// MemoryModule describes one installed RAM module.
type MemoryModule struct {
	Slot          string
	CapacityBytes uint64
	SpeedMHz      int
	Manufacturer  string
}

// MemoryFacts describes RAM and swap state.
type MemoryFacts struct {
	TotalBytes     uint64
	AvailableBytes uint64
	UsedBytes      uint64
	UsedPercent    float64
	SwapTotalBytes uint64
	SwapUsedBytes  uint64
	SwapPercent    float64

	// Modules is nil when the platform cannot enumerate RAM modules.
	Modules []MemoryModule

	// SlotsTotal and SlotsUsed are 0 when unknown.
	SlotsTotal int
	SlotsUsed  int
}

// PartitionFacts describes one mounted partition. CD-ROM and
// empty-filesystem entries are filtered out by the adapter.
type PartitionFacts struct {
	Device      string
	Mountpoint  string
	Fstype      string
	TotalBytes  uint64
	UsedBytes   uint64
	FreeBytes   uint64
	UsedPercent float64
	MediaType   MediaType
}

// PhysicalDiskFacts describes one physical disk device.
type PhysicalDiskFacts struct {
	Model        string
	Manufacturer string
	Serial       string
	SizeBytes    uint64
	Interface    string
	MediaType    MediaType
	Status       string
}

// InterfaceFacts describes one network interface.
type InterfaceFacts struct {
	Name      string
	Addresses []string
	MAC       string
	IsUp      bool
	SpeedMbps int
	MTU       int
}

// NetCounterFacts aggregates byte and error counters across interfaces.
type NetCounterFacts struct {
	BytesSent uint64
	BytesRecv uint64
	ErrIn     uint64
	ErrOut    uint64
	DropIn    uint64
	DropOut   uint64
}

// StartupEntry describes one autostart entry.
type StartupEntry struct {
	Name     string
	Command  string
	Location string
}

// DriverFacts describes one installed signed driver.
type DriverFacts struct {
	Name         string
	Manufacturer string
	Version      string
	Status       string

	// InstallDate is the driver date; zero when unknown.
	InstallDate time.Time
}

// AntivirusFacts describes antivirus state.
type AntivirusFacts struct {
	Enabled    bool
	RealTime   bool
	LastUpdate time.Time
}

// FirewallFacts describes firewall state per profile.
type FirewallFacts struct {
	Enabled  bool
	Profiles map[string]bool
}

// SecurityFacts describes the security posture of the machine.
type SecurityFacts struct {
	Antivirus      AntivirusFacts
	Firewall       FirewallFacts
	PendingUpdates int
}

// Adapter is the capability set probes consume. Implementations never
// panic across the boundary; a capability the platform cannot provide
// returns ErrUnavailable.
type Adapter interface {
	// Host returns operating system identification facts.
	Host(ctx context.Context) (HostFacts, error)

	// CPU returns static processor facts.
	CPU(ctx context.Context) (CPUFacts, error)

	// CPUUsage samples CPU usage over the given window.
	CPUUsage(ctx context.Context, window time.Duration) (CPUUsageFacts, error)

	// Memory returns RAM and swap facts.
	Memory(ctx context.Context) (MemoryFacts, error)

	// Partitions returns mounted partitions with usage, already
	// filtered of CD-ROM and empty-filesystem entries.
	Partitions(ctx context.Context) ([]PartitionFacts, error)

	// PhysicalDisks enumerates physical disk devices.
	PhysicalDisks(ctx context.Context) ([]PhysicalDiskFacts, error)

	// Interfaces enumerates network interfaces.
	Interfaces(ctx context.Context) ([]InterfaceFacts, error)

	// NetCounters returns aggregate network I/O counters.
	NetCounters(ctx context.Context) (NetCounterFacts, error)

	// DefaultGateway resolves the default route's gateway address.
	DefaultGateway(ctx context.Context) (string, error)

	// Temperatures returns sensor readings keyed by label, in °C.
	Temperatures(ctx context.Context) (map[string]float64, error)

	// StartupEntries enumerates autostart entries.
	StartupEntries(ctx context.Context) ([]StartupEntry, error)

	// Drivers enumerates installed signed drivers.
	Drivers(ctx context.Context) ([]DriverFacts, error)

	// Security returns antivirus, firewall, and pending-update state.
	Security(ctx context.Context) (SecurityFacts, error)
}
