package types

import "time"

// SummaryReport is the cheap dashboard snapshot produced without running
// the full probe pipeline. It reads the platform adapter once.
type SummaryReport struct {
	// Hostname is the machine hostname.
	Hostname string `json:"hostname"`

	// OS is the operating system name.
	OS string `json:"os"`

	// Platform is the distribution or product name.
	Platform string `json:"platform,omitempty"`

	// KernelVersion is the kernel version string.
	KernelVersion string `json:"kernel_version,omitempty"`

	// Arch is the CPU architecture.
	Arch string `json:"arch"`

	// UptimeSeconds is how long the machine has been up.
	UptimeSeconds uint64 `json:"uptime_seconds"`

	// CPUUsagePercent is an instantaneous overall CPU usage sample.
	CPUUsagePercent float64 `json:"cpu_usage_percent"`

	// MemoryUsagePercent is the current RAM usage.
	MemoryUsagePercent float64 `json:"memory_usage_percent"`

	// DiskUsagePercent is the usage of the primary partition.
	DiskUsagePercent float64 `json:"disk_usage_percent"`

	// Timestamp is when the snapshot was taken.
	Timestamp time.Time `json:"timestamp"`
}

// IdentityReport holds detailed hardware facts for display.
type IdentityReport struct {
	// Hostname is the machine hostname.
	Hostname string `json:"hostname"`

	// OS is the operating system name.
	OS string `json:"os"`

	// Platform is the distribution or product name.
	Platform string `json:"platform,omitempty"`

	// PlatformVersion is the distribution or product version.
	PlatformVersion string `json:"platform_version,omitempty"`

	// KernelVersion is the kernel version string.
	KernelVersion string `json:"kernel_version,omitempty"`

	// Arch is the CPU architecture.
	Arch string `json:"arch"`

	// Virtualization names the hypervisor or container runtime, if any.
	Virtualization string `json:"virtualization,omitempty"`

	// CPU describes the processor.
	CPU IdentityCPU `json:"cpu"`

	// MemoryTotalBytes is the installed RAM in bytes.
	MemoryTotalBytes uint64 `json:"memory_total_bytes"`

	// MemoryModules describes installed RAM modules when the platform
	// can enumerate them.
	MemoryModules []IdentityMemoryModule `json:"memory_modules,omitempty"`

	// Disks lists the physical disks when the platform can enumerate
	// them.
	Disks []IdentityDisk `json:"disks,omitempty"`

	// Interfaces lists the network interfaces.
	Interfaces []IdentityInterface `json:"interfaces,omitempty"`
}

// IdentityCPU describes the processor for the identity report.
type IdentityCPU struct {
	Brand         string `json:"brand"`
	Vendor        string `json:"vendor,omitempty"`
	PhysicalCores int    `json:"physical_cores"`
	LogicalCores  int    `json:"logical_cores"`
	Architecture  string `json:"architecture"`
}

// IdentityMemoryModule describes one installed RAM module.
type IdentityMemoryModule struct {
	Slot          string `json:"slot,omitempty"`
	CapacityBytes uint64 `json:"capacity_bytes"`
	SpeedMHz      int    `json:"speed_mhz,omitempty"`
	Manufacturer  string `json:"manufacturer,omitempty"`
}

// IdentityDisk describes one physical disk.
type IdentityDisk struct {
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Serial       string `json:"serial,omitempty"`
	SizeBytes    uint64 `json:"size_bytes"`
	Interface    string `json:"interface,omitempty"`
	MediaType    string `json:"media_type"`
	Status       string `json:"status,omitempty"`
}

// IdentityInterface describes one network interface.
type IdentityInterface struct {
	Name      string   `json:"name"`
	Addresses []string `json:"addresses,omitempty"`
	MAC       string   `json:"mac,omitempty"`
	IsUp      bool     `json:"is_up"`
	SpeedMbps int      `json:"speed_mbps,omitempty"`
	MTU       int      `json:"mtu,omitempty"`
}
