//go:build windows

package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yusufpapurcu/wmi"
	"golang.org/x/sys/windows/registry"
)

// windowsFacts implements osFacts for Windows using WMI and the registry.
type windowsFacts struct{}

// newOSFacts returns the Windows implementation.
func newOSFacts() osFacts {
	return &windowsFacts{}
}

// win32Processor is the WMI projection used for clock speeds.
type win32Processor struct {
	CurrentClockSpeed uint32
	MaxClockSpeed     uint32
}

func (f *windowsFacts) cpuFrequency(context.Context) (float64, float64, error) {
	var procs []win32Processor
	if err := wmi.Query("SELECT CurrentClockSpeed, MaxClockSpeed FROM Win32_Processor", &procs); err != nil {
		return 0, 0, fmt.Errorf("query Win32_Processor: %w", err)
	}
	if len(procs) == 0 {
		return 0, 0, ErrUnavailable
	}
	return float64(procs[0].CurrentClockSpeed), float64(procs[0].MaxClockSpeed), nil
}

// win32PhysicalMemory is the WMI projection for RAM modules.
type win32PhysicalMemory struct {
	DeviceLocator string
	Capacity      uint64
	Speed         uint32
	Manufacturer  string
}

// win32PhysicalMemoryArray reports the number of RAM slots.
type win32PhysicalMemoryArray struct {
	MemoryDevices uint32
}

func (f *windowsFacts) memoryModules(context.Context) ([]MemoryModule, int, int, error) {
	var raw []win32PhysicalMemory
	if err := wmi.Query("SELECT DeviceLocator, Capacity, Speed, Manufacturer FROM Win32_PhysicalMemory", &raw); err != nil {
		return nil, 0, 0, fmt.Errorf("query Win32_PhysicalMemory: %w", err)
	}

	modules := make([]MemoryModule, 0, len(raw))
	for _, m := range raw {
		modules = append(modules, MemoryModule{
			Slot:          m.DeviceLocator,
			CapacityBytes: m.Capacity,
			SpeedMHz:      int(m.Speed),
			Manufacturer:  strings.TrimSpace(m.Manufacturer),
		})
	}

	slotsTotal := len(modules)
	var arrays []win32PhysicalMemoryArray
	if err := wmi.Query("SELECT MemoryDevices FROM Win32_PhysicalMemoryArray", &arrays); err == nil && len(arrays) > 0 {
		slotsTotal = int(arrays[0].MemoryDevices)
	}

	return modules, slotsTotal, len(modules), nil
}

// msftPhysicalDisk maps the Storage-namespace media type:
// 3 = HDD, 4 = SSD, 5 = SCM.
type msftPhysicalDisk struct {
	FriendlyName string
	MediaType    uint16
}

func (f *windowsFacts) partitionMedia(device string) MediaType {
	media, err := storageMediaTypes()
	if err != nil || len(media) == 0 {
		return MediaUnknown
	}
	// Without a partition-to-disk mapping, a single homogeneous media
	// type is still authoritative.
	first := MediaUnknown
	uniform := true
	for _, m := range media {
		if first == MediaUnknown {
			first = m
		} else if m != first {
			uniform = false
		}
	}
	if uniform {
		return first
	}
	return MediaUnknown
}

// storageMediaTypes queries MSFT_PhysicalDisk keyed by friendly name.
func storageMediaTypes() (map[string]MediaType, error) {
	var raw []msftPhysicalDisk
	err := wmi.QueryNamespace("SELECT FriendlyName, MediaType FROM MSFT_PhysicalDisk", &raw, `root\Microsoft\Windows\Storage`)
	if err != nil {
		return nil, err
	}
	out := make(map[string]MediaType, len(raw))
	for _, d := range raw {
		out[d.FriendlyName] = mediaTypeFromCode(d.MediaType)
	}
	return out, nil
}

func mediaTypeFromCode(code uint16) MediaType {
	switch code {
	case 3:
		return MediaHDD
	case 4:
		return MediaSSD
	case 5:
		return MediaSCM
	}
	return MediaUnknown
}

// win32DiskDrive is the WMI projection for physical disks.
type win32DiskDrive struct {
	Model         string
	Manufacturer  string
	SerialNumber  string
	Size          uint64
	InterfaceType string
	Status        string
}

func (f *windowsFacts) physicalDisks(context.Context) ([]PhysicalDiskFacts, error) {
	var raw []win32DiskDrive
	if err := wmi.Query("SELECT Model, Manufacturer, SerialNumber, Size, InterfaceType, Status FROM Win32_DiskDrive", &raw); err != nil {
		return nil, fmt.Errorf("query Win32_DiskDrive: %w", err)
	}

	media, _ := storageMediaTypes()

	disks := make([]PhysicalDiskFacts, 0, len(raw))
	for _, d := range raw {
		facts := PhysicalDiskFacts{
			Model:        strings.TrimSpace(d.Model),
			Manufacturer: strings.TrimSpace(d.Manufacturer),
			Serial:       strings.TrimSpace(d.SerialNumber),
			SizeBytes:    d.Size,
			Interface:    d.InterfaceType,
			MediaType:    MediaUnknown,
			Status:       strings.ToLower(d.Status),
		}
		if m, ok := media[facts.Model]; ok {
			facts.MediaType = m
		}
		disks = append(disks, facts)
	}
	return disks, nil
}

func (f *windowsFacts) interfaceSpeed(string) int {
	return 0
}

// win32IP4RouteTable is the WMI projection for the IPv4 routing table.
type win32IP4RouteTable struct {
	NextHop string
}

func (f *windowsFacts) defaultGateway(context.Context) (string, error) {
	var routes []win32IP4RouteTable
	err := wmi.Query("SELECT NextHop FROM Win32_IP4RouteTable WHERE Destination='0.0.0.0'", &routes)
	if err != nil {
		return "", fmt.Errorf("query route table: %w", err)
	}
	if len(routes) == 0 || routes[0].NextHop == "" {
		return "", fmt.Errorf("no default route found")
	}
	return routes[0].NextHop, nil
}

// msAcpiThermalZone reports temperature in tenths of Kelvin.
type msAcpiThermalZone struct {
	InstanceName       string
	CurrentTemperature uint32
}

func (f *windowsFacts) temperaturesFallback(context.Context) (map[string]float64, error) {
	var zones []msAcpiThermalZone
	err := wmi.QueryNamespace("SELECT InstanceName, CurrentTemperature FROM MSAcpi_ThermalZoneTemperature", &zones, `root\wmi`)
	if err != nil || len(zones) == 0 {
		return nil, ErrUnavailable
	}

	temps := make(map[string]float64, len(zones))
	for _, z := range zones {
		celsius := float64(z.CurrentTemperature)/10 - 273.15
		if celsius <= 0 {
			continue
		}
		temps[z.InstanceName] = celsius
	}
	if len(temps) == 0 {
		return nil, ErrUnavailable
	}
	return temps, nil
}

// runKeys are the registry locations for autostart programs.
var runKeys = []struct {
	root registry.Key
	path string
	name string
}{
	{registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows\CurrentVersion\Run`, "HKLM Run"},
	{registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows\CurrentVersion\RunOnce`, "HKLM RunOnce"},
	{registry.CURRENT_USER, `SOFTWARE\Microsoft\Windows\CurrentVersion\Run`, "HKCU Run"},
	{registry.CURRENT_USER, `SOFTWARE\Microsoft\Windows\CurrentVersion\RunOnce`, "HKCU RunOnce"},
}

func (f *windowsFacts) startupEntries(context.Context) ([]StartupEntry, error) {
	var entries []StartupEntry

	for _, key := range runKeys {
		k, err := registry.OpenKey(key.root, key.path, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		names, err := k.ReadValueNames(0)
		if err == nil {
			for _, name := range names {
				command, _, _ := k.GetStringValue(name)
				entries = append(entries, StartupEntry{
					Name:     name,
					Command:  command,
					Location: key.name,
				})
			}
		}
		k.Close()
	}

	for _, dir := range startupFolders() {
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, file := range files {
			if file.IsDir() || strings.EqualFold(file.Name(), "desktop.ini") {
				continue
			}
			entries = append(entries, StartupEntry{
				Name:     file.Name(),
				Command:  filepath.Join(dir, file.Name()),
				Location: dir,
			})
		}
	}

	return entries, nil
}

// startupFolders returns the per-user and all-users startup directories.
func startupFolders() []string {
	var dirs []string
	if appData := os.Getenv("APPDATA"); appData != "" {
		dirs = append(dirs, filepath.Join(appData, `Microsoft\Windows\Start Menu\Programs\Startup`))
	}
	if programData := os.Getenv("PROGRAMDATA"); programData != "" {
		dirs = append(dirs, filepath.Join(programData, `Microsoft\Windows\Start Menu\Programs\Startup`))
	}
	return dirs
}

// win32PnPSignedDriver is the WMI projection for signed drivers.
type win32PnPSignedDriver struct {
	DeviceName    string
	Manufacturer  string
	DriverVersion string
	DriverDate    time.Time
}

func (f *windowsFacts) drivers(context.Context) ([]DriverFacts, error) {
	var raw []win32PnPSignedDriver
	if err := wmi.Query("SELECT DeviceName, Manufacturer, DriverVersion, DriverDate FROM Win32_PnPSignedDriver", &raw); err != nil {
		return nil, fmt.Errorf("query Win32_PnPSignedDriver: %w", err)
	}

	drivers := make([]DriverFacts, 0, len(raw))
	for _, d := range raw {
		if d.DeviceName == "" {
			continue
		}
		drivers = append(drivers, DriverFacts{
			Name:         d.DeviceName,
			Manufacturer: strings.TrimSpace(d.Manufacturer),
			Version:      d.DriverVersion,
			Status:       "ok",
			InstallDate:  d.DriverDate,
		})
	}
	return drivers, nil
}

// antiVirusProduct lives in the SecurityCenter2 namespace. productState
// is a bit field: 0x1000 on the second byte means real-time protection
// is active.
type antiVirusProduct struct {
	DisplayName  string
	ProductState uint32
}

func (f *windowsFacts) security(context.Context) (SecurityFacts, error) {
	facts := SecurityFacts{
		Firewall: FirewallFacts{Profiles: map[string]bool{}},
	}

	var products []antiVirusProduct
	err := wmi.QueryNamespace("SELECT DisplayName, ProductState FROM AntiVirusProduct", &products, `root\SecurityCenter2`)
	if err == nil {
		for _, p := range products {
			facts.Antivirus.Enabled = true
			if p.ProductState&0x1000 != 0 {
				facts.Antivirus.RealTime = true
			}
		}
	}

	profiles := map[string]string{
		"domain":  `SYSTEM\CurrentControlSet\Services\SharedAccess\Parameters\FirewallPolicy\DomainProfile`,
		"private": `SYSTEM\CurrentControlSet\Services\SharedAccess\Parameters\FirewallPolicy\StandardProfile`,
		"public":  `SYSTEM\CurrentControlSet\Services\SharedAccess\Parameters\FirewallPolicy\PublicProfile`,
	}
	for name, path := range profiles {
		k, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		enabled, _, err := k.GetIntegerValue("EnableFirewall")
		k.Close()
		if err != nil {
			continue
		}
		on := enabled == 1
		facts.Firewall.Profiles[name] = on
		if on {
			facts.Firewall.Enabled = true
		}
	}

	// Pending-update detection without the COM update agent: the
	// RebootRequired key appears when updates await a restart.
	if k, err := registry.OpenKey(registry.LOCAL_MACHINE,
		`SOFTWARE\Microsoft\Windows\CurrentVersion\WindowsUpdate\Auto Update\RebootRequired`,
		registry.QUERY_VALUE); err == nil {
		facts.PendingUpdates = 1
		k.Close()
	}

	return facts, nil
}
