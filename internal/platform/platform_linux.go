//go:build linux

package platform

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// partitionSuffixPattern strips partition numbers from block device
// names: sda1 → sda, nvme0n1p2 → nvme0n1, mmcblk0p1 → mmcblk0.
var partitionSuffixPattern = regexp.MustCompile(`(p?\d+)$`)

// linuxFacts implements osFacts for Linux using /sys and /proc.
type linuxFacts struct{}

// newOSFacts returns the Linux implementation.
func newOSFacts() osFacts {
	return &linuxFacts{}
}

func (f *linuxFacts) cpuFrequency(context.Context) (float64, float64, error) {
	return cpuFrequencyFrom(
		"/sys/devices/system/cpu/cpu0/cpufreq/scaling_cur_freq",
		"/sys/devices/system/cpu/cpu0/cpufreq/cpuinfo_max_freq",
	)
}

// cpuFrequencyFrom is the injectable core of frequency detection.
// cpufreq values are in kHz.
func cpuFrequencyFrom(curPath, maxPath string) (float64, float64, error) {
	current, errCur := readSysFloat(curPath)
	max, errMax := readSysFloat(maxPath)
	if errCur != nil && errMax != nil {
		return 0, 0, ErrUnavailable
	}
	return current / 1000, max / 1000, nil
}

func (f *linuxFacts) memoryModules(context.Context) ([]MemoryModule, int, int, error) {
	// RAM module enumeration needs SMBIOS access (dmidecode, root only).
	return nil, 0, 0, ErrUnavailable
}

func (f *linuxFacts) partitionMedia(device string) MediaType {
	return partitionMediaFrom(device, "/sys/block")
}

// partitionMediaFrom is the injectable core of media-type detection.
func partitionMediaFrom(device, sysBlock string) MediaType {
	base := filepath.Base(device)
	if strings.HasPrefix(base, "nvme") {
		return MediaSSD
	}
	parent := partitionSuffixPattern.ReplaceAllString(base, "")
	if parent == "" {
		return MediaUnknown
	}

	data, err := os.ReadFile(filepath.Join(sysBlock, parent, "queue", "rotational"))
	if err != nil {
		return MediaUnknown
	}
	switch strings.TrimSpace(string(data)) {
	case "0":
		return MediaSSD
	case "1":
		return MediaHDD
	}
	return MediaUnknown
}

func (f *linuxFacts) physicalDisks(context.Context) ([]PhysicalDiskFacts, error) {
	return physicalDisksFrom("/sys/block")
}

// physicalDisksFrom enumerates block devices under the given sysfs root,
// skipping virtual devices.
func physicalDisksFrom(sysBlock string) ([]PhysicalDiskFacts, error) {
	entries, err := os.ReadDir(sysBlock)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sysBlock, err)
	}

	var disks []PhysicalDiskFacts
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "loop") ||
			strings.HasPrefix(name, "ram") ||
			strings.HasPrefix(name, "zram") ||
			strings.HasPrefix(name, "dm-") ||
			strings.HasPrefix(name, "sr") {
			continue
		}

		devDir := filepath.Join(sysBlock, name)
		d := PhysicalDiskFacts{
			Model:        readSysString(filepath.Join(devDir, "device", "model")),
			Manufacturer: readSysString(filepath.Join(devDir, "device", "vendor")),
			Serial:       readSysString(filepath.Join(devDir, "device", "serial")),
			MediaType:    MediaUnknown,
			Status:       "ok",
		}
		if d.Model == "" {
			d.Model = name
		}

		// size is in 512-byte sectors regardless of the logical block size
		if sectors, err := readSysFloat(filepath.Join(devDir, "size")); err == nil {
			d.SizeBytes = uint64(sectors) * 512
		}

		switch {
		case strings.HasPrefix(name, "nvme"):
			d.Interface = "NVMe"
			d.MediaType = MediaSSD
		case strings.HasPrefix(name, "mmcblk"):
			d.Interface = "MMC"
			d.MediaType = MediaSSD
		default:
			d.Interface = "SCSI"
			if rot, err := readSysFloat(filepath.Join(devDir, "queue", "rotational")); err == nil {
				if rot == 0 {
					d.MediaType = MediaSSD
				} else {
					d.MediaType = MediaHDD
				}
			}
		}

		disks = append(disks, d)
	}
	return disks, nil
}

func (f *linuxFacts) interfaceSpeed(name string) int {
	speed, err := readSysFloat(filepath.Join("/sys/class/net", name, "speed"))
	if err != nil || speed < 0 {
		return 0
	}
	return int(speed)
}

func (f *linuxFacts) defaultGateway(context.Context) (string, error) {
	return defaultGatewayFrom("/proc/net/route")
}

// defaultGatewayFrom parses the kernel routing table. The gateway column
// is a little-endian hex IPv4 address.
func defaultGatewayFrom(routePath string) (string, error) {
	data, err := os.ReadFile(routePath)
	if err != nil {
		return "", fmt.Errorf("read routing table: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n")[1:] {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[1] != "00000000" {
			continue
		}
		raw, err := hex.DecodeString(fields[2])
		if err != nil || len(raw) != 4 {
			continue
		}
		ip := make(net.IP, 4)
		binary.BigEndian.PutUint32(ip, binary.LittleEndian.Uint32(raw))
		return ip.String(), nil
	}
	return "", fmt.Errorf("no default route found")
}

func (f *linuxFacts) temperaturesFallback(context.Context) (map[string]float64, error) {
	return thermalZonesFrom("/sys/class/thermal")
}

// thermalZonesFrom reads thermal_zone* entries; temp files hold
// millidegrees Celsius.
func thermalZonesFrom(thermalRoot string) (map[string]float64, error) {
	zones, err := filepath.Glob(filepath.Join(thermalRoot, "thermal_zone*"))
	if err != nil || len(zones) == 0 {
		return nil, ErrUnavailable
	}

	temps := make(map[string]float64)
	for _, zone := range zones {
		milli, err := readSysFloat(filepath.Join(zone, "temp"))
		if err != nil || milli <= 0 {
			continue
		}
		label := readSysString(filepath.Join(zone, "type"))
		if label == "" {
			label = filepath.Base(zone)
		}
		temps[label] = milli / 1000
	}
	if len(temps) == 0 {
		return nil, ErrUnavailable
	}
	return temps, nil
}

func (f *linuxFacts) startupEntries(context.Context) ([]StartupEntry, error) {
	dirs := []string{"/etc/xdg/autostart"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "autostart"))
	}
	return startupEntriesFrom(dirs)
}

// startupEntriesFrom parses XDG .desktop files from autostart
// directories. Missing directories are not an error.
func startupEntriesFrom(dirs []string) ([]StartupEntry, error) {
	var entries []StartupEntry
	for _, dir := range dirs {
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".desktop") {
				continue
			}
			path := filepath.Join(dir, file.Name())
			entry := parseDesktopFile(path)
			if entry.Name == "" {
				entry.Name = strings.TrimSuffix(file.Name(), ".desktop")
			}
			entry.Location = dir
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// parseDesktopFile extracts Name and Exec from a .desktop file.
func parseDesktopFile(path string) StartupEntry {
	entry := StartupEntry{}
	data, err := os.ReadFile(path)
	if err != nil {
		return entry
	}
	for _, line := range strings.Split(string(data), "\n") {
		switch {
		case entry.Name == "" && strings.HasPrefix(line, "Name="):
			entry.Name = strings.TrimPrefix(line, "Name=")
		case entry.Command == "" && strings.HasPrefix(line, "Exec="):
			entry.Command = strings.TrimPrefix(line, "Exec=")
		}
	}
	return entry
}

func (f *linuxFacts) drivers(context.Context) ([]DriverFacts, error) {
	// Signed-driver enumeration is a Windows concept (WMI).
	return nil, ErrUnavailable
}

func (f *linuxFacts) security(context.Context) (SecurityFacts, error) {
	// Defender/Firewall state is Windows-only; POSIX security posture is
	// out of the adapter's reach without a privileged helper.
	return SecurityFacts{}, ErrUnavailable
}

// readSysString reads and trims a sysfs attribute; empty on error.
func readSysString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// readSysFloat reads a numeric sysfs attribute.
func readSysFloat(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
}
