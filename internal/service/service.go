// Package service is the facade the CLI (and any future transport)
// talks to: it drives diagnostic runs, persistence and the cheap
// snapshot queries, and classifies every failure with a Kind.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/ancients-collective/vigia/internal/engine"
	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/store"
	"github.com/ancients-collective/vigia/internal/types"
)

// summarySampleWindow bounds the CPU usage sample taken for the cheap
// system snapshot.
const summarySampleWindow = 300 * time.Millisecond

// Service exposes the diagnostic operations.
type Service struct {
	adapter     platform.Adapter
	repo        store.Repository
	coordinator *engine.Coordinator
	testMode    bool
	now         func() time.Time
}

// New assembles a Service. With testMode set, RunDiagnostic returns a
// simulated report without touching the adapter or the repository.
func New(adapter platform.Adapter, repo store.Repository, coordinator *engine.Coordinator, testMode bool) *Service {
	return &Service{
		adapter:     adapter,
		repo:        repo,
		coordinator: coordinator,
		testMode:    testMode,
		now:         time.Now,
	}
}

// RunDiagnostic executes a full probe run for userID and persists the
// resulting report. In test mode it short-circuits to a simulated
// report that is never persisted.
func (s *Service) RunDiagnostic(ctx context.Context, userID string) (*types.DiagnosticReport, error) {
	if s.testMode {
		return s.testReport(userID), nil
	}

	report, err := s.coordinator.Run(ctx, userID)
	if err != nil {
		return nil, wrap("run_diagnostic", err)
	}
	if err := s.repo.Save(ctx, report); err != nil {
		return nil, wrap("run_diagnostic", err)
	}
	return report, nil
}

// testReport fabricates a healthy-looking report for smoke tests of the
// surrounding plumbing.
func (s *Service) testReport(userID string) *types.DiagnosticReport {
	components := make(map[string]types.ComponentResult, len(types.ComponentNames))
	for _, name := range types.ComponentNames {
		components[name] = types.ComponentResult{
			HealthStatus: 100,
			Issues:       []types.Issue{},
			Metrics:      map[string]any{"simulated": true},
		}
	}
	return &types.DiagnosticReport{
		ID:              types.NewTestReportID(),
		UserID:          userID,
		Timestamp:       s.now().UTC(),
		Score:           90,
		SystemStatus:    types.StatusForScore(90),
		Components:      components,
		Problems:        []types.Problem{},
		Recommendations: []types.Recommendation{},
	}
}

// GetDiagnosticByID loads one persisted report, enforcing ownership.
// An empty userID is an unspecified (admin) read: any report matches.
func (s *Service) GetDiagnosticByID(ctx context.Context, userID, id string) (*types.DiagnosticReport, error) {
	report, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, wrap("get_diagnostic", err)
	}
	return report, nil
}

// GetDiagnosticHistory returns the user's report summaries, newest
// first. A limit of zero or less means no limit.
func (s *Service) GetDiagnosticHistory(ctx context.Context, userID string, limit int) ([]types.Summary, error) {
	summaries, err := s.repo.GetHistory(ctx, userID, limit)
	if err != nil {
		return nil, wrap("get_history", err)
	}
	return summaries, nil
}

// GetAllDiagnostics returns summaries across all users, newest first.
func (s *Service) GetAllDiagnostics(ctx context.Context) ([]types.Summary, error) {
	summaries, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, wrap("get_all", err)
	}
	return summaries, nil
}

// GetSystemMetrics aggregates the user's persisted reports, or every
// user's when userID is empty.
func (s *Service) GetSystemMetrics(ctx context.Context, userID string) (*types.Metrics, error) {
	metrics, err := s.repo.GetMetrics(ctx, userID)
	if err != nil {
		return nil, wrap("get_metrics", err)
	}
	return metrics, nil
}

// GetSystemSummary takes a cheap snapshot of the machine without
// running the probe pipeline.
func (s *Service) GetSystemSummary(ctx context.Context) (*types.SummaryReport, error) {
	host, err := s.adapter.Host(ctx)
	if err != nil {
		return nil, wrap("get_summary", err)
	}

	summary := &types.SummaryReport{
		Hostname:      host.Hostname,
		OS:            host.OS,
		Platform:      host.Platform,
		KernelVersion: host.KernelVersion,
		Arch:          host.Arch,
		UptimeSeconds: host.UptimeSeconds,
		Timestamp:     s.now().UTC(),
	}

	if usage, err := s.adapter.CPUUsage(ctx, summarySampleWindow); err == nil {
		summary.CPUUsagePercent = usage.OverallPercent
	}
	if mem, err := s.adapter.Memory(ctx); err == nil {
		summary.MemoryUsagePercent = mem.UsedPercent
	}
	if partitions, err := s.adapter.Partitions(ctx); err == nil {
		if primary, ok := primaryPartition(partitions); ok {
			summary.DiskUsagePercent = primary.UsedPercent
		}
	}
	return summary, nil
}

// GetComputerIdentity assembles the hardware identity view. Facts the
// platform cannot enumerate are simply omitted.
func (s *Service) GetComputerIdentity(ctx context.Context) (*types.IdentityReport, error) {
	host, err := s.adapter.Host(ctx)
	if err != nil {
		return nil, wrap("get_identity", err)
	}
	cpu, err := s.adapter.CPU(ctx)
	if err != nil {
		return nil, wrap("get_identity", err)
	}

	identity := &types.IdentityReport{
		Hostname:        host.Hostname,
		OS:              host.OS,
		Platform:        host.Platform,
		PlatformVersion: host.PlatformVersion,
		KernelVersion:   host.KernelVersion,
		Arch:            host.Arch,
		Virtualization:  host.Virtualization,
		CPU: types.IdentityCPU{
			Brand:         cpu.Brand,
			Vendor:        cpu.Vendor,
			PhysicalCores: cpu.PhysicalCores,
			LogicalCores:  cpu.LogicalCores,
			Architecture:  cpu.Architecture,
		},
	}

	if mem, err := s.adapter.Memory(ctx); err == nil {
		identity.MemoryTotalBytes = mem.TotalBytes
		for _, m := range mem.Modules {
			identity.MemoryModules = append(identity.MemoryModules, types.IdentityMemoryModule{
				Slot:          m.Slot,
				CapacityBytes: m.CapacityBytes,
				SpeedMHz:      m.SpeedMHz,
				Manufacturer:  m.Manufacturer,
			})
		}
	}

	if disks, err := s.adapter.PhysicalDisks(ctx); err == nil {
		for _, d := range disks {
			identity.Disks = append(identity.Disks, types.IdentityDisk{
				Model:        d.Model,
				Manufacturer: d.Manufacturer,
				Serial:       d.Serial,
				SizeBytes:    d.SizeBytes,
				Interface:    d.Interface,
				MediaType:    string(d.MediaType),
				Status:       d.Status,
			})
		}
	}

	if ifaces, err := s.adapter.Interfaces(ctx); err == nil {
		for _, i := range ifaces {
			identity.Interfaces = append(identity.Interfaces, types.IdentityInterface{
				Name:      i.Name,
				Addresses: i.Addresses,
				MAC:       i.MAC,
				IsUp:      i.IsUp,
				SpeedMbps: i.SpeedMbps,
				MTU:       i.MTU,
			})
		}
	}
	return identity, nil
}

// primaryPartition picks the system partition: C: on Windows, the root
// mount elsewhere, falling back to the first entry.
func primaryPartition(partitions []platform.PartitionFacts) (platform.PartitionFacts, bool) {
	if len(partitions) == 0 {
		return platform.PartitionFacts{}, false
	}
	for _, p := range partitions {
		if strings.HasPrefix(strings.ToUpper(p.Device), "C:") {
			return p, true
		}
	}
	for _, p := range partitions {
		if p.Mountpoint == "/" {
			return p, true
		}
	}
	return partitions[0], true
}
