package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/vigia/internal/engine"
	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/probe"
	"github.com/ancients-collective/vigia/internal/service"
	"github.com/ancients-collective/vigia/internal/store"
	"github.com/ancients-collective/vigia/internal/types"
)

// spyAdapter records every capability call so tests can assert the
// adapter was (or was not) touched.
type spyAdapter struct {
	calls int

	host       platform.HostFacts
	cpu        platform.CPUFacts
	usage      platform.CPUUsageFacts
	memory     platform.MemoryFacts
	partitions []platform.PartitionFacts
	disks      []platform.PhysicalDiskFacts
	disksErr   error
	interfaces []platform.InterfaceFacts
}

func (a *spyAdapter) Host(context.Context) (platform.HostFacts, error) {
	a.calls++
	return a.host, nil
}

func (a *spyAdapter) CPU(context.Context) (platform.CPUFacts, error) {
	a.calls++
	return a.cpu, nil
}

func (a *spyAdapter) CPUUsage(context.Context, time.Duration) (platform.CPUUsageFacts, error) {
	a.calls++
	return a.usage, nil
}

func (a *spyAdapter) Memory(context.Context) (platform.MemoryFacts, error) {
	a.calls++
	return a.memory, nil
}

func (a *spyAdapter) Partitions(context.Context) ([]platform.PartitionFacts, error) {
	a.calls++
	return a.partitions, nil
}

func (a *spyAdapter) PhysicalDisks(context.Context) ([]platform.PhysicalDiskFacts, error) {
	a.calls++
	return a.disks, a.disksErr
}

func (a *spyAdapter) Interfaces(context.Context) ([]platform.InterfaceFacts, error) {
	a.calls++
	return a.interfaces, nil
}

func (a *spyAdapter) NetCounters(context.Context) (platform.NetCounterFacts, error) {
	a.calls++
	return platform.NetCounterFacts{}, nil
}

func (a *spyAdapter) DefaultGateway(context.Context) (string, error) {
	a.calls++
	return "", platform.ErrUnavailable
}

func (a *spyAdapter) Temperatures(context.Context) (map[string]float64, error) {
	a.calls++
	return nil, platform.ErrUnavailable
}

func (a *spyAdapter) StartupEntries(context.Context) ([]platform.StartupEntry, error) {
	a.calls++
	return nil, platform.ErrUnavailable
}

func (a *spyAdapter) Drivers(context.Context) ([]platform.DriverFacts, error) {
	a.calls++
	return nil, platform.ErrUnavailable
}

func (a *spyAdapter) Security(context.Context) (platform.SecurityFacts, error) {
	a.calls++
	return platform.SecurityFacts{}, nil
}

type staticProbe struct {
	name   string
	result types.ComponentResult
}

func (p *staticProbe) Name() string { return p.name }

func (p *staticProbe) Run(context.Context, platform.Adapter) (types.ComponentResult, error) {
	return p.result, nil
}

func staticProbes() []probe.Probe {
	probes := make([]probe.Probe, 0, len(types.ComponentNames))
	for _, name := range types.ComponentNames {
		probes = append(probes, &staticProbe{
			name:   name,
			result: types.ComponentResult{HealthStatus: 100, Issues: []types.Issue{}},
		})
	}
	return probes
}

func newTestService(t *testing.T, adapter platform.Adapter, testMode bool) *service.Service {
	t.Helper()
	repo, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	coordinator := &engine.Coordinator{Adapter: adapter, Probes: staticProbes()}
	return service.New(adapter, repo, coordinator, testMode)
}

func TestRunDiagnosticPersists(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &spyAdapter{}, false)

	report, err := svc.RunDiagnostic(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(report.ID, types.IDPrefix))
	assert.Equal(t, 100, report.Score)

	got, err := svc.GetDiagnosticByID(ctx, "user-1", report.ID)
	require.NoError(t, err)

	wantJSON, err := json.Marshal(report)
	require.NoError(t, err)
	gotJSON, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(wantJSON), string(gotJSON))

	history, err := svc.GetDiagnosticHistory(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, report.ID, history[0].ID)
}

func TestRunDiagnosticTestMode(t *testing.T) {
	ctx := context.Background()
	adapter := &spyAdapter{}
	svc := newTestService(t, adapter, true)

	report, err := svc.RunDiagnostic(ctx, "user-1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(report.ID, types.TestIDPrefix))
	assert.Equal(t, 90, report.Score)
	assert.Equal(t, types.StatusBom, report.SystemStatus)
	assert.Empty(t, report.Problems)
	assert.Len(t, report.Components, len(types.ComponentNames))

	assert.Zero(t, adapter.calls, "test mode must not touch the adapter")

	// And nothing is persisted.
	all, err := svc.GetAllDiagnostics(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetDiagnosticByIDErrorKinds(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &spyAdapter{}, false)

	report, err := svc.RunDiagnostic(ctx, "user-1")
	require.NoError(t, err)

	_, err = svc.GetDiagnosticByID(ctx, "user-1", "diag-missing")
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	_, err = svc.GetDiagnosticByID(ctx, "user-2", report.ID)
	assert.Equal(t, service.KindForbidden, service.KindOf(err))

	// An empty user id reads across owners.
	got, err := svc.GetDiagnosticByID(ctx, "", report.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
}

func TestRunDiagnosticCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestService(t, &spyAdapter{}, false)

	_, err := svc.RunDiagnostic(ctx, "user-1")
	require.Error(t, err)
	assert.Equal(t, service.KindTimeout, service.KindOf(err))

	all, err := svc.GetAllDiagnostics(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all, "aborted runs must not be persisted")
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want service.Kind
	}{
		{"nil", nil, service.KindOK},
		{"not found", store.ErrNotFound, service.KindNotFound},
		{"forbidden", store.ErrForbidden, service.KindForbidden},
		{"deadline", context.DeadlineExceeded, service.KindTimeout},
		{"adapter unavailable", platform.ErrUnavailable, service.KindAdapterUnavailable},
		{"anything else", errors.New("boom"), service.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.KindOf(tt.err))
		})
	}
}

func TestGetSystemSummary(t *testing.T) {
	adapter := &spyAdapter{
		host: platform.HostFacts{
			Hostname:      "atlas",
			OS:            "linux",
			Platform:      "debian",
			KernelVersion: "6.8.0",
			Arch:          "x86_64",
			UptimeSeconds: 3600,
		},
		usage:  platform.CPUUsageFacts{OverallPercent: 37.5},
		memory: platform.MemoryFacts{UsedPercent: 41.2},
		partitions: []platform.PartitionFacts{
			{Device: "/dev/sda2", Mountpoint: "/home", UsedPercent: 88.0},
			{Device: "/dev/sda1", Mountpoint: "/", UsedPercent: 63.4},
		},
	}
	svc := newTestService(t, adapter, false)

	summary, err := svc.GetSystemSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "atlas", summary.Hostname)
	assert.Equal(t, uint64(3600), summary.UptimeSeconds)
	assert.Equal(t, 37.5, summary.CPUUsagePercent)
	assert.Equal(t, 41.2, summary.MemoryUsagePercent)
	assert.Equal(t, 63.4, summary.DiskUsagePercent, "root mount is the primary partition")
	assert.False(t, summary.Timestamp.IsZero())
}

func TestGetComputerIdentity(t *testing.T) {
	adapter := &spyAdapter{
		host: platform.HostFacts{Hostname: "atlas", OS: "linux", Arch: "x86_64"},
		cpu: platform.CPUFacts{
			Brand:         "AMD Ryzen 7 5800X",
			Vendor:        "AuthenticAMD",
			PhysicalCores: 8,
			LogicalCores:  16,
			Architecture:  "x86_64",
		},
		memory:   platform.MemoryFacts{TotalBytes: 32 << 30},
		disksErr: platform.ErrUnavailable,
		interfaces: []platform.InterfaceFacts{
			{Name: "eth0", IsUp: true, MAC: "aa:bb:cc:dd:ee:ff", MTU: 1500},
		},
	}
	svc := newTestService(t, adapter, false)

	identity, err := svc.GetComputerIdentity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AMD Ryzen 7 5800X", identity.CPU.Brand)
	assert.Equal(t, 16, identity.CPU.LogicalCores)
	assert.Equal(t, uint64(32<<30), identity.MemoryTotalBytes)
	assert.Nil(t, identity.Disks, "unenumerable disks are omitted")
	require.Len(t, identity.Interfaces, 1)
	assert.Equal(t, "eth0", identity.Interfaces[0].Name)
}

func TestGetSystemMetrics(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &spyAdapter{}, false)

	_, err := svc.RunDiagnostic(ctx, "user-1")
	require.NoError(t, err)
	_, err = svc.RunDiagnostic(ctx, "user-1")
	require.NoError(t, err)

	metrics, err := svc.GetSystemMetrics(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, metrics.TotalReports)
	assert.Equal(t, 100, metrics.LastScore)
	assert.Equal(t, types.StatusBom, metrics.LastStatus)
}
