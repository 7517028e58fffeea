package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/vigia/internal/engine"
	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/probe"
	"github.com/ancients-collective/vigia/internal/types"
)

type fakeProbe struct {
	name string
	run  func(ctx context.Context, adapter platform.Adapter) (types.ComponentResult, error)
}

func (p *fakeProbe) Name() string { return p.name }

func (p *fakeProbe) Run(ctx context.Context, adapter platform.Adapter) (types.ComponentResult, error) {
	return p.run(ctx, adapter)
}

func healthyProbe(name string) probe.Probe {
	return &fakeProbe{
		name: name,
		run: func(context.Context, platform.Adapter) (types.ComponentResult, error) {
			return types.ComponentResult{HealthStatus: 100, Issues: []types.Issue{}}, nil
		},
	}
}

func healthyProbes() []probe.Probe {
	probes := make([]probe.Probe, 0, len(types.ComponentNames))
	for _, name := range types.ComponentNames {
		probes = append(probes, healthyProbe(name))
	}
	return probes
}

func TestNewCoordinator(t *testing.T) {
	c := engine.NewCoordinator(nil)

	require.Len(t, c.Probes, len(types.ComponentNames))
	for i, p := range c.Probes {
		assert.Equal(t, types.ComponentNames[i], p.Name())
	}
}

func TestCoordinatorRunAllHealthy(t *testing.T) {
	c := &engine.Coordinator{Probes: healthyProbes()}

	report, err := c.Run(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.True(t, strings.HasPrefix(report.ID, types.IDPrefix))
	assert.Equal(t, "user-1", report.UserID)
	assert.False(t, report.Timestamp.IsZero())
	assert.Len(t, report.Components, len(types.ComponentNames))
	assert.Equal(t, 100, report.Score)
	assert.Equal(t, types.StatusBom, report.SystemStatus)
	assert.Empty(t, report.Problems)
	assert.Empty(t, report.Recommendations)
}

func TestCoordinatorRunProbeFailureIsolated(t *testing.T) {
	probes := healthyProbes()
	probes[2] = &fakeProbe{
		name: types.ComponentDisk,
		run: func(context.Context, platform.Adapter) (types.ComponentResult, error) {
			return types.ComponentResult{}, errors.New("partition scan failed")
		},
	}
	c := &engine.Coordinator{Probes: probes}

	report, err := c.Run(context.Background(), "user-1")
	require.NoError(t, err)

	disk := report.Components[types.ComponentDisk]
	assert.Equal(t, 0, disk.HealthStatus)
	assert.Equal(t, "partition scan failed", disk.Error)
	require.Len(t, disk.Issues, 1)
	assert.Equal(t, types.SeverityHigh, disk.Issues[0].Severity)
	assert.Contains(t, disk.Issues[0].Title, types.ComponentDisk)

	// The failure stays confined to its own component.
	cpu := report.Components[types.ComponentCPU]
	assert.Equal(t, 100, cpu.HealthStatus)
	assert.Empty(t, cpu.Error)
}

func TestCoordinatorRunProbePanicIsolated(t *testing.T) {
	probes := healthyProbes()
	probes[7] = &fakeProbe{
		name: types.ComponentSecurity,
		run: func(context.Context, platform.Adapter) (types.ComponentResult, error) {
			panic("nil map write")
		},
	}
	c := &engine.Coordinator{Probes: probes}

	report, err := c.Run(context.Background(), "user-1")
	require.NoError(t, err)

	sec := report.Components[types.ComponentSecurity]
	assert.Equal(t, 0, sec.HealthStatus)
	assert.Contains(t, sec.Error, "panicked")
	require.NotEmpty(t, sec.Issues)
}

func TestCoordinatorRunProbeTimeout(t *testing.T) {
	probes := healthyProbes()
	probes[3] = &fakeProbe{
		name: types.ComponentNetwork,
		run: func(ctx context.Context, _ platform.Adapter) (types.ComponentResult, error) {
			<-ctx.Done()
			return types.ComponentResult{}, ctx.Err()
		},
	}
	c := &engine.Coordinator{
		Probes:       probes,
		ProbeTimeout: 20 * time.Millisecond,
	}

	report, err := c.Run(context.Background(), "user-1")
	require.NoError(t, err)

	netComp := report.Components[types.ComponentNetwork]
	assert.Equal(t, 0, netComp.HealthStatus)
	assert.Contains(t, netComp.Error, context.DeadlineExceeded.Error())
}

func TestCoordinatorRunCallerCancellation(t *testing.T) {
	blocked := &fakeProbe{
		name: types.ComponentCPU,
		run: func(ctx context.Context, _ platform.Adapter) (types.ComponentResult, error) {
			<-ctx.Done()
			return types.ComponentResult{}, ctx.Err()
		},
	}
	c := &engine.Coordinator{Probes: []probe.Probe{blocked}}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	report, err := c.Run(ctx, "user-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report)
}
