package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/probe"
	"github.com/ancients-collective/vigia/internal/types"
)

const (
	// DefaultProbeTimeout bounds each individual probe run.
	DefaultProbeTimeout = 15 * time.Second
	// DefaultRunTimeout bounds a whole diagnostic run.
	DefaultRunTimeout = 45 * time.Second
)

// Coordinator fans a diagnostic run out over a set of probes, collects
// their results and assembles the final report. Probes run concurrently
// and a failing probe never aborts the run: its component is recorded
// with a synthetic error result instead.
type Coordinator struct {
	// Adapter supplies platform facts to every probe.
	Adapter platform.Adapter
	// Probes is the set of checks executed per run.
	Probes []probe.Probe
	// ProbeTimeout bounds each probe. Zero means DefaultProbeTimeout.
	ProbeTimeout time.Duration
	// RunTimeout bounds the whole run. Zero means DefaultRunTimeout.
	RunTimeout time.Duration
}

// NewCoordinator returns a Coordinator over the full probe set with
// default timeouts.
func NewCoordinator(adapter platform.Adapter) *Coordinator {
	return &Coordinator{
		Adapter: adapter,
		Probes:  probe.All(),
	}
}

func (c *Coordinator) probeTimeout() time.Duration {
	if c.ProbeTimeout > 0 {
		return c.ProbeTimeout
	}
	return DefaultProbeTimeout
}

func (c *Coordinator) runTimeout() time.Duration {
	if c.RunTimeout > 0 {
		return c.RunTimeout
	}
	return DefaultRunTimeout
}

// Run executes every probe concurrently and returns the normalized,
// scored report for userID. Probe failures and probe timeouts degrade
// the affected component only; a cancellation of ctx itself aborts the
// run and returns the context error.
func (c *Coordinator) Run(ctx context.Context, userID string) (*types.DiagnosticReport, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.runTimeout())
	defer cancel()

	type outcome struct {
		name   string
		result types.ComponentResult
	}

	outcomes := make([]outcome, len(c.Probes))

	var wg sync.WaitGroup
	for i, p := range c.Probes {
		wg.Add(1)
		go func(i int, p probe.Probe) {
			defer wg.Done()

			probeCtx, probeCancel := context.WithTimeout(runCtx, c.probeTimeout())
			defer probeCancel()

			res, err := runProbe(probeCtx, p, c.Adapter)
			if err != nil {
				res = ErrorResult(p.Name(), err.Error())
			}
			outcomes[i] = outcome{name: p.Name(), result: res}
		}(i, p)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &types.DiagnosticReport{
		ID:         types.NewReportID(),
		UserID:     userID,
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]types.ComponentResult, len(outcomes)),
	}
	for _, o := range outcomes {
		report.Components[o.name] = o.result
	}

	Normalize(report)
	Score(report)
	return report, nil
}

// runProbe shields the coordinator from a panicking probe so one broken
// check cannot take the whole run down.
func runProbe(ctx context.Context, p probe.Probe, adapter platform.Adapter) (res types.ComponentResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("probe %s panicked: %v", p.Name(), r)
		}
	}()
	return p.Run(ctx, adapter)
}
