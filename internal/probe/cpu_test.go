package probe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/types"
)

func healthyCPUStub() *stubAdapter {
	return &stubAdapter{
		cpu: platform.CPUFacts{
			Brand:          "Ryzen 7 5800X",
			Vendor:         "AuthenticAMD",
			PhysicalCores:  8,
			LogicalCores:   16,
			CurrentFreqMHz: 3800,
			MaxFreqMHz:     4700,
			TemperatureC:   55,
			HasTemperature: true,
		},
		usage: platform.CPUUsageFacts{OverallPercent: 20, PerCorePercent: []float64{18, 22}},
	}
}

func TestCPUProbe_Healthy(t *testing.T) {
	res, err := NewCPUProbe().Run(context.Background(), healthyCPUStub())
	require.NoError(t, err)

	assert.Equal(t, 100, res.HealthStatus)
	assert.Empty(t, res.Issues)
	assert.Equal(t, 20.0, res.Metrics["usage_percent"])
	assert.Equal(t, 55.0, res.Metrics["temperature_c"])
	assert.Equal(t, "Ryzen 7 5800X", res.Metrics["brand"])
}

func TestCPUProbe_Overheat(t *testing.T) {
	stub := healthyCPUStub()
	stub.cpu.TemperatureC = 92

	res, err := NewCPUProbe().Run(context.Background(), stub)
	require.NoError(t, err)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, types.SeverityHigh, res.Issues[0].Severity)
	assert.Equal(t, 80, res.HealthStatus)
}

func TestCPUProbe_WarmButNotHot(t *testing.T) {
	stub := healthyCPUStub()
	stub.cpu.TemperatureC = 78

	res, err := NewCPUProbe().Run(context.Background(), stub)
	require.NoError(t, err)
	assert.Equal(t, []types.Severity{types.SeverityMedium}, severities(res.Issues))
}

func TestCPUProbe_TemperatureBoundaryFallsLower(t *testing.T) {
	// exactly 85 is the medium band; exactly 75 raises nothing
	stub := healthyCPUStub()
	stub.cpu.TemperatureC = 85
	res, err := NewCPUProbe().Run(context.Background(), stub)
	require.NoError(t, err)
	assert.Equal(t, []types.Severity{types.SeverityMedium}, severities(res.Issues))

	stub = healthyCPUStub()
	stub.cpu.TemperatureC = 75
	res, err = NewCPUProbe().Run(context.Background(), stub)
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
}

func TestCPUProbe_HighUsage(t *testing.T) {
	stub := healthyCPUStub()
	stub.usage.OverallPercent = 95

	res, err := NewCPUProbe().Run(context.Background(), stub)
	require.NoError(t, err)
	assert.Equal(t, []types.Severity{types.SeverityHigh}, severities(res.Issues))
}

func TestCPUProbe_UsageBoundaryFallsLower(t *testing.T) {
	stub := healthyCPUStub()
	stub.usage.OverallPercent = 90

	res, err := NewCPUProbe().Run(context.Background(), stub)
	require.NoError(t, err)
	assert.Equal(t, []types.Severity{types.SeverityMedium}, severities(res.Issues))
}

func TestCPUProbe_Throttling(t *testing.T) {
	stub := healthyCPUStub()
	stub.cpu.CurrentFreqMHz = 2000
	stub.cpu.MaxFreqMHz = 4700
	stub.usage.OverallPercent = 75

	res, err := NewCPUProbe().Run(context.Background(), stub)
	require.NoError(t, err)
	assert.Equal(t, []types.Severity{types.SeverityMedium}, severities(res.Issues))
	assert.Contains(t, res.Issues[0].Title, "throttling")
}

func TestCPUProbe_NoThrottlingAtLowLoad(t *testing.T) {
	stub := healthyCPUStub()
	stub.cpu.CurrentFreqMHz = 2000
	stub.cpu.MaxFreqMHz = 4700
	stub.usage.OverallPercent = 30

	res, err := NewCPUProbe().Run(context.Background(), stub)
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
}

func TestCPUProbe_SingleCore(t *testing.T) {
	stub := healthyCPUStub()
	stub.cpu.PhysicalCores = 1

	res, err := NewCPUProbe().Run(context.Background(), stub)
	require.NoError(t, err)
	assert.Equal(t, []types.Severity{types.SeverityLow}, severities(res.Issues))
	assert.Equal(t, 95, res.HealthStatus)
}

func TestCPUProbe_AdapterError(t *testing.T) {
	stub := healthyCPUStub()
	stub.cpuErr = assert.AnError

	_, err := NewCPUProbe().Run(context.Background(), stub)
	assert.Error(t, err)
}
