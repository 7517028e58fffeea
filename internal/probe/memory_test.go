package probe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/types"
)

func healthyMemoryStub() *stubAdapter {
	return &stubAdapter{
		memory: platform.MemoryFacts{
			TotalBytes:     16 << 30,
			AvailableBytes: 9 << 30,
			UsedBytes:      7 << 30,
			UsedPercent:    43.75,
			SwapTotalBytes: 4 << 30,
			SwapUsedBytes:  1 << 30,
			SwapPercent:    25,
		},
	}
}

func TestMemoryProbe_Healthy(t *testing.T) {
	res, err := NewMemoryProbe().Run(context.Background(), healthyMemoryStub())
	require.NoError(t, err)

	assert.Equal(t, 100, res.HealthStatus)
	assert.Empty(t, res.Issues)
	assert.Equal(t, 16.0, res.Metrics["total_gib"])
	assert.Equal(t, 43.8, res.Metrics["used_percent"])
}

func TestMemoryProbe_HighUsage(t *testing.T) {
	stub := healthyMemoryStub()
	stub.memory.UsedPercent = 92

	res, err := NewMemoryProbe().Run(context.Background(), stub)
	require.NoError(t, err)
	assert.Equal(t, []types.Severity{types.SeverityHigh}, severities(res.Issues))
	assert.Equal(t, 80, res.HealthStatus)
}

func TestMemoryProbe_UsageBoundaryFallsLower(t *testing.T) {
	stub := healthyMemoryStub()
	stub.memory.UsedPercent = 90

	res, err := NewMemoryProbe().Run(context.Background(), stub)
	require.NoError(t, err)
	assert.Equal(t, []types.Severity{types.SeverityMedium}, severities(res.Issues))
}

func TestMemoryProbe_SwapPressure(t *testing.T) {
	stub := healthyMemoryStub()
	stub.memory.SwapPercent = 85

	res, err := NewMemoryProbe().Run(context.Background(), stub)
	require.NoError(t, err)
	assert.Equal(t, []types.Severity{types.SeverityHigh}, severities(res.Issues))
}

func TestMemoryProbe_NoSwapIssueWithoutSwap(t *testing.T) {
	stub := healthyMemoryStub()
	stub.memory.SwapTotalBytes = 0
	stub.memory.SwapPercent = 95

	res, err := NewMemoryProbe().Run(context.Background(), stub)
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
}

func TestMemoryProbe_LowTotal(t *testing.T) {
	stub := healthyMemoryStub()
	stub.memory.TotalBytes = 4 << 30

	res, err := NewMemoryProbe().Run(context.Background(), stub)
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, types.SeverityMedium, res.Issues[0].Severity)
	assert.Contains(t, res.Issues[0].Description, "4.00 GiB")
}

func TestMemoryProbe_AdapterError(t *testing.T) {
	stub := healthyMemoryStub()
	stub.memoryErr = assert.AnError

	_, err := NewMemoryProbe().Run(context.Background(), stub)
	assert.Error(t, err)
}
