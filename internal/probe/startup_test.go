package probe

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/types"
)

func startupEntries(n int) []platform.StartupEntry {
	entries := make([]platform.StartupEntry, n)
	for i := range entries {
		entries[i] = platform.StartupEntry{
			Name:     fmt.Sprintf("app-%d", i),
			Command:  fmt.Sprintf("/opt/app-%d/run", i),
			Location: "/etc/xdg/autostart",
		}
	}
	return entries
}

func TestStartupProbe_Healthy(t *testing.T) {
	stub := &stubAdapter{startup: startupEntries(5)}

	res, err := NewStartupProbe().Run(context.Background(), stub)
	require.NoError(t, err)

	assert.Equal(t, 100, res.HealthStatus)
	assert.Empty(t, res.Issues)
	assert.Equal(t, 5.0, res.Metrics["entry_count"])
}

func TestStartupProbe_Bands(t *testing.T) {
	cases := []struct {
		count int
		want  []types.Severity
	}{
		{16, []types.Severity{types.SeverityHigh}},
		{15, []types.Severity{types.SeverityMedium}},
		{9, []types.Severity{types.SeverityMedium}},
		{8, nil},
	}
	for _, c := range cases {
		stub := &stubAdapter{startup: startupEntries(c.count)}
		res, err := NewStartupProbe().Run(context.Background(), stub)
		require.NoError(t, err)
		assert.Equal(t, c.want, severities(res.Issues), "count %d", c.count)
	}
}

func TestStartupProbe_Unavailable(t *testing.T) {
	stub := &stubAdapter{startupErr: platform.ErrUnavailable}

	res, err := NewStartupProbe().Run(context.Background(), stub)
	require.NoError(t, err)
	assert.Equal(t, 100, res.HealthStatus)
	assert.Equal(t, false, res.Metrics["available"])
}

func TestStartupProbe_GenericError(t *testing.T) {
	stub := &stubAdapter{startupErr: assert.AnError}

	_, err := NewStartupProbe().Run(context.Background(), stub)
	assert.Error(t, err)
}
