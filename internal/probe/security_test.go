package probe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/types"
)

func healthySecurityStub() *stubAdapter {
	return &stubAdapter{
		security: platform.SecurityFacts{
			Antivirus: platform.AntivirusFacts{Enabled: true, RealTime: true},
			Firewall: platform.FirewallFacts{
				Enabled:  true,
				Profiles: map[string]bool{"domain": true, "private": true, "public": true},
			},
		},
	}
}

func TestSecurityProbe_Healthy(t *testing.T) {
	res, err := NewSecurityProbe().Run(context.Background(), healthySecurityStub())
	require.NoError(t, err)

	assert.Equal(t, 100, res.HealthStatus)
	assert.Empty(t, res.Issues)
	assert.Equal(t, true, res.Metrics["antivirus_realtime"])
}

func TestSecurityProbe_RealTimeDisabled(t *testing.T) {
	stub := healthySecurityStub()
	stub.security.Antivirus.RealTime = false

	res, err := NewSecurityProbe().Run(context.Background(), stub)
	require.NoError(t, err)
	assert.Equal(t, []types.Severity{types.SeverityHigh}, severities(res.Issues))
	assert.Equal(t, 80, res.HealthStatus)
}

func TestSecurityProbe_FirewallAllProfilesOff(t *testing.T) {
	stub := healthySecurityStub()
	stub.security.Firewall = platform.FirewallFacts{
		Profiles: map[string]bool{"domain": false, "private": false, "public": false},
	}

	res, err := NewSecurityProbe().Run(context.Background(), stub)
	require.NoError(t, err)
	assert.Equal(t, []types.Severity{types.SeverityHigh}, severities(res.Issues))
}

func TestSecurityProbe_FirewallOneProfileOnIsFine(t *testing.T) {
	stub := healthySecurityStub()
	stub.security.Firewall.Profiles = map[string]bool{"domain": false, "public": true}

	res, err := NewSecurityProbe().Run(context.Background(), stub)
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
}

func TestSecurityProbe_PendingUpdateBands(t *testing.T) {
	cases := []struct {
		pending int
		want    []types.Severity
	}{
		{11, []types.Severity{types.SeverityHigh}},
		{10, []types.Severity{types.SeverityMedium}},
		{1, []types.Severity{types.SeverityMedium}},
		{0, nil},
	}
	for _, c := range cases {
		stub := healthySecurityStub()
		stub.security.PendingUpdates = c.pending
		res, err := NewSecurityProbe().Run(context.Background(), stub)
		require.NoError(t, err)
		assert.Equal(t, c.want, severities(res.Issues), "pending %d", c.pending)
	}
}

func TestSecurityProbe_Unavailable(t *testing.T) {
	stub := &stubAdapter{securityErr: platform.ErrUnavailable}

	res, err := NewSecurityProbe().Run(context.Background(), stub)
	require.NoError(t, err)
	assert.Equal(t, 100, res.HealthStatus)
	assert.Equal(t, false, res.Metrics["available"])
}

func TestSecurityProbe_GenericError(t *testing.T) {
	stub := &stubAdapter{securityErr: assert.AnError}

	_, err := NewSecurityProbe().Run(context.Background(), stub)
	assert.Error(t, err)
}
