package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/types"
)

// Pending-update thresholds. Exact equality falls into the lower band.
const pendingUpdatesHigh = 10

// SecurityProbe evaluates antivirus, firewall, and update posture.
type SecurityProbe struct{}

// NewSecurityProbe returns the security probe.
func NewSecurityProbe() *SecurityProbe {
	return &SecurityProbe{}
}

// Name implements Probe.
func (p *SecurityProbe) Name() string { return types.ComponentSecurity }

// Run implements Probe.
func (p *SecurityProbe) Run(ctx context.Context, adapter platform.Adapter) (types.ComponentResult, error) {
	facts, err := adapter.Security(ctx)
	if err != nil {
		if errors.Is(err, platform.ErrUnavailable) {
			return unavailableResult("estado de segurança indisponível nesta plataforma"), nil
		}
		return types.ComponentResult{}, fmt.Errorf("security state: %w", err)
	}

	var issues []types.Issue

	if !facts.Antivirus.RealTime {
		issues = append(issues, newIssue(
			"Proteção em tempo real desativada",
			"O antivírus não está com a proteção em tempo real ativa.",
			"Ative a proteção em tempo real do antivírus.",
			types.SeverityHigh))
	}

	if firewallFullyDisabled(facts.Firewall) {
		issues = append(issues, newIssue(
			"Firewall desativado",
			"O firewall está desativado em todos os perfis de rede.",
			"Ative o firewall do sistema.",
			types.SeverityHigh))
	}

	switch {
	case facts.PendingUpdates > pendingUpdatesHigh:
		issues = append(issues, newIssue(
			"Muitas atualizações pendentes",
			fmt.Sprintf("Há %d atualizações de sistema pendentes.", facts.PendingUpdates),
			"Instale as atualizações pendentes o quanto antes.",
			types.SeverityHigh))
	case facts.PendingUpdates > 0:
		issues = append(issues, newIssue(
			"Atualizações pendentes",
			fmt.Sprintf("Há %d atualização(ões) de sistema pendente(s).", facts.PendingUpdates),
			"Instale as atualizações pendentes.",
			types.SeverityMedium))
	}

	profiles := make(map[string]any, len(facts.Firewall.Profiles))
	for name, enabled := range facts.Firewall.Profiles {
		profiles[name] = enabled
	}

	metrics := map[string]any{
		"available":          true,
		"antivirus_enabled":  facts.Antivirus.Enabled,
		"antivirus_realtime": facts.Antivirus.RealTime,
		"firewall_enabled":   facts.Firewall.Enabled,
		"firewall_profiles":  profiles,
		"pending_updates":    float64(facts.PendingUpdates),
	}
	if !facts.Antivirus.LastUpdate.IsZero() {
		metrics["antivirus_last_update"] = facts.Antivirus.LastUpdate.Format("2006-01-02")
	}

	return result(issues, metrics), nil
}

// firewallFullyDisabled reports whether no profile has the firewall on.
func firewallFullyDisabled(fw platform.FirewallFacts) bool {
	if len(fw.Profiles) == 0 {
		return !fw.Enabled
	}
	for _, enabled := range fw.Profiles {
		if enabled {
			return false
		}
	}
	return true
}
