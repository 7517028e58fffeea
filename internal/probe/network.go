package probe

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/types"
)

// Network probe parameters.
const (
	netSampleWindow   = 500 * time.Millisecond
	netDialTimeout    = 3 * time.Second
	netErrCounterHigh = 1000
)

// dnsTestHosts are the canonical hostnames used to verify resolution.
var dnsTestHosts = []string{"google.com", "cloudflare.com", "example.com"}

// tcpTestEndpoints are well-known addresses probed on ports 53 and 80.
var tcpTestEndpoints = []string{"1.1.1.1:53", "8.8.8.8:53", "1.1.1.1:80", "8.8.8.8:80"}

// Throughput quality bands in bytes per second.
const (
	speedExcellent = 1 << 20   // 1 MiB/s
	speedGood      = 500 << 10 // 500 KiB/s
	speedAverage   = 100 << 10 // 100 KiB/s
)

// NetworkProbe inspects interfaces, throughput, gateway reachability,
// DNS resolution, and TCP reachability. The socket operations are
// injectable for tests.
type NetworkProbe struct {
	// SampleWindow separates the two counter samples.
	SampleWindow time.Duration

	dial   func(ctx context.Context, addr string) error
	lookup func(ctx context.Context, host string) error
	ping   func(ctx context.Context, host string) error
}

// NewNetworkProbe returns a network probe backed by the standard dialer
// and resolver.
func NewNetworkProbe() *NetworkProbe {
	return &NetworkProbe{
		SampleWindow: netSampleWindow,
		dial:         dialTCP,
		lookup:       lookupHost,
		ping:         pingHost,
	}
}

// Name implements Probe.
func (p *NetworkProbe) Name() string { return types.ComponentNetwork }

// Run implements Probe.
func (p *NetworkProbe) Run(ctx context.Context, adapter platform.Adapter) (types.ComponentResult, error) {
	ifaces, err := adapter.Interfaces(ctx)
	if err != nil {
		return types.ComponentResult{}, fmt.Errorf("network interfaces: %w", err)
	}

	var issues []types.Issue

	external := externalInterfaces(ifaces)
	if len(external) == 0 {
		issues = append(issues, newIssue(
			"Nenhuma interface de rede encontrada",
			"O sistema não possui interfaces de rede além do loopback.",
			"Verifique o hardware de rede e os drivers.",
			types.SeverityHigh))
	}

	downCount := 0
	for _, iface := range external {
		if !iface.IsUp {
			downCount++
		}
	}
	if downCount > 0 {
		issues = append(issues, newIssue(
			"Interface de rede desativada",
			fmt.Sprintf("%d interface(s) de rede estão administrativamente desativadas.", downCount),
			"Reative as interfaces desativadas se forem necessárias.",
			types.SeverityMedium))
	}

	downloadBps, uploadBps := p.sampleThroughput(ctx, adapter)

	gateway, gatewayReachable := "", false
	if gw, err := adapter.DefaultGateway(ctx); err == nil && gw != "" {
		gateway = gw
		if p.ping != nil {
			gatewayReachable = p.ping(ctx, gw) == nil
		}
	}

	dnsOK := p.anyResolves(ctx)
	if !dnsOK {
		issues = append(issues, newIssue(
			"Falha na resolução de DNS",
			"Nenhum dos nomes de teste pôde ser resolvido.",
			"Verifique a configuração de DNS da conexão.",
			types.SeverityMedium))
	}

	tcpOK := p.anyConnects(ctx)
	if !tcpOK {
		issues = append(issues, newIssue(
			"Sem conectividade com a internet",
			"Nenhum dos endpoints de teste respondeu em TCP nas portas 53 e 80.",
			"Verifique a conexão com a internet e o firewall.",
			types.SeverityHigh))
	}

	counters, counterErr := adapter.NetCounters(ctx)
	if counterErr == nil && (counters.ErrIn > netErrCounterHigh || counters.ErrOut > netErrCounterHigh) {
		issues = append(issues, newIssue(
			"Erros de rede acima do normal",
			fmt.Sprintf("Os contadores registram %d erros de entrada e %d de saída.", counters.ErrIn, counters.ErrOut),
			"Verifique cabos, drivers e a qualidade da conexão.",
			types.SeverityMedium))
	}

	metrics := map[string]any{
		"interface_count":    float64(len(external)),
		"interfaces_down":    float64(downCount),
		"download_bps":       round1(downloadBps),
		"upload_bps":         round1(uploadBps),
		"connection_quality": qualityLabel(downloadBps),
		"dns_ok":             dnsOK,
		"tcp_ok":             tcpOK,
		"gateway":            gateway,
		"gateway_reachable":  gatewayReachable,
	}
	if counterErr == nil {
		metrics["errors_in"] = float64(counters.ErrIn)
		metrics["errors_out"] = float64(counters.ErrOut)
	}

	return result(issues, metrics), nil
}

// sampleThroughput samples the aggregate counters twice to estimate
// bytes per second. Best-effort: zero on any failure.
func (p *NetworkProbe) sampleThroughput(ctx context.Context, adapter platform.Adapter) (download, upload float64) {
	first, err := adapter.NetCounters(ctx)
	if err != nil {
		return 0, 0
	}

	window := p.SampleWindow
	if window <= 0 {
		window = netSampleWindow
	}
	select {
	case <-ctx.Done():
		return 0, 0
	case <-time.After(window):
	}

	second, err := adapter.NetCounters(ctx)
	if err != nil {
		return 0, 0
	}

	seconds := window.Seconds()
	if second.BytesRecv >= first.BytesRecv {
		download = float64(second.BytesRecv-first.BytesRecv) / seconds
	}
	if second.BytesSent >= first.BytesSent {
		upload = float64(second.BytesSent-first.BytesSent) / seconds
	}
	return download, upload
}

// anyResolves reports whether at least one test hostname resolves.
func (p *NetworkProbe) anyResolves(ctx context.Context) bool {
	for _, host := range dnsTestHosts {
		if p.lookup(ctx, host) == nil {
			return true
		}
	}
	return false
}

// anyConnects reports whether at least one test endpoint accepts TCP.
func (p *NetworkProbe) anyConnects(ctx context.Context) bool {
	for _, endpoint := range tcpTestEndpoints {
		if p.dial(ctx, endpoint) == nil {
			return true
		}
	}
	return false
}

// externalInterfaces filters out loopback interfaces.
func externalInterfaces(ifaces []platform.InterfaceFacts) []platform.InterfaceFacts {
	var out []platform.InterfaceFacts
	for _, iface := range ifaces {
		if strings.HasPrefix(iface.Name, "lo") && (iface.Name == "lo" || strings.HasPrefix(iface.Name, "lo0")) {
			continue
		}
		out = append(out, iface)
	}
	return out
}

// qualityLabel maps download throughput to the connection quality label.
func qualityLabel(downloadBps float64) string {
	switch {
	case downloadBps > speedExcellent:
		return "excelente"
	case downloadBps > speedGood:
		return "boa"
	case downloadBps > speedAverage:
		return "regular"
	case downloadBps > 0:
		return "ruim"
	default:
		return "inativa"
	}
}

// dialTCP attempts a TCP connection with a bounded timeout.
func dialTCP(ctx context.Context, addr string) error {
	dialer := net.Dialer{Timeout: netDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return conn.Close()
}

// lookupHost resolves a hostname with the default resolver.
func lookupHost(ctx context.Context, host string) error {
	_, err := net.DefaultResolver.LookupHost(ctx, host)
	return err
}

// pingHost sends a single ICMP echo via the system ping binary.
// Best-effort: raw sockets need privileges Go cannot assume.
func pingHost(ctx context.Context, host string) error {
	args := []string{"-c", "1", "-W", "1", host}
	if runtime.GOOS == "windows" {
		args = []string{"-n", "1", "-w", "1000", host}
	}
	return exec.CommandContext(ctx, "ping", args...).Run()
}
