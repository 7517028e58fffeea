package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/ancients-collective/vigia/internal/types"
)

const (
	colMargin  = 4   // left margin (spaces) for component/problem lines
	badgeWidth = 8   // visible width of a padded badge, e.g. "[CRIT]  "
	labelWidth = 12  // fixed label field for detail lines
	colDetail  = 16  // column where detail-block lines start
	colValue   = 28  // column where label values start (colDetail + labelWidth)
	maxLine    = 110 // hard wrap cap, even on ultra-wide terminals
	ruleWidth  = 64  // width of horizontal divider rules
)

// TextFormatter writes a colored, human-readable diagnostic report.
type TextFormatter struct {
	Quiet bool // suppress per-component detail, show verdict only
	Width int  // terminal width for text wrapping; 0 = unknown
	Dumb  bool // TERM=dumb — use single-char ASCII fallback icons
}

// Color helpers — each returns a sprint function.
var (
	cBold   = color.New(color.Bold).SprintFunc()
	cGreen  = color.New(color.FgGreen).SprintFunc()
	cRed    = color.New(color.FgRed).SprintFunc()
	cYellow = color.New(color.FgYellow).SprintFunc()
	cCyan   = color.New(color.FgCyan).SprintFunc()
	cDim    = color.New(color.Faint).SprintFunc()

	cRedBold    = color.New(color.FgRed, color.Bold).SprintFunc()
	cYellowBold = color.New(color.FgYellow, color.Bold).SprintFunc()
	cGreenBold  = color.New(color.FgGreen, color.Bold).SprintFunc()
)

// IsDumbTerm returns true when the terminal doesn't support Unicode.
func IsDumbTerm() bool {
	t := os.Getenv("TERM")
	return t == "dumb" || t == ""
}

func (f *TextFormatter) wrapWidth() int {
	if f.Width > 0 && f.Width < maxLine {
		return f.Width
	}
	return maxLine
}

// WriteReport renders the full text report.
func (f *TextFormatter) WriteReport(w io.Writer, report *types.DiagnosticReport) error {
	f.writeHeader(w, report)
	if !f.Quiet {
		f.writeComponents(w, report)
	}
	f.writeScore(w, report)
	if !f.Quiet {
		f.writeProblems(w, report)
		f.writeRecommendations(w, report)
	}
	fmt.Fprintln(w)
	return nil
}

func (f *TextFormatter) writeHeader(w io.Writer, r *types.DiagnosticReport) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "        _       _\n")
	fmt.Fprintf(w, "  __   _(_) __ _(_) __ _\n")
	fmt.Fprintf(w, "  \\ \\ / / |/ _` | |/ _` |\n")
	fmt.Fprintf(w, "   \\ V /| | (_| | | (_| |\n")
	fmt.Fprintf(w, "    \\_/ |_|\\__, |_|\\__,_|\n")
	fmt.Fprintf(w, "           |___/\n")
	fmt.Fprintf(w, "  %s\n", cDim("Diagnóstico de saúde do sistema"))
	fmt.Fprintf(w, "  %s %s\n", cDim("Relatório:"), r.ID)
	fmt.Fprintf(w, "  %s %s\n", cDim("Executado:"), r.Timestamp.Format(time.RFC3339))
	fmt.Fprintln(w)
}

func (f *TextFormatter) writeComponents(w io.Writer, r *types.DiagnosticReport) {
	fmt.Fprintf(w, "  %s\n", cBold("▸ Componentes"))
	fmt.Fprintln(w)

	for _, name := range types.ComponentNames {
		comp, ok := r.Components[name]
		if !ok {
			continue
		}
		f.writeComponentLine(w, name, comp)
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) writeComponentLine(w io.Writer, name string, comp types.ComponentResult) {
	icon := f.healthIcon(comp)
	health := fmt.Sprintf("(%d/100)", comp.HealthStatus)

	detail := ""
	switch {
	case comp.Error != "":
		detail = cRed("falhou: " + comp.Error)
	case len(comp.Issues) == 1:
		detail = cYellow("1 problema")
	case len(comp.Issues) > 1:
		detail = cYellow(fmt.Sprintf("%d problemas", len(comp.Issues)))
	default:
		detail = cDim("ok")
	}

	fmt.Fprintf(w, "%s%s %-14s %s  %s\n",
		colPad(colMargin), icon, name, cDim(health), detail)
}

func (f *TextFormatter) writeScore(w io.Writer, r *types.DiagnosticReport) {
	rule := cDim(strings.Repeat("─", ruleWidth))
	sprint := statusSprint(r.SystemStatus)

	fmt.Fprintf(w, "  %s\n", rule)
	fmt.Fprintf(w, "  %s  %s  %s\n",
		cBold("Pontuação:"),
		sprint(fmt.Sprintf("%d/100", r.Score)),
		sprint(string(r.SystemStatus)),
	)
	if n := len(r.Problems); n > 0 {
		fmt.Fprintf(w, "  %s %s\n", cRedBold(f.icon("shield")),
			cRedBold(fmt.Sprintf("%d problema(s) encontrado(s)", n)))
	} else {
		fmt.Fprintf(w, "  %s %s\n", cGreenBold(f.icon("pass")),
			cGreenBold("Nenhum problema encontrado"))
	}
	fmt.Fprintf(w, "  %s\n", rule)
}

func (f *TextFormatter) writeProblems(w io.Writer, r *types.DiagnosticReport) {
	if len(r.Problems) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", cRedBold("▸ Problemas"))
	fmt.Fprintln(w)

	for _, p := range sortProblems(r.Problems) {
		fmt.Fprintf(w, "%s%s %s %s\n",
			colPad(colMargin),
			f.severityIcon(p.Severity),
			f.severityBadge(p.Severity),
			cBold(p.Title),
		)
		prefix := colPad(colDetail)
		if p.Description != "" {
			f.writeLabel(w, prefix, "Detalhes:", cDim, p.Description)
		}
		if p.Solution != "" {
			f.writeLabel(w, prefix, "Solução:", cGreen, p.Solution)
		}
		fmt.Fprintln(w)
	}
}

func (f *TextFormatter) writeRecommendations(w io.Writer, r *types.DiagnosticReport) {
	if len(r.Recommendations) == 0 {
		return
	}

	fmt.Fprintf(w, "  %s\n", cBold("▸ Recomendações"))
	fmt.Fprintln(w)
	for _, rec := range r.Recommendations {
		fmt.Fprintf(w, "%s%s %s\n",
			colPad(colMargin), cCyan("›"), f.wrap(rec.Title, colMargin+2, colMargin+2))
	}
	fmt.Fprintln(w)
}

// WriteSummaries renders the history listing, newest first.
func (f *TextFormatter) WriteSummaries(w io.Writer, summaries []types.Summary) error {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", cBold("▸ Histórico"))
	fmt.Fprintln(w)

	if len(summaries) == 0 {
		fmt.Fprintf(w, "%s%s\n", colPad(colMargin), cDim("(nenhum diagnóstico registrado)"))
		fmt.Fprintln(w)
		return nil
	}

	for _, s := range summaries {
		sprint := statusSprint(s.SystemStatus)
		problems := cDim("sem problemas")
		if s.ProblemsCount == 1 {
			problems = cYellow("1 problema")
		} else if s.ProblemsCount > 1 {
			problems = cYellow(fmt.Sprintf("%d problemas", s.ProblemsCount))
		}
		fmt.Fprintf(w, "%s%s  %s  %s %s  %s\n",
			colPad(colMargin),
			s.ID,
			cDim(s.Timestamp.Format("2006-01-02 15:04")),
			sprint(fmt.Sprintf("%3d/100", s.Score)),
			sprint(string(s.SystemStatus)),
			problems,
		)
	}
	fmt.Fprintln(w)
	return nil
}

// WriteMetrics renders the aggregate metrics view.
func (f *TextFormatter) WriteMetrics(w io.Writer, m *types.Metrics) error {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", cBold("▸ Métricas"))
	fmt.Fprintln(w)

	p := colPad(colMargin)
	fmt.Fprintf(w, "%s%s %d\n", p, pad("Relatórios:"), m.TotalReports)
	if m.TotalReports == 0 {
		fmt.Fprintln(w)
		return nil
	}
	fmt.Fprintf(w, "%s%s %.1f\n", p, pad("Média:"), m.AverageScore)
	sprint := statusSprint(m.LastStatus)
	fmt.Fprintf(w, "%s%s %s %s\n", p, pad("Último:"),
		sprint(fmt.Sprintf("%d/100", m.LastScore)), sprint(string(m.LastStatus)))
	fmt.Fprintf(w, "%s%s %s\n", p, pad("Executado:"), m.LastRunAt.Format(time.RFC3339))
	fmt.Fprintf(w, "%s%s %d\n", p, pad("Problemas:"), m.ProblemsTotal)
	fmt.Fprintln(w)
	return nil
}

// WriteSystem renders the cheap system snapshot.
func (f *TextFormatter) WriteSystem(w io.Writer, s *types.SummaryReport) error {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", cBold("▸ Sistema"))
	fmt.Fprintln(w)

	p := colPad(colMargin)
	fmt.Fprintf(w, "%s%s %s\n", p, pad("Hostname:"), s.Hostname)
	osLine := s.OS
	if s.Platform != "" {
		osLine += " (" + s.Platform + ")"
	}
	fmt.Fprintf(w, "%s%s %s\n", p, pad("SO:"), osLine)
	if s.KernelVersion != "" {
		fmt.Fprintf(w, "%s%s %s\n", p, pad("Kernel:"), s.KernelVersion)
	}
	fmt.Fprintf(w, "%s%s %s\n", p, pad("Arquitetura:"), s.Arch)
	uptime := time.Duration(s.UptimeSeconds) * time.Second
	fmt.Fprintf(w, "%s%s %s\n", p, pad("Uptime:"), uptime.String())
	fmt.Fprintf(w, "%s%s %.1f%%\n", p, pad("CPU:"), s.CPUUsagePercent)
	fmt.Fprintf(w, "%s%s %.1f%%\n", p, pad("Memória:"), s.MemoryUsagePercent)
	fmt.Fprintf(w, "%s%s %.1f%%\n", p, pad("Disco:"), s.DiskUsagePercent)
	fmt.Fprintln(w)
	return nil
}

// WriteIdentity renders the hardware identity view.
func (f *TextFormatter) WriteIdentity(w io.Writer, id *types.IdentityReport) error {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", cBold("▸ Identidade"))
	fmt.Fprintln(w)

	p := colPad(colMargin)
	fmt.Fprintf(w, "%s%s %s\n", p, pad("Hostname:"), id.Hostname)
	osLine := id.OS
	if id.Platform != "" {
		osLine += fmt.Sprintf(" (%s %s)", id.Platform, id.PlatformVersion)
	}
	fmt.Fprintf(w, "%s%s %s\n", p, pad("SO:"), osLine)
	if id.Virtualization != "" {
		fmt.Fprintf(w, "%s%s %s\n", p, pad("Virtualização:"), id.Virtualization)
	}
	fmt.Fprintf(w, "%s%s %s\n", p, pad("CPU:"),
		fmt.Sprintf("%s (%d núcleos, %d threads)", id.CPU.Brand, id.CPU.PhysicalCores, id.CPU.LogicalCores))
	fmt.Fprintf(w, "%s%s %s\n", p, pad("Memória:"), humanize.IBytes(id.MemoryTotalBytes))
	for _, m := range id.MemoryModules {
		line := humanize.IBytes(m.CapacityBytes)
		if m.SpeedMHz > 0 {
			line += fmt.Sprintf(" @ %d MHz", m.SpeedMHz)
		}
		if m.Manufacturer != "" {
			line += " " + m.Manufacturer
		}
		fmt.Fprintf(w, "%s%s %s\n", p, pad(""), cDim(line))
	}
	for _, d := range id.Disks {
		fmt.Fprintf(w, "%s%s %s\n", p, pad("Disco:"),
			fmt.Sprintf("%s %s (%s)", d.Model, humanize.IBytes(d.SizeBytes), d.MediaType))
	}
	for _, i := range id.Interfaces {
		state := cDim("down")
		if i.IsUp {
			state = cGreen("up")
		}
		fmt.Fprintf(w, "%s%s %s %s %s\n", p, pad("Interface:"), i.Name, state, cDim(i.MAC))
	}
	fmt.Fprintln(w)
	return nil
}

// writeLabel emits one detail line: prefix + colored label (padded to
// labelWidth) + wrapped value.
func (f *TextFormatter) writeLabel(w io.Writer, prefix, label string, colorFn func(a ...interface{}) string, value string) {
	colored := colorFn(pad(label))
	wrapped := f.wrap(value, colValue, colValue)
	fmt.Fprintf(w, "%s%s%s\n", prefix, colored, wrapped)
}

func sortProblems(problems []types.Problem) []types.Problem {
	sorted := make([]types.Problem, len(problems))
	copy(sorted, problems)
	sevOrder := map[types.Severity]int{
		types.SeverityCritical: 0,
		types.SeverityHigh:     1,
		types.SeverityMedium:   2,
		types.SeverityLow:      3,
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sevOrder[sorted[i].Severity] != sevOrder[sorted[j].Severity] {
			return sevOrder[sorted[i].Severity] < sevOrder[sorted[j].Severity]
		}
		return sorted[i].Category < sorted[j].Category
	})
	return sorted
}

func (f *TextFormatter) wrap(text string, startCol, wrapCol int) string {
	w := f.wrapWidth()
	if startCol+len(text) <= w {
		return text
	}

	avail := w - startCol
	if avail < 20 {
		return text
	}

	wrapPad := strings.Repeat(" ", wrapCol)
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var b strings.Builder
	lineLen := 0

	for i, word := range words {
		if i == 0 {
			b.WriteString(word)
			lineLen = len(word)
			continue
		}
		if lineLen+1+len(word) > avail {
			b.WriteByte('\n')
			b.WriteString(wrapPad)
			b.WriteString(word)
			lineLen = len(word)
			avail = w - wrapCol
		} else {
			b.WriteByte(' ')
			b.WriteString(word)
			lineLen += 1 + len(word)
		}
	}

	return b.String()
}

func (f *TextFormatter) icon(name string) string {
	if f.Dumb {
		switch name {
		case "pass":
			return "+"
		case "warn":
			return "!"
		case "fail":
			return "x"
		case "shield":
			return "!"
		default:
			return "?"
		}
	}
	switch name {
	case "pass":
		return "✓"
	case "warn":
		return "⚠"
	case "fail":
		return "✗"
	case "shield":
		return "🛡"
	default:
		return "?"
	}
}

func (f *TextFormatter) healthIcon(comp types.ComponentResult) string {
	switch {
	case comp.Error != "":
		return cRed(f.icon("fail"))
	case comp.HealthStatus >= 80:
		return cGreen(f.icon("pass"))
	case comp.HealthStatus >= 40:
		return cYellow(f.icon("warn"))
	default:
		return cRed(f.icon("fail"))
	}
}

func (f *TextFormatter) severityIcon(sev types.Severity) string {
	switch sev {
	case types.SeverityCritical, types.SeverityHigh:
		return cRed(f.icon("fail"))
	case types.SeverityMedium:
		return cYellow(f.icon("warn"))
	default:
		return cDim(f.icon("warn"))
	}
}

func (f *TextFormatter) severityBadge(sev types.Severity) string {
	raw := severityBadgeRaw(sev)
	padded := fmt.Sprintf("%-*s", badgeWidth, raw)
	switch sev {
	case types.SeverityCritical:
		return cRedBold(padded)
	case types.SeverityHigh:
		return cRed(padded)
	case types.SeverityMedium:
		return cYellow(padded)
	case types.SeverityLow:
		return cGreen(padded)
	default:
		return padded
	}
}

func severityBadgeRaw(sev types.Severity) string {
	switch sev {
	case types.SeverityCritical:
		return "[CRIT]"
	case types.SeverityHigh:
		return "[HIGH]"
	case types.SeverityMedium:
		return "[MED]"
	case types.SeverityLow:
		return "[LOW]"
	default:
		return "[----]"
	}
}

// statusSprint maps a system status onto its display color.
func statusSprint(status types.SystemStatus) func(a ...interface{}) string {
	switch status {
	case types.StatusBom:
		return cGreenBold
	case types.StatusRegular:
		return cYellow
	case types.StatusAtencao:
		return cYellowBold
	case types.StatusCritico:
		return cRedBold
	default:
		return cBold
	}
}

func colPad(n int) string {
	return strings.Repeat(" ", n)
}

func pad(label string) string {
	return fmt.Sprintf("%-*s", labelWidth, label)
}
