// Package main is the entry point for vigia — Diagnóstico de saúde do sistema.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/ancients-collective/vigia/internal/config"
	"github.com/ancients-collective/vigia/internal/engine"
	"github.com/ancients-collective/vigia/internal/output"
	"github.com/ancients-collective/vigia/internal/platform"
	"github.com/ancients-collective/vigia/internal/service"
	"github.com/ancients-collective/vigia/internal/store"
)

// version is set at build time via -ldflags. The default is a dev fallback
// for plain `go install` or `go run` usage.
var version = "1.0.0"

// Config holds all parsed CLI flag values.
type Config struct {
	ConfigFile string
	UserID     string
	Storage    string
	Driver     string
	Format     string
	NoColor    bool
	OutputFile string
	Quiet      bool
	Debug      bool
	TestMode   bool

	ProbeTimeout int
	RunTimeout   int

	GetID    string
	History  int
	All      bool
	AnyUser  bool
	Summary  bool
	Identity bool
	Metrics  bool
	Version  bool
}

// parseFlags parses command-line arguments into a Config using a dedicated
// FlagSet, keeping the global flag.CommandLine clean for testability.
func parseFlags(args []string) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("vigia", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.ConfigFile, "config", "", "Caminho do arquivo de configuração YAML")
	fs.StringVar(&cfg.ConfigFile, "c", "", "Caminho do arquivo de configuração (abreviação)")
	fs.StringVar(&cfg.UserID, "user", "", "Identificador do usuário (padrão: usuário do sistema)")
	fs.StringVar(&cfg.UserID, "u", "", "Identificador do usuário (abreviação)")
	fs.StringVar(&cfg.Storage, "storage", "", "Diretório (file) ou arquivo (sqlite) de armazenamento")
	fs.StringVar(&cfg.Driver, "driver", "", "Backend de armazenamento: file, sqlite")
	fs.StringVar(&cfg.Format, "format", "text", "Formato de saída: text, json, jsonl")
	fs.StringVar(&cfg.Format, "f", "text", "Formato de saída (abreviação)")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Desativa cores na saída")
	fs.StringVar(&cfg.OutputFile, "output", "", "Grava a saída em arquivo (padrão: stdout)")
	fs.StringVar(&cfg.OutputFile, "o", "", "Grava a saída em arquivo (abreviação)")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Sem saída, apenas código de retorno (0 = ok, 1 = problemas, 2 = erro)")
	fs.BoolVar(&cfg.Quiet, "q", false, "Sem saída (abreviação)")
	fs.BoolVar(&cfg.Debug, "debug", false, "Mensagens de depuração do adaptador de plataforma")
	fs.BoolVar(&cfg.TestMode, "test-mode", false, "Relatório simulado, sem ler o sistema nem persistir")
	fs.IntVar(&cfg.ProbeTimeout, "probe-timeout", 0, "Timeout por verificação, em segundos")
	fs.IntVar(&cfg.RunTimeout, "run-timeout", 0, "Timeout do diagnóstico completo, em segundos")
	fs.StringVar(&cfg.GetID, "get", "", "Exibe um diagnóstico persistido pelo id")
	fs.IntVar(&cfg.History, "history", -1, "Lista o histórico (0 = completo, N = últimos N)")
	fs.BoolVar(&cfg.All, "all", false, "Lista diagnósticos de todos os usuários")
	fs.BoolVar(&cfg.AnyUser, "any-user", false, "Ignora o filtro de usuário em --get e --metrics")
	fs.BoolVar(&cfg.Summary, "summary", false, "Exibe o resumo rápido do sistema")
	fs.BoolVar(&cfg.Identity, "identity", false, "Exibe a identidade de hardware da máquina")
	fs.BoolVar(&cfg.Metrics, "metrics", false, "Exibe métricas agregadas dos diagnósticos")
	fs.BoolVar(&cfg.Version, "version", false, "Exibe a versão e sai")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "         _       _\n")
		fmt.Fprintf(os.Stderr, "   __   _(_) __ _(_) __ _\n")
		fmt.Fprintf(os.Stderr, "   \\ \\ / / |/ _` | |/ _` |\n")
		fmt.Fprintf(os.Stderr, "    \\ V /| | (_| | | (_| |\n")
		fmt.Fprintf(os.Stderr, "     \\_/ |_|\\__, |_|\\__,_|\n")
		fmt.Fprintf(os.Stderr, "            |___/\n")
		fmt.Fprintf(os.Stderr, "   Diagnóstico de saúde do sistema\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "   Uso: vigia [opções]\n\n")
		fmt.Fprintf(os.Stderr, "   Opções:\n")
		fmt.Fprintf(os.Stderr, "     -c,  --config <arquivo>     Arquivo de configuração YAML\n")
		fmt.Fprintf(os.Stderr, "     -u,  --user <id>            Identificador do usuário\n")
		fmt.Fprintf(os.Stderr, "          --storage <caminho>    Diretório ou arquivo de armazenamento\n")
		fmt.Fprintf(os.Stderr, "          --driver <tipo>        Backend: file, sqlite (padrão: file)\n")
		fmt.Fprintf(os.Stderr, "     -f,  --format <tipo>        Formato: text, json, jsonl (padrão: text)\n")
		fmt.Fprintf(os.Stderr, "          --no-color             Desativa cores\n")
		fmt.Fprintf(os.Stderr, "     -o,  --output <arquivo>     Grava a saída em arquivo\n")
		fmt.Fprintf(os.Stderr, "     -q,  --quiet                Apenas código de retorno (0/1/2)\n")
		fmt.Fprintf(os.Stderr, "          --probe-timeout <s>    Timeout por verificação\n")
		fmt.Fprintf(os.Stderr, "          --run-timeout <s>      Timeout do diagnóstico completo\n")
		fmt.Fprintf(os.Stderr, "          --test-mode            Relatório simulado, sem persistência\n")
		fmt.Fprintf(os.Stderr, "          --get <id>             Exibe um diagnóstico pelo id\n")
		fmt.Fprintf(os.Stderr, "          --history <n>          Histórico do usuário (0 = completo)\n")
		fmt.Fprintf(os.Stderr, "          --all                  Diagnósticos de todos os usuários\n")
		fmt.Fprintf(os.Stderr, "          --any-user             Ignora o filtro de usuário (--get, --metrics)\n")
		fmt.Fprintf(os.Stderr, "          --summary              Resumo rápido do sistema\n")
		fmt.Fprintf(os.Stderr, "          --identity             Identidade de hardware\n")
		fmt.Fprintf(os.Stderr, "          --metrics              Métricas agregadas\n")
		fmt.Fprintf(os.Stderr, "          --debug                Mensagens de depuração\n")
		fmt.Fprintf(os.Stderr, "          --version              Versão\n")
		fmt.Fprintf(os.Stderr, "\n   Exemplos:\n")
		fmt.Fprintf(os.Stderr, "     vigia                             Executa o diagnóstico completo\n")
		fmt.Fprintf(os.Stderr, "     vigia --format json -o rel.json   Relatório em JSON para arquivo\n")
		fmt.Fprintf(os.Stderr, "     vigia --get diag-ab12cd34         Mostra um relatório persistido\n")
		fmt.Fprintf(os.Stderr, "     vigia --history 10                Últimos 10 diagnósticos\n")
		fmt.Fprintf(os.Stderr, "     vigia --summary                   Snapshot rápido do sistema\n")
		fmt.Fprintf(os.Stderr, "     vigia --driver sqlite             Persistência em SQLite\n")
		fmt.Fprintf(os.Stderr, "     vigia -q && echo ok               Scripts com código de retorno\n")
		fmt.Fprintf(os.Stderr, "\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	os.Exit(run(cfg))
}

// run executes the selected operation and returns an exit code.
func run(cfg *Config) int {
	if cfg.Version {
		fmt.Fprintf(os.Stdout, "vigia v%s\n", version)
		return 0
	}

	if code := validateFlags(cfg); code >= 0 {
		return code
	}

	isDumb := output.IsDumbTerm()
	if cfg.NoColor || cfg.Format != "text" || cfg.OutputFile != "" || isDumb {
		color.NoColor = true
	}
	platform.DebugMode = cfg.Debug

	runtime, err := loadRuntimeConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  ✗ %v\n", err)
		return 2
	}

	repo, err := openRepository(runtime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  ✗ %v\n", err)
		return 2
	}
	defer repo.Close()

	adapter := platform.NewSystemAdapter()
	coordinator := engine.NewCoordinator(adapter)
	coordinator.ProbeTimeout = runtime.ProbeTimeout()
	coordinator.RunTimeout = runtime.CoordinatorTimeout()
	svc := service.New(adapter, repo, coordinator, runtime.TestMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	formatter := newFormatter(cfg, isDumb)
	return dispatch(ctx, cfg, svc, formatter)
}

// dispatch routes to the selected operation. The default is a full
// diagnostic run.
func dispatch(ctx context.Context, cfg *Config, svc *service.Service, formatter output.Formatter) int {
	userID := resolveUserID(cfg.UserID)

	// An empty user id skips the ownership filter on reads.
	queryUser := userID
	if cfg.AnyUser {
		queryUser = ""
	}

	switch {
	case cfg.GetID != "":
		report, err := svc.GetDiagnosticByID(ctx, queryUser, cfg.GetID)
		if err != nil {
			return reportError(cfg, err)
		}
		if cfg.Quiet {
			return exitCodeForProblems(len(report.Problems))
		}
		return writeOut(cfg, func(w *os.File) error { return formatter.WriteReport(w, report) })

	case cfg.History >= 0:
		summaries, err := svc.GetDiagnosticHistory(ctx, userID, cfg.History)
		if err != nil {
			return reportError(cfg, err)
		}
		if cfg.Quiet {
			return 0
		}
		return writeOut(cfg, func(w *os.File) error { return formatter.WriteSummaries(w, summaries) })

	case cfg.All:
		summaries, err := svc.GetAllDiagnostics(ctx)
		if err != nil {
			return reportError(cfg, err)
		}
		if cfg.Quiet {
			return 0
		}
		return writeOut(cfg, func(w *os.File) error { return formatter.WriteSummaries(w, summaries) })

	case cfg.Summary:
		summary, err := svc.GetSystemSummary(ctx)
		if err != nil {
			return reportError(cfg, err)
		}
		if cfg.Quiet {
			return 0
		}
		return writeOut(cfg, func(w *os.File) error { return formatter.WriteSystem(w, summary) })

	case cfg.Identity:
		identity, err := svc.GetComputerIdentity(ctx)
		if err != nil {
			return reportError(cfg, err)
		}
		if cfg.Quiet {
			return 0
		}
		return writeOut(cfg, func(w *os.File) error { return formatter.WriteIdentity(w, identity) })

	case cfg.Metrics:
		metrics, err := svc.GetSystemMetrics(ctx, queryUser)
		if err != nil {
			return reportError(cfg, err)
		}
		if cfg.Quiet {
			return 0
		}
		return writeOut(cfg, func(w *os.File) error { return formatter.WriteMetrics(w, metrics) })

	default:
		showProgress := cfg.Format == "text" && !cfg.Quiet && cfg.OutputFile == ""
		if showProgress {
			fmt.Fprintf(os.Stderr, "\n  Executando diagnóstico...\n")
		}
		report, err := svc.RunDiagnostic(ctx, userID)
		if err != nil {
			return reportError(cfg, err)
		}
		if cfg.Quiet {
			return exitCodeForProblems(len(report.Problems))
		}
		if code := writeOut(cfg, func(w *os.File) error { return formatter.WriteReport(w, report) }); code != 0 {
			return code
		}
		if cfg.OutputFile != "" {
			fmt.Fprintf(os.Stderr, "  ✓ Diagnóstico concluído: pontuação %d/100 — gravado em %s\n",
				report.Score, cfg.OutputFile)
		}
		return exitCodeForProblems(len(report.Problems))
	}
}

// validateFlags checks flag value domains and mutually exclusive modes.
// Returns -1 if valid, or an exit code (2) if invalid.
func validateFlags(cfg *Config) int {
	switch cfg.Format {
	case "text", "json", "jsonl":
	default:
		fmt.Fprintf(os.Stderr, "  ✗ Valor inválido para --format %q (use text, json ou jsonl)\n", cfg.Format)
		return 2
	}
	switch cfg.Driver {
	case "", config.DriverFile, config.DriverSQLite:
	default:
		fmt.Fprintf(os.Stderr, "  ✗ Valor inválido para --driver %q (use file ou sqlite)\n", cfg.Driver)
		return 2
	}
	if cfg.ProbeTimeout < 0 || cfg.RunTimeout < 0 {
		fmt.Fprintf(os.Stderr, "  ✗ Timeouts devem ser positivos\n")
		return 2
	}

	modes := 0
	if cfg.GetID != "" {
		modes++
	}
	if cfg.History >= 0 {
		modes++
	}
	for _, b := range []bool{cfg.All, cfg.Summary, cfg.Identity, cfg.Metrics} {
		if b {
			modes++
		}
	}
	if modes > 1 {
		fmt.Fprintf(os.Stderr, "  ✗ Use apenas uma operação por vez (--get, --history, --all, --summary, --identity, --metrics)\n")
		return 2
	}
	return -1
}

// loadRuntimeConfig merges the config file, environment, and flag
// overrides.
func loadRuntimeConfig(cfg *Config) (*config.Config, error) {
	runtime, err := config.Load(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}

	if cfg.Storage != "" {
		runtime.StoragePath = cfg.Storage
	}
	if cfg.Driver != "" {
		runtime.StorageDriver = cfg.Driver
	}
	if cfg.ProbeTimeout > 0 {
		runtime.ProbeTimeoutSeconds = cfg.ProbeTimeout
	}
	if cfg.RunTimeout > 0 {
		runtime.CoordinatorTimeoutSeconds = cfg.RunTimeout
	}
	if cfg.TestMode {
		runtime.TestMode = true
	}

	if err := runtime.Validate(); err != nil {
		return nil, err
	}
	return runtime, nil
}

func openRepository(runtime *config.Config) (store.Repository, error) {
	switch runtime.StorageDriver {
	case config.DriverSQLite:
		return store.NewSQLiteStore(runtime.StoragePath)
	default:
		return store.NewFileStore(runtime.StoragePath)
	}
}

func newFormatter(cfg *Config, isDumb bool) output.Formatter {
	switch cfg.Format {
	case "json":
		return &output.JSONFormatter{}
	case "jsonl":
		return &output.JSONLFormatter{}
	default:
		termWidth := 0
		if cfg.OutputFile == "" {
			if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
				if tw, _, err := term.GetSize(fd); err == nil && tw > 0 {
					termWidth = tw
				}
			}
		}
		return &output.TextFormatter{
			Width: termWidth,
			Dumb:  isDumb,
		}
	}
}

// resolveUserID falls back to the OS user when no --user was given.
func resolveUserID(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}

// writeOut runs the formatter against stdout or --output.
func writeOut(cfg *Config, write func(w *os.File) error) int {
	w := os.Stdout
	if cfg.OutputFile != "" {
		if err := validateOutputPath(cfg.OutputFile); err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ Caminho de saída inseguro: %v\n", err)
			return 2
		}
		f, err := os.Create(cfg.OutputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ Falha ao criar arquivo de saída: %v\n", err)
			return 2
		}
		defer f.Close()
		w = f
	}

	if err := write(w); err != nil {
		fmt.Fprintf(os.Stderr, "  ✗ Falha ao gravar a saída: %v\n", err)
		return 2
	}
	return 0
}

// reportError prints a classified error and maps it to an exit code.
func reportError(cfg *Config, err error) int {
	if !cfg.Quiet {
		fmt.Fprintf(os.Stderr, "  ✗ %v\n", err)
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 2
}

// exitCodeForProblems maps a problem count onto the vigia exit code:
// 0 = clean, 1 = problems found.
func exitCodeForProblems(problems int) int {
	if problems > 0 {
		return 1
	}
	return 0
}

// unsafeOutputPrefixes are path prefixes where writing output files is
// rejected. Prevents accidental overwrite of system files when running
// as root.
var unsafeOutputPrefixes = []string{"/etc/", "/proc/", "/sys/", "/dev/", "/boot/", "/sbin/", "/bin/", "/usr/"}

// validateOutputPath checks that the output file path is safe to write to.
func validateOutputPath(path string) error {
	cleaned := filepath.Clean(path)
	if filepath.IsAbs(cleaned) {
		for _, prefix := range unsafeOutputPrefixes {
			if strings.HasPrefix(cleaned, prefix) {
				return fmt.Errorf("refusing to write to system path %q", cleaned)
			}
		}
	}
	return nil
}
