package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/duochat/internal/config"
	"github.com/danmuck/duochat/internal/console"
	"github.com/danmuck/duochat/internal/logging"
	"github.com/danmuck/duochat/internal/observability"
	"github.com/danmuck/duochat/internal/protocol/frame"
	"github.com/danmuck/duochat/internal/protocol/session"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// app carries flag values and the merged configuration between cobra hooks.
type app struct {
	configPath  string
	logLevel    string
	noColor     bool
	metricsAddr string
	byteOrder   string
	bindHost    string

	cfg config.Config

	// Console streams; nil stdin means the process's standard streams.
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newApp() *app {
	return &app{cfg: config.DefaultConfig()}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "duochat",
		Short: "Two-peer, turn-taking chat over TCP",
		Long: `duochat connects exactly two peers over TCP. One peer listens (serve), the other
connects (connect). After exchanging display names the peers take strict turns:
the connecting peer speaks first and each side waits for a reply before it may
send again.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a duochat toml config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: trace|debug|info|warn|error|off")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored console output")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address (e.g. 127.0.0.1:9464)")
	flags.StringVar(&a.byteOrder, "byte-order", "", "frame header byte order: little|big|native")

	root.AddCommand(a.serveCmd(), a.connectCmd(), a.configCmd(), versionCmd())
	return root
}

// setup merges file config and flags, then configures logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if cmd.Flags().Changed("log-level") {
		a.cfg.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("no-color") {
		a.cfg.NoColor = a.noColor
	}
	if cmd.Flags().Changed("metrics-addr") {
		a.cfg.MetricsAddr = a.metricsAddr
	}
	if cmd.Flags().Changed("byte-order") {
		a.cfg.ByteOrder = a.byteOrder
	}
	if cmd.Flags().Changed("bind") {
		a.cfg.BindHost = a.bindHost
	}

	logging.ConfigureRuntime()
	// DUOCHAT_LOG_LEVEL wins unless a flag or config file names a level.
	explicit := cmd.Flags().Changed("log-level") || a.configPath != ""
	if explicit && a.cfg.LogLevel != "" && !logging.SetLevel(a.cfg.LogLevel) {
		return fmt.Errorf("unknown log level %q", a.cfg.LogLevel)
	}
	return nil
}

func (a *app) colorEnabled() bool {
	return !a.cfg.NoColor && isatty.IsTerminal(os.Stderr.Fd())
}

func (a *app) sessionConfig() (session.Config, error) {
	order, err := frame.ParseByteOrder(a.cfg.ByteOrder)
	if err != nil {
		return session.Config{}, err
	}
	cfg := session.DefaultConfig()
	cfg.Codec.Order = order
	return cfg, nil
}

// runSession wires signal handling and the optional metrics listener around
// one role's session.
func (a *app) runSession(cmd *cobra.Command, run func(ctx context.Context, con *console.Console) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.MetricsAddr != "" {
		m, err := observability.StartMetrics(ctx, a.cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("start metrics: %w", err)
		}
		defer m.Close()
		logging.Infof("duochat metrics addr=%q", m.Addr())
	}
	return run(ctx, a.console())
}

func (a *app) console() *console.Console {
	if a.stdin == nil {
		return console.Stdio(a.cfg.NoColor)
	}
	return console.New(a.stdin, a.stdout, a.errOut(), false)
}

func (a *app) errOut() io.Writer {
	if a.stderr == nil {
		return os.Stderr
	}
	return a.stderr
}
