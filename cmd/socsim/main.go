package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alex-ilgayev/socsim/pkg/bus"
	"github.com/alex-ilgayev/socsim/pkg/eventlogger"
	"github.com/alex-ilgayev/socsim/pkg/narrative"
	"github.com/alex-ilgayev/socsim/pkg/output"
	"github.com/alex-ilgayev/socsim/pkg/simulation"
	"github.com/alex-ilgayev/socsim/pkg/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "socsim",
		Short: "Simulated security operations center",
		Long: `socsim runs a simulated SOC dashboard: a synthetic threat alert feed, a rolling
attacks/mitigated telemetry series, and AI generated threat intelligence narratives
with a local fallback feed when the AI provider is unavailable.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.Date),
		RunE:         run,
		SilenceUsage: true,
	}

	// Shared by every subcommand
	pf := rootCmd.PersistentFlags()
	pf.String("lang", "en", "Display and narrative language (en, es)")
	pf.BoolP("verbose", "v", false, "Enable verbose logging (debug level)")
	pf.StringP("log-level", "l", "info", "Set log level (trace, debug, info, warn, error, fatal, panic)")
	pf.String("config", "", "Optional YAML config file")
	pf.String("api-key", "", "Gemini API key (also SOCSIM_API_KEY, GEMINI_API_KEY, API_KEY)")
	pf.String("model", "", "Model used for threat narratives")
	pf.String("advisor-model", "", "Model used by the security advisor")
	pf.String("base-url", "", "Override the Gemini API endpoint")

	f := rootCmd.Flags()
	f.StringP("output", "o", "", "Output file (JSONL format will be written to file)")
	f.Bool("tui", false, "Enable TUI (Terminal UI) mode")
	f.Bool("metrics", false, "Export session counters to stderr")
	f.Bool("telemetry", false, "Print telemetry samples (console mode only)")
	f.Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
	f.Int64("seed", 0, "Random seed for a reproducible session (0 picks one)")
	f.Duration("fetch-interval", narrative.DefaultServiceConfig().MinFetchInterval, "Minimum time between automatic narrative fetches")

	rootCmd.AddCommand(newIntelCmd(), newAdviseCmd())
	return rootCmd
}

// setupLogging applies the log level. In TUI mode only errors are logged
// to keep the screen intact.
func setupLogging(cfg appConfig) error {
	logLevel := cfg.LogLevel
	// Handle verbose flag as shortcut for debug level
	if cfg.Verbose {
		logLevel = "debug"
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", logLevel, err)
	}

	if cfg.TUI && level > logrus.ErrorLevel {
		level = logrus.ErrorLevel
	}

	logrus.SetLevel(level)
	return nil
}

// newNarrativeService builds the narrative service. Without an API key
// every narrative comes from the local feed. A non-nil rng also picks the
// local feed narratives.
func newNarrativeService(ctx context.Context, cfg appConfig, rng simulation.Rand) (*narrative.Service, error) {
	var opts []narrative.ServiceOption
	if rng != nil {
		opts = append(opts, narrative.WithPicker(rng))
	}

	if cfg.Gemini.APIKey == "" {
		logrus.Info("No API key configured, narratives will come from the local feed")
		return narrative.NewService(nil, cfg.Service, opts...), nil
	}

	client, err := narrative.NewGeminiClient(ctx, cfg.Gemini)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	logrus.WithField("model", cfg.Gemini.Model).Debug("Gemini client ready")

	opts = append(opts, narrative.WithAdvisor(client))
	return narrative.NewService(client, cfg.Service, opts...), nil
}

// commandConfig resolves flags, environment and config file for cmd and
// sets up logging.
func commandConfig(cmd *cobra.Command) (appConfig, error) {
	v, err := newViper(cmd)
	if err != nil {
		return appConfig{}, err
	}
	cfg, err := loadConfig(v)
	if err != nil {
		return appConfig{}, err
	}
	if err := setupLogging(cfg); err != nil {
		return appConfig{}, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	// Set up signal handling
	ctx, cancel := signalContext()
	defer cancel()

	if cfg.Duration > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, cfg.Duration)
		defer timeoutCancel()
	}

	// A publish/subscribe event bus for inter-component communication
	eventBus := bus.New()
	defer eventBus.Close()

	eventLogger, err := eventlogger.New(eventBus)
	if err != nil {
		return fmt.Errorf("failed to create event logger: %w", err)
	}
	defer eventLogger.Close()

	// One seeded source drives the generators and the local feed picks
	rng := cfg.seededRand()

	service, err := newNarrativeService(ctx, cfg, rng)
	if err != nil {
		return err
	}

	var opts []simulation.Option
	if rng != nil {
		opts = append(opts, simulation.WithRand(rng))
	}
	if cfg.Metrics {
		metrics, shutdown, err := setupMetrics(os.Stderr)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			shutdown(shutdownCtx)
		}()
		opts = append(opts, simulation.WithMetrics(metrics))
	}

	session, err := simulation.NewSession(cfg.simulationConfig(), eventBus, service, opts...)
	if err != nil {
		return err
	}
	defer session.Stop()

	// Set up display based on mode
	var tuiDisplay *output.TUIDisplay
	var handlers []output.OutputHandler

	if cfg.TUI {
		tuiDisplay = output.NewTUIDisplay(session)
	} else {
		consoleDisplay, err := output.NewConsoleDisplay(stdout, cfg.Lang, cfg.Telemetry, eventBus)
		if err != nil {
			return fmt.Errorf("failed to create console display: %w", err)
		}
		defer consoleDisplay.Close()
		handlers = append(handlers, consoleDisplay)
	}

	// Set up file output if specified
	if cfg.Output != "" {
		fileDisplay, closeFile, err := openJSONLOutput(cfg.Output, eventBus)
		if err != nil {
			return err
		}
		defer closeFile()
		handlers = append(handlers, fileDisplay)
	}

	for _, h := range handlers {
		h.PrintHeader()
	}

	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("failed to start simulation: %w", err)
	}

	for _, h := range handlers {
		h.PrintInfo("Monitoring simulated network... Press Ctrl+C to stop")
		h.PrintInfo("")
	}

	// Run TUI or wait for context cancellation
	tuiDone := make(chan struct{})
	if tuiDisplay != nil {
		// Run TUI in a goroutine, cancel context when TUI exits
		go func() {
			defer close(tuiDone)
			if err := tuiDisplay.Run(); err != nil {
				logrus.WithError(err).Error("TUI error")
			}
			cancel()
		}()
	}

	<-ctx.Done()

	if tuiDisplay != nil {
		// Restore the terminal before returning
		tuiDisplay.Quit()
		<-tuiDone
	}
	session.Stop()
	eventBus.Wait()

	stats := session.Snapshot().Stats
	for _, h := range handlers {
		h.PrintStats(stats)
	}
	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// openJSONLOutput writes every bus event to path as JSON lines.
func openJSONLOutput(path string, eventBus bus.EventBus) (*output.JSONLDisplay, func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file '%s': %w", path, err)
	}

	display, err := output.NewJSONLDisplay(file, eventBus)
	if err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("failed to create file display: %w", err)
	}

	return display, func() {
		display.Close()
		if err := file.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close output file")
		}
	}, nil
}

// stdout is replaced in tests.
var stdout io.Writer = os.Stdout
