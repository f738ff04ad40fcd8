package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/plinora/linkcheck/internal/checker"
	"github.com/plinora/linkcheck/internal/config"
	"github.com/plinora/linkcheck/internal/dataset"
	"github.com/plinora/linkcheck/internal/logging"
	"github.com/plinora/linkcheck/internal/metrics"
	"github.com/plinora/linkcheck/internal/progress"
	"github.com/plinora/linkcheck/internal/progress/sinks"
	"github.com/plinora/linkcheck/internal/ratelimit"
	"github.com/plinora/linkcheck/internal/report"
	"github.com/plinora/linkcheck/internal/runner"
)

// newCheckCmd creates and configures the 'check' subcommand, which
// runs link validation over the configured dataset.
func newCheckCmd() *cobra.Command {
	var (
		datasetPath string
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Runs link validation over the configured dataset",
		Long: `Loads the dataset, builds the canonical URL for every record, and
probes each one. Progress goes to stderr; a summary line goes to
stdout on success, and the invalid links are enumerated on failure.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, datasetPath, metricsAddr)
		},
	}
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "dataset file (overrides dataset.path)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
	return cmd
}

func runCheck(cmd *cobra.Command, datasetPath, metricsAddr string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if datasetPath != "" {
		cfg.Dataset.Path = datasetPath
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	if cfg.Dataset.Path == "" {
		return errors.New("dataset path is required (set --dataset or dataset.path)")
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	records, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	metrics.Init()
	if cfg.Metrics.Addr != "" {
		srv, err := metrics.Serve(cfg.Metrics.Addr, logger)
		if err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		defer func() { _ = srv.Close() }()
	}

	hub := progress.NewHub(logger,
		sinks.NewTerminal(cmd.ErrOrStderr()),
		sinks.NewLogSink(logger),
		sinks.NewPrometheusSink(),
	)
	defer hub.Close(context.Background())

	engine := buildEngine(cfg, hub, logger)
	summary, err := engine.Run(cmd.Context(), records)
	if err != nil {
		return fmt.Errorf("run checks: %w", err)
	}

	if summary.Failed() {
		report.WriteFailure(cmd.ErrOrStderr(), summary)
		return fmt.Errorf("%d of %d links invalid", len(summary.Invalid), summary.Total)
	}
	report.WriteSuccess(cmd.OutOrStdout(), summary)
	return nil
}

func buildEngine(cfg config.Config, hub *progress.Hub, logger *zap.Logger) *runner.Engine {
	prober := checker.NewHTTPProber(cfg.Checker.UserAgent, cfg.Checker.RequestTimeout(), logger)
	resolver := checker.NewResolver(prober, cfg.Checker.MaxRedirects, logger)
	gate := ratelimit.NewStartGate(cfg.Checker.MinStartInterval(), cfg.Checker.StartJitter())

	return runner.New(
		runner.Config{
			BaseURL:     cfg.Checker.BaseURL,
			Concurrency: cfg.Checker.Concurrency,
			BatchSize:   cfg.Checker.BatchSize,
			BatchPause:  cfg.Checker.BatchPause(),
		},
		resolver,
		gate,
		hub,
		nil,
		logger,
	)
}
