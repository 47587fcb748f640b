package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/zgpcy/azure-cost-summary/internal/azure"
	"github.com/zgpcy/azure-cost-summary/internal/collector"
	"github.com/zgpcy/azure-cost-summary/internal/config"
	"github.com/zgpcy/azure-cost-summary/internal/logger"
	"github.com/zgpcy/azure-cost-summary/internal/server"
	"github.com/zgpcy/azure-cost-summary/internal/version"
)

// DefaultShutdownTimeout bounds how long in-flight HTTP requests may drain
const DefaultShutdownTimeout = 30 * time.Second

// options are the command line settings
type options struct {
	configPath  string
	showVersion bool
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("azure-cost-summary", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.configPath, "config", "config.yaml", "Path to configuration file")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version information and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if opts.showVersion {
		fmt.Println(version.String())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "azure-cost-summary: %v\n", err)
		os.Exit(1)
	}
}

// run serves the cost summary until ctx is cancelled or the HTTP server fails
func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewWithOptions(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	log.Info("Azure Cost Summary starting",
		"version", version.Version,
		"config_path", opts.configPath,
		"subscriptions", len(cfg.Subscriptions),
		"refresh_interval_seconds", cfg.RefreshInterval,
		"days_to_query", cfg.DateRange.DaysToQuery,
		"grouping_enabled", cfg.GroupBy.IsEnabled(),
		"others_cutoff", cfg.Report.Cutoff(),
		"forecast_enabled", cfg.Report.ForecastEnabled(),
		"high_cardinality_metrics", cfg.HighCardinalityEnabled())

	azureClient, err := azure.NewClient(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create Azure client: %w", err)
	}

	costCollector := collector.NewCostCollector(azureClient, cfg, log)
	if err := registerCollectors(prometheus.DefaultRegisterer, costCollector); err != nil {
		return err
	}

	refreshCtx, cancelRefresh := context.WithCancel(ctx)
	defer cancelRefresh()
	costCollector.StartBackgroundRefresh(refreshCtx)

	srv := server.NewServer(cfg, costCollector, log)
	serverErr := make(chan error, 1)
	go func() { serverErr <- srv.Start() }()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		log.Info("Shutdown signal received, draining HTTP server")
	}

	cancelRefresh()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("Server stopped gracefully")
	return nil
}

// registerCollectors registers the cost collector plus Go runtime and process
// metrics. Runtime collectors that are already registered are left as is.
func registerCollectors(reg prometheus.Registerer, cost prometheus.Collector) error {
	if err := reg.Register(cost); err != nil {
		return fmt.Errorf("failed to register cost collector: %w", err)
	}
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		var already prometheus.AlreadyRegisteredError
		if err := reg.Register(c); err != nil && !errors.As(err, &already) {
			return fmt.Errorf("failed to register runtime collector: %w", err)
		}
	}
	return nil
}
