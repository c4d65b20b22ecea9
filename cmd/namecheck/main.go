// Package main provides the command-line interface for the namecheck availability checker.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vnykmshr/namecheck/internal/checker"
	"github.com/vnykmshr/namecheck/internal/cli"
	"github.com/vnykmshr/namecheck/internal/config"
	"github.com/vnykmshr/namecheck/internal/domain"
	"github.com/vnykmshr/namecheck/internal/metrics"
	"github.com/vnykmshr/namecheck/internal/reporter"
	"github.com/vnykmshr/namecheck/internal/runner"
	"github.com/vnykmshr/namecheck/internal/store"
	"github.com/vnykmshr/namecheck/internal/util"
)

const version = "0.1.0"

func main() {
	opts := cli.NewConfigOptions()
	var (
		configPath  = flag.String("config", "", "Path to configuration file (JSON)")
		summaryFile = flag.String("summary", "", "Write the run summary to this file (JSON)")
		initConfig  = flag.String("init-config", "", "Write a default configuration file and exit")
		assumeYes   = flag.Bool("yes", false, "Do not ask for confirmation before a production run")
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help message")
	)
	flag.StringVar(&opts.Environment, "env", "", "Environment: development, test or production")
	flag.StringVar(&opts.DataDir, "data-dir", "", "Directory holding seed and result files")
	flag.StringVar(&opts.Names, "names", "", "Comma-separated names to check instead of seeds")
	flag.StringVar(&opts.Endings, "endings", "", "Comma-separated domain endings")
	flag.StringVar(&opts.Timeout, "timeout", "", "Request timeout")
	flag.StringVar(&opts.Cooldown, "cooldown", "", "Pause after a rate-limited domain response")
	flag.StringVar(&opts.UserAgent, "user-agent", "", "User agent string")
	flag.StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	flag.StringVar(&opts.StoreBackend, "store", "", "Result store: file or postgres")
	flag.Float64Var(&opts.Rate, "rate", cli.Unset, "Requests per second limit, 0 for none")
	flag.IntVar(&opts.BatchSize, "batch-size", cli.Unset, "Names per batch")
	flag.IntVar(&opts.MaxBatches, "max-batches", cli.Unset, "Stop after this many batches, 0 for all")
	flag.IntVar(&opts.Limit, "limit", cli.Unset, "Check only the first N candidates, 0 for all")
	flag.IntVar(&opts.MaxRetries, "max-retries", cli.Unset, "Attempts per domain when rate limited")
	flag.BoolVar(&opts.Resume, "resume", false, "Skip names already fully checked")
	flag.BoolVar(&opts.TestMode, "test-mode", false, "Skip cooldown pauses")
	flag.BoolVar(&opts.Verbose, "verbose", false, "Verbose logging")
	flag.BoolVar(&opts.AllowPrivateIPs, "allow-private-ips", false, "Allow API URLs on private/localhost IPs")
	flag.BoolVar(&opts.ExcludeSelfPairs, "exclude-self-pairs", false, "Skip two-part names with identical halves")
	flag.Parse()

	if *showVersion {
		fmt.Printf("namecheck v%s\n", version)
		return
	}

	if *showHelp {
		cli.ShowHelpMessage(os.Stdout, version)
		return
	}

	if *initConfig != "" {
		cfg := domain.DefaultConfig()
		cfg.DomainAPI.Key = "${" + cli.EnvDomainAPIKey + "}"
		cfg.DomainAPI.Secret = "${" + cli.EnvDomainAPISecret + "}"
		cfg.UsernameAPI.Token = "${" + cli.EnvGitHubToken + "}"
		if err := config.NewLoader().SaveToFile(&cfg, *initConfig); err != nil {
			log.Fatalf("Failed to write configuration: %v", err)
		}
		fmt.Printf("Configuration written to %s\n", *initConfig)
		return
	}

	if err := run(*configPath, opts, *summaryFile, *assumeYes); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Printf("Run interrupted: %v", err)
			os.Exit(130)
		}
		log.Fatalf("namecheck failed: %v", err)
	}
}

func run(configPath string, opts *cli.ConfigOptions, summaryFile string, assumeYes bool) error {
	cfg, err := cli.LoadConfiguration(configPath, opts)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	settings, err := config.Resolve(cfg)
	if err != nil {
		return err
	}

	// Enforce rate limit safety
	cli.ValidateRateLimit(os.Stderr, &settings.Rate)

	// Setup logger
	logLevel := slog.LevelInfo
	if settings.Verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	logger.Debug("Credentials loaded",
		"domain_api_key", util.MaskSecret(settings.DomainAPIKey),
		"username_token", util.MaskSecret(settings.UsernameToken))

	if settings.Environment == domain.EnvProduction && !assumeYes {
		if err := cli.ConfirmProduction(os.Stdin, os.Stderr, cli.IsInteractiveTerminal()); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	if settings.MetricsAddr != "" {
		srv, err := metrics.Listen(settings.MetricsAddr, registry, logger)
		if err != nil {
			return fmt.Errorf("starting metrics server: %w", err)
		}
		metricsCtx, stopMetrics := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := srv.Serve(metricsCtx); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			stopMetrics()
			<-done
		}()
	}

	resultStore, closeStore, err := store.Open(ctx, settings)
	if err != nil {
		return fmt.Errorf("opening result store: %w", err)
	}
	defer closeStore()

	limiter, err := checker.NewLimiter(settings.Rate)
	if err != nil {
		return err
	}
	client := checker.NewHTTPClient(settings.RequestTimeout, settings.AllowPrivateIPs)

	domainChecker := checker.NewDomainChecker(checker.DomainConfig{
		URL:        settings.DomainAPIURL,
		Key:        settings.DomainAPIKey,
		Secret:     settings.DomainAPISecret,
		UserAgent:  settings.UserAgent,
		Endings:    settings.DomainEndings,
		MaxRetries: settings.DomainMaxRetries,
		Cooldown:   settings.DomainCooldown,
		TestMode:   settings.TestMode,
	}, client, limiter, collector, logger)

	usernameChecker := checker.NewUsernameChecker(checker.UsernameConfig{
		BaseURL:   settings.UsernameAPIURL,
		Token:     settings.UsernameToken,
		UserAgent: settings.UserAgent,
	}, client, limiter, collector, logger)

	rep := reporter.New(os.Stdout)

	nameRunner, err := runner.New(settings, runner.Dependencies{
		Store:    resultStore,
		Checkers: []domain.Checker{domainChecker, usernameChecker},
		Reporter: rep,
		Metrics:  collector,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating runner: %w", err)
	}

	summary, runErr := nameRunner.Run(ctx)
	if summary != nil {
		// Print console summary, also for interrupted runs
		rep.PrintSummary(summary)

		if summaryFile != "" {
			if err := rep.GenerateJSON(summary, summaryFile); err != nil {
				logger.Error("Failed to save summary", "error", err)
			} else {
				logger.Info("Summary saved", "file", summaryFile)
			}
		}
	}

	return runErr
}
