package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/kleinwatch/pkg/config"
	"github.com/umputun/kleinwatch/pkg/dialog"
	"github.com/umputun/kleinwatch/pkg/llm"
	"github.com/umputun/kleinwatch/pkg/notify"
	"github.com/umputun/kleinwatch/pkg/refdata"
	"github.com/umputun/kleinwatch/pkg/repository"
	"github.com/umputun/kleinwatch/pkg/scheduler"
	"github.com/umputun/kleinwatch/pkg/scraper"
	"github.com/umputun/kleinwatch/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"configuration file"`
	DryRun bool   `long:"dry-run" env:"DRY_RUN" description:"log notifications instead of sending them"`

	// common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	if opts.NoColor {
		color.NoColor = true
	}
	setupLog(opts.Debug)
	lgr.Printf("[INFO] starting kleinwatch version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()
	if err != nil {
		lgr.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
	lgr.Print("[INFO] shutdown complete")
}

// run wires all components and blocks until the context is canceled or the server fails
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !opts.DryRun {
		if err := cfg.RequireTelegram(); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}
	// mask secrets in all further logs
	setupLog(opts.Debug, cfg.Telegram.Token, cfg.LLM.APIKey)

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			lgr.Printf("[WARN] failed to close database: %v", err)
		}
	}()

	catalog, err := refdata.Load(cfg.Refdata.Categories, cfg.Refdata.Cities)
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	sessions, closeSessions, err := makeSessions(ctx, cfg.Sessions)
	if err != nil {
		return fmt.Errorf("failed to make session store: %w", err)
	}
	defer closeSessions()

	engine := dialog.NewEngine(dialog.Params{
		Extractor: llm.NewExtractor(cfg.LLM, catalog.Prompt(8, 5)),
		Catalog:   catalog,
		Store:     repos.Preference,
		Sessions:  sessions,
	})

	fetcher := scraper.NewFetcher(scraper.FetcherParams{
		BaseURL:     cfg.Scraper.BaseURL,
		Timeout:     cfg.Scraper.Timeout,
		MaxPages:    cfg.Scraper.MaxPages,
		CutoffDays:  cfg.Scraper.CutoffDays,
		RequestRate: cfg.Scraper.RequestRate,
		UserAgent:   cfg.Scraper.UserAgent,
		Resolver:    catalog,
	})

	sched := scheduler.NewScheduler(scheduler.Params{
		Discovery: scheduler.NewDiscovery(scheduler.DiscoveryParams{
			Preferences: repos.Preference,
			Listings:    repos.Listing,
			Fetcher:     fetcher,
			MaxWorkers:  cfg.Schedule.MaxWorkers,
		}),
		Notification: scheduler.NewNotifier(scheduler.NotifierParams{
			Preferences: repos.Preference,
			Listings:    repos.Listing,
			Channel:     makeChannel(cfg.Telegram, opts.DryRun),
			Formatter:   notify.Formatter{MaxLength: cfg.Telegram.MaxMessageLength},
			Delay:       cfg.Schedule.NotifyDelay,
		}),
		DiscoveryInterval: cfg.Schedule.DiscoveryInterval,
		NotifyInterval:    cfg.Schedule.NotifyInterval,
	})
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	srv := server.New(server.Params{
		Config:      cfg,
		Preferences: repos.Preference,
		Dialog:      engine,
		Catalog:     catalog,
		Listings:    repos.Listing,
		Version:     revision,
		Debug:       opts.Debug,
	})
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// makeSessions returns redis backed dialog sessions if configured, in-memory otherwise
func makeSessions(ctx context.Context, cfg config.SessionsConfig) (dialog.Sessions, func(), error) {
	if cfg.RedisURL == "" {
		lgr.Printf("[INFO] dialog sessions kept in memory")
		return dialog.NewMemorySessions(cfg.TTL), func() {}, nil
	}
	rs, err := dialog.NewRedisSessions(ctx, cfg.RedisURL, cfg.TTL)
	if err != nil {
		return nil, nil, err
	}
	lgr.Printf("[INFO] dialog sessions kept in redis")
	return rs, func() {
		if err := rs.Close(); err != nil {
			lgr.Printf("[WARN] failed to close redis: %v", err)
		}
	}, nil
}

// makeChannel returns the telegram channel, or the log channel for dry runs
func makeChannel(cfg config.TelegramConfig, dryRun bool) scheduler.Channel {
	if dryRun {
		lgr.Printf("[INFO] dry run, notifications are logged only")
		return notify.LogChannel{}
	}
	return notify.NewTelegram(notify.TelegramParams{APIURL: cfg.APIURL, Token: cfg.Token, Timeout: 30 * time.Second})
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
