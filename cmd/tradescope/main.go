package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/tradescope/pkg/config"
	"github.com/umputun/tradescope/pkg/recommend"
	"github.com/umputun/tradescope/pkg/refresh"
	"github.com/umputun/tradescope/pkg/upstream"
	"github.com/umputun/tradescope/server"
)

// Opts with all CLI options
type Opts struct {
	Config      string `short:"c" long:"config" env:"CONFIG" description:"configuration file, defaults are used if not set"`
	Listen      string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`
	Upstream    string `short:"u" long:"upstream" env:"UPSTREAM" description:"recommendations api base url, overrides config"`
	AutoRefresh bool   `short:"a" long:"auto-refresh" env:"AUTO_REFRESH" description:"enable auto-refresh on start"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	color.NoColor = color.NoColor || opts.NoColor
	setupLog(opts.Debug)

	lgr.Printf("[INFO] starting tradescope version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Printf("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		lgr.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	lgr.Printf("[INFO] shutdown complete")
}

// run wires the upstream client, the refresh controller and the http server, blocks until ctx is done
func run(ctx context.Context, opts Opts) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client := upstream.NewClient(upstream.Config{
		BaseURL:   cfg.Upstream.BaseURL,
		Path:      cfg.Upstream.Path,
		Timeout:   cfg.Upstream.Timeout,
		UserAgent: cfg.Upstream.UserAgent,
	})
	if err := client.WaitReady(ctx, cfg.Upstream.WaitAttempts, cfg.Upstream.WaitDelay); err != nil {
		// the dashboard shows fetch errors itself, an unavailable upstream doesn't block the start
		lgr.Printf("[WARN] %v", err)
	}

	ctrl := refresh.New(client, recommend.NewBuilder(nil), refresh.Config{
		Interval:    cfg.Refresh.Interval,
		NotifyTTL:   cfg.Refresh.NotifyTTL,
		LoadOnStart: cfg.Refresh.ShouldLoadOnStart(),
		AutoStart:   cfg.Refresh.AutoStart,
	})
	srv := server.New(cfg, ctrl, revision, opts.Debug)

	lgr.Printf("[INFO] upstream %s%s, auto-refresh every %v", cfg.Upstream.BaseURL, cfg.Upstream.Path, cfg.Refresh.Interval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ctrl.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })
	return g.Wait()
}

// loadConfig reads the config file if set, otherwise starts from defaults, then applies CLI overrides
func loadConfig(opts Opts) (*config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			return nil, err
		}
	}

	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	if opts.Upstream != "" {
		cfg.Upstream.BaseURL = opts.Upstream
	}
	if opts.AutoRefresh {
		cfg.Refresh.AutoStart = true
	}
	return config.Finalize(cfg)
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
