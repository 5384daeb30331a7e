package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/Alexthestampede/DailyFeedSanity/pkg/ai"
	"github.com/Alexthestampede/DailyFeedSanity/pkg/classify"
	"github.com/Alexthestampede/DailyFeedSanity/pkg/comics"
	"github.com/Alexthestampede/DailyFeedSanity/pkg/config"
	"github.com/Alexthestampede/DailyFeedSanity/pkg/content"
	"github.com/Alexthestampede/DailyFeedSanity/pkg/feed"
	"github.com/Alexthestampede/DailyFeedSanity/pkg/news"
	"github.com/Alexthestampede/DailyFeedSanity/pkg/output"
	"github.com/Alexthestampede/DailyFeedSanity/pkg/proc"
	"github.com/Alexthestampede/DailyFeedSanity/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"configuration file"`
	Feeds  string `short:"f" long:"feeds" env:"FEEDS" description:"feed list file, overrides config"`
	Output string `short:"o" long:"output" env:"OUTPUT" description:"output directory, overrides config"`

	Provider       string `long:"ai-provider" env:"AI_PROVIDER" description:"AI provider: ollama, lmstudio, openai, gemini or claude"`
	AllEntries     bool   `long:"all-entries" description:"process all news entries, not just recent ones"`
	ValidateImages bool   `long:"validate-images" description:"validate downloaded comics with the vision model"`
	NoVision       bool   `long:"no-vision" description:"disable all vision model usage"`

	Serve  bool   `long:"serve" description:"serve the output directory after the run"`
	Listen string `short:"l" long:"listen" env:"LISTEN" default:":8080" description:"preview server listen address"`

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

	setupLog(opts.Debug, opts.NoColor)

	log.Printf("[INFO] starting dailyfeedsanity version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyOverrides(cfg, opts)

	bundle, err := ai.NewWithFallback(cfg)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	log.Printf("[INFO] using ai provider %s", bundle.Provider)

	feedURLs, err := feed.LoadList(cfg.Output.FeedsFile)
	if err != nil {
		return fmt.Errorf("load feed list: %w", err)
	}
	if len(feedURLs) == 0 {
		return fmt.Errorf("no feeds in %s", cfg.Output.FeedsFile)
	}

	settings, _ := cfg.AI.ProviderSettings(string(bundle.Provider))

	classifier := classify.New(cfg.Classify, bundle.Client, settings.TextModel, cfg.AI.Temperatures)

	newsProc := news.NewProcessor(
		content.NewHTTPExtractor(cfg.HTTP.Timeout, cfg.HTTP.UserAgent),
		bundle.Text,
	)

	downloaderParams := comics.DownloaderParams{
		Fetcher:    comics.NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent),
		Retries:    cfg.HTTP.MaxRetries,
		RetryDelay: cfg.HTTP.RetryDelay,
		ValidateAI: cfg.Process.ValidateImages,
	}
	if !opts.NoVision {
		downloaderParams.Pages = bundle.Vision
		downloaderParams.Validator = bundle.Vision
	}

	processor := proc.NewProcessor(proc.Params{
		Parser:      feed.NewParser(cfg.HTTP.Timeout, cfg.HTTP.UserAgent),
		Classifier:  classifier,
		Comics:      comics.NewDownloader(downloaderParams),
		News:        newsProc,
		MaxWorkers:  cfg.Process.MaxWorkers,
		FeedTimeout: cfg.Process.FeedTimeout,
		TimeFilter:  time.Duration(cfg.Process.TimeFilterHours) * time.Hour,
		AllEntries:  opts.AllEntries,
	})

	runDir := output.DatedDir(cfg.Output.Dir, time.Now())
	report := processor.Run(ctx, feedURLs, runDir)

	renderer, err := output.NewRenderer(cfg.Output.PageTitle)
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}
	if _, err := renderer.Render(report, runDir); err != nil {
		return fmt.Errorf("render digest: %w", err)
	}

	if opts.Serve {
		srv := server.New(server.Params{
			Listen:    cfg.Server.Listen,
			OutputDir: cfg.Output.Dir,
			Timeout:   cfg.Server.Timeout,
			Version:   revision,
			Debug:     opts.Debug,
		})
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("preview server: %w", err)
		}
	}

	return nil
}

// applyOverrides folds CLI flags over the loaded configuration
func applyOverrides(cfg *config.Config, opts Opts) {
	if opts.Provider != "" {
		cfg.AI.Provider = opts.Provider
	}
	if opts.Feeds != "" {
		cfg.Output.FeedsFile = opts.Feeds
	}
	if opts.Output != "" {
		cfg.Output.Dir = opts.Output
	}
	if opts.ValidateImages {
		cfg.Process.ValidateImages = true
	}
	if opts.Listen != "" && opts.Listen != ":8080" {
		cfg.Server.Listen = opts.Listen
	}
}

func setupLog(dbg, noColor bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}

	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
