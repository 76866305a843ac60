package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"fbstats/internal/browser"
	"fbstats/internal/fetcher"
	"fbstats/internal/formatter"
	"fbstats/internal/league"
	"fbstats/internal/log"
	"fbstats/internal/scraper"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	leagues     string
	outDir      string
	format      string
	settle      time.Duration
	waitTimeout time.Duration
	timeout     time.Duration
	delay       time.Duration
	showUI      bool
	proxyURL    string
	browserBin  string
	debug       bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:     "fbstats",
		Short:   "Scrape FBref league tables with xG stats into CSV files",
		Version: version,
		Long: `fbstats drives a headless Chromium to load FBref league pages, extracts
the league table (squad, record, points and expected goals), normalizes the
columns and saves one file per league.

Without --leagues it asks which leagues to scrape.`,
		Example: `  # Pick leagues interactively
  fbstats

  # Premier League and Serie A, no prompt
  fbstats --leagues 1,3

  # Every league as JSON into ./data, with a visible browser
  fbstats --leagues 5 -f json --out-dir data --showui`,
		Args:         cobra.NoArgs,
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&leagues, "leagues", "L", "", "League selection, same as the prompt (e.g. 1,3 or 5 for all)")
	rootCmd.Flags().StringVarP(&outDir, "out-dir", "o", ".", "Directory the league files are written to")
	rootCmd.Flags().StringVarP(&format, "format", "f", formatter.CSV, "Output format ("+strings.Join(formatter.Formats, ", ")+")")
	rootCmd.Flags().DurationVar(&settle, "settle", 5*time.Second, "Fixed wait after navigation before looking for the table (0 disables)")
	rootCmd.Flags().DurationVar(&waitTimeout, "wait-timeout", 15*time.Second, "How long to wait for the table element")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 30*time.Second, "Navigation timeout")
	rootCmd.Flags().DurationVar(&delay, "delay", 3*time.Second, "Pause between leagues")
	rootCmd.Flags().BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	rootCmd.Flags().StringVarP(&proxyURL, "proxy", "p", os.Getenv("FBSTATS_PROXY"), "Proxy URL (e.g. http://127.0.0.1:7890), defaults to FBSTATS_PROXY env var")
	rootCmd.Flags().StringVar(&browserBin, "browser", "", "Chromium binary to use instead of the one rod downloads")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := validateFlags(); err != nil {
		return err
	}
	log.SetDebug(debug)
	logger := log.NewLogger("main")

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintln(out, "FBref Multi-League Stats Scraper")
	fmt.Fprintln(out, strings.Repeat("=", 60))

	all := league.All()
	var (
		selected []league.League
		err      error
	)
	if leagues != "" {
		selected, err = league.ParseSelection(leagues, all)
		if err != nil {
			return errors.Wrapf(err, "invalid --leagues %q", leagues)
		}
	} else {
		selected, err = league.Prompt(cmd.InOrStdin(), out, all)
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(out, scraper.Banner(selected))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := browser.DefaultConfig()
	cfg.Headless = !showUI
	cfg.ProxyURL = proxyURL
	cfg.Bin = browserBin

	fetchOpts := fetcher.DefaultOptions()
	fetchOpts.NavigateTimeout = timeout
	fetchOpts.Settle = settle
	fetchOpts.WaitTimeout = waitTimeout

	open := func(ctx context.Context) (scraper.PageSource, error) {
		logger.Info().Bool("headless", cfg.Headless).Msg("Setting up browser...")
		b, err := browser.New(cfg)
		if err != nil {
			return nil, err
		}
		return fetcher.NewFetcher(b, fetchOpts), nil
	}

	opts := scraper.DefaultOptions()
	opts.Delay = delay
	opts.OutDir = outDir
	opts.Format = format

	started := time.Now()
	results, err := scraper.NewRunner(open, opts, out).Run(ctx, selected)
	if err != nil && len(results) == 0 {
		logger.Error().Stack().Err(err).Msg("Fatal error")
		return err
	}
	if err != nil {
		logger.Error().Stack().Err(err).Msg("Run stopped early")
	}

	scraper.Summary(out, results, len(selected), started)
	return nil
}

func validateFlags() error {
	if !formatter.Valid(format) {
		return fmt.Errorf("invalid output format: %s", format)
	}

	durations := map[string]time.Duration{
		"settle":       settle,
		"wait-timeout": waitTimeout,
		"timeout":      timeout,
		"delay":        delay,
	}
	for name, d := range durations {
		if d < 0 {
			return fmt.Errorf("--%s must not be negative", name)
		}
	}
	if waitTimeout == 0 {
		return fmt.Errorf("--wait-timeout must be greater than zero")
	}
	if timeout == 0 {
		return fmt.Errorf("--timeout must be greater than zero")
	}

	return nil
}
