package scraper

import (
	"context"
	"fmt"
	"io"
	"time"

	"fbstats/internal/fetcher"
	"fbstats/internal/formatter"
	"fbstats/internal/league"
	"fbstats/internal/log"
	"fbstats/internal/normalize"
	"fbstats/internal/output"
	"fbstats/internal/table"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// PageSource renders pages. It is opened once per run and closed once.
type PageSource interface {
	Render(ctx context.Context, url string) (string, error)
	Close() error
}

// Opener acquires the PageSource for a run.
type Opener func(ctx context.Context) (PageSource, error)

type Status string

const (
	StatusSuccess Status = "Success"
	StatusFailed  Status = "Failed"
)

// Result is the outcome of one league.
type Result struct {
	League string
	Status Status
	Teams  int
}

type Options struct {
	Delay       time.Duration // pause between leagues
	OutDir      string
	Format      string
	PreviewRows int
}

// DefaultOptions returns the settings used by the CLI.
func DefaultOptions() Options {
	return Options{
		Delay:       3 * time.Second,
		OutDir:      ".",
		Format:      formatter.CSV,
		PreviewRows: 5,
	}
}

// Runner scrapes a list of leagues one after another through a single PageSource.
type Runner struct {
	open Opener
	opts Options
	out  io.Writer
	log  zerolog.Logger
}

// NewRunner creates a Runner writing previews to out.
func NewRunner(open Opener, opts Options, out io.Writer) *Runner {
	return &Runner{
		open: open,
		opts: opts,
		out:  out,
		log:  log.NewLogger("scraper"),
	}
}

// Run processes every league in order. A failing league is recorded and the
// run moves on; only failing to open the page source, or ctx ending, stops
// it early. The page source is closed exactly once before Run returns.
func (r *Runner) Run(ctx context.Context, leagues []league.League) ([]Result, error) {
	src, err := r.open(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open browser")
	}
	r.log.Info().Msg("Browser ready")

	defer func() {
		r.log.Info().Msg("Closing browser...")
		if cerr := src.Close(); cerr != nil {
			r.log.Warn().Err(cerr).Msg("Failed to close browser")
			return
		}
		r.log.Info().Msg("Browser closed")
	}()

	results := make([]Result, 0, len(leagues))
	for i, l := range leagues {
		if err := ctx.Err(); err != nil {
			return results, errors.WithStack(err)
		}

		results = append(results, r.process(ctx, src, l))

		if i < len(leagues)-1 && r.opts.Delay > 0 {
			r.log.Info().Msg("Waiting before next league...")
			if err := fetcher.Sleep(ctx, r.opts.Delay); err != nil {
				return results, errors.WithStack(err)
			}
		}
	}

	return results, nil
}

// process runs the whole pipeline for one league. rod's Must* helpers
// panic, so a panic anywhere in it is recorded as a failure.
func (r *Runner) process(ctx context.Context, src PageSource, l league.League) (res Result) {
	logger := r.log.With().Str("league", l.Name).Logger()
	defer func() {
		if rec := recover(); rec != nil {
			err := errors.Errorf("panic while scraping %s: %v", l.Name, rec)
			logger.Error().Stack().Err(err).Msgf("Error scraping %s", l.Name)
			res = Result{League: l.Name, Status: StatusFailed}
		}
	}()

	fmt.Fprintf(r.out, "\n%s\nScraping: %s\n%s\n", rule, l.Name, rule)

	f, err := r.scrape(ctx, src, l, logger)
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("Error scraping %s", l.Name)
		return Result{League: l.Name, Status: StatusFailed}
	}

	path := output.PathFor(r.opts.OutDir, l.Filename, r.opts.Format)
	if err := output.Write(f, path, r.opts.Format); err != nil {
		if errors.Is(err, output.ErrNoData) {
			logger.Warn().Msgf("No data to save for %s", l.Name)
			return Result{League: l.Name, Status: StatusSuccess, Teams: f.Len()}
		}
		logger.Error().Stack().Err(err).Msg("Failed to save data")
		return Result{League: l.Name, Status: StatusFailed}
	}

	logger.Info().Str("path", path).Msgf("Data saved to %s", path)
	if r.opts.PreviewRows > 0 {
		output.Preview(r.out, f, r.opts.PreviewRows)
	}

	return Result{League: l.Name, Status: StatusSuccess, Teams: f.Len()}
}

// scrape runs fetch, extract and normalize for one league.
func (r *Runner) scrape(ctx context.Context, src PageSource, l league.League, logger zerolog.Logger) (normalize.Frame, error) {
	logger.Info().Msgf("Navigating to %s...", l.Name)
	html, err := src.Render(ctx, l.URL)
	if err != nil {
		return normalize.Frame{}, err
	}

	logger.Info().Msg("Extracting data...")
	t, err := table.Extract(html)
	if err != nil {
		return normalize.Frame{}, errors.Wrapf(err, "could not find the league table for %s", l.Name)
	}

	f := normalize.Normalize(t)
	logger.Info().Int("teams", f.Len()).Msgf("Successfully scraped data for %d teams", f.Len())
	return f, nil
}
