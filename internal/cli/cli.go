package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/animalitos/internal/collector"
	"github.com/pfrederiksen/animalitos/internal/logger"
	"github.com/pfrederiksen/animalitos/internal/notifier"
	"github.com/pfrederiksen/animalitos/internal/pagecache"
	"github.com/pfrederiksen/animalitos/internal/result"
	"github.com/pfrederiksen/animalitos/internal/schedule"
	"github.com/pfrederiksen/animalitos/internal/scraper"
	"github.com/pfrederiksen/animalitos/internal/stats"
	"github.com/pfrederiksen/animalitos/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitPartial = 2
)

// PartialError is returned when some periods could not be collected. The
// results of the other periods have still been written.
type PartialError struct {
	Report *collector.Report
}

func (e *PartialError) Error() string {
	return e.Report.Summary()
}

func (e *PartialError) Unwrap() error {
	return e.Report.Err()
}

// NewRootCmd creates the root command writing reports to stdout and logs to stderr
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "animalitos",
		Short: "Collect weekly animalitos lottery results",
		Long: `A CLI tool to collect animalitos lottery results.
Downloads one results page per week between two dates, extracts every draw
and writes them to a CSV file and optionally a SQLite database.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.AddCommand(newScrapeCmd(stdout, stderr))
	cmd.AddCommand(newStatsCmd(stdout))

	return cmd
}

func newScrapeCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &scrapeOptions{}

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Download weekly result pages and save the draws",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(time.Now())
			if err != nil {
				return err
			}
			return runScrape(cmd.Context(), cfg, stdout, stderr)
		},
	}

	cmd.Flags().StringVar(&opts.start, "start", DefaultStart, "First day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.end, "end", "", "Last day of the range (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "results.csv", "CSV file to write")
	cmd.Flags().StringVar(&opts.sqlite, "sqlite", "", "Also store results in this SQLite database")
	cmd.Flags().StringVar(&opts.cache, "cache", "", "Keep pages of finished weeks in this JSON file between runs")
	cmd.Flags().DurationVar(&opts.cacheTTL, "cache-ttl", pagecache.DefaultTTL, "How long cached pages stay valid")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "c", collector.DefaultConcurrency, "Maximum pages fetched at once")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", scraper.Timeout, "Timeout per page request")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", schedule.DefaultBaseURL, "Base URL of the weekly results pages")
	cmd.Flags().StringVar(&opts.selector, "selector", scraper.DefaultTableSelector, "CSS selector of the results table")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", string(logger.LevelInfo), "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&opts.notify, "notify", "", "Post the latest day's draws: twitter or telegram")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "With --notify, print the post instead of sending it")

	return cmd
}

func newStatsCmd(stdout io.Writer) *cobra.Command {
	var input, format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show how often each animal was drawn",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(input, OutputFormat(strings.ToLower(strings.TrimSpace(format))), stdout)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "results.csv", "CSV file written by scrape")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")

	return cmd
}

// runScrape collects every period in the configured range and saves the results.
// Results are saved even when the run is interrupted or some periods fail.
func runScrape(ctx context.Context, cfg Config, stdout, stderr io.Writer) error {
	log := logger.New(cfg.LogLevel, stderr)
	logger.SetDefault(log)

	periods := slices.Collect(schedule.Periods(cfg.BaseURL, cfg.Start, cfg.End))
	log.Debug("Scheduled periods", logger.Fields{
		"start":   cfg.Start.Format(result.DateLayout),
		"end":     cfg.End.Format(result.DateLayout),
		"periods": len(periods),
	})

	// Open the database before downloading anything so a bad path fails fast
	var db *storage.SQLite
	if cfg.SQLitePath != "" {
		var err error
		db, err = storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("opening sqlite: %w", err)
		}
		defer db.Close()
	}

	metrics := logger.NewMetrics()
	var fetcher collector.PageFetcher = scraper.NewClient(cfg.Timeout)

	var cache *pagecache.Cache
	if cfg.CachePath != "" {
		var err error
		cache, err = pagecache.Load(cfg.CachePath, cfg.CacheTTL)
		if err != nil {
			return err
		}
		log.Debug("Loaded page cache", logger.Fields{"path": cfg.CachePath, "pages": cache.Size()})
		fetcher = pagecache.NewFetcher(fetcher, cache, finishedWeeks(periods, time.Now()), metrics)
	}

	c := collector.New(
		fetcher,
		scraper.NewParser(cfg.TableSelector),
		collector.WithConcurrency(cfg.Concurrency),
		collector.WithLogger(log),
		collector.WithMetrics(metrics),
	)
	store, report := c.Collect(ctx, periods)

	if cache != nil {
		if err := cache.Save(cfg.CachePath); err != nil {
			log.Warn("Failed to save page cache", logger.Fields{"path": cfg.CachePath}, err)
		}
	}

	saveCtx := context.WithoutCancel(ctx)
	sinks := []storage.Sink{&storage.CSVFile{Path: cfg.Output}}
	if db != nil {
		db.RunID = report.RunID
		sinks = append(sinks, db)
	}
	for _, sink := range sinks {
		if err := sink.Save(saveCtx, store); err != nil {
			return fmt.Errorf("saving results: %w", err)
		}
	}
	log.Info("Saved results", logger.Fields{
		"run_id":  report.RunID,
		"results": store.Len(),
		"output":  cfg.Output,
	})

	if cfg.Notify != "" {
		notify(cfg, store, log, stderr)
	}

	snapshot := metrics.Snapshot()
	out := &RunOutput{
		Report:  report,
		Start:   cfg.Start.Format(result.DateLayout),
		End:     cfg.End.Format(result.DateLayout),
		Output:  cfg.Output,
		SQLite:  cfg.SQLitePath,
		Metrics: &snapshot,
	}
	if err := WriteRunOutput(stdout, out, cfg.Format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if report.Failed() > 0 {
		return &PartialError{Report: report}
	}
	return nil
}

// finishedWeeks reports whether a URL belongs to a period whose last day is before now.
// Pages of the running week still change and are never cached.
func finishedWeeks(periods []schedule.Period, now time.Time) func(url string) bool {
	today := result.Day(now)
	finished := make(map[string]bool, len(periods))
	for _, p := range periods {
		if !p.Start.AddDate(0, 0, schedule.PeriodLength).After(today) {
			finished[p.URL] = true
		}
	}
	return func(url string) bool {
		return finished[url]
	}
}

// notify posts the most recent day's draws. A failed post does not fail the run.
func notify(cfg Config, store *result.Store, log *logger.Logger, stderr io.Writer) {
	var n notifier.Notifier
	if cfg.DryRun {
		n = notifier.NewDryRunNotifier(stderr, cfg.Notify)
	} else {
		var err error
		n, err = notifier.New(cfg.Notify)
		if err != nil {
			log.Warn("Skipping notification", logger.Fields{"channel": cfg.Notify}, err)
			return
		}
	}

	latest := store.Latest()
	if err := n.Notify(latest); err != nil {
		log.Warn("Failed to post results", logger.Fields{"channel": cfg.Notify, "results": len(latest)}, err)
		return
	}
	log.Info("Posted latest results", logger.Fields{"channel": cfg.Notify, "results": len(latest), "dry_run": cfg.DryRun})
}

// runStats prints draw frequencies for a results file
func runStats(input string, format OutputFormat, stdout io.Writer) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	results, err := storage.LoadCSV(input)
	if err != nil {
		return err
	}

	out := &StatsOutput{
		Input:   input,
		Animals: stats.Frequencies(results),
		ByHour:  stats.ByHour(results),
	}
	for _, s := range out.Animals {
		out.Total += s.Count
	}

	return WriteStatsOutput(stdout, out, format)
}

// run executes the command line and maps its outcome to an exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var partial *PartialError
	if errors.As(err, &partial) {
		return ExitPartial
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitError
}

// Execute runs the CLI. An interrupt stops scheduling new pages; results
// collected so far are still saved.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
