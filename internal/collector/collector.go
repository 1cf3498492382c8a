// Package collector fans the weekly periods of a run out to concurrent
// fetch/parse workers and merges their results into one Store.
//
// Workers hand their results by value to a single aggregator goroutine, which is
// the only code touching the Store until every worker has finished. A failed
// period is recorded in the Report and never affects the others.
package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/pfrederiksen/animalitos/internal/logger"
	"github.com/pfrederiksen/animalitos/internal/result"
	"github.com/pfrederiksen/animalitos/internal/schedule"
	"github.com/pfrederiksen/animalitos/internal/scraper"
)

// DefaultConcurrency caps the number of simultaneous page fetches
const DefaultConcurrency = 8

// PageFetcher retrieves the raw content of a period page
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// PageParser turns raw page content into a WeekPage
type PageParser interface {
	Parse(r io.Reader) (*scraper.WeekPage, error)
}

// PeriodError records why one period contributed no results
type PeriodError struct {
	Period schedule.Period
	Err    error
}

func (e *PeriodError) Error() string {
	return fmt.Sprintf("period %s: %v", e.Period.Start.Format(result.DateLayout), e.Err)
}

func (e *PeriodError) Unwrap() error {
	return e.Err
}

// MarshalJSON renders the failure for the JSON run report
func (e *PeriodError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Period string `json:"period"`
		URL    string `json:"url"`
		Error  string `json:"error"`
	}{
		Period: e.Period.Start.Format(result.DateLayout),
		URL:    e.Period.URL,
		Error:  e.Err.Error(),
	})
}

// Report summarizes one collection run
type Report struct {
	RunID     string         `json:"run_id"`
	Started   time.Time      `json:"started"`
	Duration  time.Duration  `json:"duration_ns"`
	Periods   int            `json:"periods"`
	Succeeded int            `json:"succeeded"`
	Skipped   int            `json:"skipped"`
	Results   int            `json:"results"`
	Failures  []*PeriodError `json:"failures,omitempty"`
}

// Failed returns the number of periods that contributed no results, skipped ones included
func (r *Report) Failed() int {
	return len(r.Failures)
}

// Err joins every period failure, or returns nil when all periods succeeded
func (r *Report) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// Summary renders a one-line outcome such as "2 of 10 periods failed"
func (r *Report) Summary() string {
	if r.Failed() == 0 {
		return fmt.Sprintf("all %d periods collected, %d results", r.Periods, r.Results)
	}
	s := fmt.Sprintf("%d of %d periods failed, %d results", r.Failed(), r.Periods, r.Results)
	if r.Skipped > 0 {
		s += fmt.Sprintf(" (%d skipped)", r.Skipped)
	}
	return s
}

// Collector runs the per-period workers
type Collector struct {
	fetcher     PageFetcher
	parser      PageParser
	concurrency int
	log         *logger.Logger
	metrics     *logger.Metrics
}

// Option configures a Collector
type Option func(*Collector)

// WithConcurrency sets the maximum number of periods processed at once.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the logger used for per-period progress
func WithLogger(l *logger.Logger) Option {
	return func(c *Collector) {
		c.log = l
	}
}

// WithMetrics sets the metrics tracker fetch timings and counters are recorded on
func WithMetrics(m *logger.Metrics) Option {
	return func(c *Collector) {
		c.metrics = m
	}
}

// New creates a Collector
func New(fetcher PageFetcher, parser PageParser, opts ...Option) *Collector {
	c := &Collector{
		fetcher:     fetcher,
		parser:      parser,
		concurrency: DefaultConcurrency,
		log:         logger.Default(),
		metrics:     logger.NewMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type outcome struct {
	period  schedule.Period
	results []result.LotteryResult
	err     error
	skipped bool
}

// Collect processes every period and returns the merged results once all of
// them have finished. Cancelling ctx stops periods that have not started yet;
// results of periods that already completed are kept.
func (c *Collector) Collect(ctx context.Context, periods []schedule.Period) (*result.Store, *Report) {
	report := &Report{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
		Periods: len(periods),
	}
	store := result.NewStore()
	log := c.log.With(logger.Fields{"run_id": report.RunID})

	log.Info("Collecting periods", logger.Fields{
		"periods":     len(periods),
		"concurrency": c.concurrency,
	})

	outcomes := make(chan outcome)
	aggregated := make(chan struct{})

	go func() {
		defer close(aggregated)
		for o := range outcomes {
			c.aggregate(log, store, report, o)
		}
	}()

	sem := semaphore.NewWeighted(int64(c.concurrency))
	var wg sync.WaitGroup

	for _, p := range periods {
		if err := ctx.Err(); err != nil {
			outcomes <- outcome{period: p, err: err, skipped: true}
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			outcomes <- outcome{period: p, err: err, skipped: true}
			continue
		}

		wg.Add(1)
		go func(p schedule.Period) {
			defer wg.Done()
			defer sem.Release(1)

			results, err := c.collectPeriod(ctx, log, p)
			outcomes <- outcome{period: p, results: results, err: err}
		}(p)
	}

	wg.Wait()
	close(outcomes)
	<-aggregated

	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].Period.Start.Before(report.Failures[j].Period.Start)
	})
	report.Results = store.Len()
	report.Duration = time.Since(report.Started)

	return store, report
}

// aggregate folds one outcome into the store and report; only the aggregator goroutine calls it
func (c *Collector) aggregate(log *logger.Logger, store *result.Store, report *Report, o outcome) {
	fields := logger.Fields{
		"period": o.period.Start.Format(result.DateLayout),
		"url":    o.period.URL,
	}

	if o.err != nil {
		report.Failures = append(report.Failures, &PeriodError{Period: o.period, Err: o.err})
		if o.skipped {
			report.Skipped++
			c.metrics.IncrCounter("periods.skipped")
			log.Debug("Period skipped", fields)
			return
		}
		c.metrics.IncrCounter("periods.failed")
		log.Warn("Period failed", fields, o.err)
		return
	}

	kept := store.Merge(o.results)
	report.Succeeded++
	c.metrics.IncrCounter("periods.ok")
	c.metrics.AddCounter("results.kept", int64(kept))

	fields["results"] = kept
	log.Debug("Period collected", fields)
}

// collectPeriod fetches and parses one period page
func (c *Collector) collectPeriod(ctx context.Context, log *logger.Logger, p schedule.Period) ([]result.LotteryResult, error) {
	started := time.Now()
	body, err := c.fetcher.Fetch(ctx, p.URL)
	c.metrics.RecordTiming("fetch", time.Since(started))
	if err != nil {
		return nil, err
	}

	started = time.Now()
	page, err := c.parser.Parse(bytes.NewReader(body))
	c.metrics.RecordTiming("parse", time.Since(started))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", p.URL, err)
	}

	if !page.StartDate.Equal(p.Start) {
		log.Debug("Page starts on a different day than its period", logger.Fields{
			"period":     p.Start.Format(result.DateLayout),
			"page_start": page.StartDate.Format(result.DateLayout),
		})
	}

	return page.Results(), nil
}
