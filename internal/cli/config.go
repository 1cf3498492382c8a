package cli

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pfrederiksen/animalitos/internal/logger"
	"github.com/pfrederiksen/animalitos/internal/notifier"
	"github.com/pfrederiksen/animalitos/internal/result"
)

const DefaultStart = "2022-01-01"

// Config holds the settings of one scrape run
type Config struct {
	Start         time.Time
	End           time.Time
	Output        string
	SQLitePath    string
	CachePath     string
	CacheTTL      time.Duration
	Concurrency   int
	Timeout       time.Duration
	BaseURL       string
	TableSelector string
	Format        OutputFormat
	LogLevel      logger.Level
	Notify        notifier.Channel
	DryRun        bool
}

// scrapeOptions are the raw flag values of the scrape command
type scrapeOptions struct {
	start       string
	end         string
	output      string
	sqlite      string
	cache       string
	cacheTTL    time.Duration
	concurrency int
	timeout     time.Duration
	baseURL     string
	selector    string
	format      string
	logLevel    string
	notify      string
	dryRun      bool
}

// config converts flag values into a validated Config. An empty end date means today.
func (o *scrapeOptions) config(now time.Time) (Config, error) {
	start, err := result.ParseDay(strings.TrimSpace(o.start))
	if err != nil {
		return Config{}, fmt.Errorf("invalid --start %q (want YYYY-MM-DD): %w", o.start, err)
	}

	end := result.Day(now)
	if strings.TrimSpace(o.end) != "" {
		end, err = result.ParseDay(strings.TrimSpace(o.end))
		if err != nil {
			return Config{}, fmt.Errorf("invalid --end %q (want YYYY-MM-DD): %w", o.end, err)
		}
	}

	level, err := logger.ParseLevel(o.logLevel)
	if err != nil {
		return Config{}, err
	}

	var channel notifier.Channel
	if name := strings.ToLower(strings.TrimSpace(o.notify)); name != "" {
		channel, err = notifier.ParseChannel(name)
		if err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		Start:         start,
		End:           end,
		Output:        strings.TrimSpace(o.output),
		SQLitePath:    strings.TrimSpace(o.sqlite),
		CachePath:     strings.TrimSpace(o.cache),
		CacheTTL:      o.cacheTTL,
		Concurrency:   o.concurrency,
		Timeout:       o.timeout,
		BaseURL:       strings.TrimSpace(o.baseURL),
		TableSelector: o.selector,
		Format:        OutputFormat(strings.ToLower(o.format)),
		LogLevel:      level,
		Notify:        channel,
		DryRun:        o.dryRun,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings. A start date after the end date is allowed and
// simply schedules no periods.
func (c *Config) Validate() error {
	if c.Output == "" {
		return fmt.Errorf("--output is required")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("invalid concurrency: %d (must be at least 1)", c.Concurrency)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout: %v (must be positive)", c.Timeout)
	}
	if c.CachePath != "" && c.CacheTTL <= 0 {
		return fmt.Errorf("invalid cache TTL: %v (must be positive)", c.CacheTTL)
	}
	if err := validateFormat(c.Format); err != nil {
		return err
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base URL: %q", c.BaseURL)
	}

	return nil
}

func validateFormat(format OutputFormat) error {
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", format)
	}
	return nil
}
