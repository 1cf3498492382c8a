package cli

import (
	"testing"
	"time"

	"github.com/pfrederiksen/animalitos/internal/logger"
	"github.com/pfrederiksen/animalitos/internal/notifier"
	"github.com/pfrederiksen/animalitos/internal/schedule"
)

func defaultOptions() scrapeOptions {
	return scrapeOptions{
		start:       DefaultStart,
		output:      "results.csv",
		concurrency: 8,
		timeout:     30 * time.Second,
		cacheTTL:    time.Hour,
		baseURL:     schedule.DefaultBaseURL,
		format:      "text",
		logLevel:    "info",
	}
}

func TestScrapeOptionsConfig(t *testing.T) {
	now := time.Date(2024, 4, 1, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		modify  func(o *scrapeOptions)
		wantErr bool
		check   func(t *testing.T, c Config)
	}{
		{
			name: "defaults end today",
			check: func(t *testing.T, c Config) {
				if want := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC); !c.Start.Equal(want) {
					t.Errorf("Start = %v, want %v", c.Start, want)
				}
				if want := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC); !c.End.Equal(want) {
					t.Errorf("End = %v, want %v", c.End, want)
				}
				if c.Format != FormatText || c.LogLevel != logger.LevelInfo {
					t.Errorf("Format = %q, LogLevel = %q", c.Format, c.LogLevel)
				}
			},
		},
		{
			name: "explicit range and json",
			modify: func(o *scrapeOptions) {
				o.start = " 2024-03-04 "
				o.end = "2024-03-24"
				o.format = "JSON"
				o.logLevel = "debug"
				o.notify = "Telegram"
			},
			check: func(t *testing.T, c Config) {
				if c.End.Format("2006-01-02") != "2024-03-24" {
					t.Errorf("End = %v", c.End)
				}
				if c.Format != FormatJSON || c.LogLevel != logger.LevelDebug {
					t.Errorf("Format = %q, LogLevel = %q", c.Format, c.LogLevel)
				}
				if c.Notify != notifier.ChannelTelegram {
					t.Errorf("Notify = %q, want telegram", c.Notify)
				}
			},
		},
		{
			name:   "start after end is allowed",
			modify: func(o *scrapeOptions) { o.start, o.end = "2024-03-10", "2024-03-01" },
		},
		{name: "bad start", modify: func(o *scrapeOptions) { o.start = "2024/03/04" }, wantErr: true},
		{name: "bad end", modify: func(o *scrapeOptions) { o.end = "yesterday" }, wantErr: true},
		{name: "empty output", modify: func(o *scrapeOptions) { o.output = " " }, wantErr: true},
		{name: "zero concurrency", modify: func(o *scrapeOptions) { o.concurrency = 0 }, wantErr: true},
		{name: "negative timeout", modify: func(o *scrapeOptions) { o.timeout = -time.Second }, wantErr: true},
		{name: "cache without ttl", modify: func(o *scrapeOptions) { o.cache, o.cacheTTL = "pages.json", 0 }, wantErr: true},
		{name: "unknown notify channel", modify: func(o *scrapeOptions) { o.notify = "sms" }, wantErr: true},
		{name: "unknown format", modify: func(o *scrapeOptions) { o.format = "yaml" }, wantErr: true},
		{name: "unknown log level", modify: func(o *scrapeOptions) { o.logLevel = "trace" }, wantErr: true},
		{name: "relative base url", modify: func(o *scrapeOptions) { o.baseURL = "/resultados" }, wantErr: true},
		{name: "base url without host", modify: func(o *scrapeOptions) { o.baseURL = "https://" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultOptions()
			if tt.modify != nil {
				tt.modify(&opts)
			}

			cfg, err := opts.config(now)
			if tt.wantErr {
				if err == nil {
					t.Errorf("config() expected error, got %+v", cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("config() error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
