package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/animalitos/internal/collector"
	"github.com/pfrederiksen/animalitos/internal/logger"
	"github.com/pfrederiksen/animalitos/internal/result"
	"github.com/pfrederiksen/animalitos/internal/stats"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// RunOutput contains the outcome of a scrape run
type RunOutput struct {
	*collector.Report
	Start   string                  `json:"start"`
	End     string                  `json:"end"`
	Output  string                  `json:"output"`
	SQLite  string                  `json:"sqlite,omitempty"`
	Metrics *logger.MetricsSnapshot `json:"metrics,omitempty"`
}

// StatsOutput contains draw frequencies read from a results file
type StatsOutput struct {
	Input   string                `json:"input"`
	Total   int                   `json:"total"`
	Animals []stats.AnimalShare   `json:"animals"`
	ByHour  []stats.HourBreakdown `json:"by_hour"`
}

// WriteRunOutput writes the run report in the specified format
func WriteRunOutput(w io.Writer, out *RunOutput, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, out)
	case FormatText:
		return writeRunText(w, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteStatsOutput writes draw frequencies in the specified format
func WriteStatsOutput(w io.Writer, out *StatsOutput, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, out)
	case FormatText:
		return writeStatsText(w, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeRunText(w io.Writer, out *RunOutput) error {
	r := out.Report

	fmt.Fprintf(w, "Run %s: %s to %s\n", r.RunID, out.Start, out.End)
	fmt.Fprintf(w, "Periods: %d scheduled, %d collected, %d failed", r.Periods, r.Succeeded, r.Failed())
	if r.Skipped > 0 {
		fmt.Fprintf(w, " (%d skipped)", r.Skipped)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Results: %d written to %s\n", r.Results, out.Output)
	if out.SQLite != "" {
		fmt.Fprintf(w, "SQLite: %s\n", out.SQLite)
	}

	if len(r.Failures) > 0 {
		fmt.Fprintln(w, "\nFailed periods:")
		for _, f := range r.Failures {
			fmt.Fprintf(w, "  %s: %v\n", f.Period.Start.Format(result.DateLayout), f.Err)
		}
	}

	fmt.Fprintf(w, "\n%s in %s\n", r.Summary(), r.Duration.Round(time.Millisecond))
	return nil
}

func writeStatsText(w io.Writer, out *StatsOutput) error {
	if out.Total == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "Animal frequencies (%d draws):\n", out.Total)
	writeShares(w, out.Animals)

	for _, h := range out.ByHour {
		fmt.Fprintf(w, "\n%s (%d draws):\n", h.Hour, h.Total)
		writeShares(w, h.Animals)
	}

	return nil
}

func writeShares(w io.Writer, shares []stats.AnimalShare) {
	width := 0
	for _, s := range shares {
		width = max(width, len([]rune(s.Animal)))
	}
	for _, s := range shares {
		pad := width - len([]rune(s.Animal))
		fmt.Fprintf(w, "  %s%*s %5d %6.2f%%\n", s.Animal, pad, "", s.Count, s.Percent)
	}
}
