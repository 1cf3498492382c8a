// Package cli implements the command-line interface for animalitos.
//
// The scrape command schedules one results page per week of a date range,
// collects them with a bounded number of concurrent fetches, writes the merged
// draws to CSV (and optionally SQLite) and prints a run report as text or JSON.
// The stats command reads a results CSV back and reports how often each animal
// was drawn.
package cli
