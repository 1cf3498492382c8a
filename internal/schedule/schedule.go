// Package schedule enumerates the weekly periods of a date range and the
// results page URL of each period.
package schedule

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/pfrederiksen/animalitos/internal/result"
)

// DefaultBaseURL is the results listing the period pages hang off
const DefaultBaseURL = "https://www.tuazar.com/loteria/animalitos/resultados"

// PeriodLength is the span covered by one results page
const PeriodLength = 7

// Period is one weekly unit of work identified by its start date
type Period struct {
	Start time.Time
	URL   string
}

// Weeks yields period start dates every 7 days from start up to and including end.
// The sequence is empty when start is after end. Each call to the returned
// sequence starts over from start.
func Weeks(start, end time.Time) iter.Seq[time.Time] {
	start, end = result.Day(start), result.Day(end)
	return func(yield func(time.Time) bool) {
		for d := start; !d.After(end); d = d.AddDate(0, 0, PeriodLength) {
			if !yield(d) {
				return
			}
		}
	}
}

// PageURL builds the results page URL for the period starting on day
func PageURL(baseURL string, day time.Time) string {
	return fmt.Sprintf("%s/%04d/%02d/%02d/", strings.TrimRight(baseURL, "/"), day.Year(), int(day.Month()), day.Day())
}

// Periods yields one Period per week of the range with its page URL
func Periods(baseURL string, start, end time.Time) iter.Seq[Period] {
	return func(yield func(Period) bool) {
		for d := range Weeks(start, end) {
			if !yield(Period{Start: d, URL: PageURL(baseURL, d)}) {
				return
			}
		}
	}
}
