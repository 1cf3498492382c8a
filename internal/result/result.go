package result

import (
	"sort"
	"time"
)

const (
	// Sentinel is the animal value used by the results site for a slot with no draw.
	Sentinel = "-"

	// DateLayout is the serialized form of a result date.
	DateLayout = "2006-01-02"
)

// LotteryResult represents one draw outcome
type LotteryResult struct {
	Date   time.Time `json:"date"`
	Hour   string    `json:"hour"`
	Animal string    `json:"animal"`
}

// IsSentinel reports whether the result marks a slot without a published draw
func (r LotteryResult) IsSentinel() bool {
	return r.Animal == Sentinel
}

// DateString returns the date formatted as YYYY-MM-DD
func (r LotteryResult) DateString() string {
	return r.Date.Format(DateLayout)
}

// Day normalizes t to midnight UTC of its calendar day.
// Results are keyed by Day values so equal calendar days compare equal.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// Store maps each day to the results drawn on it.
// A Store is not safe for concurrent use; the collector owns it from a single goroutine.
type Store struct {
	byDay map[time.Time][]LotteryResult
	count int
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		byDay: make(map[time.Time][]LotteryResult),
	}
}

// Add appends r to the bucket of its day, creating the bucket on first insert.
// Sentinel results are dropped and Add returns false for them.
func (s *Store) Add(r LotteryResult) bool {
	if r.IsSentinel() {
		return false
	}
	day := Day(r.Date)
	r.Date = day
	s.byDay[day] = append(s.byDay[day], r)
	s.count++
	return true
}

// Merge adds every result and returns how many were kept
func (s *Store) Merge(results []LotteryResult) int {
	kept := 0
	for _, r := range results {
		if s.Add(r) {
			kept++
		}
	}
	return kept
}

// Len returns the number of stored results across all days
func (s *Store) Len() int {
	return s.count
}

// Days returns the stored days in ascending order
func (s *Store) Days() []time.Time {
	days := make([]time.Time, 0, len(s.byDay))
	for day := range s.byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days
}

// OnDay returns the results stored for the given day
func (s *Store) OnDay(day time.Time) []LotteryResult {
	return s.byDay[Day(day)]
}

// Results returns every stored result in date order.
// Results of the same day keep their insertion order.
func (s *Store) Results() []LotteryResult {
	all := make([]LotteryResult, 0, s.count)
	for _, day := range s.Days() {
		all = append(all, s.byDay[day]...)
	}
	return all
}

// Latest returns the results of the most recent stored day, or nil if the store is empty
func (s *Store) Latest() []LotteryResult {
	days := s.Days()
	if len(days) == 0 {
		return nil
	}
	return s.byDay[days[len(days)-1]]
}
