// Package stats summarizes collected draws: how often each animal came out
// overall and per draw hour.
package stats

import (
	"sort"

	"github.com/pfrederiksen/animalitos/internal/result"
)

// AnimalShare is the number of draws of one animal and its share of all draws
type AnimalShare struct {
	Animal  string  `json:"animal"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// HourBreakdown counts the animals drawn at one hour label
type HourBreakdown struct {
	Hour    string        `json:"hour"`
	Total   int           `json:"total"`
	Animals []AnimalShare `json:"animals"`
}

// Frequencies returns every animal's count and percentage, most frequent first.
// Ties are ordered by animal name.
func Frequencies(results []result.LotteryResult) []AnimalShare {
	counts := make(map[string]int)
	total := 0
	for _, r := range results {
		if r.IsSentinel() {
			continue
		}
		counts[r.Animal]++
		total++
	}
	return shares(counts, total)
}

// ByHour groups the draws by hour label, in order of first appearance
func ByHour(results []result.LotteryResult) []HourBreakdown {
	var order []string
	counts := make(map[string]map[string]int)
	totals := make(map[string]int)

	for _, r := range results {
		if r.IsSentinel() {
			continue
		}
		if _, ok := counts[r.Hour]; !ok {
			counts[r.Hour] = make(map[string]int)
			order = append(order, r.Hour)
		}
		counts[r.Hour][r.Animal]++
		totals[r.Hour]++
	}

	breakdowns := make([]HourBreakdown, 0, len(order))
	for _, hour := range order {
		breakdowns = append(breakdowns, HourBreakdown{
			Hour:    hour,
			Total:   totals[hour],
			Animals: shares(counts[hour], totals[hour]),
		})
	}
	return breakdowns
}

func shares(counts map[string]int, total int) []AnimalShare {
	out := make([]AnimalShare, 0, len(counts))
	for animal, count := range counts {
		out = append(out, AnimalShare{
			Animal:  animal,
			Count:   count,
			Percent: float64(count) / float64(total) * 100,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Animal < out[j].Animal
	})
	return out
}
