package schedule

import (
	"slices"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeeks(t *testing.T) {
	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		wantCount int
	}{
		{"single day range", date(2024, 3, 4), date(2024, 3, 4), 1},
		{"end before second period", date(2024, 3, 4), date(2024, 3, 10), 1},
		{"end on second period", date(2024, 3, 4), date(2024, 3, 11), 2},
		{"across leap day", date(2024, 2, 26), date(2024, 3, 31), 5},
		{"default two year range", date(2022, 1, 1), date(2024, 4, 1), 118},
		{"start after end", date(2024, 3, 11), date(2024, 3, 4), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slices.Collect(Weeks(tt.start, tt.end))
			if len(got) != tt.wantCount {
				t.Fatalf("Weeks() yielded %d periods, want %d", len(got), tt.wantCount)
			}

			if tt.wantCount > 0 {
				span := int(tt.end.Sub(tt.start).Hours() / 24)
				if want := span/7 + 1; len(got) != want {
					t.Errorf("Weeks() yielded %d periods, floor(days/7)+1 = %d", len(got), want)
				}
				if !got[0].Equal(tt.start) {
					t.Errorf("first period = %v, want %v", got[0], tt.start)
				}
			}

			for i := 1; i < len(got); i++ {
				if diff := got[i].Sub(got[i-1]); diff != 7*24*time.Hour {
					t.Errorf("periods %d and %d are %v apart, want 7 days", i-1, i, diff)
				}
			}
			for _, d := range got {
				if d.After(tt.end) {
					t.Errorf("period %v is after end %v", d, tt.end)
				}
			}
		})
	}
}

func TestWeeks_Restartable(t *testing.T) {
	seq := Weeks(date(2024, 1, 1), date(2024, 2, 1))

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if !slices.Equal(first, second) {
		t.Errorf("second iteration = %v, want %v", second, first)
	}

	// Stopping early must not disturb a later full pass.
	for range seq {
		break
	}
	if third := slices.Collect(seq); len(third) != len(first) {
		t.Errorf("iteration after early stop yielded %d, want %d", len(third), len(first))
	}
}

func TestPageURL(t *testing.T) {
	tests := []struct {
		base string
		day  time.Time
		want string
	}{
		{DefaultBaseURL, date(2024, 3, 4), "https://www.tuazar.com/loteria/animalitos/resultados/2024/03/04/"},
		{"http://localhost:8080/", date(2022, 11, 28), "http://localhost:8080/2022/11/28/"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := PageURL(tt.base, tt.day); got != tt.want {
				t.Errorf("PageURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPeriods(t *testing.T) {
	periods := slices.Collect(Periods("http://example.test", date(2024, 3, 4), date(2024, 3, 18)))
	if len(periods) != 3 {
		t.Fatalf("Periods() yielded %d, want 3", len(periods))
	}
	if periods[2].URL != "http://example.test/2024/03/18/" {
		t.Errorf("last period URL = %q", periods[2].URL)
	}
	if !periods[1].Start.Equal(date(2024, 3, 11)) {
		t.Errorf("second period start = %v, want 2024-03-11", periods[1].Start)
	}
}
