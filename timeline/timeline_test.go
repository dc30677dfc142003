package timeline_test

import (
	"testing"
	"time"

	"github.com/meenmo/cdscore/timeline"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildDedupsAndSorts(t *testing.T) {
	t.Parallel()
	start := date(2026, 1, 1)
	end := date(2026, 12, 31)
	got := timeline.Build(start, end,
		[]time.Time{date(2026, 6, 1), date(2026, 3, 1)},
		[]time.Time{date(2026, 6, 1), date(2026, 9, 1)},
	)
	want := []time.Time{start, date(2026, 3, 1), date(2026, 6, 1), date(2026, 9, 1), end}
	if len(got) != len(want) {
		t.Fatalf("got %d dates, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("index %d: got %s want %s", i, got[i].Format("2006-01-02"), want[i].Format("2006-01-02"))
		}
	}
}

func TestBuildExcludesOutOfRangeDates(t *testing.T) {
	t.Parallel()
	start := date(2026, 1, 1)
	end := date(2026, 6, 30)
	got := timeline.Build(start, end, []time.Time{date(2025, 12, 1), date(2026, 12, 1)})
	if len(got) != 2 {
		t.Fatalf("expected only start/end, got %v", got)
	}
}

func TestBracket(t *testing.T) {
	t.Parallel()
	dates := []time.Time{date(2026, 1, 1), date(2026, 4, 1), date(2026, 7, 1), date(2026, 10, 1)}
	cases := []struct {
		target time.Time
		want   int
	}{
		{date(2025, 12, 1), 0},
		{date(2026, 1, 1), 0},
		{date(2026, 5, 1), 1},
		{date(2026, 10, 1), 2},
		{date(2027, 1, 1), 2},
	}
	for _, c := range cases {
		if got := timeline.Bracket(dates, c.target); got != c.want {
			t.Fatalf("Bracket(%s) = %d, want %d", c.target.Format("2006-01-02"), got, c.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	dates := []time.Time{date(2026, 1, 1), date(2026, 4, 1), date(2026, 7, 1), date(2026, 10, 1)}
	got := timeline.Truncate(dates, date(2026, 2, 1), date(2026, 8, 1))
	want := []time.Time{date(2026, 4, 1), date(2026, 7, 1)}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("index %d: got %s want %s", i, got[i].Format("2006-01-02"), want[i].Format("2006-01-02"))
		}
	}
}
