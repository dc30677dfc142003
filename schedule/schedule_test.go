package schedule_test

import (
	"errors"
	"testing"
	"time"

	"github.com/meenmo/cdscore/calendar"
	"github.com/meenmo/cdscore/cdserr"
	"github.com/meenmo/cdscore/dateinterval"
	"github.com/meenmo/cdscore/schedule"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func targetCalendar(t *testing.T) *calendar.Calendar {
	t.Helper()
	cal, err := calendar.Get(string(calendar.TARGET))
	if err != nil {
		t.Fatalf("calendar.Get: %v", err)
	}
	return cal
}

func TestBuildQuarterlyEvenlyDivides(t *testing.T) {
	t.Parallel()
	periods, err := schedule.Build(schedule.Params{
		EffectiveDate: date(2026, 3, 20),
		MaturityDate:  date(2027, 3, 20),
		Interval:      dateinterval.Interval{Period: 3, Unit: dateinterval.Month},
		StubLocation:  schedule.StubBack,
		StubType:      schedule.ShortStub,
		Calendar:      targetCalendar(t),
		BadDayConv:    calendar.ModifiedFollowing,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(periods) != 4 {
		t.Fatalf("got %d periods, want 4", len(periods))
	}
	if !periods[0].AccrualStart.Equal(date(2026, 3, 20)) {
		t.Fatalf("first accrual start = %s", periods[0].AccrualStart.Format("2006-01-02"))
	}
	if !periods[len(periods)-1].AccrualEnd.Equal(date(2027, 3, 20)) {
		t.Fatalf("last accrual end = %s", periods[len(periods)-1].AccrualEnd.Format("2006-01-02"))
	}
	for i := 1; i < len(periods); i++ {
		if !periods[i].AccrualStart.Equal(periods[i-1].AccrualEnd) {
			t.Fatalf("periods not contiguous at %d: %+v / %+v", i, periods[i-1], periods[i])
		}
	}
}

func TestBuildShortStubAtBack(t *testing.T) {
	t.Parallel()
	// 7 months effective-to-maturity with a 3M interval leaves a 1-month remainder.
	periods, err := schedule.Build(schedule.Params{
		EffectiveDate: date(2026, 1, 1),
		MaturityDate:  date(2026, 8, 1),
		Interval:      dateinterval.Interval{Period: 3, Unit: dateinterval.Month},
		StubLocation:  schedule.StubBack,
		StubType:      schedule.ShortStub,
		Calendar:      targetCalendar(t),
		BadDayConv:    calendar.ModifiedFollowing,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(periods) != 3 {
		t.Fatalf("got %d periods, want 3 (2 full quarters + 1 short stub), got %+v", len(periods), periods)
	}
	last := periods[len(periods)-1]
	stubMonths := int(last.AccrualEnd.Month()) - int(last.AccrualStart.Month())
	if last.AccrualStart.Year() != last.AccrualEnd.Year() {
		stubMonths += 12
	}
	if stubMonths != 1 {
		t.Fatalf("expected 1-month short stub at back, got %d months (%+v)", stubMonths, last)
	}
}

func TestBuildLongStubMergesRemainderAtFront(t *testing.T) {
	t.Parallel()
	periods, err := schedule.Build(schedule.Params{
		EffectiveDate: date(2026, 1, 1),
		MaturityDate:  date(2026, 8, 1),
		Interval:      dateinterval.Interval{Period: 3, Unit: dateinterval.Month},
		StubLocation:  schedule.StubFront,
		StubType:      schedule.LongStub,
		Calendar:      targetCalendar(t),
		BadDayConv:    calendar.ModifiedFollowing,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(periods) != 2 {
		t.Fatalf("got %d periods, want 2 (1 long stub + 1 full quarter), got %+v", len(periods), periods)
	}
	first := periods[0]
	if !first.AccrualStart.Equal(date(2026, 1, 1)) {
		t.Fatalf("first accrual start = %s", first.AccrualStart.Format("2006-01-02"))
	}
}

func TestBuildRejectsMaturityNotAfterEffective(t *testing.T) {
	t.Parallel()
	_, err := schedule.Build(schedule.Params{
		EffectiveDate: date(2026, 3, 20),
		MaturityDate:  date(2026, 3, 20),
		Interval:      dateinterval.Interval{Period: 3, Unit: dateinterval.Month},
		Calendar:      targetCalendar(t),
	})
	if !errors.Is(err, cdserr.InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestBuildRejectsNilCalendar(t *testing.T) {
	t.Parallel()
	_, err := schedule.Build(schedule.Params{
		EffectiveDate: date(2026, 3, 20),
		MaturityDate:  date(2027, 3, 20),
		Interval:      dateinterval.Interval{Period: 3, Unit: dateinterval.Month},
	})
	if !errors.Is(err, cdserr.InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}
