package daycount_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/meenmo/cdscore/cdserr"
	"github.com/meenmo/cdscore/daycount"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestYearFractionAct360(t *testing.T) {
	t.Parallel()
	frac, err := daycount.YearFraction(date(2026, 1, 1), date(2026, 7, 1), daycount.Act360)
	if err != nil {
		t.Fatalf("YearFraction: %v", err)
	}
	want := 181.0 / 360.0
	if math.Abs(frac-want) > 1e-12 {
		t.Fatalf("got %v want %v", frac, want)
	}
}

func TestYearFractionActActSplitsAtYearBoundary(t *testing.T) {
	t.Parallel()
	// 2024 is a leap year (366 days); 2025 is not.
	frac, err := daycount.YearFraction(date(2024, 12, 1), date(2025, 2, 1), daycount.ActAct)
	if err != nil {
		t.Fatalf("YearFraction: %v", err)
	}
	want := 31.0/366.0 + 31.0/365.0
	if math.Abs(frac-want) > 1e-12 {
		t.Fatalf("got %v want %v", frac, want)
	}
}

func TestThirty360NASDAsymmetricRule(t *testing.T) {
	t.Parallel()
	// start on the 31st rolls to 30; end on the 31st only rolls if start rolled too.
	frac, err := daycount.YearFraction(date(2026, 1, 31), date(2026, 3, 31), daycount.Thirty360)
	if err != nil {
		t.Fatalf("YearFraction: %v", err)
	}
	// d1: 31->30, d2: 31 stays 31 is wrong per NASD rule (d2 only rolls if d1==30 after adjustment)
	// d1 rolled to 30, so d2 rolls to 30 too.
	want := 60.0 / 360.0
	if math.Abs(frac-want) > 1e-12 {
		t.Fatalf("got %v want %v", frac, want)
	}
}

func TestThirty360EConventionRollsBothUnconditionally(t *testing.T) {
	t.Parallel()
	frac, err := daycount.YearFraction(date(2026, 1, 15), date(2026, 1, 31), daycount.ThirtyE360)
	if err != nil {
		t.Fatalf("YearFraction: %v", err)
	}
	want := 15.0 / 360.0
	if math.Abs(frac-want) > 1e-12 {
		t.Fatalf("got %v want %v", frac, want)
	}
}

func TestYearFractionEffectiveRateAlwaysOne(t *testing.T) {
	t.Parallel()
	frac, err := daycount.YearFraction(date(2026, 1, 1), date(2026, 1, 2), daycount.EffectiveRate)
	if err != nil {
		t.Fatalf("YearFraction: %v", err)
	}
	if frac != 1.0 {
		t.Fatalf("got %v want 1.0", frac)
	}
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()
	for _, conv := range []daycount.Convention{
		daycount.Act360, daycount.Act365F, daycount.ActAct,
		daycount.Thirty360, daycount.ThirtyE360, daycount.EffectiveRate,
	} {
		parsed, err := daycount.Parse(conv.String())
		if err != nil {
			t.Fatalf("Parse(%s): %v", conv, err)
		}
		if parsed != conv {
			t.Fatalf("round trip mismatch: %v != %v", parsed, conv)
		}
	}
}

func TestParseUnrecognizedConvention(t *testing.T) {
	t.Parallel()
	_, err := daycount.Parse("ACT/252")
	if !errors.Is(err, cdserr.InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestConvertCompoundRateContinuousToAnnual(t *testing.T) {
	t.Parallel()
	start, end := date(2026, 1, 1), date(2027, 1, 1)
	annual, err := daycount.ConvertCompoundRate(0.05, daycount.Continuous, daycount.Act365F, daycount.Annual, daycount.Act365F, start, end)
	if err != nil {
		t.Fatalf("ConvertCompoundRate: %v", err)
	}
	want := math.Exp(0.05) - 1
	if math.Abs(annual-want) > 1e-9 {
		t.Fatalf("got %v want %v", annual, want)
	}
}

func TestToFromContinuousRoundTripPeriodic(t *testing.T) {
	t.Parallel()
	cc, err := daycount.ToContinuousRate(0.04, daycount.Quarterly, 0.75)
	if err != nil {
		t.Fatalf("ToContinuousRate: %v", err)
	}
	back, err := daycount.FromContinuousRate(cc, daycount.Quarterly, 0.75)
	if err != nil {
		t.Fatalf("FromContinuousRate: %v", err)
	}
	if math.Abs(back-0.04) > 1e-12 {
		t.Fatalf("round trip mismatch: got %v want 0.04", back)
	}
}

func TestToContinuousRateDiscountFactorBasisRejectsNonPositive(t *testing.T) {
	t.Parallel()
	_, err := daycount.ToContinuousRate(0, daycount.DiscountFactorBasis, 1.0)
	if !errors.Is(err, cdserr.CurveDefective) {
		t.Fatalf("expected CurveDefective, got %v", err)
	}
}
