package ratecurve_test

import (
	"math"
	"testing"
	"time"

	"github.com/meenmo/cdscore/calendar"
	"github.com/meenmo/cdscore/ratecurve"
)

func TestToCurvePreservesDiscountFactors(t *testing.T) {
	t.Parallel()
	settlement := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	quotes := map[string]float64{
		"1Y": 3.0,
		"5Y": 3.5,
		"10Y": 3.8,
	}
	rc := ratecurve.BuildCurve(settlement, quotes, calendar.TARGET, 3)

	c, err := rc.ToCurve()
	if err != nil {
		t.Fatalf("ToCurve: %v", err)
	}
	if !c.BaseDate().Equal(settlement) {
		t.Fatalf("got base date %s, want %s", c.BaseDate(), settlement)
	}

	for _, d := range rc.PaymentDates() {
		if !d.After(settlement) {
			continue
		}
		want := rc.DF(d)
		got := c.ZeroPrice(d)
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("at %s: got DF %v, want %v", d.Format("2006-01-02"), got, want)
		}
	}
}

func TestToCurveRejectsEmptyGrid(t *testing.T) {
	t.Parallel()
	settlement := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rc := ratecurve.NewCurveFromDFs(settlement, map[time.Time]float64{settlement: 1.0}, calendar.TARGET, 0)
	if _, err := rc.ToCurve(); err == nil {
		t.Fatalf("expected error when no payment dates are after settlement")
	}
}
