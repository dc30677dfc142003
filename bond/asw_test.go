package bond_test

import (
	"math"
	"testing"
	"time"

	"github.com/meenmo/cdscore/bond"
	"github.com/meenmo/cdscore/calendar"
	"github.com/meenmo/cdscore/dateinterval"
	"github.com/meenmo/cdscore/daycount"
	"github.com/meenmo/cdscore/instruments/bonds"
	"github.com/meenmo/cdscore/ratecurve"
)

func flatDiscountCurve(t *testing.T, settlement time.Time, flatRate float64, cal calendar.CalendarID) *ratecurve.Curve {
	t.Helper()
	dfs := make(map[time.Time]float64)
	for y := 1; y <= 10; y++ {
		d := settlement.AddDate(y, 0, 0)
		years := float64(y)
		dfs[d] = math.Exp(-flatRate * years)
	}
	return ratecurve.NewCurveFromDFs(settlement, dfs, cal, 1)
}

func TestComputeASWSpread_FlatCurveParBond(t *testing.T) {
	t.Parallel()

	settlement := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	disc := flatDiscountCurve(t, settlement, 0.03, calendar.TARGET)

	// The feed arrives as Bloomberg-style cents, as it would from a bond
	// master holding coupon/principal in integer minor units.
	maturity := settlement.AddDate(5, 0, 0)
	var centsFeed []bonds.CashflowCents
	for y := 1; y <= 5; y++ {
		d := settlement.AddDate(y, 0, 0)
		principalCents := int64(0)
		if y == 5 {
			principalCents = 100_00
		}
		centsFeed = append(centsFeed, bonds.CashflowCents{Date: d, CouponCents: 3_00, PrincipalCents: principalCents})
	}
	cfs := bonds.ToCashflows(centsFeed)

	floatLeg := bond.FloatLegConvention{
		ResetInterval: dateinterval.Interval{Period: 3, Unit: dateinterval.Month},
		DayCount:      daycount.Act360,
		Calendar:      mustCalendar(t, calendar.TARGET),
		BadDayConv:    calendar.ModifiedFollowing,
	}

	got, err := bond.ComputeASWSpread(bond.ASWInput{
		SettlementDate: settlement,
		DirtyPrice:     100.0,
		Notional:       100.0,
		Cashflows:      cfs,
		FloatLeg:       floatLeg,
		DiscountCurve:  disc,
	})
	if err != nil {
		t.Fatalf("ComputeASWSpread: %v", err)
	}
	if got.PV01 <= 0 {
		t.Fatalf("expected positive PV01, got %v", got.PV01)
	}
	if math.IsNaN(got.SpreadBP) || math.IsInf(got.SpreadBP, 0) {
		t.Fatalf("expected finite ASW spread, got %v", got.SpreadBP)
	}
	_ = maturity
}

func TestComputeASWSpread_RejectsMissingCurve(t *testing.T) {
	t.Parallel()

	_, err := bond.ComputeASWSpread(bond.ASWInput{
		SettlementDate: time.Now(),
		Notional:       100,
		Cashflows:      []bond.Cashflow{{Date: time.Now().AddDate(1, 0, 0), Coupon: 1}},
	})
	if err == nil {
		t.Fatalf("expected error for missing discount curve")
	}
}

func mustCalendar(t *testing.T, id calendar.CalendarID) *calendar.Calendar {
	t.Helper()
	cal, err := calendar.Get(string(id))
	if err != nil {
		t.Fatalf("calendar.Get(%s): %v", id, err)
	}
	return cal
}
