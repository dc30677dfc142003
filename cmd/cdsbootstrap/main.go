// Command cdsbootstrap demonstrates building a risk-free discount curve and
// bootstrapping a CDS hazard-rate survival curve from a handful of par
// spread quotes, in the same hardcoded-trade/fmt.Printf demo style as the
// teacher's cmd/swapprice entry point.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/meenmo/cdscore/bootstrap"
	"github.com/meenmo/cdscore/calendar"
	"github.com/meenmo/cdscore/cdserr"
	"github.com/meenmo/cdscore/dateinterval"
	"github.com/meenmo/cdscore/daycount"
	"github.com/meenmo/cdscore/feeleg"
	"github.com/meenmo/cdscore/ratecurve"
)

func main() {
	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	quotes := map[string]float64{
		"1Y": 3.2,
		"2Y": 3.3,
		"5Y": 3.5,
		"10Y": 3.7,
	}
	riskFreeCurve := ratecurve.BuildCurve(today, quotes, calendar.GT, 2)
	discountCurve, err := riskFreeCurve.ToCurve()
	if err != nil {
		fail(err)
	}

	cal, err := calendar.Get(string(calendar.TARGET))
	if err != nil {
		fail(err)
	}

	benchmarks := []bootstrap.Benchmark{
		{MaturityDate: today.AddDate(1, 0, 0), CouponRate: 0.01},
		{MaturityDate: today.AddDate(3, 0, 0), CouponRate: 0.012},
		{MaturityDate: today.AddDate(5, 0, 0), CouponRate: 0.015},
		{MaturityDate: today.AddDate(10, 0, 0), CouponRate: 0.018},
	}

	survivalCurve, err := bootstrap.CleanSpreadCurve(bootstrap.Params{
		Today:          today,
		StepinDate:     today.AddDate(0, 0, 1),
		ValueDate:      today.AddDate(0, 0, 3),
		EffectiveDate:  today,
		Benchmarks:     benchmarks,
		RecoveryRate:   0.4,
		Notional:       10_000_000,
		DiscountCurve:  discountCurve,
		CouponInterval: dateinterval.Interval{Period: 3, Unit: dateinterval.Month},
		Calendar:       cal,
		BadDayConv:     calendar.ModifiedFollowing,
		DayCount:       daycount.Act360,
		PayDelay:       0,
		AccrualPayConv: feeleg.AccrualPayAll,
	})
	if err != nil {
		fail(err)
	}

	fmt.Println("Bootstrapped survival curve pillars:")
	for _, pt := range survivalCurve.Points() {
		fmt.Printf("  %s  hazard=%.6f  survival=%.6f\n", pt.Date.Format("2006-01-02"), pt.Rate, survivalCurve.ZeroPrice(pt.Date))
	}

	if violations := bootstrap.ForwardHazardCheck(survivalCurve); len(violations) > 0 {
		fmt.Println("Warning: negative forward hazard between pillars at:", violations)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "cdsbootstrap:", err)
	if errors.Is(err, cdserr.InvalidArgument) {
		os.Exit(2)
	}
	os.Exit(1)
}
