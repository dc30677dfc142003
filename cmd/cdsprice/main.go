// Command cdsprice demonstrates pricing a single-name CDS trade against a
// hardcoded discount curve and survival curve, printing NPV, par spread,
// and defaulted accrued interest — the CDS analogue of the teacher's
// cmd/swapprice demo.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/meenmo/cdscore/calendar"
	"github.com/meenmo/cdscore/cds"
	"github.com/meenmo/cdscore/cdserr"
	"github.com/meenmo/cdscore/curve"
	"github.com/meenmo/cdscore/dateinterval"
	"github.com/meenmo/cdscore/daycount"
	"github.com/meenmo/cdscore/feeleg"
)

func main() {
	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	effective := today
	maturity := today.AddDate(5, 0, 0)

	discountCurve, err := curve.New(today, []curve.Point{
		{Date: today.AddDate(1, 0, 0), Rate: 0.030},
		{Date: today.AddDate(5, 0, 0), Rate: 0.032},
		{Date: today.AddDate(10, 0, 0), Rate: 0.034},
	}, daycount.Continuous, daycount.Act365F)
	if err != nil {
		fail(err)
	}

	survivalCurve, err := curve.New(today, []curve.Point{
		{Date: today.AddDate(1, 0, 0), Rate: 0.015},
		{Date: today.AddDate(5, 0, 0), Rate: 0.018},
		{Date: today.AddDate(10, 0, 0), Rate: 0.021},
	}, daycount.Continuous, daycount.Act365F)
	if err != nil {
		fail(err)
	}

	cal, err := calendar.Get(string(calendar.TARGET))
	if err != nil {
		fail(err)
	}

	trade, err := cds.New(cds.TradeParams{
		Today:             today,
		StepinDate:        today.AddDate(0, 0, 1),
		ValueDate:         today.AddDate(0, 0, 3),
		EffectiveDate:     effective,
		MaturityDate:      maturity,
		CouponRate:        0.01,
		Notional:          10_000_000,
		RecoveryRate:      0.4,
		DiscountCurve:     discountCurve,
		SurvivalCurve:     survivalCurve,
		CouponInterval:    dateinterval.Interval{Period: 3, Unit: dateinterval.Month},
		Calendar:          cal,
		BadDayConv:        calendar.ModifiedFollowing,
		DayCount:          daycount.Act360,
		AccrualPayConv:    feeleg.AccrualPayAll,
		PayAccruedAtStart: true,
	})
	if err != nil {
		fail(err)
	}

	price, err := trade.Price()
	if err != nil {
		fail(err)
	}
	parSpread, err := trade.ParSpread()
	if err != nil {
		fail(err)
	}
	days, accrued, err := trade.DefaultedAccrual(today, today.AddDate(0, 0, -1))
	if err != nil {
		fail(err)
	}

	fmt.Printf("Trade effective=%s maturity=%s coupon=%.4f notional=%.0f\n",
		effective.Format("2006-01-02"), maturity.Format("2006-01-02"), 0.01, 10_000_000.0)
	fmt.Printf("  NPV:                 %.2f\n", price)
	fmt.Printf("  Par spread:          %.6f (%.2f bp)\n", parSpread, parSpread*1e4)
	fmt.Printf("  Defaulted accrual:   %d days, %.2f\n", days, accrued)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "cdsprice:", err)
	if errors.Is(err, cdserr.InvalidArgument) {
		os.Exit(2)
	}
	os.Exit(1)
}
