// Package feeleg computes the fee (premium) leg PV of a CDS: the
// coupon-bearing payments the protection buyer makes, plus — when the
// contract pays accrued interest on default — the accrual-on-default
// integral.
//
// This is a direct translation of the ISDA CDS Standard Model's feeleg.c
// (JpmcdsFeeLegPV, FeePaymentPVWithTimeLine,
// JpmcdsAccrualOnDefaultPVWithTimeLine, JpmcdsFeeLegFlows, FeeLegAI). The
// accrual-on-default integrand implements the form that is actually live
// in the reference source: a second "Markit proposed fix" form is present
// there only as a comment, never compiled into any release, so it is not
// reproduced here — see accrualOnDefaultPV's doc comment.
package feeleg

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/meenmo/cdscore/cashflow"
	"github.com/meenmo/cdscore/cdserr"
	"github.com/meenmo/cdscore/config"
	"github.com/meenmo/cdscore/curve"
	"github.com/meenmo/cdscore/daycount"
	"github.com/meenmo/cdscore/schedule"
	"github.com/meenmo/cdscore/timeline"
)

var log = logrus.WithField("component", "feeleg")

// AccrualPayConvention selects whether the fee leg pays accrued interest
// on default between coupon dates.
type AccrualPayConvention int

const (
	// AccrualPayNone: the fee leg only pays the full coupon if the name
	// has survived to the accrual end date.
	AccrualPayNone AccrualPayConvention = iota
	// AccrualPayAll: in addition to AccrualPayNone's payment, the fee leg
	// pays the accrued coupon up to the default date if default occurs
	// within the period.
	AccrualPayAll
)

// Params configures PV.
type Params struct {
	Today             time.Time
	StepinDate        time.Time
	ValueDate         time.Time
	Periods           []schedule.Period
	DayCount          daycount.Convention
	Notional          float64
	CouponRate        float64
	DiscountCurve     *curve.Curve
	SurvivalCurve     *curve.Curve
	AccrualPayConv    AccrualPayConvention
	ObsStartOfDay     bool
	PayAccruedAtStart bool // true => clean price (accrued subtracted)
}

// PV returns the fee leg's present value as of ValueDate.
func PV(p Params) (float64, error) {
	if len(p.Periods) == 0 {
		return 0, fmt.Errorf("feeleg: %w: no accrual periods", cdserr.InvalidArgument)
	}
	if p.DiscountCurve == nil || p.SurvivalCurve == nil {
		return 0, fmt.Errorf("feeleg: %w: nil curve", cdserr.InvalidArgument)
	}
	if p.ValueDate.Before(p.Today) {
		return 0, fmt.Errorf("feeleg: %w: value date before today", cdserr.InvalidArgument)
	}

	obsOffset := 0
	if p.ObsStartOfDay {
		obsOffset = -1
	}

	matDate := p.Periods[len(p.Periods)-1].AccrualEnd
	if p.ObsStartOfDay {
		matDate = matDate.AddDate(0, 0, -1)
	}
	if p.Today.After(matDate) || p.StepinDate.After(matDate) {
		return 0, nil
	}

	tl := riskyTimeLine(p.Periods[0].AccrualStart, p.Periods[len(p.Periods)-1].AccrualEnd, p.DiscountCurve, p.SurvivalCurve)

	var totalPV float64
	for _, period := range p.Periods {
		pv, err := feePaymentPV(p, period, tl, obsOffset)
		if err != nil {
			return 0, err
		}
		totalPV += pv
	}

	valueDateDF := p.DiscountCurve.ForwardZeroPrice(p.Today, p.ValueDate)
	if valueDateDF == 0 {
		return 0, fmt.Errorf("feeleg: %w: zero discount factor at value date", cdserr.NumericalFailure)
	}
	pv := totalPV / valueDateDF

	if p.PayAccruedAtStart {
		ai, err := AccruedInterest(p.Periods, p.DayCount, p.CouponRate, p.Notional, p.StepinDate)
		if err != nil {
			return 0, err
		}
		pv -= ai
	}
	return pv, nil
}

func feePaymentPV(p Params, period schedule.Period, tl []time.Time, obsOffset int) (float64, error) {
	if !period.AccrualEnd.After(p.StepinDate) {
		return 0, nil
	}

	accTime, err := daycount.YearFraction(period.AccrualStart, period.AccrualEnd, p.DayCount)
	if err != nil {
		return 0, err
	}
	amount := p.Notional * p.CouponRate * accTime
	survival := p.SurvivalCurve.ForwardZeroPrice(p.Today, period.AccrualEnd.AddDate(0, 0, obsOffset))
	discount := p.DiscountCurve.ForwardZeroPrice(p.Today, period.PayDate)
	pv := amount * survival * discount

	if p.AccrualPayConv == AccrualPayAll {
		accrual, err := accrualOnDefaultPV(
			p.Today,
			p.StepinDate.AddDate(0, 0, obsOffset),
			period.AccrualStart.AddDate(0, 0, obsOffset),
			period.AccrualEnd.AddDate(0, 0, obsOffset),
			amount,
			p.DiscountCurve,
			p.SurvivalCurve,
			tl,
		)
		if err != nil {
			return 0, err
		}
		pv += accrual
	}
	return pv, nil
}

// riskyTimeLine builds the merged timeline of discount- and survival-curve
// pillar dates spanning the whole fee leg once, for truncation per period.
func riskyTimeLine(start, end time.Time, discountCurve, survivalCurve *curve.Curve) []time.Time {
	var dates []time.Time
	for _, pt := range discountCurve.Points() {
		dates = append(dates, pt.Date)
	}
	for _, pt := range survivalCurve.Points() {
		dates = append(dates, pt.Date)
	}
	return timeline.Build(start, end, dates)
}

// accrualOnDefaultPV integrates the accrued-coupon-at-default PV over
// [startDate, endDate], walking the portion of tl truncated to that range.
//
// Accrual-on-default canonical form: this reproduces the form that is
// actually compiled and executed in the ISDA reference source. A second
// "Markit proposed fix" rewriting the same integral to avoid a repeated
// division by lambdaFwdRate exists in that source only as a comment and was
// never enabled in any shipped release, so it is not implemented here.
func accrualOnDefaultPV(today, stepinDate, startDate, endDate time.Time, amount float64, discountCurve, survivalCurve *curve.Curve, criticalDates []time.Time) (float64, error) {
	if !endDate.After(startDate) {
		return 0, fmt.Errorf("feeleg: %w: accrual end %s not after start %s", cdserr.InvalidArgument, endDate, startDate)
	}
	cfg := config.GetConfig()

	tl := timeline.Truncate(criticalDates, startDate, endDate)
	tl = mergeBoundaries(tl, startDate, endDate)

	subStartDate := startDate
	if stepinDate.After(subStartDate) {
		subStartDate = stepinDate
	}
	fullPeriodDays := endDate.Sub(startDate).Hours() / 24
	fullPeriod := fullPeriodDays / 365.0
	accRate := amount / fullPeriod

	s0 := survivalCurve.ForwardZeroPrice(today, subStartDate)
	maxTodaySubStart := subStartDate
	if today.After(subStartDate) {
		maxTodaySubStart = today
	}
	df0 := discountCurve.ForwardZeroPrice(today, maxTodaySubStart)
	t0 := (daysBetween(startDate, subStartDate) + cfg.AccrualHalfDayOffset) / 365.0

	var pv float64
	for _, d := range tl[1:] {
		if !d.After(stepinDate) {
			continue
		}
		s1 := survivalCurve.ForwardZeroPrice(today, d)
		df1 := discountCurve.ForwardZeroPrice(today, d)

		t1 := (daysBetween(startDate, d) + cfg.AccrualHalfDayOffset) / 365.0
		segment := t1 - t0

		lambda := math.Log(s0) - math.Log(s1)
		fwdRate := math.Log(df0) - math.Log(df1)
		lambdaFwdRate := lambda + fwdRate + cfg.EpsilonFloor

		var thisPV float64
		if math.Abs(lambdaFwdRate) > cfg.TaylorThreshold {
			thisPV = lambda * accRate * s0 * df0 * (
				(t0+segment/lambdaFwdRate)/lambdaFwdRate -
					(t1+segment/lambdaFwdRate)/lambdaFwdRate*s1/s0*df1/df0)
		} else {
			log.WithFields(logrus.Fields{"segment_end": d, "m": lambdaFwdRate}).Debug("accrual-on-default Taylor fallback engaged")
			thisPV = accrualTaylorSegment(lambda, accRate, s0, df0, lambdaFwdRate, segment, t0, t1)
		}
		pv += thisPV

		s0, df0, t0 = s1, df1, t1
		subStartDate = d
	}
	return pv, nil
}

// accrualTaylorSegment is the 5-term Taylor expansion around
// lambdaFwdRate = 0 used when the closed form's repeated division would
// otherwise amplify floating-point noise, reproducing the "numerical fix
// corresponding to the original formula" branch of
// JpmcdsAccrualOnDefaultPVWithTimeLine exactly.
func accrualTaylorSegment(lambda, accRate, s0, df0, m, t, t0, t1 float64) float64 {
	lambdaAccRate := lambda * s0 * df0 * accRate * 0.5
	pv1 := lambdaAccRate * (t0 + t1)

	lambdaAccRateM := lambdaAccRate * m / 3.0
	pv2 := -lambdaAccRateM * (t0 + 2*t1)

	lambdaAccRateM2 := lambdaAccRateM * m * 0.25
	pv3 := lambdaAccRateM2 * (t0 + 3*t1)

	lambdaAccRateM3 := lambdaAccRateM2 * m * 0.2
	pv4 := -lambdaAccRateM3 * (t0 + 4*t1)

	lambdaAccRateM4 := lambdaAccRateM3 * m / 6.0
	pv5 := lambdaAccRateM4 * (t0 + 5*t1)

	return pv1 + pv2 + pv3 + pv4 + pv5
}

func daysBetween(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}

func mergeBoundaries(tl []time.Time, start, end time.Time) []time.Time {
	out := append([]time.Time{start}, tl...)
	out = append(out, end)
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	dedup := out[:0]
	var last time.Time
	for i, d := range out {
		if i > 0 && d.Equal(last) {
			continue
		}
		dedup = append(dedup, d)
		last = d
	}
	return dedup
}

// FeeLegFlows returns the fee leg's non-contingent cash flows (the coupon
// amount for each period, ignoring default), at each period's pay date.
func FeeLegFlows(periods []schedule.Period, dc daycount.Convention, couponRate, notional float64) (cashflow.List, error) {
	flows := make(cashflow.List, 0, len(periods))
	for _, period := range periods {
		frac, err := daycount.YearFraction(period.AccrualStart, period.AccrualEnd, dc)
		if err != nil {
			return nil, err
		}
		flows = append(flows, cashflow.CashFlow{
			Date:   period.PayDate,
			Amount: frac * couponRate * notional,
		})
	}
	flows.Sort()
	return flows, nil
}

// AccruedInterest returns the accrued coupon as of asOf: zero if asOf falls
// at or before the first accrual start or at or after the last accrual end,
// zero if asOf falls exactly on an accrual start date, otherwise the
// day-count fraction from the bracketing accrual start to asOf times the
// coupon rate and notional.
func AccruedInterest(periods []schedule.Period, dc daycount.Convention, couponRate, notional float64, asOf time.Time) (float64, error) {
	if len(periods) == 0 {
		return 0, fmt.Errorf("feeleg: %w: no accrual periods", cdserr.InvalidArgument)
	}
	if !asOf.After(periods[0].AccrualStart) || !asOf.Before(periods[len(periods)-1].AccrualEnd) {
		return 0, nil
	}
	idx := sort.Search(len(periods), func(i int) bool { return periods[i].AccrualStart.After(asOf) }) - 1
	if idx < 0 {
		idx = 0
	}
	if periods[idx].AccrualStart.Equal(asOf) {
		return 0, nil
	}
	frac, err := daycount.YearFraction(periods[idx].AccrualStart, asOf, dc)
	if err != nil {
		return 0, err
	}
	return frac * couponRate * notional, nil
}
