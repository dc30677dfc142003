// Package protectionleg computes the contingent (protection) leg PV of a
// CDS: the expected discounted loss-given-default over the life of the
// contract. The integral is evaluated exactly under the joint assumption
// that both the discount curve and the survival curve are flat-forward
// between their own pillars (package curve), which lets each timeline
// segment be integrated in closed form rather than numerically.
//
// This is a direct translation of the ISDA CDS Standard Model's
// contingentleg.c (JpmcdsContingentLegPV, onePeriodIntegral,
// onePeriodIntegralAtPayDate): the closed-form branch, the Taylor-series
// fallback near a zero denominator, and the 1e-50 epsilon floor are
// reproduced exactly since spec.md calls them out as bit-exact conventions
// a reimplementation must preserve.
package protectionleg

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/meenmo/cdscore/cdserr"
	"github.com/meenmo/cdscore/config"
	"github.com/meenmo/cdscore/curve"
	"github.com/meenmo/cdscore/timeline"
)

var log = logrus.WithField("component", "protectionleg")

// PayTiming selects when a contingent payment is assumed to occur.
type PayTiming int

const (
	// PayAtDefault assumes the payment happens at the (sub-period)
	// default time itself, requiring the closed-form/Taylor integral.
	PayAtDefault PayTiming = iota
	// PayAtMaturity assumes the payment happens at a single fixed date
	// (typically the leg's maturity or next IMM date) regardless of when
	// within the period default occurred — the ISDA standard contract
	// term, and the cheaper calculation (onePeriodIntegralAtPayDate).
	PayAtMaturity
)

// Params configures PV.
type Params struct {
	Today           time.Time
	ValueDate       time.Time
	ProtectionStart time.Time
	ProtectionEnd   time.Time
	StepinDate      time.Time
	PayDate         time.Time // used only when Timing == PayAtMaturity
	DiscountCurve   *curve.Curve
	SurvivalCurve   *curve.Curve
	RecoveryRate    float64
	Notional        float64
	Timing          PayTiming
	// ProtectStartOfDay, when true, shifts the effective start one day
	// earlier (protection begins at the start of ProtectionStart's day
	// rather than its end), matching JpmcdsContingentLegPV's "offset"
	// handling of cl->protectStart.
	ProtectStartOfDay bool
}

// PV returns the protection leg's present value as of ValueDate.
func PV(p Params) (float64, error) {
	if p.DiscountCurve == nil || p.SurvivalCurve == nil {
		return 0, fmt.Errorf("protectionleg: %w: nil curve", cdserr.InvalidArgument)
	}
	if !p.ProtectionEnd.After(p.ProtectionStart) {
		return 0, fmt.Errorf("protectionleg: %w: protection end %s not after start %s", cdserr.InvalidArgument, p.ProtectionEnd, p.ProtectionStart)
	}
	if p.RecoveryRate < 0 || p.RecoveryRate > 1 {
		return 0, fmt.Errorf("protectionleg: %w: recovery rate %g outside [0,1]", cdserr.InvalidArgument, p.RecoveryRate)
	}

	offset := 0
	if p.ProtectStartOfDay {
		offset = 1
	}
	effectiveStart := p.ProtectionStart.AddDate(0, 0, -offset)
	if p.StepinDate.AddDate(0, 0, -offset).After(effectiveStart) {
		effectiveStart = p.StepinDate.AddDate(0, 0, -offset)
	}
	if p.Today.AddDate(0, 0, -offset).After(effectiveStart) {
		effectiveStart = p.Today.AddDate(0, 0, -offset)
	}
	if !effectiveStart.Before(p.ProtectionEnd) {
		return 0, nil
	}

	loss := p.Notional * (1 - p.RecoveryRate)

	var rawPV float64
	switch p.Timing {
	case PayAtMaturity:
		rawPV = onePeriodIntegralAtPayDate(p.Today, p.DiscountCurve, p.SurvivalCurve, effectiveStart, p.ProtectionEnd, p.PayDate, loss)
	case PayAtDefault:
		dates := mergedPillarDates(p.DiscountCurve, p.SurvivalCurve)
		tl := timeline.Build(effectiveStart, p.ProtectionEnd, dates)
		rawPV = onePeriodIntegral(p.Today, p.DiscountCurve, p.SurvivalCurve, effectiveStart, p.ProtectionEnd, tl, loss)
	default:
		return 0, fmt.Errorf("protectionleg: %w: unrecognized pay timing %d", cdserr.InvalidArgument, p.Timing)
	}

	valueDateDF := p.DiscountCurve.ForwardZeroPrice(p.Today, p.ValueDate)
	if valueDateDF == 0 {
		return 0, fmt.Errorf("protectionleg: %w: zero discount factor at value date", cdserr.NumericalFailure)
	}
	return rawPV / valueDateDF, nil
}

func mergedPillarDates(discountCurve, survivalCurve *curve.Curve) []time.Time {
	var dates []time.Time
	for _, pt := range discountCurve.Points() {
		dates = append(dates, pt.Date)
	}
	for _, pt := range survivalCurve.Points() {
		dates = append(dates, pt.Date)
	}
	return dates
}

// onePeriodIntegral evaluates the protection-leg integral over
// [startDate, endDate] by walking the merged timeline segment by segment,
// computing each segment's exact analytic value under the flat-forward
// assumption.
func onePeriodIntegral(today time.Time, discountCurve, survivalCurve *curve.Curve, startDate, endDate time.Time, tl []time.Time, loss float64) float64 {
	cfg := config.GetConfig()

	s0 := survivalCurve.ForwardZeroPrice(today, startDate)
	df0 := discountCurve.ForwardZeroPrice(today, startDate)

	var pv float64
	for _, d := range tl {
		if !d.After(startDate) {
			continue
		}
		if d.After(endDate) {
			break
		}
		s1 := survivalCurve.ForwardZeroPrice(today, d)
		maxTodayD := d
		if today.After(d) {
			maxTodayD = today
		}
		df1 := discountCurve.ForwardZeroPrice(today, maxTodayD)

		lambda := math.Log(s0) - math.Log(s1)
		fwdRate := math.Log(df0) - math.Log(df1)
		lambdaFwdRate := lambda + fwdRate + cfg.EpsilonFloor

		var thisPV float64
		if math.Abs(lambdaFwdRate) > cfg.TaylorThreshold {
			thisPV = loss * lambda / lambdaFwdRate * (1 - math.Exp(-lambdaFwdRate)) * s0 * df0
		} else {
			log.WithFields(logrus.Fields{"segment_end": d, "m": lambdaFwdRate}).Debug("protection leg Taylor fallback engaged")
			thisPV = taylorSegment(loss, lambda, lambdaFwdRate, s0, df0)
		}
		pv += thisPV

		s0, df0 = s1, df1
	}
	return pv
}

// taylorSegment is the 5-term Taylor expansion around m = lambda+fwdRate = 0,
// used when the closed form's denominator is too small to divide by safely.
func taylorSegment(loss, lambda, m, s0, df0 float64) float64 {
	thisPV0 := loss * lambda * s0 * df0
	thisPV1 := -thisPV0 * m * 0.5
	thisPV2 := -thisPV1 * m / 3
	thisPV3 := -thisPV2 * m * 0.25
	thisPV4 := -thisPV3 * m * 0.2
	return thisPV0 + thisPV1 + thisPV2 + thisPV3 + thisPV4
}

// onePeriodIntegralAtPayDate evaluates the protection leg under the
// "payment at maturity" convention: the probability-weighted loss over the
// period, discounted to a single fixed payDate, with no intra-period
// integration required.
func onePeriodIntegralAtPayDate(today time.Time, discountCurve, survivalCurve *curve.Curve, startDate, endDate, payDate time.Time, loss float64) float64 {
	s0 := survivalCurve.ForwardZeroPrice(today, startDate)
	s1 := survivalCurve.ForwardZeroPrice(today, endDate)
	df := discountCurve.ForwardZeroPrice(today, payDate)
	return (s0 - s1) * df * loss
}
