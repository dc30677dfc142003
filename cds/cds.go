// Package cds is the pricing façade: a Trade built from deal terms exposes
// Price/ParSpread/Upfront/DefaultedAccrual/FeeLegFlows the way the
// now-removed swap/api.go's InterestRateSwap builder exposed NPV/PVByLeg/
// SolveParSpread on a SwapTrade — same builder-struct-with-methods shape,
// generalized from an interest-rate swap to a single-name CDS. ParSpreads
// batches Trade.ParSpread over several maturities sharing one curve pair,
// for building a par-spread ladder in one call.
package cds

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/meenmo/cdscore/cashflow"
	"github.com/meenmo/cdscore/calendar"
	"github.com/meenmo/cdscore/cdserr"
	"github.com/meenmo/cdscore/curve"
	"github.com/meenmo/cdscore/dateinterval"
	"github.com/meenmo/cdscore/daycount"
	"github.com/meenmo/cdscore/feeleg"
	"github.com/meenmo/cdscore/protectionleg"
	"github.com/meenmo/cdscore/schedule"
)

var log = logrus.WithField("component", "cds")

// TradeParams are the deal terms used to build a Trade.
type TradeParams struct {
	Today         time.Time
	StepinDate    time.Time
	ValueDate     time.Time
	EffectiveDate time.Time
	MaturityDate  time.Time

	CouponRate   float64
	Notional     float64
	RecoveryRate float64

	DiscountCurve *curve.Curve
	SurvivalCurve *curve.Curve

	CouponInterval dateinterval.Interval
	Calendar       *calendar.Calendar
	BadDayConv     calendar.BadDayConvention
	DayCount       daycount.Convention
	PayDelay       int

	AccrualPayConv    feeleg.AccrualPayConvention
	ObsStartOfDay     bool
	PayAccruedAtStart bool
	ProtectStartOfDay bool
}

// Trade is a single-name CDS built from TradeParams, with its fee-leg
// accrual schedule generated once at construction.
type Trade struct {
	params  TradeParams
	periods []schedule.Period
}

// New validates params, builds the accrual schedule, and returns a Trade.
func New(params TradeParams) (*Trade, error) {
	if params.DiscountCurve == nil || params.SurvivalCurve == nil {
		return nil, fmt.Errorf("cds: %w: nil curve", cdserr.InvalidArgument)
	}
	if params.Notional <= 0 {
		return nil, fmt.Errorf("cds: %w: non-positive notional", cdserr.InvalidArgument)
	}
	if params.RecoveryRate < 0 || params.RecoveryRate > 1 {
		return nil, fmt.Errorf("cds: %w: recovery rate %g outside [0,1]", cdserr.InvalidArgument, params.RecoveryRate)
	}

	periods, err := schedule.Build(schedule.Params{
		EffectiveDate: params.EffectiveDate,
		MaturityDate:  params.MaturityDate,
		Interval:      params.CouponInterval,
		StubLocation:  schedule.StubFront,
		StubType:      schedule.ShortStub,
		Calendar:      params.Calendar,
		BadDayConv:    params.BadDayConv,
		PayDelay:      params.PayDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("cds: %w", err)
	}

	return &Trade{params: params, periods: periods}, nil
}

// protectionLegPV computes the protection leg's PV using the trade's own
// effective/maturity dates and curves.
func (t *Trade) protectionLegPV() (float64, error) {
	return protectionleg.PV(protectionleg.Params{
		Today:             t.params.Today,
		ValueDate:         t.params.ValueDate,
		ProtectionStart:   t.params.EffectiveDate,
		ProtectionEnd:     t.params.MaturityDate,
		StepinDate:        t.params.StepinDate,
		PayDate:           t.params.MaturityDate,
		DiscountCurve:     t.params.DiscountCurve,
		SurvivalCurve:     t.params.SurvivalCurve,
		RecoveryRate:      t.params.RecoveryRate,
		Notional:          t.params.Notional,
		Timing:            protectionleg.PayAtDefault,
		ProtectStartOfDay: t.params.ProtectStartOfDay,
	})
}

// feeLegPVAt computes the fee leg's PV at the given coupon rate (letting
// ParSpread reuse this with couponRate=1 as a risky annuity).
func (t *Trade) feeLegPVAt(couponRate float64) (float64, error) {
	return feeleg.PV(feeleg.Params{
		Today:             t.params.Today,
		StepinDate:        t.params.StepinDate,
		ValueDate:         t.params.ValueDate,
		Periods:           t.periods,
		DayCount:          t.params.DayCount,
		Notional:          t.params.Notional,
		CouponRate:        couponRate,
		DiscountCurve:     t.params.DiscountCurve,
		SurvivalCurve:     t.params.SurvivalCurve,
		AccrualPayConv:    t.params.AccrualPayConv,
		ObsStartOfDay:     t.params.ObsStartOfDay,
		PayAccruedAtStart: t.params.PayAccruedAtStart,
	})
}

// Price returns the trade's NPV from the protection buyer's perspective:
// protection leg PV received minus fee leg PV paid. A positive value means
// the contract favors the protection buyer at its current running coupon.
func (t *Trade) Price() (float64, error) {
	protPV, err := t.protectionLegPV()
	if err != nil {
		return 0, err
	}
	feePV, err := t.feeLegPVAt(t.params.CouponRate)
	if err != nil {
		return 0, err
	}
	price := protPV - feePV
	t.logPriceDiagnostics(price)
	return price, nil
}

// ParSpread returns the running coupon rate that reprices the trade to
// zero NPV: protectionLegPV / (fee leg PV at a coupon rate of 1, i.e. the
// risky annuity).
func (t *Trade) ParSpread() (float64, error) {
	protPV, err := t.protectionLegPV()
	if err != nil {
		return 0, err
	}
	annuity, err := t.feeLegPVAt(1.0)
	if err != nil {
		return 0, err
	}
	if annuity == 0 {
		return 0, fmt.Errorf("cds: %w: zero risky annuity", cdserr.NumericalFailure)
	}
	return protPV / annuity, nil
}

// Upfront returns the upfront payment: (runningCoupon − parSpread) times the
// risky annuity (fee leg PV at a coupon rate of 1), the standard quoting
// convention for a CDS traded away from its par spread. This is the negative
// of Price() (protPV − feePV): Upfront is from the protection seller's
// perspective (what the buyer owes upfront), Price() from the buyer's.
func (t *Trade) Upfront() (float64, error) {
	parSpread, err := t.ParSpread()
	if err != nil {
		return 0, err
	}
	annuity, err := t.feeLegPVAt(1.0)
	if err != nil {
		return 0, err
	}
	return (t.params.CouponRate - parSpread) * annuity, nil
}

// DefaultedAccrual returns the accrued coupon (in calendar days and in
// currency amount) through eventDeterminationDate, for a name that
// defaulted on that date. It returns (0, 0) whenever tradeDate precedes
// eventDeterminationDate, i.e. the trade was booked before the name's
// default date and so never accrued against it.
func (t *Trade) DefaultedAccrual(tradeDate, eventDeterminationDate time.Time) (days int, amount float64, err error) {
	if tradeDate.Before(eventDeterminationDate) {
		return 0, 0, nil
	}
	ai, err := feeleg.AccruedInterest(t.periods, t.params.DayCount, t.params.CouponRate, t.params.Notional, eventDeterminationDate)
	if err != nil {
		return 0, 0, err
	}
	idx := -1
	for i, p := range t.periods {
		if !eventDeterminationDate.Before(p.AccrualStart) && eventDeterminationDate.Before(p.AccrualEnd) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, ai, nil
	}
	accrualDays := int(eventDeterminationDate.Sub(t.periods[idx].AccrualStart).Hours() / 24)
	return accrualDays, ai, nil
}

// ParSpreadParams are the shared deal terms for a vector of CDS par
// spreads, one per maturity in EndDates: the same effective date, curve
// pair, notional, recovery rate, and accrual conventions, batched over
// several tenors the way a curve-building desk quotes a par spread ladder.
type ParSpreadParams struct {
	Today      time.Time
	StepinDate time.Time
	ValueDate  time.Time
	StartDate  time.Time
	EndDates   []time.Time

	Notional     float64
	RecoveryRate float64

	DiscountCurve *curve.Curve
	SurvivalCurve *curve.Curve

	CouponInterval dateinterval.Interval
	Calendar       *calendar.Calendar
	BadDayConv     calendar.BadDayConvention
	DayCount       daycount.Convention
	PayDelay       int

	AccrualPayConv    feeleg.AccrualPayConvention
	ObsStartOfDay     bool
	PayAccruedAtStart bool
	ProtectStartOfDay bool
}

// ParSpreads returns the par spread for each maturity in params.EndDates,
// built against the shared effective date, curve pair, and conventions.
func ParSpreads(params ParSpreadParams) ([]float64, error) {
	if len(params.EndDates) == 0 {
		return nil, fmt.Errorf("cds: %w: no end dates supplied", cdserr.InvalidArgument)
	}

	spreads := make([]float64, len(params.EndDates))
	for i, end := range params.EndDates {
		trade, err := New(TradeParams{
			Today:         params.Today,
			StepinDate:    params.StepinDate,
			ValueDate:     params.ValueDate,
			EffectiveDate: params.StartDate,
			MaturityDate:  end,
			// CouponRate is irrelevant to ParSpread: protPV doesn't depend on
			// it and feeLegPVAt(1.0) always uses a unit coupon.
			CouponRate:        0,
			Notional:          params.Notional,
			RecoveryRate:      params.RecoveryRate,
			DiscountCurve:     params.DiscountCurve,
			SurvivalCurve:     params.SurvivalCurve,
			CouponInterval:    params.CouponInterval,
			Calendar:          params.Calendar,
			BadDayConv:        params.BadDayConv,
			DayCount:          params.DayCount,
			PayDelay:          params.PayDelay,
			AccrualPayConv:    params.AccrualPayConv,
			ObsStartOfDay:     params.ObsStartOfDay,
			PayAccruedAtStart: params.PayAccruedAtStart,
			ProtectStartOfDay: params.ProtectStartOfDay,
		})
		if err != nil {
			return nil, fmt.Errorf("cds: end date %s: %w", end.Format("2006-01-02"), err)
		}
		spread, err := trade.ParSpread()
		if err != nil {
			return nil, fmt.Errorf("cds: end date %s: %w", end.Format("2006-01-02"), err)
		}
		spreads[i] = spread
	}
	return spreads, nil
}

// FeeLegFlows returns the trade's non-contingent coupon cash flows.
func (t *Trade) FeeLegFlows() (cashflow.List, error) {
	return feeleg.FeeLegFlows(t.periods, t.params.DayCount, t.params.CouponRate, t.params.Notional)
}

// Periods exposes the trade's generated accrual schedule for diagnostics.
func (t *Trade) Periods() []schedule.Period {
	return append([]schedule.Period(nil), t.periods...)
}

// logPriceDiagnostics logs the priced trade's maturity, coupon, and price at
// Debug level.
func (t *Trade) logPriceDiagnostics(price float64) {
	log.WithFields(logrus.Fields{
		"maturity": t.params.MaturityDate,
		"coupon":   t.params.CouponRate,
		"price":    price,
	}).Debug("priced CDS trade")
}
