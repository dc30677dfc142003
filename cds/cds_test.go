package cds_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/meenmo/cdscore/calendar"
	"github.com/meenmo/cdscore/cds"
	"github.com/meenmo/cdscore/cdserr"
	"github.com/meenmo/cdscore/curve"
	"github.com/meenmo/cdscore/dateinterval"
	"github.com/meenmo/cdscore/daycount"
	"github.com/meenmo/cdscore/feeleg"
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

func flatCurve(t *testing.T, base time.Time, rate float64, far time.Time) *curve.Curve {
	t.Helper()
	c, err := curve.New(base, []curve.Point{{Date: far, Rate: rate}}, daycount.Continuous, daycount.Act365F)
	if err != nil {
		t.Fatalf("curve.New: %v", err)
	}
	return c
}

func baseTradeParams(t *testing.T) cds.TradeParams {
	t.Helper()
	today := date(2026, 1, 1)
	far := date(2040, 1, 1)
	return cds.TradeParams{
		Today:             today,
		StepinDate:        today.AddDate(0, 0, 1),
		ValueDate:         today.AddDate(0, 0, 3),
		EffectiveDate:     today,
		MaturityDate:      date(2031, 1, 1),
		CouponRate:        0.01,
		Notional:          10_000_000,
		RecoveryRate:      0.4,
		DiscountCurve:     flatCurve(t, today, 0.03, far),
		SurvivalCurve:     flatCurve(t, today, 0.02, far),
		CouponInterval:    dateinterval.Interval{Period: 3, Unit: dateinterval.Month},
		Calendar:          targetCalendar(t),
		BadDayConv:        calendar.ModifiedFollowing,
		DayCount:          daycount.Act360,
		AccrualPayConv:    feeleg.AccrualPayAll,
		PayAccruedAtStart: true,
	}
}

func TestParSpreadReprices(t *testing.T) {
	t.Parallel()
	params := baseTradeParams(t)
	trade, err := cds.New(params)
	if err != nil {
		t.Fatalf("cds.New: %v", err)
	}
	parSpread, err := trade.ParSpread()
	if err != nil {
		t.Fatalf("ParSpread: %v", err)
	}
	if parSpread <= 0 {
		t.Fatalf("expected positive par spread, got %v", parSpread)
	}

	// Pricing the same trade at its own par spread as running coupon should
	// be (near) zero.
	parParams := params
	parParams.CouponRate = parSpread
	parParams.PayAccruedAtStart = false
	parTrade, err := cds.New(parParams)
	if err != nil {
		t.Fatalf("cds.New: %v", err)
	}
	price, err := parTrade.Price()
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if math.Abs(price) > 1e-3*params.Notional {
		t.Fatalf("expected near-zero price at par spread coupon, got %v", price)
	}
}

func TestPriceHigherCouponIsLessFavorableToProtectionBuyer(t *testing.T) {
	t.Parallel()
	low := baseTradeParams(t)
	low.CouponRate = 0.005
	high := baseTradeParams(t)
	high.CouponRate = 0.05

	lowTrade, err := cds.New(low)
	if err != nil {
		t.Fatalf("cds.New: %v", err)
	}
	highTrade, err := cds.New(high)
	if err != nil {
		t.Fatalf("cds.New: %v", err)
	}
	lowPrice, err := lowTrade.Price()
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	highPrice, err := highTrade.Price()
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if !(lowPrice > highPrice) {
		t.Fatalf("expected lower coupon to be more favorable to protection buyer: low=%v high=%v", lowPrice, highPrice)
	}
}

func TestDefaultedAccrualNonNegative(t *testing.T) {
	t.Parallel()
	params := baseTradeParams(t)
	trade, err := cds.New(params)
	if err != nil {
		t.Fatalf("cds.New: %v", err)
	}
	eventDeterminationDate := params.Today.AddDate(0, 1, 0)
	tradeDate := eventDeterminationDate.AddDate(0, 0, 1)
	days, amount, err := trade.DefaultedAccrual(tradeDate, eventDeterminationDate)
	if err != nil {
		t.Fatalf("DefaultedAccrual: %v", err)
	}
	if days < 0 || amount < 0 {
		t.Fatalf("expected non-negative accrual, got days=%d amount=%v", days, amount)
	}
}

func TestDefaultedAccrualZeroWhenTradeBeforeEventDetermination(t *testing.T) {
	t.Parallel()
	params := baseTradeParams(t)
	trade, err := cds.New(params)
	if err != nil {
		t.Fatalf("cds.New: %v", err)
	}
	tradeDate := params.Today
	eventDeterminationDate := tradeDate.AddDate(0, 1, 0)
	days, amount, err := trade.DefaultedAccrual(tradeDate, eventDeterminationDate)
	if err != nil {
		t.Fatalf("DefaultedAccrual: %v", err)
	}
	if days != 0 || amount != 0 {
		t.Fatalf("expected zero accrual when tradeDate precedes eventDeterminationDate, got days=%d amount=%v", days, amount)
	}
}

func TestUpfrontZeroAtParSpreadCoupon(t *testing.T) {
	t.Parallel()
	params := baseTradeParams(t)
	trade, err := cds.New(params)
	if err != nil {
		t.Fatalf("cds.New: %v", err)
	}
	parSpread, err := trade.ParSpread()
	if err != nil {
		t.Fatalf("ParSpread: %v", err)
	}

	parParams := params
	parParams.CouponRate = parSpread
	parTrade, err := cds.New(parParams)
	if err != nil {
		t.Fatalf("cds.New: %v", err)
	}
	upfront, err := parTrade.Upfront()
	if err != nil {
		t.Fatalf("Upfront: %v", err)
	}
	if math.Abs(upfront) > 1e-6*params.Notional {
		t.Fatalf("expected near-zero upfront at par spread coupon, got %v", upfront)
	}
}

func TestParSpreadsMatchesSingleTradeParSpread(t *testing.T) {
	t.Parallel()
	params := baseTradeParams(t)

	spreads, err := cds.ParSpreads(cds.ParSpreadParams{
		Today:             params.Today,
		StepinDate:        params.StepinDate,
		ValueDate:         params.ValueDate,
		StartDate:         params.EffectiveDate,
		EndDates:          []time.Time{params.MaturityDate, params.MaturityDate.AddDate(5, 0, 0)},
		Notional:          params.Notional,
		RecoveryRate:      params.RecoveryRate,
		DiscountCurve:     params.DiscountCurve,
		SurvivalCurve:     params.SurvivalCurve,
		CouponInterval:    params.CouponInterval,
		Calendar:          params.Calendar,
		BadDayConv:        params.BadDayConv,
		DayCount:          params.DayCount,
		AccrualPayConv:    params.AccrualPayConv,
		PayAccruedAtStart: params.PayAccruedAtStart,
	})
	if err != nil {
		t.Fatalf("ParSpreads: %v", err)
	}
	if len(spreads) != 2 {
		t.Fatalf("got %d spreads, want 2", len(spreads))
	}

	trade, err := cds.New(params)
	if err != nil {
		t.Fatalf("cds.New: %v", err)
	}
	want, err := trade.ParSpread()
	if err != nil {
		t.Fatalf("ParSpread: %v", err)
	}
	if math.Abs(spreads[0]-want) > 1e-10 {
		t.Fatalf("got spreads[0] %v, want %v", spreads[0], want)
	}
}

func TestParSpreadsRejectsEmptyEndDates(t *testing.T) {
	t.Parallel()
	params := baseTradeParams(t)
	_, err := cds.ParSpreads(cds.ParSpreadParams{
		Today:             params.Today,
		StepinDate:        params.StepinDate,
		ValueDate:         params.ValueDate,
		StartDate:         params.EffectiveDate,
		Notional:          params.Notional,
		RecoveryRate:      params.RecoveryRate,
		DiscountCurve:     params.DiscountCurve,
		SurvivalCurve:     params.SurvivalCurve,
		CouponInterval:    params.CouponInterval,
		Calendar:          params.Calendar,
		BadDayConv:        params.BadDayConv,
		DayCount:          params.DayCount,
		AccrualPayConv:    params.AccrualPayConv,
		PayAccruedAtStart: params.PayAccruedAtStart,
	})
	if !errors.Is(err, cdserr.InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestFeeLegFlowsMatchPeriodCount(t *testing.T) {
	t.Parallel()
	params := baseTradeParams(t)
	trade, err := cds.New(params)
	if err != nil {
		t.Fatalf("cds.New: %v", err)
	}
	flows, err := trade.FeeLegFlows()
	if err != nil {
		t.Fatalf("FeeLegFlows: %v", err)
	}
	if len(flows) != len(trade.Periods()) {
		t.Fatalf("got %d flows, want %d periods", len(flows), len(trade.Periods()))
	}
}

func TestNewRejectsNilCurve(t *testing.T) {
	t.Parallel()
	params := baseTradeParams(t)
	params.SurvivalCurve = nil
	_, err := cds.New(params)
	if !errors.Is(err, cdserr.InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestNewRejectsNonPositiveNotional(t *testing.T) {
	t.Parallel()
	params := baseTradeParams(t)
	params.Notional = 0
	_, err := cds.New(params)
	if !errors.Is(err, cdserr.InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}
