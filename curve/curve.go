// Package curve implements spec.md's piecewise-flat-forward Curve: an
// immutable set of date/rate pillars quoted under an explicit compounding
// basis and day-count convention, interpolated and extrapolated under the
// "forward rate is flat between pillars" assumption that makes the
// protection-leg and accrual-on-default integrals exactly analytically
// tractable (see package protectionleg/feeleg).
//
// Internally every pillar is converted once, at construction, into a
// continuously-compounded ACT/365F zero rate — the single canonical
// representation the rest of this module computes against — and converted
// back to a caller's requested basis/day-count only at the API boundary.
package curve

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/cdscore/cdserr"
	"github.com/meenmo/cdscore/daycount"
)

// Point is one curve pillar: a date and the zero rate (or discount factor,
// when Basis is DiscountFactorBasis) from the curve's base date out to
// Date, quoted under the curve's Basis/DayCount.
type Point struct {
	Date time.Time
	Rate float64
}

// Curve is an immutable piecewise-flat-forward curve.
type Curve struct {
	baseDate time.Time
	basis    daycount.Basis
	dayCount daycount.Convention
	points   []Point // sorted ascending by Date, all strictly after baseDate

	pillarTau []float64 // ACT/365F year fraction from baseDate, one per point
	lnDF      []float64 // ln(discount factor) at each pillar, continuous/ACT365F
}

// New constructs a Curve from baseDate and pillars quoted under basis/dc.
// Points need not be pre-sorted; they must have strictly increasing dates,
// all after baseDate, and (for DiscountFactorBasis) rates in (0, 1].
func New(baseDate time.Time, points []Point, basis daycount.Basis, dc daycount.Convention) (*Curve, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("curve: %w: no pillars supplied", cdserr.CurveDefective)
	}
	sorted := append([]Point(nil), points...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	for i, p := range sorted {
		if !p.Date.After(baseDate) {
			return nil, fmt.Errorf("curve: %w: pillar %s is not after base date %s", cdserr.CurveDefective, p.Date, baseDate)
		}
		if i > 0 && !sorted[i].Date.After(sorted[i-1].Date) {
			return nil, fmt.Errorf("curve: %w: duplicate or out-of-order pillar date %s", cdserr.CurveDefective, p.Date)
		}
		if basis == daycount.DiscountFactorBasis && (p.Rate <= 0 || p.Rate > 1) {
			return nil, fmt.Errorf("curve: %w: discount factor %g at %s outside (0,1]", cdserr.CurveDefective, p.Rate, p.Date)
		}
	}

	c := &Curve{
		baseDate: baseDate,
		basis:    basis,
		dayCount: dc,
		points:   sorted,
	}
	if err := c.buildCanonical(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Curve) buildCanonical() error {
	c.pillarTau = make([]float64, len(c.points))
	c.lnDF = make([]float64, len(c.points))
	for i, p := range c.points {
		tauNative, err := daycount.YearFraction(c.baseDate, p.Date, c.dayCount)
		if err != nil {
			return err
		}
		ccRate, err := daycount.ToContinuousRate(p.Rate, c.basis, tauNative)
		if err != nil {
			return fmt.Errorf("curve: pillar %s: %w", p.Date, err)
		}
		tau365, err := daycount.YearFraction(c.baseDate, p.Date, daycount.Act365F)
		if err != nil {
			return err
		}
		c.pillarTau[i] = tau365
		c.lnDF[i] = -ccRate * tau365
	}
	return nil
}

// BaseDate returns the curve's base (valuation) date.
func (c *Curve) BaseDate() time.Time { return c.baseDate }

// Basis returns the curve's native compounding basis.
func (c *Curve) Basis() daycount.Basis { return c.basis }

// DayCount returns the curve's native day-count convention.
func (c *Curve) DayCount() daycount.Convention { return c.dayCount }

// Points returns a copy of the curve's pillars, for diagnostics.
func (c *Curve) Points() []Point {
	return append([]Point(nil), c.points...)
}

// ZeroPrice returns the discount factor from the curve's base date to t,
// under the flat-forward assumption: the instantaneous forward rate is
// held constant between pillars (equivalently, ln(DF) is piecewise linear
// in ACT/365F time). t before the base date returns 1; t before the first
// pillar or after the last pillar is flat-extrapolated using the nearest
// segment's forward rate.
func (c *Curve) ZeroPrice(t time.Time) float64 {
	if !t.After(c.baseDate) {
		return 1.0
	}
	tau, err := daycount.YearFraction(c.baseDate, t, daycount.Act365F)
	if err != nil {
		return math.NaN()
	}
	return math.Exp(c.lnDFAt(tau))
}

func (c *Curve) lnDFAt(tau float64) float64 {
	n := len(c.pillarTau)
	if n == 1 {
		fwd := c.lnDF[0] / c.pillarTau[0]
		return fwd * tau
	}
	if tau <= c.pillarTau[0] {
		fwd := c.lnDF[0] / c.pillarTau[0]
		return fwd * tau
	}
	if tau >= c.pillarTau[n-1] {
		fwd := (c.lnDF[n-1] - c.lnDF[n-2]) / (c.pillarTau[n-1] - c.pillarTau[n-2])
		return c.lnDF[n-1] + fwd*(tau-c.pillarTau[n-1])
	}
	idx := sort.Search(n, func(i int) bool { return c.pillarTau[i] >= tau }) - 1
	if idx < 0 {
		idx = 0
	}
	fwd := (c.lnDF[idx+1] - c.lnDF[idx]) / (c.pillarTau[idx+1] - c.pillarTau[idx])
	return c.lnDF[idx] + fwd*(tau-c.pillarTau[idx])
}

// ForwardZeroPrice returns the discount factor between t1 and t2, both
// measured from the curve's own base date: ZeroPrice(t2) / ZeroPrice(t1).
// This is the quantity the protection-leg and fee-leg integrators call
// "fwdZeroPrice" — note it is NOT the market forward rate, only the ratio
// of two base-date discount factors.
func (c *Curve) ForwardZeroPrice(t1, t2 time.Time) float64 {
	d1 := c.ZeroPrice(t1)
	if d1 == 0 {
		return math.NaN()
	}
	return c.ZeroPrice(t2) / d1
}

// ZeroRateAt returns the zero rate from the curve's base date to t,
// expressed under the requested basis/day-count rather than the curve's
// native one.
func (c *Curve) ZeroRateAt(t time.Time, basis daycount.Basis, dc daycount.Convention) (float64, error) {
	if !t.After(c.baseDate) {
		return 0, fmt.Errorf("curve: %w: date %s not after base date", cdserr.InvalidArgument, t)
	}
	tau365, err := daycount.YearFraction(c.baseDate, t, daycount.Act365F)
	if err != nil {
		return 0, err
	}
	ccRate := -c.lnDFAt(tau365) / tau365
	tauOut, err := daycount.YearFraction(c.baseDate, t, dc)
	if err != nil {
		return 0, err
	}
	return daycount.FromContinuousRate(ccRate, basis, tauOut)
}
