package ratecurve

import (
	"fmt"

	"github.com/meenmo/cdscore/curve"
	"github.com/meenmo/cdscore/daycount"
)

// ToCurve adapts a bootstrapped ratecurve.Curve to the canonical curve.Curve
// type the CDS pricer and bootstrap packages consume. Each payment date
// after settlement becomes a DiscountFactorBasis/ACT365F pillar carrying
// this curve's own discount factor, which is this curve's native time axis
// (see defaultCurveDayCount), so the conversion is exact: no interpolation
// is reintroduced by going through curve.New.
func (c *Curve) ToCurve() (*curve.Curve, error) {
	var points []curve.Point
	for _, d := range c.paymentDates {
		if !d.After(c.settlement) {
			continue
		}
		points = append(points, curve.Point{Date: d, Rate: c.DF(d)})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("ratecurve: no payment dates after settlement to convert")
	}
	return curve.New(c.settlement, points, daycount.DiscountFactorBasis, daycount.Act365F)
}
