package daycount

import (
	"fmt"
	"math"

	"github.com/meenmo/cdscore/cdserr"
)

// Basis identifies a compounding convention. A positive value N means
// periodic compounding N times per year (1, 2, 4, 12); the three named
// constants below cover the remaining conventions spec.md's Curve component
// must support.
type Basis int

const (
	// Continuous marks continuously-compounded rates: DF = exp(-r*t).
	Continuous Basis = 0
	// Simple marks simple (linear) interest: DF = 1/(1+r*t).
	Simple Basis = -1
	// DiscountFactorBasis marks a rate that already IS a discount factor
	// over the period (no further compounding transform applied).
	DiscountFactorBasis Basis = -2
)

// Annual, SemiAnnual, Quarterly, and Monthly are the periodic bases spec.md
// names explicitly (N = 1, 2, 4, 12 times per year).
const (
	Annual     Basis = 1
	SemiAnnual Basis = 2
	Quarterly  Basis = 4
	Monthly    Basis = 12
)

func (b Basis) String() string {
	switch b {
	case Continuous:
		return "CONTINUOUS"
	case Simple:
		return "SIMPLE"
	case DiscountFactorBasis:
		return "DISCOUNT_FACTOR"
	default:
		return fmt.Sprintf("PERIODIC(%d)", int(b))
	}
}

// ToContinuousRate converts a rate quoted under basis b over year-fraction
// t into the equivalent continuously-compounded rate.
func ToContinuousRate(rate float64, b Basis, t float64) (float64, error) {
	return toContinuous(rate, b, t)
}

// FromContinuousRate converts a continuously-compounded rate cc over
// year-fraction t into the equivalent rate under basis b.
func FromContinuousRate(cc float64, b Basis, t float64) (float64, error) {
	return fromContinuous(cc, b, t)
}

// toContinuous converts a rate quoted under basis b over year-fraction t
// into the equivalent continuously-compounded rate.
func toContinuous(rate float64, b Basis, t float64) (float64, error) {
	switch {
	case b == Continuous:
		return rate, nil
	case b == Simple:
		if t == 0 {
			return 0, fmt.Errorf("daycount: %w: zero-length period for simple-basis conversion", cdserr.InvalidArgument)
		}
		return math.Log(1+rate*t) / t, nil
	case b == DiscountFactorBasis:
		if rate <= 0 {
			return 0, fmt.Errorf("daycount: %w: non-positive discount factor %g", cdserr.CurveDefective, rate)
		}
		if t == 0 {
			return 0, fmt.Errorf("daycount: %w: zero-length period for discount-factor conversion", cdserr.InvalidArgument)
		}
		return -math.Log(rate) / t, nil
	case b > 0:
		n := float64(b)
		return n * math.Log(1+rate/n), nil
	default:
		return 0, fmt.Errorf("daycount: %w: unrecognized compounding basis %d", cdserr.InvalidArgument, b)
	}
}

// fromContinuous converts a continuously-compounded rate cc over
// year-fraction t into the equivalent rate under basis b.
func fromContinuous(cc float64, b Basis, t float64) (float64, error) {
	switch {
	case b == Continuous:
		return cc, nil
	case b == Simple:
		if t == 0 {
			return 0, fmt.Errorf("daycount: %w: zero-length period for simple-basis conversion", cdserr.InvalidArgument)
		}
		return (math.Exp(cc*t) - 1) / t, nil
	case b == DiscountFactorBasis:
		return math.Exp(-cc * t), nil
	case b > 0:
		n := float64(b)
		return n * (math.Exp(cc/n) - 1), nil
	default:
		return 0, fmt.Errorf("daycount: %w: unrecognized compounding basis %d", cdserr.InvalidArgument, b)
	}
}
