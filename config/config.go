// Package config holds the numerical tolerances and iteration limits shared
// by the root finder, bootstrap, and leg integrators. It follows the
// teacher's package-level Config/DefaultConfig/GetConfig/SetConfig shape so
// a caller can override tolerances process-wide (tests tightening
// tolerances, a CLI loosening them for a fast preview) without plumbing a
// parameter through every call site.
package config

// Config collects the numerical constants spec.md's "bit-exact conventions"
// section calls out as fixed points a reimplementation must preserve.
type Config struct {
	// BrentLowerBound and BrentUpperBound bracket the hazard-rate search in
	// the bootstrap.
	BrentLowerBound float64
	BrentUpperBound float64

	// BrentInitialStep holds a bracket-expansion step size. rootfinder.Brent
	// does not read it: Brent takes an explicit [lo, hi] bracket and does not
	// expand it, and the bootstrap passes BrentLowerBound/BrentUpperBound.
	BrentInitialStep float64

	// BrentXTolerance and BrentFTolerance are Brent's x- and f- convergence
	// tolerances.
	BrentXTolerance float64
	BrentFTolerance float64

	// BrentMaxIterations bounds the root-finder loop.
	BrentMaxIterations int

	// TaylorThreshold is the |lambda+fwdRate| magnitude below which the
	// protection-leg and accrual-on-default integrators switch from the
	// closed-form exponential to the 5-term Taylor expansion.
	TaylorThreshold float64

	// EpsilonFloor is added to lambda+fwdRate before division to avoid a
	// zero denominator without perturbing the analytic result.
	EpsilonFloor float64

	// AccrualHalfDayOffset is the half-day shift applied to the
	// accrual-on-default day-count fraction (t = (date + offset -
	// accrualStart) / 365).
	AccrualHalfDayOffset float64
}

// DefaultConfig mirrors the constants the ISDA CDS Standard Model reference
// implementation uses throughout contingentleg.c, feeleg.c, and
// cdsbootstrap.c.
var DefaultConfig = Config{
	BrentLowerBound:      0,
	BrentUpperBound:      1e10,
	BrentInitialStep:     5e-4,
	BrentXTolerance:      1e-10,
	BrentFTolerance:      1e-10,
	BrentMaxIterations:   100,
	TaylorThreshold:      1e-4,
	EpsilonFloor:         1e-50,
	AccrualHalfDayOffset: 0.5,
}

var current = DefaultConfig

// GetConfig returns the active configuration.
func GetConfig() Config { return current }

// SetConfig replaces the active configuration.
func SetConfig(c Config) { current = c }
