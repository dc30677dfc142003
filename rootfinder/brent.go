// Package rootfinder implements Brent's method, the bracketed root finder
// spec.md's bootstrap component uses to solve for the hazard rate that
// reprices each CDS benchmark to par. It generalizes the teacher's
// Newton-Raphson solver idiom in bond/yield.go (iteration-counted, clamped,
// explicit tolerance constants, error rather than panic on non-convergence)
// to a derivative-free bracketed method, since the contingent-leg and
// fee-leg PV functions are not conveniently differentiable in closed form.
package rootfinder

import (
	"fmt"
	"math"

	"github.com/meenmo/cdscore/cdserr"
)

// Result reports the solved root along with the iteration count, for
// callers that want to log or assert on convergence behavior.
type Result struct {
	Root       float64
	Iterations int
}

// Brent finds a root of f in [lo, hi] using Brent's method (bisection
// combined with secant and inverse-quadratic interpolation), stopping when
// the bracket width is below xtol or |f(root)| is below ftol, or returning
// a NumericalFailure error after maxIter iterations.
//
// f(lo) and f(hi) must have opposite signs; Brent does not expand the
// bracket itself (the bootstrap's caller is responsible for choosing a
// bracket wide enough — spec.md's bounds are [0, 1e10]).
func Brent(f func(float64) float64, lo, hi, xtol, ftol float64, maxIter int) (Result, error) {
	a, b := lo, hi
	fa, fb := f(a), f(b)

	if fa == 0 {
		return Result{Root: a, Iterations: 0}, nil
	}
	if fb == 0 {
		return Result{Root: b, Iterations: 0}, nil
	}
	if sameSign(fa, fb) {
		return Result{}, fmt.Errorf("rootfinder: %w: f(%g)=%g and f(%g)=%g do not bracket a root", cdserr.NumericalFailure, a, fa, b, fb)
	}

	// Brent's invariant: |f(b)| <= |f(a)|, b is the current best estimate.
	if math.Abs(fa) < math.Abs(fb) {
		a, b = b, a
		fa, fb = fb, fa
	}

	c, fc := a, fa
	mflag := true
	var d float64

	for i := 0; i < maxIter; i++ {
		if math.Abs(b-a) < xtol || math.Abs(fb) < ftol {
			return Result{Root: b, Iterations: i}, nil
		}

		var s float64
		if fa != fc && fb != fc {
			// Inverse quadratic interpolation.
			s = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		} else {
			// Secant.
			s = b - fb*(b-a)/(fb-fa)
		}

		lowBound := (3*a + b) / 4
		highBound := b
		if lowBound > highBound {
			lowBound, highBound = highBound, lowBound
		}

		useBisection := s < lowBound || s > highBound ||
			(mflag && math.Abs(s-b) >= math.Abs(b-c)/2) ||
			(!mflag && math.Abs(s-b) >= math.Abs(c-d)/2) ||
			(mflag && math.Abs(b-c) < xtol) ||
			(!mflag && math.Abs(c-d) < xtol)

		if useBisection {
			s = (a + b) / 2
			mflag = true
		} else {
			mflag = false
		}

		fs := f(s)
		d = c
		c, fc = b, fb

		if sameSign(fa, fs) {
			a, fa = s, fs
		} else {
			b, fb = s, fs
		}

		if math.Abs(fa) < math.Abs(fb) {
			a, b = b, a
			fa, fb = fb, fa
		}
	}
	return Result{}, fmt.Errorf("rootfinder: %w: did not converge within %d iterations", cdserr.NumericalFailure, maxIter)
}

func sameSign(x, y float64) bool {
	return (x > 0 && y > 0) || (x < 0 && y < 0)
}
