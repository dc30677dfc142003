package rootfinder_test

import (
	"errors"
	"math"
	"testing"

	"github.com/meenmo/cdscore/cdserr"
	"github.com/meenmo/cdscore/rootfinder"
)

func TestBrentFindsLinearRoot(t *testing.T) {
	t.Parallel()
	f := func(x float64) float64 { return 2*x - 4 }
	res, err := rootfinder.Brent(f, -10, 10, 1e-10, 1e-10, 100)
	if err != nil {
		t.Fatalf("Brent: %v", err)
	}
	if math.Abs(res.Root-2) > 1e-8 {
		t.Fatalf("got root %v want 2", res.Root)
	}
}

func TestBrentFindsPolynomialRoot(t *testing.T) {
	t.Parallel()
	// x^3 - x - 2 has a real root near 1.5213797.
	f := func(x float64) float64 { return x*x*x - x - 2 }
	res, err := rootfinder.Brent(f, 0, 3, 1e-12, 1e-12, 200)
	if err != nil {
		t.Fatalf("Brent: %v", err)
	}
	if math.Abs(res.Root-1.5213797) > 1e-6 {
		t.Fatalf("got root %v want ~1.5213797", res.Root)
	}
}

func TestBrentRejectsNonBracketingInterval(t *testing.T) {
	t.Parallel()
	f := func(x float64) float64 { return x*x + 1 } // never crosses zero
	_, err := rootfinder.Brent(f, -5, 5, 1e-10, 1e-10, 100)
	if !errors.Is(err, cdserr.NumericalFailure) {
		t.Fatalf("expected NumericalFailure, got %v", err)
	}
}

func TestBrentExactEndpointRoot(t *testing.T) {
	t.Parallel()
	f := func(x float64) float64 { return x - 3 }
	res, err := rootfinder.Brent(f, 3, 10, 1e-10, 1e-10, 100)
	if err != nil {
		t.Fatalf("Brent: %v", err)
	}
	if res.Root != 3 || res.Iterations != 0 {
		t.Fatalf("expected immediate exact root, got %+v", res)
	}
}
