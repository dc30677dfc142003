// Package cdserr defines the sentinel error categories shared across the
// curve, schedule, and pricing packages. Callers distinguish them with
// errors.Is; routine-specific context is added by wrapping with %w.
package cdserr

import "errors"

var (
	// InvalidArgument marks a caller-supplied parameter that is out of
	// domain (negative notional, end date before start date, unknown
	// day-count string, and the like).
	InvalidArgument = errors.New("invalid argument")

	// CurveDefective marks a curve that cannot support the requested
	// operation: no points, non-increasing pillar dates, or a pillar
	// discount factor outside (0, 1].
	CurveDefective = errors.New("defective curve")

	// NumericalFailure marks a root finder or bootstrap step that did not
	// converge within its iteration budget or tolerance.
	NumericalFailure = errors.New("numerical failure")

	// CalendarMiss marks a request against a calendar name that is not
	// registered, or a bad-day convention that is not recognized.
	CalendarMiss = errors.New("calendar miss")
)
