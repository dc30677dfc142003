// Package daycount implements the day-count conventions and compounding-
// basis conversion spec.md's Curve and Schedule components depend on.
package daycount

import (
	"fmt"
	"time"

	"github.com/meenmo/cdscore/cdserr"
)

// Convention identifies a day-count rule.
type Convention int

const (
	Act360 Convention = iota
	Act365F
	ActAct
	Thirty360     // 30/360, NASD (bond basis), asymmetric 31st-of-month rule
	ThirtyE360    // 30E/360, AIBD (Eurobond basis), symmetric 31st-of-month rule
	EffectiveRate // always yields a fraction of 1; used where a rate is already an effective per-period rate
)

func (c Convention) String() string {
	switch c {
	case Act360:
		return "ACT/360"
	case Act365F:
		return "ACT/365F"
	case ActAct:
		return "ACT/ACT"
	case Thirty360:
		return "30/360"
	case ThirtyE360:
		return "30E/360"
	case EffectiveRate:
		return "EffectiveRate"
	default:
		return "Unknown"
	}
}

// Parse maps a convention's canonical string name back to a Convention.
func Parse(s string) (Convention, error) {
	switch s {
	case "ACT/360":
		return Act360, nil
	case "ACT/365F":
		return Act365F, nil
	case "ACT/ACT":
		return ActAct, nil
	case "30/360":
		return Thirty360, nil
	case "30E/360":
		return ThirtyE360, nil
	case "EffectiveRate":
		return EffectiveRate, nil
	default:
		return 0, fmt.Errorf("daycount: %w: unrecognized convention %q", cdserr.InvalidArgument, s)
	}
}

// YearFraction computes the day-count fraction between start and end
// (end assumed not before start; callers needing a signed fraction negate
// the result themselves) under the given convention.
func YearFraction(start, end time.Time, conv Convention) (float64, error) {
	switch conv {
	case Act360:
		return actDays(start, end) / 360.0, nil
	case Act365F:
		return actDays(start, end) / 365.0, nil
	case ActAct:
		return actActFraction(start, end), nil
	case Thirty360:
		return thirty360Fraction(start, end, false), nil
	case ThirtyE360:
		return thirty360Fraction(start, end, true), nil
	case EffectiveRate:
		return 1.0, nil
	default:
		return 0, fmt.Errorf("daycount: %w: unrecognized convention %d", cdserr.InvalidArgument, conv)
	}
}

func actDays(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}

// actActFraction splits the period at each calendar-year boundary and
// weights each piece by its own year's length (365 or 366), the standard
// ACT/ACT (ISDA) treatment.
func actActFraction(start, end time.Time) float64 {
	if !end.After(start) {
		return 0
	}
	if start.Year() == end.Year() {
		return actDays(start, end) / float64(daysInYear(start.Year()))
	}
	total := 0.0
	cursor := start
	for cursor.Year() < end.Year() {
		yearEnd := time.Date(cursor.Year()+1, 1, 1, 0, 0, 0, 0, time.UTC)
		total += actDays(cursor, yearEnd) / float64(daysInYear(cursor.Year()))
		cursor = yearEnd
	}
	total += actDays(cursor, end) / float64(daysInYear(end.Year()))
	return total
}

func daysInYear(year int) int {
	if isLeapYear(year) {
		return 366
	}
	return 365
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// thirty360Fraction implements the 30/360 family. The NASD (bond basis)
// variant adjusts d1 before d2 (an asymmetric rule: a start on the 31st rolls
// to 30, and an end on the 31st rolls to 30 only when the adjusted start is
// the 30th, otherwise it stays 31); the 30E/360 (Eurobond basis) variant
// rolls both d1 and d2 from 31 to 30 unconditionally.
func thirty360Fraction(start, end time.Time, eurobond bool) float64 {
	y1, m1, d1 := start.Year(), int(start.Month()), start.Day()
	y2, m2, d2 := end.Year(), int(end.Month()), end.Day()

	if eurobond {
		if d1 == 31 {
			d1 = 30
		}
		if d2 == 31 {
			d2 = 30
		}
	} else {
		if d1 == 31 {
			d1 = 30
		}
		if d2 == 31 && d1 == 30 {
			d2 = 30
		}
	}

	days := float64((y2-y1)*360 + (m2-m1)*30 + (d2 - d1))
	return days / 360.0
}

// ConvertCompoundRate converts a rate quoted under (basisIn, dccIn) into the
// equivalent rate under (basisOut, dccOut) for the period [start, end],
// routing through continuously-compounded form as the common intermediate
// representation. The input rate's period fraction is computed under dccIn
// (the convention the input rate is quoted against); the output fraction is
// computed under dccOut.
func ConvertCompoundRate(rate float64, basisIn Basis, dccIn Convention, basisOut Basis, dccOut Convention, start, end time.Time) (float64, error) {
	fracIn, err := YearFraction(start, end, dccIn)
	if err != nil {
		return 0, err
	}
	cc, err := toContinuous(rate, basisIn, fracIn)
	if err != nil {
		return 0, err
	}
	fracOut, err := YearFraction(start, end, dccOut)
	if err != nil {
		return 0, err
	}
	return fromContinuous(cc, basisOut, fracOut)
}
