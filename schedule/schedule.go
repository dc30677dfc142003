// Package schedule generates the accrual/payment periods spec.md's
// Schedule component builds for the fee leg: a sequence of periods rolled
// at a fixed interval from an anchor date, with a single stub period (short
// or long) absorbing whatever remainder doesn't divide evenly, and each
// accrual end business-day-adjusted into a payment date.
//
// Dates are rolled from the anchor one whole interval at a time (never by
// repeated single-day stepping) because month-end roll semantics are not
// associative: rolling 3 months from the 31st one month at a time can drift
// off the 31st, while rolling 3 months in one step does not. This mirrors
// the now-removed swap/common.go's generateScheduleForward/
// generateScheduleBackward, generalized from a swap leg's reset/fixing
// dates to a CDS fee leg's accrual/payment dates.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/meenmo/cdscore/calendar"
	"github.com/meenmo/cdscore/cdserr"
	"github.com/meenmo/cdscore/dateinterval"
)

// StubLocation identifies which end of the schedule absorbs the remainder
// period that doesn't evenly divide into whole intervals.
type StubLocation int

const (
	StubBack StubLocation = iota
	StubFront
)

// StubType identifies whether the stub period is shorter or longer than a
// regular interval.
type StubType int

const (
	ShortStub StubType = iota
	LongStub
)

// Period is one accrual period with its business-day-adjusted payment date.
type Period struct {
	AccrualStart time.Time
	AccrualEnd   time.Time
	PayDate      time.Time
}

// Params configures Build.
type Params struct {
	EffectiveDate time.Time
	MaturityDate  time.Time
	Interval      dateinterval.Interval
	StubLocation  StubLocation
	StubType      StubType
	Calendar      *calendar.Calendar
	BadDayConv    calendar.BadDayConvention
	// PayDelay is the number of business days after (business-day-adjusted)
	// AccrualEnd that PayDate falls on. Zero means PayDate == adjusted
	// AccrualEnd.
	PayDelay int
}

// Build generates the accrual schedule between EffectiveDate and
// MaturityDate. Accrual dates are unadjusted (the ISDA convention for CDS
// fee legs); PayDate is AccrualEnd rolled onto a business day under
// BadDayConv and then advanced PayDelay further business days.
func Build(p Params) ([]Period, error) {
	if p.Calendar == nil {
		return nil, fmt.Errorf("schedule: %w: nil calendar", cdserr.InvalidArgument)
	}
	if !p.MaturityDate.After(p.EffectiveDate) {
		return nil, fmt.Errorf("schedule: %w: maturity %s not after effective date %s", cdserr.InvalidArgument, p.MaturityDate, p.EffectiveDate)
	}
	if p.Interval.Months() <= 0 && p.Interval.Unit != dateinterval.Day && p.Interval.Unit != dateinterval.Week {
		return nil, fmt.Errorf("schedule: %w: non-positive interval", cdserr.InvalidArgument)
	}

	var dates []time.Time
	switch p.StubLocation {
	case StubBack:
		dates = rollForward(p.EffectiveDate, p.MaturityDate, p.Interval)
	case StubFront:
		dates = rollBackward(p.EffectiveDate, p.MaturityDate, p.Interval)
	default:
		return nil, fmt.Errorf("schedule: %w: unrecognized stub location %d", cdserr.InvalidArgument, p.StubLocation)
	}

	dates = mergeStub(dates, p.StubLocation, p.StubType)

	periods := make([]Period, 0, len(dates)-1)
	for i := 0; i < len(dates)-1; i++ {
		payDate, err := p.Calendar.Roll(dates[i+1], p.BadDayConv)
		if err != nil {
			return nil, err
		}
		if p.PayDelay > 0 {
			payDate = p.Calendar.AddBusinessDays(payDate, p.PayDelay)
		}
		periods = append(periods, Period{
			AccrualStart: dates[i],
			AccrualEnd:   dates[i+1],
			PayDate:      payDate,
		})
	}
	return periods, nil
}

// rollForward generates unadjusted dates effective, effective+iv,
// effective+2iv, ... stopping at or after maturity. The final generated
// date is always exactly maturity; any overshoot of the last whole-interval
// step is what mergeStub later folds into a stub.
func rollForward(effective, maturity time.Time, iv dateinterval.Interval) []time.Time {
	dates := []time.Time{effective}
	cursor := effective
	for {
		next := iv.AddTo(cursor)
		if !next.Before(maturity) {
			break
		}
		dates = append(dates, next)
		cursor = next
	}
	dates = append(dates, maturity)
	return dates
}

// rollBackward generates unadjusted dates maturity, maturity-iv,
// maturity-2iv, ... stopping at or before effective, then reverses into
// chronological order. The first generated date is always exactly
// effective.
func rollBackward(effective, maturity time.Time, iv dateinterval.Interval) []time.Time {
	neg := dateinterval.Interval{Period: -iv.Period, Unit: iv.Unit}
	dates := []time.Time{maturity}
	cursor := maturity
	for {
		prev := neg.AddTo(cursor)
		if !prev.After(effective) {
			break
		}
		dates = append(dates, prev)
		cursor = prev
	}
	dates = append(dates, effective)
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// mergeStub folds the remainder period created by rollForward/rollBackward
// into a short or long stub at the requested end. rollForward/rollBackward
// already guarantee the overall span's two generated interior boundary
// closest to the stub end is where the remainder lives: for StubBack that's
// the second-to-last date, for StubFront the second date.
func mergeStub(dates []time.Time, loc StubLocation, stubType StubType) []time.Time {
	if len(dates) <= 2 || stubType != LongStub {
		return dates
	}
	switch loc {
	case StubBack:
		// Drop the second-to-last boundary, extending the final period.
		out := append([]time.Time(nil), dates[:len(dates)-2]...)
		out = append(out, dates[len(dates)-1])
		return out
	case StubFront:
		// Drop the second boundary, extending the first period.
		out := []time.Time{dates[0]}
		out = append(out, dates[2:]...)
		return out
	default:
		return dates
	}
}
