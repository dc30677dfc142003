// Package dateinterval implements tenor-style date arithmetic (DateInterval
// in spec.md's data model): adding a period-and-unit offset to a base date,
// preserving end-of-month alignment the way the ISDA reference date
// arithmetic (JpmcdsDtFwdAdj) does.
package dateinterval

import (
	"fmt"
	"time"

	"github.com/meenmo/cdscore/calendar"
	"github.com/meenmo/cdscore/cdserr"
	"github.com/meenmo/cdscore/utils"
)

// Unit identifies the period unit of a DateInterval.
type Unit int

const (
	Day Unit = iota
	Week
	Month
	Quarter
	Semiannual
	Annual
)

func (u Unit) String() string {
	switch u {
	case Day:
		return "D"
	case Week:
		return "W"
	case Month:
		return "M"
	case Quarter:
		return "Q"
	case Semiannual:
		return "S"
	case Annual:
		return "A"
	default:
		return "?"
	}
}

// Interval is a period-and-unit offset, e.g. 3M, 6M, 1Y.
type Interval struct {
	Period int
	Unit   Unit
}

// Months reports the interval's length in whole months, for units that are
// month multiples (Month, Quarter, Semiannual, Annual). Day and Week
// intervals return 0 since they are not month-denominated.
func (iv Interval) Months() int {
	switch iv.Unit {
	case Month:
		return iv.Period
	case Quarter:
		return iv.Period * 3
	case Semiannual:
		return iv.Period * 6
	case Annual:
		return iv.Period * 12
	default:
		return 0
	}
}

// AddTo adds the interval to base. For Day and Week units this is plain
// calendar addition. For month-denominated units it uses utils.AddMonth
// (EDATE semantics) and then, when base is the last day of its month, moves
// the result to the last day of the resulting month, mirroring
// JpmcdsDtFwdAdj's end-of-month preservation for business/calendar date
// offsets.
func (iv Interval) AddTo(base time.Time) time.Time {
	switch iv.Unit {
	case Day:
		return base.AddDate(0, 0, iv.Period)
	case Week:
		return base.AddDate(0, 0, 7*iv.Period)
	default:
		out := utils.AddMonth(base, iv.Months())
		if base.AddDate(0, 0, 1).Day() == 1 {
			out = time.Date(out.Year(), out.Month()+1, 0, 0, 0, 0, 0, base.Location())
		}
		return out
	}
}

// AddToBusiness adds the interval to base and then rolls the result onto a
// business day of cal under conv. If base itself is the last business day
// of its month, the rolled result is re-snapped to the last business day of
// ITS month too, the same EOM-preservation JpmcdsDtFwdAdj applies when
// rolling a business-EOM start date forward by whole months.
func (iv Interval) AddToBusiness(base time.Time, cal *calendar.Calendar, conv calendar.BadDayConvention) (time.Time, error) {
	if cal == nil {
		return time.Time{}, fmt.Errorf("dateinterval: %w: nil calendar", cdserr.InvalidArgument)
	}
	wasEOM := cal.IsBusinessEOM(base)
	raw := iv.AddTo(base)
	if wasEOM && iv.Months() != 0 {
		raw = cal.BusinessEOM(raw)
	}
	return cal.Roll(raw, conv)
}
