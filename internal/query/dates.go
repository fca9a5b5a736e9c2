package query

import (
	"strings"
	"time"

	"github.com/gcbaptista/searchlab/config"
)

// DateLayout is the calendar date format accepted for range bounds.
const DateLayout = "2006-01-02"

const lastMilli = 24*time.Hour - time.Millisecond

// DateRange converts calendar dates to an inclusive millisecond range on field.
// start maps to 00:00:00.000 UTC and end to 23:59:59.999 UTC of the named day;
// with DayBoundaryShifted both days are advanced by one first. A bound that
// does not parse is left open. When neither bound parses DateRange returns nil.
func DateRange(field, start, end string, mode config.DayBoundary) *RangeFilter {
	low, okLow := dayStart(start, mode)
	high, okHigh := dayStart(end, mode)
	if !okLow && !okHigh {
		return nil
	}

	r := &RangeFilter{Field: field, IncludeLow: true, IncludeHigh: true}
	if okLow {
		v := low.UnixMilli()
		r.Low = &v
	}
	if okHigh {
		v := high.Add(lastMilli).UnixMilli()
		r.High = &v
	}
	return r
}

// dayStart returns midnight UTC of the day named by s.
func dayStart(s string, mode config.DayBoundary) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	if mode == config.DayBoundaryShifted {
		day = day.AddDate(0, 0, 1)
	}
	return day, true
}
