package tdt

import (
	"math"
	"time"
)

// CountTicks returns the elapsed time between start and end in the unit.
//
// Years and months are approximated from calendar fields:
//
//	years  = yearDiff + monthDiff/12 + dayDiff/365
//	months = yearDiff*12 + monthDiff + dayDiff/30
//
// and so are fractional. Every other unit is floored toward negative infinity,
// thus reversed instants give negative counts rounded down.
func CountTicks(start, end time.Time, unit Unit) (float64, error) {
	switch {
	case unit.IsCalendar():
		return calendarTicks(start, end, unit), nil
	case unitSeconds[unit] > 0, unitNanos[unit] > 0:
		return float64(wholeTicks(start, end, unit)), nil
	}
	return 0, &UnitError{Unit: string(unit)}
}

// CountWholeTicks is like CountTicks but keeps integer precision
// for the fine units where float64 would lose digits.
// Years and months are floored.
func CountWholeTicks(start, end time.Time, unit Unit) (int64, error) {
	switch {
	case unit.IsCalendar():
		return int64(math.Floor(calendarTicks(start, end, unit))), nil
	case unitSeconds[unit] > 0, unitNanos[unit] > 0:
		return wholeTicks(start, end, unit), nil
	}
	return 0, &UnitError{Unit: string(unit)}
}

func calendarTicks(start, end time.Time, unit Unit) float64 {
	start = start.In(end.Location())
	years := float64(end.Year() - start.Year())
	months := float64(int(end.Month()) - int(start.Month()))
	days := float64(end.Day() - start.Day())
	if unit == Years {
		return years + months/12 + days/365
	}
	return years*12 + months + days/30
}

func wholeTicks(start, end time.Time, unit Unit) int64 {
	sec, nsec := elapsed(start, end)
	if k, ok := unitSeconds[unit]; ok {
		return floorDiv(sec, k)
	}
	return scaled(sec, nsec, unitNanos[unit])
}

// elapsed splits end-start into whole seconds and nanoseconds in [0, 1e9)
// so the result does not saturate the way time.Duration does
func elapsed(start, end time.Time) (sec, nsec int64) {
	sec = end.Unix() - start.Unix()
	nsec = int64(end.Nanosecond() - start.Nanosecond())
	if nsec < 0 {
		sec--
		nsec += int64(time.Second)
	}
	return sec, nsec
}

// scaled returns floor((sec*1e9 + nsec) / per), saturated to the int64 range
func scaled(sec, nsec, per int64) int64 {
	perSec := int64(time.Second) / per
	if sec > math.MaxInt64/perSec-1 {
		return math.MaxInt64
	}
	if sec < math.MinInt64/perSec+1 {
		return math.MinInt64
	}
	return sec*perSec + nsec/per
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
