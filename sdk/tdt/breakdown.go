package tdt

import (
	"math"
	"time"
)

// CalendarBreakdown holds elapsed time as calendar remainders:
// each field is what is left at its scale after borrowing from the next coarser one
type CalendarBreakdown struct {
	Years   int `json:"years"`
	Months  int `json:"months"`
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// IsZero checks all fields are zero
func (b CalendarBreakdown) IsZero() bool {
	return b == CalendarBreakdown{}
}

func (b CalendarBreakdown) negate() CalendarBreakdown {
	return CalendarBreakdown{
		Years:   -b.Years,
		Months:  -b.Months,
		Days:    -b.Days,
		Hours:   -b.Hours,
		Minutes: -b.Minutes,
		Seconds: -b.Seconds,
	}
}

// MultiScaleBreakdown holds independent totals of elapsed time at every scale
type MultiScaleBreakdown struct {
	Millennia    int64 `json:"millennia"`
	Centuries    int64 `json:"centuries"`
	Decades      int64 `json:"decades"`
	Years        int64 `json:"years"`
	Months       int64 `json:"months"`
	Weeks        int64 `json:"weeks"`
	Days         int64 `json:"days"`
	Hours        int64 `json:"hours"`
	Minutes      int64 `json:"minutes"`
	Seconds      int64 `json:"seconds"`
	Milliseconds int64 `json:"milliseconds"`
	Microseconds int64 `json:"microseconds"`
	Nanoseconds  int64 `json:"nanoseconds"`
}

// Breakdown splits elapsed time into years, months, days, hours, minutes, seconds.
//
// Naive field differences are normalized by borrowing fine to coarse:
// seconds, minutes, hours, days, months. A negative day count borrows the length
// of the month preceding end's month, then of the month before it when still negative
// (a start day past the end of a short month).
//
// Days stay below the length of the month preceding end's month except after
// the second borrow: 2024-01-31 to 2024-03-01 gives 30 days though February has 29,
// and matches the elapsed whole days.
//
// When end precedes start the result is the negated breakdown of the swapped
// instants, so all fields share one sign. Fields of start are read in end's location.
func Breakdown(start, end time.Time) CalendarBreakdown {
	start = start.In(end.Location())
	if end.Before(start) {
		return Breakdown(end, start).negate()
	}

	years := end.Year() - start.Year()
	months := int(end.Month()) - int(start.Month())
	days := end.Day() - start.Day()
	hours := end.Hour() - start.Hour()
	minutes := end.Minute() - start.Minute()
	seconds := end.Second() - start.Second()

	if seconds < 0 {
		seconds += 60
		minutes--
	}
	if minutes < 0 {
		minutes += 60
		hours--
	}
	if hours < 0 {
		hours += 24
		days--
	}
	for back := 0; days < 0; back++ {
		days += daysIn(end.Year(), end.Month()-time.Month(back+1))
		months--
	}
	if months < 0 {
		months += 12
		years--
	}

	return CalendarBreakdown{
		Years:   years,
		Months:  months,
		Days:    days,
		Hours:   hours,
		Minutes: minutes,
		Seconds: seconds,
	}
}

// daysIn returns the length of the month, month may be out of 1..12
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// scale ratios in days
const (
	daysPerMillennium = 365_000
	daysPerCentury    = 36_500
	daysPerDecade     = 3_650
	daysPerWeek       = 7
)

// BreakdownAll counts elapsed time at every scale from millennia to nanoseconds.
//
// Each field is a total, not a remainder. Fixed-length scales are floored
// toward negative infinity, with a millennium, century, and decade taken as
// 365000, 36500, and 3650 days. Years and months have no fixed length and come
// from the calendar breakdown: Months is the total of whole months elapsed.
// Milliseconds, microseconds, and nanoseconds saturate at the int64 range.
func BreakdownAll(start, end time.Time) MultiScaleBreakdown {
	sec, nsec := elapsed(start, end)
	days := floorDiv(sec, 86400)
	b := Breakdown(start, end)

	return MultiScaleBreakdown{
		Millennia:    floorDiv(days, daysPerMillennium),
		Centuries:    floorDiv(days, daysPerCentury),
		Decades:      floorDiv(days, daysPerDecade),
		Years:        int64(b.Years),
		Months:       int64(b.Years)*12 + int64(b.Months),
		Weeks:        floorDiv(days, daysPerWeek),
		Days:         days,
		Hours:        floorDiv(sec, 3600),
		Minutes:      floorDiv(sec, 60),
		Seconds:      sec,
		Milliseconds: scaled(sec, nsec, int64(time.Millisecond)),
		Microseconds: scaled(sec, nsec, int64(time.Microsecond)),
		Nanoseconds:  scaled(sec, nsec, int64(time.Nanosecond)),
	}
}

// Saturated reports whether a sub-second total hit the int64 range
func (b MultiScaleBreakdown) Saturated() bool {
	return b.Nanoseconds == math.MaxInt64 || b.Nanoseconds == math.MinInt64
}
