package tdt

import (
	"strconv"
	"strings"
	"time"
)

// DefaultMaxUnits limits the pretty string when the limit is omitted
const DefaultMaxUnits = 3

// PrettyBreakdown renders the calendar breakdown as "2 years, 3 months, 1 day"
func PrettyBreakdown(start, end time.Time, maxUnits int) string {
	return FormatBreakdown(Breakdown(start, end), maxUnits)
}

// FormatBreakdown joins non-zero fields from years down to minutes,
// seconds only count when nothing coarser is set.
// The list is cut to maxUnits entries, non-positive maxUnits keeps all of them.
func FormatBreakdown(b CalendarBreakdown, maxUnits int) string {
	fields := [...]struct {
		v    int
		name string
	}{
		{b.Years, "year"},
		{b.Months, "month"},
		{b.Days, "day"},
		{b.Hours, "hour"},
		{b.Minutes, "minute"},
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.v != 0 {
			parts = append(parts, plural(f.v, f.name))
		}
	}
	if len(parts) == 0 && b.Seconds != 0 {
		parts = append(parts, plural(b.Seconds, "second"))
	}
	if maxUnits > 0 && len(parts) > maxUnits {
		parts = parts[:maxUnits]
	}
	if len(parts) == 0 {
		return "0 seconds"
	}
	return strings.Join(parts, ", ")
}

func plural(v int, name string) string {
	s := strconv.Itoa(v) + " " + name
	if v != 1 && v != -1 {
		s += "s"
	}
	return s
}
