package tdt

import (
	"strings"
)

// Unit defines the scale used by CountTicks
type Unit string

// Recognized units, coarse to fine
const (
	Years        Unit = "years"
	Months       Unit = "months"
	Days         Unit = "days"
	Hours        Unit = "hours"
	Minutes      Unit = "minutes"
	Seconds      Unit = "seconds"
	Milliseconds Unit = "milliseconds"
	Microseconds Unit = "microseconds"
	Nanoseconds  Unit = "nanoseconds"

	// DefaultUnit is used when the unit is omitted
	DefaultUnit = Seconds
)

var units = [...]Unit{
	Years, Months, Days, Hours, Minutes, Seconds,
	Milliseconds, Microseconds, Nanoseconds,
}

// Units returns all recognized units, coarse to fine
func Units() []Unit {
	uu := make([]Unit, len(units))
	copy(uu, units[:])
	return uu
}

// ParseUnit normalizes and validates the unit name
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	if !u.IsValid() {
		return "", &UnitError{Unit: s}
	}
	return u, nil
}

// IsValid checks the unit is one of recognized
func (u Unit) IsValid() bool {
	for _, v := range units {
		if u == v {
			return true
		}
	}
	return false
}

// IsCalendar reports whether the unit has no fixed duration
func (u Unit) IsCalendar() bool {
	return u == Years || u == Months
}

func (u Unit) String() string {
	return string(u)
}

// UnmarshalText implements encoding.TextUnmarshaler interface
// used by env, yaml, and flag decoders
func (u *Unit) UnmarshalText(text []byte) error {
	v, err := ParseUnit(string(text))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// MarshalText implements encoding.TextMarshaler interface
func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u), nil
}

// seconds per fixed unit, nanos per sub-second unit
var (
	unitSeconds = map[Unit]int64{
		Days:    86400,
		Hours:   3600,
		Minutes: 60,
		Seconds: 1,
	}
	unitNanos = map[Unit]int64{
		Milliseconds: 1_000_000,
		Microseconds: 1_000,
		Nanoseconds:  1,
	}
)
