package tdt

import "time"

// Epoch is the default start instant
var Epoch = time.Unix(0, 0).UTC()

// Clock provides the current instant
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock
type RealClock struct{}

// Now returns time.Now()
func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant
type FixedClock time.Time

// Now returns the fixed instant
func (c FixedClock) Now() time.Time { return time.Time(c) }

var _ Clock = RealClock{}
var _ Clock = FixedClock{}
