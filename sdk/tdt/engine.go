// Package tdt computes elapsed time between two instants: a count in one unit,
// a calendar breakdown, totals at every scale, and a human-readable summary.
//
// The package-level functions take both instants explicitly and never read the clock.
// Engine applies the defaults: start is the Unix epoch, end is the clock's now,
// unit is seconds, and the summary keeps three units.
package tdt

import (
	"log/slog"
	"time"

	sdklog "github.com/gwos/tdt/sdk/log"
)

// Engine resolves omitted parameters and calls the package-level operations
type Engine struct {
	Clock    Clock
	Start    time.Time
	Unit     Unit
	MaxUnits int
	// Location defines the frame for calendar fields,
	// nil keeps the end instant's location
	Location *time.Location
}

// Option defines engine option type
type Option func(*Engine)

// NewEngine returns engine with defaults and applied options
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		Clock:    RealClock{},
		Start:    Epoch,
		Unit:     DefaultUnit,
		MaxUnits: DefaultMaxUnits,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithClock sets the clock providing the default end
func WithClock(c Clock) Option {
	return func(e *Engine) { e.Clock = c }
}

// WithStart sets the default start
func WithStart(t time.Time) Option {
	return func(e *Engine) { e.Start = t }
}

// WithUnit sets the default unit
func WithUnit(u Unit) Option {
	return func(e *Engine) { e.Unit = u }
}

// WithMaxUnits sets the default limit for the pretty string
func WithMaxUnits(n int) Option {
	return func(e *Engine) { e.MaxUnits = n }
}

// WithLocation sets the frame for calendar fields
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.Location = loc }
}

// Span returns the pair of instants with zero values replaced by defaults
func (e *Engine) Span(start, end time.Time) Span {
	if start.IsZero() {
		start = e.Start
	}
	if end.IsZero() {
		if e.Clock == nil {
			end = time.Now()
		} else {
			end = e.Clock.Now()
		}
	}
	if e.Location != nil {
		start, end = start.In(e.Location), end.In(e.Location)
	}
	return Span{Start: start, End: end}
}

// Since returns the span from start to now
func (e *Engine) Since(start time.Time) Span {
	return e.Span(start, time.Time{})
}

// CountTicks counts ticks with defaults applied, empty unit means the engine's one
func (e *Engine) CountTicks(start, end time.Time, unit Unit) (float64, error) {
	if unit == "" {
		unit = e.Unit
	}
	v, err := e.Span(start, end).Ticks(unit)
	if err != nil {
		sdklog.Logger.Debug("could not count ticks",
			slog.String("unit", string(unit)), slog.Any("error", err))
	}
	return v, err
}

// Breakdown returns calendar breakdown with defaults applied
func (e *Engine) Breakdown(start, end time.Time) CalendarBreakdown {
	return e.Span(start, end).Breakdown()
}

// BreakdownAll returns multi-scale breakdown with defaults applied
func (e *Engine) BreakdownAll(start, end time.Time) MultiScaleBreakdown {
	return e.Span(start, end).BreakdownAll()
}

// PrettyBreakdown returns summary with defaults applied, zero maxUnits means the engine's one
func (e *Engine) PrettyBreakdown(start, end time.Time, maxUnits int) string {
	if maxUnits == 0 {
		maxUnits = e.MaxUnits
	}
	return e.Span(start, end).Pretty(maxUnits)
}

// Span is a resolved pair of instants
type Span struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Reversed reports whether end precedes start
func (s Span) Reversed() bool {
	return s.End.Before(s.Start)
}

// Ticks calls CountTicks
func (s Span) Ticks(unit Unit) (float64, error) {
	return CountTicks(s.Start, s.End, unit)
}

// WholeTicks calls CountWholeTicks
func (s Span) WholeTicks(unit Unit) (int64, error) {
	return CountWholeTicks(s.Start, s.End, unit)
}

// Breakdown calls Breakdown
func (s Span) Breakdown() CalendarBreakdown {
	return Breakdown(s.Start, s.End)
}

// BreakdownAll calls BreakdownAll
func (s Span) BreakdownAll() MultiScaleBreakdown {
	return BreakdownAll(s.Start, s.End)
}

// Pretty calls PrettyBreakdown
func (s Span) Pretty(maxUnits int) string {
	return PrettyBreakdown(s.Start, s.End, maxUnits)
}
