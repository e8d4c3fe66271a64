// Package report renders elapsed time of a span in every form at once:
// ticks in one unit, the calendar breakdown, totals at every scale, and the summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/gwos/tdt/sdk/tdt"
)

// Formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Sections
const (
	SectionTicks     = "ticks"
	SectionBreakdown = "breakdown"
	SectionAll       = "all"
	SectionPretty    = "pretty"
)

// Sections lists all known sections in output order
func Sections() []string {
	return []string{SectionTicks, SectionBreakdown, SectionAll, SectionPretty}
}

// Report holds the computed sections, omitted ones are nil
type Report struct {
	Start     time.Time                `json:"start"`
	End       time.Time                `json:"end"`
	Unit      tdt.Unit                 `json:"unit,omitempty"`
	Ticks     *float64                 `json:"ticks,omitempty"`
	Breakdown *tdt.CalendarBreakdown   `json:"breakdown,omitempty"`
	All       *tdt.MultiScaleBreakdown `json:"all,omitempty"`
	Pretty    *string                  `json:"pretty,omitempty"`
}

// Build computes the sections for span, no sections means all of them
func Build(span tdt.Span, unit tdt.Unit, maxUnits int, sections ...string) (*Report, error) {
	if len(sections) == 0 {
		sections = Sections()
	}
	r := &Report{Start: span.Start, End: span.End}
	for _, s := range sections {
		switch s {
		case SectionTicks:
			v, err := span.Ticks(unit)
			if err != nil {
				return nil, err
			}
			r.Unit, r.Ticks = unit, &v
		case SectionBreakdown:
			b := span.Breakdown()
			r.Breakdown = &b
		case SectionAll:
			b := span.BreakdownAll()
			r.All = &b
		case SectionPretty:
			p := span.Pretty(maxUnits)
			r.Pretty = &p
		default:
			return nil, fmt.Errorf("unknown report section: %q", s)
		}
	}
	return r, nil
}

// Write renders the report in format
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case FormatJSON:
		return r.WriteJSON(w)
	case FormatText, "":
		return r.WriteText(w)
	}
	return fmt.Errorf("unknown report format: %q", format)
}

// WriteJSON renders indented JSON
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText renders aligned lines
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "start:\t%s\n", r.Start.Format(time.RFC3339Nano))
	fmt.Fprintf(tw, "end:\t%s\n", r.End.Format(time.RFC3339Nano))
	if r.Ticks != nil {
		fmt.Fprintf(tw, "ticks in %s:\t%s\n", r.Unit, strconv.FormatFloat(*r.Ticks, 'f', -1, 64))
	}
	if b := r.Breakdown; b != nil {
		fmt.Fprintf(tw, "breakdown:\t%dy %dmo %dd %dh %dm %ds\n",
			b.Years, b.Months, b.Days, b.Hours, b.Minutes, b.Seconds)
	}
	if r.Pretty != nil {
		fmt.Fprintf(tw, "pretty:\t%s\n", *r.Pretty)
	}
	if a := r.All; a != nil {
		fmt.Fprintln(tw, "totals:")
		for _, f := range [...]struct {
			name string
			v    int64
		}{
			{"millennia", a.Millennia},
			{"centuries", a.Centuries},
			{"decades", a.Decades},
			{"years", a.Years},
			{"months", a.Months},
			{"weeks", a.Weeks},
			{"days", a.Days},
			{"hours", a.Hours},
			{"minutes", a.Minutes},
			{"seconds", a.Seconds},
			{"milliseconds", a.Milliseconds},
			{"microseconds", a.Microseconds},
			{"nanoseconds", a.Nanoseconds},
		} {
			fmt.Fprintf(tw, "  %s\t%d\n", f.name, f.v)
		}
	}
	return tw.Flush()
}
