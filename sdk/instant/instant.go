package instant

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gwos/tdt/sdk/tdt"
)

var ErrInvalidInstant = errors.New("invalid instant")

// Layouts accepted by Parse in addition to epoch milliseconds and keywords,
// layouts without zone are read as UTC
var Layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Instant wraps time.Time to be set from flags, env, yaml, json, and query strings.
// The zero Instant means omitted.
type Instant struct {
	time.Time
}

// New returns Instant
func New(t time.Time) Instant {
	return Instant{t}
}

// Parse calls ParseWithClock with the system clock
func Parse(s string) (Instant, error) {
	return ParseWithClock(s, tdt.RealClock{})
}

// ParseWithClock parses s as one of:
//
//	""              omitted, the zero Instant
//	"now"           the clock's now
//	"epoch"         1970-01-01T00:00:00Z
//	"-2208988800000" signed epoch milliseconds
//	any of Layouts
//
// Any integer is epoch milliseconds, so "1997" is 1970-01-01T00:00:01.997Z
// rather than a year, use "1997-01-01" for the year.
func ParseWithClock(s string, c tdt.Clock) (Instant, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return Instant{}, nil
	case "now":
		return Instant{c.Now()}, nil
	case "epoch":
		return Instant{tdt.Epoch}, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Instant{time.UnixMilli(ms).UTC()}, nil
	}
	for _, layout := range Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Instant{t}, nil
		}
	}
	return Instant{}, fmt.Errorf("%w: %q", ErrInvalidInstant, s)
}

// String implements fmt.Stringer and pflag.Value interfaces
func (t Instant) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// Set implements pflag.Value interface
func (t *Instant) Set(s string) error {
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Type implements pflag.Value interface
func (t *Instant) Type() string {
	return "instant"
}

// UnmarshalText implements encoding.TextUnmarshaler interface
func (t *Instant) UnmarshalText(text []byte) error {
	return t.Set(string(text))
}

// MarshalText implements encoding.TextMarshaler interface
func (t Instant) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler.
// Accepts numbers as epoch milliseconds and strings as for Parse.
func (t *Instant) UnmarshalJSON(input []byte) error {
	if bytes.Equal(input, []byte("null")) {
		return nil
	}
	if len(input) > 1 && input[0] == '"' {
		s, err := strconv.Unquote(string(input))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInstant, err)
		}
		return t.Set(s)
	}
	return t.Set(string(input))
}

// MarshalJSON implements json.Marshaler.
func (t Instant) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	buf := make([]byte, 0, len(time.RFC3339Nano)+2)
	buf = append(buf, '"')
	buf = t.AppendFormat(buf, time.RFC3339Nano)
	return append(buf, '"'), nil
}
