package instant

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/gwos/tdt/sdk/tdt"
)

func TestParseWithClock(t *testing.T) {
	now := time.Date(2025, time.September, 6, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"empty", "", time.Time{}, false},
		{"now", "NOW", now, false},
		{"epoch", "epoch", tdt.Epoch, false},
		{"1900-01-01 millis", "-2208988800000", time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC), false},
		{"2020-12-31 millis", "1609372800000", time.Date(2020, time.December, 31, 0, 0, 0, 0, time.UTC), false},
		{"year-like millis", "1997", time.Date(1970, time.January, 1, 0, 0, 1, 997_000_000, time.UTC), false},
		{"date", "1997-06-15", time.Date(1997, time.June, 15, 0, 0, 0, 0, time.UTC), false},
		{"local datetime", "2024-01-31T10:20:30", time.Date(2024, time.January, 31, 10, 20, 30, 0, time.UTC), false},
		{"space datetime", "2024-01-31 10:20:30", time.Date(2024, time.January, 31, 10, 20, 30, 0, time.UTC), false},
		{"rfc3339", "2025-09-06T00:00:00Z", time.Date(2025, time.September, 6, 0, 0, 0, 0, time.UTC), false},
		{"rfc3339 nano", "2025-09-06T00:00:00.123456789+02:00",
			time.Date(2025, time.September, 5, 22, 0, 0, 123456789, time.UTC), false},
		{"garbage", "yesterday", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWithClock(tt.input, tdt.FixedClock(now))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseWithClock() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidInstant) {
				t.Errorf("ParseWithClock() error = %v, want %v", err, ErrInvalidInstant)
			}
			if !got.Time.Equal(tt.want) {
				t.Errorf("ParseWithClock() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInstant_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    time.Time
		wantErr bool
	}{
		{"number", []byte("1609372800000"), time.Date(2020, time.December, 31, 0, 0, 0, 0, time.UTC), false},
		{"string millis", []byte(`"0"`), time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC), false},
		{"string date", []byte(`"2020-12-31"`), time.Date(2020, time.December, 31, 0, 0, 0, 0, time.UTC), false},
		{"null", []byte("null"), time.Time{}, false},
		{"bad", []byte(`"31/12/2020"`), time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &Instant{}
			if err := tr.UnmarshalJSON(tt.input); (err != nil) != tt.wantErr {
				t.Errorf("Instant.UnmarshalJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tr.Time.Equal(tt.want) {
				t.Errorf("Instant.UnmarshalJSON() = %v, want %v", tr, tt.want)
			}
		})
	}
}

func TestInstantStructMarshalJSON(t *testing.T) {
	value := struct {
		Start Instant `json:"start"`
		End   Instant `json:"end"`
	}{
		Start: New(time.Date(2020, time.December, 31, 0, 0, 0, 0, time.UTC)),
	}
	output, err := json.Marshal(value)
	expected := `{"start":"2020-12-31T00:00:00Z","end":null}`
	if err != nil {
		t.Errorf("json.Marshal returned an error: %v", err)
	}
	if expected != string(output) {
		t.Errorf("json.Marshal returned %v want %v", string(output), expected)
	}
}

func TestInstantStructUnmarshalJSON(t *testing.T) {
	input := []byte(`{"NamedField":"2020-12-31T00:00:00Z"}`)
	value := struct {
		NamedField Instant
	}{}
	expected := struct {
		NamedField Instant
	}{
		Instant{time.Date(2020, time.December, 31, 0, 0, 0, 0, time.UTC)},
	}

	err := json.Unmarshal(input, &value)
	if err != nil {
		t.Errorf("json.Unmarshal returned an error: %v", err)
	}
	if !reflect.DeepEqual(value, expected) {
		t.Errorf("json.Unmarshal returned %v, want %v", value, expected)
	}
}

func TestInstantFlagValue(t *testing.T) {
	var v Instant
	if err := v.Set("1997-06-15"); err != nil {
		t.Fatalf("Instant.Set() error = %v", err)
	}
	if v.String() != "1997-06-15T00:00:00Z" || v.Type() != "instant" {
		t.Errorf("Instant = %v, %v", v.String(), v.Type())
	}
	if err := v.UnmarshalText([]byte("not a date")); err == nil {
		t.Errorf("Instant.UnmarshalText() expected error")
	}
	if (Instant{}).String() != "" {
		t.Errorf("zero Instant.String() = %q", (Instant{}).String())
	}
}
