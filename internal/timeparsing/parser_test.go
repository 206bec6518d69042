package timeparsing

import (
	"testing"
	"time"
)

// cutoffNow is the reference clock for every test here: a Wednesday.
var cutoffNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func TestParsePast(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "archive default", input: "30d", want: time.Date(2024, 12, 16, 10, 0, 0, 0, time.UTC)},
		{name: "weeks", input: "2w", want: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)},
		{name: "hours", input: "12h", want: time.Date(2025, 1, 14, 22, 0, 0, 0, time.UTC)},
		{name: "months cross a year", input: "3m", want: time.Date(2024, 10, 15, 10, 0, 0, 0, time.UTC)},
		{name: "explicit minus is unchanged", input: "-1y", want: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)},
		{name: "zero is now", input: "0d", want: cutoffNow},
		{name: "surrounding space", input: "  7d ", want: time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)},
		{name: "date", input: "2024-12-01", want: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)},
		{name: "date and minute", input: "2025-01-10 08:30", want: time.Date(2025, 1, 10, 8, 30, 0, 0, time.UTC)},
		{name: "rfc3339 with offset", input: "2025-01-15T09:00:00+02:00", want: time.Date(2025, 1, 15, 7, 0, 0, 0, time.UTC)},
		{name: "future compact rejected", input: "+1d", wantErr: true},
		{name: "future date rejected", input: "2026-01-01", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "not a date at all", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePast(tt.input, cutoffNow)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePast(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParsePast(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePastNaturalLanguage(t *testing.T) {
	tests := []struct {
		input   string
		wantDay int
	}{
		{"yesterday", 14},
		{"3 days ago", 12},
	}
	for _, tt := range tests {
		got, err := ParsePast(tt.input, cutoffNow)
		if err != nil {
			t.Errorf("ParsePast(%q) failed: %v", tt.input, err)
			continue
		}
		if got.Year() != 2025 || got.Month() != time.January || got.Day() != tt.wantDay {
			t.Errorf("ParsePast(%q) = %v, want Jan %d 2025", tt.input, got, tt.wantDay)
		}
	}

	if _, err := ParsePast("in 3 days", cutoffNow); err == nil {
		t.Error("ParsePast(\"in 3 days\") should reject a future cutoff")
	}
}

// Compact durations win over the other layers, and a date is read before
// natural language gets a chance to misinterpret it.
func TestParseRelativeTimeLayers(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"+6h", time.Date(2025, 1, 15, 16, 0, 0, 0, time.UTC)},
		{"1d", time.Date(2025, 1, 16, 10, 0, 0, 0, time.UTC)},
		{"2025-02-01", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"2025-03-15T14:30:00Z", time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseRelativeTime(tt.input, cutoffNow)
		if err != nil {
			t.Errorf("ParseRelativeTime(%q) failed: %v", tt.input, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseRelativeTime(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	got, err := ParseRelativeTime("tomorrow", cutoffNow)
	if err != nil {
		t.Fatalf("ParseRelativeTime(\"tomorrow\") failed: %v", err)
	}
	if got.Day() != 16 {
		t.Errorf("ParseRelativeTime(\"tomorrow\") = %v, want Jan 16", got)
	}
}

func TestParseCompactDurationCalendarUnits(t *testing.T) {
	// Month and year steps follow the calendar, so a month back from
	// March 31 normalizes past the end of February.
	base := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	got, err := ParseCompactDuration("-1m", base)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("-1m from %v = %v, want %v", base, got, want)
	}

	loc := time.FixedZone("UTC+5", 5*60*60)
	got, err = ParseCompactDuration("-1d", time.Date(2025, 1, 15, 10, 0, 0, 0, loc))
	if err != nil {
		t.Fatal(err)
	}
	if got.Location() != loc || got.Hour() != 10 {
		t.Errorf("-1d lost the caller's zone: %v", got)
	}

	for _, in := range []string{"", "d", "1.5d", "1 d", "++1d", "1D"} {
		if IsCompactDuration(in) {
			t.Errorf("IsCompactDuration(%q) = true", in)
		}
	}
}
