package cli

import (
	"testing"
	"time"
)

func TestLoadBar(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "[....................]"},
		{50, "[##########..........]"},
		{100, "[####################]"},
		{140, "[####################]"},
		{-5, "[....................]"},
	}
	for _, tt := range tests {
		if got := loadBar(tt.v); got != tt.want {
			t.Errorf("loadBar(%v) = %s, want %s", tt.v, got, tt.want)
		}
	}
}

func TestParseWhen(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"", now},
		{"-3h", now.Add(-3 * time.Hour)},
		{"2026-06-08T10:00:00Z", time.Date(2026, 6, 8, 10, 0, 0, 0, time.UTC)},
		{"2026-06-08 07:30", time.Date(2026, 6, 8, 7, 30, 0, 0, loc)},
		{"2026-06-08", time.Date(2026, 6, 8, 12, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		got, err := parseWhen(tt.in, loc, now)
		if err != nil {
			t.Errorf("parseWhen(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseWhen(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"2h", "tomorrow", "08/06/2026"} {
		if _, err := parseWhen(bad, loc, now); err == nil {
			t.Errorf("parseWhen(%q) succeeded, want error", bad)
		}
	}
}
