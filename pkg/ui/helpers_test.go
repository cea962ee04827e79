package ui

import (
	"testing"
	"time"
)

func TestFitWidth(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "orders", 10, "orders"},
		{"exact", "orders", 6, "orders"},
		{"truncated", "orders-service", 8, "orders-…"},
		{"wide runes", "服务网关", 5, "服务…"},
		{"zero", "orders", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fitWidth(tt.in, tt.width); got != tt.want {
				t.Errorf("fitWidth(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Errorf("padRight should never truncate, got %q", got)
	}
}

func TestFormatSpan(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{76 * time.Hour, "3d 4h"},
		{48 * time.Hour, "2d"},
		{5*time.Hour + 20*time.Minute, "5h"},
		{45 * time.Minute, "45m"},
	}
	for _, tt := range tests {
		if got := formatSpan(tt.d); got != tt.want {
			t.Errorf("formatSpan(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatWhenIsUTC(t *testing.T) {
	loc := time.FixedZone("X", 5*3600)
	ts := time.Date(2025, time.March, 2, 3, 30, 0, 0, loc)
	if got := formatWhen(ts); got != "Mar 1 22:30" {
		t.Errorf("formatWhen = %q", got)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2025-03-04", time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), false},
		{" 2025-03-04 ", time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), false},
		{"2025-03-04 15:30", time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC), false},
		{"2025-03-04T15:30", time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC), false},
		{"2025-03-04T15:30:00+02:00", time.Date(2025, 3, 4, 13, 30, 0, 0, time.UTC), false},
		{"04/03/2025", time.Time{}, true},
		{"", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDate(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("parseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !tt.wantErr && got.Location() != time.UTC {
			t.Errorf("parseDate(%q) location = %v", tt.in, got.Location())
		}
	}
}
