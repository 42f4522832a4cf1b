package utils

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name      string
		input     string
		loc       *time.Location
		want      string
		expectErr bool
	}{
		{name: "rfc3339 with offset", input: "2024-03-15T23:30:00-08:00", want: "2024-03-15T23:30:00-08:00"},
		{name: "utc zulu", input: "2024-03-15T10:00:00Z", want: "2024-03-15T10:00:00Z"},
		{name: "fractional seconds", input: "2024-03-15T10:00:00.250+02:00", want: "2024-03-15T10:00:00.25+02:00"},
		{name: "compact offset", input: "2024-03-15T10:00:00+0200", want: "2024-03-15T10:00:00+02:00"},
		{name: "wall time defaults to utc", input: "2024-03-15T10:00:00", want: "2024-03-15T10:00:00Z"},
		{name: "wall time in location", input: "2024-03-15T10:00:00", loc: tokyo, want: "2024-03-15T10:00:00+09:00"},
		{name: "date only", input: "2024-03-15", want: "2024-03-15T00:00:00Z"},
		{name: "ais metadata", input: "2024-03-15 10:00:00.123456789 +0000 UTC", want: "2024-03-15T10:00:00.123456789Z"},
		{name: "empty", input: "  ", expectErr: true},
		{name: "garbage", input: "next tuesday", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input, tt.loc)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s := got.Format(time.RFC3339Nano); s != tt.want {
				t.Errorf("ParseTimestamp(%q) = %s, want %s", tt.input, s, tt.want)
			}
		})
	}
}
