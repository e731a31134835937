package cli

import (
	"testing"
	"time"
)

func TestU_ParseTTL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"[Unit] ParseTTL: Go hours", "8760h", 8760 * time.Hour, false},
		{"[Unit] ParseTTL: Go compound", "1h30m", 90 * time.Minute, false},
		{"[Unit] ParseTTL: days", "90d", 90 * day, false},
		{"[Unit] ParseTTL: weeks", "2w", 14 * day, false},
		{"[Unit] ParseTTL: compact compound", "1d12h", 36 * time.Hour, false},
		{"[Unit] ParseTTL: spaced compound", "2h 30m", 150 * time.Minute, false},
		{"[Unit] ParseTTL: long names", "1day 6hours", 30 * time.Hour, false},
		{"[Unit] ParseTTL: year", "1y", 31557600 * time.Second, false},
		{"[Unit] ParseTTL: month", "1M", 2630016 * time.Second, false},
		{"[Unit] ParseTTL: minute not month", "5m", 5 * time.Minute, false},
		{"[Unit] ParseTTL: surrounding spaces", "  10d ", 10 * day, false},
		{"[Unit] ParseTTL: empty", "", 0, true},
		{"[Unit] ParseTTL: zero", "0s", 0, true},
		{"[Unit] ParseTTL: zero days", "0d", 0, true},
		{"[Unit] ParseTTL: negative", "-1h", 0, true},
		{"[Unit] ParseTTL: negative days", "-1d", 0, true},
		{"[Unit] ParseTTL: missing unit", "10", 0, true},
		{"[Unit] ParseTTL: unknown unit", "3fortnights", 0, true},
		{"[Unit] ParseTTL: garbage", "soon", 0, true},
		{"[Unit] ParseTTL: overflow", "999999999999y", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTTL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTTL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTTL(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// FuzzParseTTL tests lifetime parsing with arbitrary input.
func FuzzParseTTL(f *testing.F) {
	f.Add("8760h")
	f.Add("90d")
	f.Add("1y 6M 2w")
	f.Add("-1d")
	f.Add("99999999999999999999y")
	f.Add("")

	f.Fuzz(func(t *testing.T, s string) {
		d, err := ParseTTL(s)
		if err == nil && d <= 0 {
			t.Errorf("ParseTTL(%q) = %v, want a positive duration", s, d)
		}
	})
}
