package money

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2000", want: "2000"},
		{in: " 12.50 ", want: "12.5"},
		{in: "12,34", want: "12.34"},
		{in: "-3", want: "-3"},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.in, err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestFitsAndIsPositive(t *testing.T) {
	tests := []struct {
		in       string
		fits     bool
		positive bool
	}{
		{"0", true, false},
		{"0.01", true, true},
		{"2000", true, true},
		{"2000.10", true, true},
		{"2000.105", false, false},
		{"-5.00", true, false},
		{"9999999999.99", true, true},
		{"10000000000", false, false},
		{"12.500", true, true},
		{"1e3", true, true},
		{"1e10", false, false},
		{"1e100000000", false, false},
		{"-1e100000000", false, false},
		{"1e-100000000", false, false},
		{"0e-100000000", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d := decimal.RequireFromString(tt.in)
			if got := Fits(d); got != tt.fits {
				t.Errorf("Fits(%s) = %v, want %v", tt.in, got, tt.fits)
			}
			if got := IsPositive(d); got != tt.positive {
				t.Errorf("IsPositive(%s) = %v, want %v", tt.in, got, tt.positive)
			}
		})
	}
}

func TestFits_HugeExponentReturnsQuickly(t *testing.T) {
	for _, in := range []string{"1e100000000", "-1e100000000", "1e-100000000", "9e2147483647"} {
		d, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) unexpected error: %v", in, err)
		}

		done := make(chan bool, 1)
		go func() { done <- IsPositive(d) }()

		select {
		case got := <-done:
			if got {
				t.Errorf("IsPositive(%s) = true, want false", in)
			}
		case <-time.After(time.Second):
			t.Fatalf("IsPositive(%s) did not return within 1s", in)
		}
	}
}

func TestFormat(t *testing.T) {
	if got := Format(decimal.NewFromInt(3000)); got != "3000.00" {
		t.Errorf("Format(3000) = %q, want 3000.00", got)
	}
	if got := Format(decimal.RequireFromString("12.5")); got != "12.50" {
		t.Errorf("Format(12.5) = %q, want 12.50", got)
	}
}
