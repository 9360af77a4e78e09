package units

import (
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"amm-settlement-lab/internal/domain"
)

var (
	sixDec    = domain.Token{Symbol: "HUB", Decimals: 6}
	twelveDec = domain.Token{Symbol: "XMR", Decimals: 12}
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		token   domain.Token
		want    string
		wantErr bool
	}{
		{"whole amount six decimals", "1.5", sixDec, "1500000", false},
		{"truncates excess precision", "1.2345678", sixDec, "1234567", false},
		{"zero", "0", sixDec, "0", false},
		{"twelve decimals", "0.000000000001", twelveDec, "1", false},
		{"sub-base-unit truncates to zero", "0.0000001", sixDec, "0", false},
		{"large amount", "21000000", sixDec, "21000000000000", false},
		{"negative rejected", "-1", sixDec, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnits(decimal.RequireFromString(tt.amount), tt.token)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, domain.ErrInvalidAmount) {
					t.Errorf("expected ErrInvalidAmount, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToBaseUnits: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("ToBaseUnits(%s) = %s, want %s", tt.amount, got, tt.want)
			}
		})
	}
}

func TestToDisplayUnits(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		token domain.Token
		want  string
	}{
		{"whole", "1500000", sixDec, "1.5"},
		{"fractional", "493579", sixDec, "0.493579"},
		{"twelve decimals", "1", twelveDec, "0.000000000001"},
		{"zero", "0", sixDec, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, _ := new(big.Int).SetString(tt.base, 10)
			got := ToDisplayUnits(base, tt.token)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ToDisplayUnits(%s) = %s, want %s", tt.base, got, tt.want)
			}
		})
	}
}

func TestToDisplayUnits_NilIsZero(t *testing.T) {
	if got := ToDisplayUnits(nil, sixDec); !got.IsZero() {
		t.Errorf("expected zero for nil base, got %s", got)
	}
}

func TestRoundTripTruncation(t *testing.T) {
	// Display precision beyond the token's decimals is lost on the way
	// to base units, never regained, and never rounds up.
	in := decimal.RequireFromString("1.9999999")
	base, err := ToBaseUnits(in, sixDec)
	if err != nil {
		t.Fatalf("ToBaseUnits: %v", err)
	}
	back := ToDisplayUnits(base, sixDec)
	if back.GreaterThan(in) {
		t.Errorf("round trip increased amount: %s -> %s", in, back)
	}
	if !back.Equal(decimal.RequireFromString("1.999999")) {
		t.Errorf("expected 1.999999, got %s", back)
	}
}

func TestParseDisplayAmount(t *testing.T) {
	if _, err := ParseDisplayAmount("12.34"); err != nil {
		t.Fatalf("ParseDisplayAmount: %v", err)
	}
	for _, bad := range []string{"", "abc", "1.2.3", "-5", "1e", "NaN"} {
		if _, err := ParseDisplayAmount(bad); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("ParseDisplayAmount(%q): expected ErrInvalidAmount, got %v", bad, err)
		}
	}
}

func TestParseBaseUnits(t *testing.T) {
	n, err := ParseBaseUnits("4000000000000")
	if err != nil {
		t.Fatalf("ParseBaseUnits: %v", err)
	}
	if n.String() != "4000000000000" {
		t.Errorf("got %s", n)
	}

	for _, bad := range []string{"", "1.5", "-1", "0x10", "abc"} {
		if _, err := ParseBaseUnits(bad); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("ParseBaseUnits(%q): expected ErrInvalidAmount, got %v", bad, err)
		}
	}
}

func TestFormatBaseUnits(t *testing.T) {
	if got := FormatBaseUnits(big.NewInt(42)); got != "42" {
		t.Errorf("got %s", got)
	}
	if got := FormatBaseUnits(nil); got != "0" {
		t.Errorf("got %s for nil", got)
	}
}
