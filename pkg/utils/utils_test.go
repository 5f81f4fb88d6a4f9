package utils

import (
	"math/big"
	"testing"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input    string
		length   int
		expected string
	}{
		{"hello world", 5, "he..."},
		{"short", 10, "short"},
		{"exact", 5, "exact"},
		{"", 5, ""},
		{"abc", 2, "ab"},
		{"abc", 3, "abc"},
	}

	for _, tt := range tests {
		result := TruncateString(tt.input, tt.length)
		if result != tt.expected {
			t.Errorf("TruncateString(%q, %d) = %q; want %q", tt.input, tt.length, result, tt.expected)
		}
	}
}

func TestShortAddress(t *testing.T) {
	if got := ShortAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"); got != "0xAb58...eC9B" {
		t.Errorf("ShortAddress() = %q", got)
	}
	if got := ShortAddress("0x1234"); got != "0x1234" {
		t.Errorf("ShortAddress() = %q", got)
	}
}

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return v
}

func TestFormatEther(t *testing.T) {
	tests := []struct {
		wei      *big.Int
		expected string
	}{
		{nil, "0"},
		{big.NewInt(0), "0"},
		{big.NewInt(1), "0.000000000000000001"},
		{mustBig("1000000000000000000"), "1"},
		{mustBig("2500000000000000000"), "2.5"},
		{mustBig("1234567890000000000000"), "1234.56789"},
		{mustBig("-500000000000000000"), "-0.5"},
	}

	for _, tt := range tests {
		result := FormatEther(tt.wei)
		if result != tt.expected {
			t.Errorf("FormatEther(%v) = %q; want %q", tt.wei, result, tt.expected)
		}
	}
}

func TestFormatUnits(t *testing.T) {
	if got := FormatUnits(big.NewInt(500000000), 6); got != "500" {
		t.Errorf("FormatUnits() = %q; want 500", got)
	}
	if got := FormatUnits(big.NewInt(1234567), 6); got != "1.234567" {
		t.Errorf("FormatUnits() = %q; want 1.234567", got)
	}
	if got := FormatUnits(big.NewInt(42), 0); got != "42" {
		t.Errorf("FormatUnits() = %q; want 42", got)
	}
}
