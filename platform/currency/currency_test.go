package currency

import "testing"

func TestFormatINRTierBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{"exactly one crore", 10000000, "₹1.0Cr"},
		{"above one crore", 25000000, "₹2.5Cr"},
		{"just below one crore", 9999999, "₹100.0L"},
		{"exactly one lakh", 100000, "₹1.0L"},
		{"mid lakh", 250000, "₹2.5L"},
		{"exactly one thousand", 1000, "₹1.0K"},
		{"mid thousand", 5000, "₹5.0K"},
		{"below one thousand", 500, "₹500"},
		{"zero", 0, "₹0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatINR(tt.amount); got != tt.want {
				t.Errorf("FormatINR(%v) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}

func TestFormatBudget(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"numeric string", "2500000", "₹25.0L"},
		{"crore amount", "15000000", "₹1.5Cr"},
		{"small amount", "750", "₹750"},
		{"blank", "", ""},
		{"whitespace only", "   ", ""},
		{"unparseable returned as-is", "25 lakh", "25 lakh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatBudget(tt.input); got != tt.want {
				t.Errorf("FormatBudget(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
