package cli

import "testing"

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{9.5, "$9.50"},
		{1234.56, "$1,234.56"},
		{1000000, "$1,000,000.00"},
		{-2500.75, "-$2,500.75"},
		{999.999, "$1,000.00"},
	}

	for _, tt := range tests {
		if got := FormatUSD(tt.amount); got != tt.want {
			t.Errorf("FormatUSD(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{3.456, "+3.46%"},
		{-2.1, "-2.10%"},
		{0, "0.00%"},
	}

	for _, tt := range tests {
		if got := FormatPercent(tt.value); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size float64
		want string
	}{
		{0.02, "0.02"},
		{1.5, "1.5"},
		{2, "2"},
		{0.000001, "0.000001"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.size); got != tt.want {
			t.Errorf("FormatSize(%v) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{50000, "50000.0"},
		{3000.37, "3000.4"},
		{98.7654, "98.7654"},
		{0.123456, "0.123456"},
	}

	for _, tt := range tests {
		if got := FormatPrice(tt.price); got != tt.want {
			t.Errorf("FormatPrice(%v) = %q, want %q", tt.price, got, tt.want)
		}
	}
}
