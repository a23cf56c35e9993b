package services

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatAmount_Values(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"zero", "0", "0"},
		{"small integer", "5", "5"},
		{"with decimals", "42.5", "42.50"},
		{"hundreds", "999.99", "999.99"},
		{"thousands", "1234.56", "1,234.56"},
		{"exact thousands boundary", "1000", "1,000"},
		{"event total", "152950", "152,950"},
		{"grand total ex vat", "6041141", "6,041,141"},
		{"vat", "906171.15", "906,171.15"},
		{"rounds to two places", "7642043.365", "7,642,043.37"},
		{"rounds up to whole", "0.999", "1"},
		{"billions", "1234567890", "1,234,567,890"},
		{"negative small", "-100", "-100"},
		{"negative fraction", "-1234.5", "-1,234.50"},
		{"negative below one", "-0.5", "-0.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAmount(decimal.RequireFromString(tt.input))
			if got != tt.expect {
				t.Errorf("FormatAmount(%s) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney("SAR", decimal.NewFromInt(451191)); got != "SAR 451,191" {
		t.Errorf("FormatMoney = %q", got)
	}
	if got := FormatMoney("", decimal.NewFromInt(12)); got != "12" {
		t.Errorf("FormatMoney without currency = %q", got)
	}
}

func TestFormatPercentAndRate(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"percent", FormatPercent(decimal.RequireFromString("33.7724")), "33.8%"},
		{"whole percent", FormatPercent(decimal.NewFromInt(15)), "15.0%"},
		{"rate", FormatRate(decimal.RequireFromString("0.15")), "15%"},
		{"fractional rate", FormatRate(decimal.RequireFromString("0.125")), "12.5%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
