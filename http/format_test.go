package http

import (
	"regexp"
	"testing"
)

var currencyPattern = regexp.MustCompile(`^\$\d{1,3}(,\d{3})*$`)

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		value float64
		want  string
	}{
		{452600, "$452,600"},
		{372855.8, "$372,856"},
		{999.4, "$999"},
		{1000, "$1,000"},
		{1234567.5, "$1,234,568"},
		{0.3, "$0"},
		{-0.3, "$0"},
		{-15000.2, "-$15,000"},
		{1e19, "$10,000,000,000,000,000,000"},
		{-1e19, "-$10,000,000,000,000,000,000"},
	}
	for _, c := range cases {
		got := FormatCurrency(c.value)
		if got != c.want {
			t.Fatalf("FormatCurrency(%v) = %q, want %q", c.value, got, c.want)
		}
		if c.value >= 0 && !currencyPattern.MatchString(got) {
			t.Fatalf("%q does not match currency pattern", got)
		}
	}
}

func TestFormatCurrencyHugeValues(t *testing.T) {
	for _, value := range []float64{9.3e18, 1e19, 1e300} {
		got := FormatCurrency(value)
		if !currencyPattern.MatchString(got) {
			t.Fatalf("FormatCurrency(%v) = %q, want grouped positive dollars", value, got)
		}
	}
}
