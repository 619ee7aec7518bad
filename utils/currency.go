package utils

import (
	"fmt"
	"strings"
)

// FormatCurrency formats cents as dollars with thousands separators.
// Example: 1234567 -> "$12,345.67"
func FormatCurrency(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	integerPart := fmt.Sprintf("%d", cents/100)

	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, strings.Join(groups, ","), cents%100)
}

// CentsToDollars is used where a float is unavoidable, such as chart values.
func CentsToDollars(cents int64) float64 {
	return float64(cents) / 100
}
