// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Placeholder is shown for a metric that has no value yet.
const Placeholder = "—"

// FormatKg formats a weight with one decimal.
func FormatKg(kg float64) string {
	return strconv.FormatFloat(kg, 'f', 1, 64)
}

// FormatOptionalKg formats kg, or the placeholder when it is nil.
func FormatOptionalKg(kg *float64) string {
	if kg == nil {
		return Placeholder
	}
	return FormatKg(*kg)
}

// FormatRate formats a weekly loss rate, e.g. "0.75 kg/wk".
func FormatRate(kgPerWeek float64, unit string) string {
	if unit == "" {
		unit = "kg/wk"
	}
	return fmt.Sprintf("%.2f %s", kgPerWeek, unit)
}

// FormatNumber adds thousands separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return FormatNumberSep(n, ',')
}

// FormatNumberSep is FormatNumber with a caller-chosen separator, so French
// output can use a space.
func FormatNumberSep(n int64, sep rune) string {
	if n < 0 {
		return "-" + FormatNumberSep(-n, sep)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteRune(sep)
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatCount formats an int field, blank when zero ("not entered").
func FormatCount(n int) string {
	if n == 0 {
		return ""
	}
	return FormatNumber(int64(n))
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatOptionalPercent formats f, or the placeholder when it is nil.
func FormatOptionalPercent(f *float64) string {
	if f == nil {
		return Placeholder
	}
	return FormatPercent(*f)
}

// FormatDelta formats actual minus planned weight with an explicit sign.
func FormatDelta(actual, planned float64) string {
	delta := math.Round((actual-planned)*10) / 10
	if delta > 0 {
		return "+" + FormatKg(delta)
	}
	if delta == 0 {
		return FormatKg(0)
	}
	return FormatKg(delta)
}
