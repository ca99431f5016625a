// Package sanitize turns loosely formatted figures ("$25.18 billion", "72 cents")
// into plain numbers for charting.
//
// The conversion is purely syntactic: every rune that is not an ASCII digit or a
// decimal point is dropped, so signs, units and scale words are lost. Anything that
// does not parse afterwards becomes 0.
package sanitize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Clean removes every character that is not a decimal digit or '.'.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Float coerces v to a finite, non-negative number. It never fails: unparseable
// input yields 0.
func Float(v any) float64 {
	clean := Clean(stringify(v))
	if clean == "" {
		return 0
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// stringify mirrors a plain "to string" coercion. Floats are written without an
// exponent so a value that went through Float once survives a second pass intact.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return formatFloat(t, 64)
	case float32:
		return formatFloat(float64(t), 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64, bits int) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}
