package engine

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// toNumber coerces a decoded value the way the command editor's scripting
// language does: numbers pass through, booleans become 0/1, numeric strings
// are parsed, the empty string is 0, and anything else (including an absent
// value) is NaN.
func toNumber(v any) float64 {
	switch t := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case int32:
		return float64(t)
	case uint64:
		return float64(t)
	case json.Number:
		return parseNumber(string(t))
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		return parseNumber(t)
	default:
		return math.NaN()
	}
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil || strings.Contains(s, "_") {
				return math.NaN()
			}
			return float64(n)
		}
	}

	// ParseFloat is more lenient than we want: reject its special spellings,
	// digit separators and hex floats.
	if strings.ContainsAny(s, "_xXpPnN") || strings.ContainsAny(strings.ToLower(s), "i") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// jsFloat prints like a script number: no trailing zeros, NaN and Infinity
// spelled out.
type jsFloat float64

func (f jsFloat) String() string {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// templateNumber converts a float to the value handed to templates. Whole
// numbers become ints so arithmetic and printing stay integral.
func templateNumber(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return jsFloat(f)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int(f)
	}
	return jsFloat(f)
}
