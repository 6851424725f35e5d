package parse

import (
	"fmt"
	"strconv"
)

// ParseString renders any scalar as its display string.
// Whole-number floats (json numbers) print without a decimal point,
// so a booking id decoded as 42.0 renders as "42".
func ParseString(v interface{}) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	}
	return fmt.Sprintf("%v", v)
}

// ParseNumber coerces a scalar to float64.
// The second return reports whether the coercion succeeded;
// a value that doesn't parse as a number makes every numeric
// comparison false rather than raising an error.
func ParseNumber(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(string(t), 64)
		return f, err == nil
	}
	return 0, false
}

func ParseInt64(v interface{}) int64 {
	n, _ := ParseNumber(v)
	return int64(n)
}

func ParseInt(v interface{}) int {
	return int(ParseInt64(v))
}
