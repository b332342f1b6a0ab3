package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var enumToken = regexp.MustCompile(`^[0-9a-zA-Z_\-$]+$`)

// SanitizeEnum prepares enum values for use as generated identifiers.
// Every string that parses as a number also contributes its numeric value,
// unless that value is already present, and only identifier-safe entries
// survive. A nil list is returned untouched.
//
//	SanitizeEnum([]any{"A", "B", "1"}) == []any{"A", "B", "1", float64(1)}
func SanitizeEnum(values []any) []any {
	if values == nil {
		return nil
	}
	all := make([]any, 0, len(values)*2)
	for _, v := range values {
		all = append(all, enumValue(v))
	}
	for _, v := range all {
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, ok := parseEnumNumber(s)
		if !ok || containsValue(all, n) {
			continue
		}
		all = append(all, n)
	}

	out := make([]any, 0, len(all))
	for _, v := range all {
		if enumToken.MatchString(fmt.Sprint(v)) {
			out = append(out, v)
		}
	}
	return out
}

// enumValue folds the numeric kinds a decoder may produce into float64.
func enumValue(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

func parseEnumNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func containsValue(values []any, want float64) bool {
	for _, v := range values {
		if f, ok := v.(float64); ok && f == want {
			return true
		}
	}
	return false
}
