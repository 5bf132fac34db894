package action

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParsePayload reads whitespace separated key=value pairs. Values that are
// exactly an integer, a finite float or true/false in canonical form are sent
// as JSON numbers and booleans, so "007" and "T" stay strings. A pair with an
// empty value is skipped. Quoting is not supported.
func ParsePayload(s string) (map[string]any, error) {
	payload := make(map[string]any)
	for _, field := range strings.Fields(s) {
		k, v, ok := strings.Cut(field, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid field %q: want key=value", field)
		}
		if v == "" {
			continue
		}
		payload[k] = parseValue(v)
	}
	return payload, nil
}

func parseValue(v string) any {
	if i, err := strconv.ParseInt(v, 10, 64); err == nil && strconv.FormatInt(i, 10) == v {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) &&
		strconv.FormatFloat(f, 'f', -1, 64) == v {
		return f
	}
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}
