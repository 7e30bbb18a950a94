package interactive

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseValue converts a command-line token into a state value. Integers,
// floats and booleans are recognised; quoted tokens and everything else
// are kept as strings.
func parseValue(s string) any {
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if s == "null" || s == "nil" {
		return nil
	}
	return s
}

// addNumber returns cur + delta. Integer values stay integers unless
// either side is a float.
func addNumber(cur, delta any) (any, error) {
	ci, cIsInt, err := toNumber(cur)
	if err != nil {
		return nil, fmt.Errorf("current value: %w", err)
	}
	di, dIsInt, err := toNumber(delta)
	if err != nil {
		return nil, fmt.Errorf("delta: %w", err)
	}
	if cIsInt && dIsInt {
		return int(ci) + int(di), nil
	}
	return ci + di, nil
}

func negate(v any) (any, error) {
	n, isInt, err := toNumber(v)
	if err != nil {
		return nil, fmt.Errorf("delta: %w", err)
	}
	if isInt {
		return -int(n), nil
	}
	return -n, nil
}

func toNumber(v any) (float64, bool, error) {
	switch n := v.(type) {
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	case uint64:
		return float64(n), true, nil
	case float64:
		return n, false, nil
	case float32:
		return float64(n), false, nil
	case nil:
		return 0, true, nil
	default:
		return 0, false, fmt.Errorf("%v (%T) is not a number", v, v)
	}
}

// parseDelay accepts a Go duration ("1.5s", "200ms") or a bare number of
// seconds.
func parseDelay(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("negative delay: %s", s)
		}
		return d, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("invalid delay: %s", s)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// formatValue renders a state value as compact JSON, falling back to %v
// for values JSON cannot represent.
func formatValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// splitKeys accepts keys separated by spaces or commas.
func splitKeys(args []string) []string {
	var keys []string
	for _, a := range args {
		for _, k := range strings.Split(a, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
	}
	return keys
}
