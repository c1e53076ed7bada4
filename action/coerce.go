package action

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

func builtinOperators() map[string]OperatorFunc {
	return map[string]OperatorFunc{
		"identity":     identity,
		"bool":         parseBoolValue,
		"int":          parseIntValue,
		"float":        parseFloatValue,
		"duration":     parseDurationValue,
		"string-slice": parseStringSlice,
		"int-slice":    parseIntSlice,
	}
}

// parseBoolValue accepts the usual spellings; an empty string is false
func parseBoolValue(raw string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "t", "yes", "y", "1", "on":
		return true, nil
	case "false", "f", "no", "n", "0", "off", "":
		return false, nil
	default:
		return nil, fmt.Errorf("invalid boolean value: %s", raw)
	}
}

// parseIntValue parses decimal and 0x-prefixed hex integers
func parseIntValue(raw string) (any, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, errors.New("empty integer")
	}

	sign := ""
	if s[0] == '-' || s[0] == '+' {
		sign, s = s[:1], s[1:]
	}

	base := 10
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, s = 16, s[2:]
	}

	n, err := strconv.ParseInt(sign+s, base, strconv.IntSize)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return nil, fmt.Errorf("integer overflow: %s", raw)
		}
		return nil, fmt.Errorf("invalid integer: %s", raw)
	}
	return int(n), nil
}

func parseFloatValue(raw string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid float: %s", raw)
	}
	return f, nil
}

// parseDurationValue supports "00:30" (30s), "01:30:15" (1h30m15s), Go
// durations such as "1h30m", spelled units such as "3 sec", and the
// calendar units d, w, M (30 days) and y (365 days).
func parseDurationValue(raw string) (any, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, errors.New("empty duration")
	}

	if colons := strings.Count(s, ":"); colons > 0 {
		return parseColonDuration(s, colons)
	}
	if d, ok, err := parseCalendarDuration(s); ok {
		return d, err
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	return parseSpelledDuration(s)
}

func parseColonDuration(s string, colons int) (time.Duration, error) {
	if colons > 2 {
		return 0, fmt.Errorf("invalid duration %q: too many colons", s)
	}
	parts := strings.Split(s, ":")
	units := []time.Duration{time.Second, time.Minute, time.Hour}

	var total time.Duration
	for i := range parts {
		field := parts[len(parts)-1-i]
		n, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		if total, err = addDuration(s, total, n, units[i]); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// addDuration returns total + n*unit, failing instead of wrapping
func addDuration(raw string, total time.Duration, n uint64, unit time.Duration) (time.Duration, error) {
	if n > uint64(math.MaxInt64/int64(unit)) {
		return 0, fmt.Errorf("duration overflow: %s", raw)
	}
	d := time.Duration(n) * unit
	if total > math.MaxInt64-d {
		return 0, fmt.Errorf("duration overflow: %s", raw)
	}
	return total + d, nil
}

// parseCalendarDuration reports ok when s has a calendar unit suffix
func parseCalendarDuration(s string) (time.Duration, bool, error) {
	if len(s) < 2 {
		return 0, false, nil
	}

	var unit time.Duration
	switch last := s[len(s)-1]; last {
	case 'd', 'D':
		unit = 24 * time.Hour
	case 'w', 'W':
		unit = 7 * 24 * time.Hour
	case 'M':
		// lowercase m stays minutes
		unit = 30 * 24 * time.Hour
	case 'y', 'Y':
		unit = 365 * 24 * time.Hour
	default:
		return 0, false, nil
	}

	n, err := strconv.ParseUint(s[:len(s)-1], 10, 32)
	if err != nil {
		return 0, false, nil
	}
	d, err := addDuration(s, 0, n, unit)
	return d, true, err
}

var spelledUnits = map[string]time.Duration{
	"ns": time.Nanosecond, "us": time.Microsecond, "µs": time.Microsecond, "ms": time.Millisecond,
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hour": time.Hour, "hours": time.Hour,
}

// parseSpelledDuration handles "3 sec", "1 hour 30 minutes" and similar
func parseSpelledDuration(s string) (time.Duration, error) {
	var total time.Duration
	rest := s
	for rest = strings.TrimSpace(rest); rest != ""; rest = strings.TrimSpace(rest) {
		i := 0
		for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
			i++
		}
		if i == 0 {
			return 0, fmt.Errorf("invalid duration %q: number expected before unit", s)
		}
		n, err := strconv.ParseUint(rest[:i], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		rest = strings.TrimLeft(rest[i:], " \t")

		j := 0
		for j < len(rest) && rest[j] != ' ' && rest[j] != '\t' && (rest[j] < '0' || rest[j] > '9') {
			j++
		}
		unit, ok := spelledUnits[strings.ToLower(rest[:j])]
		if !ok {
			if j == 0 {
				return 0, fmt.Errorf("invalid duration %q: missing unit after number", s)
			}
			return 0, fmt.Errorf("invalid duration %q: unknown unit %q", s, rest[:j])
		}
		if total, err = addDuration(s, total, n, unit); err != nil {
			return 0, err
		}
		rest = rest[j:]
	}
	return total, nil
}

// parseStringSlice splits on commas, trimming blanks and dropping empties
func parseStringSlice(raw string) (any, error) {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}

func parseIntSlice(raw string) (any, error) {
	out := []int{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		v, err := parseIntValue(part)
		if err != nil {
			return nil, err
		}
		out = append(out, v.(int))
	}
	return out, nil
}
