package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidFormat   = errors.New("invalid duration format")
	ErrInvalidDuration = errors.New("invalid duration")
)

// ParseDurationHours parses a "<number><h|m|s>" argument into hours.
// "m" is divided by 60 and "s" by 3600. The German "std" suffix is accepted as "h".
// The suffix is searched in h, m, s order anywhere in the string, so "1h30m" is rejected.
func ParseDurationHours(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.ReplaceAll(s, "std", "h")

	var (
		unit    string
		divisor float64
	)
	switch {
	case strings.Contains(s, "h"):
		unit, divisor = "h", 1
	case strings.Contains(s, "m"):
		unit, divisor = "m", 60
	case strings.Contains(s, "s"):
		unit, divisor = "s", 3600
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(s, unit, ""), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return v / divisor, nil
}

// ValidateHours rejects non-positive, NaN and infinite durations.
func ValidateHours(h float64) error {
	if !(h > 0) || h > maxHours {
		return fmt.Errorf("%w: %v", ErrInvalidDuration, h)
	}
	return nil
}

// maxHours keeps hours*time.Hour inside int64 nanoseconds.
const maxHours = 2_000_000
