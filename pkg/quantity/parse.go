package quantity

import (
	"fmt"
	"strconv"
	"strings"
)

// unit symbol tables for parsing. Keys are lowercase.
var angleUnits = map[string]AngleUnit{
	"arcsec": Arcsec,
	"\"":     Arcsec,
	"as":     Arcsec,
	"arcmin": Arcmin,
	"'":      Arcmin,
	"deg":    Degree,
	"degree": Degree,
	"rad":    Radian,
}

var durationUnits = map[string]DurationUnit{
	"s":       Seconds,
	"sec":     Seconds,
	"second":  Seconds,
	"seconds": Seconds,
	"min":     Minutes,
	"minute":  Minutes,
	"minutes": Minutes,
	"h":       Hours,
	"hr":      Hours,
	"hour":    Hours,
	"hours":   Hours,
	"ms":      Milliseconds,
}

// splitQuantity separates a string like "60s" or "1.3 arcsec" into its numeric
// value and unit symbol. An empty symbol means a bare number was given.
func splitQuantity(s string) (float64, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "", fmt.Errorf("%w: empty string", ErrNotAQuantity)
	}

	i := len(s)
	for i > 0 {
		c := s[i-1]
		if c >= '0' && c <= '9' || c == '.' {
			break
		}
		i--
	}
	num, sym := strings.TrimSpace(s[:i]), strings.TrimSpace(s[i:])

	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %q", ErrNotAQuantity, s)
	}
	return v, strings.ToLower(sym), nil
}

// ParseDuration parses a duration quantity from a string. A bare number is
// taken to be seconds. A recognized unit of another dimension (such as an
// angle) is rejected with ErrWrongDimension; anything unparseable is rejected
// with ErrNotAQuantity. Keeping those two failures distinct matters for
// callers mapping them to different error classes.
func ParseDuration(s string) (Duration, error) {
	v, sym, err := splitQuantity(s)
	if err != nil {
		return Duration{}, err
	}
	if sym == "" {
		return DurationFrom(v), nil
	}
	if u, ok := durationUnits[sym]; ok {
		return Duration{Value: v, Unit: u}, nil
	}
	if _, ok := angleUnits[sym]; ok {
		return Duration{}, fmt.Errorf("%w: %q is an angle, a time is required", ErrWrongDimension, s)
	}
	return Duration{}, fmt.Errorf("%w: unknown unit %q", ErrNotAQuantity, sym)
}

// ParseAngle parses an angular quantity from a string. A bare number is taken
// to be arcseconds.
func ParseAngle(s string) (Angle, error) {
	v, sym, err := splitQuantity(s)
	if err != nil {
		return Angle{}, err
	}
	if sym == "" {
		return AngleFrom(v), nil
	}
	if u, ok := angleUnits[sym]; ok {
		return Angle{Value: v, Unit: u}, nil
	}
	if _, ok := durationUnits[sym]; ok {
		return Angle{}, fmt.Errorf("%w: %q is a time, an angle is required", ErrWrongDimension, s)
	}
	return Angle{}, fmt.Errorf("%w: unknown unit %q", ErrNotAQuantity, sym)
}
