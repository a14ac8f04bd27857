package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// integralFloatRe matches integers written with a zero fraction, e.g. "330020.0".
var integralFloatRe = regexp.MustCompile(`^(-?\d+)\.0+$`)

// ComposeDate builds a calendar date from the Ano/Mes/Dia cells of one row.
// line is only used to label the error.
func ComposeDate(line int, year, month, day string) (Date, error) {
	fail := func(reason string) (Date, error) {
		return Date{}, &DateCompositionError{Line: line, Year: year, Month: month, Day: day, Reason: reason}
	}

	y, err := parseComponent(year)
	if err != nil {
		return fail("year: " + err.Error())
	}
	m, err := parseComponent(month)
	if err != nil {
		return fail("month: " + err.Error())
	}
	d, err := parseComponent(day)
	if err != nil {
		return fail("day: " + err.Error())
	}

	if y < 1 || y > 9999 {
		return fail(fmt.Sprintf("year %d out of range", y))
	}
	if m < 1 || m > 12 {
		return fail(fmt.Sprintf("month %d out of range", m))
	}
	// time.Date normalises overflow (Feb 30 -> Mar 2); reject anything it moved.
	date := NewDate(y, time.Month(m), d)
	if d < 1 || date.Day() != d || int(date.Month()) != m {
		return fail(fmt.Sprintf("day %d out of range for %04d-%02d", d, y, m))
	}
	return date, nil
}

func parseComponent(s string) (int, error) {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return 0, fmt.Errorf("missing")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}

// ParseMeasurement parses a numeric cell. Missing cells yield NaN.
func ParseMeasurement(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

// NormalizeStationID trims the code and drops a zero fraction.
func NormalizeStationID(s string) string {
	s = strings.TrimSpace(s)
	if m := integralFloatRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

func isMissing(s string) bool {
	switch s {
	case "", "NA", "NaN", "nan", "<nil>":
		return true
	}
	return false
}
