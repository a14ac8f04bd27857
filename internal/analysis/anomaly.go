package analysis

import (
	"fmt"

	"github.com/couchcryptid/station-climate/internal/domain"
)

// Baseline selects which years feed the day-of-year climatology.
type Baseline int

const (
	// Inclusive averages over every year, the target year included.
	Inclusive Baseline = iota
	// LeaveOneOut excludes the target year from its own baseline.
	LeaveOneOut
)

// ParseBaseline accepts "inclusive" and "leave-one-out".
func ParseBaseline(s string) (Baseline, error) {
	switch s {
	case "inclusive":
		return Inclusive, nil
	case "leave-one-out":
		return LeaveOneOut, nil
	}
	return 0, fmt.Errorf("unknown anomaly baseline %q", s)
}

func (b Baseline) String() string {
	if b == LeaveOneOut {
		return "leave-one-out"
	}
	return "inclusive"
}

// AnomalyPoint is one day of the target year against its climatology.
type AnomalyPoint struct {
	Date           domain.Date `json:"date"`
	DayOfYear      int         `json:"day_of_year"`
	MaxTemperature *float64    `json:"max_temperature"`
	Climatology    *float64    `json:"climatology"`
	Anomaly        *float64    `json:"anomaly"`
}

// ClimatologyAnomaly compares every day of targetYear with the mean maximum
// temperature of the same day-of-year across the station history. Days are
// matched by ordinal, so in leap years day 60 is Feb 29 and elsewhere Mar 1.
// Days without a baseline, or without their own observation, have a nil anomaly.
func ClimatologyAnomaly(view *StationView, targetYear int, baseline Baseline) ([]AnomalyPoint, error) {
	target := view.Year(targetYear)
	if target.Len() == 0 {
		return nil, &domain.EmptySelectionError{Operation: "climatology anomaly", Station: view.Station(), Year: targetYear}
	}

	var sums [367]float64
	var counts [367]int
	for _, r := range view.records {
		if !r.HasTemperature() || (baseline == LeaveOneOut && r.Year == targetYear) {
			continue
		}
		sums[r.DayOfYear] += r.MaxTemperature
		counts[r.DayOfYear]++
	}

	points := make([]AnomalyPoint, len(target.records))
	for i, r := range target.records {
		p := AnomalyPoint{
			Date:           r.Date,
			DayOfYear:      r.DayOfYear,
			MaxTemperature: optional(r.MaxTemperature),
		}
		if n := counts[r.DayOfYear]; n > 0 {
			clim := sums[r.DayOfYear] / float64(n)
			p.Climatology = &clim
			if r.HasTemperature() {
				anomaly := r.MaxTemperature - clim
				p.Anomaly = &anomaly
			}
		}
		points[i] = p
	}
	return points, nil
}
