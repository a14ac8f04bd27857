package analysis

import (
	"math"

	"github.com/couchcryptid/station-climate/internal/domain"
)

// RecordDay is the hottest day of a year.
type RecordDay struct {
	Date           domain.Date `json:"date"`
	MaxTemperature float64     `json:"max_temperature"`
}

// Summary holds the headline metrics of one station-year.
type Summary struct {
	Station            string     `json:"station"`
	Year               int        `json:"year"`
	Days               int        `json:"days"`
	MeanMaxTemperature *float64   `json:"mean_max_temperature"`
	TotalPrecipitation float64    `json:"total_precipitation"`
	Elevation          *float64   `json:"elevation"`
	RecordDay          *RecordDay `json:"record_day"`
}

// Summarize computes mean maximum temperature, accumulated precipitation,
// station elevation (taken from the first row), and the record day. When two
// days share the maximum the earlier one wins.
func Summarize(view *YearView) (Summary, error) {
	if view.Len() == 0 {
		return Summary{}, &domain.EmptySelectionError{Operation: "summary", Station: view.Station(), Year: view.Year()}
	}

	s := Summary{Station: view.Station(), Year: view.Year(), Days: view.Len()}

	var tempSum float64
	var tempCount int
	for _, r := range view.records {
		if !math.IsNaN(r.Precipitation) {
			s.TotalPrecipitation += r.Precipitation
		}
		if !r.HasTemperature() {
			continue
		}
		tempSum += r.MaxTemperature
		tempCount++
		if s.RecordDay == nil || r.MaxTemperature > s.RecordDay.MaxTemperature {
			s.RecordDay = &RecordDay{Date: r.Date, MaxTemperature: r.MaxTemperature}
		}
	}
	if tempCount > 0 {
		mean := tempSum / float64(tempCount)
		s.MeanMaxTemperature = &mean
	}
	if first := view.records[0]; first.Coordinates.Valid {
		s.Elevation = optional(first.Coordinates.Elevation)
	}
	return s, nil
}
