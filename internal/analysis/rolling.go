package analysis

import (
	"fmt"
	"math"

	"github.com/couchcryptid/station-climate/internal/domain"
)

// DefaultWindow is the rolling mean window of the daily chart, in days.
const DefaultWindow = 7

// RollingPoint is one day of the daily series with its trailing mean.
type RollingPoint struct {
	Date           domain.Date `json:"date"`
	MaxTemperature *float64    `json:"max_temperature"`
	Mean           *float64    `json:"rolling_mean"`
}

// RollingMeanSeries is the simple moving average over a trailing window of
// consecutive values. The first window-1 positions, and any window holding a
// NaN, are nil.
func RollingMeanSeries(values []float64, window int) ([]*float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("rolling mean: window must be positive, got %d", window)
	}
	out := make([]*float64, len(values))
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		complete := true
		for _, v := range values[i-window+1 : i+1] {
			if math.IsNaN(v) {
				complete = false
				break
			}
			sum += v
		}
		if complete {
			mean := sum / float64(window)
			out[i] = &mean
		}
	}
	return out, nil
}

// RollingMean smooths the daily maximum temperature of one station-year.
// Windows never reach into the previous year.
func RollingMean(view *YearView, window int) ([]RollingPoint, error) {
	if view.Len() == 0 {
		return nil, &domain.EmptySelectionError{Operation: "rolling mean", Station: view.Station(), Year: view.Year()}
	}
	means, err := RollingMeanSeries(temperatures(view.records), window)
	if err != nil {
		return nil, err
	}
	points := make([]RollingPoint, len(view.records))
	for i, r := range view.records {
		points[i] = RollingPoint{
			Date:           r.Date,
			MaxTemperature: optional(r.MaxTemperature),
			Mean:           means[i],
		}
	}
	return points, nil
}
