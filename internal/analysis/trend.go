package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/station-climate/internal/domain"
)

// YearMean is the mean daily maximum temperature of one year.
type YearMean struct {
	Year               int     `json:"year"`
	MeanMaxTemperature float64 `json:"mean_max_temperature"`
	Observations       int     `json:"observations"`
}

// LinearFit is an ordinary least squares line mean = Intercept + Slope*year.
type LinearFit struct {
	Slope     float64  `json:"slope"`
	Intercept float64  `json:"intercept"`
	RSquared  *float64 `json:"r_squared"` // nil when every year has the same mean
}

// Trend is the annual series of a station plus its fitted line.
type Trend struct {
	Station string     `json:"station"`
	Points  []YearMean `json:"points"`
	Fit     *LinearFit `json:"fit"` // nil with fewer than two years
}

// AnnualTrend averages the daily maximum temperature per year and fits a line
// through the yearly means. Years without a valid observation are omitted.
func AnnualTrend(view *StationView) (Trend, error) {
	if view.Len() == 0 {
		return Trend{}, &domain.EmptySelectionError{Operation: "annual trend", Station: view.Station()}
	}

	trend := Trend{Station: view.Station(), Points: []YearMean{}}
	var current *YearMean
	var sum float64
	flush := func() {
		if current != nil && current.Observations > 0 {
			current.MeanMaxTemperature = sum / float64(current.Observations)
			trend.Points = append(trend.Points, *current)
		}
	}
	for _, r := range view.records {
		if current == nil || current.Year != r.Year {
			flush()
			current = &YearMean{Year: r.Year}
			sum = 0
		}
		if r.HasTemperature() {
			sum += r.MaxTemperature
			current.Observations++
		}
	}
	flush()

	if len(trend.Points) < 2 {
		return trend, nil
	}
	xs := make([]float64, len(trend.Points))
	ys := make([]float64, len(trend.Points))
	for i, p := range trend.Points {
		xs[i] = float64(p.Year)
		ys[i] = p.MeanMaxTemperature
	}
	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	fit := &LinearFit{Slope: slope, Intercept: intercept}
	if r2 := stat.RSquared(xs, ys, nil, intercept, slope); !math.IsNaN(r2) {
		fit.RSquared = &r2
	}
	trend.Fit = fit
	return trend, nil
}
