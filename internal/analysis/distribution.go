package analysis

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/station-climate/internal/domain"
)

// Box is the five-number summary plus mean of a sample.
type Box struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// YearCounts is the number of days per histogram bin in one year.
type YearCounts struct {
	Year   int   `json:"year"`
	Counts []int `json:"counts"`
}

// YearBox is the box summary of one year.
type YearBox struct {
	Year int `json:"year"`
	Box
}

// Histogram bins a station's daily maximum temperatures per year on a shared
// set of equal-width edges, so the years can be overlaid.
type Histogram struct {
	Station string       `json:"station"`
	Edges   []float64    `json:"edges"`
	Years   []YearCounts `json:"years"`
	Boxes   []YearBox    `json:"boxes"`
}

// StateDistribution is the temperature distribution of wet or dry days.
type StateDistribution struct {
	State domain.PrecipitationState `json:"state"`
	Box   *Box                      `json:"box"` // nil when no day is in this state
}

// TemperatureHistogram counts valid observations per bin and year. Edges are
// len(bins)+1 values spanning the station minimum to maximum; the last bin is
// closed on the right.
func TemperatureHistogram(view *StationView, bins int) (Histogram, error) {
	if bins < 1 {
		return Histogram{}, fmt.Errorf("temperature histogram: bins must be positive, got %d", bins)
	}
	if view.Len() == 0 {
		return Histogram{}, &domain.EmptySelectionError{Operation: "temperature histogram", Station: view.Station()}
	}

	h := Histogram{Station: view.Station(), Years: []YearCounts{}, Boxes: []YearBox{}}
	all := valid(temperatures(view.records))
	if len(all) == 0 {
		return h, nil
	}

	lo, hi := floats.Min(all), floats.Max(all)
	if lo == hi {
		bins = 1
		hi = math.Nextafter(lo, math.Inf(1))
	}
	h.Edges = floats.Span(make([]float64, bins+1), lo, hi)
	h.Edges[bins] = hi

	// stat.Histogram wants the last divider strictly above every value.
	dividers := slices.Clone(h.Edges)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	years := view.Years()
	slices.Reverse(years)
	for _, year := range years {
		sample := valid(temperatures(view.Year(year).records))
		if len(sample) == 0 {
			continue
		}
		slices.Sort(sample)
		counts := stat.Histogram(nil, dividers, sample, nil)
		yc := YearCounts{Year: year, Counts: make([]int, len(counts))}
		for i, c := range counts {
			yc.Counts[i] = int(c)
		}
		h.Years = append(h.Years, yc)
		h.Boxes = append(h.Boxes, YearBox{Year: year, Box: boxOf(sample)})
	}
	return h, nil
}

// DistributionByState summarises maximum temperature on wet days and on dry
// days, in that order.
func DistributionByState(view *StationView) ([]StateDistribution, error) {
	if view.Len() == 0 {
		return nil, &domain.EmptySelectionError{Operation: "wet/dry distribution", Station: view.Station()}
	}

	samples := map[domain.PrecipitationState][]float64{}
	for _, r := range view.records {
		if r.HasTemperature() {
			samples[r.State()] = append(samples[r.State()], r.MaxTemperature)
		}
	}

	out := make([]StateDistribution, 0, 2)
	for _, state := range []domain.PrecipitationState{domain.Wet, domain.Dry} {
		d := StateDistribution{State: state}
		if sample := samples[state]; len(sample) > 0 {
			slices.Sort(sample)
			box := boxOf(sample)
			d.Box = &box
		}
		out = append(out, d)
	}
	return out, nil
}

// boxOf expects a sorted, non-empty sample without NaN.
func boxOf(sorted []float64) Box {
	return Box{
		Count:  len(sorted),
		Min:    sorted[0],
		Q1:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
		Mean:   stat.Mean(sorted, nil),
	}
}
