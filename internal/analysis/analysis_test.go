package analysis_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/station-climate/internal/analysis"
	"github.com/couchcryptid/station-climate/internal/domain"
)

var nan = math.NaN()

func record(station string, year int, month time.Month, day int, temp, precip float64) domain.StationRecord {
	date := domain.NewDate(year, month, day)
	return domain.StationRecord{
		StationID:      "330020",
		StationName:    station,
		Date:           date,
		MaxTemperature: temp,
		Precipitation:  precip,
		Coordinates:    domain.Coordinates{Latitude: -33.445, Longitude: -70.683, Elevation: 527, Valid: true},
		Year:           year,
		DayOfYear:      date.YearDay(),
	}
}

func stationView(records ...domain.StationRecord) *analysis.StationView {
	return analysis.StationViewFromRecords("Quinta Normal", records)
}

func TestStationView_SortsAndSplitsYears(t *testing.T) {
	table := domain.NewUnifiedTable([]domain.StationRecord{
		record("Quinta Normal", 2021, time.January, 2, 28, 0),
		record("Arica", 2021, time.January, 1, 24, 0),
		record("Quinta Normal", 2020, time.March, 1, 26, 0),
		record("Quinta Normal", 2021, time.January, 1, 27, 0),
	}, domain.LoadStats{})

	view := analysis.NewStationView(table, "Quinta Normal")
	require.Equal(t, 3, view.Len())

	records := view.Records()
	assert.Equal(t, "2020-03-01", records[0].Date.String())
	assert.Equal(t, "2021-01-01", records[1].Date.String())
	assert.Equal(t, "2021-01-02", records[2].Date.String())

	assert.Equal(t, []int{2021, 2020}, view.Years())
	year, ok := view.DefaultYear()
	assert.True(t, ok)
	assert.Equal(t, 2021, year)
	assert.Equal(t, 2, view.Year(2021).Len())
	assert.Zero(t, view.Year(1999).Len())
}

func TestStationView_UnknownStationIsEmpty(t *testing.T) {
	table := domain.NewUnifiedTable([]domain.StationRecord{
		record("Arica", 2021, time.January, 1, 24, 0),
	}, domain.LoadStats{})

	view := analysis.NewStationView(table, "Nowhere")
	assert.Zero(t, view.Len())
	assert.Empty(t, view.Years())
	_, ok := view.DefaultYear()
	assert.False(t, ok)
}

func TestSites(t *testing.T) {
	missing := record("Sin Coordenadas", 2020, time.January, 1, 20, 0)
	missing.StationID = "999999"
	missing.Coordinates = domain.Coordinates{}
	table := domain.NewUnifiedTable([]domain.StationRecord{
		record("Quinta Normal", 2020, time.January, 1, 30, 0),
		missing,
		record("Arica", 2020, time.January, 1, 25, 0),
		record("Quinta Normal", 2020, time.January, 2, 31, 0),
	}, domain.LoadStats{})

	sites := analysis.Sites(table)
	require.Len(t, sites, 3)
	assert.Equal(t, "Arica", sites[0].StationName)
	assert.Equal(t, "Quinta Normal", sites[1].StationName)
	require.NotNil(t, sites[1].Latitude)
	assert.InDelta(t, -33.445, *sites[1].Latitude, 1e-9)
	assert.Equal(t, "999999", sites[2].StationID)
	assert.Nil(t, sites[2].Latitude)
	assert.Nil(t, sites[2].Elevation)
}

func TestRollingMeanSeries_Window(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	means, err := analysis.RollingMeanSeries(values, 7)
	require.NoError(t, err)
	require.Len(t, means, 10)
	for i := 0; i < 6; i++ {
		assert.Nil(t, means[i], "position %d", i)
	}
	require.NotNil(t, means[6])
	assert.InDelta(t, 4.0, *means[6], 1e-12)
	require.NotNil(t, means[9])
	assert.InDelta(t, 7.0, *means[9], 1e-12)
}

func TestRollingMeanSeries_MissingValueNullsWindow(t *testing.T) {
	means, err := analysis.RollingMeanSeries([]float64{1, nan, 3, 4, 5}, 2)
	require.NoError(t, err)
	assert.Nil(t, means[0])
	assert.Nil(t, means[1])
	assert.Nil(t, means[2])
	require.NotNil(t, means[3])
	assert.InDelta(t, 3.5, *means[3], 1e-12)
}

func TestRollingMeanSeries_InvalidWindow(t *testing.T) {
	_, err := analysis.RollingMeanSeries([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestRollingMean_YearView(t *testing.T) {
	view := stationView(
		record("Quinta Normal", 2020, time.December, 31, 40, 0),
		record("Quinta Normal", 2021, time.January, 1, 10, 0),
		record("Quinta Normal", 2021, time.January, 2, 20, 0),
	)

	points, err := analysis.RollingMean(view.Year(2021), 2)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Nil(t, points[0].Mean, "window must not reach into 2020")
	require.NotNil(t, points[1].Mean)
	assert.InDelta(t, 15.0, *points[1].Mean, 1e-12)

	_, err = analysis.RollingMean(view.Year(1990), 2)
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
}

func TestAnnualTrend(t *testing.T) {
	view := stationView(
		record("Quinta Normal", 2019, time.January, 1, nan, 0),
		record("Quinta Normal", 2020, time.January, 1, 19, 0),
		record("Quinta Normal", 2020, time.January, 2, 21, 0),
		record("Quinta Normal", 2021, time.January, 1, 21, 0),
		record("Quinta Normal", 2022, time.January, 1, 22, 0),
	)

	trend, err := analysis.AnnualTrend(view)
	require.NoError(t, err)
	require.Len(t, trend.Points, 3, "2019 has no valid observation")
	assert.Equal(t, analysis.YearMean{Year: 2020, MeanMaxTemperature: 20, Observations: 2}, trend.Points[0])

	require.NotNil(t, trend.Fit)
	assert.InDelta(t, 1.0, trend.Fit.Slope, 1e-6)
	assert.InDelta(t, -2000.0, trend.Fit.Intercept, 1e-3)
	require.NotNil(t, trend.Fit.RSquared)
	assert.InDelta(t, 1.0, *trend.Fit.RSquared, 1e-9)
}

func TestAnnualTrend_SingleYearHasNoFit(t *testing.T) {
	trend, err := analysis.AnnualTrend(stationView(record("Quinta Normal", 2020, time.January, 1, 19, 0)))
	require.NoError(t, err)
	assert.Len(t, trend.Points, 1)
	assert.Nil(t, trend.Fit)

	_, err = analysis.AnnualTrend(stationView())
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
}

func TestClimatologyAnomaly_SingleYearIsZero(t *testing.T) {
	view := stationView(
		record("Quinta Normal", 2020, time.January, 1, 30.1, 0),
		record("Quinta Normal", 2020, time.January, 2, 27.3, 0),
		record("Quinta Normal", 2020, time.January, 3, 33.9, 0),
	)

	points, err := analysis.ClimatologyAnomaly(view, 2020, analysis.Inclusive)
	require.NoError(t, err)
	require.Len(t, points, 3)
	for _, p := range points {
		require.NotNil(t, p.Anomaly)
		assert.Zero(t, *p.Anomaly, "day %d", p.DayOfYear)
	}
}

func TestClimatologyAnomaly_Baselines(t *testing.T) {
	view := stationView(
		record("Quinta Normal", 2020, time.January, 1, 30, 0),
		record("Quinta Normal", 2021, time.January, 1, 20, 0),
		record("Quinta Normal", 2021, time.January, 2, 22, 0),
		record("Quinta Normal", 2021, time.January, 3, nan, 0),
	)

	inclusive, err := analysis.ClimatologyAnomaly(view, 2021, analysis.Inclusive)
	require.NoError(t, err)
	require.Len(t, inclusive, 3)
	assert.InDelta(t, 25.0, *inclusive[0].Climatology, 1e-12)
	assert.InDelta(t, -5.0, *inclusive[0].Anomaly, 1e-12)
	assert.Zero(t, *inclusive[1].Anomaly)
	assert.Nil(t, inclusive[2].Climatology)
	assert.Nil(t, inclusive[2].Anomaly)

	loo, err := analysis.ClimatologyAnomaly(view, 2021, analysis.LeaveOneOut)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, *loo[0].Climatology, 1e-12)
	assert.InDelta(t, -10.0, *loo[0].Anomaly, 1e-12)
	assert.Nil(t, loo[1].Climatology, "only 2021 observed Jan 2")
	assert.Nil(t, loo[1].Anomaly)

	_, err = analysis.ClimatologyAnomaly(view, 1999, analysis.Inclusive)
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
}

func TestParseBaseline(t *testing.T) {
	b, err := analysis.ParseBaseline("leave-one-out")
	require.NoError(t, err)
	assert.Equal(t, analysis.LeaveOneOut, b)
	assert.Equal(t, "leave-one-out", b.String())

	b, err = analysis.ParseBaseline("inclusive")
	require.NoError(t, err)
	assert.Equal(t, analysis.Inclusive, b)

	_, err = analysis.ParseBaseline("median")
	assert.Error(t, err)
}

func TestWetDryClassification(t *testing.T) {
	days := analysis.WetDryClassification(stationView(
		record("Quinta Normal", 2020, time.January, 1, 30, 0.1),
		record("Quinta Normal", 2020, time.January, 2, 28, 0.1001),
		record("Quinta Normal", 2020, time.January, 3, nan, nan),
	))

	require.Len(t, days, 3)
	assert.Equal(t, domain.Dry, days[0].State)
	assert.Equal(t, domain.Wet, days[1].State)
	assert.Equal(t, domain.Dry, days[2].State)
	assert.Nil(t, days[2].MaxTemperature)
	assert.Nil(t, days[2].Precipitation)
	require.NotNil(t, days[1].Precipitation)
	assert.InDelta(t, 0.1001, *days[1].Precipitation, 1e-12)
}

func TestSummarize(t *testing.T) {
	view := stationView(
		record("Quinta Normal", 2020, time.January, 1, 25, 1.5),
		record("Quinta Normal", 2020, time.January, 2, 30, nan),
		record("Quinta Normal", 2020, time.January, 3, 30, 2.0),
		record("Quinta Normal", 2020, time.January, 4, nan, 0.5),
	)

	s, err := analysis.Summarize(view.Year(2020))
	require.NoError(t, err)
	assert.Equal(t, 4, s.Days)
	require.NotNil(t, s.MeanMaxTemperature)
	assert.InDelta(t, 85.0/3, *s.MeanMaxTemperature, 1e-12)
	assert.InDelta(t, 4.0, s.TotalPrecipitation, 1e-12)
	require.NotNil(t, s.Elevation)
	assert.InDelta(t, 527.0, *s.Elevation, 1e-12)
	require.NotNil(t, s.RecordDay)
	assert.Equal(t, "2020-01-02", s.RecordDay.Date.String(), "ties go to the earlier date")
	assert.InDelta(t, 30.0, s.RecordDay.MaxTemperature, 1e-12)
}

func TestSummarize_NoCoordinatesOrTemperature(t *testing.T) {
	r := record("Quinta Normal", 2020, time.January, 1, nan, 0)
	r.Coordinates = domain.Coordinates{}

	s, err := analysis.Summarize(stationView(r).Year(2020))
	require.NoError(t, err)
	assert.Nil(t, s.MeanMaxTemperature)
	assert.Nil(t, s.Elevation)
	assert.Nil(t, s.RecordDay)

	_, err = analysis.Summarize(stationView(r).Year(2021))
	var empty *domain.EmptySelectionError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, 2021, empty.Year)
}

func TestTemperatureHistogram(t *testing.T) {
	view := stationView(
		record("Quinta Normal", 2020, time.January, 1, 10, 0),
		record("Quinta Normal", 2020, time.January, 2, 20, 0),
		record("Quinta Normal", 2020, time.January, 3, 30, 0),
		record("Quinta Normal", 2020, time.January, 4, nan, 0),
		record("Quinta Normal", 2021, time.January, 1, 15, 0),
		record("Quinta Normal", 2021, time.January, 2, 30, 0),
	)

	h, err := analysis.TemperatureHistogram(view, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, h.Edges)
	require.Len(t, h.Years, 2)
	assert.Equal(t, analysis.YearCounts{Year: 2020, Counts: []int{1, 2}}, h.Years[0])
	assert.Equal(t, analysis.YearCounts{Year: 2021, Counts: []int{1, 1}}, h.Years[1])

	total := 0
	for _, y := range h.Years {
		for _, c := range y.Counts {
			total += c
		}
	}
	assert.Equal(t, 5, total, "counts cover every valid observation")

	require.Len(t, h.Boxes, 2)
	assert.Equal(t, analysis.Box{Count: 3, Min: 10, Q1: 10, Median: 20, Q3: 30, Max: 30, Mean: 20}, h.Boxes[0].Box)
}

func TestTemperatureHistogram_ConstantSample(t *testing.T) {
	view := stationView(
		record("Quinta Normal", 2020, time.January, 1, 25, 0),
		record("Quinta Normal", 2020, time.January, 2, 25, 0),
	)

	h, err := analysis.TemperatureHistogram(view, 10)
	require.NoError(t, err)
	require.Len(t, h.Edges, 2)
	require.Len(t, h.Years, 1)
	assert.Equal(t, []int{2}, h.Years[0].Counts)

	_, err = analysis.TemperatureHistogram(view, 0)
	assert.Error(t, err)
}

func TestDistributionByState(t *testing.T) {
	view := stationView(
		record("Quinta Normal", 2020, time.January, 1, 10, 5),
		record("Quinta Normal", 2020, time.January, 2, 20, 1),
		record("Quinta Normal", 2020, time.January, 3, nan, 3),
	)

	dist, err := analysis.DistributionByState(view)
	require.NoError(t, err)
	require.Len(t, dist, 2)
	assert.Equal(t, domain.Wet, dist[0].State)
	require.NotNil(t, dist[0].Box)
	assert.Equal(t, analysis.Box{Count: 2, Min: 10, Q1: 10, Median: 10, Q3: 20, Max: 20, Mean: 15}, *dist[0].Box)
	assert.Equal(t, domain.Dry, dist[1].State)
	assert.Nil(t, dist[1].Box)
}
