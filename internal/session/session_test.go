package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/station-climate/internal/analysis"
	"github.com/couchcryptid/station-climate/internal/domain"
	"github.com/couchcryptid/station-climate/internal/observability"
	"github.com/couchcryptid/station-climate/internal/session"
)

// --- mocks ---

type stubLoader struct {
	tables []*domain.UnifiedTable
	err    error
	calls  int
}

func (l *stubLoader) Load(_ context.Context) (*domain.UnifiedTable, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	t := l.tables[0]
	if len(l.tables) > 1 {
		l.tables = l.tables[1:]
	}
	return t, nil
}

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

func testTable() *domain.UnifiedTable {
	return domain.NewUnifiedTable([]domain.StationRecord{
		record("Quinta Normal", 2020, time.January, 1, 30, 0),
		record("Quinta Normal", 2020, time.January, 2, 32, 1.2),
		record("Quinta Normal", 2021, time.January, 1, 28, 0),
		record("Quinta Normal", 2021, time.January, 2, 31, 0.05),
		record("Arica", 2021, time.January, 1, 25, 0),
	}, domain.LoadStats{})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func open(t *testing.T, loader session.Loader, opts ...session.Option) (*session.Session, *observability.Metrics) {
	t.Helper()
	m := observability.NewMetrics()
	s, err := session.Open(context.Background(), loader, discardLogger(), m, opts...)
	require.NoError(t, err)
	return s, m
}

// --- tests ---

func TestOpen_LoadFailure(t *testing.T) {
	loadErr := &domain.LoadError{Source: domain.SourceTemperature, Kind: domain.KindFileMissing, Location: "t.csv", Err: errors.New("no such file")}
	s, err := session.Open(context.Background(), &stubLoader{err: loadErr}, discardLogger(), observability.NewMetrics())

	assert.Nil(t, s)
	var le *domain.LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, domain.KindFileMissing, le.Kind)
}

func TestSession_LoadsOnce(t *testing.T) {
	loader := &stubLoader{tables: []*domain.UnifiedTable{testTable()}}
	s, _ := open(t, loader)

	_, err := s.Summary("Quinta Normal", 2020)
	require.NoError(t, err)
	_, err = s.AnnualTrend("Quinta Normal")
	require.NoError(t, err)

	assert.Equal(t, 1, loader.calls)
	assert.Equal(t, 5, s.Table().Len())
}

func TestSession_StationsAreSites(t *testing.T) {
	s, _ := open(t, &stubLoader{tables: []*domain.UnifiedTable{testTable()}})

	sites := s.Stations()
	require.Len(t, sites, 2)
	assert.Equal(t, "Arica", sites[0].StationName)
	assert.Equal(t, "Quinta Normal", sites[1].StationName)
}

func TestSession_StationViewCache(t *testing.T) {
	s, m := open(t, &stubLoader{tables: []*domain.UnifiedTable{testTable()}}, session.WithCacheSize(4))

	v1, err := s.StationView("Quinta Normal")
	require.NoError(t, err)
	v2, err := s.StationView("Quinta Normal")
	require.NoError(t, err)

	assert.Same(t, v1, v2)
	assert.Equal(t, 4, v1.Len())
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.ViewCache.WithLabelValues("miss")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.ViewCache.WithLabelValues("hit")), 0)
}

func TestSession_UnknownStation(t *testing.T) {
	s, _ := open(t, &stubLoader{tables: []*domain.UnifiedTable{testTable()}})

	_, err := s.StationView("Nowhere")
	require.ErrorIs(t, err, session.ErrUnknownStation)
	assert.Contains(t, err.Error(), "Nowhere")

	_, err = s.Dashboard("Nowhere", 0)
	assert.ErrorIs(t, err, session.ErrUnknownStation)
}

func TestSession_ReloadInvalidatesViews(t *testing.T) {
	updated := domain.NewUnifiedTable([]domain.StationRecord{
		record("Quinta Normal", 2022, time.January, 1, 33, 0),
	}, domain.LoadStats{})
	loader := &stubLoader{tables: []*domain.UnifiedTable{testTable(), updated}}
	s, _ := open(t, loader)

	before, err := s.StationView("Quinta Normal")
	require.NoError(t, err)
	require.Equal(t, 4, before.Len())

	require.NoError(t, s.Reload(context.Background()))

	after, err := s.StationView("Quinta Normal")
	require.NoError(t, err)
	assert.Equal(t, 1, after.Len())
	assert.Equal(t, []int{2022}, after.Years())

	_, err = s.StationView("Arica")
	assert.ErrorIs(t, err, session.ErrUnknownStation, "Arica is gone after reload")
}

func TestSession_ReloadFailureKeepsTable(t *testing.T) {
	loader := &stubLoader{tables: []*domain.UnifiedTable{testTable()}}
	s, _ := open(t, loader)

	loader.err = errors.New("disk gone")
	require.Error(t, s.Reload(context.Background()))
	assert.Equal(t, 5, s.Table().Len())
}

func TestSession_EmptySelectionCounted(t *testing.T) {
	s, m := open(t, &stubLoader{tables: []*domain.UnifiedTable{testTable()}})

	_, err := s.Summary("Quinta Normal", 1999)
	require.ErrorIs(t, err, domain.ErrEmptySelection)

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Computations.WithLabelValues(session.OpSummary)), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.EmptyViews.WithLabelValues(session.OpSummary)), 0)
}

func TestSession_YearZeroIsMostRecent(t *testing.T) {
	s, _ := open(t, &stubLoader{tables: []*domain.UnifiedTable{testTable()}})

	summary, err := s.Summary("Quinta Normal", 0)
	require.NoError(t, err)
	assert.Equal(t, 2021, summary.Year)
	require.NotNil(t, summary.RecordDay)
	assert.Equal(t, "2021-01-02", summary.RecordDay.Date.String())
}

func TestDashboard(t *testing.T) {
	s, _ := open(t, &stubLoader{tables: []*domain.UnifiedTable{testTable()}},
		session.WithRollingWindow(2),
		session.WithBaseline(analysis.LeaveOneOut),
		session.WithHistogramBins(4),
	)

	d, err := s.Dashboard("Quinta Normal", 0)
	require.NoError(t, err)

	assert.Equal(t, 2021, d.Year)
	assert.Equal(t, []int{2021, 2020}, d.Years)
	require.NotNil(t, d.Site)
	assert.Equal(t, "Quinta Normal", d.Site.StationName)
	require.NotNil(t, d.Summary)
	assert.Equal(t, 2, d.Summary.Days)

	require.Len(t, d.Rolling, 2)
	require.NotNil(t, d.Rolling[1].Mean)
	assert.InDelta(t, 29.5, *d.Rolling[1].Mean, 1e-12)

	require.NotNil(t, d.Trend)
	assert.Len(t, d.Trend.Points, 2)

	require.Len(t, d.Anomaly, 2)
	require.NotNil(t, d.Anomaly[0].Anomaly)
	assert.InDelta(t, -2.0, *d.Anomaly[0].Anomaly, 1e-12, "leave-one-out baseline is 2020 only")

	assert.Len(t, d.WetDry, 4)
	require.NotNil(t, d.Histogram)
	assert.Len(t, d.Histogram.Edges, 5)
	require.Len(t, d.Distribution, 2)
	assert.Empty(t, d.Notes)
}

func TestDashboard_EmptyYearBecomesNotes(t *testing.T) {
	s, _ := open(t, &stubLoader{tables: []*domain.UnifiedTable{testTable()}})

	d, err := s.Dashboard("Quinta Normal", 1999)
	require.NoError(t, err)

	assert.Nil(t, d.Summary)
	assert.Nil(t, d.Rolling)
	assert.Nil(t, d.Anomaly)
	require.NotNil(t, d.Trend, "station-wide sections still render")

	sections := make([]string, 0, len(d.Notes))
	for _, n := range d.Notes {
		sections = append(sections, n.Section)
		assert.Contains(t, n.Message, "no data")
	}
	assert.ElementsMatch(t, []string{session.OpSummary, session.OpRollingMean, session.OpAnomaly}, sections)
}

func TestSession_SiteLookup(t *testing.T) {
	s, _ := open(t, &stubLoader{tables: []*domain.UnifiedTable{testTable()}})

	site, err := s.Site("Arica")
	require.NoError(t, err)
	require.NotNil(t, site.Elevation)
	assert.InDelta(t, 527.0, *site.Elevation, 1e-9)

	_, err = s.Site("Nowhere")
	assert.ErrorIs(t, err, session.ErrUnknownStation)

	sites := s.Stations()
	sites[0].StationName = "changed"
	assert.Equal(t, "Arica", s.Stations()[0].StationName, "Stations hands out a copy")
}

func TestSession_ReloadDuringReads(t *testing.T) {
	small := domain.NewUnifiedTable([]domain.StationRecord{
		record("Quinta Normal", 2022, time.January, 1, 33, 0),
	}, domain.LoadStats{})
	tables := make([]*domain.UnifiedTable, 0, 21)
	for range 20 {
		tables = append(tables, testTable())
	}
	tables = append(tables, small)
	s, _ := open(t, &stubLoader{tables: tables})

	var wg sync.WaitGroup
	done := make(chan struct{})
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				_, _ = s.StationView("Quinta Normal")
			}
		}()
	}
	for range 20 {
		require.NoError(t, s.Reload(context.Background()))
	}
	close(done)
	wg.Wait()

	view, err := s.StationView("Quinta Normal")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Len(), "no view built from an earlier table survives the reload")
}
