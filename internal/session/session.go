// Package session owns the loaded unified table for the lifetime of the
// process and serves every derived metric from it. A session is loaded once
// and shared read-only; Reload replaces the table and invalidates the cached
// station views.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/couchcryptid/station-climate/internal/analysis"
	"github.com/couchcryptid/station-climate/internal/domain"
	"github.com/couchcryptid/station-climate/internal/observability"
)

// ErrUnknownStation is returned for a station name absent from the table.
var ErrUnknownStation = errors.New("unknown station")

// Loader produces a unified table. *pipeline.Pipeline satisfies it.
type Loader interface {
	Load(ctx context.Context) (*domain.UnifiedTable, error)
}

// Operation labels, shared by metrics and dashboard notes.
const (
	OpSummary      = "summary"
	OpRollingMean  = "rolling_mean"
	OpAnnualTrend  = "annual_trend"
	OpAnomaly      = "climatology_anomaly"
	OpWetDry       = "wet_dry"
	OpHistogram    = "temperature_histogram"
	OpDistribution = "wet_dry_distribution"
)

const defaultCacheSize = 32

// Session is the long-lived owner of the unified table.
type Session struct {
	loader  Loader
	logger  *slog.Logger
	metrics *observability.Metrics

	window    int
	baseline  analysis.Baseline
	bins      int
	cacheSize int

	mu    sync.RWMutex
	table *domain.UnifiedTable
	sites []analysis.Site
	index map[string]int // station name -> position in sites
	views *lruCache[string, *analysis.StationView]
}

// Option configures a Session.
type Option func(*Session)

// WithCacheSize bounds the number of cached station views.
func WithCacheSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.cacheSize = n
		}
	}
}

// WithRollingWindow sets the dashboard rolling mean window.
func WithRollingWindow(n int) Option {
	return func(s *Session) { s.window = n }
}

// WithBaseline sets the dashboard anomaly baseline.
func WithBaseline(b analysis.Baseline) Option {
	return func(s *Session) { s.baseline = b }
}

// WithHistogramBins sets the dashboard histogram bin count.
func WithHistogramBins(n int) Option {
	return func(s *Session) { s.bins = n }
}

// Open loads the table through loader. Any load failure is returned and no
// session is created.
func Open(ctx context.Context, loader Loader, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) (*Session, error) {
	s := &Session{
		loader:    loader,
		logger:    logger,
		metrics:   metrics,
		window:    analysis.DefaultWindow,
		baseline:  analysis.Inclusive,
		bins:      20,
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-runs the loader and drops every cached view. On failure the
// previous table stays in place.
func (s *Session) Reload(ctx context.Context) error {
	table, err := s.loader.Load(ctx)
	if err != nil {
		return err
	}

	sites := analysis.Sites(table)
	index := make(map[string]int, len(sites))
	for i, site := range sites {
		index[site.StationName] = i
	}

	// A fresh cache swapped with the table keeps views built from the old
	// table out of the new one.
	s.mu.Lock()
	s.table = table
	s.sites = sites
	s.index = index
	s.views = newLRUCache[string, *analysis.StationView](s.cacheSize)
	s.mu.Unlock()

	s.logger.Info("session loaded", "rows", table.Len(), "stations", len(sites))
	return nil
}

// Table returns the current unified table.
func (s *Session) Table() *domain.UnifiedTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Stations lists one map site per station, sorted by name.
func (s *Session) Stations() []analysis.Site {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sites)
}

// Site returns the map site of one station.
func (s *Session) Site(name string) (analysis.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[name]
	if !ok {
		return analysis.Site{}, fmt.Errorf("%w: %q", ErrUnknownStation, name)
	}
	return s.sites[i], nil
}

// StationView returns the date-ordered rows of one station.
func (s *Session) StationView(name string) (*analysis.StationView, error) {
	s.mu.RLock()
	_, known := s.index[name]
	table, views := s.table, s.views
	s.mu.RUnlock()
	if !known {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStation, name)
	}

	if view, ok := views.get(name); ok {
		s.metrics.ViewCache.WithLabelValues("hit").Inc()
		return view, nil
	}
	s.metrics.ViewCache.WithLabelValues("miss").Inc()
	view := analysis.NewStationView(table, name)
	views.put(name, view)
	s.logger.Debug("station view built", "station", name, "rows", view.Len())
	return view, nil
}

// YearView narrows a station to one year. Year 0 selects the most recent
// year with data.
func (s *Session) YearView(name string, year int) (*analysis.YearView, error) {
	view, err := s.StationView(name)
	if err != nil {
		return nil, err
	}
	return view.Year(resolveYear(view, year)), nil
}

func resolveYear(view *analysis.StationView, year int) int {
	if year != 0 {
		return year
	}
	latest, _ := view.DefaultYear()
	return latest
}

// Summary computes the headline metrics of a station-year.
func (s *Session) Summary(name string, year int) (analysis.Summary, error) {
	view, err := s.YearView(name, year)
	if err != nil {
		return analysis.Summary{}, err
	}
	return compute(s, OpSummary, func() (analysis.Summary, error) {
		return analysis.Summarize(view)
	})
}

// RollingMean smooths the daily maximum temperature of a station-year.
func (s *Session) RollingMean(name string, year, window int) ([]analysis.RollingPoint, error) {
	view, err := s.YearView(name, year)
	if err != nil {
		return nil, err
	}
	return compute(s, OpRollingMean, func() ([]analysis.RollingPoint, error) {
		return analysis.RollingMean(view, window)
	})
}

// AnnualTrend fits a line through the yearly mean maximum temperature.
func (s *Session) AnnualTrend(name string) (analysis.Trend, error) {
	view, err := s.StationView(name)
	if err != nil {
		return analysis.Trend{}, err
	}
	return compute(s, OpAnnualTrend, func() (analysis.Trend, error) {
		return analysis.AnnualTrend(view)
	})
}

// Anomaly compares a year against the station's day-of-year climatology.
func (s *Session) Anomaly(name string, year int, baseline analysis.Baseline) ([]analysis.AnomalyPoint, error) {
	view, err := s.StationView(name)
	if err != nil {
		return nil, err
	}
	return compute(s, OpAnomaly, func() ([]analysis.AnomalyPoint, error) {
		return analysis.ClimatologyAnomaly(view, resolveYear(view, year), baseline)
	})
}

// WetDry labels every day of a station.
func (s *Session) WetDry(name string) ([]analysis.ClassifiedDay, error) {
	view, err := s.StationView(name)
	if err != nil {
		return nil, err
	}
	return compute(s, OpWetDry, func() ([]analysis.ClassifiedDay, error) {
		return analysis.WetDryClassification(view), nil
	})
}

// Histogram bins a station's temperatures per year.
func (s *Session) Histogram(name string, bins int) (analysis.Histogram, error) {
	view, err := s.StationView(name)
	if err != nil {
		return analysis.Histogram{}, err
	}
	return compute(s, OpHistogram, func() (analysis.Histogram, error) {
		return analysis.TemperatureHistogram(view, bins)
	})
}

// Distribution summarises temperature on wet and dry days.
func (s *Session) Distribution(name string) ([]analysis.StateDistribution, error) {
	view, err := s.StationView(name)
	if err != nil {
		return nil, err
	}
	return compute(s, OpDistribution, func() ([]analysis.StateDistribution, error) {
		return analysis.DistributionByState(view)
	})
}

func compute[T any](s *Session, op string, fn func() (T, error)) (T, error) {
	s.metrics.Computations.WithLabelValues(op).Inc()
	v, err := fn()
	if errors.Is(err, domain.ErrEmptySelection) {
		s.metrics.EmptyViews.WithLabelValues(op).Inc()
		s.logger.Debug("empty selection", "operation", op, "error", err)
	}
	return v, err
}
