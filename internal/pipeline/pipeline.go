package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/station-climate/internal/domain"
	"github.com/couchcryptid/station-climate/internal/observability"
)

// Pipeline builds the unified table from the three input sources.
type Pipeline struct {
	sources   Sources
	delimiter rune
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithDelimiter sets the field separator shared by all three tables.
func WithDelimiter(r rune) Option {
	return func(p *Pipeline) { p.delimiter = r }
}

// WithClock replaces the real clock, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// New creates a Pipeline reading comma-separated tables by default.
func New(sources Sources, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		sources:   sources,
		delimiter: ',',
		logger:    logger,
		metrics:   metrics,
		clock:     clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load reads, validates, and joins the three sources. Any failure is returned
// as a *domain.LoadError naming the source and the kind of problem, except a
// cancelled context which is returned as is.
func (p *Pipeline) Load(ctx context.Context) (*domain.UnifiedTable, error) {
	start := p.clock.Now()
	p.logger.Info("loading tables",
		"temperature", p.sources.Temperature.String(),
		"precipitation", p.sources.Precipitation.String(),
		"coordinates", p.sources.Coordinates.String(),
	)

	table, err := p.load(ctx)
	if err != nil {
		var loadErr *domain.LoadError
		if errors.As(err, &loadErr) {
			p.metrics.LoadErrors.WithLabelValues(string(loadErr.Source), string(loadErr.Kind)).Inc()
		}
		p.logger.Error("load failed", "error", err)
		return nil, err
	}

	stats := table.stats
	stats.LoadedAt = start
	stats.Duration = p.clock.Since(start)
	p.metrics.LoadDuration.Observe(stats.Duration.Seconds())

	unified := domain.NewUnifiedTable(table.records, stats)
	p.logger.Info("tables loaded",
		"rows", unified.Len(),
		"stations", len(unified.StationNames()),
		"duration", stats.Duration,
	)
	return unified, nil
}

type loaded struct {
	records []domain.StationRecord
	stats   domain.LoadStats
}

func (p *Pipeline) load(ctx context.Context) (loaded, error) {
	if err := ctx.Err(); err != nil {
		return loaded{}, err
	}
	temps, err := readObservations(ctx, p.sources.Temperature, domain.SourceTemperature, p.delimiter, colMaxTemperature)
	if err != nil {
		return loaded{}, err
	}
	p.metrics.RowsRead.WithLabelValues(string(domain.SourceTemperature)).Add(float64(len(temps)))

	if err := ctx.Err(); err != nil {
		return loaded{}, err
	}
	precs, err := readObservations(ctx, p.sources.Precipitation, domain.SourcePrecipitation, p.delimiter, colPrecipitation)
	if err != nil {
		return loaded{}, err
	}
	p.metrics.RowsRead.WithLabelValues(string(domain.SourcePrecipitation)).Add(float64(len(precs)))

	if err := ctx.Err(); err != nil {
		return loaded{}, err
	}
	coords, err := readCoordinates(ctx, p.sources.Coordinates, p.delimiter)
	if err != nil {
		return loaded{}, err
	}
	p.metrics.RowsRead.WithLabelValues(string(domain.SourceCoordinates)).Add(float64(len(coords)))

	records, js := innerJoin(temps, precs)
	index, conflicts := indexCoordinates(coords)
	withoutCoords := attachCoordinates(records, index)

	p.recordJoin(js, conflicts, withoutCoords, len(records))

	return loaded{
		records: records,
		stats: domain.LoadStats{
			TemperatureRows:            len(temps),
			PrecipitationRows:          len(precs),
			CoordinateRows:             len(coords),
			MatchedRows:                js.matched,
			UnmatchedTemperature:       js.unmatchedTemperature,
			UnmatchedPrecipitation:     js.unmatchedPrecipitation,
			DuplicateTemperature:       js.duplicateTemperature,
			DuplicatePrecipitation:     js.duplicatePrecipitation,
			CoordinateConflicts:        conflicts,
			StationsWithoutCoordinates: withoutCoords,
		},
	}, nil
}

func (p *Pipeline) recordJoin(js joinStats, conflicts, withoutCoords, rows int) {
	p.metrics.RowsDropped.WithLabelValues("unmatched_temperature").Add(float64(js.unmatchedTemperature))
	p.metrics.RowsDropped.WithLabelValues("unmatched_precipitation").Add(float64(js.unmatchedPrecipitation))
	p.metrics.RowsDropped.WithLabelValues("duplicate_key").Add(float64(js.duplicateTemperature + js.duplicatePrecipitation))
	p.metrics.CoordinateConflicts.Add(float64(conflicts))
	p.metrics.StationsWithoutCoordinates.Set(float64(withoutCoords))
	p.metrics.UnifiedRows.Set(float64(rows))

	if dropped := js.unmatchedTemperature + js.unmatchedPrecipitation; dropped > 0 {
		p.logger.Debug("rows without a partner dropped by join",
			"unmatched_temperature", js.unmatchedTemperature,
			"unmatched_precipitation", js.unmatchedPrecipitation,
		)
	}
	if dups := js.duplicateTemperature + js.duplicatePrecipitation; dups > 0 {
		p.logger.Warn("duplicate station-day keys ignored",
			"temperature", js.duplicateTemperature,
			"precipitation", js.duplicatePrecipitation,
		)
	}
	if conflicts > 0 {
		p.logger.Warn("conflicting coordinate rows ignored, first occurrence kept", "rows", conflicts)
	}
	if withoutCoords > 0 {
		p.logger.Warn("stations without coordinates", "stations", withoutCoords)
	}
}
