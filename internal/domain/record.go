package domain

import (
	"cmp"
	"encoding/json"
	"iter"
	"math"
	"slices"
	"time"
)

// Date wraps time.Time but marshals/unmarshals as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate returns the UTC midnight of the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) String() string {
	return d.Format(time.DateOnly)
}

// Compare orders dates chronologically.
func (d Date) Compare(other Date) int {
	return d.Time.Compare(other.Time)
}

// Coordinates locate a station. Valid is false when the station has no row
// in the coordinate source.
type Coordinates struct {
	Latitude  float64
	Longitude float64
	Elevation float64 // meters
	Valid     bool
}

// StationRecord is one station-day of the unified table.
type StationRecord struct {
	StationID      string
	StationName    string
	Date           Date
	MaxTemperature float64 // degrees; NaN when missing
	Precipitation  float64 // mm; NaN when missing
	Coordinates    Coordinates
	Year           int
	DayOfYear      int
}

// HasTemperature reports whether the record carries a usable maximum temperature.
func (r StationRecord) HasTemperature() bool {
	return !math.IsNaN(r.MaxTemperature)
}

// State classifies the day's precipitation.
func (r StationRecord) State() PrecipitationState {
	return ClassifyPrecipitation(r.Precipitation)
}

// LoadStats describes what happened while building a UnifiedTable.
type LoadStats struct {
	TemperatureRows            int
	PrecipitationRows          int
	CoordinateRows             int
	MatchedRows                int
	UnmatchedTemperature       int
	UnmatchedPrecipitation     int
	DuplicateTemperature       int
	DuplicatePrecipitation     int
	CoordinateConflicts        int
	StationsWithoutCoordinates int
	LoadedAt                   time.Time
	Duration                   time.Duration
}

// UnifiedTable is the immutable result of joining the three sources.
// Accessors always hand out copies.
type UnifiedTable struct {
	records []StationRecord
	stats   LoadStats
}

// NewUnifiedTable takes ownership of records.
func NewUnifiedTable(records []StationRecord, stats LoadStats) *UnifiedTable {
	return &UnifiedTable{records: records, stats: stats}
}

func (t *UnifiedTable) Len() int { return len(t.records) }

func (t *UnifiedTable) Stats() LoadStats { return t.stats }

// Records returns a copy of every row in table order.
func (t *UnifiedTable) Records() []StationRecord {
	return slices.Clone(t.records)
}

// All yields every row in table order without copying the table.
func (t *UnifiedTable) All() iter.Seq[StationRecord] {
	return func(yield func(StationRecord) bool) {
		for _, r := range t.records {
			if !yield(r) {
				return
			}
		}
	}
}

// Filter returns a fresh slice with the rows matching keep, in table order.
func (t *UnifiedTable) Filter(keep func(StationRecord) bool) []StationRecord {
	var out []StationRecord
	for _, r := range t.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// StationNames lists the distinct station names, sorted.
func (t *UnifiedTable) StationNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range t.records {
		if _, ok := seen[r.StationName]; ok {
			continue
		}
		seen[r.StationName] = struct{}{}
		names = append(names, r.StationName)
	}
	slices.SortFunc(names, cmp.Compare[string])
	return names
}
