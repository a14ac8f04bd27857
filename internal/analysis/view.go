package analysis

import (
	"cmp"
	"math"
	"slices"

	"github.com/couchcryptid/station-climate/internal/domain"
)

// StationView is every row of one station, ordered by date.
type StationView struct {
	station string
	records []domain.StationRecord
}

// NewStationView selects the rows whose station name is station.
func NewStationView(table *domain.UnifiedTable, station string) *StationView {
	records := table.Filter(func(r domain.StationRecord) bool { return r.StationName == station })
	return newStationView(station, records)
}

// StationViewFromRecords builds a view from rows that already belong to one
// station. The slice is copied.
func StationViewFromRecords(station string, records []domain.StationRecord) *StationView {
	return newStationView(station, slices.Clone(records))
}

func newStationView(station string, records []domain.StationRecord) *StationView {
	// Stable: rows sharing a date keep table order, which makes tie-breaks deterministic.
	slices.SortStableFunc(records, func(a, b domain.StationRecord) int {
		return a.Date.Compare(b.Date)
	})
	return &StationView{station: station, records: records}
}

func (v *StationView) Station() string { return v.station }

func (v *StationView) Len() int { return len(v.records) }

// Records returns a copy of the rows in date order.
func (v *StationView) Records() []domain.StationRecord { return slices.Clone(v.records) }

// Years lists the years with at least one row, most recent first.
func (v *StationView) Years() []int {
	var years []int
	for _, r := range v.records {
		if len(years) == 0 || years[len(years)-1] != r.Year {
			years = append(years, r.Year)
		}
	}
	slices.Reverse(years)
	return years
}

// DefaultYear is the most recent year with data.
func (v *StationView) DefaultYear() (int, bool) {
	if len(v.records) == 0 {
		return 0, false
	}
	return v.records[len(v.records)-1].Year, true
}

// Year narrows the view to one calendar year.
func (v *StationView) Year(year int) *YearView {
	var records []domain.StationRecord
	for _, r := range v.records {
		if r.Year == year {
			records = append(records, r)
		}
	}
	return &YearView{station: v.station, year: year, records: records}
}

// YearView is the rows of one station in one year, ordered by date.
type YearView struct {
	station string
	year    int
	records []domain.StationRecord
}

func (v *YearView) Station() string { return v.station }

func (v *YearView) Year() int { return v.year }

func (v *YearView) Len() int { return len(v.records) }

func (v *YearView) Records() []domain.StationRecord { return slices.Clone(v.records) }

// Site is one point on the station map.
type Site struct {
	StationName string   `json:"station_name"`
	StationID   string   `json:"station_id"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Elevation   *float64 `json:"elevation"`
}

// Sites returns one entry per station name, taken from its first row in
// table order, sorted by name.
func Sites(table *domain.UnifiedTable) []Site {
	seen := make(map[string]struct{})
	var sites []Site
	for r := range table.All() {
		if _, ok := seen[r.StationName]; ok {
			continue
		}
		seen[r.StationName] = struct{}{}
		site := Site{StationName: r.StationName, StationID: r.StationID}
		if r.Coordinates.Valid {
			site.Latitude = optional(r.Coordinates.Latitude)
			site.Longitude = optional(r.Coordinates.Longitude)
			site.Elevation = optional(r.Coordinates.Elevation)
		}
		sites = append(sites, site)
	}
	slices.SortFunc(sites, func(a, b Site) int { return cmp.Compare(a.StationName, b.StationName) })
	return sites
}

// optional maps NaN to nil so it marshals as JSON null.
func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// valid drops NaN values.
func valid(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func temperatures(records []domain.StationRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.MaxTemperature
	}
	return out
}
