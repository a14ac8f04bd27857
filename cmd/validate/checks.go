package main

import (
	"fmt"
	"math"
	"slices"

	"github.com/couchcryptid/station-climate/internal/domain"
)

// Plausible ranges for Chilean station data.
const (
	minTemperature   = -40.0
	maxTemperature   = 50.0
	maxPrecipitation = 500.0
	maxErrorsPerRule = 20
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func validateJoinCoverage(table *domain.UnifiedTable) *phase {
	p := &phase{name: "Phase 1: Temperature/precipitation join"}
	stats := table.Stats()
	if stats.MatchedRows == 0 {
		p.errorf("no (date, station) key is present in both tables")
	}
	if stats.DuplicateTemperature > 0 {
		p.errorf("%d duplicate (date, station) rows in the temperature table", stats.DuplicateTemperature)
	}
	if stats.DuplicatePrecipitation > 0 {
		p.errorf("%d duplicate (date, station) rows in the precipitation table", stats.DuplicatePrecipitation)
	}
	return p
}

func validateCoordinates(table *domain.UnifiedTable) *phase {
	p := &phase{name: "Phase 2: Station coordinates"}
	stats := table.Stats()
	if stats.CoordinateConflicts > 0 {
		p.errorf("%d coordinate rows disagree with an earlier row of the same station", stats.CoordinateConflicts)
	}

	seen := map[string]bool{}
	for _, r := range table.Records() {
		if r.Coordinates.Valid || seen[r.StationID] {
			continue
		}
		seen[r.StationID] = true
		p.errorf("station %s (%s) has no coordinates", r.StationID, r.StationName)
	}
	return p
}

// validateStationIdentity checks that station names and ids map one to one.
func validateStationIdentity(table *domain.UnifiedTable) *phase {
	p := &phase{name: "Phase 3: Station identity"}
	idsByName := map[string][]string{}
	namesByID := map[string][]string{}
	for _, r := range table.Records() {
		if !slices.Contains(idsByName[r.StationName], r.StationID) {
			idsByName[r.StationName] = append(idsByName[r.StationName], r.StationID)
		}
		if !slices.Contains(namesByID[r.StationID], r.StationName) {
			namesByID[r.StationID] = append(namesByID[r.StationID], r.StationName)
		}
	}
	for _, name := range table.StationNames() {
		if ids := idsByName[name]; len(ids) > 1 {
			p.errorf("station name %q is used by ids %v", name, ids)
		}
	}
	ids := make([]string, 0, len(namesByID))
	for id := range namesByID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if names := namesByID[id]; len(names) > 1 {
			p.errorf("station id %s appears as %q", id, names)
		}
	}
	return p
}

func validateCalendar(table *domain.UnifiedTable) *phase {
	p := &phase{name: "Phase 4: Calendar fields"}
	for i, r := range table.Records() {
		if len(p.errors) >= maxErrorsPerRule {
			break
		}
		if r.Year != r.Date.Year() || r.DayOfYear != r.Date.YearDay() {
			p.errorf("row %d (%s, %s): year/day-of-year %d/%d do not match date", i, r.StationName, r.Date, r.Year, r.DayOfYear)
		}
	}
	return p
}

func validatePlausibility(table *domain.UnifiedTable) *phase {
	p := &phase{name: "Phase 5: Value plausibility"}
	var temps, precs int
	for _, r := range table.Records() {
		t := r.MaxTemperature
		if !math.IsNaN(t) && (t < minTemperature || t > maxTemperature) {
			temps++
			if temps <= maxErrorsPerRule {
				p.errorf("%s %s: maximum temperature %.1f outside [%g, %g]", r.StationName, r.Date, t, minTemperature, maxTemperature)
			}
		}
		pr := r.Precipitation
		if !math.IsNaN(pr) && (pr < 0 || pr > maxPrecipitation) {
			precs++
			if precs <= maxErrorsPerRule {
				p.errorf("%s %s: precipitation %.1f outside [0, %g]", r.StationName, r.Date, pr, maxPrecipitation)
			}
		}
	}
	return p
}
