package pipeline

import (
	"math"

	"github.com/couchcryptid/station-climate/internal/domain"
)

type joinStats struct {
	matched                int
	unmatchedTemperature   int
	unmatchedPrecipitation int
	duplicateTemperature   int
	duplicatePrecipitation int
}

// innerJoin pairs temperature and precipitation rows sharing
// (date, stationId, stationName). Rows without a partner are dropped. A key
// repeated within one side keeps its first occurrence. Output follows the
// temperature row order.
func innerJoin(temps, precs []observation) ([]domain.StationRecord, joinStats) {
	var stats joinStats

	precIndex := make(map[joinKey]int, len(precs))
	for i, p := range precs {
		if _, dup := precIndex[p.key]; dup {
			stats.duplicatePrecipitation++
			continue
		}
		precIndex[p.key] = i
	}

	seen := make(map[joinKey]struct{}, len(temps))
	records := make([]domain.StationRecord, 0, min(len(temps), len(precIndex)))
	for _, t := range temps {
		if _, dup := seen[t.key]; dup {
			stats.duplicateTemperature++
			continue
		}
		seen[t.key] = struct{}{}

		j, ok := precIndex[t.key]
		if !ok {
			stats.unmatchedTemperature++
			continue
		}
		records = append(records, domain.StationRecord{
			StationID:      t.key.stationID,
			StationName:    t.key.stationName,
			Date:           t.date,
			MaxTemperature: t.value,
			Precipitation:  precs[j].value,
			Year:           t.date.Year(),
			DayOfYear:      t.date.YearDay(),
		})
	}

	stats.matched = len(records)
	stats.unmatchedPrecipitation = len(precIndex) - stats.matched
	return records, stats
}

// indexCoordinates keeps the first coordinate row of every station and counts
// later rows that disagree with it.
func indexCoordinates(rows []coordinateRow) (map[string]domain.Coordinates, int) {
	index := make(map[string]domain.Coordinates, len(rows))
	conflicts := 0
	for _, row := range rows {
		first, ok := index[row.stationID]
		if !ok {
			index[row.stationID] = row.coordinates
			continue
		}
		if !sameCoordinates(first, row.coordinates) {
			conflicts++
		}
	}
	return index, conflicts
}

// attachCoordinates left-joins coordinates onto records in place and returns
// the number of distinct stations that had none.
func attachCoordinates(records []domain.StationRecord, index map[string]domain.Coordinates) int {
	missing := make(map[string]struct{})
	for i := range records {
		c, ok := index[records[i].StationID]
		if !ok {
			missing[records[i].StationID] = struct{}{}
			continue
		}
		records[i].Coordinates = c
	}
	return len(missing)
}

func sameCoordinates(a, b domain.Coordinates) bool {
	return sameFloat(a.Latitude, b.Latitude) &&
		sameFloat(a.Longitude, b.Longitude) &&
		sameFloat(a.Elevation, b.Elevation)
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}
