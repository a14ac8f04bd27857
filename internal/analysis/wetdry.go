package analysis

import "github.com/couchcryptid/station-climate/internal/domain"

// ClassifiedDay is one station-day labelled wet or dry. It also carries the
// temperature/precipitation pair plotted by the rain-versus-heat scatter.
type ClassifiedDay struct {
	Date           domain.Date               `json:"date"`
	Year           int                       `json:"year"`
	MaxTemperature *float64                  `json:"max_temperature"`
	Precipitation  *float64                  `json:"precipitation"`
	State          domain.PrecipitationState `json:"state"`
}

// WetDryClassification labels every row of the station view.
func WetDryClassification(view *StationView) []ClassifiedDay {
	days := make([]ClassifiedDay, len(view.records))
	for i, r := range view.records {
		days[i] = ClassifiedDay{
			Date:           r.Date,
			Year:           r.Year,
			MaxTemperature: optional(r.MaxTemperature),
			Precipitation:  optional(r.Precipitation),
			State:          r.State(),
		}
	}
	return days
}
