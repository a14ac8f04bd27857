package session

import (
	"errors"

	"github.com/couchcryptid/station-climate/internal/analysis"
	"github.com/couchcryptid/station-climate/internal/domain"
)

// Note explains why a dashboard section is empty.
type Note struct {
	Section string `json:"section"`
	Message string `json:"message"`
}

// Dashboard is every section recomputed for one station and year selection.
// Sections without data are nil and carry a Note instead.
type Dashboard struct {
	Station      string                       `json:"station"`
	Year         int                          `json:"year"`
	Years        []int                        `json:"years"`
	Site         *analysis.Site               `json:"site"`
	Summary      *analysis.Summary            `json:"summary"`
	Rolling      []analysis.RollingPoint      `json:"rolling_mean"`
	Trend        *analysis.Trend              `json:"annual_trend"`
	Anomaly      []analysis.AnomalyPoint      `json:"anomaly"`
	WetDry       []analysis.ClassifiedDay     `json:"wet_dry"`
	Histogram    *analysis.Histogram          `json:"histogram"`
	Distribution []analysis.StateDistribution `json:"wet_dry_distribution"`
	Notes        []Note                       `json:"notes"`
}

// Dashboard recomputes every section for a selection. Year 0 selects the most
// recent year of the station. Only an unknown station or an unexpected error
// fails the call; empty selections become notes.
func (s *Session) Dashboard(name string, year int) (*Dashboard, error) {
	view, err := s.StationView(name)
	if err != nil {
		return nil, err
	}
	year = resolveYear(view, year)

	d := &Dashboard{Station: name, Year: year, Years: view.Years(), Notes: []Note{}}
	if site, err := s.Site(name); err == nil {
		d.Site = &site
	}

	summary, err := s.Summary(name, year)
	if err := d.collect(OpSummary, err); err != nil {
		return nil, err
	}
	if summary.Days > 0 {
		d.Summary = &summary
	}

	d.Rolling, err = s.RollingMean(name, year, s.window)
	if err := d.collect(OpRollingMean, err); err != nil {
		return nil, err
	}

	trend, err := s.AnnualTrend(name)
	if err := d.collect(OpAnnualTrend, err); err != nil {
		return nil, err
	}
	if len(trend.Points) > 0 {
		d.Trend = &trend
	}

	d.Anomaly, err = s.Anomaly(name, year, s.baseline)
	if err := d.collect(OpAnomaly, err); err != nil {
		return nil, err
	}

	if d.WetDry, err = s.WetDry(name); err != nil {
		return nil, err
	}

	histogram, err := s.Histogram(name, s.bins)
	if err := d.collect(OpHistogram, err); err != nil {
		return nil, err
	}
	if len(histogram.Edges) > 0 {
		d.Histogram = &histogram
	} else {
		d.Notes = append(d.Notes, Note{Section: OpHistogram, Message: "no data: no valid temperature observations"})
	}

	d.Distribution, err = s.Distribution(name)
	if err := d.collect(OpDistribution, err); err != nil {
		return nil, err
	}
	return d, nil
}

// collect turns an empty selection into a note and passes other errors on.
func (d *Dashboard) collect(section string, err error) error {
	var empty *domain.EmptySelectionError
	if errors.As(err, &empty) {
		d.Notes = append(d.Notes, Note{Section: section, Message: "no data: " + empty.Error()})
		return nil
	}
	return err
}
