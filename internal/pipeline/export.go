package pipeline

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/station-climate/internal/domain"
)

var exportColumns = []string{
	"fecha", colStationID, colStationName, colMaxTemperature, colPrecipitation,
	colLatitude, colLongitude, colElevation, "Year", "DayOfYear",
}

// WriteCSV writes records as a comma-separated table with a header row.
// Missing values are written as empty cells; no records writes the header only.
func WriteCSV(w io.Writer, records []domain.StationRecord) error {
	if len(records) == 0 {
		if err := emptyFrame(exportColumns).WriteCSV(w); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		return nil
	}

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, exportColumns)
	for _, r := range records {
		lat, lon, elev := "", "", ""
		if r.Coordinates.Valid {
			lat = formatFloat(r.Coordinates.Latitude)
			lon = formatFloat(r.Coordinates.Longitude)
			elev = formatFloat(r.Coordinates.Elevation)
		}
		rows = append(rows, []string{
			r.Date.String(),
			r.StationID,
			r.StationName,
			formatFloat(r.MaxTemperature),
			formatFloat(r.Precipitation),
			lat, lon, elev,
			strconv.Itoa(r.Year),
			strconv.Itoa(r.DayOfYear),
		})
	}

	df := dataframe.LoadRecords(rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return fmt.Errorf("write csv: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
