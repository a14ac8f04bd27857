package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/station-climate/internal/domain"
)

// Column names of the on-disk contract.
const (
	colYear           = "Ano"
	colMonth          = "Mes"
	colDay            = "Dia"
	colStationID      = "CodigoNacional"
	colStationName    = "NombreEstacion"
	colMaxTemperature = "T.Maxima"
	colPrecipitation  = "SumaDiaria"
	colLatitude       = "Latitud"
	colLongitude      = "Longitud"
	colElevation      = "Altura"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// observation is one row of the temperature or precipitation table.
type observation struct {
	key   joinKey
	date  domain.Date
	value float64
}

// joinKey is (date, stationId, stationName); day is days since the Unix epoch.
type joinKey struct {
	day         int64
	stationID   string
	stationName string
}

type coordinateRow struct {
	stationID   string
	coordinates domain.Coordinates
}

// readTable opens src and parses it as an all-string table, checking that
// every required column is present.
func readTable(ctx context.Context, src TableSource, source domain.Source, delimiter rune, required []string) (dataframe.DataFrame, error) {
	fail := func(kind domain.LoadErrorKind, err error) (dataframe.DataFrame, error) {
		return dataframe.DataFrame{}, &domain.LoadError{Source: source, Kind: kind, Location: src.String(), Err: err}
	}

	rc, err := src.Open(ctx)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fail(domain.KindFileMissing, err)
		}
		return fail(domain.KindUnreadable, err)
	}
	defer rc.Close()

	br := stripBOM(rc)
	headerLine, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fail(domain.KindUnreadable, err)
	}
	header, err := parseHeader(headerLine, delimiter)
	if err != nil {
		return fail(domain.KindSchemaMismatch, err)
	}
	if missing := missingColumns(header, required); len(missing) > 0 {
		return fail(domain.KindSchemaMismatch, fmt.Errorf("missing columns: %s", strings.Join(missing, ", ")))
	}

	// gota refuses a header without rows; that is an empty table, not a bad one.
	if !hasData(br) {
		return emptyFrame(header), nil
	}

	df := dataframe.ReadCSV(io.MultiReader(strings.NewReader(headerLine), br),
		dataframe.WithDelimiter(delimiter),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return fail(domain.KindSchemaMismatch, df.Err)
	}
	return df, nil
}

// parseHeader splits the first line of a table into column names.
func parseHeader(line string, delimiter rune) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return nil, errors.New("empty table: no header row")
	}
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delimiter
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	return header, nil
}

// hasData reports whether anything but blank lines follows the header.
func hasData(br *bufio.Reader) bool {
	for size := 64; ; size *= 2 {
		head, err := br.Peek(size)
		if len(bytes.TrimSpace(head)) > 0 {
			return true
		}
		if err != nil {
			return false
		}
	}
}

// emptyFrame is a zero-row all-string table with the given columns.
func emptyFrame(names []string) dataframe.DataFrame {
	cols := make([]series.Series, len(names))
	for i, name := range names {
		cols[i] = series.New([]string{}, series.String, name)
	}
	return dataframe.New(cols...)
}

// readObservations loads a temperature or precipitation table. Every row with
// a bad date is collected so the caller sees all of them at once.
func readObservations(ctx context.Context, src TableSource, source domain.Source, delimiter rune, valueColumn string) ([]observation, error) {
	df, err := readTable(ctx, src, source, delimiter, []string{colYear, colMonth, colDay, colStationID, colStationName, valueColumn})
	if err != nil {
		return nil, err
	}

	years := df.Col(colYear).Records()
	months := df.Col(colMonth).Records()
	days := df.Col(colDay).Records()
	ids := df.Col(colStationID).Records()
	names := df.Col(colStationName).Records()
	values := df.Col(valueColumn).Records()

	obs := make([]observation, 0, df.Nrow())
	var dateErrs []error
	for i := range df.Nrow() {
		line := i + 2 // header is line 1
		date, err := domain.ComposeDate(line, years[i], months[i], days[i])
		if err != nil {
			dateErrs = append(dateErrs, err)
			continue
		}
		v, err := domain.ParseMeasurement(values[i])
		if err != nil {
			return nil, &domain.LoadError{
				Source:   source,
				Kind:     domain.KindInvalidValue,
				Location: src.String(),
				Err:      fmt.Errorf("line %d column %s: %w", line, valueColumn, err),
			}
		}
		obs = append(obs, observation{
			key: joinKey{
				day:         date.Unix() / 86400,
				stationID:   domain.NormalizeStationID(ids[i]),
				stationName: strings.TrimSpace(names[i]),
			},
			date:  date,
			value: v,
		})
	}

	if len(dateErrs) > 0 {
		return nil, &domain.LoadError{
			Source:   source,
			Kind:     domain.KindDateComposition,
			Location: src.String(),
			Err:      errors.Join(dateErrs...),
		}
	}
	return obs, nil
}

// readCoordinates loads the station coordinate table in file order.
// Rows without a station code are skipped.
func readCoordinates(ctx context.Context, src TableSource, delimiter rune) ([]coordinateRow, error) {
	df, err := readTable(ctx, src, domain.SourceCoordinates, delimiter, []string{colStationID, colLatitude, colLongitude, colElevation})
	if err != nil {
		return nil, err
	}

	ids := df.Col(colStationID).Records()
	columns := [][]string{
		df.Col(colLatitude).Records(),
		df.Col(colLongitude).Records(),
		df.Col(colElevation).Records(),
	}
	names := []string{colLatitude, colLongitude, colElevation}

	rows := make([]coordinateRow, 0, df.Nrow())
	for i := range df.Nrow() {
		id := domain.NormalizeStationID(ids[i])
		if id == "" {
			continue
		}
		var parsed [3]float64
		for c, col := range columns {
			v, err := domain.ParseMeasurement(col[i])
			if err != nil {
				return nil, &domain.LoadError{
					Source:   domain.SourceCoordinates,
					Kind:     domain.KindInvalidValue,
					Location: src.String(),
					Err:      fmt.Errorf("line %d column %s: %w", i+2, names[c], err),
				}
			}
			parsed[c] = v
		}
		rows = append(rows, coordinateRow{
			stationID: id,
			coordinates: domain.Coordinates{
				Latitude:  parsed[0],
				Longitude: parsed[1],
				Elevation: parsed[2],
				Valid:     true,
			},
		})
	}
	return rows, nil
}

func missingColumns(have, want []string) []string {
	present := make(map[string]struct{}, len(have))
	for _, name := range have {
		present[name] = struct{}{}
	}
	var missing []string
	for _, name := range want {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// stripBOM drops a leading UTF-8 byte order mark, which spreadsheet exports
// prepend and which would otherwise end up in the first column name.
func stripBOM(r io.Reader) *bufio.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}
