package domain

import (
	"errors"
	"fmt"
)

// Source names one of the three input tables.
type Source string

const (
	SourceTemperature   Source = "temperature"
	SourcePrecipitation Source = "precipitation"
	SourceCoordinates   Source = "coordinates"
)

// LoadErrorKind tells the presentation layer what to ask the user to fix.
type LoadErrorKind string

const (
	KindFileMissing     LoadErrorKind = "file_missing"
	KindUnreadable      LoadErrorKind = "unreadable"
	KindSchemaMismatch  LoadErrorKind = "schema_mismatch"
	KindDateComposition LoadErrorKind = "date_composition"
	KindInvalidValue    LoadErrorKind = "invalid_value"
)

// LoadError reports why one input table could not be used.
// Any LoadError is fatal to the session.
type LoadError struct {
	Source   Source
	Kind     LoadErrorKind
	Location string // file path or other description of the source
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s source %q: %s: %v", e.Source, e.Location, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// DateCompositionError is raised for a row whose Ano/Mes/Dia do not form a
// calendar date. Line is the 1-based line number in the file, header included.
type DateCompositionError struct {
	Line   int
	Year   string
	Month  string
	Day    string
	Reason string
}

func (e *DateCompositionError) Error() string {
	return fmt.Sprintf("line %d: invalid date Ano=%q Mes=%q Dia=%q: %s", e.Line, e.Year, e.Month, e.Day, e.Reason)
}

// ErrEmptySelection is matched by every *EmptySelectionError via errors.Is.
var ErrEmptySelection = errors.New("empty selection")

// EmptySelectionError reports a filtered view without rows reaching an
// operation that needs at least one.
type EmptySelectionError struct {
	Operation string
	Station   string
	Year      int // 0 when the view is not restricted to a year
}

func (e *EmptySelectionError) Error() string {
	if e.Year != 0 {
		return fmt.Sprintf("%s: no observations for station %q in %d", e.Operation, e.Station, e.Year)
	}
	return fmt.Sprintf("%s: no observations for station %q", e.Operation, e.Station)
}

func (e *EmptySelectionError) Is(target error) bool {
	return target == ErrEmptySelection
}
