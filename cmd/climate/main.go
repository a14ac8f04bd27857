// Command climate loads the station temperature, precipitation and coordinate
// tables once and prints derived climate metrics as JSON.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/couchcryptid/station-climate/internal/domain"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		var le *domain.LoadError
		if errors.As(err, &le) {
			fmt.Fprintf(os.Stderr, "hint: check the %s table (%s): %s\n", le.Source, le.Location, hint(le.Kind))
		}
		os.Exit(1)
	}
}

func hint(kind domain.LoadErrorKind) string {
	switch kind {
	case domain.KindFileMissing:
		return "the file does not exist; set the path flag or env var"
	case domain.KindSchemaMismatch:
		return "required columns are missing or the file has no data rows"
	case domain.KindDateComposition:
		return "some Ano/Mes/Dia values do not form a calendar date"
	case domain.KindInvalidValue:
		return "a numeric column holds a non-numeric value"
	default:
		return "the file could not be read"
	}
}
