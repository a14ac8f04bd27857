// Command validate loads the three station tables and runs integrity checks
// over the unified table: join and coordinate coverage, station identity,
// calendar fields, and value plausibility.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -temperature MAESTRO_TEMPERATURAS_FINAL_COMPLETO.csv \
//	  -precipitation MAESTRO_PRECIPITACIONES_FINAL_COMPLETO.csv \
//	  -coordinates coordenadas.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/station-climate/internal/config"
	"github.com/couchcryptid/station-climate/internal/domain"
	"github.com/couchcryptid/station-climate/internal/observability"
	"github.com/couchcryptid/station-climate/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.TemperaturePath, "temperature", cfg.TemperaturePath, "temperature CSV")
	flag.StringVar(&cfg.PrecipitationPath, "precipitation", cfg.PrecipitationPath, "precipitation CSV")
	flag.StringVar(&cfg.CoordinatesPath, "coordinates", cfg.CoordinatesPath, "coordinates CSV")
	flag.Parse()

	if code := run(context.Background(), os.Stdout, cfg); code != 0 {
		os.Exit(code)
	}
}

func run(ctx context.Context, w io.Writer, cfg *config.Config) int {
	fmt.Fprintln(w, "=== Station Climate Integrity Validation ===")
	fmt.Fprintln(w)

	logger := observability.NewLogger(cfg, io.Discard)
	p := pipeline.New(
		pipeline.FileSources(cfg.TemperaturePath, cfg.PrecipitationPath, cfg.CoordinatesPath),
		logger,
		observability.NewMetrics(),
		pipeline.WithDelimiter(cfg.Delimiter),
	)
	table, err := p.Load(ctx)
	if err != nil {
		fmt.Fprintf(w, "FATAL: %v\n", err)
		return 1
	}

	return report(w, table, []*phase{
		validateJoinCoverage(table),
		validateCoordinates(table),
		validateStationIdentity(table),
		validateCalendar(table),
		validatePlausibility(table),
	})
}

func report(w io.Writer, table *domain.UnifiedTable, phases []*phase) int {
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	stats := table.Stats()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Rows: %d temperature, %d precipitation, %d coordinates, %d unified\n",
		stats.TemperatureRows, stats.PrecipitationRows, stats.CoordinateRows, table.Len())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}
