// Command genmock writes synthetic temperature, precipitation and coordinate
// tables in the station file layout, for local runs and demos without the
// real station archives.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -from 2015 -to 2024 -seed 42
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for the three CSV files")
	from := flag.Int("from", 2015, "first year")
	to := flag.Int("to", 2024, "last year")
	seed := flag.Uint64("seed", 42, "random seed")
	missing := flag.Float64("missing", 0.01, "fraction of measurements left blank")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	g := generator{from: *from, to: *to, seed: *seed, missing: *missing}
	tables, err := g.generate()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}
	for _, t := range tables {
		path := filepath.Join(*out, t.file)
		if err := writeTable(path, t.rows); err != nil {
			return fmt.Errorf("writing %s: %w", t.file, err)
		}
		log.Printf("wrote %s: %d rows", path, len(t.rows)-1)
	}
	return nil
}
