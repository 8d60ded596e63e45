// Command genmock writes a synthetic event dataset as CSV, in the format the
// csv data source reads. Output is reproducible for a given seed and -as-of day.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/events.csv -rows 15000 -seed 42 -as-of 2024-06-30
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/geo-hotspot/internal/adapter/csvfile"
	"github.com/couchcryptid/geo-hotspot/internal/adapter/synthetic"
	"github.com/couchcryptid/geo-hotspot/internal/domain"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output CSV path")
	rows := flag.Int("rows", synthetic.DefaultRows, "number of rows")
	seed := flag.Uint64("seed", synthetic.DefaultSeed, "random seed")
	asOf := flag.String("as-of", "", "generate dates ending on this day, YYYY-MM-DD (default today)")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	if *asOf != "" {
		day, err := time.Parse(time.DateOnly, *asOf)
		if err != nil {
			return fmt.Errorf("-as-of: %w", err)
		}
		// Noon keeps every generated timestamp on the intended calendar day.
		domain.SetClock(clockwork.NewFakeClockAt(day.Add(12 * time.Hour)))
		defer domain.SetClock(nil)
	}

	data := synthetic.NewGenerator(*rows, *seed).Generate(domain.Now())

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	if err := csvfile.Write(f, data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", *out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Printf("wrote %d rows to %s", len(data), *out)
	return nil
}
