// Package csvfile reads and writes event datasets as header-mapped CSV files.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/geo-hotspot/internal/domain"
	"github.com/couchcryptid/geo-hotspot/internal/store"
)

// Column names recognized in the header row. Matching ignores case and
// surrounding whitespace; unknown columns are ignored.
const (
	ColDate      = "date"
	ColLatitude  = "latitude"
	ColLongitude = "longitude"
	ColGroup     = "group"
	ColRegion    = "region"
	ColNote      = "note"
)

// ErrCarriageReturn is returned by Write for a field containing '\r', which
// would not read back unchanged.
var ErrCarriageReturn = errors.New("field contains a carriage return")

var requiredColumns = []string{ColDate, ColLatitude, ColLongitude, ColGroup, ColRegion}

// Source loads raw rows from a CSV file on disk.
type Source struct {
	path   string
	logger *slog.Logger
}

// NewSource creates a Source for the file at path.
func NewSource(path string, logger *slog.Logger) *Source {
	return &Source{path: path, logger: logger}
}

// Key identifies the file; the same path always maps to the same cached dataset.
func (s *Source) Key() store.LoadKey {
	return store.LoadKey{Source: "csv", Params: s.path}
}

// Rows reads every data row. An unreadable file or a header missing a
// required column is a *domain.LoadError.
func (s *Source) Rows(ctx context.Context) ([]domain.RawRow, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, &domain.LoadError{Source: s.path, Err: err}
	}
	defer f.Close()

	rows, skipped, err := Read(ctx, f)
	if err != nil {
		return nil, &domain.LoadError{Source: s.path, Err: err}
	}
	if skipped > 0 {
		s.logger.Warn("malformed csv lines", "path", s.path, "count", skipped)
	}
	return rows, nil
}

// Read parses CSV from r. Lines the CSV reader rejects are returned as empty
// rows so validation counts them as dropped; skipped reports how many there were.
func Read(ctx context.Context, r io.Reader) (rows []domain.RawRow, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, errors.New("empty file: no header row")
		}
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, 0, err
	}

	for line := 2; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, 0, fmt.Errorf("read line %d: %w", line, err)
			}
			skipped++
			rows = append(rows, domain.RawRow{})
			continue
		}
		rows = append(rows, domain.RawRow{
			Date:      field(record, idx, ColDate),
			Latitude:  field(record, idx, ColLatitude),
			Longitude: field(record, idx, ColLongitude),
			Group:     field(record, idx, ColGroup),
			Region:    field(record, idx, ColRegion),
			Note:      field(record, idx, ColNote),
		})
	}
	return rows, skipped, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

// field returns the named column, or "" when the record is too short.
func field(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

// Write writes rows with the canonical header. The output reads back through Read unchanged.
func Write(w io.Writer, rows []domain.RawRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColDate, ColLatitude, ColLongitude, ColGroup, ColRegion, ColNote}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		rec := []string{r.Date, r.Latitude, r.Longitude, r.Group, r.Region, r.Note}
		for _, f := range rec {
			if strings.ContainsRune(f, '\r') {
				return fmt.Errorf("row %d: %w", i+2, ErrCarriageReturn)
			}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
