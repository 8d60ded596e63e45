// Package export renders analytic outputs as delimited text and parses them back.
//
// Every table starts with a header row naming its fields, followed by one row
// per record in insertion order. Rows end in "\n" with no trailing delimiter.
// Fields may contain newlines but not carriage returns.
// Floats are written in the shortest form that parses back to the identical
// float64 and timestamps as RFC3339 with nanoseconds, so Write followed by the
// matching Parse function reproduces every value exactly.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrHeaderMismatch is returned when parsed text does not start with the expected header.
	ErrHeaderMismatch = errors.New("unexpected header")

	// ErrCarriageReturn is returned by Write for a field containing '\r'. CSV
	// readers fold "\r\n" inside quoted fields to "\n", so such a field could
	// not be read back unchanged.
	ErrCarriageReturn = errors.New("field contains a carriage return")
)

// Table is a tabular output ready to be serialized.
type Table interface {
	Name() string
	Header() []string
	Records() [][]string
}

type options struct {
	comma rune
}

// Option configures Write and the Parse functions.
type Option func(*options)

// WithDelimiter sets the field delimiter. The default is a comma.
func WithDelimiter(r rune) Option {
	return func(o *options) { o.comma = r }
}

func buildOptions(opts []Option) options {
	o := options{comma: ','}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Write serializes t to w.
func Write(w io.Writer, t Table, opts ...Option) error {
	o := buildOptions(opts)
	records := t.Records()
	for i, rec := range records {
		for j, f := range rec {
			if strings.ContainsRune(f, '\r') {
				return fmt.Errorf("write %s row %d %s: %w", t.Name(), i+2, t.Header()[j], ErrCarriageReturn)
			}
		}
	}

	cw := csv.NewWriter(w)
	cw.Comma = o.comma

	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write %s header: %w", t.Name(), err)
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write %s rows: %w", t.Name(), err)
	}
	return nil
}

// Serialize returns t as text.
func Serialize(t Table, opts ...Option) (string, error) {
	var buf bytes.Buffer
	if err := Write(&buf, t, opts...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// readAll reads every row after checking the header matches want exactly.
func readAll(r io.Reader, want []string, o options) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = o.comma
	// Zero pins the row width to the header's width.
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(want) {
		return nil, fmt.Errorf("%w: got %v, want %v", ErrHeaderMismatch, header, want)
	}
	for i := range want {
		if header[i] != want[i] {
			return nil, fmt.Errorf("%w: got %v, want %v", ErrHeaderMismatch, header, want)
		}
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// fieldParser accumulates the first conversion error for a row.
type fieldParser struct {
	line int
	err  error
}

func (p *fieldParser) float(name, s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("row %d %s: %w", p.line, name, err)
	}
	return v
}

func (p *fieldParser) int(name, s string) int {
	v, err := strconv.Atoi(s)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("row %d %s: %w", p.line, name, err)
	}
	return v
}

func (p *fieldParser) time(name, s string) time.Time {
	v, err := time.Parse(time.RFC3339Nano, s)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("row %d %s: %w", p.line, name, err)
	}
	return v.UTC()
}
