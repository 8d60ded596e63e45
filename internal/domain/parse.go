package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang/geo/s2"
)

// timestampLayouts lists the accepted date formats in priority order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseRow validates a raw row and converts it into an Event.
// The returned error wraps ErrMissingField, ErrOutOfRange or ErrBadValue so callers
// can aggregate drop reasons with errors.Is.
func ParseRow(row RawRow) (Event, error) {
	dateStr := strings.TrimSpace(row.Date)
	latStr := strings.TrimSpace(row.Latitude)
	lonStr := strings.TrimSpace(row.Longitude)
	group := strings.TrimSpace(row.Group)
	region := strings.TrimSpace(row.Region)

	switch {
	case dateStr == "":
		return Event{}, fmt.Errorf("date: %w", ErrMissingField)
	case latStr == "":
		return Event{}, fmt.Errorf("latitude: %w", ErrMissingField)
	case lonStr == "":
		return Event{}, fmt.Errorf("longitude: %w", ErrMissingField)
	case group == "":
		return Event{}, fmt.Errorf("group: %w", ErrMissingField)
	case region == "":
		return Event{}, fmt.Errorf("region: %w", ErrMissingField)
	}

	ts, err := ParseTimestamp(dateStr)
	if err != nil {
		return Event{}, err
	}
	lat, err := parseCoordinate("latitude", latStr)
	if err != nil {
		return Event{}, err
	}
	lon, err := parseCoordinate("longitude", lonStr)
	if err != nil {
		return Event{}, err
	}
	if !s2.LatLngFromDegrees(lat, lon).IsValid() {
		return Event{}, fmt.Errorf("coordinate (%g, %g): %w", lat, lon, ErrOutOfRange)
	}

	return Event{
		Timestamp: ts,
		Geo:       Geo{Lat: lat, Lon: lon},
		Group:     group,
		Region:    region,
		Note:      strings.TrimSpace(row.Note),
	}, nil
}

// ParseTimestamp parses a date or date-time string in any accepted layout.
// Values without an explicit offset are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q: %w", s, ErrBadValue)
}

// parseCoordinate parses a degree value, rejecting text and non-finite numbers.
func parseCoordinate(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", field, s, ErrBadValue)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s %q: %w", field, s, ErrOutOfRange)
	}
	return v, nil
}
