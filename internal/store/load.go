package store

import (
	"errors"
	"log/slog"

	"github.com/couchcryptid/geo-hotspot/internal/domain"
)

// Drop reasons reported in LoadResult.DropReasons.
const (
	ReasonMissingField = "missing_field"
	ReasonOutOfRange   = "out_of_range"
	ReasonBadValue     = "bad_value"
)

// LoadResult is the validated event set plus an account of what was dropped.
type LoadResult struct {
	Events      []domain.Event
	Dropped     int
	DropReasons map[string]int
}

// Load validates raw rows into events. Invalid rows are excluded and counted;
// a bad row never fails the load.
func Load(rows []domain.RawRow, logger *slog.Logger) LoadResult {
	res := LoadResult{
		Events:      make([]domain.Event, 0, len(rows)),
		DropReasons: make(map[string]int),
	}

	for _, row := range rows {
		event, err := domain.ParseRow(row)
		if err != nil {
			res.Dropped++
			res.DropReasons[dropReason(err)]++
			continue
		}
		res.Events = append(res.Events, event)
	}

	if res.Dropped > 0 {
		logger.Warn("dropped invalid rows",
			"dropped", res.Dropped,
			"valid", len(res.Events),
			ReasonMissingField, res.DropReasons[ReasonMissingField],
			ReasonOutOfRange, res.DropReasons[ReasonOutOfRange],
			ReasonBadValue, res.DropReasons[ReasonBadValue],
		)
	}
	return res
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingField):
		return ReasonMissingField
	case errors.Is(err, domain.ErrOutOfRange):
		return ReasonOutOfRange
	default:
		return ReasonBadValue
	}
}
