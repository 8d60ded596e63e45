package store

import (
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/geo-hotspot/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(d int) time.Time {
	return time.Date(2024, 4, d, 12, 0, 0, 0, time.UTC)
}

func event(group, region string, ts time.Time) domain.Event {
	return domain.Event{
		Timestamp: ts,
		Geo:       domain.Geo{Lat: 30, Lon: 75},
		Group:     group,
		Region:    region,
	}
}
