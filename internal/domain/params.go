package domain

import (
	"fmt"
	"time"
)

// Params is the full set of user-tunable options for one analysis pass.
// Nil Groups or Regions select every observed label; a zero Start or End
// falls back to the observed time bounds.
type Params struct {
	Groups  []string
	Regions []string
	Start   time.Time
	End     time.Time

	Eps        float64
	MinSamples int

	K             int
	Seed          uint64
	MaxIterations int

	ReplayWindowDays int
	ReplaySteps      int
}

// DefaultParams mirrors the interactive defaults: all labels, full span,
// eps 0.08°, six samples per core point, four predicted centers, 90-day replay
// in 12 frames.
func DefaultParams() Params {
	return Params{
		Eps:              0.08,
		MinSamples:       6,
		K:                4,
		Seed:             42,
		MaxIterations:    300,
		ReplayWindowDays: 90,
		ReplaySteps:      12,
	}
}

// Validate checks every parameter against its accepted range.
func (p Params) Validate() error {
	switch {
	case p.Eps <= 0 || p.Eps > 1.0:
		return fmt.Errorf("eps %g must be in (0, 1.0]: %w", p.Eps, ErrInvalidParams)
	case p.MinSamples < 3 || p.MinSamples > 30:
		return fmt.Errorf("min_samples %d must be in [3, 30]: %w", p.MinSamples, ErrInvalidParams)
	case p.K < 2 || p.K > 12:
		return fmt.Errorf("k %d must be in [2, 12]: %w", p.K, ErrInvalidParams)
	case p.MaxIterations < 1:
		return fmt.Errorf("max_iterations %d must be positive: %w", p.MaxIterations, ErrInvalidParams)
	case p.ReplayWindowDays < 1:
		return fmt.Errorf("replay_window_days %d must be at least 1: %w", p.ReplayWindowDays, ErrInvalidParams)
	case p.ReplaySteps < 5 || p.ReplaySteps > 50:
		return fmt.Errorf("replay_steps %d must be in [5, 50]: %w", p.ReplaySteps, ErrInvalidParams)
	case !p.Start.IsZero() && !p.End.IsZero() && p.End.Before(p.Start):
		return fmt.Errorf("date range end %s before start %s: %w",
			p.End.Format(time.DateOnly), p.Start.Format(time.DateOnly), ErrInvalidParams)
	}
	return nil
}

// DayRange expands a pair of calendar dates into an inclusive interval that
// covers the whole of both days in UTC.
func DayRange(start, end time.Time) (time.Time, time.Time) {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).
		Add(24*time.Hour - time.Nanosecond)
	return s, e
}
