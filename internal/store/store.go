package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/geo-hotspot/internal/domain"
	"github.com/couchcryptid/geo-hotspot/internal/observability"
)

// LoadKey identifies one load: which source and with which parameters.
type LoadKey struct {
	Source string
	Params string
}

// Source produces the raw rows of a dataset. Rows returns a *domain.LoadError
// when the source cannot be read at all.
type Source interface {
	Key() LoadKey
	Rows(ctx context.Context) ([]domain.RawRow, error)
}

// Dataset is an immutable loaded snapshot. It is shared read-only between runs.
type Dataset struct {
	Key LoadKey
	LoadResult
	Observed Observed
	LoadedAt time.Time
}

// Store memoizes loaded datasets so that filter changes never reload the source.
type Store struct {
	cache   *datasetCache
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Store holding up to cacheSize datasets.
func New(cacheSize int, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		cache:   newDatasetCache(cacheSize),
		logger:  logger,
		metrics: metrics,
	}
}

// Dataset returns the cached snapshot for src, loading it on first use.
func (s *Store) Dataset(ctx context.Context, src Source) (*Dataset, error) {
	key := src.Key()
	if ds, ok := s.cache.get(key); ok {
		s.metrics.DatasetCache.WithLabelValues("hit").Inc()
		return ds, nil
	}
	s.metrics.DatasetCache.WithLabelValues("miss").Inc()

	rows, err := src.Rows(ctx)
	if err != nil {
		var loadErr *domain.LoadError
		if !errors.As(err, &loadErr) {
			err = &domain.LoadError{Source: key.Source, Err: err}
		}
		s.logger.Error("dataset load failed", "source", key.Source, "params", key.Params, "error", err)
		return nil, err
	}

	res := Load(rows, s.logger)
	ds := &Dataset{
		Key:        key,
		LoadResult: res,
		Observed:   Labels(res.Events),
		LoadedAt:   domain.Now(),
	}
	s.metrics.RowsLoaded.Add(float64(len(res.Events)))
	s.metrics.RowsDropped.Add(float64(res.Dropped))
	s.logger.Info("dataset loaded",
		"source", key.Source,
		"params", key.Params,
		"valid", len(res.Events),
		"dropped", res.Dropped,
	)

	return s.cache.putIfAbsent(key, ds), nil
}

// Reload discards any cached snapshot for src and loads it again.
func (s *Store) Reload(ctx context.Context, src Source) (*Dataset, error) {
	s.Invalidate(src.Key())
	return s.Dataset(ctx, src)
}

// Invalidate drops the cached snapshot for key, if any.
func (s *Store) Invalidate(key LoadKey) {
	if s.cache.invalidate(key) {
		s.logger.Info("dataset invalidated", "source", key.Source, "params", key.Params)
	}
}
