package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/geo-hotspot/internal/cluster"
	"github.com/couchcryptid/geo-hotspot/internal/domain"
	"github.com/couchcryptid/geo-hotspot/internal/insight"
	"github.com/couchcryptid/geo-hotspot/internal/observability"
	"github.com/couchcryptid/geo-hotspot/internal/store"
	"github.com/google/uuid"
)

// ErrSuperseded is returned by Run when a newer run started before this one finished.
var ErrSuperseded = errors.New("run superseded by a newer request")

const publishAttempts = 3

// Publisher delivers a completed, non-empty result downstream.
type Publisher interface {
	Publish(ctx context.Context, res *Result) error
}

// Result is the full output of one analysis pass.
type Result struct {
	RunID       string
	Generation  uint64
	GeneratedAt time.Time
	Params      domain.Params
	Source      store.LoadKey
	Valid       int
	Dropped     int
	DropReasons map[string]int
	Observed    store.Observed

	// Empty is true when the filter matched nothing. No engine ran and the
	// remaining fields are zero.
	Empty    bool
	Filtered int
	Labeled  []domain.LabeledEvent
	Clusters []domain.DensityCluster
	Centers  []domain.PartitionCenter
	Insights domain.InsightSummary
	Recent   []domain.Event
	// Frames grow the replay window step by step; the last frame equals Recent.
	Frames [][]domain.Event
}

// NoisePoints counts the labeled events that belong to no density cluster.
func (r *Result) NoisePoints() int {
	n := 0
	for _, e := range r.Labeled {
		if e.Cluster == cluster.Noise {
			n++
		}
	}
	return n
}

// Pipeline runs load-filter-cluster-summarize passes over one source.
type Pipeline struct {
	source    store.Source
	store     *store.Store
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics

	generation atomic.Uint64
	ready      atomic.Bool

	mu     sync.RWMutex
	latest *Result

	retryBackoff time.Duration
	maxBackoff   time.Duration
}

// New creates a Pipeline. A nil publisher disables publishing.
func New(src store.Source, st *store.Store, pub Publisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:       src,
		store:        st,
		publisher:    pub,
		logger:       logger,
		metrics:      metrics,
		retryBackoff: 200 * time.Millisecond,
		maxBackoff:   5 * time.Second,
	}
}

// CheckReadiness returns nil once at least one run has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no analysis run has completed yet")
	}
	return nil
}

// Latest returns the most recent non-superseded result, or nil before the first run.
func (p *Pipeline) Latest() *Result {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// Run performs one full analysis pass with params. Each call supersedes any
// run still in flight; the older run returns ErrSuperseded and its result is
// discarded.
func (p *Pipeline) Run(ctx context.Context, params domain.Params) (*Result, error) {
	gen := p.generation.Add(1)
	start := time.Now()
	runID := uuid.NewString()
	log := p.logger.With("run_id", runID, "generation", gen)

	res, err := p.run(ctx, params, log)
	if err != nil {
		p.metrics.RunsTotal.WithLabelValues("error").Inc()
		log.Error("analysis run failed", "error", err)
		return nil, err
	}
	res.RunID = runID
	res.Generation = gen
	res.GeneratedAt = domain.Now()

	if !p.commit(res) {
		p.metrics.RunsTotal.WithLabelValues("superseded").Inc()
		log.Info("analysis run superseded")
		return nil, ErrSuperseded
	}

	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.metrics.FilteredPoints.Set(float64(res.Filtered))
	p.metrics.DensityClusters.Set(float64(len(res.Clusters)))
	p.metrics.NoisePoints.Set(float64(res.NoisePoints()))
	p.metrics.PartitionCenters.Set(float64(len(res.Centers)))

	if res.Empty {
		p.metrics.RunsTotal.WithLabelValues("empty").Inc()
		log.Info("analysis run matched no events", "valid", res.Valid)
		return res, nil
	}

	p.metrics.RunsTotal.WithLabelValues("ok").Inc()
	log.Info("analysis run complete",
		"filtered", res.Filtered,
		"clusters", len(res.Clusters),
		"noise", res.NoisePoints(),
		"centers", len(res.Centers),
		"duration", time.Since(start),
	)
	p.publish(ctx, res, log)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, params domain.Params, log *slog.Logger) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	ds, err := p.store.Dataset(ctx, p.source)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Params:      params,
		Source:      ds.Key,
		Valid:       len(ds.Events),
		Dropped:     ds.Dropped,
		DropReasons: ds.DropReasons,
		Observed:    ds.Observed,
	}

	filtered := store.Filter(ds.Events, store.CriteriaFromParams(params))
	res.Filtered = filtered.Len()
	if filtered.Empty() {
		res.Empty = true
		return res, nil
	}
	log.Debug("filter applied", "matched", filtered.Len(), "of", len(ds.Events))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	points := filtered.Events()
	res.Labeled, res.Clusters, err = cluster.Detect(points, params.Eps, params.MinSamples)
	if err != nil {
		return nil, fmt.Errorf("density clustering: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Centers = cluster.Partition(points, params.K,
		cluster.WithSeed(params.Seed),
		cluster.WithMaxIterations(params.MaxIterations),
	)
	if res.Centers == nil {
		log.Warn("too few events for partitioning", "events", len(points), "k", params.K)
	}

	res.Insights = insight.Summarize(points, res.Clusters)
	res.Recent = store.Replay(filtered, params.ReplayWindowDays)
	res.Frames = store.ReplayFrames(filtered, params.ReplayWindowDays, params.ReplaySteps)
	return res, nil
}

// commit stores res as the latest result unless a newer run has started.
func (p *Pipeline) commit(res *Result) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if res.Generation != p.generation.Load() {
		return false
	}
	p.latest = res
	p.ready.Store(true)
	return true
}

// publish hands res to the publisher, retrying with exponential backoff.
// Failures are logged and counted but never fail the run.
func (p *Pipeline) publish(ctx context.Context, res *Result, log *slog.Logger) {
	if p.publisher == nil {
		return
	}
	backoff := p.retryBackoff
	for attempt := 1; ; attempt++ {
		err := p.publisher.Publish(ctx, res)
		if err == nil {
			return
		}
		p.metrics.PublishErrors.Inc()
		log.Warn("publish failed", "attempt", attempt, "error", err)
		if attempt == publishAttempts || ctx.Err() != nil {
			log.Error("giving up on publish", "attempts", attempt)
			return
		}
		if !sleepWithContext(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff, p.maxBackoff)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
