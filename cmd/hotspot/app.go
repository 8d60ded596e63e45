package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/geo-hotspot/internal/adapter/csvfile"
	"github.com/couchcryptid/geo-hotspot/internal/adapter/synthetic"
	"github.com/couchcryptid/geo-hotspot/internal/config"
	"github.com/couchcryptid/geo-hotspot/internal/domain"
	"github.com/couchcryptid/geo-hotspot/internal/observability"
	"github.com/couchcryptid/geo-hotspot/internal/store"
	"github.com/spf13/cobra"
)

// app bundles what every subcommand needs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	source  store.Source
	store   *store.Store
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var src store.Source
	if cfg.DataSource == config.SourceCSV {
		src = csvfile.NewSource(cfg.DataPath, logger)
	} else {
		src = synthetic.NewGenerator(cfg.SyntheticRows, cfg.SyntheticSeed)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		source:  src,
		store:   store.New(cfg.DatasetCache, logger, metrics),
	}, nil
}

// analysisFlags override the configured parameters for one invocation.
type analysisFlags struct {
	groups     []string
	regions    []string
	start, end string
	eps        float64
	minSamples int
	k          int
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringSliceVar(&f.groups, "groups", nil, "only include these groups (default all)")
	fs.StringSliceVar(&f.regions, "regions", nil, "only include these regions (default all)")
	fs.StringVar(&f.start, "start", "", "first day to include, YYYY-MM-DD")
	fs.StringVar(&f.end, "end", "", "last day to include, YYYY-MM-DD")
	fs.Float64Var(&f.eps, "eps", 0, "density neighbourhood radius in degrees")
	fs.IntVar(&f.minSamples, "min-samples", 0, "points needed to form a dense region")
	fs.IntVar(&f.k, "k", 0, "number of partition clusters")
}

// apply copies the flags the user actually set onto p.
func (f *analysisFlags) apply(cmd *cobra.Command, p domain.Params) (domain.Params, error) {
	fs := cmd.Flags()
	if fs.Changed("groups") {
		p.Groups = f.groups
	}
	if fs.Changed("regions") {
		p.Regions = f.regions
	}
	if fs.Changed("eps") {
		p.Eps = f.eps
	}
	if fs.Changed("min-samples") {
		p.MinSamples = f.minSamples
	}
	if fs.Changed("k") {
		p.K = f.k
	}

	var start, end time.Time
	var err error
	if f.start != "" {
		if start, err = time.Parse(time.DateOnly, f.start); err != nil {
			return p, fmt.Errorf("--start: %w", err)
		}
	}
	if f.end != "" {
		if end, err = time.Parse(time.DateOnly, f.end); err != nil {
			return p, fmt.Errorf("--end: %w", err)
		}
	}
	switch {
	case !start.IsZero() && !end.IsZero():
		p.Start, p.End = domain.DayRange(start, end)
	case !start.IsZero():
		p.Start, _ = domain.DayRange(start, start)
	case !end.IsZero():
		_, p.End = domain.DayRange(end, end)
	}
	return p, p.Validate()
}
