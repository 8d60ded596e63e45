package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/couchcryptid/geo-hotspot/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Data source kinds accepted in DATA_SOURCE.
const (
	SourceSynthetic = "synthetic"
	SourceCSV       = "csv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataSource      string
	DataPath        string
	SyntheticRows   int
	SyntheticSeed   uint64
	DatasetCache    int
	ExportDelim     rune
	Params          domain.Params
	KafkaBrokers    []string
	KafkaTopic      string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// PublishEnabled reports whether hotspot results should be published to Kafka.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	p := domain.DefaultParams()
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg := &Config{
		DataSource:      sharedcfg.EnvOrDefault("DATA_SOURCE", SourceSynthetic),
		DataPath:        sharedcfg.EnvOrDefault("DATA_PATH", ""),
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_HOTSPOT_TOPIC", "hotspots"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}
	if raw := sharedcfg.EnvOrDefault("KAFKA_BROKERS", ""); raw != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(raw)
	}

	var err2 error
	cfg.SyntheticRows, err2 = positiveInt("SYNTHETIC_ROWS", 15000)
	collect(err2)
	cfg.SyntheticSeed, err2 = parseUint("SYNTHETIC_SEED", 42)
	collect(err2)
	cfg.DatasetCache, err2 = positiveInt("DATASET_CACHE_SIZE", 1)
	collect(err2)
	cfg.ExportDelim, err2 = parseDelimiter("EXPORT_DELIMITER", ',')
	collect(err2)

	p.Eps, err2 = parseFloat("DBSCAN_EPS", p.Eps)
	collect(err2)
	p.MinSamples, err2 = parseInt("DBSCAN_MIN_SAMPLES", p.MinSamples)
	collect(err2)
	p.K, err2 = parseInt("KMEANS_K", p.K)
	collect(err2)
	p.Seed, err2 = parseUint("KMEANS_SEED", p.Seed)
	collect(err2)
	p.MaxIterations, err2 = parseInt("KMEANS_MAX_ITER", p.MaxIterations)
	collect(err2)
	p.ReplayWindowDays, err2 = parseInt("REPLAY_WINDOW_DAYS", p.ReplayWindowDays)
	collect(err2)
	p.ReplaySteps, err2 = parseInt("REPLAY_STEPS", p.ReplaySteps)
	collect(err2)
	cfg.Params = p

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	switch cfg.DataSource {
	case SourceSynthetic:
	case SourceCSV:
		if cfg.DataPath == "" {
			return nil, errors.New("DATA_PATH is required when DATA_SOURCE is csv")
		}
	default:
		return nil, fmt.Errorf("invalid DATA_SOURCE %q: must be %s or %s", cfg.DataSource, SourceSynthetic, SourceCSV)
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, fmt.Errorf("analysis parameters: %w", err)
	}
	if cfg.PublishEnabled() && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_HOTSPOT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parseInt(key string, def int) (int, error) {
	s := sharedcfg.EnvOrDefault(key, "")
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func positiveInt(key string, def int) (int, error) {
	n, err := parseInt(key, def)
	if err != nil {
		return def, err
	}
	if n <= 0 {
		return def, fmt.Errorf("invalid %s %d: must be positive", key, n)
	}
	return n, nil
}

func parseUint(key string, def uint64) (uint64, error) {
	s := sharedcfg.EnvOrDefault(key, "")
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return def, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := sharedcfg.EnvOrDefault(key, "")
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return f, nil
}

func parseDelimiter(key string, def rune) (rune, error) {
	s := sharedcfg.EnvOrDefault(key, "")
	if s == "" {
		return def, nil
	}
	if s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return def, fmt.Errorf("invalid %s %q: must be a single character", key, s)
	}
	return r, nil
}
