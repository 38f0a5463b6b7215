// Package config provides configuration loading and validation for
// experiment runs. It uses koanf to merge an optional YAML file with
// ICGAUGE_-prefixed environment variables; environment values take
// precedence over file values.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/samzhang111/icgauge/crossval"
	"github.com/samzhang111/icgauge/feature"
	"github.com/samzhang111/icgauge/label"
	"github.com/samzhang111/icgauge/results"
)

// Results store names accepted in results.store.
const (
	StoreLocal  = "local"
	StoreMemory = "memory"
	StoreS3     = "s3"
	StoreMinio  = "minio"
)

// Config holds all configuration values for an experiment run.
type Config struct {
	// Corpora
	TrainPath  string `koanf:"train_path"`
	AssessPath string `koanf:"assess_path"`

	// Featurization and labeling
	Extractors []string `koanf:"extractors"`
	Transform  string   `koanf:"transform"`

	// Experiment shape
	TrainFraction float64 `koanf:"train_fraction"`
	Iterations    int     `koanf:"iterations"`
	Folds         int     `koanf:"folds"`
	Scoring       string  `koanf:"scoring"`
	Seed          int64   `koanf:"seed"` // 0 draws a fresh split every trial
	Verbose       bool    `koanf:"verbose"`

	// Hyperparameter search
	Grid GridConfig `koanf:"grid"`

	// Results persistence
	Results ResultsConfig `koanf:"results"`
}

// GridConfig holds the hyperparameter axes to search. An empty axis is left
// out of the grid; an entirely empty GridConfig means the built-in default
// grid.
type GridConfig struct {
	FitIntercept []bool    `koanf:"fit_intercept"`
	C            []float64 `koanf:"c"`
	Penalty      []string  `koanf:"penalty"`
}

// ResultsConfig selects and parameterizes the archive store.
type ResultsConfig struct {
	Store       string `koanf:"store"`
	Path        string `koanf:"path"`
	Bucket      string `koanf:"bucket"`
	Prefix      string `koanf:"prefix"`
	Endpoint    string `koanf:"endpoint"`
	AccessKey   string `koanf:"access_key"`
	SecretKey   string `koanf:"secret_key"`
	Secure      bool   `koanf:"secure"`
	Compression string `koanf:"compression"`
}

// Configuration validation errors.
var (
	ErrMissingTrainPath     = errors.New("train_path is required")
	ErrInvalidTrainFraction = errors.New("train_fraction must be between 0 and 1 exclusive")
	ErrInvalidIterations    = errors.New("iterations must be positive")
	ErrInvalidFolds         = errors.New("folds must be at least 2")
	ErrNoExtractors         = errors.New("at least one extractor is required")
	ErrUnknownTransform     = errors.New("unknown label transform")
	ErrUnknownScoring       = errors.New("unknown scoring")
	ErrUnknownStore         = errors.New("unknown results store")
	ErrUnknownCompression   = errors.New("unknown compression")
	ErrMissingResultsPath   = errors.New("results.path is required for the local store")
	ErrMissingBucket        = errors.New("results.bucket is required")
	ErrMissingEndpoint      = errors.New("results.endpoint is required for the minio store")
)

// Default values for optional configuration.
const (
	DefaultTrainFraction = 0.7
	DefaultIterations    = 10
	DefaultFolds         = 5
	DefaultTransform     = "identity"
	DefaultScoring       = "f1_macro"
	DefaultStore         = StoreLocal
	DefaultResultsPath   = "results"
	DefaultCompression   = "none"
)

// DefaultExtractors returns the names of every catalogue extractor in
// catalogue order.
func DefaultExtractors() []string {
	catalogue := feature.Catalogue()
	names := make([]string, len(catalogue))
	for i, e := range catalogue {
		names[i] = e.Name
	}
	return names
}

// Load reads configuration from an optional YAML file and ICGAUGE_-prefixed
// environment variables. Environment variables take precedence over file
// values. Returns the loaded config and a slice of validation errors (empty
// if valid). If a config file path is provided and the file cannot be
// loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	trainFraction, err := getEnvFloatOrDefault("ICGAUGE_TRAIN_FRACTION", k.Float64("train_fraction"), DefaultTrainFraction)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}
	iterations, err := getEnvIntOrDefault("ICGAUGE_ITERATIONS", k.Int("iterations"), DefaultIterations)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}
	folds, err := getEnvIntOrDefault("ICGAUGE_FOLDS", k.Int("folds"), DefaultFolds)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}
	seed, err := getEnvInt64OrDefault("ICGAUGE_SEED", k.Int64("seed"), 0)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	// Build config struct, with env vars taking precedence over file values
	cfg := &Config{
		TrainPath:     getEnvOrKoanf("ICGAUGE_TRAIN_PATH", k, "train_path"),
		AssessPath:    getEnvOrKoanf("ICGAUGE_ASSESS_PATH", k, "assess_path"),
		Extractors:    getEnvStringsOrDefault("ICGAUGE_EXTRACTORS", k.Strings("extractors"), DefaultExtractors()),
		Transform:     getEnvOrDefault("ICGAUGE_TRANSFORM", k.String("transform"), DefaultTransform),
		TrainFraction: trainFraction,
		Iterations:    iterations,
		Folds:         folds,
		Scoring:       getEnvOrDefault("ICGAUGE_SCORING", k.String("scoring"), DefaultScoring),
		Seed:          seed,
		Verbose:       getEnvBoolOrDefault("ICGAUGE_VERBOSE", k, "verbose", false),
		Grid: GridConfig{
			FitIntercept: k.Bools("grid.fit_intercept"),
			C:            k.Float64s("grid.c"),
			Penalty:      k.Strings("grid.penalty"),
		},
		Results: ResultsConfig{
			Store:       getEnvOrDefault("ICGAUGE_RESULTS_STORE", k.String("results.store"), DefaultStore),
			Path:        getEnvOrDefault("ICGAUGE_RESULTS_PATH", k.String("results.path"), DefaultResultsPath),
			Bucket:      getEnvOrKoanf("ICGAUGE_RESULTS_BUCKET", k, "results.bucket"),
			Prefix:      getEnvOrKoanf("ICGAUGE_RESULTS_PREFIX", k, "results.prefix"),
			Endpoint:    getEnvOrKoanf("ICGAUGE_RESULTS_ENDPOINT", k, "results.endpoint"),
			AccessKey:   getEnvOrKoanf("ICGAUGE_RESULTS_ACCESS_KEY", k, "results.access_key"),
			SecretKey:   getEnvOrKoanf("ICGAUGE_RESULTS_SECRET_KEY", k, "results.secret_key"),
			Secure:      getEnvBoolOrDefault("ICGAUGE_RESULTS_SECURE", k, "results.secure", false),
			Compression: getEnvOrDefault("ICGAUGE_RESULTS_COMPRESSION", k.String("results.compression"), DefaultCompression),
		},
	}

	// Validate and collect errors
	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// Validate checks the configuration against the registries of extractors,
// transforms, scorings, stores, and compressions.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.TrainPath == "" {
		errs = append(errs, ErrMissingTrainPath)
	}
	if c.TrainFraction <= 0 || c.TrainFraction >= 1 {
		errs = append(errs, fmt.Errorf("%w: got %g", ErrInvalidTrainFraction, c.TrainFraction))
	}
	if c.Iterations < 1 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidIterations, c.Iterations))
	}
	if c.Folds < 2 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidFolds, c.Folds))
	}
	if len(c.Extractors) == 0 {
		errs = append(errs, ErrNoExtractors)
	} else if _, err := feature.ByName(c.Extractors...); err != nil {
		errs = append(errs, err)
	}
	if _, ok := label.ByName(c.Transform); !ok {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownTransform, c.Transform))
	}
	if _, ok := crossval.ScoringByName(c.Scoring); !ok {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownScoring, c.Scoring))
	}
	if _, ok := results.CompressionByName(c.Results.Compression); !ok {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownCompression, c.Results.Compression))
	}

	switch c.Results.Store {
	case StoreLocal:
		if c.Results.Path == "" {
			errs = append(errs, ErrMissingResultsPath)
		}
	case StoreMemory:
	case StoreS3:
		if c.Results.Bucket == "" {
			errs = append(errs, fmt.Errorf("%w for the s3 store", ErrMissingBucket))
		}
	case StoreMinio:
		if c.Results.Bucket == "" {
			errs = append(errs, fmt.Errorf("%w for the minio store", ErrMissingBucket))
		}
		if c.Results.Endpoint == "" {
			errs = append(errs, ErrMissingEndpoint)
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownStore, c.Results.Store))
	}

	return errs
}

// SearchGrid assembles the configured hyperparameter grid, or nil when no
// axis is set so callers fall back to the built-in default.
func (c *Config) SearchGrid() crossval.Grid {
	grid := make(crossval.Grid)
	if len(c.Grid.C) > 0 {
		values := make([]any, len(c.Grid.C))
		for i, v := range c.Grid.C {
			values[i] = v
		}
		grid["C"] = values
	}
	if len(c.Grid.FitIntercept) > 0 {
		values := make([]any, len(c.Grid.FitIntercept))
		for i, v := range c.Grid.FitIntercept {
			values[i] = v
		}
		grid["fit_intercept"] = values
	}
	if len(c.Grid.Penalty) > 0 {
		values := make([]any, len(c.Grid.Penalty))
		for i, v := range c.Grid.Penalty {
			values[i] = v
		}
		grid["penalty"] = values
	}
	if len(grid) == 0 {
		return nil
	}
	return grid
}

// Summary returns the configuration as loggable key/value pairs.
// Store credentials are masked to prevent accidental exposure.
func (c *Config) Summary() map[string]string {
	return map[string]string{
		"train_path":          c.TrainPath,
		"assess_path":         c.AssessPath,
		"extractors":          strings.Join(c.Extractors, ","),
		"transform":           c.Transform,
		"train_fraction":      strconv.FormatFloat(c.TrainFraction, 'g', -1, 64),
		"iterations":          strconv.Itoa(c.Iterations),
		"folds":               strconv.Itoa(c.Folds),
		"scoring":             c.Scoring,
		"seed":                strconv.FormatInt(c.Seed, 10),
		"verbose":             strconv.FormatBool(c.Verbose),
		"grid":                c.Grid.summary(),
		"results_store":       c.Results.Store,
		"results_path":        c.Results.Path,
		"results_bucket":      c.Results.Bucket,
		"results_prefix":      c.Results.Prefix,
		"results_endpoint":    c.Results.Endpoint,
		"results_access_key":  maskSecret(c.Results.AccessKey),
		"results_secret_key":  maskSecret(c.Results.SecretKey),
		"results_secure":      strconv.FormatBool(c.Results.Secure),
		"results_compression": c.Results.Compression,
	}
}

// LogSummary emits the masked configuration through logger at info level,
// one attribute per key in sorted order.
func (c *Config) LogSummary(logger *slog.Logger) {
	if logger == nil {
		return
	}
	summary := c.Summary()
	keys := make([]string, 0, len(summary))
	for key := range summary {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, len(keys))
	for _, key := range keys {
		attrs = append(attrs, slog.String(key, summary[key]))
	}
	logger.Info("configuration loaded", attrs...)
}

func (g GridConfig) summary() string {
	if len(g.C) == 0 && len(g.FitIntercept) == 0 && len(g.Penalty) == 0 {
		return "<default>"
	}
	var parts []string
	if len(g.C) > 0 {
		parts = append(parts, fmt.Sprintf("C=%d", len(g.C)))
	}
	if len(g.FitIntercept) > 0 {
		parts = append(parts, fmt.Sprintf("fit_intercept=%d", len(g.FitIntercept)))
	}
	if len(g.Penalty) > 0 {
		parts = append(parts, fmt.Sprintf("penalty=%d", len(g.Penalty)))
	}
	return strings.Join(parts, " ")
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvStringsOrDefault returns the environment variable split on commas if
// set, otherwise the koanf value, or default.
func getEnvStringsOrDefault(envKey string, koanfVal, defaultVal []string) []string {
	if val := os.Getenv(envKey); val != "" {
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	if len(koanfVal) > 0 {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
// Note: a zero value in a YAML file falls back to the default.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, err)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvInt64OrDefault returns the environment variable as int64 if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
func getEnvInt64OrDefault(envKey string, koanfVal int64, defaultVal int64) (int64, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, err)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault returns the environment variable as float64 if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as a float.
func getEnvFloatOrDefault(envKey string, koanfVal float64, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid float: %w", envKey, err)
		}
		return f, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvBoolOrDefault returns the environment variable as bool if set, otherwise the koanf value, or default.
// Unrecognized environment values are ignored.
func getEnvBoolOrDefault(envKey string, k *koanf.Koanf, koanfKey string, defaultVal bool) bool {
	val := defaultVal
	if k.Exists(koanfKey) {
		val = k.Bool(koanfKey)
	}
	if s := os.Getenv(envKey); s != "" {
		switch strings.ToLower(s) {
		case "true", "1", "yes", "on":
			val = true
		case "false", "0", "no", "off":
			val = false
		}
	}
	return val
}

// maskSecret masks a secret value, showing only the first 4 characters followed by ****
// If the secret is shorter than 8 characters, it's fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}
