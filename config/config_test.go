package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samzhang111/icgauge/crossval"
	"github.com/samzhang111/icgauge/feature"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ICGAUGE_TRAIN_PATH", "ICGAUGE_ASSESS_PATH", "ICGAUGE_EXTRACTORS",
		"ICGAUGE_TRANSFORM", "ICGAUGE_TRAIN_FRACTION", "ICGAUGE_ITERATIONS",
		"ICGAUGE_FOLDS", "ICGAUGE_SCORING", "ICGAUGE_SEED", "ICGAUGE_VERBOSE",
		"ICGAUGE_RESULTS_STORE", "ICGAUGE_RESULTS_PATH", "ICGAUGE_RESULTS_BUCKET",
		"ICGAUGE_RESULTS_PREFIX", "ICGAUGE_RESULTS_ENDPOINT",
		"ICGAUGE_RESULTS_ACCESS_KEY", "ICGAUGE_RESULTS_SECRET_KEY",
		"ICGAUGE_RESULTS_SECURE", "ICGAUGE_RESULTS_COMPRESSION",
	} {
		os.Unsetenv(key)
	}
}

func validConfig() Config {
	return Config{
		TrainPath:     "corpora/train.json",
		Extractors:    []string{"length"},
		Transform:     "identity",
		TrainFraction: 0.7,
		Iterations:    10,
		Folds:         5,
		Scoring:       "f1_macro",
		Results: ResultsConfig{
			Store:       StoreLocal,
			Path:        "results",
			Compression: "none",
		},
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func assertHasError(t *testing.T, errs []error, target error) {
	t.Helper()
	for _, err := range errs {
		if errors.Is(err, target) {
			return
		}
	}
	t.Errorf("expected %v among %v", target, errs)
}

const sampleYAML = `train_path: corpora/train.json
assess_path: corpora/assess.json
extractors:
  - length
  - word_length
transform: ternary
train_fraction: 0.8
iterations: 25
folds: 4
scoring: pearson
seed: 42
verbose: true
grid:
  fit_intercept: [true]
  c: [0.5, 1.0]
  penalty: [l2]
results:
  store: minio
  bucket: experiments
  prefix: icgauge/
  endpoint: localhost:9000
  access_key: minioadmin
  secret_key: miniosecretvalue
  compression: zstd
`

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ICGAUGE_TRAIN_PATH", "corpora/train.json")

	cfg, errs := Load("")
	require.Empty(t, errs)

	assert.Equal(t, "corpora/train.json", cfg.TrainPath)
	assert.Empty(t, cfg.AssessPath)
	assert.Equal(t, DefaultExtractors(), cfg.Extractors)
	assert.Equal(t, DefaultTransform, cfg.Transform)
	assert.Equal(t, DefaultTrainFraction, cfg.TrainFraction)
	assert.Equal(t, DefaultIterations, cfg.Iterations)
	assert.Equal(t, DefaultFolds, cfg.Folds)
	assert.Equal(t, DefaultScoring, cfg.Scoring)
	assert.Zero(t, cfg.Seed)
	assert.False(t, cfg.Verbose)
	assert.Nil(t, cfg.SearchGrid())
	assert.Equal(t, StoreLocal, cfg.Results.Store)
	assert.Equal(t, DefaultResultsPath, cfg.Results.Path)
	assert.Equal(t, DefaultCompression, cfg.Results.Compression)
}

func TestLoad_MissingTrainPath(t *testing.T) {
	clearEnv(t)

	_, errs := Load("")
	require.Len(t, errs, 1)
	assertHasError(t, errs, ErrMissingTrainPath)
}

func TestLoad_ValidEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ICGAUGE_TRAIN_PATH", "corpora/train.json")
	t.Setenv("ICGAUGE_EXTRACTORS", "length, word_length")
	t.Setenv("ICGAUGE_TRANSFORM", "ternary")
	t.Setenv("ICGAUGE_TRAIN_FRACTION", "0.8")
	t.Setenv("ICGAUGE_ITERATIONS", "25")
	t.Setenv("ICGAUGE_SCORING", "pearson")
	t.Setenv("ICGAUGE_SEED", "42")
	t.Setenv("ICGAUGE_VERBOSE", "true")
	t.Setenv("ICGAUGE_RESULTS_STORE", "memory")

	cfg, errs := Load("")
	require.Empty(t, errs)

	assert.Equal(t, []string{"length", "word_length"}, cfg.Extractors)
	assert.Equal(t, "ternary", cfg.Transform)
	assert.Equal(t, 0.8, cfg.TrainFraction)
	assert.Equal(t, 25, cfg.Iterations)
	assert.Equal(t, "pearson", cfg.Scoring)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, StoreMemory, cfg.Results.Store)
}

func TestLoad_InvalidEnvNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("ICGAUGE_TRAIN_PATH", "corpora/train.json")
	t.Setenv("ICGAUGE_ITERATIONS", "lots")

	_, errs := Load("")
	require.NotEmpty(t, errs)
	found := false
	for _, err := range errs {
		if strings.Contains(err.Error(), "ICGAUGE_ITERATIONS") {
			found = true
		}
	}
	assert.True(t, found, "expected a parse error naming ICGAUGE_ITERATIONS, got %v", errs)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, errs := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "failed to load config file")
}

func TestLoad_FromYAMLFile(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, sampleYAML)

	cfg, errs := Load(path)
	require.Empty(t, errs)

	assert.Equal(t, "corpora/train.json", cfg.TrainPath)
	assert.Equal(t, "corpora/assess.json", cfg.AssessPath)
	assert.Equal(t, []string{"length", "word_length"}, cfg.Extractors)
	assert.Equal(t, "ternary", cfg.Transform)
	assert.Equal(t, 0.8, cfg.TrainFraction)
	assert.Equal(t, 25, cfg.Iterations)
	assert.Equal(t, 4, cfg.Folds)
	assert.Equal(t, "pearson", cfg.Scoring)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, []bool{true}, cfg.Grid.FitIntercept)
	assert.Equal(t, []float64{0.5, 1.0}, cfg.Grid.C)
	assert.Equal(t, []string{"l2"}, cfg.Grid.Penalty)
	assert.Equal(t, StoreMinio, cfg.Results.Store)
	assert.Equal(t, "experiments", cfg.Results.Bucket)
	assert.Equal(t, "icgauge/", cfg.Results.Prefix)
	assert.Equal(t, "localhost:9000", cfg.Results.Endpoint)
	assert.Equal(t, "zstd", cfg.Results.Compression)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, sampleYAML)

	t.Setenv("ICGAUGE_ITERATIONS", "50")
	t.Setenv("ICGAUGE_RESULTS_STORE", "s3")
	t.Setenv("ICGAUGE_RESULTS_BUCKET", "other-bucket")

	cfg, errs := Load(path)
	require.Empty(t, errs)

	// Env should override file
	assert.Equal(t, 50, cfg.Iterations)
	assert.Equal(t, StoreS3, cfg.Results.Store)
	assert.Equal(t, "other-bucket", cfg.Results.Bucket)

	// File values should be used where env not set
	assert.Equal(t, "corpora/train.json", cfg.TrainPath)
	assert.Equal(t, 4, cfg.Folds)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("EmptyConfig", func(t *testing.T) {
		errs := (&Config{}).Validate()
		assert.Len(t, errs, 8)
		assertHasError(t, errs, ErrMissingTrainPath)
		assertHasError(t, errs, ErrInvalidTrainFraction)
		assertHasError(t, errs, ErrInvalidIterations)
		assertHasError(t, errs, ErrInvalidFolds)
		assertHasError(t, errs, ErrNoExtractors)
		assertHasError(t, errs, ErrUnknownTransform)
		assertHasError(t, errs, ErrUnknownScoring)
		assertHasError(t, errs, ErrUnknownStore)
	})

	t.Run("ValidConfig", func(t *testing.T) {
		cfg := validConfig()
		assert.Empty(t, cfg.Validate())
	})

	t.Run("UnknownExtractor", func(t *testing.T) {
		cfg := validConfig()
		cfg.Extractors = []string{"length", "sentiment"}
		errs := cfg.Validate()
		require.Len(t, errs, 1)
		assertHasError(t, errs, feature.ErrUnknownExtractor)
	})

	t.Run("FractionOutOfRange", func(t *testing.T) {
		cfg := validConfig()
		cfg.TrainFraction = 1.0
		errs := cfg.Validate()
		require.Len(t, errs, 1)
		assertHasError(t, errs, ErrInvalidTrainFraction)
	})

	t.Run("SingleFold", func(t *testing.T) {
		cfg := validConfig()
		cfg.Folds = 1
		errs := cfg.Validate()
		require.Len(t, errs, 1)
		assertHasError(t, errs, ErrInvalidFolds)
	})

	t.Run("UnknownCompression", func(t *testing.T) {
		cfg := validConfig()
		cfg.Results.Compression = "brotli"
		errs := cfg.Validate()
		require.Len(t, errs, 1)
		assertHasError(t, errs, ErrUnknownCompression)
	})

	t.Run("S3WithoutBucket", func(t *testing.T) {
		cfg := validConfig()
		cfg.Results = ResultsConfig{Store: StoreS3, Compression: "none"}
		errs := cfg.Validate()
		require.Len(t, errs, 1)
		assertHasError(t, errs, ErrMissingBucket)
	})

	t.Run("MinioWithoutEndpoint", func(t *testing.T) {
		cfg := validConfig()
		cfg.Results = ResultsConfig{Store: StoreMinio, Bucket: "experiments", Compression: "none"}
		errs := cfg.Validate()
		require.Len(t, errs, 1)
		assertHasError(t, errs, ErrMissingEndpoint)
	})

	t.Run("UnknownStore", func(t *testing.T) {
		cfg := validConfig()
		cfg.Results.Store = "gcs"
		errs := cfg.Validate()
		require.Len(t, errs, 1)
		assertHasError(t, errs, ErrUnknownStore)
	})
}

func TestConfig_SearchGrid(t *testing.T) {
	cfg := validConfig()
	assert.Nil(t, cfg.SearchGrid())

	cfg.Grid = GridConfig{
		FitIntercept: []bool{true, false},
		C:            []float64{0.5, 1.0},
		Penalty:      []string{"l2"},
	}
	grid := cfg.SearchGrid()
	require.Equal(t, crossval.Grid{
		"C":             []any{0.5, 1.0},
		"fit_intercept": []any{true, false},
		"penalty":       []any{"l2"},
	}, grid)

	params, err := grid.Enumerate()
	require.NoError(t, err)
	assert.Len(t, params, 4)
}

func TestDefaultExtractors(t *testing.T) {
	names := DefaultExtractors()
	require.NotEmpty(t, names)
	assert.Contains(t, names, "length")
	assert.Contains(t, names, "content_flags")

	extractors, err := feature.ByName(names...)
	require.NoError(t, err)
	assert.Len(t, extractors, len(names))
}

func TestConfig_Summary(t *testing.T) {
	cfg := validConfig()
	cfg.Results.AccessKey = "minioadmin"
	cfg.Results.SecretKey = "miniosecretvalue"

	summary := cfg.Summary()

	assert.Equal(t, "corpora/train.json", summary["train_path"])
	assert.Equal(t, "0.7", summary["train_fraction"])
	assert.Equal(t, "<default>", summary["grid"])
	assert.Equal(t, "mini****", summary["results_access_key"])
	assert.Equal(t, "mini****", summary["results_secret_key"])
	assert.NotContains(t, summary["results_secret_key"], "secret")

	cfg.Grid = GridConfig{C: []float64{0.5, 1.0}, Penalty: []string{"l2"}}
	assert.Equal(t, "C=2 penalty=1", cfg.Summary()["grid"])
}

func TestConfig_LogSummary(t *testing.T) {
	cfg := validConfig()
	cfg.Results.SecretKey = "miniosecretvalue"

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	cfg.LogSummary(logger)

	out := buf.String()
	assert.Contains(t, out, "configuration loaded")
	assert.Contains(t, out, "mini****")
	assert.NotContains(t, out, "miniosecretvalue")

	cfg.LogSummary(nil) // must not panic
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty string", input: "", want: "<not set>"},
		{name: "short secret", input: "short", want: "****"},
		{name: "exactly 8 chars", input: "12345678", want: "1234****"},
		{name: "long secret", input: "supersecretvalue123456", want: "supe****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maskSecret(tt.input))
		})
	}
}
