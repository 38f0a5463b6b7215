package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"

	"github.com/samzhang111/icgauge"
	"github.com/samzhang111/icgauge/config"
	"github.com/samzhang111/icgauge/corpus"
	"github.com/samzhang111/icgauge/crossval"
	"github.com/samzhang111/icgauge/feature"
	"github.com/samzhang111/icgauge/label"
	"github.com/samzhang111/icgauge/model"
	"github.com/samzhang111/icgauge/results"
	minioresults "github.com/samzhang111/icgauge/results/minio"
	s3results "github.com/samzhang111/icgauge/results/s3"
)

func runExperiment(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := setupLogging(cfg.Verbose)
	cfg.LogSummary(slog.Default())

	ctx := cmd.Context()

	exp, err := buildExperiment(cfg, logger)
	if err != nil {
		return err
	}

	agg, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), agg.Report())

	writer, err := buildWriter(ctx, cfg)
	if err != nil {
		return err
	}
	runID := writer.NewRunID()
	archive, err := writer.WriteDetails(ctx, runID, agg.Details)
	if err != nil {
		return err
	}
	if _, err := writer.WriteReport(ctx, runID, agg); err != nil {
		return err
	}

	slog.Info("run archived", "run_id", runID, "archive", archive)
	return nil
}

// loadConfig folds changed command flags into the environment the config
// loader reads, so flags end up above the YAML file in precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	applyFlagOverrides(cmd)

	cfg, errs := config.Load(configPath)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func applyFlagOverrides(cmd *cobra.Command) {
	setString := func(flag, key string) {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetString(flag)
			os.Setenv(key, v)
		}
	}

	setString("train", "ICGAUGE_TRAIN_PATH")
	setString("assess", "ICGAUGE_ASSESS_PATH")
	setString("store", "ICGAUGE_RESULTS_STORE")
	setString("output", "ICGAUGE_RESULTS_PATH")

	if cmd.Flags().Changed("iterations") {
		n, _ := cmd.Flags().GetInt("iterations")
		os.Setenv("ICGAUGE_ITERATIONS", strconv.Itoa(n))
	}
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetInt64("seed")
		os.Setenv("ICGAUGE_SEED", strconv.FormatInt(seed, 10))
	}
	if verbose {
		os.Setenv("ICGAUGE_VERBOSE", "true")
	}
}

// setupLogging installs the process-wide slog handler and returns the
// operation logger handed to the experiment.
func setupLogging(verbose bool) *icgauge.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return icgauge.NewTextLogger(level)
}

func buildExperiment(cfg *config.Config, logger *icgauge.Logger) (*icgauge.Experiment, error) {
	trainReader, err := corpus.NewFileReader(splitPaths(cfg.TrainPath))
	if err != nil {
		return nil, err
	}

	extractors, err := feature.ByName(cfg.Extractors...)
	if err != nil {
		return nil, err
	}
	transform, ok := label.ByName(cfg.Transform)
	if !ok {
		return nil, fmt.Errorf("unknown label transform %q", cfg.Transform)
	}
	scoring, ok := crossval.ScoringByName(cfg.Scoring)
	if !ok {
		return nil, fmt.Errorf("unknown scoring %q", cfg.Scoring)
	}
	trainFunc := icgauge.CrossValidatedTrainFunc(estimatorFor(cfg.Transform), cfg.Folds, searchGrid(cfg), scoring, logger)

	opts := []icgauge.Option{
		icgauge.WithExtractors(extractors...),
		icgauge.WithLabelTransform(transform),
		icgauge.WithTrainFraction(cfg.TrainFraction),
		icgauge.WithIterations(cfg.Iterations),
		icgauge.WithVerbose(cfg.Verbose),
		icgauge.WithLogger(logger),
		icgauge.WithTrainFunc(trainFunc),
	}
	if cfg.Seed != 0 {
		opts = append(opts, icgauge.WithSeed(cfg.Seed))
	}
	if cfg.AssessPath != "" {
		assessReader, err := corpus.NewFileReader(splitPaths(cfg.AssessPath))
		if err != nil {
			return nil, err
		}
		opts = append(opts, icgauge.WithAssessReader(assessReader))
	}

	return icgauge.New(trainReader, opts...)
}

// estimatorFor pairs the label transform with its estimator: ternary codes go
// through the multinomial classifier, ordinal labels keep their order through
// the all-threshold model.
func estimatorFor(transform string) model.Estimator {
	if transform == "ternary" {
		return model.NewLogisticRegression()
	}
	return model.NewOrdinalLogistic()
}

// searchGrid resolves the configured grid. Without an explicit grid the
// ordinal estimator searches the C axis only, since it has no fit_intercept
// or penalty parameters.
func searchGrid(cfg *config.Config) crossval.Grid {
	if grid := cfg.SearchGrid(); grid != nil {
		return grid
	}
	if cfg.Transform == "ternary" {
		return icgauge.DefaultGrid()
	}
	return crossval.Grid{"C": icgauge.DefaultGrid()["C"]}
}

func buildWriter(ctx context.Context, cfg *config.Config) (*results.Writer, error) {
	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	compression, ok := results.CompressionByName(cfg.Results.Compression)
	if !ok {
		return nil, fmt.Errorf("unknown compression %q", cfg.Results.Compression)
	}
	return results.NewWriter(store, func(o *results.WriterOptions) {
		o.Compression = compression
	})
}

func buildStore(ctx context.Context, cfg *config.Config) (results.Store, error) {
	switch cfg.Results.Store {
	case config.StoreLocal:
		return results.NewLocalStore(cfg.Results.Path)
	case config.StoreMemory:
		return results.NewMemoryStore(), nil
	case config.StoreS3:
		return s3results.NewFromConfig(ctx, cfg.Results.Bucket, func(o *s3results.Options) {
			o.Prefix = cfg.Results.Prefix
		})
	case config.StoreMinio:
		client, err := minio.New(cfg.Results.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Results.AccessKey, cfg.Results.SecretKey, ""),
			Secure: cfg.Results.Secure,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return minioresults.NewStore(client, cfg.Results.Bucket, cfg.Results.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown results store %q", cfg.Results.Store)
	}
}

func splitPaths(s string) []string {
	parts := strings.Split(s, ",")
	paths := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
