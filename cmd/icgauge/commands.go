package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped by the release build via -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "icgauge",
		Short: "Gauge the integrative complexity of scored text corpora",
		Long: `Icgauge trains and evaluates an integrative-complexity gauge:
paragraphs scored by human judges on the 1..7 scale are featurized, a
classifier is selected by cross-validated grid search, and correlation and
reliability statistics are aggregated across repeated random splits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the iterated evaluation experiment",
		RunE:  runExperiment, // Defined in cmd_run.go
	}

	featuresCmd = &cobra.Command{
		Use:   "features",
		Short: "Build the training dataset once and print its feature schema",
		RunE:  runFeatures, // Defined in cmd_features.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the icgauge version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "icgauge %s\n", version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("train", "", "Training corpus files, comma separated (overrides config)")
	runCmd.Flags().String("assess", "", "Assessment corpus files, comma separated (overrides config)")
	runCmd.Flags().Int("iterations", 0, "Number of trials (overrides config)")
	runCmd.Flags().Int64("seed", 0, "Split RNG seed for reproducible runs (overrides config)")
	runCmd.Flags().String("store", "", "Results store: local, memory, s3, or minio (overrides config)")
	runCmd.Flags().String("output", "", "Local results directory (overrides config)")

	rootCmd.AddCommand(featuresCmd)
	featuresCmd.Flags().String("train", "", "Training corpus files, comma separated (overrides config)")
	featuresCmd.Flags().Uint64("min-df", 0, "Only list features stored in at least this many documents")

	rootCmd.AddCommand(versionCmd)
}
