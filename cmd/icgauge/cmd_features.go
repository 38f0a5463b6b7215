package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samzhang111/icgauge/corpus"
	"github.com/samzhang111/icgauge/dataset"
	"github.com/samzhang111/icgauge/feature"
	"github.com/samzhang111/icgauge/label"
)

func runFeatures(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg.Verbose)

	extractors, err := feature.ByName(cfg.Extractors...)
	if err != nil {
		return err
	}
	transform, ok := label.ByName(cfg.Transform)
	if !ok {
		return fmt.Errorf("unknown label transform %q", cfg.Transform)
	}
	reader, err := corpus.NewFileReader(splitPaths(cfg.TrainPath))
	if err != nil {
		return err
	}

	ds, err := dataset.Build(cmd.Context(), reader, extractors, transform)
	if err != nil {
		return err
	}

	vec := ds.Vectorizer
	minDF, _ := cmd.Flags().GetUint64("min-df")
	if minDF > 0 {
		vec, err = vec.Restrict(ds.Presence, minDF)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d examples, %d features\n", ds.X.Rows(), vec.Len())
	for _, name := range vec.FeatureNames() {
		// Document frequencies come from the full presence index, so the
		// restricted schema reports the same counts as the full one.
		j, _ := ds.Vectorizer.Column(name)
		fmt.Fprintf(out, "%-28s %d\n", name, ds.Presence.DocFreq(j))
	}
	return nil
}
