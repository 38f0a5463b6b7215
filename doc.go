// Package icgauge evaluates automated gauges of integrative complexity in text.
//
// Icgauge turns a scored corpus into a feature dataset, trains a classifier
// with cross-validated hyperparameter search, and measures how well its
// predictions track human judgments across repeated random trials.
//
// # Quick Start
//
//	ctx := context.Background()
//	reader, _ := corpus.NewFileReader([]string{"data/cong_data.json"})
//	exp, _ := icgauge.New(reader,
//	    icgauge.WithIterations(50),
//	    icgauge.WithTrainFraction(0.7),
//	)
//	res, _ := exp.Run(ctx)
//	fmt.Println(res.Summary())
//
// # Trials
//
// Each trial draws a fresh random train/assessment split, fits the model on
// the training side, and scores predictions on the held-out side. The
// aggregate keeps one correlation and one Cronbach's alpha per trial, so the
// spread across trials estimates the stability of the gauge:
//
//	res, _ := exp.Run(ctx)
//	res.Correlations  // one Pearson's r per trial, NaN when degenerate
//	res.Alphas        // one alpha per trial
//	res.Details       // per-example truth and prediction records
//
// Pass WithSeed for reproducible splits; the default is unseeded.
//
// # Fixed Assessment Corpus
//
// With WithAssessReader the split is skipped: every trial trains on the full
// training corpus and assesses against the fixed held-out corpus, reusing the
// training feature schema:
//
//	exp, _ := icgauge.New(trainReader,
//	    icgauge.WithAssessReader(assessReader),
//	    icgauge.WithIterations(10),
//	)
//
// # Models and Grids
//
// The default trainer grid-searches logistic regression with 5-fold
// cross-validation. Swap in another estimator or grid via WithTrainFunc:
//
//	tf := icgauge.CrossValidatedTrainFunc(
//	    model.NewOrdinalLogistic(),
//	    5,
//	    crossval.Grid{"C": []any{0.5, 1.0, 2.0}},
//	    crossval.PearsonScore(),
//	    nil,
//	)
//	exp, _ := icgauge.New(reader, icgauge.WithTrainFunc(tf))
//
// # Key Features
//
//   - Deterministic feature schema (lexicographic column order)
//   - Sparse CSR feature matrices with Roaring presence indexes
//   - Grid-searched logistic and ordinal models
//   - Iterated evaluation with correlation, alpha, and confusion statistics
//   - Label transforms for raw 1..7 and collapsed ternary scales
//   - Pluggable result stores (local disk, S3, MinIO)
package icgauge
