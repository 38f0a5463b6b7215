// Package testutil provides testing utilities for icgauge.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic thread-safe RNG and generators for synthetic
// scored corpora whose textual complexity tracks the assigned score.
//
// # Deterministic RNG
//
//	rng := testutil.NewRNG(seed)
//	i := rng.Intn(10)
//	perm := rng.Perm(100)
//
// # Synthetic Corpora
//
//	rng := testutil.NewRNG(42)
//	examples := rng.SyntheticCorpus(70)
//	err := testutil.WriteCorpusJSON(path, examples)
package testutil
