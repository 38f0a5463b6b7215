package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samzhang111/icgauge/testutil"
)

// configEnvKeys mirror the loader's environment surface. Tests clear them all
// so flag overrides translated into the environment cannot leak between runs.
var configEnvKeys = []string{
	"ICGAUGE_TRAIN_PATH",
	"ICGAUGE_ASSESS_PATH",
	"ICGAUGE_EXTRACTORS",
	"ICGAUGE_TRANSFORM",
	"ICGAUGE_TRAIN_FRACTION",
	"ICGAUGE_ITERATIONS",
	"ICGAUGE_FOLDS",
	"ICGAUGE_SCORING",
	"ICGAUGE_SEED",
	"ICGAUGE_VERBOSE",
	"ICGAUGE_RESULTS_STORE",
	"ICGAUGE_RESULTS_PATH",
	"ICGAUGE_RESULTS_BUCKET",
	"ICGAUGE_RESULTS_PREFIX",
	"ICGAUGE_RESULTS_ENDPOINT",
	"ICGAUGE_RESULTS_ACCESS_KEY",
	"ICGAUGE_RESULTS_SECRET_KEY",
	"ICGAUGE_RESULTS_SECURE",
	"ICGAUGE_RESULTS_COMPRESSION",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
}

// executeCommand runs the CLI with the given arguments and captures its
// output. Package-level command state is reset afterwards.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	clearEnv(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		configPath = ""
		verbose = false
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func writeCorpus(t *testing.T, dir string, n int) string {
	t.Helper()
	rng := testutil.NewRNG(42)
	path := filepath.Join(dir, "corpus.json")
	require.NoError(t, testutil.WriteCorpusJSON(path, rng.SyntheticCorpus(n)))
	return path
}

func TestRunCommand_MissingTrainPath(t *testing.T) {
	_, err := executeCommand(t, "run")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "train_path")
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	corpusPath := writeCorpus(t, dir, 35)
	resultsDir := filepath.Join(dir, "results")

	cfgPath := filepath.Join(dir, "config.yaml")
	cfgYAML := fmt.Sprintf(`train_path: %s
iterations: 2
folds: 3
seed: 42
results:
  store: local
  path: %s
`, corpusPath, resultsDir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o600))

	out, err := executeCommand(t, "run", "--config", cfgPath)

	require.NoError(t, err)
	assert.Contains(t, out, "Averaged correlation")
	assert.Contains(t, out, "Averaged Cronbach's alpha")
	assert.Contains(t, out, "Confusion matrix")

	entries, err := os.ReadDir(resultsDir)
	require.NoError(t, err)
	var details, reports int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".details.json"):
			details++
		case strings.HasSuffix(e.Name(), ".report.txt"):
			reports++
		}
	}
	assert.Equal(t, 1, details)
	assert.Equal(t, 1, reports)
}

func TestRunCommand_FlagOverrides(t *testing.T) {
	dir := t.TempDir()
	corpusPath := writeCorpus(t, dir, 35)

	cfgPath := filepath.Join(dir, "config.yaml")
	cfgYAML := fmt.Sprintf(`train_path: %s
iterations: 2
folds: 3
seed: 42
results:
  store: local
  path: %s
`, corpusPath, filepath.Join(dir, "unused"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o600))

	// The store flag redirects archives to the memory store, so the results
	// directory from the file must stay untouched.
	out, err := executeCommand(t, "run", "--config", cfgPath, "--iterations", "1", "--store", "memory")

	require.NoError(t, err)
	assert.Contains(t, out, "Averaged correlation")
	assert.NoDirExists(t, filepath.Join(dir, "unused"))
}
