package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "icgauge dev\n", out)
}

func TestFeaturesCommand(t *testing.T) {
	dir := t.TempDir()
	corpusPath := writeCorpus(t, dir, 14)

	out, err := executeCommand(t, "features", "--train", corpusPath)

	require.NoError(t, err)
	assert.Contains(t, out, "14 examples")
	assert.Contains(t, out, "length")
	assert.Contains(t, out, "transition:")
}

func TestFeaturesCommand_MinDF(t *testing.T) {
	dir := t.TempDir()
	corpusPath := writeCorpus(t, dir, 14)

	// Transitional markers never appear in the lowest-score paragraphs, so a
	// document-frequency floor equal to the corpus size filters them out while
	// universal features survive.
	out, err := executeCommand(t, "features", "--train", corpusPath, "--min-df", "14")

	require.NoError(t, err)
	assert.Contains(t, out, "length")
	assert.Contains(t, out, "word_length_mean")
	assert.NotContains(t, out, "transition:")
}
