package corpus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOrdinal(t *testing.T) {
	tests := []struct {
		raw  float64
		want int
	}{
		{raw: 1.0, want: 1},
		{raw: 2.5, want: 3},
		{raw: 3.49, want: 3},
		{raw: 3.5, want: 4},
		{raw: 6.51, want: 7},
		{raw: 7.0, want: 7},
		{raw: 0.4, want: 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeOrdinal(tt.raw), "raw=%v", tt.raw)
	}
}

func TestScoreConstructors(t *testing.T) {
	assert.Equal(t, Score{Kind: ScoreJudged, Value: 5}, Judged(5))
	assert.Equal(t, Score{Kind: ScoreUnscoreable}, Unscoreable())
	assert.Equal(t, Score{Kind: ScoreUnjudged}, Unjudged())

	assert.Equal(t, "5", Judged(5).String())
	assert.Equal(t, "unscoreable", Unscoreable().String())
	assert.Equal(t, "unjudged", Unjudged().String())
}

func TestNormalizeRawScore(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    Score
		wantErr bool
	}{
		{name: "integer", raw: float64(4), want: Judged(4)},
		{name: "half rounds up", raw: 2.5, want: Judged(3)},
		{name: "below half rounds down", raw: 3.2, want: Judged(3)},
		{name: "na marker", raw: "NA", want: Unscoreable()},
		{name: "absent", raw: nil, want: Unjudged()},
		{name: "out of range high", raw: float64(9), wantErr: true},
		{name: "out of range low", raw: 0.2, wantErr: true},
		{name: "unknown string", raw: "n/a", wantErr: true},
		{name: "wrong type", raw: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeRawScore(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidScore)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSliceReader(t *testing.T) {
	examples := []Example{
		{Text: "one", Label: Judged(1)},
		{Text: "two", Label: Judged(2)},
		{Text: "three", Label: Unscoreable()},
	}
	r := NewSliceReader(examples)
	require.Equal(t, 3, r.Len())

	ctx := context.Background()

	var texts []string
	for ex, err := range r.Examples(ctx) {
		require.NoError(t, err)
		texts = append(texts, ex.Text)
	}
	assert.Equal(t, []string{"one", "two", "three"}, texts)

	// A second pass yields the same sequence.
	var again []string
	for ex, err := range r.Examples(ctx) {
		require.NoError(t, err)
		again = append(again, ex.Text)
	}
	assert.Equal(t, texts, again)
}

func TestSliceReaderEarlyStop(t *testing.T) {
	r := NewSliceReader([]Example{
		{Text: "one", Label: Judged(1)},
		{Text: "two", Label: Judged(2)},
	})

	count := 0
	for _, err := range r.Examples(context.Background()) {
		require.NoError(t, err)
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestSliceReaderCancellation(t *testing.T) {
	r := NewSliceReader([]Example{{Text: "one", Label: Judged(1)}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got error
	for _, err := range r.Examples(ctx) {
		got = err
	}
	assert.ErrorIs(t, got, context.Canceled)
}
