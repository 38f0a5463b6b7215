package icgauge

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samzhang111/icgauge/corpus"
	"github.com/samzhang111/icgauge/crossval"
	"github.com/samzhang111/icgauge/dataset"
	"github.com/samzhang111/icgauge/feature"
	"github.com/samzhang111/icgauge/label"
	"github.com/samzhang111/icgauge/model"
	"github.com/samzhang111/icgauge/results"
)

// ratedCorpus is the ten-paragraph corpus used across the experiment tests.
// Text lengths match the judged scores so the length feature carries signal.
func ratedCorpus() *corpus.SliceReader {
	texts := []string{"a", "b", "cc", "ddd", "eee", "ffff", "ggggg", "hhhhhh", "iiiiiii", "jjjjjjj"}
	scores := []int{1, 1, 2, 3, 3, 4, 5, 6, 7, 7}

	examples := make([]corpus.Example, len(scores))
	for i := range scores {
		examples[i] = corpus.Example{
			Text:  texts[i],
			Label: corpus.Judged(scores[i]),
		}
	}
	return corpus.NewSliceReader(examples)
}

// constModel predicts the same class for every row.
type constModel struct {
	value float64
}

func (m constModel) Predict(x *dataset.Matrix) ([]float64, error) {
	out := make([]float64, x.Rows())
	for i := range out {
		out[i] = m.value
	}
	return out, nil
}

// constTrainFunc fits nothing and predicts the first training label.
func constTrainFunc() TrainFunc {
	return func(_ context.Context, _ *dataset.Matrix, y []float64) (model.Model, error) {
		return constModel{value: y[0]}, nil
	}
}

type predictFunc func(x *dataset.Matrix) ([]float64, error)

func (f predictFunc) Predict(x *dataset.Matrix) ([]float64, error) { return f(x) }

func TestNew(t *testing.T) {
	reader := corpus.NewSliceReader([]corpus.Example{{Text: "ok", Label: corpus.Judged(3)}})

	t.Run("NilReader", func(t *testing.T) {
		_, err := New(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nil train reader")
	})

	t.Run("InvalidTrainFraction", func(t *testing.T) {
		for _, f := range []float64{0, 1, -0.3, 1.5} {
			_, err := New(reader, WithTrainFraction(f))
			assert.ErrorIs(t, err, ErrInvalidTrainFraction, "fraction %g", f)
		}
	})

	t.Run("InvalidIterations", func(t *testing.T) {
		for _, n := range []int{0, -2} {
			_, err := New(reader, WithIterations(n))
			assert.ErrorIs(t, err, ErrInvalidIterations, "iterations %d", n)
		}
	})

	t.Run("NoExtractors", func(t *testing.T) {
		_, err := New(reader, WithExtractors())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no extractors")
	})

	t.Run("Defaults", func(t *testing.T) {
		exp, err := New(reader)
		require.NoError(t, err)
		assert.Equal(t, 0.7, exp.trainFraction)
		assert.Equal(t, 10, exp.iterations)
		assert.NotNil(t, exp.trainFunc)
		assert.NotNil(t, exp.scoreFunc)
		assert.NotNil(t, exp.rng)
	})
}

func TestExperimentRun(t *testing.T) {
	t.Run("EndToEnd", func(t *testing.T) {
		exp, err := New(ratedCorpus(),
			WithExtractors(feature.Length()),
			WithTrainFraction(0.7),
			WithIterations(3),
			WithSeed(7),
		)
		require.NoError(t, err)

		res, err := exp.Run(context.Background())
		require.NoError(t, err)

		assert.Len(t, res.Correlations, 3)
		assert.Len(t, res.Alphas, 3)
		require.Len(t, res.Details, 9)
		require.NotNil(t, res.Confusion)

		for _, d := range res.Details {
			assert.NotEmpty(t, d.Example)
			assert.GreaterOrEqual(t, d.Truth, 1.0)
			assert.LessOrEqual(t, d.Truth, 7.0)
			assert.GreaterOrEqual(t, d.Prediction, 1.0)
			assert.LessOrEqual(t, d.Prediction, 7.0)
		}
	})

	t.Run("SeedReproducibility", func(t *testing.T) {
		run := func() *results.AggregateResult {
			exp, err := New(ratedCorpus(),
				WithExtractors(feature.Length()),
				WithIterations(2),
				WithSeed(99),
			)
			require.NoError(t, err)

			res, err := exp.Run(context.Background())
			require.NoError(t, err)
			return res
		}

		first := run()
		second := run()

		require.Equal(t, first.Details, second.Details)
		require.Len(t, second.Correlations, len(first.Correlations))
		for i := range first.Correlations {
			if math.IsNaN(first.Correlations[i]) {
				assert.True(t, math.IsNaN(second.Correlations[i]), "trial %d", i)
				continue
			}
			assert.Equal(t, first.Correlations[i], second.Correlations[i], "trial %d", i)
		}
	})

	t.Run("DegenerateTrialsRecordNaN", func(t *testing.T) {
		exp, err := New(ratedCorpus(),
			WithExtractors(feature.Length()),
			WithIterations(4),
			WithSeed(3),
			WithTrainFunc(constTrainFunc()),
		)
		require.NoError(t, err)

		res, err := exp.Run(context.Background())
		require.NoError(t, err)

		require.Len(t, res.Correlations, 4)
		for i, r := range res.Correlations {
			assert.True(t, math.IsNaN(r), "trial %d: constant predictions leave Pearson undefined", i)
		}
		require.Len(t, res.Alphas, 4)
		for i, a := range res.Alphas {
			assert.False(t, math.IsNaN(a), "trial %d", i)
			assert.InDelta(t, 0.0, a, 1e-12, "trial %d", i)
		}
		assert.Len(t, res.Details, 12)

		s := res.Summary()
		assert.Equal(t, 4, s.CorrelationSkipped)
		assert.Equal(t, 0, s.AlphaSkipped)
	})

	t.Run("AssessSchemaReuse", func(t *testing.T) {
		train := corpus.NewSliceReader([]corpus.Example{
			{Text: "aa", Label: corpus.Judged(1)},
			{Text: "bb", Label: corpus.Judged(2)},
		})
		assess := corpus.NewSliceReader([]corpus.Example{
			{Text: "zz", Label: corpus.Judged(1)},
		})

		tokens := feature.Extractor{
			Name: "token_indicator",
			Extract: func(text string) feature.Dict {
				return feature.Dict{"tok:" + text: 1}
			},
		}

		var trainCols, assessCols int
		tf := func(_ context.Context, x *dataset.Matrix, y []float64) (model.Model, error) {
			trainCols = x.Cols()
			return predictFunc(func(px *dataset.Matrix) ([]float64, error) {
				assessCols = px.Cols()
				out := make([]float64, px.Rows())
				for i := range out {
					out[i] = y[0]
				}
				return out, nil
			}), nil
		}

		exp, err := New(train,
			WithAssessReader(assess),
			WithExtractors(tokens),
			WithIterations(2),
			WithTrainFunc(tf),
		)
		require.NoError(t, err)

		res, err := exp.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 2, trainCols, "training schema has one column per token")
		assert.Equal(t, 2, assessCols, "assessment rows project onto the training schema")
		require.Len(t, res.Details, 2)
		for _, d := range res.Details {
			assert.Equal(t, "zz", d.Example)
			assert.Equal(t, 1.0, d.Truth)
		}
	})

	t.Run("TooFewExamples", func(t *testing.T) {
		reader := corpus.NewSliceReader([]corpus.Example{{Text: "only", Label: corpus.Judged(4)}})
		exp, err := New(reader, WithExtractors(feature.Length()), WithIterations(1))
		require.NoError(t, err)

		_, err = exp.Run(context.Background())
		require.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("InvalidLabel", func(t *testing.T) {
		reader := corpus.NewSliceReader([]corpus.Example{
			{Text: "fine", Label: corpus.Judged(2)},
			{Text: "broken", Label: corpus.Judged(9)},
		})
		exp, err := New(reader,
			WithExtractors(feature.Length()),
			WithLabelTransform(label.Ternary()),
			WithIterations(1),
		)
		require.NoError(t, err)

		_, err = exp.Run(context.Background())
		var invalid *ErrInvalidLabel
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "ternary", invalid.Transform)
		assert.Equal(t, corpus.Judged(9), invalid.Score)
	})

	t.Run("ContextCanceled", func(t *testing.T) {
		exp, err := New(ratedCorpus(), WithExtractors(feature.Length()), WithIterations(2), WithSeed(1))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := exp.Run(ctx)
		require.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, res)
	})
}

func TestExperimentRunOnce(t *testing.T) {
	exp, err := New(ratedCorpus(),
		WithExtractors(feature.Length()),
		WithSeed(11),
		WithTrainFunc(constTrainFunc()),
	)
	require.NoError(t, err)

	res, err := exp.RunOnce(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Confusion)
	assert.Len(t, res.Details, 3)
	assert.True(t, math.IsNaN(res.Correlation))
}

func TestCrossValidatedTrainFunc(t *testing.T) {
	rows := make([][]float64, 10)
	y := make([]float64, 10)
	for i := range rows {
		if i%2 == 0 {
			rows[i] = []float64{1}
			y[i] = 2
		} else {
			rows[i] = []float64{-1}
			y[i] = 1
		}
	}
	x, err := dataset.NewDense(rows)
	require.NoError(t, err)

	tf := CrossValidatedTrainFunc(model.NewLogisticRegression(), 2, crossval.Grid{"C": []any{1.0}}, crossval.Accuracy(), nil)

	mod, err := tf(context.Background(), x, y)
	require.NoError(t, err)
	require.NotNil(t, mod)

	preds, err := mod.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, y, preds)
}

func TestDefaultGrid(t *testing.T) {
	params, err := DefaultGrid().Enumerate()
	require.NoError(t, err)
	require.Len(t, params, 24)

	assert.Equal(t, crossval.Params{"C": 0.4, "fit_intercept": true, "penalty": "l1"}, params[0])
	assert.Equal(t, crossval.Params{"C": 0.4, "fit_intercept": true, "penalty": "l2"}, params[1])
	assert.Equal(t, crossval.Params{"C": 0.4, "fit_intercept": false, "penalty": "l1"}, params[2])
}

func TestPearsonScoreFunc(t *testing.T) {
	score := PearsonScoreFunc()
	assert.InDelta(t, 1.0, score([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	assert.True(t, math.IsNaN(score([]float64{1, 2, 3}, []float64{5, 5, 5})))
}
