package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelFor(t *testing.T) {
	assert.Equal(t, LabelNonJudi, LabelFor(0))
	assert.Equal(t, LabelJudi, LabelFor(1))
	assert.Equal(t, LabelUnknown, LabelFor(2))
	assert.Equal(t, LabelUnknown, LabelFor(-1))
}

func TestSoftmax(t *testing.T) {
	t.Run("sums to one", func(t *testing.T) {
		probs := Softmax([]float32{1.5, -0.3})

		require.Len(t, probs, 2)
		assert.InDelta(t, 1.0, probs[0]+probs[1], 1e-12)
		assert.Greater(t, probs[0], probs[1])
	})

	t.Run("equal logits split evenly", func(t *testing.T) {
		probs := Softmax([]float32{3, 3})
		assert.InDelta(t, 0.5, probs[0], 1e-12)
		assert.InDelta(t, 0.5, probs[1], 1e-12)
	})

	t.Run("large logits do not overflow", func(t *testing.T) {
		probs := Softmax([]float32{1000, 990})

		for _, p := range probs {
			assert.False(t, math.IsNaN(p))
			assert.False(t, math.IsInf(p, 0))
		}
		assert.InDelta(t, 1/(1+math.Exp(-10)), probs[0], 1e-9)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Softmax(nil))
	})
}

func TestArgmax(t *testing.T) {
	assert.Equal(t, 1, Argmax([]float64{0.2, 0.8}))
	assert.Equal(t, 0, Argmax([]float64{0.9, 0.1}))
	assert.Equal(t, 0, Argmax([]float64{0.5, 0.5}), "ties go to the lowest index")
	assert.Equal(t, -1, Argmax(nil))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.9877, Round(0.98766, 4))
	assert.Equal(t, 0.1234, Round(0.12344999, 4))
	assert.Equal(t, 1.0, Round(0.99999, 4))
	assert.Equal(t, 0.5, Round(0.5, 4))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		logits     []float32
		label      string
		confidence float64
	}{
		{"gambling", []float32{-1.2, 2.3}, LabelJudi, Round(1/(1+math.Exp(-3.5)), 4)},
		{"not gambling", []float32{4, 1}, LabelNonJudi, Round(1/(1+math.Exp(-3)), 4)},
		{"tie picks first class", []float32{0, 0}, LabelNonJudi, 0.5},
		{"unmapped class index", []float32{0, 1, 5}, LabelUnknown, Round(Softmax([]float32{0, 1, 5})[2], 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Classify(tt.logits)

			require.NoError(t, err)
			assert.Equal(t, tt.label, result.Classification)
			assert.Equal(t, tt.confidence, result.ConfidenceScore)
			assert.GreaterOrEqual(t, result.ConfidenceScore, 0.0)
			assert.LessOrEqual(t, result.ConfidenceScore, 1.0)
			assert.Equal(t, result.ConfidenceScore, Round(result.ConfidenceScore, 4))
		})
	}

	t.Run("empty logits", func(t *testing.T) {
		_, err := Classify(nil)
		assert.ErrorIs(t, err, ErrEmptyLogits)
	})

	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	invalid := map[string][]float32{
		"nan logit":         {nan, 1},
		"all nan":           {nan, nan},
		"positive infinity": {0, inf},
		"all -inf":          {-inf, -inf},
	}
	for name, logits := range invalid {
		t.Run(name, func(t *testing.T) {
			result, err := Classify(logits)
			assert.ErrorIs(t, err, ErrInvalidLogits)
			assert.Nil(t, result)
		})
	}

	t.Run("one -inf logit is still finite", func(t *testing.T) {
		result, err := Classify([]float32{-inf, 0})
		require.NoError(t, err)
		assert.Equal(t, LabelJudi, result.Classification)
		assert.Equal(t, 1.0, result.ConfidenceScore)
	})
}
