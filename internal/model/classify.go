package model

import (
	"errors"
	"math"
)

// confidenceDecimals is the precision of PredictionResult.ConfidenceScore.
const confidenceDecimals = 4

var (
	ErrEmptyLogits   = errors.New("model returned no logits")
	ErrInvalidLogits = errors.New("model returned non-finite logits")
)

// Classify turns raw logits into a labelled result. The confidence is the
// highest softmax probability, whatever label the index maps to.
func Classify(logits []float32) (*PredictionResult, error) {
	if len(logits) == 0 {
		return nil, ErrEmptyLogits
	}

	probs := Softmax(logits)
	index := Argmax(probs)
	if index < 0 || math.IsNaN(probs[index]) || math.IsInf(probs[index], 0) {
		return nil, ErrInvalidLogits
	}

	return &PredictionResult{
		Classification:  LabelFor(index),
		ConfidenceScore: Round(probs[index], confidenceDecimals),
	}, nil
}

// Softmax normalizes logits into probabilities. The max logit is subtracted
// first so large scores do not overflow.
func Softmax(logits []float32) []float64 {
	probs := make([]float64, len(logits))
	if len(logits) == 0 {
		return probs
	}

	maxLogit := float64(logits[0])
	for _, l := range logits[1:] {
		maxLogit = math.Max(maxLogit, float64(l))
	}

	var sum float64
	for i, l := range logits {
		probs[i] = math.Exp(float64(l) - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}

	return probs
}

// Argmax returns the index of the largest value; ties go to the lowest index.
// It returns -1 for an empty slice.
func Argmax(values []float64) int {
	if len(values) == 0 {
		return -1
	}

	maxIdx := 0
	maxVal := values[0]
	for i, v := range values {
		if v > maxVal {
			maxVal = v
			maxIdx = i
		}
	}
	return maxIdx
}

// Round rounds x to the given number of decimal places, half away from zero.
func Round(x float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(x*scale) / scale
}
