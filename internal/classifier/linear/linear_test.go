package linear

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatguard/internal/domain"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := New(Params{
		Classes:    []int{-1, 0},
		Coef:       []float64{-4, 2, 0.5},
		Intercept:  0.5,
		LabelNames: map[int]string{-1: "harmful", 0: "safe"},
	})
	require.NoError(t, err)
	return c
}

func vec(dim int, idx []int, vals []float64) domain.FeatureVector {
	return domain.FeatureVector{Dim: dim, Indices: idx, Values: vals}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		errMsg string
	}{
		{"one class", Params{Classes: []int{0}, Coef: []float64{1}}, "expected 2 classes"},
		{"three classes", Params{Classes: []int{0, 1, 2}, Coef: []float64{1}}, "expected 2 classes"},
		{"duplicate classes", Params{Classes: []int{1, 1}, Coef: []float64{1}}, "distinct"},
		{"empty coef", Params{Classes: []int{0, 1}}, "empty coefficient"},
		{"nan coef", Params{Classes: []int{0, 1}, Coef: []float64{math.NaN()}}, "coef[0]"},
		{"inf intercept", Params{Classes: []int{0, 1}, Coef: []float64{1}, Intercept: math.Inf(1)}, "intercept"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.params)
			assert.Nil(t, c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestPredict(t *testing.T) {
	c := newTestClassifier(t)
	assert.Equal(t, 3, c.Dimension())
	assert.Equal(t, []domain.Label{-1, 0}, c.Classes())
	assert.Equal(t, "logistic_regression", c.Name())

	t.Run("negative decision picks first class", func(t *testing.T) {
		label, err := c.Predict(vec(3, []int{0}, []float64{1}))
		require.NoError(t, err)
		assert.Equal(t, domain.Label(-1), label)
	})

	t.Run("positive decision picks second class", func(t *testing.T) {
		label, err := c.Predict(vec(3, []int{1, 2}, []float64{0.6, 0.8}))
		require.NoError(t, err)
		assert.Equal(t, domain.Label(0), label)
	})

	t.Run("zero vector uses intercept", func(t *testing.T) {
		label, err := c.Predict(vec(3, nil, nil))
		require.NoError(t, err)
		assert.Equal(t, domain.Label(0), label)
	})

	t.Run("decision of exactly zero picks first class", func(t *testing.T) {
		label, err := c.Predict(vec(3, []int{1}, []float64{-0.25}))
		require.NoError(t, err)
		assert.Equal(t, domain.Label(-1), label)
	})
}

func TestPredict_Errors(t *testing.T) {
	c := newTestClassifier(t)

	_, err := c.Predict(vec(4, nil, nil))
	assert.ErrorContains(t, err, "dimension 4")

	_, err = c.Predict(vec(3, []int{0, 1}, []float64{1}))
	assert.ErrorContains(t, err, "malformed")

	_, err = c.Predict(vec(3, []int{7}, []float64{1}))
	assert.ErrorContains(t, err, "out of range")

	_, err = c.Predict(vec(3, []int{0}, []float64{math.Inf(-1)}))
	assert.ErrorContains(t, err, "not finite")
}

func TestProbability(t *testing.T) {
	c := newTestClassifier(t)

	p, err := c.Probability(vec(3, nil, nil))
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-0.5)), p, 1e-12)

	_, err = c.Probability(vec(1, nil, nil))
	assert.Error(t, err)
}

func TestLabelName(t *testing.T) {
	c := newTestClassifier(t)
	assert.Equal(t, "harmful", c.LabelName(-1))
	assert.Equal(t, "safe", c.LabelName(0))
	assert.Equal(t, "7", c.LabelName(7))
}
