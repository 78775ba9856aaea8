package tfidf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() Params {
	return Params{
		Vocabulary: map[string]int{"are": 0, "idiot": 1, "meet": 2, "you": 3},
		IDF:        []float64{1.0, 2.0, 1.5, 1.0},
		Lowercase:  true,
		NgramRange: [2]int{1, 1},
		Norm:       NormL2,
		UseIDF:     true,
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *Params)
		errMsg string
	}{
		{"empty vocabulary", func(p *Params) { p.Vocabulary = nil }, "empty vocabulary"},
		{"index out of range", func(p *Params) { p.Vocabulary["you"] = 9 }, "outside"},
		{"duplicate index", func(p *Params) { p.Vocabulary["you"] = 0 }, "more than one term"},
		{"idf length mismatch", func(p *Params) { p.IDF = p.IDF[:2] }, "idf has 2 weights"},
		{"idf not finite", func(p *Params) { p.IDF[1] = math.NaN() }, "not finite"},
		{"bad ngram range", func(p *Params) { p.NgramRange = [2]int{2, 1} }, "invalid ngram range"},
		{"bad norm", func(p *Params) { p.Norm = "max" }, "unsupported norm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			tt.modify(&p)
			v, err := New(p)
			assert.Nil(t, v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("idf not required without use_idf", func(t *testing.T) {
		p := testParams()
		p.UseIDF = false
		p.IDF = nil
		v, err := New(p)
		require.NoError(t, err)
		assert.Equal(t, 4, v.Dimension())
	})

	t.Run("zero ngram range defaults to unigrams", func(t *testing.T) {
		p := testParams()
		p.NgramRange = [2]int{}
		_, err := New(p)
		assert.NoError(t, err)
	})
}

func TestTransform(t *testing.T) {
	v, err := New(testParams())
	require.NoError(t, err)
	assert.Equal(t, "tfidf", v.Name())

	t.Run("weights by idf and l2 normalizes", func(t *testing.T) {
		vec, err := v.Transform("you are an idiot")
		require.NoError(t, err)

		assert.Equal(t, 4, vec.Dim)
		assert.Equal(t, []int{0, 1, 3}, vec.Indices)
		norm := math.Sqrt(1 + 4 + 1)
		assert.InDeltaSlice(t, []float64{1 / norm, 2 / norm, 1 / norm}, vec.Values, 1e-12)
	})

	t.Run("drops unseen and single-char tokens", func(t *testing.T) {
		vec, err := v.Transform("x zebra meet")
		require.NoError(t, err)
		assert.Equal(t, []int{2}, vec.Indices)
		assert.InDelta(t, 1.0, vec.Values[0], 1e-12)
	})

	t.Run("counts repeated terms", func(t *testing.T) {
		vec, err := v.Transform("you you are")
		require.NoError(t, err)
		norm := math.Sqrt(1 + 4)
		assert.InDeltaSlice(t, []float64{1 / norm, 2 / norm}, vec.Values, 1e-12)
	})

	t.Run("no known terms gives zero vector", func(t *testing.T) {
		vec, err := v.Transform("   ")
		require.NoError(t, err)
		assert.True(t, vec.IsZero())
		assert.Equal(t, make([]float64, 4), vec.Dense())
	})

	t.Run("lowercases when fitted to", func(t *testing.T) {
		a, _ := v.Transform("YOU ARE")
		b, _ := v.Transform("you are")
		assert.Equal(t, b, a)
	})
}

func TestTransform_Options(t *testing.T) {
	t.Run("bigrams", func(t *testing.T) {
		p := Params{
			Vocabulary: map[string]int{"you": 0, "you are": 1, "are": 2},
			NgramRange: [2]int{1, 2},
		}
		v, err := New(p)
		require.NoError(t, err)
		vec, err := v.Transform("you are")
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, vec.Indices)
		assert.Equal(t, []float64{1, 1, 1}, vec.Values)
	})

	t.Run("stop words removed before ngrams", func(t *testing.T) {
		p := Params{
			Vocabulary: map[string]int{"you idiot": 0},
			NgramRange: [2]int{2, 2},
			StopWords:  []string{"are", "an"},
		}
		v, err := New(p)
		require.NoError(t, err)
		vec, err := v.Transform("you are an idiot")
		require.NoError(t, err)
		assert.Equal(t, []int{0}, vec.Indices)
	})

	t.Run("sublinear tf", func(t *testing.T) {
		p := Params{Vocabulary: map[string]int{"no": 0}, SublinearTF: true}
		v, err := New(p)
		require.NoError(t, err)
		vec, _ := v.Transform("no no no")
		assert.InDelta(t, 1+math.Log(3), vec.Values[0], 1e-12)
	})

	t.Run("lowercase uses final sigma", func(t *testing.T) {
		p := Params{Vocabulary: map[string]int{"σας": 0}, Lowercase: true}
		v, err := New(p)
		require.NoError(t, err)
		vec, err := v.Transform("ΣΑΣ")
		require.NoError(t, err)
		assert.Equal(t, []int{0}, vec.Indices)
	})

	t.Run("binary with l1 norm", func(t *testing.T) {
		p := Params{Vocabulary: map[string]int{"aa": 0, "bb": 1}, Binary: true, Norm: NormL1}
		v, err := New(p)
		require.NoError(t, err)
		vec, _ := v.Transform("aa aa aa bb")
		assert.InDeltaSlice(t, []float64{0.5, 0.5}, vec.Values, 1e-12)
	})
}
