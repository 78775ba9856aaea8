package domain

// Label is the class a classifier emits. Its encoding is whatever the
// classifier was trained with and is passed through unchanged.
type Label int

// FeatureVector is a sparse vector over a fixed feature space.
// Indices are strictly increasing and each is in [0, Dim).
type FeatureVector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// IsZero reports whether the vector has no non-zero component.
func (v FeatureVector) IsZero() bool {
	for _, x := range v.Values {
		if x != 0 {
			return false
		}
	}
	return true
}

// Dense expands the vector into a slice of length Dim.
func (v FeatureVector) Dense() []float64 {
	out := make([]float64, v.Dim)
	for i, idx := range v.Indices {
		out[idx] = v.Values[i]
	}
	return out
}

// Normalizer maps raw text to the form the vocabulary was fitted on.
type Normalizer interface {
	Normalize(text string) string
}

// Vectorizer converts normalized text into a feature vector.
// Implementations are fitted offline and immutable once loaded.
type Vectorizer interface {
	Name() string
	Dimension() int
	Transform(text string) (FeatureVector, error)
}

// Classifier maps a feature vector to one of its fitted labels.
type Classifier interface {
	Name() string
	Dimension() int
	Classes() []Label
	Predict(vec FeatureVector) (Label, error)
}

// Predictor defines the operation exposed by the application core.
type Predictor interface {
	Predict(message string) (Label, error)
}
