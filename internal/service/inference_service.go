package service

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"chatguard/internal/domain"
)

// ErrEmptyInput is returned when the message is missing or empty.
var ErrEmptyInput = errors.New("no message provided")

// ErrInferenceFailure marks any failure while vectorizing or classifying.
var ErrInferenceFailure = errors.New("inference failure")

// InferenceError wraps the cause of a failed prediction.
type InferenceError struct {
	Stage string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap exposes both the failure kind and the underlying cause.
func (e *InferenceError) Unwrap() []error {
	return []error{ErrInferenceFailure, e.Err}
}

// InferenceService runs normalization, vectorization and classification for
// a single message. It holds no mutable state besides the optional cache and
// is safe for concurrent use.
type InferenceService struct {
	normalizer domain.Normalizer
	vectorizer domain.Vectorizer
	classifier domain.Classifier
	cache      *lru.Cache[string, domain.Label]
}

// NewInferenceService assembles the pipeline. cacheSize > 0 memoizes labels
// by normalized text.
func NewInferenceService(normalizer domain.Normalizer, vectorizer domain.Vectorizer, classifier domain.Classifier, cacheSize int) (*InferenceService, error) {
	if vectorizer.Dimension() != classifier.Dimension() {
		return nil, fmt.Errorf("vectorizer has %d features, classifier expects %d", vectorizer.Dimension(), classifier.Dimension())
	}
	s := &InferenceService{normalizer: normalizer, vectorizer: vectorizer, classifier: classifier}
	if cacheSize > 0 {
		cache, err := lru.New[string, domain.Label](cacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}
	return s, nil
}

// Predict returns the label the classifier assigns to message, unchanged.
func (s *InferenceService) Predict(message string) (domain.Label, error) {
	if message == "" {
		return 0, ErrEmptyInput
	}
	text := s.normalizer.Normalize(message)
	if s.cache != nil {
		if label, ok := s.cache.Get(text); ok {
			return label, nil
		}
	}
	label, err := s.classify(text)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.Add(text, label)
	}
	return label, nil
}

// Vectorize exposes the feature vector Predict would classify.
func (s *InferenceService) Vectorize(message string) (domain.FeatureVector, error) {
	if message == "" {
		return domain.FeatureVector{}, ErrEmptyInput
	}
	return s.transform(s.normalizer.Normalize(message))
}

// Labels returns the two labels the classifier can emit.
func (s *InferenceService) Labels() []domain.Label { return s.classifier.Classes() }

// Dimension returns the size of the feature space.
func (s *InferenceService) Dimension() int { return s.vectorizer.Dimension() }

func (s *InferenceService) classify(text string) (label domain.Label, err error) {
	vec, err := s.transform(text)
	if err != nil {
		return 0, err
	}
	defer recoverAs("classify", &err)
	label, err = s.classifier.Predict(vec)
	if err != nil {
		return 0, &InferenceError{Stage: "classify", Err: err}
	}
	return label, nil
}

func (s *InferenceService) transform(text string) (vec domain.FeatureVector, err error) {
	defer recoverAs("vectorize", &err)
	vec, err = s.vectorizer.Transform(text)
	if err != nil {
		return domain.FeatureVector{}, &InferenceError{Stage: "vectorize", Err: err}
	}
	if vec.Dim != s.vectorizer.Dimension() {
		return domain.FeatureVector{}, &InferenceError{
			Stage: "vectorize",
			Err:   fmt.Errorf("vector has dimension %d, want %d", vec.Dim, s.vectorizer.Dimension()),
		}
	}
	return vec, nil
}

// recoverAs turns a panic in the current stage into an InferenceError.
func recoverAs(stage string, err *error) {
	if r := recover(); r != nil {
		*err = &InferenceError{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
	}
}
