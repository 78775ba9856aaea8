package linear

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"chatguard/internal/domain"
)

// Params holds the fitted state of a binary linear model.
type Params struct {
	Classes    []int
	Coef       []float64
	Intercept  float64
	LabelNames map[int]string
}

// Classifier is a fitted binary linear decision function.
// It never changes after construction and is safe for concurrent use.
type Classifier struct {
	classes    [2]domain.Label
	coef       []float64
	intercept  float64
	labelNames map[domain.Label]string
}

// New validates the fitted parameters and builds a Classifier.
func New(p Params) (*Classifier, error) {
	if len(p.Classes) != 2 {
		return nil, fmt.Errorf("linear: expected 2 classes, got %d", len(p.Classes))
	}
	if p.Classes[0] == p.Classes[1] {
		return nil, fmt.Errorf("linear: classes must be distinct, got %d twice", p.Classes[0])
	}
	if len(p.Coef) == 0 {
		return nil, errors.New("linear: empty coefficient vector")
	}
	for i, w := range p.Coef {
		if !finite(w) {
			return nil, fmt.Errorf("linear: coef[%d] is not finite", i)
		}
	}
	if !finite(p.Intercept) {
		return nil, errors.New("linear: intercept is not finite")
	}
	names := make(map[domain.Label]string, len(p.LabelNames))
	for k, name := range p.LabelNames {
		names[domain.Label(k)] = name
	}
	return &Classifier{
		classes:    [2]domain.Label{domain.Label(p.Classes[0]), domain.Label(p.Classes[1])},
		coef:       append([]float64(nil), p.Coef...),
		intercept:  p.Intercept,
		labelNames: names,
	}, nil
}

func (c *Classifier) Name() string { return "logistic_regression" }

// Dimension returns the number of features the model was fitted on.
func (c *Classifier) Dimension() int { return len(c.coef) }

// Classes returns the two labels in fitted order.
func (c *Classifier) Classes() []domain.Label {
	return []domain.Label{c.classes[0], c.classes[1]}
}

// Decision returns w·x + b.
func (c *Classifier) Decision(vec domain.FeatureVector) (float64, error) {
	if vec.Dim != len(c.coef) {
		return 0, fmt.Errorf("linear: vector has dimension %d, model expects %d", vec.Dim, len(c.coef))
	}
	if len(vec.Indices) != len(vec.Values) {
		return 0, fmt.Errorf("linear: malformed vector: %d indices, %d values", len(vec.Indices), len(vec.Values))
	}
	score := c.intercept
	for i, idx := range vec.Indices {
		if idx < 0 || idx >= len(c.coef) {
			return 0, fmt.Errorf("linear: feature index %d out of range", idx)
		}
		score += c.coef[idx] * vec.Values[i]
	}
	if !finite(score) {
		return 0, errors.New("linear: decision value is not finite")
	}
	return score, nil
}

// Predict returns the second class when the decision value is positive,
// otherwise the first.
func (c *Classifier) Predict(vec domain.FeatureVector) (domain.Label, error) {
	score, err := c.Decision(vec)
	if err != nil {
		return 0, err
	}
	if score > 0 {
		return c.classes[1], nil
	}
	return c.classes[0], nil
}

// Probability returns the logistic probability of the second class.
func (c *Classifier) Probability(vec domain.FeatureVector) (float64, error) {
	score, err := c.Decision(vec)
	if err != nil {
		return 0, err
	}
	return 1 / (1 + math.Exp(-score)), nil
}

// LabelName returns the display name recorded for label, or its number.
func (c *Classifier) LabelName(label domain.Label) string {
	if name, ok := c.labelNames[label]; ok {
		return name
	}
	return strconv.Itoa(int(label))
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
