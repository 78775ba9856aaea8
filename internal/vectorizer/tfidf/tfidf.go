package tfidf

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"chatguard/internal/domain"
)

// Norm names the per-document normalization applied after weighting.
const (
	NormL2   = "l2"
	NormL1   = "l1"
	NormNone = ""
)

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Params holds the fitted state of a TF-IDF transform.
type Params struct {
	Vocabulary  map[string]int
	IDF         []float64
	Lowercase   bool
	NgramRange  [2]int
	StopWords   []string
	Norm        string
	UseIDF      bool
	SublinearTF bool
	Binary      bool
}

// Vectorizer applies a fitted TF-IDF transform to text.
// It is immutable after construction and safe for concurrent use.
type Vectorizer struct {
	vocabulary   map[string]int
	idf          []float64
	dimension    int
	lowercase    bool
	minN, maxN   int
	norm         string
	useIDF       bool
	sublinearTF  bool
	binary       bool
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// New validates the fitted parameters and builds a Vectorizer.
func New(p Params) (*Vectorizer, error) {
	n := len(p.Vocabulary)
	if n == 0 {
		return nil, errors.New("tfidf: empty vocabulary")
	}
	// Indices must cover 0..n-1 exactly once.
	seen := make([]bool, n)
	for term, idx := range p.Vocabulary {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("tfidf: term %q has index %d outside [0,%d)", term, idx, n)
		}
		if seen[idx] {
			return nil, fmt.Errorf("tfidf: index %d assigned to more than one term", idx)
		}
		seen[idx] = true
	}
	if p.UseIDF {
		if len(p.IDF) != n {
			return nil, fmt.Errorf("tfidf: idf has %d weights, vocabulary has %d terms", len(p.IDF), n)
		}
		for i, w := range p.IDF {
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, fmt.Errorf("tfidf: idf[%d] is not finite", i)
			}
		}
	}
	minN, maxN := p.NgramRange[0], p.NgramRange[1]
	if minN == 0 && maxN == 0 {
		minN, maxN = 1, 1
	}
	if minN < 1 || maxN < minN {
		return nil, fmt.Errorf("tfidf: invalid ngram range (%d, %d)", minN, maxN)
	}
	switch p.Norm {
	case NormL2, NormL1, NormNone:
	default:
		return nil, fmt.Errorf("tfidf: unsupported norm %q", p.Norm)
	}

	vocab := make(map[string]int, n)
	for term, idx := range p.Vocabulary {
		vocab[term] = idx
	}
	var idf []float64
	if p.UseIDF {
		idf = append([]float64(nil), p.IDF...)
	}
	stop := make(map[string]struct{}, len(p.StopWords))
	for _, w := range p.StopWords {
		stop[w] = struct{}{}
	}
	return &Vectorizer{
		vocabulary:   vocab,
		idf:          idf,
		dimension:    n,
		lowercase:    p.Lowercase,
		minN:         minN,
		maxN:         maxN,
		norm:         p.Norm,
		useIDF:       p.UseIDF,
		sublinearTF:  p.SublinearTF,
		binary:       p.Binary,
		tokenPattern: tokenPattern,
		stopwords:    stop,
	}, nil
}

// Name returns the identifier of this vectorizer implementation.
func (v *Vectorizer) Name() string { return "tfidf" }

// Dimension returns the size of the fitted feature space.
func (v *Vectorizer) Dimension() int { return v.dimension }

// Transform computes the TF-IDF vector for text. Terms outside the fitted
// vocabulary are dropped; text with no known terms yields a zero vector.
func (v *Vectorizer) Transform(text string) (domain.FeatureVector, error) {
	vec := domain.FeatureVector{Dim: v.dimension}
	tf := make(map[int]float64)
	for _, term := range v.terms(text) {
		if idx, ok := v.vocabulary[term]; ok {
			tf[idx]++
		}
	}
	if len(tf) == 0 {
		return vec, nil
	}

	vec.Indices = make([]int, 0, len(tf))
	for idx := range tf {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)
	vec.Values = make([]float64, len(vec.Indices))
	for i, idx := range vec.Indices {
		w := tf[idx]
		switch {
		case v.binary:
			w = 1
		case v.sublinearTF:
			w = 1 + math.Log(w)
		}
		if v.useIDF {
			w *= v.idf[idx]
		}
		vec.Values[i] = w
	}

	norm := 0.0
	switch v.norm {
	case NormL2:
		for _, x := range vec.Values {
			norm += x * x
		}
		norm = math.Sqrt(norm)
	case NormL1:
		for _, x := range vec.Values {
			norm += math.Abs(x)
		}
	}
	if norm > 0 {
		for i := range vec.Values {
			vec.Values[i] /= norm
		}
	}
	return vec, nil
}

// terms returns the n-grams of text in document order.
func (v *Vectorizer) terms(text string) []string {
	if v.lowercase {
		// Same full case mapping as the normalizer. Casers are stateful.
		text = cases.Lower(language.Und).String(text)
	}
	raw := v.tokenPattern.FindAllString(text, -1)
	if len(raw) == 0 {
		return nil
	}
	tokens := raw[:0]
	for _, t := range raw {
		if _, isStop := v.stopwords[t]; isStop {
			continue
		}
		tokens = append(tokens, t)
	}
	if v.minN == 1 && v.maxN == 1 {
		return tokens
	}
	var out []string
	for n := v.minN; n <= v.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
