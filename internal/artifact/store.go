package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"

	"chatguard/internal/classifier/linear"
	"chatguard/internal/vectorizer/tfidf"
)

// ErrStartup marks every failure to bring the artifacts up. The service must
// not start serving when Load returns it.
var ErrStartup = errors.New("artifact startup failure")

// Locations names the files holding the fitted artifacts.
type Locations struct {
	Vectorizer string
	Classifier string
}

// Store holds the fitted vocabulary transform and classifier for the
// lifetime of the process. Both are read-only, so a Store can be shared by
// any number of goroutines without locking.
type Store struct {
	vectorizer *tfidf.Vectorizer
	classifier *linear.Classifier
}

// Load reads, decodes and validates both artifacts.
func Load(loc Locations) (*Store, error) {
	v, err := LoadVectorizer(loc.Vectorizer)
	if err != nil {
		return nil, err
	}
	c, err := LoadClassifier(loc.Classifier)
	if err != nil {
		return nil, err
	}
	return NewStore(v, c)
}

// NewStore pairs already-built artifacts. They must share a feature space;
// only its size can be checked here.
func NewStore(v *tfidf.Vectorizer, c *linear.Classifier) (*Store, error) {
	if v == nil || c == nil {
		return nil, fmt.Errorf("%w: vectorizer and classifier are both required", ErrStartup)
	}
	if v.Dimension() != c.Dimension() {
		return nil, fmt.Errorf("%w: vectorizer has %d features, classifier expects %d",
			ErrStartup, v.Dimension(), c.Dimension())
	}
	return &Store{vectorizer: v, classifier: c}, nil
}

func (s *Store) Vectorizer() *tfidf.Vectorizer { return s.vectorizer }

func (s *Store) Classifier() *linear.Classifier { return s.classifier }

// Dimension returns the size of the shared feature space.
func (s *Store) Dimension() int { return s.vectorizer.Dimension() }

type vectorizerFile struct {
	Kind         string         `json:"kind"`
	Vocabulary   map[string]int `json:"vocabulary"`
	IDF          []float64      `json:"idf"`
	Lowercase    *bool          `json:"lowercase"`
	Analyzer     *string        `json:"analyzer"`
	TokenPattern *string        `json:"token_pattern"`
	NgramRange   []int          `json:"ngram_range"`
	StopWords    []string       `json:"stop_words"`
	Norm         *string        `json:"norm"`
	UseIDF       *bool          `json:"use_idf"`
	SublinearTF  bool           `json:"sublinear_tf"`
	Binary       bool           `json:"binary"`
}

// defaultTokenPattern is the only token pattern Transform implements.
const defaultTokenPattern = `(?u)\b\w\w+\b`

type classifierFile struct {
	Kind       string            `json:"kind"`
	Classes    []int             `json:"classes"`
	Coef       [][]float64       `json:"coef"`
	Intercept  []float64         `json:"intercept"`
	LabelNames map[string]string `json:"label_names"`
}

// LoadVectorizer decodes a fitted TF-IDF transform from path.
func LoadVectorizer(path string) (*tfidf.Vectorizer, error) {
	var f vectorizerFile
	var keys map[string]any
	if err := decodeFile(path, &f, &keys); err != nil {
		return nil, fmt.Errorf("%w: vectorizer: %w", ErrStartup, err)
	}
	if f.Kind != "tfidf" {
		return nil, fmt.Errorf("%w: vectorizer %s: unsupported kind %q", ErrStartup, path, f.Kind)
	}
	if f.Analyzer != nil && *f.Analyzer != "word" {
		return nil, fmt.Errorf("%w: vectorizer %s: unsupported analyzer %q", ErrStartup, path, *f.Analyzer)
	}
	if f.TokenPattern != nil && *f.TokenPattern != defaultTokenPattern {
		return nil, fmt.Errorf("%w: vectorizer %s: unsupported token_pattern %q", ErrStartup, path, *f.TokenPattern)
	}
	p := tfidf.Params{
		Vocabulary:  f.Vocabulary,
		IDF:         f.IDF,
		Lowercase:   boolOr(f.Lowercase, true),
		StopWords:   f.StopWords,
		Norm:        tfidf.NormL2,
		UseIDF:      boolOr(f.UseIDF, true),
		SublinearTF: f.SublinearTF,
		Binary:      f.Binary,
	}
	switch len(f.NgramRange) {
	case 0:
		p.NgramRange = [2]int{1, 1}
	case 2:
		p.NgramRange = [2]int{f.NgramRange[0], f.NgramRange[1]}
	default:
		return nil, fmt.Errorf("%w: vectorizer %s: ngram_range must have 2 values", ErrStartup, path)
	}
	// An absent norm means l2; an explicit null disables normalization.
	if _, present := keys["norm"]; present {
		p.Norm = tfidf.NormNone
		if f.Norm != nil && *f.Norm != "none" {
			p.Norm = *f.Norm
		}
	}
	v, err := tfidf.New(p)
	if err != nil {
		return nil, fmt.Errorf("%w: vectorizer %s: %w", ErrStartup, path, err)
	}
	return v, nil
}

// LoadClassifier decodes a fitted binary linear model from path.
func LoadClassifier(path string) (*linear.Classifier, error) {
	var f classifierFile
	if err := decodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("%w: classifier: %w", ErrStartup, err)
	}
	switch f.Kind {
	case "logistic_regression", "linear_svc":
	default:
		return nil, fmt.Errorf("%w: classifier %s: unsupported kind %q", ErrStartup, path, f.Kind)
	}
	if len(f.Coef) != 1 {
		return nil, fmt.Errorf("%w: classifier %s: expected 1 coefficient row, got %d", ErrStartup, path, len(f.Coef))
	}
	if len(f.Intercept) != 1 {
		return nil, fmt.Errorf("%w: classifier %s: expected 1 intercept, got %d", ErrStartup, path, len(f.Intercept))
	}
	names := make(map[int]string, len(f.LabelNames))
	for k, name := range f.LabelNames {
		label, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("%w: classifier %s: label name key %q is not an integer", ErrStartup, path, k)
		}
		names[label] = name
	}
	c, err := linear.New(linear.Params{
		Classes:    f.Classes,
		Coef:       f.Coef[0],
		Intercept:  f.Intercept[0],
		LabelNames: names,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: classifier %s: %w", ErrStartup, path, err)
	}
	return c, nil
}

var gzipMagic = []byte{0x1f, 0x8b}

// decodeFile reads a JSON document from path, gunzipping it first when the
// content starts with the gzip magic bytes. The document is decoded into
// every target in turn.
func decodeFile(path string, targets ...any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if bytes.HasPrefix(data, gzipMagic) {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		defer zr.Close()
		if data, err = io.ReadAll(zr); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	for _, out := range targets {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
