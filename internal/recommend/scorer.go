package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"
)

// Scorer turns a job vector and the subject vector into a score in [0, 100].
type Scorer interface {
	Score(job, subject []float64) float64
}

// SimilarityOnly scores by cosine similarity alone.
type SimilarityOnly struct{}

func (SimilarityOnly) Score(job, subject []float64) float64 {
	return clampScore(Cosine(job, subject) * 100)
}

// Model predicts the probability that a user engages with a job from the
// pair's interaction features.
type Model interface {
	Predict(features []float64) (float64, error)
}

// BlendedWithModel mixes similarity with a model's prediction 60/40. A nil
// model or a failed prediction falls back to similarity.
type BlendedWithModel struct {
	Model Model
}

const similarityWeight = 0.6

func (b BlendedWithModel) Score(job, subject []float64) float64 {
	base := SimilarityOnly{}.Score(job, subject)
	if b.Model == nil {
		return base
	}
	p, err := b.Model.Predict(Interaction(job, subject))
	if err != nil {
		if !errors.Is(err, ErrUntrained) {
			slog.Warn("model prediction failed, using similarity", "err", err)
		}
		return base
	}
	return clampScore(similarityWeight*base + (1-similarityWeight)*p*100)
}

// Interaction is the element-wise product of the two vectors, the input
// shape Model implementations receive.
func Interaction(job, subject []float64) []float64 {
	out := make([]float64, len(job))
	for i := range job {
		if i < len(subject) {
			out[i] = job[i] * subject[i]
		}
	}
	return out
}

func clampScore(s float64) float64 {
	switch {
	case math.IsNaN(s) || s < 0:
		return 0
	case s > 100:
		return 100
	}
	return s
}

// ─── Logistic model ──────────────────────────────────────────────────────────

// ErrUntrained is returned by Predict before Train has succeeded.
var ErrUntrained = errors.New("model is not trained")

// Example is one labelled training pair. Label is 1 for engagement, 0 otherwise.
type Example struct {
	Features []float64
	Label    float64
}

// LogisticModel is a logistic regression trained with batch gradient
// descent. It is safe for concurrent use.
type LogisticModel struct {
	mu      sync.RWMutex
	weights []float64
	bias    float64
}

// NewLogisticModel returns an untrained model.
func NewLogisticModel() *LogisticModel { return &LogisticModel{} }

// Train fits the model to examples. All feature vectors must share a width.
func (m *LogisticModel) Train(examples []Example, epochs int, rate float64) error {
	if len(examples) == 0 {
		return errors.New("train: no examples")
	}
	if epochs <= 0 || rate <= 0 {
		return fmt.Errorf("train: epochs and rate must be positive, got %d and %v", epochs, rate)
	}
	width := len(examples[0].Features)
	for i, ex := range examples {
		if len(ex.Features) != width {
			return fmt.Errorf("train: example %d has %d features, want %d", i, len(ex.Features), width)
		}
	}

	w := make([]float64, width)
	var bias float64
	n := float64(len(examples))
	grad := make([]float64, width)

	for e := 0; e < epochs; e++ {
		for i := range grad {
			grad[i] = 0
		}
		var gb float64
		for _, ex := range examples {
			diff := sigmoid(dot(w, ex.Features)+bias) - ex.Label
			for i, x := range ex.Features {
				grad[i] += diff * x
			}
			gb += diff
		}
		for i := range w {
			w[i] -= rate * grad[i] / n
		}
		bias -= rate * gb / n
	}

	m.mu.Lock()
	m.weights, m.bias = w, bias
	m.mu.Unlock()
	return nil
}

// Predict returns the engagement probability for features.
func (m *LogisticModel) Predict(features []float64) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.weights == nil {
		return 0, ErrUntrained
	}
	if len(features) != len(m.weights) {
		return 0, fmt.Errorf("predict: got %d features, want %d", len(features), len(m.weights))
	}
	return sigmoid(dot(m.weights, features) + m.bias), nil
}

// modelFile is the on-disk form of a trained LogisticModel.
type modelFile struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// SaveFile writes the trained parameters to path as JSON.
func (m *LogisticModel) SaveFile(path string) error {
	m.mu.RLock()
	mf := modelFile{Weights: m.weights, Bias: m.bias}
	m.mu.RUnlock()
	if mf.Weights == nil {
		return ErrUntrained
	}
	raw, err := json.MarshalIndent(mf, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write model %s: %w", path, err)
	}
	return nil
}

// LoadLogisticModel reads parameters written by SaveFile.
func LoadLogisticModel(path string) (*LogisticModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	var mf modelFile
	if err := json.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	if len(mf.Weights) != Dims {
		return nil, fmt.Errorf("model %s has %d weights, want %d", path, len(mf.Weights), Dims)
	}
	return &LogisticModel{weights: mf.Weights, bias: mf.Bias}, nil
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
