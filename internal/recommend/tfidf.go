package recommend

import (
	"math"
	"sort"
)

// Vector widths. The text part comes first, the auxiliary signals last.
const (
	TextDims = 96
	AuxDims  = 4
	Dims     = TextDims + AuxDims
)

// termModel is a TF-IDF model over one call's documents. It is never
// shared between calls.
type termModel struct {
	vocab []string
	index map[string]int
	idf   []float64
}

// newTermModel fixes the vocabulary to the TextDims terms with the highest
// document frequency, ties broken by term.
func newTermModel(docs [][]string) *termModel {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, t := range doc {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	vocab := make([]string, 0, len(df))
	for t := range df {
		vocab = append(vocab, t)
	}
	sort.Slice(vocab, func(a, b int) bool {
		if df[vocab[a]] != df[vocab[b]] {
			return df[vocab[a]] > df[vocab[b]]
		}
		return vocab[a] < vocab[b]
	})
	if len(vocab) > TextDims {
		vocab = vocab[:TextDims]
	}

	n := float64(len(docs))
	m := &termModel{
		vocab: vocab,
		index: make(map[string]int, len(vocab)),
		idf:   make([]float64, len(vocab)),
	}
	for i, t := range vocab {
		m.index[t] = i
		m.idf[i] = 1 + math.Log(n/(1+float64(df[t])))
	}
	return m
}

// vector returns the L2-normalised TF-IDF weights of doc, zero-padded to
// TextDims.
func (m *termModel) vector(doc []string) []float64 {
	v := make([]float64, TextDims)
	for _, t := range doc {
		if i, ok := m.index[t]; ok {
			v[i]++
		}
	}
	for i := range m.idf {
		v[i] *= m.idf[i]
	}
	if n := norm(v); n > 0 {
		for i := range v {
			v[i] /= n
		}
	}
	return v
}

func norm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

// Cosine returns the cosine similarity of a and b, or 0 when either has
// zero magnitude.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot / (na * nb)
}
