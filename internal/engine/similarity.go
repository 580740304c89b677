package engine

import (
	"math"

	"github.com/martin-coser/ArqViewBack-sub000/internal/models"
)

const (
	// Candidate values may fall outside the observed reference range, so
	// both ends are widened before normalizing instead of clipping.
	rangeMinShrink   = 0.3
	candidateMinPull = 0.5
	rangeMaxStretch  = 1.7
	candidateMaxPush = 1.5

	typeMatchSim    = 1.0
	typeMismatchSim = 0.4
	typeTermBoost   = 4.0
)

// Similarity scores candidate b against reference a on [0,1]. The five
// numeric features are compared with a weighted cosine over values
// normalized into widened reference ranges; the property type contributes a
// boosted categorical term blended into the final score.
func Similarity(a, b models.Property, w Weights, r Ranges) float64 {
	va := make([]float64, 0, 5)
	vb := make([]float64, 0, 5)
	add := func(av, bv float64, rr Range, weight float64) {
		wr := widen(rr, bv)
		va = append(va, normalize(av, wr)*weight)
		vb = append(vb, normalize(bv, wr)*weight)
	}
	add(a.Price, b.Price, r.Price, w.Price)
	add(a.Surface, b.Surface, r.Surface, w.Surface)
	add(float64(a.Bathrooms), float64(b.Bathrooms), r.Bathrooms, w.Bathrooms)
	add(float64(a.Bedrooms), float64(b.Bedrooms), r.Bedrooms, w.Bedrooms)
	add(float64(a.Rooms), float64(b.Rooms), r.Rooms, w.Rooms)

	cos := cosine(va, vb)

	categorical := typeMismatchSim
	if a.Type.ID == b.Type.ID {
		categorical = typeMatchSim
	}

	numericWeight := w.NumericSum()
	denom := numericWeight + w.PropertyType*typeTermBoost
	if denom == 0 {
		return 0
	}
	return (numericWeight*math.Max(cos, 0) + w.PropertyType*categorical*typeTermBoost) / denom
}

// MeanSimilarity averages the candidate's similarity against every property
// in the reference set.
func MeanSimilarity(refs []models.Property, candidate models.Property, w Weights, r Ranges) float64 {
	if len(refs) == 0 {
		return 0
	}
	total := 0.0
	for _, ref := range refs {
		total += Similarity(ref, candidate, w, r)
	}
	return total / float64(len(refs))
}

func widen(r Range, candidate float64) Range {
	return Range{
		Min: math.Min(r.Min*rangeMinShrink, candidate*candidateMinPull),
		Max: math.Max(r.Max*rangeMaxStretch, candidate*candidateMaxPush),
	}
}

func cosine(a, b []float64) float64 {
	dot, normA, normB := 0.0, 0.0, 0.0
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
