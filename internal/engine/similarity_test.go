package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/martin-coser/ArqViewBack-sub000/internal/models"
)

func TestSimilarity_SelfIsMaximal(t *testing.T) {
	refs := []models.Property{
		newProperty(100000, 100, 2, 3, 4, 1),
		newProperty(160000, 110, 2, 3, 4, 1),
	}
	w, r := ComputeWeights(refs)

	self := Similarity(refs[0], refs[0], w, r)
	assert.InDelta(t, 1.0, self, 1e-9)

	others := []models.Property{
		newProperty(155000, 105, 2, 3, 4, 1),
		newProperty(300000, 250, 4, 5, 7, 2),
		newProperty(90000, 60, 1, 1, 2, 3),
	}
	for _, other := range others {
		assert.LessOrEqual(t, Similarity(refs[0], other, w, r), self+1e-9)
	}
}

func TestSimilarity_TypeMismatchPenalty(t *testing.T) {
	// With the weight mass on propertyType, two numerically identical
	// properties of different types score (0.1*5 + 0.5*0.4*4) / (0.5 + 2.0)
	// = 1.3/2.5 = 0.52.
	w := Weights{
		Price:        0.1,
		Surface:      0.1,
		Bathrooms:    0.1,
		Bedrooms:     0.1,
		Rooms:        0.1,
		PropertyType: 0.5,
	}
	r := Ranges{
		Price:     Range{Min: 100000, Max: 160000},
		Surface:   Range{Min: 100, Max: 110},
		Bathrooms: Range{Min: 2, Max: 2},
		Bedrooms:  Range{Min: 3, Max: 3},
		Rooms:     Range{Min: 4, Max: 4},
	}
	ref := newProperty(100000, 100, 2, 3, 4, 1)
	sameType := newProperty(100000, 100, 2, 3, 4, 1)
	otherType := newProperty(100000, 100, 2, 3, 4, 2)

	matched := Similarity(ref, sameType, w, r)
	mismatched := Similarity(ref, otherType, w, r)

	assert.InDelta(t, 1.0, matched, 1e-9)
	assert.InDelta(t, 0.52, mismatched, 1e-9)
	assert.Less(t, mismatched, 0.8)
}

func TestSimilarity_OutOfRangeCandidateNotClipped(t *testing.T) {
	// A candidate priced well above the observed max still lands inside the
	// widened range, so its normalized value stays in [0,1].
	refs := []models.Property{
		newProperty(100000, 100, 2, 3, 4, 1),
		newProperty(160000, 110, 2, 3, 4, 1),
	}
	w, r := ComputeWeights(refs)

	expensive := newProperty(400000, 105, 2, 3, 4, 1)
	score := Similarity(refs[0], expensive, w, r)
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestSimilarity_ZeroVectorScoresOnCategoricalOnly(t *testing.T) {
	// All-zero numeric features produce a zero-norm vector; cosine is
	// defined as 0 there and the type term is all that remains.
	w := Weights{Price: 0.2, Surface: 0.2, Bathrooms: 0.2, Bedrooms: 0.2, Rooms: 0.1, PropertyType: 0.1}
	r := Ranges{}
	a := newProperty(0, 0, 0, 0, 0, 1)
	b := newProperty(0, 0, 0, 0, 0, 1)

	// numeric 0.9*0 + type 0.1*1*4 over 0.9 + 0.4
	assert.InDelta(t, 0.4/1.3, Similarity(a, b, w, r), 1e-9)
}

func TestSimilarity_IgnoresAgencyPlan(t *testing.T) {
	refs := []models.Property{
		newProperty(100000, 100, 2, 3, 4, 1),
		newProperty(160000, 110, 2, 3, 4, 1),
	}
	w, r := ComputeWeights(refs)

	premium := newProperty(155000, 105, 2, 3, 4, 1)
	premium.Agency = &models.Agency{ID: 1, Name: "Sur", Plan: models.PlanPremium}
	basico := premium
	basico.Agency = &models.Agency{ID: 2, Name: "Norte", Plan: models.PlanBasico}

	assert.Equal(t, Similarity(refs[0], premium, w, r), Similarity(refs[0], basico, w, r))
}

func TestWiden(t *testing.T) {
	tests := []struct {
		name      string
		r         Range
		candidate float64
		want      Range
	}{
		{
			name:      "candidate inside range",
			r:         Range{Min: 100000, Max: 160000},
			candidate: 120000,
			want:      Range{Min: 30000, Max: 272000},
		},
		{
			name:      "candidate far above",
			r:         Range{Min: 100000, Max: 160000},
			candidate: 800000,
			want:      Range{Min: 30000, Max: 1200000},
		},
		{
			name:      "candidate far below",
			r:         Range{Min: 100000, Max: 160000},
			candidate: 40000,
			want:      Range{Min: 20000, Max: 272000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := widen(tt.r, tt.candidate)
			assert.InDelta(t, tt.want.Min, got.Min, 1e-9)
			assert.InDelta(t, tt.want.Max, got.Max, 1e-9)
		})
	}
}

func TestMeanSimilarity(t *testing.T) {
	refs := []models.Property{
		newProperty(100000, 100, 2, 3, 4, 1),
		newProperty(160000, 110, 2, 3, 4, 1),
	}
	w, r := ComputeWeights(refs)

	close := newProperty(155000, 105, 2, 3, 4, 1)
	far := newProperty(800000, 500, 1, 1, 12, 2)

	closeScore := MeanSimilarity(refs, close, w, r)
	farScore := MeanSimilarity(refs, far, w, r)

	assert.Greater(t, closeScore, 0.9)
	assert.Less(t, farScore, 0.6)
	assert.Greater(t, closeScore, farScore)

	assert.Zero(t, MeanSimilarity(nil, close, w, r))
}
