package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martin-coser/ArqViewBack-sub000/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func newProperty(price, surface float64, bathrooms, bedrooms, rooms int, typeID int64) models.Property {
	return models.Property{
		Price:     price,
		Surface:   surface,
		Bathrooms: bathrooms,
		Bedrooms:  bedrooms,
		Rooms:     rooms,
		Type:      models.PropertyType{ID: typeID, Name: "type"},
	}
}

// ==========================
// Weight Computation Tests
// ==========================

func TestComputeWeights_SumToOne(t *testing.T) {
	tests := []struct {
		name string
		refs []models.Property
	}{
		{
			name: "varied reference set",
			refs: []models.Property{
				newProperty(100000, 100, 2, 3, 4, 1),
				newProperty(250000, 180, 3, 4, 6, 2),
				newProperty(90000, 75, 1, 2, 3, 1),
			},
		},
		{
			name: "single property",
			refs: []models.Property{
				newProperty(120000, 90, 2, 2, 3, 1),
			},
		},
		{
			name: "identical properties",
			refs: []models.Property{
				newProperty(150000, 110, 2, 3, 4, 1),
				newProperty(150000, 110, 2, 3, 4, 1),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := ComputeWeights(tt.refs)
			assert.InDelta(t, 1.0, w.Sum(), 1e-5)
			assert.Greater(t, w.Price, 0.0)
			assert.Greater(t, w.PropertyType, 0.0)
		})
	}
}

func TestComputeWeights_LowVarianceDominates(t *testing.T) {
	// Prices are identical across the set, surfaces spread widely. The
	// consistent feature should carry far more weight.
	refs := []models.Property{
		newProperty(200000, 50, 1, 2, 3, 1),
		newProperty(200000, 200, 3, 4, 8, 2),
		newProperty(200000, 120, 2, 3, 5, 3),
	}

	w, _ := ComputeWeights(refs)
	assert.Greater(t, w.Price, w.Surface)
	assert.Greater(t, w.Price, 10*w.Surface)
}

func TestComputeWeights_TypeWeightCapped(t *testing.T) {
	// Every reference shares one property type, so its raw weight hits the
	// cap of 2.0 while the zero-variance counts hit 1.2/0.001 = 1200 each.
	refs := []models.Property{
		newProperty(100000, 100, 2, 3, 4, 1),
		newProperty(160000, 110, 2, 3, 4, 1),
	}

	w, _ := ComputeWeights(refs)
	assert.Less(t, w.PropertyType, w.Bathrooms)
	assert.InDelta(t, 1.0, w.Sum(), 1e-5)
	// Distinct prices normalize to {0,1}: stddev 0.5, raw 1.5/0.501.
	assert.InDelta(t, w.Price, w.Surface, 1e-9)
}

func TestComputeWeights_ObservedRanges(t *testing.T) {
	refs := []models.Property{
		newProperty(100000, 100, 2, 3, 4, 1),
		newProperty(160000, 110, 2, 3, 4, 1),
	}

	_, r := ComputeWeights(refs)
	assert.Equal(t, Range{Min: 100000, Max: 160000}, r.Price)
	assert.Equal(t, Range{Min: 100, Max: 110}, r.Surface)
	assert.Equal(t, Range{Min: 2, Max: 2}, r.Bathrooms)
}

func TestComputeWeights_ZeroValueFallbacks(t *testing.T) {
	// A vacant lot with zero counts falls back to the default bounds
	// instead of producing a zero-width range at zero.
	refs := []models.Property{
		newProperty(80000, 120, 0, 0, 1, 4),
	}

	_, r := ComputeWeights(refs)
	assert.Equal(t, Range{Min: 0, Max: 10}, r.Bathrooms)
	assert.Equal(t, Range{Min: 0, Max: 10}, r.Bedrooms)
	assert.Equal(t, Range{Min: 1, Max: 1}, r.Rooms)
}

func TestComputeWeights_EmptyReferenceSet(t *testing.T) {
	w, r := ComputeWeights(nil)
	assert.Equal(t, Weights{}, w)
	assert.Equal(t, Ranges{}, r)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		r    Range
		want float64
	}{
		{name: "midpoint", v: 150, r: Range{Min: 100, Max: 200}, want: 0.5},
		{name: "at min", v: 100, r: Range{Min: 100, Max: 200}, want: 0},
		{name: "at max", v: 200, r: Range{Min: 100, Max: 200}, want: 1},
		{name: "zero-width range", v: 5, r: Range{Min: 5, Max: 5}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, normalize(tt.v, tt.r), 1e-9)
		})
	}
}

func TestPopulationStdDev(t *testing.T) {
	require.InDelta(t, 0.5, populationStdDev([]float64{0, 1}), 1e-9)
	require.InDelta(t, 0, populationStdDev([]float64{0.4, 0.4, 0.4}), 1e-9)
}
