package engine

import (
	"math"

	"github.com/martin-coser/ArqViewBack-sub000/internal/models"
)

const (
	// epsilon keeps zero-variance features finite when inverting the
	// standard deviation.
	epsilon = 0.001

	priceMultiplier   = 1.5
	surfaceMultiplier = 1.5
	countMultiplier   = 1.2
	typeMultiplier    = 1.5
	typeWeightCap     = 2.0
)

// Property-type ids are spread over a fixed scale rather than the observed
// range, so a reference set drawn from a small catalog still produces a
// usable signal.
const (
	typeScaleMin = 1.0
	typeScaleMax = 100.0
)

// Fallback bounds used when a feature's observed bound collapses to zero.
var (
	defaultPriceRange    = Range{Min: 0, Max: 100000}
	defaultSurfaceRange  = Range{Min: 0, Max: 200}
	defaultBathroomRange = Range{Min: 0, Max: 10}
	defaultBedroomRange  = Range{Min: 0, Max: 10}
	defaultRoomRange     = Range{Min: 1, Max: 20}
)

// Range is a closed numeric interval used for min-max normalization.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Ranges holds the observed bounds of each numeric feature of a reference
// set. They are computed together with the weights and reused when scoring
// candidates against that set.
type Ranges struct {
	Price     Range `json:"price"`
	Surface   Range `json:"surface"`
	Bathrooms Range `json:"bathrooms"`
	Bedrooms  Range `json:"bedrooms"`
	Rooms     Range `json:"rooms"`
}

// Weights holds the normalized per-feature weights derived from a reference
// set. The six fields sum to 1.
type Weights struct {
	Price        float64 `json:"price"`
	Surface      float64 `json:"surface"`
	Bathrooms    float64 `json:"bathrooms"`
	Bedrooms     float64 `json:"bedrooms"`
	Rooms        float64 `json:"rooms"`
	PropertyType float64 `json:"propertyType"`
}

// Sum returns the total of all six weights.
func (w Weights) Sum() float64 {
	return w.Price + w.Surface + w.Bathrooms + w.Bedrooms + w.Rooms + w.PropertyType
}

// NumericSum returns the total of the five numeric-feature weights.
func (w Weights) NumericSum() float64 {
	return w.Price + w.Surface + w.Bathrooms + w.Bedrooms + w.Rooms
}

// ComputeWeights derives feature weights and normalization ranges from a
// client's reference properties. Features the client is consistent about
// (low spread across the reference set) read as strong preference signals
// and receive proportionally higher weight. The property-type weight is
// capped so an all-identical-type reference set cannot dominate the mix.
func ComputeWeights(refs []models.Property) (Weights, Ranges) {
	if len(refs) == 0 {
		return Weights{}, Ranges{}
	}

	n := len(refs)
	prices := make([]float64, n)
	surfaces := make([]float64, n)
	bathrooms := make([]float64, n)
	bedrooms := make([]float64, n)
	rooms := make([]float64, n)
	typeIDs := make([]float64, n)
	for i, p := range refs {
		prices[i] = p.Price
		surfaces[i] = p.Surface
		bathrooms[i] = float64(p.Bathrooms)
		bedrooms[i] = float64(p.Bedrooms)
		rooms[i] = float64(p.Rooms)
		typeIDs[i] = float64(p.Type.ID)
	}

	ranges := Ranges{
		Price:     observedRange(prices, defaultPriceRange),
		Surface:   observedRange(surfaces, defaultSurfaceRange),
		Bathrooms: observedRange(bathrooms, defaultBathroomRange),
		Bedrooms:  observedRange(bedrooms, defaultBedroomRange),
		Rooms:     observedRange(rooms, defaultRoomRange),
	}

	typeScale := Range{Min: typeScaleMin, Max: typeScaleMax}
	raw := Weights{
		Price:        priceMultiplier / (normalizedStdDev(prices, ranges.Price) + epsilon),
		Surface:      surfaceMultiplier / (normalizedStdDev(surfaces, ranges.Surface) + epsilon),
		Bathrooms:    countMultiplier / (normalizedStdDev(bathrooms, ranges.Bathrooms) + epsilon),
		Bedrooms:     countMultiplier / (normalizedStdDev(bedrooms, ranges.Bedrooms) + epsilon),
		Rooms:        countMultiplier / (normalizedStdDev(rooms, ranges.Rooms) + epsilon),
		PropertyType: math.Min(typeMultiplier/(normalizedStdDev(typeIDs, typeScale)+epsilon), typeWeightCap),
	}

	total := raw.Sum()
	return Weights{
		Price:        raw.Price / total,
		Surface:      raw.Surface / total,
		Bathrooms:    raw.Bathrooms / total,
		Bedrooms:     raw.Bedrooms / total,
		Rooms:        raw.Rooms / total,
		PropertyType: raw.PropertyType / total,
	}, ranges
}

func observedRange(vals []float64, fallback Range) Range {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == 0 {
		lo = fallback.Min
	}
	if hi == 0 {
		hi = fallback.Max
	}
	return Range{Min: lo, Max: hi}
}

// normalize maps v into [0,1] relative to r. A zero-width range normalizes
// to 0 for every input.
func normalize(v float64, r Range) float64 {
	if r.Max == r.Min {
		return 0
	}
	return (v - r.Min) / (r.Max - r.Min)
}

func normalizedStdDev(vals []float64, r Range) float64 {
	normalized := make([]float64, len(vals))
	for i, v := range vals {
		normalized[i] = normalize(v, r)
	}
	return populationStdDev(normalized)
}

func populationStdDev(vals []float64) float64 {
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))

	variance := 0.0
	for _, v := range vals {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(vals))
	return math.Sqrt(variance)
}
