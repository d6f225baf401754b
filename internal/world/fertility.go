// Terrain fertility field — deterministic noise over the hex grid.
package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// FertilityField maps hex positions to a land quality multiplier applied
// to land-worked production (farms, lumber camps). Deterministic from the
// seed: the same seed always yields the same field.
type FertilityField struct {
	soilNoise  opensimplex.Noise
	waterNoise opensimplex.Noise
}

// NewFertilityField creates a field from a world seed.
func NewFertilityField(seed int64) *FertilityField {
	return &FertilityField{
		soilNoise:  opensimplex.NewNormalized(seed),
		waterNoise: opensimplex.NewNormalized(seed + 1),
	}
}

// At returns the fertility multiplier at a hex, in [0.5, 1.5]. 1.0 is
// average land; richer soil and nearby water raise it.
func (f *FertilityField) At(coord HexCoord) float64 {
	x := float64(coord.Q)
	y := float64(coord.R)

	soil := octaveNoise(f.soilNoise, x, y, 3, 0.08, 0.5)
	water := octaveNoise(f.waterNoise, x, y, 2, 0.05, 0.5)

	// Soil dominates; water access contributes a smaller share.
	quality := soil*0.7 + water*0.3
	return 0.5 + quality
}

// octaveNoise layers multiple noise frequencies into fractal detail,
// normalized to [0, 1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	freq := frequency

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*freq, y*freq) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		freq *= 2
	}
	if maxVal == 0 {
		return 0
	}
	v := total / maxVal
	return math.Max(0, math.Min(1, v))
}
