// Package spectral computes the per-pixel band ratios the surface classifier
// tests against the threshold catalog. All functions are pure; invalid inputs
// propagate as NaN and fall out of classification downstream.
package spectral

import (
	"math"

	"github.com/glaciersat/snowline/internal/raster"
	"github.com/glaciersat/snowline/internal/types"
)

// Freeze guard and normalization constants for the thermal band. Brightness
// temperatures below 263.15 K are physically implausible over glacier surfaces
// in the melt season and destabilize the thermal ratios.
const (
	thermalFloorK  = 263.15
	thermalOffsetK = 230.0
	thermalScaleK  = 70.0
)

// IndexSet holds the derived index rasters for one scene. It is transient:
// owned by the classifier, never persisted.
type IndexSet struct {
	NDSI   *raster.Grid
	Ratio1 *raster.Grid
	Ratio2 *raster.Grid
}

// normDiff is the standard normalized difference. A zero denominator yields
// NaN, which compares false against every threshold bound.
func normDiff(a, b float64) float64 {
	return (a - b) / (a + b)
}

// NormalizeThermal clamps and rescales a brightness temperature into the
// ratio-friendly range shared with the reflective bands.
func NormalizeThermal(t float64) float64 {
	tEff := math.Max(t, thermalFloorK)
	return (tEff - thermalOffsetK) / thermalScaleK
}

// NDSI computes (SWIR1 - G) / (SWIR1 + G) for a single pixel.
func NDSI(swir1, green float64) float64 {
	return normDiff(swir1, green)
}

// Ratio1 relates normalized thermal to the green+NIR sum.
func Ratio1(tNorm, green, nir float64) float64 {
	return normDiff(tNorm, green+nir)
}

// Ratio2 relates green to normalized thermal.
func Ratio2(green, tNorm float64) float64 {
	return normDiff(green, tNorm)
}

// Compute derives the full index set from a band set. Deterministic: the
// same bands always produce bit-identical indices.
func Compute(bands *types.BandSet) *IndexSet {
	g := bands.Green
	out := &IndexSet{
		NDSI:   raster.NewGrid(g.Width, g.Height, g.CellAreaKm2),
		Ratio1: raster.NewGrid(g.Width, g.Height, g.CellAreaKm2),
		Ratio2: raster.NewGrid(g.Width, g.Height, g.CellAreaKm2),
	}

	for i := range g.Data {
		green := bands.Green.Data[i]
		nir := bands.NIR.Data[i]
		swir1 := bands.SWIR1.Data[i]
		tNorm := NormalizeThermal(bands.Thermal.Data[i])

		out.NDSI.Data[i] = NDSI(swir1, green)
		out.Ratio1.Data[i] = Ratio1(tNorm, green, nir)
		out.Ratio2.Data[i] = Ratio2(green, tNorm)
	}

	return out
}
