// Package illumination derives the terrain shadow mask from DEM slope/aspect
// and solar geometry. Shadowed pixels produce spurious spectral ratios, so
// the mask is applied to the band set before any index is computed.
package illumination

import (
	"context"
	"fmt"
	"math"

	"github.com/glaciersat/snowline/internal/geo"
	"github.com/glaciersat/snowline/internal/raster"
	"github.com/glaciersat/snowline/internal/types"
)

// ShadowThreshold is the illumination cutoff: pixels at or below it are
// treated as shadowed and removed.
const ShadowThreshold = 0.35

// Illumination computes the per-pixel illumination raster
// cos(z)cos(s) + sin(z)sin(s)cos(az - aspect) from slope/aspect in degrees
// and sun azimuth/elevation in degrees.
func Illumination(slope, aspect *raster.Grid, sunAzimuthDeg, sunElevationDeg float64) *raster.Grid {
	zenith := (90 - sunElevationDeg) * math.Pi / 180
	azimuth := sunAzimuthDeg * math.Pi / 180

	out := raster.NewGrid(slope.Width, slope.Height, slope.CellAreaKm2)
	cosZ, sinZ := math.Cos(zenith), math.Sin(zenith)

	for i := range slope.Data {
		s := slope.Data[i] * math.Pi / 180
		a := aspect.Data[i] * math.Pi / 180
		out.Data[i] = cosZ*math.Cos(s) + sinZ*math.Sin(s)*math.Cos(azimuth-a)
	}
	return out
}

// ShadowMask derives the keep-mask for a scene: true where the pixel is
// sufficiently illuminated and its thermal value is positive. The DEM must be
// on the scene grid.
func ShadowMask(ctx context.Context, terrain geo.TerrainService, dem *raster.Grid, scene *types.Scene) (*raster.Mask, error) {
	if !dem.SameShape(scene.Bands.Thermal) {
		return nil, fmt.Errorf("shadow mask: dem %dx%d not on scene grid %dx%d",
			dem.Width, dem.Height, scene.Bands.Thermal.Width, scene.Bands.Thermal.Height)
	}

	slope, aspect, err := terrain.SlopeAspect(ctx, dem)
	if err != nil {
		return nil, fmt.Errorf("terrain derivatives: %w", err)
	}

	illum := Illumination(slope, aspect, scene.SunAzimuthDeg, scene.SunElevationDeg)

	keep := raster.NewMask(dem.Width, dem.Height)
	for i, v := range illum.Data {
		keep.Bits[i] = v > ShadowThreshold && scene.Bands.Thermal.Data[i] > 0
	}
	return keep, nil
}
