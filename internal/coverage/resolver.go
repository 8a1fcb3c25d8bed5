// Package coverage composes per-class membership masks into a disjoint
// surface partition over the glacier outline and books the class areas.
package coverage

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/glaciersat/snowline/internal/geo"
	"github.com/glaciersat/snowline/internal/raster"
	"github.com/glaciersat/snowline/internal/types"
)

// Coverage is the resolved partition of one scene: vector outlines and areas
// for snow, ice, debris, the residual cloud/unknown class and the total
// classified region.
type Coverage struct {
	Outlines         map[types.SurfaceClass]types.VectorOutline
	GlacierAreaKm2   float64
	ClassCoveragePct float64
	// CloudFractionPct is absent when the total classified area is zero.
	CloudFractionPct sql.NullFloat64
}

// Outline returns the outline of one class; the zero value if absent.
func (c *Coverage) Outline(class types.SurfaceClass) types.VectorOutline {
	return c.Outlines[class]
}

// Resolve builds the four-class partition plus total coverage from the
// classifier's masks, vectorizes each region and computes the coverage
// metrics. Class masks may overlap the scene margin; everything is restricted
// to the glacier outline before bookkeeping.
func Resolve(ctx context.Context, svc *geo.Services, scene *types.Scene, classes map[types.SurfaceClass]*raster.Mask) (*Coverage, error) {
	glacier := scene.GlacierOutline

	snow := classes[types.ClassSnow].And(glacier)
	ice := classes[types.ClassIce].And(glacier)
	debris := classes[types.ClassDebris].And(glacier)

	debrisPlusIce := debris.Or(ice)
	detected := debrisPlusIce.Or(snow)
	cloudUnknown := detected.Not().And(glacier)
	total := detected.Or(cloudUnknown).And(glacier)

	regions := map[types.SurfaceClass]*raster.Mask{
		types.ClassSnow:         snow,
		types.ClassIce:          ice,
		types.ClassDebris:       debris,
		types.ClassCloudUnknown: cloudUnknown,
		types.ClassTotal:        total,
	}

	out := &Coverage{Outlines: make(map[types.SurfaceClass]types.VectorOutline, len(regions))}

	for class, region := range regions {
		tags := geo.OutlineTags{
			RGIID:   scene.RGIID,
			SceneID: scene.SceneID,
			Date:    scene.AcquisitionDate,
			Class:   class,
		}
		outline, err := svc.Vectorize.Vectorize(ctx, region, tags)
		if err != nil {
			return nil, fmt.Errorf("vectorize %s region: %w", class, err)
		}
		area, err := svc.Geometry.AreaKm2(ctx, outline)
		if err != nil {
			return nil, fmt.Errorf("area of %s region: %w", class, err)
		}
		outline.AreaKm2 = area
		out.Outlines[class] = outline
	}

	glacierOutline, err := svc.Vectorize.Vectorize(ctx, glacier, geo.OutlineTags{
		RGIID:   scene.RGIID,
		SceneID: scene.SceneID,
		Date:    scene.AcquisitionDate,
		Class:   types.ClassTotal,
	})
	if err != nil {
		return nil, fmt.Errorf("vectorize glacier outline: %w", err)
	}
	out.GlacierAreaKm2, err = svc.Geometry.AreaKm2(ctx, glacierOutline)
	if err != nil {
		return nil, fmt.Errorf("glacier area: %w", err)
	}

	totalArea := out.Outlines[types.ClassTotal].AreaKm2
	cloudArea := out.Outlines[types.ClassCloudUnknown].AreaKm2

	if out.GlacierAreaKm2 > 0 {
		pct := totalArea / out.GlacierAreaKm2 * 100
		// Reprojection artifacts can push overlapping outlines past the
		// glacier area; clamp rather than report impossible coverage.
		out.ClassCoveragePct = math.Min(pct, 100)
	}

	if totalArea > 0 {
		out.CloudFractionPct = sql.NullFloat64{Float64: cloudArea / totalArea * 100, Valid: true}
	}

	return out, nil
}
