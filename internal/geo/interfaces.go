// Package geo defines the external collaborator interfaces the pipeline
// consumes: scene cataloguing, terrain derivatives, zonal statistics,
// vectorization and polygon geometry. The core never reimplements these; the
// bundled grid engine is one in-process implementation and a remote raster
// engine can stand in behind the same interfaces.
package geo

import (
	"context"
	"errors"
	"time"

	"github.com/glaciersat/snowline/internal/raster"
	"github.com/glaciersat/snowline/internal/types"
)

// ErrMissingScene signals that no imagery exists for a requested
// (glacier, date) unit. The orchestrator skips the unit without failing the
// batch.
var ErrMissingScene = errors.New("no scene available for requested glacier and date")

// ErrServiceUnavailable marks a transient external-engine failure. Units hit
// by it are retried with backoff rather than recorded as data.
var ErrServiceUnavailable = errors.New("geometry/raster engine unavailable")

// ReducerKind enumerates the zonal reductions the statistics engine needs.
type ReducerKind int

const (
	ReduceMean ReducerKind = iota
	ReduceMedian
	ReduceMin
	ReduceMax
	ReduceStdDev
	ReduceCount
	ReducePercentile
)

// Reducer selects a zonal reduction; Percentile carries its parameter in
// P (0-100).
type Reducer struct {
	Kind ReducerKind
	P    float64
}

// Percentile builds a percentile reducer for the given p in [0, 100].
func Percentile(p float64) Reducer {
	return Reducer{Kind: ReducePercentile, P: p}
}

// SceneCatalog resolves merged same-day acquisitions for a glacier and date.
type SceneCatalog interface {
	Resolve(ctx context.Context, rgiID string, date time.Time) (*types.Scene, error)
}

// DEMProvider supplies the elevation model clipped (with buffer) to a
// glacier's scene extent, on the scene grid.
type DEMProvider interface {
	DEM(ctx context.Context, rgiID string) (*raster.Grid, error)
}

// TerrainService derives slope and aspect rasters (degrees) from a DEM.
type TerrainService interface {
	SlopeAspect(ctx context.Context, dem *raster.Grid) (slope, aspect *raster.Grid, err error)
}

// ZonalStats reduces raster values inside a zone to a scalar. An empty or
// all-NaN zone reduces to NaN (count reduces to 0).
type ZonalStats interface {
	Reduce(ctx context.Context, grid *raster.Grid, zone *raster.Mask, r Reducer) (float64, error)
}

// OutlineTags carries the identifying attributes attached at vectorization
// time; they must survive unchanged onto the outline and any result computed
// from it.
type OutlineTags struct {
	RGIID   string
	SceneID string
	Date    time.Time
	Class   types.SurfaceClass
}

// Vectorizer traces a boolean raster into a polygon outline with attributes.
type Vectorizer interface {
	Vectorize(ctx context.Context, region *raster.Mask, tags OutlineTags) (types.VectorOutline, error)
}

// Geometry computes polygon areas and intersections.
type Geometry interface {
	AreaKm2(ctx context.Context, o types.VectorOutline) (float64, error)
	Intersect(ctx context.Context, a, b types.VectorOutline) (types.VectorOutline, error)
}

// Services bundles the collaborator set a pipeline unit needs.
type Services struct {
	Catalog   SceneCatalog
	DEM       DEMProvider
	Terrain   TerrainService
	Zonal     ZonalStats
	Vectorize Vectorizer
	Geometry  Geometry
}
