package geo

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/glaciersat/snowline/internal/raster"
	"github.com/glaciersat/snowline/internal/types"
)

// GridEngine is the in-process reference implementation of the terrain,
// zonal-statistics, vectorization and geometry services, operating directly
// on raster grids. It is what the default deployment and the test-suite run
// against; a remote raster engine can replace it behind the same interfaces.
type GridEngine struct {
	// CellAreaKm2 is the pixel footprint shared by all grids of a batch.
	CellAreaKm2 float64
}

// NewGridEngine creates a grid engine for rasters with the given pixel area.
func NewGridEngine(cellAreaKm2 float64) *GridEngine {
	return &GridEngine{CellAreaKm2: cellAreaKm2}
}

// SlopeAspect derives slope and aspect (both in degrees) from the DEM using
// Horn's eight-neighbor finite differences. Border cells reuse their nearest
// interior neighbor, which is why scene clips carry a DEM buffer.
func (e *GridEngine) SlopeAspect(ctx context.Context, dem *raster.Grid) (*raster.Grid, *raster.Grid, error) {
	if dem.Width < 2 || dem.Height < 2 {
		return nil, nil, fmt.Errorf("dem too small for terrain derivatives: %dx%d", dem.Width, dem.Height)
	}

	cellSizeM := math.Sqrt(dem.CellAreaKm2) * 1000.0
	slope := raster.NewGrid(dem.Width, dem.Height, dem.CellAreaKm2)
	aspect := raster.NewGrid(dem.Width, dem.Height, dem.CellAreaKm2)

	clamp := func(v, lo, hi int) int {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	at := func(x, y int) float64 {
		return dem.At(clamp(x, 0, dem.Width-1), clamp(y, 0, dem.Height-1))
	}

	for y := 0; y < dem.Height; y++ {
		for x := 0; x < dem.Width; x++ {
			a, b, c := at(x-1, y-1), at(x, y-1), at(x+1, y-1)
			d, f := at(x-1, y), at(x+1, y)
			g, h, i := at(x-1, y+1), at(x, y+1), at(x+1, y+1)

			dzdx := ((c + 2*f + i) - (a + 2*d + g)) / (8 * cellSizeM)
			dzdy := ((g + 2*h + i) - (a + 2*b + c)) / (8 * cellSizeM)

			slope.Set(x, y, math.Atan(math.Sqrt(dzdx*dzdx+dzdy*dzdy))*180/math.Pi)

			// Aspect clockwise from north, flat cells report 0.
			if dzdx == 0 && dzdy == 0 {
				aspect.Set(x, y, 0)
				continue
			}
			az := math.Atan2(dzdy, -dzdx) * 180 / math.Pi
			az = 90 - az
			if az < 0 {
				az += 360
			}
			aspect.Set(x, y, math.Mod(az, 360))
		}
	}

	return slope, aspect, nil
}

// Reduce computes a zonal reduction of grid values inside the zone. Empty or
// all-NaN zones reduce to NaN; count reduces to 0.
func (e *GridEngine) Reduce(ctx context.Context, grid *raster.Grid, zone *raster.Mask, r Reducer) (float64, error) {
	if grid.Width != zone.Width || grid.Height != zone.Height {
		return math.NaN(), fmt.Errorf("zonal reduce: grid %dx%d and zone %dx%d differ",
			grid.Width, grid.Height, zone.Width, zone.Height)
	}

	vals := raster.Values(grid, zone)
	if r.Kind == ReduceCount {
		return float64(len(vals)), nil
	}
	if len(vals) == 0 {
		return math.NaN(), nil
	}

	switch r.Kind {
	case ReduceMean:
		return stat.Mean(vals, nil), nil
	case ReduceStdDev:
		if len(vals) < 2 {
			return 0, nil
		}
		return stat.StdDev(vals, nil), nil
	case ReduceMin:
		min := vals[0]
		for _, v := range vals {
			if v < min {
				min = v
			}
		}
		return min, nil
	case ReduceMax:
		max := vals[0]
		for _, v := range vals {
			if v > max {
				max = v
			}
		}
		return max, nil
	case ReduceMedian:
		sort.Float64s(vals)
		return stat.Quantile(0.5, stat.Empirical, vals, nil), nil
	case ReducePercentile:
		sort.Float64s(vals)
		return stat.Quantile(r.P/100.0, stat.Empirical, vals, nil), nil
	default:
		return math.NaN(), fmt.Errorf("zonal reduce: unsupported reducer %d", r.Kind)
	}
}

// Vectorize traces a boolean raster into an outline carrying the identifying
// tags. In the grid engine an outline keeps its source pixel set; areas and
// intersections are computed on it.
func (e *GridEngine) Vectorize(ctx context.Context, region *raster.Mask, tags OutlineTags) (types.VectorOutline, error) {
	out := types.VectorOutline{
		RGIID:   tags.RGIID,
		SceneID: tags.SceneID,
		Date:    tags.Date,
		Class:   tags.Class,
		Region:  region.Clone(),
	}
	out.AreaKm2 = float64(region.Count()) * e.CellAreaKm2
	return out, nil
}

// AreaKm2 returns the outline's area at pixel resolution.
func (e *GridEngine) AreaKm2(ctx context.Context, o types.VectorOutline) (float64, error) {
	if o.Region == nil {
		return 0, nil
	}
	return float64(o.Region.Count()) * e.CellAreaKm2, nil
}

// Intersect returns the overlap of two outlines. Tags of the first operand
// carry forward.
func (e *GridEngine) Intersect(ctx context.Context, a, b types.VectorOutline) (types.VectorOutline, error) {
	out := types.VectorOutline{
		RGIID:   a.RGIID,
		SceneID: a.SceneID,
		Date:    a.Date,
		Class:   a.Class,
	}
	if a.Region == nil || b.Region == nil {
		return out, nil
	}
	if a.Region.Width != b.Region.Width || a.Region.Height != b.Region.Height {
		return out, fmt.Errorf("intersect: outline grids %dx%d and %dx%d differ",
			a.Region.Width, a.Region.Height, b.Region.Width, b.Region.Height)
	}
	out.Region = a.Region.And(b.Region)
	out.AreaKm2 = float64(out.Region.Count()) * e.CellAreaKm2
	return out, nil
}
