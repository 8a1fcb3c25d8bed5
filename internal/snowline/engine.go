// Package snowline estimates the transient snowline altitude (TSLA) of a
// glacier from its resolved snow coverage and a DEM, together with the
// cloud-contamination quality metrics inside the snowline elevation band.
package snowline

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/glaciersat/snowline/internal/coverage"
	"github.com/glaciersat/snowline/internal/geo"
	"github.com/glaciersat/snowline/internal/raster"
	"github.com/glaciersat/snowline/internal/types"
)

// Engine computes TSLA statistics for one (glacier, date) unit at a time. It
// holds no per-unit state and is safe for concurrent use.
type Engine struct {
	svc *geo.Services
	// percentile P picks the snowline elevation e_P inside the snow
	// outline.
	percentile float64
	// cfThreshold gates the estimate on total classified coverage. The
	// gate deliberately checks total coverage, not snow-only coverage,
	// matching the long-standing production behavior.
	cfThreshold float64
}

// NewEngine creates a statistics engine with the given percentile bin size
// and cloud-free coverage gate (both percent).
func NewEngine(svc *geo.Services, percentileBinSize, cloudFreeThresholdPct float64) *Engine {
	return &Engine{
		svc:         svc,
		percentile:  percentileBinSize,
		cfThreshold: cloudFreeThresholdPct,
	}
}

// nullF wraps a float in a NullFloat64, treating NaN as absent. This is the
// typed replacement for the source's "NaN"-string sentinels.
func nullF(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// Estimate runs the per-unit state machine: Gated/Insufficient units emit a
// status-0 sentinel row with absent statistics; otherwise the TSLA stats and
// the snowline-band quality metrics are computed and status is 1.
func (e *Engine) Estimate(ctx context.Context, scene *types.Scene, dem *raster.Grid, cov *coverage.Coverage) (*types.TSLAResult, error) {
	res := &types.TSLAResult{
		RGIID:          scene.RGIID,
		SceneID:        scene.SceneID,
		Date:           scene.AcquisitionDate,
		Sensor:         scene.Sensor.String(),
		GlacierAreaKm2: cov.GlacierAreaKm2,
		SnowAreaKm2:    cov.Outline(types.ClassSnow).AreaKm2,
		IceAreaKm2:     cov.Outline(types.ClassIce).AreaKm2,
		DebrisAreaKm2:  cov.Outline(types.ClassDebris).AreaKm2,
		CloudAreaKm2:   cov.Outline(types.ClassCloudUnknown).AreaKm2,
		ClassCoverage:  cov.ClassCoveragePct,
		CloudFraction:  cov.CloudFractionPct,
		Status:         types.StatusInsufficient,
	}

	elevMin, err := e.svc.Zonal.Reduce(ctx, dem, scene.GlacierOutline, geo.Reducer{Kind: geo.ReduceMin})
	if err != nil {
		return nil, fmt.Errorf("glacier elevation min: %w", err)
	}
	elevMax, err := e.svc.Zonal.Reduce(ctx, dem, scene.GlacierOutline, geo.Reducer{Kind: geo.ReduceMax})
	if err != nil {
		return nil, fmt.Errorf("glacier elevation max: %w", err)
	}
	res.GlacierElevMin = elevMin
	res.GlacierElevMax = elevMax

	// Gate on total classified coverage. Scenes that are mostly
	// cloud/unknown cannot support a trustworthy snowline.
	if cov.ClassCoveragePct < e.cfThreshold {
		return res, nil
	}

	snowOutline := cov.Outline(types.ClassSnow)
	if snowOutline.AreaKm2 == 0 {
		return res, nil
	}

	eP, err := e.svc.Zonal.Reduce(ctx, dem, snowOutline.Region, geo.Percentile(e.percentile))
	if err != nil {
		return nil, fmt.Errorf("snowline percentile elevation: %w", err)
	}
	if math.IsNaN(eP) {
		return res, nil
	}

	// The snowline zone is the lowest P percent of snow-covered terrain.
	tslZone := raster.Threshold(dem, eP).And(snowOutline.Region)

	stats := map[string]geo.Reducer{
		"mean":   {Kind: geo.ReduceMean},
		"median": {Kind: geo.ReduceMedian},
		"min":    {Kind: geo.ReduceMin},
		"max":    {Kind: geo.ReduceMax},
		"stdev":  {Kind: geo.ReduceStdDev},
	}
	vals := make(map[string]float64, len(stats))
	for name, r := range stats {
		v, err := e.svc.Zonal.Reduce(ctx, dem, tslZone, r)
		if err != nil {
			return nil, fmt.Errorf("snowline %s: %w", name, err)
		}
		vals[name] = v
	}

	res.TSLAMean = nullF(vals["mean"])
	res.TSLAMedian = nullF(vals["median"])
	res.TSLAMin = nullF(vals["min"])
	res.TSLAMax = nullF(vals["max"])
	res.TSLAStdev = nullF(vals["stdev"])
	res.Status = types.StatusEstimated

	cloudIn, classIn, err := e.bandContamination(ctx, scene, dem, cov, vals["mean"], vals["stdev"])
	if err != nil {
		return nil, err
	}
	res.CloudInTSLRange = cloudIn
	res.ClassInTSLRange = classIn

	return res, nil
}

// bandContamination intersects the snowline confidence band
// [mean-stdev, mean+stdev] over the glacier DEM with the cloud and total
// outlines. A zero-area band reports both metrics as 100: with no usable
// band the estimate is treated as fully uncertain rather than clean.
func (e *Engine) bandContamination(ctx context.Context, scene *types.Scene, dem *raster.Grid, cov *coverage.Coverage, mean, stdev float64) (cloudIn, classIn sql.NullFloat64, err error) {
	if math.IsNaN(mean) || math.IsNaN(stdev) {
		return sql.NullFloat64{}, sql.NullFloat64{}, nil
	}

	// Band membership is inclusive at both ends; NaN elevations compare
	// false and stay out.
	lo, hi := mean-stdev, mean+stdev
	band := raster.NewMask(dem.Width, dem.Height)
	for i, v := range dem.Data {
		band.Bits[i] = v >= lo && v <= hi && scene.GlacierOutline.Bits[i]
	}

	bandOutline, err := e.svc.Vectorize.Vectorize(ctx, band, geo.OutlineTags{
		RGIID:   scene.RGIID,
		SceneID: scene.SceneID,
		Date:    scene.AcquisitionDate,
		Class:   types.ClassTotal,
	})
	if err != nil {
		return sql.NullFloat64{}, sql.NullFloat64{}, fmt.Errorf("vectorize snowline band: %w", err)
	}
	bandArea, err := e.svc.Geometry.AreaKm2(ctx, bandOutline)
	if err != nil {
		return sql.NullFloat64{}, sql.NullFloat64{}, fmt.Errorf("snowline band area: %w", err)
	}

	if bandArea == 0 {
		full := sql.NullFloat64{Float64: 100, Valid: true}
		return full, full, nil
	}

	cloudInter, err := e.svc.Geometry.Intersect(ctx, bandOutline, cov.Outline(types.ClassCloudUnknown))
	if err != nil {
		return sql.NullFloat64{}, sql.NullFloat64{}, fmt.Errorf("band/cloud intersection: %w", err)
	}
	classInter, err := e.svc.Geometry.Intersect(ctx, bandOutline, cov.Outline(types.ClassTotal))
	if err != nil {
		return sql.NullFloat64{}, sql.NullFloat64{}, fmt.Errorf("band/total intersection: %w", err)
	}

	return nullF(cloudInter.AreaKm2 / bandArea * 100), nullF(classInter.AreaKm2 / bandArea * 100), nil
}
