// Package orchestrator runs the full classification pipeline independently
// over every (glacier, date) unit of a batch. Units share no mutable state;
// results are collected unordered and downstream aggregation is a set union.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glaciersat/snowline/internal/classify"
	"github.com/glaciersat/snowline/internal/coverage"
	"github.com/glaciersat/snowline/internal/geo"
	"github.com/glaciersat/snowline/internal/illumination"
	"github.com/glaciersat/snowline/internal/metrics"
	"github.com/glaciersat/snowline/internal/snowline"
	"github.com/glaciersat/snowline/internal/solar"
	"github.com/glaciersat/snowline/internal/spectral"
	"github.com/glaciersat/snowline/internal/types"
)

// Unit is one (glacier, date) work item.
type Unit struct {
	RGIID string
	Date  time.Time
}

// Orchestrator maps the pipeline over a batch of units with a bounded worker
// pool, retrying transient service failures per unit with exponential
// backoff.
type Orchestrator struct {
	svc        *geo.Services
	engine     *snowline.Engine
	workers    int
	maxRetries uint64
	logger     *zap.SugaredLogger
}

// New creates an orchestrator. Zero workers means one per CPU.
func New(svc *geo.Services, engine *snowline.Engine, cfg types.PipelineConfig, logger *zap.SugaredLogger) *Orchestrator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Orchestrator{
		svc:        svc,
		engine:     engine,
		workers:    workers,
		maxRetries: cfg.MaxServiceRetries,
		logger:     logger,
	}
}

// Run processes every unit and returns the completed result rows. Missing
// scenes and per-unit anomalies never abort the batch; only context
// cancellation stops it early. Result order is unspecified.
func (o *Orchestrator) Run(ctx context.Context, units []Unit) []types.TSLAResult {
	batchID := uuid.NewString()
	o.logger.Infow("starting batch", "batch_id", batchID, "units", len(units), "workers", o.workers)

	jobs := make(chan Unit)
	resultCh := make(chan types.TSLAResult)

	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for unit := range jobs {
				res, err := o.processUnit(ctx, unit)
				if err != nil {
					if errors.Is(err, geo.ErrMissingScene) {
						metrics.UnitsSkipped.Inc()
						o.logger.Debugw("no scene for unit, skipping",
							"rgi_id", unit.RGIID, "date", unit.Date.Format("2006-01-02"))
						continue
					}
					if ctx.Err() != nil {
						return
					}
					metrics.UnitsFailed.Inc()
					o.logger.Errorw("unit failed after retries",
						"rgi_id", unit.RGIID, "date", unit.Date.Format("2006-01-02"), "error", err)
					continue
				}
				select {
				case resultCh <- *res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, u := range units {
			select {
			case jobs <- u:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var results []types.TSLAResult
	for res := range resultCh {
		metrics.UnitsProcessed.WithLabelValues(fmt.Sprintf("%d", res.Status)).Inc()
		results = append(results, res)
	}

	o.logger.Infow("batch complete", "batch_id", batchID, "results", len(results))
	return results
}

// processUnit runs the full pipeline for one unit, retrying transient
// service failures. A missing scene is returned as-is so the caller can skip
// the unit.
func (o *Orchestrator) processUnit(ctx context.Context, unit Unit) (*types.TSLAResult, error) {
	start := time.Now()
	defer func() {
		metrics.UnitDuration.Observe(time.Since(start).Seconds())
	}()

	scene, err := o.svc.Catalog.Resolve(ctx, unit.RGIID, unit.Date)
	if err != nil {
		return nil, err
	}

	var res *types.TSLAResult
	operation := func() error {
		var opErr error
		res, opErr = o.runPipeline(ctx, scene)
		if opErr == nil {
			return nil
		}
		if errors.Is(opErr, geo.ErrServiceUnavailable) {
			metrics.ServiceRetries.Inc()
			o.logger.Warnw("transient service failure, will retry",
				"rgi_id", unit.RGIID, "error", opErr)
			return opErr
		}
		return backoff.Permanent(opErr)
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), o.maxRetries), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, err
	}
	return res, nil
}

// runPipeline is the single-scene pipeline: shadow masking, index
// computation, classification, coverage resolution, TSLA statistics.
func (o *Orchestrator) runPipeline(ctx context.Context, scene *types.Scene) (*types.TSLAResult, error) {
	dem, err := o.svc.DEM.DEM(ctx, scene.RGIID)
	if err != nil {
		return nil, fmt.Errorf("dem for %s: %w", scene.RGIID, err)
	}

	// The catalog occasionally delivers scenes without sun geometry; fall
	// back to computing it from acquisition time and glacier centroid.
	work := *scene
	if !work.HasSunGeometry {
		pos := solar.SunPosition(work.CenterLat, work.CenterLon, work.AcquisitionDate)
		work.SunAzimuthDeg = pos.AzimuthDeg
		work.SunElevationDeg = pos.ElevationDeg
		work.HasSunGeometry = true
	}

	keep, err := illumination.ShadowMask(ctx, o.svc.Terrain, dem, &work)
	if err != nil {
		return nil, fmt.Errorf("shadow mask: %w", err)
	}

	// Shadow masking mutates band values; work on a private copy so the
	// catalog's scene stays pristine for other consumers.
	bands := work.Bands.Clone()
	bands.MaskOut(keep)
	work.Bands = bands

	idx := spectral.Compute(bands)
	masks := classify.ClassifyAll(idx, work.Sensor)

	cov, err := coverage.Resolve(ctx, o.svc, &work, masks)
	if err != nil {
		return nil, fmt.Errorf("coverage resolution: %w", err)
	}

	res, err := o.engine.Estimate(ctx, &work, dem, cov)
	if err != nil {
		return nil, fmt.Errorf("snowline statistics: %w", err)
	}
	return res, nil
}
