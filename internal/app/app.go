package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/glaciersat/snowline/internal/geo"
	"github.com/glaciersat/snowline/internal/log"
	"github.com/glaciersat/snowline/internal/managers"
	"github.com/glaciersat/snowline/internal/orchestrator"
	"github.com/glaciersat/snowline/internal/scenestore"
	"github.com/glaciersat/snowline/internal/snowline"
	"github.com/glaciersat/snowline/internal/types"
)

// App represents the main application
type App struct {
	config *types.Config
	units  []orchestrator.Unit
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(config *types.Config, units []orchestrator.Unit, logger *zap.SugaredLogger) *App {
	return &App{
		config: config,
		units:  units,
		logger: logger,
	}
}

// Run processes the batch and blocks until the results are stored and, if a
// result server is configured, until shutdown is requested.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Initialize the storage manager
	storageManager, err := managers.NewStorageManager(ctx, a.config)
	if err != nil {
		return err
	}

	// Initialize the controller manager
	cm, err := managers.NewControllerManager(ctx, &wg, a.config, a.logger)
	if err != nil {
		return err
	}
	if err := cm.StartControllers(); err != nil {
		return err
	}

	// Assemble the pipeline collaborators: the on-disk scene archive and the
	// in-process grid engine.
	store := scenestore.New(a.config.Catalog.Path, a.config.DEM.Path)
	grid := geo.NewGridEngine(a.config.Catalog.CellAreaKm2)
	svc := &geo.Services{
		Catalog:   store,
		DEM:       store,
		Terrain:   grid,
		Zonal:     grid,
		Vectorize: grid,
		Geometry:  grid,
	}

	engine := snowline.NewEngine(svc, a.config.Pipeline.PercentileBinSize, a.config.Pipeline.CloudFreeThresholdPct)
	orch := orchestrator.New(svc, engine, a.config.Pipeline, a.logger)

	// Set up signal handling before the batch starts so a long run can be
	// interrupted.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigs:
			log.Info("shutdown signal received, cancelling batch...")
			cancel()
		case <-ctx.Done():
		}
	}()

	results := orch.Run(ctx, a.units)
	for _, r := range results {
		select {
		case storageManager.ResultDistributor <- r:
		case <-ctx.Done():
		}
	}

	if len(a.config.Controllers) > 0 && ctx.Err() == nil {
		log.Info("batch stored; result server still running, waiting for shutdown signal...")
		<-ctx.Done()
	}

	// Blocks until every row handed to the distributor has reached every
	// configured sink.
	storageManager.Close()

	cancel()

	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
