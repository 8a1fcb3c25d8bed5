package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/glaciersat/snowline/internal/storage"
	"github.com/glaciersat/snowline/internal/storage/resultfile"
	"github.com/glaciersat/snowline/internal/storage/sqlite"
	"github.com/glaciersat/snowline/internal/storage/timescaledb"
	"github.com/glaciersat/snowline/internal/types"
)

// StorageManager holds our active result sink backends
type StorageManager struct {
	Engines           []StorageEngine
	ResultDistributor chan types.TSLAResult
	wg                sync.WaitGroup
}

// StorageEngine holds a backend storage engine's interface as well as
// a channel for passing result rows to the engine
type StorageEngine struct {
	Engine storage.EngineInterface
	C      chan<- types.TSLAResult
}

// NewStorageManager creates a StorageManager object, populated with all
// configured storage engines
func NewStorageManager(ctx context.Context, c *types.Config) (*StorageManager, error) {
	var err error

	s := StorageManager{}

	// Initialize our channel for passing result rows to the distributor
	s.ResultDistributor = make(chan types.TSLAResult, 20)

	// Check the configuration file for various supported storage backends
	// and enable them if found

	if c.Storage.TimescaleDB.ConnectionString != "" {
		err = s.AddEngine(ctx, "timescaledb", c)
		if err != nil {
			return &s, fmt.Errorf("could not add TimescaleDB storage backend: %w", err)
		}
	}

	if c.Storage.SQLite.Path != "" {
		err = s.AddEngine(ctx, "sqlite", c)
		if err != nil {
			return &s, fmt.Errorf("could not add SQLite storage backend: %w", err)
		}
	}

	if c.Storage.ResultFile.Path != "" {
		err = s.AddEngine(ctx, "resultfile", c)
		if err != nil {
			return &s, fmt.Errorf("could not add result archive storage backend: %w", err)
		}
	}

	// Start our result distributor to fan completed rows out to sinks
	s.wg.Add(1)
	go s.startResultDistributor(ctx)

	return &s, nil
}

// AddEngine adds a new StorageEngine of name engineName to our Storage object
func (s *StorageManager) AddEngine(ctx context.Context, engineName string, c *types.Config) error {
	var err error

	switch engineName {
	case "timescaledb":
		se := StorageEngine{}
		se.Engine, err = timescaledb.New(ctx, c)
		if err != nil {
			return err
		}
		se.C = se.Engine.StartStorageEngine(ctx, &s.wg)
		s.Engines = append(s.Engines, se)
	case "sqlite":
		se := StorageEngine{}
		se.Engine, err = sqlite.New(c)
		if err != nil {
			return err
		}
		se.C = se.Engine.StartStorageEngine(ctx, &s.wg)
		s.Engines = append(s.Engines, se)
	case "resultfile":
		se := StorageEngine{}
		se.Engine, err = resultfile.New(c)
		if err != nil {
			return err
		}
		se.C = se.Engine.StartStorageEngine(ctx, &s.wg)
		s.Engines = append(s.Engines, se)
	}

	return nil
}

// Close signals that no more result rows will be submitted and blocks until
// the distributor and every sink have consumed what they hold. Callers must
// not send on ResultDistributor after calling Close.
func (s *StorageManager) Close() {
	close(s.ResultDistributor)
	s.wg.Wait()
}

// startResultDistributor receives completed result rows from the
// orchestrator and fans them out to the various storage backends. Every row
// accepted onto the distributor channel reaches every sink: closure and even
// cancellation drain the buffer before the engine channels are closed.
func (s *StorageManager) startResultDistributor(ctx context.Context) {
	defer s.wg.Done()
	defer s.closeEngines()

	for {
		select {
		case r, ok := <-s.ResultDistributor:
			if !ok {
				return
			}
			s.fanOut(r)
		case <-ctx.Done():
			// Cancelled mid-batch: forward what is already buffered,
			// then stop.
			for {
				select {
				case r, ok := <-s.ResultDistributor:
					if !ok {
						return
					}
					s.fanOut(r)
				default:
					return
				}
			}
		}
	}
}

func (s *StorageManager) fanOut(r types.TSLAResult) {
	for _, e := range s.Engines {
		e.C <- r
	}
}

// closeEngines closes every engine channel; the sinks exit after storing
// their remaining buffered rows.
func (s *StorageManager) closeEngines() {
	for _, e := range s.Engines {
		close(e.C)
	}
}
