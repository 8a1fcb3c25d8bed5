// Package sqlite implements a local SQLite result sink for single-machine
// batch runs.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/glaciersat/snowline/internal/log"
	"github.com/glaciersat/snowline/internal/types"
)

// Storage holds the connection to a SQLite result database
type Storage struct {
	db *sql.DB
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS tsla_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	rgi_id TEXT NOT NULL,
	scene_id TEXT NOT NULL,
	acq_date TIMESTAMP NOT NULL,
	sensor TEXT NOT NULL,
	glacier_area_km2 REAL NOT NULL,
	glacier_elev_min REAL NOT NULL,
	glacier_elev_max REAL NOT NULL,
	snow_area_km2 REAL NOT NULL,
	ice_area_km2 REAL NOT NULL,
	debris_area_km2 REAL NOT NULL,
	cloud_area_km2 REAL NOT NULL,
	class_coverage_pct REAL NOT NULL,
	cloud_fraction_pct REAL,
	tsla_mean REAL,
	tsla_median REAL,
	tsla_min REAL,
	tsla_max REAL,
	tsla_stdev REAL,
	cloud_in_tslrange_pct REAL,
	class_in_tslrange_pct REAL,
	status INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tsla_results_rgi_date ON tsla_results(rgi_id, acq_date);
`

const insertSQL = `
INSERT INTO tsla_results (
	rgi_id, scene_id, acq_date, sensor,
	glacier_area_km2, glacier_elev_min, glacier_elev_max,
	snow_area_km2, ice_area_km2, debris_area_km2, cloud_area_km2,
	class_coverage_pct, cloud_fraction_pct,
	tsla_mean, tsla_median, tsla_min, tsla_max, tsla_stdev,
	cloud_in_tslrange_pct, class_in_tslrange_pct, status
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// StartStorageEngine creates a goroutine loop to receive result rows and
// write them to the SQLite database
func (s *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.TSLAResult {
	log.Info("starting SQLite storage engine...")
	resultChan := make(chan types.TSLAResult, 10)
	wg.Add(1)
	go s.processResults(ctx, wg, resultChan)
	return resultChan
}

// processResults runs until the result channel is closed, storing every row
// it receives. Termination is by channel closure so buffered rows are never
// abandoned on shutdown.
func (s *Storage) processResults(ctx context.Context, wg *sync.WaitGroup, rchan <-chan types.TSLAResult) {
	defer wg.Done()

	for r := range rchan {
		if err := s.StoreResult(ctx, r); err != nil {
			log.Error("could not store TSLA result:", err)
		}
	}
	log.Info("result channel closed, stopping SQLite result processor")
	s.db.Close()
}

// StoreResult stores one TSLA result row
func (s *Storage) StoreResult(ctx context.Context, r types.TSLAResult) error {
	_, err := s.db.ExecContext(ctx, insertSQL,
		r.RGIID, r.SceneID, r.Date, r.Sensor,
		r.GlacierAreaKm2, r.GlacierElevMin, r.GlacierElevMax,
		r.SnowAreaKm2, r.IceAreaKm2, r.DebrisAreaKm2, r.CloudAreaKm2,
		r.ClassCoverage, r.CloudFraction,
		r.TSLAMean, r.TSLAMedian, r.TSLAMin, r.TSLAMax, r.TSLAStdev,
		r.CloudInTSLRange, r.ClassInTSLRange, r.Status,
	)
	if err != nil {
		return fmt.Errorf("insert result for %s/%s: %w", r.RGIID, r.SceneID, err)
	}
	return nil
}

// New sets up a new SQLite storage backend
func New(c *types.Config) (*Storage, error) {
	db, err := sql.Open("sqlite", c.Storage.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", c.Storage.SQLite.Path, err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create result table: %w", err)
	}

	return &Storage{db: db}, nil
}
