// Package timescaledb implements the TimescaleDB/Postgres result sink.
package timescaledb

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jackc/pgtype"
	"gorm.io/gorm"

	"github.com/glaciersat/snowline/internal/database"
	"github.com/glaciersat/snowline/internal/log"
	"github.com/glaciersat/snowline/internal/types"
)

// Storage holds the configuration for a TimescaleDB storage backend
type Storage struct {
	DBConn *gorm.DB
}

// ResultRow is the persisted shape of a TSLA result: the flat result columns
// plus a JSONB provenance blob (engine identity, class areas) kept for audit
// queries.
type ResultRow struct {
	types.TSLAResult `gorm:"embedded"`
	Provenance       pgtype.JSONB `gorm:"type:jsonb;default:'{}';not null"`
}

// TableName customizes the table name in the DB
func (ResultRow) TableName() string {
	return "tsla_results"
}

const createHypertableSQL = `SELECT create_hypertable('tsla_results', 'acq_date', if_not_exists => TRUE, migrate_data => TRUE);`

// StartStorageEngine creates a goroutine loop to receive result rows and send
// them off to TimescaleDB
func (t *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.TSLAResult {
	log.Info("starting TimescaleDB storage engine...")
	resultChan := make(chan types.TSLAResult, 10)
	wg.Add(1)
	go t.processResults(ctx, wg, resultChan)
	return resultChan
}

// processResults runs until the result channel is closed, storing every row
// it receives. Termination is by channel closure so buffered rows are never
// abandoned on shutdown.
func (t *Storage) processResults(ctx context.Context, wg *sync.WaitGroup, rchan <-chan types.TSLAResult) {
	defer wg.Done()

	for r := range rchan {
		if err := t.StoreResult(ctx, r); err != nil {
			log.Error("could not store TSLA result:", err)
		}
	}
	log.Info("result channel closed, stopping TimescaleDB result processor")
}

// StoreResult stores one TSLA result row in TimescaleDB
func (t *Storage) StoreResult(ctx context.Context, r types.TSLAResult) error {
	row := ResultRow{TSLAResult: r}

	prov, err := json.Marshal(map[string]any{
		"snow_area_km2":   r.SnowAreaKm2,
		"ice_area_km2":    r.IceAreaKm2,
		"debris_area_km2": r.DebrisAreaKm2,
		"cloud_area_km2":  r.CloudAreaKm2,
	})
	if err != nil {
		return err
	}
	if err := row.Provenance.Set(prov); err != nil {
		return err
	}

	return t.DBConn.WithContext(ctx).Create(&row).Error
}

// New sets up a new TimescaleDB storage backend
func New(ctx context.Context, c *types.Config) (*Storage, error) {
	var err error
	t := Storage{}

	t.DBConn, err = database.CreateConnection(c.Storage.TimescaleDB.ConnectionString)
	if err != nil {
		log.Warn("warning: unable to create a TimescaleDB connection:", err)
		return &Storage{}, err
	}

	log.Info("creating result table...")
	if err := t.DBConn.WithContext(ctx).AutoMigrate(&ResultRow{}); err != nil {
		log.Warn("warning: could not create result table in database")
		return &Storage{}, err
	}

	// Hypertable creation fails harmlessly on plain Postgres.
	if err := t.DBConn.WithContext(ctx).Exec(createHypertableSQL).Error; err != nil {
		log.Warn("could not create hypertable; continuing with a plain table:", err)
	}

	return &t, nil
}
