// Package scenestore implements the scene catalog and DEM provider over an
// on-disk archive of msgpack-encoded scenes, the same wire format the result
// archive uses. Layout:
//
//	<catalog path>/<rgi id>/<yyyy-mm-dd>.scene
//	<dem path>/<rgi id>.dem
//
// Same-day acquisitions are merged into a single scene file ahead of time by
// the ingest tooling, so Resolve is a plain lookup.
package scenestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/glaciersat/snowline/internal/geo"
	"github.com/glaciersat/snowline/internal/raster"
	"github.com/glaciersat/snowline/internal/types"
)

// Store reads scenes and DEM clips from the local archive.
type Store struct {
	sceneRoot string
	demRoot   string
}

// New creates a store over the given archive roots.
func New(sceneRoot, demRoot string) *Store {
	return &Store{sceneRoot: sceneRoot, demRoot: demRoot}
}

// Resolve loads the merged scene for a glacier and date. A missing file maps
// to ErrMissingScene so the orchestrator skips the unit.
func (s *Store) Resolve(ctx context.Context, rgiID string, date time.Time) (*types.Scene, error) {
	path := filepath.Join(s.sceneRoot, rgiID, date.Format("2006-01-02")+".scene")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s on %s: %w", rgiID, date.Format("2006-01-02"), geo.ErrMissingScene)
		}
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}

	var scene types.Scene
	if err := msgpack.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("decode scene %s: %w", path, err)
	}
	if scene.Bands == nil || scene.GlacierOutline == nil {
		return nil, fmt.Errorf("scene %s is missing bands or glacier outline", path)
	}

	return &scene, nil
}

// DEM loads the buffered elevation clip for a glacier.
func (s *Store) DEM(ctx context.Context, rgiID string) (*raster.Grid, error) {
	path := filepath.Join(s.demRoot, rgiID+".dem")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dem %s: %w", path, err)
	}

	var dem raster.Grid
	if err := msgpack.Unmarshal(data, &dem); err != nil {
		return nil, fmt.Errorf("decode dem %s: %w", path, err)
	}

	return &dem, nil
}
