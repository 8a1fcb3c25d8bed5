package resultfile

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/glaciersat/snowline/internal/types"
)

func TestStoreResultAppends(t *testing.T) {
	c := &types.Config{}
	c.Storage.ResultFile.Path = filepath.Join(t.TempDir(), "results.mp")

	s, err := New(c)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	first := types.TSLAResult{
		RGIID:    "RGI60-01.00001",
		SceneID:  "S1",
		Date:     time.Date(2019, 8, 15, 0, 0, 0, 0, time.UTC),
		Sensor:   "LANDSAT_8",
		TSLAMean: sql.NullFloat64{Float64: 1450, Valid: true},
		Status:   types.StatusEstimated,
	}
	second := types.TSLAResult{
		RGIID:   "RGI60-01.00002",
		SceneID: "S2",
		Date:    time.Date(2019, 8, 16, 0, 0, 0, 0, time.UTC),
		Sensor:  "LANDSAT_7",
		Status:  types.StatusInsufficient,
	}
	if err := s.StoreResult(first); err != nil {
		t.Fatalf("StoreResult: %v", err)
	}
	if err := s.StoreResult(second); err != nil {
		t.Fatalf("StoreResult: %v", err)
	}
	s.f.Close()

	f, err := os.Open(c.Storage.ResultFile.Path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer f.Close()

	dec := msgpack.NewDecoder(f)
	var got types.TSLAResult
	if err := dec.Decode(&got); err != nil {
		t.Fatalf("decode first row: %v", err)
	}
	if got.RGIID != first.RGIID || !got.TSLAMean.Valid || got.TSLAMean.Float64 != 1450 {
		t.Errorf("first row mangled: %+v", got)
	}
	if err := dec.Decode(&got); err != nil {
		t.Fatalf("decode second row: %v", err)
	}
	if got.RGIID != second.RGIID || got.TSLAMean.Valid {
		t.Errorf("second row mangled: %+v", got)
	}
}
