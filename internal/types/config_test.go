package types

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewConfig(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  workers: 8
  percentile-bin-size: 5
  cloud-free-threshold-pct: 20
catalog:
  path: /data/scenes
  cell-area-km2: 0.0009
dem:
  path: /data/dems
storage:
  sqlite:
    path: /data/results.db
controllers:
  - type: rest
    rest:
      port: 8080
`)

	c, err := NewConfig(path)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	if c.Pipeline.Workers != 8 {
		t.Errorf("workers = %d, want 8", c.Pipeline.Workers)
	}
	if c.Pipeline.PercentileBinSize != 5 {
		t.Errorf("percentile bin size = %v, want 5", c.Pipeline.PercentileBinSize)
	}
	if c.Pipeline.CloudFreeThresholdPct != 20 {
		t.Errorf("cloud-free threshold = %v, want 20", c.Pipeline.CloudFreeThresholdPct)
	}
	if c.Catalog.Path != "/data/scenes" {
		t.Errorf("catalog path = %q", c.Catalog.Path)
	}
	if c.Storage.SQLite.Path != "/data/results.db" {
		t.Errorf("sqlite path = %q", c.Storage.SQLite.Path)
	}
	if len(c.Controllers) != 1 || c.Controllers[0].ResultServer.Port != 8080 {
		t.Errorf("controllers = %+v", c.Controllers)
	}
}

func TestNewConfigDefaults(t *testing.T) {
	path := writeConfig(t, "pipeline: {}\n")

	c, err := NewConfig(path)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	if c.Pipeline.PercentileBinSize != DefaultPercentileBinSize {
		t.Errorf("percentile bin size = %v, want default %v", c.Pipeline.PercentileBinSize, DefaultPercentileBinSize)
	}
	if c.Pipeline.CloudFreeThresholdPct != DefaultCloudFreeThresholdPct {
		t.Errorf("cloud-free threshold = %v, want default %v", c.Pipeline.CloudFreeThresholdPct, DefaultCloudFreeThresholdPct)
	}
	if c.Pipeline.MaxServiceRetries != DefaultMaxServiceRetries {
		t.Errorf("max retries = %v, want default %v", c.Pipeline.MaxServiceRetries, DefaultMaxServiceRetries)
	}
	if c.Catalog.CellAreaKm2 != DefaultCellAreaKm2 {
		t.Errorf("cell area = %v, want default %v", c.Catalog.CellAreaKm2, DefaultCellAreaKm2)
	}
}

func TestNewConfigMissingFile(t *testing.T) {
	if _, err := NewConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestParseSensorID(t *testing.T) {
	tests := []struct {
		name     string
		expected SensorID
	}{
		{"LANDSAT_8", SensorLandsat8},
		{"LANDSAT_1", SensorLandsat1},
		{"UNKNOWN", SensorUnknown},
		{"SENTINEL_2", SensorUnknown},
		{"", SensorUnknown},
	}
	for _, tt := range tests {
		if got := ParseSensorID(tt.name); got != tt.expected {
			t.Errorf("ParseSensorID(%q) = %v, want %v", tt.name, got, tt.expected)
		}
	}
}
