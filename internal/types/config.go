package types

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the base configuration object
type Config struct {
	Pipeline    PipelineConfig     `yaml:"pipeline"`
	Catalog     CatalogConfig      `yaml:"catalog,omitempty"`
	DEM         DEMConfig          `yaml:"dem,omitempty"`
	Storage     StorageConfig      `yaml:"storage,omitempty"`
	Controllers []ControllerConfig `yaml:"controllers,omitempty"`
}

// PipelineConfig holds the tunables of the classification and statistics
// engines. Threshold tables are compile-time constants and deliberately not
// configurable here.
type PipelineConfig struct {
	// Workers is the number of concurrent (glacier, date) units. Zero
	// means GOMAXPROCS.
	Workers int `yaml:"workers,omitempty"`
	// PercentileBinSize is the percentile P used to pick the snowline
	// elevation e_P inside the snow outline.
	PercentileBinSize float64 `yaml:"percentile-bin-size,omitempty"`
	// CloudFreeThresholdPct gates the statistics engine: units whose total
	// classified coverage falls below it emit a status-0 sentinel row.
	CloudFreeThresholdPct float64 `yaml:"cloud-free-threshold-pct,omitempty"`
	// MaxServiceRetries bounds retries of transient geometry/raster
	// engine failures per unit.
	MaxServiceRetries uint64 `yaml:"max-service-retries,omitempty"`
}

// CatalogConfig describes the on-disk scene archive consumed by the bundled
// file catalog. A remote catalog service replaces it in larger deployments.
type CatalogConfig struct {
	Path string `yaml:"path,omitempty"`
	// CellAreaKm2 is the pixel footprint shared by every grid in the
	// archive. The default is a 30 m Landsat pixel.
	CellAreaKm2 float64 `yaml:"cell-area-km2,omitempty"`
}

// DEMConfig describes the elevation model source
type DEMConfig struct {
	Path string `yaml:"path,omitempty"`
	// BufferMeters pads the scene clip so slope/aspect derivatives have
	// valid neighbors at the glacier edge.
	BufferMeters float64 `yaml:"buffer-meters,omitempty"`
}

// StorageConfig holds the configuration for various result sink backends.
// More than one storage backend can be used simultaneously
type StorageConfig struct {
	TimescaleDB TimescaleDBConfig `yaml:"timescaledb,omitempty"`
	SQLite      SQLiteConfig      `yaml:"sqlite,omitempty"`
	ResultFile  ResultFileConfig  `yaml:"resultfile,omitempty"`
}

// TimescaleDBConfig describes the configuration for a TimescaleDB/Postgres
// result sink
type TimescaleDBConfig struct {
	ConnectionString string `yaml:"connection-string,omitempty"`
}

// SQLiteConfig describes the configuration for a local SQLite result sink
type SQLiteConfig struct {
	Path string `yaml:"path,omitempty"`
}

// ResultFileConfig describes the configuration for the append-only msgpack
// result archive
type ResultFileConfig struct {
	Path string `yaml:"path,omitempty"`
}

// ControllerConfig holds the configuration for various controller backends.
// More than one controller backend can be used simultaneously.
type ControllerConfig struct {
	Type         string             `yaml:"type,omitempty"`
	ResultServer ResultServerConfig `yaml:"rest,omitempty"`
}

// ResultServerConfig describes the read-only REST API over the result sink
type ResultServerConfig struct {
	ListenAddr string `yaml:"listen-addr,omitempty"`
	Port       int    `yaml:"port,omitempty"`
}

// Defaults applied by NewConfig when the file leaves a field unset.
const (
	DefaultPercentileBinSize     = 2.0
	DefaultCloudFreeThresholdPct = 10.0
	DefaultMaxServiceRetries     = 3
	DefaultCellAreaKm2           = 0.0009
)

// NewConfig creates a new config object from the given filename.
func NewConfig(filename string) (Config, error) {
	cfgFile, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config file %v: %w", filename, err)
	}

	var c Config
	if err := yaml.Unmarshal(cfgFile, &c); err != nil {
		return Config{}, fmt.Errorf("could not parse config file %v: %w", filename, err)
	}

	if c.Pipeline.PercentileBinSize == 0 {
		c.Pipeline.PercentileBinSize = DefaultPercentileBinSize
	}
	if c.Pipeline.CloudFreeThresholdPct == 0 {
		c.Pipeline.CloudFreeThresholdPct = DefaultCloudFreeThresholdPct
	}
	if c.Pipeline.MaxServiceRetries == 0 {
		c.Pipeline.MaxServiceRetries = DefaultMaxServiceRetries
	}
	if c.Catalog.CellAreaKm2 == 0 {
		c.Catalog.CellAreaKm2 = DefaultCellAreaKm2
	}

	return c, nil
}
