// Package types holds the shared data model for the snowline pipeline:
// sensors, surface classes, scenes, outlines, and the TSLA result row.
package types

import (
	"time"

	"github.com/glaciersat/snowline/internal/raster"
)

// SensorID identifies the Landsat platform a scene was acquired by. The
// threshold catalog is keyed by sensor; SensorUnknown maps to vacuous rows so
// an unrecognized platform classifies nothing rather than failing.
type SensorID int

const (
	SensorUnknown SensorID = iota
	SensorLandsat1
	SensorLandsat2
	SensorLandsat3
	SensorLandsat4
	SensorLandsat5
	SensorLandsat6
	SensorLandsat7
	SensorLandsat8
)

var sensorNames = map[SensorID]string{
	SensorUnknown:  "UNKNOWN",
	SensorLandsat1: "LANDSAT_1",
	SensorLandsat2: "LANDSAT_2",
	SensorLandsat3: "LANDSAT_3",
	SensorLandsat4: "LANDSAT_4",
	SensorLandsat5: "LANDSAT_5",
	SensorLandsat6: "LANDSAT_6",
	SensorLandsat7: "LANDSAT_7",
	SensorLandsat8: "LANDSAT_8",
}

func (s SensorID) String() string {
	if name, ok := sensorNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseSensorID maps a platform string (as tagged by the scene catalog) to a
// SensorID. Unrecognized strings map to SensorUnknown.
func ParseSensorID(name string) SensorID {
	for id, n := range sensorNames {
		if n == name {
			return id
		}
	}
	return SensorUnknown
}

// SurfaceClass is the per-pixel label derived from the spectral indices.
// CloudUnknown is the residual: everything not confidently Snow, Ice or
// Debris.
type SurfaceClass int

const (
	ClassSnow SurfaceClass = iota
	ClassIce
	ClassDebris
	ClassCloudUnknown
	// ClassTotal labels the sanity coverage outline (union of all classified
	// regions over the glacier); it is never a per-pixel label.
	ClassTotal
)

func (c SurfaceClass) String() string {
	switch c {
	case ClassSnow:
		return "snow"
	case ClassIce:
		return "ice"
	case ClassDebris:
		return "debris"
	case ClassTotal:
		return "total"
	default:
		return "cloud_unknown"
	}
}

// ClassifiableClasses are the classes with catalog threshold rows. The
// residual CloudUnknown class is derived by the coverage resolver, never
// classified directly.
var ClassifiableClasses = []SurfaceClass{ClassSnow, ClassIce, ClassDebris}

// BandSet holds the co-registered top-of-atmosphere bands of one scene.
// All grids share one shape; Thermal is brightness temperature in Kelvin.
type BandSet struct {
	Blue    *raster.Grid
	Green   *raster.Grid
	Red     *raster.Grid
	NIR     *raster.Grid
	SWIR1   *raster.Grid
	SWIR2   *raster.Grid
	Thermal *raster.Grid
	QA      *raster.Grid
}

// Grids returns the bands in a fixed order for shape checks and masking.
func (b *BandSet) Grids() []*raster.Grid {
	return []*raster.Grid{b.Blue, b.Green, b.Red, b.NIR, b.SWIR1, b.SWIR2, b.Thermal, b.QA}
}

// Clone deep-copies every band, so a shadow mask can be applied to a unit's
// private copy without touching the catalog's scene.
func (b *BandSet) Clone() *BandSet {
	return &BandSet{
		Blue:    b.Blue.Clone(),
		Green:   b.Green.Clone(),
		Red:     b.Red.Clone(),
		NIR:     b.NIR.Clone(),
		SWIR1:   b.SWIR1.Clone(),
		SWIR2:   b.SWIR2.Clone(),
		Thermal: b.Thermal.Clone(),
		QA:      b.QA.Clone(),
	}
}

// MaskOut removes pixels from every band where keep is false.
func (b *BandSet) MaskOut(keep *raster.Mask) {
	for _, g := range b.Grids() {
		g.MaskOut(keep)
	}
}

// Scene is a same-day merged acquisition over one glacier, as returned by the
// scene catalog collaborator. Consumed read-only by the pipeline.
type Scene struct {
	SceneID         string
	RGIID           string
	Sensor          SensorID
	AcquisitionDate time.Time
	SunAzimuthDeg   float64
	SunElevationDeg float64
	// HasSunGeometry is false when the catalog could not supply sun
	// azimuth/elevation; the pipeline then falls back to computing them
	// from the acquisition time and glacier centroid.
	HasSunGeometry bool
	CenterLat      float64
	CenterLon      float64
	Bands          *BandSet
	// GlacierOutline restricts classification and statistics to the RGI
	// glacier geometry.
	GlacierOutline *raster.Mask
}

// VectorOutline is the vectorized polygon of one surface class region,
// carrying the identifying tags forward to the result row.
type VectorOutline struct {
	RGIID   string
	SceneID string
	Date    time.Time
	Class   SurfaceClass
	// Region is the rasterized footprint the outline was traced from. The
	// geometry service computes areas and intersections on it.
	Region  *raster.Mask
	AreaKm2 float64
}
