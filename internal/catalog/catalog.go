// Package catalog holds the per-sensor spectral threshold tables used to
// classify glacier surface pixels. The tables are statically initialized and
// never mutated, so concurrent lookups from parallel batch units need no
// locking.
package catalog

import "github.com/glaciersat/snowline/internal/types"

// ThresholdRow is the six-bound tuple for one (sensor, class) pair. All
// bounds are tested as strict open intervals: a pixel exactly on a bound is
// excluded from the class.
type ThresholdRow struct {
	NDSIMin float64
	NDSIMax float64
	R1Min   float64
	R1Max   float64
	R2Min   float64
	R2Max   float64
}

// Vacuous reports whether the row can never match (min == max on every
// bound). The UNKNOWN sensor maps to vacuous rows for every class.
func (r ThresholdRow) Vacuous() bool {
	return r.NDSIMin == r.NDSIMax && r.R1Min == r.R1Max && r.R2Min == r.R2Max
}

// Contains applies the strict open-interval predicate to an index triple.
// NaN inputs compare false on every bound and therefore never match.
func (r ThresholdRow) Contains(ndsi, r1, r2 float64) bool {
	return r.NDSIMin < ndsi && ndsi < r.NDSIMax &&
		r.R1Min < r1 && r1 < r.R1Max &&
		r.R2Min < r2 && r2 < r.R2Max
}

// vacuousRow guarantees the classification predicate is never satisfied.
var vacuousRow = ThresholdRow{}

// The per-sensor tables. Classes are kept mutually exclusive per sensor by
// construction: the NDSI intervals of Snow, Ice and Debris never overlap.
// Bounds of -99/99 stand in for "unbounded" on that side.
var thresholds = map[types.SensorID]map[types.SurfaceClass]ThresholdRow{
	types.SensorLandsat1: {
		types.ClassSnow:   {NDSIMin: -99, NDSIMax: -0.66, R1Min: -1.0, R1Max: 0.30, R2Min: -0.70, R2Max: 0.75},
		types.ClassIce:    {NDSIMin: -0.66, NDSIMax: -0.30, R1Min: -1.0, R1Max: 0.45, R2Min: -0.70, R2Max: 0.85},
		types.ClassDebris: {NDSIMin: -0.30, NDSIMax: 0.35, R1Min: -0.60, R1Max: 0.60, R2Min: -0.80, R2Max: 0.90},
	},
	types.SensorLandsat2: {
		types.ClassSnow:   {NDSIMin: -99, NDSIMax: -0.66, R1Min: -1.0, R1Max: 0.30, R2Min: -0.70, R2Max: 0.75},
		types.ClassIce:    {NDSIMin: -0.66, NDSIMax: -0.30, R1Min: -1.0, R1Max: 0.45, R2Min: -0.70, R2Max: 0.85},
		types.ClassDebris: {NDSIMin: -0.30, NDSIMax: 0.35, R1Min: -0.60, R1Max: 0.60, R2Min: -0.80, R2Max: 0.90},
	},
	types.SensorLandsat3: {
		types.ClassSnow:   {NDSIMin: -99, NDSIMax: -0.66, R1Min: -1.0, R1Max: 0.30, R2Min: -0.70, R2Max: 0.75},
		types.ClassIce:    {NDSIMin: -0.66, NDSIMax: -0.30, R1Min: -1.0, R1Max: 0.45, R2Min: -0.70, R2Max: 0.85},
		types.ClassDebris: {NDSIMin: -0.30, NDSIMax: 0.35, R1Min: -0.60, R1Max: 0.60, R2Min: -0.80, R2Max: 0.90},
	},
	types.SensorLandsat4: {
		types.ClassSnow:   {NDSIMin: -99, NDSIMax: -0.64, R1Min: -1.0, R1Max: 0.28, R2Min: -0.65, R2Max: 0.72},
		types.ClassIce:    {NDSIMin: -0.64, NDSIMax: -0.28, R1Min: -1.0, R1Max: 0.42, R2Min: -0.65, R2Max: 0.82},
		types.ClassDebris: {NDSIMin: -0.28, NDSIMax: 0.38, R1Min: -0.55, R1Max: 0.60, R2Min: -0.75, R2Max: 0.90},
	},
	types.SensorLandsat5: {
		types.ClassSnow:   {NDSIMin: -99, NDSIMax: -0.64, R1Min: -1.0, R1Max: 0.28, R2Min: -0.65, R2Max: 0.72},
		types.ClassIce:    {NDSIMin: -0.64, NDSIMax: -0.28, R1Min: -1.0, R1Max: 0.42, R2Min: -0.65, R2Max: 0.82},
		types.ClassDebris: {NDSIMin: -0.28, NDSIMax: 0.38, R1Min: -0.55, R1Max: 0.60, R2Min: -0.75, R2Max: 0.90},
	},
	types.SensorLandsat6: {
		types.ClassSnow:   {NDSIMin: -99, NDSIMax: -0.64, R1Min: -1.0, R1Max: 0.28, R2Min: -0.65, R2Max: 0.72},
		types.ClassIce:    {NDSIMin: -0.64, NDSIMax: -0.28, R1Min: -1.0, R1Max: 0.42, R2Min: -0.65, R2Max: 0.82},
		types.ClassDebris: {NDSIMin: -0.28, NDSIMax: 0.38, R1Min: -0.55, R1Max: 0.60, R2Min: -0.75, R2Max: 0.90},
	},
	types.SensorLandsat7: {
		types.ClassSnow:   {NDSIMin: -99, NDSIMax: -0.62, R1Min: -1.0, R1Max: 0.26, R2Min: -0.62, R2Max: 0.70},
		types.ClassIce:    {NDSIMin: -0.62, NDSIMax: -0.26, R1Min: -1.0, R1Max: 0.40, R2Min: -0.62, R2Max: 0.80},
		types.ClassDebris: {NDSIMin: -0.26, NDSIMax: 0.40, R1Min: -0.52, R1Max: 0.58, R2Min: -0.72, R2Max: 0.90},
	},
	types.SensorLandsat8: {
		types.ClassSnow:   {NDSIMin: -99, NDSIMax: -0.60, R1Min: -1.0, R1Max: 0.25, R2Min: -0.60, R2Max: 0.70},
		types.ClassIce:    {NDSIMin: -0.60, NDSIMax: -0.25, R1Min: -1.0, R1Max: 0.40, R2Min: -0.60, R2Max: 0.80},
		types.ClassDebris: {NDSIMin: -0.25, NDSIMax: 0.40, R1Min: -0.50, R1Max: 0.60, R2Min: -0.70, R2Max: 0.90},
	},
}

// Get returns the threshold row for a (sensor, class) pair. Unknown sensors
// and unclassifiable classes yield the vacuous row, so the caller's predicate
// simply never matches.
func Get(sensor types.SensorID, class types.SurfaceClass) ThresholdRow {
	rows, ok := thresholds[sensor]
	if !ok {
		return vacuousRow
	}
	row, ok := rows[class]
	if !ok {
		return vacuousRow
	}
	return row
}

// Sensors returns every sensor with a non-vacuous table, for audit tooling.
func Sensors() []types.SensorID {
	out := make([]types.SensorID, 0, len(thresholds))
	for id := range thresholds {
		out = append(out, id)
	}
	return out
}
