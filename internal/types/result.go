package types

import (
	"database/sql"
	"time"
)

// TSLA result status values. A gated or snow-free unit is a normal terminal
// outcome, not an error.
const (
	StatusInsufficient = 0
	StatusEstimated    = 1
)

// TSLAResult is one row of the result sink: the transient snowline altitude
// estimate and quality metrics for a single (glacier, date) unit. Statistical
// fields are nullable; an absent value (Valid == false) is the sentinel for
// "not estimable" and is never conflated with a numeric zero.
type TSLAResult struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"`
	RGIID           string          `gorm:"column:rgi_id;index"`
	SceneID         string          `gorm:"column:scene_id"`
	Date            time.Time       `gorm:"column:acq_date;index"`
	Sensor          string          `gorm:"column:sensor"`
	GlacierAreaKm2  float64         `gorm:"column:glacier_area_km2"`
	GlacierElevMin  float64         `gorm:"column:glacier_elev_min"`
	GlacierElevMax  float64         `gorm:"column:glacier_elev_max"`
	SnowAreaKm2     float64         `gorm:"column:snow_area_km2"`
	IceAreaKm2      float64         `gorm:"column:ice_area_km2"`
	DebrisAreaKm2   float64         `gorm:"column:debris_area_km2"`
	CloudAreaKm2    float64         `gorm:"column:cloud_area_km2"`
	ClassCoverage   float64         `gorm:"column:class_coverage_pct"`
	CloudFraction   sql.NullFloat64 `gorm:"column:cloud_fraction_pct"`
	TSLAMean        sql.NullFloat64 `gorm:"column:tsla_mean"`
	TSLAMedian      sql.NullFloat64 `gorm:"column:tsla_median"`
	TSLAMin         sql.NullFloat64 `gorm:"column:tsla_min"`
	TSLAMax         sql.NullFloat64 `gorm:"column:tsla_max"`
	TSLAStdev       sql.NullFloat64 `gorm:"column:tsla_stdev"`
	CloudInTSLRange sql.NullFloat64 `gorm:"column:cloud_in_tslrange_pct"`
	ClassInTSLRange sql.NullFloat64 `gorm:"column:class_in_tslrange_pct"`
	Status          int             `gorm:"column:status"`
}

// TableName sets the result sink table name for GORM.
func (TSLAResult) TableName() string {
	return "tsla_results"
}

// Estimated reports whether the row carries a valid TSLA estimate.
func (r *TSLAResult) Estimated() bool {
	return r.Status == StatusEstimated
}
