package resultserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/glaciersat/snowline/internal/types"
)

const defaultResultLimit = 500

// resultView is the JSON projection of a result row. Absent statistics are
// rendered as null, never as a string sentinel.
type resultView struct {
	RGIID            string   `json:"rgi_id"`
	SceneID          string   `json:"scene_id"`
	Date             string   `json:"date"`
	Sensor           string   `json:"sensor"`
	GlacierAreaKm2   float64  `json:"glacier_area_km2"`
	GlacierElevMin   float64  `json:"glacier_elev_min"`
	GlacierElevMax   float64  `json:"glacier_elev_max"`
	ClassCoveragePct float64  `json:"class_coverage_pct"`
	CloudFractionPct *float64 `json:"cloud_fraction_pct"`
	TSLAMean         *float64 `json:"tsla_mean"`
	TSLAMedian       *float64 `json:"tsla_median"`
	TSLAMin          *float64 `json:"tsla_min"`
	TSLAMax          *float64 `json:"tsla_max"`
	TSLAStdev        *float64 `json:"tsla_stdev"`
	CloudInTSLRange  *float64 `json:"cloud_in_tslrange_pct"`
	ClassInTSLRange  *float64 `json:"class_in_tslrange_pct"`
	Status           int      `json:"status"`
}

func toView(r types.TSLAResult) resultView {
	view := resultView{
		RGIID:            r.RGIID,
		SceneID:          r.SceneID,
		Date:             r.Date.Format("2006-01-02"),
		Sensor:           r.Sensor,
		GlacierAreaKm2:   r.GlacierAreaKm2,
		GlacierElevMin:   r.GlacierElevMin,
		GlacierElevMax:   r.GlacierElevMax,
		ClassCoveragePct: r.ClassCoverage,
		Status:           r.Status,
	}
	if r.CloudFraction.Valid {
		view.CloudFractionPct = &r.CloudFraction.Float64
	}
	if r.TSLAMean.Valid {
		view.TSLAMean = &r.TSLAMean.Float64
	}
	if r.TSLAMedian.Valid {
		view.TSLAMedian = &r.TSLAMedian.Float64
	}
	if r.TSLAMin.Valid {
		view.TSLAMin = &r.TSLAMin.Float64
	}
	if r.TSLAMax.Valid {
		view.TSLAMax = &r.TSLAMax.Float64
	}
	if r.TSLAStdev.Valid {
		view.TSLAStdev = &r.TSLAStdev.Float64
	}
	if r.CloudInTSLRange.Valid {
		view.CloudInTSLRange = &r.CloudInTSLRange.Float64
	}
	if r.ClassInTSLRange.Valid {
		view.ClassInTSLRange = &r.ClassInTSLRange.Float64
	}
	return view
}

// handleResults serves the most recent result rows, optionally filtered by
// status
func (c *Controller) handleResults(w http.ResponseWriter, r *http.Request) {
	limit := defaultResultLimit
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if parsed, err := strconv.Atoi(ls); err == nil && parsed > 0 && parsed <= defaultResultLimit {
			limit = parsed
		}
	}

	q := c.DB.Table("tsla_results").Order("acq_date DESC").Limit(limit)
	if ss := r.URL.Query().Get("status"); ss != "" {
		if status, err := strconv.Atoi(ss); err == nil {
			q = q.Where("status = ?", status)
		}
	}

	var rows []types.TSLAResult
	if err := q.Find(&rows).Error; err != nil {
		c.logger.Errorf("error querying results: %v", err)
		http.Error(w, "error querying results", http.StatusInternalServerError)
		return
	}

	c.writeJSON(w, rows)
}

// handleResultsForGlacier serves the full TSLA series of one glacier
func (c *Controller) handleResultsForGlacier(w http.ResponseWriter, r *http.Request) {
	rgiID := mux.Vars(r)["rgiid"]

	var rows []types.TSLAResult
	if err := c.DB.Table("tsla_results").Where("rgi_id = ?", rgiID).Order("acq_date ASC").Find(&rows).Error; err != nil {
		c.logger.Errorf("error querying results for %s: %v", rgiID, err)
		http.Error(w, "error querying results", http.StatusInternalServerError)
		return
	}

	c.writeJSON(w, rows)
}

// handleHealth reports liveness and database reachability
func (c *Controller) handleHealth(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := c.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		http.Error(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (c *Controller) writeJSON(w http.ResponseWriter, rows []types.TSLAResult) {
	views := make([]resultView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(views); err != nil {
		c.logger.Errorf("error encoding results: %v", err)
	}
}
