// tsla-export dumps the TSLA result table to CSV for analysis outside the
// database. Absent statistics export as empty fields.
package main

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

type resultRow struct {
	RGIID          string
	SceneID        string
	Date           time.Time
	Sensor         string
	GlacierAreaKm2 float64
	GlacierElevMin float64
	GlacierElevMax float64
	SnowAreaKm2    float64
	IceAreaKm2     float64
	DebrisAreaKm2  float64
	CloudAreaKm2   float64
	ClassCoverage  float64
	CloudFraction  sql.NullFloat64
	TSLAMean       sql.NullFloat64
	TSLAMedian     sql.NullFloat64
	TSLAMin        sql.NullFloat64
	TSLAMax        sql.NullFloat64
	TSLAStdev      sql.NullFloat64
	CloudInRange   sql.NullFloat64
	ClassInRange   sql.NullFloat64
	Status         int
}

func main() {
	// Command line flags
	var (
		dbHost  = flag.String("db-host", "localhost", "Database host")
		dbPort  = flag.Int("db-port", 5432, "Database port")
		dbUser  = flag.String("db-user", "postgres", "Database user")
		dbPass  = flag.String("db-pass", "", "Database password")
		dbName  = flag.String("db-name", "snowline", "Database name")
		rgiID   = flag.String("rgi-id", "", "Export a single glacier (default: all)")
		since   = flag.String("since", "", "Only export results on or after this date (yyyy-mm-dd)")
		outFile = flag.String("out", "", "Output CSV path (default: stdout)")
	)
	flag.Parse()

	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		*dbHost, *dbPort, *dbUser, *dbPass, *dbName)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	query := `SELECT rgi_id, scene_id, acq_date, sensor,
		glacier_area_km2, glacier_elev_min, glacier_elev_max,
		snow_area_km2, ice_area_km2, debris_area_km2, cloud_area_km2,
		class_coverage_pct, cloud_fraction_pct,
		tsla_mean, tsla_median, tsla_min, tsla_max, tsla_stdev,
		cloud_in_tslrange_pct, class_in_tslrange_pct, status
		FROM tsla_results WHERE 1=1`
	var args []any
	if *rgiID != "" {
		args = append(args, *rgiID)
		query += fmt.Sprintf(" AND rgi_id = $%d", len(args))
	}
	if *since != "" {
		ts, err := time.Parse("2006-01-02", *since)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Bad -since date %q: %v\n", *since, err)
			os.Exit(1)
		}
		args = append(args, ts)
		query += fmt.Sprintf(" AND acq_date >= $%d", len(args))
	}
	query += " ORDER BY rgi_id, acq_date"

	rows, err := db.Query(query, args...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	defer rows.Close()

	out := os.Stdout
	if *outFile != "" {
		out, err = os.Create(*outFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", *outFile, err)
			os.Exit(1)
		}
		defer out.Close()
	}

	w := csv.NewWriter(out)
	w.Write([]string{
		"rgi_id", "scene_id", "acq_date", "sensor",
		"glacier_area_km2", "glacier_elev_min", "glacier_elev_max",
		"snow_area_km2", "ice_area_km2", "debris_area_km2", "cloud_area_km2",
		"class_coverage_pct", "cloud_fraction_pct",
		"tsla_mean", "tsla_median", "tsla_min", "tsla_max", "tsla_stdev",
		"cloud_in_tslrange_pct", "class_in_tslrange_pct", "status",
	})

	count := 0
	for rows.Next() {
		var r resultRow
		err := rows.Scan(&r.RGIID, &r.SceneID, &r.Date, &r.Sensor,
			&r.GlacierAreaKm2, &r.GlacierElevMin, &r.GlacierElevMax,
			&r.SnowAreaKm2, &r.IceAreaKm2, &r.DebrisAreaKm2, &r.CloudAreaKm2,
			&r.ClassCoverage, &r.CloudFraction,
			&r.TSLAMean, &r.TSLAMedian, &r.TSLAMin, &r.TSLAMax, &r.TSLAStdev,
			&r.CloudInRange, &r.ClassInRange, &r.Status)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
			os.Exit(1)
		}

		w.Write([]string{
			r.RGIID, r.SceneID, r.Date.Format("2006-01-02"), r.Sensor,
			ff(r.GlacierAreaKm2), ff(r.GlacierElevMin), ff(r.GlacierElevMax),
			ff(r.SnowAreaKm2), ff(r.IceAreaKm2), ff(r.DebrisAreaKm2), ff(r.CloudAreaKm2),
			ff(r.ClassCoverage), nf(r.CloudFraction),
			nf(r.TSLAMean), nf(r.TSLAMedian), nf(r.TSLAMin), nf(r.TSLAMax), nf(r.TSLAStdev),
			nf(r.CloudInRange), nf(r.ClassInRange), strconv.Itoa(r.Status),
		})
		count++
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Row iteration failed: %v\n", err)
		os.Exit(1)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		fmt.Fprintf(os.Stderr, "CSV write failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Exported %d result rows\n", count)
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func nf(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return ff(v.Float64)
}
