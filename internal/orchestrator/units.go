package orchestrator

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"
)

// LoadUnits reads a batch definition from a CSV file with one
// "rgi_id,yyyy-mm-dd" record per line. A header row is tolerated.
func LoadUnits(path string) ([]Unit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open units file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true

	var units []Unit
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse units file %s: %w", path, err)
		}
		line++

		date, err := time.Parse("2006-01-02", rec[1])
		if err != nil {
			if line == 1 {
				// header row
				continue
			}
			return nil, fmt.Errorf("units file %s line %d: bad date %q: %w", path, line, rec[1], err)
		}
		units = append(units, Unit{RGIID: rec[0], Date: date})
	}

	return units, nil
}
