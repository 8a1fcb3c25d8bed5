package solar

import (
	"testing"
	"time"
)

func TestSunPosition(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		when     time.Time
		minElev  float64
		maxElev  float64
	}{
		{
			// Equinox noon on the equator puts the sun near the zenith.
			name: "equator equinox noon",
			lat:  0, lon: 0,
			when:    time.Date(2020, 3, 20, 12, 0, 0, 0, time.UTC),
			minElev: 80, maxElev: 90,
		},
		{
			// Alaskan glacier country, midsummer midday sun stays modest.
			name: "alaska summer solstice",
			lat:  61.3, lon: -147.9,
			when:    time.Date(2019, 6, 21, 22, 0, 0, 0, time.UTC),
			minElev: 40, maxElev: 60,
		},
		{
			// Midnight leaves the sun below the horizon at mid latitudes.
			name: "alps midnight",
			lat:  46.5, lon: 8.0,
			when:    time.Date(2019, 8, 15, 23, 30, 0, 0, time.UTC),
			minElev: -90, maxElev: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := SunPosition(tt.lat, tt.lon, tt.when)
			if pos.ElevationDeg < tt.minElev || pos.ElevationDeg > tt.maxElev {
				t.Errorf("elevation = %v, want within [%v, %v]", pos.ElevationDeg, tt.minElev, tt.maxElev)
			}
			if pos.AzimuthDeg < 0 || pos.AzimuthDeg >= 360 {
				t.Errorf("azimuth = %v, want within [0, 360)", pos.AzimuthDeg)
			}
		})
	}
}

func TestCosZenithMatchesElevation(t *testing.T) {
	pos := SunPosition(46.5, 8.0, time.Date(2019, 8, 15, 10, 0, 0, 0, time.UTC))
	if pos.CosZenith <= 0 {
		t.Errorf("mid-morning cos(zenith) = %v, want positive", pos.CosZenith)
	}
}
