package spectral

import (
	"math"
	"testing"

	"github.com/glaciersat/snowline/internal/raster"
	"github.com/glaciersat/snowline/internal/types"
)

const epsilon = 1e-9

func TestNormalizeThermal(t *testing.T) {
	tests := []struct {
		name     string
		kelvin   float64
		expected float64
	}{
		{"typical melt-season temperature", 270.0, (270.0 - 230.0) / 70.0},
		{"freeze guard clamps cold pixels", 250.0, (263.15 - 230.0) / 70.0},
		{"exactly at the floor", 263.15, (263.15 - 230.0) / 70.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeThermal(tt.kelvin)
			if math.Abs(got-tt.expected) > epsilon {
				t.Errorf("NormalizeThermal(%v) = %v, want %v", tt.kelvin, got, tt.expected)
			}
		})
	}
}

func TestNDSI(t *testing.T) {
	tests := []struct {
		name         string
		swir1, green float64
		expected     float64
	}{
		{"equal bands", 0.5, 0.5, 0},
		{"snow-like pixel", 0.1, 1.0, (0.1 - 1.0) / 1.1},
		{"swir dominant", 0.8, 0.2, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NDSI(tt.swir1, tt.green)
			if math.Abs(got-tt.expected) > epsilon {
				t.Errorf("NDSI(%v, %v) = %v, want %v", tt.swir1, tt.green, got, tt.expected)
			}
		})
	}
}

func TestZeroDenominatorYieldsNaN(t *testing.T) {
	if !math.IsNaN(NDSI(0.5, -0.5)) {
		t.Error("NDSI with zero denominator did not yield NaN")
	}
	if !math.IsNaN(Ratio1(0.5, -0.3, -0.2)) {
		t.Error("Ratio1 with zero denominator did not yield NaN")
	}
	if !math.IsNaN(Ratio2(0.5, -0.5)) {
		t.Error("Ratio2 with zero denominator did not yield NaN")
	}
}

func fillBands(w, h int, green, nir, swir1, thermal float64) *types.BandSet {
	mk := func(v float64) *raster.Grid {
		g := raster.NewGrid(w, h, 1.0)
		g.Fill(v)
		return g
	}
	return &types.BandSet{
		Blue:    mk(0.3),
		Green:   mk(green),
		Red:     mk(0.3),
		NIR:     mk(nir),
		SWIR1:   mk(swir1),
		SWIR2:   mk(0.2),
		Thermal: mk(thermal),
		QA:      mk(0),
	}
}

func TestCompute(t *testing.T) {
	bands := fillBands(2, 2, 1.0, 0.5, 0.1, 270.0)
	idx := Compute(bands)

	tNorm := NormalizeThermal(270.0)
	wantNDSI := (0.1 - 1.0) / 1.1
	wantR1 := (tNorm - 1.5) / (tNorm + 1.5)
	wantR2 := (1.0 - tNorm) / (1.0 + tNorm)

	for i := range idx.NDSI.Data {
		if math.Abs(idx.NDSI.Data[i]-wantNDSI) > epsilon {
			t.Errorf("NDSI[%d] = %v, want %v", i, idx.NDSI.Data[i], wantNDSI)
		}
		if math.Abs(idx.Ratio1.Data[i]-wantR1) > epsilon {
			t.Errorf("Ratio1[%d] = %v, want %v", i, idx.Ratio1.Data[i], wantR1)
		}
		if math.Abs(idx.Ratio2.Data[i]-wantR2) > epsilon {
			t.Errorf("Ratio2[%d] = %v, want %v", i, idx.Ratio2.Data[i], wantR2)
		}
	}
}

// Masked-out band pixels carry NaN; every index derived from them must be NaN
// so they fall out of classification.
func TestComputePropagatesNaN(t *testing.T) {
	bands := fillBands(2, 1, 1.0, 0.5, 0.1, 270.0)
	keep := raster.NewMask(2, 1)
	keep.Bits = []bool{true, false}
	bands.MaskOut(keep)

	idx := Compute(bands)

	if math.IsNaN(idx.NDSI.Data[0]) {
		t.Error("kept pixel produced NaN NDSI")
	}
	for _, g := range []*raster.Grid{idx.NDSI, idx.Ratio1, idx.Ratio2} {
		if !math.IsNaN(g.Data[1]) {
			t.Errorf("masked pixel produced a finite index: %v", g.Data[1])
		}
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	bands := fillBands(3, 3, 0.8, 0.4, 0.2, 268.0)
	a := Compute(bands)
	b := Compute(bands)

	for i := range a.NDSI.Data {
		if a.NDSI.Data[i] != b.NDSI.Data[i] ||
			a.Ratio1.Data[i] != b.Ratio1.Data[i] ||
			a.Ratio2.Data[i] != b.Ratio2.Data[i] {
			t.Fatalf("recomputation differs at cell %d", i)
		}
	}
}
