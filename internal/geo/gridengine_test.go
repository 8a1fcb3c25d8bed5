package geo

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/glaciersat/snowline/internal/raster"
	"github.com/glaciersat/snowline/internal/types"
)

const epsilon = 1e-9

func fullMask(w, h int) *raster.Mask {
	m := raster.NewMask(w, h)
	for i := range m.Bits {
		m.Bits[i] = true
	}
	return m
}

func TestReduce(t *testing.T) {
	ctx := context.Background()
	e := NewGridEngine(1.0)
	g := raster.NewGridFrom(5, 1, 1.0, []float64{100, 200, 300, 400, 500})
	zone := fullMask(5, 1)

	tests := []struct {
		name     string
		reducer  Reducer
		expected float64
	}{
		{"mean", Reducer{Kind: ReduceMean}, 300},
		{"median", Reducer{Kind: ReduceMedian}, 300},
		{"min", Reducer{Kind: ReduceMin}, 100},
		{"max", Reducer{Kind: ReduceMax}, 500},
		{"count", Reducer{Kind: ReduceCount}, 5},
		{"low percentile picks the lowest value", Percentile(2), 100},
		{"stdev", Reducer{Kind: ReduceStdDev}, math.Sqrt(25000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Reduce(ctx, g, zone, tt.reducer)
			if err != nil {
				t.Fatalf("Reduce: %v", err)
			}
			if math.Abs(got-tt.expected) > epsilon {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReduceEmptyZone(t *testing.T) {
	ctx := context.Background()
	e := NewGridEngine(1.0)
	g := raster.NewGridFrom(2, 1, 1.0, []float64{math.NaN(), math.NaN()})
	zone := fullMask(2, 1)

	got, err := e.Reduce(ctx, g, zone, Reducer{Kind: ReduceMean})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if !math.IsNaN(got) {
		t.Errorf("all-NaN zone mean: got %v, want NaN", got)
	}

	got, err = e.Reduce(ctx, g, zone, Reducer{Kind: ReduceCount})
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if got != 0 {
		t.Errorf("all-NaN zone count: got %v, want 0", got)
	}
}

func TestReduceShapeMismatch(t *testing.T) {
	e := NewGridEngine(1.0)
	g := raster.NewGridFrom(2, 1, 1.0, []float64{1, 2})
	zone := fullMask(3, 1)

	if _, err := e.Reduce(context.Background(), g, zone, Reducer{Kind: ReduceMean}); err == nil {
		t.Error("expected an error for mismatched grid and zone shapes")
	}
}

func TestSlopeAspectFlatDEM(t *testing.T) {
	e := NewGridEngine(0.0009)
	dem := raster.NewGrid(4, 4, 0.0009)
	dem.Fill(1500)

	slope, aspect, err := e.SlopeAspect(context.Background(), dem)
	if err != nil {
		t.Fatalf("SlopeAspect: %v", err)
	}
	for i := range slope.Data {
		if slope.Data[i] != 0 {
			t.Errorf("flat DEM slope[%d] = %v, want 0", i, slope.Data[i])
		}
		if aspect.Data[i] != 0 {
			t.Errorf("flat DEM aspect[%d] = %v, want 0", i, aspect.Data[i])
		}
	}
}

func TestSlopeInclinedPlane(t *testing.T) {
	// A plane rising 30 m per 30 m cell eastward has a 45 degree slope.
	e := NewGridEngine(0.0009)
	dem := raster.NewGrid(4, 4, 0.0009)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			dem.Set(x, y, float64(x)*30)
		}
	}

	slope, _, err := e.SlopeAspect(context.Background(), dem)
	if err != nil {
		t.Fatalf("SlopeAspect: %v", err)
	}
	// Interior cells see the full gradient; border cells are clamped.
	got := slope.At(1, 1)
	if math.Abs(got-45) > 0.01 {
		t.Errorf("interior slope = %v, want 45", got)
	}
}

func TestVectorizeCarriesTags(t *testing.T) {
	e := NewGridEngine(2.0)
	region := raster.NewMask(2, 2)
	region.Bits = []bool{true, true, true, false}

	date := time.Date(2019, 8, 15, 0, 0, 0, 0, time.UTC)
	tags := OutlineTags{RGIID: "RGI60-01.00001", SceneID: "S1", Date: date, Class: types.ClassSnow}

	out, err := e.Vectorize(context.Background(), region, tags)
	if err != nil {
		t.Fatalf("Vectorize: %v", err)
	}

	if out.RGIID != tags.RGIID || out.SceneID != tags.SceneID || !out.Date.Equal(date) || out.Class != types.ClassSnow {
		t.Errorf("tags not carried onto outline: %+v", out)
	}
	if out.AreaKm2 != 6.0 {
		t.Errorf("area = %v, want 6 (3 cells at 2 km2)", out.AreaKm2)
	}

	// The outline owns its region; mutating the source must not change it.
	region.Bits[0] = false
	if got, _ := e.AreaKm2(context.Background(), out); got != 6.0 {
		t.Errorf("outline region aliases its source mask: area = %v", got)
	}
}

func TestIntersect(t *testing.T) {
	e := NewGridEngine(1.0)
	ctx := context.Background()

	a := raster.NewMask(3, 1)
	a.Bits = []bool{true, true, false}
	b := raster.NewMask(3, 1)
	b.Bits = []bool{false, true, true}

	oa, _ := e.Vectorize(ctx, a, OutlineTags{RGIID: "RGI60-01.00001", Class: types.ClassSnow})
	ob, _ := e.Vectorize(ctx, b, OutlineTags{RGIID: "RGI60-01.00001", Class: types.ClassCloudUnknown})

	inter, err := e.Intersect(ctx, oa, ob)
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	if inter.AreaKm2 != 1.0 {
		t.Errorf("intersection area = %v, want 1", inter.AreaKm2)
	}
	if inter.Class != types.ClassSnow {
		t.Errorf("intersection class = %v, want the first operand's", inter.Class)
	}
}
