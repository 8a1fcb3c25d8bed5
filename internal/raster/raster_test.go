package raster

import (
	"math"
	"testing"
)

func TestThreshold(t *testing.T) {
	g := NewGridFrom(4, 1, 1.0, []float64{100, 200, 300, math.NaN()})

	tests := []struct {
		name     string
		cutoff   float64
		expected []bool
	}{
		{"below all", 50, []bool{false, false, false, false}},
		{"at first value", 100, []bool{true, false, false, false}},
		{"between", 250, []bool{true, true, false, false}},
		{"above all, NaN still excluded", 1000, []bool{true, true, true, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Threshold(g, tt.cutoff)
			for i, want := range tt.expected {
				if m.Bits[i] != want {
					t.Errorf("cell %d: got %v, want %v", i, m.Bits[i], want)
				}
			}
		})
	}
}

func TestValuesSkipsNaN(t *testing.T) {
	g := NewGridFrom(4, 1, 1.0, []float64{1, math.NaN(), 3, 4})
	zone := NewMask(4, 1)
	zone.Bits = []bool{true, true, true, false}

	vals := Values(g, zone)
	if len(vals) != 2 {
		t.Fatalf("got %d values, want 2", len(vals))
	}
	if vals[0] != 1 || vals[1] != 3 {
		t.Errorf("got %v, want [1 3]", vals)
	}
}

func TestMaskOut(t *testing.T) {
	g := NewGridFrom(3, 1, 1.0, []float64{1, 2, 3})
	keep := NewMask(3, 1)
	keep.Bits = []bool{true, false, true}

	g.MaskOut(keep)

	if g.Data[0] != 1 || g.Data[2] != 3 {
		t.Errorf("kept cells modified: %v", g.Data)
	}
	if !math.IsNaN(g.Data[1]) {
		t.Errorf("masked cell not NaN: %v", g.Data[1])
	}
}

func TestMaskOperations(t *testing.T) {
	a := NewMask(4, 1)
	a.Bits = []bool{true, true, false, false}
	b := NewMask(4, 1)
	b.Bits = []bool{true, false, true, false}

	if got := a.And(b).Count(); got != 1 {
		t.Errorf("And count: got %d, want 1", got)
	}
	if got := a.Or(b).Count(); got != 3 {
		t.Errorf("Or count: got %d, want 3", got)
	}
	if got := a.Not().Count(); got != 2 {
		t.Errorf("Not count: got %d, want 2", got)
	}

	c := a.Clone()
	c.Bits[0] = false
	if !a.Bits[0] {
		t.Error("Clone shares backing storage with original")
	}
}

func TestGridClone(t *testing.T) {
	g := NewGridFrom(2, 1, 0.5, []float64{1, 2})
	c := g.Clone()
	c.Set(0, 0, 99)

	if g.At(0, 0) != 1 {
		t.Error("Clone shares backing storage with original")
	}
	if c.CellAreaKm2 != 0.5 {
		t.Errorf("clone cell area: got %v, want 0.5", c.CellAreaKm2)
	}
}
