// Package raster provides the grid and mask primitives shared by the
// classification pipeline. Grids are flat float64 slices in row-major order;
// NaN marks nodata and propagates through arithmetic.
package raster

import "math"

// Grid is a single-band raster. All bands of a scene share one grid shape
// and one cell size, so co-registration is a matter of matching Width/Height.
type Grid struct {
	Width  int
	Height int
	// CellAreaKm2 is the ground area covered by one pixel.
	CellAreaKm2 float64
	Data        []float64
}

// NewGrid allocates a zero-filled grid.
func NewGrid(width, height int, cellAreaKm2 float64) *Grid {
	return &Grid{
		Width:       width,
		Height:      height,
		CellAreaKm2: cellAreaKm2,
		Data:        make([]float64, width*height),
	}
}

// NewGridFrom wraps existing data in a grid. The slice is not copied.
func NewGridFrom(width, height int, cellAreaKm2 float64, data []float64) *Grid {
	return &Grid{Width: width, Height: height, CellAreaKm2: cellAreaKm2, Data: data}
}

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.Data) }

// At returns the value at (x, y).
func (g *Grid) At(x, y int) float64 { return g.Data[y*g.Width+x] }

// Set writes the value at (x, y).
func (g *Grid) Set(x, y int, v float64) { g.Data[y*g.Width+x] = v }

// SameShape reports whether two grids share dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	return o != nil && g.Width == o.Width && g.Height == o.Height
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	out := NewGrid(g.Width, g.Height, g.CellAreaKm2)
	copy(out.Data, g.Data)
	return out
}

// Fill sets every cell to v.
func (g *Grid) Fill(v float64) {
	for i := range g.Data {
		g.Data[i] = v
	}
}

// MaskOut writes NaN into every cell where keep is false. Used to remove
// shadowed or invalid pixels from a band before index computation.
func (g *Grid) MaskOut(keep *Mask) {
	for i := range g.Data {
		if !keep.Bits[i] {
			g.Data[i] = math.NaN()
		}
	}
}

// Mask is a boolean raster aligned with a Grid.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewMask allocates an all-false mask.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Bits: make([]bool, width*height)}
}

// At returns the bit at (x, y).
func (m *Mask) At(x, y int) bool { return m.Bits[y*m.Width+x] }

// Set writes the bit at (x, y).
func (m *Mask) Set(x, y int, v bool) { m.Bits[y*m.Width+x] = v }

// Count returns the number of true cells.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Or returns the cellwise union of two masks.
func (m *Mask) Or(o *Mask) *Mask {
	out := NewMask(m.Width, m.Height)
	for i := range m.Bits {
		out.Bits[i] = m.Bits[i] || o.Bits[i]
	}
	return out
}

// And returns the cellwise intersection of two masks.
func (m *Mask) And(o *Mask) *Mask {
	out := NewMask(m.Width, m.Height)
	for i := range m.Bits {
		out.Bits[i] = m.Bits[i] && o.Bits[i]
	}
	return out
}

// Not returns the cellwise complement.
func (m *Mask) Not() *Mask {
	out := NewMask(m.Width, m.Height)
	for i := range m.Bits {
		out.Bits[i] = !m.Bits[i]
	}
	return out
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	out := NewMask(m.Width, m.Height)
	copy(out.Bits, m.Bits)
	return out
}

// Values collects grid values at every true cell of the mask, skipping NaN.
func Values(g *Grid, zone *Mask) []float64 {
	var vals []float64
	for i, b := range zone.Bits {
		if b && !math.IsNaN(g.Data[i]) {
			vals = append(vals, g.Data[i])
		}
	}
	return vals
}

// Threshold returns a mask that is true where the grid value is at or below
// the cutoff. NaN cells compare false.
func Threshold(g *Grid, cutoff float64) *Mask {
	out := NewMask(g.Width, g.Height)
	for i, v := range g.Data {
		out.Bits[i] = v <= cutoff
	}
	return out
}
