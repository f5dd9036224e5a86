// Package spectral defines the core data model for reflectance spectroscopy:
// spectral image cubes, derived 2D maps, and wavelength axes with explicit
// unit bookkeeping.
package spectral

import (
	"fmt"
	"math"
)

// Grid is a spectral image cube with two spatial axes and one spectral axis.
// Data is stored as a flat slice in row-major order with the spectral axis
// fastest, so each pixel's spectrum occupies a contiguous run of Bands values.
type Grid struct {
	// Rows and Cols are the spatial dimensions of the cube
	Rows, Cols int

	// Bands is the number of spectral samples per pixel
	Bands int

	// Data holds Rows*Cols*Bands values, spectral axis fastest
	Data []float64
}

// NewGrid allocates a zero-filled cube with the given dimensions.
func NewGrid(rows, cols, bands int) *Grid {
	return &Grid{
		Rows:  rows,
		Cols:  cols,
		Bands: bands,
		Data:  make([]float64, rows*cols*bands),
	}
}

// GridFromData wraps an existing flat slice as a cube. The slice length must
// equal rows*cols*bands.
func GridFromData(rows, cols, bands int, data []float64) (*Grid, error) {
	if len(data) != rows*cols*bands {
		return nil, &DimensionError{
			Msg: fmt.Sprintf("data length %d does not match %dx%dx%d cube",
				len(data), rows, cols, bands),
		}
	}
	return &Grid{Rows: rows, Cols: cols, Bands: bands, Data: data}, nil
}

// At returns the value at spatial position (i, j) and spectral index n.
func (g *Grid) At(i, j, n int) float64 {
	return g.Data[(i*g.Cols+j)*g.Bands+n]
}

// Set stores a value at spatial position (i, j) and spectral index n.
func (g *Grid) Set(i, j, n int, v float64) {
	g.Data[(i*g.Cols+j)*g.Bands+n] = v
}

// SpectrumAt returns the spectrum of pixel (i, j) as a subslice of the
// backing array. Mutating the returned slice mutates the cube.
func (g *Grid) SpectrumAt(i, j int) []float64 {
	off := (i*g.Cols + j) * g.Bands
	return g.Data[off : off+g.Bands]
}

// Pixels returns the number of spatial positions in the cube.
func (g *Grid) Pixels() int {
	return g.Rows * g.Cols
}

// PixelSpectrum returns the spectrum of the p-th pixel in row-major order.
func (g *Grid) PixelSpectrum(p int) []float64 {
	off := p * g.Bands
	return g.Data[off : off+g.Bands]
}

// Clone returns a deep copy of the cube.
func (g *Grid) Clone() *Grid {
	out := NewGrid(g.Rows, g.Cols, g.Bands)
	copy(out.Data, g.Data)
	return out
}

// SameShape reports whether two cubes have identical dimensions.
func (g *Grid) SameShape(other *Grid) bool {
	return g.Rows == other.Rows && g.Cols == other.Cols && g.Bands == other.Bands
}

// BandImage extracts the 2D image of a single spectral band.
func (g *Grid) BandImage(n int) *Map {
	m := NewMap(g.Rows, g.Cols)
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			m.Set(i, j, g.At(i, j, n))
		}
	}
	return m
}

// Map is a single-band 2D image derived from a cube, such as an albedo image
// or a band-depth map.
type Map struct {
	Rows, Cols int
	Data       []float64
}

// NewMap allocates a zero-filled map with the given dimensions.
func NewMap(rows, cols int) *Map {
	return &Map{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// NewNaNMap allocates a map with every value set to NaN, the undefined-value
// marker used for pixels whose metric could not be derived.
func NewNaNMap(rows, cols int) *Map {
	m := NewMap(rows, cols)
	for i := range m.Data {
		m.Data[i] = math.NaN()
	}
	return m
}

// At returns the value at position (i, j).
func (m *Map) At(i, j int) float64 {
	return m.Data[i*m.Cols+j]
}

// Set stores a value at position (i, j).
func (m *Map) Set(i, j int, v float64) {
	m.Data[i*m.Cols+j] = v
}

// SameShape reports whether two maps have identical dimensions.
func (m *Map) SameShape(other *Map) bool {
	return m.Rows == other.Rows && m.Cols == other.Cols
}
