// Package interpolation provides piecewise-linear interpolation over tie
// points for spectra and spectral image cubes. Tie points on the x axis may
// be shared by every pixel or vary pixel by pixel; the y tie values always
// vary per pixel. Each segment is held as a plain (slope, intercept) record
// selected by search at evaluation time.
package interpolation

import (
	"fmt"
	"sort"

	"github.com/z-vig/reflspeckit/pkg/spectral"
)

// CubeInterpolator interpolates a cube of y tie values over either a shared
// or a per-pixel x axis. Segments use half-open intervals [x_n, x_n+1) with
// the final segment closed on the right, and queries outside the tie range
// use flat extrapolation: the boundary segment's line evaluated at the
// boundary tie point.
type CubeInterpolator struct {
	// shared tie x values, nil when per-pixel
	xs []float64

	// per-pixel tie x values, nil when shared
	xGrid *spectral.Grid

	rows, cols, ties int

	// per-pixel, per-segment line records, ties-1 segments each
	slope     *spectral.Grid
	intercept *spectral.Grid
}

// NewShared builds an interpolator whose tie x values are shared by every
// pixel. xs must be ascending and hold at least two points, and ys must have
// one y value per tie point along its spectral axis.
func NewShared(xs []float64, ys *spectral.Grid) (*CubeInterpolator, error) {
	if len(xs) < 2 {
		return nil, fmt.Errorf("interpolation: need at least 2 tie points, got %d", len(xs))
	}
	if ys.Bands != len(xs) {
		return nil, &spectral.DimensionError{
			Msg: fmt.Sprintf("tie y cube has %d bands for %d tie points", ys.Bands, len(xs)),
		}
	}
	ci := &CubeInterpolator{
		xs:        xs,
		rows:      ys.Rows,
		cols:      ys.Cols,
		ties:      len(xs),
		slope:     spectral.NewGrid(ys.Rows, ys.Cols, len(xs)-1),
		intercept: spectral.NewGrid(ys.Rows, ys.Cols, len(xs)-1),
	}
	for p := 0; p < ys.Pixels(); p++ {
		y := ys.PixelSpectrum(p)
		m := ci.slope.PixelSpectrum(p)
		b := ci.intercept.PixelSpectrum(p)
		for n := 0; n < len(xs)-1; n++ {
			m[n] = (y[n+1] - y[n]) / (xs[n+1] - xs[n])
			b[n] = y[n] - m[n]*xs[n]
		}
	}
	return ci, nil
}

// NewPerPixel builds an interpolator whose tie x values vary pixel by pixel.
// xs and ys must have identical shape with at least two tie points along the
// spectral axis, ascending per pixel.
func NewPerPixel(xs, ys *spectral.Grid) (*CubeInterpolator, error) {
	if xs.Bands < 2 {
		return nil, fmt.Errorf("interpolation: need at least 2 tie points, got %d", xs.Bands)
	}
	if !xs.SameShape(ys) {
		return nil, &spectral.DimensionError{
			Msg: "tie x cube shape does not match tie y cube",
		}
	}
	ci := &CubeInterpolator{
		xGrid:     xs,
		rows:      ys.Rows,
		cols:      ys.Cols,
		ties:      xs.Bands,
		slope:     spectral.NewGrid(ys.Rows, ys.Cols, xs.Bands-1),
		intercept: spectral.NewGrid(ys.Rows, ys.Cols, xs.Bands-1),
	}
	for p := 0; p < ys.Pixels(); p++ {
		x := xs.PixelSpectrum(p)
		y := ys.PixelSpectrum(p)
		m := ci.slope.PixelSpectrum(p)
		b := ci.intercept.PixelSpectrum(p)
		for n := 0; n < xs.Bands-1; n++ {
			m[n] = (y[n+1] - y[n]) / (x[n+1] - x[n])
			b[n] = y[n] - m[n]*x[n]
		}
	}
	return ci, nil
}

// Linear evaluates the interpolant at every query x for every pixel,
// returning a cube with one band per query.
func (ci *CubeInterpolator) Linear(xvals []float64) *spectral.Grid {
	out := spectral.NewGrid(ci.rows, ci.cols, len(xvals))
	if ci.xs != nil {
		ci.linearShared(xvals, out)
	} else {
		ci.linearPerPixel(xvals, out)
	}
	return out
}

// linearShared resolves each query's segment once and applies that segment's
// line across the whole pixel grid.
func (ci *CubeInterpolator) linearShared(xvals []float64, out *spectral.Grid) {
	last := ci.ties - 1
	for q, x := range xvals {
		xc := clamp(x, ci.xs[0], ci.xs[last])
		seg := sharedSegment(ci.xs, xc)
		for p := 0; p < out.Pixels(); p++ {
			out.PixelSpectrum(p)[q] = ci.slope.PixelSpectrum(p)[seg]*xc +
				ci.intercept.PixelSpectrum(p)[seg]
		}
	}
}

// linearPerPixel walks the queries and selects, per pixel, the rightmost tie
// point not exceeded, clamping to the boundary segments at the grid edges.
func (ci *CubeInterpolator) linearPerPixel(xvals []float64, out *spectral.Grid) {
	last := ci.ties - 1
	for q, x := range xvals {
		for p := 0; p < out.Pixels(); p++ {
			tx := ci.xGrid.PixelSpectrum(p)
			xc := clamp(x, tx[0], tx[last])
			seg := 0
			for j := 1; j < last; j++ {
				if xc >= tx[j] {
					seg = j
				}
			}
			out.PixelSpectrum(p)[q] = ci.slope.PixelSpectrum(p)[seg]*xc +
				ci.intercept.PixelSpectrum(p)[seg]
		}
	}
}

// sharedSegment returns the index of the segment covering xc, assuming xc is
// already clamped into the tie range. Intervals are half-open on the right
// except the last, which is closed.
func sharedSegment(xs []float64, xc float64) int {
	i := sort.SearchFloat64s(xs, xc)
	if i < len(xs) && xs[i] == xc {
		// exact tie point: owned by the segment starting there
		if i > len(xs)-2 {
			return len(xs) - 2
		}
		return i
	}
	if i == 0 {
		return 0
	}
	return i - 1
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Interpolator is the single-spectrum counterpart of CubeInterpolator.
type Interpolator struct {
	cube *CubeInterpolator
}

// NewSpectrum builds a piecewise-linear interpolator over shared tie points
// for a single spectrum.
func NewSpectrum(xs, ys []float64) (*Interpolator, error) {
	if len(ys) != len(xs) {
		return nil, &spectral.DimensionError{
			Msg: fmt.Sprintf("tie y length %d does not match %d tie points", len(ys), len(xs)),
		}
	}
	grid, err := spectral.GridFromData(1, 1, len(ys), ys)
	if err != nil {
		return nil, err
	}
	ci, err := NewShared(xs, grid)
	if err != nil {
		return nil, err
	}
	return &Interpolator{cube: ci}, nil
}

// Linear evaluates the interpolant at every query x.
func (in *Interpolator) Linear(xvals []float64) []float64 {
	return in.cube.Linear(xvals).PixelSpectrum(0)
}
