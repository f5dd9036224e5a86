// Package continuum removes the smooth baseline reflectance curve from
// spectra and spectral image cubes by dividing each spectrum by a
// piecewise-linear continuum model. Removal methods are closed strategy
// variants satisfying the Strategy interface.
package continuum

import (
	"fmt"

	"github.com/z-vig/reflspeckit/pkg/interpolation"
	"github.com/z-vig/reflspeckit/pkg/spectral"
)

// Strategy is a continuum-removal method. Remove returns the
// continuum-removed cube and the continuum itself; the input is not
// modified.
type Strategy interface {
	Name() string
	Remove(cube *spectral.Grid, wvl *spectral.Wavelength) (removed, cont *spectral.Grid, err error)
}

// Range is a wavelength interval in nanometers.
type Range struct {
	Low, High float64
}

// DefaultAnchors are the first-pass continuum anchor wavelengths in
// nanometers.
var DefaultAnchors = [3]float64{700, 1550, 2600}

// DefaultPeakRanges are the second-pass sub-ranges, in nanometers, searched
// for each pixel's local reflectance maximum.
var DefaultPeakRanges = [3]Range{
	{Low: 650, High: 1000},
	{Low: 1350, High: 1600},
	{Low: 2000, High: 2600},
}

// WidePeakRanges are an alternative second-pass parameterization with wider
// hydration and 2-micron windows, used for instruments whose long-wavelength
// coverage extends past 2600 nm.
var WidePeakRanges = [3]Range{
	{Low: 650, High: 1000},
	{Low: 1250, High: 1600},
	{Low: 2000, High: 2800},
}

// DoubleLine is the two-pass continuum-removal method. The first pass builds
// a shared-anchor continuum line and normalizes by it; the second pass
// re-anchors the line, per pixel, at the local reflectance peaks of the
// normalized spectrum and divides the original spectrum by the refined line.
type DoubleLine struct {
	// Anchors are the first-pass tie wavelengths in nanometers
	Anchors [3]float64

	// PeakRanges are the second-pass peak-search windows in nanometers
	PeakRanges [3]Range
}

// NewDoubleLine returns a DoubleLine with the default anchors and peak
// ranges.
func NewDoubleLine() DoubleLine {
	return DoubleLine{Anchors: DefaultAnchors, PeakRanges: DefaultPeakRanges}
}

// Name returns the strategy identifier.
func (d DoubleLine) Name() string { return "double_line" }

// Remove runs the two-pass removal. All nanometer constants are rescaled to
// the wavelength's declared unit; an unrecognized unit fails the call.
func (d DoubleLine) Remove(cube *spectral.Grid, wvl *spectral.Wavelength) (*spectral.Grid, *spectral.Grid, error) {
	if err := checkShape(cube, wvl); err != nil {
		return nil, nil, err
	}
	scale, err := wvl.Unit().ScaleFromNanometers()
	if err != nil {
		return nil, nil, err
	}

	norm1, _, err := singleLine(cube, wvl, d.Anchors, scale)
	if err != nil {
		return nil, nil, err
	}

	// Second pass: per pixel, the sample of maximum normalized reflectance
	// inside each window is the closest approach to the true continuum.
	type window struct{ lo, hi int }
	wins := make([]window, len(d.PeakRanges))
	for k, r := range d.PeakRanges {
		lo, _ := spectral.FindWavelength(wvl.Values, r.Low*scale)
		hi, _ := spectral.FindWavelength(wvl.Values, r.High*scale)
		if hi <= lo {
			return nil, nil, fmt.Errorf("continuum: peak range %g-%g nm collapses at this spectral sampling",
				r.Low, r.High)
		}
		wins[k] = window{lo: lo, hi: hi}
	}

	tieX := spectral.NewGrid(cube.Rows, cube.Cols, len(d.PeakRanges))
	tieY := spectral.NewGrid(cube.Rows, cube.Cols, len(d.PeakRanges))
	for p := 0; p < cube.Pixels(); p++ {
		prev := -1
		for k, w := range wins {
			idx := argmaxWithin(norm1.PixelSpectrum(p), w.lo, w.hi)
			// overlapping windows can pick the same peak twice, which would
			// hand the interpolant a zero-width segment
			if idx <= prev {
				return nil, nil, fmt.Errorf("continuum: peak ranges %g-%g and %g-%g nm resolve to non-increasing tie points at this spectral sampling",
					d.PeakRanges[k-1].Low, d.PeakRanges[k-1].High,
					d.PeakRanges[k].Low, d.PeakRanges[k].High)
			}
			prev = idx
			tieX.PixelSpectrum(p)[k] = wvl.Values[idx]
			tieY.PixelSpectrum(p)[k] = cube.PixelSpectrum(p)[idx]
		}
	}

	ci, err := interpolation.NewPerPixel(tieX, tieY)
	if err != nil {
		return nil, nil, err
	}
	cont := ci.Linear(wvl.Values)
	removed := divide(cube, cont)
	return removed, cont, nil
}

// SingleLine is the one-pass continuum-removal method: the shared-anchor
// continuum line alone, without per-pixel refinement.
type SingleLine struct {
	Anchors [3]float64
}

// NewSingleLine returns a SingleLine with the default anchors.
func NewSingleLine() SingleLine {
	return SingleLine{Anchors: DefaultAnchors}
}

// Name returns the strategy identifier.
func (s SingleLine) Name() string { return "single_line" }

// Remove divides the cube by the shared-anchor continuum line.
func (s SingleLine) Remove(cube *spectral.Grid, wvl *spectral.Wavelength) (*spectral.Grid, *spectral.Grid, error) {
	if err := checkShape(cube, wvl); err != nil {
		return nil, nil, err
	}
	scale, err := wvl.Unit().ScaleFromNanometers()
	if err != nil {
		return nil, nil, err
	}
	return singleLine(cube, wvl, s.Anchors, scale)
}

// RemoveSpectrum applies a strategy to a single spectrum.
func RemoveSpectrum(s Strategy, spec []float64, wvl *spectral.Wavelength) (removed, cont []float64, err error) {
	y := make([]float64, len(spec))
	copy(y, spec)
	grid, err := spectral.GridFromData(1, 1, len(y), y)
	if err != nil {
		return nil, nil, err
	}
	rg, cg, err := s.Remove(grid, wvl)
	if err != nil {
		return nil, nil, err
	}
	return rg.PixelSpectrum(0), cg.PixelSpectrum(0), nil
}

// singleLine builds the shared-anchor continuum through the samples nearest
// each anchor wavelength and divides the cube by it.
func singleLine(cube *spectral.Grid, wvl *spectral.Wavelength, anchors [3]float64, scale float64) (*spectral.Grid, *spectral.Grid, error) {
	tieX := make([]float64, len(anchors))
	tieIdx := make([]int, len(anchors))
	for k, a := range anchors {
		idx, actual := spectral.FindWavelength(wvl.Values, a*scale)
		tieIdx[k] = idx
		tieX[k] = actual
	}
	tieY := spectral.NewGrid(cube.Rows, cube.Cols, len(anchors))
	for p := 0; p < cube.Pixels(); p++ {
		y := cube.PixelSpectrum(p)
		t := tieY.PixelSpectrum(p)
		for k, idx := range tieIdx {
			t[k] = y[idx]
		}
	}
	ci, err := interpolation.NewShared(tieX, tieY)
	if err != nil {
		return nil, nil, err
	}
	cont := ci.Linear(wvl.Values)
	return divide(cube, cont), cont, nil
}

// argmaxWithin returns the index of the maximum value over [lo, hi).
func argmaxWithin(s []float64, lo, hi int) int {
	best := lo
	for i := lo + 1; i < hi; i++ {
		if s[i] > s[best] {
			best = i
		}
	}
	return best
}

func divide(cube, by *spectral.Grid) *spectral.Grid {
	out := spectral.NewGrid(cube.Rows, cube.Cols, cube.Bands)
	for i, v := range cube.Data {
		out.Data[i] = v / by.Data[i]
	}
	return out
}

func checkShape(cube *spectral.Grid, wvl *spectral.Wavelength) error {
	if wvl.Len() != cube.Bands {
		return &spectral.DimensionError{
			Msg: fmt.Sprintf("wavelength axis has %d samples but the cube has %d bands",
				wvl.Len(), cube.Bands),
		}
	}
	return nil
}
