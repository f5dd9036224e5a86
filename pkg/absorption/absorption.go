// Package absorption characterizes absorption features in continuum-removed
// reflectance data: a polynomial is fitted over a wavelength sub-range per
// pixel and band-center and integrated-band-depth maps are derived from it.
package absorption

import (
	"fmt"
	"math"

	"github.com/z-vig/reflspeckit/pkg/fitting"
	"github.com/z-vig/reflspeckit/pkg/spectral"
)

// DefaultFitOrder is the polynomial order used when a caller does not choose
// one.
const DefaultFitOrder = 4

// Feature is a read-only view of one absorption feature over a wavelength
// sub-range of a continuum-removed cube. It owns its own fit, scoped to the
// sub-range, and is independent of the cube it was created from.
type Feature struct {
	// Wavelengths are the sub-range wavelength samples
	Wavelengths []float64

	// Fit is the per-pixel polynomial fit over the sub-range
	Fit *fitting.CubeFitResult

	data *spectral.Grid
	low  float64
	high float64
}

// NewFeature fits an order-k polynomial over the [low, high] wavelength
// sub-range of every pixel. The declared unit must match the wavelength
// axis; when it does not, a UnitError is returned rather than converting
// silently. The sub-range is resolved to [nearest(low), nearest(high)) along
// the spectral axis.
func NewFeature(cube *spectral.Grid, wvl *spectral.Wavelength, low, high float64, unit spectral.Unit, order int) (*Feature, error) {
	if unit != wvl.Unit() {
		return nil, &spectral.UnitError{
			Msg: fmt.Sprintf("feature range is in %v but the wavelength axis is in %v",
				unit, wvl.Unit()),
		}
	}
	if wvl.Len() != cube.Bands {
		return nil, &spectral.DimensionError{
			Msg: fmt.Sprintf("wavelength axis has %d samples but the cube has %d bands",
				wvl.Len(), cube.Bands),
		}
	}
	lowIdx, _ := spectral.FindWavelength(wvl.Values, low)
	highIdx, _ := spectral.FindWavelength(wvl.Values, high)
	if highIdx-lowIdx < order+1 {
		return nil, fmt.Errorf("absorption: %d samples in %g-%g %v cannot support an order-%d fit",
			highIdx-lowIdx, low, high, wvl.Unit(), order)
	}

	sub := spectral.NewGrid(cube.Rows, cube.Cols, highIdx-lowIdx)
	for p := 0; p < cube.Pixels(); p++ {
		copy(sub.PixelSpectrum(p), cube.PixelSpectrum(p)[lowIdx:highIdx])
	}
	subWvl := wvl.Values[lowIdx:highIdx]

	fit, err := fitting.FitCube(sub, fitting.SharedX(subWvl), order)
	if err != nil {
		return nil, err
	}
	return &Feature{
		Wavelengths: subWvl,
		Fit:         fit,
		data:        sub,
		low:         low,
		high:        high,
	}, nil
}

// BandCenter returns per-pixel maps of the band-center wavelength and the
// band depth there, taken at the fitted model's minimum within the
// sub-range. A minimum falling on the first or last sample of the sub-range
// is an edge artifact, not a true minimum, and is reported as NaN in both
// maps.
func (f *Feature) BandCenter() (centers, depths *spectral.Map) {
	n := len(f.Wavelengths)
	centers = spectral.NewNaNMap(f.data.Rows, f.data.Cols)
	depths = spectral.NewNaNMap(f.data.Rows, f.data.Cols)
	for p := 0; p < f.data.Pixels(); p++ {
		model := f.Fit.Model.PixelSpectrum(p)
		min := argmin(model)
		if min == 0 || min == n-1 {
			continue
		}
		centers.Data[p] = f.Wavelengths[min]
		depths.Data[p] = 1 - model[min]
	}
	return centers, depths
}

// IntegratedBandDepth returns the per-pixel sum of (1 - reflectance) over
// the sub-range, a discretized area under the continuum.
func (f *Feature) IntegratedBandDepth() *spectral.Map {
	out := spectral.NewMap(f.data.Rows, f.data.Cols)
	for p := 0; p < f.data.Pixels(); p++ {
		total := 0.0
		for _, v := range f.data.PixelSpectrum(p) {
			total += 1 - v
		}
		out.Data[p] = total
	}
	return out
}

// argmin returns the index of the smallest value, treating NaN as larger
// than everything so a failed pixel reports its first index.
func argmin(s []float64) int {
	best := 0
	bestVal := math.Inf(1)
	for i, v := range s {
		if v < bestVal {
			bestVal = v
			best = i
		}
	}
	return best
}

// ThreeBandDepth computes the shoulder-projected band depth from reflectance
// maps at a lower shoulder, band center and upper shoulder with wavelengths
// wa, wb, wc: the center reflectance projected onto the shoulder line minus
// the observed center reflectance.
func ThreeBandDepth(ra, rb, rc *spectral.Map, wa, wb, wc float64) (*spectral.Map, error) {
	if !ra.SameShape(rb) || !rb.SameShape(rc) {
		return nil, &spectral.DimensionError{Msg: "shoulder and center maps differ in shape"}
	}
	out := spectral.NewMap(ra.Rows, ra.Cols)
	for i := range out.Data {
		proj := (rc.Data[i]-ra.Data[i])/(wc-wa)*(wb-wa) + ra.Data[i]
		out.Data[i] = proj - rb.Data[i]
	}
	return out, nil
}
