// Package testdata builds synthetic spectra and cubes shared by the package
// tests.
package testdata

import (
	"math"

	"github.com/z-vig/reflspeckit/pkg/spectral"
)

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// BumpySpectrum returns a flat reflectance baseline with Gaussian bumps at
// the given wavelength centers.
func BumpySpectrum(wvl []float64, base float64, centers []float64, amp, sigma float64) []float64 {
	out := make([]float64, len(wvl))
	for i, w := range wvl {
		v := base
		for _, c := range centers {
			d := w - c
			v += amp * math.Exp(-d*d/(2*sigma*sigma))
		}
		out[i] = v
	}
	return out
}

// DippedSpectrum returns a unit baseline with a Gaussian absorption dip,
// resembling a continuum-removed spectrum.
func DippedSpectrum(wvl []float64, center, depth, sigma float64) []float64 {
	out := make([]float64, len(wvl))
	for i, w := range wvl {
		d := w - center
		out[i] = 1 - depth*math.Exp(-d*d/(2*sigma*sigma))
	}
	return out
}

// CubeOf tiles a spectrum across a rows x cols grid, scaling each pixel's
// copy by scale(p) so pixels stay distinguishable.
func CubeOf(rows, cols int, spec []float64, scale func(p int) float64) *spectral.Grid {
	g := spectral.NewGrid(rows, cols, len(spec))
	for p := 0; p < rows*cols; p++ {
		s := 1.0
		if scale != nil {
			s = scale(p)
		}
		dst := g.PixelSpectrum(p)
		for i, v := range spec {
			dst[i] = v * s
		}
	}
	return g
}

// LineCube builds a cube whose pixel p holds the exact line
// y = slope(p)*x + intercept(p) sampled at x.
func LineCube(rows, cols int, x []float64, slope, intercept func(p int) float64) *spectral.Grid {
	g := spectral.NewGrid(rows, cols, len(x))
	for p := 0; p < rows*cols; p++ {
		m := slope(p)
		b := intercept(p)
		dst := g.PixelSpectrum(p)
		for i, xv := range x {
			dst[i] = m*xv + b
		}
	}
	return g
}
