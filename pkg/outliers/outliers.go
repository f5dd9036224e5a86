// Package outliers detects and replaces statistical outliers in spectra and
// spectral image cubes. A sample is an outlier when its z-score against a
// local moving mean and standard deviation exceeds a threshold; flagged
// samples are replaced by the mean of their immediate spectral neighbors.
package outliers

import (
	"math"

	"github.com/z-vig/reflspeckit/pkg/filtering"
	"github.com/z-vig/reflspeckit/pkg/spectral"
)

// RoundToOdd rounds to the nearest odd integer. An even rounding result is
// shifted by one toward the unrounded value, or down by one on an exact tie.
func RoundToOdd(v float64) int {
	r := math.Round(v)
	if int(r)%2 == 0 {
		if v != r {
			return int(r + (v-r)/math.Abs(v-r))
		}
		return int(r - 1)
	}
	return int(r)
}

// WindowSize derives the local-statistics window for a spectrum of n
// samples: the nearest odd integer to 10% of the length, never below 3.
func WindowSize(n int) int {
	w := RoundToOdd(float64(n) * 0.1)
	if w < 3 {
		return 3
	}
	return w
}

// RemoveOutliers returns a copy of the cube with outliers replaced; the
// input is not modified. Local statistics come from a box filter sized by
// WindowSize. The first and last samples of each spectrum use only their
// single available neighbor for replacement, never wrapping around.
func RemoveOutliers(cube *spectral.Grid, threshold float64) (*spectral.Grid, error) {
	mu, sig, err := filtering.BoxFilter{Width: WindowSize(cube.Bands)}.Smooth(cube)
	if err != nil {
		return nil, err
	}

	out := cube.Clone()
	n := cube.Bands
	for p := 0; p < cube.Pixels(); p++ {
		y := cube.PixelSpectrum(p)
		m := mu.PixelSpectrum(p)
		s := sig.PixelSpectrum(p)
		o := out.PixelSpectrum(p)
		for i := 0; i < n; i++ {
			z := (y[i] - m[i]) / s[i]
			if !(math.Abs(z) > threshold) {
				continue
			}
			switch i {
			case 0:
				o[i] = y[1]
			case n - 1:
				o[i] = y[n-2]
			default:
				o[i] = meanIgnoringNaN(y[i-1], y[i+1])
			}
		}
	}
	return out, nil
}

// RemoveOutliersSpectrum is the single-spectrum counterpart of
// RemoveOutliers.
func RemoveOutliersSpectrum(spec []float64, threshold float64) ([]float64, error) {
	y := make([]float64, len(spec))
	copy(y, spec)
	grid, err := spectral.GridFromData(1, 1, len(y), y)
	if err != nil {
		return nil, err
	}
	out, err := RemoveOutliers(grid, threshold)
	if err != nil {
		return nil, err
	}
	return out.PixelSpectrum(0), nil
}

// meanIgnoringNaN averages the two neighbors, falling back to whichever one
// is defined.
func meanIgnoringNaN(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	default:
		return (a + b) / 2
	}
}
