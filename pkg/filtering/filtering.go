// Package filtering provides noise-reduction smoothing for spectra and
// spectral image cubes. Filters are closed strategy variants satisfying the
// Strategy interface.
package filtering

import (
	"fmt"
	"math"

	"github.com/z-vig/reflspeckit/pkg/fitting"
	"github.com/z-vig/reflspeckit/pkg/spectral"
)

// Strategy is a noise-reduction method applied along the spectral axis of a
// cube. Smooth returns the smoothed cube together with a per-sample noise
// estimate of the same shape; the input is not modified.
type Strategy interface {
	Name() string
	Smooth(cube *spectral.Grid) (mean, sigma *spectral.Grid, err error)
}

// BoxFilter smooths with a uniform moving-average window. Spectrum ends are
// extended by Width synthetic samples from local linear fits before the
// convolution, which avoids the streaking a mirrored or clipped boundary
// produces, and the extension is trimmed from the output.
type BoxFilter struct {
	// Width is the moving-average window size in samples
	Width int
}

// Name returns the strategy identifier.
func (f BoxFilter) Name() string { return "box_filter" }

// Smooth runs the moving average over every pixel's spectrum, returning the
// windowed mean and the windowed standard deviation.
func (f BoxFilter) Smooth(cube *spectral.Grid) (*spectral.Grid, *spectral.Grid, error) {
	w := f.Width
	n := cube.Bands
	if w < 1 {
		return nil, nil, fmt.Errorf("filtering: window size %d must be positive", w)
	}

	edge := int(math.Max(math.Round(float64(n)*0.1), 2))
	if edge+1 > n {
		return nil, nil, fmt.Errorf("filtering: spectrum of %d samples is too short for edge fits", n)
	}

	// Degree-1 fits over the first and last edge+1 samples against sample
	// index supply the synthetic extension values.
	leftX := make([]float64, edge+1)
	rightX := make([]float64, edge+1)
	leftCube := spectral.NewGrid(cube.Rows, cube.Cols, edge+1)
	rightCube := spectral.NewGrid(cube.Rows, cube.Cols, edge+1)
	for k := 0; k <= edge; k++ {
		leftX[k] = float64(k)
		rightX[k] = float64(n - edge - 1 + k)
	}
	for p := 0; p < cube.Pixels(); p++ {
		y := cube.PixelSpectrum(p)
		copy(leftCube.PixelSpectrum(p), y[:edge+1])
		copy(rightCube.PixelSpectrum(p), y[n-edge-1:])
	}

	leftFit, err := fitting.FitCube(leftCube, fitting.SharedX(leftX), 1)
	if err != nil {
		return nil, nil, err
	}
	rightFit, err := fitting.FitCube(rightCube, fitting.SharedX(rightX), 1)
	if err != nil {
		return nil, nil, err
	}

	mean := spectral.NewGrid(cube.Rows, cube.Cols, n)
	sigma := spectral.NewGrid(cube.Rows, cube.Cols, n)

	ext := make([]float64, n+2*w)
	sum := make([]float64, n+2*w+1)
	sumSq := make([]float64, n+2*w+1)
	lh := w / 2
	for p := 0; p < cube.Pixels(); p++ {
		lb := leftFit.Beta.PixelSpectrum(p)
		rb := rightFit.Beta.PixelSpectrum(p)
		for k := 0; k < w; k++ {
			ext[k] = lb[0] + lb[1]*float64(k-w)
			ext[w+n+k] = rb[0] + rb[1]*float64(n+k)
		}
		copy(ext[w:w+n], cube.PixelSpectrum(p))

		// prefix sums make the same-length uniform convolution a window
		// difference
		for i, v := range ext {
			sum[i+1] = sum[i] + v
			sumSq[i+1] = sumSq[i] + v*v
		}
		mu := mean.PixelSpectrum(p)
		sg := sigma.PixelSpectrum(p)
		for i := 0; i < n; i++ {
			lo := w + i - lh
			m := (sum[lo+w] - sum[lo]) / float64(w)
			msq := (sumSq[lo+w] - sumSq[lo]) / float64(w)
			mu[i] = m
			// mean-of-squares minus square-of-mean; loses precision for
			// near-constant windows and can go negative to NaN, which is
			// kept as-is rather than silently reformulated
			sg[i] = math.Sqrt(msq - m*m)
		}
	}
	return mean, sigma, nil
}

// SmoothSpectrum applies a strategy to a single spectrum, returning the
// smoothed values and the per-sample noise estimate.
func SmoothSpectrum(s Strategy, spec []float64) (mean, sigma []float64, err error) {
	y := make([]float64, len(spec))
	copy(y, spec)
	grid, err := spectral.GridFromData(1, 1, len(y), y)
	if err != nil {
		return nil, nil, err
	}
	mg, sg, err := s.Smooth(grid)
	if err != nil {
		return nil, nil, err
	}
	return mg.PixelSpectrum(0), sg.PixelSpectrum(0), nil
}
