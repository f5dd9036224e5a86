package fitting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z-vig/reflspeckit/internal/testdata"
	"github.com/z-vig/reflspeckit/pkg/spectral"
)

func TestFitCubeRecoversExactLine(t *testing.T) {
	x := testdata.Linspace(0, 10, 21)
	slope := func(p int) float64 { return 0.5 + 0.1*float64(p) }
	intercept := func(p int) float64 { return 1.0 + float64(p) }
	cube := testdata.LineCube(2, 3, x, slope, intercept)

	res, err := FitCube(cube, SharedX(x), 1)
	require.NoError(t, err)

	for p := 0; p < cube.Pixels(); p++ {
		beta := res.Beta.PixelSpectrum(p)
		assert.InDelta(t, intercept(p), beta[0], 1e-9, "intercept of pixel %d", p)
		assert.InDelta(t, slope(p), beta[1], 1e-9, "slope of pixel %d", p)
		for _, r := range res.Residuals.PixelSpectrum(p) {
			assert.InDelta(t, 0, r, 1e-9)
		}
	}

	r2 := res.RSquared()
	for p := 0; p < cube.Pixels(); p++ {
		assert.InDelta(t, 1.0, r2.Data[p], 1e-9)
	}
}

func TestFitCubeQuadratic(t *testing.T) {
	x := testdata.Linspace(-5, 5, 31)
	cube := spectral.NewGrid(1, 1, len(x))
	for i, xv := range x {
		cube.Data[i] = 2 - 3*xv + 0.5*xv*xv
	}

	res, err := FitCube(cube, SharedX(x), 2)
	require.NoError(t, err)

	beta := res.Beta.PixelSpectrum(0)
	assert.InDelta(t, 2.0, beta[0], 1e-8)
	assert.InDelta(t, -3.0, beta[1], 1e-8)
	assert.InDelta(t, 0.5, beta[2], 1e-8)

	// Eval matches the polynomial away from the samples
	assert.InDelta(t, 2-3*1.7+0.5*1.7*1.7, res.Eval(1.7).Data[0], 1e-8)
}

func TestBatchedMatchesSingleSpectrum(t *testing.T) {
	x := testdata.Linspace(400, 900, 25)
	cube := spectral.NewGrid(3, 2, len(x))
	for p := 0; p < cube.Pixels(); p++ {
		s := cube.PixelSpectrum(p)
		for i, xv := range x {
			// deterministic per-pixel wiggles
			s[i] = 0.3 + 0.0004*xv + 0.05*math.Sin(xv/90+float64(p))
		}
	}

	batched, err := FitCube(cube, SharedX(x), 3)
	require.NoError(t, err)

	for p := 0; p < cube.Pixels(); p++ {
		single, err := FitSpectrum(cube.PixelSpectrum(p), x, 3)
		require.NoError(t, err)
		for k := range single.Beta {
			assert.InDelta(t, single.Beta[k], batched.Beta.PixelSpectrum(p)[k], 1e-8,
				"coefficient %d of pixel %d", k, p)
		}
	}
}

func TestPerPixelXMatchesShared(t *testing.T) {
	x := testdata.Linspace(0, 1, 12)
	cube := testdata.LineCube(2, 2, x, func(p int) float64 { return float64(p + 1) },
		func(p int) float64 { return 0.1 * float64(p) })

	xGrid := spectral.NewGrid(2, 2, len(x))
	for p := 0; p < 4; p++ {
		copy(xGrid.PixelSpectrum(p), x)
	}

	shared, err := FitCube(cube, SharedX(x), 1)
	require.NoError(t, err)
	perPixel, err := FitCube(cube, PerPixelX{Grid: xGrid}, 1)
	require.NoError(t, err)

	for i := range shared.Beta.Data {
		assert.InDelta(t, shared.Beta.Data[i], perPixel.Beta.Data[i], 1e-9)
	}
}

func TestPerPixelSingularityDoesNotAbortBatch(t *testing.T) {
	x := testdata.Linspace(0, 1, 8)
	cube := testdata.LineCube(1, 2, x, func(p int) float64 { return 2 },
		func(p int) float64 { return 1 })

	xGrid := spectral.NewGrid(1, 2, len(x))
	copy(xGrid.PixelSpectrum(0), x)
	// constant independent variable makes the second pixel's normal matrix
	// rank deficient
	for i := range xGrid.PixelSpectrum(1) {
		xGrid.PixelSpectrum(1)[i] = 3.0
	}

	res, err := FitCube(cube, PerPixelX{Grid: xGrid}, 1)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.Beta.PixelSpectrum(0)[0], 1e-9)
	assert.InDelta(t, 2.0, res.Beta.PixelSpectrum(0)[1], 1e-9)
	for _, v := range res.Beta.PixelSpectrum(1) {
		assert.True(t, math.IsNaN(v), "expected NaN coefficient, got %v", v)
	}
	for _, v := range res.Model.PixelSpectrum(1) {
		assert.True(t, math.IsNaN(v))
	}
}

func TestFitSpectrumSingularIsError(t *testing.T) {
	x := []float64{2, 2, 2, 2}
	y := []float64{1, 2, 3, 4}

	_, err := FitSpectrum(y, x, 1)
	var singular *SingularFitError
	require.ErrorAs(t, err, &singular)
}

func TestFitCubeDimensionMismatch(t *testing.T) {
	cube := spectral.NewGrid(2, 2, 10)

	_, err := FitCube(cube, SharedX(make([]float64, 7)), 1)
	var dimErr *spectral.DimensionError
	require.ErrorAs(t, err, &dimErr)

	_, err = FitCube(cube, PerPixelX{Grid: spectral.NewGrid(2, 2, 7)}, 1)
	require.ErrorAs(t, err, &dimErr)
}

func TestDesignMatrixAscendingPowers(t *testing.T) {
	d := DesignMatrix([]float64{2, 3}, 2)
	assert.Equal(t, 1.0, d.At(0, 0))
	assert.Equal(t, 2.0, d.At(0, 1))
	assert.Equal(t, 4.0, d.At(0, 2))
	assert.Equal(t, 9.0, d.At(1, 2))
}

func TestWeightedFitMatchesOrdinaryWithUniformErrors(t *testing.T) {
	x := testdata.Linspace(0, 5, 15)
	cube := testdata.LineCube(2, 2, x, func(p int) float64 { return 1.5 },
		func(p int) float64 { return float64(p) })
	yerr := spectral.NewGrid(2, 2, len(x))
	for i := range yerr.Data {
		yerr.Data[i] = 0.1
	}

	ols, err := FitCube(cube, SharedX(x), 1)
	require.NoError(t, err)
	wls, err := FitCubeWeighted(cube, SharedX(x), yerr, 1)
	require.NoError(t, err)

	for i := range ols.Beta.Data {
		assert.InDelta(t, ols.Beta.Data[i], wls.Beta.Data[i], 1e-8)
	}
	for _, v := range wls.BetaErr.Data {
		assert.Greater(t, v, 0.0)
	}
}

func TestWeightedSpectrumPredictionVariance(t *testing.T) {
	x := testdata.Linspace(0, 10, 20)
	y := make([]float64, len(x))
	yerr := make([]float64, len(x))
	for i, xv := range x {
		y[i] = 2 + 0.5*xv
		yerr[i] = 0.2
	}

	res, err := FitSpectrumWeighted(y, x, yerr, 1)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, res.Beta[0], 1e-8)
	assert.InDelta(t, 0.5, res.Beta[1], 1e-8)

	// variance grows away from the data's center of mass
	mid := res.PredictionVariance(5)
	far := res.PredictionVariance(25)
	assert.Greater(t, far, mid)
	assert.InDelta(t, math.Sqrt(mid), res.PredictionError(5), 1e-12)
}

func TestWeightedCubePredictionVarianceMatchesSpectrum(t *testing.T) {
	x := testdata.Linspace(0, 4, 12)
	cube := spectral.NewGrid(1, 2, len(x))
	yerr := spectral.NewGrid(1, 2, len(x))
	for p := 0; p < cube.Pixels(); p++ {
		for i, xv := range x {
			cube.PixelSpectrum(p)[i] = 1 + 0.5*float64(p) + (2+float64(p))*xv
			yerr.PixelSpectrum(p)[i] = 0.1 + 0.02*float64(i) + 0.01*float64(p)
		}
	}

	res, err := FitCubeWeighted(cube, SharedX(x), yerr, 1)
	require.NoError(t, err)

	for p := 0; p < cube.Pixels(); p++ {
		single, err := FitSpectrumWeighted(cube.PixelSpectrum(p), x, yerr.PixelSpectrum(p), 1)
		require.NoError(t, err)
		for _, xe := range []float64{0, 2.5, 6} {
			assert.InDelta(t, single.PredictionVariance(xe),
				res.PredictionVariance(xe).Data[p], 1e-12, "pixel %d at x=%g", p, xe)
		}
	}

	// variance grows away from the data's center of mass, per pixel
	mid := res.PredictionVariance(2)
	far := res.PredictionVariance(9)
	for p := 0; p < cube.Pixels(); p++ {
		assert.Greater(t, far.Data[p], mid.Data[p])
	}
}

func TestFitSpectrumRSquaredOnNoisyData(t *testing.T) {
	x := testdata.Linspace(0, 1, 50)
	y := make([]float64, len(x))
	for i, xv := range x {
		y[i] = xv + 0.1*math.Sin(40*xv)
	}

	res, err := FitSpectrum(y, x, 1)
	require.NoError(t, err)

	r2 := res.RSquared()
	assert.Greater(t, r2, 0.8)
	assert.Less(t, r2, 1.0)
}
