package filtering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z-vig/reflspeckit/internal/testdata"
	"github.com/z-vig/reflspeckit/pkg/spectral"
)

func TestBoxFilterPreservesLinearRamp(t *testing.T) {
	// a moving average of a line is the line itself, and the linear edge
	// extensions keep that exact through the boundary samples
	x := testdata.Linspace(0, 1, 40)
	cube := testdata.LineCube(2, 2, x, func(p int) float64 { return 1 + float64(p) },
		func(p int) float64 { return 0.5 })

	mean, _, err := BoxFilter{Width: 5}.Smooth(cube)
	require.NoError(t, err)
	require.True(t, cube.SameShape(mean))

	for p := 0; p < cube.Pixels(); p++ {
		in := cube.PixelSpectrum(p)
		out := mean.PixelSpectrum(p)
		for i := range in {
			assert.InDelta(t, in[i], out[i], 1e-9, "sample %d of pixel %d", i, p)
		}
	}
}

func TestBoxFilterOutputLength(t *testing.T) {
	cube := spectral.NewGrid(1, 1, 33)
	for i := range cube.Data {
		cube.Data[i] = float64(i % 5)
	}

	mean, sigma, err := BoxFilter{Width: 7}.Smooth(cube)
	require.NoError(t, err)
	assert.Equal(t, 33, mean.Bands)
	assert.Equal(t, 33, sigma.Bands)
}

func TestBoxFilterRampNoise(t *testing.T) {
	// windowed variance of an arithmetic sequence with step d over w samples
	// is d^2 (w^2-1)/12
	const (
		n    = 60
		w    = 5
		step = 0.2
	)
	spec := make([]float64, n)
	for i := range spec {
		spec[i] = 3 + step*float64(i)
	}

	_, sigma, err := SmoothSpectrum(BoxFilter{Width: w}, spec)
	require.NoError(t, err)

	want := step * step * (w*w - 1) / 12
	for i := w; i < n-w; i++ {
		assert.InDelta(t, want, sigma[i]*sigma[i], 1e-6, "sample %d", i)
	}
}

func TestBoxFilterConstantSpectrum(t *testing.T) {
	spec := make([]float64, 30)
	for i := range spec {
		spec[i] = 1.0
	}

	mean, _, err := SmoothSpectrum(BoxFilter{Width: 5}, spec)
	require.NoError(t, err)
	for i, v := range mean {
		assert.InDelta(t, 1.0, v, 1e-9, "sample %d", i)
	}
}

func TestBoxFilterSmoothsSpike(t *testing.T) {
	spec := make([]float64, 25)
	for i := range spec {
		spec[i] = 1.0
	}
	spec[12] = 11.0

	mean, sigma, err := SmoothSpectrum(BoxFilter{Width: 5}, spec)
	require.NoError(t, err)

	// the spike's mass spreads over the window
	assert.InDelta(t, 3.0, mean[12], 1e-9)
	assert.Greater(t, sigma[12], 1.0)
	// far from the spike the spectrum is untouched
	assert.InDelta(t, 1.0, mean[3], 1e-9)
}

func TestBoxFilterDoesNotMutateInput(t *testing.T) {
	cube := spectral.NewGrid(1, 1, 30)
	for i := range cube.Data {
		cube.Data[i] = float64(i)
	}
	before := cube.Clone()

	_, _, err := BoxFilter{Width: 5}.Smooth(cube)
	require.NoError(t, err)
	assert.Equal(t, before.Data, cube.Data)
}

func TestBoxFilterRejectsBadWindow(t *testing.T) {
	cube := spectral.NewGrid(1, 1, 30)
	_, _, err := BoxFilter{Width: 0}.Smooth(cube)
	require.Error(t, err)
}

func TestBoxFilterRejectsTooShortSpectrum(t *testing.T) {
	cube := spectral.NewGrid(1, 1, 2)
	_, _, err := BoxFilter{Width: 3}.Smooth(cube)
	require.Error(t, err)
}

func TestBoxFilterName(t *testing.T) {
	assert.Equal(t, "box_filter", BoxFilter{Width: 5}.Name())
}
