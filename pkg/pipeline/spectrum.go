package pipeline

import (
	"github.com/z-vig/reflspeckit/pkg/absorption"
	"github.com/z-vig/reflspeckit/pkg/continuum"
	"github.com/z-vig/reflspeckit/pkg/filtering"
	"github.com/z-vig/reflspeckit/pkg/spectral"
)

// Spectrum drives a single spectrum through the same pipeline as Cube,
// implemented as a one-pixel cube.
type Spectrum struct {
	cube *Cube
}

// NewSpectrum wraps a raw spectrum and its wavelength axis. The input slice
// is copied; the caller keeps ownership of its data.
func NewSpectrum(values []float64, wvl *spectral.Wavelength) (*Spectrum, error) {
	y := make([]float64, len(values))
	copy(y, values)
	grid, err := spectral.GridFromData(1, 1, len(y), y)
	if err != nil {
		return nil, err
	}
	c, err := NewCube(grid, wvl)
	if err != nil {
		return nil, err
	}
	return &Spectrum{cube: c}, nil
}

// SetVerbose turns progress messages on or off.
func (s *Spectrum) SetVerbose(v bool) { s.cube.Verbose = v }

// SetFitOrder sets the polynomial order for absorption-feature fits.
func (s *Spectrum) SetFitOrder(order int) { s.cube.FitOrder = order }

// Stage returns the current pipeline stage.
func (s *Spectrum) Stage() Stage { return s.cube.Stage() }

// Wavelength returns the spectrum's wavelength axis.
func (s *Spectrum) Wavelength() *spectral.Wavelength { return s.cube.Wavelength() }

// Values returns the spectrum at its current stage.
func (s *Spectrum) Values() []float64 { return s.cube.Grid().PixelSpectrum(0) }

// ValuesAt returns the spectrum as it stood after the given stage, if that
// stage has run.
func (s *Spectrum) ValuesAt(stage Stage) ([]float64, bool) {
	g, ok := s.cube.GridAt(stage)
	if !ok {
		return nil, false
	}
	return g.PixelSpectrum(0), true
}

// Continuum returns the fitted continuum, available once continuum removal
// has run.
func (s *Spectrum) Continuum() []float64 {
	if s.cube.cont == nil {
		return nil
	}
	return s.cube.cont.PixelSpectrum(0)
}

// RemoveOutliers replaces statistical outliers in the spectrum.
func (s *Spectrum) RemoveOutliers(threshold float64) error {
	return s.cube.RemoveOutliers(threshold)
}

// ReduceNoise smooths the spectrum with the given strategy.
func (s *Spectrum) ReduceNoise(strat filtering.Strategy) error {
	return s.cube.ReduceNoise(strat)
}

// RemoveContinuum divides the spectrum by its fitted continuum.
func (s *Spectrum) RemoveContinuum(strat continuum.Strategy) error {
	return s.cube.RemoveContinuum(strat)
}

// FitAbsorption fits an absorption feature over a wavelength sub-range of
// the continuum-removed spectrum.
func (s *Spectrum) FitAbsorption(low, high float64, unit spectral.Unit) (*absorption.Feature, error) {
	return s.cube.FitAbsorption(low, high, unit)
}
