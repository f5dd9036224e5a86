// Package pipeline sequences the spectral processing stages for image cubes
// and single spectra: outlier removal, noise reduction, continuum removal
// and on-demand absorption-feature fitting. Each stage produces a new array;
// the orchestrator keeps the per-stage results and a monotonic stage tag, so
// intermediate data stays inspectable and repeated calls are no-ops.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/z-vig/reflspeckit/pkg/absorption"
	"github.com/z-vig/reflspeckit/pkg/continuum"
	"github.com/z-vig/reflspeckit/pkg/filtering"
	"github.com/z-vig/reflspeckit/pkg/outliers"
	"github.com/z-vig/reflspeckit/pkg/spectral"
)

// Stage identifies how far a cube or spectrum has progressed through the
// pipeline.
type Stage int

const (
	StageRaw Stage = iota
	StageOutliersRemoved
	StageFiltered
	StageContinuumRemoved
)

// String returns a human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StageRaw:
		return "raw"
	case StageOutliersRemoved:
		return "outliers removed"
	case StageFiltered:
		return "filtered"
	case StageContinuumRemoved:
		return "continuum removed"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Defaults used when a later stage auto-runs a missing prerequisite.
const (
	DefaultSigmaThreshold = 1.5
	DefaultFilterWidth    = 7
)

// albedoWavelengthNM is the band sampled for the albedo image, in
// nanometers.
const albedoWavelengthNM = 1580.0

// ErrContinuumNotRemoved reports absorption-feature extraction requested
// before continuum removal. The prerequisite is never inferred for feature
// fits; the caller decides the removal parameters.
var ErrContinuumNotRemoved = errors.New("pipeline: continuum removal has not been performed")

// Cube drives a spectral image cube through the pipeline. One Cube owns its
// arrays exclusively; concurrent callers need external synchronization.
type Cube struct {
	// FitOrder is the polynomial order for absorption-feature fits
	FitOrder int

	// Verbose turns on progress messages
	Verbose bool

	wvl    *spectral.Wavelength
	stage  Stage
	grids  map[Stage]*spectral.Grid
	cont   *spectral.Grid
	albedo *spectral.Map
}

// NewCube wraps a raw cube and its wavelength axis. The wavelength length
// must match the cube's spectral axis.
func NewCube(grid *spectral.Grid, wvl *spectral.Wavelength) (*Cube, error) {
	if wvl.Len() != grid.Bands {
		return nil, &spectral.DimensionError{
			Msg: fmt.Sprintf("wavelength axis has %d samples but the cube has %d bands",
				wvl.Len(), grid.Bands),
		}
	}
	return &Cube{
		FitOrder: absorption.DefaultFitOrder,
		wvl:      wvl,
		stage:    StageRaw,
		grids:    map[Stage]*spectral.Grid{StageRaw: grid},
	}, nil
}

// Stage returns the current pipeline stage.
func (c *Cube) Stage() Stage { return c.stage }

// Wavelength returns the cube's wavelength axis.
func (c *Cube) Wavelength() *spectral.Wavelength { return c.wvl }

// Grid returns the cube at its current stage.
func (c *Cube) Grid() *spectral.Grid { return c.grids[c.stage] }

// GridAt returns the cube as it stood after the given stage, if that stage
// has run.
func (c *Cube) GridAt(s Stage) (*spectral.Grid, bool) {
	g, ok := c.grids[s]
	return g, ok
}

// Continuum returns the fitted continuum, available once continuum removal
// has run.
func (c *Cube) Continuum() *spectral.Grid { return c.cont }

// Albedo returns the albedo image sampled from the smoothed cube at the band
// nearest 1580 nm, available once filtering has run.
func (c *Cube) Albedo() *spectral.Map { return c.albedo }

// RemoveOutliers replaces statistical outliers along every spectrum. A no-op
// when outlier removal or a later stage already ran.
func (c *Cube) RemoveOutliers(threshold float64) error {
	if c.stage >= StageOutliersRemoved {
		return nil
	}
	c.logf("Removing outliers (threshold %.2f sigma)...", threshold)
	out, err := outliers.RemoveOutliers(c.Grid(), threshold)
	if err != nil {
		return fmt.Errorf("outlier removal failed: %w", err)
	}
	c.grids[StageOutliersRemoved] = out
	c.stage = StageOutliersRemoved
	return nil
}

// ReduceNoise smooths every spectrum with the given strategy, running
// outlier removal first with defaults if it has not run. A no-op when
// filtering or a later stage already ran.
func (c *Cube) ReduceNoise(strat filtering.Strategy) error {
	if c.stage >= StageFiltered {
		return nil
	}
	if c.stage < StageOutliersRemoved {
		if err := c.RemoveOutliers(DefaultSigmaThreshold); err != nil {
			return err
		}
	}
	c.logf("Running noise reduction (%s)...", strat.Name())
	mean, _, err := strat.Smooth(c.Grid())
	if err != nil {
		return fmt.Errorf("noise reduction failed: %w", err)
	}
	scale, err := c.wvl.Unit().ScaleFromNanometers()
	if err != nil {
		return err
	}
	idx, _ := spectral.FindWavelength(c.wvl.Values, albedoWavelengthNM*scale)
	c.albedo = mean.BandImage(idx)
	c.grids[StageFiltered] = mean
	c.stage = StageFiltered
	return nil
}

// RemoveContinuum divides every spectrum by its fitted continuum, running
// noise reduction first with defaults if it has not run. A no-op when
// continuum removal already ran.
func (c *Cube) RemoveContinuum(strat continuum.Strategy) error {
	if c.stage >= StageContinuumRemoved {
		return nil
	}
	if c.stage < StageFiltered {
		if err := c.ReduceNoise(filtering.BoxFilter{Width: DefaultFilterWidth}); err != nil {
			return err
		}
	}
	c.logf("Removing spectral continuum (%s)...", strat.Name())
	removed, cont, err := strat.Remove(c.Grid(), c.wvl)
	if err != nil {
		return fmt.Errorf("continuum removal failed: %w", err)
	}
	c.cont = cont
	c.grids[StageContinuumRemoved] = removed
	c.stage = StageContinuumRemoved
	return nil
}

// FitAbsorption fits an absorption feature over the [low, high] wavelength
// sub-range of the continuum-removed cube. The unit must match the cube's
// wavelength axis. Requires continuum removal to have run.
func (c *Cube) FitAbsorption(low, high float64, unit spectral.Unit) (*absorption.Feature, error) {
	if c.stage != StageContinuumRemoved {
		return nil, ErrContinuumNotRemoved
	}
	c.logf("Fitting absorption feature from %g to %g %v...", low, high, unit)
	return absorption.NewFeature(c.Grid(), c.wvl, low, high, unit, c.FitOrder)
}

func (c *Cube) logf(format string, args ...any) {
	if c.Verbose {
		fmt.Printf(format+"\n", args...)
	}
}
