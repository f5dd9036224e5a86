package pipeline

import (
	"image"

	"github.com/z-vig/reflspeckit/pkg/visualization"
)

// The two absorption features composited in the standard mineral-mapping RGB
// product, in nanometers: the 1-micron and 2-micron bands.
var (
	rgbBand1 = [2]float64{789, 1309}
	rgbBand2 = [2]float64{1658, 2498}
)

// RGBProduct builds the standard three-channel mineral-mapping composite:
// red and green are the integrated band depths of the 1-micron and 2-micron
// absorption features, blue is the albedo image. Requires continuum removal
// to have run.
func (c *Cube) RGBProduct() (image.Image, error) {
	if c.stage != StageContinuumRemoved {
		return nil, ErrContinuumNotRemoved
	}
	scale, err := c.wvl.Unit().ScaleFromNanometers()
	if err != nil {
		return nil, err
	}

	bnd1, err := c.FitAbsorption(rgbBand1[0]*scale, rgbBand1[1]*scale, c.wvl.Unit())
	if err != nil {
		return nil, err
	}
	bnd2, err := c.FitAbsorption(rgbBand2[0]*scale, rgbBand2[1]*scale, c.wvl.Unit())
	if err != nil {
		return nil, err
	}

	return visualization.RGBComposite(
		bnd1.IntegratedBandDepth(),
		bnd2.IntegratedBandDepth(),
		c.albedo,
	)
}
