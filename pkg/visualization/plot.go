package visualization

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/z-vig/reflspeckit/pkg/spectral"
)

// Series is one named spectrum to draw.
type Series struct {
	Name   string
	Values []float64
}

// SpectrumPlot renders one or more spectra against a shared wavelength axis
// and writes the chart to path. The output format follows the file
// extension.
func SpectrumPlot(wvl *spectral.Wavelength, series []Series, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = fmt.Sprintf("Wavelength (%v)", wvl.Unit())
	p.Y.Label.Text = "Reflectance"

	for i, s := range series {
		if len(s.Values) != wvl.Len() {
			return &spectral.DimensionError{
				Msg: fmt.Sprintf("series %q has %d samples for a %d-sample wavelength axis",
					s.Name, len(s.Values), wvl.Len()),
			}
		}
		pts := make(plotter.XYs, wvl.Len())
		for k := range pts {
			pts[k].X = wvl.Values[k]
			pts[k].Y = s.Values[k]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to build line for %q: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
