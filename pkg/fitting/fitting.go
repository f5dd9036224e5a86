// Package fitting implements vectorized polynomial least-squares fitting for
// spectra and spectral image cubes. A fit may share one independent-variable
// vector across every pixel, in which case the normal-equation prefix is
// computed once and applied to the whole cube through a single dense matrix
// product, or carry a separate independent variable per pixel, in which case
// the normal equations are inverted pixel by pixel.
package fitting

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/z-vig/reflspeckit/pkg/spectral"
)

// XData is the independent variable of a cube fit: either one vector shared
// by every pixel or a cube holding one vector per pixel. The variant set is
// closed.
type XData interface {
	xdata()
}

// SharedX is a single independent-variable vector used by all pixels.
type SharedX []float64

func (SharedX) xdata() {}

// PerPixelX holds an independent-variable cube with one vector per pixel,
// shaped identically to the dependent data.
type PerPixelX struct {
	Grid *spectral.Grid
}

func (PerPixelX) xdata() {}

// SingularFitError reports a degenerate design matrix for a whole-spectrum
// fit or a shared-design cube fit.
type SingularFitError struct {
	Order int
}

func (e *SingularFitError) Error() string {
	return fmt.Sprintf("fitting: singular design matrix for order-%d fit", e.Order)
}

// DesignMatrix builds the n x (order+1) polynomial design matrix for the
// given independent variable, with powers ascending from 0 to order.
func DesignMatrix(x []float64, order int) *mat.Dense {
	n := len(x)
	m := order + 1
	d := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		v := 1.0
		for p := 0; p < m; p++ {
			d.Set(i, p, v)
			v *= x[i]
		}
	}
	return d
}

// FitCube fits an order-k polynomial to every pixel's spectrum. The
// coefficient order is ascending: beta[0] is the constant term.
//
// With a SharedX independent variable, a singular design matrix fails the
// whole fit with a SingularFitError. With PerPixelX, a singular design matrix
// at one pixel marks that pixel's coefficients, model and residuals NaN and
// the remaining pixels are fitted normally.
func FitCube(cube *spectral.Grid, x XData, order int) (*CubeFitResult, error) {
	if order < 0 {
		return nil, fmt.Errorf("fitting: negative polynomial order %d", order)
	}
	switch xv := x.(type) {
	case SharedX:
		if len(xv) != cube.Bands {
			return nil, &spectral.DimensionError{
				Msg: fmt.Sprintf("independent variable length %d does not match %d spectral bands",
					len(xv), cube.Bands),
			}
		}
		return fitCubeShared(cube, xv, DesignMatrix(xv, order), order)
	case PerPixelX:
		if !cube.SameShape(xv.Grid) {
			return nil, &spectral.DimensionError{
				Msg: "per-pixel independent variable shape does not match the data cube",
			}
		}
		return fitCubePerPixel(cube, xv.Grid, order), nil
	default:
		return nil, fmt.Errorf("fitting: unsupported independent variable %T", x)
	}
}

// FitCubeDesign fits a cube against a precomputed shared design matrix whose
// row count must equal the cube's spectral length.
func FitCubeDesign(cube *spectral.Grid, design *mat.Dense, x []float64) (*CubeFitResult, error) {
	rows, cols := design.Dims()
	if rows != cube.Bands {
		return nil, &spectral.DimensionError{
			Msg: fmt.Sprintf("design matrix has %d rows but the cube has %d spectral bands",
				rows, cube.Bands),
		}
	}
	return fitCubeShared(cube, SharedX(x), design, cols-1)
}

// fitCubeShared computes beta = (X'X)^-1 X' y once and applies it to every
// pixel through one dense product over the whole cube.
func fitCubeShared(cube *spectral.Grid, x SharedX, design *mat.Dense, order int) (*CubeFitResult, error) {
	n := cube.Bands
	m := order + 1
	p := cube.Pixels()

	var xtx mat.Dense
	xtx.Mul(design.T(), design)
	var inv mat.Dense
	if !invertNormal(&inv, &xtx) {
		return nil, &SingularFitError{Order: order}
	}
	var prefix mat.Dense
	prefix.Mul(&inv, design.T()) // m x n

	// The cube's flat layout is already a pixels-by-bands dense matrix.
	y := mat.NewDense(p, n, cube.Data)

	var beta mat.Dense
	beta.Mul(y, prefix.T()) // p x m
	var model mat.Dense
	model.Mul(&beta, design.T()) // p x n

	res := &CubeFitResult{
		X:         x,
		Y:         cube,
		Beta:      denseToGrid(&beta, cube.Rows, cube.Cols, m),
		Model:     denseToGrid(&model, cube.Rows, cube.Cols, n),
		Order:     order,
		Residuals: spectral.NewGrid(cube.Rows, cube.Cols, n),
	}
	for i, v := range res.Model.Data {
		res.Residuals.Data[i] = v - cube.Data[i]
	}
	return res, nil
}

// fitCubePerPixel inverts the normal equations independently for each pixel.
func fitCubePerPixel(cube, xGrid *spectral.Grid, order int) *CubeFitResult {
	n := cube.Bands
	m := order + 1

	res := &CubeFitResult{
		X:         PerPixelX{Grid: xGrid},
		Y:         cube,
		Beta:      spectral.NewGrid(cube.Rows, cube.Cols, m),
		Model:     spectral.NewGrid(cube.Rows, cube.Cols, n),
		Order:     order,
		Residuals: spectral.NewGrid(cube.Rows, cube.Cols, n),
	}

	beta := make([]float64, m)
	modelRow := make([]float64, n)
	for p := 0; p < cube.Pixels(); p++ {
		x := xGrid.PixelSpectrum(p)
		y := cube.PixelSpectrum(p)
		if err := fitPixel(x, y, order, beta); err != nil {
			fillNaN(res.Beta.PixelSpectrum(p))
			fillNaN(res.Model.PixelSpectrum(p))
			fillNaN(res.Residuals.PixelSpectrum(p))
			continue
		}
		copy(res.Beta.PixelSpectrum(p), beta)
		evalPoly(beta, x, modelRow)
		copy(res.Model.PixelSpectrum(p), modelRow)
		resRow := res.Residuals.PixelSpectrum(p)
		for i := range resRow {
			resRow[i] = modelRow[i] - y[i]
		}
	}
	return res
}

// fitPixel solves one ordinary least-squares polynomial fit, writing the
// ascending-power coefficients into beta.
func fitPixel(x, y []float64, order int, beta []float64) error {
	design := DesignMatrix(x, order)
	var xtx mat.Dense
	xtx.Mul(design.T(), design)
	var inv mat.Dense
	if !invertNormal(&inv, &xtx) {
		return &SingularFitError{Order: order}
	}
	var prefix mat.Dense
	prefix.Mul(&inv, design.T())
	var b mat.VecDense
	b.MulVec(&prefix, mat.NewVecDense(len(y), y))
	copy(beta, b.RawVector().Data)
	return nil
}

// invertNormal inverts a normal matrix into inv. High-order fits against raw
// wavelength values produce badly conditioned normal matrices; the computed
// inverse is kept whenever the condition number is finite, and only an
// exactly singular matrix is rejected.
func invertNormal(inv, a *mat.Dense) bool {
	err := inv.Inverse(a)
	if err == nil {
		return true
	}
	var cond mat.Condition
	return errors.As(err, &cond) && !math.IsInf(float64(cond), 1)
}

// evalPoly evaluates the ascending-power polynomial beta at every x, writing
// into out.
func evalPoly(beta, x, out []float64) {
	for i, xv := range x {
		v := 0.0
		pow := 1.0
		for _, c := range beta {
			v += c * pow
			pow *= xv
		}
		out[i] = v
	}
}

func fillNaN(s []float64) {
	for i := range s {
		s[i] = math.NaN()
	}
}

// denseToGrid copies a pixels-by-bands dense matrix into a cube.
func denseToGrid(d *mat.Dense, rows, cols, bands int) *spectral.Grid {
	g := spectral.NewGrid(rows, cols, bands)
	rm := d.RawMatrix()
	if rm.Stride == bands {
		copy(g.Data, rm.Data[:rows*cols*bands])
		return g
	}
	for p := 0; p < rows*cols; p++ {
		copy(g.PixelSpectrum(p), rm.Data[p*rm.Stride:p*rm.Stride+bands])
	}
	return g
}
