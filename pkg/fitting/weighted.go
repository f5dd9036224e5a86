package fitting

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/z-vig/reflspeckit/pkg/spectral"
)

// FitCubeWeighted fits an order-k polynomial to every pixel with per-sample
// weights 1/yerr^2. Because the error cube varies pixel by pixel the normal
// equations are always solved per pixel, even when the independent variable
// is shared. A singular weighted design at one pixel marks that pixel NaN and
// the batch continues.
func FitCubeWeighted(cube *spectral.Grid, x XData, yerr *spectral.Grid, order int) (*WeightedCubeFitResult, error) {
	if order < 0 {
		return nil, fmt.Errorf("fitting: negative polynomial order %d", order)
	}
	if !cube.SameShape(yerr) {
		return nil, &spectral.DimensionError{
			Msg: "y-error cube shape does not match the data cube",
		}
	}
	var xAt func(p int) []float64
	switch xv := x.(type) {
	case SharedX:
		if len(xv) != cube.Bands {
			return nil, &spectral.DimensionError{
				Msg: fmt.Sprintf("independent variable length %d does not match %d spectral bands",
					len(xv), cube.Bands),
			}
		}
		xAt = func(int) []float64 { return xv }
	case PerPixelX:
		if !cube.SameShape(xv.Grid) {
			return nil, &spectral.DimensionError{
				Msg: "per-pixel independent variable shape does not match the data cube",
			}
		}
		xAt = xv.Grid.PixelSpectrum
	default:
		return nil, fmt.Errorf("fitting: unsupported independent variable %T", x)
	}

	n := cube.Bands
	m := order + 1
	res := &WeightedCubeFitResult{
		CubeFitResult: CubeFitResult{
			X:         x,
			Y:         cube,
			Beta:      spectral.NewGrid(cube.Rows, cube.Cols, m),
			Model:     spectral.NewGrid(cube.Rows, cube.Cols, n),
			Order:     order,
			Residuals: spectral.NewGrid(cube.Rows, cube.Cols, n),
		},
		BetaErr: spectral.NewGrid(cube.Rows, cube.Cols, m),
		cov:     spectral.NewGrid(cube.Rows, cube.Cols, m*m),
	}

	beta := make([]float64, m)
	betaErr := make([]float64, m)
	cov := make([]float64, m*m)
	modelRow := make([]float64, n)
	for p := 0; p < cube.Pixels(); p++ {
		xRow := xAt(p)
		y := cube.PixelSpectrum(p)
		errRow := yerr.PixelSpectrum(p)
		if err := fitPixelWeighted(xRow, y, errRow, order, beta, betaErr, cov); err != nil {
			fillNaN(res.Beta.PixelSpectrum(p))
			fillNaN(res.BetaErr.PixelSpectrum(p))
			fillNaN(res.cov.PixelSpectrum(p))
			fillNaN(res.Model.PixelSpectrum(p))
			fillNaN(res.Residuals.PixelSpectrum(p))
			continue
		}
		copy(res.Beta.PixelSpectrum(p), beta)
		copy(res.BetaErr.PixelSpectrum(p), betaErr)
		copy(res.cov.PixelSpectrum(p), cov)
		evalPoly(beta, xRow, modelRow)
		copy(res.Model.PixelSpectrum(p), modelRow)
		resRow := res.Residuals.PixelSpectrum(p)
		for i := range resRow {
			resRow[i] = modelRow[i] - y[i]
		}
	}
	return res, nil
}

// fitPixelWeighted solves one weighted least-squares fit. Scaling each design
// row and observation by 1/yerr is equivalent to the diagonal-weight normal
// equations X'WX beta = X'Wy with W = diag(1/yerr^2), and the inverse of the
// scaled normal matrix is the coefficient covariance.
func fitPixelWeighted(x, y, yerr []float64, order int, beta, betaErr, cov []float64) error {
	n := len(x)
	m := order + 1

	a := mat.NewDense(n, m, nil)
	b := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		w := 1 / yerr[i]
		pow := 1.0
		for p := 0; p < m; p++ {
			a.Set(i, p, pow*w)
			pow *= x[i]
		}
		b.SetVec(i, y[i]*w)
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)
	var c mat.Dense
	if !invertNormal(&c, &ata) {
		return &SingularFitError{Order: order}
	}

	var atb mat.VecDense
	atb.MulVec(a.T(), b)
	var sol mat.VecDense
	sol.MulVec(&c, &atb)
	copy(beta, sol.RawVector().Data)

	for p := 0; p < m; p++ {
		betaErr[p] = math.Sqrt(math.Abs(c.At(p, p)))
		for q := 0; q < m; q++ {
			cov[p*m+q] = c.At(p, q)
		}
	}
	return nil
}
