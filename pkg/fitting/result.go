package fitting

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/z-vig/reflspeckit/pkg/spectral"
)

// CubeFitResult holds the outcome of a cube fit. It is created complete by
// one fit call and never mutated afterwards.
type CubeFitResult struct {
	// X is the independent variable the fit was run against
	X XData

	// Y is the dependent data cube
	Y *spectral.Grid

	// Model holds the fitted values at every sample of every pixel
	Model *spectral.Grid

	// Beta holds the per-pixel coefficient vectors, powers ascending
	Beta *spectral.Grid

	// Residuals is Model minus Y
	Residuals *spectral.Grid

	// Order is the polynomial order of the fit
	Order int
}

// RSquared returns the per-pixel coefficient of determination,
// 1 - SSres/SStot, with the mean taken along the spectral axis of each pixel.
func (r *CubeFitResult) RSquared() *spectral.Map {
	out := spectral.NewMap(r.Y.Rows, r.Y.Cols)
	for p := 0; p < r.Y.Pixels(); p++ {
		y := r.Y.PixelSpectrum(p)
		res := r.Residuals.PixelSpectrum(p)
		ssRes := floats.Dot(res, res)
		mean := stat.Mean(y, nil)
		ssTot := 0.0
		for _, v := range y {
			d := v - mean
			ssTot += d * d
		}
		out.Data[p] = 1 - ssRes/ssTot
	}
	return out
}

// Eval evaluates the fitted polynomial of every pixel at a single value of
// the independent variable.
func (r *CubeFitResult) Eval(x float64) *spectral.Map {
	m := r.Order + 1
	out := spectral.NewMap(r.Y.Rows, r.Y.Cols)
	for p := 0; p < r.Y.Pixels(); p++ {
		beta := r.Beta.PixelSpectrum(p)
		v := 0.0
		pow := 1.0
		for k := 0; k < m; k++ {
			v += beta[k] * pow
			pow *= x
		}
		out.Data[p] = v
	}
	return out
}

// WeightedCubeFitResult augments a cube fit with the per-pixel coefficient
// standard errors and covariance produced by a weighted fit.
type WeightedCubeFitResult struct {
	CubeFitResult

	// BetaErr holds the per-pixel coefficient standard errors, the square
	// roots of the covariance diagonal
	BetaErr *spectral.Grid

	// cov holds each pixel's (order+1)x(order+1) covariance matrix flattened
	// row-major
	cov *spectral.Grid
}

// PredictionVariance evaluates the closed-form variance of the fitted model
// at x for every pixel, the quadratic form v' C v with v the ascending powers
// of x and C the coefficient covariance.
func (r *WeightedCubeFitResult) PredictionVariance(x float64) *spectral.Map {
	m := r.Order + 1
	pow := make([]float64, m)
	pow[0] = 1
	for k := 1; k < m; k++ {
		pow[k] = pow[k-1] * x
	}
	out := spectral.NewMap(r.Y.Rows, r.Y.Cols)
	for p := 0; p < r.Y.Pixels(); p++ {
		c := r.cov.PixelSpectrum(p)
		v := 0.0
		for a := 0; a < m; a++ {
			for b := 0; b < m; b++ {
				v += pow[a] * c[a*m+b] * pow[b]
			}
		}
		out.Data[p] = v
	}
	return out
}
