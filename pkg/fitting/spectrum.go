package fitting

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FitResult holds a single-spectrum polynomial fit.
type FitResult struct {
	X         []float64
	Y         []float64
	Model     []float64
	Beta      []float64
	Residuals []float64
	Order     int
}

// RSquared returns the coefficient of determination of the fit.
func (r *FitResult) RSquared() float64 {
	ssRes := floats.Dot(r.Residuals, r.Residuals)
	mean := stat.Mean(r.Y, nil)
	ssTot := 0.0
	for _, v := range r.Y {
		d := v - mean
		ssTot += d * d
	}
	return 1 - ssRes/ssTot
}

// Eval evaluates the fitted polynomial at x.
func (r *FitResult) Eval(x float64) float64 {
	v := 0.0
	pow := 1.0
	for _, c := range r.Beta {
		v += c * pow
		pow *= x
	}
	return v
}

// FitSpectrum fits an order-k polynomial to a single spectrum. Unlike the
// batched cube path, a singular design matrix here is returned as an error.
func FitSpectrum(y, x []float64, order int) (*FitResult, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("fitting: x length %d does not match y length %d", len(x), len(y))
	}
	if order < 0 {
		return nil, fmt.Errorf("fitting: negative polynomial order %d", order)
	}
	m := order + 1
	beta := make([]float64, m)
	if err := fitPixel(x, y, order, beta); err != nil {
		return nil, err
	}
	model := make([]float64, len(x))
	evalPoly(beta, x, model)
	res := make([]float64, len(x))
	for i := range res {
		res[i] = model[i] - y[i]
	}
	return &FitResult{X: x, Y: y, Model: model, Beta: beta, Residuals: res, Order: order}, nil
}

// WeightedFitResult augments a single-spectrum fit with coefficient standard
// errors and covariance.
type WeightedFitResult struct {
	FitResult
	BetaErr []float64
	cov     []float64
}

// PredictionVariance evaluates the variance of the fitted model at x, the
// quadratic form of the coefficient covariance.
func (r *WeightedFitResult) PredictionVariance(x float64) float64 {
	m := r.Order + 1
	pow := make([]float64, m)
	pow[0] = 1
	for k := 1; k < m; k++ {
		pow[k] = pow[k-1] * x
	}
	v := 0.0
	for a := 0; a < m; a++ {
		for b := 0; b < m; b++ {
			v += pow[a] * r.cov[a*m+b] * pow[b]
		}
	}
	return v
}

// PredictionError evaluates the standard error of the fitted model at x.
func (r *WeightedFitResult) PredictionError(x float64) float64 {
	return math.Sqrt(r.PredictionVariance(x))
}

// FitSpectrumWeighted fits an order-k polynomial to a single spectrum with
// per-sample weights 1/yerr^2.
func FitSpectrumWeighted(y, x, yerr []float64, order int) (*WeightedFitResult, error) {
	if len(x) != len(y) || len(yerr) != len(y) {
		return nil, fmt.Errorf("fitting: mismatched lengths x=%d y=%d yerr=%d",
			len(x), len(y), len(yerr))
	}
	if order < 0 {
		return nil, fmt.Errorf("fitting: negative polynomial order %d", order)
	}
	m := order + 1
	beta := make([]float64, m)
	betaErr := make([]float64, m)
	cov := make([]float64, m*m)
	if err := fitPixelWeighted(x, y, yerr, order, beta, betaErr, cov); err != nil {
		return nil, err
	}
	model := make([]float64, len(x))
	evalPoly(beta, x, model)
	res := make([]float64, len(x))
	for i := range res {
		res[i] = model[i] - y[i]
	}
	return &WeightedFitResult{
		FitResult: FitResult{X: x, Y: y, Model: model, Beta: beta, Residuals: res, Order: order},
		BetaErr:   betaErr,
		cov:       cov,
	}, nil
}
