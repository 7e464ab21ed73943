package optimizer

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// varianceTolerance is how far below zero a computed variance may fall
// before it is treated as a non-PSD covariance matrix rather than rounding
// noise.
const varianceTolerance = 1e-10

// Performance computes the portfolio return, risk (standard deviation) and
// Sharpe ratio for a weight vector. Risk is always derived here so callers
// never report a solver's surrogate objective.
func Performance(weights []float64, mu []float64, sigma *mat.SymDense, riskFree float64) (ret, risk, sharpe float64, err error) {
	for i, w := range weights {
		ret += w * mu[i]
	}

	w := mat.NewVecDense(len(weights), weights)
	variance := mat.Inner(w, sigma, w)
	if variance < -varianceTolerance {
		return 0, 0, 0, &NegativeVarianceError{Variance: variance}
	}
	if variance < 0 {
		variance = 0
	}
	risk = math.Sqrt(variance)

	if risk == 0 {
		return ret, 0, 0, &ZeroRiskError{Return: ret}
	}
	sharpe = (ret - riskFree) / risk
	return ret, risk, sharpe, nil
}
