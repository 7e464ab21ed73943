package optimizer

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"PortOpt/internal/domain/models"
)

// tradingDays is the annualization factor for daily observations.
const tradingDays = 252.0

// minReturnObservations is the smallest number of return rows the sample
// covariance is defined for.
const minReturnObservations = 2

// Estimates are the annualized inputs of every optimization: expected
// returns and sample covariance, both indexed in PriceTable ticker order.
// Immutable once computed.
type Estimates struct {
	Tickers         []string
	ExpectedReturns []float64
	Covariance      *mat.SymDense
}

// Estimate converts a table of aligned closing prices into annualized
// expected returns and a covariance matrix. Period-over-period simple
// returns are used; the first price row has no return and is dropped.
func Estimate(table *models.PriceTable) (*Estimates, error) {
	n := table.NumAssets()
	obs := table.NumObservations() - 1
	if obs < minReturnObservations {
		return nil, &InsufficientDataError{Observations: max(obs, 0), Required: minReturnObservations}
	}

	returns := mat.NewDense(obs, n, nil)
	for i := 0; i < obs; i++ {
		for j := 0; j < n; j++ {
			prev := table.At(i, j)
			returns.Set(i, j, table.At(i+1, j)/prev-1)
		}
	}

	mu := make([]float64, n)
	col := make([]float64, obs)
	for j := 0; j < n; j++ {
		mat.Col(col, j, returns)
		mu[j] = stat.Mean(col, nil) * tradingDays
	}

	cov := mat.NewSymDense(n, nil)
	stat.CovarianceMatrix(cov, returns, nil)
	cov.ScaleSym(tradingDays, cov)

	return &Estimates{
		Tickers:         append([]string(nil), table.Tickers...),
		ExpectedReturns: mu,
		Covariance:      cov,
	}, nil
}
