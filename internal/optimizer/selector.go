package optimizer

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"PortOpt/internal/domain/models"
)

// Select derives the minimum-variance and maximum-Sharpe portfolios for a
// traced frontier. Both are solved directly (the same constraint set minus
// the return target) and then compared against every frontier point, so the
// returned minimum-variance risk never exceeds any frontier risk and the
// returned Sharpe ratio never trails any frontier point's. Ties on Sharpe
// break toward lower risk. All figures are re-derived from the winning
// weights, never interpolated.
func (s *Solver) Select(frontier *Frontier, est *Estimates, riskFree float64) (*models.OptimalPortfolios, error) {
	if frontier == nil || len(frontier.Points) == 0 {
		requested := 0
		if frontier != nil {
			requested = len(frontier.Infeasible)
		}
		return nil, &NoFeasiblePortfolioError{Requested: requested}
	}

	candidates := make([][]float64, 0, len(frontier.Points)+2)
	for _, p := range frontier.Points {
		candidates = append(candidates, p.Weights)
	}
	if w, err := s.solveMinVariance(est); err == nil {
		candidates = append(candidates, w)
	}
	if w, err := s.solveMaxSharpe(est, riskFree); err == nil {
		candidates = append(candidates, w)
	}

	mu := est.ExpectedReturns
	sigma := est.Covariance

	var minVar, maxSharpe *models.OptimalPortfolio
	for _, w := range candidates {
		ret, risk, sharpe, err := Performance(w, mu, sigma, riskFree)
		if err != nil {
			var zero *ZeroRiskError
			if errors.As(err, &zero) {
				// Zero risk still competes for minimum variance but is
				// ineligible for Sharpe ranking.
				if minVar == nil || 0 < minVar.Risk {
					minVar = s.portfolio(est, w, ret, 0, 0)
				}
				continue
			}
			return nil, err
		}
		if minVar == nil || risk < minVar.Risk {
			minVar = s.portfolio(est, w, ret, risk, sharpe)
		}
		if maxSharpe == nil || sharpe > maxSharpe.SharpeRatio ||
			(sharpe == maxSharpe.SharpeRatio && risk < maxSharpe.Risk) {
			maxSharpe = s.portfolio(est, w, ret, risk, sharpe)
		}
	}

	if maxSharpe == nil {
		// Every candidate was perfectly hedged; no Sharpe ranking exists.
		return nil, &ZeroRiskError{Return: minVar.Return}
	}
	return &models.OptimalPortfolios{MinVariance: minVar, MaxSharpe: maxSharpe}, nil
}

// solveMinVariance minimizes portfolio variance subject only to the simplex
// constraint.
func (s *Solver) solveMinVariance(est *Estimates) ([]float64, error) {
	x, err := s.minimize(s.problemFor(est.ExpectedReturns, est.Covariance, nil), uniformWeights(len(est.ExpectedReturns)))
	if err != nil {
		return nil, err
	}
	return finalizeWeights(x)
}

// solveMaxSharpe maximizes (mu'w - rf) / sqrt(w'Sigma*w) over the simplex by
// minimizing its negation with the usual budget penalty.
func (s *Solver) solveMaxSharpe(est *Estimates, riskFree float64) ([]float64, error) {
	mu := est.ExpectedReturns
	sigma := est.Covariance
	n := len(mu)

	p := optimize.Problem{
		Func: func(x []float64) float64 {
			w := projectUnit(x)

			var ret, variance float64
			for i := 0; i < n; i++ {
				ret += mu[i] * w[i]
				for j := 0; j < n; j++ {
					variance += w[i] * w[j] * sigma.At(i, j)
				}
			}
			stdDev := math.Sqrt(math.Max(variance, 1e-10))

			sum := floats.Sum(w)
			return -(ret-riskFree)/stdDev + penaltyWeight*(sum-1)*(sum-1)
		},
		Grad: func(grad, x []float64) {
			w := projectUnit(x)

			var ret, variance float64
			for i := 0; i < n; i++ {
				ret += mu[i] * w[i]
				for j := 0; j < n; j++ {
					variance += w[i] * w[j] * sigma.At(i, j)
				}
			}
			stdDev := math.Sqrt(math.Max(variance, 1e-10))
			excess := ret - riskFree

			for i := 0; i < n; i++ {
				var dVariance float64
				for j := 0; j < n; j++ {
					dVariance += 2 * sigma.At(i, j) * w[j]
				}
				grad[i] = -mu[i]/stdDev + excess*dVariance/(2*stdDev*stdDev*stdDev)
			}

			sum := floats.Sum(w)
			for i := 0; i < n; i++ {
				grad[i] += 2 * penaltyWeight * (sum - 1)
			}
		},
	}

	x, err := s.minimize(p, uniformWeights(n))
	if err != nil {
		return nil, err
	}
	return finalizeWeights(x)
}

func (s *Solver) portfolio(est *Estimates, w []float64, ret, risk, sharpe float64) *models.OptimalPortfolio {
	weights := make(map[string]float64, len(w))
	for i, t := range est.Tickers {
		weights[t] = w[i]
	}
	return &models.OptimalPortfolio{
		Risk:        risk,
		Return:      ret,
		SharpeRatio: sharpe,
		Weights:     weights,
	}
}
