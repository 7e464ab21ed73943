package optimizer

import "fmt"

// InsufficientDataError signals too little aligned history to estimate
// returns and covariance.
type InsufficientDataError struct {
	Observations int
	Required     int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d return observations, need at least %d", e.Observations, e.Required)
}

// DegenerateFrontierError signals that every asset has the same expected
// return, so there is no return spread to trace a frontier over.
type DegenerateFrontierError struct {
	Return float64
}

func (e *DegenerateFrontierError) Error() string {
	return fmt.Sprintf("degenerate frontier: all assets share expected return %.6f", e.Return)
}

// NegativeVarianceError signals a computed portfolio variance below the
// floating tolerance, i.e. a covariance matrix that is not PSD. It is a
// data-quality fault and must not be clamped silently.
type NegativeVarianceError struct {
	Variance float64
}

func (e *NegativeVarianceError) Error() string {
	return fmt.Sprintf("negative portfolio variance %.6g: covariance matrix is not positive semi-definite", e.Variance)
}

// ZeroRiskError signals a zero-risk portfolio, for which the Sharpe ratio is
// undefined. Such portfolios are ineligible for Sharpe-based ranking.
type ZeroRiskError struct {
	Return float64
}

func (e *ZeroRiskError) Error() string {
	return fmt.Sprintf("zero portfolio risk at return %.6f: sharpe ratio undefined", e.Return)
}

// InfeasiblePointError records one target return whose solve did not
// converge. It is recovered locally: the point is omitted and the frontier
// continues.
type InfeasiblePointError struct {
	TargetReturn float64
	Reason       string
}

func (e *InfeasiblePointError) Error() string {
	return fmt.Sprintf("infeasible frontier point at target return %.6f: %s", e.TargetReturn, e.Reason)
}

// NoFeasiblePortfolioError signals that every traced target return was
// infeasible. Fatal to the whole optimization request.
type NoFeasiblePortfolioError struct {
	Requested int
}

func (e *NoFeasiblePortfolioError) Error() string {
	return fmt.Sprintf("no feasible portfolio: all %d frontier points failed to converge", e.Requested)
}

// WeightBoundsError signals a solver defect: a returned weight vector
// violates the simplex invariants beyond numerical tolerance.
type WeightBoundsError struct {
	Index  int
	Weight float64
	Sum    float64
}

func (e *WeightBoundsError) Error() string {
	return fmt.Sprintf("weight vector violates bounds: w[%d]=%.9f sum=%.9f", e.Index, e.Weight, e.Sum)
}
