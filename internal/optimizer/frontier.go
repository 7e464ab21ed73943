package optimizer

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"PortOpt/internal/domain/models"
)

const (
	// penaltyWeight scales the quadratic penalties enforcing the budget and
	// return-equality constraints.
	penaltyWeight = 1e4
	// weightSumTolerance bounds |sum(w)-1| for any returned weight vector.
	weightSumTolerance = 1e-6
	// negativeWeightTolerance is the largest negative weight treated as
	// rounding noise; anything below it is a solver defect.
	negativeWeightTolerance = 1e-9
	// defaultMaxIterations bounds each per-target solve.
	defaultMaxIterations = 500
	// returnMissFraction is how far (as a fraction of the frontier's return
	// spread) an achieved return may sit from its target before the point is
	// declared infeasible.
	returnMissFraction = 0.02
)

// Solver traces efficient frontiers and derives the distinguished
// portfolios. It holds only configuration; every solve is a pure function of
// its inputs, so a single Solver is safe for concurrent use.
type Solver struct {
	maxIterations int
}

// SolverOption configures a Solver.
type SolverOption func(*Solver)

// WithMaxIterations bounds the iteration budget of each constrained solve.
func WithMaxIterations(n int) SolverOption {
	return func(s *Solver) {
		if n > 0 {
			s.maxIterations = n
		}
	}
}

// NewSolver creates a frontier solver.
func NewSolver(opts ...SolverOption) *Solver {
	s := &Solver{maxIterations: defaultMaxIterations}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Frontier is the ordered trace over increasing target return, plus the
// targets that failed to converge. Points may be shorter than requested;
// Infeasible says exactly which targets are missing and why.
type Frontier struct {
	Points     []models.FrontierPoint
	Infeasible []InfeasiblePointError
}

// Trace generates numPoints evenly spaced target returns over the span of
// the expected returns and solves a constrained minimum-variance problem per
// target. Solves are warm-started from the previous point's solution, which
// keeps the frontier smooth; the first point starts from uniform weights.
func (s *Solver) Trace(est *Estimates, numPoints int) (*Frontier, error) {
	mu := est.ExpectedReturns
	n := len(mu)
	if n == 0 {
		return nil, fmt.Errorf("trace frontier: no assets")
	}
	if numPoints < 1 {
		return nil, fmt.Errorf("trace frontier: numPoints must be >= 1, got %d", numPoints)
	}

	minRet := floats.Min(mu)
	maxRet := floats.Max(mu)
	spread := maxRet - minRet
	if spread == 0 && numPoints != 1 {
		return nil, &DegenerateFrontierError{Return: minRet}
	}

	targets := make([]float64, numPoints)
	if numPoints == 1 {
		targets[0] = minRet
	} else {
		for i := range targets {
			targets[i] = minRet + spread*float64(i)/float64(numPoints-1)
		}
	}
	returnTol := returnMissFraction*spread + 1e-9

	warm := uniformWeights(n)
	frontier := &Frontier{}
	for _, target := range targets {
		w, err := s.solveTarget(est, target, returnTol, warm)
		if err != nil {
			var negVar *NegativeVarianceError
			if errors.As(err, &negVar) {
				return nil, err
			}
			frontier.Infeasible = append(frontier.Infeasible, InfeasiblePointError{
				TargetReturn: target,
				Reason:       err.Error(),
			})
			continue
		}
		ret, risk, err := pointPerformance(w, mu, est.Covariance)
		if err != nil {
			return nil, err
		}
		warm = w
		frontier.Points = append(frontier.Points, models.FrontierPoint{
			TargetReturn: target,
			Return:       ret,
			Risk:         risk,
			Weights:      w,
		})
	}
	return frontier, nil
}

// solveTarget minimizes portfolio variance subject to the simplex constraint
// and a return-equality constraint at target.
func (s *Solver) solveTarget(est *Estimates, target, returnTol float64, init []float64) ([]float64, error) {
	x, err := s.minimize(s.problemFor(est.ExpectedReturns, est.Covariance, &target), init)
	if err != nil {
		return nil, err
	}
	w, err := finalizeWeights(x)
	if err != nil {
		return nil, err
	}
	achieved := floats.Dot(w, est.ExpectedReturns)
	if math.Abs(achieved-target) > returnTol {
		return nil, fmt.Errorf("achieved return %.6f missed target by %.3g", achieved, math.Abs(achieved-target))
	}
	return w, nil
}

// problemFor builds the penalized objective for one solve. A nil target
// drops the return-equality constraint, leaving the pure minimum-variance
// problem. The target is captured by value per call, so each frontier
// iteration binds its own constraint.
func (s *Solver) problemFor(mu []float64, sigma *mat.SymDense, target *float64) optimize.Problem {
	n := len(mu)
	return optimize.Problem{
		Func: func(x []float64) float64 {
			w := projectUnit(x)

			var variance float64
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					variance += w[i] * w[j] * sigma.At(i, j)
				}
			}

			obj := variance
			sum := floats.Sum(w)
			obj += penaltyWeight * (sum - 1) * (sum - 1)

			if target != nil {
				ret := floats.Dot(w, mu)
				obj += penaltyWeight * (ret - *target) * (ret - *target)
			}
			return obj
		},
		Grad: func(grad, x []float64) {
			w := projectUnit(x)

			for i := 0; i < n; i++ {
				grad[i] = 0
				for j := 0; j < n; j++ {
					grad[i] += 2 * sigma.At(i, j) * w[j]
				}
			}

			sum := floats.Sum(w)
			for i := 0; i < n; i++ {
				grad[i] += 2 * penaltyWeight * (sum - 1)
			}

			if target != nil {
				ret := floats.Dot(w, mu)
				for i := 0; i < n; i++ {
					grad[i] += 2 * penaltyWeight * (ret - *target) * mu[i]
				}
			}
		},
	}
}

// acceptableStatuses are the optimize statuses treated as convergence.
var acceptableStatuses = map[optimize.Status]bool{
	optimize.Success:             true,
	optimize.GradientThreshold:   true,
	optimize.FunctionConvergence: true,
	optimize.StepConvergence:     true,
}

// minimize runs BFGS within the iteration budget and falls back to
// NelderMead when the gradient-based run fails, which happens when the
// optimum sits on the weight bounds and the projected gradient stalls.
func (s *Solver) minimize(p optimize.Problem, init []float64) ([]float64, error) {
	settings := &optimize.Settings{MajorIterations: s.maxIterations}

	result, err := optimize.Minimize(p, append([]float64(nil), init...), settings, &optimize.BFGS{})
	if err == nil && acceptableStatuses[result.Status] {
		return result.X, nil
	}

	fallback := optimize.Problem{Func: p.Func}
	result, err = optimize.Minimize(fallback, append([]float64(nil), init...), settings, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("solver failed: %w", err)
	}
	if !acceptableStatuses[result.Status] {
		return nil, fmt.Errorf("solver did not converge: status=%v", result.Status)
	}
	return result.X, nil
}

// finalizeWeights projects the raw solution onto [0,1], zeroes rounding
// noise and renormalizes to the simplex. Violations beyond tolerance are a
// solver defect and fail loudly instead of being clipped.
func finalizeWeights(x []float64) ([]float64, error) {
	w := projectUnit(x)

	sum := 0.0
	for i, v := range w {
		if v < 0 {
			if v < -negativeWeightTolerance {
				return nil, &WeightBoundsError{Index: i, Weight: v, Sum: floats.Sum(w)}
			}
			w[i] = 0
		}
		sum += w[i]
	}
	if sum < weightSumTolerance {
		return nil, fmt.Errorf("weight sum collapsed to %.3g", sum)
	}
	for i := range w {
		w[i] /= sum
	}

	total := floats.Sum(w)
	if math.Abs(total-1) > weightSumTolerance {
		return nil, &WeightBoundsError{Index: -1, Weight: math.NaN(), Sum: total}
	}
	for i, v := range w {
		if v > 1+negativeWeightTolerance {
			return nil, &WeightBoundsError{Index: i, Weight: v, Sum: total}
		}
	}
	return w, nil
}

// projectUnit clamps each coordinate to [0,1].
func projectUnit(x []float64) []float64 {
	w := make([]float64, len(x))
	for i, v := range x {
		w[i] = math.Max(0, math.Min(1, v))
	}
	return w
}

func uniformWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	return w
}

// pointPerformance derives (return, risk) for a frontier point. A zero-risk
// portfolio is a legitimate point; only the Sharpe ratio is undefined there.
func pointPerformance(w, mu []float64, sigma *mat.SymDense) (float64, float64, error) {
	ret, risk, _, err := Performance(w, mu, sigma, 0)
	if err != nil {
		var zero *ZeroRiskError
		if errors.As(err, &zero) {
			return ret, 0, nil
		}
		return 0, 0, err
	}
	return ret, risk, nil
}
