package optimizer

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// helper: estimates from explicit annualized inputs.
func estimates(tickers []string, mu []float64, cov []float64) *Estimates {
	return &Estimates{
		Tickers:         tickers,
		ExpectedReturns: mu,
		Covariance:      mat.NewSymDense(len(mu), cov),
	}
}

func TestTraceWeightInvariants(t *testing.T) {
	est := estimates([]string{"AAA", "BBB", "CCC"},
		[]float64{0.08, 0.12, 0.18},
		[]float64{
			0.02, 0.004, 0.002,
			0.004, 0.03, 0.006,
			0.002, 0.006, 0.06,
		})

	frontier, err := NewSolver().Trace(est, 20)
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if len(frontier.Points) == 0 {
		t.Fatal("expected at least one frontier point")
	}
	if len(frontier.Points)+len(frontier.Infeasible) != 20 {
		t.Errorf("points+infeasible = %d, want 20", len(frontier.Points)+len(frontier.Infeasible))
	}

	prevTarget := math.Inf(-1)
	for _, p := range frontier.Points {
		if p.Risk < 0 {
			t.Errorf("negative risk %v at target %v", p.Risk, p.TargetReturn)
		}
		if p.TargetReturn < prevTarget {
			t.Errorf("targets not non-decreasing: %v after %v", p.TargetReturn, prevTarget)
		}
		prevTarget = p.TargetReturn

		sum := 0.0
		for i, w := range p.Weights {
			if w < -1e-9 || w > 1+1e-9 {
				t.Errorf("weight[%d] = %v out of bounds at target %v", i, w, p.TargetReturn)
			}
			sum += w
		}
		if math.Abs(sum-1) > 1e-6 {
			t.Errorf("weight sum = %v at target %v", sum, p.TargetReturn)
		}
	}
}

func TestTraceClosedFormMinVariance(t *testing.T) {
	// Two uncorrelated assets: min-variance weight on asset 1 is
	// sigma2^2 / (sigma1^2 + sigma2^2).
	s1, s2 := 0.15, 0.25
	est := estimates([]string{"AAA", "BBB"},
		[]float64{0.10, 0.20},
		[]float64{s1 * s1, 0, 0, s2 * s2})

	solver := NewSolver()
	frontier, err := solver.Trace(est, 15)
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	opt, err := solver.Select(frontier, est, 0.02)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	want := s2 * s2 / (s1*s1 + s2*s2)
	got := opt.MinVariance.Weights["AAA"]
	if math.Abs(got-want) > 1e-2 {
		t.Errorf("min-variance weight on AAA = %v, want %v", got, want)
	}

	wantRisk := math.Sqrt(want*want*s1*s1 + (1-want)*(1-want)*s2*s2)
	if math.Abs(opt.MinVariance.Risk-wantRisk) > 1e-2 {
		t.Errorf("min-variance risk = %v, want %v", opt.MinVariance.Risk, wantRisk)
	}
}

func TestTracePerfectCorrelation(t *testing.T) {
	// Perfectly correlated pair: everything loads on the lower-variance asset.
	s1, s2 := 0.10, 0.20
	est := estimates([]string{"LOW", "HIGH"},
		[]float64{0.08, 0.16},
		[]float64{s1 * s1, s1 * s2, s1 * s2, s2 * s2})

	solver := NewSolver()
	frontier, err := solver.Trace(est, 10)
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	opt, err := solver.Select(frontier, est, 0.02)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := opt.MinVariance.Weights["LOW"]; got < 0.95 {
		t.Errorf("min-variance weight on LOW = %v, want ~1", got)
	}
}

func TestTraceDegenerateFrontier(t *testing.T) {
	est := estimates([]string{"AAA", "BBB"},
		[]float64{0.10, 0.10},
		[]float64{0.04, 0, 0, 0.09})

	_, err := NewSolver().Trace(est, 5)
	var degenerate *DegenerateFrontierError
	if !errors.As(err, &degenerate) {
		t.Fatalf("expected DegenerateFrontierError, got %v", err)
	}

	// A single point is still solvable with no return spread.
	frontier, err := NewSolver().Trace(est, 1)
	if err != nil {
		t.Fatalf("Trace with numPoints=1: %v", err)
	}
	if len(frontier.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(frontier.Points))
	}
}

func TestTraceDeterministic(t *testing.T) {
	est := estimates([]string{"AAA", "BBB", "CCC"},
		[]float64{0.06, 0.11, 0.15},
		[]float64{
			0.025, 0.005, 0.001,
			0.005, 0.04, 0.008,
			0.001, 0.008, 0.07,
		})

	a, err := NewSolver().Trace(est, 12)
	if err != nil {
		t.Fatalf("first Trace: %v", err)
	}
	b, err := NewSolver().Trace(est, 12)
	if err != nil {
		t.Fatalf("second Trace: %v", err)
	}
	if len(a.Points) != len(b.Points) {
		t.Fatalf("point counts differ: %d vs %d", len(a.Points), len(b.Points))
	}
	for i := range a.Points {
		if a.Points[i].Risk != b.Points[i].Risk || a.Points[i].Return != b.Points[i].Return {
			t.Errorf("point %d differs across identical runs", i)
		}
	}
}

func TestFinalizeWeights(t *testing.T) {
	w, err := finalizeWeights([]float64{0.6, 0.5, -0.2})
	if err != nil {
		t.Fatalf("finalizeWeights: %v", err)
	}
	sum := 0.0
	for _, v := range w {
		if v < 0 {
			t.Errorf("negative weight %v survived finalization", v)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("sum = %v, want 1", sum)
	}
}
