package optimizer

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestPerformanceKnownValues(t *testing.T) {
	mu := []float64{0.10, 0.20}
	sigma := mat.NewSymDense(2, []float64{0.04, 0, 0, 0.09})
	w := []float64{0.5, 0.5}

	ret, risk, sharpe, err := Performance(w, mu, sigma, 0.02)
	if err != nil {
		t.Fatalf("Performance: %v", err)
	}
	if math.Abs(ret-0.15) > 1e-12 {
		t.Errorf("return = %v, want 0.15", ret)
	}
	wantRisk := math.Sqrt(0.25*0.04 + 0.25*0.09)
	if math.Abs(risk-wantRisk) > 1e-12 {
		t.Errorf("risk = %v, want %v", risk, wantRisk)
	}
	wantSharpe := (0.15 - 0.02) / wantRisk
	if math.Abs(sharpe-wantSharpe) > 1e-12 {
		t.Errorf("sharpe = %v, want %v", sharpe, wantSharpe)
	}
}

func TestPerformanceNegativeVariance(t *testing.T) {
	mu := []float64{0.1}
	sigma := mat.NewSymDense(1, []float64{-0.5})

	_, _, _, err := Performance([]float64{1}, mu, sigma, 0.02)
	var negVar *NegativeVarianceError
	if !errors.As(err, &negVar) {
		t.Fatalf("expected NegativeVarianceError, got %v", err)
	}
}

func TestPerformanceZeroRisk(t *testing.T) {
	mu := []float64{0.1, 0.2}
	sigma := mat.NewSymDense(2, nil)

	ret, risk, _, err := Performance([]float64{0.5, 0.5}, mu, sigma, 0.02)
	var zero *ZeroRiskError
	if !errors.As(err, &zero) {
		t.Fatalf("expected ZeroRiskError, got %v", err)
	}
	if risk != 0 {
		t.Errorf("risk = %v, want 0", risk)
	}
	if math.Abs(ret-0.15) > 1e-12 {
		t.Errorf("return = %v, want 0.15", ret)
	}
}

func TestPerformanceClampsRoundingNoise(t *testing.T) {
	// Variance within tolerance of zero is clamped, not an error.
	mu := []float64{0.1}
	sigma := mat.NewSymDense(1, []float64{-1e-12})

	_, risk, _, err := Performance([]float64{1}, mu, sigma, 0.02)
	var zero *ZeroRiskError
	if !errors.As(err, &zero) {
		t.Fatalf("expected ZeroRiskError after clamping, got %v", err)
	}
	if risk != 0 {
		t.Errorf("risk = %v, want 0", risk)
	}
}
