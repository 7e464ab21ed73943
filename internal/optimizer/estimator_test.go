package optimizer

import (
	"errors"
	"math"
	"testing"
	"time"

	"PortOpt/internal/domain/models"
)

// helper: build an aligned price table from per-asset price columns.
func table(tickers []string, cols ...[]float64) *models.PriceTable {
	obs := len(cols[0])
	dates := make([]time.Time, obs)
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i)
	}
	prices := make([]float64, 0, obs*len(tickers))
	for i := 0; i < obs; i++ {
		for _, col := range cols {
			prices = append(prices, col[i])
		}
	}
	return &models.PriceTable{Tickers: tickers, Dates: dates, Prices: prices}
}

func TestEstimateKnownReturns(t *testing.T) {
	// Asset A: +10%, -10%, +10% simple returns. Asset B: steady +1%.
	tbl := table([]string{"AAA", "BBB"},
		[]float64{100, 110, 99, 108.9},
		[]float64{50, 50.5, 51.005, 51.51505},
	)

	est, err := Estimate(tbl)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	wantMuA := (0.10 - 0.10 + 0.10) / 3 * 252
	if math.Abs(est.ExpectedReturns[0]-wantMuA) > 1e-9 {
		t.Errorf("mu[AAA] = %v, want %v", est.ExpectedReturns[0], wantMuA)
	}
	wantMuB := 0.01 * 252
	if math.Abs(est.ExpectedReturns[1]-wantMuB) > 1e-9 {
		t.Errorf("mu[BBB] = %v, want %v", est.ExpectedReturns[1], wantMuB)
	}

	// Sample variance of {0.1, -0.1, 0.1} is 0.01333..., annualized x252.
	wantVarA := 0.2 * 0.2 / 3 * 252
	if math.Abs(est.Covariance.At(0, 0)-wantVarA) > 1e-6 {
		t.Errorf("cov[AAA][AAA] = %v, want %v", est.Covariance.At(0, 0), wantVarA)
	}
	// Asset B has constant returns: zero variance, zero covariance with A.
	if math.Abs(est.Covariance.At(1, 1)) > 1e-9 {
		t.Errorf("cov[BBB][BBB] = %v, want 0", est.Covariance.At(1, 1))
	}
	if math.Abs(est.Covariance.At(0, 1)) > 1e-9 {
		t.Errorf("cov[AAA][BBB] = %v, want 0", est.Covariance.At(0, 1))
	}
}

func TestEstimateInsufficientData(t *testing.T) {
	tbl := table([]string{"AAA"}, []float64{100, 101})

	_, err := Estimate(tbl)
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if insufficient.Observations != 1 {
		t.Errorf("Observations = %d, want 1", insufficient.Observations)
	}
}

func TestEstimateIdempotent(t *testing.T) {
	tbl := table([]string{"AAA", "BBB"},
		[]float64{100, 103, 101, 106, 104},
		[]float64{40, 41, 39.5, 42, 41.2},
	)

	a, err := Estimate(tbl)
	if err != nil {
		t.Fatalf("first Estimate: %v", err)
	}
	b, err := Estimate(tbl)
	if err != nil {
		t.Fatalf("second Estimate: %v", err)
	}

	for i := range a.ExpectedReturns {
		if a.ExpectedReturns[i] != b.ExpectedReturns[i] {
			t.Errorf("mu[%d] differs across runs: %v vs %v", i, a.ExpectedReturns[i], b.ExpectedReturns[i])
		}
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if a.Covariance.At(i, j) != b.Covariance.At(i, j) {
				t.Errorf("cov[%d][%d] differs across runs", i, j)
			}
		}
	}
}

func TestEstimateSymmetricCovariance(t *testing.T) {
	tbl := table([]string{"AAA", "BBB", "CCC"},
		[]float64{100, 102, 101, 105, 103},
		[]float64{60, 59, 61, 62, 60.5},
		[]float64{20, 20.4, 20.1, 20.9, 20.6},
	)

	est, err := Estimate(tbl)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if est.Covariance.At(i, j) != est.Covariance.At(j, i) {
				t.Errorf("covariance not symmetric at (%d,%d)", i, j)
			}
		}
	}
}
