package report

import (
	"bytes"
	"testing"

	"PortOpt/internal/domain/models"
)

func TestRenderFrontier(t *testing.T) {
	req := &models.FrontierChartRequest{
		Title: "Efficient Frontier",
		EfficientFrontier: []models.FrontierPointDTO{
			{Risk: 0.12, Return: 0.08},
			{Risk: 0.10, Return: 0.06},
			{Risk: 0.15, Return: 0.11},
			{Risk: 0.20, Return: 0.14},
		},
		OptimalPortfolios: &models.OptimalPortfolios{
			MinVariance: &models.OptimalPortfolio{Risk: 0.10, Return: 0.06, SharpeRatio: 0.4},
			MaxSharpe:   &models.OptimalPortfolio{Risk: 0.15, Return: 0.11, SharpeRatio: 0.6},
		},
	}

	img, err := RenderFrontier(req)
	if err != nil {
		t.Fatalf("RenderFrontier: %v", err)
	}
	if len(img) == 0 {
		t.Fatal("expected image bytes")
	}
	// PNG magic
	if !bytes.HasPrefix(img, []byte{0x89, 'P', 'N', 'G'}) {
		t.Fatalf("expected PNG, got prefix %v", img[:4])
	}
}

func TestRenderFrontierEmpty(t *testing.T) {
	if _, err := RenderFrontier(&models.FrontierChartRequest{}); err == nil {
		t.Fatal("expected error for empty frontier")
	}
}
