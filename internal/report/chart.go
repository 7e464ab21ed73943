package report

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vicanso/go-charts/v2"

	"PortOpt/internal/domain/models"
)

// RenderFrontier draws the efficient frontier as a risk/return line
// chart and returns the PNG bytes.
func RenderFrontier(req *models.FrontierChartRequest) ([]byte, error) {
	if len(req.EfficientFrontier) == 0 {
		return nil, errors.New("no frontier points to render")
	}

	points := make([]models.FrontierPointDTO, len(req.EfficientFrontier))
	copy(points, req.EfficientFrontier)
	sort.Slice(points, func(i, j int) bool { return points[i].Risk < points[j].Risk })

	xLabels := make([]string, len(points))
	returns := make([]float64, len(points))
	yMin, yMax := points[0].Return*100, points[0].Return*100
	for i, p := range points {
		xLabels[i] = fmt.Sprintf("%.2f%%", p.Risk*100)
		v := p.Return * 100
		returns[i] = v
		if v < yMin {
			yMin = v
		}
		if v > yMax {
			yMax = v
		}
	}

	pad := (yMax - yMin) * 0.05
	if pad == 0 {
		pad = 0.5
	}
	yMin -= pad
	yMax += pad

	title := req.Title
	if title == "" {
		title = "Efficient Frontier"
	}
	subtitle := "annualized return vs risk"
	if op := req.OptimalPortfolios; op != nil && op.MinVariance != nil && op.MaxSharpe != nil {
		subtitle = fmt.Sprintf("min variance %.2f%% @ %.2f%% risk, max Sharpe %.2f",
			op.MinVariance.Return*100, op.MinVariance.Risk*100, op.MaxSharpe.SharpeRatio)
	}

	split := 10
	if len(points) < split {
		split = len(points)
	}

	painter, err := charts.LineRender([][]float64{returns},
		charts.TitleTextOptionFunc(title, subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: xLabels, BoundaryGap: charts.FalseFlag(), SplitNumber: split}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("render frontier: %w", err)
	}
	return painter.Bytes()
}
