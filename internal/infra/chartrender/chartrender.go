// Package chartrender turns the dashboard's per-day series into a PNG
// for GET /v1/dashboard/chart.png.
package chartrender

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pinee-app/pinee-api/internal/domain"
)

// RenderCashflowChart renders a PNG line chart from the dashboard's
// chart series. Two series: income (green solid) and expense (red
// dashed). Returns raw PNG bytes.
func RenderCashflowChart(points []domain.ChartPoint, title string) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}

	xValues := make([]time.Time, len(points))
	incomeY := make([]float64, len(points))
	expenseY := make([]float64, len(points))

	for i, p := range points {
		xValues[i] = p.Date
		incomeY[i], _ = p.Income.Float64()
		expenseY[i], _ = p.Expense.Float64()
	}

	incomeSeries := chart.TimeSeries{
		Name: "Income",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("16a34a"), // green-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: incomeY,
	}

	expenseSeries := chart.TimeSeries{
		Name: "Expense",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("dc2626"), // red-600
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: expenseY,
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			incomeSeries,
			expenseSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
