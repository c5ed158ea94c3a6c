package report

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
)

var errNoData = errors.New("no data to plot")

// LineChart рисует кривую накопленного PnL в PNG
type LineChart struct {
	Title  string
	Width  int
	Height int
}

// NewLineChart создает LineChart с размерами по умолчанию
func NewLineChart() *LineChart {
	return &LineChart{
		Title:  "PnL trend",
		Width:  600,
		Height: 400,
	}
}

// Render рисует значения по порядку. Кривая начинается с нуля.
func (c *LineChart) Render(values []float64) ([]byte, error) {
	if len(values) == 0 {
		return nil, errNoData
	}

	xs := make([]float64, 0, len(values)+1)
	ys := make([]float64, 0, len(values)+1)
	xs = append(xs, 0)
	ys = append(ys, 0)

	lo, hi := 0.0, 0.0
	for i, v := range values {
		xs = append(xs, float64(i+1))
		ys = append(ys, v)
		lo = min(lo, v)
		hi = max(hi, v)
	}

	// go-chart не рисует нулевой диапазон
	if lo == hi {
		lo, hi = lo-1, hi+1
	}

	graph := chart.Chart{
		Title:  c.Title,
		Width:  c.Width,
		Height: c.Height,
		XAxis: chart.XAxis{
			Name: "Trade",
		},
		YAxis: chart.YAxis{
			Name:  "Cumulative PnL %",
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "PnL",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: 2,
					DotWidth:    3,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}

	return buf.Bytes(), nil
}
