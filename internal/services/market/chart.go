package market

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/mkellaway/papertrade/internal/models"
)

// Chart renders the symbol's synthetic price history as a PNG line
// chart. Returns raw PNG bytes.
func (s *Service) Chart(ctx context.Context, symbol string, days int) ([]byte, error) {
	history, err := s.History(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	return renderPriceChart(symbol, history.Candles)
}

// renderPriceChart draws the close series with a shaded fill.
func renderPriceChart(symbol string, candles []models.Candle) ([]byte, error) {
	if len(candles) < 2 {
		return nil, fmt.Errorf("need at least 2 candles, got %d", len(candles))
	}

	xValues := make([]float64, len(candles))
	yValues := make([]float64, len(candles))
	for i, c := range candles {
		xValues[i] = chart.TimeToFloat64(c.Date)
		yValues[i] = c.Close
	}

	closeSeries := chart.ContinuousSeries{
		Name: symbol,
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"),
			StrokeWidth: 2.0,
			FillColor:   drawing.ColorFromHex("2563eb").WithAlpha(30),
		},
		XValues: xValues,
		YValues: yValues,
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s (illustrative)", symbol),
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
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{closeSeries},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
