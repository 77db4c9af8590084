package chart

import (
	"fmt"
	"strings"

	"github.com/budgetwise/forecast-service/internal/models"
	"github.com/guptarohit/asciigraph"
	"github.com/shopspring/decimal"
)

// RenderASCII plots historical values followed by predicted values as a
// terminal line chart. A single point is repeated so the line is visible.
func RenderASCII(historical, predicted []models.DataPoint, width, height int) string {
	points := append(append([]models.DataPoint{}, historical...), predicted...)
	if len(points) == 0 {
		return "No data available"
	}
	if height < 3 {
		height = 3
	}

	data := make([]float64, 0, len(points)+1)
	labels := make([]string, 0, len(points))
	for _, p := range points {
		data = append(data, p.Value)
		labels = append(labels, p.Label)
	}
	if len(data) == 1 {
		data = append(data, data[0])
	}

	// axis labels lose their decimals past 100, so the final value goes in the caption
	caption := fmt.Sprintf("%s (last %d predicted, %s)", strings.Join(labels, " → "), len(predicted),
		decimal.NewFromFloat(points[len(points)-1].Value).StringFixed(2))
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
	)
}
