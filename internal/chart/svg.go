// Package chart renders expense predictions as SVG bar charts.
package chart

import (
	"errors"
	"fmt"
	"math"

	"github.com/beevik/etree"
	"github.com/budgetwise/forecast-service/internal/models"
	"github.com/shopspring/decimal"
)

const (
	width       = 480
	height      = 280
	marginLeft  = 64
	marginRight = 16
	marginTop   = 24
	marginBot   = 40
	barGap      = 24
)

// ErrNoData is returned for a prediction without any points
var ErrNoData = errors.New("chart: prediction has no data points")

type bar struct {
	point     models.DataPoint
	predicted bool
}

// RenderSVG draws historical bars followed by predicted bars. Heights are
// scaled between min(values, 0) and max(values, 1); when every value is equal
// bars are drawn at half height.
func RenderSVG(p *models.ExpensePrediction) ([]byte, error) {
	if p == nil || len(p.HistoricalData)+len(p.PredictedData) == 0 {
		return nil, ErrNoData
	}

	bars := make([]bar, 0, len(p.HistoricalData)+len(p.PredictedData))
	for _, dp := range p.HistoricalData {
		bars = append(bars, bar{point: dp})
	}
	for _, dp := range p.PredictedData {
		bars = append(bars, bar{point: dp, predicted: true})
	}

	maxV, minV := 1.0, 0.0
	for _, b := range bars {
		maxV = math.Max(maxV, b.point.Value)
		minV = math.Min(minV, b.point.Value)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	svg := doc.CreateElement("svg")
	svg.CreateAttr("xmlns", "http://www.w3.org/2000/svg")
	svg.CreateAttr("width", itoa(width))
	svg.CreateAttr("height", itoa(height))
	svg.CreateAttr("viewBox", fmt.Sprintf("0 0 %d %d", width, height))

	style := svg.CreateElement("style")
	style.SetText(".historical{fill:#4f46e5}.predicted{fill:#f59e0b;fill-opacity:.75}" +
		"text{font-family:sans-serif;font-size:12px;fill:#374151}")

	plotH := float64(height - marginTop - marginBot)
	baseY := float64(marginTop) + plotH

	axis := svg.CreateElement("g")
	axis.CreateAttr("class", "y-axis")
	for i, v := range []float64{maxV, (maxV + minV) / 2, minV} {
		label := axis.CreateElement("text")
		label.CreateAttr("x", itoa(marginLeft-8))
		label.CreateAttr("y", ftoa(float64(marginTop)+plotH*float64(i)/2+4))
		label.CreateAttr("text-anchor", "end")
		label.SetText(decimal.NewFromFloat(v).StringFixed(0))
	}

	slot := float64(width-marginLeft-marginRight) / float64(len(bars))
	barW := math.Max(slot-barGap, 4)
	group := svg.CreateElement("g")
	group.CreateAttr("class", "bars")
	for i, b := range bars {
		h := plotH * heightFraction(b.point.Value, minV, maxV)
		x := float64(marginLeft) + slot*float64(i) + (slot-barW)/2

		class := "historical"
		if b.predicted {
			class = "predicted"
		}
		rect := group.CreateElement("rect")
		rect.CreateAttr("class", class)
		rect.CreateAttr("x", ftoa(x))
		rect.CreateAttr("y", ftoa(baseY-h))
		rect.CreateAttr("width", ftoa(barW))
		rect.CreateAttr("height", ftoa(h))
		title := rect.CreateElement("title")
		title.SetText(fmt.Sprintf("%s: %s", b.point.Label, decimal.NewFromFloat(b.point.Value).StringFixed(2)))

		label := group.CreateElement("text")
		label.CreateAttr("x", ftoa(x+barW/2))
		label.CreateAttr("y", ftoa(baseY+18))
		label.CreateAttr("text-anchor", "middle")
		label.SetText(b.point.Label)
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

func heightFraction(v, minV, maxV float64) float64 {
	r := maxV - minV
	if r == 0 {
		return 0.5
	}
	return (v - minV) / r
}

func itoa(i int) string { return fmt.Sprintf("%d", i) }

func ftoa(f float64) string { return decimal.NewFromFloat(f).Round(2).String() }
