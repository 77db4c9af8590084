// Package regression fits straight lines to (x, y) samples by ordinary least squares.
package regression

import (
	"errors"
	"math"
)

// ErrArgumentMismatch is returned by Fit when x and y differ in length.
var ErrArgumentMismatch = errors.New("regression: sample lengths must match")

// Sample is a single observation, x being a time index and y an amount.
type Sample struct {
	X float64
	Y float64
}

// FittedLine is y = slope*x + intercept. The zero value is the flat line at 0;
// any other value comes out of Fit or FitSamples.
type FittedLine struct {
	slope     float64
	intercept float64
}

// Slope returns the fitted slope.
func (l FittedLine) Slope() float64 { return l.slope }

// Intercept returns the fitted intercept.
func (l FittedLine) Intercept() float64 { return l.intercept }

// Predict returns the value at x, clamped to zero since expenses cannot be negative.
func (l FittedLine) Predict(x float64) float64 {
	return math.Max(0, l.slope*x+l.intercept)
}

// Fit computes the least-squares line through the parallel sequences x and y.
func Fit(x, y []float64) (FittedLine, error) {
	if len(x) != len(y) {
		return FittedLine{}, ErrArgumentMismatch
	}
	samples := make([]Sample, len(x))
	for i := range x {
		samples[i] = Sample{X: x[i], Y: y[i]}
	}
	return FitSamples(samples), nil
}

// FitSamples computes the least-squares line through samples. With fewer than
// two samples, or when every x is identical, the result is a flat line at the
// mean of y.
func FitSamples(samples []Sample) FittedLine {
	n := len(samples)
	if n < 2 {
		return flat(samples)
	}

	var sumX, sumY, sumXY, sumX2 float64
	for _, s := range samples {
		sumX += s.X
		sumY += s.Y
		sumXY += s.X * s.Y
		sumX2 += s.X * s.X
	}

	fn := float64(n)
	denom := fn*sumX2 - sumX*sumX
	if denom == 0 {
		return flat(samples)
	}

	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn
	return FittedLine{slope: slope, intercept: intercept}
}

func flat(samples []Sample) FittedLine {
	if len(samples) == 0 {
		return FittedLine{}
	}
	var sum float64
	for _, s := range samples {
		sum += s.Y
	}
	return FittedLine{intercept: sum / float64(len(samples))}
}
