package models

// DataPoint is a labeled value on a chart, e.g. {"Nov", 300}
type DataPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ExpensePrediction is the expense-trend view: current month actual vs next
// month projected. NextMonthPrediction always equals the single predicted value.
type ExpensePrediction struct {
	HistoricalData      []DataPoint `json:"historicalData"`
	PredictedData       []DataPoint `json:"predictedData"`
	NextMonthPrediction float64     `json:"nextMonthPrediction"`
}

// RegressionTrend is a multi-month expense trend fitted by least squares
type RegressionTrend struct {
	HistoricalData      []DataPoint `json:"historicalData"`
	PredictedData       []DataPoint `json:"predictedData"`
	Slope               float64     `json:"slope"`
	Intercept           float64     `json:"intercept"`
	NextMonthPrediction float64     `json:"nextMonthPrediction"`
}
