// Package forecast turns a user's transaction history into expense predictions.
//
// Two forecasts are offered. ComputeExpensePrediction is the daily-average
// heuristic behind the expense-trend chart and the next-month chat message: the
// spend so far this month divided by the days elapsed, projected over a fixed
// 30-day month. ComputeRegressionTrend fits a least-squares line through several
// monthly totals instead.
package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/budgetwise/forecast-service/internal/models"
	"github.com/budgetwise/forecast-service/internal/regression"
	"github.com/budgetwise/forecast-service/internal/repository"
	"github.com/sirupsen/logrus"
)

const (
	// ProjectionDays is the month length assumed by the daily-average heuristic.
	ProjectionDays = 30

	DefaultTrendMonths = 6
	MaxTrendMonths     = 24
)

// Forecaster computes expense forecasts. It holds no mutable state and is safe
// for concurrent use.
type Forecaster struct {
	store repository.Store
	log   *logrus.Logger
	now   func() time.Time
}

// Option configures a Forecaster.
type Option func(*Forecaster)

// WithClock overrides the clock used to decide the current month.
func WithClock(now func() time.Time) Option {
	return func(f *Forecaster) { f.now = now }
}

// NewForecaster creates a Forecaster reading users and transactions from store.
func NewForecaster(store repository.Store, log *logrus.Logger, opts ...Option) *Forecaster {
	f := &Forecaster{store: store, log: log, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ComputeExpensePrediction projects next month's expenses from the daily
// average of this month's expenses so far.
func (f *Forecaster) ComputeExpensePrediction(ctx context.Context, email string) (*models.ExpensePrediction, error) {
	user, err := f.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	now := f.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	today := models.DateOnly(now)

	txs, err := f.store.FindTransactionsByUserAndDateRangeAndType(ctx, user.ID, monthStart, today, models.TransactionExpense)
	if err != nil {
		return nil, fmt.Errorf("load current month expenses: %w", err)
	}

	currentMonthTotal := sumAmounts(txs)

	daysPassed := now.Day()
	if daysPassed < 1 {
		daysPassed = 1
	}
	dailyAverage := currentMonthTotal / float64(daysPassed)
	predictedNextMonth := dailyAverage * ProjectionDays

	f.log.WithFields(logrus.Fields{
		"user_id":       user.ID,
		"transactions":  len(txs),
		"month_total":   currentMonthTotal,
		"days_passed":   daysPassed,
		"daily_average": dailyAverage,
		"prediction":    predictedNextMonth,
	}).Debug("Computed expense prediction")

	return &models.ExpensePrediction{
		HistoricalData: []models.DataPoint{
			{Label: monthStart.Format("Jan"), Value: currentMonthTotal},
		},
		PredictedData: []models.DataPoint{
			{Label: monthStart.AddDate(0, 1, 0).Format("Jan"), Value: predictedNextMonth},
		},
		NextMonthPrediction: predictedNextMonth,
	}, nil
}

// NextMonthPrediction returns the scalar next-month prediction used to seed
// the narrative message.
func (f *Forecaster) NextMonthPrediction(ctx context.Context, email string) (float64, error) {
	p, err := f.ComputeExpensePrediction(ctx, email)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, nil
	}
	return p.NextMonthPrediction, nil
}

// ComputeRegressionTrend fits a line through the expense totals of the last
// months calendar months (the current, partial month included, oldest first)
// and predicts the following month. months <= 0 selects DefaultTrendMonths.
func (f *Forecaster) ComputeRegressionTrend(ctx context.Context, email string, months int) (*models.RegressionTrend, error) {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	if months > MaxTrendMonths {
		months = MaxTrendMonths
	}

	user, err := f.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	now := f.now()
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	today := models.DateOnly(now)

	historical := make([]models.DataPoint, 0, months)
	samples := make([]regression.Sample, 0, months)
	for i := 0; i < months; i++ {
		periodStart := currentMonth.AddDate(0, -(months - 1 - i), 0)
		periodEnd := periodStart.AddDate(0, 1, -1)
		if periodEnd.After(today) {
			periodEnd = today
		}

		txs, err := f.store.FindTransactionsByUserAndDateRangeAndType(ctx, user.ID, periodStart, periodEnd, models.TransactionExpense)
		if err != nil {
			return nil, fmt.Errorf("load expenses for %s: %w", periodStart.Format("2006-01"), err)
		}
		total := sumAmounts(txs)

		historical = append(historical, models.DataPoint{Label: periodStart.Format("Jan"), Value: total})
		samples = append(samples, regression.Sample{X: float64(i), Y: total})
	}

	line := regression.FitSamples(samples)
	next := line.Predict(float64(months))

	f.log.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"months":     months,
		"slope":      line.Slope(),
		"intercept":  line.Intercept(),
		"prediction": next,
	}).Debug("Computed regression trend")

	return &models.RegressionTrend{
		HistoricalData: historical,
		PredictedData: []models.DataPoint{
			{Label: currentMonth.AddDate(0, 1, 0).Format("Jan"), Value: next},
		},
		Slope:               line.Slope(),
		Intercept:           line.Intercept(),
		NextMonthPrediction: next,
	}, nil
}

// sumAmounts adds amounts in slice order so results are reproducible.
func sumAmounts(txs []*models.Transaction) float64 {
	var total float64
	for _, t := range txs {
		total += t.Amount
	}
	return total
}
