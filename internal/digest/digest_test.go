package digest

import (
	"context"
	"errors"
	"testing"

	"github.com/budgetwise/forecast-service/internal/models"
	"github.com/budgetwise/forecast-service/internal/repository"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type predictorFunc func(ctx context.Context, email string) (*models.ExpensePrediction, error)

func (f predictorFunc) ComputeExpensePrediction(ctx context.Context, email string) (*models.ExpensePrediction, error) {
	return f(ctx, email)
}

type recordingSender struct {
	sent []Message
	fail map[string]bool
}

func (r *recordingSender) Send(msg Message) error {
	if r.fail[msg.To] {
		return errors.New("smtp down")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func prediction(total, next float64) *models.ExpensePrediction {
	return &models.ExpensePrediction{
		HistoricalData:      []models.DataPoint{{Label: "Nov", Value: total}},
		PredictedData:       []models.DataPoint{{Label: "Dec", Value: next}},
		NextMonthPrediction: next,
	}
}

func TestJobRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := repository.NewMockStore(ctrl)
	logger, _ := test.NewNullLogger()

	store.EXPECT().ListUsers(gomock.Any()).Return([]*models.User{
		{ID: 1, Email: "ana@example.com", Username: "ana"},
		{ID: 2, Email: "ghost@example.com"},
		{ID: 3, Email: "bo@example.com", Username: "bo"},
		{ID: 4, Email: "down@example.com"},
	}, nil)

	predictor := predictorFunc(func(_ context.Context, email string) (*models.ExpensePrediction, error) {
		if email == "ghost@example.com" {
			return nil, repository.ErrNotFound
		}
		return prediction(300, 900), nil
	})
	sender := &recordingSender{fail: map[string]bool{"down@example.com": true}}

	res, err := NewJob(store, predictor, sender, logger).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Sent: 2, Failed: 2}, res)
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "ana@example.com", sender.sent[0].To)
	assert.Equal(t, "bo@example.com", sender.sent[1].To)
}

func TestJobRunListUsersFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := repository.NewMockStore(ctrl)
	logger, _ := test.NewNullLogger()

	store.EXPECT().ListUsers(gomock.Any()).Return(nil, errors.New("db down"))

	_, err := NewJob(store, nil, &recordingSender{}, logger).Run(context.Background())
	assert.Error(t, err)
}

func TestBuildMessage(t *testing.T) {
	msg := BuildMessage(&models.User{Email: "ana@example.com", Username: "Ana"}, prediction(300, 900))

	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, "Your Dec expense forecast", msg.Subject)
	assert.Contains(t, msg.Body, "Dear Ana,")
	assert.Contains(t, msg.Body, "Your expenses so far in Nov: 300.00")
	assert.Contains(t, msg.Body, "Projected expenses for Dec: 900.00")
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := NewScheduler("every tuesday", &Job{}, logger)
	assert.Error(t, err)

	s, err := NewScheduler("0 8 1 * *", &Job{}, logger)
	require.NoError(t, err)
	s.Start()
	s.Stop()
}
