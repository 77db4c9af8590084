package service

import (
	"context"
	"testing"
	"time"

	"github.com/budgetwise/forecast-service/internal/config"
	"github.com/budgetwise/forecast-service/internal/models"
	"github.com/budgetwise/forecast-service/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestService(store repository.Store) *Service {
	logger, _ := test.NewNullLogger()
	return NewService(store, logger, &config.Config{JWTSecret: "test-secret"})
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(repository.NewMemoryStore())

	user, err := svc.Register(ctx, "ana", " Ana@Example.com ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	token, err := svc.Login(ctx, "ana@example.com", "correct horse")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "ana@example.com", claims.Subject)

	_, err = svc.Login(ctx, "ana@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(repository.NewMemoryStore())

	_, err := svc.Register(context.Background(), "x", "not-an-email", "longenough")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(context.Background(), "x", "x@example.com", "short")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterDuplicate(t *testing.T) {
	svc := newTestService(repository.NewMemoryStore())
	_, err := svc.Register(context.Background(), "a", "a@example.com", "password1")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "b", "a@example.com", "password2")
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestAddTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := repository.NewMockStore(ctrl)
	svc := newTestService(store)
	svc.now = func() time.Time { return time.Date(2025, time.May, 9, 18, 45, 0, 0, time.Local) }

	store.EXPECT().FindUserByEmail(gomock.Any(), "ana@example.com").
		Return(&models.User{ID: 3, Email: "ana@example.com"}, nil)
	store.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *models.Transaction) error {
			assert.Equal(t, int64(3), tx.UserID)
			assert.Equal(t, models.TransactionExpense, tx.Type)
			assert.Equal(t, time.Date(2025, time.May, 9, 0, 0, 0, 0, time.Local), tx.Date)
			tx.ID = 11
			return nil
		})

	tx, err := svc.AddTransaction(context.Background(), "ana@example.com", TransactionInput{
		Type: "expense", Amount: 42.5, Category: " Food ",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), tx.ID)
	assert.Equal(t, "Food", tx.Category)
}

func TestAddTransactionValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := newTestService(repository.NewMockStore(ctrl))

	tests := []struct {
		name string
		in   TransactionInput
	}{
		{"unknown type", TransactionInput{Type: "TRANSFER", Amount: 1}},
		{"negative amount", TransactionInput{Type: "EXPENSE", Amount: -1}},
		{"bad date", TransactionInput{Type: "INCOME", Amount: 1, Date: "09/05/2025"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddTransaction(context.Background(), "ana@example.com", tt.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}
