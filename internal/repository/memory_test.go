package repository

import (
	"context"
	"testing"
	"time"

	"github.com/budgetwise/forecast-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreUsers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	user := &models.User{Username: "ana", Email: "ana@example.com", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(ctx, user))
	assert.Equal(t, int64(1), user.ID)

	err := store.CreateUser(ctx, &models.User{Username: "dup", Email: "ANA@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	found, err := store.FindUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ana", found.Username)

	found, err = store.FindUserByEmail(ctx, "Ana@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = store.FindUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.CreateUser(ctx, &models.User{Username: "bo", Email: "bo@example.com"}))
	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "ana@example.com", users[0].Email)
	assert.Equal(t, "bo@example.com", users[1].Email)
}

func TestMemoryStoreTransactionRange(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := &models.User{Email: "ana@example.com"}
	require.NoError(t, store.CreateUser(ctx, user))
	other := &models.User{Email: "bo@example.com"}
	require.NoError(t, store.CreateUser(ctx, other))

	day := func(d int) time.Time { return time.Date(2025, time.March, d, 15, 30, 0, 0, time.UTC) }
	seed := []*models.Transaction{
		{UserID: user.ID, Type: models.TransactionExpense, Amount: 10, Date: day(1)},
		{UserID: user.ID, Type: models.TransactionExpense, Amount: 20, Date: day(5)},
		{UserID: user.ID, Type: models.TransactionExpense, Amount: 40, Date: day(6)},
		{UserID: user.ID, Type: models.TransactionIncome, Amount: 999, Date: day(2)},
		{UserID: other.ID, Type: models.TransactionExpense, Amount: 5, Date: day(3)},
		{UserID: user.ID, Type: models.TransactionExpense, Amount: 7, Date: time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)},
	}
	for _, tx := range seed {
		require.NoError(t, store.CreateTransaction(ctx, tx))
	}

	got, err := store.FindTransactionsByUserAndDateRangeAndType(ctx, user.ID,
		time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC),
		models.TransactionExpense)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 20.0, got[0].Amount, "newest first")
	assert.Equal(t, 10.0, got[1].Amount)
}

func TestMemoryStoreTransactionUnknownUser(t *testing.T) {
	store := NewMemoryStore()
	err := store.CreateTransaction(context.Background(), &models.Transaction{UserID: 42, Type: models.TransactionExpense})
	assert.ErrorIs(t, err, ErrNotFound)
}
