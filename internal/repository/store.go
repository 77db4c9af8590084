package repository

import (
	"context"
	"errors"
	"time"

	"github.com/budgetwise/forecast-service/internal/models"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=repository

var (
	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when registering an e-mail that is taken
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store defines the persistence operations used by the services
type Store interface {
	// User operations
	// E-mails are unique and matched case-insensitively.
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)

	// Transaction operations
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	// FindTransactionsByUserAndDateRangeAndType returns the user's transactions of
	// the given type dated within [start, end], both bounds inclusive by calendar
	// date, newest first.
	FindTransactionsByUserAndDateRangeAndType(ctx context.Context, userID int64, start, end time.Time, txType models.TransactionType) ([]*models.Transaction, error)
}
