package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/budgetwise/forecast-service/internal/models"
)

// MemoryStore is an in-memory Store for local development and tests
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[int64]*models.User
	transactions map[int64]*models.Transaction
	nextUserID   int64
	nextTxID     int64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[int64]*models.User),
		transactions: make(map[int64]*models.Transaction),
	}
}

func (m *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	m.nextUserID++
	user.ID = m.nextUserID
	user.CreatedAt = time.Now()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			found := *u
			return &found, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
}

func (m *MemoryStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		c := *u
		users = append(users, &c)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MemoryStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[tx.UserID]; !ok {
		return fmt.Errorf("user %d: %w", tx.UserID, ErrNotFound)
	}
	m.nextTxID++
	tx.ID = m.nextTxID
	tx.Date = models.DateOnly(tx.Date)
	tx.CreatedAt = time.Now()
	stored := *tx
	m.transactions[tx.ID] = &stored
	return nil
}

func (m *MemoryStore) FindTransactionsByUserAndDateRangeAndType(ctx context.Context, userID int64, start, end time.Time, txType models.TransactionType) ([]*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	from, to := models.DateOnly(start), models.DateOnly(end)
	var result []*models.Transaction
	for _, t := range m.transactions {
		if t.UserID != userID || !strings.EqualFold(string(t.Type), string(txType)) {
			continue
		}
		d := time.Date(t.Date.Year(), t.Date.Month(), t.Date.Day(), 0, 0, 0, 0, from.Location())
		if d.Before(from) || d.After(to) {
			continue
		}
		c := *t
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}
