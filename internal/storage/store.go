// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mkowalczyk/divvy/internal/models"
)

// ErrNotFound is wrapped by implementations when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence interface the services depend on. It allows
// swapping backends (SQLite, PostgreSQL, ...) without touching the service
// layer.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Groups
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	UpdateGroup(ctx context.Context, group *models.Group) error
	AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)

	// Expenses
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// Settlements
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// Close releases any resources held by the store.
	Close() error
}
