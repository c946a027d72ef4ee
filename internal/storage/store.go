// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitfree/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Reader defines the read operations shared by the store and its transactions.
type Reader interface {
	// GetGroup retrieves a group and its members ordered by position.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups retrieves all groups, newest first.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// GetExpense retrieves an expense with its participants.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup retrieves a group's expenses, oldest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// ListBalances returns one balance per member, ordered by member position.
	ListBalances(ctx context.Context, groupID string) ([]models.Balance, error)

	// ListDebts returns the group's current debts in the order they were computed.
	ListDebts(ctx context.Context, groupID string) ([]models.Debt, error)

	// GetPayment retrieves a recorded payment.
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)

	// ListPaymentsByGroup retrieves a group's payments, oldest first.
	ListPaymentsByGroup(ctx context.Context, groupID string) ([]*models.Payment, error)
}

// Tx is a storage transaction. Everything done through a Tx becomes visible
// atomically when the function passed to Store.InTx returns nil.
type Tx interface {
	Reader

	// LockGroup serializes the transaction with every other transaction that
	// locks the same group. Returns ErrNotFound if the group does not exist.
	LockGroup(ctx context.Context, groupID string) error

	// CreateGroup persists a new group. ID and CreatedAt are filled in when
	// empty. Members are not created; use AddMember.
	CreateGroup(ctx context.Context, group *models.Group) error

	// UpdateGroup updates a group's name, description and currency.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group with everything it owns.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddMember persists a member at the end of the group's join order
	// together with a zero balance.
	AddMember(ctx context.Context, member *models.Member) error

	// DeleteMember removes a member together with their balance and any debt
	// or payment they are part of.
	DeleteMember(ctx context.Context, memberID string) error

	// CreateExpense persists a new expense with its participants.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// UpdateExpense replaces an expense's fields and participants.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense.
	DeleteExpense(ctx context.Context, expenseID string) error

	// CreatePayment persists a new payment. ID and CreatedAt are filled in
	// when empty.
	CreatePayment(ctx context.Context, payment *models.Payment) error

	// DeletePayment removes a payment.
	DeletePayment(ctx context.Context, paymentID string) error

	// AdjustBalance adds delta to a member's balance.
	AdjustBalance(ctx context.Context, groupID, memberID string, delta decimal.Decimal) error

	// ReplaceDebts deletes every debt of the group and inserts debts in order.
	ReplaceDebts(ctx context.Context, groupID string, debts []models.Debt) error
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, MySQL, etc.)
// without changing the ledger layer.
type Store interface {
	Reader

	// InTx runs fn inside a transaction. The transaction commits if fn returns
	// nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
