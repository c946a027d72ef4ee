// Package ledger keeps every group's balances and debts consistent.
//
// Each mutation runs in a single storage transaction. The transaction locks
// the group, changes the stored data, applies the balance deltas, reruns the
// settlement engine over the member balances (in join order) and replaces the
// group's debts. Callers never observe balances and debts that disagree.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitfree/internal/calculator"
	"github.com/mmynk/splitfree/internal/metrics"
	"github.com/mmynk/splitfree/internal/models"
	"github.com/mmynk/splitfree/internal/storage"
)

// ErrInvalidArgument is wrapped by every validation error.
var ErrInvalidArgument = errors.New("invalid argument")

// Ledger orchestrates group, member and expense mutations.
type Ledger struct {
	store   storage.Store
	limits  calculator.Limits
	metrics *metrics.Metrics

	mu    sync.Mutex
	locks map[string]*groupLock
}

type groupLock struct {
	mu   sync.Mutex
	refs int
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLimits sets the settlement engine limits.
func WithLimits(limits calculator.Limits) Option {
	return func(l *Ledger) { l.limits = limits }
}

// WithMetrics records every settlement run in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

// New creates a Ledger backed by store.
func New(store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		limits: calculator.DefaultLimits,
		locks:  make(map[string]*groupLock),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// lock serializes in-process mutations of one group. The storage transaction
// serializes across processes. The returned func releases the lock.
func (l *Ledger) lock(groupID string) func() {
	l.mu.Lock()
	gl, ok := l.locks[groupID]
	if !ok {
		gl = &groupLock{}
		l.locks[groupID] = gl
	}
	gl.refs++
	l.mu.Unlock()

	gl.mu.Lock()
	return func() {
		gl.mu.Unlock()
		l.mu.Lock()
		gl.refs--
		if gl.refs == 0 {
			delete(l.locks, groupID)
		}
		l.mu.Unlock()
	}
}

// mutate runs fn in a transaction holding the group lock, then recomputes and
// replaces the group's debts before committing. It returns the new debts.
func (l *Ledger) mutate(ctx context.Context, groupID string, fn func(tx storage.Tx) error) ([]models.Debt, error) {
	unlock := l.lock(groupID)
	defer unlock()

	var debts []models.Debt
	err := l.store.InTx(ctx, func(tx storage.Tx) error {
		if err := tx.LockGroup(ctx, groupID); err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			return err
		}
		var err error
		debts, err = l.recompute(ctx, tx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return debts, nil
}

// recompute runs the engine over the group's balances and stores the result.
func (l *Ledger) recompute(ctx context.Context, tx storage.Tx, groupID string) ([]models.Debt, error) {
	balances, err := tx.ListBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	transfers, err := l.settle(toEngineBalances(balances))
	if errors.Is(err, calculator.ErrAmountOutOfRange) {
		return nil, fmt.Errorf("%w: balances of group %s: %w", ErrInvalidArgument, groupID, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to settle group %s: %w", groupID, err)
	}

	debts := make([]models.Debt, len(transfers))
	for i, t := range transfers {
		debts[i] = models.Debt{
			GroupID:    groupID,
			BorrowerID: t.Borrower,
			LenderID:   t.Lender,
			Amount:     t.Amount,
		}
	}
	if err := tx.ReplaceDebts(ctx, groupID, debts); err != nil {
		return nil, err
	}

	slog.Debug("Debts recomputed", "group_id", groupID, "members", len(balances), "debts", len(debts))
	return debts, nil
}

// Settle runs the settlement engine with the ledger's limits. It is the
// stateless entry point: nothing is read or stored.
func (l *Ledger) Settle(balances []calculator.Balance[string]) ([]calculator.Transfer[string], error) {
	transfers, err := l.settle(balances)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return transfers, nil
}

func (l *Ledger) settle(balances []calculator.Balance[string]) ([]calculator.Transfer[string], error) {
	start := time.Now()
	transfers, err := calculator.SettleWithLimits(balances, l.limits)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		l.metrics.ObserveSettlement(metrics.OutcomeOK, elapsed, len(transfers))
	case errors.Is(err, calculator.ErrUnbalanced),
		errors.Is(err, calculator.ErrDuplicateParty),
		errors.Is(err, calculator.ErrTooManyParties),
		errors.Is(err, calculator.ErrAmountOutOfRange):
		l.metrics.ObserveSettlement(metrics.OutcomeRejected, elapsed, 0)
	default:
		l.metrics.ObserveSettlement(metrics.OutcomeError, elapsed, 0)
	}
	return transfers, err
}

func toEngineBalances(balances []models.Balance) []calculator.Balance[string] {
	out := make([]calculator.Balance[string], len(balances))
	for i, b := range balances {
		out[i] = calculator.Balance[string]{Party: b.MemberID, Amount: b.Amount}
	}
	return out
}

// applyImpact adds the expense's balance deltas, or removes them when undo is
// set.
func applyImpact(ctx context.Context, tx storage.Tx, expense *models.Expense, undo bool) error {
	in := calculator.ExpenseForBalance{
		Amount:       expense.Amount,
		PayerID:      expense.PayerID,
		Participants: expense.ParticipantIDs,
	}

	impact := calculator.ExpenseImpact
	if undo {
		impact = calculator.UndoExpenseImpact
	}
	deltas, err := impact(in)
	if err != nil {
		return fmt.Errorf("failed to compute impact of expense %s: %w", expense.ID, err)
	}
	return applyDeltas(ctx, tx, expense.GroupID, deltas)
}

// applyDeltas adjusts balances in member ID order, skipping zero deltas.
func applyDeltas(ctx context.Context, tx storage.Tx, groupID string, deltas map[string]decimal.Decimal) error {
	for _, memberID := range slices.Sorted(maps.Keys(deltas)) {
		delta := deltas[memberID]
		if delta.IsZero() {
			continue
		}
		if err := tx.AdjustBalance(ctx, groupID, memberID, delta); err != nil {
			return err
		}
	}
	return nil
}

// Recompute reruns the engine for a group and replaces its debts.
func (l *Ledger) Recompute(ctx context.Context, groupID string) ([]models.Debt, error) {
	return l.mutate(ctx, groupID, func(storage.Tx) error { return nil })
}

// Debts returns the group's current debts.
func (l *Ledger) Debts(ctx context.Context, groupID string) ([]models.Debt, error) {
	if _, err := l.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return l.store.ListDebts(ctx, groupID)
}

// Balances returns one balance per member, in join order.
func (l *Ledger) Balances(ctx context.Context, groupID string) ([]models.Balance, error) {
	if _, err := l.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return l.store.ListBalances(ctx, groupID)
}

// Snapshot returns the group's balances and debts read in one transaction.
func (l *Ledger) Snapshot(ctx context.Context, groupID string) ([]models.Balance, []models.Debt, error) {
	var (
		balances []models.Balance
		debts    []models.Debt
	)
	err := l.store.InTx(ctx, func(tx storage.Tx) error {
		if err := tx.LockGroup(ctx, groupID); err != nil {
			return err
		}
		var err error
		if balances, err = tx.ListBalances(ctx, groupID); err != nil {
			return err
		}
		debts, err = tx.ListDebts(ctx, groupID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return balances, debts, nil
}

// sumBalances totals the amounts of balances.
func sumBalances(balances []models.Balance) decimal.Decimal {
	amounts := make([]decimal.Decimal, len(balances))
	for i, b := range balances {
		amounts[i] = b.Amount
	}
	return calculator.SumBalances(amounts)
}
