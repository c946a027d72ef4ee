package ledger

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitfree/internal/calculator"
	"github.com/mmynk/splitfree/internal/models"
	"github.com/mmynk/splitfree/internal/storage"
)

// ExpenseInput holds the user-editable fields of an expense.
type ExpenseInput struct {
	Title          string
	Description    string
	Amount         decimal.Decimal
	PayerID        string
	ParticipantIDs []string
	Date           string
}

// validate checks the input against the group's current members.
func (in *ExpenseInput) validate(group *models.Group) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return fmt.Errorf("%w: expense title is required", ErrInvalidArgument)
	}
	if err := calculator.ValidateAmount(in.Amount); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if in.PayerID == "" {
		return fmt.Errorf("%w: payer is required", ErrInvalidArgument)
	}
	if !hasMember(group, in.PayerID) {
		return fmt.Errorf("%w: payer %s is not a member of the group", ErrInvalidArgument, in.PayerID)
	}
	if len(in.ParticipantIDs) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, calculator.ErrNoParticipants)
	}

	seen := make(map[string]bool, len(in.ParticipantIDs))
	for _, p := range in.ParticipantIDs {
		if !hasMember(group, p) {
			return fmt.Errorf("%w: participant %s is not a member of the group", ErrInvalidArgument, p)
		}
		if seen[p] {
			return fmt.Errorf("%w: %w: %s", ErrInvalidArgument, calculator.ErrDuplicateParticipant, p)
		}
		seen[p] = true
	}
	return nil
}

// CreateExpense records an expense and applies its impact.
func (l *Ledger) CreateExpense(ctx context.Context, groupID string, in ExpenseInput) (*models.Expense, []models.Debt, error) {
	expense := &models.Expense{GroupID: groupID}
	debts, err := l.mutate(ctx, groupID, func(tx storage.Tx) error {
		group, err := tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if err := in.validate(group); err != nil {
			return err
		}

		expense.Title = in.Title
		expense.Description = in.Description
		expense.Amount = in.Amount
		expense.PayerID = in.PayerID
		expense.ParticipantIDs = slices.Clone(in.ParticipantIDs)
		expense.Date = in.Date

		if err := tx.CreateExpense(ctx, expense); err != nil {
			return err
		}
		return applyImpact(ctx, tx, expense, false)
	})
	if err != nil {
		return nil, nil, err
	}
	return expense, debts, nil
}

// UpdateExpense replaces an expense's fields. When the amount, payer or
// participants change, the old impact is undone and the new one applied.
func (l *Ledger) UpdateExpense(ctx context.Context, expenseID string, in ExpenseInput) (*models.Expense, []models.Debt, error) {
	existing, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, nil, err
	}

	var expense *models.Expense
	debts, err := l.mutate(ctx, existing.GroupID, func(tx storage.Tx) error {
		// Re-read under the lock.
		old, err := tx.GetExpense(ctx, expenseID)
		if err != nil {
			return err
		}
		group, err := tx.GetGroup(ctx, old.GroupID)
		if err != nil {
			return err
		}
		if err := in.validate(group); err != nil {
			return err
		}

		updated := *old
		updated.Title = in.Title
		updated.Description = in.Description
		updated.Amount = in.Amount
		updated.PayerID = in.PayerID
		updated.ParticipantIDs = slices.Clone(in.ParticipantIDs)
		updated.Date = in.Date

		reimpact := !old.Amount.Equal(updated.Amount) ||
			old.PayerID != updated.PayerID ||
			!slices.Equal(old.ParticipantIDs, updated.ParticipantIDs)

		if reimpact {
			if err := applyImpact(ctx, tx, old, true); err != nil {
				return err
			}
		}
		if err := tx.UpdateExpense(ctx, &updated); err != nil {
			return err
		}
		if reimpact {
			if err := applyImpact(ctx, tx, &updated, false); err != nil {
				return err
			}
		}
		expense = &updated
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return expense, debts, nil
}

// DeleteExpense undoes an expense's impact and removes it.
func (l *Ledger) DeleteExpense(ctx context.Context, expenseID string) (string, []models.Debt, error) {
	existing, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return "", nil, err
	}

	debts, err := l.mutate(ctx, existing.GroupID, func(tx storage.Tx) error {
		expense, err := tx.GetExpense(ctx, expenseID)
		if err != nil {
			return err
		}
		if err := applyImpact(ctx, tx, expense, true); err != nil {
			return err
		}
		return tx.DeleteExpense(ctx, expenseID)
	})
	if err != nil {
		return "", nil, err
	}
	return existing.GroupID, debts, nil
}

// Expense returns one expense.
func (l *Ledger) Expense(ctx context.Context, expenseID string) (*models.Expense, error) {
	return l.store.GetExpense(ctx, expenseID)
}

// Expenses returns a group's expenses, oldest first.
func (l *Ledger) Expenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	if _, err := l.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return l.store.ListExpensesByGroup(ctx, groupID)
}
