package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitfree/internal/calculator"
	"github.com/mmynk/splitfree/internal/models"
	"github.com/mmynk/splitfree/internal/storage"
)

// PaymentInput describes money handed from one member to another.
type PaymentInput struct {
	FromID string
	ToID   string
	Amount decimal.Decimal
	Note   string
}

func (in *PaymentInput) validate(group *models.Group) error {
	in.Note = strings.TrimSpace(in.Note)
	if in.FromID == "" || in.ToID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, calculator.ErrMissingPaymentParty)
	}
	if in.FromID == in.ToID {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, calculator.ErrSelfPayment)
	}
	if err := calculator.ValidateAmount(in.Amount); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	for _, id := range []string{in.FromID, in.ToID} {
		if !hasMember(group, id) {
			return fmt.Errorf("%w: member %s is not in the group", ErrInvalidArgument, id)
		}
	}
	return nil
}

// RecordPayment stores a payment and moves both members' balances by its
// amount, which usually pays off one of the group's debts.
func (l *Ledger) RecordPayment(ctx context.Context, groupID string, in PaymentInput) (*models.Payment, []models.Debt, error) {
	payment := &models.Payment{GroupID: groupID}
	debts, err := l.mutate(ctx, groupID, func(tx storage.Tx) error {
		group, err := tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if err := in.validate(group); err != nil {
			return err
		}

		payment.FromID = in.FromID
		payment.ToID = in.ToID
		payment.Amount = in.Amount
		payment.Note = in.Note
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return err
		}
		return applyPayment(ctx, tx, payment, false)
	})
	if err != nil {
		return nil, nil, err
	}
	return payment, debts, nil
}

// DeletePayment undoes a payment's effect on the balances and removes it.
func (l *Ledger) DeletePayment(ctx context.Context, paymentID string) (string, []models.Debt, error) {
	existing, err := l.store.GetPayment(ctx, paymentID)
	if err != nil {
		return "", nil, err
	}

	debts, err := l.mutate(ctx, existing.GroupID, func(tx storage.Tx) error {
		payment, err := tx.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := applyPayment(ctx, tx, payment, true); err != nil {
			return err
		}
		return tx.DeletePayment(ctx, paymentID)
	})
	if err != nil {
		return "", nil, err
	}
	return existing.GroupID, debts, nil
}

// Payments returns a group's payments, oldest first.
func (l *Ledger) Payments(ctx context.Context, groupID string) ([]*models.Payment, error) {
	if _, err := l.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return l.store.ListPaymentsByGroup(ctx, groupID)
}

func applyPayment(ctx context.Context, tx storage.Tx, payment *models.Payment, undo bool) error {
	impact := calculator.PaymentImpact
	if undo {
		impact = calculator.UndoPaymentImpact
	}
	deltas, err := impact(payment.FromID, payment.ToID, payment.Amount)
	if err != nil {
		return fmt.Errorf("failed to compute impact of payment %s: %w", payment.ID, err)
	}
	return applyDeltas(ctx, tx, payment.GroupID, deltas)
}
