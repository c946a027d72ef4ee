package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingPaymentParty = errors.New("payment needs a sender and a receiver")
	ErrSelfPayment         = errors.New("payment sender and receiver are the same member")
)

// ExpenseForBalance represents an expense with the minimal information needed
// for balance calculations.
type ExpenseForBalance struct {
	Amount       decimal.Decimal
	PayerID      string // empty when the payer has left the group
	Participants []string
}

// ExpenseImpact returns how an expense moves each member's balance.
//
// Every participant other than the payer owes their share, so their balance
// goes up by it. The payer is owed what the others owe, so their balance goes
// down by the sum of those shares. The payer is put first when splitting, so
// the payer absorbs leftover cents. The deltas always sum to exactly zero.
//
// An expense without a payer or without participants has no impact: nobody is
// left to pay back.
func ExpenseImpact(expense ExpenseForBalance) (map[string]decimal.Decimal, error) {
	if expense.PayerID == "" || len(expense.Participants) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	ordered := make([]string, 0, len(expense.Participants))
	payerParticipates := false
	for _, p := range expense.Participants {
		if p == expense.PayerID {
			payerParticipates = true
		}
	}
	if payerParticipates {
		ordered = append(ordered, expense.PayerID)
	}
	for _, p := range expense.Participants {
		if p != expense.PayerID {
			ordered = append(ordered, p)
		}
	}
	if len(ordered) != len(expense.Participants) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateParticipant, expense.PayerID)
	}

	shares, err := SplitEqually(expense.Amount, ordered)
	if err != nil {
		return nil, fmt.Errorf("failed to split expense: %w", err)
	}

	deltas := make(map[string]decimal.Decimal, len(shares)+1)
	owedToPayer := decimal.Zero
	for member, share := range shares {
		if member == expense.PayerID {
			continue
		}
		deltas[member] = share
		owedToPayer = owedToPayer.Add(share)
	}
	deltas[expense.PayerID] = owedToPayer.Neg()

	return deltas, nil
}

// UndoExpenseImpact returns the deltas that cancel ExpenseImpact for the same
// expense.
func UndoExpenseImpact(expense ExpenseForBalance) (map[string]decimal.Decimal, error) {
	deltas, err := ExpenseImpact(expense)
	if err != nil {
		return nil, err
	}
	for member, delta := range deltas {
		deltas[member] = delta.Neg()
	}
	return deltas, nil
}

// PaymentImpact returns how a payment from one member to another moves their
// balances. The sender paid off part of what they owe, so their balance goes
// down by amount. The receiver got money they were owed, so theirs goes up.
func PaymentImpact(fromID, toID string, amount decimal.Decimal) (map[string]decimal.Decimal, error) {
	if fromID == "" || toID == "" {
		return nil, ErrMissingPaymentParty
	}
	if fromID == toID {
		return nil, fmt.Errorf("%w: %s", ErrSelfPayment, fromID)
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	return map[string]decimal.Decimal{
		fromID: amount.Neg(),
		toID:   amount,
	}, nil
}

// UndoPaymentImpact returns the deltas that cancel PaymentImpact.
func UndoPaymentImpact(fromID, toID string, amount decimal.Decimal) (map[string]decimal.Decimal, error) {
	return PaymentImpact(toID, fromID, amount)
}

// SumBalances adds up amounts. A well-formed group sums to zero.
func SumBalances(amounts []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	return sum
}

// SettlesBalances reports whether applying transfers brings every balance to
// zero: a borrower's balance drops by what they pay, a lender's rises by what
// they receive.
func SettlesBalances[K comparable](balances []Balance[K], transfers []Transfer[K]) bool {
	remaining := make(map[K]decimal.Decimal, len(balances))
	for _, b := range balances {
		remaining[b.Party] = remaining[b.Party].Add(b.Amount)
	}
	for _, t := range transfers {
		remaining[t.Borrower] = remaining[t.Borrower].Sub(t.Amount)
		remaining[t.Lender] = remaining[t.Lender].Add(t.Amount)
	}
	for _, amount := range remaining {
		if !amount.IsZero() {
			return false
		}
	}
	return true
}
