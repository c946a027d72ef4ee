package models

import "github.com/shopspring/decimal"

// Expense represents an amount paid by one member and shared equally by the
// participants.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Title is the human-readable name for the expense.
	Title string

	// Description is optional free text.
	Description string

	// Amount is the total paid, positive, at most two decimal places.
	Amount decimal.Decimal

	// PayerID is the member who paid. Empty when the payer has left the group,
	// in which case the expense no longer affects anyone's balance.
	PayerID string

	// ParticipantIDs are the members sharing the expense, in the order given
	// when it was recorded.
	ParticipantIDs []string

	// Date is the user-supplied date of the expense, free-form.
	Date string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}

// Involves reports whether the member paid for or shares the expense.
func (e *Expense) Involves(memberID string) bool {
	if e.PayerID == memberID {
		return true
	}
	for _, p := range e.ParticipantIDs {
		if p == memberID {
			return true
		}
	}
	return false
}
