package models

import "github.com/shopspring/decimal"

// Payment is money one member handed to another to settle up, recorded
// outside of any expense.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// GroupID is the group this payment belongs to.
	GroupID string

	// FromID is the member who paid.
	FromID string

	// ToID is the member who received the money.
	ToID string

	// Amount is positive, at most two decimal places.
	Amount decimal.Decimal

	// Note is an optional description.
	Note string

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64
}

// Involves reports whether the member sent or received the payment.
func (p *Payment) Involves(memberID string) bool {
	return p.FromID == memberID || p.ToID == memberID
}
