package models

import "github.com/shopspring/decimal"

// Debt is a recommended payment settling part of a group's balances:
// the borrower pays the lender Amount.
//
// Debts are produced only by the settlement engine. The whole set for a group
// is replaced after every balance change.
type Debt struct {
	// ID is the unique identifier for the debt (UUID format).
	ID string

	// GroupID is the group this debt belongs to.
	GroupID string

	// BorrowerID is the member who pays.
	BorrowerID string

	// LenderID is the member who receives.
	LenderID string

	// Amount is always positive.
	Amount decimal.Decimal

	// Position is the debt's index in the engine's output.
	Position int

	// CreatedAt is the Unix timestamp when the debt set was computed.
	CreatedAt int64
}
