package models

import "github.com/shopspring/decimal"

// DefaultCurrency is used when a group is created without one.
const DefaultCurrency = "EUR"

// Group represents a set of people who split expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// Description is optional free text.
	Description string

	// Currency is a display label for every amount in the group.
	// No conversion is ever done.
	Currency string

	// Members are the group's members in join order.
	Members []Member

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// MemberNames returns the names of the group's members in join order.
func (g *Group) MemberNames() []string {
	names := make([]string, len(g.Members))
	for i, m := range g.Members {
		names[i] = m.Name
	}
	return names
}

// Member represents one participant of a group.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// GroupID is the group this member belongs to.
	GroupID string

	// Name is unique inside the group.
	Name string

	// Position is the member's join order inside the group. Balances are
	// handed to the settlement engine in this order, which makes the computed
	// debts stable across runs.
	Position int

	// CreatedAt is the Unix timestamp when the member joined.
	CreatedAt int64
}

// Balance is a member's signed net position in their group.
// Negative = owed money, Positive = owes money.
type Balance struct {
	GroupID  string
	MemberID string
	Amount   decimal.Decimal
}
