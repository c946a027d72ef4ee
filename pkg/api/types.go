package api

import "github.com/shopspring/decimal"

// Group is a set of members sharing expenses.
type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Currency    string   `json:"currency"`
	Members     []Member `json:"members"`
	CreatedAt   int64    `json:"createdAt"`
}

// Member is one participant of a group.
type Member struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// Balance is a member's signed net position.
// Negative = owed money, Positive = owes money.
type Balance struct {
	MemberID   string          `json:"memberId"`
	MemberName string          `json:"memberName,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
}

// Debt is a recommended payment: the borrower pays the lender.
type Debt struct {
	ID           string          `json:"id,omitempty"`
	BorrowerID   string          `json:"borrowerId"`
	BorrowerName string          `json:"borrowerName,omitempty"`
	LenderID     string          `json:"lenderId"`
	LenderName   string          `json:"lenderName,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
}

// Expense is an amount paid by one member and shared by some members.
type Expense struct {
	ID             string          `json:"id"`
	GroupID        string          `json:"groupId"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	PayerID        string          `json:"payerId,omitempty"`
	ParticipantIDs []string        `json:"participantIds"`
	Date           string          `json:"date,omitempty"`
	CreatedAt      int64           `json:"createdAt"`
	UpdatedAt      int64           `json:"updatedAt"`
}

// PartyBalance is an input balance for a stateless settlement. Party is any
// caller-chosen identifier.
type PartyBalance struct {
	Party  string          `json:"party"`
	Amount decimal.Decimal `json:"amount"`
}

// Transfer is one payment of a stateless settlement.
type Transfer struct {
	Borrower string          `json:"borrower"`
	Lender   string          `json:"lender"`
	Amount   decimal.Decimal `json:"amount"`
}

// Payment is money a member handed to another member outside any expense.
type Payment struct {
	ID        string          `json:"id"`
	GroupID   string          `json:"groupId"`
	FromID    string          `json:"fromId"`
	FromName  string          `json:"fromName,omitempty"`
	ToID      string          `json:"toId"`
	ToName    string          `json:"toName,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note,omitempty"`
	CreatedAt int64           `json:"createdAt"`
}
