package api

import "github.com/shopspring/decimal"

// GroupService messages.

type CreateGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Members     []string `json:"members"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

// UpdateGroupRequest replaces a group's details. Members is the complete
// desired member list by name.
type UpdateGroupRequest struct {
	GroupID     string   `json:"groupId"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Members     []string `json:"members"`
}

type UpdateGroupResponse struct {
	Group *Group `json:"group"`
	Debts []Debt `json:"debts"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}

type AddMemberRequest struct {
	GroupID string `json:"groupId"`
	Name    string `json:"name"`
}

type AddMemberResponse struct {
	Member *Member `json:"member"`
	Debts  []Debt  `json:"debts"`
}

type RemoveMemberRequest struct {
	GroupID  string `json:"groupId"`
	MemberID string `json:"memberId"`
}

type RemoveMemberResponse struct {
	Debts []Debt `json:"debts"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupBalancesResponse struct {
	Balances []Balance `json:"balances"`
	Debts    []Debt    `json:"debts"`
}

// ExpenseService messages.

type CreateExpenseRequest struct {
	GroupID        string          `json:"groupId"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	PayerID        string          `json:"payerId"`
	ParticipantIDs []string        `json:"participantIds"`
	Date           string          `json:"date,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
	Debts   []Debt   `json:"debts"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"groupId"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type UpdateExpenseRequest struct {
	ExpenseID      string          `json:"expenseId"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	PayerID        string          `json:"payerId"`
	ParticipantIDs []string        `json:"participantIds"`
	Date           string          `json:"date,omitempty"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
	Debts   []Debt   `json:"debts"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct {
	Debts []Debt `json:"debts"`
}

// SettlementService messages.

type ComputeSettlementRequest struct {
	Balances []PartyBalance `json:"balances"`
}

type ComputeSettlementResponse struct {
	Transfers []Transfer `json:"transfers"`
}

type ListDebtsRequest struct {
	GroupID string `json:"groupId"`
}

type ListDebtsResponse struct {
	Debts []Debt `json:"debts"`
}

type RecomputeDebtsRequest struct {
	GroupID string `json:"groupId"`
}

type RecomputeDebtsResponse struct {
	Debts []Debt `json:"debts"`
}

type RecordPaymentRequest struct {
	GroupID string          `json:"groupId"`
	FromID  string          `json:"fromId"`
	ToID    string          `json:"toId"`
	Amount  decimal.Decimal `json:"amount"`
	Note    string          `json:"note,omitempty"`
}

type RecordPaymentResponse struct {
	Payment *Payment `json:"payment"`
	Debts   []Debt   `json:"debts"`
}

type ListPaymentsRequest struct {
	GroupID string `json:"groupId"`
}

type ListPaymentsResponse struct {
	Payments []Payment `json:"payments"`
}

type DeletePaymentRequest struct {
	PaymentID string `json:"paymentId"`
}

type DeletePaymentResponse struct {
	GroupID string `json:"groupId"`
	Debts   []Debt `json:"debts"`
}
