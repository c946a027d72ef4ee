package service

import (
	"github.com/mmynk/splitfree/internal/models"
	"github.com/mmynk/splitfree/pkg/api"
)

func groupToAPI(group *models.Group) *api.Group {
	members := make([]api.Member, len(group.Members))
	for i, m := range group.Members {
		members[i] = api.Member{ID: m.ID, Name: m.Name, Position: m.Position}
	}
	return &api.Group{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		Currency:    group.Currency,
		Members:     members,
		CreatedAt:   group.CreatedAt,
	}
}

func expenseToAPI(expense *models.Expense) *api.Expense {
	return &api.Expense{
		ID:             expense.ID,
		GroupID:        expense.GroupID,
		Title:          expense.Title,
		Description:    expense.Description,
		Amount:         expense.Amount,
		PayerID:        expense.PayerID,
		ParticipantIDs: expense.ParticipantIDs,
		Date:           expense.Date,
		CreatedAt:      expense.CreatedAt,
		UpdatedAt:      expense.UpdatedAt,
	}
}

// memberNames maps member IDs to names. A nil group yields an empty map.
func memberNames(group *models.Group) map[string]string {
	names := make(map[string]string)
	if group == nil {
		return names
	}
	for _, m := range group.Members {
		names[m.ID] = m.Name
	}
	return names
}

func debtsToAPI(debts []models.Debt, names map[string]string) []api.Debt {
	out := make([]api.Debt, len(debts))
	for i, d := range debts {
		out[i] = api.Debt{
			ID:           d.ID,
			BorrowerID:   d.BorrowerID,
			BorrowerName: names[d.BorrowerID],
			LenderID:     d.LenderID,
			LenderName:   names[d.LenderID],
			Amount:       d.Amount,
		}
	}
	return out
}

func balancesToAPI(balances []models.Balance, names map[string]string) []api.Balance {
	out := make([]api.Balance, len(balances))
	for i, b := range balances {
		out[i] = api.Balance{MemberID: b.MemberID, MemberName: names[b.MemberID], Amount: b.Amount}
	}
	return out
}

func paymentToAPI(payment *models.Payment, names map[string]string) api.Payment {
	return api.Payment{
		ID:        payment.ID,
		GroupID:   payment.GroupID,
		FromID:    payment.FromID,
		FromName:  names[payment.FromID],
		ToID:      payment.ToID,
		ToName:    names[payment.ToID],
		Amount:    payment.Amount,
		Note:      payment.Note,
		CreatedAt: payment.CreatedAt,
	}
}
