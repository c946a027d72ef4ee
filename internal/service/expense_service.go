package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitfree/internal/ledger"
	"github.com/mmynk/splitfree/pkg/api"
	"github.com/mmynk/splitfree/pkg/api/apiconnect"
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	ledger *ledger.Ledger
}

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// NewExpenseService creates a new ExpenseService backed by the ledger.
func NewExpenseService(l *ledger.Ledger) *ExpenseService {
	return &ExpenseService{ledger: l}
}

// CreateExpense records an expense and returns the group's new debts.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"title", req.Msg.Title,
		"amount", req.Msg.Amount.String(),
		"participants_count", len(req.Msg.ParticipantIDs),
	)

	expense, debts, err := s.ledger.CreateExpense(ctx, req.Msg.GroupID, ledger.ExpenseInput{
		Title:          req.Msg.Title,
		Description:    req.Msg.Description,
		Amount:         req.Msg.Amount,
		PayerID:        req.Msg.PayerID,
		ParticipantIDs: req.Msg.ParticipantIDs,
		Date:           req.Msg.Date,
	})
	if err != nil {
		slog.Error("CreateExpense failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "debts", len(debts))

	return connect.NewResponse(&api.CreateExpenseResponse{
		Expense: expenseToAPI(expense),
		Debts:   debtsToAPI(debts, lookupNames(ctx, s.ledger, expense.GroupID)),
	}), nil
}

// GetExpense retrieves an expense by ID.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	slog.Info("GetExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, err := s.ledger.Expense(ctx, req.Msg.ExpenseID)
	if err != nil {
		slog.Error("GetExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetExpenseResponse{Expense: expenseToAPI(expense)}), nil
}

// ListExpenses retrieves a group's expenses.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID)

	expenses, err := s.ledger.Expenses(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Expense, len(expenses))
	for i, expense := range expenses {
		out[i] = expenseToAPI(expense)
	}

	slog.Info("ListExpenses successful", "group_id", req.Msg.GroupID, "count", len(out))

	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// UpdateExpense updates an expense and returns the group's new debts.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	slog.Info("UpdateExpense request received",
		"expense_id", req.Msg.ExpenseID,
		"amount", req.Msg.Amount.String(),
		"participants_count", len(req.Msg.ParticipantIDs),
	)

	expense, debts, err := s.ledger.UpdateExpense(ctx, req.Msg.ExpenseID, ledger.ExpenseInput{
		Title:          req.Msg.Title,
		Description:    req.Msg.Description,
		Amount:         req.Msg.Amount,
		PayerID:        req.Msg.PayerID,
		ParticipantIDs: req.Msg.ParticipantIDs,
		Date:           req.Msg.Date,
	})
	if err != nil {
		slog.Error("UpdateExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense updated", "expense_id", expense.ID, "debts", len(debts))

	return connect.NewResponse(&api.UpdateExpenseResponse{
		Expense: expenseToAPI(expense),
		Debts:   debtsToAPI(debts, lookupNames(ctx, s.ledger, expense.GroupID)),
	}), nil
}

// DeleteExpense deletes an expense and returns the group's new debts.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	groupID, debts, err := s.ledger.DeleteExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		slog.Error("DeleteExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense deleted", "expense_id", req.Msg.ExpenseID, "debts", len(debts))

	return connect.NewResponse(&api.DeleteExpenseResponse{
		Debts: debtsToAPI(debts, lookupNames(ctx, s.ledger, groupID)),
	}), nil
}
