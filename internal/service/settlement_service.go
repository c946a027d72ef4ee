package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitfree/internal/calculator"
	"github.com/mmynk/splitfree/internal/ledger"
	"github.com/mmynk/splitfree/pkg/api"
	"github.com/mmynk/splitfree/pkg/api/apiconnect"
)

// SettlementService implements the Connect SettlementService.
type SettlementService struct {
	ledger *ledger.Ledger
}

var _ apiconnect.SettlementServiceHandler = (*SettlementService)(nil)

// NewSettlementService creates a new SettlementService backed by the ledger.
func NewSettlementService(l *ledger.Ledger) *SettlementService {
	return &SettlementService{ledger: l}
}

// ComputeSettlement settles arbitrary balances without touching any group.
func (s *SettlementService) ComputeSettlement(ctx context.Context, req *connect.Request[api.ComputeSettlementRequest]) (*connect.Response[api.ComputeSettlementResponse], error) {
	slog.Info("ComputeSettlement request received", "balances_count", len(req.Msg.Balances))

	balances := make([]calculator.Balance[string], len(req.Msg.Balances))
	for i, b := range req.Msg.Balances {
		if b.Party == "" {
			return nil, invalidArgument("every balance needs a party")
		}
		balances[i] = calculator.Balance[string]{Party: b.Party, Amount: b.Amount}
	}

	transfers, err := s.ledger.Settle(balances)
	if err != nil {
		slog.Error("ComputeSettlement failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.Transfer, len(transfers))
	for i, t := range transfers {
		out[i] = api.Transfer{Borrower: t.Borrower, Lender: t.Lender, Amount: t.Amount}
	}

	slog.Info("ComputeSettlement successful", "transfers", len(out))

	return connect.NewResponse(&api.ComputeSettlementResponse{Transfers: out}), nil
}

// ListDebts returns a group's current debts.
func (s *SettlementService) ListDebts(ctx context.Context, req *connect.Request[api.ListDebtsRequest]) (*connect.Response[api.ListDebtsResponse], error) {
	slog.Info("ListDebts request received", "group_id", req.Msg.GroupID)

	debts, err := s.ledger.Debts(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListDebts failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListDebtsResponse{
		Debts: debtsToAPI(debts, lookupNames(ctx, s.ledger, req.Msg.GroupID)),
	}), nil
}

// RecomputeDebts reruns the engine for a group and stores the result.
func (s *SettlementService) RecomputeDebts(ctx context.Context, req *connect.Request[api.RecomputeDebtsRequest]) (*connect.Response[api.RecomputeDebtsResponse], error) {
	slog.Info("RecomputeDebts request received", "group_id", req.Msg.GroupID)

	debts, err := s.ledger.Recompute(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("RecomputeDebts failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Debts recomputed", "group_id", req.Msg.GroupID, "debts", len(debts))

	return connect.NewResponse(&api.RecomputeDebtsResponse{
		Debts: debtsToAPI(debts, lookupNames(ctx, s.ledger, req.Msg.GroupID)),
	}), nil
}

// RecordPayment stores a payment between two members and returns the
// group's new debts.
func (s *SettlementService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	slog.Info("RecordPayment request received", "group_id", req.Msg.GroupID, "amount", req.Msg.Amount)

	payment, debts, err := s.ledger.RecordPayment(ctx, req.Msg.GroupID, ledger.PaymentInput{
		FromID: req.Msg.FromID,
		ToID:   req.Msg.ToID,
		Amount: req.Msg.Amount,
		Note:   req.Msg.Note,
	})
	if err != nil {
		slog.Error("RecordPayment failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Payment recorded", "payment_id", payment.ID, "debts", len(debts))

	names := lookupNames(ctx, s.ledger, req.Msg.GroupID)
	out := paymentToAPI(payment, names)
	return connect.NewResponse(&api.RecordPaymentResponse{
		Payment: &out,
		Debts:   debtsToAPI(debts, names),
	}), nil
}

// ListPayments returns a group's payments, oldest first.
func (s *SettlementService) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	slog.Info("ListPayments request received", "group_id", req.Msg.GroupID)

	payments, err := s.ledger.Payments(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListPayments failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	names := lookupNames(ctx, s.ledger, req.Msg.GroupID)
	out := make([]api.Payment, len(payments))
	for i, p := range payments {
		out[i] = paymentToAPI(p, names)
	}
	return connect.NewResponse(&api.ListPaymentsResponse{Payments: out}), nil
}

// DeletePayment removes a payment and returns the group's new debts.
func (s *SettlementService) DeletePayment(ctx context.Context, req *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error) {
	slog.Info("DeletePayment request received", "payment_id", req.Msg.PaymentID)

	groupID, debts, err := s.ledger.DeletePayment(ctx, req.Msg.PaymentID)
	if err != nil {
		slog.Error("DeletePayment failed", "payment_id", req.Msg.PaymentID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Payment deleted", "payment_id", req.Msg.PaymentID, "group_id", groupID)

	return connect.NewResponse(&api.DeletePaymentResponse{
		GroupID: groupID,
		Debts:   debtsToAPI(debts, lookupNames(ctx, s.ledger, groupID)),
	}), nil
}
