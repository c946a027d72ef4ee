package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

type groupScoped interface{ GetGroupID() string }

type expenseScoped interface{ GetExpenseID() string }

type paymentScoped interface{ GetPaymentID() string }

// targetAttrs names the group, expense or payment a request addresses, so a
// group's traffic can be followed across the logs.
func targetAttrs(msg any) []any {
	var attrs []any
	if m, ok := msg.(groupScoped); ok && m.GetGroupID() != "" {
		attrs = append(attrs, "group_id", m.GetGroupID())
	}
	if m, ok := msg.(expenseScoped); ok && m.GetExpenseID() != "" {
		attrs = append(attrs, "expense_id", m.GetExpenseID())
	}
	if m, ok := msg.(paymentScoped); ok && m.GetPaymentID() != "" {
		attrs = append(attrs, "payment_id", m.GetPaymentID())
	}
	return attrs
}

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// with its request ID, target IDs and duration. Client errors are logged as
// warnings with their code; anything else is an error.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			attrs := append([]any{
				"procedure", req.Spec().Procedure,
				"request_id", GetRequestID(ctx),
			}, targetAttrs(req.Any())...)

			resp, err := next(ctx, req)

			attrs = append(attrs, "duration_ms", time.Since(start).Milliseconds())
			var connectErr *connect.Error
			switch {
			case err == nil:
				slog.Info("RPC ok", attrs...)
			case errors.As(err, &connectErr) && connectErr.Code() != connect.CodeInternal:
				slog.Warn("RPC error", append(attrs, "code", connectErr.Code(), "error", connectErr.Message())...)
			default:
				slog.Error("RPC error", append(attrs, "error", err)...)
			}

			return resp, err
		}
	}
}
