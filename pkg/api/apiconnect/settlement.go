package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitfree/pkg/api"
)

const (
	SettlementServiceComputeSettlementProcedure = "/splitfree.v1.SettlementService/ComputeSettlement"
	SettlementServiceListDebtsProcedure         = "/splitfree.v1.SettlementService/ListDebts"
	SettlementServiceRecomputeDebtsProcedure    = "/splitfree.v1.SettlementService/RecomputeDebts"
	SettlementServiceRecordPaymentProcedure     = "/splitfree.v1.SettlementService/RecordPayment"
	SettlementServiceListPaymentsProcedure      = "/splitfree.v1.SettlementService/ListPayments"
	SettlementServiceDeletePaymentProcedure     = "/splitfree.v1.SettlementService/DeletePayment"
)

// SettlementServiceHandler is implemented by the settlement service.
type SettlementServiceHandler interface {
	ComputeSettlement(context.Context, *connect.Request[api.ComputeSettlementRequest]) (*connect.Response[api.ComputeSettlementResponse], error)
	ListDebts(context.Context, *connect.Request[api.ListDebtsRequest]) (*connect.Response[api.ListDebtsResponse], error)
	RecomputeDebts(context.Context, *connect.Request[api.RecomputeDebtsRequest]) (*connect.Response[api.RecomputeDebtsResponse], error)
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
	DeletePayment(context.Context, *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service
// implementation.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return servicePath(SettlementServiceName), serviceHandler(
		route{SettlementServiceComputeSettlementProcedure, connect.NewUnaryHandler(SettlementServiceComputeSettlementProcedure, svc.ComputeSettlement, opts...)},
		route{SettlementServiceListDebtsProcedure, connect.NewUnaryHandler(SettlementServiceListDebtsProcedure, svc.ListDebts, opts...)},
		route{SettlementServiceRecomputeDebtsProcedure, connect.NewUnaryHandler(SettlementServiceRecomputeDebtsProcedure, svc.RecomputeDebts, opts...)},
		route{SettlementServiceRecordPaymentProcedure, connect.NewUnaryHandler(SettlementServiceRecordPaymentProcedure, svc.RecordPayment, opts...)},
		route{SettlementServiceListPaymentsProcedure, connect.NewUnaryHandler(SettlementServiceListPaymentsProcedure, svc.ListPayments, opts...)},
		route{SettlementServiceDeletePaymentProcedure, connect.NewUnaryHandler(SettlementServiceDeletePaymentProcedure, svc.DeletePayment, opts...)},
	)
}

// SettlementServiceClient is a client for the settlement service.
type SettlementServiceClient interface {
	ComputeSettlement(context.Context, *connect.Request[api.ComputeSettlementRequest]) (*connect.Response[api.ComputeSettlementResponse], error)
	ListDebts(context.Context, *connect.Request[api.ListDebtsRequest]) (*connect.Response[api.ListDebtsResponse], error)
	RecomputeDebts(context.Context, *connect.Request[api.RecomputeDebtsRequest]) (*connect.Response[api.RecomputeDebtsResponse], error)
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	ListPayments(context.Context, *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error)
	DeletePayment(context.Context, *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error)
}

// NewSettlementServiceClient constructs a client for the settlement service.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	baseURL = trimBaseURL(baseURL)
	opts = clientOptions(opts)
	return &settlementServiceClient{
		computeSettlement: connect.NewClient[api.ComputeSettlementRequest, api.ComputeSettlementResponse](httpClient, baseURL+SettlementServiceComputeSettlementProcedure, opts...),
		listDebts:         connect.NewClient[api.ListDebtsRequest, api.ListDebtsResponse](httpClient, baseURL+SettlementServiceListDebtsProcedure, opts...),
		recomputeDebts:    connect.NewClient[api.RecomputeDebtsRequest, api.RecomputeDebtsResponse](httpClient, baseURL+SettlementServiceRecomputeDebtsProcedure, opts...),
		recordPayment:     connect.NewClient[api.RecordPaymentRequest, api.RecordPaymentResponse](httpClient, baseURL+SettlementServiceRecordPaymentProcedure, opts...),
		listPayments:      connect.NewClient[api.ListPaymentsRequest, api.ListPaymentsResponse](httpClient, baseURL+SettlementServiceListPaymentsProcedure, opts...),
		deletePayment:     connect.NewClient[api.DeletePaymentRequest, api.DeletePaymentResponse](httpClient, baseURL+SettlementServiceDeletePaymentProcedure, opts...),
	}
}

type settlementServiceClient struct {
	computeSettlement *connect.Client[api.ComputeSettlementRequest, api.ComputeSettlementResponse]
	listDebts         *connect.Client[api.ListDebtsRequest, api.ListDebtsResponse]
	recomputeDebts    *connect.Client[api.RecomputeDebtsRequest, api.RecomputeDebtsResponse]
	recordPayment     *connect.Client[api.RecordPaymentRequest, api.RecordPaymentResponse]
	listPayments      *connect.Client[api.ListPaymentsRequest, api.ListPaymentsResponse]
	deletePayment     *connect.Client[api.DeletePaymentRequest, api.DeletePaymentResponse]
}

func (c *settlementServiceClient) ComputeSettlement(ctx context.Context, req *connect.Request[api.ComputeSettlementRequest]) (*connect.Response[api.ComputeSettlementResponse], error) {
	return c.computeSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ListDebts(ctx context.Context, req *connect.Request[api.ListDebtsRequest]) (*connect.Response[api.ListDebtsResponse], error) {
	return c.listDebts.CallUnary(ctx, req)
}

func (c *settlementServiceClient) RecomputeDebts(ctx context.Context, req *connect.Request[api.RecomputeDebtsRequest]) (*connect.Response[api.RecomputeDebtsResponse], error) {
	return c.recomputeDebts.CallUnary(ctx, req)
}

func (c *settlementServiceClient) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	return c.recordPayment.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	return c.listPayments.CallUnary(ctx, req)
}

func (c *settlementServiceClient) DeletePayment(ctx context.Context, req *connect.Request[api.DeletePaymentRequest]) (*connect.Response[api.DeletePaymentResponse], error) {
	return c.deletePayment.CallUnary(ctx, req)
}
