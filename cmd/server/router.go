package main

import (
	"net/http"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mmynk/splitfree/internal/ledger"
	"github.com/mmynk/splitfree/internal/metrics"
	"github.com/mmynk/splitfree/internal/middleware"
	"github.com/mmynk/splitfree/internal/service"
	"github.com/mmynk/splitfree/internal/storage"
	"github.com/mmynk/splitfree/pkg/api/apiconnect"
)

// newRouter wires the Connect services, health check and metrics endpoint.
func newRouter(l *ledger.Ledger, store storage.Store, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())

	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(m),
	)

	groupPath, groupHandler := apiconnect.NewGroupServiceHandler(service.NewGroupService(l), interceptors)
	r.Handle(groupPath+"*", groupHandler)

	expensePath, expenseHandler := apiconnect.NewExpenseServiceHandler(service.NewExpenseService(l), interceptors)
	r.Handle(expensePath+"*", expenseHandler)

	settlementPath, settlementHandler := apiconnect.NewSettlementServiceHandler(service.NewSettlementService(l), interceptors)
	r.Handle(settlementPath+"*", settlementHandler)

	return r
}
