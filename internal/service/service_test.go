package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitfree/internal/ledger"
	"github.com/mmynk/splitfree/internal/storage/sqlstore"
	"github.com/mmynk/splitfree/pkg/api"
	"github.com/mmynk/splitfree/pkg/api/apiconnect"
)

type testClients struct {
	groups     apiconnect.GroupServiceClient
	expenses   apiconnect.ExpenseServiceClient
	settlement apiconnect.SettlementServiceClient
}

// setupTestServer creates a test server with all three services.
func setupTestServer(t *testing.T) (testClients, func()) {
	t.Helper()

	// Create temp database
	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlstore.OpenSQLite(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	l := ledger.New(store)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(l)))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(l)))
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(l)))

	server := httptest.NewServer(mux)

	clients := testClients{
		groups:     apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		expenses:   apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
		settlement: apiconnect.NewSettlementServiceClient(http.DefaultClient, server.URL),
	}

	cleanup := func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	}

	return clients, cleanup
}

func createTestGroup(t *testing.T, c testClients, name string, members ...string) *api.Group {
	t.Helper()
	resp, err := c.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:    name,
		Members: members,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

func memberID(t *testing.T, group *api.Group, name string) string {
	t.Helper()
	for _, m := range group.Members {
		if m.Name == name {
			return m.ID
		}
	}
	t.Fatalf("member %s not in group %s", name, group.Name)
	return ""
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected %v, got %v (%v)", want, got, err)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
