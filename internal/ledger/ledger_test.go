package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitfree/internal/calculator"
	"github.com/mmynk/splitfree/internal/metrics"
	"github.com/mmynk/splitfree/internal/models"
	"github.com/mmynk/splitfree/internal/storage"
	"github.com/mmynk/splitfree/internal/storage/sqlstore"
)

func newTestLedger(t *testing.T) (*Ledger, *sqlstore.Store) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "splitfree-ledger-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	store, err := sqlstore.OpenSQLite(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return New(store, WithMetrics(metrics.New())), store
}

func createGroup(t *testing.T, l *Ledger, names ...string) *models.Group {
	t.Helper()
	group, err := l.CreateGroup(context.Background(), GroupInput{Name: "Trip", MemberNames: names})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

// memberIDs maps member names to IDs.
func memberIDs(group *models.Group) map[string]string {
	ids := make(map[string]string, len(group.Members))
	for _, m := range group.Members {
		ids[m.Name] = m.ID
	}
	return ids
}

// checkConsistent verifies the group's balances sum to zero and its debts
// settle them.
func checkConsistent(t *testing.T, l *Ledger, groupID string) ([]models.Balance, []models.Debt) {
	t.Helper()
	balances, debts, err := l.Snapshot(context.Background(), groupID)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if sum := sumBalances(balances); !sum.IsZero() {
		t.Fatalf("balances sum to %s, want 0", sum)
	}

	transfers := make([]calculator.Transfer[string], len(debts))
	for i, d := range debts {
		if !d.Amount.IsPositive() {
			t.Errorf("debt %d has non-positive amount %s", i, d.Amount)
		}
		if d.BorrowerID == d.LenderID {
			t.Errorf("debt %d is a self transfer", i)
		}
		transfers[i] = calculator.Transfer[string]{Borrower: d.BorrowerID, Lender: d.LenderID, Amount: d.Amount}
	}
	if !calculator.SettlesBalances(toEngineBalances(balances), transfers) {
		t.Errorf("debts %v do not settle balances %v", debts, balances)
	}
	return balances, debts
}

func balanceOf(balances []models.Balance, memberID string) decimal.Decimal {
	for _, b := range balances {
		if b.MemberID == memberID {
			return b.Amount
		}
	}
	return decimal.Zero
}

func TestCreateExpense(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	group := createGroup(t, l, "Alice", "Bob", "Charlie")
	ids := memberIDs(group)

	expense, debts, err := l.CreateExpense(ctx, group.ID, ExpenseInput{
		Title:          "Dinner",
		Amount:         decimal.RequireFromString("90"),
		PayerID:        ids["Alice"],
		ParticipantIDs: []string{ids["Alice"], ids["Bob"], ids["Charlie"]},
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if expense.ID == "" {
		t.Error("Expected expense ID to be generated")
	}

	balances, stored := checkConsistent(t, l, group.ID)
	want := map[string]string{"Alice": "-60", "Bob": "30", "Charlie": "30"}
	for name, amount := range want {
		if got := balanceOf(balances, ids[name]); !got.Equal(decimal.RequireFromString(amount)) {
			t.Errorf("%s balance = %s, want %s", name, got, amount)
		}
	}

	if len(debts) != 2 || len(stored) != 2 {
		t.Fatalf("Expected 2 debts returned and stored, got %d and %d", len(debts), len(stored))
	}
	for i, d := range stored {
		if d.LenderID != ids["Alice"] || !d.Amount.Equal(decimal.NewFromInt(30)) {
			t.Errorf("debt %d = %+v, want 30 to Alice", i, d)
		}
		if d.BorrowerID != debts[i].BorrowerID {
			t.Errorf("stored debt %d differs from returned debt", i)
		}
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	group := createGroup(t, l, "Alice", "Bob")
	other := createGroup(t, l, "Mallory")
	ids := memberIDs(group)

	valid := func() ExpenseInput {
		return ExpenseInput{
			Title:          "Taxi",
			Amount:         decimal.RequireFromString("10"),
			PayerID:        ids["Alice"],
			ParticipantIDs: []string{ids["Alice"], ids["Bob"]},
		}
	}

	tests := []struct {
		name   string
		modify func(in *ExpenseInput)
	}{
		{"missing title", func(in *ExpenseInput) { in.Title = "  " }},
		{"zero amount", func(in *ExpenseInput) { in.Amount = decimal.Zero }},
		{"negative amount", func(in *ExpenseInput) { in.Amount = decimal.NewFromInt(-3) }},
		{"sub-cent amount", func(in *ExpenseInput) { in.Amount = decimal.RequireFromString("0.001") }},
		{"amount above maximum", func(in *ExpenseInput) { in.Amount = decimal.RequireFromString("10000000000") }},
		{"amount far above maximum", func(in *ExpenseInput) { in.Amount = decimal.RequireFromString("100000000000000") }},
		{"missing payer", func(in *ExpenseInput) { in.PayerID = "" }},
		{"payer from another group", func(in *ExpenseInput) { in.PayerID = other.Members[0].ID }},
		{"no participants", func(in *ExpenseInput) { in.ParticipantIDs = nil }},
		{"unknown participant", func(in *ExpenseInput) { in.ParticipantIDs = []string{"ghost"} }},
		{"duplicate participant", func(in *ExpenseInput) {
			in.ParticipantIDs = []string{ids["Bob"], ids["Bob"]}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.modify(&in)
			_, _, err := l.CreateExpense(ctx, group.ID, in)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	t.Run("unknown group", func(t *testing.T) {
		_, _, err := l.CreateExpense(ctx, "missing", valid())
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	// Nothing above may have touched the ledger.
	balances, debts := checkConsistent(t, l, group.ID)
	for _, b := range balances {
		if !b.Amount.IsZero() {
			t.Errorf("Expected untouched balances, got %s", b.Amount)
		}
	}
	if len(debts) != 0 {
		t.Errorf("Expected no debts, got %d", len(debts))
	}
}

func TestUpdateExpense(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	group := createGroup(t, l, "Alice", "Bob", "Charlie")
	ids := memberIDs(group)

	expense, _, err := l.CreateExpense(ctx, group.ID, ExpenseInput{
		Title:          "Groceries",
		Amount:         decimal.RequireFromString("60"),
		PayerID:        ids["Alice"],
		ParticipantIDs: []string{ids["Alice"], ids["Bob"], ids["Charlie"]},
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	t.Run("title change keeps balances", func(t *testing.T) {
		before, _ := checkConsistent(t, l, group.ID)
		updated, _, err := l.UpdateExpense(ctx, expense.ID, ExpenseInput{
			Title:          "Weekly groceries",
			Amount:         expense.Amount,
			PayerID:        expense.PayerID,
			ParticipantIDs: expense.ParticipantIDs,
		})
		if err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}
		if updated.Title != "Weekly groceries" {
			t.Errorf("Expected title to change, got %s", updated.Title)
		}

		after, _ := checkConsistent(t, l, group.ID)
		for i := range before {
			if !before[i].Amount.Equal(after[i].Amount) {
				t.Errorf("balance %d changed from %s to %s", i, before[i].Amount, after[i].Amount)
			}
		}
	})

	t.Run("payer and amount change re-impacts", func(t *testing.T) {
		_, debts, err := l.UpdateExpense(ctx, expense.ID, ExpenseInput{
			Title:          "Weekly groceries",
			Amount:         decimal.RequireFromString("40"),
			PayerID:        ids["Bob"],
			ParticipantIDs: []string{ids["Bob"], ids["Charlie"]},
		})
		if err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}

		balances, _ := checkConsistent(t, l, group.ID)
		want := map[string]string{"Alice": "0", "Bob": "-20", "Charlie": "20"}
		for name, amount := range want {
			if got := balanceOf(balances, ids[name]); !got.Equal(decimal.RequireFromString(amount)) {
				t.Errorf("%s balance = %s, want %s", name, got, amount)
			}
		}
		if len(debts) != 1 || debts[0].BorrowerID != ids["Charlie"] || debts[0].LenderID != ids["Bob"] {
			t.Errorf("Expected Charlie to pay Bob, got %+v", debts)
		}
	})

	t.Run("unknown expense", func(t *testing.T) {
		_, _, err := l.UpdateExpense(ctx, "missing", ExpenseInput{Title: "x"})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestDeleteExpenseRestoresBalances(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	group := createGroup(t, l, "Alice", "Bob", "Charlie")
	ids := memberIDs(group)

	var expenseIDs []string
	for i, payer := range []string{"Alice", "Bob", "Charlie"} {
		expense, _, err := l.CreateExpense(ctx, group.ID, ExpenseInput{
			Title:          fmt.Sprintf("Round %d", i+1),
			Amount:         decimal.RequireFromString("10.01"),
			PayerID:        ids[payer],
			ParticipantIDs: []string{ids["Alice"], ids["Bob"], ids["Charlie"]},
		})
		if err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		expenseIDs = append(expenseIDs, expense.ID)
	}
	checkConsistent(t, l, group.ID)

	for _, id := range expenseIDs {
		groupID, _, err := l.DeleteExpense(ctx, id)
		if err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if groupID != group.ID {
			t.Errorf("Expected group %s, got %s", group.ID, groupID)
		}
	}

	balances, debts := checkConsistent(t, l, group.ID)
	for _, b := range balances {
		if !b.Amount.IsZero() {
			t.Errorf("Expected zero balance after deleting everything, got %s", b.Amount)
		}
	}
	if len(debts) != 0 {
		t.Errorf("Expected no debts, got %d", len(debts))
	}

	if _, _, err := l.DeleteExpense(ctx, expenseIDs[0]); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRemoveMember(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	group := createGroup(t, l, "Alice", "Bob", "Charlie")
	ids := memberIDs(group)

	// Charlie pays for everyone, then Alice pays for Alice and Charlie.
	inputs := []ExpenseInput{
		{Title: "Hotel", Amount: decimal.RequireFromString("100"), PayerID: ids["Charlie"],
			ParticipantIDs: []string{ids["Alice"], ids["Bob"], ids["Charlie"]}},
		{Title: "Lunch", Amount: decimal.RequireFromString("30"), PayerID: ids["Alice"],
			ParticipantIDs: []string{ids["Alice"], ids["Charlie"]}},
	}
	var expenses []*models.Expense
	for _, in := range inputs {
		expense, _, err := l.CreateExpense(ctx, group.ID, in)
		if err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		expenses = append(expenses, expense)
	}

	debts, err := l.RemoveMember(ctx, group.ID, ids["Charlie"])
	if err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}

	got, err := l.Group(ctx, group.ID)
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	if len(got.Members) != 2 {
		t.Fatalf("Expected 2 members left, got %d", len(got.Members))
	}

	hotel, err := l.Expense(ctx, expenses[0].ID)
	if err != nil {
		t.Fatalf("Expense failed: %v", err)
	}
	if hotel.PayerID != "" {
		t.Errorf("Expected hotel payer to be cleared, got %s", hotel.PayerID)
	}

	lunch, err := l.Expense(ctx, expenses[1].ID)
	if err != nil {
		t.Fatalf("Expense failed: %v", err)
	}
	if len(lunch.ParticipantIDs) != 1 || lunch.ParticipantIDs[0] != ids["Alice"] {
		t.Errorf("Expected only Alice in lunch, got %v", lunch.ParticipantIDs)
	}

	// Alice paid only for herself now and the hotel has no payer.
	balances, _ := checkConsistent(t, l, group.ID)
	for _, b := range balances {
		if !b.Amount.IsZero() {
			t.Errorf("Expected zero balance, got %s for %s", b.Amount, b.MemberID)
		}
	}
	if len(debts) != 0 {
		t.Errorf("Expected no debts, got %+v", debts)
	}

	if _, err := l.RemoveMember(ctx, group.ID, ids["Charlie"]); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound removing twice, got %v", err)
	}
}

func TestUpdateGroupReconcilesMembers(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	group := createGroup(t, l, "Alice", "Bob", "Charlie")
	ids := memberIDs(group)

	_, _, err := l.CreateExpense(ctx, group.ID, ExpenseInput{
		Title:          "Fuel",
		Amount:         decimal.RequireFromString("45"),
		PayerID:        ids["Alice"],
		ParticipantIDs: []string{ids["Alice"], ids["Bob"], ids["Charlie"]},
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	updated, debts, err := l.UpdateGroup(ctx, group.ID, GroupInput{
		Name:        "Road Trip",
		Description: "Summer",
		MemberNames: []string{"Alice", "Charlie", "Diana"},
	})
	if err != nil {
		t.Fatalf("UpdateGroup failed: %v", err)
	}

	if updated.Name != "Road Trip" || updated.Description != "Summer" {
		t.Errorf("Unexpected group details: %+v", updated)
	}
	if updated.Currency != models.DefaultCurrency {
		t.Errorf("Expected currency to be kept, got %s", updated.Currency)
	}
	names := updated.MemberNames()
	want := []string{"Alice", "Charlie", "Diana"}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Errorf("members = %v, want %v", names, want)
	}

	balances, _ := checkConsistent(t, l, group.ID)
	newIDs := memberIDs(updated)
	// Bob left the fuel expense: 45 split between Alice and Charlie.
	if got := balanceOf(balances, newIDs["Charlie"]); !got.Equal(decimal.RequireFromString("22.50")) {
		t.Errorf("Charlie balance = %s, want 22.50", got)
	}
	if got := balanceOf(balances, newIDs["Diana"]); !got.IsZero() {
		t.Errorf("Diana balance = %s, want 0", got)
	}
	if len(debts) != 1 {
		t.Errorf("Expected 1 debt, got %d", len(debts))
	}

	t.Run("invalid input", func(t *testing.T) {
		_, _, err := l.UpdateGroup(ctx, group.ID, GroupInput{Name: "x", MemberNames: []string{"A", "A"}})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestGroupLifecycle(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	t.Run("CreateGroup validates", func(t *testing.T) {
		tests := []GroupInput{
			{Name: ""},
			{Name: "x", Currency: "EURO"},
			{Name: "x", MemberNames: []string{" "}},
		}
		for _, in := range tests {
			if _, err := l.CreateGroup(ctx, in); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("CreateGroup(%+v) error = %v, want ErrInvalidArgument", in, err)
			}
		}
	})

	group, err := l.CreateGroup(ctx, GroupInput{Name: " Flat ", Currency: "usd", MemberNames: []string{"Alice"}})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if group.Name != "Flat" || group.Currency != "USD" {
		t.Errorf("Expected normalized name and currency, got %q %q", group.Name, group.Currency)
	}

	member, _, err := l.AddMember(ctx, group.ID, "Bob")
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if member.Position != 1 {
		t.Errorf("Expected Bob at position 1, got %d", member.Position)
	}
	if _, _, err := l.AddMember(ctx, group.ID, "Bob"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for duplicate member, got %v", err)
	}

	groups, err := l.Groups(ctx)
	if err != nil {
		t.Fatalf("Groups failed: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Members) != 2 {
		t.Errorf("Expected one group with 2 members, got %+v", groups)
	}

	if err := l.DeleteGroup(ctx, group.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	if _, err := l.Group(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := l.Debts(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for debts, got %v", err)
	}
	if err := l.DeleteGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestRandomExpensesStayConsistent(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	names := []string{"A", "B", "C", "D", "E", "F", "G"}
	group := createGroup(t, l, names...)

	rng := rand.New(rand.NewPCG(7, 11))
	var live []string
	for i := 0; i < 60; i++ {
		switch op := rng.IntN(10); {
		case op < 6 || len(live) == 0:
			perm := rng.Perm(len(group.Members))
			count := 1 + rng.IntN(len(perm))
			participants := make([]string, count)
			for j := range participants {
				participants[j] = group.Members[perm[j]].ID
			}
			expense, _, err := l.CreateExpense(ctx, group.ID, ExpenseInput{
				Title:          fmt.Sprintf("Expense %d", i),
				Amount:         decimal.New(int64(1+rng.IntN(20000)), -2),
				PayerID:        group.Members[rng.IntN(len(group.Members))].ID,
				ParticipantIDs: participants,
			})
			if err != nil {
				t.Fatalf("CreateExpense failed: %v", err)
			}
			live = append(live, expense.ID)
		case op < 8:
			id := live[rng.IntN(len(live))]
			existing, err := l.Expense(ctx, id)
			if err != nil {
				t.Fatalf("Expense failed: %v", err)
			}
			_, _, err = l.UpdateExpense(ctx, id, ExpenseInput{
				Title:          existing.Title,
				Amount:         decimal.New(int64(1+rng.IntN(20000)), -2),
				PayerID:        group.Members[rng.IntN(len(group.Members))].ID,
				ParticipantIDs: existing.ParticipantIDs,
			})
			if err != nil {
				t.Fatalf("UpdateExpense failed: %v", err)
			}
		default:
			k := rng.IntN(len(live))
			if _, _, err := l.DeleteExpense(ctx, live[k]); err != nil {
				t.Fatalf("DeleteExpense failed: %v", err)
			}
			live = append(live[:k], live[k+1:]...)
		}

		_, debts := checkConsistent(t, l, group.ID)
		if len(debts) > len(names)-1 {
			t.Fatalf("step %d: %d debts for %d members", i, len(debts), len(names))
		}
	}
}

func TestConcurrentExpenses(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	group := createGroup(t, l, "Alice", "Bob", "Charlie", "Diana")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := l.CreateExpense(ctx, group.ID, ExpenseInput{
				Title:          fmt.Sprintf("Expense %d", i),
				Amount:         decimal.New(int64(100+i), -2),
				PayerID:        group.Members[i%4].ID,
				ParticipantIDs: []string{group.Members[0].ID, group.Members[1].ID, group.Members[2].ID},
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}

	expenses, err := l.Expenses(ctx, group.ID)
	if err != nil {
		t.Fatalf("Expenses failed: %v", err)
	}
	if len(expenses) != 20 {
		t.Errorf("Expected 20 expenses, got %d", len(expenses))
	}
	checkConsistent(t, l, group.ID)
}

func TestAudit(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()

	healthy := createGroup(t, l, "Alice", "Bob")
	stale := createGroup(t, l, "Charlie", "Diana")
	broken := createGroup(t, l, "Erin", "Frank")

	for _, group := range []*models.Group{healthy, stale, broken} {
		_, _, err := l.CreateExpense(ctx, group.ID, ExpenseInput{
			Title:          "Tickets",
			Amount:         decimal.RequireFromString("50"),
			PayerID:        group.Members[0].ID,
			ParticipantIDs: []string{group.Members[0].ID, group.Members[1].ID},
		})
		if err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}

	// Drop the stale group's debts and skew the broken group's balance.
	err := store.InTx(ctx, func(tx storage.Tx) error {
		if err := tx.ReplaceDebts(ctx, stale.ID, nil); err != nil {
			return err
		}
		return tx.AdjustBalance(ctx, broken.ID, broken.Members[0].ID, decimal.RequireFromString("0.01"))
	})
	if err != nil {
		t.Fatalf("tampering failed: %v", err)
	}

	report, err := l.Audit(ctx)
	if !errors.Is(err, calculator.ErrUnbalanced) {
		t.Errorf("Expected ErrUnbalanced, got %v", err)
	}
	var unbalanced *calculator.UnbalancedInputError
	if !errors.As(err, &unbalanced) || !unbalanced.Sum.Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("Expected UnbalancedInputError with sum 0.01, got %v", err)
	}

	if report.Checked != 3 {
		t.Errorf("Expected 3 groups checked, got %d", report.Checked)
	}
	if len(report.Repaired) != 1 || report.Repaired[0] != stale.ID {
		t.Errorf("Expected stale group to be repaired, got %v", report.Repaired)
	}
	if len(report.Unbalanced) != 1 || report.Unbalanced[0] != broken.ID {
		t.Errorf("Expected broken group to be reported, got %v", report.Unbalanced)
	}

	checkConsistent(t, l, stale.ID)
}

func TestSettle(t *testing.T) {
	l, _ := newTestLedger(t)

	transfers, err := l.Settle([]calculator.Balance[string]{
		{Party: "A", Amount: decimal.NewFromInt(-40)},
		{Party: "B", Amount: decimal.NewFromInt(20)},
		{Party: "C", Amount: decimal.NewFromInt(20)},
	})
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if len(transfers) != 2 {
		t.Errorf("Expected 2 transfers, got %d", len(transfers))
	}

	_, err = l.Settle([]calculator.Balance[string]{
		{Party: "A", Amount: decimal.NewFromInt(-40)},
		{Party: "B", Amount: decimal.NewFromInt(19)},
	})
	if !errors.Is(err, ErrInvalidArgument) || !errors.Is(err, calculator.ErrUnbalanced) {
		t.Errorf("Expected ErrInvalidArgument wrapping ErrUnbalanced, got %v", err)
	}
}

func TestCreateExpenseMaxAmount(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	group := createGroup(t, l, "Alice", "Bob", "Charlie")
	ids := memberIDs(group)

	for range 3 {
		_, _, err := l.CreateExpense(ctx, group.ID, ExpenseInput{
			Title:          "Yacht",
			Amount:         calculator.MaxAmount,
			PayerID:        ids["Alice"],
			ParticipantIDs: []string{ids["Alice"], ids["Bob"], ids["Charlie"]},
		})
		if err != nil {
			t.Fatalf("CreateExpense at MaxAmount failed: %v", err)
		}
	}

	balances, _ := checkConsistent(t, l, group.ID)
	want := decimal.RequireFromString("3333333333.33").Mul(decimal.NewFromInt(3))
	if got := balanceOf(balances, ids["Bob"]); !got.Equal(want) {
		t.Errorf("Bob balance = %s, want %s", got, want)
	}
}

func TestPayments(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	group := createGroup(t, l, "Alice", "Bob", "Charlie")
	ids := memberIDs(group)

	_, _, err := l.CreateExpense(ctx, group.ID, ExpenseInput{
		Title:          "Cabin",
		Amount:         decimal.RequireFromString("90"),
		PayerID:        ids["Alice"],
		ParticipantIDs: []string{ids["Alice"], ids["Bob"], ids["Charlie"]},
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	t.Run("paying a debt in full removes it", func(t *testing.T) {
		payment, debts, err := l.RecordPayment(ctx, group.ID, PaymentInput{
			FromID: ids["Bob"],
			ToID:   ids["Alice"],
			Amount: decimal.NewFromInt(30),
			Note:   "  bank transfer ",
		})
		if err != nil {
			t.Fatalf("RecordPayment failed: %v", err)
		}
		if payment.ID == "" || payment.Note != "bank transfer" {
			t.Errorf("Unexpected payment %+v", payment)
		}

		balances, stored := checkConsistent(t, l, group.ID)
		if got := balanceOf(balances, ids["Bob"]); !got.IsZero() {
			t.Errorf("Bob balance = %s, want 0", got)
		}
		if got := balanceOf(balances, ids["Alice"]); !got.Equal(decimal.NewFromInt(-30)) {
			t.Errorf("Alice balance = %s, want -30", got)
		}
		if len(debts) != 1 || len(stored) != 1 || debts[0].BorrowerID != ids["Charlie"] {
			t.Errorf("Expected only Charlie's debt to remain, got %+v", debts)
		}
	})

	t.Run("deleting a payment restores the debt", func(t *testing.T) {
		payments, err := l.Payments(ctx, group.ID)
		if err != nil {
			t.Fatalf("Payments failed: %v", err)
		}
		if len(payments) != 1 {
			t.Fatalf("Expected 1 payment, got %d", len(payments))
		}

		groupID, debts, err := l.DeletePayment(ctx, payments[0].ID)
		if err != nil {
			t.Fatalf("DeletePayment failed: %v", err)
		}
		if groupID != group.ID {
			t.Errorf("Expected group %s, got %s", group.ID, groupID)
		}
		if len(debts) != 2 {
			t.Errorf("Expected 2 debts again, got %d", len(debts))
		}
		checkConsistent(t, l, group.ID)

		if _, _, err := l.DeletePayment(ctx, payments[0].ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("invalid payments are rejected", func(t *testing.T) {
		other := createGroup(t, l, "Mallory")
		tests := []struct {
			name string
			in   PaymentInput
		}{
			{"self payment", PaymentInput{FromID: ids["Bob"], ToID: ids["Bob"], Amount: decimal.NewFromInt(1)}},
			{"missing sender", PaymentInput{ToID: ids["Bob"], Amount: decimal.NewFromInt(1)}},
			{"outsider", PaymentInput{FromID: other.Members[0].ID, ToID: ids["Bob"], Amount: decimal.NewFromInt(1)}},
			{"zero amount", PaymentInput{FromID: ids["Bob"], ToID: ids["Alice"], Amount: decimal.Zero}},
			{"amount above maximum", PaymentInput{FromID: ids["Bob"], ToID: ids["Alice"], Amount: decimal.RequireFromString("10000000000")}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, _, err := l.RecordPayment(ctx, group.ID, tt.in); !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("Expected ErrInvalidArgument, got %v", err)
				}
			})
		}
		if _, _, err := l.RecordPayment(ctx, "missing", PaymentInput{FromID: ids["Bob"], ToID: ids["Alice"], Amount: decimal.NewFromInt(1)}); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("removing a member cancels their payments", func(t *testing.T) {
		if _, _, err := l.RecordPayment(ctx, group.ID, PaymentInput{
			FromID: ids["Charlie"],
			ToID:   ids["Alice"],
			Amount: decimal.NewFromInt(10),
		}); err != nil {
			t.Fatalf("RecordPayment failed: %v", err)
		}

		if _, err := l.RemoveMember(ctx, group.ID, ids["Charlie"]); err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}

		payments, err := l.Payments(ctx, group.ID)
		if err != nil {
			t.Fatalf("Payments failed: %v", err)
		}
		if len(payments) != 0 {
			t.Errorf("Expected Charlie's payment to be gone, got %d", len(payments))
		}
		balances, _ := checkConsistent(t, l, group.ID)
		if got := balanceOf(balances, ids["Bob"]); !got.Equal(decimal.RequireFromString("45")) {
			t.Errorf("Bob balance = %s, want 45", got)
		}
	})
}
