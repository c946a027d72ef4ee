package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/splitfree/internal/calculator"
	"github.com/mmynk/splitfree/internal/storage"
)

// AuditReport summarizes one Audit pass.
type AuditReport struct {
	// Checked is the number of groups inspected.
	Checked int

	// Repaired lists groups whose stored debts no longer settled their
	// balances and were recomputed.
	Repaired []string

	// Unbalanced lists groups whose balances do not sum to zero. These cannot
	// be repaired automatically.
	Unbalanced []string
}

// Audit checks every group: its balances must sum to zero and its stored
// debts must settle its balances. Groups with stale debts are recomputed.
// Each unbalanced group contributes a *calculator.UnbalancedInputError to
// the returned error.
func (l *Ledger) Audit(ctx context.Context) (*AuditReport, error) {
	groups, err := l.store.ListGroups(ctx)
	if err != nil {
		return nil, err
	}

	report := &AuditReport{}
	var errs []error
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		report.Checked++

		balances, debts, err := l.Snapshot(ctx, group.ID)
		if errors.Is(err, storage.ErrNotFound) {
			// Deleted since the listing.
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("group %s: %w", group.ID, err))
			continue
		}

		if sum := sumBalances(balances); !sum.IsZero() {
			slog.Error("Group balances do not sum to zero", "group_id", group.ID, "sum", sum.String())
			report.Unbalanced = append(report.Unbalanced, group.ID)
			errs = append(errs, fmt.Errorf("group %s: %w", group.ID, &calculator.UnbalancedInputError{Sum: sum}))
			continue
		}

		transfers := make([]calculator.Transfer[string], len(debts))
		for i, d := range debts {
			transfers[i] = calculator.Transfer[string]{Borrower: d.BorrowerID, Lender: d.LenderID, Amount: d.Amount}
		}
		if calculator.SettlesBalances(toEngineBalances(balances), transfers) {
			continue
		}

		slog.Warn("Stored debts are stale, recomputing", "group_id", group.ID, "debts", len(debts))
		if _, err := l.Recompute(ctx, group.ID); err != nil {
			errs = append(errs, fmt.Errorf("group %s: %w", group.ID, err))
			continue
		}
		report.Repaired = append(report.Repaired, group.ID)
	}

	return report, errors.Join(errs...)
}
