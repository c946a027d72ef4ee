package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitfree/internal/models"
	"github.com/mmynk/splitfree/internal/storage"
)

// ListBalances returns one balance per member, ordered by member position.
func (c *conn) ListBalances(ctx context.Context, groupID string) ([]models.Balance, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT b.member_id, b.amount FROM balances b
		JOIN members m ON m.id = b.member_id
		WHERE b.group_id = ?
		ORDER BY m.seq`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	defer rows.Close()

	var balances []models.Balance
	for rows.Next() {
		b := models.Balance{GroupID: groupID}
		if err := rows.Scan(&b.MemberID, &b.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}
	return balances, nil
}

// ListDebts returns the group's current debts in computed order.
func (c *conn) ListDebts(ctx context.Context, groupID string) ([]models.Debt, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT id, group_id, borrower_id, lender_id, amount, seq, created_at FROM debts
		WHERE group_id = ?
		ORDER BY seq`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	var debts []models.Debt
	for rows.Next() {
		var d models.Debt
		if err := rows.Scan(&d.ID, &d.GroupID, &d.BorrowerID, &d.LenderID, &d.Amount, &d.Position, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debts: %w", err)
	}
	return debts, nil
}

// AdjustBalance adds delta to a member's balance.
func (t *tx) AdjustBalance(ctx context.Context, groupID, memberID string, delta decimal.Decimal) error {
	var current decimal.Decimal
	err := t.q.QueryRowContext(ctx,
		"SELECT amount FROM balances WHERE member_id = ? AND group_id = ?",
		memberID, groupID,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("balance of member %s: %w", memberID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}

	_, err = t.q.ExecContext(ctx,
		"UPDATE balances SET amount = ? WHERE member_id = ?",
		current.Add(delta).StringFixed(2), memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return nil
}

// ReplaceDebts deletes every debt of the group and inserts debts in order.
func (t *tx) ReplaceDebts(ctx context.Context, groupID string, debts []models.Debt) error {
	if _, err := t.q.ExecContext(ctx, "DELETE FROM debts WHERE group_id = ?", groupID); err != nil {
		return fmt.Errorf("failed to delete debts: %w", err)
	}

	now := time.Now().Unix()
	for i := range debts {
		d := &debts[i]
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		d.GroupID = groupID
		d.Position = i
		if d.CreatedAt == 0 {
			d.CreatedAt = now
		}

		_, err := t.q.ExecContext(ctx,
			`INSERT INTO debts (id, group_id, borrower_id, lender_id, amount, seq, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			d.ID, d.GroupID, d.BorrowerID, d.LenderID, d.Amount.StringFixed(2), d.Position, d.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert debt: %w", err)
		}
	}
	return nil
}
