package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitfree/internal/models"
	"github.com/mmynk/splitfree/internal/storage"
)

const expenseColumns = "id, group_id, title, description, amount, payer_id, date, created_at, updated_at"

// GetExpense retrieves an expense with its participants.
func (c *conn) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(c.q.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?",
		expenseID,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	participants, err := c.listParticipants(ctx, "WHERE expense_id = ?", expenseID)
	if err != nil {
		return nil, err
	}
	expense.ParticipantIDs = participants[expenseID]

	return expense, nil
}

// ListExpensesByGroup retrieves a group's expenses, oldest first.
func (c *conn) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := c.q.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY created_at, id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	participants, err := c.listParticipants(ctx,
		"WHERE expense_id IN (SELECT id FROM expenses WHERE group_id = ?)", groupID)
	if err != nil {
		return nil, err
	}
	for _, expense := range expenses {
		expense.ParticipantIDs = participants[expense.ID]
	}

	return expenses, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var payerID sql.NullString
	err := row.Scan(
		&expense.ID, &expense.GroupID, &expense.Title, &expense.Description,
		&expense.Amount, &payerID, &expense.Date, &expense.CreatedAt, &expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	expense.PayerID = payerID.String
	return expense, nil
}

// listParticipants returns participant member IDs keyed by expense ID, each
// list in the order the participants were recorded.
func (c *conn) listParticipants(ctx context.Context, where string, args ...any) (map[string][]string, error) {
	rows, err := c.q.QueryContext(ctx,
		"SELECT expense_id, member_id FROM expense_participants "+where+" ORDER BY expense_id, seq",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	participants := make(map[string][]string)
	for rows.Next() {
		var expenseID, memberID string
		if err := rows.Scan(&expenseID, &memberID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants[expenseID] = append(participants[expenseID], memberID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

// CreateExpense persists a new expense with its participants.
func (t *tx) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate IDs if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	if expense.UpdatedAt == 0 {
		expense.UpdatedAt = expense.CreatedAt
	}

	_, err := t.q.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.GroupID, expense.Title, expense.Description,
		expense.Amount, nullable(expense.PayerID), expense.Date, expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	return t.insertParticipants(ctx, expense)
}

// UpdateExpense replaces an expense's fields and participants.
func (t *tx) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	// MySQL reports zero affected rows when nothing changed, so check
	// existence separately.
	var exists int
	err := t.q.QueryRowContext(ctx, "SELECT 1 FROM expenses WHERE id = ?", expense.ID).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check expense: %w", err)
	}

	expense.UpdatedAt = time.Now().Unix()
	_, err = t.q.ExecContext(ctx,
		`UPDATE expenses SET title = ?, description = ?, amount = ?, payer_id = ?, date = ?, updated_at = ?
		WHERE id = ?`,
		expense.Title, expense.Description, expense.Amount, nullable(expense.PayerID),
		expense.Date, expense.UpdatedAt, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}

	if _, err := t.q.ExecContext(ctx, "DELETE FROM expense_participants WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}
	return t.insertParticipants(ctx, expense)
}

func (t *tx) insertParticipants(ctx context.Context, expense *models.Expense) error {
	for i, memberID := range expense.ParticipantIDs {
		_, err := t.q.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, member_id, seq) VALUES (?, ?, ?)",
			expense.ID, memberID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}
	return nil
}

// DeleteExpense removes an expense and its participants.
func (t *tx) DeleteExpense(ctx context.Context, expenseID string) error {
	if _, err := t.q.ExecContext(ctx, "DELETE FROM expense_participants WHERE expense_id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}

	res, err := t.q.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return affectedOne(res, "expense", expenseID)
}

// nullable maps an empty ID to SQL NULL.
func nullable(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}
