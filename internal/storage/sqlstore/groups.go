package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitfree/internal/models"
	"github.com/mmynk/splitfree/internal/storage"
)

// GetGroup retrieves a group by ID, including its members in join order.
func (c *conn) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := c.q.QueryRowContext(ctx,
		"SELECT id, name, description, currency, created_at FROM split_groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.Description, &group.Currency, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := c.listMembers(ctx, "WHERE group_id = ?", groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members[groupID]

	return group, nil
}

// ListGroups retrieves all groups with their members, newest first.
func (c *conn) ListGroups(ctx context.Context) ([]*models.Group, error) {
	rows, err := c.q.QueryContext(ctx,
		"SELECT id, name, description, currency, created_at FROM split_groups ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.Currency, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	rows.Close()

	members, err := c.listMembers(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, group := range groups {
		group.Members = members[group.ID]
	}

	return groups, nil
}

// listMembers returns members keyed by group ID, each list in join order.
func (c *conn) listMembers(ctx context.Context, where string, args ...any) (map[string][]models.Member, error) {
	rows, err := c.q.QueryContext(ctx,
		"SELECT id, group_id, name, seq, created_at FROM members "+where+" ORDER BY group_id, seq",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	members := make(map[string][]models.Member)
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.GroupID, &m.Name, &m.Position, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members[m.GroupID] = append(members[m.GroupID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// CreateGroup persists a new group. Members are added separately.
func (t *tx) CreateGroup(ctx context.Context, group *models.Group) error {
	// Generate IDs if not set
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	if group.Currency == "" {
		group.Currency = models.DefaultCurrency
	}

	_, err := t.q.ExecContext(ctx,
		"INSERT INTO split_groups (id, name, description, currency, created_at) VALUES (?, ?, ?, ?, ?)",
		group.ID, group.Name, group.Description, group.Currency, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

// UpdateGroup updates a group's name, description and currency.
func (t *tx) UpdateGroup(ctx context.Context, group *models.Group) error {
	if err := t.LockGroup(ctx, group.ID); err != nil {
		return err
	}
	if group.Currency == "" {
		group.Currency = models.DefaultCurrency
	}

	_, err := t.q.ExecContext(ctx,
		"UPDATE split_groups SET name = ?, description = ?, currency = ? WHERE id = ?",
		group.Name, group.Description, group.Currency, group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	return nil
}

// DeleteGroup removes a group and everything it owns. Children are deleted
// explicitly so the result does not depend on foreign key enforcement.
func (t *tx) DeleteGroup(ctx context.Context, groupID string) error {
	statements := []string{
		"DELETE FROM debts WHERE group_id = ?",
		"DELETE FROM payments WHERE group_id = ?",
		"DELETE FROM expense_participants WHERE expense_id IN (SELECT id FROM expenses WHERE group_id = ?)",
		"DELETE FROM expenses WHERE group_id = ?",
		"DELETE FROM balances WHERE group_id = ?",
		"DELETE FROM members WHERE group_id = ?",
	}
	for _, stmt := range statements {
		if _, err := t.q.ExecContext(ctx, stmt, groupID); err != nil {
			return fmt.Errorf("failed to delete group data: %w", err)
		}
	}

	res, err := t.q.ExecContext(ctx, "DELETE FROM split_groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return affectedOne(res, "group", groupID)
}

// AddMember appends a member to the group's join order and gives them a zero
// balance.
func (t *tx) AddMember(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().Unix()
	}

	var next int
	err := t.q.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), -1) + 1 FROM members WHERE group_id = ?",
		member.GroupID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to get member position: %w", err)
	}
	member.Position = next

	_, err = t.q.ExecContext(ctx,
		"INSERT INTO members (id, group_id, name, seq, created_at) VALUES (?, ?, ?, ?, ?)",
		member.ID, member.GroupID, member.Name, member.Position, member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}

	_, err = t.q.ExecContext(ctx,
		"INSERT INTO balances (member_id, group_id, amount) VALUES (?, ?, ?)",
		member.ID, member.GroupID, decimal.Zero,
	)
	if err != nil {
		return fmt.Errorf("failed to insert balance: %w", err)
	}
	return nil
}

// DeleteMember removes a member, their balance, their expense participations
// and every debt they are part of. Expenses they paid keep existing with no
// payer.
func (t *tx) DeleteMember(ctx context.Context, memberID string) error {
	statements := []string{
		"DELETE FROM debts WHERE borrower_id = ? OR lender_id = ?",
		"DELETE FROM payments WHERE from_member_id = ? OR to_member_id = ?",
		"DELETE FROM expense_participants WHERE member_id = ?",
		"UPDATE expenses SET payer_id = NULL WHERE payer_id = ?",
		"DELETE FROM balances WHERE member_id = ?",
	}
	for _, stmt := range statements {
		args := []any{memberID}
		if strings.Contains(stmt, " OR ") {
			args = append(args, memberID)
		}
		if _, err := t.q.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("failed to delete member data: %w", err)
		}
	}

	res, err := t.q.ExecContext(ctx, "DELETE FROM members WHERE id = ?", memberID)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return affectedOne(res, "member", memberID)
}
