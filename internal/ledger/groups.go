package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/splitfree/internal/models"
	"github.com/mmynk/splitfree/internal/storage"
)

// GroupInput holds the user-editable fields of a group.
type GroupInput struct {
	Name        string
	Description string
	Currency    string // ignored by UpdateGroup when empty
	MemberNames []string
}

func (in *GroupInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("%w: group name is required", ErrInvalidArgument)
	}

	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency != "" && len(in.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code, got %q", ErrInvalidArgument, in.Currency)
	}

	names, err := normalizeNames(in.MemberNames)
	if err != nil {
		return err
	}
	in.MemberNames = names
	return nil
}

func normalizeNames(names []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: member name is required", ErrInvalidArgument)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate member name %q", ErrInvalidArgument, name)
		}
		seen[name] = true
		out = append(out, name)
	}
	return out, nil
}

// CreateGroup creates a group whose members all start at a zero balance.
func (l *Ledger) CreateGroup(ctx context.Context, in GroupInput) (*models.Group, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:        in.Name,
		Description: in.Description,
		Currency:    in.Currency,
	}
	err := l.store.InTx(ctx, func(tx storage.Tx) error {
		if err := tx.CreateGroup(ctx, group); err != nil {
			return err
		}
		for _, name := range in.MemberNames {
			member := &models.Member{GroupID: group.ID, Name: name}
			if err := tx.AddMember(ctx, member); err != nil {
				return err
			}
			group.Members = append(group.Members, *member)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// UpdateGroup changes a group's details and reconciles its member list by
// name: new names join, names no longer listed are removed as RemoveMember
// would remove them.
func (l *Ledger) UpdateGroup(ctx context.Context, groupID string, in GroupInput) (*models.Group, []models.Debt, error) {
	if err := in.normalize(); err != nil {
		return nil, nil, err
	}

	var group *models.Group
	debts, err := l.mutate(ctx, groupID, func(tx storage.Tx) error {
		current, err := tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}

		current.Name = in.Name
		current.Description = in.Description
		if in.Currency != "" {
			current.Currency = in.Currency
		}
		if err := tx.UpdateGroup(ctx, current); err != nil {
			return err
		}

		wanted := make(map[string]bool, len(in.MemberNames))
		for _, name := range in.MemberNames {
			wanted[name] = true
		}
		existing := make(map[string]bool, len(current.Members))
		for _, m := range current.Members {
			existing[m.Name] = true
			if !wanted[m.Name] {
				if err := removeMember(ctx, tx, current, m.ID); err != nil {
					return err
				}
			}
		}
		for _, name := range in.MemberNames {
			if existing[name] {
				continue
			}
			if err := tx.AddMember(ctx, &models.Member{GroupID: groupID, Name: name}); err != nil {
				return err
			}
		}

		group, err = tx.GetGroup(ctx, groupID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return group, debts, nil
}

// DeleteGroup removes a group with its members, expenses, balances and debts.
func (l *Ledger) DeleteGroup(ctx context.Context, groupID string) error {
	unlock := l.lock(groupID)
	defer unlock()

	return l.store.InTx(ctx, func(tx storage.Tx) error {
		if err := tx.LockGroup(ctx, groupID); err != nil {
			return err
		}
		return tx.DeleteGroup(ctx, groupID)
	})
}

// AddMember adds a member with a zero balance at the end of the join order.
func (l *Ledger) AddMember(ctx context.Context, groupID, name string) (*models.Member, []models.Debt, error) {
	names, err := normalizeNames([]string{name})
	if err != nil {
		return nil, nil, err
	}

	member := &models.Member{GroupID: groupID, Name: names[0]}
	debts, err := l.mutate(ctx, groupID, func(tx storage.Tx) error {
		group, err := tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		for _, m := range group.Members {
			if m.Name == member.Name {
				return fmt.Errorf("%w: member %q already exists", ErrInvalidArgument, member.Name)
			}
		}
		return tx.AddMember(ctx, member)
	})
	if err != nil {
		return nil, nil, err
	}
	return member, debts, nil
}

// RemoveMember takes a member out of every expense they paid for or share and
// cancels every payment they sent or received. That brings their balance to
// exactly zero, and then they are deleted.
func (l *Ledger) RemoveMember(ctx context.Context, groupID, memberID string) ([]models.Debt, error) {
	return l.mutate(ctx, groupID, func(tx storage.Tx) error {
		group, err := tx.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		return removeMember(ctx, tx, group, memberID)
	})
}

func removeMember(ctx context.Context, tx storage.Tx, group *models.Group, memberID string) error {
	if !hasMember(group, memberID) {
		return fmt.Errorf("member %s in group %s: %w", memberID, group.ID, storage.ErrNotFound)
	}

	expenses, err := tx.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		return err
	}
	for _, expense := range expenses {
		if !expense.Involves(memberID) {
			continue
		}
		if err := applyImpact(ctx, tx, expense, true); err != nil {
			return err
		}

		if expense.PayerID == memberID {
			expense.PayerID = ""
		}
		remaining := expense.ParticipantIDs[:0]
		for _, p := range expense.ParticipantIDs {
			if p != memberID {
				remaining = append(remaining, p)
			}
		}
		expense.ParticipantIDs = remaining

		if err := tx.UpdateExpense(ctx, expense); err != nil {
			return err
		}
		if err := applyImpact(ctx, tx, expense, false); err != nil {
			return err
		}
	}

	payments, err := tx.ListPaymentsByGroup(ctx, group.ID)
	if err != nil {
		return err
	}
	for _, payment := range payments {
		if !payment.Involves(memberID) {
			continue
		}
		if err := applyPayment(ctx, tx, payment, true); err != nil {
			return err
		}
		if err := tx.DeletePayment(ctx, payment.ID); err != nil {
			return err
		}
	}

	balances, err := tx.ListBalances(ctx, group.ID)
	if err != nil {
		return err
	}
	for _, b := range balances {
		if b.MemberID == memberID && !b.Amount.IsZero() {
			return fmt.Errorf("member %s still has balance %s after leaving every expense", memberID, b.Amount)
		}
	}

	return tx.DeleteMember(ctx, memberID)
}

func hasMember(group *models.Group, memberID string) bool {
	for _, m := range group.Members {
		if m.ID == memberID {
			return true
		}
	}
	return false
}

// Group returns a group with its members.
func (l *Ledger) Group(ctx context.Context, groupID string) (*models.Group, error) {
	return l.store.GetGroup(ctx, groupID)
}

// Groups returns every group, newest first.
func (l *Ledger) Groups(ctx context.Context) ([]*models.Group, error) {
	return l.store.ListGroups(ctx)
}
