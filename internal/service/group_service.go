package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitfree/internal/ledger"
	"github.com/mmynk/splitfree/pkg/api"
	"github.com/mmynk/splitfree/pkg/api/apiconnect"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	ledger *ledger.Ledger
}

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// NewGroupService creates a new GroupService backed by the ledger.
func NewGroupService(l *ledger.Ledger) *GroupService {
	return &GroupService{ledger: l}
}

// names looks up member names for labelling debts. Failure only costs the
// labels.
func (s *GroupService) names(ctx context.Context, groupID string) map[string]string {
	return lookupNames(ctx, s.ledger, groupID)
}

func lookupNames(ctx context.Context, l *ledger.Ledger, groupID string) map[string]string {
	group, err := l.Group(ctx, groupID)
	if err != nil {
		slog.Warn("Failed to look up member names", "group_id", groupID, "error", err)
		return memberNames(nil)
	}
	return memberNames(group)
}

// CreateGroup creates a new group.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	group, err := s.ledger.CreateGroup(ctx, ledger.GroupInput{
		Name:        req.Msg.Name,
		Description: req.Msg.Description,
		Currency:    req.Msg.Currency,
		MemberNames: req.Msg.Members,
	})
	if err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID)

	return connect.NewResponse(&api.CreateGroupResponse{Group: groupToAPI(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := s.ledger.Group(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)

	return connect.NewResponse(&api.GetGroupResponse{Group: groupToAPI(group)}), nil
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	slog.Info("ListGroups request received")

	groups, err := s.ledger.Groups(ctx)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Group, len(groups))
	for i, group := range groups {
		out[i] = groupToAPI(group)
	}

	slog.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// UpdateGroup updates a group's details and reconciles its members.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error) {
	slog.Info("UpdateGroup request received",
		"group_id", req.Msg.GroupID,
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	group, debts, err := s.ledger.UpdateGroup(ctx, req.Msg.GroupID, ledger.GroupInput{
		Name:        req.Msg.Name,
		Description: req.Msg.Description,
		Currency:    req.Msg.Currency,
		MemberNames: req.Msg.Members,
	})
	if err != nil {
		slog.Error("UpdateGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group updated", "group_id", group.ID, "debts", len(debts))

	return connect.NewResponse(&api.UpdateGroupResponse{
		Group: groupToAPI(group),
		Debts: debtsToAPI(debts, memberNames(group)),
	}), nil
}

// DeleteGroup deletes a group and everything in it.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	if err := s.ledger.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group deleted", "group_id", req.Msg.GroupID)

	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// AddMember adds a member to a group.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID, "name", req.Msg.Name)

	member, debts, err := s.ledger.AddMember(ctx, req.Msg.GroupID, req.Msg.Name)
	if err != nil {
		slog.Error("AddMember failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Member added", "group_id", req.Msg.GroupID, "member_id", member.ID)

	return connect.NewResponse(&api.AddMemberResponse{
		Member: &api.Member{ID: member.ID, Name: member.Name, Position: member.Position},
		Debts:  debtsToAPI(debts, s.names(ctx, req.Msg.GroupID)),
	}), nil
}

// RemoveMember removes a member from a group and from its expenses.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	slog.Info("RemoveMember request received", "group_id", req.Msg.GroupID, "member_id", req.Msg.MemberID)

	debts, err := s.ledger.RemoveMember(ctx, req.Msg.GroupID, req.Msg.MemberID)
	if err != nil {
		slog.Error("RemoveMember failed", "group_id", req.Msg.GroupID, "member_id", req.Msg.MemberID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Member removed", "group_id", req.Msg.GroupID, "member_id", req.Msg.MemberID, "debts", len(debts))

	return connect.NewResponse(&api.RemoveMemberResponse{
		Debts: debtsToAPI(debts, s.names(ctx, req.Msg.GroupID)),
	}), nil
}

// GetGroupBalances returns every member's balance and the group's debts.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	slog.Info("GetGroupBalances request received", "group_id", req.Msg.GroupID)

	balances, debts, err := s.ledger.Snapshot(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroupBalances failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	names := s.names(ctx, req.Msg.GroupID)

	slog.Info("GetGroupBalances successful", "group_id", req.Msg.GroupID, "members", len(balances), "debts", len(debts))

	return connect.NewResponse(&api.GetGroupBalancesResponse{
		Balances: balancesToAPI(balances, names),
		Debts:    debtsToAPI(debts, names),
	}), nil
}
