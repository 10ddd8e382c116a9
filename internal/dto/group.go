package dto

import (
	"time"

	"github.com/splitloop/splitloop_backend/internal/core/domain"
)

// --- Group DTOs ---

// CreateGroupRequest defines data for creating a new group.
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required,max=120"`
}

// JoinGroupRequest defines data for redeeming a join code.
type JoinGroupRequest struct {
	JoinCode string `json:"joinCode" binding:"required,joincode"`
}

// ApproveJoinRequest defines data for approving a pending join request.
type ApproveJoinRequest struct {
	UserID string `json:"userID" binding:"required"`
}

// GroupResponse defines data returned for a group.
type GroupResponse struct {
	GroupID   string    `json:"groupID"`
	Name      string    `json:"name"`
	JoinCode  string    `json:"joinCode"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"` // UserID
}

// ToGroupResponse converts domain.Group to DTO.
func ToGroupResponse(g *domain.Group) GroupResponse {
	return GroupResponse{
		GroupID:   g.GroupID,
		Name:      g.Name,
		JoinCode:  g.JoinCode,
		IsActive:  g.IsActive,
		CreatedAt: g.CreatedAt,
		CreatedBy: g.CreatedBy,
	}
}

// ListGroupsResponse wraps a list of groups.
type ListGroupsResponse struct {
	Groups []GroupResponse `json:"groups"`
}

// ToListGroupsResponse converts a slice of domain.Group to DTO.
func ToListGroupsResponse(gs []domain.Group) ListGroupsResponse {
	list := make([]GroupResponse, len(gs))
	for i, g := range gs {
		list[i] = ToGroupResponse(&g)
	}
	return ListGroupsResponse{Groups: list}
}

// --- Membership DTOs ---

// GroupMemberResponse defines data returned about a group member.
type GroupMemberResponse struct {
	UserID   string    `json:"userID"`
	UserName string    `json:"userName"`
	JoinedAt time.Time `json:"joinedAt"`
}

// JoinRequestResponse defines data returned about a pending join request.
type JoinRequestResponse struct {
	UserID      string    `json:"userID"`
	UserName    string    `json:"userName"`
	RequestedAt time.Time `json:"requestedAt"`
}

// BalanceResponse defines a member's signed net position.
type BalanceResponse struct {
	UserID string `json:"userID"`
	Net    string `json:"net"`
}

// GroupDetailResponse assembles the full group view for the client.
type GroupDetailResponse struct {
	Group        GroupResponse         `json:"group"`
	Members      []GroupMemberResponse `json:"members"`
	JoinRequests []JoinRequestResponse `json:"joinRequests"`
	Expenses     []ExpenseResponse     `json:"expenses"`
	Balances     []BalanceResponse     `json:"balances"`
}

// ToGroupDetailResponse converts domain.GroupDetail to DTO.
func ToGroupDetailResponse(d *domain.GroupDetail) GroupDetailResponse {
	members := make([]GroupMemberResponse, len(d.Members))
	for i, m := range d.Members {
		members[i] = GroupMemberResponse{
			UserID:   m.UserID,
			UserName: m.UserName,
			JoinedAt: m.JoinedAt,
		}
	}
	requests := make([]JoinRequestResponse, len(d.JoinRequests))
	for i, jr := range d.JoinRequests {
		requests[i] = JoinRequestResponse{
			UserID:      jr.UserID,
			UserName:    jr.UserName,
			RequestedAt: jr.RequestedAt,
		}
	}
	expenses := make([]ExpenseResponse, len(d.Expenses))
	for i, e := range d.Expenses {
		expenses[i] = ToExpenseResponse(&e)
	}
	balances := make([]BalanceResponse, len(d.Balances))
	for i, b := range d.Balances {
		balances[i] = BalanceResponse{
			UserID: b.UserID,
			Net:    b.Net.StringFixed(2),
		}
	}
	return GroupDetailResponse{
		Group:        ToGroupResponse(&d.Group),
		Members:      members,
		JoinRequests: requests,
		Expenses:     expenses,
		Balances:     balances,
	}
}
