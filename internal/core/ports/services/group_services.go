package services

import (
	"context"

	"github.com/splitloop/splitloop_backend/internal/core/domain"
)

// GroupReaderSvc defines read operations for group data.
type GroupReaderSvc interface {
	// FindGroupByID retrieves a specific group by its ID.
	FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error)

	// ListUserGroups retrieves all groups the user is a member of.
	ListUserGroups(ctx context.Context, userID string) ([]domain.Group, error)

	// GetGroupDetail assembles the full group view: group, members, pending
	// join requests, expenses and derived balances. The requester must be a
	// member or a pending requester. Pure read, never mutates.
	GetGroupDetail(ctx context.Context, groupID, requesterID string) (*domain.GroupDetail, error)
}

// GroupWriterSvc defines write operations for group data.
type GroupWriterSvc interface {
	// CreateGroup persists a new group with a fresh unique join code; the
	// creator becomes the sole initial member.
	CreateGroup(ctx context.Context, name, creatorUserID string) (*domain.Group, error)
}

// GroupAdmissionSvc defines the join-code admission flow.
type GroupAdmissionSvc interface {
	// RequestJoin redeems a join code into a pending join request.
	RequestJoin(ctx context.Context, joinCode, userID string) (*domain.JoinRequest, error)

	// ApproveJoin promotes a pending request to full membership. Only
	// current members may approve. A second approval of the same request is
	// idempotent success: the current group is returned without error.
	ApproveJoin(ctx context.Context, groupID, approverID, requesteeID string) (*domain.Group, error)
}

// GroupAuthorizerSvc defines operations for group authorization.
type GroupAuthorizerSvc interface {
	// AuthorizeMember checks that a user is a current member of a group,
	// returning an error satisfying errors.Is(err, apperrors.ErrForbidden)
	// otherwise.
	AuthorizeMember(ctx context.Context, userID, groupID string) error
}

// GroupSvcFacade combines all group-related service interfaces.
type GroupSvcFacade interface {
	GroupReaderSvc
	GroupWriterSvc
	GroupAdmissionSvc
	GroupAuthorizerSvc
}
