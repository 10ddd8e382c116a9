package repositories

import (
	"context"

	"github.com/splitloop/splitloop_backend/internal/core/domain"
)

// GroupReader defines read operations for group data.
type GroupReader interface {
	// FindGroupByID retrieves a specific group by its ID.
	FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error)

	// FindGroupByJoinCode retrieves a group by its unique join code.
	FindGroupByJoinCode(ctx context.Context, joinCode string) (*domain.Group, error)

	// ListGroupsByUserID retrieves all groups a user is a member of.
	ListGroupsByUserID(ctx context.Context, userID string) ([]domain.Group, error)

	// ListGroupMembers retrieves the members of a group with their names.
	ListGroupMembers(ctx context.Context, groupID string) ([]domain.GroupMember, error)

	// ListJoinRequests retrieves the pending join requests of a group in
	// request order.
	ListJoinRequests(ctx context.Context, groupID string) ([]domain.JoinRequest, error)

	// FindGroupMember retrieves a single membership row, or an error
	// satisfying errors.Is(err, apperrors.ErrNotFound) when the user is not
	// a member.
	FindGroupMember(ctx context.Context, groupID, userID string) (*domain.GroupMember, error)

	// FindJoinRequest retrieves a single pending join request, or an error
	// satisfying errors.Is(err, apperrors.ErrNotFound) when none is pending.
	FindJoinRequest(ctx context.Context, groupID, userID string) (*domain.JoinRequest, error)
}

// GroupWriter defines write operations for group data.
type GroupWriter interface {
	// SaveGroup persists a new group together with its creator membership in
	// a single transaction, so a group is never observable without at least
	// one member. Returns an error satisfying errors.Is(err,
	// apperrors.ErrDuplicate) on a join code collision.
	SaveGroup(ctx context.Context, group domain.Group, creator domain.GroupMember) error
}

// AdmissionManager defines operations for the join-request lifecycle.
type AdmissionManager interface {
	// AddJoinRequest inserts a pending join request. Returns an error
	// satisfying errors.Is(err, apperrors.ErrDuplicate) when the user
	// already has a pending request for the group; the primary key on
	// (group_id, user_id) makes concurrent duplicate requests insert
	// exactly one row.
	AddJoinRequest(ctx context.Context, request domain.JoinRequest) error

	// PromoteJoinRequest atomically removes the pending request and inserts
	// the membership while holding the group's row lock, so concurrent
	// approvals of the same request serialize and exactly one promotion
	// happens. Returns an error satisfying errors.Is(err,
	// apperrors.ErrAlreadyMember) when the user is already a member, and
	// errors.Is(err, apperrors.ErrNotFound) when no request is pending.
	PromoteJoinRequest(ctx context.Context, groupID, userID string) error
}

// GroupRepositoryFacade combines all group-related repository interfaces.
type GroupRepositoryFacade interface {
	GroupReader
	GroupWriter
	AdmissionManager
}
