package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/splitloop/splitloop_backend/internal/apperrors"
	"github.com/splitloop/splitloop_backend/internal/core/domain"
	portsrepo "github.com/splitloop/splitloop_backend/internal/core/ports/repositories"
	portssvc "github.com/splitloop/splitloop_backend/internal/core/ports/services"
	"github.com/splitloop/splitloop_backend/internal/utils"
	"github.com/splitloop/splitloop_backend/internal/utils/splitmath"
)

// joinCodeMaxAttempts bounds join code regeneration on collision before the
// operation surfaces a conflict to the caller.
const joinCodeMaxAttempts = 5

// groupService implements the group store, membership admission and the
// group detail query facade.
type groupService struct {
	BaseService
	groupRepo   portsrepo.GroupRepositoryFacade
	expenseRepo portsrepo.ExpenseReader
}

// NewGroupService creates a new group service with the provided dependencies.
func NewGroupService(groupRepo portsrepo.GroupRepositoryFacade, expenseRepo portsrepo.ExpenseReader) portssvc.GroupSvcFacade {
	return &groupService{
		groupRepo:   groupRepo,
		expenseRepo: expenseRepo,
	}
}

// Ensure groupService implements the GroupSvcFacade interface
var _ portssvc.GroupSvcFacade = (*groupService)(nil)

// CreateGroup persists a new group; the creator becomes the sole initial
// member in the same transaction. The join code is random so codes stay
// unguessable; collisions with live groups regenerate up to
// joinCodeMaxAttempts before surfacing a conflict.
func (s *groupService) CreateGroup(ctx context.Context, name, creatorUserID string) (*domain.Group, error) {
	if name == "" {
		return nil, apperrors.NewValidationFailedError("group name is required")
	}

	now := time.Now()
	group := domain.Group{
		GroupID:  uuid.NewString(),
		Name:     name,
		IsActive: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	creator := domain.GroupMember{
		GroupID:  group.GroupID,
		UserID:   creatorUserID,
		JoinedAt: now,
	}

	for attempt := 0; attempt < joinCodeMaxAttempts; attempt++ {
		code, err := utils.GenerateJoinCode(domain.JoinCodeLength)
		if err != nil {
			s.LogError(ctx, err, "Failed to generate join code")
			return nil, err
		}
		group.JoinCode = code

		err = s.groupRepo.SaveGroup(ctx, group, creator)
		if err == nil {
			s.LogInfo(ctx, "Group created successfully",
				slog.String("group_id", group.GroupID),
				slog.String("creator_id", creatorUserID))
			return &group, nil
		}
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogDebug(ctx, "Join code collision, regenerating",
				slog.String("group_id", group.GroupID),
				slog.Int("attempt", attempt+1))
			continue
		}
		s.LogError(ctx, err, "Failed to save group", slog.String("group_id", group.GroupID))
		return nil, err
	}

	return nil, apperrors.NewConflictError("could not generate a unique join code")
}

// FindGroupByID retrieves a group by its ID.
func (s *groupService) FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find group by ID", slog.String("group_id", groupID))
		}
		return nil, err
	}
	return group, nil
}

// ListUserGroups retrieves all groups a user belongs to.
func (s *groupService) ListUserGroups(ctx context.Context, userID string) ([]domain.Group, error) {
	groups, err := s.groupRepo.ListGroupsByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list groups for user", slog.String("user_id", userID))
		return nil, err
	}
	if groups == nil {
		return []domain.Group{}, nil
	}
	return groups, nil
}

// AuthorizeMember checks that a user is a current member of a group.
func (s *groupService) AuthorizeMember(ctx context.Context, userID, groupID string) error {
	_, err := s.groupRepo.FindGroupMember(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "User not a member of group",
				slog.String("user_id", userID),
				slog.String("group_id", groupID))
			return apperrors.NewForbiddenError("user is not a member of the group")
		}
		s.LogError(ctx, err, "Failed to find group membership",
			slog.String("user_id", userID),
			slog.String("group_id", groupID))
		return err
	}
	return nil
}

// RequestJoin redeems a join code into a pending join request. Members
// cannot request again, and a user holds at most one pending request per
// group; concurrent duplicates collapse onto the join_requests primary key
// and the loser observes ErrAlreadyRequested.
func (s *groupService) RequestJoin(ctx context.Context, joinCode, userID string) (*domain.JoinRequest, error) {
	group, err := s.groupRepo.FindGroupByJoinCode(ctx, joinCode)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to resolve join code")
		}
		return nil, err
	}

	if memberErr := s.AuthorizeMember(ctx, userID, group.GroupID); memberErr == nil {
		return nil, apperrors.NewAppError(409, "user is already a member of the group", apperrors.ErrAlreadyMember)
	} else if !errors.Is(memberErr, apperrors.ErrForbidden) {
		return nil, memberErr
	}

	request := domain.JoinRequest{
		GroupID:     group.GroupID,
		UserID:      userID,
		RequestedAt: time.Now(),
	}
	if err := s.groupRepo.AddJoinRequest(ctx, request); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewAppError(409, "join request already pending", apperrors.ErrAlreadyRequested)
		}
		s.LogError(ctx, err, "Failed to add join request",
			slog.String("group_id", group.GroupID),
			slog.String("user_id", userID))
		return nil, err
	}

	s.LogInfo(ctx, "Join request created",
		slog.String("group_id", group.GroupID),
		slog.String("user_id", userID))
	return &request, nil
}

// ApproveJoin promotes a pending join request to membership. Only current
// members may approve. The removal-and-promotion is a single atomic
// check-and-mutate against the group row, so two members approving the same
// request concurrently result in exactly one promotion; the second caller
// gets the current group back as idempotent success.
func (s *groupService) ApproveJoin(ctx context.Context, groupID, approverID, requesteeID string) (*domain.Group, error) {
	if _, err := s.groupRepo.FindGroupByID(ctx, groupID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find group for join approval", slog.String("group_id", groupID))
		}
		return nil, err
	}

	if err := s.AuthorizeMember(ctx, approverID, groupID); err != nil {
		return nil, err
	}

	err := s.groupRepo.PromoteJoinRequest(ctx, groupID, requesteeID)
	if err != nil && !errors.Is(err, apperrors.ErrAlreadyMember) {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to promote join request",
				slog.String("group_id", groupID),
				slog.String("requestee_id", requesteeID))
		}
		return nil, err
	}

	if err != nil {
		// Lost the approval race; the requestee is a member either way.
		s.LogDebug(ctx, "Requestee already a member, treating approval as success",
			slog.String("group_id", groupID),
			slog.String("requestee_id", requesteeID))
	} else {
		s.LogInfo(ctx, "Join request approved",
			slog.String("group_id", groupID),
			slog.String("approver_id", approverID),
			slog.String("requestee_id", requesteeID))
	}

	// Re-read so the response reflects the promoted membership's audit
	// state, not the pre-promotion snapshot.
	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to reload group after join approval", slog.String("group_id", groupID))
		return nil, err
	}
	return group, nil
}

// GetGroupDetail assembles the full group view for the client: members,
// pending join requests, expenses and balances derived from approved
// expenses. Pure read. The requester must be a member or a pending
// requester (a requester sees the group while awaiting approval).
func (s *groupService) GetGroupDetail(ctx context.Context, groupID, requesterID string) (*domain.GroupDetail, error) {
	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find group for detail view", slog.String("group_id", groupID))
		}
		return nil, err
	}

	if err := s.AuthorizeMember(ctx, requesterID, groupID); err != nil {
		if !errors.Is(err, apperrors.ErrForbidden) {
			return nil, err
		}
		if _, reqErr := s.groupRepo.FindJoinRequest(ctx, groupID, requesterID); reqErr != nil {
			if errors.Is(reqErr, apperrors.ErrNotFound) {
				return nil, apperrors.NewForbiddenError("user is not a member of the group")
			}
			return nil, reqErr
		}
	}

	members, err := s.groupRepo.ListGroupMembers(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list group members", slog.String("group_id", groupID))
		return nil, err
	}

	joinRequests, err := s.groupRepo.ListJoinRequests(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list join requests", slog.String("group_id", groupID))
		return nil, err
	}

	expenses, _, err := s.expenseRepo.ListExpensesByGroupID(ctx, groupID, 0, nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to list group expenses", slog.String("group_id", groupID))
		return nil, err
	}

	memberIDs := make([]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.UserID
	}
	balances, err := splitmath.ComputeBalances(expenses, memberIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute balances", slog.String("group_id", groupID))
		return nil, err
	}

	return &domain.GroupDetail{
		Group:        *group,
		Members:      members,
		JoinRequests: joinRequests,
		Expenses:     expenses,
		Balances:     balances,
	}, nil
}
