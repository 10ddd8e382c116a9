package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitloop/splitloop_backend/internal/apperrors"
	"github.com/splitloop/splitloop_backend/internal/core/domain"
	portsrepo "github.com/splitloop/splitloop_backend/internal/core/ports/repositories"
)

type PgxGroupRepository struct {
	BaseRepository
}

// newPgxGroupRepository creates a new repository for group data.
func newPgxGroupRepository(pool *pgxpool.Pool) portsrepo.GroupRepositoryFacade {
	return &PgxGroupRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxGroupRepository implements portsrepo.GroupRepositoryFacade
var _ portsrepo.GroupRepositoryFacade = (*PgxGroupRepository)(nil)

var FULL_GROUP_SELECT_QUERY = `
SELECT
	g.group_id, g.name, g.join_code, g.is_active, g.version,
	g.created_at, g.created_by, g.last_updated_at, g.last_updated_by
FROM groups g
`

// getGroups private func to get groups from the select query filters
func (r *PgxGroupRepository) getGroups(ctx context.Context, filterQuery string, args ...any) ([]domain.Group, error) {
	query := FULL_GROUP_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query groups", err)
	}
	defer rows.Close()
	groups, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Group])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Group{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect group rows", err)
	}
	return groups, nil
}

// SaveGroup persists the group and its creator membership in one
// transaction, so a group is never observable without a member.
func (r *PgxGroupRepository) SaveGroup(ctx context.Context, group domain.Group, creator domain.GroupMember) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	groupQuery := `
		INSERT INTO groups (
			group_id, name, join_code, is_active, version,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = tx.Exec(ctx, groupQuery,
		group.GroupID,
		group.Name,
		group.JoinCode,
		group.IsActive,
		1,
		group.CreatedAt,
		group.CreatedBy,
		group.LastUpdatedAt,
		group.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			if pgErr.ConstraintName == "groups_join_code_key" {
				return apperrors.NewDuplicateError("join code already in use")
			}
			return apperrors.NewConflictError("group ID " + group.GroupID + " already exists")
		}
		return apperrors.NewAppError(500, "failed to save group "+group.GroupID, err)
	}

	memberQuery := `
		INSERT INTO group_members (group_id, user_id, joined_at)
		VALUES ($1, $2, $3);
	`
	_, err = tx.Exec(ctx, memberQuery, creator.GroupID, creator.UserID, creator.JoinedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to add creator to group "+group.GroupID, err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxGroupRepository) FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	groups, err := r.getGroups(ctx, `WHERE g.group_id = $1`, groupID)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, apperrors.NewNotFoundError("group not found")
	}
	return &groups[0], nil
}

func (r *PgxGroupRepository) FindGroupByJoinCode(ctx context.Context, joinCode string) (*domain.Group, error) {
	groups, err := r.getGroups(ctx, `WHERE g.join_code = $1 AND g.is_active = true`, joinCode)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, apperrors.NewNotFoundError("group not found for join code")
	}
	return &groups[0], nil
}

func (r *PgxGroupRepository) ListGroupsByUserID(ctx context.Context, userID string) ([]domain.Group, error) {
	query := `
		JOIN group_members gm ON g.group_id = gm.group_id
		WHERE gm.user_id = $1 AND g.is_active = true
		ORDER BY g.name;
	`
	return r.getGroups(ctx, query, userID)
}

func (r *PgxGroupRepository) ListGroupMembers(ctx context.Context, groupID string) ([]domain.GroupMember, error) {
	query := `
		SELECT gm.group_id, gm.user_id, u.name AS user_name, gm.joined_at
		FROM group_members gm
		JOIN users u ON gm.user_id = u.user_id
		WHERE gm.group_id = $1
		ORDER BY gm.joined_at;
	`
	rows, err := r.Pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query members for group "+groupID, err)
	}
	defer rows.Close()
	members, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.GroupMember])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect member rows", err)
	}
	return members, nil
}

func (r *PgxGroupRepository) ListJoinRequests(ctx context.Context, groupID string) ([]domain.JoinRequest, error) {
	query := `
		SELECT jr.group_id, jr.user_id, u.name AS user_name, jr.requested_at
		FROM join_requests jr
		JOIN users u ON jr.user_id = u.user_id
		WHERE jr.group_id = $1
		ORDER BY jr.requested_at;
	`
	rows, err := r.Pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query join requests for group "+groupID, err)
	}
	defer rows.Close()
	requests, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.JoinRequest])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect join request rows", err)
	}
	return requests, nil
}

func (r *PgxGroupRepository) FindGroupMember(ctx context.Context, groupID, userID string) (*domain.GroupMember, error) {
	query := `
		SELECT gm.group_id, gm.user_id, u.name AS user_name, gm.joined_at
		FROM group_members gm
		JOIN users u ON gm.user_id = u.user_id
		WHERE gm.group_id = $1 AND gm.user_id = $2;
	`
	var gm domain.GroupMember
	err := r.Pool.QueryRow(ctx, query, groupID, userID).Scan(
		&gm.GroupID,
		&gm.UserID,
		&gm.UserName,
		&gm.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("user is not a member of the group")
		}
		return nil, apperrors.NewAppError(500, "failed to find membership of "+userID+" in group "+groupID, err)
	}
	return &gm, nil
}

func (r *PgxGroupRepository) FindJoinRequest(ctx context.Context, groupID, userID string) (*domain.JoinRequest, error) {
	query := `
		SELECT jr.group_id, jr.user_id, u.name AS user_name, jr.requested_at
		FROM join_requests jr
		JOIN users u ON jr.user_id = u.user_id
		WHERE jr.group_id = $1 AND jr.user_id = $2;
	`
	var jr domain.JoinRequest
	err := r.Pool.QueryRow(ctx, query, groupID, userID).Scan(
		&jr.GroupID,
		&jr.UserID,
		&jr.UserName,
		&jr.RequestedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("join request not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find join request of "+userID+" in group "+groupID, err)
	}
	return &jr, nil
}

// AddJoinRequest inserts a pending join request. The primary key on
// (group_id, user_id) collapses concurrent duplicates onto a single row.
func (r *PgxGroupRepository) AddJoinRequest(ctx context.Context, request domain.JoinRequest) error {
	query := `
		INSERT INTO join_requests (group_id, user_id, requested_at)
		VALUES ($1, $2, $3);
	`
	_, err := r.Pool.Exec(ctx, query, request.GroupID, request.UserID, request.RequestedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewDuplicateError("join request already pending")
		}
		return apperrors.NewAppError(500, "failed to add join request for group "+request.GroupID, err)
	}
	return nil
}

// PromoteJoinRequest atomically turns a pending request into a membership.
// The group row lock serializes concurrent approvals of the same request:
// exactly one transaction deletes the request and inserts the member, any
// later one finds the membership already present and gets ErrAlreadyMember.
func (r *PgxGroupRepository) PromoteJoinRequest(ctx context.Context, groupID, userID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := lockGroupRow(ctx, tx, groupID); err != nil {
		return err
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2);`,
		groupID, userID,
	).Scan(&exists)
	if err != nil {
		return apperrors.NewAppError(500, "failed to check membership in group "+groupID, err)
	}
	if exists {
		return apperrors.NewAppError(409, "user is already a member of the group", apperrors.ErrAlreadyMember)
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM join_requests WHERE group_id = $1 AND user_id = $2;`,
		groupID, userID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to remove join request in group "+groupID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("join request not found")
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, NOW());`,
		groupID, userID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to add member to group "+groupID, err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE groups SET version = version + 1, last_updated_at = NOW(), last_updated_by = $2 WHERE group_id = $1;`,
		groupID, userID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to bump version of group "+groupID, err)
	}

	return r.Commit(ctx, tx)
}
