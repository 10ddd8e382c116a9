package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitloop/splitloop_backend/internal/apperrors"
	"github.com/splitloop/splitloop_backend/internal/core/domain"
	portsrepo "github.com/splitloop/splitloop_backend/internal/core/ports/repositories"
	"github.com/splitloop/splitloop_backend/internal/utils/pagination"
)

type PgxExpenseRepository struct {
	BaseRepository
}

// newPgxExpenseRepository creates a new repository for expense data.
func newPgxExpenseRepository(pool *pgxpool.Pool) portsrepo.ExpenseRepositoryFacade {
	return &PgxExpenseRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxExpenseRepository implements portsrepo.ExpenseRepositoryFacade
var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

var FULL_EXPENSE_SELECT_QUERY = `
SELECT
	e.expense_id, e.group_id, e.added_by, e.description, e.amount, e.approved_at,
	e.created_at, e.created_by, e.last_updated_at, e.last_updated_by
FROM expenses e
`

// getExpenses private func to get expenses from the select query filters,
// with approval sets loaded in a second query.
func (r *PgxExpenseRepository) getExpenses(ctx context.Context, filterQuery string, args ...any) ([]domain.Expense, error) {
	query := FULL_EXPENSE_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query expenses", err)
	}
	defer rows.Close()
	expenses, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Expense])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Expense{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect expense rows", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	ids := make([]string, len(expenses))
	byID := make(map[string]int, len(expenses))
	for i := range expenses {
		ids[i] = expenses[i].ExpenseID
		byID[expenses[i].ExpenseID] = i
		expenses[i].Approvals = []string{}
	}

	approvalQuery := `
		SELECT expense_id, user_id
		FROM expense_approvals
		WHERE expense_id = ANY($1)
		ORDER BY approved_at;
	`
	approvalRows, err := r.Pool.Query(ctx, approvalQuery, ids)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query expense approvals", err)
	}
	defer approvalRows.Close()
	for approvalRows.Next() {
		var expenseID, userID string
		if err := approvalRows.Scan(&expenseID, &userID); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan expense approval row", err)
		}
		if i, ok := byID[expenseID]; ok {
			expenses[i].Approvals = append(expenses[i].Approvals, userID)
		}
	}
	if err := approvalRows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read expense approval rows", err)
	}

	return expenses, nil
}

// CreateExpense persists the expense and the submitter's implicit first
// approval under the group's row lock. A single-member group has quorum 1,
// so the expense is stamped approved in the same transaction; either way
// the expense becomes visible fully formed or not at all.
func (r *PgxExpenseRepository) CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if err := lockGroupRow(ctx, tx, expense.GroupID); err != nil {
		return nil, err
	}

	var memberCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM group_members WHERE group_id = $1;`,
		expense.GroupID,
	).Scan(&memberCount)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to count members of group "+expense.GroupID, err)
	}

	now := time.Now()
	if 1 >= domain.QuorumSize(memberCount) {
		expense.ApprovedAt = &now
	}

	expenseQuery := `
		INSERT INTO expenses (
			expense_id, group_id, added_by, description, amount, approved_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, expenseQuery,
		expense.ExpenseID,
		expense.GroupID,
		expense.AddedBy,
		expense.Description,
		expense.Amount,
		expense.ApprovedAt,
		expense.CreatedAt,
		expense.CreatedBy,
		expense.LastUpdatedAt,
		expense.LastUpdatedBy,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to save expense "+expense.ExpenseID, err)
	}

	// The submitter's action counts as the first approval.
	_, err = tx.Exec(ctx,
		`INSERT INTO expense_approvals (expense_id, user_id, approved_at) VALUES ($1, $2, $3);`,
		expense.ExpenseID, expense.AddedBy, now,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to record initial approval for expense "+expense.ExpenseID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	expense.Approvals = []string{expense.AddedBy}
	return &expense, nil
}

// AddApproval records an approval under the group's row lock and stamps
// approved_at exactly once, on the approval that first reaches quorum.
// Quorum counts only approvals from current members, so a stale approval
// cannot tip an expense over.
func (r *PgxExpenseRepository) AddApproval(ctx context.Context, expenseID, approverID string) (*domain.Expense, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	var groupID string
	err = tx.QueryRow(ctx,
		`SELECT group_id FROM expenses WHERE expense_id = $1;`,
		expenseID,
	).Scan(&groupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("expense not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find expense "+expenseID, err)
	}

	if err := lockGroupRow(ctx, tx, groupID); err != nil {
		return nil, err
	}

	// Re-read the approval state only after the group lock is held, so a
	// concurrent approval that stamped the expense is visible here.
	var approvedAt *time.Time
	err = tx.QueryRow(ctx,
		`SELECT approved_at FROM expenses WHERE expense_id = $1;`,
		expenseID,
	).Scan(&approvedAt)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to read approval state of expense "+expenseID, err)
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO expense_approvals (expense_id, user_id, approved_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (expense_id, user_id) DO NOTHING;`,
		expenseID, approverID,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to record approval for expense "+expenseID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.NewAppError(409, "expense already approved by user", apperrors.ErrAlreadyApproved)
	}

	// First crossing only: once stamped, approved_at is never re-evaluated.
	if approvedAt == nil {
		var memberCount, approvalCount int
		err = tx.QueryRow(ctx, `
			SELECT
				(SELECT COUNT(*) FROM group_members WHERE group_id = $1),
				(SELECT COUNT(*)
				 FROM expense_approvals ea
				 JOIN group_members gm ON gm.group_id = $1 AND gm.user_id = ea.user_id
				 WHERE ea.expense_id = $2);
		`, groupID, expenseID).Scan(&memberCount, &approvalCount)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to count approvals for expense "+expenseID, err)
		}

		if approvalCount >= domain.QuorumSize(memberCount) {
			_, err = tx.Exec(ctx,
				`UPDATE expenses SET approved_at = NOW(), last_updated_at = NOW(), last_updated_by = $2 WHERE expense_id = $1 AND approved_at IS NULL;`,
				expenseID, approverID,
			)
			if err != nil {
				return nil, apperrors.NewAppError(500, "failed to stamp approval of expense "+expenseID, err)
			}
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	return r.FindExpenseByID(ctx, expenseID)
}

func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	expenses, err := r.getExpenses(ctx, `WHERE e.expense_id = $1`, expenseID)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, apperrors.NewNotFoundError("expense not found")
	}
	return &expenses[0], nil
}

// ListExpensesByGroupID retrieves a page of a group's expenses, newest
// first, using a (created_at, expense_id) keyset cursor. A non-positive
// limit returns all rows.
func (r *PgxExpenseRepository) ListExpensesByGroupID(ctx context.Context, groupID string, limit int, nextToken *string) ([]domain.Expense, *string, error) {
	filter := `WHERE e.group_id = $1`
	args := []any{groupID}

	if nextToken != nil && *nextToken != "" {
		createdAt, expenseID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationFailedError(err.Error())
		}
		filter += ` AND (e.created_at, e.expense_id) < ($2, $3)`
		args = append(args, createdAt, expenseID)
	}

	filter += ` ORDER BY e.created_at DESC, e.expense_id DESC`

	fetch := 0
	if limit > 0 {
		// Fetch one extra row to know whether another page exists.
		fetch = limit + 1
		filter += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, fetch)
	}

	expenses, err := r.getExpenses(ctx, filter, args...)
	if err != nil {
		return nil, nil, err
	}

	var token *string
	if limit > 0 && len(expenses) == fetch {
		expenses = expenses[:limit]
		last := expenses[len(expenses)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.ExpenseID)
		token = &t
	}
	return expenses, token, nil
}
