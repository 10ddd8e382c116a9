package repositories

import (
	"context"

	"github.com/splitloop/splitloop_backend/internal/core/domain"
)

// ExpenseReader defines read operations for expense data.
type ExpenseReader interface {
	// FindExpenseByID retrieves an expense with its approval set loaded.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// ListExpensesByGroupID retrieves a page of a group's expenses, newest
	// first, with approval sets loaded. Returns the next page token when
	// more rows exist.
	ListExpensesByGroupID(ctx context.Context, groupID string, limit int, nextToken *string) ([]domain.Expense, *string, error)
}

// ExpenseWriter defines write operations for expense data.
type ExpenseWriter interface {
	// CreateExpense persists a new expense together with the submitter's
	// implicit first approval in a single transaction holding the group's
	// row lock. If that first approval already meets the group's quorum
	// (single-member groups), the expense is stamped approved in the same
	// transaction. Either the expense exists fully formed or not at all.
	CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error)

	// AddApproval records an approval inside a transaction holding the
	// group's row lock, stamping approved_at exactly once when the approval
	// count (counting current members only) first reaches quorum. Returns
	// an error satisfying errors.Is(err, apperrors.ErrAlreadyApproved) when
	// the approver already approved; callers treat that as idempotent
	// success. Returns the updated expense.
	AddApproval(ctx context.Context, expenseID, approverID string) (*domain.Expense, error)
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces.
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}
