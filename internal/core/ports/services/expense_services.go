package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/splitloop/splitloop_backend/internal/core/domain"
)

// ExpenseWriterSvc defines write operations on the expense ledger.
type ExpenseWriterSvc interface {
	// AddExpense creates an expense for a group. The submitter must be a
	// member and the amount positive with at most two decimal places. The
	// submitter's action counts as the implicit first approval.
	AddExpense(ctx context.Context, groupID, addedBy, description string, amount decimal.Decimal) (*domain.Expense, error)

	// ApproveExpense records a member's approval, stamping the expense
	// approved when quorum is first reached. Approving twice is idempotent
	// success: the current expense is returned without error.
	ApproveExpense(ctx context.Context, expenseID, approverID string) (*domain.Expense, error)
}

// ExpenseReaderSvc defines read operations on the expense ledger.
type ExpenseReaderSvc interface {
	// GetExpenseByID retrieves an expense with its approval set.
	GetExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// ListGroupExpenses retrieves a page of a group's expenses, newest
	// first. The requester must be a member of the group.
	ListGroupExpenses(ctx context.Context, groupID, requesterID string, limit int, nextToken *string) ([]domain.Expense, *string, error)
}

// ExpenseSvcFacade combines all expense-related service interfaces.
type ExpenseSvcFacade interface {
	ExpenseWriterSvc
	ExpenseReaderSvc
}
