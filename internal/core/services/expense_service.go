package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splitloop/splitloop_backend/internal/apperrors"
	"github.com/splitloop/splitloop_backend/internal/core/domain"
	portsrepo "github.com/splitloop/splitloop_backend/internal/core/ports/repositories"
	portssvc "github.com/splitloop/splitloop_backend/internal/core/ports/services"
	"github.com/splitloop/splitloop_backend/internal/utils/splitmath"
)

// expenseService implements the expense-approval ledger.
type expenseService struct {
	BaseService
	expenseRepo     portsrepo.ExpenseRepositoryFacade
	groupAuthorizer portssvc.GroupAuthorizerSvc
}

// NewExpenseService creates a new expense service with the provided dependencies.
func NewExpenseService(expenseRepo portsrepo.ExpenseRepositoryFacade, groupAuthorizer portssvc.GroupAuthorizerSvc) portssvc.ExpenseSvcFacade {
	return &expenseService{
		expenseRepo:     expenseRepo,
		groupAuthorizer: groupAuthorizer,
	}
}

// Ensure expenseService implements the ExpenseSvcFacade interface
var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// AddExpense creates an expense for a group. The submitter must be a member
// and the amount positive with at most two decimal places. The submitter's
// action counts as the implicit first approval, mirroring the client's
// single-call add-expense flow; in a single-member group this already meets
// quorum and the expense is approved on creation.
func (s *expenseService) AddExpense(ctx context.Context, groupID, addedBy, description string, amount decimal.Decimal) (*domain.Expense, error) {
	if err := splitmath.ValidateAmount(amount); err != nil {
		return nil, apperrors.NewValidationFailedError(err.Error())
	}
	if description == "" {
		return nil, apperrors.NewValidationFailedError("expense description is required")
	}

	if err := s.groupAuthorizer.AuthorizeMember(ctx, addedBy, groupID); err != nil {
		return nil, err
	}

	now := time.Now()
	expense := domain.Expense{
		ExpenseID:   uuid.NewString(),
		GroupID:     groupID,
		AddedBy:     addedBy,
		Description: description,
		Amount:      amount,
		Approvals:   []string{addedBy},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     addedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: addedBy,
		},
	}

	created, err := s.expenseRepo.CreateExpense(ctx, expense)
	if err != nil {
		s.LogError(ctx, err, "Failed to create expense",
			slog.String("group_id", groupID),
			slog.String("added_by", addedBy))
		return nil, err
	}

	s.LogInfo(ctx, "Expense created",
		slog.String("expense_id", created.ExpenseID),
		slog.String("group_id", groupID),
		slog.Bool("approved", created.IsApproved()))
	return created, nil
}

// ApproveExpense records a member's approval. Approvals are monotonic and
// the approved timestamp is stamped exactly once, on the approval that
// first reaches quorum. Approving an expense twice is idempotent success:
// the current expense is returned unchanged.
func (s *expenseService) ApproveExpense(ctx context.Context, expenseID, approverID string) (*domain.Expense, error) {
	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find expense", slog.String("expense_id", expenseID))
		}
		return nil, err
	}

	if err := s.groupAuthorizer.AuthorizeMember(ctx, approverID, expense.GroupID); err != nil {
		return nil, err
	}

	updated, err := s.expenseRepo.AddApproval(ctx, expenseID, approverID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyApproved) {
			s.LogDebug(ctx, "Approval already recorded, treating as success",
				slog.String("expense_id", expenseID),
				slog.String("approver_id", approverID))
			return expense, nil
		}
		s.LogError(ctx, err, "Failed to add approval",
			slog.String("expense_id", expenseID),
			slog.String("approver_id", approverID))
		return nil, err
	}

	s.LogInfo(ctx, "Expense approval recorded",
		slog.String("expense_id", expenseID),
		slog.String("approver_id", approverID),
		slog.Bool("approved", updated.IsApproved()))
	return updated, nil
}

// GetExpenseByID retrieves an expense with its approval set.
func (s *expenseService) GetExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find expense", slog.String("expense_id", expenseID))
		}
		return nil, err
	}
	return expense, nil
}

// ListGroupExpenses retrieves a page of a group's expenses, newest first.
// The requester must be a member of the group.
func (s *expenseService) ListGroupExpenses(ctx context.Context, groupID, requesterID string, limit int, nextToken *string) ([]domain.Expense, *string, error) {
	if err := s.groupAuthorizer.AuthorizeMember(ctx, requesterID, groupID); err != nil {
		return nil, nil, err
	}

	expenses, token, err := s.expenseRepo.ListExpensesByGroupID(ctx, groupID, limit, nextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list group expenses", slog.String("group_id", groupID))
		return nil, nil, err
	}
	if expenses == nil {
		expenses = []domain.Expense{}
	}
	return expenses, token, nil
}
