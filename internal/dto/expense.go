package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitloop/splitloop_backend/internal/core/domain"
)

// --- Expense DTOs ---

// AddExpenseRequest defines data for adding an expense to a group.
type AddExpenseRequest struct {
	Description string          `json:"description" binding:"required,max=255"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

// ExpenseResponse defines data returned for an expense.
type ExpenseResponse struct {
	ExpenseID   string     `json:"expenseID"`
	GroupID     string     `json:"groupID"`
	AddedBy     string     `json:"addedBy"`
	Description string     `json:"description"`
	Amount      string     `json:"amount"`
	Approvals   []string   `json:"approvals"`
	Approved    bool       `json:"approved"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ToExpenseResponse converts domain.Expense to DTO.
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	approvals := e.Approvals
	if approvals == nil {
		approvals = []string{}
	}
	return ExpenseResponse{
		ExpenseID:   e.ExpenseID,
		GroupID:     e.GroupID,
		AddedBy:     e.AddedBy,
		Description: e.Description,
		Amount:      e.Amount.StringFixed(2),
		Approvals:   approvals,
		Approved:    e.IsApproved(),
		ApprovedAt:  e.ApprovedAt,
		CreatedAt:   e.CreatedAt,
	}
}

// ListExpensesResponse wraps a page of expenses with its pagination cursor.
type ListExpensesResponse struct {
	Expenses  []ExpenseResponse `json:"expenses"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToListExpensesResponse converts a slice of domain.Expense to DTO.
func ToListExpensesResponse(es []domain.Expense, nextToken *string) ListExpensesResponse {
	list := make([]ExpenseResponse, len(es))
	for i, e := range es {
		list[i] = ToExpenseResponse(&e)
	}
	return ListExpensesResponse{Expenses: list, NextToken: nextToken}
}
