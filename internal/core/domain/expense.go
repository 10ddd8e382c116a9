package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense represents a shared expense awaiting member approval.
// Approvals are monotonic: they are added, never revoked. ApprovedAt is
// stamped exactly once, on the approval that first reaches quorum, and is
// never unset afterwards even if the member set later changes.
type Expense struct {
	ExpenseID   string          `json:"expenseID" db:"expense_id"` // Primary Key (UUID)
	GroupID     string          `json:"groupID" db:"group_id"`
	AddedBy     string          `json:"addedBy" db:"added_by"` // UserID of the submitter
	Description string          `json:"description" db:"description"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Approvals   []string        `json:"approvals" db:"-"`    // UserIDs that approved; always a subset of current members
	ApprovedAt  *time.Time      `json:"approvedAt,omitempty" db:"approved_at"`
	AuditFields
}

// IsApproved reports whether the expense has reached quorum and counts
// toward group balances.
func (e *Expense) IsApproved() bool {
	return e.ApprovedAt != nil
}

// QuorumSize returns the number of member approvals required before an
// expense counts toward balances: a majority of current members, floor
// division plus one. This is the single policy point; substituting
// unanimity (return memberCount) or a fixed threshold changes no other
// mechanism.
func QuorumSize(memberCount int) int {
	return memberCount/2 + 1
}
