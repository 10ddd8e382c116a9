package splitmath

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/splitloop/splitloop_backend/internal/core/domain"
)

// centFactor shifts a 2-decimal currency amount into integer cents.
var centFactor = decimal.NewFromInt(100)

// ValidateAmount checks that an expense amount is positive and carries at
// most two decimal places (the smallest currency unit).
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("amount must be positive, got %s", amount.String())
	}
	if amount.Exponent() < -2 {
		return fmt.Errorf("amount %s has more than two decimal places", amount.String())
	}
	return nil
}

// ComputeBalances derives each member's signed net position from the
// approved expenses of a group. For every approved expense the payer is
// credited the full amount and each member is debited an equal share.
//
// All arithmetic happens in integer cents: each member's share is the floor
// of amount/n cents, and the remainder cents are debited to the payer, so
// the balances of a group always sum to exactly zero.
//
// Expenses that have not reached quorum are skipped. The result is ordered
// like memberIDs.
func ComputeBalances(expenses []domain.Expense, memberIDs []string) ([]domain.MemberBalance, error) {
	if len(memberIDs) == 0 {
		return []domain.MemberBalance{}, nil
	}

	memberSet := make(map[string]bool, len(memberIDs))
	netCents := make(map[string]int64, len(memberIDs))
	for _, id := range memberIDs {
		memberSet[id] = true
		netCents[id] = 0
	}

	n := int64(len(memberIDs))
	for _, exp := range expenses {
		if !exp.IsApproved() {
			continue
		}
		if !memberSet[exp.AddedBy] {
			return nil, fmt.Errorf("expense %s paid by non-member %s", exp.ExpenseID, exp.AddedBy)
		}
		cents := exp.Amount.Mul(centFactor)
		if !cents.IsInteger() {
			return nil, fmt.Errorf("expense %s amount %s is not a whole number of cents", exp.ExpenseID, exp.Amount.String())
		}
		total := cents.IntPart()
		share := total / n
		remainder := total - share*n

		netCents[exp.AddedBy] += total
		for _, id := range memberIDs {
			netCents[id] -= share
		}
		// Remainder cents go to the payer to keep the group sum at exactly zero.
		netCents[exp.AddedBy] -= remainder
	}

	balances := make([]domain.MemberBalance, 0, len(memberIDs))
	for _, id := range memberIDs {
		balances = append(balances, domain.MemberBalance{
			UserID: id,
			Net:    decimal.New(netCents[id], -2),
		})
	}
	return balances, nil
}
