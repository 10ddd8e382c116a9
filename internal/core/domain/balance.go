package domain

import "github.com/shopspring/decimal"

// MemberBalance is a member's signed net position across a group's approved
// expenses: positive means the member is owed money, negative means the
// member owes. Balances are derived on demand and never persisted, so they
// are consistent with the current expense and member state by construction.
type MemberBalance struct {
	UserID string          `json:"userID"`
	Net    decimal.Decimal `json:"net"`
}

// GroupDetail is the full read-model of a group assembled for the client:
// the group record, resolved members, pending join requests, expenses and
// derived balances.
type GroupDetail struct {
	Group        Group           `json:"group"`
	Members      []GroupMember   `json:"members"`
	JoinRequests []JoinRequest   `json:"joinRequests"`
	Expenses     []Expense       `json:"expenses"`
	Balances     []MemberBalance `json:"balances"`
}
