package domain

import "time"

// JoinCodeLength is the fixed length of generated group join codes.
const JoinCodeLength = 6

// Group represents a shared-expense group. The join code is unique across
// all live groups and grants request-to-join eligibility only; admission
// still requires approval by a current member.
type Group struct {
	GroupID  string `json:"groupID" db:"group_id"` // Primary Key (UUID)
	Name     string `json:"name" db:"name"`
	JoinCode string `json:"joinCode" db:"join_code"`
	IsActive bool   `json:"isActive" db:"is_active"` // Soft-archival flag; groups are never physically deleted
	Version  int64  `json:"-" db:"version"`
	AuditFields
}

// GroupMember represents the membership of a User in a Group.
// A user appears in at most one of the group's members or pending join
// requests, never both.
type GroupMember struct {
	GroupID  string    `json:"groupID" db:"group_id"`
	UserID   string    `json:"userID" db:"user_id"`
	UserName string    `json:"userName" db:"user_name"`
	JoinedAt time.Time `json:"joinedAt" db:"joined_at"`
}

// JoinRequest represents a pending request to join a group, created by
// join-code redemption and destroyed by approval (promotion to member).
// At most one pending request exists per (group, user) pair.
type JoinRequest struct {
	GroupID     string    `json:"groupID" db:"group_id"`
	UserID      string    `json:"userID" db:"user_id"`
	UserName    string    `json:"userName" db:"user_name"`
	RequestedAt time.Time `json:"requestedAt" db:"requested_at"`
}
