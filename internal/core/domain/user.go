package domain

// User represents a user of the application in the domain.
// Users are created on first login for a device identifier and never deleted;
// the identity projection stays stable across sessions.
type User struct {
	UserID   string `json:"userID" db:"user_id"`     // Primary Key (UUID)
	DeviceID string `json:"deviceID" db:"device_id"` // Unique stable device identifier
	Name     string `json:"name" db:"name"`          // Display name, recorded on first sight only
	AuditFields
}
