package services

import (
	"context"

	"github.com/splitloop/splitloop_backend/internal/core/domain"
)

// UserReaderSvc defines read operations for user data.
type UserReaderSvc interface {
	// GetUserByID retrieves a specific user by its ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// IdentityRegistrySvc defines the idempotent device-identity login.
type IdentityRegistrySvc interface {
	// Identify looks a user up by device identifier, creating the record on
	// first sight. The display name is recorded on first sight only;
	// subsequent calls with a different name do not mutate it. Two
	// simultaneous first logins for the same device identifier yield the
	// same user record.
	Identify(ctx context.Context, deviceID, displayName string) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces.
type UserSvcFacade interface {
	UserReaderSvc
	IdentityRegistrySvc
}
