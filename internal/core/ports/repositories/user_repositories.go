package repositories

import (
	"context"

	"github.com/splitloop/splitloop_backend/internal/core/domain"
)

// UserReader defines read operations for user data.
type UserReader interface {
	// FindUserByID retrieves a specific user by its ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByDeviceID retrieves a user by its unique device identifier.
	FindUserByDeviceID(ctx context.Context, deviceID string) (*domain.User, error)
}

// UserWriter defines write operations for user data.
type UserWriter interface {
	// SaveUser persists a new user. Returns an error satisfying
	// errors.Is(err, apperrors.ErrDuplicate) when the device identifier is
	// already registered; the uniqueness constraint on device_id is what
	// makes first-login creation race-safe.
	SaveUser(ctx context.Context, user domain.User) error
}

// UserRepositoryFacade combines all user-related repository interfaces.
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
