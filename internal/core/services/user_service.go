package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/splitloop/splitloop_backend/internal/apperrors"
	"github.com/splitloop/splitloop_backend/internal/core/domain"
	portsrepo "github.com/splitloop/splitloop_backend/internal/core/ports/repositories"
	portssvc "github.com/splitloop/splitloop_backend/internal/core/ports/services"
)

// userService implements the identity registry: a stable device identifier
// maps to exactly one user record.
type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new user service with the provided dependencies.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

// Ensure userService implements the UserSvcFacade interface
var _ portssvc.UserSvcFacade = (*userService)(nil)

// Identify looks a user up by device identifier, creating the record on
// first sight. Creation races are resolved by the device_id uniqueness
// constraint, not a lock: when the insert loses the race the winner's
// record is re-read and returned, so two simultaneous first logins observe
// the same user.
func (s *userService) Identify(ctx context.Context, deviceID, displayName string) (*domain.User, error) {
	if deviceID == "" {
		return nil, apperrors.NewValidationFailedError("device identifier is required")
	}

	existing, err := s.userRepo.FindUserByDeviceID(ctx, deviceID)
	if err == nil {
		// Display name is recorded on first sight only; later calls with a
		// different name do not mutate the identity projection.
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up user by device identifier")
		return nil, err
	}

	now := time.Now()
	newUserID := uuid.NewString()
	user := domain.User{
		UserID:   newUserID,
		DeviceID: deviceID,
		Name:     displayName,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     newUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: newUserID,
		},
	}

	saveErr := s.userRepo.SaveUser(ctx, user)
	if saveErr == nil {
		s.LogInfo(ctx, "User created on first login", slog.String("user_id", user.UserID))
		return &user, nil
	}
	if !errors.Is(saveErr, apperrors.ErrDuplicate) {
		s.LogError(ctx, saveErr, "Failed to save user")
		return nil, saveErr
	}

	// Lost the first-login race; the other caller's record is authoritative.
	winner, err := s.userRepo.FindUserByDeviceID(ctx, deviceID)
	if err != nil {
		s.LogError(ctx, err, "Failed to re-read user after duplicate device identifier")
		return nil, fmt.Errorf("failed to resolve concurrent first login: %w", err)
	}
	return winner, nil
}

// GetUserByID retrieves a user by its ID.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find user by ID", slog.String("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}
