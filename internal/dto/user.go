package dto

import (
	"time"

	"github.com/splitloop/splitloop_backend/internal/core/domain"
)

// --- User DTOs ---

// LoginRequest defines the device-identity login payload.
type LoginRequest struct {
	DeviceID   string `json:"deviceID" binding:"required"`
	DeviceName string `json:"deviceName" binding:"required"`
}

// UserResponse defines data returned for a user.
type UserResponse struct {
	UserID    string    `json:"userID"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginResponse defines the login result: the identified user and an
// access token for subsequent calls.
type LoginResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
}

// ToUserResponse converts domain.User to DTO. The device identifier is
// deliberately not echoed back.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}
