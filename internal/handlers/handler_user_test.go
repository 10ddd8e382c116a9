package handlers_test

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/splitloop/splitloop_backend/internal/apperrors"
	"github.com/splitloop/splitloop_backend/internal/core/domain"
	"github.com/splitloop/splitloop_backend/internal/dto"
)

// User-route cases on the shared handler suite.

func (suite *GroupHandlerTestSuite) TestGetCurrentUser_Success() {
	userID := uuid.NewString()
	token := suite.generateTestToken(userID)
	user := &domain.User{
		UserID:   userID,
		DeviceID: "device-abc",
		Name:     "Alice's Phone",
		AuditFields: domain.AuditFields{
			CreatedAt: time.Now(),
		},
	}
	suite.mockUserService.On("GetUserByID", mock.Anything, userID).Return(user, nil).Once()

	w := suite.performRequest(http.MethodGet, "/api/v1/users/me", token, nil)

	suite.Require().Equal(http.StatusOK, w.Code)
	var resp dto.UserResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(userID, resp.UserID)
	suite.Equal("Alice's Phone", resp.Name)
	suite.mockUserService.AssertExpectations(suite.T())
}

func (suite *GroupHandlerTestSuite) TestGetCurrentUser_Unauthorized() {
	w := suite.performRequest(http.MethodGet, "/api/v1/users/me", "", nil)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockUserService.AssertNotCalled(suite.T(), "GetUserByID", mock.Anything, mock.Anything)
}

func (suite *GroupHandlerTestSuite) TestGetCurrentUser_NotFound() {
	userID := uuid.NewString()
	token := suite.generateTestToken(userID)
	suite.mockUserService.On("GetUserByID", mock.Anything, userID).
		Return(nil, apperrors.NewNotFoundError("user not found")).Once()

	w := suite.performRequest(http.MethodGet, "/api/v1/users/me", token, nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockUserService.AssertExpectations(suite.T())
}
