package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/splitloop/splitloop_backend/internal/apperrors"
	"github.com/splitloop/splitloop_backend/internal/core/domain"
	portssvc "github.com/splitloop/splitloop_backend/internal/core/ports/services"
	"github.com/splitloop/splitloop_backend/internal/dto"
	"github.com/splitloop/splitloop_backend/internal/handlers"
	"github.com/splitloop/splitloop_backend/internal/platform/config"
)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) Identify(ctx context.Context, deviceID, displayName string) (*domain.User, error) {
	args := m.Called(ctx, deviceID, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Mock GroupService ---
type MockGroupService struct {
	mock.Mock
}

func (m *MockGroupService) FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupService) ListUserGroups(ctx context.Context, userID string) ([]domain.Group, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Group), args.Error(1)
}

func (m *MockGroupService) GetGroupDetail(ctx context.Context, groupID, requesterID string) (*domain.GroupDetail, error) {
	args := m.Called(ctx, groupID, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupDetail), args.Error(1)
}

func (m *MockGroupService) CreateGroup(ctx context.Context, name, creatorUserID string) (*domain.Group, error) {
	args := m.Called(ctx, name, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupService) RequestJoin(ctx context.Context, joinCode, userID string) (*domain.JoinRequest, error) {
	args := m.Called(ctx, joinCode, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JoinRequest), args.Error(1)
}

func (m *MockGroupService) ApproveJoin(ctx context.Context, groupID, approverID, requesteeID string) (*domain.Group, error) {
	args := m.Called(ctx, groupID, approverID, requesteeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupService) AuthorizeMember(ctx context.Context, userID, groupID string) error {
	args := m.Called(ctx, userID, groupID)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.GroupSvcFacade = (*MockGroupService)(nil)

// --- Mock ExpenseService ---
type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) AddExpense(ctx context.Context, groupID, addedBy, description string, amount decimal.Decimal) (*domain.Expense, error) {
	args := m.Called(ctx, groupID, addedBy, description, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseService) ApproveExpense(ctx context.Context, expenseID, approverID string) (*domain.Expense, error) {
	args := m.Called(ctx, expenseID, approverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseService) GetExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseService) ListGroupExpenses(ctx context.Context, groupID, requesterID string, limit int, nextToken *string) ([]domain.Expense, *string, error) {
	args := m.Called(ctx, groupID, requesterID, limit, nextToken)
	var expenses []domain.Expense
	if args.Get(0) != nil {
		expenses = args.Get(0).([]domain.Expense)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return expenses, token, args.Error(2)
}

// Ensure mock implements the interface
var _ portssvc.ExpenseSvcFacade = (*MockExpenseService)(nil)

// --- Test Suite ---
type GroupHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockUserService    *MockUserService
	mockGroupService   *MockGroupService
	mockExpenseService *MockExpenseService
	jwtSecret          string
}

// generateTestToken creates a dummy JWT for testing.
func (suite *GroupHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "splitloop-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedString, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signedString
}

func (suite *GroupHandlerTestSuite) performRequest(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		err := json.NewEncoder(&buf).Encode(body)
		suite.Require().NoError(err)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *GroupHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockUserService = new(MockUserService)
	suite.mockGroupService = new(MockGroupService)
	suite.mockExpenseService = new(MockExpenseService)

	cfg := &config.Config{
		JWTSecret:         suite.jwtSecret,
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "splitloop-test",
		LoginRateLimit:    "100-M",
	}
	services := &portssvc.ServiceContainer{
		User:    suite.mockUserService,
		Group:   suite.mockGroupService,
		Expense: suite.mockExpenseService,
	}
	handlers.RegisterRoutes(suite.router, cfg, services)
}

// --- Test Cases ---

func (suite *GroupHandlerTestSuite) TestCreateGroup_Success() {
	userID := uuid.NewString()
	token := suite.generateTestToken(userID)
	group := &domain.Group{
		GroupID:  uuid.NewString(),
		Name:     "Trip",
		JoinCode: "AB12CD",
		IsActive: true,
	}

	suite.mockGroupService.On("CreateGroup", mock.Anything, "Trip", userID).Return(group, nil).Once()

	w := suite.performRequest(http.MethodPost, "/api/v1/groups", token, dto.CreateGroupRequest{Name: "Trip"})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.GroupResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(group.GroupID, resp.GroupID)
	suite.Equal("AB12CD", resp.JoinCode)
	suite.mockGroupService.AssertExpectations(suite.T())
}

func (suite *GroupHandlerTestSuite) TestCreateGroup_Unauthorized() {
	w := suite.performRequest(http.MethodPost, "/api/v1/groups", "", dto.CreateGroupRequest{Name: "Trip"})

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockGroupService.AssertNotCalled(suite.T(), "CreateGroup", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *GroupHandlerTestSuite) TestCreateGroup_MissingName() {
	token := suite.generateTestToken(uuid.NewString())

	w := suite.performRequest(http.MethodPost, "/api/v1/groups", token, map[string]string{})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockGroupService.AssertNotCalled(suite.T(), "CreateGroup", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *GroupHandlerTestSuite) TestRequestJoin_Accepted() {
	userID := uuid.NewString()
	token := suite.generateTestToken(userID)
	request := &domain.JoinRequest{
		GroupID:     uuid.NewString(),
		UserID:      userID,
		RequestedAt: time.Now(),
	}

	suite.mockGroupService.On("RequestJoin", mock.Anything, "AB12CD", userID).Return(request, nil).Once()

	w := suite.performRequest(http.MethodPost, "/api/v1/groups/join", token, dto.JoinGroupRequest{JoinCode: "AB12CD"})

	suite.Equal(http.StatusAccepted, w.Code)
	suite.mockGroupService.AssertExpectations(suite.T())
}

func (suite *GroupHandlerTestSuite) TestRequestJoin_BadJoinCodeFormat() {
	token := suite.generateTestToken(uuid.NewString())

	// Join codes are exactly six alphanumeric characters.
	w := suite.performRequest(http.MethodPost, "/api/v1/groups/join", token, dto.JoinGroupRequest{JoinCode: "abc"})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockGroupService.AssertNotCalled(suite.T(), "RequestJoin", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *GroupHandlerTestSuite) TestRequestJoin_AlreadyRequestedConflict() {
	userID := uuid.NewString()
	token := suite.generateTestToken(userID)

	suite.mockGroupService.On("RequestJoin", mock.Anything, "AB12CD", userID).
		Return(nil, apperrors.NewAppError(409, "join request already pending", apperrors.ErrAlreadyRequested)).Once()

	w := suite.performRequest(http.MethodPost, "/api/v1/groups/join", token, dto.JoinGroupRequest{JoinCode: "AB12CD"})

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockGroupService.AssertExpectations(suite.T())
}

func (suite *GroupHandlerTestSuite) TestApproveJoin_Success() {
	approverID := uuid.NewString()
	requesteeID := uuid.NewString()
	token := suite.generateTestToken(approverID)
	group := &domain.Group{GroupID: uuid.NewString(), Name: "Trip"}

	suite.mockGroupService.On("ApproveJoin", mock.Anything, group.GroupID, approverID, requesteeID).
		Return(group, nil).Once()

	w := suite.performRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/groups/%s/approve-join", group.GroupID),
		token, dto.ApproveJoinRequest{UserID: requesteeID})

	suite.Equal(http.StatusOK, w.Code)
	suite.mockGroupService.AssertExpectations(suite.T())
}

func (suite *GroupHandlerTestSuite) TestApproveJoin_Forbidden() {
	approverID := uuid.NewString()
	token := suite.generateTestToken(approverID)
	groupID := uuid.NewString()

	suite.mockGroupService.On("ApproveJoin", mock.Anything, groupID, approverID, mock.Anything).
		Return(nil, apperrors.NewForbiddenError("user is not a member of the group")).Once()

	w := suite.performRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/groups/%s/approve-join", groupID),
		token, dto.ApproveJoinRequest{UserID: uuid.NewString()})

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockGroupService.AssertExpectations(suite.T())
}

func (suite *GroupHandlerTestSuite) TestGetGroupDetail_Success() {
	userID := uuid.NewString()
	token := suite.generateTestToken(userID)
	groupID := uuid.NewString()
	detail := &domain.GroupDetail{
		Group:        domain.Group{GroupID: groupID, Name: "Trip"},
		Members:      []domain.GroupMember{{GroupID: groupID, UserID: userID, UserName: "Alice"}},
		JoinRequests: []domain.JoinRequest{},
		Expenses:     []domain.Expense{},
		Balances: []domain.MemberBalance{
			{UserID: userID, Net: decimal.Zero},
		},
	}

	suite.mockGroupService.On("GetGroupDetail", mock.Anything, groupID, userID).Return(detail, nil).Once()

	w := suite.performRequest(http.MethodGet, "/api/v1/groups/"+groupID, token, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.GroupDetailResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(groupID, resp.Group.GroupID)
	suite.Require().Len(resp.Balances, 1)
	suite.Equal("0.00", resp.Balances[0].Net)
	suite.mockGroupService.AssertExpectations(suite.T())
}

func (suite *GroupHandlerTestSuite) TestGetGroupDetail_NotFound() {
	userID := uuid.NewString()
	token := suite.generateTestToken(userID)
	groupID := uuid.NewString()

	suite.mockGroupService.On("GetGroupDetail", mock.Anything, groupID, userID).
		Return(nil, apperrors.NewNotFoundError("group not found")).Once()

	w := suite.performRequest(http.MethodGet, "/api/v1/groups/"+groupID, token, nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockGroupService.AssertExpectations(suite.T())
}

func (suite *GroupHandlerTestSuite) TestListUserGroups_Success() {
	userID := uuid.NewString()
	token := suite.generateTestToken(userID)
	groups := []domain.Group{
		{GroupID: uuid.NewString(), Name: "Trip"},
		{GroupID: uuid.NewString(), Name: "Flat"},
	}

	suite.mockGroupService.On("ListUserGroups", mock.Anything, userID).Return(groups, nil).Once()

	w := suite.performRequest(http.MethodGet, "/api/v1/groups", token, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListGroupsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Groups, 2)
	suite.mockGroupService.AssertExpectations(suite.T())
}

func (suite *GroupHandlerTestSuite) TestAddExpense_Success() {
	userID := uuid.NewString()
	token := suite.generateTestToken(userID)
	groupID := uuid.NewString()
	amount := decimal.RequireFromString("42.50")
	expense := &domain.Expense{
		ExpenseID:   uuid.NewString(),
		GroupID:     groupID,
		AddedBy:     userID,
		Description: "Dinner",
		Amount:      amount,
		Approvals:   []string{userID},
	}

	suite.mockExpenseService.On("AddExpense", mock.Anything, groupID, userID, "Dinner",
		mock.MatchedBy(func(a decimal.Decimal) bool { return amount.Equal(a) }),
	).Return(expense, nil).Once()

	w := suite.performRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/groups/%s/expenses", groupID),
		token, dto.AddExpenseRequest{Description: "Dinner", Amount: amount})

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.ExpenseResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("42.50", resp.Amount)
	suite.Equal([]string{userID}, resp.Approvals)
	suite.False(resp.Approved)
	suite.mockExpenseService.AssertExpectations(suite.T())
}

func (suite *GroupHandlerTestSuite) TestApproveExpense_Success() {
	approverID := uuid.NewString()
	token := suite.generateTestToken(approverID)
	expenseID := uuid.NewString()
	approvedAt := time.Now()
	expense := &domain.Expense{
		ExpenseID:  expenseID,
		GroupID:    uuid.NewString(),
		Approvals:  []string{uuid.NewString(), approverID},
		ApprovedAt: &approvedAt,
		Amount:     decimal.RequireFromString("10.00"),
	}

	suite.mockExpenseService.On("ApproveExpense", mock.Anything, expenseID, approverID).
		Return(expense, nil).Once()

	w := suite.performRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/expenses/%s/approve", expenseID), token, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ExpenseResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.Approved)
	suite.mockExpenseService.AssertExpectations(suite.T())
}

func (suite *GroupHandlerTestSuite) TestListGroupExpenses_PassesPagination() {
	userID := uuid.NewString()
	token := suite.generateTestToken(userID)
	groupID := uuid.NewString()
	cursor := "cursor-in"
	next := "cursor-out"

	suite.mockExpenseService.On("ListGroupExpenses", mock.Anything, groupID, userID, 25,
		mock.MatchedBy(func(t *string) bool { return t != nil && *t == cursor }),
	).Return([]domain.Expense{}, &next, nil).Once()

	w := suite.performRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/groups/%s/expenses?limit=25&nextToken=%s", groupID, cursor),
		token, nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListExpensesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(next, *resp.NextToken)
	suite.mockExpenseService.AssertExpectations(suite.T())
}

func TestGroupHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GroupHandlerTestSuite))
}
