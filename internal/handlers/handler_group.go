package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitloop/splitloop_backend/internal/apperrors"
	portssvc "github.com/splitloop/splitloop_backend/internal/core/ports/services"
	"github.com/splitloop/splitloop_backend/internal/dto"
	"github.com/splitloop/splitloop_backend/internal/middleware"
)

// groupHandler handles HTTP requests related to groups and admission.
type groupHandler struct {
	groupService portssvc.GroupSvcFacade
}

// newGroupHandler creates a new groupHandler.
func newGroupHandler(gs portssvc.GroupSvcFacade) *groupHandler {
	return &groupHandler{groupService: gs}
}

// registerGroupRoutes registers routes related to groups, admission and the
// group detail view. Expense routes nested under a group are registered by
// the expense handler.
func registerGroupRoutes(rg *gin.RouterGroup, groupService portssvc.GroupSvcFacade, expenseService portssvc.ExpenseSvcFacade) {
	h := newGroupHandler(groupService)

	groups := rg.Group("/groups")
	{
		groups.POST("", h.createGroup)
		groups.GET("", h.listUserGroups) // List groups the calling user belongs to
		groups.POST("/join", h.requestJoin)
	}

	groupSpecific := rg.Group("/groups/:group_id")
	{
		groupSpecific.GET("", h.getGroupDetail)
		groupSpecific.POST("/approve-join", h.approveJoin)

		registerGroupExpenseRoutes(groupSpecific, expenseService)
	}
}

// createGroup godoc
// @Summary Create a new group
// @Description Creates a new group with a fresh join code; the creator becomes the sole initial member.
// @Tags groups
// @Accept  json
// @Produce  json
// @Param   group body dto.CreateGroupRequest true "Group details"
// @Success 201 {object} dto.GroupResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 409 {object} ErrorResponse "Join code generation conflict"
// @Security BearerAuth
// @Router /groups [post]
func (h *groupHandler) createGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createGroup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	group, err := h.groupService.CreateGroup(c.Request.Context(), req.Name, creatorUserID)
	if err != nil {
		logger.Error("Failed to create group", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Could not allocate a join code, please retry"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create group"})
		}
		return
	}

	logger.Info("Group created", slog.String("group_id", group.GroupID))
	c.JSON(http.StatusCreated, dto.ToGroupResponse(group))
}

// listUserGroups godoc
// @Summary List groups for current user
// @Description Retrieves the groups the authenticated user is a member of.
// @Tags groups
// @Produce  json
// @Success 200 {object} dto.ListGroupsResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /groups [get]
func (h *groupHandler) listUserGroups(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	groups, err := h.groupService.ListUserGroups(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list user groups", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list groups"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListGroupsResponse(groups))
}

// getGroupDetail godoc
// @Summary Get group detail
// @Description Retrieves a group with members, pending join requests, expenses and balances.
// @Tags groups
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Success 200 {object} dto.GroupDetailResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not a member"
// @Failure 404 {object} ErrorResponse "Group not found"
// @Security BearerAuth
// @Router /groups/{group_id} [get]
func (h *groupHandler) getGroupDetail(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	detail, err := h.groupService.GetGroupDetail(c.Request.Context(), groupID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Group not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Failed to get group detail", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get group detail"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupDetailResponse(detail))
}

// requestJoin godoc
// @Summary Request to join a group
// @Description Redeems a join code into a pending join request awaiting member approval.
// @Tags groups
// @Accept  json
// @Produce  json
// @Param   request body dto.JoinGroupRequest true "Join code"
// @Success 202 {object} dto.JoinRequestResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Unknown join code"
// @Failure 409 {object} ErrorResponse "Already a member or already requested"
// @Security BearerAuth
// @Router /groups/join [post]
func (h *groupHandler) requestJoin(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.JoinGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for requestJoin", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	request, err := h.groupService.RequestJoin(c.Request.Context(), req.JoinCode, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Unknown join code"})
		case errors.Is(err, apperrors.ErrAlreadyMember):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Already a member of this group"})
		case errors.Is(err, apperrors.ErrAlreadyRequested):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Join request already pending"})
		default:
			logger.Error("Failed to request join", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to request join"})
		}
		return
	}

	logger.Info("Join requested", slog.String("group_id", request.GroupID), slog.String("user_id", userID))
	c.JSON(http.StatusAccepted, dto.JoinRequestResponse{
		UserID:      request.UserID,
		RequestedAt: request.RequestedAt,
	})
}

// approveJoin godoc
// @Summary Approve a join request
// @Description Promotes a pending join request to membership. Only current members may approve; a repeated approval is idempotent.
// @Tags groups
// @Accept  json
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   request body dto.ApproveJoinRequest true "Requestee"
// @Success 200 {object} dto.GroupResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Approver not a member"
// @Failure 404 {object} ErrorResponse "Group or request not found"
// @Security BearerAuth
// @Router /groups/{group_id}/approve-join [post]
func (h *groupHandler) approveJoin(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	var req dto.ApproveJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for approveJoin", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	approverID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	group, err := h.groupService.ApproveJoin(c.Request.Context(), groupID, approverID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Group or join request not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Failed to approve join", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to approve join"})
		}
		return
	}

	logger.Info("Join approved",
		slog.String("group_id", groupID),
		slog.String("requestee_id", req.UserID))
	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}
