package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/splitloop/splitloop_backend/internal/apperrors"
	portssvc "github.com/splitloop/splitloop_backend/internal/core/ports/services"
	"github.com/splitloop/splitloop_backend/internal/dto"
	"github.com/splitloop/splitloop_backend/internal/middleware"
)

const defaultExpensePageSize = 50

// expenseHandler handles HTTP requests related to the expense ledger.
type expenseHandler struct {
	expenseService portssvc.ExpenseSvcFacade
}

// newExpenseHandler creates a new expenseHandler.
func newExpenseHandler(es portssvc.ExpenseSvcFacade) *expenseHandler {
	return &expenseHandler{expenseService: es}
}

// registerGroupExpenseRoutes registers expense routes nested under a
// specific group.
func registerGroupExpenseRoutes(groupSpecific *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade) {
	h := newExpenseHandler(expenseService)

	expenses := groupSpecific.Group("/expenses")
	{
		expenses.POST("", h.addExpense)
		expenses.GET("", h.listGroupExpenses)
	}
}

// registerExpenseRoutes registers routes addressing an expense directly.
func registerExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade) {
	h := newExpenseHandler(expenseService)

	expenses := rg.Group("/expenses/:expense_id")
	{
		expenses.POST("/approve", h.approveExpense)
	}
}

// addExpense godoc
// @Summary Add an expense
// @Description Creates an expense for a group; the submitter's action counts as the first approval.
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   expense body dto.AddExpenseRequest true "Expense details"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Submitter not a member"
// @Failure 404 {object} ErrorResponse "Group not found"
// @Security BearerAuth
// @Router /groups/{group_id}/expenses [post]
func (h *expenseHandler) addExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	var req dto.AddExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for addExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	expense, err := h.expenseService.AddExpense(c.Request.Context(), groupID, userID, req.Description, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Group not found"})
		default:
			logger.Error("Failed to add expense", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to add expense"})
		}
		return
	}

	logger.Info("Expense added",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("group_id", groupID))
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense))
}

// listGroupExpenses godoc
// @Summary List group expenses
// @Description Retrieves a page of a group's expenses, newest first.
// @Tags expenses
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Pagination cursor"
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Requester not a member"
// @Security BearerAuth
// @Router /groups/{group_id}/expenses [get]
func (h *expenseHandler) listGroupExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	limit := defaultExpensePageSize
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit"})
			return
		}
		limit = parsed
	}

	var nextToken *string
	if token := c.Query("nextToken"); token != "" {
		nextToken = &token
	}

	expenses, token, err := h.expenseService.ListGroupExpenses(c.Request.Context(), groupID, userID, limit, nextToken)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to list expenses", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list expenses"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToListExpensesResponse(expenses, token))
}

// approveExpense godoc
// @Summary Approve an expense
// @Description Records the caller's approval; the expense is stamped approved when quorum is first reached. Repeated approvals are idempotent.
// @Tags expenses
// @Produce  json
// @Param   expense_id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Approver not a member"
// @Failure 404 {object} ErrorResponse "Expense not found"
// @Security BearerAuth
// @Router /expenses/{expense_id}/approve [post]
func (h *expenseHandler) approveExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	expenseID := c.Param("expense_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	expense, err := h.expenseService.ApproveExpense(c.Request.Context(), expenseID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Expense not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Failed to approve expense", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to approve expense"})
		}
		return
	}

	logger.Info("Expense approval processed",
		slog.String("expense_id", expenseID),
		slog.Bool("approved", expense.IsApproved()))
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}
