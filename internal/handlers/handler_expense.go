package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/expenseflow/approval_backend/internal/apperrors"
	portssvc "github.com/expenseflow/approval_backend/internal/core/ports/services"
	"github.com/expenseflow/approval_backend/internal/core/services"
	"github.com/expenseflow/approval_backend/internal/dto"
	"github.com/expenseflow/approval_backend/internal/middleware"
)

// expenseHandler handles HTTP requests related to expenses and their
// approval workflow.
type expenseHandler struct {
	expenseService  portssvc.ExpenseSvcFacade
	approvalService portssvc.ApprovalSvcFacade
}

// newExpenseHandler creates a new expenseHandler.
func newExpenseHandler(es portssvc.ExpenseSvcFacade, as portssvc.ApprovalSvcFacade) *expenseHandler {
	return &expenseHandler{expenseService: es, approvalService: as}
}

// registerExpenseRoutes registers all expense routes under a company scope.
func registerExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade, approvalService portssvc.ApprovalSvcFacade) {
	h := newExpenseHandler(expenseService, approvalService)

	expenses := rg.Group("/companies/:companyID/expenses")
	{
		expenses.POST("", h.createExpense)
		expenses.GET("", h.listExpenses)
		expenses.GET("/:expenseID", h.getExpense)
		expenses.POST("/:expenseID/submit", h.submitExpense)
		expenses.POST("/:expenseID/approve", h.approveExpense)
		expenses.POST("/:expenseID/reject", h.rejectExpense)
		expenses.GET("/:expenseID/progress", h.getApprovalProgress)
	}
}

// respondWorkflowError maps approval workflow errors to HTTP responses.
// Invalid lifecycle transitions surface as conflicts, a missing rule as an
// unprocessable request, and acting out of turn as forbidden.
func respondWorkflowError(c *gin.Context, err error, logger *slog.Logger) {
	switch {
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrNotAwaitingApproval):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrNoRuleDefined):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrNotCurrentApprover):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Expense not found"})
	default:
		logger.Error("Workflow service call failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

// createExpense godoc
// @Summary Create a draft expense
// @Description Creates a new expense in DRAFT status for the authenticated requester
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   expense body dto.CreateExpenseRequest true "Expense details"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to create expense"
// @Security BearerAuth
// @Router /companies/{companyID}/expenses [post]
func (h *expenseHandler) createExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	requesterID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), companyID, req, requesterID)
	if err != nil {
		respondWorkflowError(c, err, logger)
		return
	}

	logger.Info("Expense created", slog.String("expense_id", expense.ExpenseID))
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense))
}

// listExpenses godoc
// @Summary List expenses
// @Description Retrieves a company's expenses, newest first
// @Tags expenses
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {array} dto.ExpenseResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to list expenses"
// @Security BearerAuth
// @Router /companies/{companyID}/expenses [get]
func (h *expenseHandler) listExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	expenses, err := h.expenseService.ListExpenses(c.Request.Context(), companyID, params)
	if err != nil {
		logger.Error("Failed to list expenses from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list expenses"})
		return
	}

	c.JSON(http.StatusOK, dto.ToExpenseResponses(expenses))
}

// getExpense godoc
// @Summary Get an expense
// @Description Retrieves an expense with its approval lines
// @Tags expenses
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   expenseID path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Expense not found"
// @Failure 500 {object} ErrorResponse "Failed to retrieve expense"
// @Security BearerAuth
// @Router /companies/{companyID}/expenses/{expenseID} [get]
func (h *expenseHandler) getExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	expenseID := c.Param("expenseID")

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), companyID, expenseID)
	if err != nil {
		respondWorkflowError(c, err, logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// submitExpense godoc
// @Summary Submit an expense for approval
// @Description Moves a DRAFT expense to SUBMITTED, binds the applicable rule and generates the approval lines
// @Tags workflow
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   expenseID path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Expense not found"
// @Failure 409 {object} ErrorResponse "Expense is not in DRAFT"
// @Failure 422 {object} ErrorResponse "No approval rule defined for the company"
// @Failure 500 {object} ErrorResponse "Failed to submit expense"
// @Security BearerAuth
// @Router /companies/{companyID}/expenses/{expenseID}/submit [post]
func (h *expenseHandler) submitExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	expenseID := c.Param("expenseID")

	actingUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.approvalService.SubmitExpense(c.Request.Context(), companyID, expenseID, actingUserID); err != nil {
		respondWorkflowError(c, err, logger)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), companyID, expenseID)
	if err != nil {
		respondWorkflowError(c, err, logger)
		return
	}

	logger.Info("Expense submitted", slog.String("expense_id", expenseID))
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// approveExpense godoc
// @Summary Approve an expense
// @Description Records the acting user's approval and advances or completes the workflow
// @Tags workflow
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   expenseID path string true "Expense ID"
// @Param   decision body dto.ApprovalDecisionRequest false "Optional comment"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not the current approver"
// @Failure 404 {object} ErrorResponse "Expense not found"
// @Failure 409 {object} ErrorResponse "Expense is not awaiting approval"
// @Failure 500 {object} ErrorResponse "Failed to approve expense"
// @Security BearerAuth
// @Router /companies/{companyID}/expenses/{expenseID}/approve [post]
func (h *expenseHandler) approveExpense(c *gin.Context) {
	h.decideExpense(c, h.approvalService.ApproveExpense)
}

// rejectExpense godoc
// @Summary Reject an expense
// @Description Records the acting user's rejection; a single rejection refuses the expense
// @Tags workflow
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   expenseID path string true "Expense ID"
// @Param   decision body dto.ApprovalDecisionRequest false "Optional comment"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Not the current approver"
// @Failure 404 {object} ErrorResponse "Expense not found"
// @Failure 409 {object} ErrorResponse "Expense is not awaiting approval"
// @Failure 500 {object} ErrorResponse "Failed to reject expense"
// @Security BearerAuth
// @Router /companies/{companyID}/expenses/{expenseID}/reject [post]
func (h *expenseHandler) rejectExpense(c *gin.Context) {
	h.decideExpense(c, h.approvalService.RejectExpense)
}

type decisionFunc func(ctx context.Context, companyID string, expenseID string, actingUserID string, req dto.ApprovalDecisionRequest) error

// decideExpense is the shared request plumbing for approve and reject.
func (h *expenseHandler) decideExpense(c *gin.Context, decide decisionFunc) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	expenseID := c.Param("expenseID")

	var req dto.ApprovalDecisionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
			return
		}
	}

	actingUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := decide(c.Request.Context(), companyID, expenseID, actingUserID, req); err != nil {
		respondWorkflowError(c, err, logger)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), companyID, expenseID)
	if err != nil {
		respondWorkflowError(c, err, logger)
		return
	}

	logger.Info("Approval decision recorded", slog.String("expense_id", expenseID), slog.String("status", string(expense.Status)))
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// getApprovalProgress godoc
// @Summary Get approval progress
// @Description Returns the approved percentage of the expense's current line set
// @Tags workflow
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   expenseID path string true "Expense ID"
// @Success 200 {object} dto.ApprovalProgressResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Expense not found"
// @Failure 500 {object} ErrorResponse "Failed to compute progress"
// @Security BearerAuth
// @Router /companies/{companyID}/expenses/{expenseID}/progress [get]
func (h *expenseHandler) getApprovalProgress(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	expenseID := c.Param("expenseID")

	progress, err := h.approvalService.GetApprovalProgress(c.Request.Context(), companyID, expenseID)
	if err != nil {
		respondWorkflowError(c, err, logger)
		return
	}

	c.JSON(http.StatusOK, dto.ApprovalProgressResponse{ExpenseID: expenseID, Progress: progress})
}
