package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/expenseflow/approval_backend/internal/apperrors"
	portssvc "github.com/expenseflow/approval_backend/internal/core/ports/services"
	"github.com/expenseflow/approval_backend/internal/dto"
	"github.com/expenseflow/approval_backend/internal/middleware"
)

// ruleHandler handles HTTP requests related to approval rules.
type ruleHandler struct {
	ruleService portssvc.RuleSvcFacade
}

// newRuleHandler creates a new ruleHandler.
func newRuleHandler(rs portssvc.RuleSvcFacade) *ruleHandler {
	return &ruleHandler{ruleService: rs}
}

// registerRuleRoutes registers all approval rule routes under a company scope.
func registerRuleRoutes(rg *gin.RouterGroup, ruleService portssvc.RuleSvcFacade) {
	h := newRuleHandler(ruleService)

	rules := rg.Group("/companies/:companyID/rules")
	{
		rules.POST("", h.createRule)
		rules.GET("", h.listRules)
		rules.GET("/:ruleID", h.getRule)
		rules.PUT("/:ruleID", h.updateRule)
		rules.DELETE("/:ruleID", h.deactivateRule)
	}
}

// respondRuleError maps rule service errors to HTTP responses.
func respondRuleError(c *gin.Context, err error, logger *slog.Logger) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Rule not found"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		logger.Error("Rule service call failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

// createRule godoc
// @Summary Create an approval rule
// @Description Creates an approval rule with its ordered approver sequence
// @Tags rules
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   rule body dto.CreateApprovalRuleRequest true "Rule details"
// @Success 201 {object} dto.ApprovalRuleResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to create rule"
// @Security BearerAuth
// @Router /companies/{companyID}/rules [post]
func (h *ruleHandler) createRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.CreateApprovalRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	rule, err := h.ruleService.CreateRule(c.Request.Context(), companyID, req, creatorUserID)
	if err != nil {
		respondRuleError(c, err, logger)
		return
	}

	logger.Info("Approval rule created", slog.String("rule_id", rule.RuleID))
	c.JSON(http.StatusCreated, dto.ToApprovalRuleResponse(rule))
}

// listRules godoc
// @Summary List approval rules
// @Description Retrieves a company's approval rules
// @Tags rules
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   includeInactive query bool false "Include deactivated rules" default(false)
// @Success 200 {array} dto.ApprovalRuleResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to list rules"
// @Security BearerAuth
// @Router /companies/{companyID}/rules [get]
func (h *ruleHandler) listRules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("includeInactive", "false"))

	rules, err := h.ruleService.ListRules(c.Request.Context(), companyID, includeInactive)
	if err != nil {
		respondRuleError(c, err, logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToApprovalRuleResponses(rules))
}

// getRule godoc
// @Summary Get an approval rule
// @Description Retrieves an approval rule and its approver sequence
// @Tags rules
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   ruleID path string true "Rule ID"
// @Success 200 {object} dto.ApprovalRuleResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Rule not found"
// @Failure 500 {object} ErrorResponse "Failed to retrieve rule"
// @Security BearerAuth
// @Router /companies/{companyID}/rules/{ruleID} [get]
func (h *ruleHandler) getRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	ruleID := c.Param("ruleID")

	rule, err := h.ruleService.GetRuleByID(c.Request.Context(), companyID, ruleID)
	if err != nil {
		respondRuleError(c, err, logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToApprovalRuleResponse(rule))
}

// updateRule godoc
// @Summary Update an approval rule
// @Description Updates a rule's configuration; a provided sequence replaces the full sequence
// @Tags rules
// @Accept  json
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   ruleID path string true "Rule ID"
// @Param   rule body dto.UpdateApprovalRuleRequest true "Fields to update"
// @Success 200 {object} dto.ApprovalRuleResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Rule not found"
// @Failure 500 {object} ErrorResponse "Failed to update rule"
// @Security BearerAuth
// @Router /companies/{companyID}/rules/{ruleID} [put]
func (h *ruleHandler) updateRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	ruleID := c.Param("ruleID")

	var req dto.UpdateApprovalRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	updaterUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	rule, err := h.ruleService.UpdateRule(c.Request.Context(), companyID, ruleID, req, updaterUserID)
	if err != nil {
		respondRuleError(c, err, logger)
		return
	}

	logger.Info("Approval rule updated", slog.String("rule_id", ruleID))
	c.JSON(http.StatusOK, dto.ToApprovalRuleResponse(rule))
}

// deactivateRule godoc
// @Summary Deactivate an approval rule
// @Description Soft-deletes a rule; expenses that already captured it keep approving against it
// @Tags rules
// @Produce  json
// @Param   companyID path string true "Company ID"
// @Param   ruleID path string true "Rule ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Rule not found"
// @Failure 500 {object} ErrorResponse "Failed to deactivate rule"
// @Security BearerAuth
// @Router /companies/{companyID}/rules/{ruleID} [delete]
func (h *ruleHandler) deactivateRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	ruleID := c.Param("ruleID")

	updaterUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.ruleService.DeactivateRule(c.Request.Context(), companyID, ruleID, updaterUserID); err != nil {
		respondRuleError(c, err, logger)
		return
	}

	logger.Info("Approval rule deactivated", slog.String("rule_id", ruleID))
	c.Status(http.StatusNoContent)
}
