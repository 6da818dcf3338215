package services

import (
	"context"

	"github.com/expenseflow/approval_backend/internal/core/domain"
	"github.com/expenseflow/approval_backend/internal/dto"
)

// RuleSvcFacade exposes administrative operations on approval rules.
type RuleSvcFacade interface {
	// CreateRule validates and persists a new approval rule with its sequence.
	CreateRule(ctx context.Context, companyID string, req dto.CreateApprovalRuleRequest, creatorUserID string) (*domain.ApprovalRule, error)

	// GetRuleByID retrieves a rule and its sequence.
	GetRuleByID(ctx context.Context, companyID string, ruleID string) (*domain.ApprovalRule, error)

	// ListRules retrieves a company's rules.
	ListRules(ctx context.Context, companyID string, includeInactive bool) ([]domain.ApprovalRule, error)

	// UpdateRule validates and replaces a rule's configuration.
	UpdateRule(ctx context.Context, companyID string, ruleID string, req dto.UpdateApprovalRuleRequest, updaterUserID string) (*domain.ApprovalRule, error)

	// DeactivateRule soft-deletes a rule; mid-flight expenses keep the rule
	// they captured at submission.
	DeactivateRule(ctx context.Context, companyID string, ruleID string, updaterUserID string) error
}
