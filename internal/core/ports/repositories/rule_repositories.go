package repositories

import (
	"context"

	"github.com/expenseflow/approval_backend/internal/core/domain"
)

// RuleReader defines read operations for approval rule configuration.
// Rules are always loaded together with their approver sequence entries.
type RuleReader interface {
	// FindRuleByID retrieves a rule and its sequence by rule ID.
	FindRuleByID(ctx context.Context, ruleID string) (*domain.ApprovalRule, error)

	// FindFirstActiveRuleForCompany retrieves the active rule with the lowest
	// rule ID for a company. Returns apperrors.ErrNotFound when the company
	// has no active rule.
	FindFirstActiveRuleForCompany(ctx context.Context, companyID string) (*domain.ApprovalRule, error)

	// ListRulesByCompany retrieves a company's rules, active ones only unless
	// includeInactive is set.
	ListRulesByCompany(ctx context.Context, companyID string, includeInactive bool) ([]domain.ApprovalRule, error)
}

// RuleWriter defines write operations for approval rule configuration.
type RuleWriter interface {
	// SaveRule persists a rule and its sequence entries atomically.
	SaveRule(ctx context.Context, rule domain.ApprovalRule) error

	// UpdateRule replaces a rule's mutable fields and its full sequence
	// atomically.
	UpdateRule(ctx context.Context, rule domain.ApprovalRule) error

	// DeactivateRule soft-deletes a rule by clearing its active flag.
	DeactivateRule(ctx context.Context, ruleID string, updatedByUserID string) error
}

// RuleRepository combines all rule repository interfaces.
type RuleRepository interface {
	RuleReader
	RuleWriter
}
