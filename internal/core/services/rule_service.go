package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/expenseflow/approval_backend/internal/apperrors"
	"github.com/expenseflow/approval_backend/internal/core/domain"
	portsrepo "github.com/expenseflow/approval_backend/internal/core/ports/repositories"
	portssvc "github.com/expenseflow/approval_backend/internal/core/ports/services"
	"github.com/expenseflow/approval_backend/internal/dto"
	"github.com/expenseflow/approval_backend/internal/middleware"
)

// defaultPercentageThreshold applies when a rule is created without an
// explicit threshold.
const defaultPercentageThreshold = 60.0

// ruleService provides administrative operations on approval rules. The
// workflow engine only ever reads rules; all mutation goes through here.
type ruleService struct {
	ruleRepo    portsrepo.RuleRepository
	userRepo    portsrepo.UserReader
	companyRepo portsrepo.CompanyRepository
}

// NewRuleService creates a new RuleService.
func NewRuleService(ruleRepo portsrepo.RuleRepository, userRepo portsrepo.UserReader, companyRepo portsrepo.CompanyRepository) portssvc.RuleSvcFacade {
	return &ruleService{
		ruleRepo:    ruleRepo,
		userRepo:    userRepo,
		companyRepo: companyRepo,
	}
}

var _ portssvc.RuleSvcFacade = (*ruleService)(nil)

// validateApprovers checks that every referenced approver exists and is
// eligible to approve expenses.
func (s *ruleService) validateApprovers(ctx context.Context, rule *domain.ApprovalRule) error {
	approverIDs := make([]string, 0, len(rule.Sequence)+1)
	for _, entry := range rule.Sequence {
		approverIDs = append(approverIDs, entry.ApproverID)
	}
	if rule.SpecificApproverID != nil {
		approverIDs = append(approverIDs, *rule.SpecificApproverID)
	}
	if len(approverIDs) == 0 {
		return nil
	}

	users, err := s.userRepo.FindUsersByIDs(ctx, approverIDs)
	if err != nil {
		return fmt.Errorf("failed to look up approvers: %w", err)
	}
	for _, id := range approverIDs {
		user, ok := users[id]
		if !ok {
			return fmt.Errorf("%w: approver %s does not exist", apperrors.ErrValidation, id)
		}
		if !user.CanApproveExpenses() {
			return fmt.Errorf("%w: user %s cannot approve expenses", apperrors.ErrValidation, id)
		}
	}
	return nil
}

// CreateRule implements portssvc.RuleSvcFacade.
func (s *ruleService) CreateRule(ctx context.Context, companyID string, req dto.CreateApprovalRuleRequest, creatorUserID string) (*domain.ApprovalRule, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.companyRepo.FindCompanyByID(ctx, companyID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("company %s: %w", companyID, err)
		}
		return nil, fmt.Errorf("failed to look up company %s: %w", companyID, err)
	}

	threshold := defaultPercentageThreshold
	if req.PercentageThreshold != nil {
		threshold = *req.PercentageThreshold
	}

	now := time.Now().UTC()
	ruleID := uuid.NewString()

	sequence := make([]domain.ApproverSequenceEntry, len(req.Sequence))
	for i, entry := range req.Sequence {
		sequence[i] = domain.ApproverSequenceEntry{
			EntryID:    uuid.NewString(),
			RuleID:     ruleID,
			ApproverID: entry.ApproverID,
			Rank:       entry.Rank,
		}
	}

	rule := domain.ApprovalRule{
		RuleID:              ruleID,
		Name:                req.Name,
		CompanyID:           companyID,
		Sequence:            sequence,
		PercentageThreshold: threshold,
		SpecificApproverID:  req.SpecificApproverID,
		Hybrid:              req.Hybrid,
		Active:              true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateApprovers(ctx, &rule); err != nil {
		return nil, err
	}

	if err := s.ruleRepo.SaveRule(ctx, rule); err != nil {
		logger.Error("Failed to save approval rule", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to save approval rule: %w", err)
	}

	logger.Info("Approval rule created", slog.String("rule_id", rule.RuleID), slog.String("company_id", companyID))
	return &rule, nil
}

// getRuleForCompany loads a rule and verifies company ownership.
func (s *ruleService) getRuleForCompany(ctx context.Context, companyID string, ruleID string) (*domain.ApprovalRule, error) {
	rule, err := s.ruleRepo.FindRuleByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return rule, nil
}

// GetRuleByID implements portssvc.RuleSvcFacade.
func (s *ruleService) GetRuleByID(ctx context.Context, companyID string, ruleID string) (*domain.ApprovalRule, error) {
	return s.getRuleForCompany(ctx, companyID, ruleID)
}

// ListRules implements portssvc.RuleSvcFacade.
func (s *ruleService) ListRules(ctx context.Context, companyID string, includeInactive bool) ([]domain.ApprovalRule, error) {
	rules, err := s.ruleRepo.ListRulesByCompany(ctx, companyID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules for company %s: %w", companyID, err)
	}
	if rules == nil {
		rules = []domain.ApprovalRule{}
	}
	return rules, nil
}

// UpdateRule implements portssvc.RuleSvcFacade. Expenses mid-flight keep the
// configuration they captured at submission; the update affects future
// submissions only.
func (s *ruleService) UpdateRule(ctx context.Context, companyID string, ruleID string, req dto.UpdateApprovalRuleRequest, updaterUserID string) (*domain.ApprovalRule, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	rule, err := s.getRuleForCompany(ctx, companyID, ruleID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.PercentageThreshold != nil {
		rule.PercentageThreshold = *req.PercentageThreshold
	}
	if req.SpecificApproverID != nil {
		rule.SpecificApproverID = req.SpecificApproverID
	}
	if req.Hybrid != nil {
		rule.Hybrid = *req.Hybrid
	}
	if req.Sequence != nil {
		sequence := make([]domain.ApproverSequenceEntry, len(*req.Sequence))
		for i, entry := range *req.Sequence {
			sequence[i] = domain.ApproverSequenceEntry{
				EntryID:    uuid.NewString(),
				RuleID:     rule.RuleID,
				ApproverID: entry.ApproverID,
				Rank:       entry.Rank,
			}
		}
		rule.Sequence = sequence
	}
	rule.LastUpdatedAt = time.Now().UTC()
	rule.LastUpdatedBy = updaterUserID

	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateApprovers(ctx, rule); err != nil {
		return nil, err
	}

	if err := s.ruleRepo.UpdateRule(ctx, *rule); err != nil {
		logger.Error("Failed to update approval rule", slog.String("error", err.Error()), slog.String("rule_id", ruleID))
		return nil, fmt.Errorf("failed to update approval rule: %w", err)
	}

	logger.Info("Approval rule updated", slog.String("rule_id", ruleID))
	return rule, nil
}

// DeactivateRule implements portssvc.RuleSvcFacade.
func (s *ruleService) DeactivateRule(ctx context.Context, companyID string, ruleID string, updaterUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.getRuleForCompany(ctx, companyID, ruleID); err != nil {
		return err
	}

	if err := s.ruleRepo.DeactivateRule(ctx, ruleID, updaterUserID); err != nil {
		logger.Error("Failed to deactivate approval rule", slog.String("error", err.Error()), slog.String("rule_id", ruleID))
		return fmt.Errorf("failed to deactivate approval rule: %w", err)
	}

	logger.Info("Approval rule deactivated", slog.String("rule_id", ruleID))
	return nil
}
