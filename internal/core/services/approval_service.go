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
	"github.com/expenseflow/approval_backend/internal/utils/keyedmutex"
)

var (
	ErrInvalidTransition   = errors.New("operation not allowed from the expense's current state")
	ErrNoRuleDefined       = errors.New("no approval rule defined for the company")
	ErrNotAwaitingApproval = errors.New("expense is not waiting for approval")
	ErrNotCurrentApprover  = errors.New("user is not the current approver or already acted")
)

// approvalService owns the expense approval state machine: submission,
// per-line approve/reject and final resolution. All operations against one
// expense are serialized by a per-expense lock; the repository commits each
// mutation atomically.
type approvalService struct {
	expenseRepo portsrepo.ExpenseRepository
	ruleRepo    portsrepo.RuleReader
	resolver    *SequenceResolver
	evaluator   RuleEvaluator
	notifier    portssvc.NotificationSink
	locks       *keyedmutex.KeyedMutex
}

// NewApprovalService creates a new ApprovalService.
func NewApprovalService(expenseRepo portsrepo.ExpenseRepository, ruleRepo portsrepo.RuleReader, resolver *SequenceResolver, notifier portssvc.NotificationSink) portssvc.ApprovalSvcFacade {
	return &approvalService{
		expenseRepo: expenseRepo,
		ruleRepo:    ruleRepo,
		resolver:    resolver,
		notifier:    notifier,
		locks:       keyedmutex.New(),
	}
}

var _ portssvc.ApprovalSvcFacade = (*approvalService)(nil)

// notification is a queued notify-event, delivered only after the state
// transition has committed.
type notification struct {
	userID  string
	message string
}

// loadExpenseForCompany fetches an expense and verifies company ownership.
// Cross-company access is reported as not found to obscure existence.
func (s *approvalService) loadExpenseForCompany(ctx context.Context, companyID string, expenseID string) (*domain.Expense, error) {
	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return expense, nil
}

// resolveRule returns the rule in force for the expense: the explicitly bound
// rule when present, otherwise the company's first active rule.
func (s *approvalService) resolveRule(ctx context.Context, expense *domain.Expense) (*domain.ApprovalRule, error) {
	if expense.ApprovalRuleID != nil {
		rule, err := s.ruleRepo.FindRuleByID(ctx, *expense.ApprovalRuleID)
		if err != nil {
			return nil, fmt.Errorf("failed to load bound rule %s: %w", *expense.ApprovalRuleID, err)
		}
		return rule, nil
	}
	rule, err := s.ruleRepo.FindFirstActiveRuleForCompany(ctx, expense.CompanyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: company %s", ErrNoRuleDefined, expense.CompanyID)
		}
		return nil, fmt.Errorf("failed to look up company rule: %w", err)
	}
	return rule, nil
}

// SubmitExpense implements portssvc.ApprovalSvcFacade.
func (s *approvalService) SubmitExpense(ctx context.Context, companyID string, expenseID string, actingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	s.locks.Lock(expenseID)
	defer s.locks.Unlock(expenseID)

	expense, err := s.loadExpenseForCompany(ctx, companyID, expenseID)
	if err != nil {
		return err
	}

	if expense.Status != domain.ExpenseDraft {
		return fmt.Errorf("%w: only draft expenses can be submitted, expense %s is %s", ErrInvalidTransition, expenseID, expense.Status)
	}

	rule, err := s.resolveRule(ctx, expense)
	if err != nil {
		return err
	}

	approverIDs, err := s.resolver.Resolve(ctx, *rule, expense.RequesterID)
	if err != nil {
		return fmt.Errorf("failed to resolve approver sequence: %w", err)
	}

	now := time.Now().UTC()
	lines := make([]domain.ApprovalLine, len(approverIDs))
	for i, approverID := range approverIDs {
		lines[i] = domain.ApprovalLine{
			LineID:     uuid.NewString(),
			ExpenseID:  expense.ExpenseID,
			ApproverID: approverID,
			Rank:       i + 1,
			Status:     domain.LinePending,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actingUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: actingUserID,
			},
		}
	}

	expense.Status = domain.ExpenseSubmitted
	expense.ApprovalRuleID = &rule.RuleID
	expense.CurrentApproverID = nil
	if len(approverIDs) > 0 {
		expense.CurrentApproverID = &approverIDs[0]
	}
	expense.LastUpdatedAt = now
	expense.LastUpdatedBy = actingUserID

	if err := s.expenseRepo.SubmitExpenseWorkflow(ctx, *expense, lines); err != nil {
		return fmt.Errorf("failed to persist submission of expense %s: %w", expenseID, err)
	}

	logger.Info("Expense submitted",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("rule_id", rule.RuleID),
		slog.Int("approver_count", len(approverIDs)))

	if expense.CurrentApproverID != nil {
		s.notify(ctx, notification{
			userID:  *expense.CurrentApproverID,
			message: fmt.Sprintf("Expense %s is waiting for your approval.", expense.Description),
		}, expense.ExpenseID)
	} else {
		// Empty sequence: the expense stays submitted with no approver and
		// cannot self-resolve. Preserved as-is pending product clarification.
		logger.Warn("Expense submitted with empty approver sequence", slog.String("expense_id", expense.ExpenseID))
	}
	return nil
}

// ApproveExpense implements portssvc.ApprovalSvcFacade.
func (s *approvalService) ApproveExpense(ctx context.Context, companyID string, expenseID string, actingUserID string, req dto.ApprovalDecisionRequest) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	s.locks.Lock(expenseID)
	defer s.locks.Unlock(expenseID)

	expense, lines, line, err := s.loadActionableLine(ctx, companyID, expenseID, actingUserID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	line.Status = domain.LineApproved
	line.ApprovalDate = &now
	line.Comment = req.Comment
	if line.Comment == "" {
		line.Comment = "Approved"
	}
	line.LastUpdatedAt = now
	line.LastUpdatedBy = actingUserID

	notices, err := s.checkApprovalProgress(ctx, expense, lines, now, actingUserID)
	if err != nil {
		return err
	}

	if err := s.expenseRepo.ApplyApprovalDecision(ctx, *expense, *line); err != nil {
		return fmt.Errorf("failed to persist approval on expense %s: %w", expenseID, err)
	}

	logger.Info("Approval recorded",
		slog.String("expense_id", expense.ExpenseID),
		slog.Int("rank", line.Rank),
		slog.String("expense_status", string(expense.Status)))

	for _, n := range notices {
		s.notify(ctx, n, expense.ExpenseID)
	}
	return nil
}

// RejectExpense implements portssvc.ApprovalSvcFacade. A single rejection at
// any line refuses the whole expense, regardless of prior approvals.
func (s *approvalService) RejectExpense(ctx context.Context, companyID string, expenseID string, actingUserID string, req dto.ApprovalDecisionRequest) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	s.locks.Lock(expenseID)
	defer s.locks.Unlock(expenseID)

	expense, _, line, err := s.loadActionableLine(ctx, companyID, expenseID, actingUserID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	line.Status = domain.LineRejected
	line.RejectionDate = &now
	line.Comment = req.Comment
	if line.Comment == "" {
		line.Comment = "Rejected"
	}
	line.LastUpdatedAt = now
	line.LastUpdatedBy = actingUserID

	expense.Status = domain.ExpenseRefused
	expense.CurrentApproverID = nil
	expense.LastUpdatedAt = now
	expense.LastUpdatedBy = actingUserID

	if err := s.expenseRepo.ApplyApprovalDecision(ctx, *expense, *line); err != nil {
		return fmt.Errorf("failed to persist rejection on expense %s: %w", expenseID, err)
	}

	logger.Info("Expense refused",
		slog.String("expense_id", expense.ExpenseID),
		slog.Int("rank", line.Rank),
		slog.String("rejected_by", actingUserID))

	s.notify(ctx, notification{
		userID:  expense.RequesterID,
		message: fmt.Sprintf("Expense %s was rejected.", expense.Description),
	}, expense.ExpenseID)
	return nil
}

// GetApprovalProgress implements portssvc.ApprovalSvcFacade.
func (s *approvalService) GetApprovalProgress(ctx context.Context, companyID string, expenseID string) (float64, error) {
	expense, err := s.loadExpenseForCompany(ctx, companyID, expenseID)
	if err != nil {
		return 0, err
	}
	lines, err := s.expenseRepo.FindApprovalLinesByExpenseID(ctx, expense.ExpenseID)
	if err != nil {
		return 0, fmt.Errorf("failed to load approval lines for expense %s: %w", expenseID, err)
	}
	return domain.ApprovalProgress(lines), nil
}

// loadActionableLine fetches the expense with its lines and locates the
// acting user's unique pending line. The pending requirement also rejects
// double-acting and acting out of turn.
func (s *approvalService) loadActionableLine(ctx context.Context, companyID string, expenseID string, actingUserID string) (*domain.Expense, []domain.ApprovalLine, *domain.ApprovalLine, error) {
	expense, err := s.loadExpenseForCompany(ctx, companyID, expenseID)
	if err != nil {
		return nil, nil, nil, err
	}

	if expense.Status != domain.ExpenseSubmitted {
		return nil, nil, nil, fmt.Errorf("%w: expense %s is %s", ErrNotAwaitingApproval, expenseID, expense.Status)
	}

	lines, err := s.expenseRepo.FindApprovalLinesByExpenseID(ctx, expense.ExpenseID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load approval lines for expense %s: %w", expenseID, err)
	}

	for i := range lines {
		if lines[i].ApproverID == actingUserID && lines[i].Status == domain.LinePending {
			return expense, lines, &lines[i], nil
		}
	}
	return nil, nil, nil, fmt.Errorf("%w: user %s on expense %s", ErrNotCurrentApprover, actingUserID, expenseID)
}

// checkApprovalProgress runs after every approval: if the rule is satisfied
// the expense completes; otherwise it advances to the line whose rank is
// approvedCount+1, or is refused when the sequence is exhausted. It mutates
// the expense in place and returns the notifications to emit once the
// transition has committed.
func (s *approvalService) checkApprovalProgress(ctx context.Context, expense *domain.Expense, lines []domain.ApprovalLine, now time.Time, actingUserID string) ([]notification, error) {
	if expense.ApprovalRuleID == nil {
		return nil, fmt.Errorf("%w: submitted expense %s has no bound rule", apperrors.ErrInternal, expense.ExpenseID)
	}
	rule, err := s.ruleRepo.FindRuleByID(ctx, *expense.ApprovalRuleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bound rule %s: %w", *expense.ApprovalRuleID, err)
	}

	expense.LastUpdatedAt = now
	expense.LastUpdatedBy = actingUserID

	if s.evaluator.IsSatisfied(*rule, lines) {
		expense.Status = domain.ExpenseApproved
		expense.CurrentApproverID = nil
		return []notification{{
			userID:  expense.RequesterID,
			message: fmt.Sprintf("Expense %s was approved.", expense.Description),
		}}, nil
	}

	approvedCount := 0
	for _, l := range lines {
		if l.Status == domain.LineApproved {
			approvedCount++
		}
	}

	for _, l := range lines {
		if l.Status == domain.LinePending && l.Rank == approvedCount+1 {
			approverID := l.ApproverID
			expense.CurrentApproverID = &approverID
			return []notification{{
				userID:  approverID,
				message: fmt.Sprintf("Expense %s is waiting for your approval.", expense.Description),
			}}, nil
		}
	}

	// Sequence exhausted without satisfying the rule.
	expense.Status = domain.ExpenseRefused
	expense.CurrentApproverID = nil
	return []notification{{
		userID:  expense.RequesterID,
		message: fmt.Sprintf("Expense %s was refused.", expense.Description),
	}}, nil
}

// notify delivers a queued notification. Delivery failures are logged and
// never surface to the caller: the state transition has already committed.
func (s *approvalService) notify(ctx context.Context, n notification, expenseID string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n.userID, expenseID, n.message); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to deliver notification",
			slog.String("expense_id", expenseID),
			slog.String("user_id", n.userID),
			slog.String("error", err.Error()))
	}
}
