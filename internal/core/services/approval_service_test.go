package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/expenseflow/approval_backend/internal/apperrors"
	"github.com/expenseflow/approval_backend/internal/core/domain"
	portssvc "github.com/expenseflow/approval_backend/internal/core/ports/services"
	"github.com/expenseflow/approval_backend/internal/core/services"
	"github.com/expenseflow/approval_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// --- Mock ExpenseRepository ---
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, expenseID)
	var expense *domain.Expense
	if args.Get(0) != nil {
		expense = args.Get(0).(*domain.Expense)
	}
	return expense, args.Error(1)
}

func (m *MockExpenseRepository) FindApprovalLinesByExpenseID(ctx context.Context, expenseID string) ([]domain.ApprovalLine, error) {
	args := m.Called(ctx, expenseID)
	var lines []domain.ApprovalLine
	if args.Get(0) != nil {
		lines = args.Get(0).([]domain.ApprovalLine)
	}
	return lines, args.Error(1)
}

func (m *MockExpenseRepository) ListExpensesByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.Expense, error) {
	args := m.Called(ctx, companyID, limit, offset)
	var expenses []domain.Expense
	if args.Get(0) != nil {
		expenses = args.Get(0).([]domain.Expense)
	}
	return expenses, args.Error(1)
}

func (m *MockExpenseRepository) SubmitExpenseWorkflow(ctx context.Context, expense domain.Expense, lines []domain.ApprovalLine) error {
	args := m.Called(ctx, expense, lines)
	return args.Error(0)
}

func (m *MockExpenseRepository) ApplyApprovalDecision(ctx context.Context, expense domain.Expense, line domain.ApprovalLine) error {
	args := m.Called(ctx, expense, line)
	return args.Error(0)
}

// --- Mock RuleRepository ---
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) SaveRule(ctx context.Context, rule domain.ApprovalRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) UpdateRule(ctx context.Context, rule domain.ApprovalRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) DeactivateRule(ctx context.Context, ruleID string, updatedByUserID string) error {
	args := m.Called(ctx, ruleID, updatedByUserID)
	return args.Error(0)
}

func (m *MockRuleRepository) FindRuleByID(ctx context.Context, ruleID string) (*domain.ApprovalRule, error) {
	args := m.Called(ctx, ruleID)
	var rule *domain.ApprovalRule
	if args.Get(0) != nil {
		rule = args.Get(0).(*domain.ApprovalRule)
	}
	return rule, args.Error(1)
}

func (m *MockRuleRepository) FindFirstActiveRuleForCompany(ctx context.Context, companyID string) (*domain.ApprovalRule, error) {
	args := m.Called(ctx, companyID)
	var rule *domain.ApprovalRule
	if args.Get(0) != nil {
		rule = args.Get(0).(*domain.ApprovalRule)
	}
	return rule, args.Error(1)
}

func (m *MockRuleRepository) ListRulesByCompany(ctx context.Context, companyID string, includeInactive bool) ([]domain.ApprovalRule, error) {
	args := m.Called(ctx, companyID, includeInactive)
	var rules []domain.ApprovalRule
	if args.Get(0) != nil {
		rules = args.Get(0).([]domain.ApprovalRule)
	}
	return rules, args.Error(1)
}

// --- Mock NotificationSink ---
type MockNotificationSink struct {
	mock.Mock
}

func (m *MockNotificationSink) Notify(ctx context.Context, userID string, expenseID string, message string) error {
	args := m.Called(ctx, userID, expenseID, message)
	return args.Error(0)
}

// --- Test Suite ---
type ApprovalServiceTestSuite struct {
	suite.Suite
	mockExpenseRepo *MockExpenseRepository
	mockRuleRepo    *MockRuleRepository
	mockUserRepo    *MockUserRepository
	mockNotifier    *MockNotificationSink
	service         portssvc.ApprovalSvcFacade

	companyID   string
	expenseID   string
	requesterID string
	ruleID      string
}

func (suite *ApprovalServiceTestSuite) SetupTest() {
	suite.mockExpenseRepo = new(MockExpenseRepository)
	suite.mockRuleRepo = new(MockRuleRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockNotifier = new(MockNotificationSink)
	resolver := services.NewSequenceResolver(suite.mockUserRepo)
	suite.service = services.NewApprovalService(suite.mockExpenseRepo, suite.mockRuleRepo, resolver, suite.mockNotifier)

	suite.companyID = "company-1"
	suite.expenseID = "expense-1"
	suite.requesterID = "req-1"
	suite.ruleID = "rule-1"
}

func (suite *ApprovalServiceTestSuite) draftExpense() *domain.Expense {
	return &domain.Expense{
		ExpenseID:   suite.expenseID,
		CompanyID:   suite.companyID,
		RequesterID: suite.requesterID,
		Description: "Team offsite",
		TotalAmount: decimal.NewFromInt(420),
		Status:      domain.ExpenseDraft,
	}
}

func (suite *ApprovalServiceTestSuite) submittedExpense(currentApproverID string) *domain.Expense {
	e := suite.draftExpense()
	e.Status = domain.ExpenseSubmitted
	e.ApprovalRuleID = &suite.ruleID
	if currentApproverID != "" {
		e.CurrentApproverID = &currentApproverID
	}
	return e
}

func (suite *ApprovalServiceTestSuite) rule(threshold float64, specificApproverID *string, hybrid bool, approverIDs ...string) *domain.ApprovalRule {
	sequence := make([]domain.ApproverSequenceEntry, len(approverIDs))
	for i, id := range approverIDs {
		sequence[i] = domain.ApproverSequenceEntry{EntryID: "entry-" + id, RuleID: suite.ruleID, ApproverID: id, Rank: i + 1}
	}
	return &domain.ApprovalRule{
		RuleID:              suite.ruleID,
		CompanyID:           suite.companyID,
		Sequence:            sequence,
		PercentageThreshold: threshold,
		SpecificApproverID:  specificApproverID,
		Hybrid:              hybrid,
		Active:              true,
	}
}

func pendingLines(expenseID string, approverIDs ...string) []domain.ApprovalLine {
	lines := make([]domain.ApprovalLine, len(approverIDs))
	for i, id := range approverIDs {
		lines[i] = domain.ApprovalLine{
			LineID:     "line-" + id,
			ExpenseID:  expenseID,
			ApproverID: id,
			Rank:       i + 1,
			Status:     domain.LinePending,
		}
	}
	return lines
}

// --- SubmitExpense ---

func (suite *ApprovalServiceTestSuite) TestSubmitExpense_Success() {
	ctx := context.Background()
	managerID := "mgr-first"
	requester := &domain.User{UserID: suite.requesterID, ManagerID: &managerID}
	manager := &domain.User{UserID: managerID, Role: domain.RoleManager, IsManagerApprover: true}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(suite.draftExpense(), nil).Once()
	suite.mockRuleRepo.On("FindFirstActiveRuleForCompany", ctx, suite.companyID).Return(suite.rule(60, nil, false, "mgr-a", "mgr-b"), nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.requesterID).Return(requester, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, managerID).Return(manager, nil).Once()

	suite.mockExpenseRepo.On("SubmitExpenseWorkflow", ctx,
		mock.MatchedBy(func(e domain.Expense) bool {
			return e.Status == domain.ExpenseSubmitted &&
				e.ApprovalRuleID != nil && *e.ApprovalRuleID == suite.ruleID &&
				e.CurrentApproverID != nil && *e.CurrentApproverID == managerID
		}),
		mock.MatchedBy(func(lines []domain.ApprovalLine) bool {
			if len(lines) != 3 {
				return false
			}
			ordered := lines[0].ApproverID == managerID && lines[1].ApproverID == "mgr-a" && lines[2].ApproverID == "mgr-b"
			ranked := lines[0].Rank == 1 && lines[1].Rank == 2 && lines[2].Rank == 3
			pending := lines[0].Status == domain.LinePending && lines[1].Status == domain.LinePending && lines[2].Status == domain.LinePending
			return ordered && ranked && pending
		}),
	).Return(nil).Once()

	suite.mockNotifier.On("Notify", ctx, managerID, suite.expenseID, mock.AnythingOfType("string")).Return(nil).Once()

	err := suite.service.SubmitExpense(ctx, suite.companyID, suite.expenseID, suite.requesterID)

	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestSubmitExpense_NotDraft() {
	ctx := context.Background()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(suite.submittedExpense("mgr-a"), nil).Once()

	err := suite.service.SubmitExpense(ctx, suite.companyID, suite.expenseID, suite.requesterID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidTransition)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "SubmitExpenseWorkflow", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestSubmitExpense_NoRuleDefined() {
	ctx := context.Background()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(suite.draftExpense(), nil).Once()
	suite.mockRuleRepo.On("FindFirstActiveRuleForCompany", ctx, suite.companyID).Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.SubmitExpense(ctx, suite.companyID, suite.expenseID, suite.requesterID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNoRuleDefined)
}

func (suite *ApprovalServiceTestSuite) TestSubmitExpense_CrossCompanyHidden() {
	ctx := context.Background()
	expense := suite.draftExpense()
	expense.CompanyID = "company-other"
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(expense, nil).Once()

	err := suite.service.SubmitExpense(ctx, suite.companyID, suite.expenseID, suite.requesterID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ApprovalServiceTestSuite) TestSubmitExpense_EmptySequence() {
	ctx := context.Background()
	requester := &domain.User{UserID: suite.requesterID}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(suite.draftExpense(), nil).Once()
	suite.mockRuleRepo.On("FindFirstActiveRuleForCompany", ctx, suite.companyID).Return(suite.rule(60, nil, false), nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, suite.requesterID).Return(requester, nil).Once()

	suite.mockExpenseRepo.On("SubmitExpenseWorkflow", ctx,
		mock.MatchedBy(func(e domain.Expense) bool {
			return e.Status == domain.ExpenseSubmitted && e.CurrentApproverID == nil
		}),
		mock.MatchedBy(func(lines []domain.ApprovalLine) bool { return len(lines) == 0 }),
	).Return(nil).Once()

	err := suite.service.SubmitExpense(ctx, suite.companyID, suite.expenseID, suite.requesterID)

	suite.Require().NoError(err)
	// Nobody to notify.
	suite.mockNotifier.AssertNotCalled(suite.T(), "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- ApproveExpense ---

func (suite *ApprovalServiceTestSuite) TestApproveExpense_AdvancesToNextApprover() {
	ctx := context.Background()
	expense := suite.submittedExpense("mgr-a")
	lines := pendingLines(suite.expenseID, "mgr-a", "mgr-b", "mgr-c")

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("FindApprovalLinesByExpenseID", ctx, suite.expenseID).Return(lines, nil).Once()
	suite.mockRuleRepo.On("FindRuleByID", ctx, suite.ruleID).Return(suite.rule(60, nil, false, "mgr-a", "mgr-b", "mgr-c"), nil).Once()

	suite.mockExpenseRepo.On("ApplyApprovalDecision", ctx,
		mock.MatchedBy(func(e domain.Expense) bool {
			return e.Status == domain.ExpenseSubmitted && e.CurrentApproverID != nil && *e.CurrentApproverID == "mgr-b"
		}),
		mock.MatchedBy(func(l domain.ApprovalLine) bool {
			return l.ApproverID == "mgr-a" && l.Status == domain.LineApproved && l.ApprovalDate != nil && l.Comment == "Looks good"
		}),
	).Return(nil).Once()

	suite.mockNotifier.On("Notify", ctx, "mgr-b", suite.expenseID, mock.AnythingOfType("string")).Return(nil).Once()

	err := suite.service.ApproveExpense(ctx, suite.companyID, suite.expenseID, "mgr-a", dto.ApprovalDecisionRequest{Comment: "Looks good"})

	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestApproveExpense_ThresholdReachedApproves() {
	ctx := context.Background()
	expense := suite.submittedExpense("mgr-b")
	lines := pendingLines(suite.expenseID, "mgr-a", "mgr-b", "mgr-c")
	lines[0].Status = domain.LineApproved

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("FindApprovalLinesByExpenseID", ctx, suite.expenseID).Return(lines, nil).Once()
	suite.mockRuleRepo.On("FindRuleByID", ctx, suite.ruleID).Return(suite.rule(60, nil, false, "mgr-a", "mgr-b", "mgr-c"), nil).Once()

	// 2 of 3 approved is 66.7%, over the 60% threshold.
	suite.mockExpenseRepo.On("ApplyApprovalDecision", ctx,
		mock.MatchedBy(func(e domain.Expense) bool {
			return e.Status == domain.ExpenseApproved && e.CurrentApproverID == nil
		}),
		mock.MatchedBy(func(l domain.ApprovalLine) bool {
			return l.ApproverID == "mgr-b" && l.Status == domain.LineApproved
		}),
	).Return(nil).Once()

	suite.mockNotifier.On("Notify", ctx, suite.requesterID, suite.expenseID, mock.AnythingOfType("string")).Return(nil).Once()

	err := suite.service.ApproveExpense(ctx, suite.companyID, suite.expenseID, "mgr-b", dto.ApprovalDecisionRequest{})

	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestApproveExpense_SpecificApproverShortCircuits() {
	ctx := context.Background()
	expense := suite.submittedExpense("boss")
	lines := pendingLines(suite.expenseID, "boss", "mgr-b", "mgr-c")

	// Threshold of 100 would never be met by one approval; the specific
	// approver's approval overrides it on a non-hybrid rule.
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("FindApprovalLinesByExpenseID", ctx, suite.expenseID).Return(lines, nil).Once()
	suite.mockRuleRepo.On("FindRuleByID", ctx, suite.ruleID).Return(suite.rule(100, strPtr("boss"), false, "boss", "mgr-b", "mgr-c"), nil).Once()

	suite.mockExpenseRepo.On("ApplyApprovalDecision", ctx,
		mock.MatchedBy(func(e domain.Expense) bool { return e.Status == domain.ExpenseApproved }),
		mock.AnythingOfType("domain.ApprovalLine"),
	).Return(nil).Once()

	suite.mockNotifier.On("Notify", ctx, suite.requesterID, suite.expenseID, mock.AnythingOfType("string")).Return(nil).Once()

	err := suite.service.ApproveExpense(ctx, suite.companyID, suite.expenseID, "boss", dto.ApprovalDecisionRequest{})

	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestApproveExpense_HybridSatisfiedByThreshold() {
	ctx := context.Background()
	expense := suite.submittedExpense("mgr-b")
	lines := pendingLines(suite.expenseID, "mgr-a", "mgr-b", "mgr-c")
	lines[0].Status = domain.LineApproved

	// The specific approver never acted; the percentage branch carries the
	// hybrid rule instead.
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("FindApprovalLinesByExpenseID", ctx, suite.expenseID).Return(lines, nil).Once()
	suite.mockRuleRepo.On("FindRuleByID", ctx, suite.ruleID).Return(suite.rule(60, strPtr("mgr-c"), true, "mgr-a", "mgr-b", "mgr-c"), nil).Once()

	suite.mockExpenseRepo.On("ApplyApprovalDecision", ctx,
		mock.MatchedBy(func(e domain.Expense) bool { return e.Status == domain.ExpenseApproved }),
		mock.AnythingOfType("domain.ApprovalLine"),
	).Return(nil).Once()

	suite.mockNotifier.On("Notify", ctx, suite.requesterID, suite.expenseID, mock.AnythingOfType("string")).Return(nil).Once()

	err := suite.service.ApproveExpense(ctx, suite.companyID, suite.expenseID, "mgr-b", dto.ApprovalDecisionRequest{})

	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestApproveExpense_SequenceExhaustedRefuses() {
	ctx := context.Background()
	expense := suite.submittedExpense("mgr-b")
	lines := pendingLines(suite.expenseID, "mgr-a", "mgr-b", "mgr-c")
	lines[0].Status = domain.LineApproved
	lines[2].Status = domain.LineRejected

	// 2 of 3 approved misses the 100% threshold and no pending line remains
	// to advance to.
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("FindApprovalLinesByExpenseID", ctx, suite.expenseID).Return(lines, nil).Once()
	suite.mockRuleRepo.On("FindRuleByID", ctx, suite.ruleID).Return(suite.rule(100, nil, false, "mgr-a", "mgr-b", "mgr-c"), nil).Once()

	suite.mockExpenseRepo.On("ApplyApprovalDecision", ctx,
		mock.MatchedBy(func(e domain.Expense) bool {
			return e.Status == domain.ExpenseRefused && e.CurrentApproverID == nil
		}),
		mock.AnythingOfType("domain.ApprovalLine"),
	).Return(nil).Once()

	suite.mockNotifier.On("Notify", ctx, suite.requesterID, suite.expenseID, mock.AnythingOfType("string")).Return(nil).Once()

	err := suite.service.ApproveExpense(ctx, suite.companyID, suite.expenseID, "mgr-b", dto.ApprovalDecisionRequest{})

	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestApproveExpense_NotCurrentApprover() {
	ctx := context.Background()
	expense := suite.submittedExpense("mgr-a")
	lines := pendingLines(suite.expenseID, "mgr-a", "mgr-b")

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("FindApprovalLinesByExpenseID", ctx, suite.expenseID).Return(lines, nil).Once()

	err := suite.service.ApproveExpense(ctx, suite.companyID, suite.expenseID, "intruder", dto.ApprovalDecisionRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotCurrentApprover)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "ApplyApprovalDecision", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestApproveExpense_DoubleActingRejected() {
	ctx := context.Background()
	expense := suite.submittedExpense("mgr-b")
	lines := pendingLines(suite.expenseID, "mgr-a", "mgr-b")
	lines[0].Status = domain.LineApproved

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("FindApprovalLinesByExpenseID", ctx, suite.expenseID).Return(lines, nil).Once()

	// mgr-a already approved; their line is no longer pending.
	err := suite.service.ApproveExpense(ctx, suite.companyID, suite.expenseID, "mgr-a", dto.ApprovalDecisionRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotCurrentApprover)
}

func (suite *ApprovalServiceTestSuite) TestApproveExpense_NotAwaitingApproval() {
	ctx := context.Background()
	expense := suite.draftExpense()

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(expense, nil).Once()

	err := suite.service.ApproveExpense(ctx, suite.companyID, suite.expenseID, "mgr-a", dto.ApprovalDecisionRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotAwaitingApproval)
}

func (suite *ApprovalServiceTestSuite) TestApproveExpense_NotificationFailureIsSwallowed() {
	ctx := context.Background()
	expense := suite.submittedExpense("mgr-a")
	lines := pendingLines(suite.expenseID, "mgr-a", "mgr-b", "mgr-c")

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("FindApprovalLinesByExpenseID", ctx, suite.expenseID).Return(lines, nil).Once()
	suite.mockRuleRepo.On("FindRuleByID", ctx, suite.ruleID).Return(suite.rule(60, nil, false, "mgr-a", "mgr-b", "mgr-c"), nil).Once()
	suite.mockExpenseRepo.On("ApplyApprovalDecision", ctx, mock.AnythingOfType("domain.Expense"), mock.AnythingOfType("domain.ApprovalLine")).Return(nil).Once()
	suite.mockNotifier.On("Notify", ctx, "mgr-b", suite.expenseID, mock.AnythingOfType("string")).Return(assert.AnError).Once()

	// The committed transition must not be undone by a failed notification.
	err := suite.service.ApproveExpense(ctx, suite.companyID, suite.expenseID, "mgr-a", dto.ApprovalDecisionRequest{})

	suite.Require().NoError(err)
	suite.mockNotifier.AssertExpectations(suite.T())
}

// --- RejectExpense ---

func (suite *ApprovalServiceTestSuite) TestRejectExpense_RefusesWholeExpense() {
	ctx := context.Background()
	expense := suite.submittedExpense("mgr-b")
	lines := pendingLines(suite.expenseID, "mgr-a", "mgr-b", "mgr-c")
	lines[0].Status = domain.LineApproved

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("FindApprovalLinesByExpenseID", ctx, suite.expenseID).Return(lines, nil).Once()

	// A single rejection refuses the expense regardless of prior approvals.
	suite.mockExpenseRepo.On("ApplyApprovalDecision", ctx,
		mock.MatchedBy(func(e domain.Expense) bool {
			return e.Status == domain.ExpenseRefused && e.CurrentApproverID == nil
		}),
		mock.MatchedBy(func(l domain.ApprovalLine) bool {
			return l.ApproverID == "mgr-b" && l.Status == domain.LineRejected && l.RejectionDate != nil && l.Comment == "Over budget"
		}),
	).Return(nil).Once()

	suite.mockNotifier.On("Notify", ctx, suite.requesterID, suite.expenseID, mock.AnythingOfType("string")).Return(nil).Once()

	err := suite.service.RejectExpense(ctx, suite.companyID, suite.expenseID, "mgr-b", dto.ApprovalDecisionRequest{Comment: "Over budget"})

	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestRejectExpense_DefaultComment() {
	ctx := context.Background()
	expense := suite.submittedExpense("mgr-a")
	lines := pendingLines(suite.expenseID, "mgr-a")

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("FindApprovalLinesByExpenseID", ctx, suite.expenseID).Return(lines, nil).Once()
	suite.mockExpenseRepo.On("ApplyApprovalDecision", ctx,
		mock.AnythingOfType("domain.Expense"),
		mock.MatchedBy(func(l domain.ApprovalLine) bool { return l.Comment == "Rejected" }),
	).Return(nil).Once()
	suite.mockNotifier.On("Notify", ctx, suite.requesterID, suite.expenseID, mock.AnythingOfType("string")).Return(nil).Once()

	err := suite.service.RejectExpense(ctx, suite.companyID, suite.expenseID, "mgr-a", dto.ApprovalDecisionRequest{})

	suite.Require().NoError(err)
}

func (suite *ApprovalServiceTestSuite) TestRejectExpense_NotAwaitingApproval() {
	ctx := context.Background()
	expense := suite.draftExpense()
	expense.Status = domain.ExpenseRefused

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(expense, nil).Once()

	err := suite.service.RejectExpense(ctx, suite.companyID, suite.expenseID, "mgr-a", dto.ApprovalDecisionRequest{})

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotAwaitingApproval)
}

// --- GetApprovalProgress ---

func (suite *ApprovalServiceTestSuite) TestGetApprovalProgress() {
	ctx := context.Background()
	expense := suite.submittedExpense("mgr-c")
	lines := pendingLines(suite.expenseID, "mgr-a", "mgr-b", "mgr-c")
	lines[0].Status = domain.LineApproved
	lines[1].Status = domain.LineApproved

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("FindApprovalLinesByExpenseID", ctx, suite.expenseID).Return(lines, nil).Once()

	progress, err := suite.service.GetApprovalProgress(ctx, suite.companyID, suite.expenseID)

	suite.Require().NoError(err)
	suite.InDelta(66.666, progress, 0.001)
}

func (suite *ApprovalServiceTestSuite) TestGetApprovalProgress_CrossCompanyHidden() {
	ctx := context.Background()
	expense := suite.submittedExpense("mgr-a")
	expense.CompanyID = "company-other"

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, suite.expenseID).Return(expense, nil).Once()

	_, err := suite.service.GetApprovalProgress(ctx, suite.companyID, suite.expenseID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestApprovalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ApprovalServiceTestSuite))
}
