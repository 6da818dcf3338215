package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/expenseflow/approval_backend/internal/apperrors"
	"github.com/expenseflow/approval_backend/internal/core/domain"
	"github.com/expenseflow/approval_backend/internal/core/services"
)

type SequenceResolverTestSuite struct {
	suite.Suite
	mockUserRepo *MockUserRepository
	resolver     *services.SequenceResolver
}

func (suite *SequenceResolverTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.resolver = services.NewSequenceResolver(suite.mockUserRepo)
}

func ruleWithApprovers(approverIDs ...string) domain.ApprovalRule {
	sequence := make([]domain.ApproverSequenceEntry, len(approverIDs))
	for i, id := range approverIDs {
		sequence[i] = domain.ApproverSequenceEntry{
			EntryID:    "entry-" + id,
			ApproverID: id,
			Rank:       i + 1,
		}
	}
	return domain.ApprovalRule{RuleID: "rule-1", Sequence: sequence, PercentageThreshold: 60, Active: true}
}

func (suite *SequenceResolverTestSuite) TestResolve_RuleSequenceOnly() {
	ctx := context.Background()
	requester := &domain.User{UserID: "req-1", Role: domain.RoleEmployee}

	suite.mockUserRepo.On("FindUserByID", ctx, "req-1").Return(requester, nil).Once()

	approvers, err := suite.resolver.Resolve(ctx, ruleWithApprovers("mgr-a", "mgr-b"), "req-1")

	suite.Require().NoError(err)
	suite.Equal([]string{"mgr-a", "mgr-b"}, approvers)
}

func (suite *SequenceResolverTestSuite) TestResolve_ManagerApproverFirst() {
	ctx := context.Background()
	managerID := "mgr-first"
	requester := &domain.User{UserID: "req-1", ManagerID: &managerID}
	manager := &domain.User{UserID: managerID, Role: domain.RoleManager, IsManagerApprover: true}

	suite.mockUserRepo.On("FindUserByID", ctx, "req-1").Return(requester, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, managerID).Return(manager, nil).Once()

	approvers, err := suite.resolver.Resolve(ctx, ruleWithApprovers("mgr-a", "mgr-b"), "req-1")

	suite.Require().NoError(err)
	suite.Equal([]string{"mgr-first", "mgr-a", "mgr-b"}, approvers)
}

func (suite *SequenceResolverTestSuite) TestResolve_ManagerNotApprover() {
	ctx := context.Background()
	managerID := "mgr-plain"
	requester := &domain.User{UserID: "req-1", ManagerID: &managerID}
	manager := &domain.User{UserID: managerID, Role: domain.RoleManager, IsManagerApprover: false}

	suite.mockUserRepo.On("FindUserByID", ctx, "req-1").Return(requester, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, managerID).Return(manager, nil).Once()

	approvers, err := suite.resolver.Resolve(ctx, ruleWithApprovers("mgr-a"), "req-1")

	suite.Require().NoError(err)
	suite.Equal([]string{"mgr-a"}, approvers)
}

func (suite *SequenceResolverTestSuite) TestResolve_ManagerAlsoInSequence() {
	ctx := context.Background()
	managerID := "mgr-a"
	requester := &domain.User{UserID: "req-1", ManagerID: &managerID}
	manager := &domain.User{UserID: managerID, Role: domain.RoleManager, IsManagerApprover: true}

	suite.mockUserRepo.On("FindUserByID", ctx, "req-1").Return(requester, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, managerID).Return(manager, nil).Once()

	// The manager keeps the front slot; the duplicate sequence entry is skipped.
	approvers, err := suite.resolver.Resolve(ctx, ruleWithApprovers("mgr-b", "mgr-a", "mgr-c"), "req-1")

	suite.Require().NoError(err)
	suite.Equal([]string{"mgr-a", "mgr-b", "mgr-c"}, approvers)
}

func (suite *SequenceResolverTestSuite) TestResolve_DanglingManagerReference() {
	ctx := context.Background()
	managerID := "mgr-gone"
	requester := &domain.User{UserID: "req-1", ManagerID: &managerID}

	suite.mockUserRepo.On("FindUserByID", ctx, "req-1").Return(requester, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, managerID).Return(nil, apperrors.ErrNotFound).Once()

	// A dangling manager reference is tolerated; the rule sequence stands alone.
	approvers, err := suite.resolver.Resolve(ctx, ruleWithApprovers("mgr-a"), "req-1")

	suite.Require().NoError(err)
	suite.Equal([]string{"mgr-a"}, approvers)
}

func (suite *SequenceResolverTestSuite) TestResolve_EmptyResult() {
	ctx := context.Background()
	requester := &domain.User{UserID: "req-1"}

	suite.mockUserRepo.On("FindUserByID", ctx, "req-1").Return(requester, nil).Once()

	approvers, err := suite.resolver.Resolve(ctx, ruleWithApprovers(), "req-1")

	suite.Require().NoError(err)
	suite.Empty(approvers)
}

func (suite *SequenceResolverTestSuite) TestResolve_RequesterMissing() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByID", ctx, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	approvers, err := suite.resolver.Resolve(ctx, ruleWithApprovers("mgr-a"), "ghost")

	suite.Require().Error(err)
	suite.Nil(approvers)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestSequenceResolverTestSuite(t *testing.T) {
	suite.Run(t, new(SequenceResolverTestSuite))
}
