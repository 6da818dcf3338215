package services

import (
	portsrepo "github.com/expenseflow/approval_backend/internal/core/ports/repositories"
	portssvc "github.com/expenseflow/approval_backend/internal/core/ports/services"
	"github.com/expenseflow/approval_backend/internal/platform/config"
)

// NewServiceContainer wires the repositories and collaborators into the
// service facades handed to the HTTP layer.
func NewServiceContainer(repos *portsrepo.RepositoryProvider, cfg *config.Config, notifier portssvc.NotificationSink) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Company = NewCompanyService(repos.CompanyRepo)
	container.User = NewUserService(repos.UserRepo, repos.CompanyRepo)
	container.Rule = NewRuleService(repos.RuleRepo, repos.UserRepo, repos.CompanyRepo)
	container.Expense = NewExpenseService(repos.ExpenseRepo, repos.CompanyRepo)

	resolver := NewSequenceResolver(repos.UserRepo)
	container.Approval = NewApprovalService(repos.ExpenseRepo, repos.RuleRepo, resolver, notifier)

	container.Auth = NewAuthService(repos.UserRepo, container.User, cfg)

	return container
}
