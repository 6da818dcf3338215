package services

// ServiceContainer groups the service facades handed to the HTTP layer.
type ServiceContainer struct {
	User     UserSvcFacade
	Company  CompanySvcFacade
	Rule     RuleSvcFacade
	Expense  ExpenseSvcFacade
	Approval ApprovalSvcFacade
	Auth     AuthSvcFacade
}
