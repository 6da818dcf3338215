package repositories

// RepositoryProvider groups the concrete repositories handed to the service
// container.
type RepositoryProvider struct {
	UserRepo    UserRepository
	CompanyRepo CompanyRepository
	RuleRepo    RuleRepository
	ExpenseRepo ExpenseRepository
}
