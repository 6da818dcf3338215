package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/expenseflow/approval_backend/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every PostgreSQL repository onto a shared
// connection pool.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		UserRepo:    newPgxUserRepository(pool),
		CompanyRepo: newPgxCompanyRepository(pool),
		RuleRepo:    newPgxRuleRepository(pool),
		ExpenseRepo: newPgxExpenseRepository(pool),
	}
}
