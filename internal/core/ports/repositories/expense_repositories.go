package repositories

import (
	"context"

	"github.com/expenseflow/approval_backend/internal/core/domain"
)

// ExpenseReader defines read operations for expense data.
type ExpenseReader interface {
	// FindExpenseByID retrieves an expense header by its unique identifier.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// FindApprovalLinesByExpenseID retrieves an expense's approval lines in
	// ascending rank order.
	FindApprovalLinesByExpenseID(ctx context.Context, expenseID string) ([]domain.ApprovalLine, error)

	// ListExpensesByCompany retrieves a company's expenses.
	ListExpensesByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.Expense, error)
}

// ExpenseWriter defines write operations for expense data. The workflow
// mutations commit the expense header and its line set in a single database
// transaction; there is no partial application.
type ExpenseWriter interface {
	// SaveExpense persists a new draft expense.
	SaveExpense(ctx context.Context, expense domain.Expense) error

	// SubmitExpenseWorkflow atomically updates the expense workflow fields
	// (status, bound rule, current approver) and replaces its approval line
	// set with the given lines. Any prior lines are destroyed.
	SubmitExpenseWorkflow(ctx context.Context, expense domain.Expense, lines []domain.ApprovalLine) error

	// ApplyApprovalDecision atomically updates one resolved approval line and
	// the expense workflow fields (status, current approver). The expense row
	// is locked for the duration of the transaction.
	ApplyApprovalDecision(ctx context.Context, expense domain.Expense, line domain.ApprovalLine) error
}

// ExpenseRepository combines all expense repository interfaces.
type ExpenseRepository interface {
	ExpenseReader
	ExpenseWriter
}
