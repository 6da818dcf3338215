package services

import (
	"context"

	"github.com/expenseflow/approval_backend/internal/core/domain"
	"github.com/expenseflow/approval_backend/internal/dto"
)

// ExpenseReaderSvc defines read operations for expense data.
type ExpenseReaderSvc interface {
	// GetExpenseByID retrieves an expense with its approval lines.
	GetExpenseByID(ctx context.Context, companyID string, expenseID string) (*domain.Expense, error)

	// ListExpenses retrieves a company's expenses.
	ListExpenses(ctx context.Context, companyID string, params dto.ListExpensesParams) ([]domain.Expense, error)
}

// ExpenseWriterSvc defines write operations for expense data.
type ExpenseWriterSvc interface {
	// CreateExpense persists a new draft expense for the requester.
	CreateExpense(ctx context.Context, companyID string, req dto.CreateExpenseRequest, requesterID string) (*domain.Expense, error)
}

// ExpenseSvcFacade combines all expense service interfaces.
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
}
