package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expenseflow/approval_backend/internal/apperrors"
	"github.com/expenseflow/approval_backend/internal/core/domain"
	portsrepo "github.com/expenseflow/approval_backend/internal/core/ports/repositories"
	portssvc "github.com/expenseflow/approval_backend/internal/core/ports/services"
	"github.com/expenseflow/approval_backend/internal/dto"
	"github.com/expenseflow/approval_backend/internal/middleware"
)

// expenseService provides CRUD for expenses outside the workflow. Workflow
// transitions live in approvalService.
type expenseService struct {
	expenseRepo portsrepo.ExpenseRepository
	companyRepo portsrepo.CompanyRepository
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(expenseRepo portsrepo.ExpenseRepository, companyRepo portsrepo.CompanyRepository) portssvc.ExpenseSvcFacade {
	return &expenseService{
		expenseRepo: expenseRepo,
		companyRepo: companyRepo,
	}
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// CreateExpense implements portssvc.ExpenseSvcFacade.
func (s *expenseService) CreateExpense(ctx context.Context, companyID string, req dto.CreateExpenseRequest, requesterID string) (*domain.Expense, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("company %s: %w", companyID, err)
		}
		return nil, fmt.Errorf("failed to look up company %s: %w", companyID, err)
	}

	if req.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: expense amount must be positive", apperrors.ErrValidation)
	}

	currencyCode := req.CurrencyCode
	if currencyCode == "" {
		currencyCode = company.DefaultCurrencyCode
	}

	now := time.Now().UTC()
	expense := domain.Expense{
		ExpenseID:    uuid.NewString(),
		CompanyID:    companyID,
		RequesterID:  requesterID,
		Description:  req.Description,
		TotalAmount:  req.TotalAmount,
		CurrencyCode: currencyCode,
		Status:       domain.ExpenseDraft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requesterID,
			LastUpdatedAt: now,
			LastUpdatedBy: requesterID,
		},
	}

	if err := s.expenseRepo.SaveExpense(ctx, expense); err != nil {
		logger.Error("Failed to save expense", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}

	logger.Info("Expense created", slog.String("expense_id", expense.ExpenseID), slog.String("company_id", companyID))
	return &expense, nil
}

// GetExpenseByID implements portssvc.ExpenseSvcFacade. The returned expense
// carries its approval lines in rank order.
func (s *expenseService) GetExpenseByID(ctx context.Context, companyID string, expenseID string) (*domain.Expense, error) {
	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}

	lines, err := s.expenseRepo.FindApprovalLinesByExpenseID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approval lines for expense %s: %w", expenseID, err)
	}
	expense.Lines = lines
	return expense, nil
}

// ListExpenses implements portssvc.ExpenseSvcFacade.
func (s *expenseService) ListExpenses(ctx context.Context, companyID string, params dto.ListExpensesParams) ([]domain.Expense, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20 // Default limit
	}

	expenses, err := s.expenseRepo.ListExpensesByCompany(ctx, companyID, limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses for company %s: %w", companyID, err)
	}
	if expenses == nil {
		expenses = []domain.Expense{}
	}
	return expenses, nil
}
