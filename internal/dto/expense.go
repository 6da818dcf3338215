package dto

import (
	"time"

	"github.com/expenseflow/approval_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateExpenseRequest defines the payload for creating a draft expense.
type CreateExpenseRequest struct {
	Description  string          `json:"description" binding:"required"`
	TotalAmount  decimal.Decimal `json:"totalAmount" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"omitempty,len=3,uppercase"`
}

// ListExpensesParams holds parameters for listing expenses.
type ListExpensesParams struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// ApprovalLineResponse is one approval slot as returned by the API.
type ApprovalLineResponse struct {
	LineID        string     `json:"lineID"`
	ApproverID    string     `json:"approverID"`
	Rank          int        `json:"rank"`
	Status        string     `json:"status"`
	Comment       string     `json:"comment,omitempty"`
	ApprovalDate  *time.Time `json:"approvalDate,omitempty"`
	RejectionDate *time.Time `json:"rejectionDate,omitempty"`
}

// ExpenseResponse defines the expense data returned by the API.
type ExpenseResponse struct {
	ExpenseID         string                 `json:"expenseID"`
	CompanyID         string                 `json:"companyID"`
	RequesterID       string                 `json:"requesterID"`
	Description       string                 `json:"description"`
	TotalAmount       decimal.Decimal        `json:"totalAmount"`
	CurrencyCode      string                 `json:"currencyCode"`
	Status            string                 `json:"status"`
	ApprovalRuleID    *string                `json:"approvalRuleID,omitempty"`
	CurrentApproverID *string                `json:"currentApproverID,omitempty"`
	ApprovalProgress  float64                `json:"approvalProgress"`
	RequiresApproval  bool                   `json:"requiresApproval"`
	Lines             []ApprovalLineResponse `json:"lines,omitempty"`
	CreatedAt         time.Time              `json:"createdAt"`
}

// ToApprovalLineResponse converts a domain.ApprovalLine to ApprovalLineResponse.
func ToApprovalLineResponse(l *domain.ApprovalLine) ApprovalLineResponse {
	return ApprovalLineResponse{
		LineID:        l.LineID,
		ApproverID:    l.ApproverID,
		Rank:          l.Rank,
		Status:        string(l.Status),
		Comment:       l.Comment,
		ApprovalDate:  l.ApprovalDate,
		RejectionDate: l.RejectionDate,
	}
}

// ToExpenseResponse converts a domain.Expense to ExpenseResponse. Progress is
// derived from the lines carried on the expense, never read from storage.
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	lines := make([]ApprovalLineResponse, len(e.Lines))
	for i := range e.Lines {
		lines[i] = ToApprovalLineResponse(&e.Lines[i])
	}
	return ExpenseResponse{
		ExpenseID:         e.ExpenseID,
		CompanyID:         e.CompanyID,
		RequesterID:       e.RequesterID,
		Description:       e.Description,
		TotalAmount:       e.TotalAmount,
		CurrencyCode:      e.CurrencyCode,
		Status:            string(e.Status),
		ApprovalRuleID:    e.ApprovalRuleID,
		CurrentApproverID: e.CurrentApproverID,
		ApprovalProgress:  domain.ApprovalProgress(e.Lines),
		RequiresApproval:  e.RequiresApproval(),
		Lines:             lines,
		CreatedAt:         e.CreatedAt,
	}
}

// ToExpenseResponses converts a slice of domain.Expense to responses.
func ToExpenseResponses(expenses []domain.Expense) []ExpenseResponse {
	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = ToExpenseResponse(&expenses[i])
	}
	return responses
}
