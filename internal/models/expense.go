package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense mirrors the expenses table row layout.
type Expense struct {
	ExpenseID         string          `db:"expense_id"`
	CompanyID         string          `db:"company_id"`
	RequesterID       string          `db:"requester_id"`
	Description       string          `db:"description"`
	TotalAmount       decimal.Decimal `db:"total_amount"`
	CurrencyCode      string          `db:"currency_code"`
	Status            string          `db:"status"`
	ApprovalRuleID    *string         `db:"approval_rule_id"`
	CurrentApproverID *string         `db:"current_approver_id"`
	AuditFields
}

// ApprovalLine mirrors the approval_lines table row layout.
type ApprovalLine struct {
	LineID        string     `db:"line_id"`
	ExpenseID     string     `db:"expense_id"`
	ApproverID    string     `db:"approver_id"`
	Rank          int        `db:"rank"`
	Status        string     `db:"status"`
	Comment       string     `db:"comment"`
	ApprovalDate  *time.Time `db:"approval_date"`
	RejectionDate *time.Time `db:"rejection_date"`
	AuditFields
}
