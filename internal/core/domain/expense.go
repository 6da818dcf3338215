package domain

import "github.com/shopspring/decimal"

// ExpenseStatus indicates where an expense sits in its approval lifecycle.
// APPROVED and REFUSED are terminal.
type ExpenseStatus string

const (
	ExpenseDraft     ExpenseStatus = "DRAFT"
	ExpenseSubmitted ExpenseStatus = "SUBMITTED"
	ExpenseApproved  ExpenseStatus = "APPROVED"
	ExpenseRefused   ExpenseStatus = "REFUSED"
)

// Expense is an approvable document. It exclusively owns its approval lines;
// the bound rule is shared, read-only configuration.
type Expense struct {
	ExpenseID         string          `json:"expenseID"` // Primary Key (e.g., UUID)
	CompanyID         string          `json:"companyID"` // FK -> companies.company_id
	RequesterID       string          `json:"requesterID"`
	Description       string          `json:"description"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	CurrencyCode      string          `json:"currencyCode"`
	Status            ExpenseStatus   `json:"status"`
	ApprovalRuleID    *string         `json:"approvalRuleID,omitempty"`    // Bound at submission
	CurrentApproverID *string         `json:"currentApproverID,omitempty"` // Non-nil iff submitted with a pending line
	Lines             []ApprovalLine  `json:"lines,omitempty"`             // Often loaded separately
	AuditFields
}

// RequiresApproval reports whether the expense needs to pass through the
// approval workflow at all.
func (e *Expense) RequiresApproval() bool {
	return e.TotalAmount.GreaterThan(decimal.Zero)
}
