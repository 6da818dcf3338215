package domain

import "time"

// ApprovalLineStatus indicates the state of one approval slot.
type ApprovalLineStatus string

const (
	LinePending  ApprovalLineStatus = "PENDING"
	LineApproved ApprovalLineStatus = "APPROVED"
	LineRejected ApprovalLineStatus = "REJECTED"
)

// ApprovalLine is one pending or resolved approval slot on an expense.
// The full line set is created atomically at submission and only ever replaced
// by regeneration; a single approve/reject never destroys a line.
type ApprovalLine struct {
	LineID        string             `json:"lineID"`    // Primary Key (e.g., UUID)
	ExpenseID     string             `json:"expenseID"` // FK -> expenses.expense_id, cascade delete
	ApproverID    string             `json:"approverID"`
	Rank          int                `json:"rank"` // 1-based, contiguous within one expense
	Status        ApprovalLineStatus `json:"status"`
	Comment       string             `json:"comment,omitempty"`
	ApprovalDate  *time.Time         `json:"approvalDate,omitempty"`
	RejectionDate *time.Time         `json:"rejectionDate,omitempty"`
	AuditFields
}

// ApprovalProgress derives the approved fraction of a line set as a
// percentage in [0,100]. An empty line set yields 0.
func ApprovalProgress(lines []ApprovalLine) float64 {
	if len(lines) == 0 {
		return 0
	}
	approved := 0
	for _, line := range lines {
		if line.Status == LineApproved {
			approved++
		}
	}
	return float64(approved) / float64(len(lines)) * 100
}
