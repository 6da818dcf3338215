package services

import (
	"context"

	"github.com/expenseflow/approval_backend/internal/dto"
)

// ApprovalSvcFacade exposes the expense approval state machine. All
// operations are serialized per expense and execute with engine-level
// authority; the caller's own access rights are checked at the API boundary.
type ApprovalSvcFacade interface {
	// SubmitExpense moves a draft expense to SUBMITTED: binds the applicable
	// rule, regenerates the approval line set and notifies the first approver.
	SubmitExpense(ctx context.Context, companyID string, expenseID string, actingUserID string) error

	// ApproveExpense records the acting user's approval on their pending line
	// and re-evaluates the rule: the expense either completes, advances to the
	// next approver, or is refused when the sequence is exhausted.
	ApproveExpense(ctx context.Context, companyID string, expenseID string, actingUserID string, req dto.ApprovalDecisionRequest) error

	// RejectExpense records the acting user's rejection. A single rejection
	// anywhere in the sequence refuses the whole expense.
	RejectExpense(ctx context.Context, companyID string, expenseID string, actingUserID string, req dto.ApprovalDecisionRequest) error

	// GetApprovalProgress derives the approved percentage in [0,100] from the
	// expense's current line set.
	GetApprovalProgress(ctx context.Context, companyID string, expenseID string) (float64, error)
}
