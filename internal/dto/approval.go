package dto

// ApprovalDecisionRequest carries the optional comment attached to an
// approve or reject action.
type ApprovalDecisionRequest struct {
	Comment string `json:"comment" binding:"omitempty,max=2000"`
}

// ApprovalProgressResponse carries the derived approval progress percentage.
type ApprovalProgressResponse struct {
	ExpenseID string  `json:"expenseID"`
	Progress  float64 `json:"progress"` // In [0,100]
}
