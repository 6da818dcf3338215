package models

// ApprovalRule mirrors the approval_rules table row layout.
type ApprovalRule struct {
	RuleID              string  `db:"rule_id"`
	Name                string  `db:"name"`
	CompanyID           string  `db:"company_id"`
	PercentageThreshold float64 `db:"percentage_threshold"`
	SpecificApproverID  *string `db:"specific_approver_id"`
	Hybrid              bool    `db:"hybrid"`
	Active              bool    `db:"active"`
	AuditFields
}

// ApproverSequenceEntry mirrors the approver_sequences table row layout.
type ApproverSequenceEntry struct {
	EntryID    string `db:"entry_id"`
	RuleID     string `db:"rule_id"`
	ApproverID string `db:"approver_id"`
	Rank       int    `db:"rank"`
}
