package domain

import (
	"fmt"
	"sort"

	"github.com/expenseflow/approval_backend/internal/apperrors"
)

// ApproverSequenceEntry is one slot in a rule's ordered approver list.
type ApproverSequenceEntry struct {
	EntryID    string `json:"entryID"` // Primary Key (e.g., UUID)
	RuleID     string `json:"ruleID"`  // FK -> approval_rules.rule_id
	ApproverID string `json:"approverID"`
	Rank       int    `json:"rank"` // 1-based position in the sequence
}

// ApprovalRule is the configuration that drives the approval workflow for a
// company's expenses. Rules are read-only to the workflow engine; documents
// capture their rule at submission time.
type ApprovalRule struct {
	RuleID              string                  `json:"ruleID"` // Primary Key (e.g., UUID)
	Name                string                  `json:"name"`
	CompanyID           string                  `json:"companyID"` // FK -> companies.company_id
	Sequence            []ApproverSequenceEntry `json:"sequence"`
	PercentageThreshold float64                 `json:"percentageThreshold"` // In [0,100]
	SpecificApproverID  *string                 `json:"specificApproverID,omitempty"`
	Hybrid              bool                    `json:"hybrid"` // Specific approver OR threshold
	Active              bool                    `json:"active"` // Inactive rules are excluded from lookup
	AuditFields
}

// Validate checks the rule's construction-time invariants: the percentage
// threshold must lie in [0,100], and within one rule both ranks and approver
// identities must be unique.
func (r *ApprovalRule) Validate() error {
	if r.PercentageThreshold < 0 || r.PercentageThreshold > 100 {
		return fmt.Errorf("%w: percentage threshold must be between 0 and 100, got %v", apperrors.ErrValidation, r.PercentageThreshold)
	}
	seenRanks := make(map[int]struct{}, len(r.Sequence))
	seenApprovers := make(map[string]struct{}, len(r.Sequence))
	for _, entry := range r.Sequence {
		if entry.Rank < 1 {
			return fmt.Errorf("%w: sequence rank must be >= 1, got %d", apperrors.ErrValidation, entry.Rank)
		}
		if _, ok := seenRanks[entry.Rank]; ok {
			return fmt.Errorf("%w: duplicate rank %d in approver sequence", apperrors.ErrValidation, entry.Rank)
		}
		if _, ok := seenApprovers[entry.ApproverID]; ok {
			return fmt.Errorf("%w: approver %s appears more than once in sequence", apperrors.ErrValidation, entry.ApproverID)
		}
		seenRanks[entry.Rank] = struct{}{}
		seenApprovers[entry.ApproverID] = struct{}{}
	}
	return nil
}

// SortedSequence returns a copy of the rule's sequence entries in ascending
// rank order.
func (r *ApprovalRule) SortedSequence() []ApproverSequenceEntry {
	sorted := make([]ApproverSequenceEntry, len(r.Sequence))
	copy(sorted, r.Sequence)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Rank < sorted[j].Rank
	})
	return sorted
}
