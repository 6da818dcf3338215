package services

import "github.com/expenseflow/approval_backend/internal/core/domain"

// RuleEvaluator decides whether a rule's completion predicate is satisfied by
// the current approval line states. Stateless and side-effect free.
type RuleEvaluator struct{}

// IsSatisfied evaluates the rule against the given line set.
//
// With zero lines the result is always false; the state machine's
// "no more approvers" fallback governs the outcome instead. For a non-hybrid
// rule, an approval by the specific approver is an unconditional gate that
// short-circuits before the percentage branch. For a hybrid rule, either the
// specific approver's approval or the percentage threshold suffices.
// The percentage comparison uses >=, so an exact match passes.
func (RuleEvaluator) IsSatisfied(rule domain.ApprovalRule, lines []domain.ApprovalLine) bool {
	total := len(lines)
	if total == 0 {
		return false
	}

	approved := 0
	specificApproved := false
	for _, line := range lines {
		if line.Status != domain.LineApproved {
			continue
		}
		approved++
		if rule.SpecificApproverID != nil && line.ApproverID == *rule.SpecificApproverID {
			specificApproved = true
		}
	}

	if !rule.Hybrid && specificApproved {
		return true
	}

	percentageMet := float64(approved)/float64(total)*100 >= rule.PercentageThreshold

	if rule.Hybrid {
		return specificApproved || percentageMet
	}
	return percentageMet
}
