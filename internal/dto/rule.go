package dto

import "github.com/expenseflow/approval_backend/internal/core/domain"

// ApproverSequenceEntryRequest is one slot in a rule's approver sequence.
type ApproverSequenceEntryRequest struct {
	ApproverID string `json:"approverID" binding:"required"`
	Rank       int    `json:"rank" binding:"required,min=1"`
}

// CreateApprovalRuleRequest defines the payload for creating an approval rule.
// PercentageThreshold defaults to 60 when omitted.
type CreateApprovalRuleRequest struct {
	Name                string                         `json:"name" binding:"required"`
	PercentageThreshold *float64                       `json:"percentageThreshold,omitempty"`
	SpecificApproverID  *string                        `json:"specificApproverID,omitempty"`
	Hybrid              bool                           `json:"hybrid"`
	Sequence            []ApproverSequenceEntryRequest `json:"sequence" binding:"dive"`
}

// UpdateApprovalRuleRequest defines the payload for updating an approval rule.
// Nil fields are left unchanged; a non-nil Sequence replaces the full sequence.
type UpdateApprovalRuleRequest struct {
	Name                *string                         `json:"name,omitempty"`
	PercentageThreshold *float64                        `json:"percentageThreshold,omitempty"`
	SpecificApproverID  *string                         `json:"specificApproverID,omitempty"`
	Hybrid              *bool                           `json:"hybrid,omitempty"`
	Sequence            *[]ApproverSequenceEntryRequest `json:"sequence,omitempty"`
}

// ApproverSequenceEntryResponse is one sequence slot as returned by the API.
type ApproverSequenceEntryResponse struct {
	ApproverID string `json:"approverID"`
	Rank       int    `json:"rank"`
}

// ApprovalRuleResponse defines the rule data returned by the API.
type ApprovalRuleResponse struct {
	RuleID              string                          `json:"ruleID"`
	Name                string                          `json:"name"`
	CompanyID           string                          `json:"companyID"`
	PercentageThreshold float64                         `json:"percentageThreshold"`
	SpecificApproverID  *string                         `json:"specificApproverID,omitempty"`
	Hybrid              bool                            `json:"hybrid"`
	Active              bool                            `json:"active"`
	Sequence            []ApproverSequenceEntryResponse `json:"sequence"`
}

// ToApprovalRuleResponse converts a domain.ApprovalRule to ApprovalRuleResponse.
func ToApprovalRuleResponse(r *domain.ApprovalRule) ApprovalRuleResponse {
	sequence := make([]ApproverSequenceEntryResponse, 0, len(r.Sequence))
	for _, entry := range r.SortedSequence() {
		sequence = append(sequence, ApproverSequenceEntryResponse{
			ApproverID: entry.ApproverID,
			Rank:       entry.Rank,
		})
	}
	return ApprovalRuleResponse{
		RuleID:              r.RuleID,
		Name:                r.Name,
		CompanyID:           r.CompanyID,
		PercentageThreshold: r.PercentageThreshold,
		SpecificApproverID:  r.SpecificApproverID,
		Hybrid:              r.Hybrid,
		Active:              r.Active,
		Sequence:            sequence,
	}
}

// ToApprovalRuleResponses converts a slice of domain.ApprovalRule to responses.
func ToApprovalRuleResponses(rules []domain.ApprovalRule) []ApprovalRuleResponse {
	responses := make([]ApprovalRuleResponse, len(rules))
	for i := range rules {
		responses[i] = ToApprovalRuleResponse(&rules[i])
	}
	return responses
}
