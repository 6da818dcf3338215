package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expenseflow/approval_backend/internal/apperrors"
	"github.com/expenseflow/approval_backend/internal/core/domain"
)

func validRule() domain.ApprovalRule {
	return domain.ApprovalRule{
		RuleID:              "rule-1",
		Name:                "Two step approval",
		CompanyID:           "company-1",
		PercentageThreshold: 60,
		Active:              true,
		Sequence: []domain.ApproverSequenceEntry{
			{EntryID: "e1", RuleID: "rule-1", ApproverID: "user-a", Rank: 1},
			{EntryID: "e2", RuleID: "rule-1", ApproverID: "user-b", Rank: 2},
		},
	}
}

func TestApprovalRuleValidate_Success(t *testing.T) {
	rule := validRule()
	assert.NoError(t, rule.Validate())
}

func TestApprovalRuleValidate_ThresholdBounds(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		wantErr   bool
	}{
		{"zero is allowed", 0, false},
		{"hundred is allowed", 100, false},
		{"negative rejected", -1, true},
		{"above hundred rejected", 100.01, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := validRule()
			rule.PercentageThreshold = tt.threshold
			err := rule.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApprovalRuleValidate_DuplicateRank(t *testing.T) {
	rule := validRule()
	rule.Sequence[1].Rank = 1

	err := rule.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestApprovalRuleValidate_DuplicateApprover(t *testing.T) {
	rule := validRule()
	rule.Sequence[1].ApproverID = "user-a"

	err := rule.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestApprovalRuleValidate_RankBelowOne(t *testing.T) {
	rule := validRule()
	rule.Sequence[0].Rank = 0

	err := rule.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSortedSequence_OrdersByRank(t *testing.T) {
	rule := validRule()
	rule.Sequence = []domain.ApproverSequenceEntry{
		{EntryID: "e3", ApproverID: "user-c", Rank: 3},
		{EntryID: "e1", ApproverID: "user-a", Rank: 1},
		{EntryID: "e2", ApproverID: "user-b", Rank: 2},
	}

	sorted := rule.SortedSequence()
	require.Len(t, sorted, 3)
	assert.Equal(t, []string{"user-a", "user-b", "user-c"}, []string{sorted[0].ApproverID, sorted[1].ApproverID, sorted[2].ApproverID})
	// The original slice is untouched.
	assert.Equal(t, "user-c", rule.Sequence[0].ApproverID)
}

func TestApprovalProgress(t *testing.T) {
	assert.Equal(t, 0.0, domain.ApprovalProgress(nil))

	lines := []domain.ApprovalLine{
		{Rank: 1, Status: domain.LineApproved},
		{Rank: 2, Status: domain.LineApproved},
		{Rank: 3, Status: domain.LinePending},
	}
	assert.InDelta(t, 66.666, domain.ApprovalProgress(lines), 0.001)

	lines[2].Status = domain.LineApproved
	assert.Equal(t, 100.0, domain.ApprovalProgress(lines))
}
