package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/expenseflow/approval_backend/internal/apperrors"
	"github.com/expenseflow/approval_backend/internal/core/domain"
	portsrepo "github.com/expenseflow/approval_backend/internal/core/ports/repositories"
)

// SequenceResolver materializes the ordered approver list for a rule and a
// requester. It is a pure function over its directory reads: no side effects.
type SequenceResolver struct {
	userRepo portsrepo.UserReader
}

// NewSequenceResolver creates a new SequenceResolver.
func NewSequenceResolver(userRepo portsrepo.UserReader) *SequenceResolver {
	return &SequenceResolver{userRepo: userRepo}
}

// Resolve produces the ordered, duplicate-free list of approver IDs for the
// given rule and requester. When the requester's manager is flagged as a
// mandatory first approver, the manager is prepended; rule approvers follow
// in ascending rank order, skipping anyone already present. The result may be
// empty.
func (r *SequenceResolver) Resolve(ctx context.Context, rule domain.ApprovalRule, requesterID string) ([]string, error) {
	requester, err := r.userRepo.FindUserByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("requester %s: %w", requesterID, err)
		}
		return nil, fmt.Errorf("failed to look up requester %s: %w", requesterID, err)
	}

	approvers := make([]string, 0, len(rule.Sequence)+1)
	seen := make(map[string]struct{}, len(rule.Sequence)+1)

	if requester.ManagerID != nil {
		manager, err := r.userRepo.FindUserByID(ctx, *requester.ManagerID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up manager %s: %w", *requester.ManagerID, err)
		}
		if manager != nil && manager.IsManagerApprover {
			approvers = append(approvers, manager.UserID)
			seen[manager.UserID] = struct{}{}
		}
	}

	for _, entry := range rule.SortedSequence() {
		if _, ok := seen[entry.ApproverID]; ok {
			continue
		}
		approvers = append(approvers, entry.ApproverID)
		seen[entry.ApproverID] = struct{}{}
	}

	return approvers, nil
}
