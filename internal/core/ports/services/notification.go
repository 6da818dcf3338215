package services

import "context"

// NotificationSink receives workflow notifications emitted by the approval
// state machine. Delivery is fire-and-forget from the engine's perspective: a
// failed notification is logged by the sink and must never roll back an
// already-committed state transition.
type NotificationSink interface {
	// Notify informs a user about an expense awaiting their attention.
	Notify(ctx context.Context, userID string, expenseID string, message string) error
}
