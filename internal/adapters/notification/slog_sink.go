// Package notification provides NotificationSink adapters. The default sink
// logs; swapping in an email or chat transport only requires another
// implementation of the port.
package notification

import (
	"context"
	"log/slog"

	portssvc "github.com/expenseflow/approval_backend/internal/core/ports/services"
)

// SlogSink writes workflow notifications to the structured log. Used as the
// default sink and in local development.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a new SlogSink.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

var _ portssvc.NotificationSink = (*SlogSink)(nil)

// Notify implements portssvc.NotificationSink.
func (s *SlogSink) Notify(_ context.Context, userID string, expenseID string, message string) error {
	s.logger.Info("Workflow notification",
		slog.String("user_id", userID),
		slog.String("expense_id", expenseID),
		slog.String("message", message),
	)
	return nil
}
