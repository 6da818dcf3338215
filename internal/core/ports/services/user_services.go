package services

import (
	"context"

	"github.com/expenseflow/approval_backend/internal/core/domain"
	"github.com/expenseflow/approval_backend/internal/dto"
)

// UserSvcFacade exposes user management operations.
type UserSvcFacade interface {
	// CreateUser persists a new user with a hashed password.
	CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// ListUsers retrieves a company's users.
	ListUsers(ctx context.Context, companyID string, limit int, offset int) ([]domain.User, error)
}
