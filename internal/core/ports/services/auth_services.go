package services

import (
	"context"

	"github.com/expenseflow/approval_backend/internal/dto"
)

// AuthSvcFacade exposes authentication at the API boundary. The workflow
// engine itself never checks credentials; it runs with engine-level authority
// once the caller is authenticated here.
type AuthSvcFacade interface {
	// Register creates a user account from a self-service signup.
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error)

	// Login verifies credentials and issues a signed JWT.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}
