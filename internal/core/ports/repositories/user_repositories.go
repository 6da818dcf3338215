package repositories

import (
	"context"

	"github.com/expenseflow/approval_backend/internal/core/domain"
)

// UserReader defines read operations for user data. It doubles as the
// approver directory consulted by the sequence resolver (manager lookup,
// manager-approver flag, approval eligibility).
type UserReader interface {
	// FindUserByID retrieves a user by its unique identifier.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByUsername retrieves a user by its login name.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindUsersByIDs retrieves multiple users keyed by ID. Missing IDs are
	// simply absent from the result map.
	FindUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error)

	// ListUsersByCompany retrieves users belonging to a company.
	ListUsersByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.User, error)
}

// UserWriter defines write operations for user data.
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUser updates mutable user fields.
	UpdateUser(ctx context.Context, user domain.User) error
}

// UserRepository combines all user repository interfaces.
type UserRepository interface {
	UserReader
	UserWriter
}
