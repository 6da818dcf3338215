package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/expenseflow/approval_backend/internal/apperrors"
	"github.com/expenseflow/approval_backend/internal/core/domain"
	portsrepo "github.com/expenseflow/approval_backend/internal/core/ports/repositories"
	portssvc "github.com/expenseflow/approval_backend/internal/core/ports/services"
	"github.com/expenseflow/approval_backend/internal/dto"
	"github.com/expenseflow/approval_backend/internal/middleware"
)

// userService provides user management operations.
type userService struct {
	userRepo    portsrepo.UserRepository
	companyRepo portsrepo.CompanyRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepository, companyRepo portsrepo.CompanyRepository) portssvc.UserSvcFacade {
	return &userService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// CreateUser implements portssvc.UserSvcFacade.
func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.companyRepo.FindCompanyByID(ctx, req.CompanyID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("company %s: %w", req.CompanyID, err)
		}
		return nil, fmt.Errorf("failed to look up company %s: %w", req.CompanyID, err)
	}

	existing, err := s.userRepo.FindUserByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username availability: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username %s is taken", apperrors.ErrDuplicate, req.Username)
	}

	role := domain.UserRole(req.Role)
	if role == "" {
		role = domain.RoleEmployee
	}

	// A user's manager must hold the manager role.
	if req.ManagerID != nil {
		manager, err := s.userRepo.FindUserByID(ctx, *req.ManagerID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: manager %s does not exist", apperrors.ErrValidation, *req.ManagerID)
			}
			return nil, fmt.Errorf("failed to look up manager %s: %w", *req.ManagerID, err)
		}
		if manager.Role != domain.RoleManager {
			return nil, fmt.Errorf("%w: manager must have the manager role", apperrors.ErrValidation)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		UserID:            uuid.NewString(),
		Username:          req.Username,
		PasswordHash:      string(hash),
		Name:              req.Name,
		CompanyID:         req.CompanyID,
		Role:              role,
		ManagerID:         req.ManagerID,
		IsManagerApprover: req.IsManagerApprover,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		logger.Error("Failed to save user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	logger.Info("User created", slog.String("new_user_id", user.UserID), slog.String("company_id", user.CompanyID))
	return &user, nil
}

// GetUserByID implements portssvc.UserSvcFacade.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

// ListUsers implements portssvc.UserSvcFacade.
func (s *userService) ListUsers(ctx context.Context, companyID string, limit int, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 20 // Default limit
	}
	users, err := s.userRepo.ListUsersByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users for company %s: %w", companyID, err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}
