package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/expenseflow/approval_backend/internal/apperrors"
	"github.com/expenseflow/approval_backend/internal/core/domain"
	portsrepo "github.com/expenseflow/approval_backend/internal/core/ports/repositories"
	portssvc "github.com/expenseflow/approval_backend/internal/core/ports/services"
	"github.com/expenseflow/approval_backend/internal/dto"
	"github.com/expenseflow/approval_backend/internal/middleware"
	"github.com/expenseflow/approval_backend/internal/platform/config"
)

// ErrInvalidCredentials indicates a failed username/password check. Kept
// deliberately vague to avoid leaking which part was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// authService authenticates callers at the API boundary. The workflow engine
// itself runs with engine-level authority once a caller passes here.
type authService struct {
	userRepo portsrepo.UserReader
	userSvc  portssvc.UserSvcFacade
	cfg      *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo portsrepo.UserReader, userSvc portssvc.UserSvcFacade, cfg *config.Config) portssvc.AuthSvcFacade {
	return &authService{
		userRepo: userRepo,
		userSvc:  userSvc,
		cfg:      cfg,
	}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

// Register implements portssvc.AuthSvcFacade. Self-registered users always
// start as employees; role changes are an admin operation.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	user, err := s.userSvc.CreateUser(ctx, dto.CreateUserRequest{
		Username:  req.Username,
		Password:  req.Password,
		Name:      req.Name,
		CompanyID: req.CompanyID,
		Role:      string(domain.RoleEmployee),
	}, "self-registration")
	if err != nil {
		return nil, err
	}
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// Login implements portssvc.AuthSvcFacade.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("Failed login attempt", slog.String("username", req.Username))
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	expiry := now.Add(s.cfg.JWTExpiryDuration)
	claims := jwt.RegisteredClaims{
		Subject:   user.UserID,
		Issuer:    s.cfg.JWTIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiry),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	logger.Info("User logged in", slog.String("login_user_id", user.UserID))
	return &dto.LoginResponse{
		Token:     signed,
		ExpiresIn: int64(s.cfg.JWTExpiryDuration.Seconds()),
		User:      dto.ToUserResponse(user),
	}, nil
}
