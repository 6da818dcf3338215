package services

import (
	"context"

	"github.com/expenseflow/approval_backend/internal/core/domain"
	"github.com/expenseflow/approval_backend/internal/dto"
)

// CompanySvcFacade exposes company management operations.
type CompanySvcFacade interface {
	// CreateCompany persists a new company.
	CreateCompany(ctx context.Context, req dto.CreateCompanyRequest, creatorUserID string) (*domain.Company, error)

	// GetCompanyByID retrieves a company by ID.
	GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)
}
