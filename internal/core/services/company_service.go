package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/expenseflow/approval_backend/internal/core/domain"
	portsrepo "github.com/expenseflow/approval_backend/internal/core/ports/repositories"
	portssvc "github.com/expenseflow/approval_backend/internal/core/ports/services"
	"github.com/expenseflow/approval_backend/internal/dto"
	"github.com/expenseflow/approval_backend/internal/middleware"
)

// companyService provides company management operations. Tenant bootstrap
// (seeding the first company) is an application-setup concern handled by the
// operator, not by the workflow engine.
type companyService struct {
	companyRepo portsrepo.CompanyRepository
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(companyRepo portsrepo.CompanyRepository) portssvc.CompanySvcFacade {
	return &companyService{companyRepo: companyRepo}
}

var _ portssvc.CompanySvcFacade = (*companyService)(nil)

// CreateCompany implements portssvc.CompanySvcFacade.
func (s *companyService) CreateCompany(ctx context.Context, req dto.CreateCompanyRequest, creatorUserID string) (*domain.Company, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	currencyCode := req.DefaultCurrencyCode
	if currencyCode == "" {
		currencyCode = "USD"
	}

	now := time.Now().UTC()
	company := domain.Company{
		CompanyID:           uuid.NewString(),
		Name:                req.Name,
		DefaultCurrencyCode: currencyCode,
		IsActive:            true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.companyRepo.SaveCompany(ctx, company); err != nil {
		logger.Error("Failed to save company", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save company: %w", err)
	}

	logger.Info("Company created", slog.String("company_id", company.CompanyID))
	return &company, nil
}

// GetCompanyByID implements portssvc.CompanySvcFacade.
func (s *companyService) GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	return s.companyRepo.FindCompanyByID(ctx, companyID)
}
