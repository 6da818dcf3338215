package dto

import "github.com/expenseflow/approval_backend/internal/core/domain"

// CreateCompanyRequest defines the payload for creating a company.
type CreateCompanyRequest struct {
	Name                string `json:"name" binding:"required"`
	DefaultCurrencyCode string `json:"defaultCurrencyCode" binding:"omitempty,len=3,uppercase"`
}

// CompanyResponse defines the company data returned by the API.
type CompanyResponse struct {
	CompanyID           string `json:"companyID"`
	Name                string `json:"name"`
	DefaultCurrencyCode string `json:"defaultCurrencyCode"`
	IsActive            bool   `json:"isActive"`
}

// ToCompanyResponse converts a domain.Company to CompanyResponse.
func ToCompanyResponse(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		CompanyID:           c.CompanyID,
		Name:                c.Name,
		DefaultCurrencyCode: c.DefaultCurrencyCode,
		IsActive:            c.IsActive,
	}
}
