package models

// Company mirrors the companies table row layout.
type Company struct {
	CompanyID           string `db:"company_id"`
	Name                string `db:"name"`
	DefaultCurrencyCode string `db:"default_currency_code"`
	IsActive            bool   `db:"is_active"`
	AuditFields
}
