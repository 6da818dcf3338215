package domain

// Company represents an isolated tenant owning users, rules and expenses.
type Company struct {
	CompanyID           string `json:"companyID"` // Primary Key (e.g., UUID)
	Name                string `json:"name"`
	DefaultCurrencyCode string `json:"defaultCurrencyCode"` // e.g., "USD"
	IsActive            bool   `json:"isActive"`
	AuditFields
}
