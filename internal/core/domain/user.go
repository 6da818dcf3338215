package domain

import "time"

// UserRole defines the role a user holds within their company.
type UserRole string

const (
	RoleEmployee UserRole = "EMPLOYEE"
	RoleManager  UserRole = "MANAGER"
	RoleAdmin    UserRole = "ADMIN"
)

// User represents a user of the application in the domain.
type User struct {
	UserID            string   `json:"userID"` // Primary Key (e.g., UUID)
	Username          string   `json:"username"`
	PasswordHash      string   `json:"-"` // Never expose the hash in JSON responses
	Name              string   `json:"name"`
	CompanyID         string   `json:"companyID"` // FK -> companies.company_id
	Role              UserRole `json:"role"`
	ManagerID         *string  `json:"managerID,omitempty"`  // Nullable FK -> users.user_id
	IsManagerApprover bool     `json:"isManagerApprover"`    // Manager must approve first when true
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"` // Used for soft delete
}

// CanApproveExpenses reports whether the user is eligible to appear in an
// approval sequence. Only managers and admins can approve.
func (u *User) CanApproveExpenses() bool {
	return u.Role == RoleManager || u.Role == RoleAdmin
}
