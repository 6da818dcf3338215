package models

import "time"

// User mirrors the users table row layout.
type User struct {
	UserID            string  `db:"user_id"`
	Username          string  `db:"username"`
	PasswordHash      string  `db:"password_hash"`
	Name              string  `db:"name"`
	CompanyID         string  `db:"company_id"`
	Role              string  `db:"role"`
	ManagerID         *string `db:"manager_id"`
	IsManagerApprover bool    `db:"is_manager_approver"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}
