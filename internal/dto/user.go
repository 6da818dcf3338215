package dto

import (
	"github.com/expenseflow/approval_backend/internal/core/domain"
)

// CreateUserRequest defines the payload for creating a user.
type CreateUserRequest struct {
	Username          string  `json:"username" binding:"required,min=3,max=64"`
	Password          string  `json:"password" binding:"required,min=8"`
	Name              string  `json:"name" binding:"required"`
	CompanyID         string  `json:"companyID" binding:"required"`
	Role              string  `json:"role" binding:"omitempty,oneof=EMPLOYEE MANAGER ADMIN"`
	ManagerID         *string `json:"managerID,omitempty"`
	IsManagerApprover bool    `json:"isManagerApprover"`
}

// UserResponse defines the user data returned by the API.
type UserResponse struct {
	UserID            string  `json:"userID"`
	Username          string  `json:"username"`
	Name              string  `json:"name"`
	CompanyID         string  `json:"companyID"`
	Role              string  `json:"role"`
	ManagerID         *string `json:"managerID,omitempty"`
	IsManagerApprover bool    `json:"isManagerApprover"`
	CanApprove        bool    `json:"canApprove"`
}

// ToUserResponse converts a domain.User to UserResponse.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:            u.UserID,
		Username:          u.Username,
		Name:              u.Name,
		CompanyID:         u.CompanyID,
		Role:              string(u.Role),
		ManagerID:         u.ManagerID,
		IsManagerApprover: u.IsManagerApprover,
		CanApprove:        u.CanApproveExpenses(),
	}
}

// ToUserResponses converts a slice of domain.User to []UserResponse.
func ToUserResponses(users []domain.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i])
	}
	return responses
}
