package dto

// RegisterRequest defines the payload for self-service signup.
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=64"`
	Password  string `json:"password" binding:"required,min=8"`
	Name      string `json:"name" binding:"required"`
	CompanyID string `json:"companyID" binding:"required"`
}

// LoginRequest defines the payload for credential login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn"` // Seconds until expiry
	User      UserResponse `json:"user"`
}
