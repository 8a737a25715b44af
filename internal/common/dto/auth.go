package dto

// LoginRequest represents a login request, for tenant users and super admins alike
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	User      any    `json:"user"`
	Tenant    any    `json:"tenant,omitempty"`
}

// ChangePasswordRequest represents a request to change password
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=72"`
}

// PasswordResetRequest asks for a reset token to be emailed
type PasswordResetRequest struct {
	Subdomain string `json:"subdomain" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
}

// PasswordResetConfirm redeems a reset token
type PasswordResetConfirm struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=72"`
}

// MeResponse describes the caller
type MeResponse struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           string `json:"role,omitempty"`
	SuperAdmin     bool   `json:"superAdmin"`
	ImpersonatedBy string `json:"impersonatedBy,omitempty"`
	Tenant         any    `json:"tenant,omitempty"`
}
