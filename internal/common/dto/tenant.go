package dto

// RegisterRequest is the public sign-up form
type RegisterRequest struct {
	BusinessName string `json:"businessName" binding:"required,max=255"`
	Subdomain    string `json:"subdomain" binding:"required,max=63"`
	ContactEmail string `json:"contactEmail" binding:"required,email"`
	Phone        string `json:"phone" binding:"omitempty,max=50"`
	AdminName    string `json:"adminName" binding:"required,max=255"`
	AdminEmail   string `json:"adminEmail" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8,max=72"`
	Plan         string `json:"plan" binding:"omitempty,max=32"`
}

// RegistrationQuery filters the registration list
type RegistrationQuery struct {
	PageQuery
}

// ReasonRequest carries an optional free-text reason
type ReasonRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=1000"`
}

// RejectRequest requires a reason
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// CreateTenantRequest creates a tenant directly from the super-admin console
type CreateTenantRequest struct {
	Subdomain     string `json:"subdomain" binding:"required,max=63"`
	Name          string `json:"name" binding:"required,max=255"`
	Email         string `json:"email" binding:"omitempty,email"`
	Phone         string `json:"phone" binding:"omitempty,max=50"`
	Address       string `json:"address" binding:"omitempty,max=500"`
	Plan          string `json:"plan" binding:"omitempty,max=32"`
	MaxUsers      *int   `json:"maxUsers" binding:"omitempty,min=0"`
	MaxVehicles   *int   `json:"maxVehicles" binding:"omitempty,min=0"`
	AdminName     string `json:"adminName" binding:"required,max=255"`
	AdminEmail    string `json:"adminEmail" binding:"required,email"`
	AdminPassword string `json:"adminPassword" binding:"required,min=8,max=72"`
}

// UpdateTenantRequest is a partial tenant update
type UpdateTenantRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
	Address     *string `json:"address" binding:"omitempty,max=500"`
	Plan        *string `json:"plan" binding:"omitempty,max=32"`
	MaxUsers    *int    `json:"maxUsers" binding:"omitempty,min=0"`
	MaxVehicles *int    `json:"maxVehicles" binding:"omitempty,min=0"`
}

// ImpersonateRequest names the user to act as; empty means the first active ADMIN
type ImpersonateRequest struct {
	UserID string `json:"userId" binding:"omitempty,max=36"`
}
