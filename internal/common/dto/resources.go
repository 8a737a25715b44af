package dto

import "time"

type CreateVehicleRequest struct {
	Brand        string  `json:"brand" binding:"required,max=100"`
	Model        string  `json:"model" binding:"required,max=100"`
	Year         int     `json:"year" binding:"omitempty,min=1900,max=2100"`
	VIN          string  `json:"vin" binding:"omitempty,max=32"`
	Plate        string  `json:"plate" binding:"omitempty,max=20"`
	Color        string  `json:"color" binding:"omitempty,max=50"`
	Mileage      int     `json:"mileage" binding:"min=0"`
	FuelType     string  `json:"fuelType" binding:"omitempty,max=30"`
	Transmission string  `json:"transmission" binding:"omitempty,max=30"`
	Price        float64 `json:"price" binding:"min=0"`
	Cost         float64 `json:"cost" binding:"min=0"`
	Status       string  `json:"status" binding:"omitempty,oneof=AVAILABLE RESERVED SOLD"`
	Description  string  `json:"description" binding:"omitempty,max=5000"`
}

type UpdateVehicleRequest struct {
	Brand        *string  `json:"brand" binding:"omitempty,min=1,max=100"`
	Model        *string  `json:"model" binding:"omitempty,min=1,max=100"`
	Year         *int     `json:"year" binding:"omitempty,min=1900,max=2100"`
	VIN          *string  `json:"vin" binding:"omitempty,max=32"`
	Plate        *string  `json:"plate" binding:"omitempty,max=20"`
	Color        *string  `json:"color" binding:"omitempty,max=50"`
	Mileage      *int     `json:"mileage" binding:"omitempty,min=0"`
	FuelType     *string  `json:"fuelType" binding:"omitempty,max=30"`
	Transmission *string  `json:"transmission" binding:"omitempty,max=30"`
	Price        *float64 `json:"price" binding:"omitempty,min=0"`
	Cost         *float64 `json:"cost" binding:"omitempty,min=0"`
	Status       *string  `json:"status" binding:"omitempty,oneof=AVAILABLE RESERVED SOLD"`
	Description  *string  `json:"description" binding:"omitempty,max=5000"`
}

type CreateClientRequest struct {
	FirstName      string `json:"firstName" binding:"required,max=100"`
	LastName       string `json:"lastName" binding:"omitempty,max=100"`
	Email          string `json:"email" binding:"omitempty,email"`
	Phone          string `json:"phone" binding:"omitempty,max=50"`
	DocumentNumber string `json:"documentNumber" binding:"omitempty,max=50"`
	Address        string `json:"address" binding:"omitempty,max=500"`
	Source         string `json:"source" binding:"omitempty,max=50"`
	Status         string `json:"status" binding:"omitempty,oneof=LEAD ACTIVE INACTIVE"`
	Notes          string `json:"notes" binding:"omitempty,max=5000"`
}

type UpdateClientRequest struct {
	FirstName      *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName       *string `json:"lastName" binding:"omitempty,max=100"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone" binding:"omitempty,max=50"`
	DocumentNumber *string `json:"documentNumber" binding:"omitempty,max=50"`
	Address        *string `json:"address" binding:"omitempty,max=500"`
	Source         *string `json:"source" binding:"omitempty,max=50"`
	Status         *string `json:"status" binding:"omitempty,oneof=LEAD ACTIVE INACTIVE"`
	Notes          *string `json:"notes" binding:"omitempty,max=5000"`
}

type CreateSaleRequest struct {
	VehicleID       string     `json:"vehicleId" binding:"required"`
	ClientID        string     `json:"clientId" binding:"required"`
	SellerID        string     `json:"sellerId"`
	PaymentMethodID string     `json:"paymentMethodId"`
	Price           float64    `json:"price" binding:"min=0"`
	Status          string     `json:"status" binding:"omitempty,oneof=PENDING COMPLETED"`
	SaleDate        *time.Time `json:"saleDate"`
	Notes           string     `json:"notes" binding:"omitempty,max=5000"`
}

type UpdateSaleRequest struct {
	PaymentMethodID *string    `json:"paymentMethodId"`
	Price           *float64   `json:"price" binding:"omitempty,min=0"`
	Status          *string    `json:"status" binding:"omitempty,oneof=PENDING COMPLETED CANCELLED"`
	SaleDate        *time.Time `json:"saleDate"`
	Notes           *string    `json:"notes" binding:"omitempty,max=5000"`
}

type CreateTestDriveRequest struct {
	VehicleID       string    `json:"vehicleId" binding:"required"`
	ClientID        string    `json:"clientId" binding:"required"`
	UserID          string    `json:"userId"`
	ScheduledAt     time.Time `json:"scheduledAt" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"omitempty,min=5,max=480"`
	Notes           string    `json:"notes" binding:"omitempty,max=5000"`
}

type UpdateTestDriveRequest struct {
	ScheduledAt     *time.Time `json:"scheduledAt"`
	DurationMinutes *int       `json:"durationMinutes" binding:"omitempty,min=5,max=480"`
	Status          *string    `json:"status" binding:"omitempty,oneof=SCHEDULED COMPLETED CANCELLED"`
	Notes           *string    `json:"notes" binding:"omitempty,max=5000"`
}

// CreateUserRequest represents a request to create a new user
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"required,oneof=ADMIN VENDEDOR ASISTENTE"`
}

// UpdateUserRequest represents a request to update a user
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Name     *string `json:"name" binding:"omitempty,min=1,max=255"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
	Role     *string `json:"role" binding:"omitempty,oneof=ADMIN VENDEDOR ASISTENTE"`
	IsActive *bool   `json:"isActive"`
}

type CreatePaymentMethodRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty,max=1000"`
	IsActive    *bool  `json:"isActive"`
}

type UpdatePaymentMethodRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	IsActive    *bool   `json:"isActive"`
}

type CreateTemplateRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Type     string `json:"type" binding:"required,oneof=CONTRACT INVOICE RECEIPT OTHER"`
	Content  string `json:"content"`
	IsActive *bool  `json:"isActive"`
}

type UpdateTemplateRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=255"`
	Type     *string `json:"type" binding:"omitempty,oneof=CONTRACT INVOICE RECEIPT OTHER"`
	Content  *string `json:"content"`
	IsActive *bool   `json:"isActive"`
}

// UploadDocumentRequest carries the file inline as base64
type UploadDocumentRequest struct {
	Name       string `json:"name" binding:"required,max=255"`
	MimeType   string `json:"mimeType" binding:"required,max=100"`
	Data       string `json:"data" binding:"required,base64"`
	EntityType string `json:"entityType" binding:"omitempty,oneof=VEHICLE CLIENT SALE TEST_DRIVE"`
	EntityID   string `json:"entityId" binding:"required_with=EntityType"`
}

type UpdateConfigRequest struct {
	CompanyName  *string  `json:"companyName" binding:"omitempty,max=255"`
	Currency     *string  `json:"currency" binding:"omitempty,len=3"`
	TaxRate      *float64 `json:"taxRate" binding:"omitempty,min=0,max=100"`
	PrimaryColor *string  `json:"primaryColor" binding:"omitempty,hexcolor"`
	LogoBase64   *string  `json:"logoBase64"`
	ContactEmail *string  `json:"contactEmail" binding:"omitempty,email"`
}
