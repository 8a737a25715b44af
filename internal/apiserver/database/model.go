package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the string uuid primary key shared by every table
type Base struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a uuid when the caller did not
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// TenantStatus is the lifecycle state of a tenant
type TenantStatus string

const (
	TenantPending   TenantStatus = "PENDING"
	TenantActive    TenantStatus = "ACTIVE"
	TenantSuspended TenantStatus = "SUSPENDED"
	TenantCancelled TenantStatus = "CANCELLED"
)

// Role is the closed set of tenant user roles. There is no hierarchy between them.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleVendedor  Role = "VENDEDOR"
	RoleAsistente Role = "ASISTENTE"
)

// Roles lists every valid role
var Roles = []Role{RoleAdmin, RoleVendedor, RoleAsistente}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleVendedor, RoleAsistente:
		return true
	}
	return false
}

// Tenant is a customer organisation addressed by its subdomain
type Tenant struct {
	Base
	Subdomain    string       `json:"subdomain" gorm:"type:varchar(63);uniqueIndex;not null"`
	Name         string       `json:"name" gorm:"type:varchar(255);not null"`
	Email        string       `json:"email" gorm:"type:varchar(255)"`
	Phone        string       `json:"phone" gorm:"type:varchar(50)"`
	Address      string       `json:"address" gorm:"type:text"`
	Status       TenantStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Plan         string       `json:"plan" gorm:"type:varchar(32);not null"`
	MaxUsers     int          `json:"maxUsers"`
	MaxVehicles  int          `json:"maxVehicles"`
	StatusReason string       `json:"statusReason,omitempty" gorm:"type:text"`
}

// User is a member of exactly one tenant
type User struct {
	Base
	TenantID     string     `json:"tenantId" gorm:"type:varchar(36);not null;uniqueIndex:idx_users_tenant_email"`
	Email        string     `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:idx_users_tenant_email"`
	Name         string     `json:"name" gorm:"type:varchar(255);not null"`
	PasswordHash string     `json:"-" gorm:"type:varchar(255);not null"`
	Role         Role       `json:"role" gorm:"type:varchar(20);not null"`
	IsActive     bool       `json:"isActive" gorm:"not null"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// SuperAdmin is a platform operator outside any tenant
type SuperAdmin struct {
	Base
	Email        string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name         string     `json:"name" gorm:"type:varchar(255);not null"`
	PasswordHash string     `json:"-" gorm:"type:varchar(255);not null"`
	IsActive     bool       `json:"isActive" gorm:"not null"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// RegistrationStatus is the review state of a registration request
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "PENDING"
	RegistrationApproved RegistrationStatus = "APPROVED"
	RegistrationRejected RegistrationStatus = "REJECTED"
)

// TenantRegistration is a public sign-up request awaiting super-admin review
type TenantRegistration struct {
	Base
	BusinessName    string             `json:"businessName" gorm:"type:varchar(255);not null"`
	Subdomain       string             `json:"subdomain" gorm:"type:varchar(63);not null;index"`
	ContactEmail    string             `json:"contactEmail" gorm:"type:varchar(255);not null"`
	Phone           string             `json:"phone" gorm:"type:varchar(50)"`
	AdminName       string             `json:"adminName" gorm:"type:varchar(255);not null"`
	AdminEmail      string             `json:"adminEmail" gorm:"type:varchar(255);not null"`
	PasswordHash    string             `json:"-" gorm:"type:varchar(255);not null"`
	Plan            string             `json:"plan" gorm:"type:varchar(32);not null"`
	Status          RegistrationStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	RejectionReason string             `json:"rejectionReason,omitempty" gorm:"type:text"`
	ReviewedBy      string             `json:"reviewedBy,omitempty" gorm:"type:varchar(36)"`
	ReviewedAt      *time.Time         `json:"reviewedAt,omitempty"`
	TenantID        string             `json:"tenantId,omitempty" gorm:"type:varchar(36)"`
}

// AppConfig holds per-tenant branding and defaults
type AppConfig struct {
	Base
	TenantID     string  `json:"tenantId" gorm:"type:varchar(36);uniqueIndex;not null"`
	CompanyName  string  `json:"companyName" gorm:"type:varchar(255)"`
	Currency     string  `json:"currency" gorm:"type:varchar(8)"`
	TaxRate      float64 `json:"taxRate"`
	PrimaryColor string  `json:"primaryColor" gorm:"type:varchar(16)"`
	LogoBase64   string  `json:"logoBase64,omitempty" gorm:"type:text"`
	ContactEmail string  `json:"contactEmail" gorm:"type:varchar(255)"`
}

// PaymentMethod is a tenant-defined way of paying for a sale
type PaymentMethod struct {
	Base
	TenantID    string `json:"tenantId" gorm:"type:varchar(36);not null;index"`
	Name        string `json:"name" gorm:"type:varchar(100);not null"`
	Description string `json:"description" gorm:"type:text"`
	IsActive    bool   `json:"isActive" gorm:"not null"`
}

// DefaultPaymentMethods are created for every new tenant
var DefaultPaymentMethods = []string{"Efectivo", "Transferencia bancaria", "Tarjeta", "Financiamiento"}

// VehicleStatus tracks a vehicle through the sales pipeline
type VehicleStatus string

const (
	VehicleAvailable VehicleStatus = "AVAILABLE"
	VehicleReserved  VehicleStatus = "RESERVED"
	VehicleSold      VehicleStatus = "SOLD"
)

type Vehicle struct {
	Base
	TenantID     string        `json:"tenantId" gorm:"type:varchar(36);not null;index:idx_vehicles_tenant_vin"`
	Brand        string        `json:"brand" gorm:"type:varchar(100);not null"`
	Model        string        `json:"model" gorm:"type:varchar(100);not null"`
	Year         int           `json:"year"`
	VIN          string        `json:"vin" gorm:"column:vin;type:varchar(32);index:idx_vehicles_tenant_vin"`
	Plate        string        `json:"plate" gorm:"type:varchar(20)"`
	Color        string        `json:"color" gorm:"type:varchar(50)"`
	Mileage      int           `json:"mileage"`
	FuelType     string        `json:"fuelType" gorm:"type:varchar(30)"`
	Transmission string        `json:"transmission" gorm:"type:varchar(30)"`
	Price        float64       `json:"price"`
	Cost         float64       `json:"cost"`
	Status       VehicleStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Description  string        `json:"description" gorm:"type:text"`
}

// ClientStatus is the CRM stage of a client
type ClientStatus string

const (
	ClientLead     ClientStatus = "LEAD"
	ClientActive   ClientStatus = "ACTIVE"
	ClientInactive ClientStatus = "INACTIVE"
)

type Client struct {
	Base
	TenantID       string       `json:"tenantId" gorm:"type:varchar(36);not null;index"`
	FirstName      string       `json:"firstName" gorm:"type:varchar(100);not null"`
	LastName       string       `json:"lastName" gorm:"type:varchar(100)"`
	Email          string       `json:"email" gorm:"type:varchar(255)"`
	Phone          string       `json:"phone" gorm:"type:varchar(50)"`
	DocumentNumber string       `json:"documentNumber" gorm:"type:varchar(50)"`
	Address        string       `json:"address" gorm:"type:text"`
	Source         string       `json:"source" gorm:"type:varchar(50)"`
	Status         ClientStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Notes          string       `json:"notes" gorm:"type:text"`
}

// SaleStatus is the state of a sale
type SaleStatus string

const (
	SalePending   SaleStatus = "PENDING"
	SaleCompleted SaleStatus = "COMPLETED"
	SaleCancelled SaleStatus = "CANCELLED"
)

type Sale struct {
	Base
	TenantID        string     `json:"tenantId" gorm:"type:varchar(36);not null;index"`
	VehicleID       string     `json:"vehicleId" gorm:"type:varchar(36);not null;index"`
	ClientID        string     `json:"clientId" gorm:"type:varchar(36);not null;index"`
	SellerID        string     `json:"sellerId" gorm:"type:varchar(36);index"`
	PaymentMethodID string     `json:"paymentMethodId" gorm:"type:varchar(36)"`
	Price           float64    `json:"price"`
	Status          SaleStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	SaleDate        time.Time  `json:"saleDate"`
	Notes           string     `json:"notes" gorm:"type:text"`
}

// TestDriveStatus is the state of a scheduled test drive
type TestDriveStatus string

const (
	TestDriveScheduled TestDriveStatus = "SCHEDULED"
	TestDriveCompleted TestDriveStatus = "COMPLETED"
	TestDriveCancelled TestDriveStatus = "CANCELLED"
)

type TestDrive struct {
	Base
	TenantID        string          `json:"tenantId" gorm:"type:varchar(36);not null;index"`
	VehicleID       string          `json:"vehicleId" gorm:"type:varchar(36);not null;index"`
	ClientID        string          `json:"clientId" gorm:"type:varchar(36);not null;index"`
	UserID          string          `json:"userId" gorm:"type:varchar(36)"`
	ScheduledAt     time.Time       `json:"scheduledAt" gorm:"index"`
	DurationMinutes int             `json:"durationMinutes"`
	Status          TestDriveStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Notes           string          `json:"notes" gorm:"type:text"`
}

// TemplateType classifies a document template
type TemplateType string

const (
	TemplateContract TemplateType = "CONTRACT"
	TemplateInvoice  TemplateType = "INVOICE"
	TemplateReceipt  TemplateType = "RECEIPT"
	TemplateOther    TemplateType = "OTHER"
)

// DocumentTemplate stores template text; placeholders are not rendered server side
type DocumentTemplate struct {
	Base
	TenantID string       `json:"tenantId" gorm:"type:varchar(36);not null;index"`
	Name     string       `json:"name" gorm:"type:varchar(255);not null"`
	Type     TemplateType `json:"type" gorm:"type:varchar(20);not null"`
	Content  string       `json:"content" gorm:"type:text"`
	IsActive bool         `json:"isActive" gorm:"not null"`
}

// Document is an uploaded file kept base64-encoded in the database
type Document struct {
	Base
	TenantID   string `json:"tenantId" gorm:"type:varchar(36);not null;index"`
	Name       string `json:"name" gorm:"type:varchar(255);not null"`
	MimeType   string `json:"mimeType" gorm:"type:varchar(100);not null"`
	Size       int64  `json:"size"`
	Data       string `json:"-" gorm:"type:text;not null"`
	EntityType string `json:"entityType,omitempty" gorm:"type:varchar(30);index:idx_documents_entity"`
	EntityID   string `json:"entityId,omitempty" gorm:"type:varchar(36);index:idx_documents_entity"`
	UploadedBy string `json:"uploadedBy" gorm:"type:varchar(36)"`
}

// AuditLog records a mutation made inside a tenant
type AuditLog struct {
	Base
	TenantID       string `json:"tenantId" gorm:"type:varchar(36);not null;index"`
	UserID         string `json:"userId" gorm:"type:varchar(36)"`
	ImpersonatedBy string `json:"impersonatedBy,omitempty" gorm:"type:varchar(36)"`
	Action         string `json:"action" gorm:"type:varchar(30);not null"`
	Resource       string `json:"resource" gorm:"type:varchar(50);not null"`
	ResourceID     string `json:"resourceId" gorm:"type:varchar(36)"`
	IP             string `json:"ip" gorm:"type:varchar(64)"`
}

// tenantOwned lists every table keyed by tenant_id, in deletion order
func tenantOwned() []any {
	return []any{
		&AuditLog{}, &Document{}, &DocumentTemplate{}, &TestDrive{}, &Sale{},
		&Client{}, &Vehicle{}, &PaymentMethod{}, &AppConfig{}, &User{},
	}
}

func allModels() []any {
	return append([]any{&Tenant{}, &SuperAdmin{}, &TenantRegistration{}}, tenantOwned()...)
}
