package errorx

import (
	"fmt"
	"maps"
	"net/http"
)

// APIError is an error that maps onto a single HTTP response. Code doubles as the
// i18n message id; Message is the English fallback used when no bundle has it.
type APIError struct {
	Code         string
	Message      string
	HTTPStatus   int
	Details      any
	TemplateData map[string]any

	cause  error
	custom bool // Message was set by WithMessage and wins over the bundle
}

// New creates an APIError
func New(status int, code, message string) *APIError {
	return &APIError{Code: code, Message: message, HTTPStatus: status}
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *APIError) Unwrap() error { return e.cause }

// Is reports whether target is an APIError with the same code, so that
// errors.Is(err, ErrNotFound) holds for copies produced by the With* helpers.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

func (e *APIError) clone() *APIError {
	cp := *e
	cp.TemplateData = maps.Clone(e.TemplateData)
	return &cp
}

// WithDetails returns a copy carrying details in the response body
func (e *APIError) WithDetails(details any) *APIError {
	cp := e.clone()
	cp.Details = details
	return cp
}

// WithData returns a copy with an extra template value for the localized message
func (e *APIError) WithData(key string, value any) *APIError {
	cp := e.clone()
	if cp.TemplateData == nil {
		cp.TemplateData = make(map[string]any)
	}
	cp.TemplateData[key] = value
	return cp
}

// WithMessage returns a copy whose message is rendered as-is instead of the
// localized text for its code
func (e *APIError) WithMessage(format string, args ...any) *APIError {
	cp := e.clone()
	cp.Message = fmt.Sprintf(format, args...)
	cp.custom = true
	return cp
}

// Wrap returns a copy that records cause for logging; the cause never reaches the client
func (e *APIError) Wrap(cause error) *APIError {
	cp := e.clone()
	cp.cause = cause
	return cp
}

// FieldError describes one failed validation rule
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// Generic request errors
var (
	ErrBadRequest     = New(http.StatusBadRequest, "BAD_REQUEST", "Bad request")
	ErrInvalidBody    = New(http.StatusBadRequest, "INVALID_REQUEST_BODY", "Malformed request body")
	ErrValidation     = New(http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed")
	ErrNotFound       = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrConflict       = New(http.StatusConflict, "CONFLICT", "Resource already exists")
	ErrInternal       = New(http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	ErrForbiddenRole  = New(http.StatusForbidden, "FORBIDDEN_ROLE", "You do not have permission to perform this action")
	ErrBodyTooLarge   = New(http.StatusRequestEntityTooLarge, "INVALID_REQUEST_BODY", "Request body too large")
	ErrStatusChange   = New(http.StatusConflict, "INVALID_STATUS_TRANSITION", "Invalid status transition")
	ErrInvalidDocData = New(http.StatusBadRequest, "INVALID_DOCUMENT", "Invalid document content")
)

// Tenant resolution
var (
	ErrTenantRequired     = New(http.StatusBadRequest, "TENANT_REQUIRED", "Tenant subdomain is required")
	ErrInvalidSubdomain   = New(http.StatusBadRequest, "INVALID_SUBDOMAIN", "Invalid subdomain")
	ErrTenantNotFound     = New(http.StatusNotFound, "TENANT_NOT_FOUND", "Tenant not found")
	ErrTenantPending      = New(http.StatusForbidden, "TENANT_PENDING", "This organization is pending activation")
	ErrTenantSuspended    = New(http.StatusForbidden, "TENANT_SUSPENDED", "This organization has been suspended")
	ErrTenantCancelled    = New(http.StatusForbidden, "TENANT_CANCELLED", "This organization has been cancelled")
	ErrInvalidTenantState = New(http.StatusConflict, "INVALID_TENANT_STATE", "Operation not allowed for the current tenant status")
	ErrUnknownPlan        = New(http.StatusBadRequest, "UNKNOWN_PLAN", "Unknown subscription plan")
)

// Authentication
var (
	ErrNoToken             = New(http.StatusUnauthorized, "NO_TOKEN", "No token provided")
	ErrInvalidToken        = New(http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
	ErrTenantMismatch      = New(http.StatusForbidden, "TENANT_MISMATCH", "User does not belong to this organization")
	ErrTokenTenantMismatch = New(http.StatusForbidden, "TOKEN_TENANT_MISMATCH", "Token was issued for a different organization")
	ErrInvalidCredentials  = New(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	ErrUserDisabled        = New(http.StatusForbidden, "USER_DISABLED", "User is disabled")
	ErrInvalidOldPassword  = New(http.StatusBadRequest, "INVALID_OLD_PASSWORD", "Current password is incorrect")
	ErrInvalidResetToken   = New(http.StatusBadRequest, "INVALID_RESET_TOKEN", "Password reset link is invalid or has expired")
)

// Registration workflow
var (
	ErrReservedSubdomain    = New(http.StatusBadRequest, "RESERVED_SUBDOMAIN", "reserved subdomain")
	ErrSubdomainUnavailable = New(http.StatusConflict, "SUBDOMAIN_UNAVAILABLE", "subdomain no longer available")
	ErrRegistrationState    = New(http.StatusConflict, "INVALID_REGISTRATION_STATE", "Registration has already been reviewed")
)

// Tenant resources
var (
	ErrVehicleLimit        = New(http.StatusForbidden, "VEHICLE_LIMIT_REACHED", "Vehicle limit reached for your plan")
	ErrUserLimit           = New(http.StatusForbidden, "USER_LIMIT_REACHED", "User limit reached for your plan")
	ErrEmailExists         = New(http.StatusConflict, "EMAIL_EXISTS", "Email is already in use")
	ErrVINExists           = New(http.StatusConflict, "VIN_EXISTS", "A vehicle with this VIN already exists")
	ErrVehicleNotAvailable = New(http.StatusConflict, "VEHICLE_NOT_AVAILABLE", "Vehicle is not available")
	ErrCannotModifySelf    = New(http.StatusBadRequest, "CANNOT_MODIFY_SELF", "You cannot perform this action on your own account")
)
