package cnst

// Tracer names used across the services
const (
	// TraceRegistration is the tracer name for the onboarding workflow
	TraceRegistration = "dealerhub/registration"
)

// Span names
const (
	SpanRegistrationApprove = "registration.approve"
)

// Common attribute keys
const (
	AttrRegistrationID = "registration.id"
	AttrTenantID       = "tenant.id"
	AttrSubdomain      = "tenant.subdomain"
)
