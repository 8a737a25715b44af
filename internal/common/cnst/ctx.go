package cnst

// Keys stored on the gin context by middleware
const (
	CtxKeyTenant    = "tenant"
	CtxKeyPrincipal = "principal"
	CtxKeyTraceID   = "trace_id"
)

// Request headers
const (
	HeaderAuthorization = "Authorization"
	HeaderTraceID       = "X-Trace-Id"
	BearerPrefix        = "Bearer "
)
