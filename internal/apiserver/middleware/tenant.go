package middleware

import (
	"strings"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/common/cnst"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/dealerhub/dealerhub/internal/tenant"
	"github.com/gin-gonic/gin"
)

// TenantExemptPrefixes are served without a tenant header
var TenantExemptPrefixes = []string{
	"/health",
	"/metrics",
	"/api/v1/super-admin",
	"/api/v1/registration",
	"/api/v1/auth/password-reset",
	"/api/v1/files",
}

// IsTenantExempt reports whether path skips tenant resolution
func IsTenantExempt(path string) bool {
	for _, p := range TenantExemptPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// ResolveTenant reads the tenant header, resolves it to an ACTIVE tenant and
// stores it on the context. Exempt paths pass through untouched.
func ResolveTenant(resolver *tenant.Resolver, header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsTenantExempt(c.Request.URL.Path) {
			c.Next()
			return
		}

		t, err := resolver.Resolve(c.Request.Context(), c.GetHeader(header))
		if err != nil {
			errorx.Abort(c, err)
			return
		}
		c.Set(cnst.CtxKeyTenant, t)
		c.Next()
	}
}

// TenantFromContext returns the tenant resolved for the request, or nil
func TenantFromContext(c *gin.Context) *database.Tenant {
	v, ok := c.Get(cnst.CtxKeyTenant)
	if !ok {
		return nil
	}
	t, _ := v.(*database.Tenant)
	return t
}
