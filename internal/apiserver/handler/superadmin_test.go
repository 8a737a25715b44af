package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func registration(sub string) gin.H {
	return gin.H{
		"businessName": "Autos " + sub,
		"subdomain":    sub,
		"contactEmail": "contact@" + sub + ".test",
		"adminName":    "Owner",
		"adminEmail":   "owner@" + sub + ".test",
		"password":     "owner-password-1",
		"plan":         "professional",
	}
}

func TestRegistrationReservedSubdomain(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/registration/check-subdomain?subdomain=demo", "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "available").Bool())
	assert.Equal(t, "reserved", gjson.Get(w.Body.String(), "reason").String())

	w = f.do(t, http.MethodPost, "/api/v1/registration", "", "", registration("demo"))
	assertError(t, w, http.StatusBadRequest, "RESERVED_SUBDOMAIN")
	assert.Equal(t, "reserved subdomain", gjson.Get(w.Body.String(), "error").String())

	w = f.do(t, http.MethodPost, "/api/v1/registration", "", "", registration("-bad-"))
	assertError(t, w, http.StatusBadRequest, "INVALID_SUBDOMAIN")

	w = f.do(t, http.MethodPost, "/api/v1/registration", "", "", registration("alpha"))
	assertError(t, w, http.StatusConflict, "SUBDOMAIN_UNAVAILABLE")
	assert.Equal(t, "subdomain is not available", gjson.Get(w.Body.String(), "error").String())

	w = f.do(t, http.MethodGet, "/api/v1/registration/check-subdomain", "", "", nil)
	assertError(t, w, http.StatusBadRequest, "BAD_REQUEST")
	assert.Equal(t, "subdomain is required", gjson.Get(w.Body.String(), "error").String())
}

func TestRegistrationApprovalFlow(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/registration", "", "", registration("Charlie"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	regID := gjson.Get(w.Body.String(), "id").String()
	assert.Equal(t, "charlie", gjson.Get(w.Body.String(), "subdomain").String())
	assert.Equal(t, "PENDING", gjson.Get(w.Body.String(), "status").String())
	assert.Equal(t, "PROFESSIONAL", gjson.Get(w.Body.String(), "plan").String())
	assert.False(t, gjson.Get(w.Body.String(), "passwordHash").Exists())

	w = f.do(t, http.MethodGet, "/api/v1/registration/check-subdomain?subdomain=charlie", "", "", nil)
	assert.Equal(t, "pending", gjson.Get(w.Body.String(), "reason").String())
	assertError(t, f.do(t, http.MethodPost, "/api/v1/registration", "", "", registration("charlie")), http.StatusConflict, "SUBDOMAIN_UNAVAILABLE")

	// not a tenant yet
	assertError(t, f.do(t, http.MethodPost, "/api/v1/auth/login", "charlie", "", gin.H{"email": "owner@charlie.test", "password": "owner-password-1"}),
		http.StatusNotFound, "TENANT_NOT_FOUND")

	assertError(t, f.do(t, http.MethodGet, "/api/v1/super-admin/registrations", "", "", nil), http.StatusUnauthorized, "NO_TOKEN")
	assertError(t, f.do(t, http.MethodGet, "/api/v1/super-admin/registrations", "", f.token(t, f.admin), nil), http.StatusUnauthorized, "INVALID_TOKEN")

	w = f.asRoot(t, http.MethodGet, "/api/v1/super-admin/registrations?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "total").Int())

	w = f.asRoot(t, http.MethodPost, "/api/v1/super-admin/registrations/"+regID+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	assert.Equal(t, "APPROVED", gjson.Get(body, "registration.status").String())
	assert.Equal(t, f.root.ID, gjson.Get(body, "registration.reviewedBy").String())
	assert.Equal(t, "ACTIVE", gjson.Get(body, "tenant.status").String())
	assert.Equal(t, int64(10), gjson.Get(body, "tenant.maxUsers").Int())

	assertError(t, f.asRoot(t, http.MethodPost, "/api/v1/super-admin/registrations/"+regID+"/approve", nil), http.StatusConflict, "INVALID_REGISTRATION_STATE")

	// the registered admin can sign in to the new tenant
	w = f.do(t, http.MethodPost, "/api/v1/auth/login", "charlie", "", gin.H{"email": "Owner@Charlie.test", "password": "owner-password-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tok := gjson.Get(w.Body.String(), "token").String()
	assert.Equal(t, "ADMIN", gjson.Get(w.Body.String(), "user.role").String())

	w = f.do(t, http.MethodGet, "/api/v1/payment-methods", "charlie", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(4), gjson.Get(w.Body.String(), "total").Int())

	require.NoError(t, f.notifier.Wait(context.Background()))
	assert.Len(t, f.outbox.to("contact@charlie.test"), 2)
	assert.NotEmpty(t, f.outbox.to("ops@platform.test"))
}

func TestRegistrationReject(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/v1/registration", "", "", registration("delta"))
	require.Equal(t, http.StatusCreated, w.Code)
	regID := gjson.Get(w.Body.String(), "id").String()

	assertError(t, f.asRoot(t, http.MethodPost, "/api/v1/super-admin/registrations/"+regID+"/reject", gin.H{}), http.StatusBadRequest, "VALIDATION_ERROR")

	w = f.asRoot(t, http.MethodPost, "/api/v1/super-admin/registrations/"+regID+"/reject", gin.H{"reason": "incomplete"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "REJECTED", gjson.Get(w.Body.String(), "status").String())
	assert.Equal(t, "incomplete", gjson.Get(w.Body.String(), "rejectionReason").String())

	assertError(t, f.asRoot(t, http.MethodPost, "/api/v1/super-admin/registrations/"+regID+"/approve", nil), http.StatusConflict, "INVALID_REGISTRATION_STATE")
	assertError(t, f.asRoot(t, http.MethodGet, "/api/v1/super-admin/registrations/missing", nil), http.StatusNotFound, "NOT_FOUND")

	// the subdomain is free again
	w = f.do(t, http.MethodGet, "/api/v1/registration/check-subdomain?subdomain=delta", "", "", nil)
	assert.True(t, gjson.Get(w.Body.String(), "available").Bool())
}

func TestSuperAdminLoginAndMe(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/super-admin/login", "", "", gin.H{"email": "root@platform.test", "password": "nope-nope"})
	assertError(t, w, http.StatusUnauthorized, "INVALID_CREDENTIALS")

	w = f.do(t, http.MethodPost, "/api/v1/super-admin/login", "", "", gin.H{"email": "root@platform.test", "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tok := gjson.Get(w.Body.String(), "token").String()

	w = f.do(t, http.MethodGet, "/api/v1/super-admin/me", "", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gjson.Get(w.Body.String(), "superAdmin").Bool())
	assert.Equal(t, f.root.ID, gjson.Get(w.Body.String(), "id").String())

	// a super-admin token cannot reach tenant routes
	assertError(t, f.do(t, http.MethodGet, "/api/v1/auth/me", "alpha", tok, nil), http.StatusUnauthorized, "INVALID_TOKEN")
}

func TestSuperAdminTenantLifecycle(t *testing.T) {
	f := newFixture(t)
	base := "/api/v1/super-admin/tenants/" + f.alpha.ID

	// warm the resolver cache
	require.Equal(t, http.StatusOK, f.as(t, f.admin, http.MethodGet, "/api/v1/vehicles", nil).Code)

	w := f.asRoot(t, http.MethodPost, base+"/suspend", gin.H{"reason": "unpaid"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "SUSPENDED", gjson.Get(w.Body.String(), "status").String())
	assertError(t, f.as(t, f.admin, http.MethodGet, "/api/v1/vehicles", nil), http.StatusForbidden, "TENANT_SUSPENDED")

	assertError(t, f.asRoot(t, http.MethodPost, base+"/suspend", nil), http.StatusConflict, "INVALID_TENANT_STATE")

	w = f.asRoot(t, http.MethodPost, base+"/reactivate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusOK, f.as(t, f.admin, http.MethodGet, "/api/v1/vehicles", nil).Code)
	assertError(t, f.asRoot(t, http.MethodPost, base+"/reactivate", nil), http.StatusConflict, "INVALID_TENANT_STATE")

	w = f.asRoot(t, http.MethodPut, base, gin.H{"plan": "ENTERPRISE"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ENTERPRISE", gjson.Get(w.Body.String(), "plan").String())
	assert.Equal(t, int64(0), gjson.Get(w.Body.String(), "maxVehicles").Int())

	w = f.asRoot(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), gjson.Get(w.Body.String(), "usage.users").Int())
	assert.Equal(t, "alpha", gjson.Get(w.Body.String(), "subdomain").String())

	w = f.asRoot(t, http.MethodGet, base+"/users", nil)
	assert.Equal(t, int64(3), gjson.Get(w.Body.String(), "total").Int())

	w = f.asRoot(t, http.MethodGet, "/api/v1/super-admin/tenants?q=alp", nil)
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "total").Int())

	w = f.asRoot(t, http.MethodPost, base+"/cancel", gin.H{"reason": "closed"})
	require.Equal(t, http.StatusOK, w.Code)
	assertError(t, f.as(t, f.admin, http.MethodGet, "/api/v1/vehicles", nil), http.StatusForbidden, "TENANT_CANCELLED")

	w = f.asRoot(t, http.MethodGet, "/api/v1/super-admin/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "tenantsByStatus.CANCELLED").Int())
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "tenantsByStatus.ACTIVE").Int())
}

func TestSuperAdminCreateAndDeleteTenant(t *testing.T) {
	f := newFixture(t)
	create := gin.H{
		"subdomain": "echo", "name": "Echo Motors", "plan": "BASIC", "maxVehicles": 5,
		"adminName": "Echo Admin", "adminEmail": "admin@echo.test", "adminPassword": "echo-password",
	}
	assertError(t, f.asRoot(t, http.MethodPost, "/api/v1/super-admin/tenants", gin.H{
		"subdomain": "admin", "name": "x", "adminName": "x", "adminEmail": "x@x.test", "adminPassword": "long-enough",
	}), http.StatusBadRequest, "RESERVED_SUBDOMAIN")

	w := f.asRoot(t, http.MethodPost, "/api/v1/super-admin/tenants", create)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := gjson.Get(w.Body.String(), "tenant.id").String()
	assert.Equal(t, int64(5), gjson.Get(w.Body.String(), "tenant.maxVehicles").Int())
	assert.Equal(t, "ADMIN", gjson.Get(w.Body.String(), "admin.role").String())

	assertError(t, f.asRoot(t, http.MethodPost, "/api/v1/super-admin/tenants", create), http.StatusConflict, "SUBDOMAIN_UNAVAILABLE")

	w = f.do(t, http.MethodPost, "/api/v1/auth/login", "echo", "", gin.H{"email": "admin@echo.test", "password": "echo-password"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tok := gjson.Get(w.Body.String(), "token").String()
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/v1/vehicles", "echo", tok, gin.H{"brand": "BMW", "model": "X1"}).Code)

	assert.Equal(t, http.StatusNoContent, f.asRoot(t, http.MethodDelete, "/api/v1/super-admin/tenants/"+id, nil).Code)
	assertError(t, f.asRoot(t, http.MethodGet, "/api/v1/super-admin/tenants/"+id, nil), http.StatusNotFound, "NOT_FOUND")
	assertError(t, f.do(t, http.MethodGet, "/api/v1/vehicles", "echo", tok, nil), http.StatusNotFound, "TENANT_NOT_FOUND")

	w = f.do(t, http.MethodGet, "/api/v1/registration/check-subdomain?subdomain=echo", "", "", nil)
	assert.True(t, gjson.Get(w.Body.String(), "available").Bool())
}

func TestImpersonationIsAudited(t *testing.T) {
	f := newFixture(t)
	base := "/api/v1/super-admin/tenants/" + f.alpha.ID

	w := f.asRoot(t, http.MethodPost, base+"/impersonate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tok := gjson.Get(w.Body.String(), "token").String()
	assert.Equal(t, f.admin.ID, gjson.Get(w.Body.String(), "user.id").String())

	w = f.do(t, http.MethodGet, "/api/v1/auth/me", "alpha", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, f.root.ID, gjson.Get(w.Body.String(), "impersonatedBy").String())

	w = f.do(t, http.MethodPost, "/api/v1/clients", "alpha", tok, gin.H{"firstName": "Pablo"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	clientID := gjson.Get(w.Body.String(), "id").String()

	w = f.asRoot(t, http.MethodGet, base+"/audit-logs", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	require.Equal(t, int64(1), gjson.Get(body, "total").Int())
	assert.Equal(t, clientID, gjson.Get(body, "data.0.resourceId").String())
	assert.Equal(t, f.admin.ID, gjson.Get(body, "data.0.userId").String())
	assert.Equal(t, f.root.ID, gjson.Get(body, "data.0.impersonatedBy").String())

	// an explicit user of another tenant is not reachable
	w = f.asRoot(t, http.MethodPost, base+"/impersonate", gin.H{"userId": f.bravoA.ID})
	assertError(t, w, http.StatusNotFound, "NOT_FOUND")

	w = f.asRoot(t, http.MethodPost, base+"/impersonate", gin.H{"userId": f.helper.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ASISTENTE", gjson.Get(w.Body.String(), "user.role").String())
}
