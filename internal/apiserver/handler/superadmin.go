package handler

import (
	"net/http"
	"strings"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/apiserver/middleware"
	"github.com/dealerhub/dealerhub/internal/apiserver/service"
	"github.com/dealerhub/dealerhub/internal/common/dto"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/gin-gonic/gin"
)

// SuperAdmin serves the platform operator surface
type SuperAdmin struct {
	db       *database.DB
	sessions *service.Sessions
	tenants  *service.Tenants
	regs     *service.Registrations
}

// NewSuperAdmin creates the super-admin handler
func NewSuperAdmin(db *database.DB, sessions *service.Sessions, tenants *service.Tenants, regs *service.Registrations) *SuperAdmin {
	return &SuperAdmin{db: db, sessions: sessions, tenants: tenants, regs: regs}
}

func (h *SuperAdmin) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	s, a, err := h.sessions.LoginSuperAdmin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{Token: s.Token, ExpiresAt: s.ExpiresAt, User: a})
}

func (h *SuperAdmin) Me(c *gin.Context) {
	p := middleware.PrincipalFromContext(c)
	c.JSON(http.StatusOK, dto.MeResponse{ID: p.ID, Email: p.Email, Name: p.Name, SuperAdmin: true})
}

func (h *SuperAdmin) Dashboard(c *gin.Context) {
	stats, err := h.db.PlatformDashboard(c.Request.Context())
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *SuperAdmin) ListTenants(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	opts := q.Options()
	items, total, err := h.tenants.List(c.Request.Context(), database.TenantFilter{
		Status: database.TenantStatus(strings.ToUpper(q.Status)),
		Query:  q.Q,
	}, opts)
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(items, total, opts))
}

func (h *SuperAdmin) GetTenant(c *gin.Context) {
	d, err := h.tenants.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *SuperAdmin) CreateTenant(c *gin.Context) {
	var req dto.CreateTenantRequest
	if !bindJSON(c, &req) {
		return
	}
	t, admin, err := h.tenants.Create(c.Request.Context(), service.CreateInput{
		Subdomain:     req.Subdomain,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		Plan:          req.Plan,
		MaxUsers:      req.MaxUsers,
		MaxVehicles:   req.MaxVehicles,
		AdminName:     req.AdminName,
		AdminEmail:    req.AdminEmail,
		AdminPassword: req.AdminPassword,
	})
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tenant": t, "admin": admin})
}

func (h *SuperAdmin) UpdateTenant(c *gin.Context) {
	var req dto.UpdateTenantRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.tenants.Update(c.Request.Context(), c.Param("id"), service.TenantUpdate{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		Plan:        req.Plan,
		MaxUsers:    req.MaxUsers,
		MaxVehicles: req.MaxVehicles,
	})
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *SuperAdmin) SuspendTenant(c *gin.Context) {
	var req dto.ReasonRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.respondTenant(c)(h.tenants.Suspend(c.Request.Context(), c.Param("id"), req.Reason))
}

func (h *SuperAdmin) ReactivateTenant(c *gin.Context) {
	h.respondTenant(c)(h.tenants.Reactivate(c.Request.Context(), c.Param("id")))
}

func (h *SuperAdmin) CancelTenant(c *gin.Context) {
	var req dto.ReasonRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	h.respondTenant(c)(h.tenants.Cancel(c.Request.Context(), c.Param("id"), req.Reason))
}

func (h *SuperAdmin) respondTenant(c *gin.Context) func(*database.Tenant, error) {
	return func(t *database.Tenant, err error) {
		if err != nil {
			errorx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// DeleteTenant hard-deletes a tenant and everything it owns
func (h *SuperAdmin) DeleteTenant(c *gin.Context) {
	if err := h.tenants.Delete(c.Request.Context(), c.Param("id")); err != nil {
		errorx.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SuperAdmin) ListTenantUsers(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	opts := q.Options()
	users, total, err := h.tenants.Users(c.Request.Context(), c.Param("id"), opts)
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(users, total, opts))
}

func (h *SuperAdmin) ListTenantAuditLogs(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	opts := q.Options()
	logs, total, err := h.tenants.AuditLogs(c.Request.Context(), c.Param("id"), c.Query("resource"), opts)
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(logs, total, opts))
}

// Impersonate issues a one-hour token acting as a user of the tenant
func (h *SuperAdmin) Impersonate(c *gin.Context) {
	var req dto.ImpersonateRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	p := middleware.PrincipalFromContext(c)
	imp, err := h.tenants.Impersonate(c.Request.Context(), p.ID, c.Param("id"), req.UserID)
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, imp)
}

func (h *SuperAdmin) ListRegistrations(c *gin.Context) {
	var q dto.RegistrationQuery
	if !bindQuery(c, &q) {
		return
	}
	opts := q.Options()
	items, total, err := h.regs.List(c.Request.Context(), database.RegistrationStatus(strings.ToUpper(q.Status)), opts)
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(items, total, opts))
}

func (h *SuperAdmin) GetRegistration(c *gin.Context) {
	reg, err := h.regs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, reg)
}

func (h *SuperAdmin) ApproveRegistration(c *gin.Context) {
	p := middleware.PrincipalFromContext(c)
	reg, t, err := h.regs.Approve(c.Request.Context(), c.Param("id"), p.ID)
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registration": reg, "tenant": t})
}

func (h *SuperAdmin) RejectRegistration(c *gin.Context) {
	var req dto.RejectRequest
	if !bindJSON(c, &req) {
		return
	}
	p := middleware.PrincipalFromContext(c)
	reg, err := h.regs.Reject(c.Request.Context(), c.Param("id"), p.ID, req.Reason)
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, reg)
}
