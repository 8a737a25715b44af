package handler

import (
	"net/http"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/common/cnst"
	"github.com/dealerhub/dealerhub/internal/common/dto"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/gin-gonic/gin"
)

const resourceConfig = "app_config"

// GetConfig returns the tenant's app config
func (h *Resources) GetConfig(c *gin.Context) {
	t, _ := scope(c)
	cfg, err := h.loadConfig(c, t)
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateConfig applies a partial update to the tenant's app config
func (h *Resources) UpdateConfig(c *gin.Context) {
	var req dto.UpdateConfigRequest
	if !bindJSON(c, &req) {
		return
	}
	t, _ := scope(c)
	cfg, err := h.loadConfig(c, t)
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	set(&cfg.CompanyName, req.CompanyName)
	set(&cfg.Currency, req.Currency)
	set(&cfg.TaxRate, req.TaxRate)
	set(&cfg.PrimaryColor, req.PrimaryColor)
	set(&cfg.LogoBase64, req.LogoBase64)
	if req.ContactEmail != nil {
		cfg.ContactEmail = database.NormalizeEmail(*req.ContactEmail)
	}
	if err := database.NewScoped[database.AppConfig](h.db).Save(c.Request.Context(), cfg); err != nil {
		errorx.Abort(c, err)
		return
	}
	h.audit.record(c, cnst.ActionUpdate, resourceConfig, cfg.ID)
	c.JSON(http.StatusOK, cfg)
}

// loadConfig returns the tenant's single config row, creating it for tenants
// that predate provisioning defaults.
func (h *Resources) loadConfig(c *gin.Context, t *database.Tenant) (*database.AppConfig, error) {
	ctx := c.Request.Context()
	repo := database.NewScoped[database.AppConfig](h.db)
	items, err := repo.All(ctx, t.ID, "")
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return &items[0], nil
	}
	cfg := &database.AppConfig{TenantID: t.ID, CompanyName: t.Name, ContactEmail: t.Email}
	if err := repo.Create(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Dashboard returns the tenant's headline numbers
func (h *Resources) Dashboard(c *gin.Context) {
	t, _ := scope(c)
	stats, err := h.db.TenantDashboard(c.Request.Context(), t.ID, h.now())
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	usage, err := h.db.Usage(c.Request.Context(), t.ID)
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
		"usage": usage,
		"limits": gin.H{
			"maxUsers":    t.MaxUsers,
			"maxVehicles": t.MaxVehicles,
			"plan":        t.Plan,
		},
	})
}

// ListAuditLogs returns the tenant's audit trail, newest first
func (h *Resources) ListAuditLogs(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	t, _ := scope(c)
	opts := q.Options()
	logs, total, err := h.db.ListAuditLogs(c.Request.Context(), t.ID, c.Query("resource"), opts)
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(logs, total, opts))
}
