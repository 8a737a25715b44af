package handler

import (
	"net/http"
	"strings"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/common/cnst"
	"github.com/dealerhub/dealerhub/internal/common/dto"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	resourcePaymentMethod = "payment_method"
	resourceTemplate      = "document_template"
)

func activeFilter(status string) database.Scope {
	switch strings.ToLower(status) {
	case "active":
		return database.WhereEq("is_active", true)
	case "inactive":
		return database.WhereEq("is_active", false)
	}
	return func(db *gorm.DB) *gorm.DB { return db }
}

func (h *Resources) ListPaymentMethods(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	listScoped[database.PaymentMethod](h, c, q, activeFilter(q.Status), database.Search(q.Q, "name"))
}

func (h *Resources) GetPaymentMethod(c *gin.Context) {
	if v, ok := getScoped[database.PaymentMethod](h, c); ok {
		c.JSON(http.StatusOK, v)
	}
}

func (h *Resources) CreatePaymentMethod(c *gin.Context) {
	var req dto.CreatePaymentMethodRequest
	if !bindJSON(c, &req) {
		return
	}
	t, _ := scope(c)
	v := &database.PaymentMethod{
		TenantID:    t.ID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := database.NewScoped[database.PaymentMethod](h.db).Create(c.Request.Context(), v); err != nil {
		errorx.Abort(c, err)
		return
	}
	h.audit.record(c, cnst.ActionCreate, resourcePaymentMethod, v.ID)
	c.JSON(http.StatusCreated, v)
}

func (h *Resources) UpdatePaymentMethod(c *gin.Context) {
	var req dto.UpdatePaymentMethodRequest
	if !bindJSON(c, &req) {
		return
	}
	v, ok := getScoped[database.PaymentMethod](h, c)
	if !ok {
		return
	}
	set(&v.Name, req.Name)
	set(&v.Description, req.Description)
	set(&v.IsActive, req.IsActive)
	if err := database.NewScoped[database.PaymentMethod](h.db).Save(c.Request.Context(), v); err != nil {
		errorx.Abort(c, err)
		return
	}
	h.audit.record(c, cnst.ActionUpdate, resourcePaymentMethod, v.ID)
	c.JSON(http.StatusOK, v)
}

func (h *Resources) DeletePaymentMethod(c *gin.Context) {
	deleteScoped[database.PaymentMethod](h, c, resourcePaymentMethod)
}

func (h *Resources) ListTemplates(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	listScoped[database.DocumentTemplate](h, c, q,
		activeFilter(q.Status),
		database.WhereEq("type", strings.ToUpper(c.Query("type"))),
		database.Search(q.Q, "name"))
}

func (h *Resources) GetTemplate(c *gin.Context) {
	if v, ok := getScoped[database.DocumentTemplate](h, c); ok {
		c.JSON(http.StatusOK, v)
	}
}

// CreateTemplate stores template text as is; placeholders are filled in by clients
func (h *Resources) CreateTemplate(c *gin.Context) {
	var req dto.CreateTemplateRequest
	if !bindJSON(c, &req) {
		return
	}
	t, _ := scope(c)
	v := &database.DocumentTemplate{
		TenantID: t.ID,
		Name:     strings.TrimSpace(req.Name),
		Type:     database.TemplateType(req.Type),
		Content:  req.Content,
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	if err := database.NewScoped[database.DocumentTemplate](h.db).Create(c.Request.Context(), v); err != nil {
		errorx.Abort(c, err)
		return
	}
	h.audit.record(c, cnst.ActionCreate, resourceTemplate, v.ID)
	c.JSON(http.StatusCreated, v)
}

func (h *Resources) UpdateTemplate(c *gin.Context) {
	var req dto.UpdateTemplateRequest
	if !bindJSON(c, &req) {
		return
	}
	v, ok := getScoped[database.DocumentTemplate](h, c)
	if !ok {
		return
	}
	set(&v.Name, req.Name)
	set(&v.Content, req.Content)
	set(&v.IsActive, req.IsActive)
	if req.Type != nil {
		v.Type = database.TemplateType(*req.Type)
	}
	if err := database.NewScoped[database.DocumentTemplate](h.db).Save(c.Request.Context(), v); err != nil {
		errorx.Abort(c, err)
		return
	}
	h.audit.record(c, cnst.ActionUpdate, resourceTemplate, v.ID)
	c.JSON(http.StatusOK, v)
}

func (h *Resources) DeleteTemplate(c *gin.Context) {
	deleteScoped[database.DocumentTemplate](h, c, resourceTemplate)
}
