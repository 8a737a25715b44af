package handler

import (
	"net/http"
	"strings"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/common/cnst"
	"github.com/dealerhub/dealerhub/internal/common/dto"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/gin-gonic/gin"
)

const resourceClient = "client"

func (h *Resources) ListClients(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	listScoped[database.Client](h, c, q,
		database.WhereEq("status", strings.ToUpper(q.Status)),
		database.WhereEq("source", c.Query("source")),
		database.Search(q.Q, "first_name", "last_name", "email", "phone", "document_number"))
}

func (h *Resources) GetClient(c *gin.Context) {
	if v, ok := getScoped[database.Client](h, c); ok {
		c.JSON(http.StatusOK, v)
	}
}

func (h *Resources) CreateClient(c *gin.Context) {
	var req dto.CreateClientRequest
	if !bindJSON(c, &req) {
		return
	}
	t, _ := scope(c)
	v := &database.Client{
		TenantID:       t.ID,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          database.NormalizeEmail(req.Email),
		Phone:          req.Phone,
		DocumentNumber: req.DocumentNumber,
		Address:        req.Address,
		Source:         req.Source,
		Status:         database.ClientStatus(req.Status),
		Notes:          req.Notes,
	}
	if v.Status == "" {
		v.Status = database.ClientLead
	}
	if err := database.NewScoped[database.Client](h.db).Create(c.Request.Context(), v); err != nil {
		errorx.Abort(c, err)
		return
	}
	h.audit.record(c, cnst.ActionCreate, resourceClient, v.ID)
	c.JSON(http.StatusCreated, v)
}

func (h *Resources) UpdateClient(c *gin.Context) {
	var req dto.UpdateClientRequest
	if !bindJSON(c, &req) {
		return
	}
	v, ok := getScoped[database.Client](h, c)
	if !ok {
		return
	}
	set(&v.FirstName, req.FirstName)
	set(&v.LastName, req.LastName)
	if req.Email != nil {
		v.Email = database.NormalizeEmail(*req.Email)
	}
	set(&v.Phone, req.Phone)
	set(&v.DocumentNumber, req.DocumentNumber)
	set(&v.Address, req.Address)
	set(&v.Source, req.Source)
	set(&v.Notes, req.Notes)
	if req.Status != nil {
		v.Status = database.ClientStatus(*req.Status)
	}
	if err := database.NewScoped[database.Client](h.db).Save(c.Request.Context(), v); err != nil {
		errorx.Abort(c, err)
		return
	}
	h.audit.record(c, cnst.ActionUpdate, resourceClient, v.ID)
	c.JSON(http.StatusOK, v)
}

// DeleteClient refuses to remove a client with sales on record
func (h *Resources) DeleteClient(c *gin.Context) {
	t, _ := scope(c)
	n, err := database.NewScoped[database.Sale](h.db).Count(c.Request.Context(), t.ID,
		database.WhereEq("client_id", c.Param("id")))
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	if n > 0 {
		errorx.Abort(c, errorx.ErrConflict.WithMessage("Client is referenced by %d sale(s)", n))
		return
	}
	deleteScoped[database.Client](h, c, resourceClient)
}
