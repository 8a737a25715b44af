package handler

import (
	"net/http"
	"time"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/common/cnst"
	"github.com/dealerhub/dealerhub/internal/common/dto"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Resources serves the tenant-scoped CRUD routes. Every query carries the
// tenant of the request, so ids of other tenants answer 404.
type Resources struct {
	db     *database.DB
	audit  auditor
	logger *zap.Logger
	now    func() time.Time
}

// NewResources creates the tenant resource handlers
func NewResources(db *database.DB, logger *zap.Logger) *Resources {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("resources")
	return &Resources{db: db, audit: auditor{db: db, logger: logger}, logger: logger, now: time.Now}
}

// listScoped answers a paged list of T for the caller's tenant
func listScoped[T any](h *Resources, c *gin.Context, q dto.PageQuery, scopes ...database.Scope) {
	t, _ := scope(c)
	opts := q.Options()
	items, total, err := database.NewScoped[T](h.db).List(c.Request.Context(), t.ID, opts, scopes...)
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(items, total, opts))
}

// getScoped loads the :id row of T in the caller's tenant
func getScoped[T any](h *Resources, c *gin.Context) (*T, bool) {
	t, _ := scope(c)
	v, err := database.NewScoped[T](h.db).Get(c.Request.Context(), t.ID, c.Param("id"))
	if err != nil {
		errorx.Abort(c, err)
		return nil, false
	}
	return v, true
}

// deleteScoped removes the :id row of T in the caller's tenant
func deleteScoped[T any](h *Resources, c *gin.Context, resource string) {
	t, _ := scope(c)
	id := c.Param("id")
	if err := database.NewScoped[T](h.db).Delete(c.Request.Context(), t.ID, id); err != nil {
		errorx.Abort(c, err)
		return
	}
	h.audit.record(c, cnst.ActionDelete, resource, id)
	c.Status(http.StatusNoContent)
}

// requireInTenant checks that id names a row of T in the caller's tenant
func requireInTenant[T any](h *Resources, c *gin.Context, id, what string) bool {
	t, _ := scope(c)
	ok, err := database.NewScoped[T](h.db).Exists(c.Request.Context(), t.ID, id)
	if err != nil {
		errorx.Abort(c, err)
		return false
	}
	if !ok {
		errorx.Abort(c, errorx.ErrNotFound.WithMessage("%s not found", what))
		return false
	}
	return true
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
