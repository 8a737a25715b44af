package handler

import (
	"net/http"
	"strings"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/apiserver/service"
	"github.com/dealerhub/dealerhub/internal/common/cnst"
	"github.com/dealerhub/dealerhub/internal/common/dto"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/gin-gonic/gin"
)

const resourceUser = "user"

func (h *Resources) ListUsers(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	scopes := []database.Scope{
		database.WhereEq("role", strings.ToUpper(c.Query("role"))),
		database.Search(q.Q, "name", "email"),
	}
	scopes = append(scopes, activeFilter(q.Status))
	listScoped[database.User](h, c, q, scopes...)
}

func (h *Resources) GetUser(c *gin.Context) {
	if v, ok := getScoped[database.User](h, c); ok {
		c.JSON(http.StatusOK, v)
	}
}

// CreateUser enforces the plan's user quota with the same check-then-act
// count as vehicles.
func (h *Resources) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	t, _ := scope(c)
	ctx := c.Request.Context()
	repo := database.NewScoped[database.User](h.db)

	if t.MaxUsers > 0 {
		n, err := repo.Count(ctx, t.ID)
		if err != nil {
			errorx.Abort(c, err)
			return
		}
		if n >= int64(t.MaxUsers) {
			errorx.Abort(c, errorx.ErrUserLimit.WithData("Max", t.MaxUsers))
			return
		}
	}
	exists, err := h.db.UserEmailExists(ctx, t.ID, req.Email, "")
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	if exists {
		errorx.Abort(c, errorx.ErrEmailExists)
		return
	}
	hash, err := service.HashPassword(req.Password)
	if err != nil {
		errorx.Abort(c, err)
		return
	}

	u := &database.User{
		TenantID:     t.ID,
		Email:        database.NormalizeEmail(req.Email),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Role:         database.Role(req.Role),
		IsActive:     true,
	}
	if err := repo.Create(ctx, u); err != nil {
		errorx.Abort(c, err)
		return
	}
	h.audit.record(c, cnst.ActionCreate, resourceUser, u.ID)
	c.JSON(http.StatusCreated, u)
}

// UpdateUser applies a partial update. Admins cannot deactivate or demote themselves.
func (h *Resources) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	_, p := scope(c)
	u, ok := getScoped[database.User](h, c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if u.ID == p.ID {
		if (req.IsActive != nil && !*req.IsActive) || (req.Role != nil && database.Role(*req.Role) != u.Role) {
			errorx.Abort(c, errorx.ErrCannotModifySelf)
			return
		}
	}
	if req.Email != nil {
		email := database.NormalizeEmail(*req.Email)
		exists, err := h.db.UserEmailExists(ctx, u.TenantID, email, u.ID)
		if err != nil {
			errorx.Abort(c, err)
			return
		}
		if exists {
			errorx.Abort(c, errorx.ErrEmailExists)
			return
		}
		u.Email = email
	}
	if req.Password != nil {
		hash, err := service.HashPassword(*req.Password)
		if err != nil {
			errorx.Abort(c, err)
			return
		}
		u.PasswordHash = hash
	}
	set(&u.Name, req.Name)
	set(&u.IsActive, req.IsActive)
	if req.Role != nil {
		u.Role = database.Role(*req.Role)
	}

	if err := database.NewScoped[database.User](h.db).Save(ctx, u); err != nil {
		errorx.Abort(c, err)
		return
	}
	h.audit.record(c, cnst.ActionUpdate, resourceUser, u.ID)
	c.JSON(http.StatusOK, u)
}

func (h *Resources) DeleteUser(c *gin.Context) {
	_, p := scope(c)
	if c.Param("id") == p.ID {
		errorx.Abort(c, errorx.ErrCannotModifySelf)
		return
	}
	deleteScoped[database.User](h, c, resourceUser)
}
