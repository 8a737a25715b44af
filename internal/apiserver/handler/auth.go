package handler

import (
	"net/http"

	"github.com/dealerhub/dealerhub/internal/apiserver/service"
	"github.com/dealerhub/dealerhub/internal/common/dto"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/gin-gonic/gin"
)

// Auth serves tenant-user sessions and password resets
type Auth struct {
	sessions *service.Sessions
	resets   *service.PasswordResets
}

// NewAuth creates the authentication handler
func NewAuth(sessions *service.Sessions, resets *service.PasswordResets) *Auth {
	return &Auth{sessions: sessions, resets: resets}
}

// Login authenticates a user of the resolved tenant
func (h *Auth) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	t, _ := scope(c)
	s, u, err := h.sessions.LoginUser(c.Request.Context(), t, req.Email, req.Password)
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{Token: s.Token, ExpiresAt: s.ExpiresAt, User: u, Tenant: t})
}

// Me describes the caller and its tenant
func (h *Auth) Me(c *gin.Context) {
	t, p := scope(c)
	c.JSON(http.StatusOK, dto.MeResponse{
		ID:             p.ID,
		Email:          p.Email,
		Name:           p.Name,
		Role:           string(p.Role),
		ImpersonatedBy: p.ImpersonatedBy,
		Tenant:         t,
	})
}

// ChangePassword replaces the caller's password
func (h *Auth) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	_, p := scope(c)
	if err := h.sessions.ChangePassword(c.Request.Context(), p.ID, req.OldPassword, req.NewPassword); err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RequestPasswordReset always answers 200 so that accounts cannot be probed
func (h *Auth) RequestPasswordReset(c *gin.Context) {
	var req dto.PasswordResetRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.resets.Request(c.Request.Context(), req.Subdomain, req.Email); err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ConfirmPasswordReset redeems a reset token
func (h *Auth) ConfirmPasswordReset(c *gin.Context) {
	var req dto.PasswordResetConfirm
	if !bindJSON(c, &req) {
		return
	}
	if err := h.resets.Confirm(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
