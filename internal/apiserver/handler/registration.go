package handler

import (
	"net/http"

	"github.com/dealerhub/dealerhub/internal/apiserver/service"
	"github.com/dealerhub/dealerhub/internal/common/dto"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/gin-gonic/gin"
)

// Registration serves the public sign-up endpoints
type Registration struct {
	regs *service.Registrations
}

// NewRegistration creates the public registration handler
func NewRegistration(regs *service.Registrations) *Registration {
	return &Registration{regs: regs}
}

// CheckSubdomain answers whether ?subdomain= can be registered
func (h *Registration) CheckSubdomain(c *gin.Context) {
	raw, ok := c.GetQuery("subdomain")
	if !ok {
		errorx.Abort(c, errorx.ErrBadRequest.WithMessage("subdomain is required"))
		return
	}
	a, err := h.regs.CheckSubdomain(c.Request.Context(), raw)
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Submit stores a registration for review
func (h *Registration) Submit(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	reg, err := h.regs.Submit(c.Request.Context(), service.SubmitInput{
		BusinessName: req.BusinessName,
		Subdomain:    req.Subdomain,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
		AdminName:    req.AdminName,
		AdminEmail:   req.AdminEmail,
		Password:     req.Password,
		Plan:         req.Plan,
	})
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, reg)
}
