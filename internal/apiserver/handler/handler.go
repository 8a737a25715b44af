// Package handler implements the HTTP surface of the API server.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/apiserver/middleware"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		errorx.Abort(c, bindError(err, errorx.ErrInvalidBody))
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body for endpoints whose fields are all optional
func bindOptionalJSON(c *gin.Context, v any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, v)
}

func bindQuery(c *gin.Context, v any) bool {
	if err := c.ShouldBindQuery(v); err != nil {
		errorx.Abort(c, bindError(err, errorx.ErrBadRequest))
		return false
	}
	return true
}

// bindError keeps validation and size errors and folds every decoding error into fallback
func bindError(err error, fallback *errorx.APIError) error {
	var verrs validator.ValidationErrors
	var maxErr *http.MaxBytesError
	if errors.As(err, &verrs) || errors.As(err, &maxErr) {
		return err
	}
	return fallback.Wrap(err)
}

// scope returns the resolved tenant and caller. Routes using it sit behind
// ResolveTenant and Authenticate, so both are present.
func scope(c *gin.Context) (*database.Tenant, *middleware.Principal) {
	return middleware.TenantFromContext(c), middleware.PrincipalFromContext(c)
}

// auditor writes one audit row per tenant mutation. Failures are logged only.
type auditor struct {
	db     *database.DB
	logger *zap.Logger
}

func (a auditor) record(c *gin.Context, action, resource, resourceID string) {
	t, p := scope(c)
	if t == nil || p == nil {
		return
	}
	a.write(c.Request.Context(), &database.AuditLog{
		TenantID:       t.ID,
		UserID:         p.ID,
		ImpersonatedBy: p.ImpersonatedBy,
		Action:         action,
		Resource:       resource,
		ResourceID:     resourceID,
		IP:             c.ClientIP(),
	})
}

func (a auditor) write(ctx context.Context, l *database.AuditLog) {
	if err := a.db.AddAuditLog(ctx, l); err != nil {
		a.logger.Warn("failed to write audit log",
			zap.String("resource", l.Resource), zap.String("action", l.Action), zap.Error(err))
	}
}

func orNow(t *time.Time, now time.Time) time.Time {
	if t == nil || t.IsZero() {
		return now
	}
	return *t
}
