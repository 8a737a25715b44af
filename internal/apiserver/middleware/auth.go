package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/auth/jwt"
	"github.com/dealerhub/dealerhub/internal/common/cnst"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/dealerhub/dealerhub/internal/tenant"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Principal is the authenticated caller of a request
type Principal struct {
	ID             string
	Email          string
	Name           string
	SuperAdmin     bool
	TenantID       string // empty for super admins
	Role           database.Role
	ImpersonatedBy string
}

// Authenticator turns bearer tokens into principals
type Authenticator struct {
	db     *database.DB
	users  jwt.TokenVerifier
	admins jwt.TokenVerifier
	logger *zap.Logger
}

// NewAuthenticator creates an authenticator over the user and super-admin namespaces
func NewAuthenticator(db *database.DB, users, admins jwt.TokenVerifier, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{db: db, users: users, admins: admins, logger: logger.Named("auth")}
}

// Authenticate requires a tenant-user token whose user belongs to the resolved tenant
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearerToken(c)
		if err != nil {
			errorx.Abort(c, err)
			return
		}
		claims, err := a.users.Verify(raw)
		if err != nil {
			a.logger.Debug("user token rejected", zap.Error(err))
			errorx.Abort(c, errorx.ErrInvalidToken)
			return
		}

		t := TenantFromContext(c)
		if t == nil {
			errorx.Abort(c, errorx.ErrTenantRequired)
			return
		}
		p, err := a.loadUser(c.Request.Context(), claims)
		if err != nil {
			errorx.Abort(c, err)
			return
		}
		if p.TenantID != t.ID {
			errorx.Abort(c, errorx.ErrTenantMismatch)
			return
		}
		if p.TenantID != claims.TenantID {
			errorx.Abort(c, errorx.ErrTokenTenantMismatch)
			return
		}
		c.Set(cnst.CtxKeyPrincipal, p)
		c.Next()
	}
}

// AuthenticateSuperAdmin requires a super-admin token
func (a *Authenticator) AuthenticateSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearerToken(c)
		if err != nil {
			errorx.Abort(c, err)
			return
		}
		claims, err := a.admins.Verify(raw)
		if err != nil {
			a.logger.Debug("super-admin token rejected", zap.Error(err))
			errorx.Abort(c, errorx.ErrInvalidToken)
			return
		}
		p, err := a.loadSuperAdmin(c.Request.Context(), claims)
		if err != nil {
			errorx.Abort(c, err)
			return
		}
		c.Set(cnst.CtxKeyPrincipal, p)
		c.Next()
	}
}

// AuthenticateAny accepts either namespace, super admins first. A user token
// scopes the request to the user's own tenant, which must be ACTIVE.
func (a *Authenticator) AuthenticateAny() gin.HandlerFunc {
	chain := jwt.Chain{a.admins, a.users}
	return func(c *gin.Context) {
		raw, err := bearerToken(c)
		if err != nil {
			errorx.Abort(c, err)
			return
		}
		claims, v, err := chain.Verify(raw)
		if err != nil {
			a.logger.Debug("token rejected", zap.Error(err))
			errorx.Abort(c, errorx.ErrInvalidToken)
			return
		}

		ctx := c.Request.Context()
		if v.Audience() == jwt.AudienceSuperAdmin {
			p, err := a.loadSuperAdmin(ctx, claims)
			if err != nil {
				errorx.Abort(c, err)
				return
			}
			c.Set(cnst.CtxKeyPrincipal, p)
			c.Next()
			return
		}

		p, err := a.loadUser(ctx, claims)
		if err != nil {
			errorx.Abort(c, err)
			return
		}
		if p.TenantID != claims.TenantID {
			errorx.Abort(c, errorx.ErrTokenTenantMismatch)
			return
		}
		t, err := a.db.GetTenant(ctx, p.TenantID)
		if err != nil {
			errorx.Abort(c, errorx.ErrInvalidToken)
			return
		}
		if err := tenant.StatusError(t.Status); err != nil {
			errorx.Abort(c, err)
			return
		}
		c.Set(cnst.CtxKeyTenant, t)
		c.Set(cnst.CtxKeyPrincipal, p)
		c.Next()
	}
}

func (a *Authenticator) loadUser(ctx context.Context, claims *jwt.Claims) (*Principal, error) {
	u, err := a.db.GetUser(ctx, claims.Subject)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		return nil, errorx.ErrInvalidToken
	}
	if !u.IsActive {
		return nil, errorx.ErrInvalidToken
	}
	return &Principal{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		TenantID:       u.TenantID,
		Role:           u.Role,
		ImpersonatedBy: claims.ImpersonatedBy,
	}, nil
}

func (a *Authenticator) loadSuperAdmin(ctx context.Context, claims *jwt.Claims) (*Principal, error) {
	sa, err := a.db.GetSuperAdmin(ctx, claims.Subject)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		return nil, errorx.ErrInvalidToken
	}
	if !sa.IsActive {
		return nil, errorx.ErrInvalidToken
	}
	return &Principal{ID: sa.ID, Email: sa.Email, Name: sa.Name, SuperAdmin: true}, nil
}

func bearerToken(c *gin.Context) (string, error) {
	h := strings.TrimSpace(c.GetHeader(cnst.HeaderAuthorization))
	if len(h) <= len(cnst.BearerPrefix) || !strings.EqualFold(h[:len(cnst.BearerPrefix)], cnst.BearerPrefix) {
		return "", errorx.ErrNoToken
	}
	tok := strings.TrimSpace(h[len(cnst.BearerPrefix):])
	if tok == "" {
		return "", errorx.ErrNoToken
	}
	return tok, nil
}

// PrincipalFromContext returns the authenticated caller, or nil
func PrincipalFromContext(c *gin.Context) *Principal {
	v, ok := c.Get(cnst.CtxKeyPrincipal)
	if !ok {
		return nil
	}
	p, _ := v.(*Principal)
	return p
}
