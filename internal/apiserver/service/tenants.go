package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/auth/jwt"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/dealerhub/dealerhub/internal/tenant"
	"go.uber.org/zap"
)

// TenantUpdate carries the fields a super admin may change. Nil fields are left alone.
type TenantUpdate struct {
	Name        *string
	Email       *string
	Phone       *string
	Address     *string
	Plan        *string
	MaxUsers    *int
	MaxVehicles *int
}

// TenantDetail is a tenant together with its current usage
type TenantDetail struct {
	database.Tenant
	Usage database.TenantUsage `json:"usage"`
}

// Impersonation is a short-lived user token minted for a super admin
type Impersonation struct {
	Token     string           `json:"token"`
	ExpiresAt int64            `json:"expiresAt"`
	User      *database.User   `json:"user"`
	Tenant    *database.Tenant `json:"tenant"`
}

// Tenants implements the super-admin tenant operations. Every mutation drops
// the resolver cache entry of the tenant it touched.
type Tenants struct {
	db          *database.DB
	resolver    *tenant.Resolver
	provisioner *Provisioner
	sessions    *Sessions
	logger      *zap.Logger
}

// NewTenants creates the tenant administration service
func NewTenants(db *database.DB, resolver *tenant.Resolver, provisioner *Provisioner, sessions *Sessions, logger *zap.Logger) *Tenants {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tenants{db: db, resolver: resolver, provisioner: provisioner, sessions: sessions, logger: logger.Named("tenants")}
}

// CreateInput creates a tenant directly, skipping the registration workflow
type CreateInput struct {
	Subdomain     string
	Name          string
	Email         string
	Phone         string
	Address       string
	Plan          string
	MaxUsers      *int
	MaxVehicles   *int
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Create validates the subdomain and provisions the tenant
func (s *Tenants) Create(ctx context.Context, in CreateInput) (*database.Tenant, *database.User, error) {
	sub, err := s.resolver.Rules().Check(in.Subdomain)
	switch {
	case errors.Is(err, tenant.ErrReserved):
		return nil, nil, errorx.ErrReservedSubdomain
	case err != nil:
		return nil, nil, errorx.ErrInvalidSubdomain
	}
	taken, err := s.db.SubdomainTaken(ctx, sub)
	if err != nil {
		return nil, nil, err
	}
	if taken {
		return nil, nil, errorx.ErrSubdomainUnavailable.WithMessage("subdomain is not available")
	}
	hash, err := HashPassword(in.AdminPassword)
	if err != nil {
		return nil, nil, err
	}

	t, admin, err := s.provisioner.Provision(ctx, ProvisionInput{
		Subdomain:         sub,
		Name:              strings.TrimSpace(in.Name),
		Email:             in.Email,
		Phone:             in.Phone,
		Address:           in.Address,
		Plan:              in.Plan,
		MaxUsers:          in.MaxUsers,
		MaxVehicles:       in.MaxVehicles,
		AdminName:         strings.TrimSpace(in.AdminName),
		AdminEmail:        in.AdminEmail,
		AdminPasswordHash: hash,
	})
	if err != nil {
		return nil, nil, err
	}
	s.resolver.Invalidate(ctx, t.Subdomain)
	s.logger.Info("tenant created", zap.String("id", t.ID), zap.String("subdomain", t.Subdomain))
	return t, admin, nil
}

// List returns a page of tenants
func (s *Tenants) List(ctx context.Context, f database.TenantFilter, opts database.ListOptions) ([]database.Tenant, int64, error) {
	return s.db.ListTenants(ctx, f, opts)
}

// Get returns a tenant or NOT_FOUND
func (s *Tenants) Get(ctx context.Context, id string) (*database.Tenant, error) {
	t, err := s.db.GetTenant(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errorx.ErrNotFound
	}
	return t, err
}

// Detail returns the tenant with its usage counts
func (s *Tenants) Detail(ctx context.Context, id string) (*TenantDetail, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u, err := s.db.Usage(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &TenantDetail{Tenant: *t, Usage: *u}, nil
}

// Update applies a partial update. Changing the plan resets quotas to the plan
// defaults unless explicit quotas are given in the same update.
func (s *Tenants) Update(ctx context.Context, id string, in TenantUpdate) (*database.Tenant, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		t.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		t.Email = database.NormalizeEmail(*in.Email)
	}
	if in.Phone != nil {
		t.Phone = *in.Phone
	}
	if in.Address != nil {
		t.Address = *in.Address
	}
	if in.Plan != nil {
		name, plan, err := s.provisioner.ResolvePlan(*in.Plan)
		if err != nil {
			return nil, err
		}
		if name != t.Plan {
			t.Plan = name
			t.MaxUsers = plan.MaxUsers
			t.MaxVehicles = plan.MaxVehicles
		}
	}
	if in.MaxUsers != nil {
		t.MaxUsers = *in.MaxUsers
	}
	if in.MaxVehicles != nil {
		t.MaxVehicles = *in.MaxVehicles
	}
	if err := s.db.SaveTenant(ctx, t); err != nil {
		return nil, err
	}
	s.resolver.Invalidate(ctx, t.Subdomain)
	return t, nil
}

// Suspend moves ACTIVE to SUSPENDED
func (s *Tenants) Suspend(ctx context.Context, id, reason string) (*database.Tenant, error) {
	return s.transition(ctx, id, database.TenantSuspended, reason, database.TenantActive)
}

// Reactivate moves SUSPENDED or PENDING to ACTIVE
func (s *Tenants) Reactivate(ctx context.Context, id string) (*database.Tenant, error) {
	return s.transition(ctx, id, database.TenantActive, "", database.TenantSuspended, database.TenantPending)
}

// Cancel moves any non-cancelled tenant to CANCELLED
func (s *Tenants) Cancel(ctx context.Context, id, reason string) (*database.Tenant, error) {
	return s.transition(ctx, id, database.TenantCancelled, reason,
		database.TenantActive, database.TenantSuspended, database.TenantPending)
}

func (s *Tenants) transition(ctx context.Context, id string, to database.TenantStatus, reason string, from ...database.TenantStatus) (*database.Tenant, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, f := range from {
		if t.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, errorx.ErrInvalidTenantState.WithDetails(map[string]any{"status": t.Status, "target": to})
	}

	prev := t.Status
	t.Status = to
	t.StatusReason = strings.TrimSpace(reason)
	if err := s.db.SaveTenant(ctx, t); err != nil {
		return nil, err
	}
	s.resolver.Invalidate(ctx, t.Subdomain)
	s.logger.Info("tenant status changed",
		zap.String("id", t.ID), zap.String("from", string(prev)), zap.String("to", string(to)))
	return t, nil
}

// Delete removes the tenant and every row it owns in one transaction
func (s *Tenants) Delete(ctx context.Context, id string) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.DeleteTenantCascade(ctx, t.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return errorx.ErrNotFound
		}
		return err
	}
	s.resolver.Invalidate(ctx, t.Subdomain)
	s.logger.Warn("tenant hard deleted", zap.String("id", t.ID), zap.String("subdomain", t.Subdomain))
	return nil
}

// Users lists the users of a tenant
func (s *Tenants) Users(ctx context.Context, id string, opts database.ListOptions) ([]database.User, int64, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return database.NewScoped[database.User](s.db).List(ctx, t.ID, opts)
}

// AuditLogs lists the audit trail of a tenant
func (s *Tenants) AuditLogs(ctx context.Context, id, resource string, opts database.ListOptions) ([]database.AuditLog, int64, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return s.db.ListAuditLogs(ctx, t.ID, resource, opts)
}

// Impersonate mints a one-hour token for userID, or for the first active ADMIN
// when userID is empty. The token records superAdminID as impersonatedBy.
func (s *Tenants) Impersonate(ctx context.Context, superAdminID, tenantID, userID string) (*Impersonation, error) {
	t, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var u *database.User
	if userID == "" {
		u, err = s.db.FirstActiveAdmin(ctx, t.ID)
	} else {
		u, err = database.NewScoped[database.User](s.db).Get(ctx, t.ID, userID)
	}
	if errors.Is(err, database.ErrNotFound) {
		return nil, errorx.ErrNotFound.WithMessage("User not found")
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, errorx.ErrUserDisabled
	}

	token, exp, err := s.sessions.issueUser(u, jwt.Claims{ImpersonatedBy: superAdminID}, s.sessions.impersonateTTL)
	if err != nil {
		return nil, err
	}
	s.logger.Warn("impersonation token issued",
		zap.String("super_admin", superAdminID), zap.String("tenant_id", t.ID), zap.String("user_id", u.ID))
	return &Impersonation{Token: token, ExpiresAt: exp.Unix(), User: u, Tenant: t}, nil
}
