package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/common/config"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"gorm.io/gorm"
)

// Default app config values for a new tenant
const (
	DefaultCurrency     = "USD"
	DefaultPrimaryColor = "#1d4ed8"
)

// ProvisionInput describes a tenant and its first administrator
type ProvisionInput struct {
	Subdomain   string
	Name        string
	Email       string
	Phone       string
	Address     string
	Plan        string
	MaxUsers    *int // nil takes the plan quota
	MaxVehicles *int

	AdminName         string
	AdminEmail        string
	AdminPasswordHash string
}

// Provisioner creates a tenant together with everything it needs to be usable
type Provisioner struct {
	db    *database.DB
	plans *config.TenancyConfig
}

// NewProvisioner creates a provisioner using the configured plan quotas
func NewProvisioner(db *database.DB, plans *config.TenancyConfig) *Provisioner {
	return &Provisioner{db: db, plans: plans}
}

// ResolvePlan returns the normalized plan name and its quotas
func (p *Provisioner) ResolvePlan(name string) (string, config.PlanConfig, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		name = "BASIC"
	}
	plan, ok := p.plans.Plan(name)
	if !ok {
		return "", config.PlanConfig{}, errorx.ErrUnknownPlan
	}
	return name, plan, nil
}

// Provision creates an ACTIVE tenant, its ADMIN user, the default app config and
// the default payment methods in one transaction. The subdomain must already be
// validated; a concurrent insert of the same subdomain yields SUBDOMAIN_UNAVAILABLE.
func (p *Provisioner) Provision(ctx context.Context, in ProvisionInput) (*database.Tenant, *database.User, error) {
	planName, plan, err := p.ResolvePlan(in.Plan)
	if err != nil {
		return nil, nil, err
	}
	t := &database.Tenant{
		Subdomain:   in.Subdomain,
		Name:        in.Name,
		Email:       database.NormalizeEmail(in.Email),
		Phone:       in.Phone,
		Address:     in.Address,
		Status:      database.TenantActive,
		Plan:        planName,
		MaxUsers:    plan.MaxUsers,
		MaxVehicles: plan.MaxVehicles,
	}
	if in.MaxUsers != nil {
		t.MaxUsers = *in.MaxUsers
	}
	if in.MaxVehicles != nil {
		t.MaxVehicles = *in.MaxVehicles
	}
	admin := &database.User{
		Email:        database.NormalizeEmail(in.AdminEmail),
		Name:         in.AdminName,
		PasswordHash: in.AdminPasswordHash,
		Role:         database.RoleAdmin,
		IsActive:     true,
	}

	err = p.db.Transaction(ctx, func(ctx context.Context) error {
		if err := p.db.CreateTenant(ctx, t); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errorx.ErrSubdomainUnavailable
			}
			return err
		}

		admin.TenantID = t.ID
		if err := database.NewScoped[database.User](p.db).Create(ctx, admin); err != nil {
			return err
		}

		cfg := &database.AppConfig{
			TenantID:     t.ID,
			CompanyName:  t.Name,
			Currency:     DefaultCurrency,
			PrimaryColor: DefaultPrimaryColor,
			ContactEmail: t.Email,
		}
		if err := database.NewScoped[database.AppConfig](p.db).Create(ctx, cfg); err != nil {
			return err
		}

		methods := make([]database.PaymentMethod, 0, len(database.DefaultPaymentMethods))
		for _, name := range database.DefaultPaymentMethods {
			methods = append(methods, database.PaymentMethod{TenantID: t.ID, Name: name, IsActive: true})
		}
		return database.NewScoped[database.PaymentMethod](p.db).CreateMany(ctx, methods)
	})
	if err != nil {
		return nil, nil, err
	}
	return t, admin, nil
}
