package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a row does not exist or belongs to another tenant
var ErrNotFound = gorm.ErrRecordNotFound

// TenantFilter narrows ListTenants
type TenantFilter struct {
	Status TenantStatus
	Query  string
}

// CreateTenant inserts a tenant
func (d *DB) CreateTenant(ctx context.Context, t *Tenant) error {
	return getDBFromContext(ctx, d.db).Create(t).Error
}

// GetTenant returns the tenant with id or gorm.ErrRecordNotFound
func (d *DB) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	var t Tenant
	if err := getDBFromContext(ctx, d.db).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTenantBySubdomain returns the tenant owning subdomain or gorm.ErrRecordNotFound
func (d *DB) GetTenantBySubdomain(ctx context.Context, subdomain string) (*Tenant, error) {
	var t Tenant
	if err := getDBFromContext(ctx, d.db).Where("subdomain = ?", subdomain).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// SubdomainTaken reports whether any tenant, whatever its status, owns subdomain
func (d *DB) SubdomainTaken(ctx context.Context, subdomain string) (bool, error) {
	var n int64
	err := getDBFromContext(ctx, d.db).Model(&Tenant{}).Where("subdomain = ?", subdomain).Count(&n).Error
	return n > 0, err
}

// ListTenants returns one page of tenants
func (d *DB) ListTenants(ctx context.Context, f TenantFilter, opts ListOptions) ([]Tenant, int64, error) {
	opts = opts.Normalize()
	q := func() *gorm.DB {
		return getDBFromContext(ctx, d.db).Model(&Tenant{}).
			Scopes(WhereEq("status", string(f.Status)), Search(f.Query, "name", "subdomain", "email"))
	}

	var total int64
	if err := q().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	tenants := make([]Tenant, 0)
	err := q().Order(opts.Order).Offset(opts.offset()).Limit(opts.PageSize).Find(&tenants).Error
	return tenants, total, err
}

// SaveTenant writes every column of t
func (d *DB) SaveTenant(ctx context.Context, t *Tenant) error {
	return getDBFromContext(ctx, d.db).Save(t).Error
}

// CountTenantsByStatus groups tenants by status
func (d *DB) CountTenantsByStatus(ctx context.Context) (map[TenantStatus]int64, error) {
	var rows []struct {
		Status TenantStatus
		N      int64
	}
	err := getDBFromContext(ctx, d.db).Model(&Tenant{}).
		Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := map[TenantStatus]int64{TenantPending: 0, TenantActive: 0, TenantSuspended: 0, TenantCancelled: 0}
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}

// DeleteTenantCascade removes the tenant and every row it owns in one transaction
func (d *DB) DeleteTenantCascade(ctx context.Context, id string) error {
	return d.Transaction(ctx, func(ctx context.Context) error {
		tx := getDBFromContext(ctx, d.db)
		res := tx.Where("id = ?", id).Delete(&Tenant{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		for _, m := range tenantOwned() {
			if err := tx.Where("tenant_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Model(&TenantRegistration{}).Where("tenant_id = ?", id).
			Update("tenant_id", "").Error
	})
}

// IsNotFound reports whether err is gorm's missing-row error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
