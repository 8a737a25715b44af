package database

import (
	"context"

	"gorm.io/gorm"
)

func (d *DB) CreateRegistration(ctx context.Context, r *TenantRegistration) error {
	return getDBFromContext(ctx, d.db).Create(r).Error
}

func (d *DB) GetRegistration(ctx context.Context, id string) (*TenantRegistration, error) {
	var r TenantRegistration
	if err := getDBFromContext(ctx, d.db).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

func (d *DB) SaveRegistration(ctx context.Context, r *TenantRegistration) error {
	return getDBFromContext(ctx, d.db).Save(r).Error
}

// ListRegistrations returns one page of registrations, optionally filtered by status
func (d *DB) ListRegistrations(ctx context.Context, status RegistrationStatus, opts ListOptions) ([]TenantRegistration, int64, error) {
	opts = opts.Normalize()
	q := func() *gorm.DB {
		return getDBFromContext(ctx, d.db).Model(&TenantRegistration{}).
			Scopes(WhereEq("status", string(status)))
	}

	var total int64
	if err := q().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	regs := make([]TenantRegistration, 0)
	err := q().Order(opts.Order).Offset(opts.offset()).Limit(opts.PageSize).Find(&regs).Error
	return regs, total, err
}

// PendingRegistrationExists reports whether a PENDING registration other than
// excludeID holds subdomain
func (d *DB) PendingRegistrationExists(ctx context.Context, subdomain, excludeID string) (bool, error) {
	q := getDBFromContext(ctx, d.db).Model(&TenantRegistration{}).
		Where("subdomain = ? AND status = ?", subdomain, RegistrationPending)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

func (d *DB) CountRegistrations(ctx context.Context, status RegistrationStatus) (int64, error) {
	var n int64
	err := getDBFromContext(ctx, d.db).Model(&TenantRegistration{}).
		Scopes(WhereEq("status", string(status))).Count(&n).Error
	return n, err
}
