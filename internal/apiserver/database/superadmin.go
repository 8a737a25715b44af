package database

import (
	"context"
	"time"
)

func (d *DB) GetSuperAdmin(ctx context.Context, id string) (*SuperAdmin, error) {
	var a SuperAdmin
	if err := getDBFromContext(ctx, d.db).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (d *DB) GetSuperAdminByEmail(ctx context.Context, email string) (*SuperAdmin, error) {
	var a SuperAdmin
	err := getDBFromContext(ctx, d.db).Where("email = ?", NormalizeEmail(email)).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (d *DB) CreateSuperAdmin(ctx context.Context, a *SuperAdmin) error {
	a.Email = NormalizeEmail(a.Email)
	return getDBFromContext(ctx, d.db).Create(a).Error
}

func (d *DB) TouchSuperAdminLogin(ctx context.Context, id string, at time.Time) error {
	return getDBFromContext(ctx, d.db).Model(&SuperAdmin{}).Where("id = ?", id).
		Update("last_login_at", at).Error
}

// EnsureSuperAdmin creates the bootstrap super admin unless one with the email exists.
// It reports whether a row was created.
func (d *DB) EnsureSuperAdmin(ctx context.Context, email, name, passwordHash string) (bool, error) {
	var n int64
	err := getDBFromContext(ctx, d.db).Model(&SuperAdmin{}).
		Where("email = ?", NormalizeEmail(email)).Count(&n).Error
	if err != nil || n > 0 {
		return false, err
	}
	err = d.CreateSuperAdmin(ctx, &SuperAdmin{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		IsActive:     true,
	})
	return err == nil, err
}
