package database

import (
	"context"
	"strings"
	"time"
)

// GetUser loads a user by id regardless of tenant; callers compare TenantID themselves
func (d *DB) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	if err := getDBFromContext(ctx, d.db).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail looks up a user by email inside one tenant
func (d *DB) GetUserByEmail(ctx context.Context, tenantID, email string) (*User, error) {
	var u User
	err := getDBFromContext(ctx, d.db).
		Where("tenant_id = ? AND email = ?", tenantID, NormalizeEmail(email)).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserEmailExists reports whether email is used inside tenantID by anyone but excludeID
func (d *DB) UserEmailExists(ctx context.Context, tenantID, email, excludeID string) (bool, error) {
	q := getDBFromContext(ctx, d.db).Model(&User{}).
		Where("tenant_id = ? AND email = ?", tenantID, NormalizeEmail(email))
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

// FirstActiveAdmin returns the oldest active ADMIN of the tenant
func (d *DB) FirstActiveAdmin(ctx context.Context, tenantID string) (*User, error) {
	var u User
	err := getDBFromContext(ctx, d.db).
		Where("tenant_id = ? AND role = ? AND is_active = ?", tenantID, RoleAdmin, true).
		Order("created_at asc").
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// TouchUserLogin records a successful login
func (d *DB) TouchUserLogin(ctx context.Context, id string, at time.Time) error {
	return getDBFromContext(ctx, d.db).Model(&User{}).Where("id = ?", id).
		Update("last_login_at", at).Error
}

// SetUserPassword replaces the stored bcrypt hash
func (d *DB) SetUserPassword(ctx context.Context, id, hash string) error {
	return getDBFromContext(ctx, d.db).Model(&User{}).Where("id = ?", id).
		Update("password_hash", hash).Error
}

// NormalizeEmail lower-cases and trims an address for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
