// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/common/config"
	"go.uber.org/zap"
)

// New returns a migrated in-memory sqlite database closed at test cleanup
func New(t testing.TB) *database.DB {
	t.Helper()
	db, err := database.NewDatabase(&config.DatabaseConfig{
		Type:     "sqlite",
		DBName:   ":memory:",
		LogLevel: "silent",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Tenant inserts an ACTIVE tenant with the given subdomain and quotas
func Tenant(t testing.TB, db *database.DB, subdomain string, maxUsers, maxVehicles int) *database.Tenant {
	t.Helper()
	tn := &database.Tenant{
		Subdomain:   subdomain,
		Name:        subdomain,
		Email:       "owner@" + subdomain + ".test",
		Status:      database.TenantActive,
		Plan:        "BASIC",
		MaxUsers:    maxUsers,
		MaxVehicles: maxVehicles,
	}
	if err := db.CreateTenant(context.Background(), tn); err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	return tn
}

// User inserts an active user; passwordHash may be empty when login is not exercised
func User(t testing.TB, db *database.DB, tenantID, email string, role database.Role, passwordHash string) *database.User {
	t.Helper()
	if passwordHash == "" {
		passwordHash = "x"
	}
	u := &database.User{
		TenantID:     tenantID,
		Email:        email,
		Name:         email,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
	}
	if err := database.NewScoped[database.User](db).Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}
