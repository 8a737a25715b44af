package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfig_GetDSN_Postgres(t *testing.T) {
	c := &DatabaseConfig{Type: "postgres", Host: "h", Port: 5432, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", c.GetDSN())
}

func TestDatabaseConfig_GetDSN_MySQL(t *testing.T) {
	c := &DatabaseConfig{Type: "mysql", Host: "h", Port: 3306, User: "u", Password: "p", DBName: "d"}
	assert.Equal(t, "u:p@tcp(h:3306)/d?charset=utf8mb4&parseTime=True&loc=Local", c.GetDSN())
}

func TestDatabaseConfig_GetDSN_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "app.sqlite")
	c := &DatabaseConfig{Type: "sqlite", DBName: dbPath}
	assert.Equal(t, dbPath, c.GetDSN())
	_, err := os.Stat(filepath.Dir(dbPath))
	assert.NoError(t, err)

	mem := &DatabaseConfig{Type: "sqlite", DBName: ":memory:"}
	assert.Equal(t, ":memory:", mem.GetDSN())
}

func TestDatabaseConfig_GetDSN_Unknown(t *testing.T) {
	c := &DatabaseConfig{Type: "unknown"}
	assert.Equal(t, "", c.GetDSN())
}

func validSecrets() JWTConfig {
	return JWTConfig{
		UserSecret:       "user-secret-user-secret-user-secret-0001",
		SuperAdminSecret: "admin-secret-admin-secret-admin-secret-01",
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &APIServerConfig{JWT: validSecrets()}
	cfg.applyDefaults()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.UserDuration)
	assert.Equal(t, time.Hour, cfg.JWT.ImpersonateDuration)
	assert.Equal(t, 24*time.Hour, cfg.JWT.SuperAdminDuration)
	assert.Equal(t, "X-Tenant-Subdomain", cfg.Tenancy.Header)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Contains(t, cfg.Tenancy.Plans, "BASIC")
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Secrets(t *testing.T) {
	cfg := &APIServerConfig{}
	cfg.applyDefaults()
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.user_secret")
	assert.Contains(t, err.Error(), "jwt.super_admin_secret")

	same := "same-secret-same-secret-same-secret-000"
	cfg.JWT.UserSecret, cfg.JWT.SuperAdminSecret = same, same
	assert.ErrorContains(t, cfg.Validate(), "must differ")
}

func TestValidate_ImpersonationShorterThanSession(t *testing.T) {
	cfg := &APIServerConfig{JWT: validSecrets()}
	cfg.applyDefaults()
	cfg.JWT.ImpersonateDuration = cfg.JWT.UserDuration
	assert.ErrorContains(t, cfg.Validate(), "impersonate_duration")
}

func TestValidate_CacheAndMail(t *testing.T) {
	cfg := &APIServerConfig{JWT: validSecrets(), Cache: CacheConfig{Type: "redis"}}
	cfg.applyDefaults()
	assert.ErrorContains(t, cfg.Validate(), "cache.redis.addr")

	cfg.Cache.Redis.Addr = "localhost:6379"
	cfg.Mail.Enabled = true
	assert.ErrorContains(t, cfg.Validate(), "mail.host")
}

func TestTenancyPlan(t *testing.T) {
	tc := TenancyConfig{Plans: DefaultPlans()}
	p, ok := tc.Plan("basic")
	assert.True(t, ok)
	assert.Equal(t, 3, p.MaxUsers)
	_, ok = tc.Plan("gold")
	assert.False(t, ok)
}
