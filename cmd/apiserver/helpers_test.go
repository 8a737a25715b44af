package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dealerhub/dealerhub/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLogger(t *testing.T) {
	lg, err := initLogger(&config.APIServerConfig{})
	require.NoError(t, err)
	require.NotNil(t, lg)
	_ = lg.Sync()
}

func TestInitDatabase_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "apiserver.db")
	db, err := initDatabase(context.Background(), zap.NewNop(), &config.DatabaseConfig{Type: "sqlite", DBName: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
}

func TestEnsureSuperAdmin(t *testing.T) {
	ctx := context.Background()
	db, err := initDatabase(ctx, zap.NewNop(), &config.DatabaseConfig{Type: "sqlite", DBName: filepath.Join(t.TempDir(), "sa.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	created, err := ensureSuperAdmin(ctx, db, config.SuperAdminConfig{})
	require.NoError(t, err)
	assert.False(t, created, "missing credentials skip bootstrap")

	_, err = ensureSuperAdmin(ctx, db, config.SuperAdminConfig{Email: "root@example.com", Password: "short"})
	assert.Error(t, err)

	sa := config.SuperAdminConfig{Email: "root@example.com", Password: "long-enough-secret"}
	created, err = ensureSuperAdmin(ctx, db, sa)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = ensureSuperAdmin(ctx, db, sa)
	require.NoError(t, err)
	assert.False(t, created)
}
