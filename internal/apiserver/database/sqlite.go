package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dealerhub/dealerhub/internal/common/config"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func sqliteDialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	dsn := cfg.DBName
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return sqlite.Open(dsn), nil
}
