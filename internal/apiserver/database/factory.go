package database

import (
	"fmt"

	"github.com/dealerhub/dealerhub/internal/common/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewDatabase opens the database selected by cfg.Type. Call Migrate to create tables.
func NewDatabase(cfg *config.DatabaseConfig, lg *zap.Logger) (*DB, error) {
	if lg == nil {
		lg = zap.NewNop()
	}

	var (
		dialector gorm.Dialector
		err       error
	)
	switch cfg.Type {
	case "postgres":
		dialector = postgresDialector(cfg)
	case "sqlite":
		dialector, err = sqliteDialector(cfg)
	case "mysql":
		dialector = mysqlDialector(cfg)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	gormDB, err := gorm.Open(dialector, gormConfig(cfg, lg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Type == "sqlite" {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, err
		}
		// one writer; also keeps :memory: databases on a single connection
		sqlDB.SetMaxOpenConns(1)
	}
	return Wrap(gormDB, cfg.Type), nil
}
