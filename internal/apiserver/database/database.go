package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dealerhub/dealerhub/internal/common/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the data-access handle owned by main and passed to every component.
// Repository methods pick up a transaction from the context when one is active.
type DB struct {
	db      *gorm.DB
	dialect string
}

// Wrap adapts an already opened gorm handle
func Wrap(db *gorm.DB, dialect string) *DB {
	return &DB{db: db, dialect: dialect}
}

// Gorm exposes the underlying gorm handle, bound to ctx and any active transaction
func (d *DB) Gorm(ctx context.Context) *gorm.DB {
	return getDBFromContext(ctx, d.db)
}

// Dialect returns the configured database type
func (d *DB) Dialect() string { return d.dialect }

// Migrate creates or updates every table
func (d *DB) Migrate(ctx context.Context) error {
	if err := d.db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Transaction runs fn inside a transaction carried by the context passed to fn.
// Returning an error rolls everything back.
func (d *DB) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx := TransactionFromContext(ctx); tx != nil {
		return fn(ctx)
	}
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTransaction(ctx, tx))
	})
}

// Ping checks the connection
func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormConfig(cfg *config.DatabaseConfig, lg *zap.Logger) *gorm.Config {
	level := logger.Warn
	switch strings.ToLower(cfg.LogLevel) {
	case "silent":
		level = logger.Silent
	case "error":
		level = logger.Error
	case "info":
		level = logger.Info
	}
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(zap.NewStdLog(lg.Named("gorm")), logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	}
}
