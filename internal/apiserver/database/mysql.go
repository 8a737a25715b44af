package database

import (
	"github.com/dealerhub/dealerhub/internal/common/config"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func mysqlDialector(cfg *config.DatabaseConfig) gorm.Dialector {
	return mysql.Open(cfg.GetDSN())
}
