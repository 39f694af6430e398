// Package database opens the project database described by a settings
// file. The handle is returned to the caller and nothing is stored in
// package state, so tests and the runtime construct exactly the handles
// they need.
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/onramp-dev/onramp/config"
	"github.com/onramp-dev/onramp/pkg/orm"
)

// Connect opens the database for settings and configures the connection
// pool. For sqlite it creates the app/db/ directory when missing.
func Connect(settings *config.Settings) (*gorm.DB, error) {
	dsn := settings.DSN()

	if settings.Database.Engine == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("database: create db dir: %w", err)
		}
	}

	dialector, err := buildDialector(settings.Database.Engine, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: build dialector: %w", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NamingStrategy: orm.NamingStrategy{},
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent), // pkg/logger owns output
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database: get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	return db, nil
}

func buildDialector(engine, dsn string) (gorm.Dialector, error) {
	switch engine {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported engine %q (supported: sqlite, postgres, mysql, sqlserver)", engine)
	}
}
