// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping for the supported
// drivers (SQLite via a pure Go driver, PostgreSQL, MySQL), pool tuning and
// schema migrations.
package repo

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codedsnow/feedback-api/internal/config"
	"github.com/codedsnow/feedback-api/internal/domain"
)

// Open connects to the configured backend and applies pool limits.
// The returned handle is safe for concurrent use and must be shared.
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: defaultLogger()})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLife)

	return db, nil
}

// OpenSQLite opens (or creates) a SQLite database with the default pool.
func OpenSQLite(path string) (*gorm.DB, error) {
	return Open(config.DBConfig{
		Driver:       "sqlite",
		Path:         path,
		MaxOpenConns: 10,
		MaxIdleConns: 10,
		ConnMaxLife:  30 * time.Minute,
	})
}

func dialectorFor(cfg config.DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "sqlite":
		// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if _, err := os.Stat(dir); err != nil {
				return nil, err
			}
		}
		return sqlite.Open(sqliteDSN(cfg.Path)), nil
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "mysql":
		return mysql.Open(mysqlDSN(cfg.DSN)), nil
	default:
		return nil, fmt.Errorf("repo: unsupported driver %q", cfg.Driver)
	}
}

// sqliteDSN attaches PRAGMAs as DSN parameters so that every pooled
// connection gets them, not only the first one.
func sqliteDSN(path string) string {
	pragmas := []string{
		"_pragma=journal_mode(WAL)",
		"_pragma=synchronous(NORMAL)",
		"_pragma=foreign_keys(ON)",
		"_pragma=busy_timeout(5000)",
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(pragmas, "&")
}

func mysqlDSN(dsn string) string {
	dsn = ensureParam(dsn, "parseTime", "true")
	if !strings.Contains(dsn, "charset=") {
		dsn = ensureParam(dsn, "charset", "utf8mb4")
		dsn = ensureParam(dsn, "collation", "utf8mb4_unicode_ci")
	}
	return dsn
}

func ensureParam(dsn, key, val string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + val
}

func defaultLogger() logger.Interface {
	return logger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// AutoMigrate creates or updates the tables for all persisted models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Suggestion{},
		&domain.Report{},
		&domain.Idempotency{},
	)
}
