// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and PostgreSQL, plus schema migrations.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/library-community/internal/domain"
)

// sqlitePragmas are applied through the DSN so every pooled connection gets
// them, not only the first one.
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"

// Options selects the backing store for OpenDB.
type Options struct {
	Driver      string // sqlite|postgres
	SQLitePath  string
	DatabaseURL string
	Tracing     bool // emit OpenTelemetry spans per query
	LogLevel    logger.LogLevel
}

// OpenDB opens the configured store, installs the tracing plugin when asked,
// and tunes the connection pool.
func OpenDB(o Options) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch strings.ToLower(o.Driver) {
	case "", "sqlite":
		db, err = OpenSQLite(o.SQLitePath)
	case "postgres":
		db, err = OpenPostgres(o.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", o.Driver)
	}
	if err != nil {
		return nil, err
	}
	if o.LogLevel != 0 {
		db.Logger = db.Logger.LogMode(o.LogLevel)
	}
	if o.Tracing {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// zerologWriter sends gorm's log lines to the global zerolog logger.
type zerologWriter struct{}

func (zerologWriter) Printf(format string, args ...any) {
	log.Warn().Str("component", "gorm").Msgf(format, args...)
}

// NewLogger returns a gorm logger writing through zerolog. Lookups that find
// nothing are normal here (readers live in an external store), so
// ErrRecordNotFound is never logged.
func NewLogger(level logger.LogLevel) logger.Interface {
	return logger.New(zerologWriter{}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// OpenSQLite opens (or creates) a SQLite database with WAL, foreign keys and
// a busy timeout so concurrent writers queue instead of failing.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&" + sqlitePragmas
	} else {
		dsn += "?" + sqlitePragmas
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: NewLogger(logger.Warn)})
	if err != nil {
		return nil, err
	}

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		if err := sqlDB.Ping(); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// OpenPostgres connects to PostgreSQL using a URL or key=value DSN.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: NewLogger(logger.Warn)})
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

// AutoMigrate creates or updates every table the community service owns,
// plus the readers table it reads display names from.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Reader{},
		&domain.Discussion{},
		&domain.Comment{},
		&domain.Like{},
		&domain.Presence{},
		&domain.Idempotency{},
	); err != nil {
		return err
	}
	return backfillSearchText(db)
}

// backfillSearchText fills search_text for rows written before the column
// existed.
func backfillSearchText(db *gorm.DB) error {
	var batch []domain.Discussion
	return db.Select("id", "title", "content").
		Where("search_text = ?", "").
		FindInBatches(&batch, 200, func(*gorm.DB, int) error {
			for _, d := range batch {
				key := domain.DiscussionSearchKey(d.Title, d.Content)
				if err := db.Model(&domain.Discussion{}).Where("id = ?", d.ID).
					UpdateColumn("search_text", key).Error; err != nil {
					return err
				}
			}
			return nil
		}).Error
}
