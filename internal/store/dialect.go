package store

import (
	"database/sql"
	"errors"
	"regexp"
	"strconv"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Dialect captures what differs between the supported SQL backends.
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN builds the data source name from a path (SQLite) or URL (PostgreSQL)
	DSN(target string) string

	// Rebind converts ? placeholders if the driver needs another syntax
	Rebind(query string) string

	// LockClause is appended to reads that must hold row locks inside a transaction
	LockClause() string

	// ConfigureConnection applies pool settings and pragmas
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir names the embedded migrations directory
	MigrationsSubdir() string

	// IsUniqueViolation reports whether err is a unique-constraint failure
	IsUniqueViolation(err error) bool
}

// SQLiteDialect implements Dialect for SQLite.
type SQLiteDialect struct{}

func (SQLiteDialect) DriverName() string { return "sqlite3" }

// DSN sets a busy timeout, WAL journaling, foreign keys, and BEGIN IMMEDIATE so
// that write transactions serialize on the database lock instead of failing late.
func (SQLiteDialect) DSN(path string) string {
	return path + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on&_txlock=immediate"
}

func (SQLiteDialect) Rebind(query string) string { return query }

// SQLite has no row locks; the immediate transaction already holds the write lock.
func (SQLiteDialect) LockClause() string { return "" }

func (SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	_, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`)
	return err
}

func (SQLiteDialect) MigrationsSubdir() string { return "sqlite" }

func (SQLiteDialect) IsUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

// PostgresDialect implements Dialect for PostgreSQL.
type PostgresDialect struct{}

func (PostgresDialect) DriverName() string { return "postgres" }

func (PostgresDialect) DSN(url string) string { return url }

// placeholderRegexp matches ? placeholders
var placeholderRegexp = regexp.MustCompile(`\?`)

// Rebind converts ? placeholders to $1, $2, etc.
func (PostgresDialect) Rebind(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

func (PostgresDialect) LockClause() string { return " FOR UPDATE" }

func (PostgresDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (PostgresDialect) MigrationsSubdir() string { return "postgres" }

func (PostgresDialect) IsUniqueViolation(err error) bool {
	var pe *pq.Error
	return errors.As(err, &pe) && pe.Code == "23505"
}
