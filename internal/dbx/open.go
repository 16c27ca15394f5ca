package dbx

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/filex"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect names the SQL flavour a DSN points at.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// ErrUnsupportedDSN is returned by ParseDSN for schemes we have no driver for.
var ErrUnsupportedDSN = errors.New("unsupported dsn")

// ParseDSN maps a DSN to a dialect and the string the driver expects.
//
//	postgres://... or postgresql://...  -> pgx
//	sqlite://path, file:path, :memory:  -> modernc sqlite
func ParseDSN(dsn string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DialectPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return DialectSQLite, strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		return DialectSQLite, dsn, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedDSN, dsn)
	}
}

// Open opens a pool for dsn using pgx (stdlib) or modernc sqlite.
// SQLite pools are limited to one connection; the engine serializes writers anyway.
func Open(dsn string) (*sql.DB, Dialect, error) {
	dialect, source, err := ParseDSN(dsn)
	if err != nil {
		return nil, "", err
	}

	driver := "pgx"
	if dialect == DialectSQLite {
		driver = "sqlite"
		if path := sqliteFilePath(source); path != "" {
			if _, err := filex.EnsureParentDir(path); err != nil {
				return nil, "", fmt.Errorf("db open error: %w", err)
			}
		}
		source = sqliteSource(source)
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, "", fmt.Errorf("db open error: %w", err)
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}
	return db, dialect, nil
}

// sqliteSource turns on FK enforcement, which SQLite leaves off per
// connection, and makes the driver write times in a sortable text format.
func sqliteSource(source string) string {
	params := []struct{ key, param string }{
		{"foreign_keys", "_pragma=foreign_keys(1)"},
		{"_time_format", "_time_format=sqlite"},
	}
	for _, p := range params {
		if strings.Contains(source, p.key) {
			continue
		}
		sep := "?"
		if strings.Contains(source, "?") {
			sep = "&"
		}
		source += sep + p.param
	}
	return source
}

// sqliteFilePath returns the on-disk path of a SQLite source, or "" for
// in-memory databases.
func sqliteFilePath(source string) string {
	path, query, _ := strings.Cut(strings.TrimPrefix(source, "file:"), "?")
	if path == "" || strings.HasPrefix(path, ":memory:") || strings.Contains(query, "mode=memory") {
		return ""
	}
	return path
}

// IsUniqueViolation reports whether err is a primary-key or unique constraint
// failure from either supported driver.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
