package database

import (
	"database/sql"
	"errors"
	"regexp"
	"strconv"
)

// ErrConstraint classifies a violated integrity constraint
type ErrConstraint int

const (
	NoViolation ErrConstraint = iota
	CheckViolation
	ForeignKeyViolation
	UniqueViolation
	NotNullViolation
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// Classify maps a driver error to the constraint it violated
	Classify(err error) ErrConstraint
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// IsConstraint reports whether err is a violation of kind c under dialect d
func IsConstraint(d Dialect, err error, c ErrConstraint) bool {
	if err == nil {
		return false
	}
	return d.Classify(err) == c
}

// IsAnyConstraint reports whether err is any integrity constraint violation
func IsAnyConstraint(d Dialect, err error) bool {
	return err != nil && !errors.Is(err, sql.ErrNoRows) && d.Classify(err) != NoViolation
}

// placeholderRegexp matches ? placeholders
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}
