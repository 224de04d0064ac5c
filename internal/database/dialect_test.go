package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "sqlite"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "postgres"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "mysql"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM robins WHERE id = ?",
			expected: "SELECT * FROM robins WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM robins WHERE id = ?",
			expected: "SELECT * FROM robins WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO robins (name, email) VALUES (?, ?)",
			expected: "INSERT INTO robins (name, email) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE robins SET name = ?, email = ? WHERE id = ?",
			expected: "UPDATE robins SET name = ?, email = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		name    string
		dbType  string
		want    string
		wantErr bool
	}{
		{"default", "", "sqlite3", false},
		{"postgresql alias", "PostgreSQL", "postgres", false},
		{"mysql", "mysql", "mysql", false},
		{"unknown", "oracle", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialect, err := DialectFor(tt.dbType)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DialectFor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && dialect.DriverName() != tt.want {
				t.Errorf("DriverName() = %v, want %v", dialect.DriverName(), tt.want)
			}
		})
	}
}

func TestClassifyDriverErrors(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		err     error
		want    ErrConstraint
	}{
		{"postgres check", NewPostgresDialect(), &pq.Error{Code: "23514"}, CheckViolation},
		{"postgres fk", NewPostgresDialect(), &pq.Error{Code: "23503"}, ForeignKeyViolation},
		{"postgres other", NewPostgresDialect(), &pq.Error{Code: "42P01"}, NoViolation},
		{"mysql check", NewMySQLDialect(), &mysql.MySQLError{Number: 3819}, CheckViolation},
		{"mysql duplicate", NewMySQLDialect(), &mysql.MySQLError{Number: 1062}, UniqueViolation},
		{"wrapped mysql", NewMySQLDialect(), fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1452}), ForeignKeyViolation},
		{"plain error", NewSQLiteDialect(), errors.New("disk full"), NoViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	content := "-- header\nCREATE TABLE a (\n  id TEXT\n);\n\nCREATE INDEX i ON a(id);\n"
	stmts := splitStatements(content)
	if len(stmts) != 2 {
		t.Fatalf("splitStatements() returned %d statements, want 2: %q", len(stmts), stmts)
	}
}
