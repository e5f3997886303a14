package database

import (
	"testing"
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

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if !result {
			t.Error("SupportsLastInsertId() should return true for SQLite")
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

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if result {
			t.Error("SupportsLastInsertId() should return false for PostgreSQL")
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

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		result := dialect.SupportsLastInsertId()
		if !result {
			t.Error("SupportsLastInsertId() should return true for MySQL")
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
			query:    "SELECT * FROM learners WHERE id = ?",
			expected: "SELECT * FROM learners WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM learners WHERE id = ?",
			expected: "SELECT * FROM learners WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO parents (first_name, email) VALUES (?, ?)",
			expected: "INSERT INTO parents (first_name, email) VALUES ($1, $2)",
		},
		{
			name:     "PostgreSQL upsert placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO bad_words (word) VALUES (?) ON CONFLICT (word) DO UPDATE SET word = excluded.word",
			expected: "INSERT INTO bad_words (word) VALUES ($1) ON CONFLICT (word) DO UPDATE SET word = excluded.word",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE learners SET books_read = ?, reading_level = ? WHERE id = ?",
			expected: "UPDATE learners SET books_read = ?, reading_level = ? WHERE id = ?",
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

func TestUpsertQuery(t *testing.T) {
	cols := []string{"learner_id", "book_id", "current_page"}
	conflict := []string{"learner_id", "book_id"}
	update := []string{"current_page"}

	tests := []struct {
		name     string
		dialect  Dialect
		expected string
	}{
		{
			name:     "SQLite on conflict",
			dialect:  NewSQLiteDialect(),
			expected: "INSERT INTO reading_progress (learner_id, book_id, current_page) VALUES (?, ?, ?) ON CONFLICT (learner_id, book_id) DO UPDATE SET current_page = excluded.current_page",
		},
		{
			name:     "PostgreSQL on conflict",
			dialect:  NewPostgresDialect(),
			expected: "INSERT INTO reading_progress (learner_id, book_id, current_page) VALUES (?, ?, ?) ON CONFLICT (learner_id, book_id) DO UPDATE SET current_page = excluded.current_page",
		},
		{
			name:     "MySQL on duplicate key",
			dialect:  NewMySQLDialect(),
			expected: "INSERT INTO reading_progress (learner_id, book_id, current_page) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE current_page = VALUES(current_page)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.UpsertQuery("reading_progress", cols, conflict, update)
			if result != tt.expected {
				t.Errorf("UpsertQuery() =\n%v\nwant\n%v", result, tt.expected)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	if got := NewSQLiteDialect().DSN(DialectConfig{Path: "app.db"}); got != "app.db?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL" {
		t.Errorf("SQLite DSN() = %v", got)
	}
	if got := NewMySQLDialect().DSN(DialectConfig{URL: "u:p@tcp(db:3306)/ys"}); got != "u:p@tcp(db:3306)/ys?parseTime=true" {
		t.Errorf("MySQL DSN() = %v", got)
	}
	if got := NewMySQLDialect().DSN(DialectConfig{URL: "u:p@tcp(db:3306)/ys?tls=true"}); got != "u:p@tcp(db:3306)/ys?tls=true&parseTime=true" {
		t.Errorf("MySQL DSN() with params = %v", got)
	}
	if got := NewPostgresDialect().DSN(DialectConfig{URL: "postgres://db/ys"}); got != "postgres://db/ys?application_name=youngscholars" {
		t.Errorf("PostgreSQL DSN() = %v", got)
	}
	if got := NewPostgresDialect().DSN(DialectConfig{URL: "postgres://db/ys?application_name=ops"}); got != "postgres://db/ys?application_name=ops" {
		t.Errorf("PostgreSQL DSN() with application_name = %v", got)
	}
	if got := NewPostgresDialect().DSN(DialectConfig{URL: "host=db dbname=ys"}); got != "host=db dbname=ys" {
		t.Errorf("PostgreSQL key/value DSN() = %v", got)
	}
}

func TestResetIdentityQuery(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		want    string
	}{
		{name: "sqlite", dialect: NewSQLiteDialect(), want: ""},
		{name: "mysql", dialect: NewMySQLDialect(), want: ""},
		{name: "postgres", dialect: NewPostgresDialect(), want: "SELECT setval(pg_get_serial_sequence('learners', 'id'), COALESCE((SELECT MAX(id) FROM learners), 0) + 1, false)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.ResetIdentityQuery("learners"); got != tt.want {
				t.Errorf("ResetIdentityQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}
