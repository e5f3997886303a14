package database

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const testMigrationsPath = "../../migrations"

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(context.Background(), testMigrationsPath); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t)
	ctx := context.Background()

	tables := []string{"parents", "learners", "learner_badges", "books", "book_pages", "quiz_questions", "reading_history", "reading_progress", "bad_words"}
	for _, table := range tables {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// Running again is a no-op
	if err := db.RunMigrations(ctx, testMigrationsPath); err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to count migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 recorded migration, got %d", count)
	}
}

// TestDatabaseTransactions tests commit and rollback through WithTx
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecReturningID(ctx, "INSERT INTO parents (email, password_hash, first_name) VALUES (?, ?, ?)",
			"ada@example.com", "hashed", "Ada")
		return err
	})
	if err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM parents WHERE email = ?", "ada@example.com").Scan(&count); err != nil {
		t.Fatalf("Failed to query after commit: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 parent, got %d", count)
	}

	err = db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO parents (email, password_hash, first_name) VALUES (?, ?, ?)",
			"grace@example.com", "hashed", "Grace"); err != nil {
			return err
		}
		// Duplicate email forces a rollback of the whole transaction
		_, err := tx.ExecContext(ctx, "INSERT INTO parents (email, password_hash, first_name) VALUES (?, ?, ?)",
			"ada@example.com", "hashed", "Ada")
		return err
	})
	if err == nil {
		t.Fatal("Expected unique constraint error")
	}

	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM parents WHERE email = ?", "grace@example.com").Scan(&count); err != nil {
		t.Fatalf("Failed to query after rollback: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 parents after rollback, got %d", count)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t)
	_, err := db.ExecContext(context.Background(), "INSERT INTO learners (parent_id, first_name) VALUES (?, ?)", 999, "Orphan")
	if err == nil {
		t.Fatal("Expected foreign key violation for unknown parent")
	}
}

func TestBadWords(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t)
	ctx := context.Background()

	added, err := db.LoadBadWords(ctx, strings.NewReader("Darn\n\nheck\ndarn\n"))
	if err != nil {
		t.Fatalf("LoadBadWords() error = %v", err)
	}
	if added != 2 {
		t.Errorf("LoadBadWords() added %d words, want 2", added)
	}

	tests := []struct {
		text string
		want bool
	}{
		{text: "Amara", want: false},
		{text: "Heck Yeah", want: true},
		{text: "super-darn", want: true},
		{text: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := db.ContainsBadWord(ctx, tt.text)
			if err != nil {
				t.Fatalf("ContainsBadWord() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ContainsBadWord(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

// TestConcurrentAccess tests concurrent database access
func TestConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "INSERT INTO parents (email, password_hash, first_name) VALUES (?, ?, ?)",
		"concurrent@example.com", "hashed", "Concurrent"); err != nil {
		t.Fatalf("Failed to create test parent: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var name string
			err := db.QueryRowContext(ctx, "SELECT first_name FROM parents WHERE email = ?", "concurrent@example.com").Scan(&name)
			if err != nil {
				t.Errorf("Concurrent read failed: %v", err)
				return
			}
			if name != "Concurrent" {
				t.Errorf("Expected name 'Concurrent', got '%s'", name)
			}
		}()
	}
	wg.Wait()
}

func TestSplitStatements(t *testing.T) {
	content := `-- header comment
CREATE TABLE a (id INTEGER);

  -- indented comment
CREATE TABLE b (id INTEGER);
`
	got := splitStatements(content)
	if len(got) != 2 {
		t.Fatalf("splitStatements() returned %d statements, want 2: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (id INTEGER)" {
		t.Errorf("first statement = %q", got[0])
	}
	if got[1] != "CREATE TABLE b (id INTEGER)" {
		t.Errorf("second statement = %q", got[1])
	}
}
