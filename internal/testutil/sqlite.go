package testutil

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// MemoryURL returns a sqlite:mem: URL naming an in-memory database that no
// other test shares. Named in-memory databases live for the whole process,
// so tests must not reuse names across runs of the same package.
func MemoryURL(t *testing.T) string {
	t.Helper()
	return "sqlite:mem:" + memoryName(t)
}

func memoryName(t *testing.T) string {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return name + "_" + uuid.NewString()[:8]
}

// SetupSQLite creates a private in-memory SQLite database for testing.
// The handle is pinned to one connection and closed when the test completes.
func SetupSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", "file:"+memoryName(t)+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("failed to open sqlite connection: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping sqlite: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// ExecSQL executes SQL statements in order and fails the test on error.
func ExecSQL(t *testing.T, db *sql.DB, queries ...string) {
	t.Helper()

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			t.Fatalf("failed to execute SQL:\n%s\nerror: %v", query, err)
		}
	}
}

// AssertRowCount checks that a table has the expected number of rows.
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
	if err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}

	if count != expected {
		t.Errorf("expected %d rows in %s, got %d", expected, table, count)
	}
}
