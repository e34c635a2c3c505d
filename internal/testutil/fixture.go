package testutil

import (
	"context"
	"testing"

	"github.com/hlop3z/sqlfixture/pkg/sqlfixture"
)

// UserTable creates the table used throughout the fixture tests.
const UserTable = `CREATE TABLE USER (
	ID INTEGER PRIMARY KEY AUTOINCREMENT,
	NAME VARCHAR(255) NOT NULL,
	PASSWORD VARCHAR(255) NOT NULL
)`

// NewFixture creates a Fixture that is closed when the test completes.
func NewFixture(t *testing.T, opts ...sqlfixture.Option) *sqlfixture.Fixture {
	t.Helper()

	fx := sqlfixture.New(opts...)
	t.Cleanup(func() {
		if err := fx.Close(); err != nil {
			t.Errorf("failed to close fixture: %v", err)
		}
	})
	return fx
}

// Connect registers a fresh in-memory SQLite database under name and
// returns the URL it was opened with.
func Connect(t *testing.T, fx *sqlfixture.Fixture, name string) string {
	t.Helper()

	url := MemoryURL(t)
	if err := fx.Connect(context.Background(), name, sqlfixture.ConnectionParams{URL: url}); err != nil {
		t.Fatalf("failed to connect %s: %v", name, err)
	}
	return url
}

// Run executes statements on a named connection and fails the test on error.
func Run(t *testing.T, fx *sqlfixture.Fixture, name string, queries ...string) {
	t.Helper()

	for _, query := range queries {
		if err := fx.Run(context.Background(), name, query); err != nil {
			t.Fatalf("failed to run SQL on %s:\n%s\nerror: %v", name, query, err)
		}
	}
}
