package testutil

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/hlop3z/sqlfixture/internal/alerr"
)

func TestMemoryURL_Unique(t *testing.T) {
	a := MemoryURL(t)
	b := MemoryURL(t)

	if a == b {
		t.Errorf("expected distinct URLs, got %q twice", a)
	}
	if !strings.HasPrefix(a, "sqlite:mem:TestMemoryURL_Unique_") {
		t.Errorf("unexpected URL %q", a)
	}
}

func TestSetupSQLite(t *testing.T) {
	db := SetupSQLite(t)

	ExecSQL(t, db,
		"CREATE TABLE t (v INTEGER)",
		"INSERT INTO t VALUES (1), (2)",
	)
	AssertRowCount(t, db, "t", 2)
}

func TestNewFixture_Connect(t *testing.T) {
	fx := NewFixture(t)
	Connect(t, fx, "testdb1")
	Run(t, fx, "testdb1", UserTable, "INSERT INTO USER (NAME, PASSWORD) VALUES ('u', 'p')")

	value, ok, err := fx.Query(context.Background(), "testdb1", "SELECT COUNT(*) FROM USER")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !ok || value != "1" {
		t.Errorf("expected 1 row, got %q (ok=%v)", value, ok)
	}
}

func TestAssertError(t *testing.T) {
	err := alerr.New(alerr.ErrSQLExecution, "boom")

	AssertError(t, err, alerr.ErrSQLExecution)
	AssertErrorContains(t, err, "boom")
}

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, t.TempDir(), "nested/file.yaml", "steps: []")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read back: %v", err)
	}
	if string(data) != "steps: []" {
		t.Errorf("unexpected content %q", data)
	}
}
