//go:build cgo

package driver

import (
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
)

func init() {
	Register(duckdbDriver{}, "org.duckdb.DuckDBDriver")
}

// duckdbDriver connects through duckdb-go. DuckDB needs cgo.
type duckdbDriver struct{}

func (duckdbDriver) Name() string      { return "duckdb" }
func (duckdbDriver) SQLDriver() string { return "duckdb" }

// DSN maps duckdb:path to the database path. An empty path, ":memory:" or a
// mem:<name> URL opens a private in-memory database. Credentials are ignored.
func (duckdbDriver) DSN(url, _, _ string) (string, error) {
	url = strings.TrimSpace(trimJDBC(url))
	url, _ = trimScheme(url, "duckdb://", "duckdb:")

	if url == ":memory:" || strings.HasPrefix(url, "mem:") {
		return "", nil
	}
	return url, nil
}
