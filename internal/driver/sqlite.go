package driver

import (
	"strings"

	_ "modernc.org/sqlite"

	"github.com/hlop3z/sqlfixture/internal/alerr"
)

func init() {
	Register(sqliteDriver{name: "sqlite", sqlDriver: "sqlite"},
		"modernc", "org.sqlite.JDBC",
		"hsqldb", "org.hsqldb.jdbc.JDBCDriver", "org.hsqldb.jdbcDriver")
}

// sqliteDriver serves both SQLite drivers; they share the DSN format.
type sqliteDriver struct {
	name      string
	sqlDriver string
}

func (d sqliteDriver) Name() string      { return d.name }
func (d sqliteDriver) SQLDriver() string { return d.sqlDriver }

// DSN converts sqlite URLs to the file/URI form the drivers accept.
// Credentials are ignored; SQLite has no authentication.
//
//	sqlite:mem:orders          -> file:orders?mode=memory&cache=shared
//	jdbc:hsqldb:mem:orders     -> file:orders?mode=memory&cache=shared
//	jdbc:hsqldb:file:data/app  -> data/app
//	sqlite:///tmp/a.db         -> /tmp/a.db
//	jdbc:sqlite:a.db           -> a.db
//	(empty)                    -> :memory:
func (d sqliteDriver) DSN(url, _, _ string) (string, error) {
	return sqliteDSN(url)
}

func sqliteDSN(url string) (string, error) {
	url = strings.TrimSpace(trimJDBC(url))

	if rest, ok := trimScheme(url, "hsqldb:"); ok {
		return hsqldbDSN(rest)
	}
	url, _ = trimScheme(url, "sqlite3://", "sqlite://", "sqlite3:", "sqlite:")

	if name, ok := strings.CutPrefix(url, "mem:"); ok {
		return memoryDSN(name), nil
	}
	if url == "" {
		return ":memory:", nil
	}
	return url, nil
}

// memoryDSN names a shared-cache in-memory database. Every connection opened
// with the same name sees the same database for as long as one stays open.
func memoryDSN(name string) string {
	if name == "" {
		return ":memory:"
	}
	return "file:" + name + "?mode=memory&cache=shared"
}

// hsqldbDSN maps the in-process HSQLDB URL forms used by Java test suites
// onto SQLite. Connection properties after ';' are dropped.
func hsqldbDSN(rest string) (string, error) {
	if i := strings.IndexByte(rest, ';'); i != -1 {
		rest = rest[:i]
	}

	if name, ok := trimScheme(rest, "mem:"); ok {
		return memoryDSN(name), nil
	}
	if path, ok := trimScheme(rest, "file:"); ok && path != "" {
		return path, nil
	}
	return "", alerr.New(alerr.ErrInvalidURL, "unsupported hsqldb URL").
		WithDriver("sqlite").
		With("url", RedactURL("hsqldb:"+rest)).
		WithHelp("only in-process hsqldb:mem:<name> and hsqldb:file:<path> URLs are mapped to SQLite")
}
