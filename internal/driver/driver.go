// Package driver maps driver identifiers to database/sql drivers.
// Drivers register themselves at init with a canonical name and any number of
// aliases (database/sql names, JDBC class names), and know how to turn a
// connection URL plus credentials into a DSN for their database/sql driver.
package driver

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/hlop3z/sqlfixture/internal/alerr"
)

// Driver builds connection strings for one database/sql driver.
type Driver interface {
	// Name returns the canonical identifier (postgres, mysql, sqlite, ...).
	Name() string

	// SQLDriver returns the name the driver registered with database/sql.
	SQLDriver() string

	// DSN converts a connection URL and credentials into a DSN.
	// Empty credentials leave whatever the URL carries untouched.
	DSN(url, username, password string) (string, error)
}

var (
	mu      sync.RWMutex
	drivers = make(map[string]Driver) // canonical name -> driver
	aliases = make(map[string]string) // lower-cased alias -> canonical name
)

// Register makes a driver available under its canonical name and the given aliases.
// It panics if the name or an alias is already taken, like sql.Register.
func Register(d Driver, alias ...string) {
	if d == nil {
		panic("driver: Register driver is nil")
	}

	mu.Lock()
	defer mu.Unlock()

	name := strings.ToLower(d.Name())
	if _, dup := drivers[name]; dup {
		panic("driver: Register called twice for driver " + name)
	}
	drivers[name] = d

	for _, a := range alias {
		registerAlias(a, name)
	}
}

// RegisterAlias points an additional identifier at a canonical driver name.
// The target does not need to be registered yet.
func RegisterAlias(alias, name string) {
	mu.Lock()
	defer mu.Unlock()
	registerAlias(alias, strings.ToLower(name))
}

func registerAlias(alias, name string) {
	key := strings.ToLower(alias)
	if prev, dup := aliases[key]; dup && prev != name {
		panic(fmt.Sprintf("driver: alias %q already points to %s", alias, prev))
	}
	aliases[key] = name
}

// Lookup returns the driver registered under id, which may be a canonical
// name or an alias. Matching is case-insensitive.
func Lookup(id string) (Driver, error) {
	mu.RLock()
	defer mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(id))
	if d, ok := drivers[key]; ok {
		return d, nil
	}
	if name, ok := aliases[key]; ok {
		if d, ok := drivers[name]; ok {
			return d, nil
		}
	}

	err := alerr.New(alerr.ErrDriverUnknown, "unknown driver").
		WithDriver(id).
		With("registered", strings.Join(namesLocked(), ", "))
	if hint := alerr.SuggestSimilar(id, namesLocked()); hint != "" {
		err.WithHelp(hint)
	}
	return nil, err
}

// Names returns the sorted canonical names of all registered drivers.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve picks the driver for a connection. An explicit id wins; otherwise
// the driver is detected from the URL.
func Resolve(id, url string) (Driver, error) {
	if strings.TrimSpace(id) != "" {
		return Lookup(id)
	}

	detected := Detect(url)
	if detected == "" {
		return nil, alerr.New(alerr.ErrDriverUnknown, "cannot detect driver from URL").
			With("url", RedactURL(url)).
			WithHelp("pass a driver identifier, one of: " + strings.Join(Names(), ", "))
	}
	return Lookup(detected)
}

// Open resolves the driver, builds the DSN and opens a verified connection.
// The returned handle is pinned to a single session so that state such as
// in-memory databases and session variables survives between calls.
func Open(ctx context.Context, id, url, username, password string) (*sql.DB, Driver, error) {
	d, err := Resolve(id, url)
	if err != nil {
		return nil, nil, err
	}

	dsn, err := d.DSN(url, username, password)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(d.SQLDriver(), dsn)
	if err != nil {
		return nil, nil, alerr.Wrap(alerr.ErrDriverInvalid, err, "driver is not linked into this binary").
			WithDriver(d.Name()).
			With("sql_driver", d.SQLDriver()).
			WithHelp("import the database/sql driver package that registers " + d.SQLDriver())
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, alerr.Wrap(alerr.ErrSQLConnection, err, "failed to ping database").
			WithDriver(d.Name()).
			With("url", RedactURL(url))
	}

	return db, d, nil
}
