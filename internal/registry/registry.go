// Package registry keeps the named database connections of a fixture.
// Names are unique and remembered in registration order, which is the order
// reported back to callers when a lookup fails.
package registry

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hlop3z/sqlfixture/internal/alerr"
)

// Entry is one registered connection.
type Entry struct {
	Name        string
	Driver      string // canonical driver name
	URL         string // credentials redacted
	DB          *sql.DB
	ConnectedAt time.Time
}

// Registry stores connection entries by name.
// It is safe for concurrent use; callers still serialize work on a single connection.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	order   []string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
	}
}

// Register adds an entry under entry.Name.
// Returns an error if the name is empty or already registered; the existing
// entry is never replaced.
func (r *Registry) Register(entry *Entry) error {
	if entry == nil || entry.DB == nil {
		return alerr.New(alerr.EInternalError, "registry entry requires a database handle")
	}
	if strings.TrimSpace(entry.Name) == "" {
		return alerr.New(alerr.ErrInvalidName, "database name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[entry.Name]; exists {
		return alerr.New(alerr.ErrDatabaseDuplicate, "database already registered").
			WithDatabase(entry.Name).
			WithHelp("disconnect it first or pick another name")
	}

	r.entries[entry.Name] = entry
	r.order = append(r.order, entry.Name)
	return nil
}

// Contains reports whether a name is registered.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[name]
	return ok
}

// Resolve looks up a registered connection.
// An unknown name yields an ErrDatabaseUnknown error whose message lists
// every registered name in registration order.
func (r *Registry) Resolve(name string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, ok := r.entries[name]; ok {
		return entry, nil
	}
	return nil, r.unknownLocked(name)
}

// Remove unregisters a name and returns its entry. The handle is not closed.
func (r *Registry) Remove(name string) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, r.unknownLocked(name)
	}

	delete(r.entries, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
	return entry, nil
}

// Drain unregisters everything and returns the entries in registration order.
func (r *Registry) Drain() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*Entry, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.entries[name])
	}
	r.entries = make(map[string]*Entry)
	r.order = nil
	return result
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.order)
}

// Entries returns the registered entries in registration order.
func (r *Registry) Entries() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Entry, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.entries[name])
	}
	return result
}

func (r *Registry) unknownLocked(name string) *alerr.Error {
	registered := slices.Clone(r.order)
	err := alerr.New(alerr.ErrDatabaseUnknown, UnknownMessage(name, registered)).
		WithDatabase(name).
		With("registered", registered)
	if hint := alerr.SuggestSimilar(name, registered); hint != "" {
		err.WithHelp(hint)
	}
	return err
}

// UnknownMessage formats the lookup failure for name:
//
//	No database registered for name 'x'. Registered databases: [a, b]
func UnknownMessage(name string, registered []string) string {
	return fmt.Sprintf("No database registered for name '%s'. Registered databases: [%s]",
		name, strings.Join(registered, ", "))
}

// Registered extracts the registered names recorded on an ErrDatabaseUnknown error.
func Registered(err *alerr.Error) []string {
	names, _ := err.GetContext()["registered"].([]string)
	return names
}
