package sqlfixture

import (
	"errors"
	"fmt"

	"github.com/hlop3z/sqlfixture/internal/alerr"
	"github.com/hlop3z/sqlfixture/internal/registry"
)

// Sentinel errors for common error conditions.
// Use errors.Is() to check for these errors.
var (
	// ErrConnectionFailed is returned when a database cannot be connected.
	ErrConnectionFailed = errors.New("sqlfixture: connection failed")

	// ErrUnknownDatabase is returned when no connection is registered under a name.
	ErrUnknownDatabase = errors.New("sqlfixture: unknown database")

	// ErrExecutionFailed is returned when the database rejects a statement.
	ErrExecutionFailed = errors.New("sqlfixture: execution failed")

	// ErrDuplicateDatabase is returned when connecting a name that is already registered.
	ErrDuplicateDatabase = errors.New("sqlfixture: database already registered")

	// ErrEmptyName is returned when connecting with a blank name.
	ErrEmptyName = errors.New("sqlfixture: database name required")
)

// ConnectionError provides detailed information about a failed connect.
type ConnectionError struct {
	// Name is the name the connection was going to be registered under.
	Name string

	// Driver is the driver identifier as given, or the detected one.
	Driver string

	// URL is the connection URL (with password redacted).
	URL string

	// Cause is the underlying error.
	Cause error
}

// Error returns a formatted error message.
func (e *ConnectionError) Error() string {
	if e.Driver != "" {
		return fmt.Sprintf("sqlfixture: failed to connect %s (%s): %v", e.Name, e.Driver, e.Cause)
	}
	return fmt.Sprintf("sqlfixture: failed to connect %s: %v", e.Name, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnectionFailed
}

// UnknownDatabaseError is returned when a name has no registered connection.
// Its message lists the registered names:
//
//	No database registered for name 'x'. Registered databases: [a, b]
type UnknownDatabaseError struct {
	// Name is the name that was looked up.
	Name string

	// Registered holds the registered names in registration order.
	Registered []string
}

// Error returns the lookup failure message.
func (e *UnknownDatabaseError) Error() string {
	return registry.UnknownMessage(e.Name, e.Registered)
}

// Is reports whether this error matches the target error.
func (e *UnknownDatabaseError) Is(target error) bool {
	return target == ErrUnknownDatabase
}

// ExecutionError provides detailed information about a failed statement.
type ExecutionError struct {
	// Database is the name of the connection the statement ran on.
	Database string

	// SQL is the statement that failed.
	SQL string

	// Cause is the error reported by the database driver.
	Cause error
}

// Error returns a formatted error message.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("sqlfixture: statement failed on %s: %v", e.Database, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecutionFailed
}

// unknownDatabase converts a registry lookup failure.
func unknownDatabase(err error) error {
	var ae *alerr.Error
	if errors.As(err, &ae) && ae.GetCode() == alerr.ErrDatabaseUnknown {
		name, _ := ae.GetContext()["database"].(string)
		return &UnknownDatabaseError{Name: name, Registered: registry.Registered(ae)}
	}
	return err
}
