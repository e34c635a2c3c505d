// Package alerr provides standardized error handling for sqlfixture.
// All errors have stable, machine-readable codes, structured context, and proper wrapping.
package alerr

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// Code represents a stable, machine-readable error code.
// Format: E{category}{number} where category is 1-9 and number is 001-999.
type Code string

// Error codes organized by category.
const (
	// Connection errors (E1xxx) - driver resolution and session setup
	ErrDriverUnknown   Code = "E1001" // Driver identifier is not registered
	ErrDriverInvalid   Code = "E1002" // Driver registration is malformed
	ErrInvalidURL      Code = "E1003" // Connection URL cannot be turned into a DSN
	ErrSQLConnection   Code = "E1004" // Database connection failed
	ErrConnectionClose Code = "E1005" // Closing a connection failed

	// Registry errors (E2xxx) - named connection bookkeeping
	ErrDatabaseUnknown   Code = "E2001" // No connection registered under the name
	ErrDatabaseDuplicate Code = "E2002" // Name is already registered
	ErrInvalidName       Code = "E2003" // Name is empty or malformed

	// Execution errors (E3xxx) - running SQL against a connection
	ErrSQLExecution Code = "E3001" // SQL statement failed to execute
	ErrSQLScan      Code = "E3002" // Result row could not be read
	ErrEmptySQL     Code = "E3003" // Statement text is empty

	// Configuration errors (E4xxx) - config files and flags
	ErrConfigRead    Code = "E4001" // Config file could not be read
	ErrConfigInvalid Code = "E4002" // Config file is malformed or invalid

	// Script errors (E5xxx) - step scripts
	ErrScriptRead    Code = "E5001" // Script file could not be read
	ErrScriptInvalid Code = "E5002" // Script file is malformed or invalid
	ErrScriptFailed  Code = "E5003" // One or more script steps failed

	// Internal errors (E9xxx) - unexpected internal errors
	EInternalError Code = "E9001" // Internal error
)

// Error is the standard error type for sqlfixture.
// It provides structured error information with codes, context, and wrapping support.
type Error struct {
	code    Code           // Machine-readable error code
	message string         // Human-readable error message
	context map[string]any // Structured context data
	cause   error          // Wrapped underlying error
	stack   string         // Stack trace for debugging
}

// Error returns the formatted error string.
// Format:
//
//	[E3001] failed to execute statement
//	  database: testdb1
//	  sql: SELECT * FROM missing
//	  cause: no such table: missing
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.code, e.message))

	// Context in sorted order for deterministic output
	if len(e.context) > 0 {
		keys := make([]string, 0, len(e.context))
		for k := range e.context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			b.WriteString(fmt.Sprintf("\n  %s: %v", k, e.context[k]))
		}
	}

	if e.cause != nil {
		b.WriteString(fmt.Sprintf("\n  cause: %v", e.cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause error for errors.Unwrap compatibility.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether the target error matches this error.
// It matches if target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.code == targetErr.code
	}

	return false
}

// GetCode returns the error code.
func (e *Error) GetCode() Code {
	return e.code
}

// GetMessage returns the error message.
func (e *Error) GetMessage() string {
	return e.message
}

// GetContext returns the error context map.
func (e *Error) GetContext() map[string]any {
	return e.context
}

// GetCause returns the underlying cause error.
func (e *Error) GetCause() error {
	return e.cause
}

// GetStack returns the stack trace.
func (e *Error) GetStack() string {
	return e.stack
}

// With adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *Error) With(key string, value any) *Error {
	if e.context == nil {
		e.context = make(map[string]any)
	}
	e.context[key] = value
	return e
}

// WithDatabase adds the registered database name to the error context.
func (e *Error) WithDatabase(name string) *Error {
	return e.With("database", name)
}

// WithDriver adds the driver identifier to the error context.
func (e *Error) WithDriver(name string) *Error {
	return e.With("driver", name)
}

// WithSQL adds SQL statement context to the error.
func (e *Error) WithSQL(sql string) *Error {
	return e.With("sql", sql)
}

// WithFile adds file location context to the error.
func (e *Error) WithFile(path string, line int) *Error {
	e.With("file", path)
	if line > 0 {
		e.With("line", line)
	}
	return e
}

// WithNote adds a note to the error (displayed as "note: ...").
func (e *Error) WithNote(note string) *Error {
	notes, _ := e.context["notes"].([]string)
	notes = append(notes, note)
	return e.With("notes", notes)
}

// WithHelp adds a help suggestion to the error (displayed as "help: ...").
func (e *Error) WithHelp(help string) *Error {
	helps, _ := e.context["helps"].([]string)
	helps = append(helps, help)
	return e.With("helps", helps)
}

// Notes returns all notes attached to the error.
func (e *Error) Notes() []string {
	notes, _ := e.context["notes"].([]string)
	return notes
}

// Helps returns all help suggestions attached to the error.
func (e *Error) Helps() []string {
	helps, _ := e.context["helps"].([]string)
	return helps
}

// captureStack captures a stack trace for debugging.
func captureStack(skip int) string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		// Skip runtime internals
		if strings.Contains(frame.File, "runtime/") {
			if !more {
				break
			}
			continue
		}
		b.WriteString(fmt.Sprintf("%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return b.String()
}

// New creates a new Error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{
		code:    code,
		message: msg,
		context: make(map[string]any),
		stack:   captureStack(3),
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{
		code:    code,
		message: fmt.Sprintf(format, args...),
		context: make(map[string]any),
		stack:   captureStack(3),
	}
}

// Wrap creates a new Error that wraps an existing error.
func Wrap(code Code, err error, msg string) *Error {
	if err == nil {
		return New(code, msg)
	}
	return &Error{
		code:    code,
		message: msg,
		context: make(map[string]any),
		cause:   err,
		stack:   captureStack(3),
	}
}

// Wrapf creates a new Error that wraps an existing error with a formatted message.
func Wrapf(code Code, err error, format string, args ...any) *Error {
	return Wrap(code, err, fmt.Sprintf(format, args...))
}

// GetErrorCode extracts the error code from an error chain.
// Returns empty string if no code is found.
func GetErrorCode(err error) Code {
	if err == nil {
		return ""
	}

	var alerr *Error
	if errors.As(err, &alerr) {
		return alerr.code
	}

	return ""
}

// Is checks if an error has the specified code.
func Is(err error, code Code) bool {
	return GetErrorCode(err) == code
}

// HasCode checks if an error has any error code.
func HasCode(err error) bool {
	return GetErrorCode(err) != ""
}

// RootCause follows the cause chain of coded errors and returns the first
// error that is not an *Error. Driver messages live there.
func RootCause(err error) error {
	for {
		ae, ok := err.(*Error)
		if !ok || ae.cause == nil {
			return err
		}
		err = ae.cause
	}
}

// WrapSQL creates an ErrSQLExecution error with database and statement context.
// Example: WrapSQL(err, "testdb1", "SELECT 1")
func WrapSQL(err error, database, sql string) *Error {
	e := Wrap(ErrSQLExecution, err, "failed to execute statement")
	if database != "" {
		e.WithDatabase(database)
	}
	if sql != "" {
		e.WithSQL(sql)
	}
	return e
}
