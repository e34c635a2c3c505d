//go:build !cgo

package driver

// Without cgo the mattn driver cannot run; sqlite3 falls back to the pure Go driver.
func init() {
	RegisterAlias("sqlite3", "sqlite")
}
