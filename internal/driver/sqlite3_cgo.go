//go:build cgo

package driver

import (
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	Register(sqliteDriver{name: "sqlite3", sqlDriver: "sqlite3"}, "mattn")
}
