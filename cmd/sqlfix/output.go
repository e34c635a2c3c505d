package main

import (
	"encoding/json"
	"io"

	"github.com/hlop3z/sqlfixture/internal/cli"
)

// nullText is printed for statements that produce no value.
const nullText = "(null)"

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// isJSON reports whether --json output was requested.
func isJSON() bool {
	return cli.Default().IsJSON()
}
