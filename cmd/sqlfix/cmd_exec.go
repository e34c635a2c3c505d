package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hlop3z/sqlfixture/internal/alerr"
)

// execResult is the --json shape of exec output.
type execResult struct {
	Database string  `json:"database"`
	Kind     string  `json:"kind"`
	Value    *string `json:"value"`
}

func execCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <database> <sql>",
		Short: "Execute one statement and print its value",
		Long: `Execute one statement against a configured database.

Queries print the first column of the first row, updates print the number of
affected rows, and anything else prints (null). Pass - as the SQL to read it
from stdin.`,
		Example: `  sqlfix exec testdb1 "SELECT PASSWORD FROM USER WHERE NAME = 'user1'"
  echo "UPDATE USER SET PASSWORD = 'x'" | sqlfix exec testdb1 -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, query := args[0], args[1]
			if query == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return alerr.Wrap(alerr.ErrSQLExecution, err, "failed to read SQL from stdin")
				}
				query = string(data)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			fx, err := newFixture(ctx, cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			defer fx.Close()

			res, err := fx.Execute(ctx, name, strings.TrimSpace(query))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			value, ok := res.Text()
			if isJSON() {
				r := execResult{Database: name, Kind: res.Kind.String()}
				if ok {
					r.Value = &value
				}
				return writeJSON(out, r)
			}

			if !ok {
				value = nullText
			}
			_, err = fmt.Fprintln(out, value)
			return err
		},
	}
}
