package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/sqlfixture/internal/alerr"
	"github.com/hlop3z/sqlfixture/internal/cli"
	"github.com/hlop3z/sqlfixture/pkg/sqlfixture"
)

// pingResult is the --json shape of one ping outcome.
type pingResult struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Connect and ping every configured database",
		Long:  `Connect every configured database and ping it. Exits with status 1 if any database is unreachable.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			fx := sqlfixture.New(
				sqlfixture.WithLogger(newLogger(cfg)),
				sqlfixture.WithTimeout(cfg.TimeoutDuration()),
			)
			defer fx.Close()

			failures := make(map[string]error)
			for _, db := range cfg.Databases {
				if err := fx.Connect(ctx, db.Name, db.Params()); err != nil {
					failures[db.Name] = err
				}
			}
			for _, err := range unwrapJoined(fx.Ping(ctx)) {
				if connErr, ok := err.(*sqlfixture.ConnectionError); ok {
					failures[connErr.Name] = connErr
				}
			}

			results := make([]pingResult, 0, len(cfg.Databases))
			for _, db := range cfg.Databases {
				r := pingResult{Name: db.Name, OK: true}
				if err := failures[db.Name]; err != nil {
					r.OK = false
					r.Error = alerr.RootCause(err).Error()
				}
				results = append(results, r)
			}

			out := cmd.OutOrStdout()
			if isJSON() {
				if err := writeJSON(out, map[string]any{"databases": results}); err != nil {
					return err
				}
			} else {
				list := cli.NewList()
				for _, r := range results {
					if r.OK {
						list.AddSuccess(r.Name)
					} else {
						list.AddError(r.Name, r.Error)
					}
				}
				fmt.Fprint(out, list.String())
			}

			if len(failures) > 0 {
				return alerr.Newf(alerr.ErrSQLConnection, "%d of %d databases unreachable",
					len(failures), len(cfg.Databases))
			}
			if !isJSON() && len(results) > 0 {
				fmt.Fprint(out, cli.FormatSuccess(cli.FormatCount(len(results), "database", "databases")+" reachable"))
			}
			return nil
		},
	}
}

// unwrapJoined splits an errors.Join result back into its parts.
func unwrapJoined(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
