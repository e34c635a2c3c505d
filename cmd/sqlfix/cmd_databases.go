package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hlop3z/sqlfixture/internal/cli"
	"github.com/hlop3z/sqlfixture/internal/driver"
)

// databaseInfo is one row of `sqlfix databases`.
type databaseInfo struct {
	Name   string `json:"name"`
	Driver string `json:"driver"`
	URL    string `json:"url"`
}

func databasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "databases",
		Short: "List configured databases",
		Long:  `List the databases declared in the config file. Nothing is connected; passwords are redacted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			infos := make([]databaseInfo, 0, len(cfg.Databases))
			for _, db := range cfg.Databases {
				infos = append(infos, databaseInfo{
					Name:   db.Name,
					Driver: driverLabel(db),
					URL:    driver.RedactURL(db.URL),
				})
			}

			out := cmd.OutOrStdout()
			if isJSON() {
				return writeJSON(out, map[string]any{"databases": infos})
			}

			if len(infos) == 0 {
				where := cfg.Path
				if where == "" {
					where = "no config file found"
				}
				fmt.Fprint(out, cli.FormatNote("no databases configured ("+where+")"))
				return nil
			}

			table := cli.NewTable("NAME", "DRIVER", "URL")
			for _, info := range infos {
				table.AddRow(info.Name, info.Driver, info.URL)
			}
			fmt.Fprint(out, table.String())
			return nil
		},
	}
}

// driverLabel names the driver a database will use without connecting.
func driverLabel(db DatabaseConfig) string {
	d, err := driver.Resolve(db.Driver, db.URL)
	if err != nil {
		if db.Driver != "" {
			return db.Driver + " (unknown)"
		}
		return "?"
	}
	return d.Name()
}
