// Package main provides sqlfix, a command line front end for named SQL
// fixtures: connect the databases listed in sqlfix.yaml and run statements,
// step scripts or an HTTP API against them.
//
// Usage:
//
//	sqlfix exec <database> <sql>   # Run one statement and print its value
//	sqlfix databases               # List configured databases
//	sqlfix ping                    # Connect and ping every database
//	sqlfix run <script.yaml>       # Run a step script (--watch to re-run on change)
//	sqlfix serve                   # Serve the HTTP API
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hlop3z/sqlfixture/internal/cli"
)

// version is set via ldflags during build: -ldflags="-X main.version=v1.0.0"
var version = "dev"

// Global flags
var (
	configFile string
	logLevel   string
	timeout    time.Duration
	jsonOutput bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sqlfix",
		Short:         "Run SQL against named database connections",
		Long:          `sqlfix connects named databases from sqlfix.yaml and executes SQL against them, returning one value per statement: a scalar, a row count, or nothing.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cli.SetDefault(cli.NewConfig(cli.DetectMode(cmd.OutOrStdout(), jsonOutput)))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (default: sqlfix.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-statement timeout (e.g. 30s); 0 disables it")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of text")

	rootCmd.AddCommand(
		execCmd(),
		databasesCmd(),
		pingCmd(),
		runCmd(),
		serveCmd(),
	)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprint(os.Stderr, cli.FormatError(err))
		os.Exit(1)
	}
}
