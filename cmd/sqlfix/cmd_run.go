package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/hlop3z/sqlfixture/internal/alerr"
	"github.com/hlop3z/sqlfixture/internal/cli"
	"github.com/hlop3z/sqlfixture/internal/script"
)

// rerunDelay collapses the burst of events editors emit on save.
const rerunDelay = 100 * time.Millisecond

// stepJSON is the --json shape of one step outcome.
type stepJSON struct {
	Step     string  `json:"step"`
	Passed   bool    `json:"passed"`
	Value    *string `json:"value"`
	Message  string  `json:"message,omitempty"`
	Duration string  `json:"duration"`
}

func runCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Run a step script",
		Long: `Run a YAML step script. The script may declare its own databases; these are
connected next to the ones from the config file.

Each step executes one statement and may check its value:

  steps:
    - db: testdb1
      sql: SELECT PASSWORD FROM USER WHERE NAME = 'user1'
      expect: password1

With --watch the script is re-run every time the file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path := args[0]

			if !watch {
				return runScript(cmd.Context(), cmd.OutOrStdout(), cfg, path)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchScript(ctx, cmd.OutOrStdout(), cfg, path)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run the script when the file changes")

	return cmd
}

// runScript runs path once on a fresh fixture and prints the report.
func runScript(ctx context.Context, out io.Writer, cfg *Config, path string) error {
	s, err := script.Load(path)
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	fx, err := newFixture(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer fx.Close()

	report, runErr := script.NewRunner(fx, logger).Run(ctx, s)
	if report != nil {
		if err := printReport(out, report); err != nil {
			return err
		}
	}
	return runErr
}

func printReport(out io.Writer, report *script.Report) error {
	if isJSON() {
		steps := make([]stepJSON, 0, len(report.Results))
		for _, r := range report.Results {
			s := stepJSON{
				Step:     r.Label(),
				Passed:   r.Passed,
				Message:  r.Message,
				Duration: r.Duration.String(),
			}
			if r.Present {
				v := r.Value
				s.Value = &v
			}
			steps = append(steps, s)
		}
		return writeJSON(out, map[string]any{
			"script": report.Script,
			"passed": report.Passed,
			"failed": report.Failed,
			"steps":  steps,
		})
	}

	list := cli.NewList()
	for _, r := range report.Results {
		if r.Passed {
			list.AddSuccess(r.Label())
		} else {
			list.AddError(r.Label(), r.Message)
		}
	}
	fmt.Fprint(out, list.String())

	summary := cli.FormatCount(report.Passed, "step", "steps") + " passed"
	if report.Failed > 0 {
		summary += ", " + cli.FormatCount(report.Failed, "step", "steps") + " failed"
		_, err := fmt.Fprintln(out, cli.Fail(summary))
		return err
	}
	fmt.Fprint(out, cli.FormatSuccess(summary))
	return nil
}

// watchScript runs path, then re-runs it on every change until ctx is done.
// Run failures are printed rather than returned so watching continues.
func watchScript(ctx context.Context, out io.Writer, cfg *Config, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return alerr.Wrap(alerr.ErrScriptRead, err, "failed to start file watcher")
	}
	defer watcher.Close()

	// Editors often replace the file on save, so watch the directory.
	abs, err := filepath.Abs(path)
	if err != nil {
		return alerr.Wrap(alerr.ErrScriptRead, err, "failed to resolve script path").WithFile(path, 0)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return alerr.Wrap(alerr.ErrScriptRead, err, "failed to watch script directory").WithFile(path, 0)
	}

	rerun := func() {
		if err := runScript(ctx, out, cfg, path); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprint(out, cli.FormatError(err))
		}
		fmt.Fprint(out, cli.FormatNote("watching "+path+" (ctrl-c to stop)"))
	}
	rerun()

	timer := time.NewTimer(rerunDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) != 0 {
				timer.Reset(rerunDelay)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprint(out, cli.FormatWarning("file watcher: "+err.Error()))
		case <-timer.C:
			rerun()
		}
	}
}
