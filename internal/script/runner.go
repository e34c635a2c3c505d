package script

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hlop3z/sqlfixture/internal/alerr"
	"github.com/hlop3z/sqlfixture/pkg/sqlfixture"
)

// Fixture is what the runner needs from *sqlfixture.Fixture.
type Fixture interface {
	Connect(ctx context.Context, name string, params sqlfixture.ConnectionParams) error
	Query(ctx context.Context, name, sql string) (string, bool, error)
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index    int
	Step     Step
	Value    string
	Present  bool
	Err      error
	Passed   bool
	Message  string // why the step failed
	Duration time.Duration
}

// Label names the step in reports.
func (r StepResult) Label() string {
	return r.Step.Label(r.Index)
}

// Report collects every step outcome of a run.
type Report struct {
	Script  string
	Results []StepResult
	Passed  int
	Failed  int
}

// OK reports whether every step passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Runner executes scripts against a fixture.
type Runner struct {
	fixture Fixture
	logger  *slog.Logger
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(fx Fixture, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{fixture: fx, logger: logger}
}

// Run connects the script's databases and executes every step in order.
// Steps pass or fail independently; a failing step does not stop the run.
//
// The returned error is non-nil when a database cannot be connected
// (no report) or when at least one step failed (report included).
func (r *Runner) Run(ctx context.Context, s *Script) (*Report, error) {
	for _, db := range s.Databases {
		err := r.fixture.Connect(ctx, db.Name, sqlfixture.ConnectionParams{
			URL:      db.URL,
			Driver:   db.Driver,
			Username: db.Username,
			Password: db.Password,
		})
		if err != nil {
			return nil, alerr.Wrap(alerr.ErrScriptFailed, err, "failed to connect script database").
				WithDatabase(db.Name).
				WithFile(s.Path, 0)
		}
	}

	report := &Report{Script: s.Path, Results: make([]StepResult, 0, len(s.Steps))}
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return report, alerr.Wrap(alerr.ErrScriptFailed, err, "script interrupted").
				WithFile(s.Path, 0)
		}

		result := r.runStep(ctx, i, step)
		report.Results = append(report.Results, result)
		if result.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
	}

	if report.Failed > 0 {
		return report, alerr.Newf(alerr.ErrScriptFailed, "%d of %d steps failed", report.Failed, len(s.Steps)).
			WithFile(s.Path, 0)
	}
	return report, nil
}

func (r *Runner) runStep(ctx context.Context, index int, step Step) StepResult {
	start := time.Now()
	value, present, err := r.fixture.Query(ctx, step.DB, step.SQL)

	result := StepResult{
		Index:    index,
		Step:     step,
		Value:    value,
		Present:  present,
		Err:      err,
		Duration: time.Since(start),
	}
	result.Passed, result.Message = check(step, value, present, err)

	r.logger.Debug("step finished",
		slog.String("step", result.Label()),
		slog.Bool("passed", result.Passed),
		slog.Duration("duration", result.Duration))
	return result
}

// check compares a step outcome against its expectation.
func check(step Step, value string, present bool, err error) (bool, string) {
	switch {
	case step.ExpectError != "":
		if err == nil {
			return false, fmt.Sprintf("expected error containing %q, got %s", step.ExpectError, describe(value, present))
		}
		if !strings.Contains(err.Error(), step.ExpectError) {
			return false, fmt.Sprintf("expected error containing %q, got %q", step.ExpectError, err.Error())
		}
		return true, ""

	case err != nil:
		return false, err.Error()

	case step.ExpectNull:
		if present {
			return false, fmt.Sprintf("expected null, got %q", value)
		}
		return true, ""

	case step.Expect != nil:
		if !present {
			return false, fmt.Sprintf("expected %q, got null", *step.Expect)
		}
		if value != *step.Expect {
			return false, fmt.Sprintf("expected %q, got %q", *step.Expect, value)
		}
		return true, ""
	}

	return true, ""
}

func describe(value string, present bool) string {
	if !present {
		return "null"
	}
	return fmt.Sprintf("%q", value)
}
