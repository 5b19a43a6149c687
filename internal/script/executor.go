package script

import (
	"fmt"
	"strconv"

	"github.com/michaeldyrynda/scriptrun/internal/script/types"
	"github.com/michaeldyrynda/scriptrun/internal/session"
)

type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

type ExecutionResult struct {
	Index  int
	Row    types.Row
	Status Status
	Actual string
	Err    error
}

// Ok reports whether the result does not count against the run.
func (r ExecutionResult) Ok() bool {
	return r.Status == StatusPassed || r.Status == StatusSkipped
}

// RowExecutor runs rows strictly in order against one session.
type RowExecutor struct {
	rows    []types.Row
	ctx     *types.RunContext
	opts    types.RunOptions
	results []ExecutionResult
}

func NewRowExecutor(rows []types.Row, ctx *types.RunContext, opts types.RunOptions) *RowExecutor {
	return &RowExecutor{
		rows: rows,
		ctx:  ctx,
		opts: opts,
	}
}

// Execute runs every row. It stops at the first failed row unless
// KeepGoing is set and returns an error describing the first failure.
func (e *RowExecutor) Execute() error {
	e.results = make([]ExecutionResult, 0, len(e.rows))

	var firstErr error
	for i, row := range e.rows {
		if err := e.ctx.Context.Err(); err != nil {
			return fmt.Errorf("script interrupted before row %d: %w", i+1, err)
		}

		result := e.executeRow(i+1, row)
		e.results = append(e.results, result)

		if result.Ok() {
			continue
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("row %d (%s) %s: %w", result.Index, row.Name(), result.Status, result.Err)
		}
		if !e.opts.KeepGoing {
			break
		}
	}

	return firstErr
}

func (e *RowExecutor) executeRow(index int, row types.Row) ExecutionResult {
	result := ExecutionResult{Index: index, Row: row}

	if r, ok := row.(interface{ IsEnabled() bool }); ok && !r.IsEnabled() {
		e.ctx.Logger.Debug("skipping row (disabled)", "row", index, "command", row.Name())
		result.Status = StatusSkipped
		return result
	}

	if !row.Condition(e.ctx) {
		e.ctx.Logger.Debug("skipping row (condition not met)", "row", index, "command", row.Name())
		result.Status = StatusSkipped
		return result
	}

	if e.opts.DryRun {
		e.ctx.Logger.Debug("[DRY-RUN] executing row", "row", index, "command", row.Name())
	}

	actual, err := row.Run(e.ctx, e.opts)
	result.Actual = actual
	result.Err = err

	var expect *bool
	var fails bool
	if r, ok := row.(interface{ Expectation() (*bool, bool) }); ok {
		expect, fails = r.Expectation()
	}

	switch {
	case fails && err == nil:
		result.Status = StatusFailed
		result.Err = fmt.Errorf("expected a command error")
	case fails && session.IsCommandError(err):
		result.Status = StatusPassed
	case err != nil:
		result.Status = StatusError
	case expect != nil && actual != strconv.FormatBool(*expect):
		result.Status = StatusFailed
		result.Err = fmt.Errorf("expected %t, got %q", *expect, actual)
	default:
		result.Status = StatusPassed
	}

	if result.Status != StatusPassed {
		e.ctx.Logger.Warn("row did not pass", "row", index, "command", row.Name(), "status", result.Status, "err", result.Err)
	}

	return result
}

func (e *RowExecutor) Results() []ExecutionResult {
	return e.results
}
