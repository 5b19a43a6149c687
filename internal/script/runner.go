package script

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/michaeldyrynda/scriptrun/internal/config"
	"github.com/michaeldyrynda/scriptrun/internal/script/rows"
	"github.com/michaeldyrynda/scriptrun/internal/script/types"
	"github.com/michaeldyrynda/scriptrun/internal/script/validation"
	"github.com/michaeldyrynda/scriptrun/internal/session"
)

// Runner turns a script into rows and runs them against a session.
type Runner struct {
	registry RowRegistry
	spinner  func(title string, fn func() error) error
}

// RowRegistry defines the interface for row creation.
type RowRegistry interface {
	Create(cfg config.RowConfig) (types.Row, error)
	ListRegistered() []string
}

// NewRunner creates a runner using the global row registry.
func NewRunner() *Runner {
	return NewRunnerWithRegistry(nil)
}

// NewRunnerWithRegistry creates a runner with the given registry. A nil
// registry falls back to the global one.
func NewRunnerWithRegistry(registry RowRegistry) *Runner {
	if registry == nil {
		registry = &globalRowRegistryAdapter{}
	}
	return &Runner{registry: registry}
}

// WithSpinner wraps slow pre-run work (pre-flight checks) in fn.
func (m *Runner) WithSpinner(fn func(title string, work func() error) error) *Runner {
	m.spinner = fn
	return m
}

type globalRowRegistryAdapter struct{}

func (a *globalRowRegistryAdapter) Create(cfg config.RowConfig) (types.Row, error) {
	return rows.Create(cfg)
}

func (a *globalRowRegistryAdapter) ListRegistered() []string {
	return rows.ListRegistered()
}

// Check validates a script without running it.
func (m *Runner) Check(script *config.ScriptConfig) error {
	return validation.ValidateScript(script)
}

// BuildRows validates the script and creates a row for each entry.
func (m *Runner) BuildRows(script *config.ScriptConfig) ([]types.Row, error) {
	if err := m.Check(script); err != nil {
		return nil, err
	}

	rowList := make([]types.Row, 0, len(script.Rows))
	for i, cfg := range script.Rows {
		row, err := m.registry.Create(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating row %d: %w", i+1, err)
		}
		rowList = append(rowList, row)
	}
	return rowList, nil
}

// Report summarises one script run.
type Report struct {
	Results []ExecutionResult
	Passed  int
	Failed  int
	Errors  int
	Skipped int
	Err     error
}

// Success reports whether every row that ran passed.
func (r *Report) Success() bool {
	return r.Err == nil && r.Failed == 0 && r.Errors == 0
}

func newReport(results []ExecutionResult, err error) *Report {
	report := &Report{Results: results, Err: err}
	for _, result := range results {
		switch result.Status {
		case StatusPassed:
			report.Passed++
		case StatusFailed:
			report.Failed++
		case StatusError:
			report.Errors++
		case StatusSkipped:
			report.Skipped++
		}
	}
	return report
}

// Run executes script against sess. The script's directory, when set,
// is applied before the first row. Configuration problems are returned
// as an error; row outcomes are in the report.
func (m *Runner) Run(ctx context.Context, script *config.ScriptConfig, sess *session.Session, logger session.Observer, opts types.RunOptions) (*Report, error) {
	rowList, err := m.BuildRows(script)
	if err != nil {
		return nil, err
	}

	runCtx := types.NewRunContext(ctx, sess, logger, script.Vars)

	if script.Directory != "" {
		sess.SetDirectory(script.Directory)
	}

	if err := m.runPreFlight(runCtx, script.PreFlight); err != nil {
		return nil, err
	}
	if script.KeepGoing != nil {
		opts.KeepGoing = *script.KeepGoing
	}

	executor := NewRowExecutor(rowList, runCtx, opts)
	execErr := executor.Execute()

	if sess.IsOpen() {
		runCtx.Logger.Warn("script ended with an open file", "path", sess.OpenPath())
	}

	return newReport(executor.Results(), execErr), nil
}

func (m *Runner) runPreFlight(ctx *types.RunContext, conditions map[string]interface{}) error {
	if len(conditions) == 0 {
		return nil
	}
	if m.spinner == nil {
		return m.runPreFlightChecks(ctx, conditions)
	}

	var checkErr error
	err := m.spinner("Running pre-flight checks", func() error {
		checkErr = m.runPreFlightChecks(ctx, conditions)
		return checkErr
	})
	if err != nil {
		return err
	}
	return checkErr
}

// runPreFlightChecks validates dependencies before any row runs.
func (m *Runner) runPreFlightChecks(ctx *types.RunContext, conditions map[string]interface{}) error {
	result, err := ctx.EvaluateCondition(conditions)
	if err != nil {
		return fmt.Errorf("pre-flight check error: %w", err)
	}
	if !result {
		return m.generatePreFlightError(ctx, conditions)
	}
	return nil
}

// generatePreFlightError creates a detailed error message showing which checks failed.
func (m *Runner) generatePreFlightError(ctx *types.RunContext, conditions map[string]interface{}) error {
	var errorParts []string

	var collected preFlightValues
	collectPreFlightValuesFromCondition(conditions, &collected)

	if missing := uniqueStringsPreserveOrder(checkMissingEnvVars(collected.envs)); len(missing) > 0 {
		errorParts = append(errorParts,
			fmt.Sprintf("Missing environment variables:\n  - %s", strings.Join(missing, "\n  - ")))
	}

	if missing := uniqueStringsPreserveOrder(checkMissingCommands(collected.commands)); len(missing) > 0 {
		errorParts = append(errorParts,
			fmt.Sprintf("Missing commands:\n  - %s", strings.Join(missing, "\n  - ")))
	}

	if missing := uniqueStringsPreserveOrder(checkMissingFiles(ctx, collected.files)); len(missing) > 0 {
		errorParts = append(errorParts,
			fmt.Sprintf("Missing files:\n  - %s", strings.Join(missing, "\n  - ")))
	}

	if len(errorParts) > 0 {
		return fmt.Errorf("pre-flight checks failed:\n\n%s\n\nPlease resolve these issues and try again",
			strings.Join(errorParts, "\n\n"))
	}

	return fmt.Errorf("pre-flight checks failed")
}

type preFlightValues struct {
	envs     []string
	commands []string
	files    []string
}

func collectPreFlightValuesFromCondition(condition interface{}, values *preFlightValues) {
	switch v := condition.(type) {
	case map[string]interface{}:
		if notValue, ok := v[config.ConditionNot]; ok {
			collectPreFlightValuesFromCondition(notValue, values)
			return
		}

		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			value := v[key]
			switch key {
			case config.ConditionEnvExists:
				values.envs = append(values.envs, types.ConditionValues(value, "env")...)
			case config.ConditionCommandExists:
				values.commands = append(values.commands, types.ConditionValues(value, "command")...)
			case config.ConditionFileExists:
				values.files = append(values.files, types.ConditionValues(value, "file")...)
			}
		}
	case []interface{}:
		for _, item := range v {
			collectPreFlightValuesFromCondition(item, values)
		}
	}
}

func uniqueStringsPreserveOrder(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		unique = append(unique, value)
	}

	return unique
}

func checkMissingEnvVars(names []string) []string {
	var missing []string
	for _, name := range names {
		if _, exists := os.LookupEnv(name); !exists {
			missing = append(missing, name)
		}
	}
	return missing
}

func checkMissingCommands(names []string) []string {
	var missing []string
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// checkMissingFiles resolves each file through the session prefix.
func checkMissingFiles(ctx *types.RunContext, names []string) []string {
	var missing []string
	for _, name := range names {
		if !ctx.Session.FS().Exists(ctx.Session.Resolve(name)) {
			missing = append(missing, name)
		}
	}
	return missing
}
