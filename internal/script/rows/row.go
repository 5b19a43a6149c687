package rows

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/michaeldyrynda/scriptrun/internal/config"
	"github.com/michaeldyrynda/scriptrun/internal/script/template"
	"github.com/michaeldyrynda/scriptrun/internal/script/types"
)

// ScriptRow binds a row definition to one line of a script.
type ScriptRow struct {
	def Definition
	cfg config.RowConfig
}

func NewScriptRow(def Definition, cfg config.RowConfig) *ScriptRow {
	return &ScriptRow{def: def, cfg: cfg}
}

func (r *ScriptRow) Name() string {
	return r.def.Name
}

func (r *ScriptRow) IsEnabled() bool {
	return r.cfg.IsEnabled()
}

// Expectation returns the expected result, if any, and whether the row
// must raise a command error.
func (r *ScriptRow) Expectation() (*bool, bool) {
	return r.cfg.Expect, r.cfg.Fails
}

func (r *ScriptRow) String() string {
	if r.cfg.Label != "" {
		return r.cfg.Label
	}
	cfg := r.cfg
	cfg.Command = r.def.Name
	return cfg.String()
}

func (r *ScriptRow) Run(ctx *types.RunContext, opts types.RunOptions) (string, error) {
	args, err := template.RenderArgs(r.cfg.Args, ctx)
	if err != nil {
		return "", err
	}

	if len(args) != r.def.Arity() {
		return "", fmt.Errorf("row %q takes %d argument(s), got %d", r.def.Name, r.def.Arity(), len(args))
	}
	for i, arg := range args {
		if !r.def.IsIntArg(i) {
			continue
		}
		if _, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64); err != nil {
			return "", fmt.Errorf("argument %q must be an integer, got %q", r.def.Args[i], arg)
		}
	}

	if opts.Verbose {
		ctx.Logger.Debug("executing row", "row", r.def.Name, "args", args)
	}

	return r.def.Handler(ctx, args)
}

func (r *ScriptRow) Condition(ctx *types.RunContext) bool {
	result, err := ctx.EvaluateCondition(r.cfg.When)
	if err != nil {
		ctx.Logger.Warn("condition evaluation failed", "row", r.def.Name, "err", err)
		return false
	}
	return result
}
