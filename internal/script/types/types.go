package types

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/michaeldyrynda/scriptrun/internal/config"
	"github.com/michaeldyrynda/scriptrun/internal/session"
)

// RunContext is shared by every row of one script run.
type RunContext struct {
	Context context.Context
	Session *session.Session
	Logger  session.Observer
	Vars    map[string]string
}

// NewRunContext builds a RunContext around sess. A nil logger discards
// progress messages.
func NewRunContext(ctx context.Context, sess *session.Session, logger session.Observer, vars map[string]string) *RunContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = session.NopObserver{}
	}
	copied := make(map[string]string, len(vars))
	for k, v := range vars {
		copied[k] = v
	}
	return &RunContext{
		Context: ctx,
		Session: sess,
		Logger:  logger,
		Vars:    copied,
	}
}

type RunOptions struct {
	DryRun    bool
	Verbose   bool
	KeepGoing bool
}

// Row is one executable line of a script. Run returns the textual result
// for rows that produce one and "" for the rest.
type Row interface {
	Name() string
	Run(ctx *RunContext, opts RunOptions) (string, error)
	Condition(ctx *RunContext) bool
}

func (ctx *RunContext) EvaluateCondition(conditions map[string]interface{}) (bool, error) {
	if len(conditions) == 0 {
		return true, nil
	}

	if not, ok := conditions[config.ConditionNot]; ok {
		result, err := ctx.evaluateCondition(not)
		if err != nil {
			return false, err
		}
		return !result, nil
	}

	return ctx.evaluateCondition(conditions)
}

func (ctx *RunContext) evaluateCondition(cond interface{}) (bool, error) {
	switch c := cond.(type) {
	case map[string]interface{}:
		return ctx.evaluateMapCondition(c)
	case []interface{}:
		return ctx.evaluateArrayCondition(c)
	default:
		return true, nil
	}
}

func (ctx *RunContext) evaluateMapCondition(conditions map[string]interface{}) (bool, error) {
	for key, value := range conditions {
		result, err := ctx.evaluateSingle(key, value)
		if err != nil {
			return false, err
		}
		if !result {
			return false, nil
		}
	}
	return true, nil
}

func (ctx *RunContext) evaluateArrayCondition(conditions []interface{}) (bool, error) {
	for _, item := range conditions {
		result, err := ctx.evaluateCondition(item)
		if err != nil {
			return false, err
		}
		if !result {
			return false, nil
		}
	}
	return true, nil
}

func (ctx *RunContext) evaluateSingle(key string, value interface{}) (bool, error) {
	switch key {
	case config.ConditionFileExists:
		return allOf(ConditionValues(value, "file"), ctx.exists), nil
	case config.ConditionFileContains:
		return ctx.fileContains(value)
	case config.ConditionCommandExists:
		return allOf(ConditionValues(value, "command"), commandOnPath), nil
	case config.ConditionOS:
		return ctx.osMatches(value)
	case config.ConditionEnvExists:
		return allOf(ConditionValues(value, "env"), envSet), nil
	case config.ConditionEnvNotExists:
		return !allOf(ConditionValues(value, "env"), envSet), nil
	case config.ConditionContextVar:
		return ctx.contextVarEquals(value)
	case config.ConditionNot:
		result, err := ctx.evaluateCondition(value)
		if err != nil {
			return false, err
		}
		return !result, nil
	default:
		return true, nil
	}
}

// ConditionValues flattens a condition value into its names. A value may
// be a single string, a list of strings, or a map holding the name under
// mapKey. Anything else yields no names.
func ConditionValues(value interface{}, mapKey string) []string {
	var values []string

	switch v := value.(type) {
	case string:
		values = append(values, v)
	case []string:
		values = append(values, v...)
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
	case map[string]interface{}:
		if s, ok := v[mapKey].(string); ok {
			values = append(values, s)
		}
	}

	return values
}

// allOf is false for an empty list.
func allOf(names []string, check func(string) bool) bool {
	if len(names) == 0 {
		return false
	}
	for _, name := range names {
		if !check(name) {
			return false
		}
	}
	return true
}

func commandOnPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func envSet(name string) bool {
	_, exists := os.LookupEnv(name)
	return exists
}

// exists resolves name through the session prefix, so conditions see the
// same files the rows do.
func (ctx *RunContext) exists(name string) bool {
	if ctx.Session == nil {
		_, err := os.Stat(name)
		return err == nil
	}
	return ctx.Session.FS().Exists(ctx.Session.Resolve(name))
}

func (ctx *RunContext) fileContains(value interface{}) (bool, error) {
	var cfg struct {
		File    string `mapstructure:"file"`
		Pattern string `mapstructure:"pattern"`
	}

	v, ok := value.(map[string]interface{})
	if !ok {
		return false, nil
	}
	if err := mapstructure.Decode(v, &cfg); err != nil {
		return false, nil
	}
	if cfg.File == "" || cfg.Pattern == "" || ctx.Session == nil {
		return false, nil
	}

	data, err := ctx.Session.FS().ReadFile(ctx.Session.Resolve(cfg.File))
	if err != nil {
		return false, nil
	}

	return strings.Contains(string(data), cfg.Pattern), nil
}

func (ctx *RunContext) osMatches(value interface{}) (bool, error) {
	for _, name := range ConditionValues(value, "os") {
		if strings.EqualFold(name, runtime.GOOS) {
			return true, nil
		}
	}
	return false, nil
}

func (ctx *RunContext) contextVarEquals(value interface{}) (bool, error) {
	var cfg struct {
		Key   string `mapstructure:"key"`
		Value string `mapstructure:"value"`
	}
	v, ok := value.(map[string]interface{})
	if !ok {
		return false, nil
	}
	if err := mapstructure.Decode(v, &cfg); err != nil {
		return false, nil
	}
	if cfg.Key == "" {
		return false, nil
	}
	return ctx.GetVar(cfg.Key) == cfg.Value, nil
}

func (ctx *RunContext) GetVar(key string) string {
	return ctx.Vars[key]
}

// HasVars reports whether any template variables are defined.
func (ctx *RunContext) HasVars() bool {
	return len(ctx.Vars) > 0
}

// SnapshotForTemplate returns the user vars plus the built-in Directory.
func (ctx *RunContext) SnapshotForTemplate() map[string]string {
	snapshot := make(map[string]string, len(ctx.Vars)+1)
	if ctx.Session != nil {
		snapshot["Directory"] = ctx.Session.Directory()
	}
	for k, v := range ctx.Vars {
		snapshot[k] = v
	}
	return snapshot
}
