package template

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/michaeldyrynda/scriptrun/internal/script/types"
)

func ReplaceTemplateVars(str string, ctx *types.RunContext) (string, error) {
	tmpl, err := template.New("").Option("missingkey=error").Parse(str)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}

	data := ctx.SnapshotForTemplate()
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}

// RenderArgs renders every argument of a row. Scripts without vars pass
// their arguments through untouched, braces included.
func RenderArgs(args []string, ctx *types.RunContext) ([]string, error) {
	if !ctx.HasVars() {
		return args, nil
	}

	rendered := make([]string, len(args))
	for i, arg := range args {
		out, err := ReplaceTemplateVars(arg, ctx)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		rendered[i] = out
	}
	return rendered, nil
}
