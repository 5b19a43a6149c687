package cli

import (
	"fmt"
	"sort"

	"github.com/michaeldyrynda/scriptrun/internal/config"
	"github.com/michaeldyrynda/scriptrun/internal/ui"
)

// starterTemplates are the rows `scriptrun init` can write.
var starterTemplates = map[string]struct {
	description string
	rows        func() []config.RowConfig
}{
	"authoring": {
		description: "write, check and delete a file",
		rows: func() []config.RowConfig {
			yes := true
			return []config.RowConfig{
				{Command: "open file", Args: []string{"notes.txt"}},
				{Command: "add line to file", Args: []string{"first line"}},
				{Command: "add line to file", Args: []string{"second line"}},
				{Command: "write and close file"},
				{Command: "file mutated before", Args: []string{"notes.txt", "4102444800"}, Expect: &yes},
				{Command: "delete file", Args: []string{"notes.txt"}, Expect: &yes},
			}
		},
	},
	"commands": {
		description: "write an executable script and launch it",
		rows: func() []config.RowConfig {
			return []config.RowConfig{
				{Command: "create executable file with", Args: []string{"hello.sh", "#!/bin/sh\necho hello > hello.out\n"}},
				{Command: "run command", Args: []string{"hello.sh"}},
				{Command: "wait for", Args: []string{"1"}},
			}
		},
	},
	"empty": {
		description: "a single placeholder row",
		rows: func() []config.RowConfig {
			return []config.RowConfig{
				{Command: "create file with", Args: []string{"placeholder.txt", ""}},
			}
		},
	},
}

const defaultTemplate = "authoring"

func templateChoices() []ui.TemplateChoice {
	keys := make([]string, 0, len(starterTemplates))
	for key := range starterTemplates {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	choices := make([]ui.TemplateChoice, len(keys))
	for i, key := range keys {
		choices[i] = ui.TemplateChoice{Key: key, Description: starterTemplates[key].description}
	}
	return choices
}

func starterScript(template, directory string) (*config.ScriptConfig, error) {
	tmpl, ok := starterTemplates[template]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", template)
	}
	return &config.ScriptConfig{
		Directory: directory,
		Rows:      tmpl.rows(),
	}, nil
}
