package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// InitAnswers holds what `scriptrun init` asks for.
type InitAnswers struct {
	Name      string
	Directory string
	Template  string
}

// TemplateChoice is one starter script offered by PromptInit.
type TemplateChoice struct {
	Key         string
	Description string
}

// PromptInit asks for the script name, its working directory and a
// starter template. Fields are prefilled from defaults.
func PromptInit(defaults InitAnswers, templates []TemplateChoice) (InitAnswers, error) {
	answers := defaults

	options := make([]huh.Option[string], len(templates))
	for i, tmpl := range templates {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%s)", tmpl.Key, tmpl.Description), tmpl.Key)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Script name").
				Placeholder(defaults.Name).
				Value(&answers.Name).
				Validate(validateScriptName),
			huh.NewInput().
				Title("Working directory").
				Description("Applied as \"set directory for test\" before the first row").
				Value(&answers.Directory),
			huh.NewSelect[string]().
				Title("Starter rows").
				Options(options...).
				Value(&answers.Template),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return InitAnswers{}, err
	}

	return answers, nil
}

func validateScriptName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("script name cannot be empty")
	}
	if len(s) < 2 {
		return fmt.Errorf("script name must be at least 2 characters")
	}
	return nil
}

func Confirm(title, description string) (bool, error) {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&confirmed),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}
