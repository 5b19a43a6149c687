package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/michaeldyrynda/scriptrun/internal/config"
	"github.com/michaeldyrynda/scriptrun/internal/script/rows"
)

// RequiredField validates that a specific field is not empty.
type RequiredField struct {
	Field     string
	GetValue  func(config.RowConfig) string
	FieldName string // Human-readable field name for error messages
}

// Validate checks that the required field has a non-empty value.
func (r RequiredField) Validate(cfg config.RowConfig) error {
	value := r.GetValue(cfg)
	if strings.TrimSpace(value) == "" {
		fieldName := r.FieldName
		if fieldName == "" {
			fieldName = r.Field
		}
		return fmt.Errorf("required field %q is missing", fieldName)
	}
	return nil
}

// KnownCommand validates that the row names a registered command.
type KnownCommand struct{}

func (KnownCommand) Validate(cfg config.RowConfig) error {
	if _, ok := rows.Lookup(cfg.Command); !ok {
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
	return nil
}

// ArgCount validates the exact number of arguments.
type ArgCount struct {
	Want int
}

func (a ArgCount) Validate(cfg config.RowConfig) error {
	if len(cfg.Args) != a.Want {
		return fmt.Errorf("expected %d argument(s), got %d", a.Want, len(cfg.Args))
	}
	return nil
}

// IntegerArg validates that the argument at Index parses as an integer.
// A missing argument is left to ArgCount, and a templated one is checked
// by the row once it has been rendered.
type IntegerArg struct {
	Index int
	Name  string
}

func (i IntegerArg) Validate(cfg config.RowConfig) error {
	if i.Index >= len(cfg.Args) || IsTemplated(cfg.Args[i.Index]) {
		return nil
	}
	value := strings.TrimSpace(cfg.Args[i.Index])
	if _, err := strconv.ParseInt(value, 10, 64); err != nil {
		return fmt.Errorf("argument %q must be an integer, got %q", i.Name, cfg.Args[i.Index])
	}
	return nil
}

// IsTemplated reports whether value holds a template action.
func IsTemplated(value string) bool {
	return strings.Contains(value, "{{")
}

// CustomRule allows defining a validation rule using a function.
type CustomRule struct {
	Name       string
	ValidateFn func(config.RowConfig) error
}

// Validate executes the custom validation function.
func (c CustomRule) Validate(cfg config.RowConfig) error {
	return c.ValidateFn(cfg)
}

// NewRowValidator creates the validator for the row at index, which must
// name def.
func NewRowValidator(index int, def rows.Definition) *RowValidator {
	v := &RowValidator{Index: index, Name: def.Name}
	v.AddRule(ArgCount{Want: def.Arity()})
	for i, name := range def.Args {
		if def.IsIntArg(i) {
			v.AddRule(IntegerArg{Index: i, Name: name})
		}
	}
	if !def.Result {
		v.AddRule(CustomRule{
			Name: "expect-needs-result",
			ValidateFn: func(cfg config.RowConfig) error {
				if cfg.Expect != nil {
					return fmt.Errorf("%q produces no result to expect", def.Name)
				}
				return nil
			},
		})
	}
	v.AddRule(CustomRule{
		Name: "expect-or-fails",
		ValidateFn: func(cfg config.RowConfig) error {
			if cfg.Expect != nil && cfg.Fails {
				return fmt.Errorf("a row cannot both expect a result and fail")
			}
			return nil
		},
	})
	return v
}

// ValidateRow checks one row against its definition.
func ValidateRow(cfg config.RowConfig) error {
	return validateRow(0, cfg)
}

// ValidateScript checks every row and reports all failures, each headed
// by its row number.
func ValidateScript(script *config.ScriptConfig) error {
	var errs []error
	for i, row := range script.Rows {
		if err := validateRow(i+1, row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func validateRow(index int, cfg config.RowConfig) error {
	known := &RowValidator{Index: index, Name: cfg.Command}
	known.AddRule(RequiredField{
		Field:     "command",
		GetValue:  func(c config.RowConfig) string { return c.Command },
		FieldName: "command",
	}).AddRule(KnownCommand{})
	if err := known.ValidateFirst(cfg); err != nil {
		return err
	}

	def, _ := rows.Lookup(cfg.Command)
	return NewRowValidator(index, def).Validate(cfg)
}
