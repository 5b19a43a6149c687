// Package validation checks script rows before anything runs. Each row is
// checked against its definition and every problem in a script is
// reported at once, headed by the row it belongs to.
package validation

import (
	"errors"
	"fmt"

	"github.com/michaeldyrynda/scriptrun/internal/config"
)

// Rule checks one aspect of a row.
type Rule interface {
	Validate(cfg config.RowConfig) error
}

// RowValidator holds the rules for one row of a script. Index is the
// row's 1-based position, or 0 for a row checked on its own.
type RowValidator struct {
	Index int
	Name  string
	Rules []Rule
}

// AddRule appends rule and returns v for chaining.
func (v *RowValidator) AddRule(rule Rule) *RowValidator {
	v.Rules = append(v.Rules, rule)
	return v
}

// Validate runs every rule and reports all failures under one heading.
func (v *RowValidator) Validate(cfg config.RowConfig) error {
	var errs []error
	for _, rule := range v.Rules {
		if err := rule.Validate(cfg); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return v.heading(errors.Join(errs...))
}

// ValidateFirst stops at the first failing rule.
func (v *RowValidator) ValidateFirst(cfg config.RowConfig) error {
	for _, rule := range v.Rules {
		if err := rule.Validate(cfg); err != nil {
			return v.heading(err)
		}
	}
	return nil
}

func (v *RowValidator) heading(err error) error {
	name := v.Name
	if name == "" {
		name = "no command"
	}
	if v.Index > 0 {
		return fmt.Errorf("row %d (%s): %w", v.Index, name, err)
	}
	return fmt.Errorf("%s: %w", name, err)
}
