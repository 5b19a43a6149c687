package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/michaeldyrynda/scriptrun/internal/config"
)

func TestRowValidator(t *testing.T) {
	t.Run("validates with no rules", func(t *testing.T) {
		v := &RowValidator{Index: 1, Name: "wait for"}
		if err := v.Validate(config.RowConfig{}); err != nil {
			t.Errorf("expected no error with no rules, got: %v", err)
		}
	})

	t.Run("validates single passing rule", func(t *testing.T) {
		v := (&RowValidator{Name: "open file"}).AddRule(ArgCount{Want: 1})

		if err := v.Validate(config.RowConfig{Args: []string{"a"}}); err != nil {
			t.Errorf("expected no error, got: %v", err)
		}
	})

	t.Run("collects multiple errors under one heading", func(t *testing.T) {
		v := (&RowValidator{Index: 3, Name: "wait for"}).
			AddRule(ArgCount{Want: 2}).
			AddRule(IntegerArg{Index: 0, Name: "seconds"})

		err := v.Validate(config.RowConfig{Args: []string{"x"}})
		if err == nil {
			t.Fatal("expected error")
		}
		msg := err.Error()
		if !strings.HasPrefix(msg, "row 3 (wait for): ") {
			t.Errorf("expected the row heading, got: %v", msg)
		}
		if strings.Count(msg, "wait for") != 1 {
			t.Errorf("expected the row to be named once, got: %v", msg)
		}
		if !strings.Contains(msg, "expected 2 argument(s)") || !strings.Contains(msg, "must be an integer") {
			t.Errorf("expected both errors, got: %v", msg)
		}
	})

	t.Run("standalone rows are headed by name", func(t *testing.T) {
		v := (&RowValidator{Name: "wait for"}).AddRule(ArgCount{Want: 1})

		err := v.Validate(config.RowConfig{})
		if err == nil || !strings.HasPrefix(err.Error(), "wait for: ") {
			t.Errorf("expected name heading, got: %v", err)
		}
	})

	t.Run("ValidateFirst stops at first error", func(t *testing.T) {
		v := (&RowValidator{Name: "wait for"}).
			AddRule(ArgCount{Want: 2}).
			AddRule(IntegerArg{Index: 0, Name: "seconds"})

		err := v.ValidateFirst(config.RowConfig{Args: []string{"x"}})
		if err == nil {
			t.Fatal("expected error")
		}
		if strings.Contains(err.Error(), "must be an integer") {
			t.Errorf("expected only the first error, got: %v", err)
		}
	})
}

func TestRequiredField(t *testing.T) {
	rule := RequiredField{
		Field:     "command",
		GetValue:  func(c config.RowConfig) string { return c.Command },
		FieldName: "command",
	}

	if err := rule.Validate(config.RowConfig{Command: "open file"}); err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	err := rule.Validate(config.RowConfig{Command: "  "})
	if err == nil || !strings.Contains(err.Error(), `"command"`) {
		t.Errorf("expected missing command error, got: %v", err)
	}
}

func TestIntegerArg(t *testing.T) {
	rule := IntegerArg{Index: 1, Name: "epoch seconds"}

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"integer", []string{"f", "1700000000"}, false},
		{"negative", []string{"f", "-5"}, false},
		{"padded", []string{"f", " 12 "}, false},
		{"missing is left to ArgCount", []string{"f"}, false},
		{"decimal", []string{"f", "1.5"}, true},
		{"text", []string{"f", "soon"}, true},
		{"templated is checked after rendering", []string{"f", "{{ .stamp }}"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rule.Validate(config.RowConfig{Args: tt.args})
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCustomRule(t *testing.T) {
	expected := errors.New("custom failure")
	rule := CustomRule{Name: "always", ValidateFn: func(config.RowConfig) error { return expected }}

	if err := rule.Validate(config.RowConfig{}); !errors.Is(err, expected) {
		t.Errorf("expected custom error, got: %v", err)
	}
}

func TestValidateRow(t *testing.T) {
	yes := true

	tests := []struct {
		name    string
		row     config.RowConfig
		wantErr string
	}{
		{
			name: "valid authoring row",
			row:  config.RowConfig{Command: "open file", Args: []string{"a.txt"}},
		},
		{
			name: "graceful name",
			row:  config.RowConfig{Command: "writeAndCloseFile"},
		},
		{
			name: "result row with expectation",
			row:  config.RowConfig{Command: "delete file", Args: []string{"a.txt"}, Expect: &yes},
		},
		{
			name:    "missing command",
			row:     config.RowConfig{},
			wantErr: "required field",
		},
		{
			name:    "unknown command",
			row:     config.RowConfig{Command: "launch rocket"},
			wantErr: "unknown command",
		},
		{
			name:    "wrong argument count",
			row:     config.RowConfig{Command: "create file with", Args: []string{"a.txt"}},
			wantErr: "expected 2 argument(s), got 1",
		},
		{
			name:    "non-integer wait",
			row:     config.RowConfig{Command: "wait for", Args: []string{"a while"}},
			wantErr: "must be an integer",
		},
		{
			name: "templated wait",
			row:  config.RowConfig{Command: "wait for", Args: []string{"{{.delay}}"}},
		},
		{
			name:    "expectation on a void row",
			row:     config.RowConfig{Command: "open file", Args: []string{"a"}, Expect: &yes},
			wantErr: "produces no result",
		},
		{
			name:    "expect and fails together",
			row:     config.RowConfig{Command: "delete file", Args: []string{"a"}, Expect: &yes, Fails: true},
			wantErr: "cannot both",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRow(tt.row)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateScript(t *testing.T) {
	script := &config.ScriptConfig{
		Rows: []config.RowConfig{
			{Command: "open file", Args: []string{"a.txt"}},
			{Command: "bogus"},
			{Command: "wait for"},
		},
	}

	err := ValidateScript(script)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if strings.Contains(msg, "row 1 ") {
		t.Errorf("row 1 is valid, got: %v", msg)
	}
	if !strings.Contains(msg, `row 2 (bogus): unknown command "bogus"`) {
		t.Errorf("expected row 2 to be reported, got: %v", msg)
	}
	if !strings.Contains(msg, "row 3 (wait for): expected 1 argument(s), got 0") {
		t.Errorf("expected row 3 to be reported, got: %v", msg)
	}

	if err := ValidateScript(&config.ScriptConfig{Rows: script.Rows[:1]}); err != nil {
		t.Errorf("expected valid script, got: %v", err)
	}
}
