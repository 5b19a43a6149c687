package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// Exit codes
	ExitSuccess = iota
	ExitGeneralError
	ExitInvalidArguments
	ExitConfigurationError
	ExitScriptFailed
	ExitScriptLocked
)

// Defaults for the global configuration.
const (
	DefaultPreviewLength = 20
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	EnvPrefix            = "SCRIPTRUN"
	ConfigName           = "scriptrun"
)

// Condition key constants for use in row `when` blocks
const (
	ConditionOS            = "os"
	ConditionEnvExists     = "env_exists"
	ConditionEnvNotExists  = "env_not_exists"
	ConditionCommandExists = "command_exists"
	ConditionFileExists    = "file_exists"
	ConditionFileContains  = "file_contains"
	ConditionContextVar    = "context_var"
	ConditionNot           = "not"
)

// GlobalConfig represents the user-wide configuration
type GlobalConfig struct {
	PreviewLength int    `mapstructure:"preview_length"`
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	KeepGoing     bool   `mapstructure:"keep_going"`
	Lock          bool   `mapstructure:"lock"`
}

// ScriptConfig represents a script file: an optional starting directory,
// template variables, pre-flight checks and the ordered rows.
type ScriptConfig struct {
	Directory string                 `mapstructure:"directory" yaml:"directory,omitempty"`
	Vars      map[string]string      `mapstructure:"vars" yaml:"vars,omitempty"`
	KeepGoing *bool                  `mapstructure:"keep_going" yaml:"keep_going,omitempty"`
	PreFlight map[string]interface{} `mapstructure:"pre_flight" yaml:"pre_flight,omitempty"`
	Rows      []RowConfig            `mapstructure:"rows" yaml:"rows"`
}

// RowConfig represents one row of a script
type RowConfig struct {
	Command string                 `mapstructure:"command" yaml:"command"`
	Args    []string               `mapstructure:"args" yaml:"args,omitempty"`
	Expect  *bool                  `mapstructure:"expect" yaml:"expect,omitempty"`
	Fails   bool                   `mapstructure:"fails" yaml:"fails,omitempty"`
	Enabled *bool                  `mapstructure:"enabled" yaml:"enabled,omitempty"`
	When    map[string]interface{} `mapstructure:"when" yaml:"when,omitempty"`
	Label   string                 `mapstructure:"label" yaml:"label,omitempty"`
}

// IsEnabled reports whether the row should run at all.
func (r RowConfig) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// String renders the row the way it would read in a table.
func (r RowConfig) String() string {
	if r.Label != "" {
		return r.Label
	}
	if len(r.Args) == 0 {
		return r.Command
	}
	return r.Command + " | " + strings.Join(r.Args, " | ")
}

// LoadGlobal loads the global configuration. A missing file is not an
// error: defaults and SCRIPTRUN_* environment variables still apply.
func LoadGlobal() (*GlobalConfig, error) {
	configDir, err := GetGlobalConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadGlobalFrom(configDir)
}

// LoadGlobalFrom loads scriptrun.yaml from dir.
func LoadGlobalFrom(dir string) (*GlobalConfig, error) {
	v := newGlobalViper()
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	var config GlobalConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	return &config, nil
}

func newGlobalViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("preview_length", DefaultPreviewLength)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)
	v.SetDefault("keep_going", false)
	v.SetDefault("lock", true)
	return v
}

// CreateGlobalConfig writes cfg to the global config directory and
// returns the path written.
func CreateGlobalConfig(cfg *GlobalConfig) (string, error) {
	configDir, err := GetGlobalConfigDir()
	if err != nil {
		return "", err
	}
	return WriteGlobalConfig(configDir, cfg)
}

// WriteGlobalConfig writes cfg as scriptrun.yaml inside dir.
func WriteGlobalConfig(dir string, cfg *GlobalConfig) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.Set("preview_length", cfg.PreviewLength)
	v.Set("log_level", cfg.LogLevel)
	v.Set("log_format", cfg.LogFormat)
	v.Set("keep_going", cfg.KeepGoing)
	v.Set("lock", cfg.Lock)

	path := filepath.Join(dir, ConfigName+".yaml")
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("writing global config: %w", err)
	}
	return path, nil
}

// DefaultGlobalConfig returns the configuration used when no file exists.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		PreviewLength: DefaultPreviewLength,
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		Lock:          true,
	}
}

// GetGlobalConfigDir returns the global config directory
func GetGlobalConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, ConfigName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, ".config", ConfigName), nil
}

// LoadScript reads a script file. The format follows the file extension
// (yaml, yml, json, toml).
func LoadScript(path string) (*ScriptConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("script %s not found", path)
		}
		return nil, fmt.Errorf("reading script: %w", err)
	}

	return decodeScript(v)
}

// ParseScript reads a script from memory in the given format.
func ParseScript(data []byte, format string) (*ScriptConfig, error) {
	v := viper.New()
	v.SetConfigType(format)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}

	return decodeScript(v)
}

func decodeScript(v *viper.Viper) (*ScriptConfig, error) {
	var script ScriptConfig
	if err := v.Unmarshal(&script); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	if len(script.Rows) == 0 {
		return nil, fmt.Errorf("script has no rows")
	}
	return &script, nil
}

// SaveScript writes script as YAML to path, refusing to overwrite an
// existing file unless force is set.
func SaveScript(path string, script *ScriptConfig, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(script); err != nil {
		return fmt.Errorf("marshaling script: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("marshaling script: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing script: %w", err)
	}

	return nil
}
