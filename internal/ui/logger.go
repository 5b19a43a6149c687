package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// LoggerOptions selects the level and format of progress logging.
type LoggerOptions struct {
	Level   string
	Format  string
	Verbose bool
	Quiet   bool
}

// NewLogger creates the progress logger. Verbose forces debug and Quiet
// forces error, in that order of precedence.
func NewLogger(w io.Writer, opts LoggerOptions) (*log.Logger, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	if opts.Quiet {
		level = log.ErrorLevel
	}
	if opts.Verbose {
		level = log.DebugLevel
	}

	formatter, err := parseFormatter(opts.Format)
	if err != nil {
		return nil, err
	}

	return log.NewWithOptions(w, log.Options{
		Level:     level,
		Formatter: formatter,
		Prefix:    "scriptrun",
	}), nil
}

func parseFormatter(format string) (log.Formatter, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return log.TextFormatter, fmt.Errorf("invalid log format %q (want text, json or logfmt)", format)
	}
}
