// Package logging builds the hclog loggers used across splash.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/term"

	"github.com/jmylchreest/splash/internal/config"
)

// Configuration keys read by FromConfig.
const (
	KeyLevel     = "logger.level"
	KeyUseSyslog = "logger.useSyslog"
	KeyJSON      = "logger.json"
)

// Options configures New.
type Options struct {
	Name      string
	Level     string
	JSON      bool
	UseSyslog bool

	// Output defaults to os.Stderr. It is ignored when UseSyslog is set.
	Output io.Writer
}

// LevelFromString maps a configured level name to an hclog level. "silent"
// and "off" disable logging.
func LevelFromString(name string) (hclog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return hclog.Trace, nil
	case "debug":
		return hclog.Debug, nil
	case "", "info":
		return hclog.Info, nil
	case "warn", "warning":
		return hclog.Warn, nil
	case "error":
		return hclog.Error, nil
	case "silent", "off":
		return hclog.Off, nil
	default:
		return hclog.NoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// FromConfig reads the logger section of the configuration.
func FromConfig(r *config.Resolver) Options {
	var opts Options
	if level, ok := r.String(KeyLevel, nil); ok {
		opts.Level = level
	}
	if useSyslog, ok := r.Bool(KeyUseSyslog, nil); ok {
		opts.UseSyslog = useSyslog
	}
	if asJSON, ok := r.Bool(KeyJSON, nil); ok {
		opts.JSON = asJSON
	}
	return opts
}

// New creates a logger. Colour is used only when writing to a terminal.
func New(opts Options) (hclog.Logger, error) {
	level, err := LevelFromString(opts.Level)
	if err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = "splash"
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}
	if opts.UseSyslog {
		w, err := newSyslogWriter(name)
		if err != nil {
			return nil, fmt.Errorf("failed to open syslog: %w", err)
		}
		output = w
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      level,
		Output:     output,
		JSONFormat: opts.JSON,
		Color:      colorOption(output, opts.JSON),
	}), nil
}

func colorOption(w io.Writer, asJSON bool) hclog.ColorOption {
	if asJSON {
		return hclog.ColorOff
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return hclog.ForceColor
	}
	return hclog.ColorOff
}
