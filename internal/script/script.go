// Package script runs timed sequences of splash calls against a lifecycle
// and records what the host was asked to do.
package script

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/splash/internal/config"
	"github.com/jmylchreest/splash/pkg/plugin"
)

// Op is a scripted action.
type Op string

const (
	OpShow    Op = "show"
	OpHide    Op = "hide"
	OpAnimate Op = "animate"
	OpSuspend Op = "suspend"
	OpResume  Op = "resume"
)

// isCall reports whether op is a lifecycle call.
func (op Op) isCall() bool {
	return op == OpShow || op == OpHide || op == OpAnimate
}

// ExpectOK marks a step that must succeed.
const ExpectOK = "ok"

// Step is one timed action.
type Step struct {
	// At is the offset from the start of the script in milliseconds.
	At int64 `json:"at" toml:"at"`

	Call    Op             `json:"call" toml:"call"`
	Options config.Options `json:"options,omitempty" toml:"options,omitempty"`

	// Expect is ExpectOK or the error code the call must fail with. Empty
	// means the outcome is not checked.
	Expect string `json:"expect,omitempty" toml:"expect,omitempty"`
}

// Offset returns At as a duration.
func (s Step) Offset() time.Duration {
	return time.Duration(s.At) * time.Millisecond
}

// Hook is a call made when the app changes state.
type Hook struct {
	Call    Op             `json:"call" toml:"call"`
	Options config.Options `json:"options,omitempty" toml:"options,omitempty"`
}

// Script is a scripted splash session.
type Script struct {
	Name string `json:"name,omitempty" toml:"name,omitempty"`

	// Launch shows the launch splash before the first step.
	Launch bool `json:"launch" toml:"launch"`

	// Config is layered over the loaded configuration.
	Config config.Tree `json:"config,omitempty" toml:"config,omitempty"`

	OnResume  *Hook `json:"onResume,omitempty" toml:"onResume,omitempty"`
	OnSuspend *Hook `json:"onSuspend,omitempty" toml:"onSuspend,omitempty"`

	Steps []Step `json:"steps" toml:"steps"`
}

// Load reads a script from a .json or .toml file.
func Load(path string) (*Script, error) {
	format, err := config.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) // #nosec G304 - user-specified script path
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

// Parse decodes and validates a script.
func Parse(data []byte, format config.Format) (*Script, error) {
	var s Script
	switch format {
	case config.FormatJSON:
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse JSON script: %w", err)
		}
	case config.FormatTOML:
		if err := toml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse TOML script: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported script format: %s", format)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that steps are known and in time order.
func (s *Script) Validate() error {
	var last int64
	for i, step := range s.Steps {
		switch {
		case step.At < 0:
			return fmt.Errorf("step %d: negative offset %d", i, step.At)
		case step.At < last:
			return fmt.Errorf("step %d: offset %d is before the previous step (%d)", i, step.At, last)
		}
		last = step.At

		if step.Call.isCall() {
			if !validExpect(step.Expect) {
				return fmt.Errorf("step %d: unknown expectation %q", i, step.Expect)
			}
			continue
		}
		if step.Call != OpSuspend && step.Call != OpResume {
			return fmt.Errorf("step %d: unknown call %q", i, step.Call)
		}
		if step.Expect != "" {
			return fmt.Errorf("step %d: %s cannot carry an expectation", i, step.Call)
		}
	}

	for name, hook := range map[string]*Hook{"onResume": s.OnResume, "onSuspend": s.OnSuspend} {
		if hook != nil && !hook.Call.isCall() {
			return fmt.Errorf("%s: unknown call %q", name, hook.Call)
		}
	}
	return nil
}

func validExpect(expect string) bool {
	switch plugin.ErrorCode(expect) {
	case "", ExpectOK,
		plugin.CodeNotFound,
		plugin.CodeNoSplashScreen,
		plugin.CodeAlreadyActive,
		plugin.CodeAnimateMethodNotFound,
		plugin.CodeAnimateMethodFailed:
		return true
	}
	return false
}
