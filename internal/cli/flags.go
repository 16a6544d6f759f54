package cli

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jmylchreest/splash/internal/config"
)

// optionsValue collects repeated --opt key=value flags into a call options
// bag. Values are read as JSON when they parse, so numbers and booleans keep
// their type; anything else is a string. Dotted keys build nested objects.
type optionsValue struct {
	opts config.Options
}

var _ pflag.Value = (*optionsValue)(nil)

func (v *optionsValue) String() string {
	if len(v.opts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(v.opts))
	for _, key := range slices.Sorted(maps.Keys(v.opts)) {
		parts = append(parts, fmt.Sprintf("%s=%v", key, v.opts[key]))
	}
	return strings.Join(parts, ",")
}

func (v *optionsValue) Set(s string) error {
	key, raw, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	if v.opts == nil {
		v.opts = config.Options{}
	}
	return setPath(v.opts, strings.Split(key, "."), parseValue(raw))
}

func (v *optionsValue) Type() string {
	return "key=value"
}

// Options returns the collected options, or nil when none were given.
func (v *optionsValue) Options() config.Options {
	return v.opts
}

func parseValue(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err == nil {
		return value
	}
	return raw
}

func setPath(m map[string]any, segments []string, value any) error {
	for i, key := range segments {
		if key == "" {
			return fmt.Errorf("empty segment in key %q", strings.Join(segments, "."))
		}
		if i == len(segments)-1 {
			m[key] = value
			return nil
		}
		next, ok := m[key].(map[string]any)
		if !ok {
			if _, exists := m[key]; exists {
				return fmt.Errorf("key %q is not an object", strings.Join(segments[:i+1], "."))
			}
			next = map[string]any{}
			m[key] = next
		}
		m = next
	}
	return nil
}

func addOptionsFlag(flags *pflag.FlagSet, v *optionsValue) {
	flags.VarP(v, "opt", "o", "call option as key=value (repeatable, dotted keys nest, values parse as JSON)")
}
