// Package config resolves splash screen settings from call options and the
// global configuration tree.
//
// Settings are addressed by dotted key paths ("spinner.color"). The final
// segment of a key path may also be written with a platform prefix, so
// "iosSpinnerStyle" and {"ios": {"spinnerStyle": ...}} address the same
// value. Resolution never mutates its inputs.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Platform names the host platform a configuration is resolved for.
type Platform string

const (
	// PlatformIOS selects "ios" scoped values.
	PlatformIOS Platform = "ios"

	// PlatformAndroid selects "android" scoped values.
	PlatformAndroid Platform = "android"

	// PlatformEnv is the environment variable consulted by PlatformFromEnv.
	PlatformEnv = "SPLASH_PLATFORM"
)

// ParsePlatform validates a platform name.
func ParsePlatform(name string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(name))); p {
	case PlatformIOS, PlatformAndroid:
		return p, nil
	default:
		return "", fmt.Errorf("unknown platform %q (expected ios or android)", name)
	}
}

// PlatformFromEnv returns the platform named by SPLASH_PLATFORM, or fallback
// when the variable is unset or invalid.
func PlatformFromEnv(fallback Platform) Platform {
	if value := os.Getenv(PlatformEnv); value != "" {
		if p, err := ParsePlatform(value); err == nil {
			return p
		}
	}
	return fallback
}

// Tree is the global configuration loaded once at startup. Nested values are
// map[string]any. A Tree must not be modified after it is handed to a Resolver.
type Tree map[string]any

// Options is the per-call options bag. It may be nil.
type Options map[string]any

// Sub returns the nested tree stored at key, or nil.
func (t Tree) Sub(key string) Tree {
	if m, ok := asMap(t[key]); ok {
		return Tree(m)
	}
	return nil
}

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	return Tree(cloneMap(t))
}

// Without returns a shallow copy of the options with the given keys removed.
func (o Options) Without(keys ...string) Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := asMap(v); ok {
			out[k] = cloneMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// asMap reports whether v is a nested mapping.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Tree:
		return m, true
	case Options:
		return m, true
	default:
		return nil, false
	}
}
