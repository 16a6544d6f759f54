package config

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Resolve returns the most specific value for keyPath.
//
// Precedence, highest first:
//  1. keyPath in opts, then its platform spellings in opts
//  2. keyPath in tree
//  3. platform spellings of keyPath in tree
//
// For a key path that is not platform-prefixed, such as spinner.size on ios,
// the platform spellings are tried in order: ios.spinner.size, then
// spinner.ios.size, then spinner.iosSize. A prefixed last segment
// (spinner.iosSize) has the single spelling spinner.ios.size.
//
// Every segment but the last must name a nested mapping. Flat and nested
// platform spellings are only interchangeable at the final segment.
func Resolve(keyPath string, opts Options, tree Tree, platform Platform) (any, bool) {
	segments, ok := splitKeyPath(keyPath)
	if !ok {
		return nil, false
	}

	if opts != nil {
		if v, ok := lookupWithAliases(opts, segments, platform); ok {
			return v, true
		}
	}

	if tree == nil {
		return nil, false
	}
	return lookupWithAliases(tree, segments, platform)
}

func splitKeyPath(keyPath string) ([]string, bool) {
	if keyPath == "" {
		return nil, false
	}
	segments := strings.Split(keyPath, ".")
	for _, s := range segments {
		if s == "" {
			return nil, false
		}
	}
	return segments, true
}

func lookupWithAliases(m map[string]any, segments []string, platform Platform) (any, bool) {
	if v, ok := lookup(m, segments); ok {
		return v, true
	}
	for _, alias := range platformAliases(segments, platform) {
		if v, ok := lookup(m, alias); ok {
			return v, true
		}
	}
	return nil, false
}

func lookup(m map[string]any, segments []string) (any, bool) {
	current := m
	for _, key := range segments[:len(segments)-1] {
		next, ok := asMap(current[key])
		if !ok {
			return nil, false
		}
		current = next
	}
	v, ok := current[segments[len(segments)-1]]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// platformAliases lists the alternative spellings of a key path for platform.
//
//	foo.iosBar -> foo.ios.bar
//	foo.bar    -> ios.foo.bar, foo.ios.bar, foo.iosBar
func platformAliases(segments []string, platform Platform) [][]string {
	if platform == "" {
		return nil
	}
	prefix := string(platform)
	last := segments[len(segments)-1]
	parent := segments[:len(segments)-1]

	if suffix, ok := stripPlatformPrefix(last, prefix); ok {
		return [][]string{withParent(parent, prefix, suffix)}
	}

	aliases := [][]string{withParent([]string{prefix}, segments...)}
	if len(parent) > 0 {
		aliases = append(aliases, withParent(parent, prefix, last))
	}
	return append(aliases, withParent(parent, prefix+upperFirst(last)))
}

// stripPlatformPrefix splits "iosFoo" into "foo". A key equal to the prefix
// alone is not prefixed.
func stripPlatformPrefix(key, prefix string) (string, bool) {
	if len(key) <= len(prefix) || !strings.HasPrefix(key, prefix) {
		return "", false
	}
	return lowerFirst(key[len(prefix):]), true
}

func withParent(parent []string, tail ...string) []string {
	out := make([]string, 0, len(parent)+len(tail))
	out = append(out, parent...)
	return append(out, tail...)
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Resolver binds a configuration tree to a platform.
type Resolver struct {
	tree     Tree
	platform Platform
}

// NewResolver creates a resolver over tree for platform.
func NewResolver(tree Tree, platform Platform) *Resolver {
	return &Resolver{tree: tree, platform: platform}
}

// Platform returns the platform values are resolved for.
func (r *Resolver) Platform() Platform {
	return r.platform
}

// Tree returns the underlying configuration tree.
func (r *Resolver) Tree() Tree {
	return r.tree
}

// Value resolves keyPath with no type check.
func (r *Resolver) Value(keyPath string, opts Options) (any, bool) {
	return Resolve(keyPath, opts, r.tree, r.platform)
}

// String resolves keyPath and returns it only if it is a string.
func (r *Resolver) String(keyPath string, opts Options) (string, bool) {
	v, ok := r.Value(keyPath, opts)
	if !ok {
		return "", false
	}
	return AsString(v)
}

// Bool resolves keyPath and returns it only if it is a bool.
func (r *Resolver) Bool(keyPath string, opts Options) (bool, bool) {
	v, ok := r.Value(keyPath, opts)
	if !ok {
		return false, false
	}
	return AsBool(v)
}

// Int resolves keyPath and returns it only if it is a whole number.
func (r *Resolver) Int(keyPath string, opts Options) (int, bool) {
	v, ok := r.Value(keyPath, opts)
	if !ok {
		return 0, false
	}
	return AsInt(v)
}

// Float resolves keyPath and returns it only if it is a floating point value.
func (r *Resolver) Float(keyPath string, opts Options) (float64, bool) {
	v, ok := r.Value(keyPath, opts)
	if !ok {
		return 0, false
	}
	return AsFloat(v)
}

// Number resolves keyPath and returns it if it is any numeric kind.
func (r *Resolver) Number(keyPath string, opts Options) (float64, bool) {
	v, ok := r.Value(keyPath, opts)
	if !ok {
		return 0, false
	}
	return AsNumber(v)
}

// Object resolves keyPath and returns it only if it is a nested mapping.
func (r *Resolver) Object(keyPath string, opts Options) (map[string]any, bool) {
	v, ok := r.Value(keyPath, opts)
	if !ok {
		return nil, false
	}
	return asMap(v)
}

// AsString returns v if it is a string.
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// AsBool returns v if it is a bool.
func AsBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// AsFloat returns v if it is a float32 or float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

// AsInt returns v if it is an integer kind, or a float with no fractional
// part that fits in an int. JSON decodes every number as float64, so 3000
// must count as an int.
func AsInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float32, float64:
		f, _ := AsFloat(n)
		if math.Trunc(f) != f || f >= float64(math.MaxInt) || f < float64(math.MinInt) {
			return 0, false
		}
		return int(f), true
	default:
		return 0, false
	}
}

// AsNumber returns v as a float64 if it is any numeric kind.
func AsNumber(v any) (float64, bool) {
	if f, ok := AsFloat(v); ok {
		return f, true
	}
	if i, ok := AsInt(v); ok {
		return float64(i), true
	}
	return 0, false
}
