package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/pelletier/go-toml/v2"
)

// PluginName is the key of the splash screen section in a Capacitor-style
// configuration ("plugins": {"SplashScreen": {...}}).
const PluginName = "SplashScreen"

// Format identifies a configuration file encoding.
type Format string

const (
	// FormatJSON is JSON, as used by capacitor.config.json.
	FormatJSON Format = "json"

	// FormatTOML is TOML.
	FormatTOML Format = "toml"
)

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported config file extension: %s", path)
	}
}

// Parse decodes a configuration tree.
func Parse(data []byte, format Format) (Tree, error) {
	tree := Tree{}
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}
	return tree, nil
}

// LoadFile reads a single configuration file.
func LoadFile(path string) (Tree, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) // #nosec G304 - user-specified config path
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	tree, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// Load reads each file in order and merges them, later files overriding
// earlier ones. Each file is unwrapped with PluginSection first.
func Load(paths ...string) (Tree, error) {
	layers := make([]Tree, 0, len(paths))
	for _, path := range paths {
		tree, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		layers = append(layers, PluginSection(tree))
	}
	return Merge(layers...)
}

// Merge deep-merges layers into a new tree. Nested mappings are merged key by
// key; any other value in a later layer replaces the earlier one. The inputs
// are not modified.
func Merge(layers ...Tree) (Tree, error) {
	merged := map[string]any{}
	for i, layer := range layers {
		if layer == nil {
			continue
		}
		src := cloneMap(layer)
		if err := mergo.Merge(&merged, src, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge config layer %d: %w", i, err)
		}
	}
	return Tree(merged), nil
}

// PluginSection returns root.plugins.SplashScreen when present, otherwise
// root itself.
func PluginSection(root Tree) Tree {
	if section := root.Sub("plugins").Sub(PluginName); section != nil {
		return section
	}
	return root
}
