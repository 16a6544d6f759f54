// Package image resolves splash sources to image resources and validates
// that they decode.
package image

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/jmylchreest/splash/internal/security"
	"github.com/jmylchreest/splash/pkg/plugin"
)

const (
	// DefaultName is the resource selected by the "*" source.
	DefaultName = "splash"

	// DefaultSource selects DefaultName.
	DefaultSource = "*"

	// maxResourceBytes caps how much of a resource is read while validating it.
	maxResourceBytes = 64 << 20
)

// Info describes a resolved splash resource.
type Info struct {
	Source string
	Path   string
	Format string
	Width  int
	Height int
}

// Resources resolves splash sources inside a directory.
type Resources struct {
	dir string
}

// NewResources creates a resolver for the resources in dir.
func NewResources(dir string) *Resources {
	return &Resources{dir: dir}
}

// Dir returns the resource directory.
func (r *Resources) Dir() string {
	return r.dir
}

// SupportedImageExtensions returns a list of supported image file extensions,
// in lookup order.
func SupportedImageExtensions() []string {
	return []string{".png", ".webp", ".jpg", ".jpeg", ".gif", ".bmp"}
}

// isImageFile checks if a file has a supported image extension.
func isImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(SupportedImageExtensions(), ext)
}

// Resolve maps a source to a file. "*" selects DefaultName. A source without
// an image extension is tried with each supported extension. A missing
// resource is reported with an error matching plugin.ErrNotFound.
func (r *Resources) Resolve(source string) (string, error) {
	name := source
	if name == "" || name == DefaultSource {
		name = DefaultName
	}
	if err := security.ValidateResourceName(name, r.dir); err != nil {
		return "", plugin.NewError(plugin.CodeNotFound, "invalid splash source %q: %v", source, err)
	}

	candidates := []string{name}
	if !isImageFile(name) {
		candidates = candidates[:0]
		for _, ext := range SupportedImageExtensions() {
			candidates = append(candidates, name+ext)
		}
	}

	for _, candidate := range candidates {
		path := filepath.Join(r.dir, candidate)
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("failed to stat splash resource: %w", err)
		}
		if info.IsDir() {
			continue
		}
		return path, nil
	}

	return "", plugin.NewError(plugin.CodeNotFound, "splash source %q not found in %s", source, r.dir)
}

// Describe resolves source and decodes its image header.
func (r *Resources) Describe(source string) (Info, error) {
	path, err := r.Resolve(source)
	if err != nil {
		return Info{}, err
	}

	file, err := os.Open(path) // #nosec G304 - path is validated to stay within the resource directory
	if err != nil {
		return Info{}, fmt.Errorf("failed to open splash resource: %w", err)
	}
	defer file.Close()

	config, format, err := image.DecodeConfig(security.NewLimitedReader(file, maxResourceBytes))
	if err != nil {
		return Info{}, plugin.NewError(plugin.CodeNotFound, "splash source %q is not a supported image: %v", source, err)
	}

	return Info{
		Source: source,
		Path:   path,
		Format: format,
		Width:  config.Width,
		Height: config.Height,
	}, nil
}

// List returns the names of the resources in the directory, without
// extensions. It does not recurse into subdirectories.
func (r *Resources) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read resource directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}
