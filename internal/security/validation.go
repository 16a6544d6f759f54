// Package security provides path and size validation for splash resources
// and external host binaries.
package security

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ValidateResourceName validates a resource name relative to baseDir to
// prevent directory traversal.
func ValidateResourceName(name, baseDir string) error {
	if name == "" {
		return fmt.Errorf("empty resource name")
	}

	if strings.Contains(name, "..") {
		return fmt.Errorf("resource name contains directory traversal (..) - not allowed")
	}

	if filepath.IsAbs(name) {
		return fmt.Errorf("absolute resource names are not allowed")
	}

	// Ensure the final path would be within baseDir
	cleanFinal := filepath.Clean(filepath.Join(baseDir, name))
	cleanBase := filepath.Clean(baseDir)

	if !strings.HasPrefix(cleanFinal, cleanBase+string(filepath.Separator)) {
		return fmt.Errorf("resource name would escape base directory")
	}

	return nil
}

// ValidateHostPath validates an external host path. When baseDir is set the
// host must live inside it.
func ValidateHostPath(hostPath, baseDir string) error {
	if hostPath == "" {
		return fmt.Errorf("empty host path")
	}
	if baseDir == "" {
		return nil
	}

	absHostPath, err := filepath.Abs(filepath.Clean(hostPath))
	if err != nil {
		return fmt.Errorf("invalid host path: %w", err)
	}

	absBaseDir, err := filepath.Abs(filepath.Clean(baseDir))
	if err != nil {
		return fmt.Errorf("invalid base directory: %w", err)
	}

	if !strings.HasPrefix(absHostPath, absBaseDir+string(filepath.Separator)) {
		return fmt.Errorf("host path must be within %s (attempted path traversal)", baseDir)
	}

	return nil
}

// LimitedReader wraps an io.Reader and limits the total bytes that can be read.
// Reading past the limit is an error rather than a silent EOF.
type LimitedReader struct {
	R         io.Reader
	Remaining int64
}

// Read implements io.Reader with size limits.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Remaining <= 0 {
		return 0, fmt.Errorf("resource size limit exceeded")
	}
	if int64(len(p)) > l.Remaining {
		p = p[:l.Remaining]
	}
	n, err := l.R.Read(p)
	l.Remaining -= int64(n)
	return n, err
}

// NewLimitedReader creates a new LimitedReader with the specified size limit.
func NewLimitedReader(r io.Reader, maxBytes int64) *LimitedReader {
	return &LimitedReader{
		R:         r,
		Remaining: maxBytes,
	}
}
