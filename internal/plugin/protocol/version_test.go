package protocol

import (
	"strings"
	"testing"

	"github.com/jmylchreest/splash/pkg/plugin"
)

func TestParse(t *testing.T) {
	tests := []struct {
		version     string
		expectError bool
		major       int
		minor       int
		patch       int
	}{
		{"0.1.0", false, 0, 1, 0},
		{"1.0.0", false, 1, 0, 0},
		{"10.99.42", false, 10, 99, 42},
		{"invalid", true, 0, 0, 0},
		{"1", true, 0, 0, 0},
		{"1.2", true, 0, 0, 0},
		{"1.x.0", true, 0, 0, 0},
	}

	for _, tt := range tests {
		v, err := Parse(tt.version)
		if tt.expectError {
			if err == nil {
				t.Errorf("Parse(%q) expected error but got none", tt.version)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tt.version, err)
		}
		if v.Major != tt.major || v.Minor != tt.minor || v.Patch != tt.patch {
			t.Errorf("Parse(%q) = %s, want %d.%d.%d", tt.version, v, tt.major, tt.minor, tt.patch)
		}
	}
}

func TestIsCompatible(t *testing.T) {
	tests := []struct {
		hostVersion   string
		compatible    bool
		errorContains string
	}{
		// Same version
		{plugin.ProtocolVersion, true, ""},

		// Same major, newer minor or patch
		{"0.2.0", true, ""},
		{"0.1.7", true, ""},

		// Older than the minimum
		{"0.0.9", false, "too old"},

		// Different major version
		{"1.0.0", false, "incompatible major version"},

		// Invalid format
		{"invalid", false, "failed to parse"},
		{"1.2", false, "invalid version format"},
	}

	for _, tt := range tests {
		compatible, err := IsCompatible(tt.hostVersion)

		if !tt.compatible {
			if compatible {
				t.Errorf("IsCompatible(%q) = true, want false", tt.hostVersion)
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("IsCompatible(%q) error = %v, want error containing %q", tt.hostVersion, err, tt.errorContains)
			}
			continue
		}

		if !compatible || err != nil {
			t.Errorf("IsCompatible(%q) = %v, %v, want true", tt.hostVersion, compatible, err)
		}
	}
}

func TestVersionLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"0.1.0", "0.1.1", true},
		{"0.1.1", "0.1.0", false},
		{"0.9.9", "1.0.0", true},
		{"0.2.0", "0.1.9", false},
		{"0.1.0", "0.1.0", false},
	}
	for _, tt := range tests {
		a, _ := Parse(tt.a)
		b, _ := Parse(tt.b)
		if got := a.Less(b); got != tt.want {
			t.Errorf("%s.Less(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCurrent(t *testing.T) {
	if got := Current().String(); got != plugin.ProtocolVersion {
		t.Errorf("Current() = %s, want %s", got, plugin.ProtocolVersion)
	}
}
