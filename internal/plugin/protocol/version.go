// Package protocol checks that an external host speaks a compatible version
// of the host bridge protocol.
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/splash/pkg/plugin"
)

// Version represents a parsed protocol version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse parses a version string in "MAJOR.MINOR.PATCH" format.
func Parse(version string) (Version, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version format: %s (expected MAJOR.MINOR.PATCH)", version)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf("invalid major version: %s", parts[0])
	}

	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, fmt.Errorf("invalid minor version: %s", parts[1])
	}

	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return Version{}, fmt.Errorf("invalid patch version: %s", parts[2])
	}

	return Version{Major: major, Minor: minor, Patch: patch}, nil
}

// String returns the string representation of the version.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less reports whether v is older than other.
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}

// IsCompatible checks whether a host's protocol version can be driven by this controller.
// Rules:
// - Major version must match exactly (breaking changes).
// - The version must not be older than plugin.MinCompatibleVersion.
// - Newer minor and patch versions are accepted.
func IsCompatible(hostVersionStr string) (bool, error) {
	hostVersion, err := Parse(hostVersionStr)
	if err != nil {
		return false, fmt.Errorf("failed to parse host version: %w", err)
	}

	current := Current()
	if hostVersion.Major != current.Major {
		return false, fmt.Errorf(
			"incompatible major version: host is %s, controller requires %d.x.x",
			hostVersion.String(),
			current.Major,
		)
	}

	minVersion, err := Parse(plugin.MinCompatibleVersion)
	if err != nil {
		return false, fmt.Errorf("failed to parse minimum compatible version: %w", err)
	}
	if hostVersion.Less(minVersion) {
		return false, fmt.Errorf(
			"host version %s is too old, minimum required is %s",
			hostVersion.String(),
			plugin.MinCompatibleVersion,
		)
	}

	return true, nil
}

// Current returns plugin.ProtocolVersion as a Version.
func Current() Version {
	v, err := Parse(plugin.ProtocolVersion)
	if err != nil {
		// ProtocolVersion is a constant with a valid format.
		panic(fmt.Sprintf("invalid ProtocolVersion constant: %v", err))
	}
	return v
}
