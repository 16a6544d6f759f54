// Package plugin provides the public API for splash screen host bridges.
// Hosts that run out of process should import this package instead of
// internal packages.
package plugin

import (
	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion defines the current host bridge API version.
	// Format: MAJOR.MINOR.PATCH.
	// - Increment MAJOR for breaking changes (incompatible API changes).
	// - Increment MINOR for backward-compatible additions.
	// - Increment PATCH for backward-compatible bug fixes.
	ProtocolVersion = "0.1.0"

	// MinCompatibleVersion is the oldest host protocol version this controller can drive.
	MinCompatibleVersion = "0.1.0"

	// HostPluginName is the name the host bridge is dispensed under.
	HostPluginName = "host"
)

// Handshake is the handshake configuration for go-plugin protocol.
// This ensures that hosts using go-plugin can only connect to compatible controllers.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  0, // Major version from ProtocolVersion
	MagicCookieKey:   "SPLASH_HOST_BRIDGE",
	MagicCookieValue: "splash_screen_host",
}

// PluginMap returns the go-plugin plugin set for a host bridge. Controllers
// pass an empty HostBridgeRPC; hosts pass one with Impl set.
func PluginMap(rpc *HostBridgeRPC) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		HostPluginName: rpc,
	}
}

// ServeHost serves bridge (and delegate, which may be nil) to a controller
// process. It blocks until the controller disconnects.
func ServeHost(bridge HostBridge, delegate AnimationDelegate) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins:         PluginMap(&HostBridgeRPC{Impl: bridge, Delegate: delegate}),
	})
}
