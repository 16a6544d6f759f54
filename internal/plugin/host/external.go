package host

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/splash/internal/plugin/protocol"
	"github.com/jmylchreest/splash/internal/security"
	"github.com/jmylchreest/splash/pkg/plugin"
)

// External is a host binary that serves the host bridge over go-plugin.
type External struct {
	path   string
	runner protocol.ProcessRunner
}

// NewExternal creates an external host for the binary at path. A nil runner
// uses the real process runner.
func NewExternal(path string, runner protocol.ProcessRunner) *External {
	if runner == nil {
		runner = protocol.NewRealProcessRunner()
	}
	return &External{path: path, runner: runner}
}

// Name returns the binary's base name.
func (e *External) Name() string {
	return filepath.Base(e.path)
}

// Description returns the binary's path.
func (e *External) Description() string {
	return "External host at " + e.path
}

// Path returns the host binary path.
func (e *External) Path() string {
	return e.path
}

// Info queries the binary's metadata and protocol compatibility.
func (e *External) Info(ctx context.Context) (*protocol.DetectorResult, error) {
	return protocol.Detect(ctx, e.runner, e.path)
}

// Connect validates and starts the host binary, then dispenses its bridge.
// The animation delegate is present only if the host registered one.
func (e *External) Connect(ctx context.Context, env Env) (*Connection, error) {
	if err := security.ValidateHostPath(e.path, env.HostDir); err != nil {
		return nil, fmt.Errorf("invalid host binary: %w", err)
	}

	result, err := e.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to detect host protocol: %w", err)
	}
	if !result.Compatible {
		return nil, fmt.Errorf("host %s is incompatible: %s", e.Name(), result.Reason)
	}

	logger := env.logger().Named("host").With("host", result.Info.Name)
	logger.Debug("starting external host", "path", e.path, "version", result.Info.Version,
		"protocol_version", result.Info.ProtocolVersion)

	client := goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig:  plugin.Handshake,
		Plugins:          plugin.PluginMap(&plugin.HostBridgeRPC{}),
		Cmd:              exec.Command(e.path), // #nosec G204 - path is validated above
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		Logger:           logger.Named("go-plugin"),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(plugin.HostPluginName)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to dispense host bridge: %w", err)
	}
	bridge, ok := raw.(*plugin.HostBridgeRPCClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("unexpected host bridge type %T", raw)
	}

	conn := &Connection{Bridge: bridge, close: client.Kill}
	if !env.NoDelegate {
		delegate, err := bridge.Delegate(ctx)
		if err != nil {
			client.Kill()
			return nil, fmt.Errorf("failed to query animation delegate: %w", err)
		}
		conn.Delegate = delegate
	}
	return conn, nil
}
