// Package host provides the hosts a splash lifecycle can drive: in-process
// simulated hosts and external host binaries served over go-plugin.
package host

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/splash/internal/image"
	"github.com/jmylchreest/splash/internal/plugin/protocol"
	"github.com/jmylchreest/splash/internal/splash"
	"github.com/jmylchreest/splash/pkg/plugin"
)

// Env carries what a host needs to connect.
type Env struct {
	// Clock drives simulated fades and animations.
	Clock splash.Clock

	// Resources validates splash sources. Nil accepts every source.
	Resources *image.Resources

	// NoDelegate connects without an animation delegate.
	NoDelegate bool

	// HostDir restricts external host binaries to a directory. Empty means
	// no restriction.
	HostDir string

	Logger hclog.Logger
}

func (e Env) logger() hclog.Logger {
	if e.Logger == nil {
		return hclog.NewNullLogger()
	}
	return e.Logger
}

// Recorder is implemented by hosts that keep a timeline of bridge calls.
type Recorder interface {
	// Events returns the recorded timeline in call order.
	Events() []Event

	// Parked returns how many fades and animations are waiting on the clock.
	Parked() int
}

// Connection is a connected host.
type Connection struct {
	Bridge   plugin.HostBridge
	Delegate plugin.AnimationDelegate

	// Recorder is nil for hosts that do not record.
	Recorder Recorder

	close func()
}

// Close disconnects from the host.
func (c *Connection) Close() {
	if c.close != nil {
		c.close()
		c.close = nil
	}
}

// Host is a source of host bridges.
type Host interface {
	// Name returns the host's name (e.g., "sim").
	Name() string

	// Description returns a human-readable description of the host.
	Description() string

	// Connect starts or attaches to the host.
	Connect(ctx context.Context, env Env) (*Connection, error)
}

// Registry holds the in-process hosts.
type Registry struct {
	hosts map[string]Host
}

// NewRegistry creates a registry holding the built-in hosts.
func NewRegistry() *Registry {
	r := &Registry{hosts: make(map[string]Host)}
	r.Register(simHost{})
	r.Register(simHost{verbose: true})
	return r
}

// Register adds a host to the registry.
func (r *Registry) Register(h Host) {
	r.hosts[h.Name()] = h
}

// Get retrieves a host by name.
func (r *Registry) Get(name string) (Host, bool) {
	h, ok := r.hosts[name]
	return h, ok
}

// List returns all registered host names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.hosts))
	for name := range r.hosts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve returns the registered host called name, or an external host when
// name is a path to a host binary.
func (r *Registry) Resolve(name string, runner protocol.ProcessRunner) (Host, error) {
	if h, ok := r.Get(name); ok {
		return h, nil
	}
	if strings.ContainsRune(name, os.PathSeparator) || strings.HasPrefix(name, ExecutablePrefix) {
		return NewExternal(name, runner), nil
	}
	return nil, fmt.Errorf("unknown host %q (available: %s)", name, strings.Join(r.List(), ", "))
}

type simHost struct {
	verbose bool
}

func (h simHost) Name() string {
	if h.verbose {
		return "log"
	}
	return "sim"
}

func (h simHost) Description() string {
	if h.verbose {
		return "Simulated host that logs every bridge call"
	}
	return "Simulated host that records a timeline of bridge calls"
}

func (h simHost) Connect(_ context.Context, env Env) (*Connection, error) {
	if env.Clock == nil {
		return nil, fmt.Errorf("host %s requires a clock", h.Name())
	}
	level := hclog.Debug
	if h.verbose {
		level = hclog.Info
	}
	sim := NewSim(env.Clock, env.Resources, env.logger().Named(h.Name()), level)

	conn := &Connection{Bridge: sim, Recorder: sim}
	if !env.NoDelegate {
		conn.Delegate = sim
	}
	return conn, nil
}
