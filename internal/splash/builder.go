package splash

import (
	"errors"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/splash/internal/config"
	"github.com/jmylchreest/splash/internal/options"
	"github.com/jmylchreest/splash/pkg/plugin"
)

// Builder provides a fluent interface for constructing a Lifecycle.
type Builder struct {
	bridge   plugin.HostBridge
	delegate plugin.AnimationDelegate
	resolver *config.Resolver
	defaults *options.Defaults
	clock    Clock
	logger   hclog.Logger
}

// NewBuilder creates a new Lifecycle builder with default settings.
func NewBuilder() *Builder {
	return &Builder{
		clock: SystemClock(),
	}
}

// WithBridge sets the host bridge. Required.
func (b *Builder) WithBridge(bridge plugin.HostBridge) *Builder {
	b.bridge = bridge
	return b
}

// WithDelegate sets the animation delegate. A nil delegate makes animate
// fail with animateMethodNotFound.
func (b *Builder) WithDelegate(delegate plugin.AnimationDelegate) *Builder {
	b.delegate = delegate
	return b
}

// WithResolver sets the configuration the options are resolved against.
func (b *Builder) WithResolver(resolver *config.Resolver) *Builder {
	b.resolver = resolver
	return b
}

// WithDefaults replaces the built-in option defaults.
func (b *Builder) WithDefaults(defaults options.Defaults) *Builder {
	b.defaults = &defaults
	return b
}

// WithClock sets the clock used for timers (useful for testing).
func (b *Builder) WithClock(clock Clock) *Builder {
	b.clock = clock
	return b
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(logger hclog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build constructs the Lifecycle and starts its event loop. Call Close to
// stop it.
func (b *Builder) Build() (*Lifecycle, error) {
	if b.bridge == nil {
		return nil, errors.New("splash lifecycle requires a host bridge")
	}
	if b.clock == nil {
		return nil, errors.New("splash lifecycle requires a clock")
	}

	logger := b.logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	resolver := b.resolver
	if resolver == nil {
		resolver = config.NewResolver(config.Tree{}, "")
	}

	builder := options.NewBuilder(resolver, logger.Named("options"))
	if b.defaults != nil {
		builder.WithDefaults(*b.defaults)
	}

	l := &Lifecycle{
		bridge:   b.bridge,
		delegate: b.delegate,
		options:  builder,
		clock:    b.clock,
		logger:   logger.Named("lifecycle"),
	}
	l.start()
	return l, nil
}
