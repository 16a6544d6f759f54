// Package options builds the resolved, typed option records consumed by the
// splash lifecycle. Each record is built once per call from the call's
// options bag layered over the configuration tree, with every duration
// normalized.
package options

import (
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/splash/internal/colour"
	"github.com/jmylchreest/splash/internal/config"
	"github.com/jmylchreest/splash/internal/duration"
	"github.com/jmylchreest/splash/pkg/plugin"
)

// Option keys, as written in call options and the configuration tree.
const (
	KeySource            = "source"
	KeyDelay             = "delay"
	KeyShowDuration      = "showDuration"
	KeyFadeInDuration    = "fadeInDuration"
	KeyFadeOutDuration   = "fadeOutDuration"
	KeyAnimationDuration = "animationDuration"
	KeyAutoHide          = "autoHide"
	KeyBackgroundColor   = "backgroundColor"
	KeyShowSpinner       = "showSpinner"
	KeySpinnerColor      = "spinnerColor"
	KeySpinnerStyle      = "spinnerStyle"
	KeyImageContentMode  = "imageContentMode"

	// KeyDurationThreshold overrides duration.DefaultThreshold. Config only.
	KeyDurationThreshold = "durationThreshold"
)

// DefaultSource selects the app's default splash resource.
const DefaultSource = "*"

// Defaults holds the values used when neither the call nor the config sets a key.
type Defaults struct {
	Source            string
	Delay             time.Duration
	FadeIn            time.Duration
	ShowDuration      time.Duration
	FadeOut           time.Duration
	AnimationDuration time.Duration
	AutoHide          bool
}

// DefaultValues returns the built-in defaults.
func DefaultValues() Defaults {
	return Defaults{
		Source:            DefaultSource,
		FadeIn:            200 * time.Millisecond,
		ShowDuration:      700 * time.Millisecond,
		FadeOut:           300 * time.Millisecond,
		AnimationDuration: 500 * time.Millisecond,
	}
}

// Show are the resolved options of a show call or of the launch splash.
type Show struct {
	Source           string
	Delay            time.Duration
	FadeIn           time.Duration
	ShowDuration     time.Duration
	FadeOut          time.Duration
	AutoHide         bool
	IsLaunchSplash   bool
	BackgroundColor  string
	ShowSpinner      bool
	SpinnerStyle     string
	SpinnerColor     string
	ImageContentMode string
}

// ViewRequest converts the options into the request sent to the host.
func (s Show) ViewRequest() plugin.ViewRequest {
	return plugin.ViewRequest{
		Source:           s.Source,
		IsLaunchSplash:   s.IsLaunchSplash,
		BackgroundColor:  s.BackgroundColor,
		ShowSpinner:      s.ShowSpinner,
		SpinnerStyle:     s.SpinnerStyle,
		SpinnerColor:     s.SpinnerColor,
		ImageContentMode: s.ImageContentMode,
	}
}

// AutoHideOptions are the hide options used when the auto-hide timer fires.
func (s Show) AutoHideOptions() Hide {
	return Hide{FadeOut: s.FadeOut}
}

// Hide are the resolved options of a hide call.
type Hide struct {
	Delay   time.Duration
	FadeOut time.Duration
}

// Animate are the resolved options of an animate call.
type Animate struct {
	Delay             time.Duration
	AnimationDuration time.Duration

	// Extra holds the call options other than delay, passed to the delegate.
	Extra map[string]any
}

// Builder resolves option records against one configuration.
type Builder struct {
	resolver   *config.Resolver
	normalizer duration.Normalizer
	defaults   Defaults
	logger     hclog.Logger
}

// NewBuilder creates a Builder. The duration threshold is read from the
// configuration once.
func NewBuilder(resolver *config.Resolver, logger hclog.Logger) *Builder {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	b := &Builder{
		resolver: resolver,
		defaults: DefaultValues(),
		logger:   logger,
	}
	if threshold, ok := resolver.Number(KeyDurationThreshold, nil); ok && threshold > 0 {
		b.normalizer.Threshold = threshold
	}
	return b
}

// WithDefaults replaces the built-in defaults.
func (b *Builder) WithDefaults(d Defaults) *Builder {
	b.defaults = d
	return b
}

// Defaults returns the defaults in use.
func (b *Builder) Defaults() Defaults {
	return b.defaults
}

// Launch resolves the options of the implicit launch splash. Only the
// configuration is consulted; there is no call.
func (b *Builder) Launch() Show {
	s := b.show(nil)
	s.Source = DefaultSource
	s.Delay = 0
	s.FadeIn = 0
	s.IsLaunchSplash = true
	return s
}

// Show resolves the options of a show call.
func (b *Builder) Show(opts config.Options) Show {
	return b.show(opts)
}

func (b *Builder) show(opts config.Options) Show {
	return Show{
		Source:           b.string(KeySource, opts, b.defaults.Source),
		Delay:            b.duration(KeyDelay, opts, b.defaults.Delay),
		FadeIn:           b.duration(KeyFadeInDuration, opts, b.defaults.FadeIn),
		ShowDuration:     b.duration(KeyShowDuration, opts, b.defaults.ShowDuration),
		FadeOut:          b.duration(KeyFadeOutDuration, opts, b.defaults.FadeOut),
		AutoHide:         b.bool(KeyAutoHide, opts, b.defaults.AutoHide),
		BackgroundColor:  b.colour(KeyBackgroundColor, opts),
		ShowSpinner:      b.bool(KeyShowSpinner, opts, false),
		SpinnerStyle:     b.string(KeySpinnerStyle, opts, ""),
		SpinnerColor:     b.colour(KeySpinnerColor, opts),
		ImageContentMode: b.string(KeyImageContentMode, opts, ""),
	}
}

// Hide resolves the options of a hide call.
func (b *Builder) Hide(opts config.Options) Hide {
	return Hide{
		Delay:   b.duration(KeyDelay, opts, b.defaults.Delay),
		FadeOut: b.duration(KeyFadeOutDuration, opts, b.defaults.FadeOut),
	}
}

// Animate resolves the options of an animate call.
func (b *Builder) Animate(opts config.Options) Animate {
	a := Animate{
		Delay:             b.duration(KeyDelay, opts, b.defaults.Delay),
		AnimationDuration: b.duration(KeyAnimationDuration, opts, b.defaults.AnimationDuration),
	}
	if extra := opts.Without(KeyDelay); len(extra) > 0 {
		a.Extra = map[string]any(extra)
	}
	return a
}

func (b *Builder) duration(key string, opts config.Options, def time.Duration) time.Duration {
	v, ok := b.resolver.Number(key, opts)
	if !ok {
		return def
	}
	return b.normalizer.Duration(v)
}

func (b *Builder) string(key string, opts config.Options, def string) string {
	if s, ok := b.resolver.String(key, opts); ok {
		return s
	}
	return def
}

func (b *Builder) bool(key string, opts config.Options, def bool) bool {
	if v, ok := b.resolver.Bool(key, opts); ok {
		return v
	}
	return def
}

func (b *Builder) colour(key string, opts config.Options) string {
	s, ok := b.resolver.String(key, opts)
	if !ok || s == "" {
		return ""
	}
	c, err := colour.ParseHex(s)
	if err != nil {
		b.logger.Warn("ignoring invalid colour", "key", key, "value", s, "error", err)
		return ""
	}
	return c.Hex()
}
