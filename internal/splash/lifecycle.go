// Package splash implements the splash screen lifecycle: show, auto-hide,
// hide and delegated animation, with the launch splash's minimum visible
// duration.
//
// Every transition runs on a single event loop goroutine. Host fades, timers
// and animation delegate callbacks run elsewhere and post their completions
// back to the loop, so the state is never touched concurrently.
package splash

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/splash/internal/config"
	"github.com/jmylchreest/splash/internal/options"
	"github.com/jmylchreest/splash/pkg/plugin"
)

// ErrClosed is returned for calls made after, or pending at, Close.
var ErrClosed = errors.New("splash lifecycle closed")

// detachTimeout bounds the detach issued by Close.
const detachTimeout = 5 * time.Second

// Lifecycle owns the splash view and its state.
type Lifecycle struct {
	bridge   plugin.HostBridge
	delegate plugin.AnimationDelegate
	options  *options.Builder
	clock    Clock
	logger   hclog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	events    chan func()
	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	// Owned by the loop goroutine.
	state          state
	viewBuilt      bool
	isLaunchSplash bool
	launched       bool
	launchStart    time.Time
	launchShow     time.Duration
	pending        map[*Call]struct{}
	inflight       int
}

func (l *Lifecycle) start() {
	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.events = make(chan func())
	l.quit = make(chan struct{})
	l.stopped = make(chan struct{})
	l.state = hidden{}
	l.pending = make(map[*Call]struct{})
	go l.run()
}

func (l *Lifecycle) run() {
	defer close(l.stopped)
	for {
		select {
		case fn := <-l.events:
			fn()
		case <-l.quit:
			l.dispose()
			return
		}
	}
}

// post runs fn on the loop. It reports false if the lifecycle is closed.
// It must not be called from the loop goroutine.
func (l *Lifecycle) post(fn func()) bool {
	select {
	case l.events <- fn:
		return true
	case <-l.quit:
		return false
	}
}

func (l *Lifecycle) submit(call *Call, fn func()) *Call {
	ok := l.post(func() {
		l.pending[call] = struct{}{}
		fn()
	})
	if !ok {
		call.resolve(ErrClosed)
	}
	return call
}

func (l *Lifecycle) finish(call *Call, err error) {
	if call == nil {
		return
	}
	delete(l.pending, call)
	if !call.resolve(err) {
		return
	}
	if err != nil {
		l.logger.Debug("call failed", "op", call.Op(), "call_id", call.ID(), "error", err)
		return
	}
	l.logger.Debug("call resolved", "op", call.Op(), "call_id", call.ID())
}

// InitializeLaunch shows the launch splash. Only the first call has any
// effect, and it is skipped when a shown splash is already active. A launch
// showDuration of zero disables the launch splash. Build
// failures are logged, not returned: there is no caller to report them to.
func (l *Lifecycle) InitializeLaunch(ctx context.Context) error {
	done := make(chan struct{})
	if !l.post(func() {
		defer close(done)
		l.launch()
	}) {
		return ErrClosed
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Lifecycle) launch() {
	if l.launched {
		l.logger.Warn("launch splash already initialized")
		return
	}
	l.launched = true
	if _, ok := l.state.(hidden); !ok {
		l.logger.Warn("launch splash skipped, a splash is already active", "phase", l.state.phase())
		return
	}

	opts := l.options.Launch()
	if opts.ShowDuration == 0 {
		l.logger.Debug("launch splash disabled", "show_duration", opts.ShowDuration)
		return
	}

	l.launchStart = l.clock.Now()
	l.launchShow = opts.ShowDuration
	l.logger.Debug("showing launch splash", "show_duration", opts.ShowDuration, "auto_hide", opts.AutoHide)

	view, err := l.build(opts, 1)
	if err != nil {
		l.logger.Error("failed to show launch splash", "error", err)
		return
	}
	l.isLaunchSplash = true

	st := &showing{view: view, opts: opts}
	l.state = st
	l.fade(plugin.FadeRequest{View: view, ToAlpha: 1}, func(err error) {
		l.shown(st, err)
	})
}

// Show builds and fades in a splash. It fails with alreadyActive unless the
// splash is hidden, and with notFound if the view cannot be built. The call
// resolves once the fade in has completed.
func (l *Lifecycle) Show(opts config.Options) *Call {
	resolved := l.options.Show(opts)
	call := newCall("show")
	return l.submit(call, func() { l.show(call, resolved) })
}

func (l *Lifecycle) show(call *Call, opts options.Show) {
	if _, ok := l.state.(hidden); !ok {
		l.finish(call, plugin.NewError(plugin.CodeAlreadyActive, "splash screen is %s", l.state.phase()))
		return
	}
	l.isLaunchSplash = false

	l.logger.Debug("showing splash", "call_id", call.ID(), "source", opts.Source,
		"delay", opts.Delay, "fade_in", opts.FadeIn, "auto_hide", opts.AutoHide)

	view, err := l.build(opts, 0)
	if err != nil {
		l.finish(call, err)
		return
	}

	st := &showing{view: view, opts: opts, call: call}
	l.state = st
	l.fade(plugin.FadeRequest{View: view, ToAlpha: 1, Duration: opts.FadeIn, Delay: opts.Delay}, func(err error) {
		l.shown(st, err)
	})
}

// build creates and attaches a view. On failure the lifecycle is left hidden
// with no view.
func (l *Lifecycle) build(opts options.Show, alpha float64) (plugin.ViewHandle, error) {
	view, err := l.bridge.BuildView(l.ctx, opts.ViewRequest())
	if err != nil {
		l.viewBuilt = false
		l.state = hidden{}
		if plugin.CodeOf(err) == plugin.CodeNotFound {
			return "", err
		}
		return "", plugin.NewError(plugin.CodeNotFound, "failed to build splash view for source %q: %v", opts.Source, err)
	}
	if err := l.bridge.Attach(l.ctx, view, alpha); err != nil {
		l.viewBuilt = false
		l.state = hidden{}
		return "", fmt.Errorf("failed to attach splash view: %w", err)
	}
	l.viewBuilt = true
	return view, nil
}

// fade runs a host fade off the loop and posts done back to it.
func (l *Lifecycle) fade(req plugin.FadeRequest, done func(error)) {
	l.inflight++
	go func() {
		err := l.bridge.Fade(l.ctx, req)
		l.post(func() {
			l.inflight--
			done(err)
		})
	}()
}

func (l *Lifecycle) shown(st *showing, err error) {
	if err != nil {
		l.logger.Warn("fade in failed", "view", st.view, "error", err)
	}
	if l.state != state(st) {
		// A hide took over during the fade in. The show itself still completed.
		l.finish(st.call, nil)
		return
	}

	vis := &visible{view: st.view, opts: st.opts}
	l.state = vis
	if st.opts.AutoHide {
		l.armAutoHide(vis)
	}
	l.finish(st.call, nil)
}

func (l *Lifecycle) armAutoHide(vis *visible) {
	if vis.opts.ShowDuration <= 0 {
		l.logger.Debug("auto-hiding splash", "after", vis.opts.ShowDuration)
		l.beginHide(nil, vis.opts.AutoHideOptions())
		return
	}
	l.logger.Debug("auto-hide armed", "after", vis.opts.ShowDuration)
	vis.autoHide = l.clock.AfterFunc(vis.opts.ShowDuration, func() {
		l.post(func() { l.autoHideFired(vis) })
	})
}

func (l *Lifecycle) autoHideFired(vis *visible) {
	if l.state != state(vis) || vis.autoHide == nil {
		return
	}
	vis.autoHide = nil
	l.logger.Debug("auto-hiding splash")
	l.beginHide(nil, vis.opts.AutoHideOptions())
}

func (l *Lifecycle) cancelAutoHide() {
	vis, ok := l.state.(*visible)
	if !ok || vis.autoHide == nil {
		return
	}
	vis.autoHide.Stop()
	vis.autoHide = nil
	l.logger.Debug("auto-hide cancelled")
}

// launchRemainder is how much longer the launch splash must stay visible.
func (l *Lifecycle) launchRemainder() time.Duration {
	if !l.isLaunchSplash {
		return 0
	}
	remainder := l.launchShow - l.clock.Now().Sub(l.launchStart)
	if remainder < 0 {
		return 0
	}
	return remainder
}

// withLaunchRemainder adds the launch remainder to delay, saturating rather
// than wrapping negative.
func (l *Lifecycle) withLaunchRemainder(delay time.Duration) time.Duration {
	remainder := l.launchRemainder()
	if delay > time.Duration(math.MaxInt64)-remainder {
		return time.Duration(math.MaxInt64)
	}
	return delay + remainder
}

// Hide fades out and detaches the splash. It fails with noSplashScreen if no
// view was ever built, and resolves immediately if the splash is already
// hidden. A hide during another teardown resolves with that teardown.
func (l *Lifecycle) Hide(opts config.Options) *Call {
	resolved := l.options.Hide(opts)
	call := newCall("hide")
	return l.submit(call, func() { l.hide(call, resolved) })
}

func (l *Lifecycle) hide(call *Call, opts options.Hide) {
	if !l.viewBuilt {
		l.finish(call, plugin.NewError(plugin.CodeNoSplashScreen, "no splash screen to hide"))
		return
	}
	switch st := l.state.(type) {
	case hidden:
		l.finish(call, nil)
	case *hiding:
		st.joined = append(st.joined, call)
	default:
		l.beginHide(call, opts)
	}
}

func (l *Lifecycle) beginHide(call *Call, opts options.Hide) {
	view := l.currentView()
	l.cancelAutoHide()
	delay := l.withLaunchRemainder(opts.Delay)

	st := &hiding{view: view, owner: call}
	l.state = st
	l.logger.Debug("hiding splash", "delay", delay, "fade_out", opts.FadeOut, "launch", l.isLaunchSplash)
	l.fade(plugin.FadeRequest{View: view, ToAlpha: 0, Duration: opts.FadeOut, Delay: delay}, func(err error) {
		if err != nil {
			l.logger.Warn("fade out failed", "view", view, "error", err)
		}
		l.tearDown(st, nil)
	})
}

// Animate hands the teardown to the animation delegate. It fails with
// noSplashScreen like Hide and with animateMethodNotFound when no delegate is
// registered, leaving the state unchanged in both cases.
func (l *Lifecycle) Animate(opts config.Options) *Call {
	resolved := l.options.Animate(opts)
	call := newCall("animate")
	return l.submit(call, func() { l.animate(call, resolved) })
}

func (l *Lifecycle) animate(call *Call, opts options.Animate) {
	if !l.viewBuilt {
		l.finish(call, plugin.NewError(plugin.CodeNoSplashScreen, "no splash screen to animate"))
		return
	}
	if l.delegate == nil {
		l.finish(call, plugin.NewError(plugin.CodeAnimateMethodNotFound, "no animation delegate is registered"))
		return
	}

	var source string
	switch st := l.state.(type) {
	case hidden:
		l.finish(call, nil)
		return
	case *hiding:
		st.joined = append(st.joined, call)
		return
	case *showing:
		source = st.opts.Source
	case *visible:
		source = st.opts.Source
	}

	event := plugin.AnimationEvent{
		Type:              plugin.EventAnimate,
		Source:            source,
		View:              l.currentView(),
		AnimationDuration: opts.AnimationDuration,
		Options:           opts.Extra,
	}
	if l.isLaunchSplash {
		event.Type = plugin.EventAnimateLaunch
	}

	l.cancelAutoHide()
	delay := l.withLaunchRemainder(opts.Delay)

	st := &hiding{view: event.View, owner: call}
	l.state = st
	l.logger.Debug("animating splash", "call_id", call.ID(), "event", event.Type, "delay", delay)
	if delay <= 0 {
		l.runDelegate(st, event)
		return
	}
	st.timer = l.clock.AfterFunc(delay, func() {
		l.post(func() { l.runDelegate(st, event) })
	})
}

func (l *Lifecycle) runDelegate(st *hiding, event plugin.AnimationEvent) {
	if l.state != state(st) {
		return
	}
	st.timer = nil

	l.inflight++
	var once sync.Once
	settle := func(err error) {
		once.Do(func() {
			go l.post(func() {
				l.inflight--
				l.tearDown(st, err)
			})
		})
	}
	callbacks := plugin.AnimationCallbacks{
		Done: func() { settle(nil) },
		Fail: func(message string, code plugin.ErrorCode) {
			if code == "" {
				code = plugin.CodeAnimateMethodFailed
			}
			settle(&plugin.Error{Code: code, Message: message})
		},
	}

	delegate := l.delegate
	go func() {
		defer func() {
			if r := recover(); r != nil {
				settle(plugin.NewError(plugin.CodeAnimateMethodFailed, "animation delegate panicked: %v", r))
			}
		}()
		delegate.AnimateSplash(l.ctx, event, callbacks)
	}()
}

// tearDown detaches the view and resolves the teardown's calls. It is a
// no-op for a teardown that already completed.
func (l *Lifecycle) tearDown(st *hiding, err error) {
	if l.state != state(st) {
		return
	}
	if derr := l.bridge.Detach(l.ctx, st.view); derr != nil {
		l.logger.Warn("failed to detach splash view", "view", st.view, "error", derr)
	}
	l.state = hidden{}
	l.isLaunchSplash = false

	l.finish(st.owner, err)
	for _, call := range st.joined {
		l.finish(call, nil)
	}
}

func (l *Lifecycle) currentView() plugin.ViewHandle {
	switch st := l.state.(type) {
	case *showing:
		return st.view
	case *visible:
		return st.view
	case *hiding:
		return st.view
	default:
		return ""
	}
}

// Status returns a snapshot of the lifecycle.
func (l *Lifecycle) Status(ctx context.Context) (Status, error) {
	result := make(chan Status, 1)
	if !l.post(func() {
		s := Status{
			Phase:          l.state.phase(),
			IsLaunchSplash: l.isLaunchSplash,
			HasView:        l.viewBuilt,
			View:           l.currentView(),
			PendingCalls:   len(l.pending),
			InFlight:       l.inflight,
		}
		if vis, ok := l.state.(*visible); ok {
			s.AutoHidePending = vis.autoHide != nil
		}
		result <- s
	}) {
		return Status{}, ErrClosed
	}
	select {
	case s := <-result:
		return s, nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

// Close stops the lifecycle: timers are stopped, an attached view is
// detached and pending calls fail with ErrClosed. It is safe to call more
// than once.
func (l *Lifecycle) Close() error {
	l.closeOnce.Do(func() { close(l.quit) })
	<-l.stopped
	return nil
}

func (l *Lifecycle) dispose() {
	l.cancel()

	switch st := l.state.(type) {
	case *visible:
		if st.autoHide != nil {
			st.autoHide.Stop()
		}
	case *hiding:
		if st.timer != nil {
			st.timer.Stop()
		}
	}

	if view := l.currentView(); view != "" {
		ctx, cancel := context.WithTimeout(context.Background(), detachTimeout)
		if err := l.bridge.Detach(ctx, view); err != nil {
			l.logger.Warn("failed to detach splash view on close", "view", view, "error", err)
		}
		cancel()
	}
	l.state = hidden{}

	for call := range l.pending {
		l.finish(call, ErrClosed)
	}
	l.logger.Debug("lifecycle closed")
}
